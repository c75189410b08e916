// Package wrapper unwraps transparent wrapper commands (timeout, nice, env,
// nohup, strace, time) and task-runner invocations (uv run, poetry run, ...)
// so the policy evaluator can see what they actually execute. Wrapping
// changes execution context but not the command being evaluated.
//
// To add a new wrapper, add one entry to the wrappers table.
package wrapper

import (
	"strings"

	"github.com/gzhole/longline/internal/shellast"
)

// maxUnwrapDepth caps chained wrapper recursion. Exceeding it yields an
// Opaque node so the evaluator asks rather than silently stopping.
const maxUnwrapDepth = 16

// argSkip describes how to locate the inner command once flags are consumed.
type argSkip int

const (
	skipNone        argSkip = iota // next token after flags is the command (nohup, strace, time)
	skipPositional                 // skip N positional args first (timeout: DURATION)
	skipAssignments                // skip VAR=val pairs until the first non-assignment (env)
)

type def struct {
	name        string
	valueFlags  []string
	boolFlags   []string
	skip        argSkip
	skipCount   int
}

var wrappers = []def{
	{
		name:       "timeout",
		valueFlags: []string{"-s", "--signal", "-k", "--kill-after"},
		boolFlags:  []string{"--preserve-status", "--foreground", "-v", "--verbose"},
		skip:       skipPositional,
		skipCount:  1,
	},
	{
		name:       "nice",
		valueFlags: []string{"-n", "--adjustment"},
		skip:       skipNone,
	},
	{
		name:       "env",
		valueFlags: []string{"-u", "--unset"},
		boolFlags:  []string{"-i", "-0", "--null", "--ignore-environment"},
		skip:       skipAssignments,
	},
	{
		name: "nohup",
		skip: skipNone,
	},
	{
		name: "strace",
		valueFlags: []string{"-e", "-o", "-p", "-s", "-P", "-I"},
		boolFlags: []string{
			"-f", "-ff", "-c", "-C", "-t", "-tt", "-ttt", "-T", "-v", "-V", "-x", "-xx", "-y", "-yy",
		},
		skip: skipNone,
	},
	{
		name:      "time",
		boolFlags: []string{"-p"},
		skip:      skipNone,
	},
}

// basename extracts the final path component for wrapper matching, so
// /usr/bin/timeout and ./timeout both resolve to "timeout".
func basename(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[i+1:]
	}
	return name
}

func find(name string) (def, bool) {
	b := basename(name)
	for _, w := range wrappers {
		if w.name == b {
			return w, true
		}
	}
	return def{}, false
}

// isEnvAssignment reports whether token looks like NAME=VALUE, where NAME
// matches [A-Za-z_][A-Za-z0-9_]*.
func isEnvAssignment(token string) bool {
	eq := strings.IndexByte(token, '=')
	if eq < 0 {
		return false
	}
	name := token[:eq]
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// Unwrap extracts the inner command from a known transparent wrapper
// invocation. It returns (nil, false) when cmd is not a wrapper call or has
// no inner command to find.
func Unwrap(cmd *shellast.SimpleCommand) (*shellast.SimpleCommand, bool) {
	if !cmd.HasName {
		return nil, false
	}
	w, ok := find(cmd.Name)
	if !ok {
		return nil, false
	}

	argv := cmd.Argv
	i := 0

	// Phase 1: consume flags.
flags:
	for i < len(argv) {
		tok := argv[i]

		if tok == "--" {
			i++
			break
		}

		for _, f := range w.valueFlags {
			if tok == f {
				i += 2
				continue flags
			}
		}
		for _, f := range w.valueFlags {
			if strings.HasPrefix(tok, f) && len(tok) > len(f) && tok[len(f)] == '=' {
				i++
				continue flags
			}
		}
		for _, f := range w.valueFlags {
			if strings.HasPrefix(f, "-") && !strings.HasPrefix(f, "--") &&
				strings.HasPrefix(tok, f) && len(tok) > len(f) {
				i++
				continue flags
			}
		}
		for _, f := range w.boolFlags {
			if tok == f {
				i++
				continue flags
			}
		}

		break
	}

	// Phase 2: apply the skip rule.
	switch w.skip {
	case skipPositional:
		i += w.skipCount
	case skipAssignments:
		for i < len(argv) && isEnvAssignment(argv[i]) {
			i++
		}
	case skipNone:
	}

	// Phase 3: construct the inner command.
	if i >= len(argv) {
		return nil, false
	}

	inner := &shellast.SimpleCommand{
		Name:                 argv[i],
		HasName:              true,
		Argv:                 append([]string{}, argv[i+1:]...),
		Redirects:            append([]shellast.Redirect{}, cmd.Redirects...),
		EmbeddedSubstitutions: append([]shellast.Statement{}, cmd.EmbeddedSubstitutions...),
	}
	return inner, true
}

// ExtractInner walks a statement tree and returns every synthesized inner
// command produced by recursively unwrapping transparent wrappers, in the
// order they were discovered. These are additional leaves the evaluator must
// consider alongside the original tree's own leaves.
func ExtractInner(stmt shellast.Statement) []shellast.Statement {
	var out []shellast.Statement
	collectInner(stmt, &out)
	return out
}

func collectInner(stmt shellast.Statement, out *[]shellast.Statement) {
	switch s := stmt.(type) {
	case *shellast.SimpleCommand:
		unwrapRecursive(s, out, 0)
		for _, sub := range s.EmbeddedSubstitutions {
			collectInner(sub, out)
		}
	case *shellast.Pipeline:
		for _, stage := range s.Stages {
			collectInner(stage, out)
		}
	case *shellast.List:
		collectInner(s.First, out)
		for _, item := range s.Rest {
			collectInner(item.Stmt, out)
		}
	case *shellast.Subshell:
		collectInner(s.Inner, out)
	case *shellast.CommandSubstitution:
		collectInner(s.Inner, out)
	case *shellast.Opaque, *shellast.Empty:
		// no children
	}
}

func unwrapRecursive(cmd *shellast.SimpleCommand, out *[]shellast.Statement, depth int) {
	inner, ok := Unwrap(cmd)
	if !ok {
		return
	}
	if depth >= maxUnwrapDepth {
		*out = append(*out, &shellast.Opaque{Text: "wrapper depth limit exceeded"})
		return
	}
	*out = append(*out, inner)
	unwrapRecursive(inner, out, depth+1)
}

// taskRunners lists the package-manager "run" front-ends that execute a
// project-declared script rather than a plain command. Unlike the
// transparent wrappers above, unwrapping these discards the argv shift
// semantics of "run": the inner command starts at the first argument after
// "run" itself.
var taskRunners = map[string]bool{
	"uv":      true,
	"poetry":  true,
	"pipenv":  true,
	"pdm":     true,
	"rye":     true,
}

// UnwrapRunner extracts the inner command from a task-runner invocation of
// the form "<runner> run <cmd> [args...]". It returns (nil, false) when cmd
// is not a recognised runner-run call.
func UnwrapRunner(cmd *shellast.SimpleCommand) (*shellast.SimpleCommand, bool) {
	if !cmd.HasName || !taskRunners[basename(cmd.Name)] {
		return nil, false
	}
	if len(cmd.Argv) < 2 || cmd.Argv[0] != "run" {
		return nil, false
	}
	inner := &shellast.SimpleCommand{
		Name:                 cmd.Argv[1],
		HasName:              true,
		Argv:                 append([]string{}, cmd.Argv[2:]...),
		Redirects:            append([]shellast.Redirect{}, cmd.Redirects...),
		EmbeddedSubstitutions: append([]shellast.Statement{}, cmd.EmbeddedSubstitutions...),
	}
	return inner, true
}

// ExtractRunnerInner walks a statement tree and returns every inner command
// synthesized by unwrapping task-runner invocations, one layer deep (runners
// are not expected to chain the way timeout/nice/env do).
func ExtractRunnerInner(stmt shellast.Statement) []shellast.Statement {
	var out []shellast.Statement
	collectRunnerInner(stmt, &out)
	return out
}

func collectRunnerInner(stmt shellast.Statement, out *[]shellast.Statement) {
	switch s := stmt.(type) {
	case *shellast.SimpleCommand:
		if inner, ok := UnwrapRunner(s); ok {
			*out = append(*out, inner)
		}
		for _, sub := range s.EmbeddedSubstitutions {
			collectRunnerInner(sub, out)
		}
	case *shellast.Pipeline:
		for _, stage := range s.Stages {
			collectRunnerInner(stage, out)
		}
	case *shellast.List:
		collectRunnerInner(s.First, out)
		for _, item := range s.Rest {
			collectRunnerInner(item.Stmt, out)
		}
	case *shellast.Subshell:
		collectRunnerInner(s.Inner, out)
	case *shellast.CommandSubstitution:
		collectRunnerInner(s.Inner, out)
	case *shellast.Opaque, *shellast.Empty:
	}
}
