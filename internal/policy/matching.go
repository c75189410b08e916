package policy

import (
	"strings"

	"github.com/IGLOU-EU/go-wildcard/v2"
	"github.com/gzhole/longline/internal/shellast"
)

// ArgMatchesFlag reports whether arg satisfies flag: an exact match, a
// "--flag=value" long form, or a combined short cluster ("-xvf" contains
// "-f").
func ArgMatchesFlag(arg, flag string) bool {
	if arg == flag {
		return true
	}
	if strings.HasPrefix(flag, "--") && strings.HasPrefix(arg, flag+"=") {
		return true
	}
	if len(flag) == 2 && strings.HasPrefix(flag, "-") && !strings.HasPrefix(flag, "--") &&
		strings.HasPrefix(arg, "-") && !strings.HasPrefix(arg, "--") && len(arg) > 1 {
		return strings.ContainsRune(arg[1:], rune(flag[1]))
	}
	return false
}

// MatchesRule dispatches a leaf statement against a single matcher. A
// Pipeline matcher never matches here: pipelines are matched against the
// whole pipeline node by MatchesPipeline before leaves are ever visited.
func MatchesRule(stmt Statement, m Matcher) bool {
	switch {
	case m.Command != nil:
		sc, ok := stmt.(*shellast.SimpleCommand)
		if !ok {
			return false
		}
		return matchesCommand(sc, *m.Command)
	case m.Redirect != nil:
		sc, ok := stmt.(*shellast.SimpleCommand)
		if !ok {
			return false
		}
		return matchesRedirect(sc, *m.Redirect)
	default:
		return false
	}
}

func matchesCommand(cmd *shellast.SimpleCommand, cm CommandMatcher) bool {
	if !cm.Command.Contains(basename(cmd.Name)) {
		return false
	}
	if cm.Flags != nil && !matchesFlags(cmd.Argv, *cm.Flags) {
		return false
	}
	if cm.Args != nil && !matchesArgs(cmd.Argv, *cm.Args) {
		return false
	}
	return true
}

func matchesFlags(argv []string, fm FlagsMatcher) bool {
	if len(fm.AnyOf) > 0 {
		found := false
		for _, f := range fm.AnyOf {
			for _, a := range argv {
				if ArgMatchesFlag(a, f) {
					found = true
					break
				}
			}
		}
		if !found {
			return false
		}
	}
	if len(fm.AllOf) > 0 {
		for _, f := range fm.AllOf {
			matched := false
			for _, a := range argv {
				if ArgMatchesFlag(a, f) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}
	}
	if len(fm.NoneOf) > 0 {
		for _, f := range fm.NoneOf {
			for _, a := range argv {
				if ArgMatchesFlag(a, f) {
					return false
				}
			}
		}
	}
	if len(fm.StartsWith) > 0 {
		matched := false
		for _, a := range argv {
			for _, prefix := range fm.StartsWith {
				if strings.HasPrefix(a, prefix) {
					matched = true
					break
				}
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func matchesArgs(argv []string, am ArgsMatcher) bool {
	if len(am.AnyOf) == 0 {
		return true
	}
	for _, pattern := range am.AnyOf {
		for _, a := range argv {
			if wildcard.Match(pattern, a) {
				return true
			}
		}
	}
	return false
}

func matchesRedirect(cmd *shellast.SimpleCommand, rm RedirectMatcher) bool {
	for _, r := range cmd.Redirects {
		if rm.Op != "" && r.Op.String() != rm.Op {
			continue
		}
		if rm.Target != nil && !matchGlobAny(rm.Target.Values, r.Target) {
			continue
		}
		return true
	}
	return false
}

func matchGlobAny(patterns []string, target string) bool {
	for _, p := range patterns {
		if wildcard.Match(p, target) {
			return true
		}
	}
	return false
}

// MatchesPipeline reports whether pm.Stages appears, in order, as a
// subsequence of p's stages. Stages that are not SimpleCommands, or that
// don't match the next expected matcher, are skipped rather than failing
// the whole match.
func MatchesPipeline(p *shellast.Pipeline, pm PipelineMatcher) bool {
	si := 0
	for _, stage := range p.Stages {
		if si >= len(pm.Stages) {
			break
		}
		sc, ok := stage.(*shellast.SimpleCommand)
		if !ok {
			continue
		}
		if pm.Stages[si].Command.Contains(basename(sc.Name)) {
			si++
		}
	}
	return si == len(pm.Stages)
}
