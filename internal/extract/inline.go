package extract

import (
	"strings"

	"github.com/gzhole/longline/internal/shellast"
)

// extractInlineCodeFromStmt handles the highest-precedence case: a command
// that was invoked with an inline code flag directly (python -c, node -e,
// manage.py shell -c, ...), including through a chain of task-runner
// wrappers.
func extractInlineCodeFromStmt(stmt Statement, triggers Triggers) (ExtractedCode, bool) {
	switch s := stmt.(type) {
	case *shellast.SimpleCommand:
		for _, sub := range s.EmbeddedSubstitutions {
			if ec, ok := extractInlineCodeFromStmt(sub, triggers); ok {
				return ec, true
			}
		}
		return extractFromSimpleCommand(s, triggers)

	case *shellast.Pipeline:
		for _, stage := range s.Stages {
			if ec, ok := extractInlineCodeFromStmt(stage, triggers); ok {
				return ec, true
			}
		}
		return ExtractedCode{}, false

	case *shellast.List:
		if ec, ok := extractInlineCodeFromStmt(s.First, triggers); ok {
			return ec, true
		}
		for _, item := range s.Rest {
			if ec, ok := extractInlineCodeFromStmt(item.Stmt, triggers); ok {
				return ec, true
			}
		}
		return ExtractedCode{}, false

	case *shellast.Subshell:
		return extractInlineCodeFromStmt(s.Inner, triggers)

	case *shellast.CommandSubstitution:
		return extractInlineCodeFromStmt(s.Inner, triggers)

	default:
		return ExtractedCode{}, false
	}
}

func extractFromSimpleCommand(cmd *shellast.SimpleCommand, triggers Triggers) (ExtractedCode, bool) {
	tokens, ok := tokensFromSimpleCommand(cmd)
	if !ok {
		return ExtractedCode{}, false
	}
	unwrapped := unwrapRunnerChain(tokens, triggers.Runners)

	if ec, ok := extractDjangoShellInline(unwrapped); ok {
		return ec, true
	}
	return extractInterpreterInline(unwrapped, triggers)
}

func extractInterpreterInline(tokens []string, triggers Triggers) (ExtractedCode, bool) {
	if len(tokens) == 0 {
		return ExtractedCode{}, false
	}
	cmdName := tokens[0]
	argv := tokens[1:]

	for _, trigger := range triggers.Interpreters {
		matched := false
		for _, n := range trigger.Names {
			if commandNameMatches(n, cmdName) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		flagPos := -1
		for i, a := range argv {
			if a == trigger.InlineFlag {
				flagPos = i
				break
			}
		}
		if flagPos < 0 || flagPos+1 >= len(argv) {
			return ExtractedCode{}, false
		}
		code := argv[flagPos+1]
		if len(code) > MaxExtractedCodeBytes {
			return ExtractedCode{}, false
		}
		return ExtractedCode{Language: cmdName, Code: code}, true
	}

	return ExtractedCode{}, false
}

func extractDjangoShellInline(tokens []string) (ExtractedCode, bool) {
	managePos := -1
	for i, t := range tokens {
		if isManagePyPath(t) {
			managePos = i
			break
		}
	}
	if managePos < 0 {
		return ExtractedCode{}, false
	}
	shellPos := managePos + 1
	if shellPos >= len(tokens) {
		return ExtractedCode{}, false
	}
	shellCmd := tokens[shellPos]
	if shellCmd != "shell" && shellCmd != "shell_plus" {
		return ExtractedCode{}, false
	}

	for i := shellPos + 1; i < len(tokens); i++ {
		tok := tokens[i]
		if tok == "-c" || tok == "--command" {
			if i+1 >= len(tokens) {
				return ExtractedCode{}, false
			}
			return ExtractedCode{
				Language: "python",
				Code:     tokens[i+1],
				Context:  djangoContext("inline -c/--command"),
			}, true
		}
		if rest, ok := strings.CutPrefix(tok, "--command="); ok {
			return ExtractedCode{
				Language: "python",
				Code:     rest,
				Context:  djangoContext("inline -c/--command"),
			}, true
		}
	}

	return ExtractedCode{}, false
}
