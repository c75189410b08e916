package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gzhole/longline/internal/shellast"
)

// extractFromDjangoShellPipeline recognises a pipeline whose last relevant
// stage is "manage.py shell" (or "shell_plus") fed by echo/printf/cat, and
// extracts the piped-in code as the Django shell's input.
func extractFromDjangoShellPipeline(stmt Statement, cwd string, triggers Triggers) (ExtractedCode, bool) {
	switch s := stmt.(type) {
	case *shellast.Pipeline:
		for i, stage := range s.Stages {
			if i == 0 {
				continue
			}
			consumerCmd, ok := stage.(*shellast.SimpleCommand)
			if !ok {
				continue
			}
			consumerTokens, ok := tokensFromSimpleCommand(consumerCmd)
			if !ok {
				continue
			}
			consumerUnwrapped := unwrapRunnerChain(consumerTokens, triggers.Runners)

			if !isDjangoShellConsumer(consumerUnwrapped) {
				continue
			}
			if hasDjangoShellInlineFlag(consumerUnwrapped) {
				continue
			}

			sourceCmd, ok := s.Stages[i-1].(*shellast.SimpleCommand)
			if !ok {
				continue
			}
			sourceTokens, ok := tokensFromSimpleCommand(sourceCmd)
			if !ok {
				continue
			}
			sourceName := sourceTokens[0]
			sourceArgv := sourceTokens[1:]

			switch sourceName {
			case "echo":
				code, ok := extractEchoOutput(sourceArgv)
				if !ok || len(code) > MaxExtractedCodeBytes {
					return ExtractedCode{}, false
				}
				return ExtractedCode{
					Language: "python",
					Code:     code,
					Context:  djangoContext("stdin from echo"),
				}, true
			case "printf":
				code, ok := extractPrintfOutput(sourceArgv)
				if !ok || len(code) > MaxExtractedCodeBytes {
					return ExtractedCode{}, false
				}
				return ExtractedCode{
					Language: "python",
					Code:     code,
					Context:  djangoContext("stdin from printf"),
				}, true
			case "cat":
				path, ok := extractSingleCatPath(sourceArgv)
				if !ok {
					return ExtractedCode{}, false
				}
				code, ok := readSafeCodeFile(path, cwd)
				if !ok {
					return ExtractedCode{}, false
				}
				return ExtractedCode{
					Language: "python",
					Code:     code,
					Context:  djangoContext(fmt.Sprintf("stdin from cat %s", path)),
				}, true
			}
		}
		return ExtractedCode{}, false

	case *shellast.List:
		if ec, ok := extractFromDjangoShellPipeline(s.First, cwd, triggers); ok {
			return ec, true
		}
		for _, item := range s.Rest {
			if ec, ok := extractFromDjangoShellPipeline(item.Stmt, cwd, triggers); ok {
				return ec, true
			}
		}
		return ExtractedCode{}, false

	case *shellast.Subshell:
		return extractFromDjangoShellPipeline(s.Inner, cwd, triggers)

	case *shellast.CommandSubstitution:
		return extractFromDjangoShellPipeline(s.Inner, cwd, triggers)

	case *shellast.SimpleCommand:
		for _, sub := range s.EmbeddedSubstitutions {
			if ec, ok := extractFromDjangoShellPipeline(sub, cwd, triggers); ok {
				return ec, true
			}
		}
		return ExtractedCode{}, false

	default:
		return ExtractedCode{}, false
	}
}

func isManagePyPath(arg string) bool {
	if arg == "manage.py" {
		return true
	}
	return filepath.Base(arg) == "manage.py"
}

func isDjangoShellConsumer(tokens []string) bool {
	managePos := -1
	for i, t := range tokens {
		if isManagePyPath(t) {
			managePos = i
			break
		}
	}
	if managePos < 0 {
		return false
	}
	shellPos := managePos + 1
	if shellPos >= len(tokens) {
		return false
	}
	shellCmd := tokens[shellPos]
	return shellCmd == "shell" || shellCmd == "shell_plus"
}

func hasDjangoShellInlineFlag(tokens []string) bool {
	managePos := -1
	for i, t := range tokens {
		if isManagePyPath(t) {
			managePos = i
			break
		}
	}
	if managePos < 0 {
		return false
	}
	shellPos := managePos + 1
	if shellPos >= len(tokens) {
		return false
	}
	shellCmd := tokens[shellPos]
	if shellCmd != "shell" && shellCmd != "shell_plus" {
		return false
	}
	for _, tok := range tokens[shellPos+1:] {
		if tok == "-c" || tok == "--command" || strings.HasPrefix(tok, "--command=") {
			return true
		}
	}
	return false
}

func djangoContext(codeSource string) string {
	return fmt.Sprintf(
		"Execution context: Django manage.py shell (can access the database and Django settings). Code source: %s. Guidance: ALLOW only read-only ORM queries/printing; ASK on any data writes/deletes/migrations, secrets, network, or subprocess execution.",
		codeSource,
	)
}
