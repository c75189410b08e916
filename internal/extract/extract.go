// Package extract recovers the runnable source code behind a shell
// command so the AI judge can be shown the program instead of the shell
// invocation that runs it: inline interpreter flags, heredocs and
// here-strings, and scripts read from disk or piped in over stdin.
package extract

import (
	"fmt"

	"github.com/gzhole/longline/internal/shellast"
)

// Extract recovers runnable code from a shell statement, if any is present.
//
// Precedence:
//  1. Inline flags (python -c, node -e, ...), including runner-wrapped commands.
//  2. Heredoc / here-string to python or a Django shell (from raw command text).
//  3. Pipelines feeding a Django shell from echo/printf/cat <file> (cwd+/tmp only).
//  4. Pipelines feeding a bare python interpreter the same way.
//  5. Python script execution (python script.py, heredoc-written scripts, or
//     python < file.py) when the script contents can be safely read (cwd+/tmp only).
func Extract(rawCommand string, stmt Statement, cwd string, triggers Triggers) (ExtractedCode, bool) {
	if extracted, ok := extractInlineCodeFromStmt(stmt, triggers); ok {
		if extracted.Context == "" && hasNetworkSourcePipeline(stmt) {
			extracted.Context = fmt.Sprintf(
				"Execution context: stdin piped from network download\nFull command: %s", rawCommand)
		}
		return extracted, true
	}

	if extracted, ok := extractFromHeredocOrHerestring(rawCommand); ok {
		if len(extracted.Code) <= MaxExtractedCodeBytes {
			return extracted, true
		}
	}

	if extracted, ok := extractFromDjangoShellPipeline(stmt, cwd, triggers); ok {
		return extracted, true
	}

	if extracted, ok := extractFromPythonStdinPipeline(stmt, cwd, triggers); ok {
		return extracted, true
	}

	if extracted, ok := extractPythonScriptExecution(rawCommand, stmt, cwd, triggers); ok {
		return extracted, true
	}

	return ExtractedCode{}, false
}

// hasNetworkSourcePipeline reports whether stmt contains a pipeline with
// curl or wget as one of its stages.
func hasNetworkSourcePipeline(stmt Statement) bool {
	switch s := stmt.(type) {
	case *shellast.Pipeline:
		for _, stage := range s.Stages {
			cmd, ok := stage.(*shellast.SimpleCommand)
			if !ok || !cmd.HasName {
				continue
			}
			b := basename(cmd.Name)
			if b == "curl" || b == "wget" {
				return true
			}
		}
		return false

	case *shellast.List:
		if hasNetworkSourcePipeline(s.First) {
			return true
		}
		for _, item := range s.Rest {
			if hasNetworkSourcePipeline(item.Stmt) {
				return true
			}
		}
		return false

	case *shellast.Subshell:
		return hasNetworkSourcePipeline(s.Inner)

	case *shellast.CommandSubstitution:
		return hasNetworkSourcePipeline(s.Inner)

	default:
		return false
	}
}
