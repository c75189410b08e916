package extract

import (
	"github.com/gzhole/longline/internal/shellast"
)

// extractFromPythonStdinPipeline recognises a pipeline whose last relevant
// stage is a bare python interpreter (no -c/-m, no script path) fed by
// echo/printf/cat, and extracts the piped-in code as its stdin program.
func extractFromPythonStdinPipeline(stmt Statement, cwd string, triggers Triggers) (ExtractedCode, bool) {
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

			if isDjangoShellConsumer(consumerUnwrapped) {
				continue
			}
			if len(consumerUnwrapped) == 0 {
				continue
			}
			consumerName := consumerUnwrapped[0]
			if !commandNameMatches("python", consumerName) {
				continue
			}
			hasInlineFlag := false
			for _, a := range consumerUnwrapped {
				if a == "-c" || a == "-m" {
					hasInlineFlag = true
					break
				}
			}
			if hasInlineFlag {
				continue
			}
			if _, ok := extractPythonScriptPath(consumerUnwrapped[1:]); ok {
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
				return ExtractedCode{Language: consumerName, Code: code}, true
			case "printf":
				code, ok := extractPrintfOutput(sourceArgv)
				if !ok || len(code) > MaxExtractedCodeBytes {
					return ExtractedCode{}, false
				}
				return ExtractedCode{Language: consumerName, Code: code}, true
			case "cat":
				path, ok := extractSingleCatPath(sourceArgv)
				if !ok {
					return ExtractedCode{}, false
				}
				code, ok := readSafeCodeFile(path, cwd)
				if !ok {
					return ExtractedCode{}, false
				}
				return ExtractedCode{Language: consumerName, Code: code}, true
			}
		}
		return ExtractedCode{}, false

	case *shellast.List:
		if ec, ok := extractFromPythonStdinPipeline(s.First, cwd, triggers); ok {
			return ec, true
		}
		for _, item := range s.Rest {
			if ec, ok := extractFromPythonStdinPipeline(item.Stmt, cwd, triggers); ok {
				return ec, true
			}
		}
		return ExtractedCode{}, false

	case *shellast.Subshell:
		return extractFromPythonStdinPipeline(s.Inner, cwd, triggers)

	case *shellast.CommandSubstitution:
		return extractFromPythonStdinPipeline(s.Inner, cwd, triggers)

	case *shellast.SimpleCommand:
		for _, sub := range s.EmbeddedSubstitutions {
			if ec, ok := extractFromPythonStdinPipeline(sub, cwd, triggers); ok {
				return ec, true
			}
		}
		return ExtractedCode{}, false

	default:
		return ExtractedCode{}, false
	}
}

// extractPythonScriptExecution walks the statement tree looking for a
// direct "python script.py" (or heredoc-written, or "python < script.py")
// invocation.
func extractPythonScriptExecution(rawCommand string, stmt Statement, cwd string, triggers Triggers) (ExtractedCode, bool) {
	switch s := stmt.(type) {
	case *shellast.SimpleCommand:
		for _, sub := range s.EmbeddedSubstitutions {
			if ec, ok := extractPythonScriptExecution(rawCommand, sub, cwd, triggers); ok {
				return ec, true
			}
		}
		return extractPythonScriptFromSimpleCommand(rawCommand, s, cwd, triggers)

	case *shellast.Pipeline:
		for _, stage := range s.Stages {
			if ec, ok := extractPythonScriptExecution(rawCommand, stage, cwd, triggers); ok {
				return ec, true
			}
		}
		return ExtractedCode{}, false

	case *shellast.List:
		if ec, ok := extractPythonScriptExecution(rawCommand, s.First, cwd, triggers); ok {
			return ec, true
		}
		for _, item := range s.Rest {
			if ec, ok := extractPythonScriptExecution(rawCommand, item.Stmt, cwd, triggers); ok {
				return ec, true
			}
		}
		return ExtractedCode{}, false

	case *shellast.Subshell:
		return extractPythonScriptExecution(rawCommand, s.Inner, cwd, triggers)

	case *shellast.CommandSubstitution:
		return extractPythonScriptExecution(rawCommand, s.Inner, cwd, triggers)

	default:
		return ExtractedCode{}, false
	}
}

func extractPythonScriptFromSimpleCommand(rawCommand string, cmd *shellast.SimpleCommand, cwd string, triggers Triggers) (ExtractedCode, bool) {
	tokens, ok := tokensFromSimpleCommand(cmd)
	if !ok {
		return ExtractedCode{}, false
	}
	unwrapped := unwrapRunnerChain(tokens, triggers.Runners)
	if len(unwrapped) == 0 {
		return ExtractedCode{}, false
	}
	cmdName := unwrapped[0]
	argv := unwrapped[1:]

	if !commandNameMatches("python", cmdName) {
		return ExtractedCode{}, false
	}
	for _, a := range argv {
		if a == "-c" || a == "-m" {
			return ExtractedCode{}, false
		}
	}
	if isDjangoShellConsumer(unwrapped) {
		return ExtractedCode{}, false
	}

	if scriptPath, ok := extractPythonScriptPath(argv); ok {
		if isManagePyPath(scriptPath) {
			return ExtractedCode{}, false
		}
		if code, ok := extractHeredocWrittenScript(rawCommand, scriptPath); ok {
			return ExtractedCode{Language: cmdName, Code: code}, true
		}
		code, ok := readSafeCodeFile(scriptPath, cwd)
		if !ok {
			return ExtractedCode{}, false
		}
		return ExtractedCode{Language: cmdName, Code: code}, true
	}

	var readTargets []string
	for _, r := range cmd.Redirects {
		if r.Op == shellast.Read {
			if len(readTargets) == 0 || readTargets[len(readTargets)-1] != r.Target {
				readTargets = append(readTargets, r.Target)
			}
		}
	}
	if len(readTargets) != 1 {
		return ExtractedCode{}, false
	}
	code, ok := readSafeCodeFile(readTargets[0], cwd)
	if !ok {
		return ExtractedCode{}, false
	}
	return ExtractedCode{Language: cmdName, Code: code}, true
}

func extractPythonScriptPath(argv []string) (string, bool) {
	i := 0
	for i < len(argv) {
		arg := argv[i]
		if arg == "--" {
			if i+1 < len(argv) {
				return argv[i+1], true
			}
			return "", false
		}
		if arg == "-c" || arg == "-m" {
			return "", false
		}
		if arg == "-W" || arg == "-X" {
			i += 2
			continue
		}
		if len(arg) > 0 && arg[0] == '-' {
			i++
			continue
		}
		return arg, true
	}
	return "", false
}
