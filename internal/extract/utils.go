package extract

import (
	"strings"

	"github.com/gzhole/longline/internal/shellast"
)

// extractEchoOutput reconstructs what "echo" would print from its argv,
// skipping the -n/-e/-E flags it commonly takes.
func extractEchoOutput(argv []string) (string, bool) {
	idx := 0
loop:
	for idx < len(argv) {
		switch argv[idx] {
		case "-n", "-e", "-E":
			idx++
		default:
			break loop
		}
	}
	rest := argv[idx:]
	if len(rest) == 0 {
		return "", true
	}
	return strings.Join(rest, " "), true
}

// extractPrintfOutput conservatively supports "printf 'code'" and
// "printf '%s' 'code'" — anything fancier is not extracted.
func extractPrintfOutput(argv []string) (string, bool) {
	if len(argv) == 0 {
		return "", true
	}
	if argv[0] == "-v" {
		return "", false
	}
	if len(argv) == 1 {
		return argv[0], true
	}
	if argv[0] == "%s" && len(argv) == 2 {
		return argv[1], true
	}
	return "", false
}

// extractSingleCatPath returns the one path argument "cat" would read, or
// false if cat was given anything more complex than a single bare path.
func extractSingleCatPath(argv []string) (string, bool) {
	if len(argv) != 1 {
		return "", false
	}
	path := argv[0]
	if strings.HasPrefix(path, "-") {
		return "", false
	}
	return path, true
}

// tokensFromSimpleCommand flattens a command to [basename(name), argv...],
// or false if it has no name (a bare assignment).
func tokensFromSimpleCommand(cmd *shellast.SimpleCommand) ([]string, bool) {
	if !cmd.HasName {
		return nil, false
	}
	out := make([]string, 0, 1+len(cmd.Argv))
	out = append(out, basename(cmd.Name))
	out = append(out, cmd.Argv...)
	return out, true
}

func basename(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// unwrapRunnerChain repeatedly strips a leading "<runner> run [--]" prefix
// (up to 4 times, to bound chained wrappers) so the real interpreter
// invocation is visible underneath.
func unwrapRunnerChain(tokens []string, runners []string) []string {
	current := tokens
	for i := 0; i < 4; i++ {
		next, ok := unwrapRunnerOnce(current, runners)
		if !ok {
			break
		}
		current = next
	}
	return current
}

func unwrapRunnerOnce(tokens []string, runners []string) ([]string, bool) {
	if len(tokens) == 0 {
		return nil, false
	}
	name := tokens[0]
	isRunner := false
	for _, r := range runners {
		if r == name {
			isRunner = true
			break
		}
	}
	if !isRunner {
		return nil, false
	}
	runPos := -1
	for i, t := range tokens {
		if t == "run" {
			runPos = i
			break
		}
	}
	if runPos < 0 {
		return nil, false
	}
	start := runPos + 1
	if start < len(tokens) && tokens[start] == "--" {
		start++
	}
	if start >= len(tokens) {
		return nil, false
	}
	out := append([]string{}, tokens[start:]...)
	out[0] = basename(out[0])
	return out, true
}

// commandNameMatches reports whether actual is the expected interpreter,
// allowing "python3.11"-style version suffixes for python/python3.
func commandNameMatches(expected, actual string) bool {
	if expected == actual {
		return true
	}
	if expected != "python" && expected != "python3" {
		return false
	}
	rest, ok := strings.CutPrefix(actual, expected)
	if !ok || rest == "" {
		return false
	}
	for _, r := range rest {
		if !(r >= '0' && r <= '9') && r != '.' {
			return false
		}
	}
	return true
}
