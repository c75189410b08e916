// Package extract pulls runnable source code out of a shell command so the
// external AI judge has something concrete to read instead of the raw shell
// syntax: an inline -c/-e flag, a heredoc body, a script file, or the stdin
// side of a pipeline feeding an interpreter.
package extract

import "github.com/gzhole/longline/internal/shellast"

// MaxExtractedCodeBytes caps how much source text is ever handed to the
// judge; anything larger is treated as not extracted rather than truncated.
const MaxExtractedCodeBytes = 32 * 1024

// ExtractedCode is the result of a successful extraction: the language the
// judge should assume, the code text itself, and an optional note about
// where the code came from (e.g. Django shell, a network-fed pipeline).
type ExtractedCode struct {
	Language string
	Code     string
	Context  string
}

// InterpreterTrigger names an interpreter by its recognised command names
// and the single flag that takes an inline code argument.
type InterpreterTrigger struct {
	Names      []string
	InlineFlag string
}

// Triggers configures which interpreters and task runners extraction
// recognises. Runner entries are plain command names ("uv", "poetry", ...)
// whose "run" subcommand is unwrapped before interpreter matching.
type Triggers struct {
	Interpreters []InterpreterTrigger
	Runners      []string
}

// DefaultTriggers mirrors the original tool's built-in trigger set.
func DefaultTriggers() Triggers {
	return Triggers{
		Interpreters: []InterpreterTrigger{
			{Names: []string{"python", "python3"}, InlineFlag: "-c"},
			{Names: []string{"node"}, InlineFlag: "-e"},
			{Names: []string{"ruby"}, InlineFlag: "-e"},
			{Names: []string{"perl"}, InlineFlag: "-e"},
		},
		Runners: []string{"uv", "poetry", "pipenv", "pdm", "rye"},
	}
}

// Statement is the tree extraction walks; it is shellast's algebra.
type Statement = shellast.Statement
