// Package cli implements longline's command surface: a cobra root command
// that doubles as the PreToolUse hook handler when invoked with no
// subcommand, plus check/log/version for local inspection.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gzhole/longline/internal/policy"
)

var (
	configPath     string
	safetyLevel    string
	trustLevel     string
	askOnDeny      bool
	askAI          bool
	askAILenient   bool
	dirFlag        string
)

var rootCmd = &cobra.Command{
	Use:   "longline",
	Short: "Command-evaluation security gate for AI coding assistants",
	Long: `longline is a single-shot stdin/stdout security gate that sits in front
of a shell tool. It reads one PreToolUse hook request, evaluates the command
against a layered rules configuration, and writes one allow/ask/deny
verdict, never actually executing or sandboxing the command itself.`,
	RunE: hookCommand,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a rules YAML file (default: built-in rules plus overlays)")
	rootCmd.PersistentFlags().StringVar(&safetyLevel, "safety-level", "", "Override the configured safety level: critical, high, or strict")
	rootCmd.PersistentFlags().StringVar(&trustLevel, "trust-level", "", "Override the configured trust level: minimal, standard, or full")
	rootCmd.PersistentFlags().BoolVar(&askOnDeny, "ask-on-deny", false, "Soften every deny verdict to ask instead of blocking outright")
	rootCmd.PersistentFlags().BoolVar(&askAI, "ask-ai", false, "Consult the external AI judge (strict mode) when the base decision is ask")
	rootCmd.PersistentFlags().BoolVar(&askAILenient, "ask-ai-lenient", false, "Consult the external AI judge (lenient mode) when the base decision is ask")
	rootCmd.PersistentFlags().BoolVar(&askAILenient, "lenient", false, "Alias for --ask-ai-lenient")
	rootCmd.PersistentFlags().StringVar(&dirFlag, "dir", "", "Working directory to use for project-overlay discovery when the request omits cwd")
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		return 2
	}
	return exitCode
}

// exitCode lets subcommands request a non-zero exit without os.Exit, which
// would skip deferred cleanup (e.g. closing the audit log file).
var exitCode int

func parseSafetyLevel(s string) (*policy.SafetyLevel, error) {
	if s == "" {
		return nil, nil
	}
	var lvl policy.SafetyLevel
	switch s {
	case "critical":
		lvl = policy.Critical
	case "high":
		lvl = policy.High
	case "strict":
		lvl = policy.Strict
	default:
		return nil, fmt.Errorf("invalid --safety-level %q (want critical, high, or strict)", s)
	}
	return &lvl, nil
}

func parseTrustLevel(s string) (*policy.TrustLevel, error) {
	if s == "" {
		return nil, nil
	}
	var lvl policy.TrustLevel
	switch s {
	case "minimal":
		lvl = policy.Minimal
	case "standard":
		lvl = policy.Standard
	case "full":
		lvl = policy.Full
	default:
		return nil, fmt.Errorf("invalid --trust-level %q (want minimal, standard, or full)", s)
	}
	return &lvl, nil
}
