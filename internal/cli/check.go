package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gzhole/longline/internal/judge"
	"github.com/gzhole/longline/internal/pipeline"
)

// checkCmd is a single-shot diagnostic: evaluate one command string the way
// the hook would, without reading stdin, and print a human-readable verdict
// instead of the JSON hook response. Not part of the hook contract — for
// local testing while writing rules.
var checkCmd = &cobra.Command{
	Use:   "check <command>",
	Short: "Evaluate a single command string and print the verdict",
	Long: `check runs one command string through the same pipeline the hook
uses and prints a human-readable verdict line instead of writing the JSON
hook response.

  longline check "rm -rf /"`,
	Args: cobra.ExactArgs(1),
	RunE: checkCommand,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func checkCommand(cmd *cobra.Command, args []string) error {
	safety, err := parseSafetyLevel(safetyLevel)
	if err != nil {
		return err
	}
	trust, err := parseTrustLevel(trustLevel)
	if err != nil {
		return err
	}

	cwd := dirFlag
	if cwd == "" {
		cwd, _ = os.Getwd()
	}

	req := pipeline.Request{
		ToolName:  "Bash",
		Cwd:       cwd,
		ToolInput: pipeline.ToolInput{Command: args[0]},
	}
	opts := pipeline.Options{
		SafetyLevel: safety,
		TrustLevel:  trust,
		AskOnDeny:   askOnDeny,
		Judge:       judgeMode(),
		Dir:         dirFlag,
		ConfigPath:  configPath,
		LogPath:     os.DevNull,
	}

	resp := pipeline.Evaluate(req, opts, judge.LoadConfig())
	printVerdict(cmd, args[0], resp)
	return nil
}

func printVerdict(cmd *cobra.Command, command string, resp pipeline.Response) {
	out := cmd.OutOrStdout()
	if resp.HookSpecificOutput == nil {
		fmt.Fprintf(out, "allow: %s\n", command)
		return
	}
	out2 := resp.HookSpecificOutput
	reason := strings.TrimSpace(out2.PermissionDecisionReason)
	fmt.Fprintf(out, "%s: %s\n", out2.PermissionDecision, command)
	if reason != "" {
		fmt.Fprintf(out, "  reason: %s\n", reason)
	}
}
