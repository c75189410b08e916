package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gzhole/longline/internal/judge"
	"github.com/gzhole/longline/internal/logger"
	"github.com/gzhole/longline/internal/pipeline"
)

// hookCommand implements the default/root action: read one JSON request
// from stdin, evaluate it, write one JSON response to stdout. It only
// returns an error for flag-parsing failures; a malformed request still
// produces an Ask response on stdout per the error handling table.
func hookCommand(cmd *cobra.Command, args []string) error {
	safety, err := parseSafetyLevel(safetyLevel)
	if err != nil {
		return err
	}
	trust, err := parseTrustLevel(trustLevel)
	if err != nil {
		return err
	}

	raw, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		writeResponse(cmd.OutOrStdout(), askResponse("Failed to read stdin"))
		return nil
	}

	var req pipeline.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		writeResponse(cmd.OutOrStdout(), askResponse("Failed to parse hook input"))
		return nil
	}

	opts := pipeline.Options{
		SafetyLevel: safety,
		TrustLevel:  trust,
		AskOnDeny:   askOnDeny,
		Judge:       judgeMode(),
		Dir:         dirFlag,
		LogPath:     logger.DefaultLogPath(),
		ConfigPath:  configPath,
	}

	resp := pipeline.Evaluate(req, opts, judge.LoadConfig())
	writeResponse(cmd.OutOrStdout(), resp)
	return nil
}

func judgeMode() pipeline.JudgeMode {
	switch {
	case askAILenient:
		return pipeline.JudgeLenient
	case askAI:
		return pipeline.JudgeStrict
	default:
		return pipeline.JudgeOff
	}
}

// askResponse builds the stdout payload for a request that could not even
// be parsed: an ask verdict carrying the supplied reason, with no rule id.
func askResponse(reason string) pipeline.Response {
	return pipeline.Response{
		HookSpecificOutput: &pipeline.HookSpecificOutput{
			HookEventName:            "PreToolUse",
			PermissionDecision:       "ask",
			PermissionDecisionReason: reason,
		},
	}
}

func writeResponse(w io.Writer, resp pipeline.Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "longline: failed to encode response: %v\n", err)
		data = []byte("{}")
	}
	fmt.Fprintln(w, string(data))
}
