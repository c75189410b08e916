// Package pipeline orchestrates one request end to end: load the effective
// configuration, parse and evaluate the command, consult the external judge
// and the ask-on-deny override where configured, log the result, and emit
// the hook response. It is the Go counterpart of the teacher's
// evaluateCommand, generalized to the stdin/stdout hook contract instead of
// multiple IDE-specific request shapes.
package pipeline

import "github.com/gzhole/longline/internal/policy"

// Request is the stdin JSON envelope a PreToolUse-style hook sends.
type Request struct {
	SessionID     string    `json:"session_id,omitempty"`
	Cwd           string    `json:"cwd,omitempty"`
	HookEventName string    `json:"hook_event_name,omitempty"`
	ToolName      string    `json:"tool_name"`
	ToolInput     ToolInput `json:"tool_input"`
	ToolUseID     string    `json:"tool_use_id,omitempty"`
}

// ToolInput is the nested tool-specific payload; only Bash commands are
// evaluated, so Description and FilePath are carried through but unused.
type ToolInput struct {
	Command     string `json:"command,omitempty"`
	Description string `json:"description,omitempty"`
	FilePath    string `json:"file_path,omitempty"`
}

// Response is the stdout JSON envelope. A zero Response (HookSpecificOutput
// nil) serializes to "{}", meaning "no opinion" — used for non-Bash tools.
type Response struct {
	HookSpecificOutput *HookSpecificOutput `json:"hookSpecificOutput,omitempty"`
}

// HookSpecificOutput carries the actual verdict.
type HookSpecificOutput struct {
	HookEventName            string `json:"hookEventName"`
	PermissionDecision       string `json:"permissionDecision"`
	PermissionDecisionReason string `json:"permissionDecisionReason"`
}

// JudgeMode selects whether and how the external AI judge is consulted.
type JudgeMode int

const (
	JudgeOff JudgeMode = iota
	JudgeStrict
	JudgeLenient
)

// Options carries the CLI-flag overrides that apply after configuration is
// loaded and merged: safety/trust overrides win over every overlay,
// ask-on-deny controls whether a Deny is softened to Ask, and judge mode
// controls whether the external judge is consulted on an Ask.
type Options struct {
	SafetyLevel *policy.SafetyLevel
	TrustLevel  *policy.TrustLevel
	AskOnDeny   bool
	Judge       JudgeMode
	Dir         string
	LogPath     string
	ConfigPath  string
}
