package pipeline

import (
	"fmt"
	"os"

	"github.com/gzhole/longline/internal/config"
	"github.com/gzhole/longline/internal/extract"
	"github.com/gzhole/longline/internal/judge"
	"github.com/gzhole/longline/internal/logger"
	"github.com/gzhole/longline/internal/policy"
	"github.com/gzhole/longline/internal/shellast"
	"github.com/gzhole/longline/internal/shellparse"
	"github.com/gzhole/longline/internal/unicode"
)

const unicodeConfusableReason = "Unicode confusable characters detected near command name"

// Evaluate runs the full decision pipeline for one request and returns the
// response to write to stdout. A request for any tool other than Bash
// produces a zero Response (serializes to "{}"); the caller still exits 0.
func Evaluate(req Request, opts Options, judgeCfg judge.Config) Response {
	if req.ToolName != "Bash" || req.ToolInput.Command == "" {
		return Response{}
	}

	cwd := req.Cwd
	if cwd == "" {
		cwd = opts.Dir
	}
	if cwd == "" {
		cwd, _ = os.Getwd()
	}

	cmdStr := req.ToolInput.Command

	cfg, err := config.LoadEffectiveFrom(cwd, opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "longline: %v\n", err)
		os.Exit(2)
	}
	if opts.SafetyLevel != nil {
		cfg.SafetyLevel = *opts.SafetyLevel
	}
	if opts.TrustLevel != nil {
		cfg.TrustLevel = *opts.TrustLevel
	}

	stmt := shellparse.Parse(cmdStr)
	parseOK := true
	if opaque, ok := stmt.(*shellast.Opaque); ok && opaque.Text == cmdStr && cmdStr != "" {
		parseOK = false
	}

	result := policy.Evaluate(stmt, cfg)
	if !parseOK {
		result.Reason = "Failed to parse bash command"
	}

	if parseOK {
		if flagged, reason := unicode.ScanCommandName(cmdStr); flagged && result.Decision == policy.Allow {
			result = policy.PolicyResult{Decision: policy.Ask, Reason: reason}
		}
	}

	var originalDecision *policy.Decision
	if result.Decision == policy.Ask && opts.Judge != JudgeOff {
		triggers := judgeCfg.Triggers.ToExtractTriggers()
		if extracted, ok := extract.Extract(cmdStr, stmt, cwd, triggers); ok {
			var verdict judge.Verdict
			if opts.Judge == JudgeLenient {
				verdict = judge.EvaluateLenient(judgeCfg, extracted.Language, extracted.Code, cwd, extracted.Context)
			} else {
				verdict = judge.Evaluate(judgeCfg, extracted.Language, extracted.Code, cwd, extracted.Context)
			}
			if verdict.Decision == policy.Allow {
				result = policy.PolicyResult{Decision: policy.Allow, Reason: "AI: " + verdict.Reason}
			}
		}
	}

	if opts.AskOnDeny && result.Decision == policy.Deny {
		original := result.Decision
		originalDecision = &original
		result.Decision = policy.Ask
		result.Reason = "[overridden] " + result.Reason
	}

	logEntry(req, cwd, cmdStr, result, parseOK, originalDecision, opts.LogPath)

	return Response{
		HookSpecificOutput: &HookSpecificOutput{
			HookEventName:            "PreToolUse",
			PermissionDecision:       result.Decision.String(),
			PermissionDecisionReason: formatReason(result),
		},
	}
}

// formatReason prefixes the reason with the matched rule id in brackets,
// when a rule produced the decision, matching the original's format_reason.
// Every evaluated Bash command carries a non-empty reason, even a plain
// allow with no matching rule or allowlist entry.
func formatReason(result policy.PolicyResult) string {
	reason := result.Reason
	if result.HasRule {
		reason = fmt.Sprintf("[%s] %s", result.RuleID, result.Reason)
	}
	if reason == "" {
		reason = "longline: no matching rule"
	}
	return reason
}

func logEntry(req Request, cwd, cmdStr string, result policy.PolicyResult, parseOK bool, original *policy.Decision, logPath string) {
	var matchedRules []string
	if result.HasRule {
		matchedRules = []string{result.RuleID}
	}

	entry := logger.NewEntry(req.ToolName, cwd, cmdStr, result.Decision, matchedRules, result.Reason, parseOK, req.SessionID)
	if original != nil {
		entry = entry.WithOverride(*original)
	}

	if logPath != "" {
		logger.LogDecisionTo(entry, logPath)
		return
	}
	logger.LogDecision(entry)
}
