package policy

import (
	"github.com/gzhole/longline/internal/shellast"
	"github.com/gzhole/longline/internal/wrapper"
)

// Flatten reduces a statement tree to its leaf commands in left-to-right
// order: SimpleCommand and Opaque/Empty nodes are leaves themselves,
// Pipeline/List/Subshell/CommandSubstitution nodes recurse into their
// children, and a SimpleCommand also contributes the leaves of every
// command substitution embedded in its argv.
func Flatten(stmt Statement) []Statement {
	switch s := stmt.(type) {
	case *shellast.SimpleCommand:
		out := []Statement{s}
		for _, sub := range s.EmbeddedSubstitutions {
			out = append(out, Flatten(sub)...)
		}
		return out
	case *shellast.Pipeline:
		var out []Statement
		for _, stage := range s.Stages {
			out = append(out, Flatten(stage)...)
		}
		return out
	case *shellast.List:
		out := Flatten(s.First)
		for _, item := range s.Rest {
			out = append(out, Flatten(item.Stmt)...)
		}
		return out
	case *shellast.Subshell:
		return Flatten(s.Inner)
	case *shellast.CommandSubstitution:
		return Flatten(s.Inner)
	default:
		return []Statement{stmt}
	}
}

func collectPipelines(stmt Statement) []*shellast.Pipeline {
	var out []*shellast.Pipeline
	switch s := stmt.(type) {
	case *shellast.Pipeline:
		out = append(out, s)
		for _, stage := range s.Stages {
			out = append(out, collectPipelines(stage)...)
		}
	case *shellast.List:
		out = append(out, collectPipelines(s.First)...)
		for _, item := range s.Rest {
			out = append(out, collectPipelines(item.Stmt)...)
		}
	case *shellast.Subshell:
		out = append(out, collectPipelines(s.Inner)...)
	case *shellast.CommandSubstitution:
		out = append(out, collectPipelines(s.Inner)...)
	case *shellast.SimpleCommand:
		for _, sub := range s.EmbeddedSubstitutions {
			out = append(out, collectPipelines(sub)...)
		}
	}
	return out
}

// combine folds a new leaf or pipeline result into the running worst
// result by strict decision severity, preferring whichever of two equally
// severe results carries a non-empty reason.
func combine(worst, next PolicyResult) PolicyResult {
	if next.Decision > worst.Decision {
		return next
	}
	if next.Decision < worst.Decision {
		return worst
	}
	if worst.Reason == "" && next.Reason != "" {
		return next
	}
	return worst
}

// Evaluate walks stmt and returns the combined, most-restrictive decision
// across every pipeline-shaped rule and every leaf command, including the
// inner commands of transparent wrappers (timeout, env, nice, ...) and
// task-runner invocations (uv run, poetry run, ...), which are unwrapped
// so the rules and allowlist see what actually executes.
func Evaluate(stmt Statement, cfg *RulesConfig) PolicyResult {
	best := PolicyResult{Decision: Allow}

	for _, p := range collectPipelines(stmt) {
		for _, rule := range cfg.Rules {
			if rule.Matcher.Pipeline == nil || rule.Level > cfg.SafetyLevel {
				continue
			}
			if MatchesPipeline(p, *rule.Matcher.Pipeline) {
				best = combine(best, PolicyResult{
					Decision: rule.Decision,
					RuleID:   rule.ID,
					HasRule:  true,
					Reason:   rule.Reason,
				})
			}
		}
	}

	leaves := Flatten(stmt)

	var originals []*shellast.SimpleCommand
	var extra []Statement
	unwrapped := map[*shellast.SimpleCommand]bool{}
	for _, leaf := range leaves {
		sc, ok := leaf.(*shellast.SimpleCommand)
		if !ok {
			continue
		}
		originals = append(originals, sc)
		inner := wrapper.ExtractInner(sc)
		runnerInner := wrapper.ExtractRunnerInner(sc)
		if len(inner) > 0 || len(runnerInner) > 0 {
			unwrapped[sc] = true
		}
		extra = append(extra, inner...)
		extra = append(extra, runnerInner...)
	}

	allAllowlisted := true

	for _, leaf := range leaves {
		res, allowlisted := evaluateLeaf(leaf, cfg)
		// A wrapper/task-runner command's own verdict doesn't gate the
		// default-decision fallback: its unwrapped inner leaves, evaluated
		// below, carry the real signal about what actually executes.
		if sc, ok := leaf.(*shellast.SimpleCommand); !ok || !unwrapped[sc] {
			if !allowlisted {
				allAllowlisted = false
			}
		}
		best = combine(best, res)
	}

	for _, leaf := range extra {
		res, allowlisted := evaluateLeaf(leaf, cfg)
		if !allowlisted {
			if sc, ok := leaf.(*shellast.SimpleCommand); ok && IsCoveredByWrapperEntry(sc, originals, cfg) {
				allowlisted = true
				if res.Reason == "" {
					res.Reason = "covered by wrapper allowlist entry"
				}
			}
		}
		if !allowlisted {
			allAllowlisted = false
		}
		best = combine(best, res)
	}

	if best.Decision == Allow && !best.HasRule && !allAllowlisted {
		best = PolicyResult{Decision: cfg.DefaultDecision, Reason: "No matching rule; using default decision"}
	}

	return best
}

// evaluateLeaf judges a single leaf: every matching rule is scanned and the
// most severe decision wins (mirroring the pipeline-rule loop in Evaluate),
// then the allowlist, then a bare allow with no supporting evidence. The
// bool return reports whether the allow (if any) came from the allowlist
// rather than from that unsupported fallback, which Evaluate uses to
// decide whether the default decision should override a bare allow.
func evaluateLeaf(leaf Statement, cfg *RulesConfig) (PolicyResult, bool) {
	switch s := leaf.(type) {
	case *shellast.Opaque:
		return PolicyResult{Decision: Ask, Reason: "Unrecognized command structure"}, false
	case *shellast.Empty:
		return PolicyResult{Decision: Allow}, true
	case *shellast.SimpleCommand:
		result := PolicyResult{Decision: Allow}
		matched := false
		for _, rule := range cfg.Rules {
			if rule.Matcher.Command == nil && rule.Matcher.Redirect == nil {
				continue
			}
			if rule.Level > cfg.SafetyLevel {
				continue
			}
			if MatchesRule(s, rule.Matcher) {
				matched = true
				result = combine(result, PolicyResult{
					Decision: rule.Decision,
					RuleID:   rule.ID,
					HasRule:  true,
					Reason:   rule.Reason,
				})
			}
		}
		if matched {
			return result, true
		}
		if IsAllowlisted(s, cfg) {
			reason := FindAllowlistReason(s, cfg)
			if reason == "" {
				reason = "allowlisted"
			}
			return PolicyResult{Decision: Allow, Reason: reason}, true
		}
		return PolicyResult{Decision: Allow}, false
	default:
		return PolicyResult{Decision: Allow}, true
	}
}
