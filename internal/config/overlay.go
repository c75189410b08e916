package config

import "github.com/gzhole/longline/internal/policy"

// MergeOverlay folds overlay into cfg in place, tagging every allowlist
// entry and rule it contributes with source. disable_rules is applied
// before overlay.Rules are appended, so an overlay cannot disable its own
// rules by naming them.
func MergeOverlay(cfg *policy.RulesConfig, overlay ProjectConfig, source policy.RuleSource) {
	if overlay.OverrideSafetyLevel != nil {
		cfg.SafetyLevel = *overlay.OverrideSafetyLevel
	}
	if overlay.OverrideTrustLevel != nil {
		cfg.TrustLevel = *overlay.OverrideTrustLevel
	}

	if overlay.Allowlists != nil {
		for _, entry := range overlay.Allowlists.Commands {
			entry.Source = source
			cfg.Allowlists.Commands = append(cfg.Allowlists.Commands, entry)
		}
		cfg.Allowlists.Paths = append(cfg.Allowlists.Paths, overlay.Allowlists.Paths...)
	}

	if len(overlay.DisableRules) > 0 {
		disabled := make(map[string]bool, len(overlay.DisableRules))
		for _, id := range overlay.DisableRules {
			disabled[id] = true
		}
		kept := cfg.Rules[:0]
		for _, r := range cfg.Rules {
			if !disabled[r.ID] {
				kept = append(kept, r)
			}
		}
		cfg.Rules = kept
	}

	for _, rule := range overlay.Rules {
		rule.Source = source
		cfg.Rules = append(cfg.Rules, rule)
	}
}
