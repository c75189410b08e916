// Package config discovers and merges the layered rules configuration:
// the rules compiled into the binary, an optional global overlay in the
// user's home directory, and an optional per-project overlay discovered by
// walking upward from the working directory. Each layer can only add
// allowlist entries and rules, override the safety/trust level, or disable
// rule IDs by name — it can never rewrite a rule already loaded.
package config

import "github.com/gzhole/longline/internal/policy"

// RulesManifestConfig is the top-level shape of a rules file that splits
// its content across multiple included files instead of listing
// allowlists/rules directly.
type RulesManifestConfig struct {
	Version         string             `yaml:"version"`
	DefaultDecision policy.Decision    `yaml:"default_decision"`
	SafetyLevel     policy.SafetyLevel `yaml:"safety_level"`
	TrustLevel      policy.TrustLevel  `yaml:"trust_level"`
	Include         []string           `yaml:"include"`
}

func (m *RulesManifestConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type alias RulesManifestConfig
	defaulted := alias{
		DefaultDecision: policy.Ask,
		SafetyLevel:     policy.High,
		TrustLevel:      policy.Standard,
	}
	if err := unmarshal(&defaulted); err != nil {
		return err
	}
	*m = RulesManifestConfig(defaulted)
	return nil
}

// PartialRulesConfig is the shape of one file included by a manifest: just
// the allowlist and rule entries, no version/default/safety metadata.
type PartialRulesConfig struct {
	Allowlists policy.Allowlists `yaml:"allowlists"`
	Rules      []policy.Rule     `yaml:"rules"`
}

// ProjectConfig is the shape of a global or per-project overlay file.
// Every field is optional; unset fields leave the underlying layer
// untouched.
type ProjectConfig struct {
	OverrideSafetyLevel *policy.SafetyLevel `yaml:"override_safety_level"`
	OverrideTrustLevel  *policy.TrustLevel  `yaml:"override_trust_level"`
	Allowlists          *policy.Allowlists  `yaml:"allowlists"`
	Rules               []policy.Rule       `yaml:"rules"`
	DisableRules        []string            `yaml:"disable_rules"`
}
