package config

import (
	"os"

	"github.com/gzhole/longline/internal/policy"
)

// LoadEffective builds the fully merged rules configuration for a request:
// the embedded defaults, then the global overlay (if present), then the
// project overlay discovered from cwd (if present). CLI-supplied
// safety/trust overrides are applied by the caller afterward, since they
// must win over every overlay.
func LoadEffective(cwd string) (*policy.RulesConfig, error) {
	return LoadEffectiveFrom(cwd, "")
}

// LoadEffectiveFrom is LoadEffective, but when explicitPath is non-empty it
// replaces the embedded defaults as the base rules configuration (either a
// monolithic rules file or a manifest, per LoadRules). The global and
// project overlays still apply on top, so --config lets a caller swap the
// base rule set without losing per-project customization.
func LoadEffectiveFrom(cwd, explicitPath string) (*policy.RulesConfig, error) {
	var cfg *policy.RulesConfig
	var err error
	if explicitPath != "" {
		cfg, err = LoadRules(explicitPath)
	} else {
		cfg, err = LoadEmbeddedRules()
	}
	if err != nil {
		return nil, err
	}

	home, err := os.UserHomeDir()
	if err == nil {
		if global, err := LoadGlobalConfig(home); err != nil {
			return nil, err
		} else if global != nil {
			MergeOverlay(cfg, *global, policy.SourceGlobal)
		}
	}

	if project, err := LoadProjectConfig(cwd); err != nil {
		return nil, err
	} else if project != nil {
		MergeOverlay(cfg, *project, policy.SourceProject)
	}

	return cfg, nil
}
