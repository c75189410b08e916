package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gzhole/longline/internal/policy"
	"gopkg.in/yaml.v3"
)

// isRulesManifest reports whether content looks like a manifest file (it
// declares an include: list) rather than a monolithic rules file.
func isRulesManifest(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "include:" || strings.HasPrefix(trimmed, "include:") {
			return true
		}
	}
	return false
}

// LoadRules loads a rules file from disk, transparently following its
// include: list if it is a manifest.
func LoadRules(path string) (*policy.RulesConfig, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read rules file %s: %w", path, err)
	}
	if isRulesManifest(string(content)) {
		return loadManifest(path, content)
	}
	var cfg policy.RulesConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse rules file %s: %w", path, err)
	}
	return &cfg, nil
}

func loadManifest(manifestPath string, content []byte) (*policy.RulesConfig, error) {
	var manifest RulesManifestConfig
	if err := yaml.Unmarshal(content, &manifest); err != nil {
		return nil, fmt.Errorf("config: failed to parse manifest %s: %w", manifestPath, err)
	}

	dir := filepath.Dir(manifestPath)
	cfg := &policy.RulesConfig{
		Version:         manifest.Version,
		DefaultDecision: manifest.DefaultDecision,
		SafetyLevel:     manifest.SafetyLevel,
		TrustLevel:      manifest.TrustLevel,
	}

	for _, fileName := range manifest.Include {
		partial, err := loadPartialFile(filepath.Join(dir, fileName))
		if err != nil {
			return nil, err
		}
		appendPartial(cfg, partial)
	}

	return cfg, nil
}

func loadPartialFile(path string) (PartialRulesConfig, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return PartialRulesConfig{}, fmt.Errorf("config: failed to read included file %s: %w", path, err)
	}
	var partial PartialRulesConfig
	if err := yaml.Unmarshal(content, &partial); err != nil {
		return PartialRulesConfig{}, fmt.Errorf("config: failed to parse included file %s: %w", path, err)
	}
	return partial, nil
}

func appendPartial(cfg *policy.RulesConfig, partial PartialRulesConfig) {
	cfg.Allowlists.Commands = append(cfg.Allowlists.Commands, partial.Allowlists.Commands...)
	cfg.Allowlists.Paths = append(cfg.Allowlists.Paths, partial.Allowlists.Paths...)
	cfg.Rules = append(cfg.Rules, partial.Rules...)
}
