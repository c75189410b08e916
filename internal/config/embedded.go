package config

import (
	"embed"
	"fmt"

	"github.com/gzhole/longline/internal/policy"
	"gopkg.in/yaml.v3"
)

//go:embed rules
var embeddedRules embed.FS

const embeddedRulesDir = "rules"
const embeddedManifestName = "rules.yaml"

// LoadEmbeddedRules loads the rules manifest compiled into the binary and
// resolves its include: list against the embedded filesystem.
func LoadEmbeddedRules() (*policy.RulesConfig, error) {
	content, err := embeddedRules.ReadFile(embeddedRulesDir + "/" + embeddedManifestName)
	if err != nil {
		return nil, fmt.Errorf("config: embedded %s not found: %w", embeddedManifestName, err)
	}

	var manifest RulesManifestConfig
	if err := yaml.Unmarshal(content, &manifest); err != nil {
		return nil, fmt.Errorf("config: failed to parse embedded %s: %w", embeddedManifestName, err)
	}

	cfg := &policy.RulesConfig{
		Version:         manifest.Version,
		DefaultDecision: manifest.DefaultDecision,
		SafetyLevel:     manifest.SafetyLevel,
		TrustLevel:      manifest.TrustLevel,
	}

	for _, fileName := range manifest.Include {
		fileContent, err := embeddedRules.ReadFile(embeddedRulesDir + "/" + fileName)
		if err != nil {
			return nil, fmt.Errorf("config: embedded file %q not found: %w", fileName, err)
		}
		var partial PartialRulesConfig
		if err := yaml.Unmarshal(fileContent, &partial); err != nil {
			return nil, fmt.Errorf("config: failed to parse embedded file %s: %w", fileName, err)
		}
		appendPartial(cfg, partial)
	}

	return cfg, nil
}
