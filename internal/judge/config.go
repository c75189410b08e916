package judge

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

func defaultConfigPath() string {
	home := os.Getenv("HOME")
	if home == "" {
		home = "/tmp"
	}
	return filepath.Join(home, ".config", "longline", "ai-judge.yaml")
}

// LoadConfig reads the judge configuration from its default location
// ($HOME/.config/longline/ai-judge.yaml). A missing file is not an error: it
// yields DefaultConfig, leaving judge mode opt-in and inert. A malformed
// file is logged to stderr and also falls back to DefaultConfig, unlike a
// malformed rules overlay, which is a fatal configuration error.
func LoadConfig() Config {
	path := defaultConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "longline: failed to read ai-judge config: %v\n", err)
		}
		return DefaultConfig()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "longline: failed to parse ai-judge config: %v\n", err)
		return DefaultConfig()
	}
	return cfg
}
