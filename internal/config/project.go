package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const overlayFileName = "longline.yaml"

// FindProjectRoot walks upward from cwd looking for a directory containing
// .git (a directory, or a file, for worktrees) or a .claude directory.
// Returns "" if no such ancestor exists.
func FindProjectRoot(cwd string) string {
	current := cwd
	for {
		if _, err := os.Stat(filepath.Join(current, ".git")); err == nil {
			return current
		}
		if info, err := os.Stat(filepath.Join(current, ".claude")); err == nil && info.IsDir() {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return ""
		}
		current = parent
	}
}

// LoadProjectConfig loads <project root>/.claude/longline.yaml, if a
// project root and that file both exist. Returns (nil, nil) when there is
// nothing to load.
func LoadProjectConfig(cwd string) (*ProjectConfig, error) {
	root := FindProjectRoot(cwd)
	if root == "" {
		return nil, nil
	}
	return loadOverlayFile(filepath.Join(root, ".claude", overlayFileName))
}

// LoadGlobalConfig loads <home>/.config/longline/longline.yaml, if it
// exists. Returns (nil, nil) when the file is absent.
func LoadGlobalConfig(home string) (*ProjectConfig, error) {
	return loadOverlayFile(filepath.Join(home, ".config", "longline", overlayFileName))
}

func loadOverlayFile(path string) (*ProjectConfig, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	var overlay ProjectConfig
	if err := dec.Decode(&overlay); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	return &overlay, nil
}
