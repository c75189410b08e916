package extract

import (
	"os"
	"path/filepath"
	"strings"
)

// readSafeCodeFile reads path (resolved against cwd if relative) as a code
// file, refusing anything outside cwd or the system temp directory, and
// anything too large to hand to the judge.
func readSafeCodeFile(path, cwd string) (string, bool) {
	expanded, ok := expandTilde(path)
	if !ok {
		return "", false
	}

	cwdRoot, err := filepath.EvalSymlinks(cwd)
	if err != nil {
		return "", false
	}

	candidate := expanded
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(cwdRoot, candidate)
	}

	candidate, err = filepath.EvalSymlinks(candidate)
	if err != nil {
		return "", false
	}

	if !isUnderAllowedRoot(candidate, cwdRoot) && !isUnderTempRoot(candidate) {
		return "", false
	}

	info, err := os.Stat(candidate)
	if err != nil || !info.Mode().IsRegular() || info.Size() > MaxExtractedCodeBytes {
		return "", false
	}

	bytes, err := os.ReadFile(candidate)
	if err != nil || len(bytes) > MaxExtractedCodeBytes {
		return "", false
	}
	return string(bytes), true
}

func isUnderAllowedRoot(path, root string) bool {
	return isUnderRoot(path, root)
}

func isUnderTempRoot(path string) bool {
	if isUnderRoot(path, "/tmp") {
		return true
	}
	if tmp, err := filepath.EvalSymlinks("/tmp"); err == nil && isUnderRoot(path, tmp) {
		return true
	}
	if tmpdir := os.Getenv("TMPDIR"); tmpdir != "" {
		if resolved, err := filepath.EvalSymlinks(tmpdir); err == nil && isUnderRoot(path, resolved) {
			return true
		}
	}
	return false
}

func isUnderRoot(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel))
}

func expandTilde(path string) (string, bool) {
	if path == "~" {
		home := os.Getenv("HOME")
		if home == "" {
			return "", false
		}
		return home, true
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		home := os.Getenv("HOME")
		if home == "" {
			return "", false
		}
		return filepath.Join(home, rest), true
	}
	return path, true
}
