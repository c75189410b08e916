package policy

import (
	"path/filepath"
	"strings"

	"github.com/gzhole/longline/internal/shellast"
)

func basename(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// IsAllowlisted reports whether a flattened leaf needs no further rule
// match: an Empty leaf is always fine, a SimpleCommand is fine if it has
// a matching allowlist entry or is a bare version check, anything else
// (Opaque) is not.
func IsAllowlisted(leaf Statement, cfg *RulesConfig) bool {
	switch s := leaf.(type) {
	case *shellast.SimpleCommand:
		if _, ok := FindAllowlistMatch(s, cfg); ok {
			return true
		}
		return IsVersionCheck(s)
	case *shellast.Empty:
		return true
	default:
		return false
	}
}

// IsVersionCheck reports whether cmd is a bare "<name> --version" or
// "<name> -V" invocation, which is safe regardless of what name is.
func IsVersionCheck(cmd *shellast.SimpleCommand) bool {
	return len(cmd.Argv) == 1 && (cmd.Argv[0] == "--version" || cmd.Argv[0] == "-V")
}

// StripGitGlobalCFlag removes leading "-C <path>" pairs from a git
// invocation's argv, so "git -C /repo status" allowlist-matches the same
// way "git status" does. It stops at the first token that is not a -C
// flag, or at a "--" terminator.
func StripGitGlobalCFlag(argv []string) []string {
	i := 0
	for i < len(argv) {
		if argv[i] == "--" {
			break
		}
		if argv[i] == "-C" && i+1 < len(argv) {
			i += 2
			continue
		}
		break
	}
	return argv[i:]
}

// NormalizeArg reduces a path-shaped argument to its basename for matching
// purposes, but only when doing so is unambiguous: the argument must
// contain a "/", must not be absolute, and must not contain a ".."
// component. Anything else (a bare word, an absolute path, a traversal)
// is returned unchanged.
func NormalizeArg(arg string) string {
	if !strings.Contains(arg, "/") {
		return arg
	}
	if filepath.IsAbs(arg) {
		return arg
	}
	for _, part := range strings.Split(arg, "/") {
		if part == ".." {
			return arg
		}
	}
	return filepath.Base(arg)
}

// ArgsMatchPrefix reports whether actual's leading arguments match
// required one-for-one, after normalization. An empty required list
// always matches.
func ArgsMatchPrefix(required, actual []string) bool {
	if len(required) == 0 {
		return true
	}
	if len(required) > len(actual) {
		return false
	}
	for i, want := range required {
		if NormalizeArg(actual[i]) != NormalizeArg(want) {
			return false
		}
	}
	return true
}

func matchEntry(cmd *shellast.SimpleCommand, entry AllowlistEntry) bool {
	parts := strings.Fields(entry.Command)
	if len(parts) == 0 {
		return false
	}
	if basename(cmd.Name) != parts[0] {
		return false
	}
	argv := cmd.Argv
	if parts[0] == "git" {
		argv = StripGitGlobalCFlag(argv)
	}
	return ArgsMatchPrefix(parts[1:], argv)
}

// FindAllowlistMatch finds the first allowlist entry matching cmd whose
// trust requirement is at or below the configured trust level.
func FindAllowlistMatch(cmd *shellast.SimpleCommand, cfg *RulesConfig) (*AllowlistEntry, bool) {
	for i := range cfg.Allowlists.Commands {
		e := &cfg.Allowlists.Commands[i]
		if e.Trust > cfg.TrustLevel {
			continue
		}
		if matchEntry(cmd, *e) {
			return e, true
		}
	}
	return nil, false
}

// FindAllowlistReason finds the first allowlist entry matching cmd
// regardless of trust level, for surfacing a reason string even when the
// entry itself was filtered out of FindAllowlistMatch.
func FindAllowlistReason(cmd *shellast.SimpleCommand, cfg *RulesConfig) string {
	for _, e := range cfg.Allowlists.Commands {
		if matchEntry(cmd, e) {
			if e.Reason != "" {
				return e.Reason
			}
			return "allowlisted"
		}
	}
	return ""
}

// IsCoveredByWrapperEntry reports whether leaf, a command synthesized by
// unwrapping one of originals, is covered by an allowlist entry that
// already matched one of those original (wrapped) commands. Coverage only
// applies when the matched entry names more than one word ("uv run
// yamllint") and leaf's command name is the entry's last word; a bare
// single-word entry ("ls") never covers an unwrapped inner command.
func IsCoveredByWrapperEntry(leaf *shellast.SimpleCommand, originals []*shellast.SimpleCommand, cfg *RulesConfig) bool {
	for _, orig := range originals {
		entry, ok := FindAllowlistMatch(orig, cfg)
		if !ok {
			continue
		}
		parts := strings.Fields(entry.Command)
		if len(parts) <= 1 {
			continue
		}
		if parts[len(parts)-1] == basename(leaf.Name) {
			return true
		}
	}
	return false
}
