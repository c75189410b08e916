package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gzhole/longline/internal/policy"
)

func TestNewEntryDoesNotTruncateLongCommand(t *testing.T) {
	long := strings.Repeat("x", 2000)
	entry := NewEntry("Bash", "/tmp", long, policy.Allow, nil, "", true, "")
	if len(entry.Command) != 2000 {
		t.Errorf("command length = %d, want 2000", len(entry.Command))
	}
}

func TestNewEntryShortCommand(t *testing.T) {
	entry := NewEntry("Bash", "/tmp", "ls", policy.Allow, nil, "", true, "")
	if entry.Command != "ls" {
		t.Errorf("command = %q", entry.Command)
	}
	if entry.MatchedRules == nil {
		t.Error("matched rules should default to an empty slice, not nil")
	}
}

func TestEntrySerialization(t *testing.T) {
	entry := NewEntry("Bash", "/home/user", "rm -rf /", policy.Deny,
		[]string{"rm-recursive-root"}, "recursive delete at the root", true, "session-123")

	data, err := json.Marshal(entry)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"decision":"deny"`) {
		t.Errorf("missing decision field: %s", data)
	}
	if !strings.Contains(string(data), `"rm-recursive-root"`) {
		t.Errorf("missing matched rule: %s", data)
	}
	if !strings.Contains(string(data), `"session_id":"session-123"`) {
		t.Errorf("missing session id: %s", data)
	}
}

func TestWithOverrideRecordsOriginalDecision(t *testing.T) {
	entry := NewEntry("Bash", "/tmp", "rm -rf /tmp/x", policy.Deny, nil, "", true, "")
	entry = entry.WithOverride(policy.Deny)
	entry.Decision = policy.Ask

	if !entry.Overridden {
		t.Error("expected overridden = true")
	}
	if entry.OriginalDecision == nil || *entry.OriginalDecision != policy.Deny {
		t.Errorf("original decision = %v", entry.OriginalDecision)
	}
}

func TestLogDecisionToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.jsonl")

	entry := NewEntry("Bash", "/tmp", "ls", policy.Allow, nil, "", true, "")
	LogDecisionTo(entry, path)

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), `"command":"ls"`) {
		t.Errorf("log missing command: %s", content)
	}
	if !strings.Contains(string(content), `"decision":"allow"`) {
		t.Errorf("log missing decision: %s", content)
	}
}

func TestLogFilePermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "secure.jsonl")

	LogDecisionTo(NewEntry("Bash", "/tmp", "ls", policy.Allow, nil, "", true, ""), path)

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("permissions = %04o, want 0600", perm)
	}
}

func TestRotationWhenProjectedSizeExceedsMax(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.jsonl")

	first := NewEntry("Bash", "/tmp", "first-command", policy.Allow, nil, "", true, "")
	second := NewEntry("Bash", "/tmp", "second-command", policy.Allow, nil, "", true, "")

	firstJSON, err := json.Marshal(first)
	if err != nil {
		t.Fatal(err)
	}
	maxBytes := int64(len(firstJSON)) + 5

	logDecisionWithRotation(first, path, maxBytes, 10)
	logDecisionWithRotation(second, path, maxBytes, 10)

	current, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	rotated, err := os.ReadFile(rotatedLogPath(path, 1))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(current), "second-command") {
		t.Errorf("current log should hold the newest entry: %s", current)
	}
	if !strings.Contains(string(rotated), "first-command") {
		t.Errorf("rotated log should hold the displaced entry: %s", rotated)
	}
}

func TestRotationKeepsMostRecentFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.jsonl")

	for i := 1; i <= 12; i++ {
		entry := NewEntry("Bash", "/tmp", "cmd-"+strconv.Itoa(i), policy.Allow, nil, "", true, "")
		logDecisionWithRotation(entry, path, 1, 10)
	}

	for index := 1; index <= 10; index++ {
		if _, err := os.Stat(rotatedLogPath(path, index)); err != nil {
			t.Errorf("expected rotated file at index %d to exist", index)
		}
	}
	if _, err := os.Stat(rotatedLogPath(path, 11)); err == nil {
		t.Error("rotated file at index 11 should not exist; only 10 generations are kept")
	}

	current, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(current), "cmd-12") {
		t.Errorf("current log should hold the final entry: %s", current)
	}
}
