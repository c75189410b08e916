package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/gzhole/longline/internal/logger"
	"github.com/gzhole/longline/internal/policy"
)

func runLog(t *testing.T, home string, flags func()) string {
	t.Helper()
	t.Setenv("HOME", home)
	if flags != nil {
		flags()
	}
	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)
	if err := logCommand(cmd, nil); err != nil {
		t.Fatalf("logCommand returned error: %v", err)
	}
	return out.String()
}

func seedLog(t *testing.T, home string, entries ...logger.Entry) {
	t.Helper()
	path := filepath.Join(home, ".claude", "hooks-logs", "longline.jsonl")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		logger.LogDecisionTo(e, path)
	}
}

func resetLogFlags() {
	logFilterDecision = ""
	logLast = 0
	logSummary = false
}

func TestLogCommandNoFileReportsEmpty(t *testing.T) {
	resetLogFlags()
	got := runLog(t, t.TempDir(), nil)
	if !strings.Contains(got, "No audit log entries found") {
		t.Errorf("output = %q", got)
	}
}

func TestLogCommandPrintsEntries(t *testing.T) {
	resetLogFlags()
	home := t.TempDir()
	seedLog(t, home,
		logger.NewEntry("Bash", "/tmp", "ls -la", policy.Allow, nil, "", true, "s1"),
		logger.NewEntry("Bash", "/tmp", "rm -rf /", policy.Deny, []string{"rm-recursive-root"}, "recursive delete of root", true, "s1"),
	)
	got := runLog(t, home, nil)
	if !strings.Contains(got, "rm -rf /") {
		t.Errorf("output missing denied command: %q", got)
	}
	if !strings.Contains(got, "rm-recursive-root") {
		t.Errorf("output missing matched rule: %q", got)
	}
}

func TestLogCommandFiltersByDecision(t *testing.T) {
	resetLogFlags()
	home := t.TempDir()
	seedLog(t, home,
		logger.NewEntry("Bash", "/tmp", "ls -la", policy.Allow, nil, "", true, "s1"),
		logger.NewEntry("Bash", "/tmp", "rm -rf /", policy.Deny, []string{"rm-recursive-root"}, "recursive delete of root", true, "s1"),
	)
	got := runLog(t, home, func() { logFilterDecision = "deny" })
	if strings.Contains(got, "ls -la") {
		t.Errorf("filtered output should not include allowed entries: %q", got)
	}
	if !strings.Contains(got, "rm -rf /") {
		t.Errorf("filtered output missing denied entry: %q", got)
	}
}

func TestLogCommandSummary(t *testing.T) {
	resetLogFlags()
	home := t.TempDir()
	seedLog(t, home,
		logger.NewEntry("Bash", "/tmp", "ls -la", policy.Allow, nil, "", true, "s1"),
		logger.NewEntry("Bash", "/tmp", "rm -rf /", policy.Deny, []string{"rm-recursive-root"}, "recursive delete of root", true, "s1"),
	)
	got := runLog(t, home, func() { logSummary = true })
	if !strings.Contains(got, "Total events:  2") {
		t.Errorf("summary missing total count: %q", got)
	}
}
