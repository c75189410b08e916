// Package logger writes the JSON-lines audit trail of every decision
// longline makes: one line per evaluated command, rotated by size so the
// log never grows unbounded.
package logger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gzhole/longline/internal/policy"
	"github.com/gzhole/longline/internal/redact"
)

const (
	defaultMaxLogFileBytes = 25 * 1024 * 1024
	maxRotatedLogFiles     = 10
	logMaxBytesEnv         = "LONGLINE_LOG_MAX_BYTES"
)

// Entry is one audit record. Command is redacted before it is ever written
// to disk.
type Entry struct {
	Version          string          `json:"version"`
	Timestamp        string          `json:"ts"`
	Tool             string          `json:"tool"`
	Cwd              string          `json:"cwd"`
	Command          string          `json:"command"`
	Decision         policy.Decision `json:"decision"`
	OriginalDecision *policy.Decision `json:"original_decision,omitempty"`
	Overridden       bool            `json:"overridden,omitempty"`
	MatchedRules     []string        `json:"matched_rules"`
	Reason           string          `json:"reason,omitempty"`
	ParseOK          bool            `json:"parse_ok"`
	SessionID        string          `json:"session_id,omitempty"`
}

// version is stamped into every entry; overridden in tests, set from the
// build at the cmd/longline entrypoint in production.
var version = "dev"

// SetVersion records the binary version future log entries are stamped with.
func SetVersion(v string) { version = v }

// NewEntry builds an Entry for one decision, redacting the command before
// it is stored.
func NewEntry(tool, cwd, command string, decision policy.Decision, matchedRules []string, reason string, parseOK bool, sessionID string) Entry {
	if matchedRules == nil {
		matchedRules = []string{}
	}
	return Entry{
		Version:      version,
		Timestamp:    time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Tool:         tool,
		Cwd:          cwd,
		Command:      redact.Redact(command),
		Decision:     decision,
		MatchedRules: matchedRules,
		Reason:       reason,
		ParseOK:      parseOK,
		SessionID:    sessionID,
	}
}

// WithOverride records that an ask-on-deny policy override changed the
// decision actually enforced; original is what the rules engine produced.
func (e Entry) WithOverride(original policy.Decision) Entry {
	e.OriginalDecision = &original
	e.Overridden = true
	return e
}

// DefaultLogPath returns ~/.claude/hooks-logs/longline.jsonl, falling back
// to /tmp if HOME is unset.
func DefaultLogPath() string {
	home := os.Getenv("HOME")
	if home == "" {
		home = "/tmp"
	}
	return filepath.Join(home, ".claude", "hooks-logs", "longline.jsonl")
}

func configuredMaxLogFileBytes() int64 {
	raw := os.Getenv(logMaxBytesEnv)
	if raw == "" {
		return defaultMaxLogFileBytes
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return defaultMaxLogFileBytes
	}
	return n
}

func rotatedLogPath(path string, index int) string {
	return path + "." + strconv.Itoa(index)
}

// rotateLogs shifts path.1 -> path.2 -> ... -> path.keepFiles (dropping the
// oldest), then renames path itself to path.1.
func rotateLogs(path string, keepFiles int) error {
	if keepFiles == 0 {
		return nil
	}

	oldest := rotatedLogPath(path, keepFiles)
	if _, err := os.Stat(oldest); err == nil {
		if err := os.Remove(oldest); err != nil {
			return err
		}
	}

	for index := keepFiles - 1; index >= 1; index-- {
		src := rotatedLogPath(path, index)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		dst := rotatedLogPath(path, index+1)
		if err := os.Rename(src, dst); err != nil {
			return err
		}
	}

	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, rotatedLogPath(path, 1)); err != nil {
			return err
		}
	}

	return nil
}

func maybeRotateBeforeAppend(path string, nextEntryLen int, maxBytes int64, keepFiles int) error {
	if maxBytes <= 0 {
		return nil
	}

	var currentBytes int64
	if info, err := os.Stat(path); err == nil {
		currentBytes = info.Size()
	} else if !os.IsNotExist(err) {
		return err
	}

	projected := currentBytes + int64(nextEntryLen) + 1
	if projected > maxBytes {
		return rotateLogs(path, keepFiles)
	}
	return nil
}

// LogDecision appends entry to the default log path, rotating first if the
// write would exceed the configured size limit. Failures are reported to
// stderr; logging never fails the calling decision.
func LogDecision(entry Entry) {
	LogDecisionTo(entry, DefaultLogPath())
}

// LogDecisionTo appends entry to path, for tests and callers that want an
// explicit location.
func LogDecisionTo(entry Entry, path string) {
	logDecisionWithRotation(entry, path, configuredMaxLogFileBytes(), maxRotatedLogFiles)
}

func logDecisionWithRotation(entry Entry, path string, maxBytes int64, keepFiles int) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "longline: failed to create log directory: %v\n", err)
			return
		}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "longline: failed to serialize log entry: %v\n", err)
		return
	}

	if err := maybeRotateBeforeAppend(path, len(data), maxBytes, keepFiles); err != nil {
		fmt.Fprintf(os.Stderr, "longline: failed to rotate log files: %v\n", err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "longline: failed to open log file: %v\n", err)
		return
	}
	defer file.Close()

	data = append(data, '\n')
	if _, err := file.Write(data); err != nil {
		fmt.Fprintf(os.Stderr, "longline: failed to write log entry: %v\n", err)
	}
}
