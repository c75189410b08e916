package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gzhole/longline/internal/logger"
)

var (
	logFilterDecision string
	logLast           int
	logSummary        bool
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View and filter the audit log",
	Long: `View longline's audit log with filtering and summary options.

Examples:
  longline log                   # Show all entries
  longline log --last 20         # Show last 20 entries
  longline log --decision deny   # Show only denied commands
  longline log --summary         # Show session summary statistics`,
	RunE: logCommand,
}

func init() {
	logCmd.Flags().StringVar(&logFilterDecision, "decision", "", "Filter by decision (allow, ask, deny)")
	logCmd.Flags().IntVar(&logLast, "last", 0, "Show last N entries")
	logCmd.Flags().BoolVar(&logSummary, "summary", false, "Show summary statistics")
	rootCmd.AddCommand(logCmd)
}

func logCommand(cmd *cobra.Command, args []string) error {
	path := logger.DefaultLogPath()

	entries, err := readAuditLog(path)
	if err != nil {
		return fmt.Errorf("failed to read audit log: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No audit log entries found.")
		return nil
	}

	filtered := filterEntries(entries)

	if logLast > 0 && logLast < len(filtered) {
		filtered = filtered[len(filtered)-logLast:]
	}

	if logSummary {
		printSummary(cmd, entries, filtered)
		return nil
	}

	printEntries(cmd, filtered)
	return nil
}

// rawEntry mirrors logger.Entry's JSON shape for reading back, since
// policy.Decision only carries a custom MarshalJSON and decoding the
// decision through it would require a matching UnmarshalJSON; the log
// viewer only needs the string fields, so it decodes into a looser shape.
type rawEntry struct {
	Timestamp    string   `json:"ts"`
	Tool         string   `json:"tool"`
	Cwd          string   `json:"cwd"`
	Command      string   `json:"command"`
	Decision     string   `json:"decision"`
	Overridden   bool     `json:"overridden"`
	MatchedRules []string `json:"matched_rules"`
	Reason       string   `json:"reason"`
	ParseOK      bool     `json:"parse_ok"`
	SessionID    string   `json:"session_id"`
}

func readAuditLog(path string) ([]rawEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var entries []rawEntry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		var e rawEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			continue // skip malformed lines
		}
		entries = append(entries, e)
	}
	return entries, scanner.Err()
}

func filterEntries(entries []rawEntry) []rawEntry {
	if logFilterDecision == "" {
		return entries
	}
	var filtered []rawEntry
	for _, e := range entries {
		if strings.EqualFold(e.Decision, logFilterDecision) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

func printEntries(cmd *cobra.Command, entries []rawEntry) {
	out := cmd.OutOrStdout()
	for _, e := range entries {
		icon := decisionIcon(e.Decision)
		overriddenStr := ""
		if e.Overridden {
			overriddenStr = " [overridden]"
		}

		fmt.Fprintf(out, "%s %s %s%s\n", icon, formatTimestamp(e.Timestamp), e.Command, overriddenStr)

		if len(e.MatchedRules) > 0 {
			fmt.Fprintf(out, "     Rules: %s\n", strings.Join(e.MatchedRules, ", "))
		}
		if e.Reason != "" {
			fmt.Fprintf(out, "     Reason: %s\n", e.Reason)
		}
		if !e.ParseOK {
			fmt.Fprintln(out, "     Parse: failed")
		}
		fmt.Fprintf(out, "     Cwd: %s\n", e.Cwd)
		fmt.Fprintln(out)
	}
}

func printSummary(cmd *cobra.Command, all []rawEntry, filtered []rawEntry) {
	out := cmd.OutOrStdout()
	counts := map[string]int{}
	overriddenCount := 0
	parseFailures := 0

	for _, e := range all {
		counts[strings.ToLower(e.Decision)]++
		if e.Overridden {
			overriddenCount++
		}
		if !e.ParseOK {
			parseFailures++
		}
	}

	fmt.Fprintln(out, "longline audit summary")
	fmt.Fprintf(out, "  Total events:  %d\n", len(all))
	fmt.Fprintf(out, "  allow:         %d\n", counts["allow"])
	fmt.Fprintf(out, "  ask:           %d\n", counts["ask"])
	fmt.Fprintf(out, "  deny:          %d\n", counts["deny"])
	fmt.Fprintf(out, "  overridden:    %d\n", overriddenCount)
	fmt.Fprintf(out, "  parse failed:  %d\n", parseFailures)

	if len(all) > 0 {
		fmt.Fprintf(out, "  first event:   %s\n", formatTimestamp(all[0].Timestamp))
		fmt.Fprintf(out, "  last event:    %s\n", formatTimestamp(all[len(all)-1].Timestamp))
	}

	var denied []rawEntry
	for _, e := range all {
		if strings.EqualFold(e.Decision, "deny") {
			denied = append(denied, e)
		}
	}
	if len(denied) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  Recent denials:")
		limit := len(denied)
		if limit > 10 {
			limit = 10
		}
		for _, e := range denied[len(denied)-limit:] {
			fmt.Fprintf(out, "    %s %s\n", formatTimestamp(e.Timestamp), e.Command)
		}
	}
}

func decisionIcon(decision string) string {
	switch strings.ToLower(decision) {
	case "deny":
		return "deny:"
	case "ask":
		return "ask: "
	case "allow":
		return "allow:"
	default:
		return "?:"
	}
}

func formatTimestamp(ts string) string {
	t, err := time.Parse("2006-01-02T15:04:05.000Z07:00", ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
