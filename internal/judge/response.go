package judge

import (
	"strings"

	"github.com/gzhole/longline/internal/policy"
)

// parseResponse scans the judge subprocess's stdout line by line for the
// first ALLOW: or ASK: prefixed line and returns it as the verdict.
func parseResponse(output string) Verdict {
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "ALLOW:") {
			return Verdict{Decision: policy.Allow, Reason: trimmed}
		}
		if strings.HasPrefix(trimmed, "ASK:") {
			return Verdict{Decision: policy.Ask, Reason: trimmed}
		}
	}
	return Verdict{Decision: policy.Ask, Reason: "AI judge: unparseable response"}
}
