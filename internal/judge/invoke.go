package judge

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/gzhole/longline/internal/policy"
)

// Evaluate asks the configured judge command to assess language/code
// running in cwd, with an optional context note, using the strict prompt.
func Evaluate(cfg Config, language, code, cwd, contextNote string) Verdict {
	return evaluateWithPrompt(cfg, buildPrompt(language, code, cwd, contextNote))
}

// EvaluateLenient is Evaluate with the lenient prompt variant.
func EvaluateLenient(cfg Config, language, code, cwd, contextNote string) Verdict {
	return evaluateWithPrompt(cfg, buildPromptLenient(language, code, cwd, contextNote))
}

func evaluateWithPrompt(cfg Config, prompt string) Verdict {
	parts := strings.Fields(cfg.Command)
	if len(parts) == 0 {
		return Verdict{Decision: policy.Ask, Reason: "AI judge error: command is empty"}
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	args := append(append([]string{}, parts[1:]...), prompt)
	out, err := exec.CommandContext(ctx, parts[0], args...).Output()
	if ctx.Err() == context.DeadlineExceeded {
		return Verdict{Decision: policy.Ask, Reason: fmt.Sprintf("AI judge error: timed out after %ds", cfg.Timeout)}
	}
	if err != nil {
		return Verdict{Decision: policy.Ask, Reason: fmt.Sprintf("AI judge error: %v", err)}
	}

	return parseResponse(string(out))
}
