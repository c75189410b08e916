package judge

import (
	"testing"

	"github.com/gzhole/longline/internal/policy"
)

func TestParseResponseAllow(t *testing.T) {
	v := parseResponse("ALLOW: safe computation only")
	if v.Decision != policy.Allow {
		t.Errorf("decision = %v, want Allow", v.Decision)
	}
	if v.Reason != "ALLOW: safe computation only" {
		t.Errorf("reason = %q", v.Reason)
	}
}

func TestParseResponseAsk(t *testing.T) {
	v := parseResponse("ASK: accesses files outside cwd")
	if v.Decision != policy.Ask {
		t.Errorf("decision = %v, want Ask", v.Decision)
	}
	if v.Reason != "ASK: accesses files outside cwd" {
		t.Errorf("reason = %q", v.Reason)
	}
}

func TestParseResponseNoiseBefore(t *testing.T) {
	v := parseResponse("Loading model...\nALLOW: safe computation")
	if v.Decision != policy.Allow || v.Reason != "ALLOW: safe computation" {
		t.Errorf("got %+v", v)
	}
}

func TestParseResponseNoiseAfter(t *testing.T) {
	v := parseResponse("ASK: network access\nTokens used: 150")
	if v.Decision != policy.Ask || v.Reason != "ASK: network access" {
		t.Errorf("got %+v", v)
	}
}

func TestParseResponseUnparseable(t *testing.T) {
	v := parseResponse("something random")
	if v.Decision != policy.Ask {
		t.Errorf("decision = %v, want Ask", v.Decision)
	}
	if !containsSubstr(v.Reason, "unparseable") {
		t.Errorf("reason = %q, want to mention unparseable", v.Reason)
	}
}

func TestParseResponseEmpty(t *testing.T) {
	v := parseResponse("")
	if v.Decision != policy.Ask {
		t.Errorf("decision = %v, want Ask", v.Decision)
	}
}

func TestParseResponseWithSurroundingNoise(t *testing.T) {
	output := "OpenAI Codex v0.84.0\n--------\nALLOW: safe computation\ntokens used\n"
	v := parseResponse(output)
	if v.Decision != policy.Allow {
		t.Errorf("decision = %v, want Allow", v.Decision)
	}
}

func containsSubstr(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return substr == ""
}
