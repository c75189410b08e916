// Package policy evaluates a parsed shell statement against a rules
// configuration and produces a decision: allow, ask, or deny. Evaluation
// walks the statement tree to its leaf commands, checks pipeline-shaped
// rules first, then judges each leaf by rule match or allowlist membership,
// and combines every leaf's verdict by taking the most restrictive one.
package policy

import (
	"fmt"

	"github.com/gzhole/longline/internal/shellast"
)

// Statement is the tree evaluate() walks; it is shellast's algebra, not a
// policy-owned type.
type Statement = shellast.Statement

// Decision is the outcome of evaluating a command: Allow, Ask, or Deny, in
// increasing order of restriction. Decisions combine by taking the max.
type Decision int

const (
	Allow Decision = iota
	Ask
	Deny
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	default:
		return "ask"
	}
}

// MarshalYAML renders a Decision as its lowercase name.
func (d Decision) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// MarshalJSON renders a Decision as its lowercase name, for audit log entries.
func (d Decision) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalYAML accepts "allow", "ask", or "deny" (case sensitive, matching
// the rules file convention).
func (d *Decision) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	switch s {
	case "allow":
		*d = Allow
	case "ask":
		*d = Ask
	case "deny":
		*d = Deny
	default:
		return fmt.Errorf("policy: invalid decision %q", s)
	}
	return nil
}

// SafetyLevel gates which rules apply: a rule tagged above the configured
// level is skipped. Critical < High < Strict.
type SafetyLevel int

const (
	Critical SafetyLevel = iota
	High
	Strict
)

func (l SafetyLevel) String() string {
	switch l {
	case Critical:
		return "critical"
	case Strict:
		return "strict"
	default:
		return "high"
	}
}

func (l *SafetyLevel) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	switch s {
	case "critical":
		*l = Critical
	case "high":
		*l = High
	case "strict":
		*l = Strict
	default:
		return fmt.Errorf("policy: invalid safety_level %q", s)
	}
	return nil
}

// TrustLevel gates which allowlist entries apply, in the same way
// SafetyLevel gates rules. Minimal < Standard < Full.
type TrustLevel int

const (
	Minimal TrustLevel = iota
	Standard
	Full
)

func (t TrustLevel) String() string {
	switch t {
	case Minimal:
		return "minimal"
	case Full:
		return "full"
	default:
		return "standard"
	}
}

func (t *TrustLevel) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	switch s {
	case "minimal":
		*t = Minimal
	case "standard":
		*t = Standard
	case "full":
		*t = Full
	default:
		return fmt.Errorf("policy: invalid trust %q", s)
	}
	return nil
}

// RuleSource records where a rule or allowlist entry came from, for
// logging only; sources are not ordered against each other.
type RuleSource int

const (
	SourceEmbedded RuleSource = iota
	SourceGlobal
	SourceProject
)

func (s RuleSource) String() string {
	switch s {
	case SourceGlobal:
		return "global"
	case SourceProject:
		return "project"
	default:
		return "embedded"
	}
}

// StringOrList accepts either a bare scalar ("ls") or a mapping with an
// any_of list ({any_of: [ls, cat]}) wherever the rules schema needs one or
// more strings to match against.
type StringOrList struct {
	Values []string
}

func (s StringOrList) Contains(v string) bool {
	for _, want := range s.Values {
		if want == v {
			return true
		}
	}
	return false
}

func (s *StringOrList) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var scalar string
	if err := unmarshal(&scalar); err == nil {
		s.Values = []string{scalar}
		return nil
	}
	var wrapped struct {
		AnyOf []string `yaml:"any_of"`
	}
	if err := unmarshal(&wrapped); err != nil {
		return err
	}
	s.Values = wrapped.AnyOf
	return nil
}

// AllowlistEntry is either a bare command string ("ls", trust defaults to
// Standard) or a mapping naming command, trust, and an optional reason.
type AllowlistEntry struct {
	Command string
	Trust   TrustLevel
	Reason  string
	Source  RuleSource
}

func (e *AllowlistEntry) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var scalar string
	if err := unmarshal(&scalar); err == nil {
		e.Command = scalar
		e.Trust = Standard
		return nil
	}
	var wrapped struct {
		Command string     `yaml:"command"`
		Trust   TrustLevel `yaml:"trust"`
		Reason  string     `yaml:"reason"`
	}
	wrapped.Trust = Standard
	if err := unmarshal(&wrapped); err != nil {
		return err
	}
	e.Command = wrapped.Command
	e.Trust = wrapped.Trust
	e.Reason = wrapped.Reason
	return nil
}

// Allowlists holds the allowlist sections of a rules file. Commands entries
// pre-approve a command leaf that matches no rule; Paths is loaded and
// merged across layers but is not consulted when a command is evaluated.
type Allowlists struct {
	Commands []AllowlistEntry `yaml:"commands"`
	Paths    []string         `yaml:"paths"`
}

// FlagsMatcher tests a command's flags. Every populated field must pass for
// the matcher to pass.
type FlagsMatcher struct {
	AnyOf      []string `yaml:"any_of,omitempty"`
	AllOf      []string `yaml:"all_of,omitempty"`
	NoneOf     []string `yaml:"none_of,omitempty"`
	StartsWith []string `yaml:"starts_with,omitempty"`
}

// ArgsMatcher tests a command's positional arguments against glob patterns.
type ArgsMatcher struct {
	AnyOf []string `yaml:"any_of,omitempty"`
}

// CommandMatcher matches a single simple command by name, flags, and args.
type CommandMatcher struct {
	Command StringOrList `yaml:"command"`
	Flags   *FlagsMatcher `yaml:"flags,omitempty"`
	Args    *ArgsMatcher  `yaml:"args,omitempty"`
}

// StageMatcher matches one stage of a PipelineMatcher by command name only.
type StageMatcher struct {
	Command StringOrList `yaml:"command"`
}

// PipelineMatcher matches an ordered subsequence of a pipeline's stages.
type PipelineMatcher struct {
	Stages []StageMatcher `yaml:"stages"`
}

// RedirectMatcher matches a redirection attached to a command, by
// operator and/or target.
type RedirectMatcher struct {
	Op     string        `yaml:"op,omitempty"`
	Target *StringOrList `yaml:"target,omitempty"`
}

// Matcher is a tagged union: exactly one of Command, Pipeline, or Redirect
// is populated, detected by probing for the pipeline/redirect keys before
// falling back to a command matcher.
type Matcher struct {
	Command  *CommandMatcher
	Pipeline *PipelineMatcher
	Redirect *RedirectMatcher
}

func (m *Matcher) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var probe struct {
		Pipeline *PipelineMatcher `yaml:"pipeline"`
		Redirect *RedirectMatcher `yaml:"redirect"`
	}
	if err := unmarshal(&probe); err != nil {
		return err
	}
	if probe.Pipeline != nil {
		m.Pipeline = probe.Pipeline
		return nil
	}
	if probe.Redirect != nil {
		m.Redirect = probe.Redirect
		return nil
	}
	var cmd CommandMatcher
	if err := unmarshal(&cmd); err != nil {
		return err
	}
	m.Command = &cmd
	return nil
}

// Rule is one entry in the rules list: a matcher, the decision it produces
// on match, a human reason, the safety level it requires, and where it
// came from.
type Rule struct {
	ID       string      `yaml:"id"`
	Level    SafetyLevel `yaml:"level"`
	Matcher  Matcher     `yaml:"match"`
	Decision Decision    `yaml:"decision"`
	Reason   string      `yaml:"reason"`
	Source   RuleSource  `yaml:"-"`
}

// RulesConfig is the fully merged rules file: defaults, the allowlists,
// and the ordered rule list. Unset fields default to Ask / High / Standard
// to match the original's conservative-by-default posture.
type RulesConfig struct {
	Version         string     `yaml:"version"`
	DefaultDecision Decision   `yaml:"default_decision"`
	SafetyLevel     SafetyLevel `yaml:"safety_level"`
	TrustLevel      TrustLevel `yaml:"trust_level"`
	Allowlists      Allowlists `yaml:"allowlists"`
	Rules           []Rule     `yaml:"rules"`
}

func (c *RulesConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type alias RulesConfig
	defaulted := alias{
		DefaultDecision: Ask,
		SafetyLevel:     High,
		TrustLevel:      Standard,
	}
	if err := unmarshal(&defaulted); err != nil {
		return err
	}
	*c = RulesConfig(defaulted)
	return nil
}

// PolicyResult is the outcome of evaluating one command against a
// RulesConfig: the combined decision, which rule (if any) produced it, and
// the reason string to surface to the caller.
type PolicyResult struct {
	Decision Decision
	RuleID   string
	HasRule  bool
	Reason   string
}
