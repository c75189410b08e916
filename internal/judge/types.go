// Package judge invokes an external AI model as a second-opinion judge for
// inline code the policy evaluator cannot reason about on its own: it
// builds a prompt describing the code and its execution context, runs a
// configured command with that prompt as its final argument, and parses
// an ALLOW/ASK verdict back out of the subprocess's stdout.
package judge

import (
	"github.com/gzhole/longline/internal/extract"
	"github.com/gzhole/longline/internal/policy"
)

// DefaultTimeoutSeconds is how long Evaluate waits for the judge
// subprocess before giving up and returning Ask.
const DefaultTimeoutSeconds = 30

// Config controls how the external judge is invoked. Command is left
// empty by default: judge mode is opt-in and does nothing until a user
// configures a real command.
type Config struct {
	Command  string         `yaml:"command"`
	Timeout  uint64         `yaml:"timeout"`
	Triggers TriggersConfig `yaml:"triggers"`
}

// TriggersConfig is the YAML-facing mirror of extract.Triggers; judge
// callers build an extract.Triggers from this before calling extract.Extract.
type TriggersConfig struct {
	Interpreters []InterpreterTrigger `yaml:"interpreters"`
	Runners      []string             `yaml:"runners"`
}

// InterpreterTrigger is the YAML-facing mirror of extract.InterpreterTrigger.
type InterpreterTrigger struct {
	Name       []string `yaml:"name"`
	InlineFlag string   `yaml:"inline_flag"`
}

// DefaultConfig returns the built-in judge configuration: no command
// configured, a 30s timeout, and the standard interpreter/runner triggers.
func DefaultConfig() Config {
	return Config{
		Command:  "",
		Timeout:  DefaultTimeoutSeconds,
		Triggers: defaultTriggersConfig(),
	}
}

// UnmarshalYAML applies DefaultConfig's values for any field the YAML
// document leaves unset.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type alias Config
	defaulted := alias(DefaultConfig())
	if err := unmarshal(&defaulted); err != nil {
		return err
	}
	*c = Config(defaulted)
	return nil
}

// UnmarshalYAML applies the default interpreter/runner triggers to any
// field the YAML document's triggers: block leaves unset.
func (t *TriggersConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type alias TriggersConfig
	defaulted := alias(defaultTriggersConfig())
	if err := unmarshal(&defaulted); err != nil {
		return err
	}
	*t = TriggersConfig(defaulted)
	return nil
}

func defaultTriggersConfig() TriggersConfig {
	dt := extract.DefaultTriggers()
	interpreters := make([]InterpreterTrigger, 0, len(dt.Interpreters))
	for _, it := range dt.Interpreters {
		interpreters = append(interpreters, InterpreterTrigger{
			Name:       it.Names,
			InlineFlag: it.InlineFlag,
		})
	}
	return TriggersConfig{
		Interpreters: interpreters,
		Runners:      append([]string{}, dt.Runners...),
	}
}

// ToExtractTriggers converts the wire-format triggers into the type the
// extract package operates on.
func (t TriggersConfig) ToExtractTriggers() extract.Triggers {
	interpreters := make([]extract.InterpreterTrigger, 0, len(t.Interpreters))
	for _, it := range t.Interpreters {
		interpreters = append(interpreters, extract.InterpreterTrigger{
			Names:      it.Name,
			InlineFlag: it.InlineFlag,
		})
	}
	return extract.Triggers{
		Interpreters: interpreters,
		Runners:      t.Runners,
	}
}

// Verdict is what Evaluate returns: the decision and the judge's own
// explanation for it.
type Verdict struct {
	Decision policy.Decision
	Reason   string
}
