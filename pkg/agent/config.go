package agent

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/saribmah/ai-sdk/pkg/ai/providers/bedrock"
	"github.com/saribmah/ai-sdk/pkg/core"
)

// FileConfig is the YAML structure of the agent config file.
type FileConfig struct {
	// Provider selects the model backend. Currently "bedrock".
	Provider string `yaml:"provider"`

	// Model ID to use (e.g. "anthropic.claude-3-5-sonnet-20241022-v2:0").
	Model string `yaml:"model"`

	// Region is the AWS region for Bedrock (e.g. "us-east-1").
	// Defaults to AWS_DEFAULT_REGION / ~/.aws/config.
	Region string `yaml:"region"`

	// Profile is the AWS profile name for Bedrock authentication.
	Profile string `yaml:"profile"`

	// SystemPrompt is the system message sent with every call.
	SystemPrompt string `yaml:"system_prompt"`

	// MaxOutputTokens caps the response length (0 = provider default).
	MaxOutputTokens int `yaml:"max_output_tokens"`

	// Temperature controls randomness (nil = provider default).
	Temperature *float64 `yaml:"temperature"`

	// TopP is the nucleus sampling threshold (nil = provider default).
	TopP *float64 `yaml:"top_p"`

	// StopSequences halt generation when produced by the model.
	StopSequences []string `yaml:"stop_sequences"`

	// MaxSteps caps the number of model calls per turn. Prevents runaway
	// loops where the model keeps calling tools indefinitely. 0 uses the
	// default of 10.
	MaxSteps int `yaml:"max_steps"`

	// IncludeRawChunks forwards untranslated provider payloads on the
	// event stream.
	IncludeRawChunks bool `yaml:"include_raw_chunks"`
}

// Settings converts the config's call parameters.
func (c *FileConfig) Settings() core.CallSettings {
	s := core.CallSettings{
		Temperature:   c.Temperature,
		TopP:          c.TopP,
		StopSequences: c.StopSequences,
	}
	if c.MaxOutputTokens > 0 {
		max := c.MaxOutputTokens
		s.MaxOutputTokens = &max
	}
	return s
}

// StopWhen returns the configured stop conditions.
func (c *FileConfig) StopWhen() []core.StopCondition {
	steps := c.MaxSteps
	if steps <= 0 {
		steps = 10
	}
	return []core.StopCondition{core.StepCountIs(steps)}
}

// NewFromConfig builds an Agent from a loaded config file.
func NewFromConfig(cfg *FileConfig, opts ...Option) *Agent {
	model := bedrock.New(cfg.Model, cfg.Region, cfg.Profile)
	base := []Option{
		WithSystem(cfg.SystemPrompt),
		WithSettings(cfg.Settings()),
		WithStopWhen(cfg.StopWhen()...),
	}
	return New(model, append(base, opts...)...)
}

// LoadFileConfig reads and parses a YAML config file, expanding ${ENV_VAR}
// references in string values.
func LoadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	// Expand environment variables in the raw YAML before parsing.
	expanded := os.ExpandEnv(string(data))

	var cfg FileConfig
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := validateFileConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validateFileConfig(cfg *FileConfig) error {
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.Provider == "" {
		return fmt.Errorf("config: provider is required")
	}
	if cfg.Provider != "bedrock" {
		return fmt.Errorf("config: unknown provider %q", cfg.Provider)
	}
	if cfg.Model == "" {
		return fmt.Errorf("config: model is required")
	}
	return nil
}
