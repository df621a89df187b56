package agent_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/saribmah/ai-sdk/pkg/agent"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agent.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFileConfig(t *testing.T) {
	path := writeConfig(t, `
provider: bedrock
model: anthropic.claude-3-5-sonnet-20241022-v2:0
region: us-east-1
system_prompt: be helpful
max_output_tokens: 2048
temperature: 0.7
max_steps: 5
`)

	cfg, err := agent.LoadFileConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Provider != "bedrock" {
		t.Fatalf("provider = %q", cfg.Provider)
	}
	if cfg.Region != "us-east-1" {
		t.Fatalf("region = %q", cfg.Region)
	}
	if cfg.Temperature == nil || *cfg.Temperature != 0.7 {
		t.Fatalf("temperature = %v", cfg.Temperature)
	}

	s := cfg.Settings()
	if s.MaxOutputTokens == nil || *s.MaxOutputTokens != 2048 {
		t.Fatalf("max output tokens = %v", s.MaxOutputTokens)
	}
}

func TestLoadFileConfig_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_BEDROCK_REGION", "eu-west-1")
	path := writeConfig(t, `
provider: bedrock
model: test-model
region: ${TEST_BEDROCK_REGION}
`)

	cfg, err := agent.LoadFileConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Region != "eu-west-1" {
		t.Fatalf("region = %q, want expanded env var", cfg.Region)
	}
}

func TestLoadFileConfig_Validation(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"missing provider", "model: m\n"},
		{"missing model", "provider: bedrock\n"},
		{"unknown provider", "provider: petstore\nmodel: m\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.content)
			if _, err := agent.LoadFileConfig(path); err == nil {
				t.Fatal("invalid config accepted")
			}
		})
	}
}
