package config

import (
	"os"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.LLM.Model != "deepseek-chat" {
		t.Errorf("Model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.MaxRetries != 2 {
		t.Errorf("MaxRetries = %d, want 2", cfg.LLM.MaxRetries)
	}
	if cfg.Chunking.ChunkSize != 1400 || cfg.Chunking.ChunkOverlap != 180 {
		t.Errorf("chunking defaults = %+v", cfg.Chunking)
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Run("expands references", func(t *testing.T) {
		os.Setenv("P2G_TEST_KEY", "sk-secret")
		defer os.Unsetenv("P2G_TEST_KEY")

		if got := ResolveEnvVars("${P2G_TEST_KEY}"); got != "sk-secret" {
			t.Errorf("ResolveEnvVars() = %q", got)
		}
	})

	t.Run("missing variable expands to empty", func(t *testing.T) {
		if got := ResolveEnvVars("${P2G_DEFINITELY_UNSET}"); got != "" {
			t.Errorf("ResolveEnvVars() = %q, want empty", got)
		}
	})

	t.Run("plain strings untouched", func(t *testing.T) {
		if got := ResolveEnvVars("sk-plain"); got != "sk-plain" {
			t.Errorf("ResolveEnvVars() = %q", got)
		}
	})
}

func TestWriteDefault(t *testing.T) {
	path := t.TempDir() + "/config.yaml"
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read written config: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "deepseek-chat") {
		t.Error("written config missing model default")
	}
	if !strings.Contains(content, "${DEEPSEEK_API_KEY}") {
		t.Error("written config missing API key reference")
	}
}
