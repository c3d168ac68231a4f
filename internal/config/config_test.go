package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.AI.OpenAI.Model != "gpt-4o" {
		t.Errorf("Expected default model gpt-4o, got %q", cfg.AI.OpenAI.Model)
	}
	if cfg.Images.Provider != "openai" {
		t.Errorf("Expected default provider openai, got %q", cfg.Images.Provider)
	}
	if cfg.Images.DALLE.Size != "1024x1024" {
		t.Errorf("Expected default size 1024x1024, got %q", cfg.Images.DALLE.Size)
	}
	if cfg.Reader.Endpoint != "https://r.jina.ai" {
		t.Errorf("Expected default reader endpoint, got %q", cfg.Reader.Endpoint)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	t.Setenv("OPENAI_API_KEY", "sk-live-key")
	t.Setenv("DALLE_MODEL", "dall-e-2")
	t.Setenv("MAX_IMAGES_PER_ARTICLE", "3")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.AI.OpenAI.APIKey != "sk-live-key" {
		t.Errorf("Expected env API key, got %q", cfg.AI.OpenAI.APIKey)
	}
	if cfg.Images.DALLE.Model != "dall-e-2" {
		t.Errorf("Expected env DALL-E model, got %q", cfg.Images.DALLE.Model)
	}
	if cfg.Images.MaxPerArticle != 3 {
		t.Errorf("Expected max images 3, got %d", cfg.Images.MaxPerArticle)
	}
}

func TestUnsupportedSizeCoerced(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	t.Setenv("DALLE_SIZE", "800x600")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Images.DALLE.Size != "1024x1024" {
		t.Errorf("Expected coerced size 1024x1024, got %q", cfg.Images.DALLE.Size)
	}
}

func TestOpenAIKeyUsable(t *testing.T) {
	cases := map[string]bool{
		"":                 false,
		"sk-your-key-here": false,
		"demo-mode":        false,
		"sk-real-key":      true,
	}
	for key, expected := range cases {
		cfg := &Config{}
		cfg.AI.OpenAI.APIKey = key
		if got := cfg.OpenAIKeyUsable(); got != expected {
			t.Errorf("OpenAIKeyUsable(%q): expected %v, got %v", key, expected, got)
		}
	}
}

func TestTimeoutFallbacks(t *testing.T) {
	cfg := &Config{}
	cfg.Reader.Timeout = "not-a-duration"
	if got := cfg.ReaderTimeout().Seconds(); got != 15 {
		t.Errorf("Expected 15s fallback, got %vs", got)
	}
	cfg.Reader.Timeout = "3s"
	if got := cfg.ReaderTimeout().Seconds(); got != 3 {
		t.Errorf("Expected 3s, got %vs", got)
	}
}
