package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App    App    `mapstructure:"app"`
	AI     AI     `mapstructure:"ai"`
	Images Images `mapstructure:"images"`
	Reader Reader `mapstructure:"reader"`
	Export Export `mapstructure:"export"`
	Server Server `mapstructure:"server"`
}

// App holds general application configuration.
type App struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// AI holds LLM configuration.
type AI struct {
	OpenAI OpenAIConfig `mapstructure:"openai"`
}

// OpenAIConfig holds chat-completion configuration.
type OpenAIConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	BaseURL   string `mapstructure:"base_url"`
	MaxTokens int    `mapstructure:"max_tokens"`
	Timeout   string `mapstructure:"timeout"`
}

// Images holds image generation configuration.
type Images struct {
	Provider      string         `mapstructure:"provider"` // "openai" or "seedream"
	MaxPerArticle int            `mapstructure:"max_per_article"`
	OutputDir     string         `mapstructure:"output_directory"`
	DALLE         DALLEConfig    `mapstructure:"dalle"`
	SeeDream      SeeDreamConfig `mapstructure:"seedream"`
}

// DALLEConfig holds OpenAI image generation configuration. The chat API key
// (ai.openai.api_key) is reused for image calls.
type DALLEConfig struct {
	Model   string `mapstructure:"model"`
	Size    string `mapstructure:"size"`
	Quality string `mapstructure:"quality"`
}

// SeeDreamConfig holds SeeDream (Ark) image generation configuration.
type SeeDreamConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
	Size    string `mapstructure:"size"`
}

// Reader holds third-party content reader configuration.
type Reader struct {
	Endpoint string `mapstructure:"endpoint"`
	Timeout  string `mapstructure:"timeout"`
	MaxURLs  int    `mapstructure:"max_urls"`
}

// Export holds document export configuration.
type Export struct {
	Directory string `mapstructure:"directory"`
}

// Server holds HTTP server configuration.
type Server struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CORS         CORS          `mapstructure:"cors"`
}

// CORS holds cross-origin configuration for the HTTP server.
type CORS struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

var globalConfig *Config

// Load loads configuration from the config file, environment variables and
// defaults, in that order of precedence (env highest).
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists (local development convenience)
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".draftsmith")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary.
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// Reset clears the loaded configuration. Used by tests.
func Reset() {
	globalConfig = nil
	viper.Reset()
}

func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")

	viper.SetDefault("ai.openai.model", "gpt-4o")
	viper.SetDefault("ai.openai.max_tokens", 4000)
	viper.SetDefault("ai.openai.timeout", "120s")

	viper.SetDefault("images.provider", "openai")
	viper.SetDefault("images.max_per_article", 5)
	viper.SetDefault("images.output_directory", "assets/outputs")
	viper.SetDefault("images.dalle.model", "dall-e-3")
	viper.SetDefault("images.dalle.size", "1024x1024")
	viper.SetDefault("images.dalle.quality", "standard")
	viper.SetDefault("images.seedream.base_url", "https://ark.ap-southeast.bytepluses.com/api/v3")
	viper.SetDefault("images.seedream.model", "seedream-4-0-250828")
	viper.SetDefault("images.seedream.size", "2K")

	viper.SetDefault("reader.endpoint", "https://r.jina.ai")
	viper.SetDefault("reader.timeout", "15s")
	viper.SetDefault("reader.max_urls", 5)

	viper.SetDefault("export.directory", "exports")

	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 180*time.Second)
	viper.SetDefault("server.cors.enabled", true)
	viper.SetDefault("server.cors.allowed_origins", []string{"*"})
}

func bindEnvironmentVariables() {
	// Legacy environment variable names kept for operator familiarity.
	envBindings := map[string]string{
		"ai.openai.api_key":      "OPENAI_API_KEY",
		"ai.openai.model":        "OPENAI_MODEL",
		"ai.openai.max_tokens":   "MAX_TOKENS",
		"images.provider":        "IMAGE_PROVIDER",
		"images.max_per_article": "MAX_IMAGES_PER_ARTICLE",
		"images.dalle.model":     "DALLE_MODEL",
		"images.dalle.size":      "DALLE_SIZE",
		"images.dalle.quality":   "DALLE_QUALITY",
		"images.seedream.api_key": "ARK_API_KEY",
		"images.seedream.model":   "SEEDREAM_MODEL",
		"images.seedream.size":    "SEEDREAM_SIZE",
	}
	for key, env := range envBindings {
		_ = viper.BindEnv(key, env)
	}
}

// supportedDALLESizes are the sizes the OpenAI images endpoint accepts.
var supportedDALLESizes = map[string]bool{
	"1024x1024": true,
	"1024x1792": true,
	"1792x1024": true,
}

// coercibleSizes maps common misconfigurations to the closest supported size.
var coercibleSizes = map[string]string{
	"1024x720": "1024x1024",
	"800x600":  "1024x1024",
	"1280x720": "1792x1024",
}

func validateConfig(config *Config) error {
	if !supportedDALLESizes[config.Images.DALLE.Size] {
		coerced, ok := coercibleSizes[config.Images.DALLE.Size]
		if !ok {
			coerced = "1024x1024"
		}
		fmt.Fprintf(os.Stderr, "Warning: unsupported DALLE_SIZE %q, using %q\n", config.Images.DALLE.Size, coerced)
		config.Images.DALLE.Size = coerced
	}

	if config.Images.MaxPerArticle < 1 {
		config.Images.MaxPerArticle = 1
	}
	if config.Reader.MaxURLs < 1 {
		config.Reader.MaxURLs = 1
	}

	switch config.Images.Provider {
	case "openai", "seedream":
	default:
		return fmt.Errorf("unsupported image provider %q: use \"openai\" or \"seedream\"", config.Images.Provider)
	}

	return nil
}

// OpenAIKeyUsable reports whether the configured OpenAI key looks real.
// Placeholder values from a copied .env template are treated as absent.
func (c *Config) OpenAIKeyUsable() bool {
	key := c.AI.OpenAI.APIKey
	return key != "" && !strings.HasPrefix(key, "sk-your-") && key != "demo-mode"
}

// ReaderTimeout parses the reader timeout, defaulting to 15 seconds.
func (c *Config) ReaderTimeout() time.Duration {
	d, err := time.ParseDuration(c.Reader.Timeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

// OpenAITimeout parses the chat timeout, defaulting to 120 seconds.
func (c *Config) OpenAITimeout() time.Duration {
	d, err := time.ParseDuration(c.AI.OpenAI.Timeout)
	if err != nil || d <= 0 {
		return 120 * time.Second
	}
	return d
}
