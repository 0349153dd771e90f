package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DataCacheDir string `json:"data_cache_dir"`

	LLMProvider string `json:"llm_provider"`
	LLMModel    string `json:"llm_model"`

	CacheEnabled bool `json:"cache_enabled"`
	Debug        bool `json:"debug"`

	// Chat platform
	DiscordToken string `json:"discord_token"`

	// AI model API keys
	OpenAIAPIKey   string `json:"openai_api_key"`
	DeepSeekAPIKey string `json:"deepseek_api_key"`

	// Market data API keys
	FinnhubAPIKey string `json:"finnhub_api_key"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	cfg := &Config{
		DataCacheDir: filepath.Join(currentDir, "data", "cache"),

		LLMProvider: "openai",
		LLMModel:    "gpt-4o-mini",

		CacheEnabled: true,
		Debug:        false,
	}

	// Load environment variables from .env file
	_ = godotenv.Load()

	// Override with environment variables if they exist
	cfg.loadFromEnv()

	return cfg
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("DATA_CACHE_DIR"); val != "" {
		c.DataCacheDir = val
	}

	if val := os.Getenv("LLM_PROVIDER"); val != "" {
		c.LLMProvider = val
	}
	if val := os.Getenv("LLM_MODEL"); val != "" {
		c.LLMModel = val
	}

	if val := os.Getenv("CACHE_ENABLED"); val != "" {
		if cache, err := strconv.ParseBool(val); err == nil {
			c.CacheEnabled = cache
		}
	}
	if val := os.Getenv("FINBOT_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}

	if val := os.Getenv("DISCORD_TOKEN"); val != "" {
		c.DiscordToken = val
	}

	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		c.OpenAIAPIKey = val
	}
	if val := os.Getenv("DEEPSEEK_API_KEY"); val != "" {
		c.DeepSeekAPIKey = val
	}
	if val := os.Getenv("FINBOT_FINNHUB_API_KEY"); val != "" {
		c.FinnhubAPIKey = val
	}
}

// Validate reports missing credentials for the requested mode. The bot
// needs a chat token; console mode does not.
func (c *Config) Validate(needDiscord bool) error {
	if needDiscord && c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN is not configured")
	}
	if c.FinnhubAPIKey == "" {
		return fmt.Errorf("FINBOT_FINNHUB_API_KEY is not configured")
	}
	switch c.LLMProvider {
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is not configured")
		}
	case "deepseek":
		if c.DeepSeekAPIKey == "" {
			return fmt.Errorf("DEEPSEEK_API_KEY is not configured")
		}
	default:
		return fmt.Errorf("unknown LLM provider: %s", c.LLMProvider)
	}
	return nil
}

func (c *Config) EnsureDirectories() error {
	if c.DataCacheDir == "" {
		return nil
	}
	if err := os.MkdirAll(c.DataCacheDir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", c.DataCacheDir, err)
	}
	return nil
}
