package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Config holds everything the service needs at startup.
type Config struct {
	ServerAddr      string     `json:"server_addr,omitempty"`
	DBPath          string     `json:"db_path,omitempty"`
	TokenTTLMinutes int        `json:"token_ttl_minutes,omitempty"`
	SecretKeyEnv    string     `json:"secret_key_env,omitempty"`
	LLM             *LLMConfig `json:"llm,omitempty"`

	// Resolved from the environment by Resolve; never read from JSON.
	SecretKey string `json:"-"`
}

// LLMConfig selects the model provider. The API key itself stays out of the
// config file; api_key_env names the environment variable that carries it.
type LLMConfig struct {
	Provider  string `json:"provider,omitempty"`
	Model     string `json:"model,omitempty"`
	APIKeyEnv string `json:"api_key_env,omitempty"`
	BaseURL   string `json:"base_url,omitempty"`

	APIKey string `json:"-"`
}

// Default returns the configuration used when no config file is given:
// Gemini with the original service's model.
func Default() Config {
	return Config{
		ServerAddr:      ":8080",
		DBPath:          "ripple.db",
		TokenTTLMinutes: 30,
		SecretKeyEnv:    "SECRET_KEY",
		LLM: &LLMConfig{
			Provider: "gemini",
			Model:    "gemini-1.5-flash",
		},
	}
}

// LoadConfig reads JSON config from disk (or returns defaults for an empty
// path) and resolves the secrets from the environment.
func LoadConfig(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.Resolve(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Resolve fills in defaults and pulls the API key and signing secret from the
// environment. A missing secret is a fatal configuration error.
func (c *Config) Resolve() error {
	if c.ServerAddr == "" {
		c.ServerAddr = ":8080"
	}
	if c.DBPath == "" {
		c.DBPath = "ripple.db"
	}
	if c.TokenTTLMinutes <= 0 {
		c.TokenTTLMinutes = 30
	}
	if c.SecretKeyEnv == "" {
		c.SecretKeyEnv = "SECRET_KEY"
	}
	if c.LLM == nil || c.LLM.Provider == "" {
		return errors.New("llm config missing; please set llm.provider/model in config")
	}

	// Provider "mock" needs no key; everything else does.
	if c.LLM.Provider != "mock" {
		if c.LLM.APIKeyEnv == "" {
			switch c.LLM.Provider {
			case "gemini":
				c.LLM.APIKeyEnv = "GOOGLE_API_KEY"
			default:
				c.LLM.APIKeyEnv = "OPENAI_API_KEY"
			}
		}
		c.LLM.APIKey = os.Getenv(c.LLM.APIKeyEnv)
		if c.LLM.APIKey == "" {
			return fmt.Errorf("%s environment variable not set", c.LLM.APIKeyEnv)
		}
		if c.LLM.Provider == "deepseek" && c.LLM.BaseURL == "" {
			return errors.New("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
	}

	c.SecretKey = os.Getenv(c.SecretKeyEnv)
	if c.SecretKey == "" {
		return fmt.Errorf("%s environment variable not set", c.SecretKeyEnv)
	}
	return nil
}
