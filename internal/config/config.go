package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type AgentConfig struct {
	// MaxIterations caps the tool-call loop; 0 leaves it unbounded, which
	// matches the upstream integrations this service replaces.
	MaxIterations int    `mapstructure:"max_iterations"`
	SystemPrompt  string `mapstructure:"system_prompt"`
}

type StorageConfig struct {
	// DBPath is the sqlite file for the turn audit log. Empty disables it.
	DBPath string `mapstructure:"db_path"`
}

type Config struct {
	// PoolEndpoint is the session pool management endpoint the sandbox
	// tool executes against. Required.
	PoolEndpoint string `mapstructure:"pool_endpoint"`

	// OpenAIEndpoint is the Azure OpenAI resource endpoint. Required.
	OpenAIEndpoint string `mapstructure:"openai_endpoint"`

	Deployment       string `mapstructure:"deployment"`
	OpenAIAPIVersion string `mapstructure:"openai_api_version"`
	PoolAPIVersion   string `mapstructure:"pool_api_version"`
	SandboxScope     string `mapstructure:"sandbox_scope"`

	Server  ServerConfig  `mapstructure:"server"`
	Agent   AgentConfig   `mapstructure:"agent"`
	Storage StorageConfig `mapstructure:"storage"`
}

// Load reads configuration from codechat.yaml (cwd or ~/.codechat) and the
// environment. The endpoint values come from the same environment variables
// the session pool samples use.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("codechat")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.codechat")

	v.SetDefault("deployment", "gpt-35-turbo")
	v.SetDefault("openai_api_version", "2024-06-01")
	v.SetDefault("pool_api_version", "2024-02-02-preview")
	v.SetDefault("sandbox_scope", "https://dynamicsessions.io/.default")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout", 2*time.Minute)
	v.SetDefault("agent.max_iterations", 0)
	v.SetDefault("storage.db_path", filepath.Join(os.Getenv("HOME"), ".codechat", "codechat.db"))

	v.BindEnv("pool_endpoint", "POOL_MANAGEMENT_ENDPOINT")
	v.BindEnv("openai_endpoint", "AZURE_OPENAI_ENDPOINT")
	v.BindEnv("deployment", "CODECHAT_DEPLOYMENT")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file is optional; environment variables are enough.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the required values. Called once at startup; a failure
// here is fatal.
func (c *Config) Validate() error {
	if err := requireURL("POOL_MANAGEMENT_ENDPOINT", c.PoolEndpoint); err != nil {
		return err
	}
	if err := requireURL("AZURE_OPENAI_ENDPOINT", c.OpenAIEndpoint); err != nil {
		return err
	}
	if c.Deployment == "" {
		return fmt.Errorf("deployment name is required")
	}
	return nil
}

func requireURL(name, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", name)
	}
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s is not a valid URL: %q", name, value)
	}
	return nil
}
