package config

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// Mapstructure tags map environment variables and config file keys.
type Config struct {
	// Server Configuration
	ServerAddress string `mapstructure:"SERVER_ADDRESS"` // e.g., ":8080"
	AppEnv        string `mapstructure:"APP_ENV"`        // "production" enables gin release mode

	// Model Configuration
	DefaultProvider   string `mapstructure:"DEFAULT_PROVIDER"` // "ollama" or "llama"
	DefaultModel      string `mapstructure:"DEFAULT_MODEL"`
	OllamaBaseURL     string `mapstructure:"OLLAMA_BASE_URL"`
	LlamaAPIBaseURL   string `mapstructure:"LLAMA_API_BASE_URL"`
	LlamaAPIKey       string `mapstructure:"LLAMA_API_KEY"`
	LLMTimeoutSeconds int    `mapstructure:"LLM_TIMEOUT_SECONDS"` // 0 disables the client timeout

	// Storage
	DatabasePath string `mapstructure:"DATABASE_PATH"`

	// Redis backs the rate limiter when set; otherwise limits are per process.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	RateLimitRPM        int `mapstructure:"RATE_LIMIT_RPM"`
	RateLimitBurst      int `mapstructure:"RATE_LIMIT_BURST"`
	RateLimitTTLSeconds int `mapstructure:"RATE_LIMIT_TTL_SECONDS"`

	AnalyticsCapacity int `mapstructure:"ANALYTICS_CAPACITY"`

	// Deployment Tools Configuration
	DeployCLIPath string `mapstructure:"DEPLOY_CLI_PATH"` // Path to the pages CLI executable
	DeployBranch  string `mapstructure:"DEPLOY_BRANCH"`
}

var defaults = map[string]any{
	"SERVER_ADDRESS":         ":8080",
	"APP_ENV":                "development",
	"DEFAULT_PROVIDER":       "ollama",
	"DEFAULT_MODEL":          "llama3.1",
	"OLLAMA_BASE_URL":        "http://localhost:11434",
	"LLAMA_API_BASE_URL":     "https://api.llama.com/compat/v1",
	"LLAMA_API_KEY":          "",
	"LLM_TIMEOUT_SECONDS":    0,
	"DATABASE_PATH":          "ninepros.db",
	"REDIS_ADDR":             "",
	"REDIS_PASSWORD":         "",
	"REDIS_DB":               0,
	"RATE_LIMIT_RPM":         10,
	"RATE_LIMIT_BURST":       5,
	"RATE_LIMIT_TTL_SECONDS": 180,
	"ANALYTICS_CAPACITY":     1000,
	"DEPLOY_CLI_PATH":        "wrangler",
	"DEPLOY_BRANCH":          "",
}

// LoadConfig reads configuration from file and environment variables.
// Environment variables override the config file.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)     // Path to look for the config file in
	v.SetConfigName("config") // Name of config file (without extension)
	v.SetConfigType("yaml")   // REQUIRED if the config file does not have the extension in the name

	// Unmarshal only sees environment variables for keys viper knows about.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	err = v.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Config file ('config.yaml') not found in specified path, relying solely on environment variables.")
		} else {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		log.Printf("Using configuration file: %s", v.ConfigFileUsed())
	}

	err = v.Unmarshal(&config)
	if err != nil {
		return Config{}, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate rejects impossible values and warns about missing optional ones.
func (c Config) Validate() error {
	var errs []error
	if c.RateLimitRPM < 0 || c.RateLimitBurst < 0 || c.RateLimitTTLSeconds < 0 {
		errs = append(errs, errors.New("rate limit values must not be negative"))
	}
	if c.LLMTimeoutSeconds < 0 {
		errs = append(errs, errors.New("LLM_TIMEOUT_SECONDS must not be negative"))
	}
	if c.AnalyticsCapacity < 0 {
		errs = append(errs, errors.New("ANALYTICS_CAPACITY must not be negative"))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("DATABASE_PATH is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if c.DefaultProvider == "llama" && c.LlamaAPIKey == "" {
		log.Println("WARN: DEFAULT_PROVIDER is llama but LLAMA_API_KEY is not set.")
	}
	if c.RedisAddr == "" {
		log.Println("Info: REDIS_ADDR is not set, rate limits are kept in process memory.")
	}
	return nil
}
