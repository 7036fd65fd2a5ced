package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// Mapstructure tags are used to map environment variables and config file keys.
type Config struct {
	// Server Configuration
	Port         int      `mapstructure:"PORT"`               // listen port, e.g. 5000
	AppEnv       string   `mapstructure:"APP_ENV"`            // "production" switches gin and zap to release mode
	MaxBodyBytes int64    `mapstructure:"MAX_BODY_BYTES"`     // JSON body limit for /api/generate
	CORSOrigins  []string `mapstructure:"CORS_ALLOW_ORIGINS"` // comma separated in the environment

	// AI Configuration
	OpenAIKey         string        `mapstructure:"OPENAI_API_KEY"`     // API key for OpenAI
	OpenAIModel       string        `mapstructure:"OPENAI_MODEL"`       // e.g. "gpt-4o"
	OpenAIMaxTokens   int           `mapstructure:"OPENAI_MAX_TOKENS"`  // completion token budget
	OpenAITemperature float32       `mapstructure:"OPENAI_TEMPERATURE"` // low for predictable structure
	OpenAIBaseURL     string        `mapstructure:"OPENAI_BASE_URL"`    // OpenAI-compatible endpoint, empty for api.openai.com
	OpenAITimeout     time.Duration `mapstructure:"OPENAI_TIMEOUT"`     // 0 disables the client timeout
	SheetLanguage     string        `mapstructure:"SHEET_LANGUAGE"`     // language of generated sheet content

	// Output Configuration
	OutputDir    string        `mapstructure:"OUTPUT_DIR"`    // where rendered workbooks are written
	CleanupDelay time.Duration `mapstructure:"CLEANUP_DELAY"` // how long a rendered file outlives its response
	ServeOutput  bool          `mapstructure:"SERVE_OUTPUT"`  // expose OUTPUT_DIR under /output
}

var defaults = map[string]any{
	"PORT":               5000,
	"APP_ENV":            "development",
	"MAX_BODY_BYTES":     int64(1 << 20),
	"CORS_ALLOW_ORIGINS": []string{"*"},
	"OPENAI_API_KEY":     "",
	"OPENAI_MODEL":       "gpt-4o",
	"OPENAI_MAX_TOKENS":  1500,
	"OPENAI_TEMPERATURE": 0.2,
	"OPENAI_BASE_URL":    "",
	"OPENAI_TIMEOUT":     time.Duration(0),
	"SHEET_LANGUAGE":     "",
	"OUTPUT_DIR":         "output",
	"CLEANUP_DELAY":      15 * time.Second,
	"SERVE_OUTPUT":       true,
}

// LoadConfig reads configuration from file and environment variables.
// Every key has a default so that environment overrides are seen by Unmarshal even without a file.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)     // Path to look for the config file in
	v.SetConfigName("config") // Name of config file (without extension)
	v.SetConfigType("yaml")   // REQUIRED if the config file does not have the extension in the name

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv() // Read environment variables that match keys

	err = v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
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
	config.CORSOrigins = splitList(config.CORSOrigins)
	return config, nil
}

// Validate reports settings the service cannot start without.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.OpenAIKey) == "" {
		errs = append(errs, errors.New("OPENAI_API_KEY environment variable is required"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d is out of range", c.Port))
	}
	if c.OpenAIMaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("OPENAI_MAX_TOKENS must be positive, got %d", c.OpenAIMaxTokens))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("OUTPUT_DIR must not be empty"))
	}
	if c.CleanupDelay < 0 {
		errs = append(errs, fmt.Errorf("CLEANUP_DELAY must not be negative, got %s", c.CleanupDelay))
	}
	return errors.Join(errs...)
}

// Address returns the listen address for the HTTP server.
func (c Config) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// IsProduction reports whether APP_ENV selects release mode.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// splitList accepts both YAML lists and a single comma separated environment value.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
