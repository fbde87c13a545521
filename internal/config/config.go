// Package config loads application configuration from YAML plus environment
// overrides.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Forms    FormsConfig    `mapstructure:"forms"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// OpenAIConfig holds the document AI collaborator configuration.
type OpenAIConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	ExtractModel   string        `mapstructure:"extract_model"`
	StatementModel string        `mapstructure:"statement_model"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// StorageConfig holds blob storage configuration.
type StorageConfig struct {
	BaseDir   string `mapstructure:"base_dir"`
	PublicURL string `mapstructure:"public_url"`
	SignKey   string `mapstructure:"sign_key"`
}

// FormsConfig points at the government form template sources.
type FormsConfig struct {
	LocalPath    string `mapstructure:"local_path"`
	RemoteURL    string `mapstructure:"remote_url"`
	ConverterURL string `mapstructure:"converter_url"`
	FormTitle    string `mapstructure:"form_title"`
}

// WorkerConfig holds background worker configuration.
type WorkerConfig struct {
	QueueCapacity  int           `mapstructure:"queue_capacity"`
	ExtractTimeout time.Duration `mapstructure:"extract_timeout"`
}

// LoggerConfig holds logger configuration.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 60*time.Second)

	viper.SetDefault("database.path", "data/visa_assistant.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	viper.SetDefault("openai.extract_model", "gpt-4o-mini")
	viper.SetDefault("openai.statement_model", "gpt-4o")
	viper.SetDefault("openai.timeout", 120*time.Second)

	viper.SetDefault("storage.base_dir", "data/uploads")
	viper.SetDefault("storage.public_url", "http://localhost:8080/files")

	viper.SetDefault("forms.local_path", "data/forms/i539.pdf")
	viper.SetDefault("forms.form_title", "Application To Extend/Change Nonimmigrant Status")

	viper.SetDefault("worker.queue_capacity", 64)
	viper.SetDefault("worker.extract_timeout", 120*time.Second)

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

func bindEnvVars() {
	viper.BindEnv("openai.api_key", "OPENAI_API_KEY")
	viper.BindEnv("storage.sign_key", "STORAGE_SIGN_KEY")
	viper.BindEnv("forms.remote_url", "FORM_TEMPLATE_URL")
	viper.BindEnv("forms.converter_url", "FORM_CONVERTER_URL")
}

// Validate checks required settings.
func (c *Config) Validate() error {
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai.api_key is required")
	}
	if c.Storage.BaseDir == "" {
		return fmt.Errorf("storage.base_dir is required")
	}
	if c.Storage.SignKey == "" {
		return fmt.Errorf("storage.sign_key is required")
	}
	return nil
}
