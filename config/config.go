package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
)

// Config is loaded once at startup and passed by value afterwards.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Dataset DatasetConfig `mapstructure:"dataset"`
	Storage StorageConfig `mapstructure:"storage"`
	Session SessionConfig `mapstructure:"session"`
	Render  RenderConfig  `mapstructure:"render"`
}

type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	Mode           string        `mapstructure:"mode"` // debug, release, test
	AllowOrigins   []string      `mapstructure:"allow_origins"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// LLMConfig describes the OpenAI-compatible chat completions endpoint.
type LLMConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	APIKey        string        `mapstructure:"api_key"`
	Model         string        `mapstructure:"model"`
	Temperature   float64       `mapstructure:"temperature"`
	MaxTokens     int           `mapstructure:"max_tokens"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxRetries    uint          `mapstructure:"max_retries"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
	MinInterval   time.Duration `mapstructure:"min_interval"`
	ContextWindow int           `mapstructure:"context_window"`
}

type DatasetConfig struct {
	Source    string          `mapstructure:"source"` // csv, xlsx, sqlserver, sqlite
	Path      string          `mapstructure:"path"`
	Query     string          `mapstructure:"query"`
	Outcome   string          `mapstructure:"outcome"`
	SQLServer SQLServerConfig `mapstructure:"sqlserver"`
}

type SQLServerConfig struct {
	Server   string `mapstructure:"server"`
	Port     string `mapstructure:"port"`
	Database string `mapstructure:"database"`
	UserID   string `mapstructure:"user_id"`
	Password string `mapstructure:"password"`
	Encrypt  bool   `mapstructure:"encrypt"`
}

type StorageConfig struct {
	DBPath    string `mapstructure:"db_path"`
	InMemory  bool   `mapstructure:"in_memory"`
	ChartsDir string `mapstructure:"charts_dir"` // empty disables the chart archive
}

type SessionConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RenderConfig sizes rendered charts in inches.
type RenderConfig struct {
	Width  float64 `mapstructure:"width"`
	Height float64 `mapstructure:"height"`
	DPI    int     `mapstructure:"dpi"`
}

const envPrefix = "ATTRITION"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allow_origins", []string{"*"})
	v.SetDefault("server.max_upload_bytes", 32<<20)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 90*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("llm.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "llama3-70b-8192")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay", 2*time.Second)
	v.SetDefault("llm.min_interval", 500*time.Millisecond)
	v.SetDefault("llm.context_window", 10)

	v.SetDefault("dataset.source", "csv")
	v.SetDefault("dataset.path", "./datasets/HR-Employee-Attrition-All.csv")
	v.SetDefault("dataset.query", "SELECT * FROM employees")
	v.SetDefault("dataset.outcome", "Attrition")
	v.SetDefault("dataset.sqlserver.server", "localhost")
	v.SetDefault("dataset.sqlserver.port", "1433")
	v.SetDefault("dataset.sqlserver.database", "hr")
	v.SetDefault("dataset.sqlserver.user_id", "")
	v.SetDefault("dataset.sqlserver.password", "")
	v.SetDefault("dataset.sqlserver.encrypt", true)

	v.SetDefault("storage.db_path", "./data/badger")
	v.SetDefault("storage.in_memory", false)
	v.SetDefault("storage.charts_dir", "./charts")

	v.SetDefault("session.ttl", 2*time.Hour)
	v.SetDefault("session.cleanup_interval", 10*time.Minute)

	v.SetDefault("render.width", 10.0)
	v.SetDefault("render.height", 6.0)
	v.SetDefault("render.dpi", 100)
}

// Load reads configuration from the optional file at path, then from
// ATTRITION_* environment variables. GROQ_API_KEY is honoured for the model
// credential. With an empty path, config.yaml in ./configs or . is used when
// present.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("llm.api_key", envPrefix+"_LLM_API_KEY", "GROQ_API_KEY"); err != nil {
		return Config{}, fmt.Errorf("bind llm.api_key: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

var (
	validModes   = map[string]bool{"debug": true, "release": true, "test": true}
	validLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validFormats = map[string]bool{"json": true, "console": true}
	validSources = map[string]bool{"csv": true, "xlsx": true, "sqlserver": true, "sqlite": true}
)

// Validate reports every problem in c at once.
func (c Config) Validate() error {
	var result *multierror.Error
	add := func(format string, args ...any) {
		result = multierror.Append(result, fmt.Errorf(format, args...))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		add("invalid server port: %d", c.Server.Port)
	}
	if !validModes[c.Server.Mode] {
		add("invalid server mode: %q, must be debug, release or test", c.Server.Mode)
	}
	if c.Server.MaxUploadBytes <= 0 {
		add("server.max_upload_bytes must be positive")
	}

	if !validLevels[strings.ToLower(c.Log.Level)] {
		add("invalid log level: %q", c.Log.Level)
	}
	if !validFormats[c.Log.Format] {
		add("invalid log format: %q, must be json or console", c.Log.Format)
	}

	if u, err := url.Parse(c.LLM.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		add("llm.base_url must be an absolute URL, got %q", c.LLM.BaseURL)
	}
	if c.LLM.Model == "" {
		add("llm.model is required")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		add("llm.temperature must be within [0, 2], got %v", c.LLM.Temperature)
	}
	if c.LLM.MaxTokens <= 0 {
		add("llm.max_tokens must be positive")
	}
	if c.LLM.Timeout <= 0 {
		add("llm.timeout must be positive")
	}
	if c.LLM.ContextWindow <= 0 {
		add("llm.context_window must be positive")
	}

	if !validSources[c.Dataset.Source] {
		add("invalid dataset source: %q, must be csv, xlsx, sqlserver or sqlite", c.Dataset.Source)
	}
	switch c.Dataset.Source {
	case "csv", "xlsx", "sqlite":
		if c.Dataset.Path == "" {
			add("dataset.path is required for source %s", c.Dataset.Source)
		}
	case "sqlserver":
		if c.Dataset.SQLServer.Server == "" || c.Dataset.SQLServer.Database == "" {
			add("dataset.sqlserver.server and dataset.sqlserver.database are required")
		}
	}
	if (c.Dataset.Source == "sqlserver" || c.Dataset.Source == "sqlite") && c.Dataset.Query == "" {
		add("dataset.query is required for source %s", c.Dataset.Source)
	}

	if !c.Storage.InMemory && c.Storage.DBPath == "" {
		add("storage.db_path is required unless storage.in_memory is set")
	}

	if c.Session.TTL <= 0 {
		add("session.ttl must be positive")
	}

	if c.Render.Width <= 0 || c.Render.Height <= 0 || c.Render.DPI <= 0 {
		add("render width, height and dpi must be positive")
	}

	return result.ErrorOrNil()
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
