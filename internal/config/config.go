// Package config loads SkillRoute configuration from an optional YAML file,
// a .env file and SKILLROUTE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/skillroute/internal/llm"
	"github.com/abhisek/skillroute/internal/store"
)

// DefaultFile is the config file looked up when none is given explicitly.
const DefaultFile = "skillroute.yaml"

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Config is the root configuration.
type Config struct {
	App     AppConfig     `yaml:"app"`
	Storage StorageConfig `yaml:"storage"`
	LLM     llm.Config    `yaml:"llm"`
}

// AppConfig holds process-level settings.
type AppConfig struct {
	LogLevel string     `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// HTTPConfig configures the localhost API.
type HTTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns host:port.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// StorageConfig selects where saved paths live.
type StorageConfig struct {
	// Backend is "sqlite" (default) or "file".
	Backend string `yaml:"backend"`
	// Path is the SQLite database file.
	Path string `yaml:"path"`
	// Dir is the directory used by the file backend.
	Dir string `yaml:"dir"`
}

// Default returns a Config with defaults applied. Storage lives under the
// XDG data directory, or the working directory if that cannot be resolved.
func Default() Config {
	dir, err := store.DefaultDataDir()
	if err != nil {
		dir = "."
	}
	return Config{
		App: AppConfig{
			LogLevel: "info",
			HTTP: HTTPConfig{
				Host: "127.0.0.1",
				Port: 8787,
			},
		},
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Path:    filepath.Join(dir, store.DBFileName),
			Dir:     dir,
		},
		LLM: llm.DefaultConfig(),
	}
}

// Load builds the configuration. path names a YAML file; when explicit is
// false a missing file is not an error. A .env file in the working
// directory is loaded first without overriding the real environment.
func Load(path string, explicit bool) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			expanded := expandEnv(string(data))
			if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.LLM.ApplyDiscovery()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// envRef matches ${NAME} references. Bare $NAME is left alone so values
// such as passwords or regexes survive unchanged.
var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv replaces ${NAME} with the variable's value, or "" when unset.
func expandEnv(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(m string) string {
		return os.Getenv(m[2 : len(m)-1])
	})
}

func (c *Config) applyEnv() error {
	c.LLM.ApplyEnv()

	if v := os.Getenv("SKILLROUTE_DB"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("SKILLROUTE_STORAGE"); v != "" {
		c.Storage.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("SKILLROUTE_HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SKILLROUTE_HTTP_PORT: %w", err)
		}
		c.App.HTTP.Port = port
	}
	if v := os.Getenv("SKILLROUTE_LOG_LEVEL"); v != "" {
		c.App.LogLevel = strings.ToLower(v)
	}
	return nil
}

// Validate checks the configuration. A missing LLM credential is allowed;
// the services report it when a model call is attempted.
func (c Config) Validate() error {
	if err := validation.ValidateStruct(&c.App,
		validation.Field(&c.App.LogLevel, validation.Required, validation.In("debug", "info", "warn", "error")),
	); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := validation.ValidateStruct(&c.App.HTTP,
		validation.Field(&c.App.HTTP.Host, validation.Required),
		validation.Field(&c.App.HTTP.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	); err != nil {
		return fmt.Errorf("app.http: %w", err)
	}
	if err := validation.ValidateStruct(&c.Storage,
		validation.Field(&c.Storage.Backend, validation.Required, validation.In(BackendSQLite, BackendFile)),
		validation.Field(&c.Storage.Path, validation.When(c.Storage.Backend == BackendSQLite, validation.Required)),
		validation.Field(&c.Storage.Dir, validation.When(c.Storage.Backend == BackendFile, validation.Required)),
	); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := validation.Validate(c.LLM.Provider,
		validation.Required,
		validation.In("gemini", "openai", "anthropic", "openrouter", "mock"),
	); err != nil {
		return fmt.Errorf("llm.provider: %w", err)
	}
	return nil
}
