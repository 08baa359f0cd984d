// Package config loads service configuration from an optional YAML file,
// with a small set of environment overrides.
//
// Model credentials and database passwords are never part of it; they
// arrive per session.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/koustreak/sqlgenius/internal/errs"
	"github.com/koustreak/sqlgenius/internal/filestore"
	"github.com/koustreak/sqlgenius/internal/logger"
	"github.com/koustreak/sqlgenius/internal/nl2sql"
	"go.yaml.in/yaml/v3"
)

// EnvConfigPath names the variable that points at the YAML file.
const EnvConfigPath = "SQLGENIUS_CONFIG"

// LookupFunc matches os.LookupEnv.
type LookupFunc func(string) (string, bool)

type Config struct {
	HTTP        HTTPConfig       `yaml:"http"`
	Log         logger.Config    `yaml:"log"`
	Database    DatabaseConfig   `yaml:"database"`
	Model       ModelConfig      `yaml:"model"`
	Executor    ExecutorConfig   `yaml:"executor"`
	Sessions    SessionConfig    `yaml:"sessions"`
	ObjectStore filestore.Config `yaml:"object_store"`
}

type HTTPConfig struct {
	Address         string        `yaml:"address"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// MaxBodyBytes caps request bodies, including uploaded scripts.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

type DatabaseConfig struct {
	// SQLitePath is the fixed local file every SQLite session opens.
	SQLitePath     string        `yaml:"sqlite_path"`
	MaxConns       int32         `yaml:"max_conns"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

type ModelConfig struct {
	Provider string        `yaml:"provider"`
	ModelID  string        `yaml:"model_id"`
	Timeout  time.Duration `yaml:"timeout"`
	// IAMURL overrides the IBM Cloud token endpoint.
	IAMURL string `yaml:"iam_url"`
}

type ExecutorConfig struct {
	// MaxRows caps rows returned per query; 0 returns every row.
	MaxRows int           `yaml:"max_rows"`
	Timeout time.Duration `yaml:"timeout"`
}

type SessionConfig struct {
	IdleTTL       time.Duration `yaml:"idle_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:         ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    120 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MaxBodyBytes:    16 << 20,
		},
		Log: logger.Config{Level: "info", Format: "json", TimeFormat: "rfc3339"},
		Database: DatabaseConfig{
			SQLitePath:     "sample.db",
			MaxConns:       4,
			ConnectTimeout: 10 * time.Second,
		},
		Model: ModelConfig{
			Provider: string(nl2sql.ProviderWatsonX),
			ModelID:  nl2sql.DefaultModelID,
			Timeout:  60 * time.Second,
		},
		Executor: ExecutorConfig{Timeout: 60 * time.Second},
		Sessions: SessionConfig{
			IdleTTL:       30 * time.Minute,
			SweepInterval: time.Minute,
		},
		ObjectStore: filestore.Config{Provider: filestore.ProviderMinIO},
	}
}

// LoadFromEnv resolves the file from SQLGENIUS_CONFIG and applies
// overrides from the process environment.
func LoadFromEnv() (*Config, error) {
	return Load("", os.LookupEnv)
}

// Load reads path over the defaults, then applies environment overrides
// through lookup. An empty path falls back to SQLGENIUS_CONFIG; when that is
// unset too, only defaults and overrides apply.
func Load(path string, lookup LookupFunc) (*Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if path == "" {
		path, _ = lookup(EnvConfigPath)
	}

	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, "read config "+path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, "parse config "+path, err)
		}
	}

	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup LookupFunc) error {
	if v, ok := lookup("SQLGENIUS_HTTP_ADDR"); ok {
		cfg.HTTP.Address = strings.TrimSpace(v)
	}
	if v, ok := lookup("SQLGENIUS_LOG_LEVEL"); ok {
		cfg.Log.Level = strings.TrimSpace(v)
	}
	if v, ok := lookup("SQLGENIUS_LOG_FORMAT"); ok {
		cfg.Log.Format = strings.TrimSpace(v)
	}
	if v, ok := lookup("SQLGENIUS_SQLITE_PATH"); ok {
		cfg.Database.SQLitePath = strings.TrimSpace(v)
	}
	if v, ok := lookup("SQLGENIUS_MAX_ROWS"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errs.Wrap(errs.ErrKindInvalidInput, "invalid SQLGENIUS_MAX_ROWS", err)
		}
		cfg.Executor.MaxRows = n
	}
	if v, ok := lookup("SQLGENIUS_MINIO_ACCESS_KEY"); ok {
		cfg.ObjectStore.AccessKey = v
	}
	if v, ok := lookup("SQLGENIUS_MINIO_SECRET_KEY"); ok {
		cfg.ObjectStore.SecretKey = v
	}
	return nil
}

// Validate rejects values the service cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.HTTP.Address) == "" {
		return errs.New(errs.ErrKindInvalidInput, "http address is required")
	}
	if strings.TrimSpace(c.Database.SQLitePath) == "" {
		return errs.New(errs.ErrKindInvalidInput, "database.sqlite_path is required")
	}
	if c.Executor.MaxRows < 0 {
		return errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("executor.max_rows must be >= 0, got %d", c.Executor.MaxRows))
	}
	if _, err := nl2sql.ParseProvider(c.Model.Provider); err != nil {
		return err
	}
	return nil
}

// LoadDotEnv loads KEY=value files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return errs.Wrap(errs.ErrKindInvalidInput, "load env file "+p, err)
		}
	}
	return nil
}
