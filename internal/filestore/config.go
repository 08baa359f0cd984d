package filestore

import (
	"strings"

	"github.com/koustreak/sqlgenius/internal/errs"
)

// Provider identifies the file storage backend.
type Provider string

const (
	ProviderMinIO Provider = "minio"
)

// Config holds the settings needed to reach the script bucket.
type Config struct {
	Provider Provider `yaml:"provider"`

	// Endpoint is host:port, e.g. "localhost:9000" for local MinIO.
	Endpoint string `yaml:"endpoint"`

	AccessKey string `yaml:"access_key"`
	// SecretKey is read from the environment, never from the config file.
	SecretKey string `yaml:"-"`

	UseSSL bool   `yaml:"use_ssl"`
	Region string `yaml:"region"`

	// DefaultBucket is used when a request names no bucket.
	DefaultBucket string `yaml:"default_bucket"`
}

// DefaultConfig returns a local-dev config for MinIO.
func DefaultConfig(endpoint, accessKey, secretKey string) *Config {
	return &Config{
		Provider:  ProviderMinIO,
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
		UseSSL:    false,
	}
}

// Enabled reports whether an object store is configured at all.
func (c *Config) Enabled() bool {
	return c != nil && strings.TrimSpace(c.Endpoint) != ""
}

// Validate checks the fields required to build a client.
func (c *Config) Validate() error {
	if c.Provider != "" && c.Provider != ProviderMinIO {
		return errs.New(errs.ErrKindInvalidInput, "unsupported object store provider "+string(c.Provider))
	}
	if strings.TrimSpace(c.Endpoint) == "" {
		return errs.New(errs.ErrKindInvalidInput, "object store endpoint is required")
	}
	if c.AccessKey == "" || c.SecretKey == "" {
		return errs.New(errs.ErrKindInvalidInput, "object store credentials are required")
	}
	return nil
}

// Bucket returns name, or DefaultBucket when name is blank.
func (c *Config) Bucket(name string) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	return c.DefaultBucket
}
