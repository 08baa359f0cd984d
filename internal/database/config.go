package database

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/koustreak/sqlgenius/internal/errs"
)

// Config holds all settings needed to open a database handle.
//
// For SQLite every connection field is ignored and Path (set by the
// connection provider from service configuration) is used instead.
type Config struct {
	// Kind is the database engine (e.g. KindPostgres).
	Kind Kind

	// Connection fields for network-backed kinds.
	Host     string
	Port     string
	User     string
	Password string
	Database string

	// Path is the local SQLite file.
	Path string

	// Pool tuning
	MaxConns        int32         // maximum number of connections in the pool
	MinConns        int32         // minimum number of idle connections kept alive
	MaxConnLifetime time.Duration // maximum time a connection may be reused
	MaxConnIdleTime time.Duration // maximum time a connection may sit idle

	// ConnectTimeout bounds establishing a new connection.
	ConnectTimeout time.Duration
}

// PoolDefaults fills zero pool settings with values sized for a single
// interactive session rather than a shared service pool.
func (c *Config) PoolDefaults() {
	if c.MaxConns == 0 {
		c.MaxConns = 4
	}
	if c.MaxConnLifetime == 0 {
		c.MaxConnLifetime = 30 * time.Minute
	}
	if c.MaxConnIdleTime == 0 {
		c.MaxConnIdleTime = 5 * time.Minute
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 10 * time.Second
	}
}

// Validate checks the fields the chosen kind needs. Host and port defaults
// are applied first so an empty form still targets localhost.
func (c *Config) Validate() error {
	switch c.Kind {
	case KindSQLite:
		if strings.TrimSpace(c.Path) == "" {
			return errs.New(errs.ErrKindInvalidInput, "sqlite file path is not configured")
		}
		return nil
	case KindPostgres, KindMySQL:
	default:
		return errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unsupported database kind %q", c.Kind))
	}

	if strings.TrimSpace(c.Host) == "" {
		c.Host = "localhost"
	}
	if strings.TrimSpace(c.Port) == "" {
		c.Port = c.Kind.DefaultPort()
	}
	port, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || port <= 0 || port > 65535 {
		return errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("invalid port %q", c.Port))
	}
	if strings.TrimSpace(c.User) == "" {
		return errs.New(errs.ErrKindInvalidInput, "user is required")
	}
	if strings.TrimSpace(c.Database) == "" {
		return errs.New(errs.ErrKindInvalidInput, "database name is required")
	}
	return nil
}

// Address returns host:port for network-backed kinds.
func (c *Config) Address() string {
	return net.JoinHostPort(strings.TrimSpace(c.Host), strings.TrimSpace(c.Port))
}

// String describes the target without the password.
func (c Config) String() string {
	if c.Kind == KindSQLite {
		return "sqlite:" + c.Path
	}
	return fmt.Sprintf("%s://%s@%s/%s", c.Kind, c.User, c.Address(), c.Database)
}
