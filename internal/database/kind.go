package database

import (
	"fmt"
	"strings"

	"github.com/koustreak/sqlgenius/internal/errs"
)

// Kind identifies the database engine.
type Kind string

const (
	KindSQLite   Kind = "sqlite"
	KindPostgres Kind = "postgres"
	KindMySQL    Kind = "mysql"
)

// Kinds lists every supported engine in selector order.
var Kinds = []Kind{KindSQLite, KindPostgres, KindMySQL}

// ParseKind accepts the canonical names as well as the display names
// ("SQLite", "PostgreSQL", "MySQL") case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sqlite", "sqlite3":
		return KindSQLite, nil
	case "postgres", "postgresql", "pg":
		return KindPostgres, nil
	case "mysql":
		return KindMySQL, nil
	default:
		return "", errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unsupported database kind %q", s))
	}
}

// DisplayName is the name shown to users.
func (k Kind) DisplayName() string {
	switch k {
	case KindSQLite:
		return "SQLite"
	case KindPostgres:
		return "PostgreSQL"
	case KindMySQL:
		return "MySQL"
	default:
		return string(k)
	}
}

// DefaultPort is the conventional port for network-backed kinds, "" for SQLite.
func (k Kind) DefaultPort() string {
	switch k {
	case KindPostgres:
		return "5432"
	case KindMySQL:
		return "3306"
	default:
		return ""
	}
}

// DefaultUser mirrors the superuser each engine ships with.
func (k Kind) DefaultUser() string {
	switch k {
	case KindPostgres:
		return "postgres"
	case KindMySQL:
		return "root"
	default:
		return ""
	}
}

// Networked reports whether the kind connects over the network.
func (k Kind) Networked() bool {
	return k == KindPostgres || k == KindMySQL
}
