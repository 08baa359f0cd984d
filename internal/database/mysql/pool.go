package mysql

import (
	"database/sql"
	"strings"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/koustreak/sqlgenius/internal/database"
)

// buildDSN formats the discrete fields through the driver's own Config, so
// reserved characters in the password never break parsing.
func buildDSN(cfg *database.Config) string {
	mc := gomysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = cfg.Address()
	mc.DBName = strings.TrimSpace(cfg.Database)
	mc.ParseTime = true
	if cfg.ConnectTimeout > 0 {
		mc.Timeout = cfg.ConnectTimeout
	}
	return mc.FormatDSN()
}

// applyPool copies pool tuning onto db. Zero values keep database/sql defaults.
func applyPool(db *sql.DB, cfg *database.Config) {
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(int(cfg.MaxConns))
	}
	if cfg.MinConns > 0 {
		db.SetMaxIdleConns(int(cfg.MinConns))
	}
	if cfg.MaxConnLifetime > 0 {
		db.SetConnMaxLifetime(cfg.MaxConnLifetime)
	}
	if cfg.MaxConnIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.MaxConnIdleTime)
	}
}
