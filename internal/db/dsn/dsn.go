// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/confstore/confstore/internal/config"
)

// Create builds the Data Source Name for the configured gorm engine.
func Create(dbCfg *config.DB) (string, error) {
	switch dbCfg.GormEngine {
	case config.EngineMySQL, "":
		return MySQL(dbCfg), nil
	case config.EnginePostgres:
		return Postgres(dbCfg), nil
	case config.EngineSQLite:
		return SQLite(dbCfg), nil
	default:
		return "", config.ErrUnknownGormEngine
	}
}

// MySQL returns a go-sql-driver/mysql DSN.
func MySQL(dbCfg *config.DB) string {
	out := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
		dbCfg.User,
		dbCfg.Password,
		dbCfg.Host,
		dbCfg.Port,
		dbCfg.Name,
	)

	if dbCfg.Extras != "" {
		out += "?" + dbCfg.Extras
	}

	return out
}

// Postgres returns a pgx URL. Extras are appended as query parameters.
func Postgres(dbCfg *config.DB) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(dbCfg.User, dbCfg.Password),
		Host:     fmt.Sprintf("%s:%d", dbCfg.Host, dbCfg.Port),
		Path:     "/" + dbCfg.Name,
		RawQuery: dbCfg.Extras,
	}

	return u.String()
}

// SQLite returns the database file path with the extras as pragma query.
func SQLite(dbCfg *config.DB) string {
	if dbCfg.Extras == "" {
		return dbCfg.Path
	}

	sep := "?"
	if strings.Contains(dbCfg.Path, "?") {
		sep = "&"
	}

	return dbCfg.Path + sep + dbCfg.Extras
}
