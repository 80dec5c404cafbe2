// internal/db/db.go
package db

import (
	"database/sql"

	_ "github.com/lib/pq"

	"github.com/afyacard/healthcard-backend/internal/config"
	"github.com/afyacard/healthcard-backend/internal/pkg/logger"
)

// Connect opens a postgres connection from the given config and verifies it
// with a ping. The returned handle is injected into the repositories; there
// is no package-level connection.
func Connect(cfg config.DatabaseConfig) (*sql.DB, error) {
	conn, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, err
	}

	if err = conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}

	logger.Info("connected to database", "db_host", cfg.Host, "db_name", cfg.Name)
	return conn, nil
}
