package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	"github.com/rmugicag/pyquet/utils"
	_ "modernc.org/sqlite" // registers "sqlite"
)

var (
	db     *sql.DB
	dbOnce sync.Once
	dbErr  error
)

// Driver returns the database/sql driver name and the data source for dsn.
// postgres:// and postgresql:// URLs go to pgx, everything else is treated
// as a SQLite file or URI
func Driver(dsn string) (string, string) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "pgx", dsn
	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite", strings.TrimPrefix(dsn, "sqlite://")
	default:
		return "sqlite", dsn
	}
}

// Open opens and pings a catalog database
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("database DSN must not be empty")
	}

	driver, source := Driver(dsn)
	conn, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s database: %w", driver, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return conn, nil
}

// GetDB returns the shared catalog database configured by CATALOG_DATABASE_URL
func GetDB() (*sql.DB, error) {
	dbOnce.Do(func() {
		utils.LoadEnv()
		dsn := os.Getenv(utils.EnvCatalogDatabaseURL)
		if dsn == "" {
			dbErr = fmt.Errorf("%s not set in environment", utils.EnvCatalogDatabaseURL)
			return
		}
		db, dbErr = Open(context.Background(), dsn)
	})

	return db, dbErr
}

// Close closes the shared database (should be called on application shutdown)
func Close() {
	if db != nil {
		db.Close()
	}
}
