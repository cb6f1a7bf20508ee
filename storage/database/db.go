package database

import (
	"context"
	"net/url"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // registers "postgres"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // registers "sqlite"

	"github.com/trezcool/alama/core"
)

// Drivers
const (
	Postgres = "postgres"
	PGX      = "pgx"
	SQLite   = "sqlite"
)

var errUnknownDriver = errors.New("unknown database driver")

// DSN builds the connection string for the configured driver.
func DSN(conf core.DatabaseConfig) (string, error) {
	if conf.DSN != "" {
		return conf.DSN, nil
	}

	switch conf.Driver {
	case Postgres, PGX:
		sslMode := "require"
		if conf.DisableTLS {
			sslMode = "disable"
		}
		q := make(url.Values)
		q.Set("sslmode", sslMode)
		q.Set("timezone", "utc")

		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(conf.User, conf.Password),
			Host:     conf.Address(),
			Path:     conf.Name,
			RawQuery: q.Encode(),
		}
		return u.String(), nil
	case SQLite:
		return conf.Name, nil
	default:
		return "", errors.Wrap(errUnknownDriver, conf.Driver)
	}
}

// Open connects to the configured database and waits until it answers.
func Open(ctx context.Context, conf core.DatabaseConfig) (*sqlx.DB, error) {
	dsn, err := DSN(conf)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open(conf.Driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if conf.Driver == SQLite {
		// each new connection of an in-memory database is a separate database
		db.SetMaxOpenConns(1)
	}
	if err = ping(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(ctx context.Context, db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "DB ping")
		case <-time.After(time.Duration(attempts) * 100 * time.Millisecond):
		}
	}
	return errors.Wrap(err, "DB ping timeout")
}
