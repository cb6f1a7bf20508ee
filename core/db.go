package core

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// DBQueryer is satisfied by *sqlx.DB, *sqlx.Tx and *sqlx.Conn.
type DBQueryer interface {
	QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
}

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}
