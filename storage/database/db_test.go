package database

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		name    string
		conf    core.DatabaseConfig
		want    string
		wantErr error
	}{
		{
			name: "postgres",
			conf: core.DatabaseConfig{Driver: Postgres, Host: "db", Port: "5432", User: "alama", Password: "secret", Name: "school"},
			want: "postgres://alama:secret@db:5432/school?sslmode=require&timezone=utc",
		},
		{
			name: "pgx without TLS",
			conf: core.DatabaseConfig{Driver: PGX, Host: "localhost", User: "u", Name: "school", DisableTLS: true},
			want: "postgres://u:@localhost/school?sslmode=disable&timezone=utc",
		},
		{name: "sqlite", conf: core.DatabaseConfig{Driver: SQLite, Name: ":memory:"}, want: ":memory:"},
		{name: "explicit dsn", conf: core.DatabaseConfig{Driver: Postgres, DSN: "host=db"}, want: "host=db"},
		{name: "unknown driver", conf: core.DatabaseConfig{Driver: "oracle"}, wantErr: errUnknownDriver},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DSN(tt.conf)
			if errors.Cause(err) != tt.wantErr {
				t.Fatalf("DSN() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("DSN() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	db, err := Open(context.Background(), core.DatabaseConfig{Driver: SQLite, Name: ":memory:"})
	if err != nil {
		t.Fatalf("Open() unexpected error = %v", err)
	}
	defer db.Close()

	var one int
	if err := db.Get(&one, "SELECT 1"); err != nil || one != 1 {
		t.Errorf("SELECT 1 = %d, %v", one, err)
	}
}
