package database

import (
	"context"
	"testing"
)

func TestDriver(t *testing.T) {
	cases := []struct {
		dsn, driver, source string
	}{
		{"postgres://u:p@localhost:5432/db", "pgx", "postgres://u:p@localhost:5432/db"},
		{"postgresql://localhost/db", "pgx", "postgresql://localhost/db"},
		{"sqlite://catalog.db", "sqlite", "catalog.db"},
		{"file:catalog.db?mode=memory", "sqlite", "file:catalog.db?mode=memory"},
		{"catalog.db", "sqlite", "catalog.db"},
	}
	for _, tc := range cases {
		driver, source := Driver(tc.dsn)
		if driver != tc.driver || source != tc.source {
			t.Errorf("Driver(%q) = %q, %q; want %q, %q", tc.dsn, driver, source, tc.driver, tc.source)
		}
	}
}

func TestOpenSQLiteMemory(t *testing.T) {
	db, err := Open(context.Background(), "file:open_test?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	var one int
	if err := db.QueryRow("SELECT 1").Scan(&one); err != nil || one != 1 {
		t.Fatalf("SELECT 1 = %d, %v", one, err)
	}
}

func TestOpenEmptyDSN(t *testing.T) {
	if _, err := Open(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty DSN")
	}
}
