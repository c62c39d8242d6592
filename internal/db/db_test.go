// internal/db/db_test.go
package db

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB(t *testing.T) {
	path := t.TempDir() + "/test.db"
	database, err := New(path)
	if err != nil {
		t.Fatalf("failed to create db: %v", err)
	}
	defer database.Close()

	// Verify WAL mode is enabled
	var journalMode string
	err = database.QueryRow("PRAGMA journal_mode").Scan(&journalMode)
	if err != nil {
		t.Fatalf("failed to query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected journal_mode=wal, got %s", journalMode)
	}
	if database.Dialect() != DialectSQLite {
		t.Errorf("expected sqlite dialect, got %s", database.Dialect())
	}
}

func TestCheckConnection(t *testing.T) {
	database, err := New(t.TempDir() + "/test.db")
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, database.CheckConnection(context.Background()))

	database.Close()
	assert.Error(t, database.CheckConnection(context.Background()))
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		url     string
		driver  string
		dsn     string
		dialect Dialect
		wantErr bool
	}{
		{url: "postgres://u:p@localhost:5432/saree?sslmode=require", driver: "postgres", dsn: "postgres://u:p@localhost:5432/saree?sslmode=require", dialect: DialectPostgres},
		{url: "postgresql://localhost/saree", driver: "postgres", dsn: "postgresql://localhost/saree", dialect: DialectPostgres},
		{url: "sqlite://data.db", driver: "sqlite", dsn: "data.db", dialect: DialectSQLite},
		{url: "sqlite:data.db", driver: "sqlite", dsn: "data.db", dialect: DialectSQLite},
		{url: "file:data.db?cache=shared", driver: "sqlite", dsn: "file:data.db?cache=shared", dialect: DialectSQLite},
		{url: "./data/saree.db", driver: "sqlite", dsn: "./data/saree.db", dialect: DialectSQLite},
		{url: "", wantErr: true},
		{url: "mysql://localhost/saree", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			driver, dsn, dialect, err := ParseURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.driver, driver)
			assert.Equal(t, tt.dsn, dsn)
			assert.Equal(t, tt.dialect, dialect)
		})
	}
}

func TestRebind(t *testing.T) {
	q := "SELECT id FROM admin_users WHERE email = ? AND note = 'why?' AND phone = ?"

	assert.Equal(t, q, Rebind(DialectSQLite, q))
	assert.Equal(t,
		"SELECT id FROM admin_users WHERE email = $1 AND note = 'why?' AND phone = $2",
		Rebind(DialectPostgres, q))
}

func TestRegisterMetrics(t *testing.T) {
	database, err := New(t.TempDir() + "/test.db")
	require.NoError(t, err)
	defer database.Close()

	reg := prometheus.NewRegistry()
	require.NoError(t, database.RegisterMetrics(reg))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
