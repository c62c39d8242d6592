// internal/db/db.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect identifies the SQL flavour behind a DB handle.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

type DB struct {
	*sql.DB
	dialect Dialect
}

// ParseURL maps a DATABASE_URL value to a driver name, a DSN and a dialect.
// postgres:// and postgresql:// URLs go to lib/pq; sqlite:, file: and bare
// paths go to the embedded SQLite driver.
func ParseURL(url string) (driver, dsn string, dialect Dialect, err error) {
	url = strings.TrimSpace(url)
	switch {
	case url == "":
		return "", "", "", fmt.Errorf("database url is empty")
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return "postgres", url, DialectPostgres, nil
	case strings.HasPrefix(url, "sqlite://"):
		return "sqlite", strings.TrimPrefix(url, "sqlite://"), DialectSQLite, nil
	case strings.HasPrefix(url, "sqlite:"):
		return "sqlite", strings.TrimPrefix(url, "sqlite:"), DialectSQLite, nil
	case strings.HasPrefix(url, "file:"):
		return "sqlite", url, DialectSQLite, nil
	case strings.Contains(url, "://"):
		return "", "", "", fmt.Errorf("unsupported database url scheme: %s", url[:strings.Index(url, "://")])
	default:
		return "sqlite", url, DialectSQLite, nil
	}
}

func New(url string) (*DB, error) {
	driver, dsn, dialect, err := ParseURL(url)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if dialect == DialectSQLite {
		if strings.Contains(dsn, ":memory:") {
			// Every new connection would get its own empty in-memory database.
			db.SetMaxOpenConns(1)
		}

		// Enable WAL mode for concurrent reads
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}

		if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	return &DB{DB: db, dialect: dialect}, nil
}

// Dialect reports which SQL flavour the handle speaks.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// CheckConnection runs a trivial query against the database.
func (db *DB) CheckConnection(ctx context.Context) error {
	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("database connectivity check failed: %w", err)
	}
	return nil
}

// Rebind rewrites ? placeholders into the dialect's bind syntax.
func (db *DB) Rebind(query string) string {
	return Rebind(db.dialect, query)
}

// Rebind rewrites ? placeholders into $1, $2... for PostgreSQL. Question
// marks inside single-quoted literals are left alone.
func Rebind(dialect Dialect, query string) string {
	if dialect != DialectPostgres || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
