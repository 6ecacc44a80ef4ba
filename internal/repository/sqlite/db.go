// Package sqlite contains the SQLite implementation of repository interfaces,
// backed by the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"net/url"
	"strings"

	_ "modernc.org/sqlite"
)

// pragmas applied to every pooled connection: WAL lets readers run beside the
// single writer, FULL sync makes a committed write durable before it returns.
var pragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"synchronous(FULL)",
}

// DSN builds a modernc DSN for the database file at path with the required pragmas.
func DSN(path string) string {
	return WithPragmas(path)
}

// WithPragmas turns a bare path or a file: URI into a DSN that carries every
// required pragma. Pragmas the caller already set are kept as given.
func WithPragmas(dsn string) string {
	path, rawQuery, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
	// Malformed pairs are dropped; the rest of the query is kept.
	q, _ := url.ParseQuery(rawQuery)

	have := map[string]bool{}
	for _, p := range q["_pragma"] {
		have[pragmaName(p)] = true
	}
	for _, p := range pragmas {
		if !have[pragmaName(p)] {
			q.Add("_pragma", p)
		}
	}
	return "file:" + path + "?" + q.Encode()
}

// pragmaName returns "busy_timeout" for "busy_timeout(5000)" or "busy_timeout=5000".
func pragmaName(p string) string {
	if i := strings.IndexAny(p, "(="); i >= 0 {
		p = p[:i]
	}
	return strings.ToLower(strings.TrimSpace(p))
}

// Open opens the database with the required pragmas and checks it is reachable.
// dsn may be a bare file path or a file: URI.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", WithPragmas(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
