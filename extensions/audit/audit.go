// Package audit records every Router invocation to PostgreSQL as a
// wildcard listener, giving operators a queryable trail of which
// client invoked which route and when without the core Router package
// knowing anything about storage.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	log "github.com/sirupsen/logrus"

	"github.com/ipcbridge/runtime/internal/ipc"
	"github.com/ipcbridge/runtime/internal/router"
)

const defaultTable = "ipc_invocations"

// Sink persists invocation records to a Postgres table, created on
// first use if missing.
type Sink struct {
	db    *sql.DB
	table string
}

// Open connects to dsn and ensures the invocations table exists.
func Open(ctx context.Context, dsn, table string) (*Sink, error) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return nil, fmt.Errorf("audit: DSN is required")
	}
	if table == "" {
		table = defaultTable
	}

	db, err := sql.Open("pgx", trimmed)
	if err != nil {
		return nil, fmt.Errorf("audit: open database connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("audit: ping database: %w", err)
	}

	s := &Sink{db: db, table: quoteIdentifier(table)}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Sink) ensureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			client_id TEXT NOT NULL,
			route TEXT NOT NULL,
			seq TEXT NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`, s.table)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("audit: create invocations table: %w", err)
	}
	return nil
}

// Record inserts one invocation row.
func (s *Sink) Record(ctx context.Context, clientID, route, seq string) error {
	query := fmt.Sprintf(`INSERT INTO %s (client_id, route, seq) VALUES ($1, $2, $3)`, s.table)
	if _, err := s.db.ExecContext(ctx, query, clientID, route, seq); err != nil {
		return fmt.Errorf("audit: insert invocation: %w", err)
	}
	return nil
}

// Close releases the underlying database connection.
func (s *Sink) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func quoteIdentifier(identifier string) string {
	replaced := strings.ReplaceAll(identifier, `"`, `""`)
	return `"` + replaced + `"`
}

// Listener returns a router.MessageCallback suitable for
// Router.Listen("*", ...) that records every invocation this process
// observes. Recording errors are logged, not surfaced to the caller,
// since a listener cannot veto dispatch (spec.md §9).
func (s *Sink) Listener(clientID string) router.MessageCallback {
	return func(message ipc.Message, r *router.Router, reply func(ipc.Result)) {
		if err := s.Record(context.Background(), clientID, message.Name, message.Seq); err != nil {
			log.WithError(err).Warn("audit: failed to record invocation")
		}
	}
}
