// Package audit is a supplemental feature not present in the original
// Python reference implementation: a SQLite-backed record of lease and DNS
// query events, for operators who want a history longer than the daemon's
// in-memory state. Grounded on the teacher's internal/database package for
// the golang-migrate/modernc.org-sqlite wiring, trimmed from a full
// configuration store down to an append-only event log.
package audit

import (
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Log is an append-only audit trail of DHCP lease and DNS query events.
type Log struct {
	conn *sql.DB
}

// Open opens (creating if necessary) the audit database at path and brings
// its schema up to date.
func Open(path string) (*Log, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening audit database %q: %w", path, err)
	}
	conn.SetMaxOpenConns(1) // single-writer append log; avoid SQLITE_BUSY churn

	l := &Log{conn: conn}
	if err := l.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return l, nil
}

// Close closes the underlying database connection.
func (l *Log) Close() error {
	return l.conn.Close()
}

func (l *Log) migrate() error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading embedded audit migrations: %w", err)
	}
	dbDriver, err := sqlite.WithInstance(l.conn, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating audit migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("creating audit migrator: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running audit migrations: %w", err)
	}
	return nil
}

// RecordLeaseEvent appends one DHCP lease-engine decision (offer, ack, nak).
func (l *Log) RecordLeaseEvent(event, address, clientMAC string, xid uint32) error {
	_, err := l.conn.Exec(
		`INSERT INTO lease_events (occurred_at, event, address, client_mac, xid) VALUES (?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), event, address, clientMAC, xid,
	)
	if err != nil {
		return fmt.Errorf("recording lease event: %w", err)
	}
	return nil
}

// RecordDNSQuery appends one resolved DNS query, noting whether it was
// answered from the local zone or forwarded upstream.
func (l *Log) RecordDNSQuery(name string, qtype uint16, forwarded bool) error {
	_, err := l.conn.Exec(
		`INSERT INTO dns_query_events (occurred_at, name, qtype, forwarded) VALUES (?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), name, qtype, forwarded,
	)
	if err != nil {
		return fmt.Errorf("recording DNS query event: %w", err)
	}
	return nil
}
