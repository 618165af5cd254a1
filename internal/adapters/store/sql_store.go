package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rasi23/pingpeek-phishguard/internal/core"
)

// dialect holds the statements that differ between database/sql drivers
type dialect struct {
	name   string
	schema []string
	upsert string
}

// SQLStore is a database/sql implementation of core.EmailRepository
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	logger  *zap.Logger
}

func newSQLStore(db *sql.DB, d dialect, logger *zap.Logger) (*SQLStore, error) {
	for _, stmt := range d.schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create %s schema: %w", d.name, err)
		}
	}
	return &SQLStore{db: db, dialect: d, logger: logger}, nil
}

const selectColumns = `id, sender, subject, received_at, status, content, quarantined, confidence, rules, intel_domain, malicious_score`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmail(row rowScanner) (*core.Email, error) {
	var (
		e          core.Email
		receivedAt int64
		status     string
		rules      string
	)
	err := row.Scan(&e.ID, &e.From, &e.Subject, &receivedAt, &status, &e.Content,
		&e.Quarantined, &e.Confidence, &rules, &e.IntelDomain, &e.MaliciousScore)
	if err != nil {
		return nil, err
	}
	e.Date = time.UnixMilli(receivedAt).UTC()
	e.Status = core.Verdict(status)
	e.Rules = splitRules(rules)
	return &e, nil
}

func joinRules(rules []string) string {
	return strings.Join(rules, ",")
}

func splitRules(rules string) []string {
	if rules == "" {
		return []string{}
	}
	return strings.Split(rules, ",")
}

// List returns all emails, newest first
func (s *SQLStore) List(ctx context.Context) ([]core.Email, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM emails ORDER BY received_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query emails: %w", err)
	}
	defer rows.Close()

	emails := []core.Email{}
	for rows.Next() {
		e, err := scanEmail(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan email: %w", err)
		}
		emails = append(emails, *e)
	}
	return emails, rows.Err()
}

// Get returns one email
func (s *SQLStore) Get(ctx context.Context, id string) (*core.Email, error) {
	e, err := scanEmail(s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM emails WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query email: %w", err)
	}
	return e, nil
}

// Save inserts or replaces an email. A re-analysed email keeps its quarantine flag.
func (s *SQLStore) Save(ctx context.Context, e *core.Email) error {
	_, err := s.db.ExecContext(ctx, s.dialect.upsert,
		e.ID, e.From, e.Subject, e.Date.UnixMilli(), string(e.Status), e.Content,
		e.Quarantined, e.Confidence, joinRules(e.Rules), e.IntelDomain, e.MaliciousScore)
	if err != nil {
		return fmt.Errorf("failed to save email: %w", err)
	}
	return nil
}

// Quarantine flags an email
func (s *SQLStore) Quarantine(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE emails SET quarantined = ? WHERE id = ?`, true, id)
	if err != nil {
		return fmt.Errorf("failed to quarantine email: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	// MySQL reports zero affected rows when the flag was already set
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return nil
}

// Close closes the database
func (s *SQLStore) Close() error {
	return s.db.Close()
}
