package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/rasi23/pingpeek-phishguard/internal/core"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS emails (
		id TEXT PRIMARY KEY,
		sender TEXT NOT NULL,
		subject TEXT NOT NULL,
		received_at BIGINT NOT NULL,
		status TEXT NOT NULL,
		content TEXT NOT NULL,
		quarantined BOOLEAN NOT NULL DEFAULT FALSE,
		confidence DOUBLE PRECISION NOT NULL,
		rules TEXT NOT NULL,
		intel_domain TEXT NOT NULL,
		malicious_score DOUBLE PRECISION NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_emails_received_at ON emails(received_at);
`

// PostgresStore is a PostgreSQL implementation of core.EmailRepository
type PostgresStore struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresStore opens a connection pool and creates the schema
func NewPostgresStore(ctx context.Context, dsn string, logger *zap.Logger) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse db config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnIdleTime = time.Minute

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping: %w", err)
	}
	if _, err := pool.Exec(connectCtx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create postgres schema: %w", err)
	}

	logger.Info("PostgreSQL connection established successfully")
	return &PostgresStore{db: pool, logger: logger}, nil
}

// List returns all emails, newest first
func (s *PostgresStore) List(ctx context.Context) ([]core.Email, error) {
	rows, err := s.db.Query(ctx, `SELECT `+selectColumns+` FROM emails ORDER BY received_at DESC, id ASC`)
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
func (s *PostgresStore) Get(ctx context.Context, id string) (*core.Email, error) {
	e, err := scanEmail(s.db.QueryRow(ctx, `SELECT `+selectColumns+` FROM emails WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query email: %w", err)
	}
	return e, nil
}

// Save inserts or replaces an email. A re-analysed email keeps its quarantine flag.
func (s *PostgresStore) Save(ctx context.Context, e *core.Email) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO emails (id, sender, subject, received_at, status, content, quarantined, confidence, rules, intel_domain, malicious_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			sender = EXCLUDED.sender,
			subject = EXCLUDED.subject,
			received_at = EXCLUDED.received_at,
			status = EXCLUDED.status,
			content = EXCLUDED.content,
			quarantined = emails.quarantined OR EXCLUDED.quarantined,
			confidence = EXCLUDED.confidence,
			rules = EXCLUDED.rules,
			intel_domain = EXCLUDED.intel_domain,
			malicious_score = EXCLUDED.malicious_score
	`, e.ID, e.From, e.Subject, e.Date.UnixMilli(), string(e.Status), e.Content,
		e.Quarantined, e.Confidence, joinRules(e.Rules), e.IntelDomain, e.MaliciousScore)
	if err != nil {
		return fmt.Errorf("failed to save email: %w", err)
	}
	return nil
}

// Quarantine flags an email
func (s *PostgresStore) Quarantine(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `UPDATE emails SET quarantined = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to quarantine email: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

// Close closes the pool
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
