package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

var sqliteDialect = dialect{
	name: "sqlite",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS emails (
			id TEXT PRIMARY KEY,
			sender TEXT NOT NULL,
			subject TEXT NOT NULL,
			received_at INTEGER NOT NULL,
			status TEXT NOT NULL,
			content TEXT NOT NULL,
			quarantined BOOLEAN NOT NULL DEFAULT 0,
			confidence REAL NOT NULL,
			rules TEXT NOT NULL,
			intel_domain TEXT NOT NULL,
			malicious_score REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_emails_received_at ON emails(received_at)`,
	},
	upsert: `INSERT INTO emails (id, sender, subject, received_at, status, content, quarantined, confidence, rules, intel_domain, malicious_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			sender = excluded.sender,
			subject = excluded.subject,
			received_at = excluded.received_at,
			status = excluded.status,
			content = excluded.content,
			quarantined = emails.quarantined OR excluded.quarantined,
			confidence = excluded.confidence,
			rules = excluded.rules,
			intel_domain = excluded.intel_domain,
			malicious_score = excluded.malicious_score`,
}

// NewSQLiteStore opens or creates a SQLite email store
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// sqlite3 serialises writers, a single connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)
	return newSQLStore(db, sqliteDialect, logger)
}
