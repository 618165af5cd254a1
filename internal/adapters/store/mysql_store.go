package store

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

var mysqlDialect = dialect{
	name: "mysql",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS emails (
			id VARCHAR(255) PRIMARY KEY,
			sender VARCHAR(512) NOT NULL,
			subject TEXT NOT NULL,
			received_at BIGINT NOT NULL,
			status VARCHAR(16) NOT NULL,
			content MEDIUMTEXT NOT NULL,
			quarantined BOOLEAN NOT NULL DEFAULT FALSE,
			confidence DOUBLE NOT NULL,
			rules VARCHAR(255) NOT NULL,
			intel_domain VARCHAR(255) NOT NULL,
			malicious_score DOUBLE NOT NULL,
			INDEX idx_emails_received_at (received_at)
		)`,
	},
	upsert: `INSERT INTO emails (id, sender, subject, received_at, status, content, quarantined, confidence, rules, intel_domain, malicious_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			sender = VALUES(sender),
			subject = VALUES(subject),
			received_at = VALUES(received_at),
			status = VALUES(status),
			content = VALUES(content),
			quarantined = quarantined OR VALUES(quarantined),
			confidence = VALUES(confidence),
			rules = VALUES(rules),
			intel_domain = VALUES(intel_domain),
			malicious_score = VALUES(malicious_score)`,
}

// NewMySQLStore connects to MySQL and creates the schema
func NewMySQLStore(dsn string, logger *zap.Logger) (*SQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	return newSQLStore(db, mysqlDialect, logger)
}
