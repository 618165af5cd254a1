package ports

import (
	"context"

	"github.com/rasi23/pingpeek-phishguard/internal/core"
)

// EmailFilter defines the interface for email filtering
type EmailFilter interface {
	// ProcessEmail analyses a raw email and returns the report
	ProcessEmail(ctx context.Context, raw []byte) (*core.Report, error)

	// Start starts the email filter service
	Start() error

	// Stop stops the email filter service
	Stop() error
}
