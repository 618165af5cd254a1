package ports

import (
	"context"
)

// RawMessage is a message pulled from a mailbox before analysis
type RawMessage struct {
	// ID is stable across fetches so a message is only ingested once
	ID  string
	Raw []byte
}

// EmailSource yields raw messages to ingest
type EmailSource interface {
	// Name identifies the source in logs
	Name() string

	// Fetch returns the messages currently available
	Fetch(ctx context.Context) ([]RawMessage, error)
}
