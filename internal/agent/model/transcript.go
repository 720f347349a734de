package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

type TranscriptRepository interface {
	// AddMessage appends a message to the transcript of the given session
	AddMessage(ctx context.Context, sessionID string, message *schema.Message) error

	// LoadTranscript retrieves the recorded transcript for a session
	LoadTranscript(ctx context.Context, sessionID string) (*Transcript, error)

	// ClearTranscript removes all recorded messages for a session
	ClearTranscript(ctx context.Context, sessionID string) error

	// GetMessageCount returns the number of recorded messages for a session
	GetMessageCount(ctx context.Context, sessionID string) (int, error)
}

// Transcript represents the recorded messages of one call with metadata.
type Transcript struct {
	SessionID string
	Messages  []*schema.Message
}
