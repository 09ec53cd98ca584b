// Package history persists conversation transcripts. The service writes
// turns behind the live in-memory history; persistence failures are logged
// by the caller and never fail a chat request.
package history

import (
	"context"

	"github.com/parleylabs/parley/pkg/chat"
)

// Store defines the interface for persisting completed conversation turns.
type Store interface {
	// SaveTurn stores one completed exchange: the user's rendered prompt
	// and the assistant's reply.
	SaveTurn(ctx context.Context, sessionID string, user, assistant chat.Message) error

	// Messages returns every stored message for a session in insertion
	// order. Unknown sessions return an empty slice, not an error.
	Messages(ctx context.Context, sessionID string) ([]chat.Message, error)

	// Sessions returns the IDs of every session with stored messages,
	// sorted lexically.
	Sessions(ctx context.Context) ([]string, error)

	// Clear removes all stored messages for a session.
	Clear(ctx context.Context, sessionID string) error

	// Close closes the store and releases any resources.
	Close() error
}
