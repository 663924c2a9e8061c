// Package repository defines the storage contracts used by the trip-card
// services. Implementations live in the ddb and memory subpackages.
package repository

import (
	"context"

	"triptailor-backend/internal/domain"
)

// ItemStore holds flight and hotel provider documents keyed by their content
// identifier. Writes never overwrite an existing identifier.
type ItemStore interface {
	// Latest returns the most recently written document for id, or ErrNotFound.
	Latest(ctx context.Context, kind domain.ItemKind, id string) (domain.Document, error)
	// Put stores doc under id. It returns ErrConflict when id already exists.
	Put(ctx context.Context, kind domain.ItemKind, id string, doc domain.Document) error
}

// TripStore holds one trip record per (user, conversation).
type TripStore interface {
	// Get returns the record for key, or ErrNotFound.
	Get(ctx context.Context, key domain.TripKey) (*domain.TripRecord, error)
	// Put replaces the record for its key in a single write.
	Put(ctx context.Context, record *domain.TripRecord) error
	// Delete removes the record for key; deleting a missing record is not an error.
	Delete(ctx context.Context, key domain.TripKey) error
}

// TranscriptStore reads conversation history.
type TranscriptStore interface {
	// Messages returns the conversation's messages, oldest first.
	Messages(ctx context.Context, key domain.TripKey) ([]domain.Message, error)
}
