// Package storage defines the document store boundary consumed by the search engine.
package storage

import (
	"context"
	"errors"

	"github.com/docuvault/docsearch/internal/models"
)

// ErrNotFound is returned when a referenced document does not exist.
var ErrNotFound = errors.New("document not found")

// DocumentStore defines document persistence operations. The search engine
// treats the store as an external collaborator: it resolves display fields for
// scored ids and supplies the text to embed, but never owns document ids.
type DocumentStore interface {
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	UpdateDocument(ctx context.Context, doc *models.Document) error
	DeleteDocument(ctx context.Context, id string) error
	// ListDocuments returns documents ordered by id so scans are deterministic.
	ListDocuments(ctx context.Context, offset, limit int) ([]*models.Document, error)
	CountDocuments(ctx context.Context) (int64, error)
	Close() error
}
