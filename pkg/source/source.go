// Package source reads archived topic documents. Documents of one board are
// read in stored order; each carries its pages plus reid, title and section.
package source

import (
	"context"
	"errors"

	"github.com/dtnitsch/bbs-archive-parser/models"
)

// ErrNotFound is returned when a requested reid is not in the source.
var ErrNotFound = errors.New("document not found")

// Source yields the raw documents of one board.
type Source interface {
	// Count returns how many documents Documents would visit.
	Count(ctx context.Context, reids []string) (int, error)
	// Documents calls fn for every document, or only for reids when the
	// list is non-empty. Missing reids are skipped. An error from fn stops
	// the iteration and is returned.
	Documents(ctx context.Context, reids []string, fn func(*models.RawDocument) error) error
	// Document returns a single document or ErrNotFound.
	Document(ctx context.Context, reid string) (*models.RawDocument, error)
	Close(ctx context.Context) error
}
