package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrRegroup means the document could not be split into post units.
	ErrRegroup = errors.New("page segmentation failed")
	// ErrMetadata means a post's header or the document's identifier did
	// not match the expected pattern. It wraps extractor.ErrFieldExtraction
	// when the extractor was the source.
	ErrMetadata = errors.New("post metadata not found")
	// ErrNotParseable marks system mail and administrative notices.
	ErrNotParseable = errors.New("document is not a parseable topic")
)

// PageError records which post unit of a topic failed. Index 0 is the root.
type PageError struct {
	Index int
	Err   error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("post %d: %v", e.Index, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// Kind returns a short label for a topic error, used in logs and run reports.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotParseable):
		return "not_parseable"
	case errors.Is(err, ErrRegroup):
		return "regroup_error"
	case errors.Is(err, ErrMetadata):
		return "metadata_error"
	default:
		return "error"
	}
}
