package manifest

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dtnitsch/bbs-archive-parser/models"
	"github.com/dtnitsch/bbs-archive-parser/pkg/mapreduce"
	"github.com/dtnitsch/bbs-archive-parser/pkg/parser"
	"github.com/dtnitsch/bbs-archive-parser/pkg/storage"
	"gopkg.in/yaml.v3"
)

const topAuthors = 25

// TopicResult is the outcome of processing one raw document.
// This is passed from the reimport command to avoid circular dependencies.
type TopicResult struct {
	Reid         string
	Topic        *models.Topic
	Error        error
	ErrorType    string
	AuthorCounts map[string]int
	Saved        bool
}

// Generate builds the manifest for a run over board.
func Generate(board string, dryRun bool, results []TopicResult, authorCounts map[string]int, now time.Time) *RunManifest {
	m := &RunManifest{
		GeneratedAt: now.Format(time.RFC3339),
		Board:       board,
		DryRun:      dryRun,
		Documents:   len(results),
		TopAuthors:  mapreduce.TopN(authorCounts, topAuthors),
	}

	for _, r := range results {
		summary := TopicSummary{Reid: r.Reid}

		switch {
		case errors.Is(r.Error, parser.ErrNotParseable):
			m.NotParseable++
			summary.Status = "not_parseable"
		case r.Error != nil:
			m.Failed++
			summary.Status = "error"
			summary.ErrorType = r.ErrorType
			summary.ErrorMessage = r.Error.Error()
			if m.FailedByKind == nil {
				m.FailedByKind = map[string]int{}
			}
			m.FailedByKind[r.ErrorType]++
		default:
			m.Parsed++
			summary.Status = "parsed"
			if t := r.Topic; t != nil {
				summary.Format = string(t.Format)
				summary.Language = t.Language
				summary.Posts = len(t.Posts)
				for _, p := range t.Posts {
					if p.ReplyTo != nil {
						summary.Resolved++
					}
				}
			}
			if r.Saved {
				m.Saved++
				summary.Saved = true
			}
		}

		m.Results = append(m.Results, summary)
	}

	return m
}

// Save writes the manifest as YAML to <dir>/runs/<board>-<timestamp>.yaml
// and returns the path.
func Save(m *RunManifest, s *storage.Storage) (string, error) {
	stamp, err := time.Parse(time.RFC3339, m.GeneratedAt)
	if err != nil {
		stamp = time.Now()
	}
	manifestPath := filepath.Join(s.Dir, "runs", fmt.Sprintf("%s-%s.yaml", m.Board, stamp.Format("20060102-150405")))

	manifestData, err := yaml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("error marshalling manifest: %w", err)
	}

	if err := s.SaveFile(manifestPath, manifestData); err != nil {
		return "", fmt.Errorf("error saving manifest: %w", err)
	}

	return manifestPath, nil
}
