package reimport

import (
	"context"

	"github.com/dtnitsch/bbs-archive-parser/models"
)

// Job defines a task for a worker to perform.
type Job struct {
	Doc *models.RawDocument
}

// Result holds the outcome of a processed job.
type Result struct {
	Reid         string
	Topic        *models.Topic
	Error        error
	ErrorType    string
	AuthorCounts map[string]int
	Saved        bool
}

// Sink accepts assembled topics. SaveTopic reports false when the topic was
// already stored.
type Sink interface {
	SaveTopic(ctx context.Context, t *models.Topic) (bool, error)
}
