package reimport

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dtnitsch/bbs-archive-parser/pkg/mapreduce"
	"github.com/dtnitsch/bbs-archive-parser/pkg/parser"
	"github.com/dtnitsch/bbs-archive-parser/pkg/resolver"
)

// worker parses and resolves documents from jobs until the channel closes.
func worker(ctx context.Context, id int, logger *slog.Logger, p *parser.Parser, r *resolver.Resolver, wg *sync.WaitGroup, jobs <-chan Job, results chan<- Result) {
	defer wg.Done()
	for job := range jobs {
		results <- process(ctx, id, logger, p, r, job)
	}
}

func process(ctx context.Context, id int, logger *slog.Logger, p *parser.Parser, r *resolver.Resolver, job Job) Result {
	result := Result{Reid: job.Doc.Reid}
	logger.Debug("Worker started job", "worker_id", id, "reid", job.Doc.Reid)

	topic, err := p.Parse(ctx, job.Doc)
	if err != nil {
		result.Error = err
		result.ErrorType = parser.Kind(err)
		if errors.Is(err, parser.ErrNotParseable) {
			logger.Debug("Skipping system notice", "worker_id", id, "reid", job.Doc.Reid)
		} else {
			logger.Warn("Error parsing topic", "worker_id", id, "reid", job.Doc.Reid, "error_type", result.ErrorType, "error", err)
		}
		return result
	}

	if err := r.Resolve(ctx, topic); err != nil {
		logger.Warn("Error resolving replies", "worker_id", id, "reid", job.Doc.Reid, "error", err)
		result.Error = err
		result.ErrorType = "resolve_error"
		return result
	}

	result.Topic = topic
	result.AuthorCounts = mapreduce.Map(topic)
	logger.Debug("Worker finished job", "worker_id", id, "reid", job.Doc.Reid, "posts", len(topic.Posts))
	return result
}
