package reimport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"sync"

	"github.com/cheggaaa/pb/v3"
	"github.com/dtnitsch/bbs-archive-parser/models"
	"github.com/dtnitsch/bbs-archive-parser/pkg/mapreduce"
	"github.com/dtnitsch/bbs-archive-parser/pkg/parser"
	"github.com/dtnitsch/bbs-archive-parser/pkg/resolver"
	"github.com/dtnitsch/bbs-archive-parser/pkg/source"
)

const progressTemplate = `{{string . "prefix"}}: {{ bar . "<" "-" "->" "." "."}} {{speed . }} {{percent .}}`

// Pipeline reads every document of a board, assembles and resolves topics
// concurrently, then hands them to the sinks in reid order.
type Pipeline struct {
	Board    string
	Source   source.Source
	Parser   *parser.Parser
	Resolver *resolver.Resolver
	Sinks    []Sink
	Workers  int
	DryRun   bool
	Logger   *slog.Logger
	Progress io.Writer // nil disables the progress bar
}

// Run processes the documents named by reids, or all of them when reids is
// empty. It returns one Result per document, sorted by reid, and the
// aggregated post counts per author.
func (p *Pipeline) Run(ctx context.Context, reids []string) ([]Result, map[string]int, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := p.Workers
	if workers < 1 {
		workers = 1
	}

	total, err := p.Source.Count(ctx, reids)
	if err != nil {
		return nil, nil, err
	}
	var bar *pb.ProgressBar
	if p.Progress != nil {
		bar = pb.New(total).SetTemplateString(progressTemplate).Set("prefix", p.Board).SetWriter(p.Progress).Start()
	}

	logger.Info("Starting reimport", "board", p.Board, "documents", total, "workers", workers, "dry_run", p.DryRun)
	var wg sync.WaitGroup
	jobs := make(chan Job, workers)
	results := make(chan Result, workers)

	for w := 1; w <= workers; w++ {
		wg.Add(1)
		go worker(ctx, w, logger, p.Parser, p.Resolver, &wg, jobs, results)
	}

	var allResults []Result
	collected := make(chan struct{})
	go func() {
		for r := range results {
			allResults = append(allResults, r)
			if bar != nil {
				bar.Increment()
			}
		}
		close(collected)
	}()

	srcErr := p.Source.Documents(ctx, reids, func(doc *models.RawDocument) error {
		select {
		case jobs <- Job{Doc: doc}:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	close(jobs)
	wg.Wait()
	close(results)
	<-collected
	if bar != nil {
		bar.Finish()
	}
	logger.Info("All workers finished", "results", len(allResults))

	if srcErr != nil {
		return allResults, nil, fmt.Errorf("failed to read documents: %w", srcErr)
	}

	sortResults(allResults)

	intermediate := []map[string]int{}
	for _, r := range allResults {
		if r.AuthorCounts != nil {
			intermediate = append(intermediate, r.AuthorCounts)
		}
	}
	authorCounts := mapreduce.Reduce(intermediate)

	if p.DryRun {
		return allResults, authorCounts, nil
	}
	if err := p.store(ctx, logger, allResults); err != nil {
		return allResults, authorCounts, err
	}
	return allResults, authorCounts, nil
}

// store hands topics to every sink in order. A sink failure stops the run.
func (p *Pipeline) store(ctx context.Context, logger *slog.Logger, results []Result) error {
	for i := range results {
		r := &results[i]
		if r.Topic == nil {
			continue
		}
		for _, sink := range p.Sinks {
			saved, err := sink.SaveTopic(ctx, r.Topic)
			if err != nil {
				return fmt.Errorf("failed to store topic %s: %w", r.Reid, err)
			}
			if saved {
				r.Saved = true
			}
		}
		if !r.Saved {
			logger.Debug("Topic already stored", "reid", r.Reid)
		}
	}
	return nil
}

// sortResults orders results by numeric reid; non-numeric reids sort last.
func sortResults(results []Result) {
	key := func(r Result) int64 {
		if r.Topic != nil {
			return r.Topic.ID
		}
		n, err := strconv.ParseInt(r.Reid, 10, 64)
		if err != nil {
			return 1<<63 - 1
		}
		return n
	}
	sort.SliceStable(results, func(i, j int) bool {
		return key(results[i]) < key(results[j])
	})
}
