package reimport

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/dtnitsch/bbs-archive-parser/internal/common"
	"github.com/dtnitsch/bbs-archive-parser/models"
	"github.com/dtnitsch/bbs-archive-parser/pkg/caching"
	"github.com/dtnitsch/bbs-archive-parser/pkg/db"
	"github.com/dtnitsch/bbs-archive-parser/pkg/fetcher"
	"github.com/dtnitsch/bbs-archive-parser/pkg/manifest"
	"github.com/dtnitsch/bbs-archive-parser/pkg/mapreduce"
	"github.com/dtnitsch/bbs-archive-parser/pkg/parser"
	"github.com/dtnitsch/bbs-archive-parser/pkg/postgres"
	"github.com/dtnitsch/bbs-archive-parser/pkg/publish"
	"github.com/dtnitsch/bbs-archive-parser/pkg/resolver"
	"github.com/dtnitsch/bbs-archive-parser/pkg/similarity"
	"github.com/dtnitsch/bbs-archive-parser/pkg/source"
	"github.com/dtnitsch/bbs-archive-parser/pkg/storage"
	"github.com/dtnitsch/bbs-archive-parser/pkg/workset"
	"github.com/urfave/cli/v2"
)

func ReimportAction(c *cli.Context) error {
	logger := common.NewLogger(c.Bool("quiet"), c.Bool("verbose"))
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}
	board := c.String("board")
	dryRun := c.Bool("dry-run")

	src, err := OpenSource(ctx, c, cfg, board, logger)
	if err != nil {
		return err
	}
	defer src.Close(context.Background())

	reids, err := selectReids(ctx, c, cfg, board)
	if err != nil {
		return err
	}
	if c.IsSet("workset") && len(reids) == 0 {
		fmt.Fprintf(os.Stderr, "Workset %s is empty, nothing to do\n", workset.Key(board, c.String("workset")))
		return nil
	}

	p, err := NewParser(c, cfg, logger)
	if err != nil {
		return err
	}
	r, err := NewResolver(cfg, logger)
	if err != nil {
		return err
	}

	var database *db.DB
	var sinks []Sink
	if !dryRun {
		var closers []func()
		sinks, database, closers, err = openSinks(ctx, c, cfg, logger)
		defer func() {
			for _, closeFn := range closers {
				closeFn()
			}
		}()
		if err != nil {
			return err
		}
	}

	pipeline := &Pipeline{
		Board:    board,
		Source:   src,
		Parser:   p,
		Resolver: r,
		Sinks:    sinks,
		Workers:  cfg.WorkerCount,
		DryRun:   dryRun,
		Logger:   logger,
	}
	if !c.Bool("quiet") {
		pipeline.Progress = os.Stderr
	}

	results, authorCounts, runErr := pipeline.Run(ctx, reids)

	m := manifest.Generate(board, dryRun, toManifestResults(results), authorCounts, time.Now())
	out := &storage.Storage{Dir: cfg.OutputDir}
	if path, err := manifest.Save(m, out); err != nil {
		logger.Error("Error saving run manifest", "error", err)
	} else {
		fmt.Fprintf(os.Stderr, "Run manifest saved to: %s\n", path)
	}

	if database != nil {
		run := db.Run{
			Board:     board,
			Documents: m.Documents,
			Parsed:    m.Parsed,
			Skipped:   m.NotParseable,
			Failed:    m.Failed,
			Saved:     m.Saved,
			DryRun:    dryRun,
		}
		if _, err := database.InsertRun(context.Background(), run); err != nil {
			logger.Warn("Failed to record run", "error", err)
		}
	}

	fmt.Printf("Board %s: %d documents, %d parsed, %d not parseable, %d failed, %d saved\n",
		board, m.Documents, m.Parsed, m.NotParseable, m.Failed, m.Saved)
	if len(authorCounts) > 0 {
		fmt.Println("\nTop authors:")
		mapreduce.PrintTop(os.Stdout, authorCounts, 10)
	}

	return runErr
}

// OpenSource opens the document source for board: a directory of YAML
// documents when --dir is set, otherwise the MongoDB collection.
func OpenSource(ctx context.Context, c *cli.Context, cfg *models.Config, board string, logger *slog.Logger) (source.Source, error) {
	if dir := c.String("dir"); dir != "" {
		return source.OpenDirectory(filepath.Join(dir, board))
	}
	return source.OpenMongo(ctx, cfg.Mongo, cfg.MongoDatabase, board, logger)
}

func selectReids(ctx context.Context, c *cli.Context, cfg *models.Config, board string) ([]string, error) {
	if c.IsSet("workset") {
		if c.IsSet("poi") {
			return nil, fmt.Errorf("--workset and --poi cannot be used together")
		}
		if cfg.Redis == "" {
			return nil, fmt.Errorf("--workset needs a redis address")
		}
		ws, err := workset.Open(cfg.Redis)
		if err != nil {
			return nil, err
		}
		defer ws.Close()
		return ws.Members(ctx, workset.Key(board, c.String("workset")))
	}
	return common.ParseReidList(c.String("poi"))
}

// NewParser builds the topic parser with its asset probe. --no-probe keeps
// every image without checking it.
func NewParser(c *cli.Context, cfg *models.Config, logger *slog.Logger) (*parser.Parser, error) {
	p := &parser.Parser{
		BaseURL:  cfg.BaseURL,
		Detector: parser.NewLanguageDetector(),
		Logger:   logger,
	}
	if c.Bool("no-probe") {
		return p, nil
	}

	opts := fetcher.Options{
		Timeout:   cfg.ProbeTimeout,
		RateLimit: cfg.ProbeRate,
		Logger:    logger,
	}
	if cfg.ProbeCacheDir != "" {
		cache, err := caching.NewCache(cfg.ProbeCacheDir, cfg.ProbeCacheTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to open probe cache: %w", err)
		}
		if removed, err := cache.Purge(); err != nil {
			logger.Warn("Failed to purge probe cache", "error", err)
		} else if removed > 0 {
			logger.Info("Purged expired probe results", "removed", removed)
		}
		opts.Cache = cache
	}
	p.Probe = fetcher.NewFetcher(opts)
	return p, nil
}

// NewResolver uses embedding similarity when an Ollama endpoint is
// configured and lexical similarity otherwise.
func NewResolver(cfg *models.Config, logger *slog.Logger) (*resolver.Resolver, error) {
	r := &resolver.Resolver{TopK: cfg.TopK, Logger: logger}
	if cfg.OllamaURL == "" {
		return r, nil
	}
	emb, err := similarity.NewEmbedding(cfg.OllamaURL, cfg.EmbeddingModel, similarity.DefaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding scorer: %w", err)
	}
	r.Scorer = emb
	return r, nil
}

// openSinks opens every configured sink. The returned closers must be run
// even when an error is returned.
func openSinks(ctx context.Context, c *cli.Context, cfg *models.Config, logger *slog.Logger) ([]Sink, *db.DB, []func(), error) {
	var sinks []Sink
	var closers []func()
	var database *db.DB

	if cfg.SQLite != "" {
		d, err := db.Open(cfg.SQLite)
		if err != nil {
			return nil, nil, closers, fmt.Errorf("failed to open database: %w", err)
		}
		closers = append(closers, func() { _ = d.Close() })
		database = d
		sinks = append(sinks, d)
	}

	if cfg.Postgres != "" {
		pg, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return nil, database, closers, err
		}
		closers = append(closers, pg.Close)
		sinks = append(sinks, pg)
	}

	if cfg.NATS != "" {
		pub, err := publish.Connect(cfg.NATS, cfg.NATSSubject)
		if err != nil {
			return nil, database, closers, err
		}
		closers = append(closers, func() {
			if err := pub.Close(); err != nil {
				logger.Warn("Failed to drain nats connection", "error", err)
			}
		})
		sinks = append(sinks, pub)
	}

	if c.Bool("yaml") {
		sinks = append(sinks, &storage.Storage{Dir: filepath.Join(cfg.OutputDir, "topics")})
	}

	if len(sinks) == 0 {
		logger.Warn("No sink configured, topics will only be counted")
	}
	return sinks, database, closers, nil
}

// toManifestResults converts Result types to manifest.TopicResult.
// This adapter function prevents circular dependencies between packages.
func toManifestResults(results []Result) []manifest.TopicResult {
	out := make([]manifest.TopicResult, len(results))
	for i, r := range results {
		out[i] = manifest.TopicResult{
			Reid:         r.Reid,
			Topic:        r.Topic,
			Error:        r.Error,
			ErrorType:    r.ErrorType,
			AuthorCounts: r.AuthorCounts,
			Saved:        r.Saved,
		}
	}
	return out
}
