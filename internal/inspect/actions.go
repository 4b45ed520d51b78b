package inspect

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dtnitsch/bbs-archive-parser/internal/common"
	"github.com/dtnitsch/bbs-archive-parser/internal/reimport"
	"github.com/dtnitsch/bbs-archive-parser/models"
	"github.com/dtnitsch/bbs-archive-parser/pkg/parser"
	"github.com/dtnitsch/bbs-archive-parser/pkg/resolver"
	"github.com/dtnitsch/bbs-archive-parser/pkg/source"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// ParseAction assembles a single document and prints the topic as YAML.
// The document comes from --file, or from the board's source by --reid.
func ParseAction(c *cli.Context) error {
	logger := common.NewLogger(c.Bool("quiet"), c.Bool("verbose"))
	ctx := c.Context

	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}

	var doc *models.RawDocument
	switch {
	case c.IsSet("file"):
		doc, err = source.ReadFile(c.String("file"))
	case c.IsSet("reid"):
		if !c.IsSet("board") {
			return fmt.Errorf("--reid needs --board")
		}
		var src source.Source
		src, err = reimport.OpenSource(ctx, c, cfg, c.String("board"), logger)
		if err != nil {
			return err
		}
		defer src.Close(context.Background())
		doc, err = src.Document(ctx, c.String("reid"))
	default:
		return fmt.Errorf("one of --file or --reid is required")
	}
	if err != nil {
		return err
	}

	p, err := reimport.NewParser(c, cfg, logger)
	if err != nil {
		return err
	}
	var r *resolver.Resolver
	if !c.Bool("no-resolve") {
		if r, err = reimport.NewResolver(cfg, logger); err != nil {
			return err
		}
	}

	return Inspect(ctx, os.Stdout, doc, p, r)
}

// Inspect parses doc, resolves reply targets when r is non-nil, and writes the
// topic to w as YAML.
func Inspect(ctx context.Context, w io.Writer, doc *models.RawDocument, p *parser.Parser, r *resolver.Resolver) error {
	topic, err := p.Parse(ctx, doc)
	if err != nil {
		return fmt.Errorf("reid %s: %s: %w", doc.Reid, parser.Kind(err), err)
	}
	if r != nil {
		if err := r.Resolve(ctx, topic); err != nil {
			return fmt.Errorf("reid %s: resolve: %w", doc.Reid, err)
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(topic); err != nil {
		return fmt.Errorf("failed to encode topic: %w", err)
	}
	return enc.Close()
}
