// Package parser assembles archived forum documents into topics. The page
// grammar is detected once per document; every post unit then goes through
// field extraction and quote reconstruction in source order.
package parser

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/bbs-archive-parser/models"
	"github.com/dtnitsch/bbs-archive-parser/pkg/extractor"
	"github.com/dtnitsch/bbs-archive-parser/pkg/quote"
	"github.com/pemistahl/lingua-go"
)

// Parser turns a RawDocument into a Topic. It holds only read-only
// collaborators and may be shared between goroutines.
type Parser struct {
	BaseURL  string
	Probe    extractor.Prober         // nil keeps every image unprobed
	Detector lingua.LanguageDetector // nil leaves Topic.Language empty
	Logger   *slog.Logger
}

// NewLanguageDetector builds the detector used to tag topics. Loading the
// language models is slow, so build it once per process.
func NewLanguageDetector() lingua.LanguageDetector {
	return lingua.NewLanguageDetectorBuilder().
		FromLanguages(lingua.Chinese, lingua.English).
		Build()
}

// unit is one post before quote reconstruction.
type unit struct {
	fields extractor.Fields
	assets []string
}

func (p *Parser) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

// Parse assembles doc into a Topic. Any post failure discards the whole
// topic. Cancellation is honoured between pages; nothing escapes before the
// complete topic is returned.
func (p *Parser) Parse(ctx context.Context, doc *models.RawDocument) (*models.Topic, error) {
	if doc == nil || len(doc.Pages) == 0 {
		return nil, fmt.Errorf("%w: document has no pages", ErrRegroup)
	}
	format, ok := DetectFormat(doc)
	if !ok {
		return nil, ErrNotParseable
	}

	id, err := strconv.ParseInt(strings.TrimSpace(doc.Reid), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid reid %q", ErrMetadata, doc.Reid)
	}

	assets := &extractor.Assets{BaseURL: p.BaseURL, Probe: p.Probe, Logger: p.logger()}

	var (
		units     []unit
		topicRefs []string
	)
	switch format {
	case models.FormatLegacy:
		units, topicRefs, err = p.legacy(ctx, doc.Pages, assets)
	default:
		units, topicRefs, err = p.modern(ctx, doc.Pages, assets)
	}
	if err != nil {
		return nil, err
	}

	root := quote.Reconstruct(units[0].fields.Body)
	topic := &models.Topic{
		ID:        id,
		Author:    units[0].fields.Author,
		Board:     strings.TrimSpace(doc.Section),
		CreatedAt: units[0].fields.CreatedAt,
		Title:     strings.TrimSpace(doc.Title),
		Content:   root.String(),
		Text:      root.Narrative(),
		Posts:     make([]models.Post, 0, len(units)-1),
		Assets:    topicRefs,
		Format:    format,
	}

	for _, u := range units[1:] {
		body := quote.Reconstruct(u.fields.Body)
		post := models.Post{
			Author:    u.fields.Author,
			CreatedAt: u.fields.CreatedAt,
			Content:   body.String(),
			Text:      body.Narrative(),
			Assets:    u.assets,
		}
		if br := body.LeadingQuote(); br != nil {
			post.Quote = &models.QuoteRef{Author: br.Author, Text: br.Excerpt()}
		}
		topic.Posts = append(topic.Posts, post)
	}

	if p.Detector != nil && topic.Text != "" {
		if lang, ok := p.Detector.DetectLanguageOf(topic.Text); ok {
			topic.Language = strings.ToLower(lang.IsoCode639_1().String())
		}
	}

	p.logger().Debug("topic assembled",
		"reid", topic.ID, "format", format, "posts", len(topic.Posts), "assets", len(topic.Assets))
	return topic, nil
}

// modern handles documents with one <pre> block per post. Assets are kept
// per post and also collected, in order, at topic level.
func (p *Parser) modern(ctx context.Context, pages []string, assets *extractor.Assets) ([]unit, []string, error) {
	var pres []*goquery.Selection
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		sel, err := extractor.Pre(page)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrRegroup, err)
		}
		sel.Each(func(_ int, pre *goquery.Selection) {
			pres = append(pres, pre)
		})
	}
	if len(pres) == 0 {
		return nil, nil, fmt.Errorf("%w: no post blocks found", ErrRegroup)
	}

	units := make([]unit, 0, len(pres))
	var all []string
	for i, pre := range pres {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		refs := assets.Strip(ctx, pre)
		fields, err := extractor.Modern(pre)
		if err != nil {
			return nil, nil, &PageError{Index: i, Err: fmt.Errorf("%w: %w", ErrMetadata, err)}
		}
		units = append(units, unit{fields: fields, assets: refs})
		all = append(all, refs...)
	}
	return units, all, nil
}

// legacy handles documents where each page holds one <pre> with several
// posts separated by extractor.LegacySeparator. Assets are only known per
// page, so they are recorded at topic level.
func (p *Parser) legacy(ctx context.Context, pages []string, assets *extractor.Assets) ([]unit, []string, error) {
	var (
		chunks []string
		all    []string
	)
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		sel, err := extractor.Pre(page)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrRegroup, err)
		}
		pre := sel.First()
		if pre.Length() == 0 {
			return nil, nil, fmt.Errorf("%w: page %d has no <pre> block", ErrRegroup, i)
		}
		all = append(all, assets.Strip(ctx, pre)...)
		chunks = append(chunks, extractor.SplitLegacy(extractor.Text(pre))...)
	}
	if len(chunks) == 0 {
		return nil, nil, fmt.Errorf("%w: no post separators found", ErrRegroup)
	}

	units := make([]unit, 0, len(chunks))
	for i, chunk := range chunks {
		fields, err := extractor.Legacy(chunk)
		if err != nil {
			return nil, nil, &PageError{Index: i, Err: fmt.Errorf("%w: %w", ErrMetadata, err)}
		}
		units = append(units, unit{fields: fields})
	}
	return units, all, nil
}
