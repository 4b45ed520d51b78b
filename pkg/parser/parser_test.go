package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dtnitsch/bbs-archive-parser/models"
	"github.com/dtnitsch/bbs-archive-parser/pkg/extractor"
	"github.com/google/go-cmp/cmp"
)

type fakeProber map[string]bool

func (f fakeProber) Exists(_ context.Context, url string) bool { return f[url] }

func modernPost(user, nick, date string, body ...string) string {
	return fmt.Sprintf("<pre>发信人: %s (%s), 信区: water\n标  题: lunch\n发信站: 饮水思源 (%s)\n\n%s\n--\n※ 来源:·饮水思源·</pre>",
		user, nick, date, strings.Join(body, "\n"))
}

func page(blocks ...string) string {
	return "<html><body>" + strings.Join(blocks, "<hr>") + "</body></html>"
}

func modernDoc() *models.RawDocument {
	return &models.RawDocument{
		Reid:    " 42 ",
		Title:   " lunch ",
		Section: "water\n",
		Pages: []string{
			page(modernPost("alice", "Alice", "2004年10月09日12:00:00 星期六",
				`<img src="/file/gone.jpg">anyone for lunch? <img src="/file/ok.jpg">`)),
			page(
				modernPost("bob", "Bob", "2004年10月09日12:05:00 星期六",
					"【 在 alice 的大作中提到: 】", ": anyone for lunch?", "me!"),
				modernPost("carol", "", "Sat Oct  9 12:10:00 2004",
					"【 在 bob 的大作中提到: 】", ": me!", "me too"),
			),
		},
	}
}

func TestParseModern(t *testing.T) {
	p := &Parser{
		BaseURL: "http://bbs.example",
		Probe:   fakeProber{"http://bbs.example/file/ok.jpg": true},
	}
	got, err := p.Parse(context.Background(), modernDoc())
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	want := &models.Topic{
		ID:        42,
		Author:    models.ParsedAuthor{Username: "alice", Nickname: "Alice"},
		Board:     "water",
		CreatedAt: time.Date(2004, 10, 9, 12, 0, 0, 0, time.UTC),
		Title:     "lunch",
		Content:   "anyone for lunch? ![](http://bbs.example/file/ok.jpg)\n",
		Text:      "anyone for lunch? ![](http://bbs.example/file/ok.jpg)",
		Posts: []models.Post{
			{
				Author:    models.ParsedAuthor{Username: "bob", Nickname: "Bob"},
				CreatedAt: time.Date(2004, 10, 9, 12, 5, 0, 0, time.UTC),
				Content:   "\n[quote=\"alice\"]\nanyone for lunch?\n[/quote]\n\nme!\n",
				Text:      "me!",
				Quote:     &models.QuoteRef{Author: "alice", Text: "anyone for lunch?"},
			},
			{
				Author:    models.ParsedAuthor{Username: "carol"},
				CreatedAt: time.Date(2004, 10, 9, 12, 10, 0, 0, time.UTC),
				Content:   "\n[quote=\"bob\"]\nme!\n[/quote]\n\nme too\n",
				Text:      "me too",
				Quote:     &models.QuoteRef{Author: "bob", Text: "me!"},
			},
		},
		Assets: []string{"http://bbs.example/file/ok.jpg"},
		Format: models.FormatModern,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDropsUnreachableImage(t *testing.T) {
	p := &Parser{BaseURL: "http://bbs.example", Probe: fakeProber{}}
	got, err := p.Parse(context.Background(), modernDoc())
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(got.Assets) != 0 {
		t.Errorf("Assets = %v, want none", got.Assets)
	}
	if strings.Contains(got.Content, "ok.jpg") || strings.Contains(got.Content, "gone.jpg") {
		t.Errorf("unreachable image left in content: %q", got.Content)
	}
}

func legacyDoc() *models.RawDocument {
	sep := extractor.LegacySeparator
	body := strings.Join([]string{
		"本主题共有 2 篇文章",
		sep,
		"  alice (Alice) 于 (Mon Jan  1 00:00:00 2001)",
		"提到：",
		"",
		`root text <img src="/pic.gif">`,
		sep,
		"  bob (Bob) 于 (Mon Jan  1 01:00:00 2001)",
		"提到：",
		"",
		"【 在 alice 的大作中提到: 】",
		": root text",
		": " + sep,
		"reply",
	}, "\n")
	return &models.RawDocument{
		Reid:    "7",
		Title:   "old times",
		Section: "history",
		Pages:   []string{"<html><body><pre>" + body + "</pre></body></html>"},
	}
}

func TestParseLegacy(t *testing.T) {
	p := &Parser{BaseURL: "http://bbs.example"}
	got, err := p.Parse(context.Background(), legacyDoc())
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	want := &models.Topic{
		ID:        7,
		Author:    models.ParsedAuthor{Username: "alice", Nickname: "Alice"},
		Board:     "history",
		CreatedAt: time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC),
		Title:     "old times",
		Content:   "root text ![](http://bbs.example/pic.gif)\n",
		Text:      "root text ![](http://bbs.example/pic.gif)",
		Posts: []models.Post{
			{
				Author:    models.ParsedAuthor{Username: "bob", Nickname: "Bob"},
				CreatedAt: time.Date(2001, 1, 1, 1, 0, 0, 0, time.UTC),
				Content:   "\n[quote=\"alice\"]\nroot text\n[/quote]\n\nreply\n",
				Text:      "reply",
				Quote:     &models.QuoteRef{Author: "alice", Text: "root text"},
			},
		},
		Assets: []string{"http://bbs.example/pic.gif"},
		Format: models.FormatLegacy,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	brokenReply := modernDoc()
	brokenReply.Pages[1] = page(modernPost("bob", "Bob", "not a date", "hi"))

	badReid := modernDoc()
	badReid.Reid = "abc"

	noPre := modernDoc()
	noPre.Pages = []string{"<html><body><p>nothing</p></body></html>"}

	legacyNoMeta := legacyDoc()
	legacyNoMeta.Pages[0] = "<pre>" + extractor.LegacySeparator + "\nno header here</pre>"

	tests := []struct {
		name      string
		doc       *models.RawDocument
		wantErr   error
		wantIndex int
	}{
		{name: "nil document", doc: nil, wantErr: ErrRegroup, wantIndex: -1},
		{name: "no pages", doc: &models.RawDocument{Reid: "1"}, wantErr: ErrRegroup, wantIndex: -1},
		{
			name:      "system mail",
			doc:       &models.RawDocument{Reid: "1", Pages: []string{"<pre>" + SystemHint + "</pre>"}},
			wantErr:   ErrNotParseable,
			wantIndex: -1,
		},
		{
			name:      "notice",
			doc:       &models.RawDocument{Reid: "1", Pages: []string{"<pre>" + AnnounceHint + "</pre>"}},
			wantErr:   ErrNotParseable,
			wantIndex: -1,
		},
		{name: "bad reid", doc: badReid, wantErr: ErrMetadata, wantIndex: -1},
		{name: "no post blocks", doc: noPre, wantErr: ErrRegroup, wantIndex: -1},
		{name: "broken reply discards topic", doc: brokenReply, wantErr: ErrMetadata, wantIndex: 1},
		{name: "legacy chunk without header", doc: legacyNoMeta, wantErr: ErrMetadata, wantIndex: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := (&Parser{}).Parse(context.Background(), tt.doc)
			if got != nil {
				t.Errorf("Parse() returned a topic alongside an error")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
			}
			var pe *PageError
			if tt.wantIndex < 0 {
				if errors.As(err, &pe) {
					t.Errorf("unexpected PageError: %v", pe)
				}
				return
			}
			if !errors.As(err, &pe) {
				t.Fatalf("error %v is not a PageError", err)
			}
			if pe.Index != tt.wantIndex {
				t.Errorf("PageError.Index = %d, want %d", pe.Index, tt.wantIndex)
			}
			if !errors.Is(err, extractor.ErrFieldExtraction) {
				t.Errorf("error %v does not wrap ErrFieldExtraction", err)
			}
		})
	}
}

func TestParseCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&Parser{}).Parse(ctx, modernDoc())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Parse() error = %v, want context.Canceled", err)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name   string
		pages  []string
		want   models.Format
		wantOK bool
	}{
		{name: "modern", pages: []string{"<pre>发信人: a (b), 信区: c</pre>"}, want: models.FormatModern, wantOK: true},
		{name: "legacy", pages: []string{"<pre>" + extractor.LegacySeparator + "</pre>"}, want: models.FormatLegacy, wantOK: true},
		{name: "only first page decides", pages: []string{"<pre>x</pre>", extractor.LegacySeparator}, want: models.FormatModern, wantOK: true},
		{name: "system mail wins over separator", pages: []string{SystemHint + extractor.LegacySeparator}, wantOK: false},
		{name: "empty", pages: nil, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectFormat(&models.RawDocument{Pages: tt.pages})
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("DetectFormat() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrNotParseable, "not_parseable"},
		{fmt.Errorf("wrapped: %w", ErrRegroup), "regroup_error"},
		{&PageError{Index: 3, Err: ErrMetadata}, "metadata_error"},
		{errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		if got := Kind(tt.err); got != tt.want {
			t.Errorf("Kind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestParseTagsLanguage(t *testing.T) {
	doc := modernDoc()
	doc.Pages[0] = page(modernPost("alice", "Alice", "2004年10月09日12:00:00 星期六",
		"Is anybody around who wants to grab some lunch near the library today?"))

	p := &Parser{Detector: NewLanguageDetector()}
	got, err := p.Parse(context.Background(), doc)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if got.Language != "en" {
		t.Errorf("Language = %q, want en", got.Language)
	}
}
