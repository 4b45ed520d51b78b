package resolver

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dtnitsch/bbs-archive-parser/models"
	"github.com/dtnitsch/bbs-archive-parser/pkg/similarity"
	"github.com/google/go-cmp/cmp"
)

type scoreFunc func(a, b string) (float64, error)

func (f scoreFunc) Similarity(_ context.Context, a, b string) (float64, error) { return f(a, b) }

// exact scores 1 for equal texts and 0 otherwise.
var exact = scoreFunc(func(a, b string) (float64, error) {
	if a == b {
		return 1, nil
	}
	return 0, nil
})

func reply(text string, quoted ...string) models.Post {
	p := models.Post{Text: text}
	if len(quoted) > 0 {
		p.Quote = &models.QuoteRef{Author: "someone", Text: quoted[0]}
	}
	return p
}

func intp(i int) *int { return &i }

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		scorer Scorer
		topic  models.Topic
		want   []*int
	}{
		{
			name:   "no quoting replies is a no-op",
			scorer: exact,
			topic: models.Topic{Text: "root", Posts: []models.Post{
				reply("a"), reply("b"),
			}},
			want: []*int{nil, nil},
		},
		{
			name:   "quote of the root",
			scorer: exact,
			topic: models.Topic{Text: "root", Posts: []models.Post{
				reply("a", "root"),
			}},
			want: []*int{intp(models.RootIndex)},
		},
		{
			name:   "quote of an earlier reply",
			scorer: exact,
			topic: models.Topic{Text: "root", Posts: []models.Post{
				reply("first"),
				reply("second", "first"),
				reply("third", "second"),
			}},
			want: []*int{nil, intp(0), intp(1)},
		},
		{
			name:   "later posts are never candidates",
			scorer: exact,
			topic: models.Topic{Text: "root", Posts: []models.Post{
				reply("first", "from the future"),
				reply("from the future"),
			}},
			want: []*int{intp(models.RootIndex), nil},
		},
		{
			name: "ties go to the earliest candidate",
			scorer: scoreFunc(func(string, string) (float64, error) {
				return 0.5, nil
			}),
			topic: models.Topic{Text: "root", Posts: []models.Post{
				reply("a"),
				reply("b", "anything"),
			}},
			want: []*int{nil, intp(models.RootIndex)},
		},
		{
			name:   "default lexical scorer",
			scorer: nil,
			topic: models.Topic{Text: "who wants lunch today", Posts: []models.Post{
				reply("count me in for lunch"),
				reply("sure", "count me in for lunch"),
			}},
			want: []*int{nil, intp(0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Resolver{Scorer: tt.scorer}
			topic := tt.topic
			if err := r.Resolve(context.Background(), &topic); err != nil {
				t.Fatalf("Resolve() error: %v", err)
			}
			got := make([]*int, len(topic.Posts))
			for i, p := range topic.Posts {
				got[i] = p.ReplyTo
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ReplyTo mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveScorerError(t *testing.T) {
	boom := errors.New("model unavailable")
	r := &Resolver{Scorer: scoreFunc(func(string, string) (float64, error) { return 0, boom })}
	topic := &models.Topic{Text: "root", Posts: []models.Post{reply("a", "root")}}

	err := r.Resolve(context.Background(), topic)
	if !errors.Is(err, boom) {
		t.Fatalf("Resolve() error = %v, want %v", err, boom)
	}
}

func TestResolveNeverPointsForward(t *testing.T) {
	texts := []string{"alpha beta", "gamma delta", "epsilon", "alpha gamma", "beta delta", "zeta"}
	for n := 1; n <= len(texts); n++ {
		topic := &models.Topic{Text: "alpha"}
		for i := 0; i < n; i++ {
			// every reply quotes the last text, which only appears later
			topic.Posts = append(topic.Posts, reply(texts[i], texts[len(texts)-1-i]))
		}
		r := &Resolver{Scorer: similarity.Lexical{}}
		if err := r.Resolve(context.Background(), topic); err != nil {
			t.Fatalf("Resolve() error: %v", err)
		}
		for i, p := range topic.Posts {
			if p.ReplyTo == nil {
				t.Fatalf("n=%d post %d: ReplyTo unset", n, i)
			}
			if *p.ReplyTo > i {
				t.Errorf("n=%d post %d: ReplyTo = %d points forward", n, i, *p.ReplyTo)
			}
		}
	}
}

func TestRank(t *testing.T) {
	scores := map[string]float64{"a": 0.1, "b": 0.9, "c": 0.9, "d": 0.5}
	r := &Resolver{
		Scorer: scoreFunc(func(_, c string) (float64, error) { return scores[c], nil }),
		TopK:   3,
	}
	got, err := r.Rank(context.Background(), "q", []string{"a", "b", "c", "d"})
	if err != nil {
		t.Fatalf("Rank() error: %v", err)
	}
	want := []Match{{Index: 1, Score: 0.9}, {Index: 2, Score: 0.9}, {Index: 3, Score: 0.5}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Rank() mismatch (-want +got):\n%s", diff)
	}

	r.TopK = 0
	got, err = r.Rank(context.Background(), "q", []string{"a"})
	if err != nil {
		t.Fatalf("Rank() error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Rank() returned %d matches, want 1", len(got))
	}
}

func ExampleResolver_Rank() {
	r := &Resolver{Scorer: similarity.Lexical{}, TopK: 1}
	best, _ := r.Rank(context.Background(), "lunch at noon", []string{"exam tomorrow", "lunch at noon?"})
	fmt.Println(best[0].Index)
	// Output: 1
}
