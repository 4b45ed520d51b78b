// Package resolver guesses which earlier post a quoting reply answers.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/dtnitsch/bbs-archive-parser/models"
	"github.com/dtnitsch/bbs-archive-parser/pkg/similarity"
)

// DefaultTopK is how many candidates are ranked per reply.
const DefaultTopK = 2

// Scorer rates the similarity of two texts; higher means more alike.
type Scorer interface {
	Similarity(ctx context.Context, a, b string) (float64, error)
}

// Resolver sets Post.ReplyTo for replies that open with a quote.
type Resolver struct {
	Scorer Scorer // nil uses similarity.Lexical
	TopK   int
	Logger *slog.Logger
}

// Match is one ranked candidate. Index 0 is the topic root, index i is
// reply i-1.
type Match struct {
	Index int
	Score float64
}

// Resolve ranks, for every reply carrying a Quote, the root and the replies
// up to and including itself against the quoted excerpt, and points ReplyTo
// at the best one. Replies without a quote are left untouched. A scorer
// error aborts the topic.
func (r *Resolver) Resolve(ctx context.Context, topic *models.Topic) error {
	candidates := topic.Candidates()
	for i := range topic.Posts {
		post := &topic.Posts[i]
		if post.Quote == nil {
			continue
		}
		self := i + 1
		ranked, err := r.Rank(ctx, post.Quote.Text, candidates[:self+1])
		if err != nil {
			return fmt.Errorf("rank candidates for post %d: %w", i, err)
		}
		target := ranked[0].Index - 1
		post.ReplyTo = &target

		r.logger().Debug("reply resolved",
			"reid", topic.ID, "post", i, "reply_to", target, "quoted", post.Quote.Author, "ranked", ranked)
	}
	return nil
}

// Rank scores query against every candidate and returns the top k matches,
// best first. Equal scores keep candidate order, so earlier posts win ties.
func (r *Resolver) Rank(ctx context.Context, query string, candidates []string) ([]Match, error) {
	scorer := r.Scorer
	if scorer == nil {
		scorer = similarity.Lexical{}
	}

	matches := make([]Match, 0, len(candidates))
	for i, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, err := scorer.Similarity(ctx, query, c)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(s) {
			s = math.Inf(-1)
		}
		matches = append(matches, Match{Index: i, Score: s})
	}
	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Score > matches[b].Score
	})

	k := r.TopK
	if k <= 0 {
		k = DefaultTopK
	}
	return matches[:min(k, len(matches))], nil
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}
