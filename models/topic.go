package models

import (
	"strconv"
	"time"
)

// RootIndex is the ReplyTo value of a post that answers the topic root.
const RootIndex = -1

// ParsedAuthor identifies who wrote a post. Username is the identity key;
// Nickname is display-only.
type ParsedAuthor struct {
	Username string `json:"username" yaml:"username"`
	Nickname string `json:"nickname" yaml:"nickname"`
}

// QuoteRef is the quote block a reply opens with.
type QuoteRef struct {
	Author string `json:"author" yaml:"author"`
	Text   string `json:"text" yaml:"text"`
}

// Post is one reply of a topic.
type Post struct {
	Author    ParsedAuthor `json:"author" yaml:"author"`
	CreatedAt time.Time    `json:"created_at" yaml:"created_at"`
	Content   string       `json:"content" yaml:"content"` // canonical text, quotes included
	Text      string       `json:"text" yaml:"text"`       // narrative lines only
	Quote     *QuoteRef    `json:"quote,omitempty" yaml:"quote,omitempty"`
	Assets    []string     `json:"assets,omitempty" yaml:"assets,omitempty"`

	// ReplyTo is the index into Topic.Posts this post answers, RootIndex for
	// the topic root, nil when unresolved.
	ReplyTo *int `json:"reply_to,omitempty" yaml:"reply_to,omitempty"`
}

// Topic is one reconstructed discussion thread. Author, CreatedAt and Content
// describe the root post; Posts holds the replies in source order.
type Topic struct {
	ID        int64        `json:"id" yaml:"id"`
	Author    ParsedAuthor `json:"author" yaml:"author"`
	Board     string       `json:"board" yaml:"board"`
	CreatedAt time.Time    `json:"created_at" yaml:"created_at"`
	Title     string       `json:"title" yaml:"title"`
	Content   string       `json:"content" yaml:"content"`
	Text      string       `json:"text" yaml:"text"`
	Posts     []Post       `json:"posts" yaml:"posts"`
	Assets    []string     `json:"assets,omitempty" yaml:"assets,omitempty"`
	Format    Format       `json:"format" yaml:"format"`
	Language  string       `json:"language,omitempty" yaml:"language,omitempty"`
}

// Candidates returns the narrative text of the root followed by every reply,
// in topic order. Index i corresponds to reply i-1; index 0 is the root.
func (t *Topic) Candidates() []string {
	out := make([]string, 0, len(t.Posts)+1)
	out = append(out, t.Text)
	for _, p := range t.Posts {
		out = append(out, p.Text)
	}
	return out
}

// Reid returns the topic identifier in the form the document store uses.
func (t *Topic) Reid() string {
	return strconv.FormatInt(t.ID, 10)
}
