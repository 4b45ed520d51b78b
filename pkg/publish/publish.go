// Package publish announces assembled topics on a NATS subject as JSON.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dtnitsch/bbs-archive-parser/models"
	"github.com/nats-io/nats.go"
)

const DefaultSubject = "bbs.topics"

type Publisher struct {
	nc      *nats.Conn
	subject string
}

// Connect dials the NATS server at url. Topics are published on
// <subject>.<board>.
func Connect(url, subject string) (*Publisher, error) {
	nc, err := nats.Connect(url, nats.Name("bbs-archive-parser"), nats.Timeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return New(nc, subject), nil
}

// New wraps an existing connection.
func New(nc *nats.Conn, subject string) *Publisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Publisher{nc: nc, subject: subject}
}

// Subject returns the subject a topic of board is published on.
func (p *Publisher) Subject(board string) string {
	return p.subject + "." + board
}

// SaveTopic publishes t. It always reports the topic as saved; duplicates
// are the consumer's concern.
func (p *Publisher) SaveTopic(_ context.Context, t *models.Topic) (bool, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return false, fmt.Errorf("failed to marshal topic %d: %w", t.ID, err)
	}
	msg := nats.NewMsg(p.Subject(t.Board))
	msg.Header.Set("Reid", t.Reid())
	msg.Data = data
	if err := p.nc.PublishMsg(msg); err != nil {
		return false, fmt.Errorf("failed to publish topic %d: %w", t.ID, err)
	}
	return true, nil
}

// Close flushes pending messages and closes the connection.
func (p *Publisher) Close() error {
	return p.nc.Drain()
}
