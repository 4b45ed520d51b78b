// Package postgres stores assembled topics in PostgreSQL using the same
// authors/boards/topics/posts model as the SQLite archive.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dtnitsch/bbs-archive-parser/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	Pool *pgxpool.Pool
}

// Open connects to connStr and creates the tables when missing.
func Open(ctx context.Context, connStr string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	s := &Store{Pool: pool}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS authors (
			id SERIAL PRIMARY KEY,
			username VARCHAR(50) NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS boards (
			id SERIAL PRIMARY KEY,
			name VARCHAR(50) NOT NULL UNIQUE,
			description VARCHAR(200)
		)`,
		`CREATE TABLE IF NOT EXISTS topics (
			id SERIAL PRIMARY KEY,
			reid BIGINT UNIQUE,
			title VARCHAR(100) NOT NULL,
			created_at TIMESTAMP,
			content TEXT NOT NULL,
			language VARCHAR(8),
			author_id INTEGER NOT NULL REFERENCES authors(id),
			board_id INTEGER NOT NULL REFERENCES boards(id)
		)`,
		`CREATE TABLE IF NOT EXISTS posts (
			id SERIAL PRIMARY KEY,
			content TEXT NOT NULL,
			created_at TIMESTAMP,
			topic_id INTEGER NOT NULL REFERENCES topics(id) ON DELETE CASCADE,
			author_id INTEGER NOT NULL REFERENCES authors(id),
			reply_to_id INTEGER REFERENCES posts(id)
		)`,
	}

	for _, q := range queries {
		if _, err := s.Pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("failed to init schema: %w", err)
		}
	}
	return nil
}

// getOrCreate relies on the unique column; the no-op update makes RETURNING
// yield the existing row's id.
func getOrCreate(ctx context.Context, tx pgx.Tx, table, col, value string) (int64, error) {
	var id int64
	q := fmt.Sprintf(`INSERT INTO %[1]s (%[2]s) VALUES ($1)
		ON CONFLICT (%[2]s) DO UPDATE SET %[2]s = EXCLUDED.%[2]s
		RETURNING id`, table, col)
	if err := tx.QueryRow(ctx, q, value).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to get or create %s %q: %w", table, value, err)
	}
	return id, nil
}

// TopicExists reports whether the reid was already imported.
func (s *Store) TopicExists(ctx context.Context, reid int64) (bool, error) {
	var exists bool
	err := s.Pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM topics WHERE reid = $1)", reid).Scan(&exists)
	return exists, err
}

// SaveTopic inserts the topic and its replies in one transaction, skipping
// reids that are already present. Reply links point at post rows; replies to
// the topic root keep a NULL link.
func (s *Store) SaveTopic(ctx context.Context, t *models.Topic) (bool, error) {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var existing int64
	err = tx.QueryRow(ctx, "SELECT id FROM topics WHERE reid = $1", t.ID).Scan(&existing)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("failed to check topic: %w", err)
	}

	authorID, err := getOrCreate(ctx, tx, "authors", "username", t.Author.Username)
	if err != nil {
		return false, err
	}
	boardID, err := getOrCreate(ctx, tx, "boards", "name", t.Board)
	if err != nil {
		return false, err
	}

	var topicID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO topics (reid, title, created_at, content, language, author_id, board_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, t.ID, t.Title, t.CreatedAt, t.Content, t.Language, authorID, boardID).Scan(&topicID)
	if err != nil {
		return false, fmt.Errorf("failed to insert topic %d: %w", t.ID, err)
	}

	postIDs := make([]int64, len(t.Posts))
	for i, p := range t.Posts {
		postAuthorID, err := getOrCreate(ctx, tx, "authors", "username", p.Author.Username)
		if err != nil {
			return false, err
		}
		var replyTo *int64
		if p.ReplyTo != nil && *p.ReplyTo >= 0 && *p.ReplyTo < i {
			replyTo = &postIDs[*p.ReplyTo]
		}
		err = tx.QueryRow(ctx, `
			INSERT INTO posts (content, created_at, topic_id, author_id, reply_to_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, p.Content, p.CreatedAt, topicID, postAuthorID, replyTo).Scan(&postIDs[i])
		if err != nil {
			return false, fmt.Errorf("failed to insert post %d of topic %d: %w", i, t.ID, err)
		}
		if p.ReplyTo != nil && *p.ReplyTo == i {
			if _, err := tx.Exec(ctx, "UPDATE posts SET reply_to_id = id WHERE id = $1", postIDs[i]); err != nil {
				return false, fmt.Errorf("failed to link post %d: %w", i, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit topic %d: %w", t.ID, err)
	}
	return true, nil
}
