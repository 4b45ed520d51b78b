package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dtnitsch/bbs-archive-parser/models"
)

// ErrTopicNotFound is returned by GetTopic for an unknown reid.
var ErrTopicNotFound = errors.New("topic not found")

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// TopicExists reports whether a topic with this reid was already imported.
func (db *DB) TopicExists(ctx context.Context, reid int64) (bool, error) {
	var id int64
	err := db.QueryRowContext(ctx, "SELECT topic_id FROM topics WHERE reid = ?", reid).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check topic: %w", err)
	}
	return true, nil
}

// getOrCreate returns the id of the row whose column equals value, inserting
// it first when missing.
func getOrCreate(ctx context.Context, q queryer, table, idCol, col, value string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", idCol, table, col), value).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to look up %s %q: %w", table, value, err)
	}

	result, err := q.ExecContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (?)", table, col), value)
	if err != nil {
		return 0, fmt.Errorf("failed to insert %s %q: %w", table, value, err)
	}
	return result.LastInsertId()
}

// SaveTopic stores a topic with its replies and assets in one transaction.
// Topics already present are left untouched and reported as not saved.
// Authors are deduplicated by username and boards by name.
func (db *DB) SaveTopic(ctx context.Context, t *models.Topic) (bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var existing int64
	err = tx.QueryRowContext(ctx, "SELECT topic_id FROM topics WHERE reid = ?", t.ID).Scan(&existing)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("failed to check topic: %w", err)
	}

	authorID, err := getOrCreate(ctx, tx, "authors", "author_id", "username", t.Author.Username)
	if err != nil {
		return false, err
	}
	boardID, err := getOrCreate(ctx, tx, "boards", "board_id", "name", t.Board)
	if err != nil {
		return false, err
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO topics (reid, title, created_at, content, text, format, language, author_id, board_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Title, t.CreatedAt.UTC(), t.Content, t.Text, string(t.Format), t.Language, authorID, boardID)
	if err != nil {
		return false, fmt.Errorf("failed to insert topic %d: %w", t.ID, err)
	}
	topicID, err := result.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("failed to get topic ID: %w", err)
	}

	for _, u := range topicOnlyAssets(t) {
		if _, err := tx.ExecContext(ctx, "INSERT INTO assets (topic_id, url) VALUES (?, ?)", topicID, u); err != nil {
			return false, fmt.Errorf("failed to insert asset: %w", err)
		}
	}

	postIDs := make([]int64, len(t.Posts))
	for i, p := range t.Posts {
		postAuthorID, err := getOrCreate(ctx, tx, "authors", "author_id", "username", p.Author.Username)
		if err != nil {
			return false, err
		}
		replyToRoot := p.ReplyTo != nil && *p.ReplyTo == models.RootIndex
		result, err := tx.ExecContext(ctx, `
			INSERT INTO posts (topic_id, position, author_id, created_at, content, text, reply_to_root)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, topicID, i, postAuthorID, p.CreatedAt.UTC(), p.Content, p.Text, replyToRoot)
		if err != nil {
			return false, fmt.Errorf("failed to insert post %d of topic %d: %w", i, t.ID, err)
		}
		if postIDs[i], err = result.LastInsertId(); err != nil {
			return false, fmt.Errorf("failed to get post ID: %w", err)
		}
		for _, u := range p.Assets {
			if _, err := tx.ExecContext(ctx, "INSERT INTO assets (topic_id, position, url) VALUES (?, ?, ?)", topicID, i, u); err != nil {
				return false, fmt.Errorf("failed to insert asset: %w", err)
			}
		}
	}

	// Links are written once every reply has an id
	for i, p := range t.Posts {
		if p.ReplyTo == nil || *p.ReplyTo < 0 || *p.ReplyTo >= len(postIDs) {
			continue
		}
		if _, err := tx.ExecContext(ctx, "UPDATE posts SET reply_to_id = ? WHERE post_id = ?", postIDs[*p.ReplyTo], postIDs[i]); err != nil {
			return false, fmt.Errorf("failed to link post %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit topic %d: %w", t.ID, err)
	}
	return true, nil
}

// topicOnlyAssets returns the topic-level assets that no reply lists, which
// for modern topics are the root post's images.
func topicOnlyAssets(t *models.Topic) []string {
	seen := map[string]int{}
	for _, p := range t.Posts {
		for _, u := range p.Assets {
			seen[u]++
		}
	}
	var out []string
	for _, u := range t.Assets {
		if seen[u] > 0 {
			seen[u]--
			continue
		}
		out = append(out, u)
	}
	return out
}

// TopicSummary is one row of the topic listing.
type TopicSummary struct {
	Reid      int64
	Title     string
	Board     string
	Author    string
	CreatedAt time.Time
	PostCount int
}

// ListTopics returns the most recent topics, optionally limited to one board.
func (db *DB) ListTopics(ctx context.Context, board string, limit int) ([]TopicSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.QueryContext(ctx, `
		SELECT t.reid, t.title, b.name, a.username, t.created_at,
		       (SELECT COUNT(*) FROM posts p WHERE p.topic_id = t.topic_id)
		FROM topics t
		JOIN boards b ON b.board_id = t.board_id
		JOIN authors a ON a.author_id = t.author_id
		WHERE ? = '' OR b.name = ?
		ORDER BY t.reid DESC
		LIMIT ?
	`, board, board, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	defer rows.Close()

	var topics []TopicSummary
	for rows.Next() {
		var s TopicSummary
		if err := rows.Scan(&s.Reid, &s.Title, &s.Board, &s.Author, &s.CreatedAt, &s.PostCount); err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		topics = append(topics, s)
	}
	return topics, rows.Err()
}

// GetTopic loads a stored topic. Nicknames and quote references are not
// stored and come back empty.
func (db *DB) GetTopic(ctx context.Context, reid int64) (*models.Topic, error) {
	t := &models.Topic{ID: reid}
	var topicID int64
	var text, format, language sql.NullString
	err := db.QueryRowContext(ctx, `
		SELECT t.topic_id, t.title, b.name, a.username, t.created_at, t.content, t.text, t.format, t.language
		FROM topics t
		JOIN boards b ON b.board_id = t.board_id
		JOIN authors a ON a.author_id = t.author_id
		WHERE t.reid = ?
	`, reid).Scan(&topicID, &t.Title, &t.Board, &t.Author.Username, &t.CreatedAt, &t.Content, &text, &format, &language)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrTopicNotFound, reid)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load topic %d: %w", reid, err)
	}
	t.Text, t.Format, t.Language = text.String, models.Format(format.String), language.String

	rows, err := db.QueryContext(ctx, `
		SELECT p.post_id, a.username, p.created_at, p.content, p.text, p.reply_to_id, p.reply_to_root
		FROM posts p
		JOIN authors a ON a.author_id = p.author_id
		WHERE p.topic_id = ?
		ORDER BY p.position
	`, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to load posts: %w", err)
	}
	defer rows.Close()

	positions := map[int64]int{}
	var replyIDs []sql.NullInt64
	for rows.Next() {
		var (
			p       models.Post
			postID  int64
			ptext   sql.NullString
			replyTo sql.NullInt64
			toRoot  bool
		)
		if err := rows.Scan(&postID, &p.Author.Username, &p.CreatedAt, &p.Content, &ptext, &replyTo, &toRoot); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		p.Text = ptext.String
		if toRoot {
			root := models.RootIndex
			p.ReplyTo = &root
		}
		positions[postID] = len(t.Posts)
		replyIDs = append(replyIDs, replyTo)
		t.Posts = append(t.Posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, r := range replyIDs {
		if pos, ok := positions[r.Int64]; r.Valid && ok {
			t.Posts[i].ReplyTo = &pos
		}
	}

	assets, err := db.QueryContext(ctx, "SELECT position, url FROM assets WHERE topic_id = ? ORDER BY asset_id", topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assets: %w", err)
	}
	defer assets.Close()
	for assets.Next() {
		var pos sql.NullInt64
		var u string
		if err := assets.Scan(&pos, &u); err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		if pos.Valid && int(pos.Int64) < len(t.Posts) {
			t.Posts[pos.Int64].Assets = append(t.Posts[pos.Int64].Assets, u)
		}
		t.Assets = append(t.Assets, u)
	}
	return t, assets.Err()
}

// AuthorPostCounts returns how many topics and replies each username wrote,
// optionally limited to one board.
func (db *DB) AuthorPostCounts(ctx context.Context, board string) (map[string]int, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT a.username, COUNT(*) FROM (
			SELECT t.author_id, t.board_id FROM topics t
			UNION ALL
			SELECT p.author_id, t.board_id FROM posts p JOIN topics t ON t.topic_id = p.topic_id
		) x
		JOIN authors a ON a.author_id = x.author_id
		JOIN boards b ON b.board_id = x.board_id
		WHERE ? = '' OR b.name = ?
		GROUP BY a.username
	`, board, board)
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[name] = n
	}
	return counts, rows.Err()
}
