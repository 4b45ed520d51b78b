// Package workset keeps named sets of reids in Redis so that a reimport can be
// limited to the topics a previous filtering pass selected.
package workset

import (
	"context"
	"fmt"
	"sort"

	"github.com/redis/rueidis"
)

// Key returns the Redis set key for a board's workset. An empty name selects
// the board's default set.
func Key(board, name string) string {
	if name == "" {
		return fmt.Sprintf("workset:reid:%s", board)
	}
	return fmt.Sprintf("workset:reid:%s:%s", board, name)
}

type Store struct {
	c rueidis.Client
}

// Open connects to the Redis server at addr.
func Open(addr string) (*Store, error) {
	c, err := rueidis.NewClient(rueidis.ClientOption{InitAddress: []string{addr}})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &Store{c: c}, nil
}

func (s *Store) Close() {
	s.c.Close()
}

// Members returns the reids in the set, sorted.
func (s *Store) Members(ctx context.Context, key string) ([]string, error) {
	cmd := s.c.B().Smembers().Key(key).Build()
	reids, err := s.c.Do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("failed to read workset %s: %w", key, err)
	}
	sort.Strings(reids)
	return reids, nil
}

// Add inserts reids and returns how many were new.
func (s *Store) Add(ctx context.Context, key string, reids ...string) (int64, error) {
	if len(reids) == 0 {
		return 0, nil
	}
	cmd := s.c.B().Sadd().Key(key).Member(reids...).Build()
	n, err := s.c.Do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, fmt.Errorf("failed to add to workset %s: %w", key, err)
	}
	return n, nil
}

func (s *Store) Remove(ctx context.Context, key string, reids ...string) (int64, error) {
	if len(reids) == 0 {
		return 0, nil
	}
	cmd := s.c.B().Srem().Key(key).Member(reids...).Build()
	n, err := s.c.Do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, fmt.Errorf("failed to remove from workset %s: %w", key, err)
	}
	return n, nil
}

// Reset deletes the set.
func (s *Store) Reset(ctx context.Context, key string) error {
	cmd := s.c.B().Del().Key(key).Build()
	if err := s.c.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to reset workset %s: %w", key, err)
	}
	return nil
}
