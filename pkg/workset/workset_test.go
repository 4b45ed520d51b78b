package workset

import (
	"context"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestKey(t *testing.T) {
	tests := []struct {
		board, name, want string
	}{
		{"PPPerson", "", "workset:reid:PPPerson"},
		{"PPPerson", "quoted", "workset:reid:PPPerson:quoted"},
	}
	for _, tt := range tests {
		if got := Key(tt.board, tt.name); got != tt.want {
			t.Errorf("Key(%q, %q) = %q, want %q", tt.board, tt.name, got, tt.want)
		}
	}
}

func TestStore(t *testing.T) {
	addr := os.Getenv("BBS_TEST_REDIS")
	if addr == "" {
		t.Skip("BBS_TEST_REDIS not set")
	}
	s, err := Open(addr)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	key := Key("test", "workset_test")
	if err := s.Reset(ctx, key); err != nil {
		t.Fatalf("Reset() error: %v", err)
	}
	t.Cleanup(func() { _ = s.Reset(ctx, key) })

	n, err := s.Add(ctx, key, "3", "1", "2", "1")
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if n != 3 {
		t.Errorf("Add() = %d, want 3", n)
	}
	if _, err := s.Remove(ctx, key, "2"); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}

	got, err := s.Members(ctx, key)
	if err != nil {
		t.Fatalf("Members() error: %v", err)
	}
	if diff := cmp.Diff([]string{"1", "3"}, got); diff != "" {
		t.Errorf("Members() mismatch (-want +got):\n%s", diff)
	}
}
