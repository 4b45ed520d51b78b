package caching

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLookupStore(t *testing.T) {
	c, err := NewCache(filepath.Join(t.TempDir(), "probe"), time.Hour)
	if err != nil {
		t.Fatalf("NewCache() error: %v", err)
	}

	if _, ok := c.Lookup("http://a/x.jpg"); ok {
		t.Fatal("Lookup() hit on empty cache")
	}

	if err := c.Store("http://a/x.jpg", true); err != nil {
		t.Fatalf("Store() error: %v", err)
	}
	if err := c.Store("http://a/y.jpg", false); err != nil {
		t.Fatalf("Store() error: %v", err)
	}

	tests := []struct {
		url        string
		wantExists bool
		wantOK     bool
	}{
		{"http://a/x.jpg", true, true},
		{"http://a/y.jpg", false, true},
		{"http://a/z.jpg", false, false},
	}
	for _, tt := range tests {
		exists, ok := c.Lookup(tt.url)
		if exists != tt.wantExists || ok != tt.wantOK {
			t.Errorf("Lookup(%q) = (%v, %v), want (%v, %v)", tt.url, exists, ok, tt.wantExists, tt.wantOK)
		}
	}
}

func TestExpiry(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCache(dir, time.Minute)
	if err != nil {
		t.Fatalf("NewCache() error: %v", err)
	}
	if err := c.Store("http://a/old.jpg", true); err != nil {
		t.Fatalf("Store() error: %v", err)
	}
	if err := c.Store("http://a/new.jpg", true); err != nil {
		t.Fatalf("Store() error: %v", err)
	}

	old := time.Now().Add(-2 * time.Minute)
	if err := os.Chtimes(c.file("http://a/old.jpg"), old, old); err != nil {
		t.Fatalf("Chtimes() error: %v", err)
	}

	if _, ok := c.Lookup("http://a/old.jpg"); ok {
		t.Error("expired entry reported as a hit")
	}

	removed, err := c.Purge()
	if err != nil {
		t.Fatalf("Purge() error: %v", err)
	}
	if removed != 1 {
		t.Errorf("Purge() removed %d entries, want 1", removed)
	}
	if _, ok := c.Lookup("http://a/new.jpg"); !ok {
		t.Error("fresh entry lost after Purge()")
	}
}

func TestCorruptEntryIsMiss(t *testing.T) {
	c, err := NewCache(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewCache() error: %v", err)
	}
	if err := os.WriteFile(c.file("http://a/x.jpg"), []byte("garbage"), 0644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	if _, ok := c.Lookup("http://a/x.jpg"); ok {
		t.Error("corrupt entry reported as a hit")
	}
}
