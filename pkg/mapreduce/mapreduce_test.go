package mapreduce

import (
	"bytes"
	"testing"

	"github.com/dtnitsch/bbs-archive-parser/models"
	"github.com/google/go-cmp/cmp"
)

func topic(root string, replies ...string) *models.Topic {
	t := &models.Topic{Author: models.ParsedAuthor{Username: root}}
	for _, r := range replies {
		t.Posts = append(t.Posts, models.Post{Author: models.ParsedAuthor{Username: r}})
	}
	return t
}

func TestMapReduce(t *testing.T) {
	got := Reduce([]map[string]int{
		Map(topic("alice", "bob", "alice")),
		Map(topic("bob", "carol")),
	})
	want := map[string]int{"alice": 2, "bob": 2, "carol": 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Reduce() mismatch (-want +got):\n%s", diff)
	}
}

func TestTopN(t *testing.T) {
	counts := map[string]int{"carol": 1, "bob": 3, "alice": 3, "dave": 2}

	tests := []struct {
		name string
		n    int
		want []Entry
	}{
		{name: "ties broken by key", n: 3, want: []Entry{{"alice", 3}, {"bob", 3}, {"dave", 2}}},
		{name: "n larger than input", n: 10, want: []Entry{{"alice", 3}, {"bob", 3}, {"dave", 2}, {"carol", 1}}},
		{name: "zero", n: 0, want: []Entry{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, TopN(counts, tt.n)); diff != "" {
				t.Errorf("TopN() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPrintTop(t *testing.T) {
	var buf bytes.Buffer
	PrintTop(&buf, map[string]int{"alice": 2, "bob": 1}, 5)
	want := "1. alice: 2\n2. bob: 1\n"
	if buf.String() != want {
		t.Errorf("PrintTop() = %q, want %q", buf.String(), want)
	}
}
