package mapreduce

import (
	"fmt"
	"io"
	"sort"

	"github.com/dtnitsch/bbs-archive-parser/models"
)

// Map counts the posts each username wrote in one topic, root included.
func Map(t *models.Topic) map[string]int {
	counts := map[string]int{t.Author.Username: 1}
	for _, p := range t.Posts {
		counts[p.Author.Username]++
	}
	return counts
}

// Reduce aggregates a slice of count maps into a single map.
func Reduce(intermediate []map[string]int) map[string]int {
	finalResults := make(map[string]int)

	for _, counts := range intermediate {
		for key, count := range counts {
			finalResults[key] += count
		}
	}

	return finalResults
}

// Entry is one ranked key.
type Entry struct {
	Key   string `yaml:"key"`
	Count int    `yaml:"count"`
}

// TopN returns the n highest counts, ties broken by key.
func TopN(counts map[string]int, n int) []Entry {
	ss := make([]Entry, 0, len(counts))
	for k, v := range counts {
		ss = append(ss, Entry{k, v})
	}

	sort.Slice(ss, func(i, j int) bool {
		if ss[i].Count != ss[j].Count {
			return ss[i].Count > ss[j].Count
		}
		return ss[i].Key < ss[j].Key
	})

	if n >= 0 && len(ss) > n {
		ss = ss[:n]
	}
	return ss
}

// PrintTop writes the top n keys in a numbered list format.
func PrintTop(w io.Writer, counts map[string]int, n int) {
	for i, e := range TopN(counts, n) {
		fmt.Fprintf(w, "%d. %s: %d\n", i+1, e.Key, e.Count)
	}
}
