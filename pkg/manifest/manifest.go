package manifest

import "github.com/dtnitsch/bbs-archive-parser/pkg/mapreduce"

// RunManifest summarises one reimport run: how many documents were read, how
// many became topics, why the rest were skipped, and who posted most.
type RunManifest struct {
	GeneratedAt  string            `yaml:"generated_at"`
	Board        string            `yaml:"board"`
	DryRun       bool              `yaml:"dry_run"`
	Documents    int               `yaml:"documents"`
	Parsed       int               `yaml:"parsed"`
	NotParseable int               `yaml:"not_parseable"`
	Failed       int               `yaml:"failed"`
	Saved        int               `yaml:"saved"`
	FailedByKind map[string]int    `yaml:"failed_by_kind,omitempty"`
	TopAuthors   []mapreduce.Entry `yaml:"top_authors,omitempty"`
	Results      []TopicSummary    `yaml:"results"`
}

// TopicSummary is the per-document line of the manifest.
type TopicSummary struct {
	Reid         string `yaml:"reid"`
	Status       string `yaml:"status"` // "parsed", "not_parseable" or "error"
	ErrorType    string `yaml:"error_type,omitempty"`
	ErrorMessage string `yaml:"error_message,omitempty"`
	Format       string `yaml:"format,omitempty"`
	Language     string `yaml:"language,omitempty"`
	Posts        int    `yaml:"posts,omitempty"`
	Resolved     int    `yaml:"resolved,omitempty"`
	Saved        bool   `yaml:"saved,omitempty"`
}
