package models

// RawDocument is one archived topic as the document store keeps it: the
// rendered pages in stored order plus the listing metadata.
type RawDocument struct {
	Reid    string   `bson:"reid" json:"reid" yaml:"reid"`
	Title   string   `bson:"title" json:"title" yaml:"title"`
	Section string   `bson:"section" json:"section" yaml:"section"`
	Pages   []string `bson:"pages" json:"pages" yaml:"pages"`
}
