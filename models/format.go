package models

// Format names one of the two historical page layouts of the archive.
type Format string

const (
	// FormatModern is one <pre> block per post, header lines 发信人/发信站.
	FormatModern Format = "modern"
	// FormatLegacy is one <pre> per page, posts separated by LegacySeparator.
	FormatLegacy Format = "legacy"
)

// Valid reports whether f is one of the known formats.
func (f Format) Valid() bool {
	return f == FormatModern || f == FormatLegacy
}
