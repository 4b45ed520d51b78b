package parser

import (
	"strings"

	"github.com/dtnitsch/bbs-archive-parser/models"
	"github.com/dtnitsch/bbs-archive-parser/pkg/extractor"
)

// Banners that mark automated mail and notices rather than discussions.
const (
	SystemHint   = "自动发信系统"
	AnnounceHint = "校内机关通知"
)

// DetectFormat picks the page grammar of a document by looking at its first
// page. ok is false when the document has no pages or is system mail or an
// administrative notice.
func DetectFormat(doc *models.RawDocument) (models.Format, bool) {
	if doc == nil || len(doc.Pages) == 0 {
		return "", false
	}
	first := doc.Pages[0]
	if strings.Contains(first, SystemHint) || strings.Contains(first, AnnounceHint) {
		return "", false
	}
	if strings.Contains(first, extractor.LegacySeparator) {
		return models.FormatLegacy, true
	}
	return models.FormatModern, true
}
