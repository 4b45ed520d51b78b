package extractor

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Prober reports whether an asset URL can be fetched.
type Prober interface {
	Exists(ctx context.Context, url string) bool
}

// Assets resolves and validates image references inside post markup.
type Assets struct {
	BaseURL string
	Probe   Prober // nil keeps every resolved image without probing
	Logger  *slog.Logger
}

// Strip resolves relative image sources in sel against BaseURL and probes
// each one. Images that fail the probe are removed from the markup;
// surviving ones are rewritten to their absolute URL and returned in
// document order. Images that already carry an absolute URL are left alone
// and not recorded. Probe failures are logged, never returned.
func (a *Assets) Strip(ctx context.Context, sel *goquery.Selection) []string {
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}
	base, err := url.Parse(a.BaseURL)
	if err != nil {
		logger.Warn("invalid asset base url", "base_url", a.BaseURL, "error", err)
		base = &url.URL{}
	}

	var assets []string
	sel.Find("img").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		src = strings.TrimSpace(src)
		if isAbsolute(src) {
			return
		}

		ref, err := url.Parse(src)
		if src == "" || err != nil {
			logger.Debug("dropping unusable image reference", "src", src)
			img.Remove()
			return
		}
		abs := base.ResolveReference(ref).String()

		if a.Probe != nil && !a.Probe.Exists(ctx, abs) {
			logger.Debug("dropping unreachable asset", "url", abs)
			img.Remove()
			return
		}
		img.SetAttr("src", abs)
		assets = append(assets, abs)
	})
	return assets
}

func isAbsolute(src string) bool {
	lower := strings.ToLower(src)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
