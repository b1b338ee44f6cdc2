// Package sites implements per-site adapters that turn raw novel pages
// into chapter lists and chapter bodies. The crawler depends only on the
// Adapter interface, never on a specific site's HTML structure.
package sites

import (
	"context"
	"net/url"
	"strings"

	"github.com/brogergvhs/noveld/internal/fetch"
)

// ChapterRef is one entry of a site's chapter index, in discovery order.
type ChapterRef struct {
	Title string
	URL   string
}

type Adapter interface {
	ListChapters(ctx context.Context, indexURL string) (string, []ChapterRef, error)
	FetchChapter(ctx context.Context, chapterURL string) (title, body string, err error)
}

// ForURL picks an adapter for the given novel homepage. Unknown hosts get
// the 77shuwu adapter, whose selector heuristics double as a generic
// fallback for template-engine novel sites.
func ForURL(rawURL string, f *fetch.Fetcher) Adapter {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = strings.ToLower(u.Host)
	}

	switch {
	case strings.Contains(host, "hhlwx"):
		return NewHHLWX(f)
	default:
		return NewShuwu77(f)
	}
}
