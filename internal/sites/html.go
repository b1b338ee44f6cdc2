package sites

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

func parseDoc(body string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(body))
}

func resolveURL(baseURL, href string) string {
	if href == "" {
		return baseURL
	}

	u, err := url.Parse(href)
	if err != nil {
		// Unparseable href in the wild markup; pass it through untouched.
		return href
	}
	if u.IsAbs() {
		return u.String()
	}

	b, err := url.Parse(baseURL)
	if err != nil {
		return href
	}

	return b.ResolveReference(u).String()
}

// stripFilenameChars removes characters that would break the artifact
// filename derived from a novel title.
func stripFilenameChars(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(`/:*?"<>|`, r) {
			return -1
		}
		return r
	}, s)
}
