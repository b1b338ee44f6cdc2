package sites

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/brogergvhs/noveld/internal/fetch"
)

// HHLWX scrapes 黄鹤楼文学 (hhlwx.org). The site uses fixed class names for
// the index and an inline-styled div for chapter bodies.
type HHLWX struct {
	f *fetch.Fetcher
}

const hhlwxContentStyle = "font-size: 20px; text-indent: 30px; line-height: 38px; width: 720px; margin: 0 auto;"

func NewHHLWX(f *fetch.Fetcher) *HHLWX {
	return &HHLWX{f: f}
}

func (h *HHLWX) ListChapters(ctx context.Context, indexURL string) (string, []ChapterRef, error) {
	body, err := h.f.Fetch(ctx, indexURL)
	if err != nil {
		return "", nil, err
	}

	doc, err := parseDoc(body)
	if err != nil {
		return "", nil, err
	}

	title := strings.TrimSpace(doc.Find("div.ksq_1 h1").First().Text())
	if title == "" {
		return "", nil, fmt.Errorf("hhlwx: novel title not found on %s", indexURL)
	}
	title = stripFilenameChars(title)

	var refs []ChapterRef
	doc.Find("td.chapterlist a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || href == "" {
			return
		}
		refs = append(refs, ChapterRef{
			Title: strings.TrimSpace(a.Text()),
			URL:   resolveURL(indexURL, href),
		})
	})

	if len(refs) == 0 {
		return "", nil, fmt.Errorf("hhlwx: no chapter links on %s", indexURL)
	}

	return title, refs, nil
}

func (h *HHLWX) FetchChapter(ctx context.Context, chapterURL string) (string, string, error) {
	body, err := h.f.Fetch(ctx, chapterURL)
	if err != nil {
		return "", "", err
	}

	doc, err := parseDoc(body)
	if err != nil {
		return "", "", err
	}

	title, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content")
	if !ok || strings.TrimSpace(title) == "" {
		return "", "", fmt.Errorf("hhlwx: chapter title not found on %s", chapterURL)
	}

	// The body div carries no class or id, only this exact inline style.
	content := doc.Find("div").FilterFunction(func(_ int, s *goquery.Selection) bool {
		style, _ := s.Attr("style")
		return style == hhlwxContentStyle
	}).First()

	if content.Length() == 0 {
		return "", "", fmt.Errorf("hhlwx: chapter body not found on %s", chapterURL)
	}

	return strings.TrimSpace(title), content.Text(), nil
}
