package sites

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/brogergvhs/noveld/internal/fetch"
)

// Shuwu77 scrapes 77读书网-style sites. Nothing here depends on a stable
// page template: chapter links are found by href shape, bodies by a
// cascade of common content containers with a whole-page fallback, which
// is why this adapter also serves unknown hosts.
type Shuwu77 struct {
	f *fetch.Fetcher
}

var (
	shuwuNovelID = regexp.MustCompile(`/novel/(\d+)/`)
	shuwuTipRe   = regexp.MustCompile(`(?s)温馨提示：方向键左右.*?返回列表`)
	multiNewline = regexp.MustCompile(`\n{3,}`)
)

var shuwuContentSelectors = []string{
	"#ChapterContents",
	"#content",
	".content",
	"#article",
	".article",
	"#content_detail",
	".content_detail",
	".chapter_content",
	"#chapter_content",
	".content_txt",
	"#content_txt",
	".neirong",
	"#neirong",
}

var shuwuNavKeywords = []string{
	"txt下载地址",
	"手机阅读",
	"上一章",
	"下一章",
	"回目录",
}

var shuwuTitleSuffixes = []string{
	"_77读书网",
	"-77读书网",
	"77读书网",
	"全文阅读",
}

func NewShuwu77(f *fetch.Fetcher) *Shuwu77 {
	return &Shuwu77{f: f}
}

func (s *Shuwu77) ListChapters(ctx context.Context, indexURL string) (string, []ChapterRef, error) {
	body, err := s.f.Fetch(ctx, indexURL)
	if err != nil {
		return "", nil, err
	}

	doc, err := parseDoc(body)
	if err != nil {
		return "", nil, err
	}

	title := s.novelTitle(doc)
	novelID := ""
	if m := shuwuNovelID.FindStringSubmatch(indexURL); m != nil {
		novelID = m[1]
	}

	var refs []ChapterRef
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		text := strings.TrimSpace(a.Text())

		if text == "" || utf8.RuneCountInString(text) > 50 {
			return
		}
		if text == "立即阅读" {
			return
		}
		if !isShuwuChapterLink(href, novelID) {
			return
		}

		refs = append(refs, ChapterRef{
			Title: text,
			URL:   resolveURL(indexURL, href),
		})
	})

	refs = dedupeAndSort(refs)
	if len(refs) == 0 {
		return "", nil, fmt.Errorf("shuwu77: no chapter links on %s", indexURL)
	}

	return title, refs, nil
}

func (s *Shuwu77) novelTitle(doc *goquery.Document) string {
	tag := doc.Find("h1").First()
	if tag.Length() == 0 {
		tag = doc.Find("title").First()
	}
	if tag.Length() == 0 {
		return "未知小说"
	}

	title := strings.TrimSpace(tag.Text())
	for _, suffix := range shuwuTitleSuffixes {
		title = strings.TrimSuffix(title, suffix)
	}
	return stripFilenameChars(strings.TrimSpace(title))
}

func isShuwuChapterLink(href, novelID string) bool {
	if novelID != "" && strings.Contains(href, "/chapter/"+novelID+"/") {
		return true
	}
	if strings.HasPrefix(href, "/chapter/") {
		return true
	}
	// Deep /novel/<id>/<chapter> paths without a trailing slash.
	if strings.HasPrefix(href, "/novel/") && !strings.HasSuffix(href, "/") && strings.Count(href, "/") >= 3 {
		return true
	}
	return false
}

func dedupeAndSort(refs []ChapterRef) []ChapterRef {
	seen := map[string]bool{}
	out := refs[:0]
	for _, r := range refs {
		if seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		out = append(out, r)
	}

	// Chapter URLs on these sites carry monotonically increasing ids.
	sort.SliceStable(out, func(i, j int) bool { return out[i].URL < out[j].URL })
	return out
}

func (s *Shuwu77) FetchChapter(ctx context.Context, chapterURL string) (string, string, error) {
	body, err := s.f.Fetch(ctx, chapterURL)
	if err != nil {
		return "", "", err
	}

	doc, err := parseDoc(body)
	if err != nil {
		return "", "", err
	}

	title := s.chapterTitle(doc, chapterURL)

	content := extractChapterContents(doc)
	if content == "" {
		content = extractBySelectors(doc)
	}
	if content == "" {
		content = extractFullPage(doc)
	}
	if content == "" {
		return "", "", fmt.Errorf("shuwu77: no usable content on %s", chapterURL)
	}

	return title, content, nil
}

func (s *Shuwu77) chapterTitle(doc *goquery.Document, chapterURL string) string {
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" &&
		!strings.Contains(h1, "立即阅读") && utf8.RuneCountInString(h1) < 100 {
		return h1
	}

	if meta, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if m := strings.TrimSpace(meta); m != "" && !strings.Contains(m, "立即阅读") {
			return m
		}
	}

	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		for _, suffix := range shuwuTitleSuffixes {
			t = strings.TrimSuffix(t, suffix)
		}
		t = strings.TrimSpace(t)
		if t != "" && !strings.Contains(t, "立即阅读") && utf8.RuneCountInString(t) > 5 {
			return t
		}
	}

	for _, part := range strings.Split(chapterURL, "/") {
		if part != "" && isDigits(part) {
			return "第 " + part + " 章"
		}
	}

	return "未知章节"
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// extractChapterContents handles the site's primary layout: a
// #ChapterContents div with paragraphs separated by <br> tags.
func extractChapterContents(doc *goquery.Document) string {
	div := doc.Find("#ChapterContents").First()
	if div.Length() == 0 {
		return ""
	}

	div.Find("#content_tip").Remove()

	var paragraphs []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			paragraphs = append(paragraphs, current.String())
			current.Reset()
		}
	}

	div.Contents().Each(func(_ int, node *goquery.Selection) {
		if goquery.NodeName(node) == "br" {
			flush()
			return
		}
		if text := strings.TrimSpace(node.Text()); text != "" {
			current.WriteString(text)
		}
	})
	flush()

	kept := paragraphs[:0]
	for _, p := range paragraphs {
		if !containsAny(p, shuwuNavKeywords) {
			kept = append(kept, p)
		}
	}

	if len(kept) == 0 {
		return ""
	}
	return strings.Join(kept, "\n\n")
}

func extractBySelectors(doc *goquery.Document) string {
	var div *goquery.Selection
	for _, sel := range shuwuContentSelectors {
		if found := doc.Find(sel).First(); found.Length() > 0 {
			div = found
			break
		}
	}
	if div == nil {
		return ""
	}

	div.Find("script, style, iframe, noscript").Remove()

	content := cleanContent(div.Text())
	if utf8.RuneCountInString(content) < 100 {
		return ""
	}
	return content
}

// extractFullPage is the last resort: strip scripts and take everything,
// filtering navigation chrome line by line.
func extractFullPage(doc *goquery.Document) string {
	doc.Find("script, style").Remove()

	var kept []string
	for _, line := range strings.Split(doc.Find("body").Text(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || containsAny(line, shuwuNavKeywords) {
			continue
		}
		kept = append(kept, line)
	}

	return cleanContent(strings.Join(kept, "\n\n"))
}

func cleanContent(content string) string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	content = strings.Join(lines, "\n")
	content = multiNewline.ReplaceAllString(content, "\n\n")
	content = shuwuTipRe.ReplaceAllString(content, "")

	// Everything past the first navigation block is footer chrome.
	for _, keyword := range []string{"txt下载地址", "手机阅读"} {
		if idx := strings.Index(content, keyword); idx != -1 {
			content = strings.TrimSpace(content[:idx])
		}
	}

	return strings.TrimSpace(content)
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
