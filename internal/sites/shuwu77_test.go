package sites

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shuwuIndexPage = `<html><head><title>大道朝天_77读书网</title></head><body>
<h1>大道朝天_77读书网</h1>
<a href="/novel/123/">立即阅读</a>
<a href="/chapter/123/2.html">第二章 洗剑</a>
<a href="/chapter/123/1.html">第一章 不缚</a>
<a href="/chapter/123/1.html">第一章 不缚</a>
<a href="/about.html">关于我们</a>
<a href="/chapter/123/3.html">这个链接的文字实在是太长太长太长太长太长太长太长太长太长太长太长太长太长太长太长太长太长太长太长太长太长太长太长太长太长了</a>
<a href="/chapter/123/10.html">第十章 雪崩</a>
</body></html>`

func TestShuwu77ListChapters(t *testing.T) {
	f, transport := newSiteFetcher()
	transport.RegisterResponder(http.MethodGet, "https://www.77shuwu.cc/novel/123/",
		httpmock.NewStringResponder(200, shuwuIndexPage))

	site := NewShuwu77(f)
	title, refs, err := site.ListChapters(context.Background(), "https://www.77shuwu.cc/novel/123/")
	require.NoError(t, err)

	assert.Equal(t, "大道朝天", title)

	// Duplicate, promo, nav and over-long links are gone; URLs sorted.
	require.Len(t, refs, 3)
	assert.Equal(t, "https://www.77shuwu.cc/chapter/123/1.html", refs[0].URL)
	assert.Equal(t, "第一章 不缚", refs[0].Title)
	assert.Equal(t, "https://www.77shuwu.cc/chapter/123/10.html", refs[1].URL)
	assert.Equal(t, "https://www.77shuwu.cc/chapter/123/2.html", refs[2].URL)
}

func TestShuwu77ListChaptersNoLinks(t *testing.T) {
	f, transport := newSiteFetcher()
	transport.RegisterResponder(http.MethodGet, "https://www.77shuwu.cc/novel/9/",
		httpmock.NewStringResponder(200, `<html><body><h1>空书</h1><a href="/about.html">关于</a></body></html>`))

	site := NewShuwu77(f)
	_, _, err := site.ListChapters(context.Background(), "https://www.77shuwu.cc/novel/9/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no chapter links")
}

func TestIsShuwuChapterLink(t *testing.T) {
	assert.True(t, isShuwuChapterLink("/chapter/123/1.html", "123"))
	assert.True(t, isShuwuChapterLink("https://x.com/chapter/123/1.html", "123"))
	assert.True(t, isShuwuChapterLink("/chapter/9/1.html", ""))
	assert.True(t, isShuwuChapterLink("/novel/123/1.html", ""))
	assert.False(t, isShuwuChapterLink("/novel/123/", ""))
	assert.False(t, isShuwuChapterLink("/about.html", "123"))
}

const shuwuChapterContentsPage = `<html><head><title>第一章 不缚_77读书网</title></head><body>
<h1>第一章 不缚</h1>
<div id="ChapterContents">
<div id="content_tip">广告</div>
春风渡河，吹皱一池碧水。<br/><br/>
柳十岁坐在崖边，望着远处的雪山。<br/>
txt下载地址：点此下载<br/>
他忽然觉得有些冷。
</div>
</body></html>`

func TestShuwu77FetchChapterPrimaryLayout(t *testing.T) {
	f, transport := newSiteFetcher()
	transport.RegisterResponder(http.MethodGet, "https://www.77shuwu.cc/chapter/123/1.html",
		httpmock.NewStringResponder(200, shuwuChapterContentsPage))

	site := NewShuwu77(f)
	title, body, err := site.FetchChapter(context.Background(), "https://www.77shuwu.cc/chapter/123/1.html")
	require.NoError(t, err)

	assert.Equal(t, "第一章 不缚", title)
	assert.Contains(t, body, "春风渡河")
	assert.Contains(t, body, "他忽然觉得有些冷")
	assert.NotContains(t, body, "广告")
	assert.NotContains(t, body, "txt下载地址")
}

func TestShuwu77FetchChapterSelectorFallback(t *testing.T) {
	paragraph := strings.Repeat("剑光如雪，落在南归的群山之间。", 12)
	page := `<html><body><h1>第二章 洗剑</h1><div id="content"><script>var x=1;</script>` +
		paragraph + `</div></body></html>`

	f, transport := newSiteFetcher()
	transport.RegisterResponder(http.MethodGet, "https://www.77shuwu.cc/chapter/123/2.html",
		httpmock.NewStringResponder(200, page))

	site := NewShuwu77(f)
	title, body, err := site.FetchChapter(context.Background(), "https://www.77shuwu.cc/chapter/123/2.html")
	require.NoError(t, err)

	assert.Equal(t, "第二章 洗剑", title)
	assert.Contains(t, body, "剑光如雪")
	assert.NotContains(t, body, "var x=1;")
}

func TestShuwu77FetchChapterNoContent(t *testing.T) {
	f, transport := newSiteFetcher()
	transport.RegisterResponder(http.MethodGet, "https://www.77shuwu.cc/chapter/123/3.html",
		httpmock.NewStringResponder(200, `<html><body></body></html>`))

	site := NewShuwu77(f)
	_, _, err := site.FetchChapter(context.Background(), "https://www.77shuwu.cc/chapter/123/3.html")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no usable content")
}

func TestShuwu77ChapterTitleFromURLDigits(t *testing.T) {
	paragraph := strings.Repeat("山中无岁月，洞里有乾坤。", 12)
	page := `<html><body><div id="content">` + paragraph + `</div></body></html>`

	f, transport := newSiteFetcher()
	transport.RegisterResponder(http.MethodGet, "https://www.77shuwu.cc/chapter/123/7.html",
		httpmock.NewStringResponder(200, page))

	site := NewShuwu77(f)
	title, _, err := site.FetchChapter(context.Background(), "https://www.77shuwu.cc/chapter/123/7.html")
	require.NoError(t, err)
	assert.Equal(t, "第 123 章", title)
}

func TestCleanContent(t *testing.T) {
	in := "  第一段  \n\n\n\n第二段\n手机阅读：m.77shuwu.cc\n第三段"
	out := cleanContent(in)
	assert.Equal(t, "第一段\n第二段", out)
}

func TestStripFilenameChars(t *testing.T) {
	assert.Equal(t, "书名 第1卷", stripFilenameChars(`书名/: 第1卷*?"<>|`))
}

func TestResolveURL(t *testing.T) {
	assert.Equal(t, "https://a.com/chapter/1.html", resolveURL("https://a.com/novel/1/", "/chapter/1.html"))
	assert.Equal(t, "https://b.com/x", resolveURL("https://a.com/novel/1/", "https://b.com/x"))
	assert.Equal(t, "https://a.com/novel/1/", resolveURL("https://a.com/novel/1/", ""))

	// Control characters make url.Parse fail; the href survives as-is
	// instead of crashing the whole index walk.
	assert.NotPanics(t, func() {
		assert.Equal(t, "/chapter\n1.html", resolveURL("https://a.com/novel/1/", "/chapter\n1.html"))
	})
}

func TestShuwu77ListChaptersSurvivesBrokenHref(t *testing.T) {
	page := `<html><body><h1>残页之书</h1>
<a href="/chapter/123/1.html">第一章</a>
<a href="/chapter/123/` + "\n" + `2.html">第二章</a>
</body></html>`

	f, transport := newSiteFetcher()
	transport.RegisterResponder(http.MethodGet, "https://www.77shuwu.cc/novel/123/",
		httpmock.NewStringResponder(200, page))

	site := NewShuwu77(f)
	_, refs, err := site.ListChapters(context.Background(), "https://www.77shuwu.cc/novel/123/")
	require.NoError(t, err)

	urls := make([]string, len(refs))
	for i, r := range refs {
		urls[i] = r.URL
	}
	assert.Contains(t, urls, "https://www.77shuwu.cc/chapter/123/1.html")
}
