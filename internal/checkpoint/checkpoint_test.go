package checkpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileAppendsPendingAtTail(t *testing.T) {
	cp := New("novel", "http://example.com/novel/1/")

	added := cp.Reconcile("My Novel", []IndexEntry{
		{Title: "第一章", URL: "http://example.com/chapter/1"},
		{Title: "第二章", URL: "http://example.com/chapter/2"},
	})

	assert.Equal(t, 2, added)
	require.Len(t, cp.Chapters, 2)
	assert.Equal(t, "My Novel", cp.NovelTitle)
	assert.Equal(t, 0, cp.Chapters[0].Index)
	assert.Equal(t, 1, cp.Chapters[1].Index)
	assert.Equal(t, StatusPending, cp.Chapters[0].Status)
	assert.NotEmpty(t, cp.Chapters[0].NormalizedTitle)
}

func TestReconcileMatchesByURLNotTitle(t *testing.T) {
	cp := New("novel", "http://example.com/novel/1/")
	cp.Reconcile("My Novel", []IndexEntry{
		{Title: "第一章", URL: "http://example.com/chapter/1"},
	})
	cp.Chapters[0].Status = StatusFetched
	cp.Chapters[0].Body = "text"

	// Same URL with cosmetic title drift must not create a duplicate.
	added := cp.Reconcile("My Novel", []IndexEntry{
		{Title: "第一章（修）", URL: "http://example.com/chapter/1"},
		{Title: "第二章", URL: "http://example.com/chapter/2"},
	})

	assert.Equal(t, 1, added)
	require.Len(t, cp.Chapters, 2)
	assert.Equal(t, StatusFetched, cp.Chapters[0].Status)
	assert.Equal(t, "text", cp.Chapters[0].Body)
	assert.Equal(t, "第一章", cp.Chapters[0].Title)
}

func TestReconcileKeepsDisappearedChapters(t *testing.T) {
	cp := New("novel", "http://example.com/novel/1/")
	cp.Reconcile("My Novel", []IndexEntry{
		{Title: "第一章", URL: "http://example.com/chapter/1"},
		{Title: "第二章", URL: "http://example.com/chapter/2"},
	})

	// Live index lost chapter 1; the checkpoint is append-only.
	added := cp.Reconcile("My Novel", []IndexEntry{
		{Title: "第二章", URL: "http://example.com/chapter/2"},
	})

	assert.Equal(t, 0, added)
	assert.Len(t, cp.Chapters, 2)
	assert.Equal(t, "http://example.com/chapter/1", cp.Chapters[0].URL)
}

func TestCounts(t *testing.T) {
	cp := New("novel", "u")
	cp.Chapters = []ChapterRecord{
		{URL: "a", Status: StatusFetched, Body: "x"},
		{URL: "b", Status: StatusFailed},
		{URL: "c", Status: StatusPending},
		{URL: "d", Status: StatusPending},
	}

	fetched, failed, pending := cp.Counts()
	assert.Equal(t, 1, fetched)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 2, pending)
}

func TestNovelIDDeterministic(t *testing.T) {
	a := NovelID("https://www.hhlwx.org/hhlchapter/69730.html")
	b := NovelID("https://www.hhlwx.org/hhlchapter/69730.html")
	c := NovelID("https://www.hhlwx.org/hhlchapter/99999.html")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEmpty(t, a)
}
