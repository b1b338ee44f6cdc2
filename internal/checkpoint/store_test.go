package checkpoint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundtrip(t *testing.T) {
	store := NewStore(t.TempDir())

	cp := New("novel", "http://example.com/novel/1/")
	cp.Reconcile("My Novel", []IndexEntry{
		{Title: "第一章", URL: "http://example.com/chapter/1"},
	})
	cp.Chapters[0].Status = StatusFetched
	cp.Chapters[0].Body = "正文"

	require.NoError(t, store.Save(cp))

	loaded, err := store.Load("novel")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, cp.NovelID, loaded.NovelID)
	assert.Equal(t, cp.NovelTitle, loaded.NovelTitle)
	require.Len(t, loaded.Chapters, 1)
	assert.Equal(t, "正文", loaded.Chapters[0].Body)
	assert.Equal(t, StatusFetched, loaded.Chapters[0].Status)
}

func TestStoreLoadMissing(t *testing.T) {
	store := NewStore(t.TempDir())

	cp, err := store.Load("does-not-exist")
	assert.NoError(t, err)
	assert.Nil(t, cp)
}

func TestStoreLoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	path := filepath.Join(dir, "novel.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	cp, err := store.Load("novel")
	assert.Nil(t, cp)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorrupt)

	// The corrupt file is left in place for the operator to inspect.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(raw))
}

func TestStoreLoadRejectsInvalidDocument(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	// Valid JSON, but a fetched chapter with no body.
	doc := `{"novel_id":"novel","source_url":"u","chapters":[{"index":0,"url":"http://example.com/chapter/1","status":"fetched"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "novel.json"), []byte(doc), 0644))

	_, err := store.Load("novel")
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestStoreSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	cp := New("novel", "u")
	require.NoError(t, store.Save(cp))
	require.NoError(t, store.Save(cp))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "novel.json", entries[0].Name())
}

func TestStoreInterruptedSaveKeepsPreviousDocument(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	cp := New("novel", "http://example.com/novel/1/")
	cp.Reconcile("My Novel", []IndexEntry{
		{Title: "第一章", URL: "http://example.com/chapter/1"},
	})
	require.NoError(t, store.Save(cp))
	before, err := os.ReadFile(store.Path("novel"))
	require.NoError(t, err)

	// A crash between temp-write and rename strands a half-written temp
	// file next to the real document.
	stranded := filepath.Join(dir, "novel.000000.tmp")
	require.NoError(t, os.WriteFile(stranded, []byte(`{"novel_id":"nov`), 0644))

	loaded, err := store.Load("novel")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Len(t, loaded.Chapters, 1)
	assert.Equal(t, "第一章", loaded.Chapters[0].Title)

	after, err := os.ReadFile(store.Path("novel"))
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))

	// The next successful save replaces the document normally.
	cp.Chapters[0].Status = StatusFetched
	cp.Chapters[0].Body = "正文"
	require.NoError(t, store.Save(cp))
	loaded, err = store.Load("novel")
	require.NoError(t, err)
	assert.Equal(t, StatusFetched, loaded.Chapters[0].Status)
}

func TestStoreSaveRenameFailureLeavesNoResidue(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	// A directory squatting on the target path makes the final rename fail.
	require.NoError(t, os.Mkdir(store.Path("novel"), 0755))

	cp := New("novel", "u")
	require.Error(t, store.Save(cp))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "novel.json", entries[0].Name())
}

func TestStoreReset(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	cp := New("novel", "u")
	require.NoError(t, store.Save(cp))
	require.NoError(t, store.Reset("novel"))

	loaded, err := store.Load("novel")
	assert.NoError(t, err)
	assert.Nil(t, loaded)

	// Resetting a novel that has no checkpoint is not an error.
	assert.NoError(t, store.Reset("novel"))
}
