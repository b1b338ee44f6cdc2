// Package checkpoint persists crawl progress for one novel as a single
// human-editable JSON document. The store owns the on-disk form; the
// crawler mutates an in-memory copy and flushes it after every chapter.
package checkpoint

import (
	"net/url"
	"time"

	"github.com/brogergvhs/noveld/internal/chapters"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusFetched Status = "fetched"
	StatusFailed  Status = "failed"

	// StatusFetching is transitional and never written to disk: a crash
	// mid-fetch reads back as pending.
	StatusFetching Status = "fetching"
)

// ChapterRecord is one chapter slot. Index is assigned at first discovery
// and never changes afterwards, even if the remote index reorders.
type ChapterRecord struct {
	Index           int    `json:"index"`
	Title           string `json:"title"`
	NormalizedTitle string `json:"normalized_title"`
	URL             string `json:"url"`
	Body            string `json:"body,omitempty"`
	Status          Status `json:"status"`
	Attempts        int    `json:"attempts,omitempty"`
}

type Checkpoint struct {
	NovelID    string          `json:"novel_id"`
	SourceURL  string          `json:"source_url"`
	NovelTitle string          `json:"novel_title"`
	Chapters   []ChapterRecord `json:"chapters"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func New(novelID, sourceURL string) *Checkpoint {
	now := time.Now().UTC()
	return &Checkpoint{
		NovelID:   novelID,
		SourceURL: sourceURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IndexEntry is one row of a freshly discovered chapter index.
type IndexEntry struct {
	Title string
	URL   string
}

// Reconcile merges a live chapter index into the checkpoint. Records are
// matched by URL, so cosmetic title drift on the site does not create
// duplicates. New entries are appended as pending at the tail; records
// missing from the live index are kept untouched. Returns the number of
// appended records.
func (cp *Checkpoint) Reconcile(novelTitle string, entries []IndexEntry) int {
	if novelTitle != "" {
		cp.NovelTitle = novelTitle
	}

	known := make(map[string]bool, len(cp.Chapters))
	for _, rec := range cp.Chapters {
		known[rec.URL] = true
	}

	added := 0
	for _, e := range entries {
		if known[e.URL] {
			continue
		}
		known[e.URL] = true
		cp.Chapters = append(cp.Chapters, ChapterRecord{
			Index:           len(cp.Chapters),
			Title:           e.Title,
			NormalizedTitle: chapters.NormalizeTitle(e.Title),
			URL:             e.URL,
			Status:          StatusPending,
		})
		added++
	}

	if added > 0 {
		cp.UpdatedAt = time.Now().UTC()
	}
	return added
}

// Counts reports how many chapters sit in each terminal-ish state.
func (cp *Checkpoint) Counts() (fetched, failed, pending int) {
	for _, rec := range cp.Chapters {
		switch rec.Status {
		case StatusFetched:
			fetched++
		case StatusFailed:
			failed++
		default:
			pending++
		}
	}
	return fetched, failed, pending
}

// NovelID derives a stable identifier for a novel from its source URL.
func NovelID(sourceURL string) string {
	u, err := url.Parse(sourceURL)
	if err != nil || u.Host == "" {
		return chapters.Sanitize(sourceURL)
	}
	return chapters.Sanitize(u.Host + "/" + u.Path)
}
