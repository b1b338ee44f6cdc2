// Package crawler drives the checkpoint state machine: discover the
// chapter index once, reconcile it with the persisted checkpoint, then
// fetch pending chapters sequentially, flushing the checkpoint after
// every outcome so a crash loses at most the in-flight chapter.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/brogergvhs/noveld/internal/assemble"
	"github.com/brogergvhs/noveld/internal/chapters"
	"github.com/brogergvhs/noveld/internal/checkpoint"
	"github.com/brogergvhs/noveld/internal/config"
	"github.com/brogergvhs/noveld/internal/fetch"
	"github.com/brogergvhs/noveld/internal/sites"
	"github.com/brogergvhs/noveld/internal/ui"
)

// ErrIndexDiscovery marks a failed chapter index fetch. Without an index
// there is nothing to crawl, so it aborts the run.
var ErrIndexDiscovery = errors.New("chapter index discovery failed")

type Crawler struct {
	cfg     *config.Config
	site    sites.Adapter
	store   *checkpoint.Store
	log     *ui.Logger
	metrics *Metrics
	bars    *ui.ProgressManager
	stats   ui.Stats

	// sleep is swappable so tests don't wait out real backoff.
	sleep func(ctx context.Context, d time.Duration) error
}

func New(cfg *config.Config, site sites.Adapter, store *checkpoint.Store, log *ui.Logger, metrics *Metrics, bars *ui.ProgressManager) *Crawler {
	return &Crawler{
		cfg:     cfg,
		site:    site,
		store:   store,
		log:     log,
		metrics: metrics,
		bars:    bars,
		sleep:   sleepCtx,
	}
}

// Summary is the user-visible outcome of one run.
type Summary struct {
	NovelID          string
	NovelTitle       string
	FetchedThisRun   int
	AlreadyFetched   int
	FailedTerminal   int
	PendingRemaining int
	Bytes            int64
	Elapsed          time.Duration
}

// Run executes one crawl over the configured novel URL. Cancellation is
// honored at chapter boundaries: no new fetch starts after ctx is done,
// and an interrupted in-flight fetch leaves its record pending.
func (c *Crawler) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	url := c.cfg.DefaultURL
	novelID := checkpoint.NovelID(url)

	if c.cfg.ClearCheckpoint {
		if err := c.clearPrevious(novelID); err != nil {
			return nil, err
		}
	}

	cp, err := c.store.Load(novelID)
	if err != nil {
		return nil, err
	}
	if cp == nil {
		cp = checkpoint.New(novelID, url)
	}

	title, refs, err := c.site.ListChapters(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIndexDiscovery, err)
	}

	entries := make([]checkpoint.IndexEntry, len(refs))
	for i, r := range refs {
		entries[i] = checkpoint.IndexEntry{Title: r.Title, URL: r.URL}
	}

	added := cp.Reconcile(title, entries)
	if err := c.store.Save(cp); err != nil {
		return nil, err
	}
	c.log.Infof("Crawling %s: %d chapters on site, %d new\n", cp.NovelTitle, len(refs), added)

	alreadyFetched, _, _ := cp.Counts()

	budget := c.cfg.MaxChapters
	if budget <= 0 {
		budget = len(cp.Chapters)
	}

	bar := c.registerBar(cp, budget)

	worked := 0
	fetchedThisRun := 0
	for i := range cp.Chapters {
		rec := &cp.Chapters[i]
		if rec.Status == checkpoint.StatusFetched {
			continue
		}
		if worked >= budget {
			break
		}
		if ctx.Err() != nil {
			c.log.Infof("Cancellation observed, stopping at chapter boundary\n")
			break
		}

		worked++
		fetched := c.fetchChapter(ctx, rec)
		if err := c.store.Save(cp); err != nil {
			return nil, err
		}

		if fetched {
			fetchedThisRun++
			c.stats.ChaptersFetched.Add(1)
			c.stats.BytesFetched.Add(int64(len(rec.Body)))
			bar.Advance(int64(len(rec.Body)))

			if ctx.Err() == nil && worked < budget {
				_ = c.sleep(ctx, c.randomDelay())
			}
		} else if rec.Status == checkpoint.StatusFailed {
			c.stats.ChaptersFailed.Add(1)
		}
	}
	bar.MarkDone()

	_, failed, pending := cp.Counts()

	return &Summary{
		NovelID:          novelID,
		NovelTitle:       cp.NovelTitle,
		FetchedThisRun:   fetchedThisRun,
		AlreadyFetched:   alreadyFetched,
		FailedTerminal:   failed,
		PendingRemaining: pending,
		Bytes:            c.stats.BytesFetched.Load(),
		Elapsed:          time.Since(start),
	}, nil
}

// clearPrevious destroys the checkpoint and the assembled artifact of an
// earlier run. An unreadable checkpoint still gets reset; the artifact is
// only removed when the stored title can name it.
func (c *Crawler) clearPrevious(novelID string) error {
	cp, err := c.store.Load(novelID)
	if err == nil && cp != nil {
		artifact := filepath.Join(c.cfg.Output, assemble.ArtifactName(cp.NovelTitle, novelID))
		if err := os.Remove(artifact); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove artifact: %w", err)
		}
	}

	if err := c.store.Reset(novelID); err != nil {
		return fmt.Errorf("reset checkpoint: %w", err)
	}
	c.log.Infof("Cleared existing checkpoint and artifact for %s\n", novelID)
	return nil
}

// fetchChapter runs the per-chapter state machine: pending → fetching →
// fetched, or failed after the retry budget is spent. Transient errors
// back off linearly in the attempt number; permanent errors fail the
// chapter immediately. The record is mutated but not persisted here.
func (c *Crawler) fetchChapter(ctx context.Context, rec *checkpoint.ChapterRecord) bool {
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		rec.Status = checkpoint.StatusFetching

		fetchStart := time.Now()
		title, body, err := c.site.FetchChapter(ctx, rec.URL)
		c.metrics.ObserveFetch(time.Since(fetchStart))

		if err == nil {
			if t := chapters.NormalizeTitle(title); t != "" {
				rec.Title = title
				rec.NormalizedTitle = t
			}
			rec.Body = body
			rec.Status = checkpoint.StatusFetched
			c.metrics.IncFetched()
			c.log.Infof("Fetched [%s] from %s (%d bytes)\n", rec.NormalizedTitle, rec.URL, len(body))
			return true
		}

		rec.Attempts++
		c.metrics.IncError(fetch.ErrorLabel(err))

		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			// Interrupted mid-fetch: discard the partial result and
			// leave the record pending for the next run.
			rec.Status = checkpoint.StatusPending
			rec.Body = ""
			return false
		}

		if !fetch.IsTransient(err) {
			rec.Status = checkpoint.StatusFailed
			rec.Body = ""
			c.log.Errorf("Chapter %s failed permanently: %v\n", rec.URL, err)
			return false
		}

		c.log.Errorf("Chapter %s attempt %d/%d: %v\n", rec.URL, attempt, c.cfg.MaxRetries, err)

		if attempt < c.cfg.MaxRetries {
			c.metrics.IncRetries()
			if c.sleep(ctx, time.Duration(attempt)*c.cfg.RetryBackoff()) != nil {
				rec.Status = checkpoint.StatusPending
				rec.Body = ""
				return false
			}
		}
	}

	rec.Status = checkpoint.StatusFailed
	rec.Body = ""
	c.log.Errorf("Chapter %s gave up after %d attempts\n", rec.URL, c.cfg.MaxRetries)
	return false
}

func (c *Crawler) registerBar(cp *checkpoint.Checkpoint, budget int) *ui.ChapterBar {
	if c.bars == nil {
		return nil
	}

	_, failed, pending := cp.Counts()
	total := failed + pending
	if total > budget {
		total = budget
	}
	return c.bars.NewChapterBar(cp.NovelTitle, total)
}

// randomDelay picks an anti-throttling pause within the configured
// bounds. Not a correctness mechanism.
func (c *Crawler) randomDelay() time.Duration {
	lo, hi := c.cfg.MinDelay(), c.cfg.MaxDelay()
	if hi <= lo {
		return lo
	}
	return lo + rand.N(hi-lo)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
