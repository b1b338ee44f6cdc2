package ui

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/brogergvhs/noveld/internal/util"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

type ProgressManager struct {
	p *mpb.Progress
}

func NewProgressManager() *ProgressManager {
	p := mpb.New(
		mpb.WithWidth(52),
		mpb.WithOutput(os.Stdout),
		mpb.WithRefreshRate(120*time.Millisecond),
	)
	return &ProgressManager{p: p}
}

func (pm *ProgressManager) Close() {
	pm.p.Wait()
}

// NewChapterBar registers the single bar tracking this run's fetches.
func (pm *ProgressManager) NewChapterBar(prefix string, total int) *ChapterBar {
	h := &ChapterBar{
		prefix: prefix,
		total:  int64(total),
		start:  time.Now(),
	}

	h.bar = pm.p.New(
		int64(total),
		mpb.BarStyle().Rbound("]"),

		mpb.PrependDecorators(
			decor.Name(h.prefix+"  "),
		),

		mpb.AppendDecorators(
			decor.Percentage(decor.WCSyncWidth),
			decor.CountersNoUnit(" | %d/%d chapters", decor.WCSyncWidth),
			decor.Any(func(_ decor.Statistics) string {
				return " | " + util.Human(atomic.LoadInt64(&h.bytes))
			}),

			decor.Any(func(_ decor.Statistics) string {
				if h.final.Load() {
					sec := h.elapsed.Load()
					return fmt.Sprintf(" | %ds", sec)
				}
				sec := time.Since(h.start).Seconds()

				return fmt.Sprintf(" | %ds", int(sec))
			}),
		),
	)

	return h
}

type ChapterBar struct {
	prefix string
	bar    *mpb.Bar

	total int64
	bytes int64

	start   time.Time
	elapsed atomic.Int64

	final atomic.Bool
}

// Advance records one completed chapter and its body size.
func (h *ChapterBar) Advance(bytes int64) {
	if h == nil || h.final.Load() {
		return
	}

	atomic.AddInt64(&h.bytes, bytes)
	h.bar.Increment()
}

func (h *ChapterBar) MarkDone() {
	if h == nil || h.final.Swap(true) {
		return
	}

	elapsedSec := int64(time.Since(h.start).Seconds())

	h.elapsed.Store(elapsedSec)
	h.bar.SetTotal(h.total, true)
}
