package fetch

import (
	"fmt"
	"hash/fnv"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/brogergvhs/noveld/internal/chapters"
)

// DebugSink mirrors raw page captures to disk when debug mode is on.
// Writes are best-effort: a full disk or bad permissions never fail the
// fetch that triggered them.
type DebugSink struct {
	dir     string
	enabled bool
	log     interface{ Errorf(string, ...any) }
}

func NewDebugSink(dir string, enabled bool, log interface{ Errorf(string, ...any) }) *DebugSink {
	return &DebugSink{dir: dir, enabled: enabled, log: log}
}

func (d *DebugSink) Write(pageURL, body string) {
	if d == nil || !d.enabled {
		return
	}

	if err := os.MkdirAll(d.dir, 0755); err != nil {
		d.errorf("debug sink: %v", err)
		return
	}

	name := sinkName(pageURL)
	path := filepath.Join(d.dir, name+".html")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		d.errorf("debug sink: %v", err)
	}
}

func (d *DebugSink) errorf(format string, args ...any) {
	if d.log != nil {
		d.log.Errorf(format, args...)
	}
}

// sinkName derives a filename from the last meaningful URL path segment,
// falling back to a hash when the path carries nothing usable.
func sinkName(pageURL string) string {
	if u, err := url.Parse(pageURL); err == nil {
		parts := strings.Split(u.Path, "/")
		for i := len(parts) - 1; i >= 0; i-- {
			seg := strings.TrimSuffix(parts[i], ".html")
			if s := chapters.Sanitize(seg); len(s) > 1 {
				return s
			}
		}
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(pageURL))
	return fmt.Sprintf("page_%08x", h.Sum32())
}
