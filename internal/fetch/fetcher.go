// Package fetch wraps the HTTP transport with per-request timeouts, the
// transient/permanent failure taxonomy, and the optional debug HTML sink.
package fetch

import (
	"context"
	"io"
	"net/http"
	"time"
)

type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	sink    *DebugSink
}

func New(client *http.Client, timeout time.Duration, sink *DebugSink) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		client:  client,
		timeout: timeout,
		sink:    sink,
	}
}

// Fetch retrieves url and returns the raw response body. The timeout is a
// hard cap per request, not per retry sequence; retrying is the caller's
// policy. When the debug sink is enabled the body is mirrored to it
// regardless of status, best-effort.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", PermanentError{Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", classify(err, 0)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classify(err, 0)
	}
	body := string(raw)

	f.sink.Write(url, body)

	if cerr := classify(nil, resp.StatusCode); cerr != nil {
		return "", cerr
	}

	return body, nil
}
