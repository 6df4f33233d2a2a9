package downloader

import (
	"context"
	"fmt"
	"net/http"
	"time"

	errs "igprofile/pkg/errors"
	"igprofile/pkg/ratelimit"
	"igprofile/pkg/storage"
)

// Fetcher retrieves one URL into a destination file.
type Fetcher interface {
	Fetch(ctx context.Context, url, dest string) (int64, error)
}

// HTTPFetcher streams media over HTTP into storage.
type HTTPFetcher struct {
	client    *http.Client
	store     *storage.Manager
	limiter   ratelimit.Limiter
	userAgent string
}

// NewHTTPFetcher creates a fetcher. A zero timeout leaves the transport
// defaults in place; a nil limiter disables pacing.
func NewHTTPFetcher(store *storage.Manager, limiter ratelimit.Limiter, timeout time.Duration, userAgent string) *HTTPFetcher {
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		store:     store,
		limiter:   limiter,
		userAgent: userAgent,
	}
}

// Fetch issues a GET for url and writes the body to dest. Any non-2xx
// status is an error.
func (f *HTTPFetcher) Fetch(ctx context.Context, url, dest string) (int64, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return 0, errs.Wrap(errs.ErrorTypeDownload, err, "rate limiter")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, errs.Wrap(errs.ErrorTypeDownload, err, "invalid media URL")
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, errs.Wrap(errs.ErrorTypeDownload, err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, errs.Wrap(errs.ErrorTypeDownload, errs.FromStatus(resp.StatusCode, http.StatusText(resp.StatusCode)),
			fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}

	n, err := f.store.WriteStream(dest, resp.Body)
	if err != nil {
		return n, errs.Wrap(errs.ErrorTypeDownload, err, "write failed")
	}
	return n, nil
}
