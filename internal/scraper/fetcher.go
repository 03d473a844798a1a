package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/venuevibe/vibecheck/internal/config"
	"github.com/venuevibe/vibecheck/internal/logging"
	"github.com/venuevibe/vibecheck/internal/utils"
)

// ErrUnexpectedStatus wraps non-200 responses from the listings site.
var ErrUnexpectedStatus = errors.New("scraper: unexpected status")

const maxBodyBytes = 10 << 20

// Fetcher downloads the listings page with browser-like headers.
type Fetcher struct {
	cfg    config.ScraperConfig
	client *http.Client
	log    *logging.Logger
}

func NewFetcher(cfg config.ScraperConfig, log *logging.Logger) *Fetcher {
	if log == nil {
		log = logging.Nop()
	}
	return &Fetcher{cfg: cfg, client: utils.NewHTTPClient(cfg.Timeout), log: log}
}

// WithClient swaps the HTTP client, mainly for tests.
func (f *Fetcher) WithClient(c *http.Client) *Fetcher {
	f.client = c
	return f
}

// Fetch returns the page body. Transport errors and 5xx/429 responses are
// retried with backoff; other statuses fail immediately.
func (f *Fetcher) Fetch(ctx context.Context) (string, error) {
	var body string
	attempt := 0
	err := utils.Retry(ctx, f.cfg.MaxRetries, f.cfg.Backoff, f.cfg.MaxBackoff, func() error {
		attempt++
		b, err := f.fetchOnce(ctx)
		if err != nil {
			f.log.Warnf("fetch %s attempt %d: %v", f.cfg.URL, attempt, err)
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return "", err
	}
	f.log.Debugf("fetched %s (%d bytes)", f.cfg.URL, len(body))
	return body, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.URL, nil)
	if err != nil {
		return "", utils.Permanent(err)
	}
	for k, v := range f.cfg.Headers {
		req.Header.Set(k, v)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", utils.Permanent(err)
		}
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", err
		}
		return "", utils.Permanent(err)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
