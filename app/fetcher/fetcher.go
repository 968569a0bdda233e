package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lysyi3m/rss-ledger/app/blob"
	"github.com/lysyi3m/rss-ledger/app/source"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/92.0.4515.107 Safari/537.36"
	DefaultTimeout   = 30 * time.Second
	DefaultMaxBytes  = 10 << 20
)

type Config struct {
	UserAgent string
	Timeout   time.Duration
	MaxBytes  int64
}

// HTTPFetcher downloads a source's feed and captures the body in cache.
type HTTPFetcher struct {
	client *http.Client
	cache  blob.Store
	config Config
}

func NewHTTPFetcher(client *http.Client, cache blob.Store, config Config) *HTTPFetcher {
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				MaxIdleConnsPerHost: 5,
			},
		}
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.MaxBytes <= 0 {
		config.MaxBytes = DefaultMaxBytes
	}

	return &HTTPFetcher{
		client: client,
		cache:  cache,
		config: config,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, src source.Source) ([]byte, error) {
	data, err := f.get(ctx, src.FeedURL)
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		if err := f.cache.Put(ctx, src.ID, data); err != nil {
			slog.Warn("Failed to cache raw feed", "source", src.Name, "error", err)
		}
	}

	return data, nil
}

func (f *HTTPFetcher) get(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Referer", url)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.9, */*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &NetworkError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBytes+1))
	if err != nil {
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	if int64(len(data)) > f.config.MaxBytes {
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("response body exceeds %d bytes", f.config.MaxBytes)}
	}

	return data, nil
}

// Replay serves the last captured body for a source instead of going to the
// network.
type Replay struct {
	cache blob.Store
}

func NewReplay(cache blob.Store) *Replay {
	return &Replay{cache: cache}
}

func (r *Replay) Fetch(ctx context.Context, src source.Source) ([]byte, error) {
	data, err := r.cache.Get(ctx, src.ID)
	if err != nil {
		return nil, &NetworkError{URL: src.FeedURL, Err: fmt.Errorf("replay: %w", err)}
	}
	return data, nil
}
