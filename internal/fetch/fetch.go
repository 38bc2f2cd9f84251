// Package fetch retrieves remote resource bytes over HTTP.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/davrux/lazypix/internal/logging"
)

// Default timeouts when the caller passes zero values.
const (
	defaultConnectTimeout = 5 * time.Second
	defaultReadTimeout    = 20 * time.Second
)

var (
	// ErrBadStatus indicates the remote answered with a non-200 status.
	ErrBadStatus = errors.New("unexpected status")
	// ErrNotFound indicates the remote reported the resource missing.
	ErrNotFound = errors.New("resource not found")
)

// Fetcher retrieves resource bytes for identifiers that are plain HTTP(S)
// URLs. Failures surface as errors; the caller decides what a failed load
// means for the display surface.
type Fetcher struct {
	client *http.Client
}

// New creates a Fetcher with separate connect and read timeouts.
func New(connectTimeout, readTimeout time.Duration) *Fetcher {
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}
	if readTimeout <= 0 {
		readTimeout = defaultReadTimeout
	}

	dialer := &net.Dialer{Timeout: connectTimeout}
	return &Fetcher{
		client: &http.Client{
			Transport: &http.Transport{
				DialContext:           dialer.DialContext,
				ResponseHeaderTimeout: readTimeout,
			},
			Timeout: connectTimeout + readTimeout,
		},
	}
}

// Open issues a GET for the identifier and returns the body stream.
// The caller owns closing the returned reader.
func (f *Fetcher) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	log := logging.FromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, id, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", id, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		log.Debug().Err(err).Msg("fetch failed")
		return nil, fmt.Errorf("fetch %s: %w", id, err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		log.Debug().Int("status", resp.StatusCode).Msg("fetch returned non-OK status")
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("fetch %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch %s: %w: %d", id, ErrBadStatus, resp.StatusCode)
	}

	return resp.Body, nil
}

// Fetch retrieves the identifier's bytes into a transient buffer.
func (f *Fetcher) Fetch(ctx context.Context, id string) ([]byte, error) {
	rc, err := f.Open(ctx, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", id, err)
	}

	log := logging.FromContext(ctx)
	log.Debug().Int("bytes", len(data)).Msg("fetched")
	return data, nil
}
