package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	appLog "schedcal/internal/log"
)

// maxBody bounds a remote calendar download.
const maxBody = 10 << 20

// Fetcher downloads ICS payloads for import.
type Fetcher struct {
	client *http.Client
}

// NewFetcher returns a Fetcher using client, or a default client with a 15s
// timeout when client is nil.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Fetcher{client: client}
}

// Fetch GETs src and returns the body. Non-200 responses are errors.
func (f *Fetcher) Fetch(ctx context.Context, src string) ([]byte, error) {
	if src == "" {
		return nil, errors.New("ics: source URL is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/calendar")

	appLog.Info("ics fetch start", "url", redactURL(src))

	resp, err := f.client.Do(req)
	if err != nil {
		appLog.Error("ics fetch failed", err, "url", redactURL(src))
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("ics: fetch: %s", resp.Status)
		appLog.Error("ics fetch non-OK", err, "url", redactURL(src), "status", resp.StatusCode)
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxBody {
		return nil, errors.New("ics: payload too large")
	}

	appLog.Info("ics fetch success", "url", redactURL(src), "bytes", len(body))
	return body, nil
}

// redactURL reduces a calendar URL to scheme and host for logging. Path,
// query and any user:password part often carry a private token.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "ics://...(redacted)"
	}
	return u.Scheme + "://" + u.Host + "/...(redacted)"
}
