package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/incident-analytics-service/internal/domain"
)

// HTTPLoader fetches a static dataset file over HTTP. The format comes from
// the response Content-Type when it is specific, else from the URL path.
type HTTPLoader struct {
	url        string
	httpClient *http.Client
}

// NewHTTPLoader creates a loader for the dataset at rawURL.
func NewHTTPLoader(rawURL string, timeout time.Duration) *HTTPLoader {
	return &HTTPLoader{
		url:        rawURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name implements Loader.
func (l *HTTPLoader) Name() string { return "http:" + l.url }

// Load implements Loader.
func (l *HTTPLoader) Load(ctx context.Context) ([]domain.RawIncident, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch dataset: status %d: %s", resp.StatusCode, body)
	}

	format, ok := formatFromContentType(resp.Header.Get("Content-Type"))
	if !ok {
		format = FormatJSON
		if u, err := url.Parse(l.url); err == nil {
			format = FormatFromName(u.Path)
		}
	}

	raws, err := Decode(resp.Body, format)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", l.url, err)
	}
	return raws, nil
}
