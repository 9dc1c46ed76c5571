// Package fetcher downloads post thumbnails for analysis.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/williampepple1/vibe-scout/internal/config"
)

// ErrFetch wraps every transport or HTTP-level failure while downloading an image
var ErrFetch = errors.New("image fetch failed")

// DefaultMediaType is assumed when the server declares nothing recognizable
const DefaultMediaType = "image/jpeg"

// Image is a downloaded thumbnail
type Image struct {
	Data      []byte
	MediaType string
}

// HTTPFetcher fetches images over HTTP, following redirects
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
	MaxBytes  int64
}

// NewHTTPFetcher creates a fetcher from the analyzer configuration
func NewHTTPFetcher(cfg *config.AnalyzerConfig) *HTTPFetcher {
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPFetcher{
		Client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
		UserAgent: cfg.UserAgent,
		MaxBytes:  cfg.MaxImageBytes,
	}
}

// Fetch downloads imageURL and labels it with a media type
func (f *HTTPFetcher) Fetch(ctx context.Context, imageURL string) (Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Image{}, fmt.Errorf("%w: received status code %d for %s", ErrFetch, resp.StatusCode, imageURL)
	}

	var body io.Reader = resp.Body
	if f.MaxBytes > 0 {
		body = io.LimitReader(resp.Body, f.MaxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return Image{}, fmt.Errorf("%w: reading body: %v", ErrFetch, err)
	}
	if f.MaxBytes > 0 && int64(len(data)) > f.MaxBytes {
		return Image{}, fmt.Errorf("%w: image larger than %d bytes", ErrFetch, f.MaxBytes)
	}

	return Image{Data: data, MediaType: MediaType(resp.Header.Get("Content-Type"))}, nil
}

// MediaType maps a Content-Type header to one of the image types the
// classifier accepts, defaulting to JPEG.
func MediaType(contentType string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "jpeg"), strings.Contains(ct, "jpg"):
		return "image/jpeg"
	case strings.Contains(ct, "png"):
		return "image/png"
	case strings.Contains(ct, "gif"):
		return "image/gif"
	case strings.Contains(ct, "webp"):
		return "image/webp"
	default:
		return DefaultMediaType
	}
}
