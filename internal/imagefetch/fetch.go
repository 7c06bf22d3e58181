// Package imagefetch retrieves remote question images and encodes them for
// inline transmission to the model.
package imagefetch

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single image retrieval.
const DefaultTimeout = 10 * time.Second

// maxImageBytes caps how much image data is read from a remote server.
const maxImageBytes = 20 << 20

// Fetcher retrieves images over a shared HTTP client.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

// New constructs a fetcher. A nil client falls back to a dedicated client,
// and a non-positive timeout falls back to DefaultTimeout.
func New(client *http.Client, timeout time.Duration) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{client: client, timeout: timeout}
}

// FetchDataURI retrieves the image at url and returns it as a base64 data
// URI suitable for an inline image content block. Failures are returned to
// the caller and never terminate anything beyond the current question.
func (f *Fetcher) FetchDataURI(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create image request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch image: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if len(data) > maxImageBytes {
		return "", fmt.Errorf("read image: exceeds %d bytes", maxImageBytes)
	}

	contentType := imageContentType(resp.Header.Get("Content-Type"), data)
	encoded := base64.StdEncoding.EncodeToString(data)
	return "data:" + contentType + ";base64," + encoded, nil
}

// imageContentType resolves the data URI media type from the response header
// or, failing that, from content sniffing.
func imageContentType(header string, data []byte) string {
	media := strings.TrimSpace(strings.Split(header, ";")[0])
	if strings.HasPrefix(media, "image/") {
		return media
	}
	sniffed := http.DetectContentType(data)
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	return "image/jpeg"
}
