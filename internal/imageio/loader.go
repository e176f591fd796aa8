// Package imageio fetches snapshot images from local paths and remote URLs.
// Every per-image failure is absorbed here: the image is logged and skipped,
// never failing the batch it belongs to.
package imageio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/classpulse/classpulse/pkg/models"
)

// maxImageBytes caps how much of a remote response we are willing to read.
const maxImageBytes = 10 << 20

// Loader resolves batch image sources into in-memory images.
type Loader struct {
	client *http.Client
}

// NewLoader creates a Loader whose remote fetches time out after timeout.
func NewLoader(timeout time.Duration) *Loader {
	return &Loader{client: &http.Client{Timeout: timeout}}
}

// LoadBatch fetches every source named by the request, URLs first and then
// local paths, preserving order within each list. Unreachable or non-image
// sources are skipped. The returned slice may be empty.
func (l *Loader) LoadBatch(ctx context.Context, req models.BatchRequest) []models.Image {
	var images []models.Image

	for _, u := range req.ImageURLs {
		img, err := l.fetchURL(ctx, u)
		if err != nil {
			slog.Warn("skipping image", "job_id", req.JobID, "url", u, "error", err)
			continue
		}
		images = append(images, img)
	}

	for _, p := range req.ImagePaths {
		img, err := readFile(p)
		if err != nil {
			slog.Warn("skipping image", "job_id", req.JobID, "path", p, "error", err)
			continue
		}
		images = append(images, img)
	}

	return images
}

func (l *Loader) fetchURL(ctx context.Context, u string) (models.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return models.Image{}, fmt.Errorf("building request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return models.Image{}, fmt.Errorf("fetching: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Image{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return models.Image{}, fmt.Errorf("reading body: %w", err)
	}
	if len(data) > maxImageBytes {
		return models.Image{}, fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}

	mime, err := sniffImage(data)
	if err != nil {
		return models.Image{}, err
	}
	return models.Image{MIMEType: mime, Data: data, Source: u}, nil
}

func readFile(path string) (models.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Image{}, err
	}

	mime, err := sniffImage(data)
	if err != nil {
		return models.Image{}, err
	}
	return models.Image{MIMEType: mime, Data: data, Source: path}, nil
}

// sniffImage detects the content type and rejects anything that is not an
// image. Extensions are not trusted; only the bytes are.
func sniffImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty file")
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("not an image (detected %s)", mime)
	}
	return mime, nil
}
