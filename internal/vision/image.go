package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/Veraticus/facet-flow/internal/common"
)

const downloadTimeout = 30 * time.Second

// maxImageBytes caps downloads and local reads.
const maxImageBytes = 20 << 20

// Image is the raw bytes of one product image.
type Image struct {
	Ref       string
	MediaType string
	Data      []byte
}

// Base64 returns the image data base64 encoded.
func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// DataURI returns the image as a data: URI.
func (i Image) DataURI() string {
	return "data:" + i.MediaType + ";base64," + i.Base64()
}

// IsURL reports whether ref is an http or https URL.
func IsURL(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// MediaType guesses the media type from the path or URL extension, defaulting
// to JPEG.
func MediaType(ref string) string {
	p := ref
	if IsURL(ref) {
		if u, err := url.Parse(ref); err == nil {
			p = u.Path
		}
	}

	switch strings.ToLower(strings.TrimPrefix(path.Ext(p), ".")) {
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// Loader reads images from disk or downloads them.
type Loader struct {
	httpClient *http.Client
}

// NewLoader creates a loader with a 30 second download timeout.
func NewLoader() *Loader {
	return &Loader{httpClient: &http.Client{Timeout: downloadTimeout}}
}

// Load fetches the image behind ref.
func (l *Loader) Load(ctx context.Context, ref string) (Image, error) {
	var data []byte
	var err error
	if IsURL(ref) {
		data, err = l.download(ctx, ref)
	} else {
		data, err = readFile(ref)
	}
	if err != nil {
		return Image{}, err
	}
	return Image{Ref: ref, MediaType: MediaType(ref), Data: data}, nil
}

func (l *Loader) download(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, common.Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, &common.RetryableError{Err: fmt.Errorf("download failed: %w", err), Retryable: true}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("download %s: status %d", ref, resp.StatusCode)
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, &common.RetryableError{Err: err, Retryable: true}
		}
		return nil, common.Permanent(err)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return data, nil
}

func readFile(ref string) ([]byte, error) {
	f, err := os.Open(ref)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, common.Permanent(fmt.Errorf("%w: %s", common.ErrImageNotFound, ref))
		}
		return nil, common.Permanent(fmt.Errorf("failed to open image: %w", err))
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes))
	if err != nil {
		return nil, common.Permanent(fmt.Errorf("failed to read image: %w", err))
	}
	return data, nil
}
