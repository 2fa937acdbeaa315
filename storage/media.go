package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxMediaBytes caps a single downloaded artifact.
const DefaultMaxMediaBytes = 256 << 20

// MediaStore downloads generated media into the data directory so that
// messages can reference a stable local file instead of an expiring URL.
type MediaStore struct {
	dir      string
	client   *http.Client
	maxBytes int64
	logger   *slog.Logger
}

// NewMediaStore creates <dataDir>/media and returns a store writing there.
// A nil client gets a default client with a generous timeout.
func NewMediaStore(dataDir string, client *http.Client, logger *slog.Logger) (*MediaStore, error) {
	dir := filepath.Join(dataDir, "media")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &MediaStore{dir: dir, client: client, maxBytes: DefaultMaxMediaBytes, logger: logger}, nil
}

// Dir returns the directory artifacts are written to.
func (m *MediaStore) Dir() string { return m.dir }

// Resolve downloads remoteURL and returns a file:// URI for the stored copy.
// Any transport error, non-2xx status or oversized body is an error and no
// partial file is left behind.
func (m *MediaStore) Resolve(ctx context.Context, remoteURL string) (string, error) {
	u, err := url.Parse(remoteURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("unsupported media url %q", remoteURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remoteURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build media request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("failed to fetch media: unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp(m.dir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	n, err := io.Copy(tmp, io.LimitReader(resp.Body, m.maxBytes+1))
	if err != nil {
		cleanup()
		return "", fmt.Errorf("failed to download media: %w", err)
	}
	if n > m.maxBytes {
		cleanup()
		return "", fmt.Errorf("media exceeds %d bytes", m.maxBytes)
	}
	if n == 0 {
		cleanup()
		return "", fmt.Errorf("media download was empty")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write media: %w", err)
	}

	final := filepath.Join(m.dir, uuid.New().String()+mediaExtension(resp.Header.Get("Content-Type"), u.Path))
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to store media: %w", err)
	}

	m.logger.Debug("media stored", "url", remoteURL, "path", final, "bytes", n)
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(final)}).String(), nil
}

// LocalPath converts a file:// URI produced by Resolve back to a path.
// Other inputs are returned unchanged.
func LocalPath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return uri
	}
	return filepath.FromSlash(u.Path)
}

func mediaExtension(contentType, urlPath string) string {
	if ext := path.Ext(urlPath); ext != "" && len(ext) <= 5 {
		return strings.ToLower(ext)
	}
	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err == nil {
			switch mediaType {
			case "image/jpeg":
				return ".jpg"
			case "image/png":
				return ".png"
			case "image/webp":
				return ".webp"
			case "video/mp4":
				return ".mp4"
			}
			if exts, _ := mime.ExtensionsByType(mediaType); len(exts) > 0 {
				return exts[0]
			}
		}
	}
	return ".bin"
}
