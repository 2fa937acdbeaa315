package generation

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// MediaResolver turns a remote media URL into a stable local reference.
type MediaResolver interface {
	Resolve(ctx context.Context, remoteURL string) (string, error)
}

// maxReferenceBytes bounds the inline reference image of a video request.
const maxReferenceBytes = 20 << 20

// EncodeReference reads an image file and returns it as a data URI.
func EncodeReference(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat reference image: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("reference image %s is a directory", path)
	}
	if info.Size() > maxReferenceBytes {
		return "", fmt.Errorf("reference image is %d bytes, limit is %d", info.Size(), maxReferenceBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read reference image: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("reference image %s is empty", path)
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return "", fmt.Errorf("reference %s is not an image (%s)", path, mimeType)
	}

	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
