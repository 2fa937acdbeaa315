package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaStoreResolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte("\x89PNG fake image"))
		case "/noext":
			w.Header().Set("Content-Type", "video/mp4")
			w.Write([]byte("mp4 bytes"))
		case "/empty":
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dataDir := t.TempDir()
	ms, err := NewMediaStore(dataDir, srv.Client(), nil)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("stores body under media dir", func(t *testing.T) {
		uri, err := ms.Resolve(ctx, srv.URL+"/ok.png")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(uri, "file://"))

		p := LocalPath(uri)
		assert.Equal(t, filepath.Join(dataDir, "media"), filepath.Dir(p))
		assert.Equal(t, ".png", filepath.Ext(p))

		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, "\x89PNG fake image", string(data))
	})

	t.Run("extension from content type", func(t *testing.T) {
		uri, err := ms.Resolve(ctx, srv.URL+"/noext")
		require.NoError(t, err)
		assert.Equal(t, ".mp4", filepath.Ext(LocalPath(uri)))
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		_, err := ms.Resolve(ctx, srv.URL+"/missing.png")
		assert.Error(t, err)
	})

	t.Run("empty body is an error", func(t *testing.T) {
		_, err := ms.Resolve(ctx, srv.URL+"/empty")
		assert.Error(t, err)
	})

	t.Run("non-http scheme is rejected", func(t *testing.T) {
		_, err := ms.Resolve(ctx, "ftp://example.com/a.png")
		assert.Error(t, err)
	})

	t.Run("oversized body is rejected", func(t *testing.T) {
		small := *ms
		small.maxBytes = 4
		_, err := small.Resolve(ctx, srv.URL+"/ok.png")
		assert.Error(t, err)
	})

	// failed downloads leave no temp files behind
	entries, err := os.ReadDir(ms.Dir())
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".download-"), e.Name())
	}
}

func TestLocalPathPassthrough(t *testing.T) {
	assert.Equal(t, "https://x/v.mp4", LocalPath("https://x/v.mp4"))
	assert.Equal(t, "/tmp/a.png", LocalPath("file:///tmp/a.png"))
}
