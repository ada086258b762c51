package service

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/hypertube/internal/config"
	"github.com/user/hypertube/internal/utils"
)

func newDownloadService(t *testing.T, handler http.HandlerFunc) (*DownloadService, string) {
	t.Helper()
	utils.InitCache()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	dataDir := t.TempDir()
	cfg := &config.Config{
		ArchiveBaseURL:  server.URL,
		MovieDataDir:    dataDir,
		ProviderTimeout: 5 * time.Second,
	}
	return NewDownloadService(NewArchiveService(cfg), cfg), dataDir
}

func TestDownload(t *testing.T) {
	var fileHits atomic.Int64
	svc, dataDir := newDownloadService(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/metadata/foo":
			fmt.Fprint(w, `{
				"metadata": {"title": "Foo"},
				"dir": "/29/items/foo",
				"files": [{"name": "foo.txt"}, {"name": "foo.mp4"}]
			}`)
		case "/29/items/foo/foo.mp4":
			fileHits.Add(1)
			fmt.Fprint(w, "fake video bytes")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	path, err := svc.Download("foo")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "foo.mp4"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fake video bytes", string(data))

	// 已物化的文件直接复用，不再回源
	_, err = svc.Download("foo")
	require.NoError(t, err)
	assert.Equal(t, int64(1), fileHits.Load())

	// 物化完成后可以取到本地路径
	got, err := svc.Path("foo")
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestDownloadNoPlayableFile(t *testing.T) {
	svc, _ := newDownloadService(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"metadata": {"title": "Foo"},
			"dir": "/29/items/foo",
			"files": [{"name": "foo.txt"}, {"name": "foo.ogv"}]
		}`)
	})

	_, err := svc.Download("foo")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPathUnknownMovie(t *testing.T) {
	svc, _ := newDownloadService(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := svc.Path("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPathRejectsTraversal(t *testing.T) {
	svc, dataDir := newDownloadService(t, func(w http.ResponseWriter, r *http.Request) {})

	// 数据目录外的文件不可达
	outside := filepath.Join(filepath.Dir(dataDir), "secret.mp4")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

	_, err := svc.Path("../secret")
	assert.ErrorIs(t, err, ErrNotFound)
}
