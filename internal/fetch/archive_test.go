package fetch

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeZip builds an in-memory ZIP with the given name -> content entries.
func makeZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := zw.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func zipServer(t *testing.T, payload []byte) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write(payload)
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func TestDownloadZip(t *testing.T) {
	payload := makeZip(t, map[string]string{
		"dataset.mitab.txt":  "id_a\tid_b\n1\t2\n",
		"sub/other.txt":      "nested entry",
		"README-release.txt": "release notes",
	})
	srv, requests := zipServer(t, payload)
	dir := t.TempDir()

	extractPath, err := testFetcher(t).DownloadZip(context.Background(), srv.URL, "biogrid", dir, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "biogrid"), extractPath)
	assert.EqualValues(t, 1, requests.Load())

	got, err := os.ReadFile(filepath.Join(extractPath, "dataset.mitab.txt"))
	require.NoError(t, err)
	assert.Equal(t, "id_a\tid_b\n1\t2\n", string(got))

	_, err = os.Stat(filepath.Join(extractPath, "sub", "other.txt"))
	assert.NoError(t, err)

	// Completion marker written, temporary archive removed.
	_, err = os.Stat(filepath.Join(extractPath, MarkerName))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "temp_biogrid.zip"))
	assert.True(t, os.IsNotExist(err))
}

func TestDownloadZipAlreadyExtracted(t *testing.T) {
	srv, requests := zipServer(t, []byte("unused"))
	dir := t.TempDir()

	extractPath := filepath.Join(dir, "biogrid")
	require.NoError(t, os.MkdirAll(extractPath, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(extractPath, MarkerName), nil, 0644))

	got, err := testFetcher(t).DownloadZip(context.Background(), srv.URL, "biogrid", dir, "")
	require.NoError(t, err)
	assert.Equal(t, extractPath, got)
	assert.EqualValues(t, 0, requests.Load(), "marked-complete extraction must not download")
}

func TestDownloadZipHalfExtractedRetries(t *testing.T) {
	payload := makeZip(t, map[string]string{"a.txt": "complete"})
	srv, requests := zipServer(t, payload)
	dir := t.TempDir()

	// Non-empty extraction dir without a marker is treated as incomplete.
	extractPath := filepath.Join(dir, "biogrid")
	require.NoError(t, os.MkdirAll(extractPath, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(extractPath, "partial.txt"), []byte("x"), 0644))

	_, err := testFetcher(t).DownloadZip(context.Background(), srv.URL, "biogrid", dir, "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, requests.Load())

	_, err = os.Stat(filepath.Join(extractPath, "a.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(extractPath, MarkerName))
	assert.NoError(t, err)
}

func TestDownloadZipCorruptArchive(t *testing.T) {
	srv, _ := zipServer(t, []byte("this is not a zip file"))
	dir := t.TempDir()

	_, err := testFetcher(t).DownloadZip(context.Background(), srv.URL, "biogrid", dir, "")
	require.Error(t, err)

	// The temporary archive is cleaned up even on extraction failure.
	_, statErr := os.Stat(filepath.Join(dir, "temp_biogrid.zip"))
	assert.True(t, os.IsNotExist(statErr))

	// No completion marker.
	_, statErr = os.Stat(filepath.Join(dir, "biogrid", MarkerName))
	assert.True(t, os.IsNotExist(statErr))
}

func TestDownloadZipRemovesStaleTemp(t *testing.T) {
	payload := makeZip(t, map[string]string{"a.txt": "fresh"})
	srv, _ := zipServer(t, payload)
	dir := t.TempDir()

	// A stale partial archive from an earlier failed run must not be
	// resumed into.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "temp_biogrid.zip"), []byte("stale"), 0644))

	extractPath, err := testFetcher(t).DownloadZip(context.Background(), srv.URL, "biogrid", dir, "")
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(extractPath, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(got))
}
