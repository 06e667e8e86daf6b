// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package edirect

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildEdirectZip builds an archive shaped like NCBI's edirect.zip: tool
// scripts nested under an edirect/ directory.
func buildEdirectZip(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	files := map[string]string{
		"edirect/esearch": "#!/bin/sh\necho esearch\n",
		"edirect/efetch":  "#!/bin/sh\necho efetch\n",
		"edirect/README":  "Entrez Direct\n",
	}
	for name, contents := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(contents))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func buildXtractGz(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write([]byte("fake xtract binary"))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

// newToolServer serves the two archives and counts requests.
func newToolServer(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()
	var requests int32
	zipData := buildEdirectZip(t)
	gzData := buildXtractGz(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/edirect.zip", func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.Write(zipData)
	})
	mux.HandleFunc("/xtract.Linux.gz", func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.Write(gzData)
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	oldZip, oldGz := edirectArchiveURL, xtractArchiveURL
	edirectArchiveURL = ts.URL + "/edirect.zip"
	xtractArchiveURL = ts.URL + "/xtract.Linux.gz"
	t.Cleanup(func() {
		edirectArchiveURL = oldZip
		xtractArchiveURL = oldGz
	})

	return ts, &requests
}

func TestEnsureToolsInstalls(t *testing.T) {
	ts, requests := newToolServer(t)
	dir := filepath.Join(t.TempDir(), "edirect")

	var buf bytes.Buffer
	require.NoError(t, EnsureTools(ts.Client(), dir, &buf))

	for _, name := range []string{"esearch", "efetch", "xtract"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.NotZero(t, info.Mode()&0o111, "%s should be executable", name)
	}

	// Archives are cleaned up after extraction.
	_, err := os.Stat(filepath.Join(dir, "edirect.zip"))
	assert.True(t, os.IsNotExist(err), "edirect.zip should be removed")
	_, err = os.Stat(filepath.Join(dir, "xtract.Linux.gz"))
	assert.True(t, os.IsNotExist(err), "xtract.Linux.gz should be removed")

	assert.Equal(t, int32(2), atomic.LoadInt32(requests))
	assert.Contains(t, buf.String(), "edirect ready")

	data, err := os.ReadFile(filepath.Join(dir, "xtract"))
	require.NoError(t, err)
	assert.Equal(t, "fake xtract binary", string(data))
}

func TestEnsureToolsIdempotent(t *testing.T) {
	ts, requests := newToolServer(t)
	dir := filepath.Join(t.TempDir(), "edirect")

	var first bytes.Buffer
	require.NoError(t, EnsureTools(ts.Client(), dir, &first))
	afterFirst := atomic.LoadInt32(requests)

	var second bytes.Buffer
	require.NoError(t, EnsureTools(ts.Client(), dir, &second))

	assert.Equal(t, afterFirst, atomic.LoadInt32(requests), "second run must not download")
	assert.Contains(t, second.String(), "already present")
}

func TestEnsureToolsDownloadFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(ts.Close)

	old := edirectArchiveURL
	edirectArchiveURL = ts.URL + "/edirect.zip"
	t.Cleanup(func() { edirectArchiveURL = old })

	dir := filepath.Join(t.TempDir(), "edirect")
	err := EnsureTools(ts.Client(), dir, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")

	// No stray temp or partial files.
	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestExtractZipRejectsTraversal(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("edirect/../../evil")
	require.NoError(t, err)
	_, err = w.Write([]byte("nope"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	dir := t.TempDir()
	zipPath := filepath.Join(dir, "bad.zip")
	require.NoError(t, os.WriteFile(zipPath, buf.Bytes(), 0o644))

	err = extractZip(zipPath, filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes destination")
}
