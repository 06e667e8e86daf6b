// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package edirect

import (
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Download endpoints for the Entrez Direct distribution. Declared as
// vars so tests can substitute an httptest server.
var (
	edirectArchiveURL = "https://ftp.ncbi.nlm.nih.gov/entrez/entrezdirect/edirect.zip"
	xtractArchiveURL  = "https://ftp.ncbi.nlm.nih.gov/entrez/entrezdirect/xtract.Linux.gz"
)

// sentinelTool is the file whose presence marks a completed installation.
const sentinelTool = "esearch"

// archivePrefix is the directory the edirect.zip entries are nested under.
const archivePrefix = "edirect/"

// EnsureTools makes dir a usable Entrez Direct installation. When the
// tools are already present it does nothing, so repeated runs are
// idempotent and perform no downloads. Otherwise it fetches the edirect
// archive, unpacks it into dir, and adds the xtract binary.
func EnsureTools(client *http.Client, dir string, w io.Writer) error {
	if _, err := os.Stat(filepath.Join(dir, sentinelTool)); err == nil {
		fmt.Fprintln(w, "edirect already present")
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	fmt.Fprintln(w, "downloading edirect archive...")
	zipPath := filepath.Join(dir, "edirect.zip")
	if err := downloadFile(client, edirectArchiveURL, zipPath); err != nil {
		return fmt.Errorf("downloading edirect archive: %w", err)
	}
	defer os.Remove(zipPath)

	if err := extractZip(zipPath, dir); err != nil {
		return fmt.Errorf("extracting edirect archive: %w", err)
	}

	fmt.Fprintln(w, "downloading xtract...")
	gzPath := filepath.Join(dir, "xtract.Linux.gz")
	if err := downloadFile(client, xtractArchiveURL, gzPath); err != nil {
		return fmt.Errorf("downloading xtract: %w", err)
	}
	defer os.Remove(gzPath)

	if err := gunzipFile(gzPath, filepath.Join(dir, "xtract")); err != nil {
		return fmt.Errorf("extracting xtract: %w", err)
	}

	fmt.Fprintln(w, "edirect ready")
	return nil
}

// downloadFile fetches url to destPath using a temporary file so a
// failed download never leaves a partial file behind.
func downloadFile(client *http.Client, url, destPath string) error {
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".edirect-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// extractZip unpacks the archive into dir, flattening the nested
// edirect/ directory and marking the tools executable.
func extractZip(zipPath, dir string) error {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		name := strings.TrimPrefix(f.Name, archivePrefix)
		if name == "" || strings.HasSuffix(name, "/") {
			continue
		}
		if strings.Contains(name, "..") {
			return fmt.Errorf("archive entry escapes destination: %s", f.Name)
		}

		dest := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", name, err)
		}
		if err := writeZipEntry(f, dest); err != nil {
			return fmt.Errorf("extracting %s: %w", name, err)
		}
	}
	return nil
}

func writeZipEntry(f *zip.File, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	// The archive is built on Unix but exec bits are not guaranteed to
	// survive; the tools must end up runnable.
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
	if err != nil {
		return err
	}

	_, copyErr := io.Copy(out, rc)
	closeErr := out.Close()
	if copyErr != nil {
		return copyErr
	}
	return closeErr
}

// gunzipFile decompresses src to dest with the executable bit set.
func gunzipFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	gz, err := gzip.NewReader(in)
	if err != nil {
		return fmt.Errorf("opening gzip stream: %w", err)
	}
	defer gz.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
	if err != nil {
		return err
	}

	_, copyErr := io.Copy(out, gz)
	closeErr := out.Close()
	if copyErr != nil {
		os.Remove(dest)
		return fmt.Errorf("decompressing: %w", copyErr)
	}
	return closeErr
}
