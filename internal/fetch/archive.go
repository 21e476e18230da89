package fetch

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// MarkerName is the sentinel file written inside an extraction directory
// after a successful extraction. Its presence means the archive is fully
// extracted; a half-extracted directory without it is re-fetched.
const MarkerName = ".extracted"

// DownloadZip fetches a ZIP archive and extracts its contents into
// baseDir/extractFolder. If the extraction is already marked complete,
// nothing is downloaded. The temporary archive file is removed whether or
// not extraction succeeds.
func (f *Fetcher) DownloadZip(ctx context.Context, url, extractFolder, baseDir, expectedHash string) (string, error) {
	extractPath := filepath.Join(baseDir, extractFolder)

	if _, err := os.Stat(filepath.Join(extractPath, MarkerName)); err == nil {
		f.logger.Info("archive already extracted", zap.String("dir", extractPath))
		return extractPath, nil
	}

	zipName := "temp_" + extractFolder + ".zip"
	zipPath := filepath.Join(baseDir, zipName)

	// Remove any stale temporary archive from a previous failed run.
	if err := os.Remove(zipPath); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("remove stale archive %s: %w", zipPath, err)
	}

	if _, err := f.DownloadFile(ctx, url, zipName, baseDir, expectedHash); err != nil {
		return "", err
	}

	f.logger.Info("extracting archive", zap.String("dir", extractPath))
	if err := extractZip(zipPath, extractPath); err != nil {
		os.Remove(zipPath)
		return "", fmt.Errorf("extract %s: %w", zipName, err)
	}

	marker := filepath.Join(extractPath, MarkerName)
	if err := os.WriteFile(marker, nil, 0644); err != nil {
		return "", fmt.Errorf("write completion marker: %w", err)
	}

	if err := os.Remove(zipPath); err != nil {
		return "", fmt.Errorf("remove archive %s: %w", zipPath, err)
	}

	return extractPath, nil
}

func extractZip(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return err
	}

	for _, entry := range r.File {
		if err := extractEntry(entry, destDir); err != nil {
			return fmt.Errorf("entry %s: %w", entry.Name, err)
		}
	}
	return nil
}

func extractEntry(entry *zip.File, destDir string) error {
	dst := filepath.Join(destDir, filepath.Clean(entry.Name))
	if !strings.HasPrefix(dst, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return fmt.Errorf("path escapes extraction directory")
	}

	if entry.FileInfo().IsDir() {
		return os.MkdirAll(dst, 0755)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	src, err := entry.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return err
	}
	return out.Close()
}
