// Package biogrid provides the BioGRID organism dataset (PSI-MITAB 2.5),
// distributed as a ZIP archive and filtered here to the human subset file.
package biogrid

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/tfit-bio/tfit/internal/config"
	"github.com/tfit-bio/tfit/internal/fetch"
	"github.com/tfit-bio/tfit/internal/store"
)

// SourceURL is the BioGRID organism MITAB release archive.
const SourceURL = "https://downloads.thebiogrid.org/Download/BioGRID/Release-Archive/BIOGRID-5.0.252/BIOGRID-ORGANISM-5.0.252.mitab.zip"

const (
	// Key is the config section for this source.
	Key = "biogrid"

	// Table is the store table name.
	Table = "biogrid"

	defaultFolder = "biogrid"
	defaultFile   = "BIOGRID-ORGANISM-Homo_sapiens-5.0.252.mitab.txt"
)

// columns is the PSI-MITAB 2.5 schema used by BioGRID.
var columns = []store.Column{
	{Name: "id_a", Type: "VARCHAR"},
	{Name: "id_b", Type: "VARCHAR"},
	{Name: "alt_id_a", Type: "VARCHAR"},
	{Name: "alt_id_b", Type: "VARCHAR"},
	{Name: "aliases_a", Type: "VARCHAR"},
	{Name: "aliases_b", Type: "VARCHAR"},
	{Name: "detection_methods", Type: "VARCHAR"},
	{Name: "first_authors", Type: "VARCHAR"},
	{Name: "publication_ids", Type: "VARCHAR"},
	{Name: "taxonomy_ids_a", Type: "VARCHAR"},
	{Name: "taxonomy_ids_b", Type: "VARCHAR"},
	{Name: "interaction_types", Type: "VARCHAR"},
	{Name: "source_databases", Type: "VARCHAR"},
	{Name: "interaction_ids", Type: "VARCHAR"},
	{Name: "confidence_scores", Type: "VARCHAR"},
}

// Defaults returns the per-source default settings.
func Defaults() map[string]any {
	return map[string]any{
		"folder_name": defaultFolder,
		"file":        defaultFile,
	}
}

// Source is the BioGRID dataset adapter.
type Source struct {
	logger *zap.Logger
}

// New creates the BioGRID source with a no-op logger.
func New() *Source {
	return &Source{logger: zap.NewNop()}
}

// SetLogger sets the logger.
func (s *Source) SetLogger(l *zap.Logger) {
	if l != nil {
		s.logger = l
	}
}

// Name returns the source key.
func (s *Source) Name() string { return Key }

// FilePath resolves the local path of the human MITAB file inside the
// extraction folder.
func (s *Source) FilePath(cfg *config.Config) (string, error) {
	res, err := config.Resolve(cfg, Key, Defaults())
	if err != nil {
		return "", err
	}
	return filepath.Join(res.DataDir, res.String("folder_name"), res.String("file")), nil
}

// IsReady reports whether the human MITAB file exists locally.
func (s *Source) IsReady(cfg *config.Config) (bool, error) {
	path, err := s.FilePath(cfg)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}

// Download fetches and extracts the BioGRID archive into the resolved data
// directory.
func (s *Source) Download(ctx context.Context, cfg *config.Config, f *fetch.Fetcher) error {
	res, err := config.Resolve(cfg, Key, Defaults())
	if err != nil {
		return err
	}
	_, err = f.DownloadZip(ctx, SourceURL, res.String("folder_name"), res.DataDir, "")
	return err
}

// Load ensures the archive is downloaded and bulk-loads the human MITAB
// file into st. Comment lines (leading '#') are skipped.
func (s *Source) Load(ctx context.Context, st *store.Store, cfg *config.Config, f *fetch.Fetcher) error {
	ready, err := s.IsReady(cfg)
	if err != nil {
		return err
	}
	if !ready {
		if err := s.Download(ctx, cfg, f); err != nil {
			return err
		}
	}

	path, err := s.FilePath(cfg)
	if err != nil {
		return err
	}

	s.logger.Info("loading BioGRID data", zap.String("path", path))
	if err := st.Load(Table, columns, path, store.ReadOptions{Comment: "#"}); err != nil {
		return fmt.Errorf("load biogrid: %w", err)
	}
	return nil
}
