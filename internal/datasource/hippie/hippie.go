// Package hippie provides the HIPPIE protein-protein interaction dataset:
// download, loading into the tabular store, and edge subsetting for building
// interaction subgraphs.
package hippie

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

const (
	// SourceURL is the latest HIPPIE PPI release.
	SourceURL = "https://cbdm-01.zdv.uni-mainz.de/~mschaefer/hippie/hippie_current.txt"

	// Key is the config section for this source.
	Key = "hippie"

	// Table is the store table name.
	Table = "hippie"

	defaultFilename = "hippie_ppi.txt"
)

// columns is the fixed HIPPIE schema. The file is tab-separated with no
// header; Entrez ID columns may hold non-numeric junk and load as NULL.
var columns = []store.Column{
	{Name: "uniprot_id_1", Type: "VARCHAR"},
	{Name: "entrez_id_1", Type: "BIGINT"},
	{Name: "uniprot_id_2", Type: "VARCHAR"},
	{Name: "entrez_id_2", Type: "BIGINT"},
	{Name: "score", Type: "DOUBLE"},
	{Name: "comments", Type: "VARCHAR"},
}

// Defaults returns the per-source default settings. A fresh map is built on
// every call.
func Defaults() map[string]any {
	return map[string]any{
		"filename": defaultFilename,
	}
}

// Source is the HIPPIE dataset adapter.
type Source struct {
	logger *zap.Logger
}

// New creates the HIPPIE source with a no-op logger.
func New() *Source {
	return &Source{logger: zap.NewNop()}
}

// SetLogger sets the logger used for load and mapping warnings.
func (s *Source) SetLogger(l *zap.Logger) {
	if l != nil {
		s.logger = l
	}
}

// Name returns the source key.
func (s *Source) Name() string { return Key }

// FilePath resolves the local path of the HIPPIE data file.
func (s *Source) FilePath(cfg *config.Config) (string, error) {
	res, err := config.Resolve(cfg, Key, Defaults())
	if err != nil {
		return "", err
	}
	return filepath.Join(res.DataDir, res.String("filename")), nil
}

// IsReady reports whether the HIPPIE file exists locally.
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

// Download fetches the HIPPIE file into the resolved data directory.
func (s *Source) Download(ctx context.Context, cfg *config.Config, f *fetch.Fetcher) error {
	res, err := config.Resolve(cfg, Key, Defaults())
	if err != nil {
		return err
	}
	_, err = f.DownloadFile(ctx, SourceURL, res.String("filename"), res.DataDir, "")
	return err
}

// Load ensures the dataset is downloaded and bulk-loads it into st.
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

	s.logger.Info("loading HIPPIE data", zap.String("path", path))
	if err := st.Load(Table, columns, path, store.ReadOptions{}); err != nil {
		return fmt.Errorf("load hippie: %w", err)
	}
	return nil
}
