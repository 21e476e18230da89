// Package stringdb provides the STRING v12 protein-protein interaction
// dataset for human (taxonomy 9606): the interaction scores file, the
// protein info file, and edge subsetting by gene symbol.
package stringdb

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

// Download URLs for the human STRING v12 release.
const (
	PPIURL     = "https://stringdb-downloads.org/download/protein.links.full.v12.0/9606.protein.links.full.v12.0.txt.gz"
	ProteinURL = "https://stringdb-downloads.org/download/protein.info.v12.0/9606.protein.info.v12.0.txt.gz"
)

const (
	// Key is the config section for this source.
	Key = "stringdb"

	// PPITable holds the interaction scores.
	PPITable = "string_ppi"

	// ProteinTable holds the protein info (identifier to preferred name).
	ProteinTable = "string_protein"

	defaultPPIFilename     = "string_ppi.txt.gz"
	defaultProteinFilename = "string_protein.txt.gz"
)

// proteinColumns is the protein.info schema (tab-separated, one header row).
var proteinColumns = []store.Column{
	{Name: "string_protein_id", Type: "VARCHAR"},
	{Name: "preferred_name", Type: "VARCHAR"},
	{Name: "protein_size", Type: "BIGINT"},
	{Name: "annotation", Type: "VARCHAR"},
}

// Defaults returns the per-source default settings.
func Defaults() map[string]any {
	return map[string]any{
		"ppi_filename":     defaultPPIFilename,
		"protein_filename": defaultProteinFilename,
	}
}

// Source is the STRING dataset adapter.
type Source struct {
	logger *zap.Logger
}

// New creates the STRING source with a no-op logger.
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

// PPIPath resolves the local path of the interaction scores file.
func (s *Source) PPIPath(cfg *config.Config) (string, error) {
	res, err := config.Resolve(cfg, Key, Defaults())
	if err != nil {
		return "", err
	}
	return filepath.Join(res.DataDir, res.String("ppi_filename")), nil
}

// ProteinPath resolves the local path of the protein info file.
func (s *Source) ProteinPath(cfg *config.Config) (string, error) {
	res, err := config.Resolve(cfg, Key, Defaults())
	if err != nil {
		return "", err
	}
	return filepath.Join(res.DataDir, res.String("protein_filename")), nil
}

// IsReady reports whether both STRING files exist locally.
func (s *Source) IsReady(cfg *config.Config) (bool, error) {
	for _, resolve := range []func(*config.Config) (string, error){s.PPIPath, s.ProteinPath} {
		path, err := resolve(cfg)
		if err != nil {
			return false, err
		}
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return false, nil
			}
			return false, err
		}
	}
	return true, nil
}

// Download fetches both STRING files into the resolved data directory.
func (s *Source) Download(ctx context.Context, cfg *config.Config, f *fetch.Fetcher) error {
	res, err := config.Resolve(cfg, Key, Defaults())
	if err != nil {
		return err
	}
	if _, err := f.DownloadFile(ctx, PPIURL, res.String("ppi_filename"), res.DataDir, ""); err != nil {
		return err
	}
	_, err = f.DownloadFile(ctx, ProteinURL, res.String("protein_filename"), res.DataDir, "")
	return err
}

// Load ensures both files are downloaded and bulk-loads them into st. The
// interaction file's columns vary across STRING releases, so its schema is
// inferred from the header.
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

	ppiPath, err := s.PPIPath(cfg)
	if err != nil {
		return err
	}
	proteinPath, err := s.ProteinPath(cfg)
	if err != nil {
		return err
	}

	s.logger.Info("loading STRING PPI data", zap.String("path", ppiPath))
	if err := st.LoadAuto(PPITable, ppiPath, store.ReadOptions{Delimiter: " ", Header: true}); err != nil {
		return fmt.Errorf("load string ppi: %w", err)
	}

	s.logger.Info("loading STRING protein info", zap.String("path", proteinPath))
	if err := st.Load(ProteinTable, proteinColumns, proteinPath, store.ReadOptions{Header: true}); err != nil {
		return fmt.Errorf("load string protein info: %w", err)
	}
	return nil
}
