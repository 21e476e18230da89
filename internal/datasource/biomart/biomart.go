// Package biomart provides the Ensembl BioMart gene identifier mapping:
// Ensembl gene IDs, HGNC symbols, Entrez Gene IDs, UniProt IDs and RefSeq
// accessions, plus identifier conversion between them.
package biomart

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

// SourceURL is a BioMart martservice query for the human gene mapping TSV.
const SourceURL = "http://www.ensembl.org/biomart/martservice?query=<?xml version='1.0' encoding='UTF-8'?><!DOCTYPE Query><Query virtualSchemaName='default' formatter='TSV' header='1' uniqueRows='1' datasetConfigVersion='0.6'><Dataset name='hsapiens_gene_ensembl' interface='default'><Attribute name='ensembl_gene_id'/><Attribute name='external_gene_name'/><Attribute name='entrezgene_id'/><Attribute name='uniprotswissprot'/><Attribute name='refseq_mrna'/><Attribute name='description'/></Dataset></Query>"

const (
	// Key is the config section for this source.
	Key = "biomart"

	// Table is the store table name.
	Table = "biomart"

	defaultFilename = "biomart_gene_mapping.txt"
)

// columns is the BioMart export schema. Ensembl gene IDs are prefixed with
// the human taxonomy ID so they line up with STRING protein identifiers.
var columns = []store.Column{
	{Name: "ensembl_gene_id", Type: "VARCHAR", Expr: "'9606.' || column0"},
	{Name: "symbol", Type: "VARCHAR"},
	{Name: "entrez_id", Type: "BIGINT"},
	{Name: "uniprot_id", Type: "VARCHAR"},
	{Name: "refseq_id", Type: "VARCHAR"},
	{Name: "description", Type: "VARCHAR"},
}

// IDKinds lists the identifier column names Convert accepts.
var IDKinds = []string{"symbol", "ensembl_gene_id", "entrez_id", "uniprot_id", "refseq_id"}

func validKind(kind string) bool {
	for _, k := range IDKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Defaults returns the per-source default settings.
func Defaults() map[string]any {
	return map[string]any{
		"filename": defaultFilename,
	}
}

// Source is the BioMart dataset adapter.
type Source struct {
	logger *zap.Logger
}

// New creates the BioMart source with a no-op logger.
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

// FilePath resolves the local path of the BioMart mapping file.
func (s *Source) FilePath(cfg *config.Config) (string, error) {
	res, err := config.Resolve(cfg, Key, Defaults())
	if err != nil {
		return "", err
	}
	return filepath.Join(res.DataDir, res.String("filename")), nil
}

// IsReady reports whether the mapping file exists locally.
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

// Download fetches the mapping file into the resolved data directory.
func (s *Source) Download(ctx context.Context, cfg *config.Config, f *fetch.Fetcher) error {
	res, err := config.Resolve(cfg, Key, Defaults())
	if err != nil {
		return err
	}
	_, err = f.DownloadFile(ctx, SourceURL, res.String("filename"), res.DataDir, "")
	return err
}

// Load ensures the mapping is downloaded and bulk-loads it into st.
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

	s.logger.Info("loading BioMart data", zap.String("path", path))
	if err := st.Load(Table, columns, path, store.ReadOptions{Header: true}); err != nil {
		return fmt.Errorf("load biomart: %w", err)
	}
	return nil
}

// Convert maps each identifier in ids from one identifier kind to another.
// Unmapped identifiers map to nil; the first matching row wins. Unknown
// identifier kinds are an error.
func Convert(st *store.Store, ids []string, from, to string) (map[string]*string, error) {
	if !validKind(from) {
		return nil, fmt.Errorf("unknown input identifier type %q", from)
	}
	if !validKind(to) {
		return nil, fmt.Errorf("unknown output identifier type %q", to)
	}

	query := fmt.Sprintf(
		"SELECT CAST(%s AS VARCHAR) FROM %s WHERE CAST(%s AS VARCHAR) = ? LIMIT 1",
		to, Table, from)

	stmt, err := st.DB().Prepare(query)
	if err != nil {
		return nil, fmt.Errorf("prepare conversion query: %w", err)
	}
	defer stmt.Close()

	results := make(map[string]*string, len(ids))
	for _, id := range ids {
		var out *string
		err := stmt.QueryRow(id).Scan(&out)
		switch {
		case err == nil:
			results[id] = out
		case isNoRows(err):
			results[id] = nil
		default:
			return nil, fmt.Errorf("convert %q: %w", id, err)
		}
	}
	return results, nil
}
