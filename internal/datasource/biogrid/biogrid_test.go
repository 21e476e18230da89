package biogrid

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfit-bio/tfit/internal/config"
	"github.com/tfit-bio/tfit/internal/store"
)

func mitabRow(idA, idB string) string {
	fields := []string{
		"entrez gene/locuslink:" + idA,
		"entrez gene/locuslink:" + idB,
		"biogrid:112315", "biogrid:108607",
		"entrez gene/locuslink:MDM2", "entrez gene/locuslink:TP53",
		`psi-mi:"MI:0018"(two hybrid)`,
		"Oliner JD (1993)",
		"pubmed:8479525",
		"taxid:9606", "taxid:9606",
		`psi-mi:"MI:0407"(direct interaction)`,
		`psi-mi:"MI:0463"(biogrid)`,
		"biogrid:103", "-",
	}
	return strings.Join(fields, "\t")
}

func writeFixture(t *testing.T, cfg *config.Config) {
	t.Helper()
	src := New()
	path, err := src.FilePath(cfg)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))

	content := "#ID Interactor A\tID Interactor B\tAlt IDs A\tAlt IDs B\tAliases A\tAliases B\tDetection\tAuthor\tPubs\tTax A\tTax B\tTypes\tSource\tIDs\tConfidence\n" +
		mitabRow("4193", "7157") + "\n" +
		mitabRow("7157", "672") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoad(t *testing.T) {
	cfg := &config.Config{
		DataPath: t.TempDir(),
		Sources: map[string]map[string]any{
			Key: {"file": "test.mitab.txt"},
		},
	}
	writeFixture(t, cfg)

	st, err := store.Open("")
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, New().Load(context.Background(), st, cfg, nil))

	count, err := st.Count(Table)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count, "comment header line is skipped")

	var idA string
	require.NoError(t, st.DB().QueryRow(
		"SELECT id_a FROM biogrid WHERE id_b = 'entrez gene/locuslink:672'").Scan(&idA))
	assert.Equal(t, "entrez gene/locuslink:7157", idA)
}

func TestFilePathUsesFolderAndFile(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{DataPath: dir}

	path, err := New().FilePath(cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "biogrid", "BIOGRID-ORGANISM-Homo_sapiens-5.0.252.mitab.txt"), path)
}

func TestIsReady(t *testing.T) {
	cfg := &config.Config{DataPath: t.TempDir()}
	src := New()

	ready, err := src.IsReady(cfg)
	require.NoError(t, err)
	assert.False(t, ready)

	writeFixture(t, cfg)
	ready, err = src.IsReady(cfg)
	require.NoError(t, err)
	assert.True(t, ready)
}
