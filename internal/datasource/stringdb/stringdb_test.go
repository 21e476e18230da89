package stringdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfit-bio/tfit/internal/config"
	"github.com/tfit-bio/tfit/internal/store"
)

// STRING interaction format: space-separated with header.
const testPPI = `protein1 protein2 neighborhood experiments combined_score
9606.ENSP00000269305 9606.ENSP00000350283 0 520 900
9606.ENSP00000350283 9606.ENSP00000258149 0 410 800
9606.ENSP00000269305 9606.ENSP00000275493 0 300 700
`

// STRING protein.info format: tab-separated with header.
const testProteinInfo = `#string_protein_id	preferred_name	protein_size	annotation
9606.ENSP00000269305	TP53	393	cellular tumor antigen p53
9606.ENSP00000350283	BRCA1	1863	breast cancer type 1 susceptibility protein
9606.ENSP00000258149	MDM2	491	E3 ubiquitin-protein ligase
9606.ENSP00000275493	EGFR	1210	epidermal growth factor receptor
`

func loadFixtures(t *testing.T) (*store.Store, *Source) {
	t.Helper()

	dir := t.TempDir()
	// Plain-text fixtures; the real release files are gzipped, which
	// read_csv decompresses by extension.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "string_ppi.txt"), []byte(testPPI), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "string_protein.txt"), []byte(testProteinInfo), 0644))
	cfg := &config.Config{
		DataPath: dir,
		Sources: map[string]map[string]any{
			Key: {
				"ppi_filename":     "string_ppi.txt",
				"protein_filename": "string_protein.txt",
			},
		},
	}

	st, err := store.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	src := New()
	require.NoError(t, src.Load(context.Background(), st, cfg, nil))
	return st, src
}

func TestLoad(t *testing.T) {
	st, _ := loadFixtures(t)

	count, err := st.Count(PPITable)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	count, err = st.Count(ProteinTable)
	require.NoError(t, err)
	assert.EqualValues(t, 4, count)
}

func TestEdgesWithinCluster(t *testing.T) {
	st, src := loadFixtures(t)

	edges, err := src.Edges(st, []string{"TP53", "BRCA1", "MDM2"}, EdgeOptions{IncludeType: true})
	require.NoError(t, err)
	require.Len(t, edges, 2)

	pairs := make(map[string]Edge, len(edges))
	for _, e := range edges {
		pairs[e.Node1+"-"+e.Node2] = e
		assert.Equal(t, EdgeWithinCluster, e.EdgeType)
		assert.Equal(t, EdgeSource, e.EdgeSource)
	}

	e, ok := pairs["TP53-BRCA1"]
	require.True(t, ok)
	require.Len(t, e.Scores, 1)
	assert.EqualValues(t, 900, e.Scores[0])
}

func TestEdgesToTarget(t *testing.T) {
	st, src := loadFixtures(t)

	edges, err := src.Edges(st, []string{"TP53", "BRCA1"}, EdgeOptions{
		Target:      "EGFR",
		IncludeType: true,
	})
	require.NoError(t, err)

	var toTarget []Edge
	for _, e := range edges {
		if e.EdgeType == EdgeToTarget {
			toTarget = append(toTarget, e)
		}
	}
	require.Len(t, toTarget, 1)
	assert.Equal(t, "TP53", toTarget[0].Node1)
	assert.Equal(t, "EGFR", toTarget[0].Node2)
	assert.EqualValues(t, 700, toTarget[0].Scores[0])
}

func TestEdgesScoreColumns(t *testing.T) {
	st, src := loadFixtures(t)

	edges, err := src.Edges(st, []string{"TP53", "BRCA1"}, EdgeOptions{
		ScoreColumns: []string{"experiments", "combined_score"},
	})
	require.NoError(t, err)
	require.Len(t, edges, 1)
	require.Len(t, edges[0].Scores, 2)
	assert.EqualValues(t, 520, edges[0].Scores[0])
	assert.EqualValues(t, 900, edges[0].Scores[1])
}

func TestEdgesInvalidScoreColumn(t *testing.T) {
	st, src := loadFixtures(t)

	_, err := src.Edges(st, []string{"TP53"}, EdgeOptions{
		ScoreColumns: []string{"combined_score; DROP TABLE string_ppi"},
	})
	assert.Error(t, err)
}

func TestEdgesUnmappedSymbolsSkipped(t *testing.T) {
	st, src := loadFixtures(t)

	edges, err := src.Edges(st, []string{"TP53", "BRCA1", "NOSUCHGENE"}, EdgeOptions{})
	require.NoError(t, err)
	assert.Len(t, edges, 1)
}

func TestEdgesNoValidSources(t *testing.T) {
	st, src := loadFixtures(t)

	edges, err := src.Edges(st, []string{"NOPE"}, EdgeOptions{})
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestIsReadyRequiresBothFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{DataPath: dir}
	src := New()

	ready, err := src.IsReady(cfg)
	require.NoError(t, err)
	assert.False(t, ready)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "string_ppi.txt.gz"), []byte("x"), 0644))
	ready, err = src.IsReady(cfg)
	require.NoError(t, err)
	assert.False(t, ready, "only one of two files present")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "string_protein.txt.gz"), []byte("x"), 0644))
	ready, err = src.IsReady(cfg)
	require.NoError(t, err)
	assert.True(t, ready)
}
