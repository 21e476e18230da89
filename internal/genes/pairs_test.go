package genes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPairsUnordered(t *testing.T) {
	pairs := Pairs([]string{"TP53", "BRCA1", "MDM2"}, false, false)

	assert.Equal(t, []Pair{
		{"TP53", "BRCA1"},
		{"TP53", "MDM2"},
		{"BRCA1", "MDM2"},
	}, pairs)
}

func TestPairsOrdered(t *testing.T) {
	pairs := Pairs([]string{"A", "B"}, true, false)

	assert.Equal(t, []Pair{
		{"A", "B"},
		{"B", "A"},
	}, pairs)
}

func TestPairsExcludeSelfPairs(t *testing.T) {
	for _, ordered := range []bool{false, true} {
		for _, p := range Pairs([]string{"A", "B", "C"}, ordered, false) {
			assert.NotEqual(t, p.Gene1, p.Gene2)
		}
	}
}

func TestPairsDeduplicates(t *testing.T) {
	// A repeated input gene produces duplicate rows, removed by default.
	pairs := Pairs([]string{"A", "B", "A"}, true, false)
	assert.Equal(t, []Pair{
		{"A", "B"},
		{"B", "A"},
	}, pairs)
}

func TestPairsKeepDuplicates(t *testing.T) {
	pairs := Pairs([]string{"A", "B", "A"}, true, true)
	assert.Len(t, pairs, 4)
}

func TestPairsSmallInputs(t *testing.T) {
	assert.Empty(t, Pairs(nil, false, false))
	assert.Empty(t, Pairs([]string{"A"}, false, false))
}
