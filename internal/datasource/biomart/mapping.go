package biomart

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/tfit-bio/tfit/internal/store"
)

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// Mapping is an in-memory symbol/Entrez lookup built from the loaded
// BioMart table. Rows without an Entrez ID are skipped.
type Mapping struct {
	symbolToEntrez map[string]int64
	entrezToSymbol map[int64]string
}

// LoadMapping builds a Mapping from the biomart table in st.
func LoadMapping(st *store.Store) (*Mapping, error) {
	rows, err := st.DB().Query(
		"SELECT symbol, entrez_id FROM " + Table + " WHERE entrez_id IS NOT NULL AND symbol IS NOT NULL")
	if err != nil {
		return nil, fmt.Errorf("query gene mapping: %w", err)
	}
	defer rows.Close()

	m := &Mapping{
		symbolToEntrez: make(map[string]int64),
		entrezToSymbol: make(map[int64]string),
	}
	for rows.Next() {
		var symbol string
		var entrez int64
		if err := rows.Scan(&symbol, &entrez); err != nil {
			return nil, fmt.Errorf("scan gene mapping: %w", err)
		}
		if _, seen := m.symbolToEntrez[symbol]; !seen {
			m.symbolToEntrez[symbol] = entrez
		}
		if _, seen := m.entrezToSymbol[entrez]; !seen {
			m.entrezToSymbol[entrez] = symbol
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read gene mapping: %w", err)
	}
	return m, nil
}

// SymbolToEntrez returns the Entrez Gene ID for a gene symbol.
func (m *Mapping) SymbolToEntrez(symbol string) (int64, bool) {
	id, ok := m.symbolToEntrez[symbol]
	return id, ok
}

// EntrezToSymbol returns the gene symbol for an Entrez Gene ID.
func (m *Mapping) EntrezToSymbol(id int64) (string, bool) {
	symbol, ok := m.entrezToSymbol[id]
	return symbol, ok
}

// Len returns the number of symbol entries.
func (m *Mapping) Len() int {
	return len(m.symbolToEntrez)
}
