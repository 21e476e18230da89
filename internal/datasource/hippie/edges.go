package hippie

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/tfit-bio/tfit/internal/datasource/biomart"
	"github.com/tfit-bio/tfit/internal/store"
)

// EdgeSource identifies HIPPIE edges in combined outputs.
const EdgeSource = "hippie_ppi"

// Edge types assigned when EdgeOptions.IncludeType is set.
const (
	EdgeWithinCluster = "within_cluster"
	EdgeToTarget      = "to_target"
)

// Edge is one interaction between two genes, with endpoints rendered as
// symbols (falling back to the Entrez ID as text when unmapped).
type Edge struct {
	Node1      string
	Node2      string
	Score      float64
	Comments   string
	EdgeType   string
	EdgeSource string
}

// EdgeOptions controls edge subsetting.
type EdgeOptions struct {
	// Target optionally names a gene; edges between any source gene and
	// the target (either direction) are included as to_target edges.
	Target string

	// IncludeType adds the edge_type classification to each edge.
	IncludeType bool
}

// Edges returns interactions among the source genes, plus source-to-target
// interactions when a target is set. Gene symbols are translated to Entrez
// IDs via the BioMart mapping; symbols with no mapping are logged and
// skipped, never fatal. An empty mapped-source set yields an empty result.
func (s *Source) Edges(st *store.Store, mapping *biomart.Mapping, sources []string, opts EdgeOptions) ([]Edge, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("no source genes provided")
	}

	var sourceIDs []int64
	for _, gene := range sources {
		id, ok := mapping.SymbolToEntrez(gene)
		if !ok {
			s.logger.Warn("no Entrez ID for gene", zap.String("gene", gene))
			continue
		}
		sourceIDs = append(sourceIDs, id)
	}

	var targetID int64
	hasTarget := false
	if opts.Target != "" {
		id, ok := mapping.SymbolToEntrez(opts.Target)
		if ok {
			targetID = id
			hasTarget = true
		} else {
			s.logger.Warn("no Entrez ID for target gene", zap.String("gene", opts.Target))
		}
	}

	if len(sourceIDs) == 0 {
		s.logger.Warn("no valid Entrez IDs among source genes")
		return []Edge{}, nil
	}

	edges := []Edge{}

	within, err := s.queryEdges(st, withinClause(sourceIDs))
	if err != nil {
		return nil, err
	}
	for _, e := range within {
		edges = append(edges, e.toEdge(mapping, opts.IncludeType, EdgeWithinCluster))
	}

	if hasTarget {
		toTarget, err := s.queryEdges(st, toTargetClause(sourceIDs, targetID))
		if err != nil {
			return nil, err
		}
		for _, e := range toTarget {
			edges = append(edges, e.toEdge(mapping, opts.IncludeType, EdgeToTarget))
		}
	}

	return edges, nil
}

type rawEdge struct {
	entrez1  int64
	entrez2  int64
	score    sql.NullFloat64
	comments sql.NullString
}

func (r rawEdge) toEdge(mapping *biomart.Mapping, includeType bool, edgeType string) Edge {
	e := Edge{
		Node1:      symbolOrID(mapping, r.entrez1),
		Node2:      symbolOrID(mapping, r.entrez2),
		Score:      r.score.Float64,
		Comments:   r.comments.String,
		EdgeSource: EdgeSource,
	}
	if includeType {
		e.EdgeType = edgeType
	}
	return e
}

func symbolOrID(mapping *biomart.Mapping, id int64) string {
	if symbol, ok := mapping.EntrezToSymbol(id); ok {
		return symbol
	}
	return strconv.FormatInt(id, 10)
}

type whereClause struct {
	sql  string
	args []any
}

func placeholders(ids []int64) (string, []any) {
	marks := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		marks[i] = "?"
		args[i] = id
	}
	return strings.Join(marks, ", "), args
}

func withinClause(sourceIDs []int64) whereClause {
	marks, args := placeholders(sourceIDs)
	return whereClause{
		sql:  fmt.Sprintf("entrez_id_1 IN (%s) AND entrez_id_2 IN (%s)", marks, marks),
		args: append(args, args...),
	}
}

func toTargetClause(sourceIDs []int64, targetID int64) whereClause {
	marks, args := placeholders(sourceIDs)
	clause := whereClause{
		sql: fmt.Sprintf("(entrez_id_1 IN (%s) AND entrez_id_2 = ?) OR (entrez_id_1 = ? AND entrez_id_2 IN (%s))",
			marks, marks),
	}
	clause.args = append(clause.args, args...)
	clause.args = append(clause.args, targetID, targetID)
	clause.args = append(clause.args, args...)
	return clause
}

func (s *Source) queryEdges(st *store.Store, where whereClause) ([]rawEdge, error) {
	query := fmt.Sprintf(
		"SELECT entrez_id_1, entrez_id_2, score, comments FROM %s WHERE %s", Table, where.sql)

	rows, err := st.DB().Query(query, where.args...)
	if err != nil {
		return nil, fmt.Errorf("query hippie edges: %w", err)
	}
	defer rows.Close()

	var edges []rawEdge
	for rows.Next() {
		var e rawEdge
		if err := rows.Scan(&e.entrez1, &e.entrez2, &e.score, &e.comments); err != nil {
			return nil, fmt.Errorf("scan hippie edge: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read hippie edges: %w", err)
	}
	return edges, nil
}
