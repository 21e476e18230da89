package stringdb

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/tfit-bio/tfit/internal/store"
)

// EdgeSource identifies STRING edges in combined outputs.
const EdgeSource = "string_ppi"

// Edge types assigned when EdgeOptions.IncludeType is set.
const (
	EdgeWithinCluster = "within_cluster"
	EdgeToTarget      = "to_target"
)

// DefaultScoreColumns selects the combined score only.
var DefaultScoreColumns = []string{"combined_score"}

var scoreColumnPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Edge is one STRING interaction with endpoints rendered as preferred names
// (falling back to the raw protein identifier).
type Edge struct {
	Node1 string
	Node2 string
	// Scores holds one value per requested score column, in order.
	Scores     []int64
	EdgeType   string
	EdgeSource string
}

// EdgeOptions controls edge subsetting.
type EdgeOptions struct {
	Target      string
	IncludeType bool
	// ScoreColumns selects which score columns to return; defaults to
	// combined_score.
	ScoreColumns []string
}

// proteinMapping maps gene symbols (STRING preferred names) to protein IDs
// and back, built from the protein info table.
type proteinMapping struct {
	symbolToProtein map[string]string
	proteinToSymbol map[string]string
}

func loadProteinMapping(st *store.Store) (*proteinMapping, error) {
	rows, err := st.DB().Query(
		"SELECT string_protein_id, preferred_name FROM " + ProteinTable +
			" WHERE string_protein_id IS NOT NULL AND preferred_name IS NOT NULL")
	if err != nil {
		return nil, fmt.Errorf("query protein mapping: %w", err)
	}
	defer rows.Close()

	m := &proteinMapping{
		symbolToProtein: make(map[string]string),
		proteinToSymbol: make(map[string]string),
	}
	for rows.Next() {
		var protein, name string
		if err := rows.Scan(&protein, &name); err != nil {
			return nil, fmt.Errorf("scan protein mapping: %w", err)
		}
		if _, seen := m.symbolToProtein[name]; !seen {
			m.symbolToProtein[name] = protein
		}
		m.proteinToSymbol[protein] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read protein mapping: %w", err)
	}
	return m, nil
}

// Edges returns STRING interactions among the source genes, plus
// source-to-target interactions when a target is set. Symbols with no
// STRING protein identifier are logged and skipped.
func (s *Source) Edges(st *store.Store, sources []string, opts EdgeOptions) ([]Edge, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("no source genes provided")
	}

	scoreCols := opts.ScoreColumns
	if len(scoreCols) == 0 {
		scoreCols = DefaultScoreColumns
	}
	for _, col := range scoreCols {
		if !scoreColumnPattern.MatchString(col) {
			return nil, fmt.Errorf("invalid score column %q", col)
		}
	}

	mapping, err := loadProteinMapping(st)
	if err != nil {
		return nil, err
	}

	var sourceProteins []string
	for _, gene := range sources {
		protein, ok := mapping.symbolToProtein[gene]
		if !ok {
			s.logger.Warn("no STRING protein ID for gene", zap.String("gene", gene))
			continue
		}
		sourceProteins = append(sourceProteins, protein)
	}

	targetProtein := ""
	if opts.Target != "" {
		protein, ok := mapping.symbolToProtein[opts.Target]
		if ok {
			targetProtein = protein
		} else {
			s.logger.Warn("no STRING protein ID for target gene", zap.String("gene", opts.Target))
		}
	}

	if len(sourceProteins) == 0 {
		s.logger.Warn("no valid STRING protein IDs among source genes")
		return []Edge{}, nil
	}

	edges := []Edge{}

	marks, args := placeholders(sourceProteins)
	within := fmt.Sprintf("protein1 IN (%s) AND protein2 IN (%s)", marks, marks)
	found, err := s.queryEdges(st, mapping, scoreCols, within, append(args, args...), opts.IncludeType, EdgeWithinCluster)
	if err != nil {
		return nil, err
	}
	edges = append(edges, found...)

	if targetProtein != "" {
		clause := fmt.Sprintf(
			"(protein1 IN (%s) AND protein2 = ?) OR (protein1 = ? AND protein2 IN (%s))", marks, marks)
		var clauseArgs []any
		clauseArgs = append(clauseArgs, args...)
		clauseArgs = append(clauseArgs, targetProtein, targetProtein)
		clauseArgs = append(clauseArgs, args...)

		found, err := s.queryEdges(st, mapping, scoreCols, clause, clauseArgs, opts.IncludeType, EdgeToTarget)
		if err != nil {
			return nil, err
		}
		edges = append(edges, found...)
	}

	return edges, nil
}

func placeholders(ids []string) (string, []any) {
	marks := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		marks[i] = "?"
		args[i] = id
	}
	return strings.Join(marks, ", "), args
}

func (s *Source) queryEdges(st *store.Store, mapping *proteinMapping, scoreCols []string, where string, args []any, includeType bool, edgeType string) ([]Edge, error) {
	query := fmt.Sprintf("SELECT protein1, protein2, %s FROM %s WHERE %s",
		strings.Join(scoreCols, ", "), PPITable, where)

	rows, err := st.DB().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query string edges: %w", err)
	}
	defer rows.Close()

	var edges []Edge
	for rows.Next() {
		var protein1, protein2 string
		scores := make([]int64, len(scoreCols))
		dest := []any{&protein1, &protein2}
		for i := range scores {
			dest = append(dest, &scores[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan string edge: %w", err)
		}

		e := Edge{
			Node1:      symbolOrProtein(mapping, protein1),
			Node2:      symbolOrProtein(mapping, protein2),
			Scores:     scores,
			EdgeSource: EdgeSource,
		}
		if includeType {
			e.EdgeType = edgeType
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read string edges: %w", err)
	}
	return edges, nil
}

func symbolOrProtein(mapping *proteinMapping, protein string) string {
	if symbol, ok := mapping.proteinToSymbol[protein]; ok {
		return symbol
	}
	return protein
}
