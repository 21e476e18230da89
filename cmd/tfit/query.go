package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tfit-bio/tfit/internal/datasource/biomart"
	"github.com/tfit-bio/tfit/internal/datasource/hippie"
	"github.com/tfit-bio/tfit/internal/datasource/stringdb"
	"github.com/tfit-bio/tfit/internal/store"
)

func newConvertCmd(a *app) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "convert <gene>...",
		Short: "Convert gene identifiers via BioMart",
		Example: `  tfit convert TP53 BRCA1
  tfit convert --from symbol --to entrez_id TP53
  tfit convert --from ensembl_gene_id --to symbol ENSG00000141510`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open("")
			if err != nil {
				return err
			}
			defer st.Close()

			if err := a.biomart.Load(cmd.Context(), st, a.cfg, a.fetcher()); err != nil {
				return err
			}

			results, err := biomart.Convert(st, args, from, to)
			if err != nil {
				return err
			}

			for _, id := range args {
				out := "NA"
				if v := results[id]; v != nil {
					out = *v
				}
				fmt.Printf("%s\t%s\n", id, out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "symbol",
		"Input identifier type: "+strings.Join(biomart.IDKinds, ", "))
	cmd.Flags().StringVar(&to, "to", "ensembl_gene_id",
		"Output identifier type: "+strings.Join(biomart.IDKinds, ", "))

	return cmd
}

func newEdgesCmd(a *app) *cobra.Command {
	var (
		db       string
		target   string
		noType   bool
		scoreCol []string
	)

	cmd := &cobra.Command{
		Use:   "edges <gene>...",
		Short: "Extract interaction edges among a gene set",
		Long: `Extract interaction edges among the given source genes, and optionally
between the source genes and a target gene, from HIPPIE or STRING.`,
		Example: `  tfit edges TP53 BRCA1 MDM2
  tfit edges --db string --target MYC TP53 BRCA1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open("")
			if err != nil {
				return err
			}
			defer st.Close()

			switch db {
			case "hippie":
				return a.runHippieEdges(cmd, st, args, target, !noType)
			case "string", "stringdb":
				return a.runStringEdges(cmd, st, args, target, !noType, scoreCol)
			default:
				return fmt.Errorf("unknown edge database %q (use hippie or string)", db)
			}
		},
	}

	cmd.Flags().StringVar(&db, "db", "hippie", "Interaction database: hippie or string")
	cmd.Flags().StringVar(&target, "target", "", "Optional target gene symbol")
	cmd.Flags().BoolVar(&noType, "no-type", false, "Omit the edge_type column")
	cmd.Flags().StringSliceVar(&scoreCol, "scores", nil,
		"STRING score columns to report (default combined_score)")

	return cmd
}

func (a *app) runHippieEdges(cmd *cobra.Command, st *store.Store, sources []string, target string, includeType bool) error {
	f := a.fetcher()
	if err := a.biomart.Load(cmd.Context(), st, a.cfg, f); err != nil {
		return err
	}
	if err := a.hippie.Load(cmd.Context(), st, a.cfg, f); err != nil {
		return err
	}

	mapping, err := biomart.LoadMapping(st)
	if err != nil {
		return err
	}

	edges, err := a.hippie.Edges(st, mapping, sources, hippie.EdgeOptions{
		Target:      target,
		IncludeType: includeType,
	})
	if err != nil {
		return err
	}

	header := []string{"node1", "node2", "score", "comments"}
	if includeType {
		header = append(header, "edge_type")
	}
	header = append(header, "edge_source")
	fmt.Println(strings.Join(header, "\t"))

	for _, e := range edges {
		row := []string{e.Node1, e.Node2, strconv.FormatFloat(e.Score, 'g', -1, 64), e.Comments}
		if includeType {
			row = append(row, e.EdgeType)
		}
		row = append(row, e.EdgeSource)
		fmt.Println(strings.Join(row, "\t"))
	}
	return nil
}

func (a *app) runStringEdges(cmd *cobra.Command, st *store.Store, sources []string, target string, includeType bool, scoreCols []string) error {
	if err := a.stringdb.Load(cmd.Context(), st, a.cfg, a.fetcher()); err != nil {
		return err
	}

	if len(scoreCols) == 0 {
		scoreCols = stringdb.DefaultScoreColumns
	}

	edges, err := a.stringdb.Edges(st, sources, stringdb.EdgeOptions{
		Target:       target,
		IncludeType:  includeType,
		ScoreColumns: scoreCols,
	})
	if err != nil {
		return err
	}

	header := []string{"node1", "node2"}
	header = append(header, scoreCols...)
	if includeType {
		header = append(header, "edge_type")
	}
	header = append(header, "edge_source")
	fmt.Println(strings.Join(header, "\t"))

	for _, e := range edges {
		row := []string{e.Node1, e.Node2}
		for _, sc := range e.Scores {
			row = append(row, strconv.FormatInt(sc, 10))
		}
		if includeType {
			row = append(row, e.EdgeType)
		}
		row = append(row, e.EdgeSource)
		fmt.Println(strings.Join(row, "\t"))
	}
	return nil
}
