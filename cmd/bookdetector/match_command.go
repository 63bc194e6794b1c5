package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bookdetector/internal/history"
)

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var (
		limit         int
		minSimilarity float64
		jsonOutput    bool
	)
	cmd := &cobra.Command{
		Use:   "match <query>",
		Short: "Fuzzy-match a title against the catalog",
		Long: "Match ranks distinct catalog titles by similarity to the query and\n" +
			"lists every entry carrying one of the best titles, in catalog order.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			if strings.TrimSpace(query) == "" {
				return errors.New("query must not be empty")
			}
			svc, err := ctx.loadedDetector(commandCtx(cmd))
			if err != nil {
				return err
			}
			cfg := svc.Config()
			if !cmd.Flags().Changed("limit") {
				limit = cfg.Lookup.Limit
			}
			if !cmd.Flags().Changed("min-similarity") {
				minSimilarity = cfg.Lookup.MinSimilarity
			}
			if minSimilarity < 0 || minSimilarity > 1 {
				return fmt.Errorf("--min-similarity must be between 0 and 1")
			}

			result, err := svc.LookupWithin(commandCtx(cmd), history.SourceManual, query, limit, minSimilarity)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, result)
			}
			renderMatches(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "Maximum number of distinct titles")
	cmd.Flags().Float64VarP(&minSimilarity, "min-similarity", "m", 0.6, "Similarity cutoff between 0 and 1")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
