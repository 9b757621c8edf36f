package main

import (
	"fmt"
	"sort"

	"github.com/example/go-roberta-tokenizer/internal/dict"
	"github.com/spf13/cobra"
)

func newVocabCmd() *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Show dictionary statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			d, err := dict.FromFile(cfg.Paths.DictPath, false)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintf(out, "size: %d\nnspecial: %d\n", d.Len(), d.NSpecial()); err != nil {
				return err
			}

			if top > 0 {
				for _, id := range topSymbols(d, top) {
					if _, err := fmt.Fprintf(out, "%s %d\n", d.Symbol(id), d.Count(id)); err != nil {
						return err
					}
				}
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", 0, "Also list the N highest-count non-special symbols")

	return cmd
}

// topSymbols returns the IDs of the n highest-count non-special symbols,
// ordered by descending count with ID order breaking ties.
func topSymbols(d *dict.Dictionary, n int) []dict.ID {
	ids := make([]dict.ID, 0, d.Len()-d.NSpecial())
	for id := dict.ID(d.NSpecial()); int(id) < d.Len(); id++ {
		ids = append(ids, id)
	}

	sort.SliceStable(ids, func(i, j int) bool {
		return d.Count(ids[i]) > d.Count(ids[j])
	})

	if len(ids) > n {
		ids = ids[:n]
	}
	return ids
}
