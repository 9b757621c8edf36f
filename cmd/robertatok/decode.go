package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/go-roberta-tokenizer/internal/dict"
	"github.com/example/go-roberta-tokenizer/internal/tokenizer"
	"github.com/spf13/cobra"
)

func newDecodeCmd() *cobra.Command {
	var skipSpecial bool
	var rawSpacing bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "decode [id...]",
		Short: "Decode dictionary-space token IDs back into text",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			ids, err := readIDs(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			tok, _, err := buildTokenizer(cfg)
			if err != nil {
				return err
			}

			var opts []tokenizer.DecodeOption
			if skipSpecial {
				opts = append(opts, tokenizer.SkipSpecial())
			}
			if rawSpacing {
				opts = append(opts, tokenizer.RawSpacing())
			}

			segments, err := tok.Decode(ids, opts...)
			if err != nil {
				return err
			}

			return writeSegments(cmd.OutOrStdout(), segments, asJSON)
		},
	}

	cmd.Flags().BoolVar(&skipSpecial, "skip-special", false, "Drop stray special symbols instead of failing")
	cmd.Flags().BoolVar(&rawSpacing, "raw-spacing", false, "Skip punctuation spacing cleanup")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON output")

	return cmd
}

// readIDs parses dictionary IDs from the command arguments, falling back to
// whitespace-separated IDs on stdin.
func readIDs(args []string, stdin io.Reader) ([]dict.ID, error) {
	fields := args
	if len(fields) == 0 {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		fields = strings.Fields(string(raw))
	}

	if len(fields) == 0 {
		return nil, fmt.Errorf("no token IDs given")
	}

	ids := make([]dict.ID, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid token ID %q", f)
		}
		ids[i] = dict.ID(n)
	}

	return ids, nil
}

func writeSegments(w io.Writer, segments []string, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(w).Encode(struct {
			Segments []string `json:"segments"`
		}{Segments: segments})
	}

	for _, s := range segments {
		if _, err := fmt.Fprintln(w, s); err != nil {
			return err
		}
	}
	return nil
}
