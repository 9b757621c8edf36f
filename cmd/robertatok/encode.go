package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/go-roberta-tokenizer/internal/dict"
	textpkg "github.com/example/go-roberta-tokenizer/internal/text"
	"github.com/spf13/cobra"
)

func newEncodeCmd() *cobra.Command {
	var inputText string
	var pairs []string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode text into dictionary-space token IDs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			input, err := readInputText(inputText, cmd.InOrStdin())
			if err != nil {
				return err
			}

			tok, _, err := buildTokenizer(cfg)
			if err != nil {
				return err
			}

			ids := tok.Encode(input, pairs...)
			return writeIDs(cmd.OutOrStdout(), ids, asJSON)
		},
	}

	cmd.Flags().StringVar(&inputText, "text", "", "Text to encode (if empty, read from stdin)")
	cmd.Flags().StringArrayVar(&pairs, "pair", nil, "Additional sentence-pair text (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON output")

	return cmd
}

// readInputText takes the --text flag value, falling back to stdin, and
// normalizes it for encoding.
func readInputText(flagText string, stdin io.Reader) (string, error) {
	if flagText != "" {
		return textpkg.Normalize(flagText)
	}

	raw, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}

	return textpkg.Normalize(string(raw))
}

func writeIDs(w io.Writer, ids []dict.ID, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(w).Encode(struct {
			IDs []dict.ID `json:"ids"`
		}{IDs: ids})
	}

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(int(id))
	}
	_, err := fmt.Fprintln(w, strings.Join(parts, " "))
	return err
}
