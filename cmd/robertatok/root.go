package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/example/go-roberta-tokenizer/internal/bpe"
	"github.com/example/go-roberta-tokenizer/internal/config"
	"github.com/example/go-roberta-tokenizer/internal/dict"
	"github.com/example/go-roberta-tokenizer/internal/server"
	"github.com/example/go-roberta-tokenizer/internal/tokenizer"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	activeCfg config.Config
)

func NewRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "robertatok",
		Short: "RoBERTa byte-level BPE tokenizer command line",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(config.LoadOptions{
				Cmd:        cmd,
				ConfigFile: cfgFile,
				Defaults:   defaults,
			})
			if err != nil {
				return err
			}
			activeCfg = loaded
			setupLogger(loaded.LogLevel)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Optional config file (yaml|toml|json)")
	config.RegisterFlags(cmd.PersistentFlags(), defaults)

	cmd.AddCommand(newEncodeCmd())
	cmd.AddCommand(newDecodeCmd())
	cmd.AddCommand(newVocabCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// setupLogger configures the process-wide slog default logger.
func setupLogger(levelStr string) {
	lvl, err := server.ParseLogLevel(levelStr)
	if err != nil {
		lvl = slog.LevelInfo
	}
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h))
}

func requireConfig() (config.Config, error) {
	if activeCfg.Paths.DictPath == "" {
		return config.Config{}, fmt.Errorf("configuration not loaded")
	}
	return activeCfg, nil
}

// buildTokenizer loads the dictionary and segmenter named by cfg and wires
// the bridging tokenizer over them.
func buildTokenizer(cfg config.Config) (*tokenizer.Tokenizer, *dict.Dictionary, error) {
	d, err := dict.FromFile(cfg.Paths.DictPath, false)
	if err != nil {
		return nil, nil, err
	}

	seg, err := bpe.NewEncoder(cfg.Paths.VocabPath, cfg.Paths.MergesPath)
	if err != nil {
		return nil, nil, err
	}

	opts := []tokenizer.Option{
		tokenizer.WithMarkers(cfg.Tokenizer.ClsToken, cfg.Tokenizer.SepToken),
		tokenizer.WithAddUnknown(cfg.Tokenizer.AddUnknown),
	}
	if !cfg.Tokenizer.CleanSpacing {
		opts = append(opts, tokenizer.WithCleanFunc(func(s string) string { return s }))
	}

	return tokenizer.New(d, seg, opts...), d, nil
}
