package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Paths     PathsConfig     `mapstructure:"paths"`
	Tokenizer TokenizerConfig `mapstructure:"tokenizer"`
	Server    ServerConfig    `mapstructure:"server"`
	LogLevel  string          `mapstructure:"log_level"`
}

type PathsConfig struct {
	DictPath   string `mapstructure:"dict_path"`
	VocabPath  string `mapstructure:"vocab_path"`
	MergesPath string `mapstructure:"merges_path"`
}

type TokenizerConfig struct {
	AddUnknown   bool   `mapstructure:"add_unknown"`
	CleanSpacing bool   `mapstructure:"clean_spacing"`
	ClsToken     string `mapstructure:"cls_token"`
	SepToken     string `mapstructure:"sep_token"`
}

type ServerConfig struct {
	ListenAddr      string `mapstructure:"listen_addr"`
	MaxTextBytes    int    `mapstructure:"max_text_bytes"`
	RequestTimeout  int    `mapstructure:"request_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		Paths: PathsConfig{
			DictPath:   "vocab/dict.txt",
			VocabPath:  "vocab/encoder.json",
			MergesPath: "vocab/vocab.bpe",
		},
		Tokenizer: TokenizerConfig{
			AddUnknown:   true,
			CleanSpacing: true,
			ClsToken:     "<s>",
			SepToken:     "</s>",
		},
		Server: ServerConfig{
			ListenAddr:      ":8080",
			MaxTextBytes:    65536,
			RequestTimeout:  10,
			ShutdownTimeout: 30,
		},
		LogLevel: "info",
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("paths-dict-path", defaults.Paths.DictPath, "Path to fairseq-format dictionary file")
	fs.String("paths-vocab-path", defaults.Paths.VocabPath, "Path to BPE vocabulary JSON (encoder.json)")
	fs.String("paths-merges-path", defaults.Paths.MergesPath, "Path to ranked BPE merge list (vocab.bpe)")
	fs.Bool("tokenizer-add-unknown", defaults.Tokenizer.AddUnknown, "Register unseen merge-ID strings in the dictionary during encoding")
	fs.Bool("tokenizer-clean-spacing", defaults.Tokenizer.CleanSpacing, "Apply punctuation spacing cleanup after decoding")
	fs.String("tokenizer-cls-token", defaults.Tokenizer.ClsToken, "Sequence-start boundary marker symbol")
	fs.String("tokenizer-sep-token", defaults.Tokenizer.SepToken, "Segment separator / sequence-end marker symbol")
	fs.String("server-listen-addr", defaults.Server.ListenAddr, "HTTP listen address")
	fs.Int("server-max-text-bytes", defaults.Server.MaxTextBytes, "Maximum request text size in bytes")
	fs.Int("server-request-timeout", defaults.Server.RequestTimeout, "Per-request timeout in seconds")
	fs.Int("server-shutdown-timeout", defaults.Server.ShutdownTimeout, "Graceful shutdown drain period in seconds")
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := v.BindPFlags(opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}
	registerAliases(v)

	v.SetEnvPrefix("ROBERTATOK")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("robertatok")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("paths.dict_path", c.Paths.DictPath)
	v.SetDefault("paths.vocab_path", c.Paths.VocabPath)
	v.SetDefault("paths.merges_path", c.Paths.MergesPath)
	v.SetDefault("tokenizer.add_unknown", c.Tokenizer.AddUnknown)
	v.SetDefault("tokenizer.clean_spacing", c.Tokenizer.CleanSpacing)
	v.SetDefault("tokenizer.cls_token", c.Tokenizer.ClsToken)
	v.SetDefault("tokenizer.sep_token", c.Tokenizer.SepToken)
	v.SetDefault("server.listen_addr", c.Server.ListenAddr)
	v.SetDefault("server.max_text_bytes", c.Server.MaxTextBytes)
	v.SetDefault("server.request_timeout", c.Server.RequestTimeout)
	v.SetDefault("server.shutdown_timeout", c.Server.ShutdownTimeout)
	v.SetDefault("log_level", c.LogLevel)
}

func registerAliases(v *viper.Viper) {
	v.RegisterAlias("paths.dict_path", "paths-dict-path")
	v.RegisterAlias("paths.vocab_path", "paths-vocab-path")
	v.RegisterAlias("paths.merges_path", "paths-merges-path")
	v.RegisterAlias("tokenizer.add_unknown", "tokenizer-add-unknown")
	v.RegisterAlias("tokenizer.clean_spacing", "tokenizer-clean-spacing")
	v.RegisterAlias("tokenizer.cls_token", "tokenizer-cls-token")
	v.RegisterAlias("tokenizer.sep_token", "tokenizer-sep-token")
	v.RegisterAlias("server.listen_addr", "server-listen-addr")
	v.RegisterAlias("server.max_text_bytes", "server-max-text-bytes")
	v.RegisterAlias("server.request_timeout", "server-request-timeout")
	v.RegisterAlias("server.shutdown_timeout", "server-shutdown-timeout")
	v.RegisterAlias("log_level", "log-level")
}
