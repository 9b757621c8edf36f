package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

// fakeBinder wraps a pflag.FlagSet to satisfy the flagBinder interface.
type fakeBinder struct {
	fs *pflag.FlagSet
}

func (f *fakeBinder) Flags() *pflag.FlagSet { return f.fs }

// newFlagBinder creates a FlagSet with all config flags registered at their defaults.
func newFlagBinder(defaults Config) *fakeBinder {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	return &fakeBinder{fs: fs}
}

// --- DefaultConfig ---

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Paths.DictPath != "vocab/dict.txt" {
		t.Errorf("DictPath = %q; want %q", cfg.Paths.DictPath, "vocab/dict.txt")
	}

	if cfg.Paths.VocabPath != "vocab/encoder.json" {
		t.Errorf("VocabPath = %q; want %q", cfg.Paths.VocabPath, "vocab/encoder.json")
	}

	if cfg.Paths.MergesPath != "vocab/vocab.bpe" {
		t.Errorf("MergesPath = %q; want %q", cfg.Paths.MergesPath, "vocab/vocab.bpe")
	}

	if !cfg.Tokenizer.AddUnknown {
		t.Error("Tokenizer.AddUnknown = false; want true")
	}

	if !cfg.Tokenizer.CleanSpacing {
		t.Error("Tokenizer.CleanSpacing = false; want true")
	}

	if cfg.Tokenizer.ClsToken != "<s>" {
		t.Errorf("Tokenizer.ClsToken = %q; want %q", cfg.Tokenizer.ClsToken, "<s>")
	}

	if cfg.Tokenizer.SepToken != "</s>" {
		t.Errorf("Tokenizer.SepToken = %q; want %q", cfg.Tokenizer.SepToken, "</s>")
	}

	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("Server.ListenAddr = %q; want %q", cfg.Server.ListenAddr, ":8080")
	}

	if cfg.Server.MaxTextBytes != 65536 {
		t.Errorf("Server.MaxTextBytes = %d; want 65536", cfg.Server.MaxTextBytes)
	}

	if cfg.Server.RequestTimeout != 10 {
		t.Errorf("Server.RequestTimeout = %d; want 10", cfg.Server.RequestTimeout)
	}

	if cfg.Server.ShutdownTimeout != 30 {
		t.Errorf("Server.ShutdownTimeout = %d; want 30", cfg.Server.ShutdownTimeout)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "info")
	}
}

// --- RegisterFlags ---

func TestRegisterFlags(t *testing.T) {
	defaults := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	// Spot-check a few flags are registered with correct defaults.
	checks := []struct {
		flag string
		want string
	}{
		{"paths-dict-path", "vocab/dict.txt"},
		{"paths-merges-path", "vocab/vocab.bpe"},
		{"tokenizer-sep-token", "</s>"},
		{"server-listen-addr", ":8080"},
		{"log-level", "info"},
	}

	for _, c := range checks {
		f := fs.Lookup(c.flag)
		if f == nil {
			t.Errorf("flag %q not registered", c.flag)
			continue
		}

		if f.DefValue != c.want {
			t.Errorf("flag %q default = %q; want %q", c.flag, f.DefValue, c.want)
		}
	}
}

// --- Load ---

func TestLoad_Defaults(t *testing.T) {
	defaults := DefaultConfig()
	binder := newFlagBinder(defaults)

	cfg, err := Load(LoadOptions{
		Cmd:      binder,
		Defaults: defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Paths.DictPath != defaults.Paths.DictPath {
		t.Errorf("DictPath = %q; want %q", cfg.Paths.DictPath, defaults.Paths.DictPath)
	}

	if cfg.Tokenizer.AddUnknown != defaults.Tokenizer.AddUnknown {
		t.Errorf("Tokenizer.AddUnknown = %v; want %v", cfg.Tokenizer.AddUnknown, defaults.Tokenizer.AddUnknown)
	}

	if cfg.LogLevel != defaults.LogLevel {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, defaults.LogLevel)
	}
}

func TestLoad_FlagOverride(t *testing.T) {
	defaults := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	err := fs.Parse([]string{
		"--paths-dict-path=/data/dict.txt",
		"--tokenizer-add-unknown=false",
		"--log-level=debug",
	})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	cfg, err := Load(LoadOptions{
		Cmd:      &fakeBinder{fs: fs},
		Defaults: defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Paths.DictPath != "/data/dict.txt" {
		t.Errorf("DictPath = %q; want %q", cfg.Paths.DictPath, "/data/dict.txt")
	}

	if cfg.Tokenizer.AddUnknown {
		t.Error("Tokenizer.AddUnknown = true; want false")
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "debug")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("ROBERTATOK_LOG_LEVEL", "warn")
	t.Setenv("ROBERTATOK_SERVER_LISTEN_ADDR", ":9999")

	defaults := DefaultConfig()

	cfg, err := Load(LoadOptions{
		Defaults: defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "warn")
	}

	if cfg.Server.ListenAddr != ":9999" {
		t.Errorf("Server.ListenAddr = %q; want %q", cfg.Server.ListenAddr, ":9999")
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "robertatok.yaml")

	content := `
log_level: error
paths:
  dict_path: /data/roberta/dict.txt
tokenizer:
  clean_spacing: false
server:
  listen_addr: ":7070"
`
	if err := os.WriteFile(cfgFile, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(LoadOptions{
		ConfigFile: cfgFile,
		Defaults:   DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "error")
	}

	if cfg.Paths.DictPath != "/data/roberta/dict.txt" {
		t.Errorf("DictPath = %q; want %q", cfg.Paths.DictPath, "/data/roberta/dict.txt")
	}

	if cfg.Tokenizer.CleanSpacing {
		t.Error("Tokenizer.CleanSpacing = true; want false")
	}

	if cfg.Server.ListenAddr != ":7070" {
		t.Errorf("Server.ListenAddr = %q; want %q", cfg.Server.ListenAddr, ":7070")
	}

	// Untouched keys keep their defaults.
	if cfg.Paths.MergesPath != "vocab/vocab.bpe" {
		t.Errorf("MergesPath = %q; want default", cfg.Paths.MergesPath)
	}
}

func TestLoad_MissingConfigFileFails(t *testing.T) {
	_, err := Load(LoadOptions{
		ConfigFile: "/nonexistent/robertatok.yaml",
		Defaults:   DefaultConfig(),
	})
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}
