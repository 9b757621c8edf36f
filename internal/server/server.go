// Package server exposes the bridging tokenizer over HTTP: POST /encode,
// POST /decode, GET /vocab, and GET /health.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/example/go-roberta-tokenizer/internal/bpe"
	"github.com/example/go-roberta-tokenizer/internal/config"
	"github.com/example/go-roberta-tokenizer/internal/dict"
	"github.com/example/go-roberta-tokenizer/internal/tokenizer"
)

// ParseLogLevel converts a case-insensitive level string to slog.Level.
// An empty string returns slog.LevelInfo. Unknown strings return an error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

// Codec is the tokenizer surface the handler needs: text to dictionary IDs
// and back.
type Codec interface {
	Encode(primary string, additional ...string) []dict.ID
	Decode(ids []dict.ID, opts ...tokenizer.DecodeOption) ([]string, error)
}

// VocabInfo reports dictionary statistics for GET /vocab.
type VocabInfo interface {
	Len() int
	NSpecial() int
}

// ---------------------------------------------------------------------------
// Functional options
// ---------------------------------------------------------------------------

type options struct {
	maxTextBytes   int
	requestTimeout time.Duration
	logger         *slog.Logger
}

func defaultOptions() options {
	return options{
		maxTextBytes:   65536,
		requestTimeout: 10 * time.Second,
		logger:         slog.Default(),
	}
}

// Option configures the HTTP handler.
type Option func(*options)

// WithMaxTextBytes sets the maximum allowed total text length for POST /encode.
func WithMaxTextBytes(n int) Option {
	return func(o *options) { o.maxTextBytes = n }
}

// WithRequestTimeout sets the per-request deadline.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) { o.requestTimeout = d }
}

// WithLogger sets the slog.Logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// ---------------------------------------------------------------------------
// handler
// ---------------------------------------------------------------------------

// handler holds the dependencies needed to serve HTTP requests.
type handler struct {
	codec Codec
	vocab VocabInfo
	opts  options
	log   *slog.Logger
}

// NewHandler returns an http.Handler serving /health, /vocab, POST /encode,
// and POST /decode.
func NewHandler(codec Codec, vocab VocabInfo, optFns ...Option) http.Handler {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	h := &handler{
		codec: codec,
		vocab: vocab,
		opts:  opts,
		log:   opts.logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/vocab", h.handleVocab)
	mux.HandleFunc("/encode", h.handleEncode)
	mux.HandleFunc("/decode", h.handleDecode)

	if opts.requestTimeout > 0 {
		return http.TimeoutHandler(mux, opts.requestTimeout, `{"error":"request timed out"}`)
	}
	return mux
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildVersion(),
	})
}

type vocabResponse struct {
	Size     int `json:"size"`
	NSpecial int `json:"nspecial"`
}

func (h *handler) handleVocab(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, vocabResponse{
		Size:     h.vocab.Len(),
		NSpecial: h.vocab.NSpecial(),
	})
}

type encodeRequest struct {
	Text string   `json:"text"`
	Pair []string `json:"pair,omitempty"`
}

type encodeResponse struct {
	IDs []dict.ID `json:"ids"`
}

func (h *handler) handleEncode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req encodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text field is required")
		return
	}

	total := len(req.Text)
	for _, p := range req.Pair {
		total += len(p)
	}
	if total > h.opts.maxTextBytes {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("text exceeds maximum size of %d bytes", h.opts.maxTextBytes))
		return
	}

	start := time.Now()
	ids := h.codec.Encode(req.Text, req.Pair...)

	h.log.InfoContext(r.Context(), "encode complete",
		slog.Int("text_len", total),
		slog.Int("segments", 1+len(req.Pair)),
		slog.Int("ids", len(ids)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	writeJSON(w, http.StatusOK, encodeResponse{IDs: ids})
}

type decodeRequest struct {
	IDs         []dict.ID `json:"ids"`
	SkipSpecial bool      `json:"skip_special,omitempty"`
	RawSpacing  bool      `json:"raw_spacing,omitempty"`
}

type decodeResponse struct {
	Segments []string `json:"segments"`
}

func (h *handler) handleDecode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req decodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids field is required")
		return
	}

	var opts []tokenizer.DecodeOption
	if req.SkipSpecial {
		opts = append(opts, tokenizer.SkipSpecial())
	}
	if req.RawSpacing {
		opts = append(opts, tokenizer.RawSpacing())
	}

	start := time.Now()
	segments, err := h.codec.Decode(req.IDs, opts...)
	durationMS := time.Since(start).Milliseconds()

	if err != nil {
		h.log.WarnContext(r.Context(), "decode failed",
			slog.Int("ids", len(req.IDs)),
			slog.Int64("duration_ms", durationMS),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	h.log.InfoContext(r.Context(), "decode complete",
		slog.Int("ids", len(req.IDs)),
		slog.Int("segments", len(segments)),
		slog.Int64("duration_ms", durationMS),
	)

	writeJSON(w, http.StatusOK, decodeResponse{Segments: segments})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ---------------------------------------------------------------------------
// Server — wires handler into net/http.Server with graceful shutdown
// ---------------------------------------------------------------------------

// Server loads the vocabulary files named by the config, builds the bridging
// tokenizer, and serves it over HTTP with graceful shutdown.
type Server struct {
	cfg             config.Config
	shutdownTimeout time.Duration
}

func New(cfg config.Config) *Server {
	return &Server{
		cfg:             cfg,
		shutdownTimeout: time.Duration(cfg.Server.ShutdownTimeout) * time.Second,
	}
}

// WithShutdownTimeout overrides the graceful-shutdown drain period.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	s.shutdownTimeout = d
	return s
}

func (s *Server) Start(ctx context.Context) error {
	d, err := dict.FromFile(s.cfg.Paths.DictPath, false)
	if err != nil {
		return err
	}

	seg, err := bpe.NewEncoder(s.cfg.Paths.VocabPath, s.cfg.Paths.MergesPath)
	if err != nil {
		return err
	}

	tokOpts := []tokenizer.Option{
		tokenizer.WithMarkers(s.cfg.Tokenizer.ClsToken, s.cfg.Tokenizer.SepToken),
		tokenizer.WithAddUnknown(s.cfg.Tokenizer.AddUnknown),
	}
	if !s.cfg.Tokenizer.CleanSpacing {
		tokOpts = append(tokOpts, tokenizer.WithCleanFunc(func(str string) string { return str }))
	}
	tok := tokenizer.New(d, seg, tokOpts...)

	h := NewHandler(tok, d,
		WithMaxTextBytes(s.cfg.Server.MaxTextBytes),
		WithRequestTimeout(time.Duration(s.cfg.Server.RequestTimeout)*time.Second),
	)

	httpServer := &http.Server{
		Addr:              s.cfg.Server.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("http listen: %w", err)
	}
}
