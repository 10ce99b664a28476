package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/emmetio/lorem/pkg/dictionary"
	"github.com/emmetio/lorem/pkg/models"
	"github.com/emmetio/lorem/pkg/node"
	"github.com/emmetio/lorem/pkg/snippet"
	"github.com/emmetio/lorem/pkg/streaming"
	"github.com/emmetio/lorem/pkg/tree"
	"github.com/emmetio/lorem/pkg/utils"
)

const maxBodyBytes = 1 << 20

// Per-request limits.
const (
	maxWordCount       = 10000
	maxRepeat          = 100
	maxDelayMs         = 10000
	minTokensPerSecond = 1
)

// Config holds the router dependencies. Zero fields take defaults.
type Config struct {
	// Defaults are applied to fields a request leaves unset.
	Defaults node.Options
	// Stream holds the defaults for streaming requests.
	Stream streaming.StreamOptions
	Logger *slog.Logger
	Filler *node.Filler
}

// NewRouter returns an http.Handler exposing the lorem endpoints with
// default settings.
func NewRouter() http.Handler {
	return NewRouterWithConfig(Config{})
}

// NewRouterWithConfig returns a router using cfg.
func NewRouterWithConfig(cfg Config) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Filler == nil {
		cfg.Filler = node.NewFiller()
	}
	cfg.Defaults = cfg.Defaults.WithDefaults()

	h := &handler{
		cfg:   cfg,
		sse:   streaming.NewSSEStreamHandlerWithDefaults(cfg.Stream),
		idGen: utils.NewIDGenerator(),
	}

	mux := http.NewServeMux()
	// Register both the versioned path and the bare path.
	mux.HandleFunc("/v1/lorem", h.lorem)
	mux.HandleFunc("/lorem", h.lorem)
	mux.HandleFunc("/v1/languages", h.languages)
	mux.HandleFunc("/languages", h.languages)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// Only respond at root path; leave other paths to their handlers
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "lorem"})
	})

	// Health endpoint for any readiness/liveness checks.
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
	})

	return logRequests(cfg.Logger, mux)
}

type handler struct {
	cfg   Config
	sse   *streaming.SSEStreamHandler
	idGen *utils.IDGenerator
}

func (h *handler) lorem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var in models.LoremRequest
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	abbr := in.Abbreviation
	if abbr == "" {
		abbr = "lorem"
	}
	parsed, ok := snippet.Match(abbr)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("not a lorem abbreviation: %q", abbr))
		return
	}
	if err := validate(in, parsed); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := h.cfg.Defaults.Merge(node.Options{
		WordCount:  in.WordCount,
		SkipCommon: in.SkipCommon,
		Lang:       in.Lang,
	})
	t, err := snippet.Expand(h.cfg.Filler, snippet.Request{
		Abbreviation: abbr,
		Parent:       in.Parent,
		Repeat:       in.Repeat,
		Options:      opts,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if in.Stream {
		if err := h.sse.StreamTree(r.Context(), w, t, streaming.FromRequest(in.StreamOptions)); err != nil {
			h.cfg.Logger.Warn("stream aborted", "error", err)
		}
		return
	}

	effective := opts.Merge(parsed)
	resp := models.LoremResponse{
		ID:       h.idGen.GenerateID(),
		Object:   "lorem.expansion",
		Created:  time.Now().Unix(),
		Lang:     dictionary.Lookup(effective.Lang).Lang,
		Markup:   t.String(),
		Elements: toModels(t.Children()),
		Usage:    models.Usage{Words: countWords(t)},
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) languages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	list := models.LanguageList{Object: "list"}
	for _, name := range dictionary.Names() {
		d := dictionary.Lookup(name)
		list.Data = append(list.Data, models.Language{
			ID:     d.Lang,
			Tag:    d.Tag.String(),
			Words:  len(d.Words),
			Common: strings.Join(d.Common, " "),
		})
	}
	writeJSON(w, http.StatusOK, list)
}

func validate(in models.LoremRequest, parsed node.Options) error {
	if in.WordCount != nil && (*in.WordCount < 0 || *in.WordCount > maxWordCount) {
		return fmt.Errorf("word_count must be between 0 and %d", maxWordCount)
	}
	if parsed.Words() > maxWordCount {
		return fmt.Errorf("word count must not exceed %d", maxWordCount)
	}
	if in.Repeat < 0 || in.Repeat > maxRepeat {
		return fmt.Errorf("repeat must be between 0 and %d", maxRepeat)
	}
	if so := in.StreamOptions; so != nil {
		if so.DelayMinMs < 0 || so.DelayMinMs > maxDelayMs || so.DelayMaxMs < 0 || so.DelayMaxMs > maxDelayMs {
			return fmt.Errorf("stream delays must be between 0 and %d ms", maxDelayMs)
		}
		if so.TokensPerSecond < 0 || (so.TokensPerSecond > 0 && so.TokensPerSecond < minTokensPerSecond) {
			return fmt.Errorf("tokens_per_second must be 0 or at least %d", minTokensPerSecond)
		}
		if so.ChunkSize < 0 {
			return errors.New("chunk_size must not be negative")
		}
	}
	return nil
}

func decodeBody(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

func toModels(list []*tree.Element) []models.Element {
	var out []models.Element
	for _, e := range list {
		out = append(out, models.Element{
			Name:     e.Name(),
			Value:    e.Value(),
			Children: toModels(e.Children()),
		})
	}
	return out
}

func countWords(t *tree.Tree) int {
	total := 0
	t.Walk(func(e *tree.Element) {
		total += utils.CountWords(e.Value())
	})
	return total
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Error: models.ErrorDetail{
		Message: msg,
		Type:    "invalid_request_error",
	}})
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush keeps streaming responses working through the logging wrapper.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func logRequests(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
