package streaming

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/emmetio/lorem/pkg/models"
	"github.com/emmetio/lorem/pkg/tree"
	"github.com/emmetio/lorem/pkg/utils"
)

const chunkObject = "lorem.chunk"

// StreamOptions configures the streaming session.
type StreamOptions struct {
	IncludeUsage bool
	// ChunkSize is the number of words per chunk. Defaults to 3.
	ChunkSize int
	// Delay is a fixed pause after each chunk, used when no jitter range
	// is set.
	Delay time.Duration

	// DelayMin/DelayMax represent a randomized jitter range applied
	// per-chunk. When set, each chunk will sleep for a uniform random
	// time between DelayMin and DelayMax.
	DelayMin time.Duration
	DelayMax time.Duration

	// TokensPerSecond, when >0, throttles output to roughly this many
	// words per second.
	TokensPerSecond float64
}

// FromRequest maps wire stream options onto StreamOptions. A nil in leaves
// every field unset.
func FromRequest(in *models.StreamOptions) StreamOptions {
	var opts StreamOptions
	if in == nil {
		return opts
	}
	opts.IncludeUsage = in.IncludeUsage
	opts.ChunkSize = in.ChunkSize
	if in.DelayMinMs > 0 {
		opts.DelayMin = time.Duration(in.DelayMinMs) * time.Millisecond
	}
	if in.DelayMaxMs > 0 {
		opts.DelayMax = time.Duration(in.DelayMaxMs) * time.Millisecond
	}
	if in.TokensPerSecond > 0 {
		opts.TokensPerSecond = in.TokensPerSecond
	}
	return opts
}

// SSEStreamHandler emits Server-Sent Events for generated text.
type SSEStreamHandler struct {
	idGen *utils.IDGenerator
	src   utils.Source
	sleep func(context.Context, time.Duration) error
	// defaults applied when a client does not set values for options.
	defaults *StreamOptions
}

// NewSSEStreamHandler builds a handler with no stream defaults.
func NewSSEStreamHandler() *SSEStreamHandler {
	return &SSEStreamHandler{
		idGen: utils.NewIDGenerator(),
		src:   utils.DefaultSource(),
		sleep: sleepContext,
	}
}

// NewSSEStreamHandlerWithDefaults creates a handler with the provided
// default streaming options. Fields a request leaves unset take these
// values.
func NewSSEStreamHandlerWithDefaults(defaults StreamOptions) *SSEStreamHandler {
	h := NewSSEStreamHandler()
	h.defaults = &defaults
	return h
}

// StreamTree streams the text of every element of t that carries a value.
// Each element is identified by its index in depth-first order.
func (h *SSEStreamHandler) StreamTree(
	ctx context.Context,
	w http.ResponseWriter,
	t *tree.Tree,
	opts StreamOptions,
) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	opts = h.withDefaults(opts)
	streamID := h.idGen.GenerateStreamID()
	created := time.Now().Unix()

	var elements []*tree.Element
	t.Walk(func(e *tree.Element) {
		if e.Value() != "" {
			elements = append(elements, e)
		}
	})

	total := 0
	for idx, e := range elements {
		words := utils.TokenizeText(e.Value())
		total += len(words)
		for i := 0; i < len(words); i += opts.ChunkSize {
			if err := ctx.Err(); err != nil {
				return err
			}
			end := min(i+opts.ChunkSize, len(words))
			text := strings.Join(words[i:end], " ")
			if end < len(words) {
				text += " "
			}
			h.send(w, flusher, models.LoremChunk{
				ID:      streamID,
				Object:  chunkObject,
				Created: created,
				Index:   idx,
				Name:    e.Name(),
				Delta:   text,
			})
			if err := h.pause(ctx, opts, end-i); err != nil {
				return err
			}
		}
	}

	finish := "stop"
	final := models.LoremChunk{
		ID:           streamID,
		Object:       chunkObject,
		Created:      created,
		FinishReason: &finish,
	}
	if opts.IncludeUsage {
		final.Usage = &models.Usage{Words: total}
	}
	h.send(w, flusher, final)

	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
	return nil
}

func (h *SSEStreamHandler) withDefaults(opts StreamOptions) StreamOptions {
	if h.defaults != nil {
		if opts.ChunkSize == 0 {
			opts.ChunkSize = h.defaults.ChunkSize
		}
		if opts.Delay == 0 {
			opts.Delay = h.defaults.Delay
		}
		if opts.DelayMin == 0 {
			opts.DelayMin = h.defaults.DelayMin
		}
		if opts.DelayMax == 0 {
			opts.DelayMax = h.defaults.DelayMax
		}
		if opts.TokensPerSecond == 0 {
			opts.TokensPerSecond = h.defaults.TokensPerSecond
		}
		opts.IncludeUsage = opts.IncludeUsage || h.defaults.IncludeUsage
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 3
	}
	return opts
}

// pause sleeps after a chunk of words: jitter or fixed delay first, then
// the word-rate throttle. It returns early with ctx's error once ctx is done.
func (h *SSEStreamHandler) pause(ctx context.Context, opts StreamOptions, words int) error {
	if opts.DelayMin > 0 || opts.DelayMax > 0 {
		lo, hi := opts.DelayMin, opts.DelayMax
		if hi < lo {
			hi = lo
		}
		if err := h.sleep(ctx, time.Duration(utils.RandIntInclusive(h.src, int(lo), int(hi)))); err != nil {
			return err
		}
	} else if opts.Delay > 0 {
		if err := h.sleep(ctx, opts.Delay); err != nil {
			return err
		}
	}

	if opts.TokensPerSecond > 0 {
		dur := time.Duration(float64(words) / opts.TokensPerSecond * float64(time.Second))
		if dur > 0 {
			return h.sleep(ctx, dur)
		}
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (h *SSEStreamHandler) send(w http.ResponseWriter, flusher http.Flusher, chunk models.LoremChunk) {
	data, _ := json.Marshal(chunk)
	fmt.Fprintf(w, "data: %s\n\n", string(data))
	flusher.Flush()
}
