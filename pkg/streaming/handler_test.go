package streaming

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/emmetio/lorem/pkg/models"
	"github.com/emmetio/lorem/pkg/tree"
	"github.com/stretchr/testify/require"
)

// fakeFlusher implements http.ResponseWriter + http.Flusher
type fakeFlusher struct {
	header  http.Header
	builder strings.Builder
}

func (f *fakeFlusher) Header() http.Header {
	if f.header == nil {
		f.header = http.Header{}
	}
	return f.header
}
func (f *fakeFlusher) Write(b []byte) (int, error) { return f.builder.Write(b) }
func (f *fakeFlusher) WriteHeader(statusCode int)  {}
func (f *fakeFlusher) Flush()                      {}

func (f *fakeFlusher) String() string { return f.builder.String() }

// noFlush is a ResponseWriter without Flush support.
type noFlush struct{ http.ResponseWriter }

func sampleTree() *tree.Tree {
	t := tree.New()
	ul := t.Append(tree.NewElement("ul"))
	ul.Append(tree.NewElement("li")).SetValue("Lorem ipsum dolor sit amet.")
	ul.Append(tree.NewElement("li")).SetValue("Quis nostrum?")
	return t
}

func decodeChunks(t *testing.T, out string) []models.LoremChunk {
	var chunks []models.LoremChunk
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: {") {
			continue
		}
		var c models.LoremChunk
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &c))
		chunks = append(chunks, c)
	}
	return chunks
}

func TestStreamTree(t *testing.T) {
	h := NewSSEStreamHandler()
	fw := &fakeFlusher{}

	err := h.StreamTree(context.Background(), fw, sampleTree(), StreamOptions{IncludeUsage: true, ChunkSize: 2})
	require.NoError(t, err)

	out := fw.String()
	require.Equal(t, "text/event-stream", fw.Header().Get("Content-Type"))
	require.True(t, strings.HasSuffix(out, "data: [DONE]\n\n"))

	chunks := decodeChunks(t, out)
	// 5 words in 3 chunks, 2 words in 1 chunk, plus the final chunk
	require.Len(t, chunks, 5)

	texts := map[int]string{}
	for _, c := range chunks[:4] {
		require.Equal(t, "lorem.chunk", c.Object)
		require.Equal(t, "li", c.Name)
		require.Nil(t, c.FinishReason)
		texts[c.Index] += c.Delta
	}
	require.Equal(t, "Lorem ipsum dolor sit amet.", texts[0])
	require.Equal(t, "Quis nostrum?", texts[1])

	last := chunks[4]
	require.NotNil(t, last.FinishReason)
	require.Equal(t, "stop", *last.FinishReason)
	require.Equal(t, &models.Usage{Words: 7}, last.Usage)

	for _, c := range chunks {
		require.Equal(t, chunks[0].ID, c.ID)
	}
}

func TestStreamTree_WithLatencyAndThrottle(t *testing.T) {
	h := NewSSEStreamHandler()
	var slept []time.Duration
	h.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	opts := StreamOptions{ChunkSize: 5, DelayMin: time.Millisecond, DelayMax: 3 * time.Millisecond, TokensPerSecond: 10}
	require.NoError(t, h.StreamTree(context.Background(), &fakeFlusher{}, sampleTree(), opts))

	// one jitter and one throttle pause per chunk
	require.Len(t, slept, 4)
	require.GreaterOrEqual(t, slept[0], time.Millisecond)
	require.LessOrEqual(t, slept[0], 3*time.Millisecond)
	require.Equal(t, 500*time.Millisecond, slept[1])
	require.Equal(t, 200*time.Millisecond, slept[3])
}

func TestStreamTree_Defaults(t *testing.T) {
	h := NewSSEStreamHandlerWithDefaults(StreamOptions{ChunkSize: 100, IncludeUsage: true, Delay: time.Second})
	var slept []time.Duration
	h.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	fw := &fakeFlusher{}
	require.NoError(t, h.StreamTree(context.Background(), fw, sampleTree(), StreamOptions{}))

	chunks := decodeChunks(t, fw.String())
	require.Len(t, chunks, 3)
	require.NotNil(t, chunks[2].Usage)
	require.Equal(t, []time.Duration{time.Second, time.Second}, slept)
}

func TestStreamTree_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewSSEStreamHandler().StreamTree(ctx, &fakeFlusher{}, sampleTree(), StreamOptions{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestStreamTree_CancelInterruptsPause(t *testing.T) {
	for name, opts := range map[string]StreamOptions{
		"delay":    {DelayMin: time.Hour},
		"throttle": {TokensPerSecond: 0.0001},
	} {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()

			fw := &fakeFlusher{}
			start := time.Now()
			err := NewSSEStreamHandler().StreamTree(ctx, fw, sampleTree(), opts)
			require.ErrorIs(t, err, context.DeadlineExceeded)
			require.Less(t, time.Since(start), 5*time.Second)

			// only the first chunk went out before the pause
			require.Len(t, decodeChunks(t, fw.String()), 1)
			require.NotContains(t, fw.String(), "[DONE]")
		})
	}
}

func TestSleepContext(t *testing.T) {
	require.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}

func TestStreamTree_RequiresFlusher(t *testing.T) {
	err := NewSSEStreamHandler().StreamTree(context.Background(), noFlush{&fakeFlusher{}}, sampleTree(), StreamOptions{})
	require.Error(t, err)
}

func TestFromRequest(t *testing.T) {
	require.Equal(t, StreamOptions{}, FromRequest(nil))

	got := FromRequest(&models.StreamOptions{IncludeUsage: true, ChunkSize: 4, DelayMinMs: 5, DelayMaxMs: 10, TokensPerSecond: 2})
	require.Equal(t, StreamOptions{
		IncludeUsage:    true,
		ChunkSize:       4,
		DelayMin:        5 * time.Millisecond,
		DelayMax:        10 * time.Millisecond,
		TokensPerSecond: 2,
	}, got)
}
