package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/emmetio/lorem/pkg/models"
	"github.com/emmetio/lorem/pkg/node"
	"github.com/emmetio/lorem/pkg/streaming"
	"github.com/emmetio/lorem/pkg/utils"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := httptest.NewServer(NewRouterWithConfig(cfg))
	t.Cleanup(s.Close)
	return s
}

func post(t *testing.T, url string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRouter_AppliesDefaults(t *testing.T) {
	s := newTestServer(t, Config{Defaults: node.Options{WordCount: utils.Pointer(7), SkipCommon: utils.Pointer(true), Lang: "sp"}})

	resp := post(t, s.URL+"/v1/lorem", models.LoremRequest{})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out models.LoremResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "sp", out.Lang)
	require.Equal(t, 7, out.Usage.Words)
	require.Len(t, out.Elements, 1)
	require.Equal(t, "div", out.Elements[0].Name)
}

func TestRouter_RequestOverridesDefaults(t *testing.T) {
	s := newTestServer(t, Config{Defaults: node.Options{WordCount: utils.Pointer(7), Lang: "sp"}})

	resp := post(t, s.URL+"/lorem", models.LoremRequest{Abbreviation: "loremru", WordCount: utils.Pointer(12)})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out models.LoremResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "ru", out.Lang)
	require.Equal(t, 12, out.Usage.Words)
}

func TestRouter_ExplicitFalseAndZeroOverrideDefaults(t *testing.T) {
	s := newTestServer(t, Config{Defaults: node.Options{WordCount: utils.Pointer(7), SkipCommon: utils.Pointer(true)}})

	resp := post(t, s.URL+"/v1/lorem", models.LoremRequest{SkipCommon: utils.Pointer(false)})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out models.LoremResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Regexp(t, `^Lorem,?\sipsum`, out.Elements[0].Value)
	require.Equal(t, 7, out.Usage.Words)

	resp = post(t, s.URL+"/v1/lorem", models.LoremRequest{WordCount: utils.Pointer(0), SkipCommon: utils.Pointer(true)})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out = models.LoremResponse{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, 0, out.Usage.Words)
}

func TestRouter_RejectsBadRequests(t *testing.T) {
	s := newTestServer(t, Config{})

	cases := []models.LoremRequest{
		{Abbreviation: "ipsum"},
		{WordCount: utils.Pointer(-1)},
		{WordCount: utils.Pointer(maxWordCount + 1)},
		{Abbreviation: "lorem99999"},
		{Repeat: maxRepeat + 1},
		{Stream: true, StreamOptions: &models.StreamOptions{DelayMinMs: 86400000}},
		{Stream: true, StreamOptions: &models.StreamOptions{DelayMaxMs: maxDelayMs + 1}},
		{Stream: true, StreamOptions: &models.StreamOptions{DelayMinMs: -1}},
		{Stream: true, StreamOptions: &models.StreamOptions{TokensPerSecond: 0.0001}},
		{Stream: true, StreamOptions: &models.StreamOptions{TokensPerSecond: -2}},
		{Stream: true, StreamOptions: &models.StreamOptions{ChunkSize: -1}},
	}
	for _, in := range cases {
		resp := post(t, s.URL+"/v1/lorem", in)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, "%+v", in)

		var out models.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		require.NotEmpty(t, out.Error.Message)
	}

	resp, err := http.Post(s.URL+"/v1/lorem", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	get, err := http.Get(s.URL + "/v1/lorem")
	require.NoError(t, err)
	defer get.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, get.StatusCode)
}

func TestRouter_Languages(t *testing.T) {
	s := newTestServer(t, Config{})

	resp, err := http.Get(s.URL + "/v1/languages")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out models.LanguageList
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Data, 3)
	require.Equal(t, "latin", out.Data[0].ID)
	require.True(t, strings.HasPrefix(out.Data[0].Common, "lorem ipsum dolor"))
}

func TestRouter_UsesStreamDefaults(t *testing.T) {
	defaults := streaming.StreamOptions{DelayMin: time.Millisecond, DelayMax: 2 * time.Millisecond, TokensPerSecond: 1000}
	s := newTestServer(t, Config{Stream: defaults})

	resp := post(t, s.URL+"/v1/lorem", models.LoremRequest{Parent: "ul", Repeat: 2, WordCount: utils.Pointer(10), Stream: true})
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	scanner := bufio.NewScanner(resp.Body)
	chunkCount := 0
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "data: {") {
			chunkCount++
		}
		if strings.Contains(line, "[DONE]") {
			break
		}
	}
	// 2 items of 10 words in chunks of 3, plus the final chunk
	require.Equal(t, 9, chunkCount)
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t, Config{})

	for _, path := range []string{"/", "/health"} {
		resp, err := http.Get(s.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	resp, err := http.Get(s.URL + "/missing")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
