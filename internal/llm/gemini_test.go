package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josinaldojr/legal-chat-rag/internal/rag"
)

type fakeGemini struct {
	mu     sync.Mutex
	bodies map[string]string
	answer string
	values []float32
	status int
}

func (f *fakeGemini) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.bodies[r.URL.Path] = string(body)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(`{"error":{"code":500,"message":"backend unavailable","status":"INTERNAL"}}`))
		return
	}

	if strings.Contains(r.URL.Path, "mbedContent") {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"embeddings": []map[string]any{{"values": f.values}},
		})
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{
				"role":  "model",
				"parts": []map[string]any{{"text": f.answer}},
			},
		}},
	})
}

func (f *fakeGemini) bodyFor(suffix string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for path, b := range f.bodies {
		if strings.HasSuffix(path, suffix) {
			return b
		}
	}
	return ""
}

func newTestClient(t *testing.T, fake *fakeGemini, opts Options) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	opts.APIKey = "test-key"
	opts.BaseURL = srv.URL
	c, err := NewGeminiClient(context.Background(), opts)
	require.NoError(t, err)
	return c
}

func TestNewGeminiClient_RequiresAPIKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), Options{})
	require.Error(t, err)
}

func TestGeminiClient_Generate(t *testing.T) {
	fake := &fakeGemini{bodies: map[string]string{}, answer: "  Section 302 prescribes death or life imprisonment.  "}
	c := newTestClient(t, fake, Options{Temperature: 0.5, MaxOutputTokens: 1024})

	got, err := c.Generate(context.Background(), rag.Prompt{Text: "QUESTION: What is Section 302 IPC?", Language: "Hindi"})
	require.NoError(t, err)
	assert.Equal(t, "Section 302 prescribes death or life imprisonment.", got)

	body := fake.bodyFor(":generateContent")
	assert.Contains(t, body, "What is Section 302 IPC?")
	assert.Contains(t, body, "Answer in Hindi.")
	assert.Contains(t, body, "1024")
}

func TestGeminiClient_GenerateEmptyAnswer(t *testing.T) {
	fake := &fakeGemini{bodies: map[string]string{}, answer: "   "}
	c := newTestClient(t, fake, Options{})

	_, err := c.Generate(context.Background(), rag.Prompt{Text: "q"})
	require.Error(t, err)
}

func TestGeminiClient_GenerateUpstreamError(t *testing.T) {
	fake := &fakeGemini{bodies: map[string]string{}, status: http.StatusInternalServerError}
	c := newTestClient(t, fake, Options{})

	_, err := c.Generate(context.Background(), rag.Prompt{Text: "q"})
	require.Error(t, err)
}

func TestGeminiClient_Embed(t *testing.T) {
	fake := &fakeGemini{bodies: map[string]string{}, values: []float32{0.1, 0.2, 0.3}}
	c := newTestClient(t, fake, Options{EmbeddingDim: 3})

	got, err := c.Embed(context.Background(), "What is\n\nSection 302   IPC?")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, got)
}

func TestGeminiClient_EmbedDimensionMismatch(t *testing.T) {
	fake := &fakeGemini{bodies: map[string]string{}, values: []float32{0.1, 0.2}}
	c := newTestClient(t, fake, Options{EmbeddingDim: 3})

	_, err := c.Embed(context.Background(), "q")
	require.Error(t, err)
}

func TestGeminiClient_EmbedEmptyText(t *testing.T) {
	fake := &fakeGemini{bodies: map[string]string{}}
	c := newTestClient(t, fake, Options{})

	_, err := c.Embed(context.Background(), " \n\t ")
	require.Error(t, err)
	assert.Empty(t, fake.bodies)
}

func TestNormalizeWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", normalizeWhitespace("  a \n\n b\t\tc "))
	assert.Equal(t, "", normalizeWhitespace(" \n "))
}
