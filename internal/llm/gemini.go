package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/josinaldojr/legal-chat-rag/internal/rag"
	"google.golang.org/genai"
)

const (
	defaultEmbeddingModel = "text-embedding-004"
	defaultChatModel      = "gemini-2.5-flash"
	defaultEmbedDim       = 768
)

type Options struct {
	APIKey          string
	ChatModel       string
	EmbeddingModel  string
	EmbeddingDim    int
	Temperature     float32
	MaxOutputTokens int32
	// BaseURL overrides the Gemini API endpoint.
	BaseURL string
}

type GeminiClient struct {
	client *genai.Client
	opts   Options
}

func NewGeminiClient(ctx context.Context, opts Options) (*GeminiClient, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY or GOOGLE_API_KEY")
	}
	if opts.ChatModel == "" {
		opts.ChatModel = defaultChatModel
	}
	if opts.EmbeddingModel == "" {
		opts.EmbeddingModel = defaultEmbeddingModel
	}
	if opts.EmbeddingDim <= 0 {
		opts.EmbeddingDim = defaultEmbedDim
	}

	cc := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	c, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiClient{client: c, opts: opts}, nil
}

func (g *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	clean := normalizeWhitespace(text)
	if clean == "" {
		return nil, fmt.Errorf("empty text for embedding")
	}

	dim := g.opts.EmbeddingDim
	resp, err := g.client.Models.EmbedContent(
		ctx,
		g.opts.EmbeddingModel,
		genai.Text(clean),
		&genai.EmbedContentConfig{
			TaskType:             "RETRIEVAL_QUERY",
			OutputDimensionality: genai.Ptr(int32(dim)),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini embed error: %w", err)
	}

	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}

	values := resp.Embeddings[0].Values
	if len(values) != dim {
		return nil, fmt.Errorf("unexpected embedding size %d (expected %d)", len(values), dim)
	}

	out := make([]float32, dim)
	copy(out, values)
	return out, nil
}

func (g *GeminiClient) Generate(ctx context.Context, prompt rag.Prompt) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.Text(systemInstruction(prompt.Language))[0],
		Temperature:       genai.Ptr(g.opts.Temperature),
		MaxOutputTokens:   g.opts.MaxOutputTokens,
	}

	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.opts.ChatModel,
		genai.Text(prompt.Text),
		cfg,
	)
	if err != nil {
		return "", fmt.Errorf("gemini generateContent error: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("empty response from gemini")
	}

	txt := strings.TrimSpace(resp.Text())
	if txt == "" {
		return "", fmt.Errorf("model returned empty text")
	}

	return txt, nil
}

// -------- helpers --------

func systemInstruction(lang string) string {
	if lang == "" {
		lang = "English"
	}
	return "You answer questions about the Indian Penal Code. " +
		"Answer in " + lang + ". " +
		"Ground the answer in the CONTEXT section of the prompt when it is relevant, " +
		"cite section numbers when the context names them, and never invent sections or punishments."
}

func normalizeWhitespace(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
			if !space {
				b.WriteRune(' ')
				space = true
			}
		} else {
			b.WriteRune(r)
			space = false
		}
	}
	return b.String()
}

var _ rag.Embedder = (*GeminiClient)(nil)
var _ rag.Generator = (*GeminiClient)(nil)
