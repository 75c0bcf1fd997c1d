package rag

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultMemoryWindow = 2
	defaultLLMTimeout   = 30 * time.Second
)

// ServiceConfig zero values select the defaults: top 4 passages, a two-turn
// memory window, a 30s model timeout and the built-in template. Callers
// that need other values validate them before construction.
type ServiceConfig struct {
	TopK         int
	MemoryWindow int
	LLMTimeout   time.Duration
	Template     *PromptTemplate
}

// Service answers one chat request at a time. It holds no per-conversation
// state, so a single instance is shared by all requests.
type Service struct {
	retriever  *Retriever
	llm        Generator
	template   *PromptTemplate
	window     int
	llmTimeout time.Duration
	logger     *zap.Logger
}

func NewService(index Index, embeddings Embedder, llm Generator, cfg ServiceConfig, logger *zap.Logger) *Service {
	if cfg.MemoryWindow <= 0 {
		cfg.MemoryWindow = defaultMemoryWindow
	}
	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = defaultLLMTimeout
	}
	if cfg.Template == nil {
		cfg.Template = DefaultPromptTemplate()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		retriever:  NewRetriever(index, embeddings, cfg.TopK),
		llm:        llm,
		template:   cfg.Template,
		window:     cfg.MemoryWindow,
		llmTimeout: cfg.LLMTimeout,
		logger:     logger,
	}
}

// Chat validates the request, retrieves passages, assembles the prompt and
// calls the model once. The returned history is the caller's history with
// the new turn appended.
func (s *Service) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	q := strings.TrimSpace(req.Message)
	if q == "" {
		return nil, validationErr("message", "is required")
	}

	history, err := parseHistory(req.ChatHistory)
	if err != nil {
		return nil, err
	}

	memory := BuildContext(history, s.window)

	passages, err := s.retriever.Retrieve(ctx, q)
	if err != nil {
		return nil, err
	}

	prompt := s.template.Assemble(passages, memory, q)

	s.logger.Debug("prompt assembled",
		zap.Int("passages", len(passages)),
		zap.Int("history_turns", len(history)),
		zap.Int("memory_turns", len(memory.Turns)),
		zap.String("language", prompt.Language),
	)

	genCtx, cancel := context.WithTimeout(ctx, s.llmTimeout)
	defer cancel()

	answer, err := s.llm.Generate(genCtx, prompt)
	if err != nil {
		return nil, dependencyErr("generate answer", err)
	}

	out := make([]Turn, 0, len(history)+1)
	out = append(out, history...)
	out = append(out, Turn{User: req.Message, Assistant: answer})

	return &ChatResponse{
		Answer:      answer,
		ChatHistory: out,
	}, nil
}
