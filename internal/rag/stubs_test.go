package rag

import (
	"context"
	"sync"
)

type stubEmbedder struct {
	mu    sync.Mutex
	calls int
	vec   []float32
	err   error
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if s.vec == nil {
		return []float32{0.1, 0.2, 0.3}, nil
	}
	return s.vec, nil
}

type stubIndex struct {
	mu       sync.Mutex
	calls    int
	lastK    int
	passages []Passage
	err      error
}

func (s *stubIndex) Search(_ context.Context, _ []float32, k int) ([]Passage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastK = k
	if s.err != nil {
		return nil, s.err
	}
	if len(s.passages) > k {
		return s.passages[:k], nil
	}
	return s.passages, nil
}

func (s *stubIndex) Close() error { return nil }

type stubGenerator struct {
	mu      sync.Mutex
	calls   int
	prompts []Prompt
	answer  string
	err     error
}

func (s *stubGenerator) Generate(ctx context.Context, p Prompt) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.prompts = append(s.prompts, p)
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func (s *stubGenerator) lastPrompt() Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prompts[len(s.prompts)-1]
}

func ptr(s string) *string { return &s }

func ipcPassages() []Passage {
	return []Passage{
		{ID: 1, Section: "302", Title: "Punishment for murder", Content: "Whoever commits murder shall be punished with death, or imprisonment for life, and shall also be liable to fine."},
		{ID: 2, Section: "300", Title: "Murder", Content: "Except in the cases hereinafter excepted, culpable homicide is murder."},
		{ID: 3, Section: "299", Title: "Culpable homicide", Content: "Whoever causes death by doing an act with the intention of causing death commits culpable homicide."},
		{ID: 4, Section: "304", Title: "Punishment for culpable homicide", Content: "Culpable homicide not amounting to murder is punishable with imprisonment."},
		{ID: 5, Section: "307", Title: "Attempt to murder", Content: "Whoever does any act with such intention or knowledge shall be guilty of murder."},
	}
}
