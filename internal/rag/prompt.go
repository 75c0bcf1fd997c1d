package rag

import (
	"fmt"
	"os"
	"strings"

	wl "github.com/abadojack/whatlanggo"
)

const (
	placeholderContext     = "{context}"
	placeholderChatHistory = "{chat_history}"
	placeholderQuestion    = "{question}"

	defaultLanguage   = "English"
	minLangConfidence = 0.5
)

const defaultTemplate = `You are a legal chat bot specializing in Indian Penal Code queries. Your primary objective is to provide accurate and concise information based on the user's questions. Do not generate your own questions and answers. Offer relevant context from the knowledge base while avoiding unnecessary details. Keep responses brief, to the point and in the established format. If a question falls outside the given context, do not rely on the chat history and answer from your own knowledge instead. Prioritize the user's query and do not pose additional questions. Deliver professional, precise and contextually relevant information about the Indian Penal Code.
CONTEXT: {context}
CHAT HISTORY: {chat_history}
QUESTION: {question}
ANSWER:
`

// Prompt is the assembled model input.
type Prompt struct {
	Text string
	// Language is the detected language of the question, used to steer
	// the answer language.
	Language string
}

// PromptTemplate fills {context}, {chat_history} and {question}.
type PromptTemplate struct {
	text string
}

func DefaultPromptTemplate() *PromptTemplate {
	return &PromptTemplate{text: defaultTemplate}
}

func NewPromptTemplate(text string) (*PromptTemplate, error) {
	for _, p := range []string{placeholderContext, placeholderChatHistory, placeholderQuestion} {
		if !strings.Contains(text, p) {
			return nil, fmt.Errorf("prompt template is missing placeholder %s", p)
		}
	}
	return &PromptTemplate{text: text}, nil
}

// LoadPromptTemplate reads a template from path, or returns the default
// template when path is empty.
func LoadPromptTemplate(path string) (*PromptTemplate, error) {
	if path == "" {
		return DefaultPromptTemplate(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt template: %w", err)
	}
	return NewPromptTemplate(string(data))
}

// Assemble is deterministic: equal inputs give equal prompts.
func (t *PromptTemplate) Assemble(passages []Passage, memory MemoryContext, question string) Prompt {
	r := strings.NewReplacer(
		placeholderContext, buildContextText(passages),
		placeholderChatHistory, memory.String(),
		placeholderQuestion, question,
	)
	return Prompt{
		Text:     r.Replace(t.text),
		Language: detectLang(question),
	}
}

func buildContextText(passages []Passage) string {
	parts := make([]string, 0, len(passages))
	for _, p := range passages {
		c := strings.TrimSpace(p.Content)
		if c == "" {
			continue
		}
		parts = append(parts, c)
	}
	return strings.Join(parts, "\n\n")
}

var langNames = map[string]string{
	"eng": "English",
	"hin": "Hindi",
	"ben": "Bengali",
	"mar": "Marathi",
	"tam": "Tamil",
	"tel": "Telugu",
	"guj": "Gujarati",
	"kan": "Kannada",
	"mal": "Malayalam",
	"pan": "Punjabi",
	"urd": "Urdu",
	"ori": "Oriya",
	"nep": "Nepali",
}

func detectLang(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultLanguage
	}
	info := wl.Detect(s)
	if info.Confidence < minLangConfidence {
		return defaultLanguage
	}
	if name, ok := langNames[strings.ToLower(wl.LangToString(info.Lang))]; ok {
		return name
	}
	return defaultLanguage
}
