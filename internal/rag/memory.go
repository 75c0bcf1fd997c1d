package rag

import (
	"fmt"
	"strings"
)

// MemoryContext is the window of recent turns fed to the model.
type MemoryContext struct {
	Turns []Turn
}

// BuildContext keeps the last window turns of history. The input slice is
// never modified; the returned turns are a copy.
func BuildContext(history []Turn, window int) MemoryContext {
	if window <= 0 || len(history) == 0 {
		return MemoryContext{}
	}

	start := 0
	if len(history) > window {
		start = len(history) - window
	}

	turns := make([]Turn, len(history)-start)
	copy(turns, history[start:])
	return MemoryContext{Turns: turns}
}

// String renders the window as alternating Human/Assistant lines.
func (m MemoryContext) String() string {
	if len(m.Turns) == 0 {
		return ""
	}

	var b strings.Builder
	for i, t := range m.Turns {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Human: ")
		b.WriteString(t.User)
		b.WriteString("\nAssistant: ")
		b.WriteString(t.Assistant)
	}
	return b.String()
}

// parseHistory turns client entries into Turns, rejecting entries that miss
// either key.
func parseHistory(entries []TurnPayload) ([]Turn, error) {
	history := make([]Turn, 0, len(entries))
	for i, e := range entries {
		field := fmt.Sprintf("chat_history[%d]", i)
		if e.User == nil {
			return nil, validationErr(field+".user", "is required")
		}
		if e.Assistant == nil {
			return nil, validationErr(field+".assistant", "is required")
		}
		history = append(history, Turn{User: *e.User, Assistant: *e.Assistant})
	}
	return history, nil
}
