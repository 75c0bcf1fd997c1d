package rag

// Turn
// One user/assistant exchange. History order is conversation order.
type Turn struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// TurnPayload
// A history entry as sent by the client. Pointers let validation tell a
// missing key apart from an empty string.
type TurnPayload struct {
	User      *string `json:"user"`
	Assistant *string `json:"assistant"`
}

// Passage
// A chunk of legal text returned by the index, most similar first.
type Passage struct {
	ID      int64   `json:"id"`
	Section string  `json:"section"`
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Source  string  `json:"source"`
	Score   float32 `json:"score"`
}

// ChatRequest
// Payload of POST /chat. chat_history is optional.
type ChatRequest struct {
	Message     string        `json:"message"`
	ChatHistory []TurnPayload `json:"chat_history"`
}

// ChatResponse
// answer plus the caller's history with the new turn appended.
type ChatResponse struct {
	Answer      string `json:"answer"`
	ChatHistory []Turn `json:"chat_history"`
}

// ResetResponse is the fixed body returned by POST /reset.
type ResetResponse struct {
	Message string `json:"message"`
}

const ResetMessage = "Conversation reset successfully"
