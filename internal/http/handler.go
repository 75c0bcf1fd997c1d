package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/josinaldojr/legal-chat-rag/internal/rag"
)

const (
	codeValidation        = "VALIDATION_ERROR"
	codeDependency        = "DEPENDENCY_ERROR"
	codeDependencyTimeout = "DEPENDENCY_TIMEOUT"
	codeInternal          = "INTERNAL_ERROR"
	codeNotFound          = "NOT_FOUND"
	codeMethodNotAllowed  = "METHOD_NOT_ALLOWED"

	maxBodyBytes = 1 << 20
)

type Handler struct {
	ragService     *rag.Service
	requestTimeout time.Duration
	logger         *zap.Logger
}

func NewHandler(ragService *rag.Service, requestTimeout time.Duration, logger *zap.Logger) *Handler {
	if requestTimeout <= 0 {
		requestTimeout = 60 * time.Second
	}
	return &Handler{ragService: ragService, requestTimeout: requestTimeout, logger: logger}
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Message   string `json:"message"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req rag.ChatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp(codeValidation, "invalid json body: "+err.Error(), r))
		return
	}

	// A client disconnect does not abort generation; the call finishes or
	// hits the timeout.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.requestTimeout)
	defer cancel()

	resp, err := h.ragService.Chat(ctx, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Reset exists for client symmetry; the service keeps no session state.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rag.ResetResponse{Message: rag.ResetMessage})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *rag.ValidationError
	var derr *rag.DependencyError

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResp(codeValidation, verr.Error(), r))
	case errors.As(err, &derr):
		h.logger.Error("dependency failure",
			zap.String("op", derr.Op),
			zap.String("request_id", requestIDFrom(r)),
			zap.Error(derr.Err),
		)
		if errors.Is(err, context.DeadlineExceeded) {
			writeJSON(w, http.StatusServiceUnavailable, errorResp(codeDependencyTimeout, derr.Op+" timed out", r))
			return
		}
		writeJSON(w, http.StatusBadGateway, errorResp(codeDependency, derr.Op+" failed", r))
	default:
		h.logger.Error("chat failed", zap.String("request_id", requestIDFrom(r)), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp(codeInternal, "internal error", r))
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) ErrorResponse {
	return ErrorResponse{
		Message:   message,
		Code:      code,
		RequestID: requestIDFrom(r),
	}
}
