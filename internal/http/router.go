package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func NewRouter(h *Handler, corsOrigins []string, logger *zap.Logger) http.Handler {
	r := mux.NewRouter()

	r.Use(Recoverer(logger))
	r.Use(Logging(logger))

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/chat", h.Chat).Methods(http.MethodPost)
	r.HandleFunc("/reset", h.Reset).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResp(codeNotFound, "route not found", req))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResp(codeMethodNotAllowed, "method not allowed", req))
	})

	return RequestID(CORS(corsOrigins)(r))
}
