package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/oltpworks/wholesale/internal/neworder/application"
	"github.com/oltpworks/wholesale/internal/neworder/domain"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("neworder-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/orders", h.createOrder)
	r.Get("/health", h.health)
	return r
}

type errorBody struct {
	Kind  string `json:"kind"`
	Table string `json:"table,omitempty"`
	Key   string `json:"key,omitempty"`
	Error string `json:"error"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ProcessOrder")
	defer span.End()

	var req domain.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errorBody{Kind: "invalid_input", Error: "invalid body"})
		return
	}

	requestID := r.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}

	res, err := h.service.ProcessOrder(ctx, requestID, req)
	if err != nil {
		h.writeFailure(w, requestID, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(res)
}

func (h *Handler) writeFailure(w http.ResponseWriter, requestID string, err error) {
	if errors.Is(err, application.ErrDuplicateRequest) {
		writeError(w, http.StatusConflict, errorBody{Kind: "duplicate", Error: "request already processed"})
		return
	}

	body := errorBody{Kind: domain.KindOf(err).String(), Error: err.Error()}
	var de *domain.Error
	if errors.As(err, &de) {
		body.Table = de.Table
		body.Key = de.Key
	}

	var status int
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindInvalidInput:
		status = http.StatusUnprocessableEntity
	case domain.KindConflict:
		// Retryable; the terminal decides.
		status = http.StatusConflict
	case domain.KindTimeout:
		status = http.StatusGatewayTimeout
	default:
		status = http.StatusInternalServerError
		h.log.Error("order processing failed", "request_id", requestID, "err", err)
	}
	writeError(w, status, body)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func writeError(w http.ResponseWriter, status int, body errorBody) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
