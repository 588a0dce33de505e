package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/novadesk/agency-management/internal/auth"
	"github.com/novadesk/agency-management/internal/transport"
	"github.com/novadesk/agency-management/pkg/logger"
)

type ServiceAPI interface {
	Send(ctx context.Context, user *auth.User, projectID int64, dto SendMessageDTO) (*Message, error)
	History(ctx context.Context, user *auth.User, projectID int64, q HistoryQuery) ([]*Message, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid project ID")
		return
	}

	var dto SendMessageDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	m, err := h.Service.Send(r.Context(), actor, projectID, dto)
	if err != nil {
		h.Logger.Error("SendMessage: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, m)
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid project ID")
		return
	}

	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	q := HistoryQuery{}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		q.Limit, _ = strconv.Atoi(raw)
	}
	if raw := r.URL.Query().Get("before"); raw != "" {
		q.Before, _ = strconv.ParseInt(raw, 10, 64)
	}

	messages, err := h.Service.History(r.Context(), actor, projectID, q)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, messages)
}
