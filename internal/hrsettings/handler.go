package hrsettings

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/novadesk/agency-management/internal/transport"
	"github.com/novadesk/agency-management/pkg/logger"
)

type ServiceAPI interface {
	Get(ctx context.Context) (*HrSettings, error)
	Update(ctx context.Context, dto UpdateSettingsDTO) (*HrSettings, error)
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

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Service.Get(r.Context())
	if err != nil {
		h.Logger.Error("GetSettings: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, settings)
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var dto UpdateSettingsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	settings, err := h.Service.Update(r.Context(), dto)
	if err != nil {
		h.Logger.Error("UpdateSettings: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, settings)
}
