package attendance

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/novadesk/agency-management/internal/transport"
	"github.com/novadesk/agency-management/pkg/logger"
)

type ServiceAPI interface {
	CheckIn(ctx context.Context, employeeID int64) (*Record, error)
	CheckOut(ctx context.Context, employeeID int64) (*Record, error)
	ManualEntry(ctx context.Context, dto ManualEntryDTO) (*Record, error)
	Range(ctx context.Context, q RangeQuery) ([]*Record, error)
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

type punchRequest struct {
	EmployeeID int64 `json:"employee_id"`
}

func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req punchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EmployeeID <= 0 {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.Service.CheckIn(r.Context(), req.EmployeeID)
	if err != nil {
		h.Logger.Error("CheckIn: service error", "error", err, "employee_id", req.EmployeeID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, record)
}

func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	var req punchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EmployeeID <= 0 {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.Service.CheckOut(r.Context(), req.EmployeeID)
	if err != nil {
		h.Logger.Error("CheckOut: service error", "error", err, "employee_id", req.EmployeeID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) ManualEntry(w http.ResponseWriter, r *http.Request) {
	var dto ManualEntryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.Service.ManualEntry(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) GetRange(w http.ResponseWriter, r *http.Request) {
	employeeID, err := strconv.ParseInt(r.URL.Query().Get("employee_id"), 10, 64)
	if err != nil || employeeID <= 0 {
		h.WriteError(w, http.StatusBadRequest, "invalid employee_id")
		return
	}

	from, err := time.Parse("2006-01-02", r.URL.Query().Get("from"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid from date")
		return
	}
	to, err := time.Parse("2006-01-02", r.URL.Query().Get("to"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid to date")
		return
	}

	records, err := h.Service.Range(r.Context(), RangeQuery{EmployeeID: employeeID, From: from, To: to})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, records)
}
