package payroll

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
	GeneratePayroll(ctx context.Context, employeeID int64, month, year int, actorID int64) (*Payroll, error)
	GenerateMonthlyPayroll(ctx context.Context, month, year int, actorID int64) (*BatchResult, error)
	GetPayroll(ctx context.Context, id int64) (*Payroll, error)
	ListByPeriod(ctx context.Context, month, year int) ([]*Payroll, error)
	ListByEmployee(ctx context.Context, employeeID int64) ([]*Payroll, error)
	MarkPaid(ctx context.Context, id int64) (*Payroll, error)
	AddAdjustment(ctx context.Context, payrollID int64, dto CreateAdjustmentDTO, actorID int64) (*Payroll, error)
	ListAdjustments(ctx context.Context, payrollID int64) ([]*Adjustment, error)
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

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var dto GeneratePayrollDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	p, err := h.Service.GeneratePayroll(r.Context(), dto.EmployeeID, dto.Month, dto.Year, actor.ID)
	if err != nil {
		h.Logger.Error("Generate: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) GenerateMonthly(w http.ResponseWriter, r *http.Request) {
	var dto GenerateMonthlyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	result, err := h.Service.GenerateMonthlyPayroll(r.Context(), dto.Month, dto.Year, actor.ID)
	if err != nil {
		h.Logger.Error("GenerateMonthly: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) GetPayroll(w http.ResponseWriter, r *http.Request) {
	id, err := h.pathID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid payroll ID")
		return
	}

	p, err := h.Service.GetPayroll(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, p)
}

// ListPayrolls filters by employee_id or by month+year query parameters.
func (h *Handler) ListPayrolls(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if raw := q.Get("employee_id"); raw != "" {
		employeeID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid employee_id")
			return
		}
		payrolls, err := h.Service.ListByEmployee(r.Context(), employeeID)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}
		h.WriteJSON(w, http.StatusOK, payrolls)
		return
	}

	month, err := strconv.Atoi(q.Get("month"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid month")
		return
	}
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid year")
		return
	}

	payrolls, err := h.Service.ListByPeriod(r.Context(), month, year)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, payrolls)
}

func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, err := h.pathID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid payroll ID")
		return
	}

	p, err := h.Service.MarkPaid(r.Context(), id)
	if err != nil {
		h.Logger.Error("MarkPaid: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) AddAdjustment(w http.ResponseWriter, r *http.Request) {
	id, err := h.pathID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid payroll ID")
		return
	}

	var dto CreateAdjustmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	p, err := h.Service.AddAdjustment(r.Context(), id, dto, actor.ID)
	if err != nil {
		h.Logger.Error("AddAdjustment: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) ListAdjustments(w http.ResponseWriter, r *http.Request) {
	id, err := h.pathID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid payroll ID")
		return
	}

	adjustments, err := h.Service.ListAdjustments(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, adjustments)
}

func (h *Handler) pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
