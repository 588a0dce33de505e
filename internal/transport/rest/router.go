package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/novadesk/agency-management/internal/attendance"
	"github.com/novadesk/agency-management/internal/auth"
	"github.com/novadesk/agency-management/internal/chat"
	"github.com/novadesk/agency-management/internal/employee"
	"github.com/novadesk/agency-management/internal/hrsettings"
	"github.com/novadesk/agency-management/internal/notification"
	"github.com/novadesk/agency-management/internal/payroll"
	"github.com/novadesk/agency-management/internal/project"
	"github.com/novadesk/agency-management/internal/realtime"
	"github.com/novadesk/agency-management/internal/transport/middleware"
	"github.com/novadesk/agency-management/internal/transport/swagger"
)

// Handlers bundles every route handler the server wires up.
type Handlers struct {
	Auth         *auth.Handler
	Employee     *employee.Handler
	Attendance   *attendance.Handler
	Settings     *hrsettings.Handler
	Payroll      *payroll.Handler
	Project      *project.Handler
	Chat         *chat.Handler
	Notification *notification.Handler
	Hub          *realtime.Hub
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	// Websocket endpoint authenticates via token query parameter, outside
	// the HTTP auth middleware.
	if h.Hub != nil {
		router.Get("/ws", h.Hub.HandleWS)
	}

	staffOnly := h.Auth.RequireRoles(auth.RoleAdmin, auth.RoleOperationalHead)
	adminOnly := h.Auth.RequireRoles(auth.RoleAdmin)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			// Employee administration is a staff concern.
			pr.Route("/employees", func(er chi.Router) {
				er.Use(staffOnly)
				er.Post("/", h.Employee.CreateEmployee)
				er.Get("/", h.Employee.ListEmployees)
				er.Get("/{id}", h.Employee.GetEmployee)
				er.Patch("/{id}", h.Employee.UpdateEmployee)
				er.Post("/{id}/salary-structures", h.Employee.AddSalaryStructure)
				er.Get("/{id}/salary-structures", h.Employee.ListSalaryStructures)
			})

			pr.Route("/attendance", func(ar chi.Router) {
				ar.Post("/check-in", h.Attendance.CheckIn)
				ar.Post("/check-out", h.Attendance.CheckOut)
				ar.With(staffOnly).Post("/manual", h.Attendance.ManualEntry)
				ar.With(staffOnly).Get("/", h.Attendance.GetRange)
			})

			pr.Route("/settings", func(sr chi.Router) {
				sr.Use(adminOnly)
				sr.Get("/", h.Settings.GetSettings)
				sr.Put("/", h.Settings.UpdateSettings)
			})

			pr.Route("/payrolls", func(py chi.Router) {
				py.Use(staffOnly)
				py.Post("/generate", h.Payroll.Generate)
				py.Post("/generate-monthly", h.Payroll.GenerateMonthly)
				py.Get("/", h.Payroll.ListPayrolls)
				py.Get("/{id}", h.Payroll.GetPayroll)
				py.Post("/{id}/pay", h.Payroll.MarkPaid)
				py.Post("/{id}/adjustments", h.Payroll.AddAdjustment)
				py.Get("/{id}/adjustments", h.Payroll.ListAdjustments)
			})

			pr.Route("/projects", func(pj chi.Router) {
				pj.With(staffOnly).Post("/", h.Project.CreateProject)
				pj.Get("/", h.Project.ListProjects)
				pj.Get("/{id}", h.Project.GetProject)
				pj.With(staffOnly).Patch("/{id}", h.Project.UpdateProject)

				pj.With(staffOnly).Post("/{id}/tasks", h.Project.CreateTask)
				pj.Get("/{id}/tasks", h.Project.ListTasks)

				pj.Post("/{id}/messages", h.Chat.SendMessage)
				pj.Get("/{id}/messages", h.Chat.GetHistory)
			})

			pr.Patch("/tasks/{taskID}/status", h.Project.UpdateTaskStatus)

			pr.Route("/notifications", func(nr chi.Router) {
				nr.Get("/", h.Notification.ListNotifications)
				nr.Patch("/{id}/read", h.Notification.MarkRead)
				nr.Patch("/read-all", h.Notification.MarkAllRead)
			})
		})
	})
}
