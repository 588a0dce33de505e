package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/novadesk/agency-management/internal"
	"github.com/novadesk/agency-management/internal/attendance"
	attendancepg "github.com/novadesk/agency-management/internal/attendance/postgres"
	"github.com/novadesk/agency-management/internal/auth"
	authpg "github.com/novadesk/agency-management/internal/auth/postgres"
	"github.com/novadesk/agency-management/internal/chat"
	chatpg "github.com/novadesk/agency-management/internal/chat/postgres"
	"github.com/novadesk/agency-management/internal/core/events"
	"github.com/novadesk/agency-management/internal/employee"
	employeepg "github.com/novadesk/agency-management/internal/employee/postgres"
	"github.com/novadesk/agency-management/internal/hrsettings"
	settingspg "github.com/novadesk/agency-management/internal/hrsettings/postgres"
	"github.com/novadesk/agency-management/internal/notification"
	notificationpg "github.com/novadesk/agency-management/internal/notification/postgres"
	"github.com/novadesk/agency-management/internal/payroll"
	payrollpg "github.com/novadesk/agency-management/internal/payroll/postgres"
	"github.com/novadesk/agency-management/internal/project"
	projectpg "github.com/novadesk/agency-management/internal/project/postgres"
	"github.com/novadesk/agency-management/internal/realtime"
	"github.com/novadesk/agency-management/internal/transport/rest"
	"github.com/novadesk/agency-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server and websocket hub to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Gorm     *gorm.DB
	Router   *chi.Mux
	Hub      *realtime.Hub
	Handlers rest.Handlers
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Handlers,
		deps.Config.Server.AllowedOrigins, deps.Logger)

	deps.Hub.Start()

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		deps.Hub.Stop()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	env := "development"
	if config.Observability.Logging.Format == "json" {
		env = "production"
	}
	logger.Init(env, config.Observability.Logging.Level)
	log := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	bus := events.NewEventBus(log)

	// Repositories
	authRepo := authpg.NewRepository(gormDB)
	employeeRepo := employeepg.NewEmployeeRepository(gormDB)
	attendanceRepo := attendancepg.NewAttendanceRepository(gormDB)
	settingsRepo := settingspg.NewSettingsRepository(gormDB)
	payrollRepo := payrollpg.NewPayrollRepository(gormDB)
	projectRepo := projectpg.NewProjectRepository(gormDB)
	chatRepo := chatpg.NewChatRepository(gormDB)
	notificationRepo := notificationpg.NewNotificationRepository(gormDB)

	// Services
	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authRepo, tokenGen, config.Security.BCryptCost)
	employeeService := employee.NewService(employeeRepo, log)
	settingsService := hrsettings.NewService(settingsRepo, log)
	attendanceService := attendance.NewService(attendanceRepo, settingsService, log)
	projectService := project.NewService(projectRepo, bus)

	// The engine reads through the repositories directly; it must never
	// trigger the settings lazy-create or any other write.
	engine := payroll.NewEngine(employeeRepo, employeeRepo, attendanceRepo, settingsRepo)
	payrollService := payroll.NewService(payrollRepo, engine, employeeRepo, log)

	hub := realtime.NewHub(authService, projectService, config.Realtime, log)

	chatService := chat.NewService(chatRepo, projectService, hub, bus)
	notificationService := notification.NewService(notificationRepo)

	dispatcher := notification.NewDispatcher(notificationRepo, projectService, hub, log)
	dispatcher.RegisterSubscribers(bus)

	handlers := rest.Handlers{
		Auth:         auth.NewHandler(authService),
		Employee:     employee.NewHandler(employeeService),
		Attendance:   attendance.NewHandler(attendanceService),
		Settings:     hrsettings.NewHandler(settingsService),
		Payroll:      payroll.NewHandler(payrollService),
		Project:      project.NewHandler(projectService),
		Chat:         chat.NewHandler(chatService),
		Notification: notification.NewHandler(notificationService),
		Hub:          hub,
	}

	return &Dependencies{
		Config:   config,
		DB:       db,
		Gorm:     gormDB,
		Router:   chi.NewRouter(),
		Hub:      hub,
		Handlers: handlers,
		Logger:   log,
	}, nil
}

// initDB opens the pgx-backed connection pool shared by goose, health
// checks and the ORM.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
