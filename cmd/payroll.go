package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	attendancepg "github.com/novadesk/agency-management/internal/attendance/postgres"
	employeepg "github.com/novadesk/agency-management/internal/employee/postgres"
	settingspg "github.com/novadesk/agency-management/internal/hrsettings/postgres"
	"github.com/novadesk/agency-management/internal/payroll"
	payrollpg "github.com/novadesk/agency-management/internal/payroll/postgres"
	"github.com/novadesk/agency-management/pkg/logger"
)

var (
	payrollMonth int
	payrollYear  int
	payrollSpec  string
)

var payrollCmd = &cobra.Command{
	Use:   "payroll",
	Short: "Payroll batch operations",
	Long:  `Generate monthly payrolls from the command line or on a schedule.`,
}

var payrollGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate payrolls for one period",
	Run: func(cmd *cobra.Command, args []string) {
		service, cleanup := buildPayrollService()
		defer cleanup()

		runBatch(service, payrollMonth, payrollYear)
	},
}

var payrollScheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the recurring monthly payroll job",
	Long:  `Runs the payroll batch for the previous month on a cron schedule and blocks until interrupted.`,
	Run: func(cmd *cobra.Command, args []string) {
		service, cleanup := buildPayrollService()
		defer cleanup()

		c := cron.New()
		_, err := c.AddFunc(payrollSpec, func() {
			prev := time.Now().AddDate(0, -1, 0)
			runBatch(service, int(prev.Month()), prev.Year())
		})
		if err != nil {
			log.Fatalf("invalid cron spec %q: %v", payrollSpec, err)
		}

		c.Start()
		fmt.Printf("payroll scheduler running with spec %q\n", payrollSpec)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		<-c.Stop().Done()
		fmt.Println("payroll scheduler stopped")
	},
}

func init() {
	now := time.Now()
	payrollGenerateCmd.Flags().IntVar(&payrollMonth, "month", int(now.Month()), "period month (1-12)")
	payrollGenerateCmd.Flags().IntVar(&payrollYear, "year", now.Year(), "period year")
	payrollScheduleCmd.Flags().StringVar(&payrollSpec, "spec", "0 2 1 * *", "cron spec for the batch run")

	payrollCmd.AddCommand(payrollGenerateCmd)
	payrollCmd.AddCommand(payrollScheduleCmd)
}

func buildPayrollService() (*payroll.Service, func()) {
	cfg, err := loadConfig(".")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger.Init("development", cfg.Observability.Logging.Level)

	sqlDB, err := initDB(cfg.Database)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}
	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to init orm: %v", err)
	}

	employeeRepo := employeepg.NewEmployeeRepository(db)
	attendanceRepo := attendancepg.NewAttendanceRepository(db)
	settingsRepo := settingspg.NewSettingsRepository(db)
	payrollRepo := payrollpg.NewPayrollRepository(db)

	engine := payroll.NewEngine(employeeRepo, employeeRepo, attendanceRepo, settingsRepo)
	service := payroll.NewService(payrollRepo, engine, employeeRepo, logger.LoggerWrapper())

	return service, func() { _ = sqlDB.Close() }
}

// runBatch is invoked as the system actor, not a logged-in user.
func runBatch(service *payroll.Service, month, year int) {
	result, err := service.GenerateMonthlyPayroll(context.Background(), month, year, 0)
	if err != nil {
		log.Printf("payroll batch failed: %v", err)
		return
	}
	fmt.Printf("payroll %d/%d: generated=%d skipped=%d failed=%d\n",
		month, year, result.Generated, result.Skipped, result.Failed)
}
