package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/novadesk/agency-management/internal/employee"
	"github.com/novadesk/agency-management/internal/hrsettings"
	"github.com/novadesk/agency-management/internal/project"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{
				"notifications", "chat_messages", "tasks", "projects",
				"payroll_adjustments", "payrolls", "attendance_records",
				"salary_structures", "employees", "hr_settings", "users",
			} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)

		seedUser(db, "admin@novadesk.dev", "Admin", "admin", nil, string(hash))
		seedUser(db, "ops@novadesk.dev", "Olivia Park", "operational_head", nil, string(hash))
		seedUser(db, "dev@novadesk.dev", "Dana Wu", "developer", nil, string(hash))

		clientID := int64(1)
		seedUser(db, "client@acme.dev", "Acme Contact", "client", &clientID, string(hash))

		var settingsCount int64
		db.Model(&hrsettings.HrSettings{}).Count(&settingsCount)
		if settingsCount == 0 {
			if err := db.Create(hrsettings.Defaults()).Error; err != nil {
				log.Fatalf("failed to seed hr settings: %v", err)
			}
			fmt.Println("Seeded default hr settings")
		}

		seedEmployees(db)
		seedProjects(db, clientID)

		fmt.Println("Seeding complete")
	},
}

func seedUser(db *gorm.DB, email, name, role string, clientID *int64, hash string) {
	var exists int
	row := db.Raw("SELECT 1 FROM users WHERE email = ?", email).Row()
	if err := row.Scan(&exists); err == nil {
		fmt.Printf("user %s already exists\n", email)
		return
	}

	err := db.Exec(
		"INSERT INTO users (email, name, password_hash, role, client_id, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, true, now(), now())",
		email, name, hash, role, clientID,
	).Error
	if err != nil {
		log.Fatalf("failed to insert user %s: %v", email, err)
	}
	fmt.Println("Seeded user:", email)
}

func seedEmployees(db *gorm.DB) {
	var count int64
	db.Model(&employee.Employee{}).Count(&count)
	if count > 0 {
		return
	}

	now := time.Now()
	staff := []struct {
		code, name, email, dept, title string
		basic                          float64
	}{
		{"EMP-001", "Dana Wu", "dev@novadesk.dev", "Engineering", "Developer", 52000},
		{"EMP-002", "Bilal Raza", "bilal@novadesk.dev", "Engineering", "Developer", 48000},
		{"EMP-003", "Carol Mendes", "carol@novadesk.dev", "Design", "Designer", 39000},
	}

	for _, s := range staff {
		emp := &employee.Employee{
			EmployeeCode: s.code,
			Name:         s.name,
			Email:        s.email,
			Department:   s.dept,
			Designation:  s.title,
			JoinDate:     now.AddDate(-1, 0, 0),
			Status:       employee.StatusActive,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := db.Create(emp).Error; err != nil {
			log.Fatalf("failed to seed employee %s: %v", s.code, err)
		}

		structure := &employee.SalaryStructure{
			EmployeeID:      emp.ID,
			BasicSalary:     s.basic,
			HouseAllowance:  s.basic * 0.2,
			TravelAllowance: s.basic * 0.05,
			EffectiveFrom:   now.AddDate(-1, 0, 0),
			CreatedAt:       now,
		}
		if err := db.Create(structure).Error; err != nil {
			log.Fatalf("failed to seed salary structure for %s: %v", s.code, err)
		}
	}
	fmt.Println("Seeded employees and salary structures")
}

func seedProjects(db *gorm.DB, clientID int64) {
	var count int64
	db.Model(&project.Project{}).Count(&count)
	if count > 0 {
		return
	}

	var adminID int64
	if err := db.Raw("SELECT id FROM users WHERE role = 'admin' LIMIT 1").Row().Scan(&adminID); err != nil {
		log.Fatalf("failed to look up admin user: %v", err)
	}
	var devID int64
	if err := db.Raw("SELECT id FROM users WHERE role = 'developer' LIMIT 1").Row().Scan(&devID); err != nil {
		log.Fatalf("failed to look up developer user: %v", err)
	}

	now := time.Now()
	p := &project.Project{
		Name:        "Website Revamp",
		Description: "Marketing site rebuild for Acme",
		ClientID:    clientID,
		CreatedBy:   adminID,
		Status:      project.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.Create(p).Error; err != nil {
		log.Fatalf("failed to seed project: %v", err)
	}

	task := &project.Task{
		ProjectID:  p.ID,
		AssignedTo: &devID,
		Title:      "Build landing page",
		Status:     project.TaskStatusTodo,
		CreatedBy:  adminID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := db.Create(task).Error; err != nil {
		log.Fatalf("failed to seed task: %v", err)
	}
	fmt.Println("Seeded demo project and task")
}
