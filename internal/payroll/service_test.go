package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/novadesk/agency-management/internal"
	"github.com/novadesk/agency-management/internal/attendance"
	"github.com/novadesk/agency-management/internal/employee"
	"github.com/novadesk/agency-management/internal/hrsettings"
)

// In-memory repository standing in for the GORM implementation.
type mockPayrollRepository struct {
	payrolls    map[int64]*Payroll
	adjustments map[int64][]*Adjustment
	nextID      int64
}

func newMockPayrollRepository() *mockPayrollRepository {
	return &mockPayrollRepository{
		payrolls:    map[int64]*Payroll{},
		adjustments: map[int64][]*Adjustment{},
		nextID:      1,
	}
}

func (m *mockPayrollRepository) Create(_ context.Context, p *Payroll) error {
	for _, existing := range m.payrolls {
		if existing.EmployeeID == p.EmployeeID && existing.Month == p.Month && existing.Year == p.Year {
			return fmt.Errorf("duplicate key value violates unique constraint")
		}
	}
	p.ID = m.nextID
	m.nextID++
	m.payrolls[p.ID] = p
	return nil
}

func (m *mockPayrollRepository) GetByID(_ context.Context, id int64) (*Payroll, error) {
	if p, ok := m.payrolls[id]; ok {
		return p, nil
	}
	return nil, internal.ErrPayrollNotFound
}

func (m *mockPayrollRepository) GetByEmployeeAndPeriod(_ context.Context, employeeID int64, month, year int) (*Payroll, error) {
	for _, p := range m.payrolls {
		if p.EmployeeID == employeeID && p.Month == month && p.Year == year {
			return p, nil
		}
	}
	return nil, nil
}

func (m *mockPayrollRepository) ListByPeriod(_ context.Context, month, year int) ([]*Payroll, error) {
	var out []*Payroll
	for _, p := range m.payrolls {
		if p.Month == month && p.Year == year {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPayrollRepository) ListByEmployee(_ context.Context, employeeID int64) ([]*Payroll, error) {
	var out []*Payroll
	for _, p := range m.payrolls {
		if p.EmployeeID == employeeID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPayrollRepository) Update(_ context.Context, p *Payroll) error {
	m.payrolls[p.ID] = p
	return nil
}

func (m *mockPayrollRepository) CreateAdjustment(_ context.Context, a *Adjustment) error {
	a.ID = m.nextID
	m.nextID++
	m.adjustments[a.PayrollID] = append(m.adjustments[a.PayrollID], a)
	return nil
}

func (m *mockPayrollRepository) ListAdjustments(_ context.Context, payrollID int64) ([]*Adjustment, error) {
	return m.adjustments[payrollID], nil
}

type mockEmployeeLister struct {
	active []*employee.Employee
}

func (m *mockEmployeeLister) ListActive(_ context.Context) ([]*employee.Employee, error) {
	return m.active, nil
}

var _ = ginkgo.Describe("Payroll Service", func() {
	var (
		repo     *mockPayrollRepository
		lister   *mockEmployeeLister
		salaries *mockSalarySource
		service  *Service
		ctx      context.Context
	)

	const actorID = int64(100)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		repo = newMockPayrollRepository()

		staff := []*employee.Employee{
			{ID: 1, EmployeeCode: "EMP-001", Name: "Ayesha Khan", Status: employee.StatusActive},
			{ID: 2, EmployeeCode: "EMP-002", Name: "Bilal Raza", Status: employee.StatusActive},
			{ID: 3, EmployeeCode: "EMP-003", Name: "Carol Mendes", Status: employee.StatusActive},
		}
		lister = &mockEmployeeLister{active: staff}

		employees := &mockEmployeeSource{employees: map[int64]*employee.Employee{
			1: staff[0], 2: staff[1], 3: staff[2],
		}}
		salaries = &mockSalarySource{structures: map[int64][]*employee.SalaryStructure{
			1: {{EmployeeID: 1, BasicSalary: 26000, EffectiveFrom: day(2025, time.January, 1)}},
			2: {{EmployeeID: 2, BasicSalary: 52000, EffectiveFrom: day(2025, time.January, 1)}},
			// Employee 3 deliberately has no salary structure.
		}}
		records := &mockAttendanceSource{records: map[int64][]*attendance.Record{}}
		settings := &mockSettingsSource{settings: hrsettings.Defaults()}

		engine := NewEngine(employees, salaries, records, settings)
		service = NewService(repo, engine, lister, slog.Default())
	})

	ginkgo.Describe("GeneratePayroll", func() {
		ginkgo.It("persists a draft payroll", func() {
			p, err := service.GeneratePayroll(ctx, 1, 4, 2025, actorID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(p.ID).NotTo(gomega.BeZero())
			gomega.Expect(p.Status).To(gomega.Equal(StatusDraft))
			gomega.Expect(p.GeneratedBy).To(gomega.Equal(actorID))
		})

		ginkgo.It("refuses a second generation for the same period", func() {
			_, err := service.GeneratePayroll(ctx, 1, 4, 2025, actorID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = service.GeneratePayroll(ctx, 1, 4, 2025, actorID)
			gomega.Expect(err).To(gomega.MatchError(ErrAlreadyGenerated))
		})

		ginkgo.It("allows the same employee in a different period", func() {
			_, err := service.GeneratePayroll(ctx, 1, 4, 2025, actorID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = service.GeneratePayroll(ctx, 1, 5, 2025, actorID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("GenerateMonthlyPayroll", func() {
		ginkgo.It("covers the roster and counts missing structures as failures", func() {
			result, err := service.GenerateMonthlyPayroll(ctx, 4, 2025, actorID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(result.Generated).To(gomega.Equal(2))
			gomega.Expect(result.Skipped).To(gomega.BeZero())
			gomega.Expect(result.Failed).To(gomega.Equal(1))
		})

		ginkgo.It("is idempotent: a re-run only skips, never duplicates", func() {
			_, err := service.GenerateMonthlyPayroll(ctx, 4, 2025, actorID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			result, err := service.GenerateMonthlyPayroll(ctx, 4, 2025, actorID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(result.Generated).To(gomega.BeZero())
			gomega.Expect(result.Skipped).To(gomega.Equal(2))
			gomega.Expect(result.Failed).To(gomega.Equal(1))

			payrolls, err := repo.ListByPeriod(ctx, 4, 2025)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(payrolls).To(gomega.HaveLen(2))
		})

		ginkgo.It("fills the gap once a structure appears", func() {
			_, err := service.GenerateMonthlyPayroll(ctx, 4, 2025, actorID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			salaries.structures[3] = []*employee.SalaryStructure{{
				EmployeeID:    3,
				BasicSalary:   39000,
				EffectiveFrom: day(2025, time.January, 1),
			}}

			result, err := service.GenerateMonthlyPayroll(ctx, 4, 2025, actorID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(result.Generated).To(gomega.Equal(1))
			gomega.Expect(result.Skipped).To(gomega.Equal(2))
			gomega.Expect(result.Failed).To(gomega.BeZero())
		})
	})

	ginkgo.Describe("MarkPaid", func() {
		ginkgo.It("transitions draft to paid with a timestamp", func() {
			p, err := service.GeneratePayroll(ctx, 1, 4, 2025, actorID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			paid, err := service.MarkPaid(ctx, p.ID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(paid.Status).To(gomega.Equal(StatusPaid))
			gomega.Expect(paid.PaidAt).NotTo(gomega.BeNil())
		})

		ginkgo.It("refuses to pay twice", func() {
			p, err := service.GeneratePayroll(ctx, 1, 4, 2025, actorID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = service.MarkPaid(ctx, p.ID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = service.MarkPaid(ctx, p.ID)
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("AddAdjustment", func() {
		ginkgo.It("re-totals deductions and net", func() {
			p, err := service.GeneratePayroll(ctx, 1, 4, 2025, actorID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			netBefore := p.NetSalary

			updated, err := service.AddAdjustment(ctx, p.ID, CreateAdjustmentDTO{
				Kind:   AdjustmentKindLoan,
				Amount: 5000,
				Note:   "laptop loan installment",
			}, actorID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(updated.LoanDeduction).To(gomega.BeNumerically("~", 5000.00, 0.001))
			gomega.Expect(updated.NetSalary).To(gomega.BeNumerically("~", netBefore-5000, 0.001))
		})

		ginkgo.It("lets an advance push net below zero", func() {
			p, err := service.GeneratePayroll(ctx, 1, 4, 2025, actorID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			updated, err := service.AddAdjustment(ctx, p.ID, CreateAdjustmentDTO{
				Kind:   AdjustmentKindAdvance,
				Amount: p.NetSalary + 1000,
			}, actorID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(updated.NetSalary).To(gomega.BeNumerically("~", -1000.00, 0.001))
		})

		ginkgo.It("rejects adjustments on a paid payroll", func() {
			p, err := service.GeneratePayroll(ctx, 1, 4, 2025, actorID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = service.MarkPaid(ctx, p.ID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = service.AddAdjustment(ctx, p.ID, CreateAdjustmentDTO{
				Kind:   AdjustmentKindLoan,
				Amount: 100,
			}, actorID)
			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("rejects an unknown kind", func() {
			p, err := service.GeneratePayroll(ctx, 1, 4, 2025, actorID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = service.AddAdjustment(ctx, p.ID, CreateAdjustmentDTO{
				Kind:   "bonus",
				Amount: 100,
			}, actorID)
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})
})
