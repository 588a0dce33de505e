package attendance

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/novadesk/agency-management/internal"
	"github.com/novadesk/agency-management/internal/hrsettings"
)

func TestAttendance(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Attendance Module Suite")
}

type mockAttendanceRepository struct {
	records []*Record
	nextID  int64
}

func (m *mockAttendanceRepository) Create(_ context.Context, record *Record) error {
	m.nextID++
	record.ID = m.nextID
	m.records = append(m.records, record)
	return nil
}

func (m *mockAttendanceRepository) GetByEmployeeAndDate(_ context.Context, employeeID int64, date time.Time) (*Record, error) {
	for _, r := range m.records {
		if r.EmployeeID == employeeID && r.Date.Equal(date) {
			return r, nil
		}
	}
	return nil, nil
}

func (m *mockAttendanceRepository) Update(_ context.Context, record *Record) error {
	for i, r := range m.records {
		if r.ID == record.ID {
			m.records[i] = record
			return nil
		}
	}
	return internal.NewNotFoundError("attendance record not found", internal.ErrCodeAttendanceNotFound)
}

func (m *mockAttendanceRepository) RangeForEmployee(_ context.Context, employeeID int64, from, to time.Time) ([]*Record, error) {
	var out []*Record
	for _, r := range m.records {
		if r.EmployeeID != employeeID {
			continue
		}
		if r.Date.Before(from) || r.Date.After(to) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

type mockSettings struct {
	settings *hrsettings.HrSettings
}

func (m *mockSettings) Get(_ context.Context) (*hrsettings.HrSettings, error) {
	return m.settings, nil
}

var _ = ginkgo.Describe("Attendance Service", func() {
	var (
		ctx      context.Context
		repo     *mockAttendanceRepository
		settings *mockSettings
		service  *Service
	)

	// Base date with office start 09:00 and a 15 minute grace period.
	at := func(hour, minute int) time.Time {
		return time.Date(2025, time.April, 7, hour, minute, 0, 0, time.Local)
	}

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		repo = &mockAttendanceRepository{}
		settings = &mockSettings{settings: hrsettings.Defaults()}
		service = NewService(repo, settings, slog.Default())
	})

	ginkgo.Describe("CheckIn", func() {
		ginkgo.It("marks an on-time arrival as present", func() {
			service.now = func() time.Time { return at(8, 55) }

			record, err := service.CheckIn(ctx, 1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(record.Status).To(gomega.Equal(StatusPresent))
			gomega.Expect(record.LateDurationMinutes).To(gomega.Equal(0))
		})

		ginkgo.It("stays present exactly at the end of the grace period", func() {
			service.now = func() time.Time { return at(9, 15) }

			record, err := service.CheckIn(ctx, 1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(record.Status).To(gomega.Equal(StatusPresent))
		})

		ginkgo.It("marks arrival one minute past the grace period as late", func() {
			service.now = func() time.Time { return at(9, 16) }

			record, err := service.CheckIn(ctx, 1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(record.Status).To(gomega.Equal(StatusLate))
			gomega.Expect(record.LateDurationMinutes).To(gomega.Equal(16))
		})

		ginkgo.It("refuses a second check-in on the same day", func() {
			service.now = func() time.Time { return at(9, 0) }
			_, err := service.CheckIn(ctx, 1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			service.now = func() time.Time { return at(10, 0) }
			_, err = service.CheckIn(ctx, 1)
			gomega.Expect(err).To(gomega.HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeConflict))
			gomega.Expect(repo.records).To(gomega.HaveLen(1))
		})
	})

	ginkgo.Describe("CheckOut", func() {
		ginkgo.It("stamps departure on the day's record", func() {
			service.now = func() time.Time { return at(9, 0) }
			_, err := service.CheckIn(ctx, 1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			service.now = func() time.Time { return at(17, 0) }
			record, err := service.CheckOut(ctx, 1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(record.CheckOut).NotTo(gomega.BeNil())
			gomega.Expect(record.HoursWorked()).To(gomega.BeNumerically("~", 8.0, 0.01))
		})

		ginkgo.It("fails without a prior check-in", func() {
			service.now = func() time.Time { return at(17, 0) }
			_, err := service.CheckOut(ctx, 1)
			gomega.Expect(err).To(gomega.HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeNotFound))
		})

		ginkgo.It("refuses a second check-out", func() {
			service.now = func() time.Time { return at(9, 0) }
			_, err := service.CheckIn(ctx, 1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			service.now = func() time.Time { return at(17, 0) }
			_, err = service.CheckOut(ctx, 1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			service.now = func() time.Time { return at(18, 0) }
			_, err = service.CheckOut(ctx, 1)
			gomega.Expect(err).To(gomega.HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeConflict))
		})
	})

	ginkgo.Describe("ManualEntry", func() {
		ginkgo.It("creates a record when none exists for the day", func() {
			record, err := service.ManualEntry(ctx, ManualEntryDTO{
				EmployeeID: 1,
				Date:       at(0, 0),
				Status:     StatusAbsent,
			})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(record.ID).To(gomega.BeNumerically(">", 0))
			gomega.Expect(record.Status).To(gomega.Equal(StatusAbsent))
			gomega.Expect(repo.records).To(gomega.HaveLen(1))
		})

		ginkgo.It("updates the existing row instead of adding a second", func() {
			service.now = func() time.Time { return at(9, 30) }
			_, err := service.CheckIn(ctx, 1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			checkIn := at(9, 0)
			record, err := service.ManualEntry(ctx, ManualEntryDTO{
				EmployeeID: 1,
				Date:       at(12, 0),
				Status:     StatusPresent,
				CheckIn:    &checkIn,
			})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(record.Status).To(gomega.Equal(StatusPresent))
			gomega.Expect(repo.records).To(gomega.HaveLen(1))
		})

		ginkgo.It("rejects an unknown status", func() {
			_, err := service.ManualEntry(ctx, ManualEntryDTO{
				EmployeeID: 1,
				Date:       at(0, 0),
				Status:     "vacationing",
			})
			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("rejects check-out before check-in", func() {
			in := at(9, 0)
			out := at(8, 0)
			_, err := service.ManualEntry(ctx, ManualEntryDTO{
				EmployeeID: 1,
				Date:       at(0, 0),
				Status:     StatusPresent,
				CheckIn:    &in,
				CheckOut:   &out,
			})
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("Range", func() {
		ginkgo.It("rejects an inverted range", func() {
			_, err := service.Range(ctx, RangeQuery{EmployeeID: 1, From: at(0, 0), To: at(0, 0).AddDate(0, 0, -2)})
			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("returns only rows inside the range", func() {
			for day := 1; day <= 5; day++ {
				date := time.Date(2025, time.April, day, 0, 0, 0, 0, time.Local)
				repo.records = append(repo.records, &Record{
					ID: int64(day), EmployeeID: 1, Date: date, Status: StatusPresent,
				})
			}

			from := time.Date(2025, time.April, 2, 0, 0, 0, 0, time.Local)
			to := time.Date(2025, time.April, 4, 0, 0, 0, 0, time.Local)
			records, err := service.Range(ctx, RangeQuery{EmployeeID: 1, From: from, To: to})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(records).To(gomega.HaveLen(3))
		})
	})
})
