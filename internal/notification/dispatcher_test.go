package notification

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/novadesk/agency-management/internal"
	"github.com/novadesk/agency-management/internal/project"
)

func TestNotification(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Notification Module Suite")
}

type mockNotificationRepository struct {
	notifications []*Notification
	clientUsers   map[int64][]int64
	nextID        int64
	failCreateFor map[int64]bool
}

func newMockNotificationRepository() *mockNotificationRepository {
	return &mockNotificationRepository{
		clientUsers:   map[int64][]int64{},
		failCreateFor: map[int64]bool{},
	}
}

func (m *mockNotificationRepository) Create(_ context.Context, n *Notification) error {
	if m.failCreateFor[n.UserID] {
		return fmt.Errorf("storage unavailable")
	}
	m.nextID++
	n.ID = m.nextID
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *mockNotificationRepository) ListByUser(_ context.Context, userID int64, unreadOnly bool, limit int) ([]*Notification, error) {
	var out []*Notification
	for _, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockNotificationRepository) GetByID(_ context.Context, id int64) (*Notification, error) {
	for _, n := range m.notifications {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, internal.NewNotFoundError("Notification not found", internal.ErrCodeNotificationNotFound)
}

func (m *mockNotificationRepository) MarkRead(_ context.Context, id int64) error {
	for _, n := range m.notifications {
		if n.ID == id {
			n.IsRead = true
		}
	}
	return nil
}

func (m *mockNotificationRepository) MarkAllRead(_ context.Context, userID int64) error {
	for _, n := range m.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (m *mockNotificationRepository) ClientUserIDs(_ context.Context, clientID int64) ([]int64, error) {
	return m.clientUsers[clientID], nil
}

type mockProjectSource struct {
	projects  map[int64]*project.Project
	assignees map[int64][]int64
}

func (m *mockProjectSource) GetProject(_ context.Context, id int64) (*project.Project, error) {
	if p, ok := m.projects[id]; ok {
		return p, nil
	}
	return nil, internal.ErrProjectNotFound
}

func (m *mockProjectSource) TaskAssignees(_ context.Context, projectID int64) ([]int64, error) {
	return m.assignees[projectID], nil
}

type recordingBroadcaster struct {
	delivered map[int64][]*Notification
}

func (b *recordingBroadcaster) BroadcastNotification(userID int64, n *Notification) {
	if b.delivered == nil {
		b.delivered = map[int64][]*Notification{}
	}
	b.delivered[userID] = append(b.delivered[userID], n)
}

var _ = ginkgo.Describe("Notification Dispatcher", func() {
	var (
		repo        *mockNotificationRepository
		projects    *mockProjectSource
		broadcaster *recordingBroadcaster
		dispatcher  *Dispatcher
		ctx         context.Context
	)

	const (
		creatorID  = int64(1)
		devOneID   = int64(10)
		devTwoID   = int64(11)
		clientUser = int64(20)
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		repo = newMockNotificationRepository()
		repo.clientUsers[7] = []int64{clientUser}

		projects = &mockProjectSource{
			projects: map[int64]*project.Project{
				1: {ID: 1, Name: "Website Revamp", ClientID: 7, CreatedBy: creatorID},
			},
			assignees: map[int64][]int64{
				1: {devOneID, devTwoID},
			},
		}
		broadcaster = &recordingBroadcaster{}
		dispatcher = NewDispatcher(repo, projects, broadcaster, slog.Default())
	})

	ginkgo.Describe("Notify", func() {
		ginkgo.It("unions client user, creator and assignees, excluding the actor", func() {
			created, err := dispatcher.Notify(ctx, KindNewMessage, 1, devOneID, "hello")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			var recipients []int64
			for _, n := range created {
				recipients = append(recipients, n.UserID)
			}
			gomega.Expect(recipients).To(gomega.ConsistOf(creatorID, devTwoID, clientUser))
		})

		ginkgo.It("deduplicates a creator who is also an assignee", func() {
			projects.assignees[1] = []int64{creatorID, devOneID}

			created, err := dispatcher.Notify(ctx, KindTaskCompleted, 1, devTwoID, "Ship landing page")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			seen := map[int64]int{}
			for _, n := range created {
				seen[n.UserID]++
			}
			gomega.Expect(seen[creatorID]).To(gomega.Equal(1))
		})

		ginkgo.It("persists and delivers to every recipient", func() {
			created, err := dispatcher.Notify(ctx, KindNewMessage, 1, devOneID, "hello")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(repo.notifications).To(gomega.HaveLen(len(created)))

			for _, n := range created {
				gomega.Expect(broadcaster.delivered[n.UserID]).To(gomega.HaveLen(1))
				gomega.Expect(n.ProjectID).NotTo(gomega.BeNil())
				gomega.Expect(*n.ProjectID).To(gomega.Equal(int64(1)))
				gomega.Expect(n.IsRead).To(gomega.BeFalse())
			}
		})

		ginkgo.It("persists even when no broadcaster is wired", func() {
			dispatcher = NewDispatcher(repo, projects, nil, slog.Default())
			created, err := dispatcher.Notify(ctx, KindNewMessage, 1, devOneID, "hello")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(created).NotTo(gomega.BeEmpty())
			gomega.Expect(repo.notifications).To(gomega.HaveLen(len(created)))
		})

		ginkgo.It("keeps going when one recipient's row fails to persist", func() {
			repo.failCreateFor[creatorID] = true

			created, err := dispatcher.Notify(ctx, KindNewMessage, 1, devOneID, "hello")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			var recipients []int64
			for _, n := range created {
				recipients = append(recipients, n.UserID)
			}
			gomega.Expect(recipients).To(gomega.ConsistOf(devTwoID, clientUser))
			// The failed recipient got no push either: no row, no delivery.
			gomega.Expect(broadcaster.delivered[creatorID]).To(gomega.BeEmpty())
		})

		ginkgo.It("fails on an unknown project", func() {
			_, err := dispatcher.Notify(ctx, KindNewMessage, 99, devOneID, "hello")
			gomega.Expect(err).To(gomega.MatchError(internal.ErrProjectNotFound))
		})
	})

	ginkgo.Describe("Service read side", func() {
		var service *Service

		ginkgo.BeforeEach(func() {
			service = NewService(repo)
			_, err := dispatcher.Notify(ctx, KindNewMessage, 1, devOneID, "hello")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
		})

		ginkgo.It("lists a user's notifications", func() {
			list, err := service.List(ctx, creatorID, false, 0)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(list).To(gomega.HaveLen(1))
		})

		ginkgo.It("marks one read for its owner only", func() {
			list, err := service.List(ctx, creatorID, false, 0)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			err = service.MarkRead(ctx, list[0].ID, devTwoID)
			gomega.Expect(err).To(gomega.HaveOccurred())

			err = service.MarkRead(ctx, list[0].ID, creatorID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			unread, err := service.List(ctx, creatorID, true, 0)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(unread).To(gomega.BeEmpty())
		})

		ginkgo.It("marks all read", func() {
			err := service.MarkAllRead(ctx, clientUser)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			unread, err := service.List(ctx, clientUser, true, 0)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(unread).To(gomega.BeEmpty())
		})
	})
})
