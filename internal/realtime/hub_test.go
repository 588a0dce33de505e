package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/novadesk/agency-management/internal"
	"github.com/novadesk/agency-management/internal/auth"
	"github.com/novadesk/agency-management/internal/chat"
)

func TestRealtime(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Realtime Module Suite")
}

// fakeSocket records every frame written to it.
type fakeSocket struct {
	mu     sync.Mutex
	frames []map[string]interface{}
	closed bool
}

func (f *fakeSocket) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var frame map[string]interface{}
	if err := json.Unmarshal(data, &frame); err != nil {
		return err
	}
	f.frames = append(f.frames, frame)
	return nil
}

func (f *fakeSocket) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSocket) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeSocket) framesOfType(frameType string) []map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []map[string]interface{}
	for _, fr := range f.frames {
		if fr["type"] == frameType {
			out = append(out, fr)
		}
	}
	return out
}

type fakeAuth struct {
	users map[string]*auth.User
}

func (f *fakeAuth) ResolveUser(token string) (*auth.User, error) {
	if u, ok := f.users[token]; ok {
		return u, nil
	}
	return nil, internal.ErrInvalidToken
}

// fakeVisibility mirrors the role matrix from the project service.
type fakeVisibility struct {
	all       []int64
	byDev     map[int64][]int64
	byClient  map[int64][]int64
	projClient map[int64]int64 // projectID -> owning clientID
}

func (f *fakeVisibility) VisibleProjectIDs(_ context.Context, user *auth.User) ([]int64, error) {
	switch user.Role {
	case auth.RoleAdmin, auth.RoleOperationalHead:
		return f.all, nil
	case auth.RoleDeveloper:
		return f.byDev[user.ID], nil
	case auth.RoleClient:
		if user.ClientID == nil {
			return nil, nil
		}
		return f.byClient[*user.ClientID], nil
	}
	return nil, nil
}

func (f *fakeVisibility) CanAccess(ctx context.Context, user *auth.User, projectID int64) (bool, error) {
	if _, exists := f.projClient[projectID]; !exists {
		return false, internal.ErrProjectNotFound
	}
	if user.Role.IsStaff() {
		return true, nil
	}
	ids, err := f.VisibleProjectIDs(ctx, user)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == projectID {
			return true, nil
		}
	}
	return false, nil
}

var _ = ginkgo.Describe("Realtime Hub", func() {
	var (
		hub        *Hub
		visibility *fakeVisibility
	)

	clientSeven := int64(7)
	clientEight := int64(8)

	adminUser := &auth.User{ID: 1, Role: auth.RoleAdmin}
	devUser := &auth.User{ID: 10, Role: auth.RoleDeveloper}
	clientUser := &auth.User{ID: 20, Role: auth.RoleClient, ClientID: &clientSeven}

	cfg := internal.RealtimeConfig{
		HeartbeatInterval: 30 * time.Second,
		WriteTimeout:      time.Second,
		MaxMessageSize:    4096,
	}

	connect := func(user *auth.User) (*Conn, *fakeSocket) {
		sock := &fakeSocket{}
		conn := newConn(sock, user, cfg.WriteTimeout)
		hub.registry.Register(conn)
		auto, err := hub.autoSubscribe(context.Background(), conn, user)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(conn.send(connectedFrame{Type: frameConnected, UserID: user.ID, AutoSubscribed: auto})).To(gomega.Succeed())
		return conn, sock
	}

	ginkgo.BeforeEach(func() {
		visibility = &fakeVisibility{
			all:   []int64{1, 2},
			byDev: map[int64][]int64{devUser.ID: {1}},
			byClient: map[int64][]int64{
				clientSeven: {1},
				clientEight: {2},
			},
			projClient: map[int64]int64{1: clientSeven, 2: clientEight},
		}
		hub = NewHub(&fakeAuth{}, visibility, cfg, slog.Default())
	})

	ginkgo.Describe("role auto-subscription", func() {
		ginkgo.It("subscribes staff to every project", func() {
			conn, _ := connect(adminUser)
			gomega.Expect(hub.registry.IsSubscribed(conn, 1)).To(gomega.BeTrue())
			gomega.Expect(hub.registry.IsSubscribed(conn, 2)).To(gomega.BeTrue())
		})

		ginkgo.It("subscribes a developer only to projects with their tasks", func() {
			conn, _ := connect(devUser)
			gomega.Expect(hub.registry.IsSubscribed(conn, 1)).To(gomega.BeTrue())
			gomega.Expect(hub.registry.IsSubscribed(conn, 2)).To(gomega.BeFalse())
		})

		ginkgo.It("subscribes a client to nothing", func() {
			conn, _ := connect(clientUser)
			gomega.Expect(hub.registry.IsSubscribed(conn, 1)).To(gomega.BeFalse())
			gomega.Expect(hub.registry.IsSubscribed(conn, 2)).To(gomega.BeFalse())
		})
	})

	ginkgo.Describe("explicit subscribe", func() {
		ginkgo.It("lets a client join their own project", func() {
			conn, sock := connect(clientUser)
			hub.handleSubscribe(conn, clientUser, 1)

			gomega.Expect(hub.registry.IsSubscribed(conn, 1)).To(gomega.BeTrue())
			gomega.Expect(sock.framesOfType(frameSubscribed)).To(gomega.HaveLen(1))
		})

		ginkgo.It("rejects a client on another client's project with an error frame", func() {
			conn, sock := connect(clientUser)
			hub.handleSubscribe(conn, clientUser, 2)

			gomega.Expect(hub.registry.IsSubscribed(conn, 2)).To(gomega.BeFalse())
			gomega.Expect(hub.registry.SubscribersOf(2)).To(gomega.BeEmpty())
			gomega.Expect(sock.framesOfType(frameError)).To(gomega.HaveLen(1))
			gomega.Expect(sock.framesOfType(frameSubscribed)).To(gomega.BeEmpty())
		})

		ginkgo.It("is idempotent for a duplicate subscribe", func() {
			conn, _ := connect(clientUser)
			hub.handleSubscribe(conn, clientUser, 1)
			hub.handleSubscribe(conn, clientUser, 1)

			gomega.Expect(hub.registry.SubscribersOf(1)).To(gomega.HaveLen(1))
		})
	})

	ginkgo.Describe("unsubscribe", func() {
		ginkgo.It("removes the project key once its set empties", func() {
			conn, sock := connect(clientUser)
			hub.dispatch(conn, clientUser, clientFrame{Type: frameSubscribe, ProjectID: 1})
			gomega.Expect(hub.registry.HasProject(1)).To(gomega.BeTrue())

			hub.dispatch(conn, clientUser, clientFrame{Type: frameUnsubscribe, ProjectID: 1})
			gomega.Expect(hub.registry.HasProject(1)).To(gomega.BeFalse())
			gomega.Expect(sock.framesOfType(frameUnsubscribed)).To(gomega.HaveLen(1))
		})

		ginkgo.It("keeps the key while other subscribers remain", func() {
			connA, _ := connect(adminUser)
			connB, _ := connect(devUser)

			hub.registry.Unsubscribe(connB, 1)
			gomega.Expect(hub.registry.HasProject(1)).To(gomega.BeTrue())
			gomega.Expect(hub.registry.SubscribersOf(1)).To(gomega.ConsistOf(connA))
		})
	})

	ginkgo.Describe("broadcast scope", func() {
		ginkgo.It("delivers a message only to subscribers of that project", func() {
			_, adminSock := connect(adminUser)
			_, devSock := connect(devUser)

			// Second tab of the same admin user, manually unsubscribed
			// from project 2.
			secondTab, secondSock := connect(adminUser)
			hub.registry.Unsubscribe(secondTab, 2)

			hub.BroadcastMessage(2, &chat.Message{ID: 5, ProjectID: 2, Body: "update"})

			gomega.Expect(adminSock.framesOfType(frameNewMessage)).To(gomega.HaveLen(1))
			gomega.Expect(devSock.framesOfType(frameNewMessage)).To(gomega.BeEmpty())
			gomega.Expect(secondSock.framesOfType(frameNewMessage)).To(gomega.BeEmpty())
		})

		ginkgo.It("skips a closed connection instead of erroring", func() {
			conn, sock := connect(adminUser)
			conn.close()

			hub.BroadcastMessage(1, &chat.Message{ID: 6, ProjectID: 1, Body: "late"})
			gomega.Expect(sock.framesOfType(frameNewMessage)).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("notification delivery", func() {
		ginkgo.It("reaches every open connection of the user", func() {
			_, sockA := connect(devUser)
			_, sockB := connect(devUser)
			_, otherSock := connect(adminUser)

			hub.BroadcastNotification(devUser.ID, nil)

			gomega.Expect(sockA.framesOfType(frameNotification)).To(gomega.HaveLen(1))
			gomega.Expect(sockB.framesOfType(frameNotification)).To(gomega.HaveLen(1))
			gomega.Expect(otherSock.framesOfType(frameNotification)).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("protocol errors", func() {
		ginkgo.It("answers an unknown frame type with an error frame", func() {
			conn, sock := connect(clientUser)
			hub.dispatch(conn, clientUser, clientFrame{Type: "shout"})
			gomega.Expect(sock.framesOfType(frameError)).To(gomega.HaveLen(1))
			gomega.Expect(sock.isClosed()).To(gomega.BeFalse())
		})

		ginkgo.It("answers a protocol ping with a pong", func() {
			conn, sock := connect(clientUser)
			hub.dispatch(conn, clientUser, clientFrame{Type: framePing})
			gomega.Expect(sock.framesOfType(framePong)).To(gomega.HaveLen(1))
		})
	})

	ginkgo.Describe("heartbeat eviction", func() {
		ginkgo.It("drops a connection that stays silent across a full window", func() {
			conn, sock := connect(adminUser)

			// First sweep arms the window, second finds it unanswered.
			hub.sweep()
			hub.sweep()

			gomega.Expect(sock.isClosed()).To(gomega.BeTrue())
			gomega.Expect(hub.registry.HasUser(adminUser.ID)).To(gomega.BeFalse())
			gomega.Expect(hub.registry.HasProject(1)).To(gomega.BeFalse())
			gomega.Expect(hub.registry.SubscribersOf(1)).NotTo(gomega.ContainElement(conn))
		})

		ginkgo.It("keeps a connection that answered in the window", func() {
			conn, sock := connect(adminUser)

			hub.sweep()
			conn.markAlive()
			hub.sweep()

			gomega.Expect(sock.isClosed()).To(gomega.BeFalse())
			gomega.Expect(hub.registry.HasUser(adminUser.ID)).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("connection removal", func() {
		ginkgo.It("clears both indexes and empty project sets", func() {
			conn, _ := connect(adminUser)
			hub.drop(conn)

			gomega.Expect(hub.registry.HasUser(adminUser.ID)).To(gomega.BeFalse())
			gomega.Expect(hub.registry.HasProject(1)).To(gomega.BeFalse())
			gomega.Expect(hub.registry.HasProject(2)).To(gomega.BeFalse())
		})
	})
})
