package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/novadesk/agency-management/internal/core/events"
	"github.com/novadesk/agency-management/internal/project"
)

// RepositoryAPI persists and queries notifications.
type RepositoryAPI interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]*Notification, error)
	GetByID(ctx context.Context, id int64) (*Notification, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context, userID int64) error
	ClientUserIDs(ctx context.Context, clientID int64) ([]int64, error)
}

// ProjectSourceAPI supplies the project facts the recipient union needs.
type ProjectSourceAPI interface {
	GetProject(ctx context.Context, id int64) (*project.Project, error)
	TaskAssignees(ctx context.Context, projectID int64) ([]int64, error)
}

// BroadcasterAPI pushes a persisted notification to the user's live
// connections.
type BroadcasterAPI interface {
	BroadcastNotification(userID int64, n *Notification)
}

// Dispatcher computes recipient sets and fans business events out into
// notification rows plus realtime pushes.
type Dispatcher struct {
	repo        RepositoryAPI
	projects    ProjectSourceAPI
	broadcaster BroadcasterAPI
	logger      *slog.Logger
}

func NewDispatcher(repo RepositoryAPI, projects ProjectSourceAPI, broadcaster BroadcasterAPI, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		repo:        repo,
		projects:    projects,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Notify persists one notification per recipient and then pushes each over
// the hub. The recipient set is the union of the owning client's users, the
// project creator and every task assignee, minus the actor. A failed push
// never rolls back or fails the persisted row.
func (d *Dispatcher) Notify(ctx context.Context, kind string, projectID, actorID int64, detail string) ([]*Notification, error) {
	p, err := d.projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	recipients, err := d.recipients(ctx, p, actorID)
	if err != nil {
		return nil, err
	}

	message := renderMessage(kind, p.Name, detail)
	pid := projectID

	var out []*Notification
	for _, userID := range recipients {
		n := &Notification{
			UserID:    userID,
			Kind:      kind,
			Message:   message,
			ProjectID: &pid,
			CreatedAt: time.Now(),
		}
		if err := d.repo.Create(ctx, n); err != nil {
			d.logger.Error("notification persist failed",
				"user_id", userID, "kind", kind, "error", err)
			continue
		}
		out = append(out, n)

		if d.broadcaster != nil {
			d.broadcaster.BroadcastNotification(userID, n)
		}
	}
	return out, nil
}

func (d *Dispatcher) recipients(ctx context.Context, p *project.Project, actorID int64) ([]int64, error) {
	set := map[int64]struct{}{}

	clientUsers, err := d.repo.ClientUserIDs(ctx, p.ClientID)
	if err != nil {
		return nil, err
	}
	for _, id := range clientUsers {
		set[id] = struct{}{}
	}

	set[p.CreatedBy] = struct{}{}

	assignees, err := d.projects.TaskAssignees(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	for _, id := range assignees {
		set[id] = struct{}{}
	}

	delete(set, actorID)

	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	// Deterministic order keeps logs and tests stable.
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func renderMessage(kind, projectName, detail string) string {
	switch kind {
	case KindNewMessage:
		return fmt.Sprintf("New message in %s", projectName)
	case KindFileUploaded:
		return fmt.Sprintf("File uploaded to %s: %s", projectName, detail)
	case KindTaskCompleted:
		return fmt.Sprintf("Task completed in %s: %s", projectName, detail)
	case KindProjectStatusChange:
		return fmt.Sprintf("Project %s status changed to %s", projectName, detail)
	}
	return fmt.Sprintf("Activity in %s", projectName)
}

// RegisterSubscribers wires the dispatcher to the event bus. Handlers run on
// the bus's goroutines; failures are logged there and never propagate to the
// publisher.
func (d *Dispatcher) RegisterSubscribers(bus *events.EventBus) {
	handler := func(kind string) events.Handler {
		return func(ctx context.Context, event events.Event) error {
			activity, ok := event.(*events.ProjectActivityEvent)
			if !ok {
				return fmt.Errorf("unexpected event payload for %s", event.EventType())
			}
			_, err := d.Notify(ctx, kind, activity.ProjectID, activity.ActorID, activity.Detail)
			return err
		}
	}

	bus.Subscribe(events.EventTypeMessageCreated, handler(KindNewMessage))
	bus.Subscribe(events.EventTypeFileUploaded, handler(KindFileUploaded))
	bus.Subscribe(events.EventTypeTaskCompleted, handler(KindTaskCompleted))
	bus.Subscribe(events.EventTypeProjectStatusChanged, handler(KindProjectStatusChange))
}
