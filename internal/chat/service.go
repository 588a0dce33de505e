package chat

import (
	"context"
	"time"

	"github.com/novadesk/agency-management/internal"
	"github.com/novadesk/agency-management/internal/auth"
	"github.com/novadesk/agency-management/internal/core/events"
)

// RepositoryAPI persists chat messages.
type RepositoryAPI interface {
	Create(ctx context.Context, m *Message) error
	ListByProject(ctx context.Context, projectID int64, limit int, before int64) ([]*Message, error)
}

// AccessAPI answers whether a user may participate in a project room.
type AccessAPI interface {
	CanAccess(ctx context.Context, user *auth.User, projectID int64) (bool, error)
}

// BroadcasterAPI pushes a stored message to live subscribers. Delivery is
// best effort: a failed or absent broadcast never undoes persistence.
type BroadcasterAPI interface {
	BroadcastMessage(projectID int64, message *Message)
}

type Service struct {
	repo        RepositoryAPI
	access      AccessAPI
	broadcaster BroadcasterAPI
	bus         *events.EventBus
}

func NewService(repo RepositoryAPI, access AccessAPI, broadcaster BroadcasterAPI, bus *events.EventBus) *Service {
	return &Service{
		repo:        repo,
		access:      access,
		broadcaster: broadcaster,
		bus:         bus,
	}
}

// Send persists the message first, then fans out. The write is the source of
// truth; realtime delivery and the notification event ride behind it.
func (s *Service) Send(ctx context.Context, user *auth.User, projectID int64, dto SendMessageDTO) (*Message, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	allowed, err := s.access.CanAccess(ctx, user, projectID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, internal.ErrProjectAccessDenied
	}

	m := &Message{
		ProjectID:  projectID,
		SenderID:   user.ID,
		SenderName: user.Name,
		Body:       dto.Body,
		CreatedAt:  time.Now(),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastMessage(projectID, m)
	}
	if s.bus != nil {
		s.bus.Publish(ctx, events.NewProjectActivityEvent(
			events.EventTypeMessageCreated, projectID, user.ID, m.Body))
	}

	return m, nil
}

func (s *Service) History(ctx context.Context, user *auth.User, projectID int64, q HistoryQuery) ([]*Message, error) {
	allowed, err := s.access.CanAccess(ctx, user, projectID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, internal.ErrProjectAccessDenied
	}

	limit := q.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListByProject(ctx, projectID, limit, q.Before)
}
