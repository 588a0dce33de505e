package notification

import (
	"context"

	"github.com/novadesk/agency-management/internal"
)

// Service covers the read side: listing and read-state transitions. The
// write side lives in the Dispatcher.
type Service struct {
	repo RepositoryAPI
}

func NewService(repo RepositoryAPI) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]*Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListByUser(ctx, userID, unreadOnly, limit)
}

// MarkRead only succeeds for the owner of the notification.
func (s *Service) MarkRead(ctx context.Context, id, userID int64) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return internal.NewForbiddenError("notification belongs to another user", internal.ErrCodeNotificationNotFound)
	}
	return s.repo.MarkRead(ctx, id)
}

func (s *Service) MarkAllRead(ctx context.Context, userID int64) error {
	return s.repo.MarkAllRead(ctx, userID)
}
