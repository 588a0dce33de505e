package postgres

import (
	"context"

	"github.com/novadesk/agency-management/internal"
	"github.com/novadesk/agency-management/internal/notification"
	"gorm.io/gorm"
)

// NotificationRepository implements notification.RepositoryAPI using GORM
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]*notification.Notification, error) {
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var notifications []*notification.Notification
	err := q.Find(&notifications).Error
	return notifications, err
}

func (r *NotificationRepository) GetByID(ctx context.Context, id int64) (*notification.Notification, error) {
	var n notification.Notification
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&n).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.NewNotFoundError("Notification not found", internal.ErrCodeNotificationNotFound)
		}
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&notification.Notification{}).
		Where("id = ?", id).
		Update("is_read", true).Error
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Model(&notification.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

// ClientUserIDs resolves the login users attached to a client account, used
// by the fan-out recipient union.
func (r *NotificationRepository) ClientUserIDs(ctx context.Context, clientID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Table("users").
		Where("client_id = ? AND is_active = ?", clientID, true).
		Pluck("id", &ids).Error
	return ids, err
}
