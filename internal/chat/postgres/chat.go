package postgres

import (
	"context"

	"github.com/novadesk/agency-management/internal/chat"
	"gorm.io/gorm"
)

// ChatRepository implements chat.RepositoryAPI using GORM
type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Create(ctx context.Context, m *chat.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// ListByProject pages backwards: before is an exclusive message ID cursor,
// zero means newest.
func (r *ChatRepository) ListByProject(ctx context.Context, projectID int64, limit int, before int64) ([]*chat.Message, error) {
	q := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("id DESC").
		Limit(limit)
	if before > 0 {
		q = q.Where("id < ?", before)
	}

	var messages []*chat.Message
	if err := q.Find(&messages).Error; err != nil {
		return nil, err
	}

	// Oldest first for rendering.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
