package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeMessageCreated       = "chat.message.created"
	EventTypeFileUploaded         = "project.file.uploaded"
	EventTypeTaskCompleted        = "task.completed"
	EventTypeProjectStatusChanged = "project.status.changed"
)

// ProjectActivityEvent covers every project-scoped business event that fans
// out to notifications: new chat messages, file uploads, task completions and
// project status changes.
type ProjectActivityEvent struct {
	BaseEvent
	ProjectID int64  `json:"project_id"`
	ActorID   int64  `json:"actor_id"`
	Detail    string `json:"detail"`
}

func NewProjectActivityEvent(eventType string, projectID, actorID int64, detail string) *ProjectActivityEvent {
	return &ProjectActivityEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"project_id": projectID,
				"actor_id":   actorID,
				"detail":     detail,
			},
		},
		ProjectID: projectID,
		ActorID:   actorID,
		Detail:    detail,
	}
}
