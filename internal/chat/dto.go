package chat

import (
	"strings"

	"github.com/novadesk/agency-management/internal"
)

const maxMessageLength = 4000

type SendMessageDTO struct {
	Body string `json:"body"`
}

func (d SendMessageDTO) Validate() error {
	if strings.TrimSpace(d.Body) == "" {
		return internal.NewValidationFieldError("body", "message body is required", internal.ErrCodeValidationFailed)
	}
	if len(d.Body) > maxMessageLength {
		return internal.NewValidationFieldError("body", "message body too long", internal.ErrCodeValidationFailed)
	}
	return nil
}

type HistoryQuery struct {
	Limit  int
	Before int64
}
