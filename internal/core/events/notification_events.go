package events

import (
	"time"

	"github.com/google/uuid"
)

const EventTypeNotificationRequested = "notification.requested"

// NotificationRequestedEvent asks the dispatcher to render templateID for
// one recipient.
type NotificationRequestedEvent struct {
	BaseEvent
	TemplateID string                 `json:"template_id"`
	Recipient  string                 `json:"recipient"`
	Params     map[string]interface{} `json:"params"`
}

func NewNotificationRequestedEvent(templateID, recipient string, params map[string]interface{}) *NotificationRequestedEvent {
	return &NotificationRequestedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      EventTypeNotificationRequested,
			Timestamp: time.Now().UTC(),
		},
		TemplateID: templateID,
		Recipient:  recipient,
		Params:     params,
	}
}
