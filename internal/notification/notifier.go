package notification

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/travel-agency/internal/core/events"
	"github.com/frahmantamala/travel-agency/internal/core/metrics"
)

type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Sender interface {
	Send(ctx context.Context, templateID, recipient string, params map[string]interface{}) error
}

// AsyncNotifier queues a message on the event bus and returns at once.
type AsyncNotifier struct {
	bus    Publisher
	logger *slog.Logger
}

func NewAsyncNotifier(bus Publisher, logger *slog.Logger) *AsyncNotifier {
	return &AsyncNotifier{bus: bus, logger: logger}
}

func (n *AsyncNotifier) Notify(ctx context.Context, templateID, recipient string, params map[string]interface{}) {
	event := events.NewNotificationRequestedEvent(templateID, recipient, params)
	if err := n.bus.Publish(ctx, event); err != nil {
		metrics.NotificationDispatchFailures.WithLabelValues(templateID).Inc()
		n.logger.Error("failed to queue notification", "template", templateID, "error", err)
	}
}

type Subscriber interface {
	Subscribe(eventType string, handler events.Handler)
}

// RegisterHandlers delivers queued notifications through sender. Failures are
// counted here and logged by the bus.
func RegisterHandlers(bus Subscriber, sender Sender) {
	bus.Subscribe(events.EventTypeNotificationRequested, func(ctx context.Context, e events.Event) error {
		req, ok := e.(*events.NotificationRequestedEvent)
		if !ok {
			return nil
		}
		if err := sender.Send(ctx, req.TemplateID, req.Recipient, req.Params); err != nil {
			metrics.NotificationDispatchFailures.WithLabelValues(req.TemplateID).Inc()
			return err
		}
		return nil
	})
}
