package notification

import (
	"context"

	"github.com/iota-uz/go-i18n/v2/i18n"

	"github.com/oliver-kandagor/catalog-admin/modules/catalog/domain/notification"
	"github.com/oliver-kandagor/catalog-admin/pkg/composables"
	"github.com/oliver-kandagor/catalog-admin/pkg/eventbus"
)

// OutcomeNotification is the event published for every decided request.
// Downstream channels (mail, push, webhooks) subscribe to it on the
// application event bus. Message is the human-readable outcome, already
// localized.
type OutcomeNotification struct {
	Recipient string
	Message   string
	Outcome   notification.Outcome
}

type eventBusNotifier struct {
	publisher eventbus.EventBus
	localizer *i18n.Localizer
}

// NewEventBusNotifier returns a notifier that fans decisions out through
// the in-process event bus. Messages are rendered from the application
// bundle in its default language.
func NewEventBusNotifier(publisher eventbus.EventBus, bundle *i18n.Bundle) notification.Notifier {
	return &eventBusNotifier{
		publisher: publisher,
		localizer: i18n.NewLocalizer(bundle),
	}
}

func (n *eventBusNotifier) Notify(ctx context.Context, recipient string, outcome notification.Outcome) error {
	n.publisher.Publish(OutcomeNotification{
		Recipient: recipient,
		Message:   n.message(outcome),
		Outcome:   outcome,
	})
	composables.UseLogger(ctx).
		WithField("request_id", outcome.RequestID).
		WithField("recipient", recipient).
		WithField("result", outcome.Result).
		Info("moderation outcome published")
	return nil
}

func (n *eventBusNotifier) message(outcome notification.Outcome) string {
	config := &i18n.LocalizeConfig{MessageID: "Catalog.Requests.Notifications.Approved"}
	if outcome.Result == notification.ResultRejected {
		config = &i18n.LocalizeConfig{
			MessageID:    "Catalog.Requests.Notifications.Rejected",
			TemplateData: map[string]string{"Note": outcome.Note},
		}
	}
	message, err := n.localizer.Localize(config)
	if err != nil {
		// A missing translation never blocks delivery.
		return string(outcome.Result)
	}
	return message
}
