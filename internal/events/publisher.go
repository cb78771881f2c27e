package events

import "context"

// Subjects emitted after successful commits. Consumers (dashboards, websocket
// bridges) subscribe by table-shaped subject, decoupled from the request path.
const (
	SubjectOrderCreated    = "orders.created"
	SubjectOrderStatus     = "orders.status_changed"
	SubjectPaymentRecorded = "orders.payment_recorded"
	SubjectReviewCreated   = "reviews.created"
	SubjectMessageCreated  = "messages.created"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, payload interface{}) error
}

// NopPublisher is used when no broker is configured and in tests.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, subject string, payload interface{}) error {
	return nil
}
