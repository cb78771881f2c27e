package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

type natsPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (Publisher, error) {
	conn, err := nats.Connect(url, nats.Name("farm-marketplace-api"))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &natsPublisher{conn: conn}, nil
}

func (p *natsPublisher) Publish(ctx context.Context, subject string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event for %s: %w", subject, err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}
	return nil
}
