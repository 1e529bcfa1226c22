package events

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"flashflow/internal/errs"
	"flashflow/internal/ports"
)

// NATSPublisher fans audit events out on a NATS subject so dashboards and
// notification bots can follow the pipeline without polling the event table.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

var _ ports.EventPublisher = (*NATSPublisher)(nil)

type eventPayload struct {
	EventID       uint64  `json:"event_id"`
	VideoID       string  `json:"video_id"`
	EventType     string  `json:"event_type"`
	FromStatus    *string `json:"from_status,omitempty"`
	ToStatus      *string `json:"to_status,omitempty"`
	Actor         string  `json:"actor"`
	CorrelationID string  `json:"correlation_id"`
	Details       string  `json:"details,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

func NewNATSPublisher(url string, subject string) (*NATSPublisher, error) {
	trimmedURL := strings.TrimSpace(url)
	if trimmedURL == "" {
		return nil, errors.New("nats url is required")
	}
	trimmedSubject := strings.TrimSpace(subject)
	if trimmedSubject == "" {
		return nil, errors.New("nats subject is required")
	}

	conn, err := nats.Connect(trimmedURL,
		nats.Name("flashflow"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, errs.Wrap(err, "connect nats")
	}

	return &NATSPublisher{conn: conn, subject: trimmedSubject}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, event ports.EventRecord) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	payload, err := json.Marshal(marshalEvent(event))
	if err != nil {
		return errs.Wrap(err, "marshal event payload")
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		return errs.Wrap(err, "publish event")
	}
	return nil
}

func (p *NATSPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

func marshalEvent(event ports.EventRecord) eventPayload {
	return eventPayload{
		EventID:       event.EventID,
		VideoID:       event.VideoID,
		EventType:     event.EventType,
		FromStatus:    event.FromStatus,
		ToStatus:      event.ToStatus,
		Actor:         event.Actor,
		CorrelationID: event.CorrelationID,
		Details:       event.Details,
		CreatedAt:     event.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}
