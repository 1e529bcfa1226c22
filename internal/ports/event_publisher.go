package ports

import "context"

// EventPublisher fans audit events out to interested consumers (dashboards,
// notification bots). Publishing is best-effort: the pipeline never fails a
// transaction because a consumer is down.
type EventPublisher interface {
	Publish(ctx context.Context, event EventRecord) error
	Close()
}
