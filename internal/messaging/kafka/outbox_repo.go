package kafka

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go-payroll/internal/shared/contextutil"

	"github.com/google/uuid"
)

const (
	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
	OutboxStatusFailed  = "failed"
	OutboxStatusDead    = "dead"
)

const (
	// MaxOutboxAttempts is how many publish attempts a row gets before it is
	// parked as dead for manual replay.
	MaxOutboxAttempts = 12
	// outboxLease hides claimed rows from other relays while one publishes them.
	outboxLease = 30 * time.Second
)

type OutboxEvent struct {
	ID            string
	RequestID     string
	AggregateType string
	AggregateID   string
	EventType     string
	Topic         string
	Payload       []byte
	Status        string
	RetryCount    int
	CreatedAt     time.Time
}

// NewOutboxEvent encodes payload into a pending outbox row keyed by aggregateID.
func NewOutboxEvent(ctx context.Context, topic, eventType, aggregateType, aggregateID string, payload any) (OutboxEvent, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return OutboxEvent{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Topic:         topic,
		Payload:       body,
		Status:        OutboxStatusPending,
	}, nil
}

//go:generate mockgen -source=outbox_repo.go -destination=mock/outbox_repo_mock.go -package=mock
type OutboxRepository interface {
	WithTx(tx *sql.Tx) OutboxRepository
	Create(ctx context.Context, event OutboxEvent) error
	ListPending(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, reason string) error
	PurgeSent(ctx context.Context, before time.Time) (int64, error)
}

type outboxRepository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewOutboxRepository(db *sql.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) WithTx(tx *sql.Tx) OutboxRepository {
	return &outboxRepository{db: r.db, tx: tx}
}

func (r *outboxRepository) Create(ctx context.Context, event OutboxEvent) error {
	if err := ValidateOutboxEvent(event); err != nil {
		return err
	}

	_, err := r.execer().ExecContext(ctx, `
INSERT INTO outbox_events (
	id, request_id, aggregate_type, aggregate_id, event_type, topic, payload, status
) VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8)
`,
		event.ID, event.RequestID, event.AggregateType,
		event.AggregateID, event.EventType, event.Topic, event.Payload, event.Status,
	)
	return err
}

// ListPending claims up to limit due rows, oldest first. Claimed rows get a
// short lease on next_retry_at so concurrent relays skip them; a relay that
// dies mid-batch leaves them to be picked up once the lease runs out.
func (r *outboxRepository) ListPending(ctx context.Context, limit int) ([]OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
WITH due AS (
	SELECT id
	FROM outbox_events
	WHERE status IN ($1, $2)
		AND (next_retry_at IS NULL OR next_retry_at <= NOW())
	ORDER BY created_at ASC
	LIMIT $3
	FOR UPDATE SKIP LOCKED
)
UPDATE outbox_events o
SET next_retry_at = NOW() + $4 * INTERVAL '1 second',
	updated_at = NOW()
FROM due
WHERE o.id = due.id
RETURNING
	o.id::text,
	COALESCE(o.request_id, ''),
	o.aggregate_type,
	o.aggregate_id::text,
	o.event_type,
	o.topic,
	o.payload,
	o.status,
	o.retry_count,
	o.created_at
`, OutboxStatusPending, OutboxStatusFailed, limit, int(outboxLease/time.Second))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]OutboxEvent, 0, limit)
	for rows.Next() {
		var e OutboxEvent
		if err := rows.Scan(
			&e.ID,
			&e.RequestID,
			&e.AggregateType,
			&e.AggregateID,
			&e.EventType,
			&e.Topic,
			&e.Payload,
			&e.Status,
			&e.RetryCount,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// RETURNING order is unspecified.
	sort.SliceStable(events, func(i, j int) bool { return events[i].CreatedAt.Before(events[j].CreatedAt) })
	return events, nil
}

func (r *outboxRepository) MarkSent(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE outbox_events
SET status = $2,
	processed_at = NOW(),
	next_retry_at = NULL,
	error_message = NULL,
	updated_at = NOW()
WHERE id = $1
`, id, OutboxStatusSent)
	return err
}

// MarkFailed schedules a retry with linear backoff capped at 150s, or parks
// the row as dead once it has used MaxOutboxAttempts.
func (r *outboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE outbox_events
SET status = CASE WHEN retry_count + 1 >= $4 THEN $3 ELSE $2 END,
	retry_count = retry_count + 1,
	error_message = LEFT($5, 500),
	next_retry_at = NOW() + (LEAST(retry_count + 1, 10) * INTERVAL '15 seconds'),
	updated_at = NOW()
WHERE id = $1
`, id, OutboxStatusFailed, OutboxStatusDead, MaxOutboxAttempts, reason)
	return err
}

// PurgeSent removes delivered rows processed before the cutoff. Dead rows
// are kept for inspection.
func (r *outboxRepository) PurgeSent(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM outbox_events
WHERE status = $1
	AND processed_at < $2
`, OutboxStatusSent, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *outboxRepository) execer() interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func ValidateOutboxEvent(event OutboxEvent) error {
	switch {
	case event.ID == "":
		return errors.New("outbox id is required")
	case event.Topic == "":
		return errors.New("outbox topic is required")
	case event.AggregateID == "":
		return errors.New("outbox aggregate id is required")
	case len(event.Payload) == 0:
		return errors.New("outbox payload is required")
	case event.Status != OutboxStatusPending:
		return fmt.Errorf("new outbox rows must be %s, got %q", OutboxStatusPending, event.Status)
	}
	return nil
}
