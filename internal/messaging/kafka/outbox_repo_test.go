package kafka_test

import (
	"context"
	"testing"
	"time"

	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/shared/contextutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOutboxEvent_CarriesRequestID(t *testing.T) {
	ctx := contextutil.WithRequestID(context.Background(), "rid-7")

	event, err := kafka.NewOutboxEvent(ctx, "payroll.approved.v1", "payroll_run_approved", "payroll_run", "run-1", map[string]int{"n": 1})

	require.NoError(t, err)
	assert.Equal(t, "rid-7", event.RequestID)
	assert.Equal(t, kafka.OutboxStatusPending, event.Status)
	assert.JSONEq(t, `{"n":1}`, string(event.Payload))
	assert.NoError(t, kafka.ValidateOutboxEvent(event))
}

func TestValidateOutboxEvent(t *testing.T) {
	valid := kafka.OutboxEvent{ID: "1", Topic: "t", AggregateID: "a", Payload: []byte(`{}`), Status: kafka.OutboxStatusPending}

	tests := []struct {
		name   string
		mutate func(e *kafka.OutboxEvent)
	}{
		{"missing id", func(e *kafka.OutboxEvent) { e.ID = "" }},
		{"missing topic", func(e *kafka.OutboxEvent) { e.Topic = "" }},
		{"missing aggregate", func(e *kafka.OutboxEvent) { e.AggregateID = "" }},
		{"empty payload", func(e *kafka.OutboxEvent) { e.Payload = nil }},
		{"already sent", func(e *kafka.OutboxEvent) { e.Status = kafka.OutboxStatusSent }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			assert.Error(t, kafka.ValidateOutboxEvent(e))
		})
	}
}

func TestOutboxRepository_CreateJoinsTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	event, err := kafka.NewOutboxEvent(context.Background(), "topic", "evt", "agg", "id-1", struct{}{})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO outbox_events").
		WithArgs(event.ID, "", "agg", "id-1", "evt", "topic", event.Payload, kafka.OutboxStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, kafka.NewOutboxRepository(db).WithTx(tx).Create(context.Background(), event))
	require.NoError(t, tx.Commit())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_ListPendingOrdersByCreation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	older := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	newer := older.Add(time.Minute)
	cols := []string{"id", "request_id", "aggregate_type", "aggregate_id", "event_type", "topic", "payload", "status", "retry_count", "created_at"}
	mock.ExpectQuery("FOR UPDATE SKIP LOCKED").
		WithArgs(kafka.OutboxStatusPending, kafka.OutboxStatusFailed, 10, 30).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("b", "", "payroll_run", "r2", "evt", "t", []byte(`{}`), "pending", 0, newer).
			AddRow("a", "rid", "payroll_run", "r1", "evt", "t", []byte(`{}`), "failed", 2, older))

	events, err := kafka.NewOutboxRepository(db).ListPending(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].ID)
	assert.Equal(t, 2, events[0].RetryCount)
	assert.Equal(t, "b", events[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_MarkFailedParksAfterMaxAttempts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE outbox_events").
		WithArgs("id-1", kafka.OutboxStatusFailed, kafka.OutboxStatusDead, kafka.MaxOutboxAttempts, "broker down").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, kafka.NewOutboxRepository(db).MarkFailed(context.Background(), "id-1", "broker down"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_PurgeSent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cutoff := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("DELETE FROM outbox_events").
		WithArgs(kafka.OutboxStatusSent, cutoff).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := kafka.NewOutboxRepository(db).PurgeSent(context.Background(), cutoff)

	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
