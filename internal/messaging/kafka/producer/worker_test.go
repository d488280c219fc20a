package producer

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/messaging/kafka/mock"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type fakeWriter struct {
	failFor map[string]error
	written []kafkago.Message
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		if err := f.failFor[string(m.Key)]; err != nil {
			return err
		}
		f.written = append(f.written, m)
	}
	return nil
}

func header(m kafkago.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestProcessPendingEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockOutboxRepository(ctrl)
	writer := &fakeWriter{failFor: map[string]error{"run-2": errors.New("broker down")}}

	pending := []kafka.OutboxEvent{
		{ID: "o1", RequestID: "req-1", AggregateType: "payroll_run", AggregateID: "run-1", EventType: "payroll_run_approved", Topic: "payroll.approved.v1", Payload: []byte(`{}`)},
		{ID: "o2", AggregateType: "payroll_run", AggregateID: "run-2", EventType: "payroll_run_approved", Topic: "payroll.approved.v1", Payload: []byte(`{}`)},
	}
	repo.EXPECT().ListPending(gomock.Any(), batchSize).Return(pending, nil)
	repo.EXPECT().MarkSent(gomock.Any(), "o1").Return(nil)
	repo.EXPECT().MarkFailed(gomock.Any(), "o2", "broker down").Return(nil)

	sent, err := processPendingEvents(context.Background(), repo, writer, zap.NewNop())

	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, writer.written, 1)
	msg := writer.written[0]
	assert.Equal(t, "payroll.approved.v1", msg.Topic)
	assert.Equal(t, "run-1", string(msg.Key))
	assert.Equal(t, "payroll_run_approved", header(msg, "event_type"))
	assert.Equal(t, "req-1", header(msg, "request_id"))
	assert.Equal(t, "o1", header(msg, "outbox_id"))
}

func TestProcessPendingEvents_ListError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockOutboxRepository(ctrl)
	repo.EXPECT().ListPending(gomock.Any(), batchSize).Return(nil, errors.New("db down"))

	_, err := processPendingEvents(context.Background(), repo, &fakeWriter{}, zap.NewNop())

	assert.EqualError(t, err, "db down")
}

func TestToMessage_OmitsEmptyRequestID(t *testing.T) {
	msg := toMessage(kafka.OutboxEvent{ID: "o1", AggregateID: "e1"})

	assert.Empty(t, header(msg, "request_id"))
	assert.Len(t, msg.Headers, 3)
}

func TestPurgeSent(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockOutboxRepository(ctrl)
	now := time.Date(2024, 4, 10, 3, 0, 0, 0, time.UTC)
	repo.EXPECT().PurgeSent(gomock.Any(), now.Add(-7*24*time.Hour)).Return(int64(12), nil)

	n := purgeSent(context.Background(), repo, 7*24*time.Hour, now, zap.NewNop())

	assert.Equal(t, int64(12), n)
}

func TestPurgeSent_SkipsAfterShutdown(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockOutboxRepository(ctrl)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Zero(t, purgeSent(ctx, repo, time.Hour, time.Now(), zap.NewNop()))
}

func TestSchedulePurge_RejectsBadSpec(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockOutboxRepository(ctrl)

	_, err := SchedulePurge(context.Background(), repo, "not a cron", time.Hour, zap.NewNop())

	assert.Error(t, err)
}
