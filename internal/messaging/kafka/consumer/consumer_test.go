package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	assignmenterrors "go-payroll/internal/assignment/errors"
	assignmentmock "go-payroll/internal/assignment/mock"
	"go-payroll/internal/events"
	payrollerrors "go-payroll/internal/payroll/errors"
	payrollmock "go-payroll/internal/payroll/mock"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

// fakeReader replays messages then blocks until the context is cancelled.
type fakeReader struct {
	msgs      []kafkago.Message
	committed []int64
	cancel    context.CancelFunc
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	if len(f.msgs) == 0 {
		f.cancel()
		<-ctx.Done()
		return kafkago.Message{}, ctx.Err()
	}
	msg := f.msgs[0]
	f.msgs = f.msgs[1:]
	return msg, nil
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		f.committed = append(f.committed, m.Offset)
	}
	return nil
}

func message(t *testing.T, offset int64, v any) kafkago.Message {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return kafkago.Message{Offset: offset, Value: body}
}

func TestConsumeEmployeeLifecycle(t *testing.T) {
	withFastBackoff(t)
	ctrl := gomock.NewController(t)
	svc := assignmentmock.NewMockService(ctrl)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	terminated := events.EmployeeLifecycleEvent{
		EventType:       events.EventEmployeeTerminated,
		EmployeeID:      "emp-1",
		CompanyID:       "c1",
		TerminationDate: "2024-05-31",
	}
	retry := terminated
	retry.EmployeeID = "emp-2"

	reader := &fakeReader{cancel: cancel, msgs: []kafkago.Message{
		{Offset: 1, Value: []byte("not json")},
		message(t, 2, events.EmployeeLifecycleEvent{EventType: "employee_hired", EmployeeID: "emp-9"}),
		message(t, 3, terminated),
		message(t, 4, retry),
	}}

	want := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
	gomock.InOrder(
		svc.EXPECT().CloseForEmployee(gomock.Any(), "c1", "emp-1", want).Return(2, nil),
		svc.EXPECT().CloseForEmployee(gomock.Any(), "c1", "emp-2", want).Return(0, errors.New("connection reset")),
		svc.EXPECT().CloseForEmployee(gomock.Any(), "c1", "emp-2", want).Return(1, nil),
	)

	ConsumeEmployeeLifecycle(ctx, reader, svc, zap.NewNop())

	assert.Equal(t, []int64{1, 2, 3, 4}, reader.committed)
}

func TestConsume_TransientFailureBlocksLaterOffsets(t *testing.T) {
	withFastBackoff(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{cancel: cancel, msgs: []kafkago.Message{
		{Offset: 1, Value: []byte("A")},
		{Offset: 2, Value: []byte("B")},
	}}

	var handled []string
	failuresLeft := 2
	consume(ctx, reader, zap.NewNop(), func(_ context.Context, msg kafkago.Message) bool {
		handled = append(handled, string(msg.Value))
		if string(msg.Value) == "A" && failuresLeft > 0 {
			failuresLeft--
			assert.Empty(t, reader.committed)
			return false
		}
		return true
	})

	assert.Equal(t, []string{"A", "A", "A", "B"}, handled)
	assert.Equal(t, []int64{1, 2}, reader.committed)
}

func TestConsume_CancelDuringRetryLeavesOffsetUncommitted(t *testing.T) {
	withFastBackoff(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{cancel: cancel, msgs: []kafkago.Message{
		{Offset: 1, Value: []byte("A")},
		{Offset: 2, Value: []byte("B")},
	}}

	attempts := 0
	consume(ctx, reader, zap.NewNop(), func(_ context.Context, msg kafkago.Message) bool {
		attempts++
		assert.Equal(t, int64(1), msg.Offset)
		if attempts == 3 {
			cancel()
		}
		return false
	})

	assert.Equal(t, 3, attempts)
	assert.Empty(t, reader.committed)
	assert.Len(t, reader.msgs, 1)
}

func withFastBackoff(t *testing.T) {
	t.Helper()
	initial, maxBackoff := retryInitialBackoff, retryMaxBackoff
	retryInitialBackoff, retryMaxBackoff = time.Millisecond, 2*time.Millisecond
	t.Cleanup(func() { retryInitialBackoff, retryMaxBackoff = initial, maxBackoff })
}

func TestHandleEmployeeLifecycle_PermanentErrorIsCommitted(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := assignmentmock.NewMockService(ctrl)
	svc.EXPECT().
		CloseForEmployee(gomock.Any(), "c1", "bad", gomock.Any()).
		Return(0, assignmenterrors.ErrInvalidSubjectID)

	ok := handleEmployeeLifecycle(context.Background(), message(t, 1, events.EmployeeLifecycleEvent{
		EventType:  events.EventEmployeeTerminated,
		EmployeeID: "bad",
		CompanyID:  "c1",
		OccurredAt: time.Date(2024, 6, 3, 17, 45, 0, 0, time.UTC),
	}), svc, zap.NewNop())

	assert.True(t, ok)
}

func TestHandleEmployeeLifecycle_TransferInvalidatesCache(t *testing.T) {
	transfer := events.EmployeeLifecycleEvent{
		EventType:  events.EventEmployeeTransferred,
		EmployeeID: "emp-1",
		CompanyID:  "c1",
	}

	tests := []struct {
		name   string
		err    error
		wantOK bool
	}{
		{name: "invalidated", wantOK: true},
		{name: "cache unavailable is retried", err: errors.New("dial tcp: connection refused"), wantOK: false},
		{name: "bad company is skipped", err: assignmenterrors.ErrInvalidCompanyID, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := assignmentmock.NewMockService(ctrl)
			svc.EXPECT().InvalidateCompany(gomock.Any(), "c1").Return(tt.err)

			ok := handleEmployeeLifecycle(context.Background(), message(t, 1, transfer), svc, zap.NewNop())

			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestTerminationDate_FallsBackToOccurredAt(t *testing.T) {
	at, err := terminationDate(events.EmployeeLifecycleEvent{OccurredAt: time.Date(2024, 6, 3, 17, 45, 0, 0, time.UTC)})

	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), at)

	_, err = terminationDate(events.EmployeeLifecycleEvent{TerminationDate: "31/05/2024"})
	assert.Error(t, err)
}

func TestHandlePayrollApproved(t *testing.T) {
	event := events.PayrollApprovedEvent{
		EventType: events.EventPayrollRunApproved,
		CompanyID: "c1",
		RunID:     "r1",
		EntryIDs:  []string{"e1", "e2"},
	}

	tests := []struct {
		name   string
		err    error
		commit bool
	}{
		{"generated", nil, true},
		{"entry gone", payrollerrors.ErrEntryNotFound, true},
		{"disk full", errors.New("no space left on device"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := payrollmock.NewMockService(ctrl)
			svc.EXPECT().GeneratePayslips(gomock.Any(), "c1", []string{"e1", "e2"}).Return(1, tt.err)

			ok := handlePayrollApproved(context.Background(), message(t, 1, event), svc, zap.NewNop())

			assert.Equal(t, tt.commit, ok)
		})
	}
}
