package paymenttemplate_test

import (
	"context"
	"database/sql"
	"testing"

	"go-payroll/internal/paymentfield"
	"go-payroll/internal/paymenttemplate"
	paymenttemplateerrors "go-payroll/internal/paymenttemplate/errors"
	paymenttemplateMock "go-payroll/internal/paymenttemplate/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type serviceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service paymenttemplate.Service
	repo    *paymenttemplateMock.MockRepository
}

func setupServiceTest(t *testing.T) *serviceDeps {
	ctrl := gomock.NewController(t)

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	repo := paymenttemplateMock.NewMockRepository(ctrl)

	return &serviceDeps{
		db:      db,
		sqlMock: sqlMock,
		service: paymenttemplate.NewService(db, repo),
		repo:    repo,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func TestPaymentTemplateService_Create(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	basic := uuid.New()
	hra := uuid.New()

	t.Run("keeps request order as field positions", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().CountFieldsInCompany(gomock.Any(), companyID, []uuid.UUID{hra, basic}).Return(int64(2), nil)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		deps.repo.EXPECT().
			ReplaceFields(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, fields []paymenttemplate.TemplateField) error {
				require.Len(t, fields, 2)
				assert.Equal(t, hra, fields[0].PaymentFieldID)
				assert.Equal(t, 1, fields[0].Position)
				assert.Equal(t, basic, fields[1].PaymentFieldID)
				assert.Equal(t, 2, fields[1].Position)
				return nil
			})
		deps.repo.EXPECT().FindByIDAndCompany(gomock.Any(), companyID, gomock.Any()).
			Return(&paymenttemplate.PaymentTemplate{
				ID:   uuid.New(),
				Name: "Staff",
				Fields: []paymenttemplate.TemplateField{
					{PaymentFieldID: hra, Position: 1, PaymentField: paymentfield.PaymentField{ID: hra, Name: "HRA"}},
					{PaymentFieldID: basic, Position: 2, PaymentField: paymentfield.PaymentField{
						ID: basic, Name: "Basic", Amount: decimal.NewNullDecimal(decimal.NewFromInt(5000)),
					}},
				},
			}, nil)

		resp, err := deps.service.Create(ctx, companyID, paymenttemplate.CreatePaymentTemplateRequest{
			Name:          "Staff",
			PaymentFields: []string{hra.String(), basic.String()},
		})

		require.NoError(t, err)
		require.Len(t, resp.Fields, 2)
		assert.Equal(t, "HRA", resp.Fields[0].Field.Name)
		assert.Equal(t, "5000", resp.Fields[1].Field.Amount.String())
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("duplicate field in request", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Create(ctx, companyID, paymenttemplate.CreatePaymentTemplateRequest{
			Name:          "Staff",
			PaymentFields: []string{basic.String(), basic.String()},
		})

		assert.ErrorIs(t, err, paymenttemplateerrors.ErrDuplicateField)
	})

	t.Run("field from another company", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().CountFieldsInCompany(gomock.Any(), companyID, gomock.Any()).Return(int64(1), nil)

		_, err := deps.service.Create(ctx, companyID, paymenttemplate.CreatePaymentTemplateRequest{
			Name:          "Staff",
			PaymentFields: []string{basic.String(), hra.String()},
		})

		assert.ErrorIs(t, err, paymenttemplateerrors.ErrUnknownField)
	})
}

func TestPaymentTemplateService_Delete(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	id := uuid.New().String()

	tests := []struct {
		name       string
		lockErr    error
		assigned   bool
		approved   bool
		deleteErr  error
		wantErr    error
		wantCommit bool
	}{
		{name: "already deleted", lockErr: gorm.ErrRecordNotFound, wantErr: paymenttemplateerrors.ErrPaymentTemplateNotFound},
		{name: "active assignment", assigned: true, wantErr: paymenttemplateerrors.ErrTemplateAssigned},
		{name: "approved payroll", approved: true, wantErr: paymenttemplateerrors.ErrTemplateInApprovedPayroll},
		{name: "missing", deleteErr: gorm.ErrRecordNotFound, wantErr: paymenttemplateerrors.ErrPaymentTemplateNotFound},
		{name: "success", wantCommit: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := setupServiceTest(t)
			defer deps.db.Close()

			expectTx(t, deps.sqlMock, tt.wantCommit)
			deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
			lock := deps.repo.EXPECT().LockLive(gomock.Any(), companyID, id).Return(tt.lockErr)
			if tt.lockErr == nil {
				// the row lock must be held before the assignment check reads
				deps.repo.EXPECT().HasActiveAssignment(gomock.Any(), companyID, id).Return(tt.assigned, nil).After(lock)
			}
			if tt.lockErr == nil && !tt.assigned {
				deps.repo.EXPECT().HasApprovedEntry(gomock.Any(), companyID, id).Return(tt.approved, nil)
			}
			if tt.lockErr == nil && !tt.assigned && !tt.approved {
				deps.repo.EXPECT().Delete(gomock.Any(), companyID, id).Return(tt.deleteErr)
			}

			err := deps.service.Delete(ctx, companyID, id)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		})
	}
}

func TestPaymentTemplateService_LoadWithFields_NotFound(t *testing.T) {
	deps := setupServiceTest(t)
	defer deps.db.Close()

	deps.repo.EXPECT().FindByIDAndCompany(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, gorm.ErrRecordNotFound)

	_, err := deps.service.LoadWithFields(context.Background(), uuid.New().String(), uuid.New().String())
	assert.ErrorIs(t, err, paymenttemplateerrors.ErrPaymentTemplateNotFound)
}
