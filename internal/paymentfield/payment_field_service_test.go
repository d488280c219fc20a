package paymentfield_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"go-payroll/internal/paymentfield"
	paymentfielderrors "go-payroll/internal/paymentfield/errors"
	paymentfieldMock "go-payroll/internal/paymentfield/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type serviceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service paymentfield.Service
	repo    *paymentfieldMock.MockRepository
}

func setupServiceTest(t *testing.T) *serviceDeps {
	ctrl := gomock.NewController(t)

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	repo := paymentfieldMock.NewMockRepository(ctrl)

	return &serviceDeps{
		db:      db,
		sqlMock: sqlMock,
		service: paymentfield.NewService(db, repo),
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

func ptr[T any](v T) *T { return &v }

func TestPaymentFieldService_Create(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()

	t.Run("fixed field rounds amount to two places", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, f *paymentfield.PaymentField) error {
				assert.Equal(t, companyID, f.CompanyID.String())
				assert.True(t, f.Amount.Decimal.Equal(decimal.RequireFromString("5000.13")))
				return nil
			})

		resp, err := deps.service.Create(ctx, companyID, paymentfield.CreatePaymentFieldRequest{
			Name:            "  Basic ",
			PaymentType:     paymentfield.PaymentTypeFixed,
			CalculationType: paymentfield.CalculationFixed,
			Amount:          ptr(decimal.RequireFromString("5000.125")),
		})

		require.NoError(t, err)
		assert.Equal(t, "Basic", resp.Name)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("statutory field drops amount and normalises ref", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		resp, err := deps.service.Create(ctx, companyID, paymentfield.CreatePaymentFieldRequest{
			Name:                "Provident Fund",
			PaymentType:         paymentfield.PaymentTypeFixed,
			CalculationType:     paymentfield.CalculationStatutoryFormula,
			Amount:              ptr(decimal.NewFromInt(10)),
			StatutoryFormulaRef: ptr(" EPF "),
			IsDeduction:         true,
		})

		require.NoError(t, err)
		assert.Nil(t, resp.Amount)
		assert.Equal(t, "epf", *resp.StatutoryFormulaRef)
	})

	t.Run("unknown statutory ref is rejected before any write", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Create(ctx, companyID, paymentfield.CreatePaymentFieldRequest{
			Name:                "Mystery",
			PaymentType:         paymentfield.PaymentTypeFixed,
			CalculationType:     paymentfield.CalculationStatutoryFormula,
			StatutoryFormulaRef: ptr("tds"),
		})

		assert.ErrorIs(t, err, paymentfielderrors.ErrUnknownStatutoryFormula)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("percentage above 100 is rejected", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Create(ctx, companyID, paymentfield.CreatePaymentFieldRequest{
			Name:            "HRA",
			PaymentType:     paymentfield.PaymentTypeFixed,
			CalculationType: paymentfield.CalculationPercentageOfCTC,
			Amount:          ptr(decimal.NewFromInt(101)),
		})

		assert.ErrorIs(t, err, paymentfielderrors.ErrPercentageOutOfRange)
	})

	t.Run("invalid company id", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Create(ctx, "not-a-uuid", paymentfield.CreatePaymentFieldRequest{})
		assert.ErrorIs(t, err, paymentfielderrors.ErrInvalidCompanyID)
	})

	t.Run("duplicate name maps to conflict", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			Return(&pgconn.PgError{Code: "23505", ConstraintName: "uq_payment_field_name"})

		_, err := deps.service.Create(ctx, companyID, paymentfield.CreatePaymentFieldRequest{
			Name:            "Basic",
			PaymentType:     paymentfield.PaymentTypeFixed,
			CalculationType: paymentfield.CalculationFixed,
			Amount:          ptr(decimal.NewFromInt(5000)),
		})

		assert.ErrorIs(t, err, paymentfielderrors.ErrPaymentFieldNameExists)
	})
}

func TestPaymentFieldService_Update(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	id := uuid.New().String()

	req := paymentfield.UpdatePaymentFieldRequest{
		Name:            "Basic",
		PaymentType:     paymentfield.PaymentTypeFixed,
		CalculationType: paymentfield.CalculationFixed,
		Amount:          ptr(decimal.NewFromInt(6000)),
	}

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByIDAndCompany(gomock.Any(), companyID, id).
			Return(&paymentfield.PaymentField{ID: uuid.MustParse(id)}, nil)
		deps.repo.EXPECT().IsUsedInApprovedEntry(gomock.Any(), companyID, id).Return(false, nil)
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

		resp, err := deps.service.Update(ctx, companyID, id, req)

		require.NoError(t, err)
		assert.Equal(t, "6000", resp.Amount.String())
	})

	t.Run("locked by approved payroll", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByIDAndCompany(gomock.Any(), companyID, id).
			Return(&paymentfield.PaymentField{ID: uuid.MustParse(id)}, nil)
		deps.repo.EXPECT().IsUsedInApprovedEntry(gomock.Any(), companyID, id).Return(true, nil)
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Times(0)

		_, err := deps.service.Update(ctx, companyID, id, req)

		assert.ErrorIs(t, err, paymentfielderrors.ErrPaymentFieldLocked)
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByIDAndCompany(gomock.Any(), companyID, id).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.Update(ctx, companyID, id, req)

		assert.ErrorIs(t, err, paymentfielderrors.ErrPaymentFieldNotFound)
	})
}

func TestPaymentFieldService_Delete(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	id := uuid.New().String()

	t.Run("referenced by template", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().IsReferencedByTemplate(gomock.Any(), companyID, id).Return(true, nil)

		err := deps.service.Delete(ctx, companyID, id)

		assert.ErrorIs(t, err, paymentfielderrors.ErrPaymentFieldInTemplate)
	})

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().IsReferencedByTemplate(gomock.Any(), companyID, id).Return(false, nil)
		deps.repo.EXPECT().Delete(gomock.Any(), companyID, id).Return(nil)

		assert.NoError(t, deps.service.Delete(ctx, companyID, id))
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("repository error passes through", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		dbErr := errors.New("connection reset")
		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().IsReferencedByTemplate(gomock.Any(), companyID, id).Return(false, dbErr)

		assert.ErrorIs(t, deps.service.Delete(ctx, companyID, id), dbErr)
	})
}

func TestPaymentFieldService_GetAll(t *testing.T) {
	deps := setupServiceTest(t)
	defer deps.db.Close()

	companyID := uuid.New().String()
	deps.repo.EXPECT().FindAllByCompany(gomock.Any(), companyID).Return([]paymentfield.PaymentField{
		{ID: uuid.New(), Name: "Basic", Amount: decimal.NewNullDecimal(decimal.NewFromInt(5000))},
		{ID: uuid.New(), Name: "PF", StatutoryFormulaRef: ptr("epf")},
	}, nil)

	resp, err := deps.service.GetAll(context.Background(), companyID)

	require.NoError(t, err)
	require.Len(t, resp, 2)
	assert.Equal(t, "5000", resp[0].Amount.String())
	assert.Nil(t, resp[1].Amount)
}
