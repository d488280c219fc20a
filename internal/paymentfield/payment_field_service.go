package paymentfield

import (
	"context"
	"database/sql"
	"strings"
	"time"

	paymentfielderrors "go-payroll/internal/paymentfield/errors"
	"go-payroll/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:generate mockgen -source=payment_field_service.go -destination=mock/payment_field_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID string, req CreatePaymentFieldRequest) (PaymentFieldResponse, error)
	GetAll(ctx context.Context, companyID string) ([]PaymentFieldResponse, error)
	GetByID(ctx context.Context, companyID, id string) (PaymentFieldResponse, error)
	Update(ctx context.Context, companyID, id string, req UpdatePaymentFieldRequest) (PaymentFieldResponse, error)
	Delete(ctx context.Context, companyID, id string) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("paymentfield.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("paymentfield.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) Create(
	ctx context.Context,
	companyID string,
	req CreatePaymentFieldRequest,
) (PaymentFieldResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return PaymentFieldResponse{}, paymentfielderrors.ErrInvalidCompanyID
	}

	field := &PaymentField{
		ID:        uuid.New(),
		CompanyID: companyUUID,
	}
	applyDefinition(field, req.Name, req.PaymentType, req.CalculationType, req.Amount, req.StatutoryFormulaRef, req.IsDeduction)
	if err := field.Validate(); err != nil {
		return PaymentFieldResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PaymentFieldResponse{}, err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Create(ctx, field); err != nil {
		s.logger.Error("create payment field failed",
			zap.String("request_id", contextutil.GetRequestID(ctx)),
			zap.String("company_id", companyID),
			zap.Error(err),
		)
		return PaymentFieldResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return PaymentFieldResponse{}, err
	}

	s.logger.Info("payment field created",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("payment_field_id", field.ID.String()),
		zap.String("calculation_type", field.CalculationType),
	)

	return ToResponse(*field), nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]PaymentFieldResponse, error) {
	fields, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(fields), nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (PaymentFieldResponse, error) {
	field, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return PaymentFieldResponse{}, mapRepositoryError(err)
	}
	return ToResponse(*field), nil
}

func (s *service) Update(
	ctx context.Context,
	companyID, id string,
	req UpdatePaymentFieldRequest,
) (PaymentFieldResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PaymentFieldResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	field, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return PaymentFieldResponse{}, mapRepositoryError(err)
	}

	locked, err := qtx.IsUsedInApprovedEntry(ctx, companyID, id)
	if err != nil {
		return PaymentFieldResponse{}, err
	}
	if locked {
		s.logger.Warn("update of payment field used by approved payroll rejected",
			zap.String("payment_field_id", id),
		)
		return PaymentFieldResponse{}, paymentfielderrors.ErrPaymentFieldLocked
	}

	applyDefinition(field, req.Name, req.PaymentType, req.CalculationType, req.Amount, req.StatutoryFormulaRef, req.IsDeduction)
	if err := field.Validate(); err != nil {
		return PaymentFieldResponse{}, err
	}

	if err := qtx.Update(ctx, field); err != nil {
		return PaymentFieldResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return PaymentFieldResponse{}, err
	}

	return ToResponse(*field), nil
}

func (s *service) Delete(ctx context.Context, companyID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	inUse, err := qtx.IsReferencedByTemplate(ctx, companyID, id)
	if err != nil {
		return err
	}
	if inUse {
		return paymentfielderrors.ErrPaymentFieldInTemplate
	}

	if err := qtx.Delete(ctx, companyID, id); err != nil {
		return mapRepositoryError(err)
	}

	return tx.Commit()
}

func applyDefinition(
	field *PaymentField,
	name, paymentType, calculationType string,
	amount *decimal.Decimal,
	formulaRef *string,
	isDeduction bool,
) {
	field.Name = strings.TrimSpace(name)
	field.PaymentType = paymentType
	field.CalculationType = calculationType
	field.IsDeduction = isDeduction
	field.Amount = decimal.NullDecimal{}
	field.StatutoryFormulaRef = nil

	if calculationType == CalculationStatutoryFormula {
		if formulaRef != nil {
			ref := strings.ToLower(strings.TrimSpace(*formulaRef))
			field.StatutoryFormulaRef = &ref
		}
		return
	}
	if amount != nil {
		field.Amount = decimal.NewNullDecimal(amount.Round(2))
	}
}

// ToResponse renders a field for API consumers.
func ToResponse(field PaymentField) PaymentFieldResponse {
	resp := PaymentFieldResponse{
		ID:                  field.ID.String(),
		CompanyID:           field.CompanyID.String(),
		Name:                field.Name,
		PaymentType:         field.PaymentType,
		CalculationType:     field.CalculationType,
		StatutoryFormulaRef: field.StatutoryFormulaRef,
		IsDeduction:         field.IsDeduction,
		UpdatedAt:           field.UpdatedAt.Format(time.RFC3339),
	}
	if field.Amount.Valid {
		v := field.Amount.Decimal
		resp.Amount = &v
	}
	return resp
}

func mapToListResponse(fields []PaymentField) []PaymentFieldResponse {
	resp := make([]PaymentFieldResponse, len(fields))
	for i, f := range fields {
		resp[i] = ToResponse(f)
	}
	return resp
}
