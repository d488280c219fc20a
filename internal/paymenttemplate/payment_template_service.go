package paymenttemplate

import (
	"context"
	"database/sql"
	"strings"

	"go-payroll/internal/paymentfield"
	paymenttemplateerrors "go-payroll/internal/paymenttemplate/errors"
	"go-payroll/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=payment_template_service.go -destination=mock/payment_template_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID string, req CreatePaymentTemplateRequest) (PaymentTemplateResponse, error)
	GetAll(ctx context.Context, companyID string) ([]PaymentTemplateResponse, error)
	GetByID(ctx context.Context, companyID, id string) (PaymentTemplateResponse, error)
	Update(ctx context.Context, companyID, id string, req UpdatePaymentTemplateRequest) (PaymentTemplateResponse, error)
	Delete(ctx context.Context, companyID, id string) error
	LoadWithFields(ctx context.Context, companyID, id string) (*PaymentTemplate, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("paymenttemplate.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("paymenttemplate.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) Create(
	ctx context.Context,
	companyID string,
	req CreatePaymentTemplateRequest,
) (PaymentTemplateResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return PaymentTemplateResponse{}, paymenttemplateerrors.ErrInvalidCompanyID
	}

	fieldIDs, err := parseFieldIDs(req.PaymentFields)
	if err != nil {
		return PaymentTemplateResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PaymentTemplateResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if err := s.ensureFieldsInCompany(ctx, qtx, companyID, fieldIDs); err != nil {
		return PaymentTemplateResponse{}, err
	}

	tpl := &PaymentTemplate{
		ID:          uuid.New(),
		CompanyID:   companyUUID,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
	}
	if err := qtx.Create(ctx, tpl); err != nil {
		return PaymentTemplateResponse{}, mapRepositoryError(err)
	}
	if err := qtx.ReplaceFields(ctx, tpl.ID, buildTemplateFields(tpl.ID, fieldIDs)); err != nil {
		return PaymentTemplateResponse{}, mapRepositoryError(err)
	}

	saved, err := qtx.FindByIDAndCompany(ctx, companyID, tpl.ID.String())
	if err != nil {
		return PaymentTemplateResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return PaymentTemplateResponse{}, err
	}

	s.logger.Info("payment template created",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("template_id", tpl.ID.String()),
		zap.Int("fields", len(fieldIDs)),
	)

	return mapToResponse(*saved), nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]PaymentTemplateResponse, error) {
	templates, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	resp := make([]PaymentTemplateResponse, len(templates))
	for i, tpl := range templates {
		resp[i] = mapToResponse(tpl)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (PaymentTemplateResponse, error) {
	tpl, err := s.LoadWithFields(ctx, companyID, id)
	if err != nil {
		return PaymentTemplateResponse{}, err
	}
	return mapToResponse(*tpl), nil
}

// LoadWithFields returns the template with its fields in evaluation order.
func (s *service) LoadWithFields(ctx context.Context, companyID, id string) (*PaymentTemplate, error) {
	tpl, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return tpl, nil
}

func (s *service) Update(
	ctx context.Context,
	companyID, id string,
	req UpdatePaymentTemplateRequest,
) (PaymentTemplateResponse, error) {
	fieldIDs, err := parseFieldIDs(req.PaymentFields)
	if err != nil {
		return PaymentTemplateResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PaymentTemplateResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	tpl, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return PaymentTemplateResponse{}, mapRepositoryError(err)
	}

	if err := s.ensureFieldsInCompany(ctx, qtx, companyID, fieldIDs); err != nil {
		return PaymentTemplateResponse{}, err
	}

	tpl.Name = strings.TrimSpace(req.Name)
	tpl.Description = strings.TrimSpace(req.Description)
	if err := qtx.Update(ctx, tpl); err != nil {
		return PaymentTemplateResponse{}, mapRepositoryError(err)
	}
	if err := qtx.ReplaceFields(ctx, tpl.ID, buildTemplateFields(tpl.ID, fieldIDs)); err != nil {
		return PaymentTemplateResponse{}, mapRepositoryError(err)
	}

	saved, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return PaymentTemplateResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return PaymentTemplateResponse{}, err
	}

	return mapToResponse(*saved), nil
}

func (s *service) Delete(ctx context.Context, companyID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if err := qtx.LockLive(ctx, companyID, id); err != nil {
		return mapRepositoryError(err)
	}

	assigned, err := qtx.HasActiveAssignment(ctx, companyID, id)
	if err != nil {
		return err
	}
	if assigned {
		return paymenttemplateerrors.ErrTemplateAssigned
	}

	approved, err := qtx.HasApprovedEntry(ctx, companyID, id)
	if err != nil {
		return err
	}
	if approved {
		return paymenttemplateerrors.ErrTemplateInApprovedPayroll
	}

	if err := qtx.Delete(ctx, companyID, id); err != nil {
		return mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("payment template deleted",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("template_id", id),
	)
	return nil
}

func (s *service) ensureFieldsInCompany(ctx context.Context, repo Repository, companyID string, fieldIDs []uuid.UUID) error {
	count, err := repo.CountFieldsInCompany(ctx, companyID, fieldIDs)
	if err != nil {
		return err
	}
	if count != int64(len(fieldIDs)) {
		return paymenttemplateerrors.ErrUnknownField
	}
	return nil
}

// parseFieldIDs keeps request order and rejects repeats.
func parseFieldIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	seen := make(map[uuid.UUID]struct{}, len(raw))
	for _, v := range raw {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, paymenttemplateerrors.ErrInvalidFieldID
		}
		if _, dup := seen[id]; dup {
			return nil, paymenttemplateerrors.ErrDuplicateField.WithDetails(map[string]string{"payment_field_id": v})
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

func buildTemplateFields(templateID uuid.UUID, fieldIDs []uuid.UUID) []TemplateField {
	fields := make([]TemplateField, len(fieldIDs))
	for i, id := range fieldIDs {
		fields[i] = TemplateField{
			TemplateID:     templateID,
			PaymentFieldID: id,
			Position:       i + 1,
		}
	}
	return fields
}

func mapToResponse(tpl PaymentTemplate) PaymentTemplateResponse {
	fields := make([]TemplateFieldResponse, len(tpl.Fields))
	for i, f := range tpl.Fields {
		fields[i] = TemplateFieldResponse{
			Position: f.Position,
			Field:    paymentfield.ToResponse(f.PaymentField),
		}
	}
	return PaymentTemplateResponse{
		ID:          tpl.ID.String(),
		CompanyID:   tpl.CompanyID.String(),
		Name:        tpl.Name,
		Description: tpl.Description,
		Fields:      fields,
	}
}
