package paymenttemplate

import (
	"context"
	"database/sql"

	"go-payroll/internal/paymentfield"
	"go-payroll/internal/shared/dbtx"
	"go-payroll/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=payment_template_repo.go -destination=mock/payment_template_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, tpl *PaymentTemplate) error
	FindAllByCompany(ctx context.Context, companyID string) ([]PaymentTemplate, error)
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*PaymentTemplate, error)
	Update(ctx context.Context, tpl *PaymentTemplate) error
	ReplaceFields(ctx context.Context, templateID uuid.UUID, fields []TemplateField) error
	Delete(ctx context.Context, companyID string, id string) error
	CountFieldsInCompany(ctx context.Context, companyID string, fieldIDs []uuid.UUID) (int64, error)
	LockLive(ctx context.Context, companyID string, id string) error
	HasActiveAssignment(ctx context.Context, companyID string, id string) (bool, error)
	HasApprovedEntry(ctx context.Context, companyID string, id string) (bool, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return dbtx.Conn(ctx, r.db, r.tx)
}

func withOrderedFields(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Fields", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Fields.PaymentField")
}

func (r *repository) Create(ctx context.Context, tpl *PaymentTemplate) error {
	return r.conn(ctx).Omit("Fields").Create(tpl).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]PaymentTemplate, error) {
	var templates []PaymentTemplate
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID), withOrderedFields).
		Order("name ASC").
		Find(&templates).Error
	return templates, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*PaymentTemplate, error) {
	var tpl PaymentTemplate
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID), withOrderedFields).
		First(&tpl, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *repository) Update(ctx context.Context, tpl *PaymentTemplate) error {
	return r.conn(ctx).
		Model(&PaymentTemplate{}).
		Where("id = ? AND company_id = ?", tpl.ID, tpl.CompanyID).
		Updates(map[string]any{
			"name":        tpl.Name,
			"description": tpl.Description,
			"updated_at":  gorm.Expr("now()"),
		}).Error
}

// ReplaceFields swaps the whole ordered field list of a template.
func (r *repository) ReplaceFields(ctx context.Context, templateID uuid.UUID, fields []TemplateField) error {
	conn := r.conn(ctx)
	if err := conn.Where("template_id = ?", templateID).Delete(&TemplateField{}).Error; err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	return conn.Omit("PaymentField").Create(&fields).Error
}

func (r *repository) Delete(ctx context.Context, companyID string, id string) error {
	res := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&PaymentTemplate{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CountFieldsInCompany(ctx context.Context, companyID string, fieldIDs []uuid.UUID) (int64, error) {
	var count int64
	err := r.conn(ctx).
		Model(&paymentfield.PaymentField{}).
		Scopes(tenant.Scope(companyID)).
		Where("id IN ?", fieldIDs).
		Count(&count).Error
	return count, err
}

// LockLive row-locks a live template. Assignment writers read the same row
// FOR SHARE, so a delete and a new assignment for one template serialize.
func (r *repository) LockLive(ctx context.Context, companyID string, id string) error {
	var row struct {
		ID uuid.UUID
	}
	return r.conn(ctx).
		Table("payment_templates").
		Select("id").
		Scopes(tenant.Scope(companyID)).
		Where("id = ? AND deleted_at IS NULL", id).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Take(&row).Error
}

func (r *repository) HasActiveAssignment(ctx context.Context, companyID string, id string) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Table("payment_template_assignments").
		Scopes(tenant.Scope(companyID)).
		Where("template_id = ? AND is_active = TRUE", id).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) HasApprovedEntry(ctx context.Context, companyID string, id string) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Table("payroll_entries").
		Scopes(tenant.Scope(companyID)).
		Where("template_id = ? AND status = ?", id, "approved").
		Count(&count).Error
	return count > 0, err
}
