package paymentfield

import (
	"context"
	"database/sql"

	"go-payroll/internal/shared/dbtx"
	"go-payroll/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=payment_field_repo.go -destination=mock/payment_field_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, field *PaymentField) error
	FindAllByCompany(ctx context.Context, companyID string) ([]PaymentField, error)
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*PaymentField, error)
	Update(ctx context.Context, field *PaymentField) error
	Delete(ctx context.Context, companyID string, id string) error
	IsReferencedByTemplate(ctx context.Context, companyID string, id string) (bool, error)
	IsUsedInApprovedEntry(ctx context.Context, companyID string, id string) (bool, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{
		db: r.db,
		tx: tx,
	}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return dbtx.Conn(ctx, r.db, r.tx)
}

func (r *repository) Create(ctx context.Context, field *PaymentField) error {
	return r.conn(ctx).Create(field).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]PaymentField, error) {
	var fields []PaymentField
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("name ASC").
		Find(&fields).Error
	return fields, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*PaymentField, error) {
	var field PaymentField
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&field, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &field, nil
}

func (r *repository) Update(ctx context.Context, field *PaymentField) error {
	return r.conn(ctx).Save(field).Error
}

func (r *repository) Delete(ctx context.Context, companyID string, id string) error {
	res := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&PaymentField{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) IsReferencedByTemplate(ctx context.Context, companyID string, id string) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Table("payment_template_fields").
		Joins("JOIN payment_templates ON payment_templates.id = payment_template_fields.template_id").
		Scopes(tenant.ScopeTable("payment_templates", companyID)).
		Where("payment_template_fields.payment_field_id = ?", id).
		Where("payment_templates.deleted_at IS NULL").
		Count(&count).Error
	return count > 0, err
}

func (r *repository) IsUsedInApprovedEntry(ctx context.Context, companyID string, id string) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Table("payroll_entry_components").
		Joins("JOIN payroll_entries ON payroll_entries.id = payroll_entry_components.entry_id").
		Scopes(tenant.ScopeTable("payroll_entries", companyID)).
		Where("payroll_entry_components.payment_field_id = ?", id).
		Where("payroll_entries.status = ?", "approved").
		Count(&count).Error
	return count > 0, err
}
