package assignment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go-payroll/internal/shared/dbtx"
	"go-payroll/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=assignment_repo.go -destination=mock/assignment_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	LockSubject(ctx context.Context, companyID string, assignmentType string, subjectID uuid.UUID) error
	Create(ctx context.Context, a *Assignment) error
	Update(ctx context.Context, a *Assignment) error
	Delete(ctx context.Context, companyID string, id string) error
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*Assignment, error)
	FindAll(ctx context.Context, companyID string, filter ListFilter) ([]Assignment, error)
	ListForSubject(ctx context.Context, companyID string, assignmentType string, subjectID uuid.UUID) ([]Assignment, error)
	FindEmployeeSite(ctx context.Context, companyID string, employeeID uuid.UUID) (*uuid.UUID, error)
	TemplateExists(ctx context.Context, companyID string, templateID uuid.UUID) (bool, error)
	ApprovedEntryRefs(ctx context.Context, companyID string, id uuid.UUID) ([]EntryRef, error)
	ListOpenForEmployee(ctx context.Context, companyID string, employeeID uuid.UUID, from time.Time) ([]Assignment, error)
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

// LockSubject takes a transaction-scoped advisory lock so concurrent writers
// for one subject queue up behind each other.
func (r *repository) LockSubject(ctx context.Context, companyID string, assignmentType string, subjectID uuid.UUID) error {
	key := fmt.Sprintf("assignment:%s:%s:%s", companyID, assignmentType, subjectID)
	return r.conn(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error
}

func (r *repository) Create(ctx context.Context, a *Assignment) error {
	return r.conn(ctx).Create(a).Error
}

func (r *repository) Update(ctx context.Context, a *Assignment) error {
	return r.conn(ctx).Save(a).Error
}

func (r *repository) Delete(ctx context.Context, companyID string, id string) error {
	res := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&Assignment{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*Assignment, error) {
	var a Assignment
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&a, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) FindAll(ctx context.Context, companyID string, filter ListFilter) ([]Assignment, error) {
	q := r.conn(ctx).Scopes(tenant.Scope(companyID))

	if filter.AssignmentType != "" {
		q = q.Where("assignment_type = ?", filter.AssignmentType)
	}
	if filter.SubjectID != "" {
		q = q.Where("(employee_id = ? OR site_id = ?)", filter.SubjectID, filter.SubjectID)
	}
	if filter.TemplateID != "" {
		q = q.Where("template_id = ?", filter.TemplateID)
	}
	if filter.ActiveOnly {
		q = q.Where("is_active = TRUE")
	}

	var list []Assignment
	err := q.Order("effective_from DESC, created_at DESC").Find(&list).Error
	return list, err
}

func subjectColumn(assignmentType string) string {
	if assignmentType == TypeSite {
		return "site_id"
	}
	return "employee_id"
}

// ListForSubject returns every assignment of the subject, oldest window first.
func (r *repository) ListForSubject(ctx context.Context, companyID string, assignmentType string, subjectID uuid.UUID) ([]Assignment, error) {
	var list []Assignment
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("assignment_type = ?", assignmentType).
		Where(subjectColumn(assignmentType)+" = ?", subjectID).
		Order("effective_from ASC").
		Find(&list).Error
	return list, err
}

// FindEmployeeSite reads the employee's current site. Employees are owned by
// the HR service; a missing row or an employee without a site yields nil.
func (r *repository) FindEmployeeSite(ctx context.Context, companyID string, employeeID uuid.UUID) (*uuid.UUID, error) {
	var row struct {
		SiteID *uuid.UUID
	}
	err := r.conn(ctx).
		Table("employees").
		Select("site_id").
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", employeeID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.SiteID, nil
}

// TemplateExists reads the template row FOR SHARE so a concurrent template
// delete blocks until this transaction ends.
func (r *repository) TemplateExists(ctx context.Context, companyID string, templateID uuid.UUID) (bool, error) {
	var row struct {
		ID uuid.UUID
	}
	err := r.conn(ctx).
		Table("payment_templates").
		Select("id").
		Scopes(tenant.Scope(companyID)).
		Where("id = ? AND deleted_at IS NULL", templateID).
		Clauses(clause.Locking{Strength: "SHARE"}).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *repository) ApprovedEntryRefs(ctx context.Context, companyID string, id uuid.UUID) ([]EntryRef, error) {
	var refs []EntryRef
	err := r.conn(ctx).
		Table("payroll_entries").
		Select("id AS entry_id, template_id, period_start").
		Scopes(tenant.Scope(companyID)).
		Where("assignment_id = ? AND status = ?", id, "approved").
		Order("period_start ASC").
		Scan(&refs).Error
	return refs, err
}

// ListOpenForEmployee returns active employee-level assignments still in force
// on or after from.
func (r *repository) ListOpenForEmployee(ctx context.Context, companyID string, employeeID uuid.UUID, from time.Time) ([]Assignment, error) {
	var list []Assignment
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("assignment_type = ? AND employee_id = ? AND is_active = TRUE", TypeEmployee, employeeID).
		Where("(effective_to IS NULL OR effective_to > ?)", from).
		Order("effective_from ASC").
		Find(&list).Error
	return list, err
}
