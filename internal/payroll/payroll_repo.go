package payroll

import (
	"context"
	"database/sql"
	"time"

	"go-payroll/internal/shared/dbtx"
	"go-payroll/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=payroll_repo.go -destination=mock/payroll_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	EmployeeBelongsToCompany(ctx context.Context, companyID string, employeeID uuid.UUID) (bool, error)
	FindEmployee(ctx context.Context, companyID string, employeeID uuid.UUID) (*PayslipEmployee, error)

	FindEntryForPeriod(ctx context.Context, companyID string, employeeID uuid.UUID, periodStart, periodEnd time.Time) (*PayrollEntry, error)
	FindEntryByID(ctx context.Context, companyID string, id string, lock bool) (*PayrollEntry, error)
	ListEntries(ctx context.Context, companyID string, filter EntryFilter) ([]PayrollEntry, error)
	CreateEntry(ctx context.Context, entry *PayrollEntry) error
	SaveEntry(ctx context.Context, entry *PayrollEntry) error
	ReplaceComponents(ctx context.Context, entryID uuid.UUID, components []PayrollEntryComponent) error
	DeleteEntry(ctx context.Context, companyID string, id uuid.UUID) error
	SetPayslip(ctx context.Context, companyID string, id uuid.UUID, path string, at time.Time) error

	CreateRun(ctx context.Context, run *PayrollRun) error
	FindRunByID(ctx context.Context, companyID string, id string, lock bool) (*PayrollRun, error)
	LockRunShared(ctx context.Context, companyID string, id uuid.UUID) (*PayrollRun, error)
	ListRuns(ctx context.Context, companyID string) ([]PayrollRun, error)
	SaveRun(ctx context.Context, run *PayrollRun) error
	ListRunEntries(ctx context.Context, companyID string, runID uuid.UUID) ([]PayrollEntry, error)
	ApproveRunEntries(ctx context.Context, companyID string, runID uuid.UUID, approver uuid.UUID, at time.Time) (int64, error)

	RecordFailure(ctx context.Context, failure *PayrollRunFailure) error
	ClearFailure(ctx context.Context, runID, employeeID uuid.UUID) error
	ListFailures(ctx context.Context, runID uuid.UUID) ([]PayrollRunFailure, error)
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

func withOrderedComponents(db *gorm.DB) *gorm.DB {
	return db.Preload("Components", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

func (r *repository) EmployeeBelongsToCompany(ctx context.Context, companyID string, employeeID uuid.UUID) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Table("employees").
		Where("id = ?", employeeID).
		Scopes(tenant.Scope(companyID)).
		Where("deleted_at IS NULL").
		Count(&count).Error
	return count > 0, err
}

func (r *repository) FindEmployee(ctx context.Context, companyID string, employeeID uuid.UUID) (*PayslipEmployee, error) {
	var employee PayslipEmployee
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&employee, "id = ?", employeeID).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

// FindEntryForPeriod locks the entry of an employee and period so a rebuild
// and an approval cannot interleave. It returns nil when none exists.
func (r *repository) FindEntryForPeriod(
	ctx context.Context,
	companyID string,
	employeeID uuid.UUID,
	periodStart, periodEnd time.Time,
) (*PayrollEntry, error) {
	var entries []PayrollEntry
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ? AND period_start = ? AND period_end = ?", employeeID, periodStart, periodEnd).
		Limit(1).
		Find(&entries).Error
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return &entries[0], nil
}

func (r *repository) FindEntryByID(ctx context.Context, companyID string, id string, lock bool) (*PayrollEntry, error) {
	db := r.conn(ctx)
	if lock {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var entry PayrollEntry
	err := db.
		Scopes(tenant.Scope(companyID), withOrderedComponents).
		First(&entry, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) ListEntries(ctx context.Context, companyID string, filter EntryFilter) ([]PayrollEntry, error) {
	db := r.conn(ctx).
		Scopes(tenant.Scope(companyID), withOrderedComponents)

	if filter.RunID != "" {
		db = db.Where("run_id = ?", filter.RunID)
	}
	if filter.EmployeeID != "" {
		db = db.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}

	var entries []PayrollEntry
	err := db.Order("period_start DESC, employee_id ASC").Find(&entries).Error
	return entries, err
}

func (r *repository) CreateEntry(ctx context.Context, entry *PayrollEntry) error {
	return r.conn(ctx).Omit("Components").Create(entry).Error
}

func (r *repository) SaveEntry(ctx context.Context, entry *PayrollEntry) error {
	return r.conn(ctx).Omit("Components").Save(entry).Error
}

func (r *repository) ReplaceComponents(ctx context.Context, entryID uuid.UUID, components []PayrollEntryComponent) error {
	db := r.conn(ctx)
	if err := db.Where("entry_id = ?", entryID).Delete(&PayrollEntryComponent{}).Error; err != nil {
		return err
	}
	if len(components) == 0 {
		return nil
	}
	return db.Create(&components).Error
}

func (r *repository) DeleteEntry(ctx context.Context, companyID string, id uuid.UUID) error {
	res := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("status = ?", StatusPending).
		Delete(&PayrollEntry{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) SetPayslip(ctx context.Context, companyID string, id uuid.UUID, path string, at time.Time) error {
	return r.conn(ctx).
		Model(&PayrollEntry{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		Updates(map[string]any{
			"payslip_path":         path,
			"payslip_generated_at": at,
		}).Error
}

func (r *repository) CreateRun(ctx context.Context, run *PayrollRun) error {
	return r.conn(ctx).Omit("Failures").Create(run).Error
}

func (r *repository) FindRunByID(ctx context.Context, companyID string, id string, lock bool) (*PayrollRun, error) {
	db := r.conn(ctx)
	if lock {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var run PayrollRun
	err := db.
		Scopes(tenant.Scope(companyID)).
		Preload("Failures", func(db *gorm.DB) *gorm.DB {
			return db.Order("employee_id ASC")
		}).
		First(&run, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// LockRunShared keeps a run from being approved while one of its entries is
// being built.
func (r *repository) LockRunShared(ctx context.Context, companyID string, id uuid.UUID) (*PayrollRun, error) {
	var run PayrollRun
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "SHARE"}).
		Scopes(tenant.Scope(companyID)).
		First(&run, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *repository) ListRuns(ctx context.Context, companyID string) ([]PayrollRun, error) {
	var runs []PayrollRun
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Failures").
		Order("period_start DESC, run_number DESC").
		Find(&runs).Error
	return runs, err
}

func (r *repository) SaveRun(ctx context.Context, run *PayrollRun) error {
	return r.conn(ctx).Omit("Failures").Save(run).Error
}

func (r *repository) ListRunEntries(ctx context.Context, companyID string, runID uuid.UUID) ([]PayrollEntry, error) {
	var entries []PayrollEntry
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("run_id = ?", runID).
		Order("employee_id ASC").
		Find(&entries).Error
	return entries, err
}

// ApproveRunEntries moves every pending entry of a run to approved and
// reports how many rows changed.
func (r *repository) ApproveRunEntries(
	ctx context.Context,
	companyID string,
	runID uuid.UUID,
	approver uuid.UUID,
	at time.Time,
) (int64, error) {
	res := r.conn(ctx).
		Model(&PayrollEntry{}).
		Scopes(tenant.Scope(companyID)).
		Where("run_id = ? AND status = ?", runID, StatusPending).
		Updates(map[string]any{
			"status":      StatusApproved,
			"approved_by": approver,
			"approved_at": at,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) RecordFailure(ctx context.Context, failure *PayrollRunFailure) error {
	return r.conn(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "run_id"}, {Name: "employee_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"code", "message", "details", "inputs", "updated_at"}),
		}).
		Create(failure).Error
}

func (r *repository) ClearFailure(ctx context.Context, runID, employeeID uuid.UUID) error {
	return r.conn(ctx).
		Where("run_id = ? AND employee_id = ?", runID, employeeID).
		Delete(&PayrollRunFailure{}).Error
}

func (r *repository) ListFailures(ctx context.Context, runID uuid.UUID) ([]PayrollRunFailure, error) {
	var failures []PayrollRunFailure
	err := r.conn(ctx).
		Where("run_id = ?", runID).
		Order("employee_id ASC").
		Find(&failures).Error
	return failures, err
}
