package counter

import (
	"context"
	"database/sql"
	"fmt"

	"go-payroll/internal/shared/dbtx"

	"gorm.io/gorm"
)

const TypePayrollRun = "payroll_run"

//go:generate mockgen -source=counter_repo.go -destination=mock/counter_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	GetNextValue(ctx context.Context, companyID string, counterType string) (int64, error)
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

func (r *repository) GetNextValue(ctx context.Context, companyID string, counterType string) (int64, error) {
	var nextValue int64

	// Atomic upsert: concurrent callers in one company never share a value.
	err := dbtx.Conn(ctx, r.db, r.tx).Raw(`
		INSERT INTO company_counters (company_id, counter_type, last_value, updated_at)
		VALUES (?, ?, 1, now())
		ON CONFLICT (company_id, counter_type) DO UPDATE
		SET last_value = company_counters.last_value + 1, updated_at = now()
		RETURNING last_value
	`, companyID, counterType).Scan(&nextValue).Error

	if err != nil {
		return 0, err
	}

	return nextValue, nil
}

// FormatRunNumber renders a payroll run counter value, e.g. RUN-000042.
func FormatRunNumber(v int64) string {
	return fmt.Sprintf("RUN-%06d", v)
}
