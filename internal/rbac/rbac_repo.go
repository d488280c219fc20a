package rbac

import (
	"context"

	"go-payroll/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=rbac_repo.go -destination=mock/rbac_repo_mock.go -package=mock
type Repository interface {
	GetEmployeeRoles(ctx context.Context, companyID string) ([]EmployeeRoleRow, error)
	GetRolePermissions(ctx context.Context, companyID string) ([]RolePermissionRow, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

type EmployeeRoleRow struct {
	EmployeeID string
	RoleID     string
}

type RolePermissionRow struct {
	RoleID   string
	Resource string
	Action   string
}

func (r *repository) GetEmployeeRoles(ctx context.Context, companyID string) ([]EmployeeRoleRow, error) {
	var result []EmployeeRoleRow

	err := r.db.WithContext(ctx).
		Table("employee_roles").
		Select("employee_roles.employee_id, employee_roles.role_id").
		Joins("JOIN roles ON roles.id = employee_roles.role_id").
		Scopes(tenant.ScopeTable("roles", companyID)).
		Scan(&result).Error

	return result, err
}

func (r *repository) GetRolePermissions(ctx context.Context, companyID string) ([]RolePermissionRow, error) {
	var result []RolePermissionRow

	err := r.db.WithContext(ctx).
		Table("role_permissions").
		Select("role_permissions.role_id, permissions.resource, permissions.action").
		Joins("JOIN roles ON roles.id = role_permissions.role_id").
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Scopes(tenant.ScopeTable("roles", companyID)).
		Scan(&result).Error

	return result, err
}
