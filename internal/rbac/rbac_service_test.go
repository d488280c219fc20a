package rbac

import (
	"context"
	"errors"
	"testing"

	"go-payroll/internal/rbac/infra"

	"github.com/casbin/casbin/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	roles map[string][]EmployeeRoleRow
	perms map[string][]RolePermissionRow
	err   error
}

func (f *fakeRepo) GetEmployeeRoles(_ context.Context, companyID string) ([]EmployeeRoleRow, error) {
	return f.roles[companyID], f.err
}

func (f *fakeRepo) GetRolePermissions(_ context.Context, companyID string) ([]RolePermissionRow, error) {
	return f.perms[companyID], f.err
}

func newTestEnforcer(t *testing.T) *casbin.Enforcer {
	t.Helper()
	e, err := infra.NewEnforcer("")
	require.NoError(t, err)
	return e
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		roles: map[string][]EmployeeRoleRow{
			"company-1": {{EmployeeID: "emp-1", RoleID: "role-payroll-admin"}, {EmployeeID: "emp-2", RoleID: "role-viewer"}},
			"company-2": {{EmployeeID: "emp-1", RoleID: "role-viewer-2"}},
		},
		perms: map[string][]RolePermissionRow{
			"company-1": {
				{RoleID: "role-payroll-admin", Resource: ResourcePayroll, Action: ActionApprove},
				{RoleID: "role-payroll-admin", Resource: ResourcePayroll, Action: ActionRead},
				{RoleID: "role-viewer", Resource: ResourcePayroll, Action: ActionRead},
			},
			"company-2": {
				{RoleID: "role-viewer-2", Resource: ResourceAssignment, Action: ActionRead},
			},
		},
	}
}

func TestRBACService_Enforce(t *testing.T) {
	service := NewService(newFakeRepo(), newTestEnforcer(t))

	tests := []struct {
		name string
		req  EnforceRequest
		want bool
	}{
		{"admin approves payroll", EnforceRequest{EmployeeID: "emp-1", CompanyID: "company-1", Resource: ResourcePayroll, Action: ActionApprove}, true},
		{"viewer reads payroll", EnforceRequest{EmployeeID: "emp-2", CompanyID: "company-1", Resource: ResourcePayroll, Action: ActionRead}, true},
		{"viewer cannot approve", EnforceRequest{EmployeeID: "emp-2", CompanyID: "company-1", Resource: ResourcePayroll, Action: ActionApprove}, false},
		{"roles do not cross companies", EnforceRequest{EmployeeID: "emp-1", CompanyID: "company-2", Resource: ResourcePayroll, Action: ActionApprove}, false},
		{"second company policy", EnforceRequest{EmployeeID: "emp-1", CompanyID: "company-2", Resource: ResourceAssignment, Action: ActionRead}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed, err := service.Enforce(tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, allowed)
		})
	}
}

func TestRBACService_RepositoryError(t *testing.T) {
	repo := newFakeRepo()
	repo.err = errors.New("db down")
	service := NewService(repo, newTestEnforcer(t))

	allowed, err := service.Enforce(EnforceRequest{EmployeeID: "emp-1", CompanyID: "company-1", Resource: ResourcePayroll, Action: ActionRead})

	assert.EqualError(t, err, "db down")
	assert.False(t, allowed)
	assert.EqualError(t, service.LoadCompanyPolicy(context.Background(), "company-1"), "db down")
}
