package rbac

import (
	"context"
	"sync"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	LoadCompanyPolicy(ctx context.Context, companyID string) error
	Enforce(req EnforceRequest) (bool, error)
}

type service struct {
	repo     Repository
	enforcer *casbin.Enforcer
	mu       sync.Mutex
	logger   *zap.Logger
}

func NewService(repo Repository, enforcer *casbin.Enforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	return &service{
		repo:     repo,
		enforcer: enforcer,
		logger:   l,
	}
}

func (s *service) LoadCompanyPolicy(ctx context.Context, companyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadCompanyPolicyUnlocked(ctx, companyID)
}

// loadCompanyPolicyUnlocked replaces the enforcer policy with one company's
// roles and permissions. Callers hold s.mu.
func (s *service) loadCompanyPolicyUnlocked(ctx context.Context, companyID string) error {
	s.enforcer.ClearPolicy()

	employeeRoles, err := s.repo.GetEmployeeRoles(ctx, companyID)
	if err != nil {
		return err
	}
	for _, er := range employeeRoles {
		if _, err := s.enforcer.AddGroupingPolicy(er.EmployeeID, er.RoleID, companyID); err != nil {
			return err
		}
	}

	rolePerms, err := s.repo.GetRolePermissions(ctx, companyID)
	if err != nil {
		return err
	}
	for _, rp := range rolePerms {
		if _, err := s.enforcer.AddPolicy(rp.RoleID, companyID, rp.Resource, rp.Action); err != nil {
			return err
		}
	}

	s.logger.Debug("rbac policy loaded",
		zap.String("company_id", companyID),
		zap.Int("employee_roles", len(employeeRoles)),
		zap.Int("role_permissions", len(rolePerms)),
	)
	return nil
}

// Enforce reloads the company policy and checks one permission. The policy
// is reloaded on every call so role changes apply immediately.
func (s *service) Enforce(req EnforceRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadCompanyPolicyUnlocked(context.Background(), req.CompanyID); err != nil {
		return false, err
	}

	allowed, err := s.enforcer.Enforce(req.EmployeeID, req.CompanyID, req.Resource, req.Action)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("employee_id", req.EmployeeID),
			zap.String("company_id", req.CompanyID),
			zap.Error(err),
		)
		return false, err
	}

	s.logger.Debug("rbac enforce",
		zap.String("employee_id", req.EmployeeID),
		zap.String("company_id", req.CompanyID),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)
	return allowed, nil
}
