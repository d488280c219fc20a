package middleware

import (
	"go-payroll/internal/domain"
	"go-payroll/internal/shared/apperror"

	"github.com/gin-gonic/gin"
)

// RBACService is satisfied by rbac.Service.
type RBACService interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

func RBACAuthorize(service RBACService, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		employeeID := c.GetString("employee_id")
		companyID := c.GetString("company_id")
		if employeeID == "" || companyID == "" {
			abortWith(c, apperror.ErrUnauthorized)
			return
		}

		allowed, err := service.Enforce(domain.EnforceRequest{
			EmployeeID: employeeID,
			CompanyID:  companyID,
			Resource:   resource,
			Action:     action,
		})
		if err != nil {
			abortWith(c, apperror.ErrInternal)
			return
		}

		if !allowed {
			abortWith(c, apperror.ErrForbidden.WithDetails(map[string]any{
				"required": resource + ":" + action,
			}))
			return
		}
		c.Next()
	}
}
