package assignment

type CreateAssignmentRequest struct {
	AssignmentType string  `json:"assignment_type" binding:"required,oneof=employee site"`
	EmployeeID     *string `json:"employee_id" binding:"omitempty,uuid"`
	SiteID         *string `json:"site_id" binding:"omitempty,uuid"`
	TemplateID     string  `json:"template_id" binding:"required,uuid"`
	EffectiveFrom  string  `json:"effective_from" binding:"required,isodate"`
	EffectiveTo    *string `json:"effective_to" binding:"omitempty,isodate"`
	IsActive       *bool   `json:"is_active"`
}

// UpdateAssignmentRequest is a patch; nil fields keep their value.
// OpenEnded clears effective_to.
type UpdateAssignmentRequest struct {
	AssignmentType *string `json:"assignment_type" binding:"omitempty,oneof=employee site"`
	EmployeeID     *string `json:"employee_id" binding:"omitempty,uuid"`
	SiteID         *string `json:"site_id" binding:"omitempty,uuid"`
	TemplateID     *string `json:"template_id" binding:"omitempty,uuid"`
	EffectiveFrom  *string `json:"effective_from" binding:"omitempty,isodate"`
	EffectiveTo    *string `json:"effective_to" binding:"omitempty,isodate"`
	OpenEnded      bool    `json:"open_ended"`
	IsActive       *bool   `json:"is_active"`
}

type ListFilter struct {
	AssignmentType string `form:"assignment_type" binding:"omitempty,oneof=employee site"`
	SubjectID      string `form:"subject_id" binding:"omitempty,uuid"`
	TemplateID     string `form:"template_id" binding:"omitempty,uuid"`
	ActiveOnly     bool   `form:"active_only"`
}

type ResolveQuery struct {
	SubjectType string `form:"subject_type" binding:"required,oneof=employee site"`
	SubjectID   string `form:"subject_id" binding:"required,uuid"`
	AsOf        string `form:"as_of" binding:"omitempty,isodate"`
}

type AssignmentResponse struct {
	ID             string  `json:"id"`
	CompanyID      string  `json:"company_id"`
	AssignmentType string  `json:"assignment_type"`
	EmployeeID     *string `json:"employee_id"`
	SiteID         *string `json:"site_id"`
	TemplateID     string  `json:"template_id"`
	EffectiveFrom  string  `json:"effective_from"`
	EffectiveTo    *string `json:"effective_to"`
	IsActive       bool    `json:"is_active"`
}

type ResolveResponse struct {
	AsOf       string              `json:"as_of"`
	Found      bool                `json:"found"`
	Source     string              `json:"source,omitempty"`
	Assignment *AssignmentResponse `json:"assignment,omitempty"`
}
