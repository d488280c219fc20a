package assignment

import (
	"context"
	"time"

	assignmenterrors "go-payroll/internal/assignment/errors"
	"go-payroll/internal/shared/dateutil"

	"github.com/google/uuid"
)

// pickCovering returns the active assignment whose window contains asOf, or
// nil when none does. Two matches mean the stored data broke the no-overlap
// rule and resolution refuses to guess.
func pickCovering(list []Assignment, asOf time.Time) (*Assignment, error) {
	var found *Assignment
	for i := range list {
		a := list[i]
		if !a.IsActive || !a.Window().Contains(asOf) {
			continue
		}
		if found != nil {
			return nil, assignmenterrors.ErrAmbiguousAssignment.WithDetails(map[string]any{
				"assignment_ids": []string{found.ID.String(), a.ID.String()},
				"as_of":          dateutil.Format(asOf),
			})
		}
		found = &list[i]
	}
	return found, nil
}

// ResolveIn finds the assignment in force for a subject on asOf using repo,
// which may be bound to a transaction. An employee-level assignment wins; an
// employee without one falls back to the assignment of their site. A nil
// result with a nil error means nothing applies.
func ResolveIn(
	ctx context.Context,
	repo Repository,
	companyID string,
	subjectType string,
	subjectID uuid.UUID,
	asOf time.Time,
) (*Resolution, error) {
	asOf = dateutil.Truncate(asOf)

	switch subjectType {
	case TypeEmployee, TypeSite:
	default:
		return nil, assignmenterrors.ErrInvalidAssignmentType
	}

	list, err := repo.ListForSubject(ctx, companyID, subjectType, subjectID)
	if err != nil {
		return nil, err
	}
	found, err := pickCovering(list, asOf)
	if err != nil {
		return nil, err
	}
	if found != nil {
		return &Resolution{Assignment: *found, Source: subjectType}, nil
	}

	if subjectType != TypeEmployee {
		return nil, nil
	}

	siteID, err := repo.FindEmployeeSite(ctx, companyID, subjectID)
	if err != nil || siteID == nil {
		return nil, err
	}

	list, err = repo.ListForSubject(ctx, companyID, TypeSite, *siteID)
	if err != nil {
		return nil, err
	}
	found, err = pickCovering(list, asOf)
	if err != nil || found == nil {
		return nil, err
	}
	return &Resolution{Assignment: *found, Source: SourceSite}, nil
}
