package assignment_test

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"go-payroll/internal/assignment"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// memRepository is an in-memory Repository used to check invariants over
// sequences of writes.
type memRepository struct {
	rows      map[uuid.UUID]assignment.Assignment
	sites     map[uuid.UUID]uuid.UUID
	templates map[uuid.UUID]bool
	refs      map[uuid.UUID][]assignment.EntryRef
}

func newMemRepository() *memRepository {
	return &memRepository{
		rows:      map[uuid.UUID]assignment.Assignment{},
		sites:     map[uuid.UUID]uuid.UUID{},
		templates: map[uuid.UUID]bool{},
		refs:      map[uuid.UUID][]assignment.EntryRef{},
	}
}

func (m *memRepository) WithTx(*sql.Tx) assignment.Repository { return m }

func (m *memRepository) LockSubject(context.Context, string, string, uuid.UUID) error { return nil }

func (m *memRepository) Create(_ context.Context, a *assignment.Assignment) error {
	m.rows[a.ID] = *a
	return nil
}

func (m *memRepository) Update(_ context.Context, a *assignment.Assignment) error {
	m.rows[a.ID] = *a
	return nil
}

func (m *memRepository) Delete(_ context.Context, _ string, id string) error {
	key, err := uuid.Parse(id)
	if err != nil {
		return gorm.ErrRecordNotFound
	}
	if _, ok := m.rows[key]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.rows, key)
	return nil
}

func (m *memRepository) FindByIDAndCompany(_ context.Context, _ string, id string) (*assignment.Assignment, error) {
	key, err := uuid.Parse(id)
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	a, ok := m.rows[key]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func (m *memRepository) FindAll(_ context.Context, _ string, filter assignment.ListFilter) ([]assignment.Assignment, error) {
	var out []assignment.Assignment
	for _, a := range m.rows {
		if filter.AssignmentType != "" && a.AssignmentType != filter.AssignmentType {
			continue
		}
		if filter.ActiveOnly && !a.IsActive {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *memRepository) ListForSubject(_ context.Context, _ string, assignmentType string, subjectID uuid.UUID) ([]assignment.Assignment, error) {
	var out []assignment.Assignment
	for _, a := range m.rows {
		if a.AssignmentType == assignmentType && a.SubjectID() == subjectID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EffectiveFrom.Before(out[j].EffectiveFrom) })
	return out, nil
}

func (m *memRepository) FindEmployeeSite(_ context.Context, _ string, employeeID uuid.UUID) (*uuid.UUID, error) {
	site, ok := m.sites[employeeID]
	if !ok {
		return nil, nil
	}
	return &site, nil
}

func (m *memRepository) TemplateExists(_ context.Context, _ string, templateID uuid.UUID) (bool, error) {
	return m.templates[templateID], nil
}

func (m *memRepository) ApprovedEntryRefs(_ context.Context, _ string, id uuid.UUID) ([]assignment.EntryRef, error) {
	return m.refs[id], nil
}

func (m *memRepository) ListOpenForEmployee(_ context.Context, _ string, employeeID uuid.UUID, from time.Time) ([]assignment.Assignment, error) {
	var out []assignment.Assignment
	for _, a := range m.rows {
		if a.AssignmentType != assignment.TypeEmployee || a.SubjectID() != employeeID || !a.IsActive {
			continue
		}
		if a.EffectiveTo != nil && !a.EffectiveTo.After(from) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}
