package payroll_test

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"go-payroll/internal/payroll"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// memRepository keeps entries, runs and failures in memory so service tests
// can observe state across calls.
type memRepository struct {
	mu        sync.Mutex
	employees map[uuid.UUID]string
	entries   map[uuid.UUID]payroll.PayrollEntry
	runs      map[uuid.UUID]payroll.PayrollRun
	failures  map[uuid.UUID]map[uuid.UUID]payroll.PayrollRunFailure
	writes    int
}

func newMemRepository() *memRepository {
	return &memRepository{
		employees: map[uuid.UUID]string{},
		entries:   map[uuid.UUID]payroll.PayrollEntry{},
		runs:      map[uuid.UUID]payroll.PayrollRun{},
		failures:  map[uuid.UUID]map[uuid.UUID]payroll.PayrollRunFailure{},
	}
}

func (m *memRepository) WithTx(*sql.Tx) payroll.Repository { return m }

func (m *memRepository) EmployeeBelongsToCompany(_ context.Context, _ string, employeeID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.employees[employeeID]
	return ok, nil
}

func (m *memRepository) FindEmployee(_ context.Context, _ string, employeeID uuid.UUID) (*payroll.PayslipEmployee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name, ok := m.employees[employeeID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &payroll.PayslipEmployee{ID: employeeID, FullName: name}, nil
}

func (m *memRepository) FindEntryForPeriod(_ context.Context, _ string, employeeID uuid.UUID, start, end time.Time) (*payroll.PayrollEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.EmployeeID == employeeID && e.PeriodStart.Equal(start) && e.PeriodEnd.Equal(end) {
			cp := e
			cp.Components = nil
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memRepository) FindEntryByID(_ context.Context, _ string, id string, _ bool) (*payroll.PayrollEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, err := uuid.Parse(id)
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	e, ok := m.entries[key]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &e, nil
}

func (m *memRepository) ListEntries(_ context.Context, _ string, filter payroll.EntryFilter) ([]payroll.PayrollEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []payroll.PayrollEntry
	for _, e := range m.entries {
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if filter.RunID != "" && (e.RunID == nil || e.RunID.String() != filter.RunID) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID.String() < out[j].EmployeeID.String() })
	return out, nil
}

func (m *memRepository) CreateEntry(_ context.Context, entry *payroll.PayrollEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.entries[entry.ID] = *entry
	return nil
}

func (m *memRepository) SaveEntry(_ context.Context, entry *payroll.PayrollEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	cur := m.entries[entry.ID]
	next := *entry
	if next.Components == nil {
		next.Components = cur.Components
	}
	m.entries[entry.ID] = next
	return nil
}

func (m *memRepository) ReplaceComponents(_ context.Context, entryID uuid.UUID, components []payroll.PayrollEntryComponent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entries[entryID]
	e.Components = append([]payroll.PayrollEntryComponent(nil), components...)
	m.entries[entryID] = e
	return nil
}

func (m *memRepository) DeleteEntry(_ context.Context, _ string, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.entries, id)
	return nil
}

func (m *memRepository) SetPayslip(_ context.Context, _ string, id uuid.UUID, path string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entries[id]
	e.PayslipPath = &path
	e.PayslipGeneratedAt = &at
	m.entries[id] = e
	return nil
}

func (m *memRepository) CreateRun(_ context.Context, run *payroll.PayrollRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = *run
	return nil
}

func (m *memRepository) runWithFailures(run payroll.PayrollRun) *payroll.PayrollRun {
	run.Failures = nil
	for _, f := range m.failures[run.ID] {
		run.Failures = append(run.Failures, f)
	}
	sort.Slice(run.Failures, func(i, j int) bool {
		return run.Failures[i].EmployeeID.String() < run.Failures[j].EmployeeID.String()
	})
	return &run
}

func (m *memRepository) FindRunByID(_ context.Context, _ string, id string, _ bool) (*payroll.PayrollRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, err := uuid.Parse(id)
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	run, ok := m.runs[key]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m.runWithFailures(run), nil
}

func (m *memRepository) LockRunShared(_ context.Context, _ string, id uuid.UUID) (*payroll.PayrollRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &run, nil
}

func (m *memRepository) ListRuns(_ context.Context, _ string) ([]payroll.PayrollRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []payroll.PayrollRun
	for _, r := range m.runs {
		out = append(out, *m.runWithFailures(r))
	}
	return out, nil
}

func (m *memRepository) SaveRun(_ context.Context, run *payroll.PayrollRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = *run
	return nil
}

func (m *memRepository) ListRunEntries(_ context.Context, _ string, runID uuid.UUID) ([]payroll.PayrollEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []payroll.PayrollEntry
	for _, e := range m.entries {
		if e.RunID != nil && *e.RunID == runID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID.String() < out[j].EmployeeID.String() })
	return out, nil
}

func (m *memRepository) ApproveRunEntries(_ context.Context, _ string, runID uuid.UUID, approver uuid.UUID, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, e := range m.entries {
		if e.RunID == nil || *e.RunID != runID || e.Status != payroll.StatusPending {
			continue
		}
		e.Status = payroll.StatusApproved
		e.ApprovedBy = &approver
		e.ApprovedAt = &at
		m.entries[id] = e
		n++
	}
	return n, nil
}

func (m *memRepository) RecordFailure(_ context.Context, failure *payroll.PayrollRunFailure) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures[failure.RunID] == nil {
		m.failures[failure.RunID] = map[uuid.UUID]payroll.PayrollRunFailure{}
	}
	m.failures[failure.RunID][failure.EmployeeID] = *failure
	return nil
}

func (m *memRepository) ClearFailure(_ context.Context, runID, employeeID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.failures[runID], employeeID)
	return nil
}

func (m *memRepository) ListFailures(_ context.Context, runID uuid.UUID) ([]payroll.PayrollRunFailure, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []payroll.PayrollRunFailure
	for _, f := range m.failures[runID] {
		out = append(out, f)
	}
	return out, nil
}
