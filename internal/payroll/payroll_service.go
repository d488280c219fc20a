package payroll

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"sort"
	"sync"
	"time"

	"go-payroll/internal/assignment"
	"go-payroll/internal/bootstrap"
	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/paymentfield"
	"go-payroll/internal/paymenttemplate"
	payrollerrors "go-payroll/internal/payroll/errors"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/contextutil"
	"go-payroll/internal/shared/counter"
	"go-payroll/internal/shared/dateutil"
	"go-payroll/internal/statutory"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

//go:generate mockgen -source=payroll_service.go -destination=mock/payroll_service_mock.go -package=mock
type Service interface {
	BuildEntry(ctx context.Context, companyID, actorID string, req BuildEntryRequest) (EntryResponse, error)
	GetEntry(ctx context.Context, companyID, id string) (EntryResponse, error)
	ListEntries(ctx context.Context, companyID string, filter EntryFilter) ([]EntryResponse, error)
	DeleteEntry(ctx context.Context, companyID, id string) error
	ApproveEntry(ctx context.Context, companyID, actorID, id string) (EntryResponse, error)

	CreateRun(ctx context.Context, companyID, actorID string, req CreateRunRequest) (RunResultResponse, error)
	RebuildRunEntry(ctx context.Context, companyID, actorID, runID string, req RebuildRunEntryRequest) (EntryResponse, error)
	ApproveRun(ctx context.Context, companyID, actorID, runID string) (RunResponse, error)
	GetRun(ctx context.Context, companyID, id string) (RunResponse, error)
	ListRuns(ctx context.Context, companyID string) ([]RunResponse, error)

	GeneratePayslips(ctx context.Context, companyID string, entryIDs []string) (int, error)
	PayslipFile(ctx context.Context, companyID, id string) (string, error)
}

type Options struct {
	// BuildConcurrency bounds how many entries of a run build at once.
	BuildConcurrency int
	PayslipDir       string
}

type service struct {
	db          *sql.DB
	repo        Repository
	assignments assignment.Repository
	templates   paymenttemplate.Repository
	counters    counter.Repository
	outbox      kafka.OutboxRepository
	evaluator   *Evaluator
	payslips    *PayslipWriter
	audit       bootstrap.AuditLogger
	opts        Options
	logger      *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	assignments assignment.Repository,
	templates paymenttemplate.Repository,
	counters counter.Repository,
	outbox kafka.OutboxRepository,
	calc statutory.Calculator,
	audit bootstrap.AuditLogger,
	opts Options,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("payroll.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.service")
	}
	if audit == nil {
		audit = bootstrap.NewZapAuditLogger(l)
	}
	if opts.BuildConcurrency <= 0 {
		opts.BuildConcurrency = 4
	}
	if opts.PayslipDir == "" {
		opts.PayslipDir = "storage/payslips"
	}
	return &service{
		db:          db,
		repo:        repo,
		assignments: assignments,
		templates:   templates,
		counters:    counters,
		outbox:      outbox,
		evaluator:   NewEvaluator(calc),
		payslips:    NewPayslipWriter(opts.PayslipDir),
		audit:       audit,
		opts:        opts,
		logger:      l,
	}
}

type buildParams struct {
	companyID   uuid.UUID
	employeeID  uuid.UUID
	actorID     uuid.UUID
	periodStart time.Time
	periodEnd   time.Time
	inputs      EntryInputs
	runID       *uuid.UUID
}

func (s *service) BuildEntry(
	ctx context.Context,
	companyID, actorID string,
	req BuildEntryRequest,
) (EntryResponse, error) {
	companyUUID, actorUUID, err := parseTenant(companyID, actorID)
	if err != nil {
		return EntryResponse{}, err
	}
	employeeUUID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return EntryResponse{}, payrollerrors.ErrInvalidEmployeeID
	}
	periodStart, periodEnd, err := parsePeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return EntryResponse{}, err
	}

	entry, err := s.build(ctx, companyID, buildParams{
		companyID:   companyUUID,
		employeeID:  employeeUUID,
		actorID:     actorUUID,
		periodStart: periodStart,
		periodEnd:   periodEnd,
		inputs:      req.Inputs,
	})
	if err != nil {
		return EntryResponse{}, err
	}

	return mapEntryToResponse(*entry), nil
}

// build computes and stores one entry in its own transaction. A pending
// entry for the same employee and period is regenerated in place.
func (s *service) build(ctx context.Context, companyID string, p buildParams) (*PayrollEntry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if p.runID != nil {
		run, err := qtx.LockRunShared(ctx, companyID, *p.runID)
		if err != nil {
			return nil, mapRepositoryError(err, payrollerrors.ErrRunNotFound)
		}
		if run.Status == StatusApproved {
			return nil, payrollerrors.ErrRunApproved
		}
	}

	belongs, err := qtx.EmployeeBelongsToCompany(ctx, companyID, p.employeeID)
	if err != nil {
		return nil, err
	}
	if !belongs {
		return nil, payrollerrors.ErrEmployeeNotInCompany
	}

	existing, err := qtx.FindEntryForPeriod(ctx, companyID, p.employeeID, p.periodStart, p.periodEnd)
	if err != nil {
		return nil, mapRepositoryError(err, payrollerrors.ErrEntryNotFound)
	}
	if existing != nil {
		if existing.Status == StatusApproved {
			return nil, payrollerrors.ErrEntryApproved.WithDetails(map[string]any{
				"entry_id": existing.ID.String(),
			})
		}
		if existing.RunID != nil && p.runID != nil && *existing.RunID != *p.runID {
			return nil, payrollerrors.ErrEntryInOtherRun.WithDetails(map[string]any{
				"entry_id": existing.ID.String(),
				"run_id":   existing.RunID.String(),
			})
		}
	}

	// The period start anchors which template applies.
	res, err := assignment.ResolveIn(ctx, s.assignments.WithTx(tx), companyID, assignment.TypeEmployee, p.employeeID, p.periodStart)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, payrollerrors.ErrNoTemplateAssigned.WithDetails(map[string]any{
			"employee_id": p.employeeID.String(),
			"as_of":       dateutil.Format(p.periodStart),
		})
	}

	tpl, err := s.templates.WithTx(tx).FindByIDAndCompany(ctx, companyID, res.Assignment.TemplateID.String())
	if err != nil {
		return nil, mapRepositoryError(err, payrollerrors.ErrNoTemplateAssigned)
	}

	computation, err := s.evaluator.Evaluate(templateFields(tpl), p.inputs, p.periodStart)
	if err != nil {
		return nil, err
	}

	fingerprint, err := Fingerprint(p.employeeID, tpl.ID, p.periodStart, p.periodEnd, p.inputs, computation)
	if err != nil {
		return nil, err
	}

	entry := existing
	if entry == nil {
		entry = &PayrollEntry{
			ID:          uuid.New(),
			CompanyID:   p.companyID,
			EmployeeID:  p.employeeID,
			PeriodStart: p.periodStart,
			PeriodEnd:   p.periodEnd,
			CreatedBy:   p.actorID,
		}
	} else if unchanged(entry, fingerprint, res.Assignment.ID, p.runID) {
		s.logger.Debug("payroll entry unchanged, skipping rewrite",
			zap.String("request_id", contextutil.GetRequestID(ctx)),
			zap.String("entry_id", entry.ID.String()),
		)
		if err := tx.Commit(); err != nil {
			return nil, mapRepositoryError(err, payrollerrors.ErrEntryNotFound)
		}
		entry.Components = withEntryID(entry.ID, computation.Components)
		return entry, nil
	}

	snapshot, err := json.Marshal(p.inputs)
	if err != nil {
		return nil, err
	}

	if p.runID != nil {
		entry.RunID = p.runID
	}
	assignmentID := res.Assignment.ID
	entry.AssignmentID = &assignmentID
	entry.TemplateID = tpl.ID
	entry.AssignmentSource = res.Source
	entry.MonthlyCTC = decimal.NullDecimal{}
	if p.inputs.MonthlyCTC != nil {
		entry.MonthlyCTC = decimal.NewNullDecimal(*p.inputs.MonthlyCTC)
	}
	entry.Inputs = snapshot
	entry.GrossEarnings = computation.GrossEarnings
	entry.TotalDeductions = computation.TotalDeductions
	entry.EmployerContributions = computation.EmployerContributions
	entry.NetPay = computation.NetPay
	entry.Status = StatusPending
	entry.Fingerprint = fingerprint
	entry.Components = nil

	if existing == nil {
		err = qtx.CreateEntry(ctx, entry)
	} else {
		err = qtx.SaveEntry(ctx, entry)
	}
	if err != nil {
		return nil, mapRepositoryError(err, payrollerrors.ErrEntryNotFound)
	}

	components := withEntryID(entry.ID, computation.Components)
	if err := qtx.ReplaceComponents(ctx, entry.ID, components); err != nil {
		return nil, mapRepositoryError(err, payrollerrors.ErrEntryNotFound)
	}

	if err := tx.Commit(); err != nil {
		return nil, mapRepositoryError(err, payrollerrors.ErrEntryNotFound)
	}
	entry.Components = components

	s.logger.Info("payroll entry built",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("entry_id", entry.ID.String()),
		zap.String("employee_id", p.employeeID.String()),
		zap.String("template_id", tpl.ID.String()),
		zap.String("source", res.Source),
		zap.Bool("regenerated", existing != nil),
		zap.String("net_pay", entry.NetPay.StringFixed(2)),
	)

	return entry, nil
}

func (s *service) GetEntry(ctx context.Context, companyID, id string) (EntryResponse, error) {
	entry, err := s.repo.FindEntryByID(ctx, companyID, id, false)
	if err != nil {
		return EntryResponse{}, mapRepositoryError(err, payrollerrors.ErrEntryNotFound)
	}
	return mapEntryToResponse(*entry), nil
}

func (s *service) ListEntries(ctx context.Context, companyID string, filter EntryFilter) ([]EntryResponse, error) {
	switch filter.Status {
	case "", StatusPending, StatusApproved:
	default:
		return nil, payrollerrors.ErrInvalidStatusFilter
	}

	entries, err := s.repo.ListEntries(ctx, companyID, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]EntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = mapEntryToResponse(e)
	}
	return resp, nil
}

// DeleteEntry removes a pending entry. A run entry leaves a failure behind
// so the run cannot be approved until the employee is rebuilt.
func (s *service) DeleteEntry(ctx context.Context, companyID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	entry, err := qtx.FindEntryByID(ctx, companyID, id, true)
	if err != nil {
		return mapRepositoryError(err, payrollerrors.ErrEntryNotFound)
	}
	if entry.Status == StatusApproved {
		return payrollerrors.ErrEntryApproved
	}

	if err := qtx.DeleteEntry(ctx, companyID, entry.ID); err != nil {
		return mapRepositoryError(err, payrollerrors.ErrEntryNotFound)
	}

	if entry.RunID != nil {
		failure := PayrollRunFailure{
			RunID:      *entry.RunID,
			EmployeeID: entry.EmployeeID,
			CompanyID:  entry.CompanyID,
			Code:       "ENTRY_DELETED",
			Message:    "payroll entry was deleted and must be rebuilt",
			Inputs:     entry.Inputs,
		}
		if err := qtx.RecordFailure(ctx, &failure); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ApproveEntry approves a standalone entry. Entries that belong to a run
// are approved together with their run.
func (s *service) ApproveEntry(ctx context.Context, companyID, actorID, id string) (EntryResponse, error) {
	_, actorUUID, err := parseTenant(companyID, actorID)
	if err != nil {
		return EntryResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return EntryResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	entry, err := qtx.FindEntryByID(ctx, companyID, id, true)
	if err != nil {
		return EntryResponse{}, mapRepositoryError(err, payrollerrors.ErrEntryNotFound)
	}
	if entry.RunID != nil {
		return EntryResponse{}, payrollerrors.ErrEntryInRun.WithDetails(map[string]any{
			"run_id": entry.RunID.String(),
		})
	}
	if entry.Status == StatusApproved {
		return EntryResponse{}, payrollerrors.ErrEntryAlreadyApproved
	}

	now := time.Now().UTC()
	entry.Status = StatusApproved
	entry.ApprovedBy = &actorUUID
	entry.ApprovedAt = &now

	if err := qtx.SaveEntry(ctx, entry); err != nil {
		return EntryResponse{}, mapRepositoryError(err, payrollerrors.ErrEntryNotFound)
	}

	if err := s.emitApproved(ctx, tx, events.EventPayrollEntryApproved, companyID, actorID, "", []string{entry.ID.String()}); err != nil {
		return EntryResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return EntryResponse{}, mapRepositoryError(err, payrollerrors.ErrEntryNotFound)
	}

	return mapEntryToResponse(*entry), nil
}

func (s *service) CreateRun(
	ctx context.Context,
	companyID, actorID string,
	req CreateRunRequest,
) (RunResultResponse, error) {
	companyUUID, actorUUID, err := parseTenant(companyID, actorID)
	if err != nil {
		return RunResultResponse{}, err
	}
	periodStart, periodEnd, err := parsePeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return RunResultResponse{}, err
	}
	if len(req.Items) == 0 {
		return RunResultResponse{}, payrollerrors.ErrEmptyRun
	}

	employees := make([]uuid.UUID, len(req.Items))
	seen := make(map[uuid.UUID]struct{}, len(req.Items))
	for i, item := range req.Items {
		id, err := uuid.Parse(item.EmployeeID)
		if err != nil {
			return RunResultResponse{}, payrollerrors.ErrInvalidEmployeeID
		}
		if _, dup := seen[id]; dup {
			return RunResultResponse{}, payrollerrors.ErrDuplicateRunEmployee.WithDetails(map[string]any{
				"employee_id": id.String(),
			})
		}
		seen[id] = struct{}{}
		employees[i] = id
	}

	run, err := s.openRun(ctx, companyID, PayrollRun{
		ID:          uuid.New(),
		CompanyID:   companyUUID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Headcount:   len(req.Items),
		Status:      StatusPending,
		CreatedBy:   actorUUID,
	})
	if err != nil {
		return RunResultResponse{}, err
	}

	var (
		mu     sync.Mutex
		result RunResultResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.BuildConcurrency)

	for i, item := range req.Items {
		employeeID := employees[i]
		inputs := item.Inputs

		g.Go(func() error {
			entry, err := s.build(gctx, companyID, buildParams{
				companyID:   companyUUID,
				employeeID:  employeeID,
				actorID:     actorUUID,
				periodStart: periodStart,
				periodEnd:   periodEnd,
				inputs:      inputs,
				runID:       &run.ID,
			})
			if err != nil {
				failure, ferr := s.recordFailure(gctx, *run, employeeID, inputs, err)
				if ferr != nil {
					return ferr
				}
				mu.Lock()
				result.Failed = append(result.Failed, mapFailureToResponse(failure))
				run.Failures = append(run.Failures, failure)
				mu.Unlock()
				return nil
			}

			mu.Lock()
			result.Succeeded = append(result.Succeeded, RunEntrySummary{
				EmployeeID: employeeID.String(),
				EntryID:    entry.ID.String(),
				NetPay:     entry.NetPay.StringFixed(2),
			})
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return RunResultResponse{}, err
	}

	sort.Slice(result.Succeeded, func(i, j int) bool { return result.Succeeded[i].EmployeeID < result.Succeeded[j].EmployeeID })
	sort.Slice(result.Failed, func(i, j int) bool { return result.Failed[i].EmployeeID < result.Failed[j].EmployeeID })
	sort.Slice(run.Failures, func(i, j int) bool {
		return run.Failures[i].EmployeeID.String() < run.Failures[j].EmployeeID.String()
	})
	if result.Succeeded == nil {
		result.Succeeded = []RunEntrySummary{}
	}
	if result.Failed == nil {
		result.Failed = []FailureResponse{}
	}
	result.Run = mapRunToResponse(*run)

	s.logger.Info("payroll run built",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("run_id", run.ID.String()),
		zap.String("run_number", run.RunNumber),
		zap.Int("succeeded", len(result.Succeeded)),
		zap.Int("failed", len(result.Failed)),
	)

	return result, nil
}

func (s *service) openRun(ctx context.Context, companyID string, run PayrollRun) (*PayrollRun, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	next, err := s.counters.WithTx(tx).GetNextValue(ctx, companyID, counter.TypePayrollRun)
	if err != nil {
		return nil, err
	}
	run.RunNumber = counter.FormatRunNumber(next)

	if err := s.repo.WithTx(tx).CreateRun(ctx, &run); err != nil {
		return nil, mapRepositoryError(err, payrollerrors.ErrRunNotFound)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *service) recordFailure(
	ctx context.Context,
	run PayrollRun,
	employeeID uuid.UUID,
	inputs EntryInputs,
	cause error,
) (PayrollRunFailure, error) {
	httpErr := apperror.ToHTTP(cause)
	failure := PayrollRunFailure{
		RunID:      run.ID,
		EmployeeID: employeeID,
		CompanyID:  run.CompanyID,
		Code:       httpErr.Code,
		Message:    httpErr.Message,
	}
	if httpErr.Details != nil {
		if b, err := json.Marshal(httpErr.Details); err == nil {
			failure.Details = b
		}
	}
	if b, err := json.Marshal(inputs); err == nil {
		failure.Inputs = b
	}

	log := s.logger.With(
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("run_id", run.ID.String()),
		zap.String("employee_id", employeeID.String()),
		zap.String("code", failure.Code),
	)
	var appErr *apperror.AppError
	if errors.As(cause, &appErr) {
		log.Warn("payroll run entry failed", zap.String("message", failure.Message))
	} else {
		log.Error("payroll run entry failed", zap.Error(cause))
	}

	if err := s.repo.RecordFailure(ctx, &failure); err != nil {
		return PayrollRunFailure{}, err
	}
	return failure, nil
}

// RebuildRunEntry retries one employee of a pending run. Success clears the
// employee's failure.
func (s *service) RebuildRunEntry(
	ctx context.Context,
	companyID, actorID, runID string,
	req RebuildRunEntryRequest,
) (EntryResponse, error) {
	companyUUID, actorUUID, err := parseTenant(companyID, actorID)
	if err != nil {
		return EntryResponse{}, err
	}
	employeeUUID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return EntryResponse{}, payrollerrors.ErrInvalidEmployeeID
	}

	run, err := s.repo.FindRunByID(ctx, companyID, runID, false)
	if err != nil {
		return EntryResponse{}, mapRepositoryError(err, payrollerrors.ErrRunNotFound)
	}
	if run.Status == StatusApproved {
		return EntryResponse{}, payrollerrors.ErrRunApproved
	}

	member, err := s.isRunMember(ctx, companyID, *run, employeeUUID)
	if err != nil {
		return EntryResponse{}, err
	}
	if !member {
		return EntryResponse{}, payrollerrors.ErrEmployeeNotInRun
	}

	entry, err := s.build(ctx, companyID, buildParams{
		companyID:   companyUUID,
		employeeID:  employeeUUID,
		actorID:     actorUUID,
		periodStart: run.PeriodStart,
		periodEnd:   run.PeriodEnd,
		inputs:      req.Inputs,
		runID:       &run.ID,
	})
	if err != nil {
		if _, ferr := s.recordFailure(ctx, *run, employeeUUID, req.Inputs, err); ferr != nil {
			s.logger.Error("record payroll run failure", zap.Error(ferr))
		}
		return EntryResponse{}, err
	}

	if err := s.repo.ClearFailure(ctx, run.ID, employeeUUID); err != nil {
		return EntryResponse{}, err
	}

	return mapEntryToResponse(*entry), nil
}

func (s *service) isRunMember(ctx context.Context, companyID string, run PayrollRun, employeeID uuid.UUID) (bool, error) {
	for _, f := range run.Failures {
		if f.EmployeeID == employeeID {
			return true, nil
		}
	}

	entries, err := s.repo.ListRunEntries(ctx, companyID, run.ID)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.EmployeeID == employeeID {
			return true, nil
		}
	}
	return false, nil
}

// ApproveRun approves every entry of a run in one transaction with the run
// row locked. Either all entries become approved or none do.
func (s *service) ApproveRun(ctx context.Context, companyID, actorID, runID string) (RunResponse, error) {
	_, actorUUID, err := parseTenant(companyID, actorID)
	if err != nil {
		return RunResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RunResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	run, err := qtx.FindRunByID(ctx, companyID, runID, true)
	if err != nil {
		return RunResponse{}, mapRepositoryError(err, payrollerrors.ErrRunNotFound)
	}
	if run.Status == StatusApproved {
		return RunResponse{}, payrollerrors.ErrRunApproved
	}

	failures, err := qtx.ListFailures(ctx, run.ID)
	if err != nil {
		return RunResponse{}, err
	}
	if len(failures) > 0 {
		ids := make([]string, len(failures))
		for i, f := range failures {
			ids[i] = f.EmployeeID.String()
		}
		return RunResponse{}, payrollerrors.ErrRunHasFailures.WithDetails(map[string]any{
			"employee_ids": ids,
		})
	}

	entries, err := qtx.ListRunEntries(ctx, companyID, run.ID)
	if err != nil {
		return RunResponse{}, err
	}
	if len(entries) == 0 {
		return RunResponse{}, payrollerrors.ErrRunEmpty
	}
	if len(entries) != run.Headcount {
		return RunResponse{}, payrollerrors.ErrRunIncomplete.WithDetails(map[string]any{
			"expected": run.Headcount,
			"built":    len(entries),
		})
	}

	now := time.Now().UTC()
	approved, err := qtx.ApproveRunEntries(ctx, companyID, run.ID, actorUUID, now)
	if err != nil {
		return RunResponse{}, mapRepositoryError(err, payrollerrors.ErrRunNotFound)
	}
	if approved != int64(len(entries)) {
		return RunResponse{}, payrollerrors.ErrConcurrentWrite
	}

	run.Status = StatusApproved
	run.ApprovedBy = &actorUUID
	run.ApprovedAt = &now
	if err := qtx.SaveRun(ctx, run); err != nil {
		return RunResponse{}, mapRepositoryError(err, payrollerrors.ErrRunNotFound)
	}

	entryIDs := make([]string, len(entries))
	for i, e := range entries {
		entryIDs[i] = e.ID.String()
	}
	if err := s.emitApproved(ctx, tx, events.EventPayrollRunApproved, companyID, actorID, run.ID.String(), entryIDs); err != nil {
		return RunResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return RunResponse{}, mapRepositoryError(err, payrollerrors.ErrRunNotFound)
	}

	s.audit.Log(ctx, bootstrap.AuditLog{
		Action:  "PAYROLL_RUN_APPROVED",
		Message: "payroll run approved",
		ActorID: actorID,
		Meta: map[string]any{
			"run_id":     run.ID.String(),
			"run_number": run.RunNumber,
			"entries":    len(entries),
		},
	})

	run.Failures = nil
	return mapRunToResponse(*run), nil
}

func (s *service) GetRun(ctx context.Context, companyID, id string) (RunResponse, error) {
	run, err := s.repo.FindRunByID(ctx, companyID, id, false)
	if err != nil {
		return RunResponse{}, mapRepositoryError(err, payrollerrors.ErrRunNotFound)
	}
	return mapRunToResponse(*run), nil
}

func (s *service) ListRuns(ctx context.Context, companyID string) ([]RunResponse, error) {
	runs, err := s.repo.ListRuns(ctx, companyID)
	if err != nil {
		return nil, err
	}
	resp := make([]RunResponse, len(runs))
	for i, r := range runs {
		resp[i] = mapRunToResponse(r)
	}
	return resp, nil
}

// GeneratePayslips renders a PDF for each approved entry that has none yet.
// It stops at the first failure so the caller can retry the rest.
func (s *service) GeneratePayslips(ctx context.Context, companyID string, entryIDs []string) (int, error) {
	generated := 0
	for _, id := range entryIDs {
		entry, err := s.repo.FindEntryByID(ctx, companyID, id, false)
		if err != nil {
			return generated, mapRepositoryError(err, payrollerrors.ErrEntryNotFound)
		}
		if entry.Status != StatusApproved {
			s.logger.Warn("skip payslip for unapproved entry", zap.String("entry_id", id))
			continue
		}
		if entry.PayslipPath != nil {
			if _, err := os.Stat(*entry.PayslipPath); err == nil {
				continue
			}
		}

		name := entry.EmployeeID.String()
		employee, err := s.repo.FindEmployee(ctx, companyID, entry.EmployeeID)
		switch {
		case err == nil && employee.FullName != "":
			name = employee.FullName
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return generated, err
		}

		path, err := s.payslips.Write(*entry, name)
		if err != nil {
			return generated, err
		}
		if err := s.repo.SetPayslip(ctx, companyID, entry.ID, path, time.Now().UTC()); err != nil {
			return generated, err
		}
		generated++
	}
	return generated, nil
}

func (s *service) PayslipFile(ctx context.Context, companyID, id string) (string, error) {
	entry, err := s.repo.FindEntryByID(ctx, companyID, id, false)
	if err != nil {
		return "", mapRepositoryError(err, payrollerrors.ErrEntryNotFound)
	}
	if entry.PayslipPath == nil || *entry.PayslipPath == "" {
		return "", payrollerrors.ErrPayslipNotGenerated
	}
	return *entry.PayslipPath, nil
}

func (s *service) emitApproved(
	ctx context.Context,
	tx *sql.Tx,
	eventType, companyID, actorID, runID string,
	entryIDs []string,
) error {
	if s.outbox == nil {
		return nil
	}

	aggregateType, aggregateID := "payroll_entry", entryIDs[0]
	if runID != "" {
		aggregateType, aggregateID = "payroll_run", runID
	}

	event, err := kafka.NewOutboxEvent(ctx,
		events.PayrollApprovedTopic,
		eventType,
		aggregateType,
		aggregateID,
		events.PayrollApprovedEvent{
			EventType:  eventType,
			CompanyID:  companyID,
			RunID:      runID,
			EntryIDs:   entryIDs,
			ApprovedBy: actorID,
			OccurredAt: time.Now().UTC(),
		},
	)
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, event)
}

// unchanged reports whether rebuilding would write exactly what is stored.
func unchanged(entry *PayrollEntry, fingerprint string, assignmentID uuid.UUID, runID *uuid.UUID) bool {
	if entry.Fingerprint != fingerprint || entry.AssignmentID == nil || *entry.AssignmentID != assignmentID {
		return false
	}
	return runID == nil || entry.RunID != nil
}

func templateFields(tpl *paymenttemplate.PaymentTemplate) []paymentfield.PaymentField {
	fields := make([]paymentfield.PaymentField, len(tpl.Fields))
	for i, tf := range tpl.Fields {
		fields[i] = tf.PaymentField
	}
	return fields
}

func withEntryID(entryID uuid.UUID, components []PayrollEntryComponent) []PayrollEntryComponent {
	out := make([]PayrollEntryComponent, len(components))
	for i, c := range components {
		c.EntryID = entryID
		out[i] = c
	}
	return out
}

func parseTenant(companyID, actorID string) (uuid.UUID, uuid.UUID, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return uuid.Nil, uuid.Nil, payrollerrors.ErrInvalidCompanyID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return uuid.Nil, uuid.Nil, payrollerrors.ErrInvalidActorID
	}
	return companyUUID, actorUUID, nil
}

func parsePeriod(start, end string) (time.Time, time.Time, error) {
	periodStart, err := dateutil.Parse(start)
	if err != nil {
		return time.Time{}, time.Time{}, payrollerrors.ErrInvalidDateFormat
	}
	periodEnd, err := dateutil.Parse(end)
	if err != nil {
		return time.Time{}, time.Time{}, payrollerrors.ErrInvalidDateFormat
	}
	if periodStart.After(periodEnd) {
		return time.Time{}, time.Time{}, payrollerrors.ErrInvalidDateRange
	}
	return periodStart, periodEnd, nil
}

func mapEntryToResponse(e PayrollEntry) EntryResponse {
	resp := EntryResponse{
		ID:                    e.ID.String(),
		CompanyID:             e.CompanyID.String(),
		EmployeeID:            e.EmployeeID.String(),
		PeriodStart:           dateutil.Format(e.PeriodStart),
		PeriodEnd:             dateutil.Format(e.PeriodEnd),
		TemplateID:            e.TemplateID.String(),
		AssignmentSource:      e.AssignmentSource,
		GrossEarnings:         e.GrossEarnings.StringFixed(2),
		TotalDeductions:       e.TotalDeductions.StringFixed(2),
		EmployerContributions: e.EmployerContributions.StringFixed(2),
		NetPay:                e.NetPay.StringFixed(2),
		Status:                e.Status,
		Fingerprint:           e.Fingerprint,
		CreatedBy:             e.CreatedBy.String(),
		PayslipAvailable:      e.PayslipPath != nil && *e.PayslipPath != "",
		Components:            make([]ComponentResponse, len(e.Components)),
	}
	if e.RunID != nil {
		v := e.RunID.String()
		resp.RunID = &v
	}
	if e.AssignmentID != nil {
		v := e.AssignmentID.String()
		resp.AssignmentID = &v
	}
	if e.ApprovedBy != nil {
		v := e.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if e.ApprovedAt != nil {
		v := e.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	for i, c := range e.Components {
		resp.Components[i] = ComponentResponse{
			PaymentFieldID:   c.PaymentFieldID.String(),
			Name:             c.Name,
			Nature:           c.Nature,
			CalculationType:  c.CalculationType,
			Position:         c.Position,
			CalculationValue: c.CalculationValue.StringFixed(2),
		}
	}
	return resp
}

func mapFailureToResponse(f PayrollRunFailure) FailureResponse {
	resp := FailureResponse{
		EmployeeID: f.EmployeeID.String(),
		Code:       f.Code,
		Message:    f.Message,
	}
	if len(f.Details) > 0 {
		resp.Details = json.RawMessage(f.Details)
	}
	return resp
}

func mapRunToResponse(r PayrollRun) RunResponse {
	resp := RunResponse{
		ID:          r.ID.String(),
		CompanyID:   r.CompanyID.String(),
		RunNumber:   r.RunNumber,
		PeriodStart: dateutil.Format(r.PeriodStart),
		PeriodEnd:   dateutil.Format(r.PeriodEnd),
		Headcount:   r.Headcount,
		Status:      r.Status,
		CreatedBy:   r.CreatedBy.String(),
		Failures:    make([]FailureResponse, len(r.Failures)),
	}
	if r.ApprovedBy != nil {
		v := r.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if r.ApprovedAt != nil {
		v := r.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	for i, f := range r.Failures {
		resp.Failures[i] = mapFailureToResponse(f)
	}
	return resp
}
