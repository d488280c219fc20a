package assignment

import (
	"context"
	"database/sql"
	"sort"
	"time"

	assignmenterrors "go-payroll/internal/assignment/errors"
	"go-payroll/internal/bootstrap"
	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/shared/contextutil"
	"go-payroll/internal/shared/dateutil"
	"go-payroll/internal/shared/dbtx"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var sharedResolveTimeout = 10 * time.Second

//go:generate mockgen -source=assignment_service.go -destination=mock/assignment_service_mock.go -package=mock
type Service interface {
	Resolve(ctx context.Context, companyID, subjectType, subjectID string, asOf time.Time) (*Resolution, error)
	Create(ctx context.Context, companyID, actorID string, req CreateAssignmentRequest) (AssignmentResponse, error)
	Update(ctx context.Context, companyID, actorID, id string, req UpdateAssignmentRequest) (AssignmentResponse, error)
	Delete(ctx context.Context, companyID, actorID, id string, force bool) error
	GetAll(ctx context.Context, companyID string, filter ListFilter) ([]AssignmentResponse, error)
	GetByID(ctx context.Context, companyID, id string) (AssignmentResponse, error)
	History(ctx context.Context, companyID, subjectType, subjectID string) ([]AssignmentResponse, error)
	CloseForEmployee(ctx context.Context, companyID, employeeID string, at time.Time) (int, error)
	InvalidateCompany(ctx context.Context, companyID string) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	audit  bootstrap.AuditLogger
	cache  *resolveCache
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	outbox kafka.OutboxRepository,
	rdb *redis.Client,
	audit bootstrap.AuditLogger,
	cacheTTL time.Duration,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("assignment.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("assignment.service")
	}
	if audit == nil {
		audit = bootstrap.NewZapAuditLogger(l)
	}
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &service{
		db:     db,
		repo:   repo,
		outbox: outbox,
		audit:  audit,
		cache:  &resolveCache{rdb: rdb, ttl: cacheTTL, logger: l},
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) Resolve(
	ctx context.Context,
	companyID, subjectType, subjectID string,
	asOf time.Time,
) (*Resolution, error) {
	subjectUUID, err := uuid.Parse(subjectID)
	if err != nil {
		return nil, assignmenterrors.ErrInvalidSubjectID
	}
	if asOf.IsZero() {
		asOf = dateutil.Today()
	}
	asOf = dateutil.Truncate(asOf)

	if !s.cache.enabled() {
		res, err := ResolveIn(ctx, s.repo, companyID, subjectType, subjectUUID, asOf)
		return res, mapRepositoryError(err)
	}

	version, err := s.cache.version(ctx, companyID)
	if err != nil {
		s.logger.Warn("read assignment cache version failed, resolving from database",
			zap.String("company_id", companyID),
			zap.Error(err),
		)
		res, err := ResolveIn(ctx, s.repo, companyID, subjectType, subjectUUID, asOf)
		return res, mapRepositoryError(err)
	}

	key := ResolveKey(companyID, version, subjectType, subjectUUID, asOf)
	if cached, ok := s.cache.get(ctx, key); ok {
		return cached.Resolution, nil
	}

	// The flight is shared by every caller of key, so it runs on its own
	// deadline and a caller that gives up only stops waiting.
	ch := s.sf.DoChan(key, func() (interface{}, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedResolveTimeout)
		defer cancel()

		res, err := ResolveIn(fctx, s.repo, companyID, subjectType, subjectUUID, asOf)
		if err != nil {
			return nil, mapRepositoryError(err)
		}
		s.cache.set(fctx, key, res)
		return res, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*Resolution), nil
	}
}

func (s *service) Create(
	ctx context.Context,
	companyID, actorID string,
	req CreateAssignmentRequest,
) (AssignmentResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return AssignmentResponse{}, assignmenterrors.ErrInvalidCompanyID
	}

	a := Assignment{
		ID:             uuid.New(),
		CompanyID:      companyUUID,
		AssignmentType: req.AssignmentType,
		IsActive:       true,
	}
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}

	if err := setSubject(&a, req.EmployeeID, req.SiteID); err != nil {
		return AssignmentResponse{}, err
	}
	if a.TemplateID, err = uuid.Parse(req.TemplateID); err != nil {
		return AssignmentResponse{}, assignmenterrors.ErrInvalidTemplateID
	}
	if err := setWindow(&a, &req.EffectiveFrom, req.EffectiveTo, false); err != nil {
		return AssignmentResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, dbtx.Serializable)
	if err != nil {
		return AssignmentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if err := qtx.LockSubject(ctx, companyID, a.AssignmentType, a.SubjectID()); err != nil {
		return AssignmentResponse{}, mapRepositoryError(err)
	}

	if err := s.ensureTemplate(ctx, qtx, companyID, a.TemplateID); err != nil {
		return AssignmentResponse{}, err
	}

	if err := s.ensureNoOverlap(ctx, qtx, companyID, a); err != nil {
		return AssignmentResponse{}, err
	}

	if err := qtx.Create(ctx, &a); err != nil {
		return AssignmentResponse{}, mapRepositoryError(err)
	}

	if err := s.emit(ctx, tx, events.AssignmentActionCreated, actorID, a, false); err != nil {
		return AssignmentResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return AssignmentResponse{}, mapRepositoryError(err)
	}
	s.cache.bump(ctx, companyID)

	s.logger.Info("assignment created",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("assignment_id", a.ID.String()),
		zap.String("assignment_type", a.AssignmentType),
		zap.String("subject_id", a.SubjectID().String()),
		zap.String("window", a.Window().String()),
	)

	return mapToResponse(a), nil
}

func (s *service) Update(
	ctx context.Context,
	companyID, actorID, id string,
	req UpdateAssignmentRequest,
) (AssignmentResponse, error) {
	tx, err := s.db.BeginTx(ctx, dbtx.Serializable)
	if err != nil {
		return AssignmentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	current, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return AssignmentResponse{}, mapRepositoryError(err)
	}

	next, err := applyPatch(*current, req)
	if err != nil {
		return AssignmentResponse{}, err
	}

	if err := lockSubjects(ctx, qtx, companyID, *current, next); err != nil {
		return AssignmentResponse{}, mapRepositoryError(err)
	}

	refs, err := qtx.ApprovedEntryRefs(ctx, companyID, current.ID)
	if err != nil {
		return AssignmentResponse{}, err
	}
	if err := checkHistoryPreserved(*current, next, refs); err != nil {
		s.logger.Warn("assignment update would rewrite approved payroll history",
			zap.String("assignment_id", id),
			zap.Int("approved_entries", len(refs)),
		)
		return AssignmentResponse{}, err
	}

	if next.TemplateID != current.TemplateID {
		if err := s.ensureTemplate(ctx, qtx, companyID, next.TemplateID); err != nil {
			return AssignmentResponse{}, err
		}
	}

	if err := s.ensureNoOverlap(ctx, qtx, companyID, next); err != nil {
		return AssignmentResponse{}, err
	}

	if err := qtx.Update(ctx, &next); err != nil {
		return AssignmentResponse{}, mapRepositoryError(err)
	}

	if err := s.emit(ctx, tx, events.AssignmentActionUpdated, actorID, next, false); err != nil {
		return AssignmentResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return AssignmentResponse{}, mapRepositoryError(err)
	}
	s.cache.bump(ctx, companyID)

	return mapToResponse(next), nil
}

func (s *service) Delete(ctx context.Context, companyID, actorID, id string, force bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	current, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return mapRepositoryError(err)
	}

	refs, err := qtx.ApprovedEntryRefs(ctx, companyID, current.ID)
	if err != nil {
		return err
	}
	if len(refs) > 0 && !force {
		return assignmenterrors.ErrReferenced.WithDetails(map[string]any{
			"entry_ids": entryIDs(refs),
		})
	}

	if err := qtx.Delete(ctx, companyID, id); err != nil {
		return mapRepositoryError(err)
	}

	forced := force && len(refs) > 0
	if err := s.emit(ctx, tx, events.AssignmentActionDeleted, actorID, *current, forced); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return mapRepositoryError(err)
	}
	s.cache.bump(ctx, companyID)

	if forced {
		s.audit.Log(ctx, bootstrap.AuditLog{
			Action:  "ASSIGNMENT_FORCE_DELETE",
			Message: "assignment referenced by approved payroll entries was deleted",
			ActorID: actorID,
			Meta: map[string]any{
				"assignment": mapToResponse(*current),
				"entry_ids":  entryIDs(refs),
			},
		})
	}

	return nil
}

func (s *service) GetAll(ctx context.Context, companyID string, filter ListFilter) ([]AssignmentResponse, error) {
	list, err := s.repo.FindAll(ctx, companyID, filter)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(list), nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (AssignmentResponse, error) {
	a, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return AssignmentResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*a), nil
}

// History lists every assignment a subject ever had, oldest first.
func (s *service) History(ctx context.Context, companyID, subjectType, subjectID string) ([]AssignmentResponse, error) {
	if subjectType != TypeEmployee && subjectType != TypeSite {
		return nil, assignmenterrors.ErrInvalidAssignmentType
	}
	subjectUUID, err := uuid.Parse(subjectID)
	if err != nil {
		return nil, assignmenterrors.ErrInvalidSubjectID
	}

	list, err := s.repo.ListForSubject(ctx, companyID, subjectType, subjectUUID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(list), nil
}

// CloseForEmployee ends the employee-level assignments still open at the
// termination date. Windows only shrink, so no overlap can appear.
// Assignments starting on or after the date are deactivated.
func (s *service) CloseForEmployee(ctx context.Context, companyID, employeeID string, at time.Time) (int, error) {
	employeeUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return 0, assignmenterrors.ErrInvalidSubjectID
	}
	at = dateutil.Truncate(at)

	tx, err := s.db.BeginTx(ctx, dbtx.Serializable)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if err := qtx.LockSubject(ctx, companyID, TypeEmployee, employeeUUID); err != nil {
		return 0, mapRepositoryError(err)
	}

	open, err := qtx.ListOpenForEmployee(ctx, companyID, employeeUUID, at)
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, a := range open {
		next := a
		if !a.EffectiveFrom.Before(at) {
			next.IsActive = false
		} else {
			end := at
			next.EffectiveTo = &end
		}

		refs, err := qtx.ApprovedEntryRefs(ctx, companyID, a.ID)
		if err != nil {
			return 0, err
		}
		if err := checkHistoryPreserved(a, next, refs); err != nil {
			s.logger.Warn("skip closing assignment with approved payroll after termination",
				zap.String("assignment_id", a.ID.String()),
				zap.String("termination_date", dateutil.Format(at)),
			)
			continue
		}

		if err := qtx.Update(ctx, &next); err != nil {
			return 0, mapRepositoryError(err)
		}
		if err := s.emit(ctx, tx, events.AssignmentActionClosed, "", next, false); err != nil {
			return 0, err
		}
		closed++
	}

	if err := tx.Commit(); err != nil {
		return 0, mapRepositoryError(err)
	}
	if closed > 0 {
		s.cache.bump(ctx, companyID)
	}

	return closed, nil
}

func (s *service) ensureTemplate(ctx context.Context, repo Repository, companyID string, templateID uuid.UUID) error {
	ok, err := repo.TemplateExists(ctx, companyID, templateID)
	if err != nil {
		return mapRepositoryError(err)
	}
	if !ok {
		return assignmenterrors.ErrTemplateNotFound
	}
	return nil
}

// ensureNoOverlap checks a against the other active assignments of its subject.
func (s *service) ensureNoOverlap(ctx context.Context, repo Repository, companyID string, a Assignment) error {
	if !a.IsActive {
		return nil
	}

	existing, err := repo.ListForSubject(ctx, companyID, a.AssignmentType, a.SubjectID())
	if err != nil {
		return err
	}

	if conflicts := findOverlaps(a, existing); len(conflicts) > 0 {
		return assignmenterrors.ErrOverlap.WithDetails(map[string]any{
			"conflicting_ids": conflicts,
			"window":          a.Window().String(),
		})
	}
	return nil
}

func findOverlaps(a Assignment, existing []Assignment) []string {
	var conflicts []string
	for _, other := range existing {
		if other.ID == a.ID || !other.IsActive {
			continue
		}
		if a.Window().Overlaps(other.Window()) {
			conflicts = append(conflicts, other.ID.String())
		}
	}
	return conflicts
}

func (s *service) emit(ctx context.Context, tx *sql.Tx, action, actorID string, a Assignment, forced bool) error {
	if s.outbox == nil {
		return nil
	}

	event, err := kafka.NewOutboxEvent(ctx,
		events.AssignmentChangedTopic,
		"assignment_"+action,
		"payment_template_assignment",
		a.ID.String(),
		events.AssignmentChangedEvent{
			EventType:      "assignment_" + action,
			Action:         action,
			AssignmentID:   a.ID.String(),
			CompanyID:      a.CompanyID.String(),
			AssignmentType: a.AssignmentType,
			SubjectID:      a.SubjectID().String(),
			TemplateID:     a.TemplateID.String(),
			EffectiveFrom:  dateutil.Format(a.EffectiveFrom),
			EffectiveTo:    dateutil.FormatPtr(a.EffectiveTo),
			IsActive:       a.IsActive,
			Forced:         forced,
			ActorID:        actorID,
			OccurredAt:     time.Now().UTC(),
		},
	)
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, event)
}

// lockSubjects locks the old and new subject in a fixed order.
func lockSubjects(ctx context.Context, repo Repository, companyID string, before, after Assignment) error {
	type subject struct {
		kind string
		id   uuid.UUID
	}
	subjects := []subject{{before.AssignmentType, before.SubjectID()}}
	if after.AssignmentType != before.AssignmentType || after.SubjectID() != before.SubjectID() {
		subjects = append(subjects, subject{after.AssignmentType, after.SubjectID()})
	}
	sort.Slice(subjects, func(i, j int) bool {
		if subjects[i].kind != subjects[j].kind {
			return subjects[i].kind < subjects[j].kind
		}
		return subjects[i].id.String() < subjects[j].id.String()
	})

	for _, sub := range subjects {
		if err := repo.LockSubject(ctx, companyID, sub.kind, sub.id); err != nil {
			return err
		}
	}
	return nil
}

// checkHistoryPreserved refuses changes that would make an approved entry
// resolve to something other than what it was computed from.
func checkHistoryPreserved(before, after Assignment, refs []EntryRef) error {
	if len(refs) == 0 {
		return nil
	}

	details := map[string]any{"entry_ids": entryIDs(refs)}

	if after.TemplateID != before.TemplateID ||
		after.AssignmentType != before.AssignmentType ||
		after.SubjectID() != before.SubjectID() ||
		!after.IsActive {
		return assignmenterrors.ErrReferenced.WithDetails(details)
	}

	w := after.Window()
	for _, ref := range refs {
		if !w.Contains(ref.PeriodStart) {
			return assignmenterrors.ErrReferenced.WithDetails(details)
		}
	}
	return nil
}

func entryIDs(refs []EntryRef) []string {
	ids := make([]string, len(refs))
	for i, r := range refs {
		ids[i] = r.EntryID.String()
	}
	return ids
}

// setSubject sets employee_id xor site_id matching the assignment type.
func setSubject(a *Assignment, employeeID, siteID *string) error {
	if a.AssignmentType != TypeEmployee && a.AssignmentType != TypeSite {
		return assignmenterrors.ErrInvalidAssignmentType
	}
	hasEmployee := employeeID != nil && *employeeID != ""
	hasSite := siteID != nil && *siteID != ""
	if hasEmployee == hasSite {
		return assignmenterrors.ErrSubjectMismatch
	}

	raw := siteID
	if hasEmployee {
		raw = employeeID
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return assignmenterrors.ErrInvalidSubjectID
	}

	a.EmployeeID, a.SiteID = nil, nil
	switch {
	case hasEmployee && a.AssignmentType == TypeEmployee:
		a.EmployeeID = &id
	case hasSite && a.AssignmentType == TypeSite:
		a.SiteID = &id
	default:
		return assignmenterrors.ErrSubjectMismatch
	}
	return nil
}

// setWindow parses the given bounds onto a. A nil from keeps the current
// start; openEnded clears the end.
func setWindow(a *Assignment, from, to *string, openEnded bool) error {
	if from != nil {
		t, err := dateutil.Parse(*from)
		if err != nil {
			return assignmenterrors.ErrInvalidDate
		}
		a.EffectiveFrom = t
	}
	switch {
	case openEnded:
		a.EffectiveTo = nil
	case to != nil:
		t, err := dateutil.ParsePtr(to)
		if err != nil {
			return assignmenterrors.ErrInvalidDate
		}
		a.EffectiveTo = t
	}

	w := NewWindow(a.EffectiveFrom, a.EffectiveTo)
	if !w.Valid() {
		return assignmenterrors.ErrInvalidWindow
	}
	a.EffectiveFrom, a.EffectiveTo = w.From, w.To
	return nil
}

func applyPatch(current Assignment, req UpdateAssignmentRequest) (Assignment, error) {
	next := current

	if req.AssignmentType != nil {
		next.AssignmentType = *req.AssignmentType
	}

	switch {
	case req.EmployeeID != nil && req.SiteID != nil:
		return Assignment{}, assignmenterrors.ErrSubjectMismatch
	case req.EmployeeID != nil:
		if req.AssignmentType == nil {
			next.AssignmentType = TypeEmployee
		}
		if err := setSubject(&next, req.EmployeeID, nil); err != nil {
			return Assignment{}, err
		}
	case req.SiteID != nil:
		if req.AssignmentType == nil {
			next.AssignmentType = TypeSite
		}
		if err := setSubject(&next, nil, req.SiteID); err != nil {
			return Assignment{}, err
		}
	case next.AssignmentType != current.AssignmentType:
		// type changed but the subject did not follow
		return Assignment{}, assignmenterrors.ErrSubjectMismatch
	}

	if req.TemplateID != nil {
		id, err := uuid.Parse(*req.TemplateID)
		if err != nil {
			return Assignment{}, assignmenterrors.ErrInvalidTemplateID
		}
		next.TemplateID = id
	}

	if req.IsActive != nil {
		next.IsActive = *req.IsActive
	}

	if err := setWindow(&next, req.EffectiveFrom, req.EffectiveTo, req.OpenEnded); err != nil {
		return Assignment{}, err
	}

	return next, nil
}

func mapToResponse(a Assignment) AssignmentResponse {
	resp := AssignmentResponse{
		ID:             a.ID.String(),
		CompanyID:      a.CompanyID.String(),
		AssignmentType: a.AssignmentType,
		TemplateID:     a.TemplateID.String(),
		EffectiveFrom:  dateutil.Format(a.EffectiveFrom),
		EffectiveTo:    dateutil.FormatPtr(a.EffectiveTo),
		IsActive:       a.IsActive,
	}
	if a.EmployeeID != nil {
		v := a.EmployeeID.String()
		resp.EmployeeID = &v
	}
	if a.SiteID != nil {
		v := a.SiteID.String()
		resp.SiteID = &v
	}
	return resp
}

func mapToListResponse(list []Assignment) []AssignmentResponse {
	resp := make([]AssignmentResponse, len(list))
	for i, a := range list {
		resp[i] = mapToResponse(a)
	}
	return resp
}

// ToResponse renders an assignment for API consumers.
func ToResponse(a Assignment) AssignmentResponse {
	return mapToResponse(a)
}

// InvalidateCompany drops the company's cached resolutions after a change
// made outside this service, such as an employee moving to another site.
func (s *service) InvalidateCompany(ctx context.Context, companyID string) error {
	if _, err := uuid.Parse(companyID); err != nil {
		return assignmenterrors.ErrInvalidCompanyID
	}
	if err := s.cache.invalidate(ctx, companyID); err != nil {
		return err
	}
	s.logger.Info("assignment cache invalidated", zap.String("company_id", companyID))
	return nil
}
