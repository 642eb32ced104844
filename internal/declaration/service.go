// Package declaration coordinates the declaration workflow of a folder.
//
// The Service ties the pipeline stages together:
//   - trial-balance upload and processing (validation, equilibrium, issues)
//   - mapping resolution and report generation for the current exercise,
//     with prior-year figures when a usable previous balance exists
//   - coherence control and the resulting declaration status
//   - legacy workbook import, human confirmation and application of matches
//
// Generation for one folder is serialised: a run starts only after the
// previous run for that folder has finished. Callers sending an identical
// request while it is in flight share its result.
package declaration

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"golang-dsf-service/internal/balance"
	"golang-dsf-service/internal/coherence"
	"golang-dsf-service/internal/importer"
	"golang-dsf-service/internal/mapping"
	"golang-dsf-service/internal/models"
	"golang-dsf-service/internal/parsers"
	"golang-dsf-service/internal/report"
	"golang-dsf-service/pkg/errors"
	"golang-dsf-service/pkg/logger"
)

// Dependencies are the collaborators of a Service. Every field is required.
type Dependencies struct {
	Balances     BalanceRepository
	Declarations DeclarationRepository
	Imports      ImportRepository
	Resolver     *mapping.Resolver
	Generator    *report.Generator
	Controller   *coherence.Controller
	Processor    *balance.Processor
	Matcher      *importer.Matcher
}

func (d Dependencies) validate() error {
	required := []struct {
		name    string
		missing bool
	}{
		{"balances", d.Balances == nil},
		{"declarations", d.Declarations == nil},
		{"imports", d.Imports == nil},
		{"resolver", d.Resolver == nil},
		{"generator", d.Generator == nil},
		{"controller", d.Controller == nil},
		{"processor", d.Processor == nil},
		{"matcher", d.Matcher == nil},
	}
	for _, r := range required {
		if r.missing {
			return errors.ValidationError(errors.CodeMissingField, r.name, nil, nil).
				WithSuggestion("Provide every dependency of the declaration service")
		}
	}
	return nil
}

// Service runs the declaration workflow
type Service struct {
	deps   Dependencies
	flight singleflight.Group
	locks  folderLocks
	logger logger.Logger
	now    func() time.Time
}

// folderLocks hands out one generation slot per folder
type folderLocks struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// acquire waits for the folder's slot and returns its release function
func (l *folderLocks) acquire(ctx context.Context, folderID string) (func(), error) {
	l.mu.Lock()
	if l.slots == nil {
		l.slots = make(map[string]chan struct{})
	}
	slot, ok := l.slots[folderID]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[folderID] = slot
	}
	l.mu.Unlock()

	select {
	case slot <- struct{}{}:
		return func() { <-slot }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// NewService creates a declaration service
func NewService(deps Dependencies) (*Service, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}

	log := logger.GetGlobalLogger().WithComponent("declaration_service")
	log.Debug("Declaration service created")

	return &Service{
		deps:   deps,
		logger: log,
		now:    time.Now,
	}, nil
}

// BalanceUpload is a parsed trial balance for one folder and period
type BalanceUpload struct {
	FolderID   string
	ExerciseID string
	PeriodType models.PeriodType
	FileName   string
	Rows       []models.RawRow
}

// ProcessBalance runs the upload pipeline and stores the result, superseding
// the previous balance of the same folder and period. Resolutions recorded on
// that previous balance carry over. A balance rejected by validation is still
// stored with its messages and returned without error.
func (s *Service) ProcessBalance(ctx context.Context, up BalanceUpload) (*models.Balance, error) {
	if up.FolderID == "" {
		return nil, errors.ValidationError(errors.CodeMissingField, "folder_id", nil, nil)
	}
	if !up.PeriodType.IsValid() {
		return nil, errors.ValidationError(errors.CodeInvalidData, "period_type", up.PeriodType, nil).
			WithSuggestion(fmt.Sprintf("Use %s or %s", models.PeriodCurrentYear, models.PeriodPreviousYear))
	}

	var previous []models.AccountIssue
	prev, err := s.deps.Balances.FindCurrent(ctx, up.FolderID, up.PeriodType)
	switch {
	case err == nil:
		previous = prev.Issues
	case !errors.HasCode(err, errors.CodeNotFound):
		return nil, err
	}

	b := &models.Balance{
		ID:         uuid.NewString(),
		FolderID:   up.FolderID,
		ExerciseID: up.ExerciseID,
		PeriodType: up.PeriodType,
		Status:     models.BalanceStatusPending,
		FileName:   up.FileName,
		UploadedAt: s.now(),
	}
	s.deps.Processor.Process(b, up.Rows, previous)

	if err := s.deps.Balances.Save(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// GenerateRequest asks for the declaration of a folder
type GenerateRequest struct {
	FolderID   string
	ExerciseID string
	Entity     report.Entity
	Context    models.ResolutionContext
	// AllowUnbalanced lets an UNBALANCED current balance feed generation; the
	// declaration then stays DRAFT
	AllowUnbalanced bool
}

// Generate builds the report set of a folder from its current balance,
// checks coherence and stores the result as the folder's latest declaration.
// Runs for the same folder are serialised; identical concurrent requests share
// one run. A caller whose context ends stops waiting, but a run already
// started for other callers completes.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*Declaration, error) {
	if req.FolderID == "" {
		return nil, errors.ValidationError(errors.CodeMissingField, "folder_id", nil, nil)
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.GenerationError(errors.CodeGenerationFailed, "generate", err)
	}

	key, err := requestKey(req)
	if err != nil {
		return nil, errors.InternalError(errors.CodeUnexpectedError, "generate", err)
	}

	runCtx := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(key, func() (interface{}, error) {
		release, err := s.locks.acquire(runCtx, req.FolderID)
		if err != nil {
			return nil, err
		}
		defer release()
		return s.generate(runCtx, req)
	})

	select {
	case res := <-ch:
		if res.Shared {
			s.logger.WithField("folder_id", req.FolderID).Debug("Joined in-flight generation")
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Declaration), nil
	case <-ctx.Done():
		return nil, errors.GenerationError(errors.CodeGenerationFailed, "generate", ctx.Err()).
			WithContext("folder_id", req.FolderID)
	}
}

// requestKey identifies a generation request by its folder and full content
func requestKey(req GenerateRequest) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%x", req.FolderID, sha256.Sum256(data)), nil
}

func (s *Service) generate(ctx context.Context, req GenerateRequest) (*Declaration, error) {
	op := logger.NewOperationLogger("generate_declaration", s.logger).WithFields(logger.Fields{
		"folder_id":   req.FolderID,
		"exercise_id": req.ExerciseID,
		"user_id":     req.Context.UserID,
	})

	op.Step("load balances")
	current, err := s.deps.Balances.FindCurrent(ctx, req.FolderID, models.PeriodCurrentYear)
	if err != nil {
		if errors.HasCode(err, errors.CodeNotFound) {
			err = errors.GenerationError(errors.CodeBalanceNotReady, "generate", err).
				WithContext("folder_id", req.FolderID).
				WithSuggestion("Upload the current-year trial balance first")
		}
		op.Error(err, "No current balance")
		return nil, err
	}
	if !current.IsUsable(req.AllowUnbalanced) {
		err := errors.GenerationError(errors.CodeBalanceNotReady, "generate", nil).
			WithContext("balance_id", current.ID).
			WithContext("status", string(current.Status))
		if current.Status == models.BalanceStatusUnbalanced {
			err = err.WithSuggestion("Correct the balance or generate with unbalanced balances allowed")
		}
		op.Error(err, "Current balance not usable")
		return nil, err
	}

	in := report.Input{
		ExerciseID: req.ExerciseID,
		Current:    current.Entries,
		Entity:     req.Entity,
	}
	if in.ExerciseID == "" {
		in.ExerciseID = current.ExerciseID
	}

	var priorID string
	prior, err := s.deps.Balances.FindCurrent(ctx, req.FolderID, models.PeriodPreviousYear)
	switch {
	case err == nil && prior.IsUsable(true):
		in.Previous = prior.Entries
		priorID = prior.ID
	case err == nil:
		op.Warning(fmt.Sprintf("prior-year balance %s is %s and is ignored", prior.ID, prior.Status))
	case !errors.HasCode(err, errors.CodeNotFound):
		op.Error(err, "Prior balance lookup failed")
		return nil, err
	}

	op.Step("generate reports")
	set, err := s.deps.Generator.Generate(ctx, in, s.deps.Resolver.Provider(req.Context))
	if err != nil {
		op.Error(err, "Report generation failed")
		return nil, err
	}

	op.Step("coherence")
	issues := s.deps.Controller.Check(set)

	d := &Declaration{
		FolderID:       req.FolderID,
		ExerciseID:     in.ExerciseID,
		Status:         statusFor(issues, current.Status),
		BalanceID:      current.ID,
		PriorBalanceID: priorID,
		Reports:        set,
		Coherence:      issues,
		GeneratedBy:    req.Context.UserID,
		GeneratedAt:    s.now(),
	}
	if err := s.deps.Declarations.Save(ctx, d); err != nil {
		op.Error(err, "Declaration not saved")
		return nil, err
	}

	op.WithFields(logger.Fields{
		"status":  d.Status,
		"version": d.Version,
		"issues":  len(issues),
	}).Success("Declaration generated")
	return d, nil
}

// statusFor derives the declaration status: any ERROR issue makes it INVALID,
// a balance that is not PROCESSED keeps it DRAFT.
func statusFor(issues []models.CoherenceIssue, balanceStatus models.BalanceStatus) Status {
	if models.HasBlockingIssue(issues) {
		return StatusInvalid
	}
	if balanceStatus != models.BalanceStatusProcessed {
		return StatusDraft
	}
	return StatusValid
}

// ResolveIssue marks an account issue of a stored balance as resolved
func (s *Service) ResolveIssue(ctx context.Context, balanceID, account string, issueType models.IssueType, note, user string) (*models.Balance, error) {
	b, err := s.deps.Balances.FindByID(ctx, balanceID)
	if err != nil {
		return nil, err
	}
	if !balance.ResolveIssue(b.Issues, account, issueType, note, user, s.now()) {
		return nil, errors.StorageError(errors.CodeNotFound, "account_issue", account+"/"+string(issueType), nil).
			WithContext("balance_id", balanceID)
	}
	if err := s.deps.Balances.UpdateIssues(ctx, b); err != nil {
		return nil, err
	}

	s.logger.WithFields(logger.Fields{
		"balance_id": balanceID,
		"account":    account,
		"issue_type": issueType,
		"user":       user,
	}).Info("Account issue resolved")
	return b, nil
}

// ImportLegacy reconciles a legacy declaration workbook and stores the session
func (s *Service) ImportLegacy(ctx context.Context, folderID string, wb *parsers.Workbook) (*models.ImportSession, error) {
	session, err := s.deps.Matcher.Reconcile(ctx, wb, folderID)
	if err != nil {
		return nil, err
	}
	if err := s.deps.Imports.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ConfirmMatch records a human decision on an import entry
func (s *Service) ConfirmMatch(ctx context.Context, sessionID string, c importer.Confirmation) (*models.ImportEntry, error) {
	session, err := s.deps.Imports.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	entry, err := importer.Confirm(session, c, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.deps.Imports.Save(ctx, session); err != nil {
		return nil, err
	}

	s.logger.WithFields(logger.Fields{
		"session_id": sessionID,
		"entry_id":   c.EntryID,
		"field_id":   c.FieldID,
		"user":       c.User,
	}).Info("Import match confirmed")
	return entry, nil
}

// ApplyOutcome is the declaration after an import was applied
type ApplyOutcome struct {
	Declaration *Declaration
	Result      *importer.ApplyResult
}

// ApplyImport writes the eligible entries of an import session into the
// folder's latest declaration, creating an empty one when none exists yet.
// Coherence is checked again; imported figures leave the declaration DRAFT
// unless a blocking issue makes it INVALID.
func (s *Service) ApplyImport(ctx context.Context, sessionID, folderID, user string) (*ApplyOutcome, error) {
	session, err := s.deps.Imports.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if folderID == "" {
		folderID = session.FolderID
	}

	d, err := s.deps.Declarations.FindLatest(ctx, folderID)
	switch {
	case err == nil:
	case errors.HasCode(err, errors.CodeNotFound):
		d = &Declaration{FolderID: folderID, Reports: report.NewSet("")}
	default:
		return nil, err
	}
	if d.Reports == nil {
		d.Reports = report.NewSet(d.ExerciseID)
	}

	result, err := importer.Apply(d.Reports, session, s.deps.Matcher.Config().AutoApplyThreshold)
	if err != nil {
		return nil, err
	}

	d.Coherence = s.deps.Controller.Check(d.Reports)
	d.Status = statusFor(d.Coherence, models.BalanceStatusPending)
	d.GeneratedBy = user
	d.GeneratedAt = s.now()
	if err := s.deps.Declarations.Save(ctx, d); err != nil {
		return nil, err
	}

	s.logger.WithFields(logger.Fields{
		"session_id": sessionID,
		"folder_id":  folderID,
		"applied":    result.Applied,
		"skipped":    result.Skipped,
		"status":     d.Status,
	}).Info("Import applied")
	return &ApplyOutcome{Declaration: d, Result: result}, nil
}

// Latest returns the folder's latest declaration
func (s *Service) Latest(ctx context.Context, folderID string) (*Declaration, error) {
	return s.deps.Declarations.FindLatest(ctx, folderID)
}
