package balance

import (
	"time"

	"golang-dsf-service/internal/models"
	"golang-dsf-service/pkg/logger"
)

// Processor runs the upload pipeline: validation, equilibrium, issue
// classification and fixed-asset extraction.
type Processor struct {
	validator *Validator
	detector  *IssueDetector
	logger    logger.Logger
	now       func() time.Time
}

// NewProcessor creates a processor from its two configurable stages
func NewProcessor(validator *Validator, detector *IssueDetector) *Processor {
	return &Processor{
		validator: validator,
		detector:  detector,
		logger:    logger.GetGlobalLogger().WithComponent("balance_processor"),
		now:       time.Now,
	}
}

// Process validates rows into b and derives everything else from them.
// Structural errors leave b INVALID with the messages stored verbatim; an
// equilibrium failure leaves it UNBALANCED. Resolution state of previous issues
// is carried over.
func (p *Processor) Process(b *models.Balance, rows []models.RawRow, previous []models.AccountIssue) {
	log := p.logger.WithFields(logger.Fields{
		"balance_id":  b.ID,
		"folder_id":   b.FolderID,
		"period_type": b.PeriodType,
		"rows":        len(rows),
	})

	entries, errs := p.validator.Validate(rows)
	if len(errs) > 0 {
		b.Status = models.BalanceStatusInvalid
		b.ValidationErrors = errs
		b.Entries = nil
		b.Equilibrium = nil
		b.Issues = nil
		b.FixedAssets = nil
		log.WithField("errors", len(errs)).Warn("Trial balance rejected")
		return
	}

	b.Entries = entries
	b.ValidationErrors = nil
	p.derive(b, previous)

	log.WithFields(logger.Fields{
		"status":   b.Status,
		"issues":   len(b.Issues),
		"balanced": b.Equilibrium.IsBalanced,
	}).Info("Trial balance processed")
}

func (p *Processor) derive(b *models.Balance, previous []models.AccountIssue) {
	eq := CheckEquilibrium(b.Entries)
	b.Equilibrium = &eq
	b.Issues = CarryResolutions(p.detector.Detect(b.Entries), previous)
	b.FixedAssets = ExtractFixedAssets(b.Entries)

	if eq.IsBalanced {
		b.Status = models.BalanceStatusProcessed
		now := p.now()
		b.ProcessedAt = &now
	} else {
		b.Status = models.BalanceStatusUnbalanced
		b.ProcessedAt = nil
	}
}
