// Package coherence cross-checks a generated report set.
//
// The checks run in a fixed order:
//  1. total assets against total liabilities and equity (bilan BZ / DZ)
//  2. declared net result against products minus charges of the same statement
//  3. net result against the starting figure of the tax tables (CF1)
//  4. net result carried in equity (CJ) against the income statement
//  5. presence and completeness of the required notes
//
// Every failed check yields one CoherenceIssue. Only ERROR issues block a
// declaration from becoming VALID.
package coherence

import (
	"fmt"

	"github.com/shopspring/decimal"

	"golang-dsf-service/internal/models"
	"golang-dsf-service/internal/report"
	"golang-dsf-service/pkg/errors"
	"golang-dsf-service/pkg/logger"
)

// Config controls tolerances and which notes must be present
type Config struct {
	Tolerance     decimal.Decimal `json:"tolerance" mapstructure:"tolerance"`
	RequiredNotes []string        `json:"required_notes" mapstructure:"required_notes"`
}

// DefaultRequiredNotes are the summary notes a filing cannot omit
var DefaultRequiredNotes = []string{"note3a", "note3c", "note16a", "note27b"}

// DefaultConfig returns a tolerance of one currency unit and the default required notes
func DefaultConfig() *Config {
	return &Config{
		Tolerance:     decimal.NewFromInt(1),
		RequiredNotes: append([]string(nil), DefaultRequiredNotes...),
	}
}

// Validate checks that the tolerance is not negative and every required note exists
func (c *Config) Validate() error {
	if c.Tolerance.IsNegative() {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "coherence.tolerance", c.Tolerance.String(),
			fmt.Errorf("tolerance must not be negative"))
	}
	for _, id := range c.RequiredNotes {
		if _, ok := report.LookupCategory(id); !ok {
			return errors.ConfigurationError(errors.CodeInvalidConfig, "coherence.required_notes", id,
				fmt.Errorf("unknown report category"))
		}
	}
	return nil
}

// Controller runs the coherence checks
type Controller struct {
	config *Config
	logger logger.Logger
}

// NewController creates a controller; a nil config means DefaultConfig
func NewController(config *Config) *Controller {
	if config == nil {
		config = DefaultConfig()
	}
	return &Controller{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("coherence"),
	}
}

// Check returns every inconsistency found in set. Checks whose reports are
// absent are skipped; missing required notes are reported separately.
func (c *Controller) Check(set *report.Set) []models.CoherenceIssue {
	var issues []models.CoherenceIssue
	if set == nil {
		return issues
	}

	bs := set.BalanceSheet()
	is := set.IncomeStatement()
	tt := set.TaxTables()

	if bs != nil {
		actif, passif := bs.TotalActif().N, bs.TotalPassif().N
		if !c.within(actif, passif) {
			issues = append(issues, c.issue(models.CoherenceEquilibrium, models.SeverityError, report.CategoryBalanceSheet,
				fmt.Sprintf("Total actif (%s) differs from total passif (%s)", actif.StringFixed(2), passif.StringFixed(2)),
				passif, actif))
		}
	}

	if is != nil {
		declared, recomputed := is.ResultatNet().N, is.ProductsLessCharges().N
		if !c.within(declared, recomputed) {
			issues = append(issues, c.issue(models.CoherenceResultMismatch, models.SeverityError, report.CategoryIncomeStatement,
				fmt.Sprintf("Net result (%s) differs from products minus charges (%s)", declared.StringFixed(2), recomputed.StringFixed(2)),
				recomputed, declared))
		}
	}

	if is != nil && tt != nil {
		net, start := is.ResultatNet().N, tt.ResultatComptable.N
		if !c.within(net, start) {
			issues = append(issues, c.issue(models.CoherenceTaxResultMismatch, models.SeverityWarning, report.CategoryTaxTables,
				fmt.Sprintf("Accounting result in tax tables (%s) differs from net result (%s)", start.StringFixed(2), net.StringFixed(2)),
				net, start))
		}
	}

	if is != nil && bs != nil {
		net, equity := is.ResultatNet().N, bs.Resultat().N
		if !c.within(net, equity) {
			issues = append(issues, c.issue(models.CoherenceBalanceResultMismatch, models.SeverityWarning, report.CategoryBalanceSheet,
				fmt.Sprintf("Result in equity (%s) differs from net result (%s)", equity.StringFixed(2), net.StringFixed(2)),
				net, equity))
		}
	}

	for _, id := range c.config.RequiredNotes {
		r, ok := set.Get(id)
		if !ok {
			issues = append(issues, models.CoherenceIssue{
				Type:     models.CoherenceMissingNote,
				Severity: models.SeverityWarning,
				Message:  fmt.Sprintf("Required note %s is missing", id),
				Category: id,
			})
			continue
		}
		if allZero(r) {
			issues = append(issues, models.CoherenceIssue{
				Type:     models.CoherenceIncompleteNote,
				Severity: models.SeverityInfo,
				Message:  fmt.Sprintf("Note %s has no amounts", id),
				Category: id,
			})
		}
	}

	c.logger.WithFields(logger.Fields{
		"exercise_id": set.ExerciseID,
		"issues":      len(issues),
		"blocking":    models.HasBlockingIssue(issues),
	}).Debug("Coherence checked")

	return issues
}

func (c *Controller) within(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(c.config.Tolerance)
}

func (c *Controller) issue(t models.CoherenceIssueType, sev models.Severity, category, msg string, expected, actual decimal.Decimal) models.CoherenceIssue {
	return models.CoherenceIssue{
		Type:     t,
		Severity: sev,
		Message:  msg,
		Expected: &expected,
		Actual:   &actual,
		Category: category,
	}
}

func allZero(r report.Report) bool {
	zero := true
	report.Figures(r, func(_ string, f *report.Figure) {
		if !f.N.IsZero() {
			zero = false
		}
	})
	return zero
}
