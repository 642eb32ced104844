// Package balance validates uploaded trial balances and derives the data the
// declaration needs from them: equilibrium totals, account issues and fixed
// asset movements.
package balance

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"

	"golang-dsf-service/internal/locale"
	"golang-dsf-service/internal/models"
)

var (
	digitsOnly       = regexp.MustCompile(`^\d+$`)
	compliantAccount = regexp.MustCompile(`^\d{6,8}$`)
)

var fieldLabels = map[models.RawField]string{
	models.FieldAccountName:   "account name",
	models.FieldOpeningDebit:  "opening debit",
	models.FieldOpeningCredit: "opening credit",
	models.FieldMovementDebit: "movement debit",
	models.FieldMovementCred:  "movement credit",
	models.FieldClosingDebit:  "closing debit",
	models.FieldClosingCredit: "closing credit",
}

// ValidatorConfig tunes the trial-balance validator
type ValidatorConfig struct {
	// StrictAccountNumbers requires 6 to 8 digit OHADA numbers instead of any digit string.
	StrictAccountNumbers bool `mapstructure:"strict_account_numbers"`
}

// Validator checks raw rows before they become trial-balance entries
type Validator struct {
	config ValidatorConfig
}

// NewValidator creates a validator
func NewValidator(config ValidatorConfig) *Validator {
	return &Validator{config: config}
}

// Validate checks every row and returns the converted entries together with one
// message per violation. Messages cite the worksheet row when the parser
// recorded it, the 1-based position in rows otherwise. Entries are only
// meaningful when the error list is empty.
func (v *Validator) Validate(rows []models.RawRow) ([]models.TrialBalanceEntry, []string) {
	var errs []string
	entries := make([]models.TrialBalanceEntry, 0, len(rows))

	for i, row := range rows {
		rowNum := i + 1
		if n, ok := row.Number(); ok {
			rowNum = n
		}
		entry, rowErrs := v.validateRow(rowNum, row)
		errs = append(errs, rowErrs...)
		entries = append(entries, entry)
	}

	if len(rows) == 0 {
		errs = append(errs, "Balance contains no rows")
	}

	return entries, errs
}

func (v *Validator) validateRow(rowNum int, row models.RawRow) (models.TrialBalanceEntry, []string) {
	var errs []string
	var entry models.TrialBalanceEntry

	account, ok := row.Get(models.FieldAccountNumber)
	switch {
	case !ok:
		errs = append(errs, fmt.Sprintf("Row %d: missing account number", rowNum))
	case !digitsOnly.MatchString(account):
		errs = append(errs, fmt.Sprintf("Row %d: invalid account number %q (digits only)", rowNum, account))
	case v.config.StrictAccountNumbers && !compliantAccount.MatchString(account):
		errs = append(errs, fmt.Sprintf("Row %d: account number %q must have 6 to 8 digits", rowNum, account))
	}
	entry.AccountNumber = account

	name, ok := row.Get(models.FieldAccountName)
	if !ok {
		errs = append(errs, fmt.Sprintf("Row %d: missing %s", rowNum, fieldLabels[models.FieldAccountName]))
	}
	entry.AccountName = name

	amounts := make(map[models.RawField]decimal.Decimal, len(models.AmountFields))
	for _, field := range models.AmountFields {
		raw, ok := row.Get(field)
		if !ok {
			errs = append(errs, fmt.Sprintf("Row %d: missing %s", rowNum, fieldLabels[field]))
			continue
		}
		amount, err := locale.ParseAmount(raw)
		if err != nil {
			errs = append(errs, fmt.Sprintf("Row %d: %s %q is not a number", rowNum, fieldLabels[field], raw))
			continue
		}
		if amount.IsNegative() {
			errs = append(errs, fmt.Sprintf("Row %d: %s must be >= 0, got %s", rowNum, fieldLabels[field], amount.String()))
			continue
		}
		amounts[field] = amount
	}

	entry.OpeningDebit = amounts[models.FieldOpeningDebit]
	entry.OpeningCredit = amounts[models.FieldOpeningCredit]
	entry.MovementDebit = amounts[models.FieldMovementDebit]
	entry.MovementCredit = amounts[models.FieldMovementCred]
	entry.ClosingDebit = amounts[models.FieldClosingDebit]
	entry.ClosingCredit = amounts[models.FieldClosingCredit]

	return entry, errs
}
