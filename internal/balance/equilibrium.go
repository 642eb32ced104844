package balance

import (
	"fmt"

	"github.com/shopspring/decimal"

	"golang-dsf-service/internal/models"
)

// EquilibriumTolerance is the largest debit/credit gap accepted per totals triple
var EquilibriumTolerance = decimal.RequireFromString("0.01")

// CheckEquilibrium sums the six amount columns and certifies double entry for
// the opening, movement and closing triples independently.
func CheckEquilibrium(entries []models.TrialBalanceEntry) models.EquilibriumResult {
	result := models.EquilibriumResult{
		TotalOpeningDebit:   decimal.Zero,
		TotalOpeningCredit:  decimal.Zero,
		TotalMovementDebit:  decimal.Zero,
		TotalMovementCredit: decimal.Zero,
		TotalClosingDebit:   decimal.Zero,
		TotalClosingCredit:  decimal.Zero,
		Anomalies:           []string{},
	}

	for _, e := range entries {
		result.TotalOpeningDebit = result.TotalOpeningDebit.Add(e.OpeningDebit)
		result.TotalOpeningCredit = result.TotalOpeningCredit.Add(e.OpeningCredit)
		result.TotalMovementDebit = result.TotalMovementDebit.Add(e.MovementDebit)
		result.TotalMovementCredit = result.TotalMovementCredit.Add(e.MovementCredit)
		result.TotalClosingDebit = result.TotalClosingDebit.Add(e.ClosingDebit)
		result.TotalClosingCredit = result.TotalClosingCredit.Add(e.ClosingCredit)
	}

	triples := []struct {
		name          string
		debit, credit decimal.Decimal
	}{
		{"Opening", result.TotalOpeningDebit, result.TotalOpeningCredit},
		{"Movement", result.TotalMovementDebit, result.TotalMovementCredit},
		{"Closing", result.TotalClosingDebit, result.TotalClosingCredit},
	}

	for _, tr := range triples {
		diff := tr.debit.Sub(tr.credit)
		if diff.Abs().GreaterThan(EquilibriumTolerance) {
			result.Anomalies = append(result.Anomalies,
				fmt.Sprintf("%s balance not balanced: debit - credit = %s", tr.name, diff.StringFixed(2)))
		}
	}

	result.IsBalanced = len(result.Anomalies) == 0
	return result
}
