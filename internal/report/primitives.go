package report

import (
	"strings"

	"github.com/shopspring/decimal"

	"golang-dsf-service/internal/models"
)

// GetBalanceValue returns the amount selected by source for account. Rows are
// matched on the exact account number and summed if the number repeats. An
// absent account yields zero for every source.
func GetBalanceValue(rows []models.TrialBalanceEntry, account string, source models.SourceCode) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		if r.AccountNumber != account {
			continue
		}
		total = total.Add(selectAmount(r, source))
	}
	return total
}

func selectAmount(r models.TrialBalanceEntry, source models.SourceCode) decimal.Decimal {
	switch source {
	case models.SourceOpeningDebit:
		return r.OpeningDebit
	case models.SourceOpeningCredit:
		return r.OpeningCredit
	case models.SourceMovementDebit:
		return r.MovementDebit
	case models.SourceMovementCredit:
		return r.MovementCredit
	case models.SourceClosingDebit:
		return r.ClosingDebit
	case models.SourceClosingCredit:
		return r.ClosingCredit
	case models.SourceMovementNet:
		return r.NetMovement()
	case models.SourceClosingNet:
		return r.NetClosing()
	default:
		return decimal.Zero
	}
}

// SumAccounts nets closingDebit - closingCredit over every row whose account
// starts with one of prefixes. A row matching several prefixes counts once.
func SumAccounts(rows []models.TrialBalanceEntry, prefixes []string) decimal.Decimal {
	return sumRows(rows, prefixes, func(r models.TrialBalanceEntry) decimal.Decimal {
		return r.NetClosing()
	})
}

// SumDebitBalances adds the closing balances of matching rows that end in debit
func SumDebitBalances(rows []models.TrialBalanceEntry, prefixes []string) decimal.Decimal {
	return sumRows(rows, prefixes, func(r models.TrialBalanceEntry) decimal.Decimal {
		if net := r.NetClosing(); net.IsPositive() {
			return net
		}
		return decimal.Zero
	})
}

// SumCreditBalances adds the closing balances of matching rows that end in credit, as positive amounts
func SumCreditBalances(rows []models.TrialBalanceEntry, prefixes []string) decimal.Decimal {
	return sumRows(rows, prefixes, func(r models.TrialBalanceEntry) decimal.Decimal {
		if net := r.NetClosing(); net.IsNegative() {
			return net.Neg()
		}
		return decimal.Zero
	})
}

// SumMovements returns the debit and credit movements of matching rows
func SumMovements(rows []models.TrialBalanceEntry, prefixes []string) (debit, credit decimal.Decimal) {
	debit = sumRows(rows, prefixes, func(r models.TrialBalanceEntry) decimal.Decimal { return r.MovementDebit })
	credit = sumRows(rows, prefixes, func(r models.TrialBalanceEntry) decimal.Decimal { return r.MovementCredit })
	return debit, credit
}

// SumOpening nets openingDebit - openingCredit over matching rows
func SumOpening(rows []models.TrialBalanceEntry, prefixes []string) decimal.Decimal {
	return sumRows(rows, prefixes, func(r models.TrialBalanceEntry) decimal.Decimal { return r.NetOpening() })
}

func sumRows(rows []models.TrialBalanceEntry, prefixes []string, value func(models.TrialBalanceEntry) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	if len(prefixes) == 0 {
		return total
	}
	for _, r := range rows {
		if matchesAny(r.AccountNumber, prefixes) {
			total = total.Add(value(r))
		}
	}
	return total
}

func matchesAny(account string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(account, p) {
			return true
		}
	}
	return false
}

// ComputeMappedValues evaluates mappings against rows and sums the values that
// share a destination.
func ComputeMappedValues(rows []models.TrialBalanceEntry, mappings []models.AccountMapping) map[string]decimal.Decimal {
	values := make(map[string]decimal.Decimal)
	for _, m := range mappings {
		v := GetBalanceValue(rows, m.AccountNumber, m.Source)
		if current, ok := values[m.Destination]; ok {
			values[m.Destination] = current.Add(v)
		} else {
			values[m.Destination] = v
		}
	}
	return values
}
