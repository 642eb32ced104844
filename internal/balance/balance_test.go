package balance

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-dsf-service/internal/models"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func entry(account string, od, oc, md, mc, sd, sc int64) models.TrialBalanceEntry {
	return models.TrialBalanceEntry{
		AccountNumber:  account,
		AccountName:    "Compte " + account,
		OpeningDebit:   d(od),
		OpeningCredit:  d(oc),
		MovementDebit:  d(md),
		MovementCredit: d(mc),
		ClosingDebit:   d(sd),
		ClosingCredit:  d(sc),
	}
}

func raw(account, name string, amounts ...string) models.RawRow {
	row := models.RawRow{
		models.FieldAccountNumber: account,
		models.FieldAccountName:   name,
	}
	for i, f := range models.AmountFields {
		if i < len(amounts) {
			row[f] = amounts[i]
		}
	}
	return row
}

func TestValidatorAcceptsWellFormedRows(t *testing.T) {
	v := NewValidator(ValidatorConfig{})
	entries, errs := v.Validate([]models.RawRow{
		raw("101000", "Capital", "0", "1 000 000", "0", "0", "0", "1 000 000"),
		raw("521", "Banque", "1000000", "0", "250 000,50", "0", "1250000.50", "0"),
	})

	require.Empty(t, errs)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].OpeningCredit.Equal(d(1000000)))
	assert.Equal(t, "1250000.5", entries[1].ClosingDebit.String())
}

func TestValidatorReportsEveryViolation(t *testing.T) {
	v := NewValidator(ValidatorConfig{})
	_, errs := v.Validate([]models.RawRow{
		raw("101000", "Capital", "0", "0", "0", "0", "0", "0"),
		raw("12A", "", "0", "-5", "x", "0", "0"),
	})

	require.Len(t, errs, 5)
	assert.Equal(t, `Row 2: invalid account number "12A" (digits only)`, errs[0])
	assert.Equal(t, "Row 2: missing account name", errs[1])
	assert.Equal(t, "Row 2: opening credit must be >= 0, got -5", errs[2])
	assert.Equal(t, `Row 2: movement debit "x" is not a number`, errs[3])
	assert.Equal(t, "Row 2: missing closing credit", errs[4])
}

func TestValidatorUsesWorksheetRows(t *testing.T) {
	first := raw("101000", "Capital", "0", "0", "0", "0", "0", "0")
	first[models.FieldRowNumber] = "7"
	second := raw("12A", "Banque", "0", "0", "0", "0", "0", "0")
	second[models.FieldRowNumber] = "9"

	_, errs := NewValidator(ValidatorConfig{}).Validate([]models.RawRow{first, second})
	require.Len(t, errs, 1)
	assert.Equal(t, `Row 9: invalid account number "12A" (digits only)`, errs[0])
}

func TestValidatorStrictAccountNumbers(t *testing.T) {
	rows := []models.RawRow{raw("6011", "Achats", "0", "0", "1", "0", "1", "0")}

	_, errs := NewValidator(ValidatorConfig{}).Validate(rows)
	assert.Empty(t, errs)

	_, errs = NewValidator(ValidatorConfig{StrictAccountNumbers: true}).Validate(rows)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "Row 1")
	assert.Contains(t, errs[0], "6 to 8 digits")
}

func TestValidatorEmptyBalance(t *testing.T) {
	_, errs := NewValidator(ValidatorConfig{}).Validate(nil)
	assert.Equal(t, []string{"Balance contains no rows"}, errs)
}

func TestCheckEquilibriumBalanced(t *testing.T) {
	entries := []models.TrialBalanceEntry{
		entry("521000", 1000, 0, 500, 0, 1500, 0),
		entry("101000", 0, 1000, 0, 500, 0, 1500),
	}

	result := CheckEquilibrium(entries)

	assert.True(t, result.IsBalanced)
	assert.Empty(t, result.Anomalies)
	assert.True(t, result.TotalClosingDebit.Equal(d(1500)))
	assert.True(t, result.TotalMovementCredit.Equal(d(500)))
}

func TestCheckEquilibriumClosingGap(t *testing.T) {
	entries := []models.TrialBalanceEntry{
		entry("521000", 1000, 0, 500, 0, 1500, 0),
		entry("101000", 0, 1000, 0, 500, 0, 1490),
	}

	result := CheckEquilibrium(entries)

	assert.False(t, result.IsBalanced)
	require.Len(t, result.Anomalies, 1)
	assert.Contains(t, result.Anomalies[0], "10.00")
	assert.True(t, strings.HasPrefix(result.Anomalies[0], "Closing"))
}

func TestCheckEquilibriumSignedAndJoined(t *testing.T) {
	entries := []models.TrialBalanceEntry{
		entry("521000", 100, 0, 0, 0, 0, 0),
		entry("101000", 0, 0, 0, 0, 0, 25),
	}

	result := CheckEquilibrium(entries)

	require.Len(t, result.Anomalies, 2)
	assert.Contains(t, result.Anomalies[0], "= 100.00")
	assert.Contains(t, result.Anomalies[1], "= -25.00")
	assert.Equal(t, result.Anomalies[0]+"; "+result.Anomalies[1], result.AnomalyText())
}

func TestCheckEquilibriumTolerance(t *testing.T) {
	e := entry("521000", 0, 0, 0, 0, 0, 0)
	e.ClosingDebit = decimal.RequireFromString("100.01")
	f := entry("101000", 0, 0, 0, 0, 0, 100)

	assert.True(t, CheckEquilibrium([]models.TrialBalanceEntry{e, f}).IsBalanced)

	e.ClosingDebit = decimal.RequireFromString("100.02")
	assert.False(t, CheckEquilibrium([]models.TrialBalanceEntry{e, f}).IsBalanced)
}

func TestCheckEquilibriumIsPure(t *testing.T) {
	entries := []models.TrialBalanceEntry{
		entry("521000", 10, 0, 5, 0, 15, 0),
		entry("101000", 0, 10, 0, 5, 0, 14),
	}
	snapshot := append([]models.TrialBalanceEntry(nil), entries...)

	first := CheckEquilibrium(entries)
	second := CheckEquilibrium(entries)

	assert.Equal(t, first.Anomalies, second.Anomalies)
	assert.Equal(t, first.IsBalanced, second.IsBalanced)
	assert.True(t, first.TotalClosingCredit.Equal(second.TotalClosingCredit))
	assert.Equal(t, snapshot, entries)
}

func TestIssueDetector(t *testing.T) {
	detector := NewIssueDetector(DefaultIssueDetectorConfig())

	issues := detector.Detect([]models.TrialBalanceEntry{
		entry("10100", 0, 0, 0, 0, 0, 0),
		entry("401100", 0, 0, 0, 0, 0, 700),
		entry("281000", 0, 0, 0, 0, 0, 300),
		entry("601000", 0, 0, 0, 0, 50, 0),
		entry("701000", 0, 0, 0, 0, 0, 90),
	})

	types := map[string][]models.IssueType{}
	for _, issue := range issues {
		types[issue.AccountNumber] = append(types[issue.AccountNumber], issue.Type)
	}

	assert.Equal(t, []models.IssueType{models.IssueNonCompliantAccount, models.IssueMissingSpecification}, types["10100"])
	assert.Equal(t, []models.IssueType{models.IssueWrongBalancePosition, models.IssueMissingSpecification}, types["401100"])
	assert.Equal(t, []models.IssueType{models.IssueWrongBalancePosition}, types["281000"])
	assert.Empty(t, types["601000"])
	assert.Empty(t, types["701000"], "class 7 credit balances are expected")

	for _, issue := range issues {
		switch issue.Type {
		case models.IssueNonCompliantAccount:
			assert.Equal(t, models.SeverityError, issue.Severity)
		case models.IssueWrongBalancePosition:
			assert.Equal(t, models.SeverityWarning, issue.Severity)
		case models.IssueMissingSpecification:
			assert.Equal(t, models.SeverityInfo, issue.Severity)
		}
	}
}

func TestIssueDetectorContraAssetOption(t *testing.T) {
	cfg := DefaultIssueDetectorConfig()
	cfg.ExcludeContraAssets = true

	issues := NewIssueDetector(cfg).Detect([]models.TrialBalanceEntry{
		entry("281000", 0, 0, 0, 0, 0, 300),
		entry("411000", 0, 0, 0, 0, 0, 300),
	})

	require.Len(t, issues, 2)
	assert.Equal(t, "411000", issues[0].AccountNumber)
	assert.Equal(t, models.IssueWrongBalancePosition, issues[0].Type)
}

func TestIssueDetectionIsIdempotentAndKeepsResolutions(t *testing.T) {
	detector := NewIssueDetector(DefaultIssueDetectorConfig())
	entries := []models.TrialBalanceEntry{entry("401100", 0, 0, 0, 0, 0, 700)}

	first := detector.Detect(entries)
	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	require.True(t, ResolveIssue(first, "401100", models.IssueWrongBalancePosition, "supplier advance", "u1", at))
	assert.False(t, ResolveIssue(first, "999999", models.IssueWrongBalancePosition, "", "u1", at))

	second := CarryResolutions(detector.Detect(entries), first)

	require.Len(t, second, len(first))
	assert.True(t, second[0].Resolved)
	assert.Equal(t, "supplier advance", second[0].ResolutionNote)
	assert.Equal(t, at, *second[0].ResolvedAt)
	assert.False(t, second[1].Resolved)
}

func TestExtractFixedAssets(t *testing.T) {
	records := ExtractFixedAssets([]models.TrialBalanceEntry{
		entry("244100", 1000, 0, 500, 0, 1500, 0),
		entry("245000", 800, 0, 0, 300, 500, 0),
		entry("231000", 200, 0, 0, 0, 200, 0),
		entry("284410", 0, 100, 0, 200, 0, 300),
		entry("284500", 0, 50, 0, 50, 0, 100),
		entry("401000", 0, 0, 0, 0, 0, 10),
	})

	require.Len(t, records, 3)

	byAccount := map[string]models.FixedAssetRecord{}
	for _, r := range records {
		byAccount[r.AccountNumber] = r
	}

	office := byAccount["244100"]
	assert.Equal(t, models.MovementAcquisition, office.MovementType)
	assert.True(t, office.GrossValue.Equal(d(1500)))
	assert.True(t, office.Depreciation.Equal(d(300)))
	assert.True(t, office.NetValue.Equal(d(1200)))
	assert.True(t, office.Acquisitions.Equal(d(500)))

	vehicles := byAccount["245000"]
	assert.Equal(t, models.MovementDisposal, vehicles.MovementType)
	assert.True(t, vehicles.Disposals.Equal(d(300)))
	assert.True(t, vehicles.NetValue.Equal(d(400)))

	building := byAccount["231000"]
	assert.Equal(t, models.MovementNone, building.MovementType)
	assert.True(t, building.Depreciation.IsZero())
}

func TestProcessor(t *testing.T) {
	p := NewProcessor(NewValidator(ValidatorConfig{}), NewIssueDetector(DefaultIssueDetectorConfig()))
	fixed := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	t.Run("invalid rows", func(t *testing.T) {
		b := &models.Balance{ID: "b1"}
		p.Process(b, []models.RawRow{raw("ABC", "x", "0", "0", "0", "0", "0", "0")}, nil)

		assert.Equal(t, models.BalanceStatusInvalid, b.Status)
		assert.Equal(t, []string{`Row 1: invalid account number "ABC" (digits only)`}, b.ValidationErrors)
		assert.Nil(t, b.Equilibrium)
	})

	t.Run("unbalanced", func(t *testing.T) {
		b := &models.Balance{ID: "b2"}
		p.Process(b, []models.RawRow{
			raw("521000", "Banque", "0", "0", "0", "0", "1500", "0"),
			raw("101000", "Capital", "0", "0", "0", "0", "0", "1490"),
		}, nil)

		assert.Equal(t, models.BalanceStatusUnbalanced, b.Status)
		require.NotNil(t, b.Equilibrium)
		assert.Contains(t, b.Equilibrium.AnomalyText(), "10.00")
		assert.Nil(t, b.ProcessedAt)
	})

	t.Run("processed with carried resolution", func(t *testing.T) {
		previous := []models.AccountIssue{{
			AccountNumber: "101000", Type: models.IssueMissingSpecification,
			Resolved: true, ResolutionNote: "detail attached",
		}}
		b := &models.Balance{ID: "b3"}
		p.Process(b, []models.RawRow{
			raw("521000", "Banque", "0", "0", "0", "0", "1500", "0"),
			raw("101000", "Capital", "0", "0", "0", "0", "0", "1500"),
		}, previous)

		assert.Equal(t, models.BalanceStatusProcessed, b.Status)
		require.NotNil(t, b.ProcessedAt)
		assert.Equal(t, fixed, *b.ProcessedAt)

		var resolved int
		for _, issue := range b.Issues {
			if issue.Resolved {
				resolved++
				assert.Equal(t, "detail attached", issue.ResolutionNote)
			}
		}
		assert.Equal(t, 1, resolved)
	})
}
