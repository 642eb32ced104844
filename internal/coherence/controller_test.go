package coherence

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-dsf-service/internal/models"
	"golang-dsf-service/internal/report"
	"golang-dsf-service/pkg/errors"
)

func put(t *testing.T, set *report.Set, category string, values map[string]int64) {
	t.Helper()
	r, ok := set.Get(category)
	if !ok {
		var err error
		r, err = report.NewEmpty(category)
		require.NoError(t, err)
		set.Reports[category] = r
	}
	for path, v := range values {
		require.NoError(t, report.Assign(r, path, decimal.NewFromInt(v), report.AssignOptions{AllowDerived: true}))
	}
}

// coherentSet has a 600 profit carried consistently through every summary report
func coherentSet(t *testing.T) *report.Set {
	set := report.NewSet("EX2024")
	put(t, set, report.CategoryBalanceSheet, map[string]int64{"actif.BZ.net": 5000, "passif.DZ": 5000, "passif.CJ": 600})
	put(t, set, report.CategoryIncomeStatement, map[string]int64{"lignes.TA": 1000, "lignes.RA": 400, "lignes.XI": 600})
	put(t, set, report.CategoryTaxTables, map[string]int64{"resultatComptable": 600})
	for _, id := range DefaultRequiredNotes {
		put(t, set, id, nil)
	}
	return set
}

func issueTypes(issues []models.CoherenceIssue) []models.CoherenceIssueType {
	out := make([]models.CoherenceIssueType, 0, len(issues))
	for _, i := range issues {
		if i.Type != models.CoherenceIncompleteNote {
			out = append(out, i.Type)
		}
	}
	return out
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*report.Set)
		want     []models.CoherenceIssueType
		blocking bool
	}{
		{
			name:   "coherent",
			mutate: func(*report.Set) {},
			want:   []models.CoherenceIssueType{},
		},
		{
			name: "difference within tolerance",
			mutate: func(s *report.Set) {
				_ = report.Assign(s.Reports[report.CategoryBalanceSheet], "passif.DZ", decimal.RequireFromString("5000.99"), report.AssignOptions{AllowDerived: true})
			},
			want: []models.CoherenceIssueType{},
		},
		{
			name: "unbalanced bilan",
			mutate: func(s *report.Set) {
				_ = report.Assign(s.Reports[report.CategoryBalanceSheet], "passif.DZ", decimal.NewFromInt(4990), report.AssignOptions{AllowDerived: true})
			},
			want:     []models.CoherenceIssueType{models.CoherenceEquilibrium},
			blocking: true,
		},
		{
			name: "declared result differs from detail",
			mutate: func(s *report.Set) {
				_ = report.Assign(s.Reports[report.CategoryIncomeStatement], "lignes.RA", decimal.NewFromInt(300), report.AssignOptions{})
			},
			want:     []models.CoherenceIssueType{models.CoherenceResultMismatch},
			blocking: true,
		},
		{
			name: "tax tables start from another result",
			mutate: func(s *report.Set) {
				_ = report.Assign(s.Reports[report.CategoryTaxTables], "resultatComptable", decimal.NewFromInt(550), report.AssignOptions{AllowDerived: true})
			},
			want: []models.CoherenceIssueType{models.CoherenceTaxResultMismatch},
		},
		{
			name: "equity result differs",
			mutate: func(s *report.Set) {
				_ = report.Assign(s.Reports[report.CategoryBalanceSheet], "passif.CJ", decimal.NewFromInt(0), report.AssignOptions{AllowDerived: true})
			},
			want: []models.CoherenceIssueType{models.CoherenceBalanceResultMismatch},
		},
		{
			name:   "missing note",
			mutate: func(s *report.Set) { delete(s.Reports, "note3a") },
			want:   []models.CoherenceIssueType{models.CoherenceMissingNote},
		},
	}

	c := NewController(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := coherentSet(t)
			tt.mutate(set)
			issues := c.Check(set)
			assert.Equal(t, tt.want, issueTypes(issues))
			assert.Equal(t, tt.blocking, models.HasBlockingIssue(issues))
		})
	}
}

func TestCheckOrderAndAmounts(t *testing.T) {
	set := coherentSet(t)
	_ = report.Assign(set.Reports[report.CategoryBalanceSheet], "passif.DZ", decimal.NewFromInt(4000), report.AssignOptions{AllowDerived: true})
	_ = report.Assign(set.Reports[report.CategoryTaxTables], "resultatComptable", decimal.NewFromInt(0), report.AssignOptions{AllowDerived: true})

	issues := NewController(nil).Check(set)
	require.GreaterOrEqual(t, len(issues), 2)
	assert.Equal(t, models.CoherenceEquilibrium, issues[0].Type)
	assert.Equal(t, models.SeverityError, issues[0].Severity)
	require.NotNil(t, issues[0].Expected)
	assert.True(t, issues[0].Expected.Equal(decimal.NewFromInt(4000)))
	assert.True(t, issues[0].Actual.Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, models.CoherenceTaxResultMismatch, issues[1].Type)
	assert.Equal(t, models.SeverityWarning, issues[1].Severity)
}

func TestCheckIncompleteNotes(t *testing.T) {
	set := coherentSet(t)
	put(t, set, "note3a", map[string]int64{"lignes.AJ.cloture": 100})

	issues := NewController(nil).Check(set)
	incomplete := map[string]bool{}
	for _, i := range issues {
		if i.Type == models.CoherenceIncompleteNote {
			assert.Equal(t, models.SeverityInfo, i.Severity)
			incomplete[i.Category] = true
		}
	}
	assert.False(t, incomplete["note3a"])
	assert.True(t, incomplete["note3c"])
	assert.False(t, models.HasBlockingIssue(issues))
}

func TestCheckSkipsAbsentReports(t *testing.T) {
	set := report.NewSet("EX2024")
	c := NewController(&Config{Tolerance: decimal.NewFromInt(1)})
	assert.Empty(t, c.Check(set))
	assert.Empty(t, c.Check(nil))
}

func TestCheckGeneratedSet(t *testing.T) {
	rows := []models.TrialBalanceEntry{
		{AccountNumber: "101000", ClosingCredit: decimal.NewFromInt(1000000)},
		{AccountNumber: "521000", ClosingDebit: decimal.NewFromInt(1200000)},
		{AccountNumber: "701000", ClosingCredit: decimal.NewFromInt(500000)},
		{AccountNumber: "601000", ClosingDebit: decimal.NewFromInt(300000)},
	}
	set, err := report.NewGenerator(report.Options{}).Generate(context.Background(),
		report.Input{ExerciseID: "EX2024", Current: rows}, nil)
	require.NoError(t, err)

	issues := NewController(nil).Check(set)
	assert.False(t, models.HasBlockingIssue(issues), "%v", issues)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.Tolerance = decimal.NewFromInt(-1)
	assert.True(t, errors.HasCode(bad.Validate(), errors.CodeInvalidConfig))

	unknown := DefaultConfig()
	unknown.RequiredNotes = []string{"note99"}
	assert.Error(t, unknown.Validate())
}
