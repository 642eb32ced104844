package importer

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-dsf-service/internal/models"
	"golang-dsf-service/internal/parsers"
	"golang-dsf-service/internal/report"
	"golang-dsf-service/pkg/errors"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical after normalisation", "Écarts de conversion - Actif", "ecarts de CONVERSION actif", 100},
		{"containment", "Emprunts", "Emprunts obligataires", 85},
		{"levenshtein ratio", "kitten", "sitting", 57.14},
		{"empty", "", "bilan", 0},
		{"only punctuation", "---", "---", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 0.01)
			assert.InDelta(t, Similarity(tt.a, tt.b), Similarity(tt.b, tt.a), 0.001)
		})
	}
}

func TestAccountScore(t *testing.T) {
	tests := []struct {
		account  string
		patterns []string
		want     float64
	}{
		{"10", []string{"10x"}, 100},
		{"101", []string{"10x"}, 90},
		{"102", []string{"10x"}, 90},
		{"1011", []string{"10x"}, 75},
		{"201", []string{"10x"}, 0},
		{"601", []string{"2x", "601x"}, 100},
		{"", []string{"10x"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.account, func(t *testing.T) {
			assert.Equal(t, tt.want, AccountScore(tt.account, tt.patterns))
		})
	}
}

func TestPositionScore(t *testing.T) {
	assert.Equal(t, 100.0, positionScore(8, 8, 10))
	assert.Equal(t, 70.0, positionScore(5, 8, 10))
	assert.Equal(t, 0.0, positionScore(30, 8, 10))
}

func TestEffectiveWeights(t *testing.T) {
	tests := []struct {
		name                    string
		policy                  Redistribution
		hasAccount, hasPosition bool
		want                    Weights
	}{
		{"label all signals", RedistributeToLabel, true, true, Weights{0.30, 0.40, 0.20, 0.10}},
		{"label no account", RedistributeToLabel, false, true, Weights{0.30, 0.60, 0, 0.10}},
		{"label no position", RedistributeToLabel, true, false, Weights{0.30, 0.50, 0.20, 0}},
		{"label neither", RedistributeToLabel, false, false, Weights{0.30, 0.70, 0, 0}},
		{"proportional all signals", RedistributeProportional, true, true, Weights{0.30, 0.40, 0.20, 0.10}},
		{"proportional no account", RedistributeProportional, false, true, Weights{0.375, 0.50, 0, 0.125}},
		{"proportional no position", RedistributeProportional, true, false, Weights{1.0 / 3, 4.0 / 9, 2.0 / 9, 0}},
		{"proportional neither", RedistributeProportional, false, false, Weights{3.0 / 7, 4.0 / 7, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Redistribution = tt.policy
			got := cfg.effectiveWeights(tt.hasAccount, tt.hasPosition)
			assert.InDelta(t, tt.want.Sheet, got.Sheet, 1e-9)
			assert.InDelta(t, tt.want.Label, got.Label, 1e-9)
			assert.InDelta(t, tt.want.Account, got.Account, 1e-9)
			assert.InDelta(t, tt.want.Position, got.Position, 1e-9)
			assert.InDelta(t, 1.0, got.Sum(), 1e-9)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"weights not summing to one", func(c *Config) { c.Weights.Label = 0.9 }},
		{"negative weight", func(c *Config) { c.Weights.Sheet = -0.1 }},
		{"unknown policy", func(c *Config) { c.Redistribution = "spread" }},
		{"threshold above 100", func(c *Config) { c.AutoApplyThreshold = 120 }},
		{"too many value columns", func(c *Config) { c.MaxValueColumns = 4 }},
		{"zero position step", func(c *Config) { c.PositionStep = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	bad := DefaultConfig()
	bad.SheetThreshold = -1
	_, err := NewMatcher(bad)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidConfig))
}

func TestParseRow(t *testing.T) {
	t.Run("header row", func(t *testing.T) {
		_, ok := parseRow(parsers.Row{Number: 1, Cells: []string{"REF", "LIBELLES", "NOTE", "EXERCICE N", "EXERCICE N-1"}}, 3)
		assert.False(t, ok)
	})

	t.Run("reference account and amounts", func(t *testing.T) {
		row, ok := parseRow(parsers.Row{Number: 9, Cells: []string{"DA", "161", "Emprunts obligataires", "16A", "(1 000)", "2 000,50", "3", "4"}}, 3)
		require.True(t, ok)
		assert.Equal(t, "Emprunts obligataires", row.label)
		assert.Equal(t, "161", row.account)
		assert.Equal(t, 9, row.number)
		require.Len(t, row.values, 3)
		assert.True(t, row.values[0].Equal(decimal.NewFromInt(-1000)))
		assert.True(t, row.values[1].Equal(decimal.RequireFromString("2000.50")))
		assert.True(t, row.values[2].Equal(decimal.NewFromInt(3)))
	})

	t.Run("label without amounts", func(t *testing.T) {
		_, ok := parseRow(parsers.Row{Number: 2, Cells: []string{"ACTIF IMMOBILISE", ""}}, 3)
		assert.False(t, ok)
	})
}

func TestDetectSheet(t *testing.T) {
	m, err := NewMatcher(nil)
	require.NoError(t, err)

	det := m.DetectSheet("BILAN")
	assert.True(t, det.Classified)
	assert.Equal(t, report.CategoryBalanceSheet, det.Category)
	assert.Equal(t, 100.0, det.Score)

	det = m.DetectSheet("Emprunts et dettes")
	assert.True(t, det.Classified)
	assert.Equal(t, "note16a", det.Category)

	det = m.DetectSheet("Paramètres")
	assert.False(t, det.Classified)
	assert.Empty(t, det.Category)
}

func TestScoreRowWithoutAccountNumber(t *testing.T) {
	m, err := NewMatcher(nil)
	require.NoError(t, err)

	field, ok := report.LookupField("note16a.dettesFinancieres.empruntsObligataires.montantBrut")
	require.True(t, ok)

	s := m.ScoreRow("Emprunts et dettes", "Emprunts obligataires", "", 5, field)
	assert.Equal(t, 0.0, s.Account)
	assert.InDelta(t, 0.70, s.Weights.Label, 1e-9)
	assert.InDelta(t, 100, s.Total, 0.01)

	withAccount := m.ScoreRow("Emprunts et dettes", "Emprunts obligataires", "1611", 5, field)
	assert.InDelta(t, 0.50, withAccount.Weights.Label, 1e-9)
	assert.InDelta(t, 30+40+0.2*90, withAccount.Total, 0.01)
}

func legacyWorkbook() *parsers.Workbook {
	return &parsers.Workbook{
		Name: "dsf_2023.xlsx",
		Sheets: []parsers.Sheet{
			{Name: "Bilan", Rows: []parsers.Row{
				{Number: 1, Cells: []string{"BILAN AU 31/12/2023"}},
				{Number: 3, Cells: []string{"REF", "ACTIF", "NOTE", "EXERCICE N", "EXERCICE N-1"}},
				{Number: 8, Cells: []string{"AJ", "Terrains", "", "1 500 000", "1 200 000"}},
				{Number: 12, Cells: []string{"", "Zzz quelconque", "", "42"}},
			}},
			{Name: "Emprunts et dettes", Rows: []parsers.Row{
				{Number: 5, Cells: []string{"Emprunts obligataires", "1 000 000", "800 000"}},
			}},
			{Name: "Paramètres", Rows: []parsers.Row{
				{Number: 1, Cells: []string{"Taux", "30"}},
			}},
		},
	}
}

func TestReconcileConfirmApply(t *testing.T) {
	m, err := NewMatcher(nil)
	require.NoError(t, err)
	m.now = func() time.Time { return time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC) }

	session, err := m.Reconcile(context.Background(), legacyWorkbook(), "f1")
	require.NoError(t, err)
	require.Len(t, session.Sheets, 3)
	assert.False(t, session.Sheets[2].Classified)
	assert.Equal(t, 1, session.Sheets[2].DataRows)
	require.Len(t, session.Entries, 3)

	terrains := session.Entries[0]
	assert.Equal(t, "bilan.actif.AJ.net", terrains.MatchedFieldID)
	assert.InDelta(t, 100, terrains.MatchConfidence, 0.01)

	unknown := session.Entries[1]
	assert.Less(t, unknown.MatchConfidence, 80.0)

	emprunts := session.Entries[2]
	assert.Equal(t, "note16a.dettesFinancieres.empruntsObligataires.montantBrut", emprunts.MatchedFieldID)
	assert.GreaterOrEqual(t, emprunts.MatchConfidence, 80.0)

	t.Run("confirm appends history", func(t *testing.T) {
		at := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)
		proposed := unknown.MatchedFieldID

		e, err := Confirm(session, Confirmation{EntryID: unknown.ID, FieldID: "bilan.passif.CA", User: "u1", Reason: "capital"}, at)
		require.NoError(t, err)
		assert.True(t, e.IsManualMatch)
		assert.Equal(t, "bilan.passif.CA", e.MatchedFieldID)

		e, err = Confirm(session, Confirmation{EntryID: unknown.ID, FieldID: "bilan.passif.CB", User: "u2"}, at.Add(time.Hour))
		require.NoError(t, err)
		require.Len(t, e.Corrections, 2)
		assert.Equal(t, proposed, e.Corrections[0].OriginalMatch)
		assert.Equal(t, "bilan.passif.CA", e.Corrections[1].OriginalMatch)
		assert.Equal(t, "bilan.passif.CB", e.Corrections[1].CorrectedMatch)
		assert.Equal(t, "u2", e.Corrections[1].CorrectedBy)
	})

	t.Run("confirm errors", func(t *testing.T) {
		_, err := Confirm(session, Confirmation{EntryID: "nope", FieldID: "bilan.passif.CA"}, time.Now())
		assert.True(t, errors.HasCode(err, errors.CodeEntryNotFound))

		_, err = Confirm(session, Confirmation{EntryID: terrains.ID, FieldID: "bilan.passif.ZZ"}, time.Now())
		assert.True(t, errors.HasCode(err, errors.CodeUnknownField))
	})

	t.Run("apply writes eligible entries", func(t *testing.T) {
		set := report.NewSet("EX2023")
		result, err := Apply(set, session, m.Config().AutoApplyThreshold)
		require.NoError(t, err)
		assert.Equal(t, 3, result.Applied)
		assert.Equal(t, 0, result.Skipped)

		bs, ok := set.Get(report.CategoryBalanceSheet)
		require.True(t, ok)
		n, err := report.Value(bs, "actif.AJ.net")
		require.NoError(t, err)
		assert.True(t, n.Equal(decimal.NewFromInt(1500000)))
		n1, err := report.Value(bs, "actif.AJ.net.n1")
		require.NoError(t, err)
		assert.True(t, n1.Equal(decimal.NewFromInt(1200000)))

		capital, err := report.Value(bs, "passif.CB")
		require.NoError(t, err)
		assert.True(t, capital.Equal(decimal.NewFromInt(42)))

		// totals absent from the file follow the imported lines
		for _, path := range []string{"actif.AJ.brut", "actif.AZ.net", "actif.BZ.net"} {
			v, err := report.Value(bs, path)
			require.NoError(t, err)
			assert.True(t, v.Equal(decimal.NewFromInt(1500000)), "%s = %s", path, v)
		}
		dz, err := report.Value(bs, "passif.DZ")
		require.NoError(t, err)
		assert.True(t, dz.Equal(decimal.NewFromInt(42)), "DZ = %s", dz)

		debts, ok := set.Get("note16a")
		require.True(t, ok)
		total, err := report.Value(debts, "total.montantBrut")
		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.NewFromInt(1000000)))

		assert.Equal(t, "import:"+session.ID, set.Sources["note16a"])
	})
}

func TestApplyKeepsImportedTotals(t *testing.T) {
	amount := func(v int64) []*decimal.Decimal {
		d := decimal.NewFromInt(v)
		return []*decimal.Decimal{&d}
	}
	session := &models.ImportSession{
		ID:       "s1",
		FileName: "old.xlsx",
		Entries: []models.ImportEntry{
			{ID: "e1", MatchedFieldID: "bilan.actif.AJ.net", IsManualMatch: true, Values: amount(100)},
			{ID: "e2", MatchedFieldID: "bilan.actif.AK.net", IsManualMatch: true, Values: amount(50)},
			{ID: "e3", MatchedFieldID: "bilan.actif.BZ.net", IsManualMatch: true, Values: amount(999)},
		},
	}

	set := report.NewSet("EX2023")
	result, err := Apply(set, session, 80)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Applied)

	bs, ok := set.Get(report.CategoryBalanceSheet)
	require.True(t, ok)

	az, err := report.Value(bs, "actif.AZ.net")
	require.NoError(t, err)
	assert.True(t, az.Equal(decimal.NewFromInt(150)), "AZ = %s", az)

	bz, err := report.Value(bs, "actif.BZ.net")
	require.NoError(t, err)
	assert.True(t, bz.Equal(decimal.NewFromInt(999)), "BZ = %s", bz)

	aj, err := report.Value(bs, "actif.AJ.net")
	require.NoError(t, err)
	assert.True(t, aj.Equal(decimal.NewFromInt(100)))
}

func TestApplyLowConfidenceOnly(t *testing.T) {
	v := decimal.NewFromInt(10)
	session := &models.ImportSession{
		FileName: "old.xlsx",
		Entries: []models.ImportEntry{
			{ID: "e1", MatchedFieldID: "bilan.passif.CA", MatchConfidence: 79.99, Values: []*decimal.Decimal{&v}},
			{ID: "e2", MatchConfidence: 95, Values: []*decimal.Decimal{&v}},
		},
	}
	result, err := Apply(report.NewSet("EX"), session, 80)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeNothingToApply))
	assert.Equal(t, 2, result.Skipped)
}

func TestReconcileCancelled(t *testing.T) {
	m, err := NewMatcher(nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.Reconcile(ctx, legacyWorkbook(), "f1")
	assert.Error(t, err)
}
