package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-dsf-service/internal/declaration"
	"golang-dsf-service/internal/models"
	"golang-dsf-service/internal/report"
	"golang-dsf-service/pkg/errors"
)

func setupTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := Open(Config{Driver: DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func accountantConfig(target string) *models.MappingConfig {
	return &models.MappingConfig{
		Category:      "note17",
		Scope:         models.ScopeClient,
		ScopeTargetID: target,
		OwnerType:     models.OwnerAccountant,
		OwnerID:       "u1",
		Active:        true,
		Mappings: []models.AccountMapping{
			{AccountNumber: "401100", Source: models.SourceClosingCredit, Destination: "lignes.fournisseurs"},
		},
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle", DSN: "x"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidConfig))
}

func TestGormMappingRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormMappingRepository(db.DB)
	ctx := context.Background()

	t.Run("save and find active", func(t *testing.T) {
		sys := &models.MappingConfig{
			Category:  "note17",
			Scope:     models.ScopeGlobal,
			OwnerType: models.OwnerSystem,
			Active:    true,
			Mappings: []models.AccountMapping{
				{AccountNumber: "401", Source: models.SourceClosingCredit, Destination: "lignes.fournisseurs"},
				{AccountNumber: "408", Source: models.SourceClosingCredit, Destination: "lignes.facturesNonParvenues"},
			},
		}
		require.NoError(t, repo.Save(ctx, sys))
		assert.NotEmpty(t, sys.ID)
		assert.Equal(t, 1, sys.Version)

		found, err := repo.FindActive(ctx, "note17")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, sys.ID, found[0].ID)
		require.Len(t, found[0].Mappings, 2)
		assert.Equal(t, models.SourceClosingCredit, found[0].Mappings[1].Source)

		other, err := repo.FindActive(ctx, "note18")
		require.NoError(t, err)
		assert.Empty(t, other)
	})

	t.Run("accountant save supersedes previous", func(t *testing.T) {
		first := accountantConfig("c1")
		require.NoError(t, repo.Save(ctx, first))

		second := accountantConfig("c1")
		second.Mappings[0].Destination = "lignes.effetsAPayer"
		require.NoError(t, repo.Save(ctx, second))
		assert.Equal(t, 2, second.Version)

		old, err := repo.FindByID(ctx, first.ID)
		require.NoError(t, err)
		assert.False(t, old.Active)

		otherClient := accountantConfig("c2")
		require.NoError(t, repo.Save(ctx, otherClient))
		assert.Equal(t, 1, otherClient.Version)

		active, err := repo.FindActive(ctx, "note17")
		require.NoError(t, err)
		ids := make([]string, 0, len(active))
		for _, c := range active {
			ids = append(ids, c.ID)
		}
		assert.Contains(t, ids, second.ID)
		assert.Contains(t, ids, otherClient.ID)
		assert.NotContains(t, ids, first.ID)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, "missing")
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.CodeNotFound))
		assert.True(t, errors.HasCode(repo.Deactivate(ctx, "missing"), errors.CodeNotFound))
	})

	t.Run("deactivate", func(t *testing.T) {
		c := accountantConfig("c3")
		require.NoError(t, repo.Save(ctx, c))
		require.NoError(t, repo.Deactivate(ctx, c.ID))
		got, err := repo.FindByID(ctx, c.ID)
		require.NoError(t, err)
		assert.False(t, got.Active)
	})
}

func TestGormBalanceRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBalanceRepository(db.DB)
	ctx := context.Background()

	uploaded := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	first := &models.Balance{
		FolderID:   "f1",
		PeriodType: models.PeriodCurrentYear,
		Status:     models.BalanceStatusProcessed,
		Entries: []models.TrialBalanceEntry{
			{AccountNumber: "521000", AccountName: "Banque", ClosingDebit: decimal.RequireFromString("1500.25")},
		},
		UploadedAt: uploaded,
	}
	require.NoError(t, repo.Save(ctx, first))

	prior := &models.Balance{FolderID: "f1", PeriodType: models.PeriodPreviousYear, Status: models.BalanceStatusProcessed, UploadedAt: uploaded}
	require.NoError(t, repo.Save(ctx, prior))

	second := &models.Balance{
		FolderID:   "f1",
		PeriodType: models.PeriodCurrentYear,
		Status:     models.BalanceStatusUnbalanced,
		Equilibrium: &models.EquilibriumResult{
			IsBalanced: false,
			Anomalies:  []string{"Closing balance: debit 10 != credit 0"},
		},
		UploadedAt: uploaded.Add(time.Hour),
	}
	require.NoError(t, repo.Save(ctx, second))

	current, err := repo.FindCurrent(ctx, "f1", models.PeriodCurrentYear)
	require.NoError(t, err)
	assert.Equal(t, second.ID, current.ID)
	require.NotNil(t, current.Equilibrium)
	assert.False(t, current.Equilibrium.IsBalanced)

	previous, err := repo.FindCurrent(ctx, "f1", models.PeriodPreviousYear)
	require.NoError(t, err)
	assert.Equal(t, prior.ID, previous.ID)

	old, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, old.Entries, 1)
	assert.True(t, old.Entries[0].ClosingDebit.Equal(decimal.RequireFromString("1500.25")))

	_, err = repo.FindCurrent(ctx, "f2", models.PeriodCurrentYear)
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))

	t.Run("updating an older balance keeps it superseded", func(t *testing.T) {
		old.Issues = []models.AccountIssue{{AccountNumber: "521000", Type: models.IssueMissingSpecification, Resolved: true}}
		require.NoError(t, repo.UpdateIssues(ctx, old))
		require.NoError(t, repo.Save(ctx, old))

		current, err := repo.FindCurrent(ctx, "f1", models.PeriodCurrentYear)
		require.NoError(t, err)
		assert.Equal(t, second.ID, current.ID)

		reloaded, err := repo.FindByID(ctx, first.ID)
		require.NoError(t, err)
		require.Len(t, reloaded.Issues, 1)
		assert.True(t, reloaded.Issues[0].Resolved)
		assert.Len(t, reloaded.Entries, 1)
	})

	t.Run("update issues of a missing balance", func(t *testing.T) {
		err := repo.UpdateIssues(ctx, &models.Balance{ID: "missing"})
		assert.True(t, errors.HasCode(err, errors.CodeNotFound))
	})
}

func TestGormDeclarationRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormDeclarationRepository(db.DB)
	ctx := context.Background()

	set := report.NewSet("EX2024")
	cf1, err := report.NewEmpty(report.CategoryTaxTables)
	require.NoError(t, err)
	require.NoError(t, report.Assign(cf1, "reintegrations.1", decimal.NewFromInt(500), report.AssignOptions{}))
	set.Reports[report.CategoryTaxTables] = cf1

	d := &declaration.Declaration{
		FolderID:    "f1",
		ExerciseID:  "EX2024",
		Status:      declaration.StatusDraft,
		Reports:     set,
		GeneratedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Save(ctx, d))
	assert.Equal(t, 1, d.Version)
	firstID := d.ID

	again := &declaration.Declaration{FolderID: "f1", ExerciseID: "EX2024", Status: declaration.StatusValid, Reports: set}
	require.NoError(t, repo.Save(ctx, again))
	assert.Equal(t, firstID, again.ID)
	assert.Equal(t, 2, again.Version)

	loaded, err := repo.FindLatest(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, declaration.StatusValid, loaded.Status)
	require.NotNil(t, loaded.Reports)
	tt := loaded.Reports.TaxTables()
	require.NotNil(t, tt)
	assert.True(t, tt.Reintegrations[1].N.Equal(decimal.NewFromInt(500)))

	_, err = repo.FindLatest(ctx, "f9")
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
}

func TestGormImportRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormImportRepository(db.DB)
	ctx := context.Background()

	v := decimal.NewFromInt(1200)
	s := &models.ImportSession{
		FolderID: "f1",
		FileName: "dsf_2023.xlsx",
		Sheets:   []models.SheetDetection{{SheetName: "Bilan", Category: "bilan", Score: 100, Classified: true}},
		Entries: []models.ImportEntry{
			{ID: "e1", SheetName: "Bilan", RowNumber: 7, Label: "Terrains", Values: []*decimal.Decimal{&v, nil}},
		},
	}
	require.NoError(t, repo.Save(ctx, s))

	loaded, err := repo.FindByID(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Entries, 1)
	got, ok := loaded.Entries[0].Value(0)
	require.True(t, ok)
	assert.True(t, got.Equal(v))
	_, ok = loaded.Entries[0].Value(1)
	assert.False(t, ok)

	loaded.Entries[0].MatchedFieldID = "bilan.actif.AE.brut"
	require.NoError(t, repo.Save(ctx, loaded))
	again, err := repo.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "bilan.actif.AE.brut", again.Entries[0].MatchedFieldID)
}
