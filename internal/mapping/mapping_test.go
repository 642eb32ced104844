package mapping

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-dsf-service/internal/models"
	"golang-dsf-service/internal/report"
	"golang-dsf-service/pkg/errors"
)

type memoryStore struct {
	configs []models.MappingConfig
}

func (m *memoryStore) FindActive(_ context.Context, category string) ([]models.MappingConfig, error) {
	var out []models.MappingConfig
	for _, c := range m.configs {
		if c.Category == category && c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memoryStore) Save(_ context.Context, cfg *models.MappingConfig) error {
	for i := range m.configs {
		if m.configs[i].ID == cfg.ID {
			m.configs[i] = *cfg
			return nil
		}
	}
	m.configs = append(m.configs, *cfg)
	return nil
}

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func cfg(id string, owner models.OwnerType, ownerID string, scope models.Scope, target string, dest string) models.MappingConfig {
	return models.MappingConfig{
		ID:            id,
		Category:      "note17",
		Scope:         scope,
		ScopeTargetID: target,
		OwnerType:     owner,
		OwnerID:       ownerID,
		Active:        true,
		Version:       1,
		UpdatedAt:     t0,
		Mappings: []models.AccountMapping{
			{AccountNumber: "401100", Source: models.SourceClosingCredit, Destination: dest},
		},
	}
}

func TestResolverPrecedence(t *testing.T) {
	store := &memoryStore{configs: []models.MappingConfig{
		cfg("sys", models.OwnerSystem, "", models.ScopeGlobal, "", "lignes.fournisseurs"),
		cfg("admin", models.OwnerAdmin, "root", models.ScopeGlobal, "", "lignes.effetsAPayer"),
		cfg("acc-global", models.OwnerAccountant, "u1", models.ScopeGlobal, "", "lignes.fournisseursGroupe"),
		cfg("acc-client", models.OwnerAccountant, "u1", models.ScopeClient, "c1", "lignes.facturesNonParvenues"),
		cfg("acc-exercise", models.OwnerAccountant, "u1", models.ScopeExercise, "e1", "lignes.avancesVersees"),
	}}
	r := NewResolver(store)
	ctx := context.Background()

	tests := []struct {
		name string
		rc   models.ResolutionContext
		want string
	}{
		{"exercise beats client", models.ResolutionContext{UserID: "u1", ClientID: "c1", ExerciseID: "e1"}, "acc-exercise"},
		{"client beats global", models.ResolutionContext{UserID: "u1", ClientID: "c1", ExerciseID: "e2"}, "acc-client"},
		{"accountant global", models.ResolutionContext{UserID: "u1", ClientID: "c9"}, "acc-global"},
		{"other user falls to admin", models.ResolutionContext{UserID: "u2", ClientID: "c1", ExerciseID: "e1"}, "admin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Resolve(ctx, "note17", tt.rc)
			require.NoError(t, err)
			require.False(t, res.IsDefault())
			assert.Equal(t, tt.want, res.Config.ID)
			assert.Equal(t, tt.want, res.Source())
		})
	}

	t.Run("system when nothing else applies", func(t *testing.T) {
		store.configs[1].Active = false
		defer func() { store.configs[1].Active = true }()
		res, err := r.Resolve(ctx, "note17", models.ResolutionContext{UserID: "u2"})
		require.NoError(t, err)
		assert.Equal(t, "sys", res.Config.ID)
		assert.Equal(t, models.OwnerSystem, res.Tier.Owner)
	})
}

func TestResolverOverrideLaw(t *testing.T) {
	// an accountant override for a category must hide the system config entirely
	store := &memoryStore{configs: []models.MappingConfig{
		cfg("sys", models.OwnerSystem, "", models.ScopeGlobal, "", "lignes.fournisseurs"),
		cfg("mine", models.OwnerAccountant, "u1", models.ScopeGlobal, "", "lignes.effetsAPayer"),
	}}
	store.configs[0].Mappings = append(store.configs[0].Mappings,
		models.AccountMapping{AccountNumber: "408000", Source: models.SourceClosingCredit, Destination: "lignes.facturesNonParvenues"})

	res, err := NewResolver(store).Resolve(context.Background(), "note17", models.ResolutionContext{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "mine", res.Config.ID)
	for _, m := range res.Mappings {
		assert.NotEqual(t, "lignes.fournisseurs", m.Destination)
		assert.NotEqual(t, "lignes.facturesNonParvenues", m.Destination)
	}
}

func TestResolverNoConfiguration(t *testing.T) {
	res, err := NewResolver(&memoryStore{}).Resolve(context.Background(), "note17", models.ResolutionContext{UserID: "u1"})
	require.NoError(t, err)
	assert.True(t, res.IsDefault())
	assert.Equal(t, report.SourceDefault, res.Source())
	assert.Nil(t, res.Tier)
}

func TestResolverUnknownCategory(t *testing.T) {
	_, err := NewResolver(&memoryStore{}).Resolve(context.Background(), "note99", models.ResolutionContext{})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeUnknownCategory))
}

func TestResolverLatestSystemConfigWins(t *testing.T) {
	older := cfg("old", models.OwnerSystem, "", models.ScopeGlobal, "", "lignes.fournisseurs")
	newer := cfg("new", models.OwnerSystem, "", models.ScopeGlobal, "", "lignes.effetsAPayer")
	newer.UpdatedAt = t0.Add(time.Hour)

	res, err := NewResolver(&memoryStore{configs: []models.MappingConfig{newer, older}}).
		Resolve(context.Background(), "note17", models.ResolutionContext{})
	require.NoError(t, err)
	assert.Equal(t, "new", res.Config.ID)
}

func TestResolverNormalizesRows(t *testing.T) {
	c := cfg("sys", models.OwnerSystem, "", models.ScopeGlobal, "", "lignes.fournisseurs")
	c.Mappings = []models.AccountMapping{
		{AccountNumber: "402000", Source: models.SourceClosingCredit, Destination: "lignes.fournisseurs"},
		{AccountNumber: "401100", Source: models.SourceClosingCredit, Destination: "lignes.fournisseurs"},
		{AccountNumber: "401100", Source: models.SourceClosingCredit, Destination: "lignes.fournisseurs"},
		{AccountNumber: "408000", Source: models.SourceClosingCredit, Destination: "lignes.facturesNonParvenues"},
	}

	res, err := NewResolver(&memoryStore{configs: []models.MappingConfig{c}}).
		Resolve(context.Background(), "note17", models.ResolutionContext{})
	require.NoError(t, err)
	require.Len(t, res.Mappings, 3)
	assert.Equal(t, "408000", res.Mappings[0].AccountNumber)
	assert.Equal(t, "401100", res.Mappings[1].AccountNumber)
	assert.Equal(t, "402000", res.Mappings[2].AccountNumber)
}

func TestResolverCustomPrecedence(t *testing.T) {
	store := &memoryStore{configs: []models.MappingConfig{
		cfg("sys", models.OwnerSystem, "", models.ScopeGlobal, "", "lignes.fournisseurs"),
		cfg("admin", models.OwnerAdmin, "root", models.ScopeGlobal, "", "lignes.effetsAPayer"),
	}}
	r := NewResolver(store, WithPrecedence([]Tier{{Owner: models.OwnerSystem, Scope: models.ScopeGlobal}}))
	res, err := r.Resolve(context.Background(), "note17", models.ResolutionContext{})
	require.NoError(t, err)
	assert.Equal(t, "sys", res.Config.ID)
	assert.Len(t, r.Precedence(), 1)
}

func TestProviderFeedsGenerator(t *testing.T) {
	store := &memoryStore{configs: []models.MappingConfig{
		cfg("mine", models.OwnerAccountant, "u1", models.ScopeGlobal, "", "lignes.fournisseurs"),
	}}
	p := NewResolver(store).Provider(models.ResolutionContext{UserID: "u1"})

	m, err := p.MappingsFor(context.Background(), "note17")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "mine", m.ConfigID)

	m, err = p.MappingsFor(context.Background(), "note18")
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.Len(t, p.Resolutions(), 2)
}

func TestValidate(t *testing.T) {
	valid := cfg("x", models.OwnerAccountant, "u1", models.ScopeClient, "c1", "lignes.fournisseurs")
	assert.NoError(t, Validate(&valid))
	admin := cfg("a", models.OwnerAdmin, "root", models.ScopeGlobal, "", "lignes.fournisseurs")
	assert.NoError(t, Validate(&admin))

	tests := []struct {
		name   string
		mutate func(*models.MappingConfig)
		code   errors.ErrorCode
	}{
		{"unknown category", func(c *models.MappingConfig) { c.Category = "note99" }, errors.CodeUnknownCategory},
		{"unknown source", func(c *models.MappingConfig) { c.Mappings[0].Source = "XX" }, errors.CodeUnknownSource},
		{"unknown destination", func(c *models.MappingConfig) { c.Mappings[0].Destination = "lignes.inconnu" }, errors.CodeInvalidMapping},
		{"derived destination", func(c *models.MappingConfig) { c.Mappings[0].Destination = "total" }, errors.CodeInvalidMapping},
		{"client scope without target", func(c *models.MappingConfig) { c.ScopeTargetID = "" }, errors.CodeInvalidMapping},
		{"accountant without owner", func(c *models.MappingConfig) { c.OwnerID = "" }, errors.CodeInvalidMapping},
		{"non numeric account", func(c *models.MappingConfig) { c.Mappings[0].AccountNumber = "40A" }, errors.CodeInvalidMapping},
		{"system not global", func(c *models.MappingConfig) { c.OwnerType = models.OwnerSystem }, errors.CodeInvalidMapping},
		{"admin client scope", func(c *models.MappingConfig) { c.OwnerType = models.OwnerAdmin }, errors.CodeInvalidMapping},
		{"admin exercise scope", func(c *models.MappingConfig) {
			c.OwnerType = models.OwnerAdmin
			c.Scope = models.ScopeExercise
			c.ScopeTargetID = "ex-2024"
		}, errors.CodeInvalidMapping},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cfg("x", models.OwnerAccountant, "u1", models.ScopeClient, "c1", "lignes.fournisseurs")
			tt.mutate(&c)
			err := Validate(&c)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	content := `configs:
  - category: note17
    mappings:
      - accountNumber: "401100"
        source: SC
        destination: lignes.fournisseurs
      - accountNumber: "408000"
        source: SC
        destination: lignes.facturesNonParvenues
  - category: cf1
    mappings:
      - accountNumber: "891000"
        source: SD
        destination: reintegrations.1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	configs, err := LoadSeedFile(path)
	require.NoError(t, err)
	require.Len(t, configs, 2)
	assert.Equal(t, models.OwnerSystem, configs[0].OwnerType)
	assert.Equal(t, models.ScopeGlobal, configs[0].Scope)
	assert.True(t, configs[0].Active)
	require.Len(t, configs[0].Mappings, 2)
	assert.Equal(t, "401100", configs[0].Mappings[0].AccountNumber)
	assert.Equal(t, models.SourceClosingCredit, configs[0].Mappings[0].Source)

	store := &memoryStore{}
	loader := NewLoader(store)
	loader.now = func() time.Time { return t0 }
	require.NoError(t, loader.Load(context.Background(), configs))
	require.Len(t, store.configs, 2)
	assert.NotEmpty(t, store.configs[0].ID)
	assert.Equal(t, t0, store.configs[0].UpdatedAt)

	t.Run("invalid config stores nothing", func(t *testing.T) {
		bad := []models.MappingConfig{configs[0], {Category: "note17", Scope: models.ScopeGlobal, OwnerType: models.OwnerSystem,
			Mappings: []models.AccountMapping{{AccountNumber: "401", Source: models.SourceClosingCredit, Destination: "nowhere"}}}}
		empty := &memoryStore{}
		assert.Error(t, NewLoader(empty).Load(context.Background(), bad))
		assert.Empty(t, empty.configs)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSeedFile(filepath.Join(t.TempDir(), "absent.json"))
		assert.Error(t, err)
	})
}
