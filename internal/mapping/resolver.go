// Package mapping resolves which account mapping configuration drives each
// report category for a given user, client and exercise.
package mapping

import (
	"context"
	"fmt"
	"sort"

	"golang-dsf-service/internal/models"
	"golang-dsf-service/internal/report"
	"golang-dsf-service/pkg/errors"
	"golang-dsf-service/pkg/logger"
)

// Store is the persistence the resolver reads from and the loader writes to
type Store interface {
	// FindActive returns every active configuration of a category
	FindActive(ctx context.Context, category string) ([]models.MappingConfig, error)
	// Save inserts or updates a configuration. Saving an active ACCOUNTANT
	// configuration deactivates the previous one for the same owner, category
	// and scope target.
	Save(ctx context.Context, cfg *models.MappingConfig) error
}

// Tier is one row of the precedence table
type Tier struct {
	Owner models.OwnerType `json:"owner"`
	Scope models.Scope     `json:"scope"`
}

func (t Tier) String() string {
	return fmt.Sprintf("%s/%s", t.Owner, t.Scope)
}

// DefaultPrecedence is evaluated top to bottom; the first tier holding an
// active configuration for the category wins and the others are ignored.
var DefaultPrecedence = []Tier{
	{Owner: models.OwnerAccountant, Scope: models.ScopeExercise},
	{Owner: models.OwnerAccountant, Scope: models.ScopeClient},
	{Owner: models.OwnerAccountant, Scope: models.ScopeGlobal},
	{Owner: models.OwnerAdmin, Scope: models.ScopeGlobal},
	{Owner: models.OwnerSystem, Scope: models.ScopeGlobal},
}

// Resolution is the outcome of resolving one category
type Resolution struct {
	Category string
	// Tier is nil when no configuration applies
	Tier     *Tier
	Config   *models.MappingConfig
	Mappings []models.AccountMapping
}

// IsDefault reports whether the built-in default computation must be used
func (r *Resolution) IsDefault() bool {
	return r == nil || r.Config == nil
}

// Source names where the mappings came from: the config id or "default"
func (r *Resolution) Source() string {
	if r.IsDefault() {
		return report.SourceDefault
	}
	return r.Config.ID
}

// Resolver applies the precedence table over a Store
type Resolver struct {
	store      Store
	precedence []Tier
	logger     logger.Logger
}

// Option configures a Resolver
type Option func(*Resolver)

// WithPrecedence replaces the precedence table
func WithPrecedence(tiers []Tier) Option {
	return func(r *Resolver) {
		r.precedence = append([]Tier(nil), tiers...)
	}
}

// NewResolver creates a resolver over store
func NewResolver(store Store, opts ...Option) *Resolver {
	r := &Resolver{
		store:      store,
		precedence: DefaultPrecedence,
		logger:     logger.GetGlobalLogger().WithComponent("mapping_resolver"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Precedence returns the active precedence table
func (r *Resolver) Precedence() []Tier {
	return append([]Tier(nil), r.precedence...)
}

// Resolve returns the mappings that drive category for rc
func (r *Resolver) Resolve(ctx context.Context, category string, rc models.ResolutionContext) (*Resolution, error) {
	if _, ok := report.LookupCategory(category); !ok {
		return nil, errors.MappingError(errors.CodeUnknownCategory, category, "", nil)
	}

	configs, err := r.store.FindActive(ctx, category)
	if err != nil {
		return nil, errors.WrapIfNeeded(err, errors.CategoryStorage, errors.CodeStorageFailure,
			fmt.Sprintf("failed to load mapping configurations for %s", category))
	}

	res := &Resolution{Category: category}
	for i := range r.precedence {
		tier := r.precedence[i]
		cfg := pickLatest(configs, func(c models.MappingConfig) bool {
			return tierMatches(tier, c, rc)
		})
		if cfg == nil {
			continue
		}
		res.Tier = &tier
		res.Config = cfg
		res.Mappings = normalize(cfg.Mappings)
		break
	}

	r.logger.WithFields(logger.Fields{
		"category": category,
		"user_id":  rc.UserID,
		"role":     rc.Role,
		"source":   res.Source(),
		"mappings": len(res.Mappings),
	}).Debug("Mappings resolved")

	return res, nil
}

// ResolveAll resolves every report category for rc
func (r *Resolver) ResolveAll(ctx context.Context, rc models.ResolutionContext) (map[string]*Resolution, error) {
	out := make(map[string]*Resolution)
	for _, c := range report.Categories() {
		res, err := r.Resolve(ctx, c.ID, rc)
		if err != nil {
			return nil, err
		}
		out[c.ID] = res
	}
	return out, nil
}

// Provider binds the resolver to one context for report generation. Each
// category is resolved at most once per provider.
func (r *Resolver) Provider(rc models.ResolutionContext) *Provider {
	return &Provider{resolver: r, rc: rc, resolved: make(map[string]*Resolution)}
}

// Provider adapts a Resolver to report.MappingProvider
type Provider struct {
	resolver *Resolver
	rc       models.ResolutionContext
	resolved map[string]*Resolution
}

// MappingsFor implements report.MappingProvider
func (p *Provider) MappingsFor(ctx context.Context, category string) (*report.Mappings, error) {
	res, ok := p.resolved[category]
	if !ok {
		var err error
		res, err = p.resolver.Resolve(ctx, category, p.rc)
		if err != nil {
			return nil, err
		}
		p.resolved[category] = res
	}
	if res.IsDefault() {
		return nil, nil
	}
	return &report.Mappings{ConfigID: res.Config.ID, Rows: res.Mappings}, nil
}

// Resolutions returns what the provider resolved so far
func (p *Provider) Resolutions() map[string]*Resolution {
	return p.resolved
}

func tierMatches(t Tier, c models.MappingConfig, rc models.ResolutionContext) bool {
	if !c.Active || c.OwnerType != t.Owner || c.Scope != t.Scope {
		return false
	}
	if c.OwnerType == models.OwnerAccountant && (rc.UserID == "" || c.OwnerID != rc.UserID) {
		return false
	}
	switch c.Scope {
	case models.ScopeExercise:
		return rc.ExerciseID != "" && c.ScopeTargetID == rc.ExerciseID
	case models.ScopeClient:
		return rc.ClientID != "" && c.ScopeTargetID == rc.ClientID
	default:
		return true
	}
}

// pickLatest returns the most recently updated matching config, breaking
// ties on version then id so the choice is stable.
func pickLatest(configs []models.MappingConfig, match func(models.MappingConfig) bool) *models.MappingConfig {
	var best *models.MappingConfig
	for i := range configs {
		c := &configs[i]
		if !match(*c) {
			continue
		}
		if best == nil || newer(c, best) {
			best = c
		}
	}
	if best == nil {
		return nil
	}
	out := *best
	return &out
}

func newer(a, b *models.MappingConfig) bool {
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	if a.Version != b.Version {
		return a.Version > b.Version
	}
	return a.ID > b.ID
}

// normalize drops identical rows and orders by destination, account and source
func normalize(rows []models.AccountMapping) []models.AccountMapping {
	type key struct {
		account, destination string
		source               models.SourceCode
	}
	seen := make(map[key]bool, len(rows))
	out := make([]models.AccountMapping, 0, len(rows))
	for _, m := range rows {
		k := key{account: m.AccountNumber, destination: m.Destination, source: m.Source}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Destination != out[j].Destination {
			return out[i].Destination < out[j].Destination
		}
		if out[i].AccountNumber != out[j].AccountNumber {
			return out[i].AccountNumber < out[j].AccountNumber
		}
		return out[i].Source < out[j].Source
	})
	return out
}
