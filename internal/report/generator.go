package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"golang-dsf-service/internal/models"
	"golang-dsf-service/pkg/errors"
	"golang-dsf-service/pkg/logger"
)

// Mappings is the configuration resolved for one category
type Mappings struct {
	ConfigID string
	Rows     []models.AccountMapping
}

// MappingProvider resolves the mappings that apply to a category. A nil
// result means no configuration applies and the default rules are used.
type MappingProvider interface {
	MappingsFor(ctx context.Context, category string) (*Mappings, error)
}

// Input is everything a generation run reads
type Input struct {
	ExerciseID string
	Current    []models.TrialBalanceEntry
	// Previous is nil when no usable prior-year balance exists
	Previous []models.TrialBalanceEntry
	Entity   Entity
}

// Options tunes the generator
type Options struct {
	TaxRate decimal.Decimal
	// Categories restricts generation to a subset; empty means all
	Categories []string
}

// Generator builds report sets. It is stateless between runs and safe for concurrent use.
type Generator struct {
	opts   Options
	logger logger.Logger
	now    func() time.Time
}

// NewGenerator creates a generator
func NewGenerator(opts Options) *Generator {
	if opts.TaxRate.IsZero() {
		opts.TaxRate = DefaultTaxRate
	}
	return &Generator{
		opts:   opts,
		logger: logger.GetGlobalLogger().WithComponent("report_generator"),
		now:    time.Now,
	}
}

// Generate builds every selected category. Categories with a resolved
// mapping configuration start from an empty report filled only by that
// configuration; the others use the default account rules. Prior-year
// values are produced by building the same report on the previous balance.
func (g *Generator) Generate(ctx context.Context, in Input, provider MappingProvider) (*Set, error) {
	op := logger.NewOperationLogger("generate_reports", g.logger).WithFields(logger.Fields{
		"exercise_id": in.ExerciseID,
		"rows":        len(in.Current),
		"prior_year":  in.Previous != nil,
	})

	cats, err := g.selected()
	if err != nil {
		op.Error(err, "Report generation failed")
		return nil, err
	}

	set := NewSet(in.ExerciseID)
	set.GeneratedAt = g.now()
	set.HasPriorYear = in.Previous != nil

	current := &buildContext{rows: in.Current, entity: in.Entity, taxRate: g.opts.TaxRate}
	previous := &buildContext{rows: in.Previous, entity: in.Entity, taxRate: g.opts.TaxRate, prior: true}

	for _, cat := range cats {
		if err := ctx.Err(); err != nil {
			op.Error(err, "Report generation cancelled")
			return nil, errors.GenerationError(errors.CodeGenerationFailed, "generate "+cat.ID, err)
		}
		op.Step(cat.ID)

		var m *Mappings
		if provider != nil {
			m, err = provider.MappingsFor(ctx, cat.ID)
			if err != nil {
				op.Error(err, "Mapping resolution failed")
				return nil, errors.WrapIfNeeded(err, errors.CategoryGeneration, errors.CodeGenerationFailed,
					fmt.Sprintf("failed to resolve mappings for %s", cat.ID))
			}
		}

		r, warnings := g.build(cat, m, current)
		set.Warnings = append(set.Warnings, warnings...)
		if in.Previous != nil {
			prior, priorWarnings := g.build(cat, m, previous)
			for _, w := range priorWarnings {
				op.Debug(w, logger.Fields{"period": "N-1"})
			}
			mergePrior(r, prior)
		}

		set.Reports[cat.ID] = r
		if m != nil {
			set.Sources[cat.ID] = m.ConfigID
		} else {
			set.Sources[cat.ID] = SourceDefault
		}
	}

	for _, w := range set.Warnings {
		op.Warning(w)
	}
	op.WithField("reports", len(set.Reports)).Success("Reports generated")
	return set, nil
}

func (g *Generator) build(cat Category, m *Mappings, ctx *buildContext) (Report, []string) {
	if m == nil {
		return cat.build(ctx), nil
	}

	r := cat.empty(ctx)
	values := ComputeMappedValues(ctx.rows, m.Rows)

	dests := make([]string, 0, len(values))
	for d := range values {
		dests = append(dests, d)
	}
	sort.Strings(dests)

	var warnings []string
	for _, dest := range dests {
		if err := Assign(r, dest, values[dest], AssignOptions{Period: PeriodN}); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: mapping to '%s' ignored: %v", cat.ID, dest, err))
		}
	}
	r.finalize()
	return r, warnings
}

func (g *Generator) selected() ([]Category, error) {
	if len(g.opts.Categories) == 0 {
		return Categories(), nil
	}
	out := make([]Category, 0, len(g.opts.Categories))
	for _, id := range g.opts.Categories {
		c, ok := LookupCategory(id)
		if !ok {
			return nil, errors.MappingError(errors.CodeUnknownCategory, id, "", nil)
		}
		out = append(out, c)
	}
	return out, nil
}
