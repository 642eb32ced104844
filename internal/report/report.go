// Package report defines the OHADA declaration documents (balance sheet,
// income statement, tax tables, annex notes and identification sheet), the
// default account rules that fill them and the generator that builds a
// complete set from trial balances and account mappings.
package report

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"golang-dsf-service/internal/models"
	"golang-dsf-service/pkg/errors"
)

// Kind tags the concrete shape of a report
type Kind string

const (
	KindBalanceSheet    Kind = "BALANCE_SHEET"
	KindIncomeStatement Kind = "INCOME_STATEMENT"
	KindTaxTables       Kind = "TAX_TABLES"
	KindScheduleNote    Kind = "SCHEDULE_NOTE"
	KindMovementNote    Kind = "MOVEMENT_NOTE"
	KindDebtNote        Kind = "DEBT_NOTE"
	KindSignaletics     Kind = "SIGNALETICS"
)

// Report is implemented by every declaration document. The set of
// implementations is closed to this package.
type Report interface {
	Kind() Kind
	// finalize recomputes derived totals from detail lines
	finalize()
	// derived reports whether a path (without n/n1 selector) names a total
	derived(segs []string) bool
}

// Category names for the principal statements. Notes use "note" + number.
const (
	CategoryBalanceSheet    = "bilan"
	CategoryIncomeStatement = "compte_resultat"
	CategoryTaxTables       = "cf1"
	CategorySignaletics     = "signaletique"
)

// Entity carries the identification data printed on the declaration
type Entity struct {
	Name           string    `json:"name" mapstructure:"name"`
	Acronym        string    `json:"acronym,omitempty" mapstructure:"acronym"`
	TaxID          string    `json:"taxId" mapstructure:"tax_id"`
	LegalForm      string    `json:"legalForm,omitempty" mapstructure:"legal_form"`
	TaxRegime      string    `json:"taxRegime,omitempty" mapstructure:"tax_regime"`
	Address        string    `json:"address,omitempty" mapstructure:"address"`
	Activity       string    `json:"activity,omitempty" mapstructure:"activity"`
	PeriodStart    time.Time `json:"periodStart" mapstructure:"period_start"`
	PeriodEnd      time.Time `json:"periodEnd" mapstructure:"period_end"`
	Headcount      int       `json:"headcount" mapstructure:"headcount"`
	PriorHeadcount int       `json:"priorHeadcount" mapstructure:"prior_headcount"`
}

type buildContext struct {
	rows    []models.TrialBalanceEntry
	entity  Entity
	taxRate decimal.Decimal
	prior   bool
}

// Category describes one report of the declaration
type Category struct {
	ID     string
	Title  string
	Kind   Kind
	Sheets []string

	empty func(*buildContext) Report
	build func(*buildContext) Report
	// fields lists the importable figure paths with their labels
	fields func() []fieldSpec
}

var (
	categories     []Category
	categoryByID   map[string]Category
	categoryOrders map[string]int
)

func init() {
	categories = append(categories,
		balanceSheetCategory(),
		incomeStatementCategory(),
		taxTablesCategory(),
	)
	categories = append(categories, noteCategories()...)
	categories = append(categories, signaleticsCategory())

	categoryByID = make(map[string]Category, len(categories))
	categoryOrders = make(map[string]int, len(categories))
	for i, c := range categories {
		categoryByID[c.ID] = c
		categoryOrders[c.ID] = i
	}
}

// Categories returns every report category in declaration order
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// LookupCategory finds a category by id
func LookupCategory(id string) (Category, bool) {
	c, ok := categoryByID[id]
	return c, ok
}

// NewEmpty returns a zero report of the category, with every fixed line present
func NewEmpty(id string) (Report, error) {
	c, ok := categoryByID[id]
	if !ok {
		return nil, errors.MappingError(errors.CodeUnknownCategory, id, "", nil)
	}
	return c.empty(&buildContext{}), nil
}

// absorber is implemented by reports whose line results are computed from
// other amounts of the same line. absorb rewrites those amounts so a result
// written at segs survives finalize, and reports whether it could.
type absorber interface {
	absorb(segs []string) bool
}

// Finalize recomputes the totals of r from its detail lines. Computed values
// written directly at one of the keep paths hold their value.
func Finalize(r Report, keep ...string) {
	type held struct {
		segs []string
		v    reflect.Value
	}
	var saved []held
	for _, path := range keep {
		segs, err := splitPath(path)
		if err != nil {
			continue
		}
		segs = trimSelector(segs)
		if !r.derived(segs) {
			continue
		}
		if a, ok := r.(absorber); ok && a.absorb(segs) {
			continue
		}
		leaf, _, err := locate(reflect.ValueOf(r), segs, false)
		if err != nil {
			continue
		}
		saved = append(saved, held{segs: segs, v: reflect.ValueOf(leaf.Interface())})
	}

	r.finalize()

	for _, h := range saved {
		leaf, _, err := locate(reflect.ValueOf(r), h.segs, false)
		if err == nil && leaf.CanSet() {
			leaf.Set(h.v)
		}
	}
}

// Source values recorded per category in a Set
const SourceDefault = "default"

// Set is the full collection of reports generated for one exercise
type Set struct {
	ExerciseID   string            `json:"exerciseId"`
	GeneratedAt  time.Time         `json:"generatedAt"`
	HasPriorYear bool              `json:"hasPriorYear"`
	Reports      map[string]Report `json:"reports"`
	Sources      map[string]string `json:"sources"`
	Warnings     []string          `json:"warnings,omitempty"`
}

// NewSet creates an empty set
func NewSet(exerciseID string) *Set {
	return &Set{
		ExerciseID: exerciseID,
		Reports:    make(map[string]Report),
		Sources:    make(map[string]string),
	}
}

// Get returns the report of a category
func (s *Set) Get(category string) (Report, bool) {
	if s == nil {
		return nil, false
	}
	r, ok := s.Reports[category]
	return r, ok
}

// BalanceSheet returns the balance sheet if generated
func (s *Set) BalanceSheet() *BalanceSheet {
	r, _ := s.Get(CategoryBalanceSheet)
	bs, _ := r.(*BalanceSheet)
	return bs
}

// IncomeStatement returns the income statement if generated
func (s *Set) IncomeStatement() *IncomeStatement {
	r, _ := s.Get(CategoryIncomeStatement)
	is, _ := r.(*IncomeStatement)
	return is
}

// TaxTables returns the CF1 tables if generated
func (s *Set) TaxTables() *TaxTables {
	r, _ := s.Get(CategoryTaxTables)
	tt, _ := r.(*TaxTables)
	return tt
}

// CategoryIDs lists the generated categories in declaration order
func (s *Set) CategoryIDs() []string {
	ids := make([]string, 0, len(s.Reports))
	for id := range s.Reports {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		oi, iok := categoryOrders[ids[i]]
		oj, jok := categoryOrders[ids[j]]
		if iok && jok {
			return oi < oj
		}
		if iok != jok {
			return iok
		}
		return ids[i] < ids[j]
	})
	return ids
}

type setAlias struct {
	ExerciseID   string                     `json:"exerciseId"`
	GeneratedAt  time.Time                  `json:"generatedAt"`
	HasPriorYear bool                       `json:"hasPriorYear"`
	Reports      map[string]json.RawMessage `json:"reports"`
	Sources      map[string]string          `json:"sources"`
	Warnings     []string                   `json:"warnings,omitempty"`
}

// UnmarshalJSON restores each report into the concrete type of its category
func (s *Set) UnmarshalJSON(data []byte) error {
	var raw setAlias
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.ExerciseID = raw.ExerciseID
	s.GeneratedAt = raw.GeneratedAt
	s.HasPriorYear = raw.HasPriorYear
	s.Sources = raw.Sources
	s.Warnings = raw.Warnings
	s.Reports = make(map[string]Report, len(raw.Reports))

	for id, body := range raw.Reports {
		r, err := NewEmpty(id)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(body, r); err != nil {
			return fmt.Errorf("report %s: %w", id, err)
		}
		s.Reports[id] = r
	}
	if s.Sources == nil {
		s.Sources = make(map[string]string)
	}
	return nil
}
