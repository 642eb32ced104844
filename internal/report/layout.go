package report

import (
	"github.com/shopspring/decimal"

	"golang-dsf-service/internal/models"
)

// side selects which closing balances a line keeps
type side int

const (
	sideNet side = iota
	sideDebit
	sideCredit
)

type term struct {
	ref  string
	sign int
}

func plus(refs ...string) []term {
	out := make([]term, len(refs))
	for i, r := range refs {
		out[i] = term{ref: r, sign: 1}
	}
	return out
}

func minus(refs ...string) []term {
	out := plus(refs...)
	for i := range out {
		out[i].sign = -1
	}
	return out
}

func terms(groups ...[]term) []term {
	var out []term
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// lineSpec describes one line of a statement or note. A line is either fed
// from accounts or, when formula is set, derived from earlier lines.
type lineSpec struct {
	ref      string
	label    string
	accounts []string
	exclude  []string
	side     side
	credit   bool
	formula  []term
	compute  func(*buildContext) decimal.Decimal
}

func (l lineSpec) derived() bool {
	return len(l.formula) > 0
}

// value computes the line from rows. Credit-natured lines are reported as
// credit minus debit; one-sided lines are always positive.
func (l lineSpec) value(ctx *buildContext) decimal.Decimal {
	if l.compute != nil {
		return l.compute(ctx)
	}
	rows := ctx.rows
	switch l.side {
	case sideDebit:
		return SumDebitBalances(rows, l.accounts).Sub(SumDebitBalances(rows, l.exclude))
	case sideCredit:
		return SumCreditBalances(rows, l.accounts).Sub(SumCreditBalances(rows, l.exclude))
	}
	v := SumAccounts(rows, l.accounts).Sub(SumAccounts(rows, l.exclude))
	if l.credit {
		return v.Neg()
	}
	return v
}

// allowance returns the depreciation or impairment carried against an asset
// line, as a positive amount.
func (l lineSpec) allowance(rows []models.TrialBalanceEntry) decimal.Decimal {
	inc := allowancePrefixes(l.accounts)
	exc := allowancePrefixes(l.exclude)
	return SumAccounts(rows, inc).Sub(SumAccounts(rows, exc)).Neg()
}

// allowancePrefixes mirrors asset prefixes onto their allowance accounts:
// 245 -> 2845 and 2945, 41 -> 491, 31 -> 391.
func allowancePrefixes(prefixes []string) []string {
	var out []string
	for _, p := range prefixes {
		if len(p) < 2 {
			continue
		}
		rest := p[1:]
		switch p[0] {
		case '2':
			out = append(out, "28"+rest, "29"+rest)
		case '3':
			out = append(out, "39"+rest)
		case '4':
			out = append(out, "49"+rest)
		case '5':
			out = append(out, "59"+rest)
		}
	}
	return out
}

func findLine(layout []lineSpec, ref string) (lineSpec, bool) {
	for _, l := range layout {
		if l.ref == ref {
			return l, true
		}
	}
	return lineSpec{}, false
}

func isDerivedRef(layout []lineSpec, ref string) bool {
	l, ok := findLine(layout, ref)
	return ok && l.derived()
}

// evalFormula sums the current values named by formula
func evalFormula(formula []term, get func(ref string) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, t := range formula {
		v := get(t.ref)
		if t.sign < 0 {
			total = total.Sub(v)
		} else {
			total = total.Add(v)
		}
	}
	return total
}

func figureMap(layout []lineSpec) map[string]*Figure {
	m := make(map[string]*Figure, len(layout))
	for _, l := range layout {
		m[l.ref] = &Figure{}
	}
	return m
}

// finalizeFigures recomputes the derived lines of a figure map in layout order
func finalizeFigures(layout []lineSpec, lines map[string]*Figure) {
	get := func(ref string) decimal.Decimal {
		if f, ok := lines[ref]; ok && f != nil {
			return f.N
		}
		return decimal.Zero
	}
	for _, l := range layout {
		if !l.derived() {
			continue
		}
		f, ok := lines[l.ref]
		if !ok || f == nil {
			f = &Figure{}
			lines[l.ref] = f
		}
		f.N = evalFormula(l.formula, get)
	}
}

func fillFigures(ctx *buildContext, layout []lineSpec, lines map[string]*Figure) {
	for _, l := range layout {
		if l.derived() {
			continue
		}
		lines[l.ref].N = l.value(ctx)
	}
}
