package report

import (
	"strconv"

	"github.com/shopspring/decimal"
)

const (
	ReintegrationRows = 8
	DeductionRows     = 6
)

// DefaultTaxRate is the corporate income tax rate applied to the fiscal profit
var DefaultTaxRate = decimal.RequireFromString("0.30")

// TaxTables is the CF1 table: accounting result to fiscal result. Row 0 of
// each side carries the accounting profit or loss; the other rows are the
// positional add-backs and deductions of the form.
type TaxTables struct {
	ResultatComptable   Figure                    `json:"resultatComptable"`
	Reintegrations      [ReintegrationRows]Figure `json:"reintegrations"`
	TotalReintegrations Figure                    `json:"totalReintegrations"`
	Deductions          [DeductionRows]Figure     `json:"deductions"`
	TotalDeductions     Figure                    `json:"totalDeductions"`
	ResultatFiscal      Figure                    `json:"resultatFiscal"`
	BeneficeFiscal      Figure                    `json:"beneficeFiscal"`
	DeficitFiscal       Figure                    `json:"deficitFiscal"`
	TauxImpot           Amount                    `json:"tauxImpot"`
	ImpotTheorique      Figure                    `json:"impotTheorique"`
}

var reintegrationLayout = [ReintegrationRows]lineSpec{
	{label: "Bénéfice comptable"},
	{label: "Impôt sur le résultat", accounts: []string{"89"}},
	{label: "Amendes et pénalités fiscales", accounts: []string{"647"}},
	{label: "Dons et libéralités non déductibles", accounts: []string{"6582"}},
	{label: "Amortissements excédentaires"},
	{label: "Provisions non déductibles"},
	{label: "Charges somptuaires"},
	{label: "Autres réintégrations"},
}

var deductionLayout = [DeductionRows]lineSpec{
	{label: "Perte comptable"},
	{label: "Produits des participations exonérés", accounts: []string{"772"}, credit: true},
	{label: "Reprises de provisions antérieurement taxées"},
	{label: "Plus-values exonérées ou en sursis d'imposition"},
	{label: "Déficits antérieurs reportables"},
	{label: "Autres déductions"},
}

var resultAccounts = []string{"6", "7", "8"}

func newTaxTables(ctx *buildContext) *TaxTables {
	tt := &TaxTables{TauxImpot: DefaultTaxRate}
	if ctx != nil && !ctx.taxRate.IsZero() {
		tt.TauxImpot = ctx.taxRate
	}
	return tt
}

func buildTaxTables(ctx *buildContext) *TaxTables {
	tt := newTaxTables(ctx)
	tt.ResultatComptable.N = SumAccounts(ctx.rows, resultAccounts).Neg()
	for i := 1; i < ReintegrationRows; i++ {
		tt.Reintegrations[i].N = reintegrationLayout[i].value(ctx)
	}
	for i := 1; i < DeductionRows; i++ {
		tt.Deductions[i].N = deductionLayout[i].value(ctx)
	}
	tt.finalize()
	return tt
}

// Kind implements Report
func (tt *TaxTables) Kind() Kind { return KindTaxTables }

// finalize places the accounting result on the proper side and derives the
// fiscal result, profit or loss and theoretical tax.
func (tt *TaxTables) finalize() {
	rc := tt.ResultatComptable.N
	tt.Reintegrations[0].N = positive(rc)
	tt.Deductions[0].N = positive(rc.Neg())

	r := decimal.Zero
	for _, f := range tt.Reintegrations {
		r = r.Add(f.N)
	}
	d := decimal.Zero
	for _, f := range tt.Deductions {
		d = d.Add(f.N)
	}

	tt.TotalReintegrations.N = r
	tt.TotalDeductions.N = d
	tt.ResultatFiscal.N = r.Sub(d)
	tt.BeneficeFiscal.N = positive(tt.ResultatFiscal.N)
	tt.DeficitFiscal.N = positive(tt.ResultatFiscal.N.Neg())
	tt.ImpotTheorique.N = tt.BeneficeFiscal.N.Mul(tt.TauxImpot).Round(0)
}

func (tt *TaxTables) derived(segs []string) bool {
	if len(segs) == 0 {
		return false
	}
	switch segs[0] {
	case "totalReintegrations", "totalDeductions", "resultatFiscal",
		"beneficeFiscal", "deficitFiscal", "impotTheorique":
		return true
	case "reintegrations", "deductions":
		return len(segs) >= 2 && segs[1] == "0"
	}
	return false
}

func taxTablesCategory() Category {
	return Category{
		ID:     CategoryTaxTables,
		Title:  "Tableau de passage du résultat comptable au résultat fiscal",
		Kind:   KindTaxTables,
		Sheets: []string{"cf1", "tableau de passage", "resultat fiscal", "passage resultat fiscal"},
		empty:  func(ctx *buildContext) Report { return newTaxTables(ctx) },
		build:  func(ctx *buildContext) Report { return buildTaxTables(ctx) },
		fields: func() []fieldSpec {
			row := 0
			next := func() int { row++; return row }
			out := []fieldSpec{{path: "resultatComptable", label: "Résultat comptable", expectedRow: next()}}
			for i, l := range reintegrationLayout {
				out = append(out, fieldSpec{path: "reintegrations." + strconv.Itoa(i), label: l.label, accounts: l.accounts, expectedRow: next()})
			}
			out = append(out, fieldSpec{path: "totalReintegrations", label: "Total réintégrations", expectedRow: next()})
			for i, l := range deductionLayout {
				out = append(out, fieldSpec{path: "deductions." + strconv.Itoa(i), label: l.label, accounts: l.accounts, expectedRow: next()})
			}
			out = append(out,
				fieldSpec{path: "totalDeductions", label: "Total déductions", expectedRow: next()},
				fieldSpec{path: "resultatFiscal", label: "Résultat fiscal", expectedRow: next()},
				fieldSpec{path: "beneficeFiscal", label: "Bénéfice fiscal", expectedRow: next()},
				fieldSpec{path: "deficitFiscal", label: "Déficit fiscal", expectedRow: next()},
				fieldSpec{path: "impotTheorique", label: "Impôt théorique", expectedRow: next()},
			)
			return out
		},
	}
}
