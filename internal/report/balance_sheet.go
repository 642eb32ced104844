package report

import (
	"github.com/shopspring/decimal"
)

// AssetLine is one asset line: gross value, allowances and net book value
type AssetLine struct {
	Brut        Amount `json:"brut"`
	AmortDeprec Amount `json:"amortDeprec"`
	Net         Figure `json:"net"`
}

// BalanceSheet is the OHADA bilan, keyed by line reference (AE..BZ, CA..DZ)
type BalanceSheet struct {
	Actif  map[string]*AssetLine `json:"actif"`
	Passif map[string]*Figure    `json:"passif"`
}

var actifLayout = []lineSpec{
	{ref: "AE", label: "Frais de développement et de prospection", accounts: []string{"211", "2181", "2191"}},
	{ref: "AF", label: "Brevets, licences, logiciels et droits similaires", accounts: []string{"212", "213", "214", "2193"}},
	{ref: "AG", label: "Fonds commercial et droit au bail", accounts: []string{"215", "216"}},
	{ref: "AH", label: "Autres immobilisations incorporelles", accounts: []string{"20", "217", "218", "219"}, exclude: []string{"2181", "2191", "2193"}},
	{ref: "AJ", label: "Terrains", accounts: []string{"22"}},
	{ref: "AK", label: "Bâtiments", accounts: []string{"231", "232", "233", "236", "237", "239"}, exclude: []string{"2392", "2393"}},
	{ref: "AL", label: "Aménagements, agencements et installations", accounts: []string{"234", "235", "238", "2392", "2393"}},
	{ref: "AM", label: "Matériel, mobilier et actifs biologiques", accounts: []string{"24"}, exclude: []string{"245", "2495"}},
	{ref: "AN", label: "Matériel de transport", accounts: []string{"245", "2495"}},
	{ref: "AP", label: "Avances et acomptes versés sur immobilisations", accounts: []string{"25"}},
	{ref: "AR", label: "Titres de participation", accounts: []string{"26"}},
	{ref: "AS", label: "Autres immobilisations financières", accounts: []string{"27"}},
	{ref: "AZ", label: "TOTAL ACTIF IMMOBILISE", formula: plus("AE", "AF", "AG", "AH", "AJ", "AK", "AL", "AM", "AN", "AP", "AR", "AS")},
	{ref: "BA", label: "Actif circulant HAO", accounts: []string{"485", "488"}},
	{ref: "BB", label: "Stocks et encours", accounts: []string{"31", "32", "33", "34", "35", "36", "37", "38"}},
	{ref: "BH", label: "Fournisseurs, avances versées", accounts: []string{"409"}},
	{ref: "BI", label: "Clients", accounts: []string{"41"}, exclude: []string{"419"}},
	{ref: "BJ", label: "Autres créances", accounts: []string{"42", "43", "44", "45", "46", "47"}, exclude: []string{"478", "479"}, side: sideDebit},
	{ref: "BK", label: "TOTAL ACTIF CIRCULANT", formula: plus("BA", "BB", "BH", "BI", "BJ")},
	{ref: "BQ", label: "Titres de placement", accounts: []string{"50"}},
	{ref: "BR", label: "Valeurs à encaisser", accounts: []string{"51"}},
	{ref: "BS", label: "Banques, chèques postaux, caisse et assimilés", accounts: []string{"52", "53", "54", "55", "56", "57", "58"}, side: sideDebit},
	{ref: "BT", label: "TOTAL TRESORERIE-ACTIF", formula: plus("BQ", "BR", "BS")},
	{ref: "BU", label: "Ecart de conversion-Actif", accounts: []string{"478"}},
	{ref: "BZ", label: "TOTAL GENERAL", formula: plus("AZ", "BK", "BT", "BU")},
}

var passifLayout = []lineSpec{
	{ref: "CA", label: "Capital", accounts: []string{"101", "102", "103", "104"}, credit: true},
	{ref: "CB", label: "Apporteurs capital non appelé (-)", accounts: []string{"109"}, credit: true},
	{ref: "CD", label: "Primes liées au capital social", accounts: []string{"105"}, credit: true},
	{ref: "CE", label: "Ecarts de réévaluation", accounts: []string{"106"}, credit: true},
	{ref: "CF", label: "Réserves indisponibles", accounts: []string{"111", "112", "113"}, credit: true},
	{ref: "CG", label: "Réserves libres", accounts: []string{"118"}, credit: true},
	{ref: "CH", label: "Report à nouveau (+ ou -)", accounts: []string{"12"}, credit: true},
	{ref: "CJ", label: "Résultat net de l'exercice (bénéfice + ou perte -)", accounts: []string{"13", "6", "7", "8"}, credit: true},
	{ref: "CL", label: "Subventions d'investissement", accounts: []string{"14"}, credit: true},
	{ref: "CM", label: "Provisions réglementées", accounts: []string{"15"}, credit: true},
	{ref: "CP", label: "TOTAL CAPITAUX PROPRES ET RESSOURCES ASSIMILEES", formula: plus("CA", "CB", "CD", "CE", "CF", "CG", "CH", "CJ", "CL", "CM")},
	{ref: "DA", label: "Emprunts et dettes financières diverses", accounts: []string{"16", "181", "182", "183", "184"}, credit: true},
	{ref: "DB", label: "Dettes de location-acquisition", accounts: []string{"17"}, credit: true},
	{ref: "DC", label: "Provisions pour risques et charges", accounts: []string{"19"}, credit: true},
	{ref: "DD", label: "TOTAL DETTES FINANCIERES ET RESSOURCES ASSIMILEES", formula: plus("DA", "DB", "DC")},
	{ref: "DF", label: "TOTAL RESSOURCES STABLES", formula: plus("CP", "DD")},
	{ref: "DH", label: "Dettes circulantes HAO", accounts: []string{"481", "482", "484", "4998"}, credit: true},
	{ref: "DI", label: "Clients, avances reçues", accounts: []string{"419"}, credit: true},
	{ref: "DJ", label: "Fournisseurs d'exploitation", accounts: []string{"40"}, exclude: []string{"409"}, credit: true},
	{ref: "DK", label: "Dettes fiscales et sociales", accounts: []string{"42", "43", "44"}, side: sideCredit},
	{ref: "DM", label: "Autres dettes", accounts: []string{"45", "46", "47"}, exclude: []string{"478", "479"}, side: sideCredit},
	{ref: "DN", label: "Provisions pour risques à court terme", accounts: []string{"499", "599"}, credit: true},
	{ref: "DP", label: "TOTAL PASSIF CIRCULANT", formula: plus("DH", "DI", "DJ", "DK", "DM", "DN")},
	{ref: "DQ", label: "Banques, crédits d'escompte", accounts: []string{"564", "565"}, side: sideCredit},
	{ref: "DR", label: "Banques, établissements financiers et crédits de trésorerie", accounts: []string{"52", "53", "54", "55", "56", "57", "58"}, exclude: []string{"564", "565"}, side: sideCredit},
	{ref: "DT", label: "TOTAL TRESORERIE-PASSIF", formula: plus("DQ", "DR")},
	{ref: "DV", label: "Ecart de conversion-Passif", accounts: []string{"479"}, credit: true},
	{ref: "DZ", label: "TOTAL GENERAL", formula: plus("DF", "DP", "DT", "DV")},
}

func newBalanceSheet() *BalanceSheet {
	bs := &BalanceSheet{
		Actif:  make(map[string]*AssetLine, len(actifLayout)),
		Passif: figureMap(passifLayout),
	}
	for _, l := range actifLayout {
		bs.Actif[l.ref] = &AssetLine{}
	}
	return bs
}

func buildBalanceSheet(ctx *buildContext) *BalanceSheet {
	bs := newBalanceSheet()
	for _, l := range actifLayout {
		if l.derived() {
			continue
		}
		line := bs.Actif[l.ref]
		line.Brut = l.value(ctx)
		line.AmortDeprec = l.allowance(ctx.rows)
	}
	fillFigures(ctx, passifLayout, bs.Passif)
	bs.finalize()
	return bs
}

// Kind implements Report
func (bs *BalanceSheet) Kind() Kind { return KindBalanceSheet }

func (bs *BalanceSheet) finalize() {
	for _, l := range actifLayout {
		line := bs.Actif[l.ref]
		if line == nil {
			line = &AssetLine{}
			bs.Actif[l.ref] = line
		}
		if l.derived() {
			line.Brut = evalFormula(l.formula, func(ref string) decimal.Decimal { return bs.asset(ref).Brut })
			line.AmortDeprec = evalFormula(l.formula, func(ref string) decimal.Decimal { return bs.asset(ref).AmortDeprec })
		}
		line.Net.N = line.Brut.Sub(line.AmortDeprec)
	}
	finalizeFigures(passifLayout, bs.Passif)
}

// absorb moves a written net value of a detail line into its gross amount
func (bs *BalanceSheet) absorb(segs []string) bool {
	if len(segs) != 3 || segs[0] != "actif" || segs[2] != "net" || isDerivedRef(actifLayout, segs[1]) {
		return false
	}
	line, ok := bs.Actif[segs[1]]
	if !ok || line == nil {
		return false
	}
	line.Brut = line.Net.N.Add(line.AmortDeprec)
	return true
}

func (bs *BalanceSheet) asset(ref string) *AssetLine {
	if line, ok := bs.Actif[ref]; ok && line != nil {
		return line
	}
	return &AssetLine{}
}

func (bs *BalanceSheet) derived(segs []string) bool {
	if len(segs) < 2 {
		return false
	}
	switch segs[0] {
	case "actif":
		if isDerivedRef(actifLayout, segs[1]) {
			return true
		}
		return len(segs) >= 3 && segs[2] == "net"
	case "passif":
		return isDerivedRef(passifLayout, segs[1])
	}
	return false
}

// TotalActif returns the net asset total (BZ)
func (bs *BalanceSheet) TotalActif() Figure {
	return bs.asset("BZ").Net
}

// TotalPassif returns the liabilities and equity total (DZ)
func (bs *BalanceSheet) TotalPassif() Figure {
	if f, ok := bs.Passif["DZ"]; ok && f != nil {
		return *f
	}
	return Figure{}
}

// Resultat returns the net result carried in equity (CJ)
func (bs *BalanceSheet) Resultat() Figure {
	if f, ok := bs.Passif["CJ"]; ok && f != nil {
		return *f
	}
	return Figure{}
}

func balanceSheetCategory() Category {
	return Category{
		ID:     CategoryBalanceSheet,
		Title:  "Bilan",
		Kind:   KindBalanceSheet,
		Sheets: []string{"bilan", "bilan actif", "bilan passif", "actif", "passif"},
		empty:  func(*buildContext) Report { return newBalanceSheet() },
		build:  func(ctx *buildContext) Report { return buildBalanceSheet(ctx) },
		fields: func() []fieldSpec {
			var out []fieldSpec
			for i, l := range actifLayout {
				out = append(out, layoutField("actif."+l.ref+".net", l, i))
			}
			for i, l := range passifLayout {
				out = append(out, layoutField("passif."+l.ref, l, len(actifLayout)+i))
			}
			return out
		},
	}
}
