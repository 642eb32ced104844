package report

// IncomeStatement is the OHADA compte de résultat keyed by line reference.
// Products are positive when credit, charges positive when debit.
type IncomeStatement struct {
	Lignes map[string]*Figure `json:"lignes"`
}

func product(ref, label string, accounts ...string) lineSpec {
	return lineSpec{ref: ref, label: label, accounts: accounts, credit: true}
}

func charge(ref, label string, accounts ...string) lineSpec {
	return lineSpec{ref: ref, label: label, accounts: accounts}
}

func total(ref, label string, formula ...[]term) lineSpec {
	return lineSpec{ref: ref, label: label, formula: terms(formula...)}
}

var incomeLayout = []lineSpec{
	product("TA", "Ventes de marchandises", "701"),
	charge("RA", "Achats de marchandises", "601"),
	charge("RB", "Variation de stocks de marchandises", "6031"),
	total("XA", "MARGE COMMERCIALE", plus("TA"), minus("RA", "RB")),
	product("TB", "Ventes de produits fabriqués", "702", "703", "704"),
	product("TC", "Travaux, services vendus", "705", "706"),
	product("TD", "Produits accessoires", "707"),
	total("XB", "CHIFFRE D'AFFAIRES", plus("TA", "TB", "TC", "TD")),
	product("TE", "Production stockée (ou déstockage)", "73"),
	product("TF", "Production immobilisée", "72"),
	product("TG", "Subventions d'exploitation", "71"),
	product("TH", "Autres produits", "75"),
	product("TI", "Transferts de charges d'exploitation", "781"),
	charge("RC", "Achats de matières premières et fournitures liées", "602"),
	charge("RD", "Variation de stocks de matières premières et fournitures liées", "6032"),
	charge("RE", "Autres achats", "604", "605", "608"),
	charge("RF", "Variation de stocks d'autres approvisionnements", "6033"),
	charge("RG", "Transports", "61"),
	charge("RH", "Services extérieurs", "62", "63"),
	charge("RI", "Impôts et taxes", "64"),
	charge("RJ", "Autres charges", "65"),
	total("XC", "VALEUR AJOUTEE",
		plus("XA", "TB", "TC", "TD", "TE", "TF", "TG", "TH", "TI"),
		minus("RC", "RD", "RE", "RF", "RG", "RH", "RI", "RJ")),
	charge("RK", "Charges de personnel", "66"),
	total("XD", "EXCEDENT BRUT D'EXPLOITATION", plus("XC"), minus("RK")),
	product("TJ", "Reprises d'amortissements, provisions et dépréciations", "791", "798", "799"),
	charge("RL", "Dotations aux amortissements, aux provisions et dépréciations", "681", "691"),
	total("XE", "RESULTAT D'EXPLOITATION", plus("XD", "TJ"), minus("RL")),
	product("TK", "Revenus financiers et assimilés", "77"),
	product("TL", "Reprises de provisions et dépréciations financières", "797"),
	product("TM", "Transferts de charges financières", "787"),
	charge("RM", "Frais financiers et charges assimilées", "67"),
	charge("RN", "Dotations aux provisions et aux dépréciations financières", "697"),
	total("XF", "RESULTAT FINANCIER", plus("TK", "TL", "TM"), minus("RM", "RN")),
	total("XG", "RESULTAT DES ACTIVITES ORDINAIRES", plus("XE", "XF")),
	product("TN", "Produits des cessions d'immobilisations", "82"),
	product("TO", "Autres produits HAO", "84", "86", "88"),
	charge("RO", "Valeurs comptables des cessions d'immobilisations", "81"),
	charge("RP", "Autres charges HAO", "83", "85"),
	total("XH", "RESULTAT HORS ACTIVITES ORDINAIRES", plus("TN", "TO"), minus("RO", "RP")),
	charge("RQ", "Participation des travailleurs", "87"),
	charge("RS", "Impôts sur le résultat", "89"),
	total("XI", "RESULTAT NET", plus("XG", "XH"), minus("RQ", "RS")),
}

func newIncomeStatement() *IncomeStatement {
	return &IncomeStatement{Lignes: figureMap(incomeLayout)}
}

func buildIncomeStatement(ctx *buildContext) *IncomeStatement {
	is := newIncomeStatement()
	fillFigures(ctx, incomeLayout, is.Lignes)
	is.finalize()
	return is
}

// Kind implements Report
func (is *IncomeStatement) Kind() Kind { return KindIncomeStatement }

func (is *IncomeStatement) finalize() {
	finalizeFigures(incomeLayout, is.Lignes)
}

func (is *IncomeStatement) derived(segs []string) bool {
	return len(segs) >= 2 && segs[0] == "lignes" && isDerivedRef(incomeLayout, segs[1])
}

// Line returns the figure of a line reference
func (is *IncomeStatement) Line(ref string) Figure {
	if f, ok := is.Lignes[ref]; ok && f != nil {
		return *f
	}
	return Figure{}
}

// ResultatNet returns XI
func (is *IncomeStatement) ResultatNet() Figure {
	return is.Line("XI")
}

// ProductsLessCharges recomputes the net result directly from the detail lines
func (is *IncomeStatement) ProductsLessCharges() Figure {
	var out Figure
	for _, l := range incomeLayout {
		if l.derived() {
			continue
		}
		if l.credit {
			out = out.Add(is.Line(l.ref))
		} else {
			out = out.Sub(is.Line(l.ref))
		}
	}
	return out
}

func incomeStatementCategory() Category {
	return Category{
		ID:     CategoryIncomeStatement,
		Title:  "Compte de résultat",
		Kind:   KindIncomeStatement,
		Sheets: []string{"compte de resultat", "resultat", "cr", "compte resultat"},
		empty:  func(*buildContext) Report { return newIncomeStatement() },
		build:  func(ctx *buildContext) Report { return buildIncomeStatement(ctx) },
		fields: func() []fieldSpec {
			out := make([]fieldSpec, 0, len(incomeLayout))
			for i, l := range incomeLayout {
				out = append(out, layoutField("lignes."+l.ref, l, i))
			}
			return out
		},
	}
}
