package report

import (
	"strings"

	"golang-dsf-service/internal/balance"
)

// Movement is one line of a movement table: opening, increases, decreases and closing
type Movement struct {
	Ouverture     Amount `json:"ouverture"`
	Augmentations Amount `json:"augmentations"`
	Diminutions   Amount `json:"diminutions"`
	Cloture       Figure `json:"cloture"`
}

func (m *Movement) close() {
	m.Cloture.N = m.Ouverture.Add(m.Augmentations).Sub(m.Diminutions)
}

func (m *Movement) add(o *Movement) {
	m.Ouverture = m.Ouverture.Add(o.Ouverture)
	m.Augmentations = m.Augmentations.Add(o.Augmentations)
	m.Diminutions = m.Diminutions.Add(o.Diminutions)
	m.Cloture.N = m.Cloture.N.Add(o.Cloture.N)
}

// MovementNote is a note 3A/3C style table with one movement per fixed-asset
// line of the balance sheet.
type MovementNote struct {
	ID     string               `json:"id"`
	Lignes map[string]*Movement `json:"lignes"`
	Total  Movement             `json:"total"`
}

type movementSpec struct {
	id    string
	title string
	fill  func(ctx *buildContext, lines []lineSpec, out map[string]*Movement)
}

var (
	fixedAssetsNote = &movementSpec{
		id:    "note3a",
		title: "Immobilisations brutes",
		fill:  fillFixedAssets,
	}
	depreciationNote = &movementSpec{
		id:    "note3c",
		title: "Immobilisations (amortissements)",
		fill:  fillDepreciation,
	}
)

// fixedAssetLines are the balance sheet lines fed by class 2 accounts
func fixedAssetLines() []lineSpec {
	var out []lineSpec
	for _, l := range actifLayout {
		if l.derived() || len(l.accounts) == 0 || !strings.HasPrefix(l.accounts[0], "2") {
			continue
		}
		out = append(out, l)
	}
	return out
}

func fillFixedAssets(ctx *buildContext, lines []lineSpec, out map[string]*Movement) {
	records := balance.ExtractFixedAssets(ctx.rows)
	for _, l := range lines {
		m := out[l.ref]
		for _, rec := range records {
			if !lineOwns(l, rec.AccountNumber) {
				continue
			}
			m.Ouverture = m.Ouverture.Add(rec.GrossOpening)
			m.Augmentations = m.Augmentations.Add(rec.Acquisitions)
			m.Diminutions = m.Diminutions.Add(rec.Disposals)
		}
	}
}

func fillDepreciation(ctx *buildContext, lines []lineSpec, out map[string]*Movement) {
	for _, l := range lines {
		inc := allowancePrefixes(l.accounts)
		exc := allowancePrefixes(l.exclude)
		m := out[l.ref]

		m.Ouverture = SumOpening(ctx.rows, inc).Sub(SumOpening(ctx.rows, exc)).Neg()
		incDebit, incCredit := SumMovements(ctx.rows, inc)
		excDebit, excCredit := SumMovements(ctx.rows, exc)
		m.Augmentations = incCredit.Sub(excCredit)
		m.Diminutions = incDebit.Sub(excDebit)
	}
}

func lineOwns(l lineSpec, account string) bool {
	return matchesAny(account, l.accounts) && !matchesAny(account, l.exclude)
}

func newMovementNote(spec *movementSpec) *MovementNote {
	n := &MovementNote{ID: spec.id, Lignes: make(map[string]*Movement)}
	for _, l := range fixedAssetLines() {
		n.Lignes[l.ref] = &Movement{}
	}
	return n
}

func buildMovementNote(spec *movementSpec, ctx *buildContext) *MovementNote {
	n := newMovementNote(spec)
	spec.fill(ctx, fixedAssetLines(), n.Lignes)
	n.finalize()
	return n
}

// Kind implements Report
func (n *MovementNote) Kind() Kind { return KindMovementNote }

func (n *MovementNote) finalize() {
	n.Total = Movement{}
	for _, l := range fixedAssetLines() {
		m, ok := n.Lignes[l.ref]
		if !ok || m == nil {
			continue
		}
		m.close()
		n.Total.add(m)
	}
}

// absorb keeps a written closing value by deriving the opening from it
func (n *MovementNote) absorb(segs []string) bool {
	if len(segs) != 3 || segs[0] != "lignes" || segs[2] != "cloture" {
		return false
	}
	m, ok := n.Lignes[segs[1]]
	if !ok || m == nil {
		return false
	}
	m.Ouverture = m.Cloture.N.Sub(m.Augmentations).Add(m.Diminutions)
	return true
}

func (n *MovementNote) derived(segs []string) bool {
	if len(segs) == 0 {
		return false
	}
	if segs[0] == "total" {
		return true
	}
	return segs[0] == "lignes" && len(segs) >= 3 && segs[2] == "cloture"
}

func movementNoteCategory(spec *movementSpec) Category {
	return Category{
		ID:     spec.id,
		Title:  spec.title,
		Kind:   KindMovementNote,
		Sheets: noteSheets(spec.id, spec.title),
		empty:  func(*buildContext) Report { return newMovementNote(spec) },
		build:  func(ctx *buildContext) Report { return buildMovementNote(spec, ctx) },
		fields: func() []fieldSpec {
			var out []fieldSpec
			for _, l := range fixedAssetLines() {
				out = append(out, fieldSpec{path: "lignes." + l.ref + ".cloture", label: l.label, accounts: l.accounts})
			}
			return out
		},
	}
}

// DebtLine splits a financial debt by maturity
type DebtLine struct {
	MontantBrut       Figure `json:"montantBrut"`
	AUnAnAuPlus       Amount `json:"aUnAnAuPlus"`
	PlusDUnAnACinqAns Amount `json:"plusDUnAnACinqAns"`
	PlusDeCinqAns     Amount `json:"plusDeCinqAns"`
}

// DebtNote is note 16A. Its debt map is open: mappings may add entries.
type DebtNote struct {
	DettesFinancieres map[string]*DebtLine `json:"dettesFinancieres" dsf:"open"`
	Total             DebtLine             `json:"total"`
}

var debtLayout = []lineSpec{
	cr("empruntsObligataires", "Emprunts obligataires", "161"),
	cr("empruntsEtablissementsCredit", "Emprunts et dettes auprès des établissements de crédit", "162"),
	cr("avancesEtat", "Avances reçues de l'Etat", "163"),
	cr("avancesComptesCourantsBloques", "Avances reçues et comptes courants bloqués", "164"),
	cr("depotsCautionnementsRecus", "Dépôts et cautionnements reçus", "165"),
	cr("interetsCourus", "Intérêts courus", "166"),
	cr("avancesConditionsParticulieres", "Avances assorties de conditions particulières", "167"),
	cr("autresEmprunts", "Autres emprunts et dettes", "168"),
	cr("dettesLocationAcquisition", "Dettes de location-acquisition", "17"),
	cr("dettesLieesParticipations", "Dettes liées à des participations", "181", "182", "183", "184"),
}

func newDebtNote() *DebtNote {
	n := &DebtNote{DettesFinancieres: make(map[string]*DebtLine, len(debtLayout))}
	for _, l := range debtLayout {
		n.DettesFinancieres[l.ref] = &DebtLine{}
	}
	return n
}

func buildDebtNote(ctx *buildContext) *DebtNote {
	n := newDebtNote()
	for _, l := range debtLayout {
		n.DettesFinancieres[l.ref].MontantBrut.N = l.value(ctx)
	}
	n.finalize()
	return n
}

// Kind implements Report
func (n *DebtNote) Kind() Kind { return KindDebtNote }

func (n *DebtNote) finalize() {
	var t DebtLine
	for _, line := range n.DettesFinancieres {
		if line == nil {
			continue
		}
		t.MontantBrut.N = t.MontantBrut.N.Add(line.MontantBrut.N)
		t.AUnAnAuPlus = t.AUnAnAuPlus.Add(line.AUnAnAuPlus)
		t.PlusDUnAnACinqAns = t.PlusDUnAnACinqAns.Add(line.PlusDUnAnACinqAns)
		t.PlusDeCinqAns = t.PlusDeCinqAns.Add(line.PlusDeCinqAns)
	}
	n.Total = t
}

func (n *DebtNote) derived(segs []string) bool {
	return len(segs) >= 1 && segs[0] == "total"
}

func debtNoteCategory() Category {
	const title = "Dettes financières et ressources assimilées"
	return Category{
		ID:     "note16a",
		Title:  title,
		Kind:   KindDebtNote,
		Sheets: append(noteSheets("note16a", title), "emprunts et dettes"),
		empty:  func(*buildContext) Report { return newDebtNote() },
		build:  func(ctx *buildContext) Report { return buildDebtNote(ctx) },
		fields: func() []fieldSpec {
			out := make([]fieldSpec, 0, len(debtLayout)+1)
			for _, l := range debtLayout {
				out = append(out, fieldSpec{path: "dettesFinancieres." + l.ref + ".montantBrut", label: l.label, accounts: l.accounts})
			}
			return append(out, fieldSpec{path: "total.montantBrut", label: "Total dettes financières"})
		},
	}
}

