package report

import (
	"github.com/shopspring/decimal"
)

// Signaletics is the identification sheet of the declaration
type Signaletics struct {
	RaisonSociale      string `json:"raisonSociale"`
	Sigle              string `json:"sigle,omitempty"`
	NumeroContribuable string `json:"numeroContribuable"`
	FormeJuridique     string `json:"formeJuridique,omitempty"`
	RegimeFiscal       string `json:"regimeFiscal,omitempty"`
	Adresse            string `json:"adresse,omitempty"`
	Activite           string `json:"activite,omitempty"`
	ExerciceDebut      string `json:"exerciceDebut,omitempty"`
	ExerciceFin        string `json:"exerciceFin,omitempty"`
	DureeMois          int    `json:"dureeMois"`
	Effectif           Figure `json:"effectif"`
	CapitalSocial      Figure `json:"capitalSocial"`
	ChiffreAffaires    Figure `json:"chiffreAffaires"`
}

const dateLayout = "2006-01-02"

var (
	capitalAccounts  = []string{"101", "102", "103", "104"}
	turnoverAccounts = []string{"701", "702", "703", "704", "705", "706", "707"}
)

func newSignaletics(ctx *buildContext) *Signaletics {
	s := &Signaletics{}
	if ctx == nil {
		return s
	}
	e := ctx.entity
	s.RaisonSociale = e.Name
	s.Sigle = e.Acronym
	s.NumeroContribuable = e.TaxID
	s.FormeJuridique = e.LegalForm
	s.RegimeFiscal = e.TaxRegime
	s.Adresse = e.Address
	s.Activite = e.Activity
	if !e.PeriodStart.IsZero() {
		s.ExerciceDebut = e.PeriodStart.Format(dateLayout)
	}
	if !e.PeriodEnd.IsZero() {
		s.ExerciceFin = e.PeriodEnd.Format(dateLayout)
	}
	s.DureeMois = monthsBetween(e)
	headcount := e.Headcount
	if ctx.prior {
		headcount = e.PriorHeadcount
	}
	s.Effectif.N = decimal.NewFromInt(int64(headcount))
	return s
}

func buildSignaletics(ctx *buildContext) *Signaletics {
	s := newSignaletics(ctx)
	s.CapitalSocial.N = SumAccounts(ctx.rows, capitalAccounts).Neg()
	s.ChiffreAffaires.N = SumAccounts(ctx.rows, turnoverAccounts).Neg()
	return s
}

func monthsBetween(e Entity) int {
	if e.PeriodStart.IsZero() || e.PeriodEnd.IsZero() || e.PeriodEnd.Before(e.PeriodStart) {
		return 0
	}
	months := (e.PeriodEnd.Year()-e.PeriodStart.Year())*12 + int(e.PeriodEnd.Month()-e.PeriodStart.Month())
	if e.PeriodEnd.Day() >= e.PeriodStart.Day()-1 {
		months++
	}
	return months
}

// Kind implements Report
func (s *Signaletics) Kind() Kind { return KindSignaletics }

func (s *Signaletics) finalize() {}

func (s *Signaletics) derived([]string) bool { return false }

func signaleticsCategory() Category {
	return Category{
		ID:     CategorySignaletics,
		Title:  "Fiche signalétique",
		Kind:   KindSignaletics,
		Sheets: []string{"fiche signaletique", "signaletique", "identification", "fiche r1"},
		empty:  func(ctx *buildContext) Report { return newSignaletics(ctx) },
		build:  func(ctx *buildContext) Report { return buildSignaletics(ctx) },
		fields: func() []fieldSpec {
			return []fieldSpec{
				{path: "effectif", label: "Effectif"},
				{path: "capitalSocial", label: "Capital social", accounts: capitalAccounts},
				{path: "chiffreAffaires", label: "Chiffre d'affaires", accounts: turnoverAccounts},
			}
		},
	}
}
