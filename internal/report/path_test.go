package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-dsf-service/pkg/errors"
)

func TestAssignFigure(t *testing.T) {
	is := newIncomeStatement()

	require.NoError(t, Assign(is, "lignes.TA", d(100), AssignOptions{}))
	require.NoError(t, Assign(is, "lignes.TA", d(80), AssignOptions{Period: PeriodN1}))
	assertDec(t, 100, is.Line("TA").N)
	assertDec(t, 80, is.Line("TA").N1)

	require.NoError(t, Assign(is, "lignes.RA.n1", d(40), AssignOptions{}))
	assertDec(t, 40, is.Line("RA").N1)
	assert.True(t, is.Line("RA").N.IsZero())

	v, err := Value(is, "lignes.TA.n1")
	require.NoError(t, err)
	assertDec(t, 80, v)
}

func TestAssignRejectsUnknownPaths(t *testing.T) {
	tests := []struct {
		name   string
		report Report
		path   string
	}{
		{"empty path", newIncomeStatement(), ""},
		{"empty segment", newIncomeStatement(), "lignes..TA"},
		{"closed map key", newIncomeStatement(), "lignes.ZZ"},
		{"unknown field", newBalanceSheet(), "capitaux.CA"},
		{"closed passif key", newBalanceSheet(), "passif.ZZ"},
		{"array out of range", newTaxTables(nil), "reintegrations.9"},
		{"array bad index", newTaxTables(nil), "deductions.x"},
		{"figure bad selector", newIncomeStatement(), "lignes.TA.n2"},
		{"string leaf", newSignaletics(nil), "raisonSociale"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Assign(tt.report, tt.path, d(1), AssignOptions{})
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.CodeUnknownPath), "got %v", err)
		})
	}
}

func TestAssignDerived(t *testing.T) {
	is := newIncomeStatement()
	err := Assign(is, "lignes.XI", d(10), AssignOptions{})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeUnknownPath))

	require.NoError(t, Assign(is, "lignes.XI", d(10), AssignOptions{AllowDerived: true}))
	assertDec(t, 10, is.Line("XI").N)

	tt := newTaxTables(nil)
	assert.Error(t, Assign(tt, "reintegrations.0", d(1), AssignOptions{}))
	assert.Error(t, Assign(tt, "impotTheorique", d(1), AssignOptions{}))
	assert.NoError(t, Assign(tt, "reintegrations.3", d(1), AssignOptions{}))
	assertDec(t, 1, tt.Reintegrations[3].N)

	bs := newBalanceSheet()
	assert.Error(t, Assign(bs, "actif.AE.net", d(1), AssignOptions{}))
	assert.Error(t, Assign(bs, "actif.AZ.brut", d(1), AssignOptions{}))
	assert.True(t, IsDerived(bs, "passif.DZ.n1"))
	assert.False(t, IsDerived(bs, "passif.CA"))
}

func TestAssignAmountLeaf(t *testing.T) {
	bs := newBalanceSheet()
	require.NoError(t, Assign(bs, "actif.AE.brut", d(500), AssignOptions{}))
	require.NoError(t, Assign(bs, "actif.AE.brut", d(999), AssignOptions{Period: PeriodN1}))
	assertDec(t, 500, bs.Actif["AE"].Brut)
}

func TestAssignOpenMap(t *testing.T) {
	n := newDebtNote()
	require.NoError(t, Assign(n, "dettesFinancieres.empruntSyndique.montantBrut", d(700), AssignOptions{}))
	require.Contains(t, n.DettesFinancieres, "empruntSyndique")
	assertDec(t, 700, n.DettesFinancieres["empruntSyndique"].MontantBrut.N)

	n.finalize()
	assertDec(t, 700, n.Total.MontantBrut.N)

	_, err := Value(n, "dettesFinancieres.inconnu.montantBrut")
	assert.Error(t, err, "reads never create entries")
	assert.NotContains(t, n.DettesFinancieres, "inconnu")
}

func TestMergePrior(t *testing.T) {
	cur := newIncomeStatement()
	cur.Lignes["TA"].N = d(100)
	prev := newIncomeStatement()
	prev.Lignes["TA"].N = d(70)
	prev.Lignes["XI"].N = d(5)

	mergePrior(cur, prev)
	assertDec(t, 100, cur.Line("TA").N)
	assertDec(t, 70, cur.Line("TA").N1)
	assertDec(t, 5, cur.Line("XI").N1)

	t.Run("open map entries from the prior year are created", func(t *testing.T) {
		cur := newDebtNote()
		prev := newDebtNote()
		prev.DettesFinancieres["ancien"] = &DebtLine{MontantBrut: Cur(d(40))}
		mergePrior(cur, prev)
		require.Contains(t, cur.DettesFinancieres, "ancien")
		assertDec(t, 40, cur.DettesFinancieres["ancien"].MontantBrut.N1)
	})
}

func TestFinalizeKeepsWrittenValues(t *testing.T) {
	allow := AssignOptions{AllowDerived: true}

	t.Run("asset net moves into gross", func(t *testing.T) {
		bs := newBalanceSheet()
		bs.Actif["AJ"].AmortDeprec = d(20)
		require.NoError(t, Assign(bs, "actif.AJ.net", d(100), allow))
		require.NoError(t, Assign(bs, "actif.AJ.net.n1", d(90), allow))

		Finalize(bs, "actif.AJ.net", "actif.AJ.net.n1")
		assertDec(t, 120, bs.Actif["AJ"].Brut)
		assertDec(t, 100, bs.Actif["AJ"].Net.N)
		assertDec(t, 90, bs.Actif["AJ"].Net.N1)
		assertDec(t, 100, bs.Actif["AZ"].Net.N)
		assertDec(t, 100, bs.TotalActif().N)
	})

	t.Run("written total holds", func(t *testing.T) {
		bs := newBalanceSheet()
		require.NoError(t, Assign(bs, "actif.AJ.net", d(100), allow))
		require.NoError(t, Assign(bs, "actif.BZ.net", d(999), allow))

		Finalize(bs, "actif.AJ.net", "actif.BZ.net")
		assertDec(t, 100, bs.Actif["AZ"].Net.N)
		assertDec(t, 999, bs.TotalActif().N)
	})

	t.Run("movement closing derives the opening", func(t *testing.T) {
		n := newMovementNote(fixedAssetsNote)
		n.Lignes["AJ"].Augmentations = d(30)
		require.NoError(t, Assign(n, "lignes.AJ.cloture", d(100), allow))

		Finalize(n, "lignes.AJ.cloture")
		assertDec(t, 70, n.Lignes["AJ"].Ouverture)
		assertDec(t, 100, n.Lignes["AJ"].Cloture.N)
		assertDec(t, 100, n.Total.Cloture.N)
	})

	t.Run("without keep everything is recomputed", func(t *testing.T) {
		is := newIncomeStatement()
		require.NoError(t, Assign(is, "lignes.XI", d(5), allow))
		Finalize(is)
		assert.True(t, is.Line("XI").N.IsZero())
	})
}
