package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"golang-dsf-service/internal/models"
)

func TestTaxTablesProfit(t *testing.T) {
	rows := []models.TrialBalanceEntry{
		closing("701100", 0, 100000),
		closing("601100", 40000, 0),
		closing("647000", 5000, 0),
		closing("772000", 0, 10000),
	}
	tt := buildTaxTables(&buildContext{rows: rows, taxRate: decimal.RequireFromString("0.30")})

	assertDec(t, 65000, tt.ResultatComptable.N)
	assertDec(t, 65000, tt.Reintegrations[0].N)
	assert.True(t, tt.Deductions[0].N.IsZero())
	assertDec(t, 5000, tt.Reintegrations[2].N)
	assertDec(t, 10000, tt.Deductions[1].N)
	assertDec(t, 70000, tt.TotalReintegrations.N)
	assertDec(t, 10000, tt.TotalDeductions.N)
	assertDec(t, 60000, tt.ResultatFiscal.N)
	assertDec(t, 60000, tt.BeneficeFiscal.N)
	assert.True(t, tt.DeficitFiscal.N.IsZero())
	assertDec(t, 18000, tt.ImpotTheorique.N)
}

func TestTaxTablesLoss(t *testing.T) {
	rows := []models.TrialBalanceEntry{
		closing("601100", 50000, 0),
		closing("701100", 0, 20000),
	}
	tt := buildTaxTables(&buildContext{rows: rows})

	assertDec(t, -30000, tt.ResultatComptable.N)
	assert.True(t, tt.Reintegrations[0].N.IsZero())
	assertDec(t, 30000, tt.Deductions[0].N)
	assertDec(t, -30000, tt.ResultatFiscal.N)
	assert.True(t, tt.BeneficeFiscal.N.IsZero())
	assertDec(t, 30000, tt.DeficitFiscal.N)
	assert.True(t, tt.ImpotTheorique.N.IsZero())
	assert.True(t, DefaultTaxRate.Equal(tt.TauxImpot))
}

func TestTaxTablesIdentity(t *testing.T) {
	tt := newTaxTables(nil)
	tt.ResultatComptable.N = d(1000)
	tt.Reintegrations[4].N = d(300)
	tt.Deductions[2].N = d(1500)
	tt.finalize()

	r := tt.TotalReintegrations.N
	dd := tt.TotalDeductions.N
	assert.True(t, tt.ResultatFiscal.N.Equal(r.Sub(dd)))
	assertDec(t, -200, tt.ResultatFiscal.N)
	assertDec(t, 200, tt.DeficitFiscal.N)
}
