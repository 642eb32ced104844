package balance

import (
	"strings"

	"github.com/shopspring/decimal"

	"golang-dsf-service/internal/models"
)

// ExtractFixedAssets derives one record per class 2 asset account. Depreciation
// (28x) and impairment (29x) accounts are attached to the asset whose number
// they mirror: 2844 belongs to 244, 28441 to 2441. When several assets share a
// broader depreciation account, the first asset in account order takes it.
func ExtractFixedAssets(entries []models.TrialBalanceEntry) []models.FixedAssetRecord {
	type asset struct {
		key    string
		record models.FixedAssetRecord
	}

	var assets []*asset
	var allowances []models.TrialBalanceEntry

	for _, e := range entries {
		if e.Class() != 2 {
			continue
		}
		if e.HasPrefix("28") || e.HasPrefix("29") {
			allowances = append(allowances, e)
			continue
		}

		gross := e.NetClosing()
		assets = append(assets, &asset{
			key: assetKey(e.AccountNumber, 1),
			record: models.FixedAssetRecord{
				AccountNumber: e.AccountNumber,
				AccountName:   e.AccountName,
				GrossOpening:  e.NetOpening(),
				Acquisitions:  e.MovementDebit,
				Disposals:     e.MovementCredit,
				GrossValue:    gross,
				Depreciation:  decimal.Zero,
				MovementType:  movementType(e),
			},
		})
	}

	for _, a := range allowances {
		dkey := assetKey(a.AccountNumber, 2)
		if dkey == "" {
			continue
		}
		for _, as := range assets {
			if as.key == "" {
				continue
			}
			if strings.HasPrefix(as.key, dkey) || strings.HasPrefix(dkey, as.key) {
				as.record.Depreciation = as.record.Depreciation.Add(a.ClosingCredit.Sub(a.ClosingDebit))
				break
			}
		}
	}

	records := make([]models.FixedAssetRecord, 0, len(assets))
	for _, as := range assets {
		as.record.NetValue = as.record.GrossValue.Sub(as.record.Depreciation)
		records = append(records, as.record)
	}
	return records
}

// assetKey strips the class digits and the trailing zero padding of an account number
func assetKey(account string, skip int) string {
	trimmed := strings.TrimRight(account, "0")
	if len(trimmed) <= skip {
		return ""
	}
	return trimmed[skip:]
}

func movementType(e models.TrialBalanceEntry) models.MovementType {
	switch e.MovementDebit.Cmp(e.MovementCredit) {
	case 1:
		return models.MovementAcquisition
	case -1:
		return models.MovementDisposal
	default:
		return models.MovementNone
	}
}
