package parsers

import (
	"fmt"

	"golang-dsf-service/internal/locale"
	"golang-dsf-service/internal/models"
)

// TrialBalanceParserConfig describes how to find trial-balance columns
type TrialBalanceParserConfig struct {
	// ColumnAliases lists accepted header spellings per field, compared after normalisation.
	ColumnAliases map[models.RawField][]string `json:"column_aliases"`
	// HeaderSearchRows bounds how far down the header row is looked for.
	HeaderSearchRows int `json:"header_search_rows"`
	// Sheet selects a workbook sheet; empty means the first sheet.
	Sheet string `json:"sheet,omitempty"`
	// SkipTotals drops footer rows whose label starts with "total".
	SkipTotals bool `json:"skip_totals"`
	// MaxRowErrors caps the row warnings kept in ParseStats; zero keeps all.
	MaxRowErrors int          `json:"max_row_errors"`
	CSV          *ParseConfig `json:"-"`
}

// DefaultTrialBalanceParserConfig returns aliases seen in SYSCOHADA software exports
func DefaultTrialBalanceParserConfig() *TrialBalanceParserConfig {
	return &TrialBalanceParserConfig{
		ColumnAliases: map[models.RawField][]string{
			models.FieldAccountNumber: {"compte", "n compte", "numero compte", "numero de compte", "no compte", "account", "account number", "accountnumber"},
			models.FieldAccountName:   {"intitule", "libelle", "intitule du compte", "libelle compte", "designation", "account name", "accountname"},
			models.FieldOpeningDebit:  {"solde debit ouverture", "debit ouverture", "ouverture debit", "si debit", "report debit", "opening debit", "openingdebit"},
			models.FieldOpeningCredit: {"solde credit ouverture", "credit ouverture", "ouverture credit", "si credit", "report credit", "opening credit", "openingcredit"},
			models.FieldMovementDebit: {"mouvement debit", "mouvements debit", "debit mouvement", "mvt debit", "movement debit", "movementdebit"},
			models.FieldMovementCred:  {"mouvement credit", "mouvements credit", "credit mouvement", "mvt credit", "movement credit", "movementcredit"},
			models.FieldClosingDebit:  {"solde debit", "solde final debit", "debit cloture", "sf debit", "closing debit", "closingdebit"},
			models.FieldClosingCredit: {"solde credit", "solde final credit", "credit cloture", "sf credit", "closing credit", "closingcredit"},
		},
		HeaderSearchRows: 15,
		SkipTotals:       true,
		MaxRowErrors:     50,
		CSV:              DefaultParseConfig(),
	}
}

// Validate checks if the configuration is usable
func (c *TrialBalanceParserConfig) Validate() error {
	if c.HeaderSearchRows <= 0 {
		return fmt.Errorf("header search rows must be positive")
	}
	if c.MaxRowErrors < 0 {
		return fmt.Errorf("max row errors cannot be negative")
	}
	for _, field := range append([]models.RawField{models.FieldAccountNumber, models.FieldAccountName}, models.AmountFields...) {
		if len(c.ColumnAliases[field]) == 0 {
			return fmt.Errorf("no column alias configured for %s", field)
		}
	}
	return nil
}

// fieldFor returns the field a header cell names, if any
func (c *TrialBalanceParserConfig) fieldFor(header string) (models.RawField, bool) {
	h := locale.Normalize(header)
	if h == "" {
		return "", false
	}
	for field, aliases := range c.ColumnAliases {
		for _, alias := range aliases {
			if h == locale.Normalize(alias) {
				return field, true
			}
		}
	}
	return "", false
}
