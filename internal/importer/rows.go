package importer

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"golang-dsf-service/internal/locale"
	"golang-dsf-service/internal/parsers"
)

var accountCell = regexp.MustCompile(`^\d{2,8}$`)

// dataRow is a worksheet row that carries a label and at least one amount
type dataRow struct {
	number  int
	label   string
	account string
	values  []*decimal.Decimal
}

// parseRow extracts label, account number and period amounts from a raw row.
// The label is the cell with the most letters, so short line references
// such as "AE" are passed over; an account number is a 2 to 8 digit cell
// left of the label; amounts are read right of the label.
// Rows without a label or without any amount are headers or blank lines.
func parseRow(row parsers.Row, maxValues int) (dataRow, bool) {
	labelIdx, most := -1, 0
	for i, cell := range row.Cells {
		if n := letterCount(cell); n > most && !locale.LooksLikeAmount(cell) {
			labelIdx, most = i, n
		}
	}
	if labelIdx < 0 {
		return dataRow{}, false
	}

	out := dataRow{number: row.Number, label: strings.TrimSpace(row.Cells[labelIdx])}
	for i := 0; i < labelIdx; i++ {
		if cell := strings.TrimSpace(row.Cells[i]); accountCell.MatchString(cell) {
			out.account = cell
		}
	}

	for i := labelIdx + 1; i < len(row.Cells) && len(out.values) < maxValues; i++ {
		cell := strings.TrimSpace(row.Cells[i])
		if cell == "" {
			continue
		}
		v, err := locale.ParseAmount(cell)
		if err != nil {
			continue
		}
		out.values = append(out.values, &v)
	}
	if len(out.values) == 0 {
		return dataRow{}, false
	}
	return out, true
}

func letterCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
