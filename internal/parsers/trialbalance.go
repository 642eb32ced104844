package parsers

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"golang-dsf-service/internal/locale"
	"golang-dsf-service/internal/models"
	"golang-dsf-service/pkg/errors"
	"golang-dsf-service/pkg/logger"
)

// TrialBalanceParser turns a CSV or XLSX trial balance into raw rows
type TrialBalanceParser struct {
	*BaseParser
	config *TrialBalanceParserConfig
	logger logger.Logger
}

// NewTrialBalanceParser creates a parser with the given configuration
func NewTrialBalanceParser(config *TrialBalanceParserConfig) (*TrialBalanceParser, error) {
	if config == nil {
		config = DefaultTrialBalanceParserConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "trial_balance_parser", nil, err)
	}

	return &TrialBalanceParser{
		BaseParser: NewBaseParser(config.CSV),
		config:     config,
		logger:     logger.GetGlobalLogger().WithComponent("trial_balance_parser"),
	}, nil
}

// ParseFile reads the trial balance at path; the format follows the extension
func (p *TrialBalanceParser) ParseFile(path string) ([]models.RawRow, *ParseStats, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		file, reader, err := p.OpenFile(path)
		if err != nil {
			return nil, nil, err
		}
		defer file.Close()

		rows, err := p.ReadAll(reader, path)
		if err != nil {
			return nil, nil, err
		}
		return p.ParseTable(rows, path, "")
	case ".xlsx", ".xlsm":
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, openError(path, err)
		}
		defer f.Close()
		return p.ParseXLSX(f, path)
	default:
		return nil, nil, errors.FileError(errors.CodeUnsupported, path, nil)
	}
}

// ParseXLSX reads the configured sheet of a workbook stream
func (p *TrialBalanceParser) ParseXLSX(r io.Reader, name string) ([]models.RawRow, *ParseStats, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, errors.FileError(errors.CodeFileCorrupted, name, err)
	}
	defer book.Close()

	sheet := p.config.Sheet
	if sheet == "" {
		sheets := book.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil, errors.ParseError(errors.CodeEmptySheet, name, 0, "", "", nil)
		}
		sheet = sheets[0]
	}

	cells, err := book.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, errors.ParseError(errors.CodeInvalidFormat, name, 0, sheet, "", err)
	}

	return p.ParseTable(tableRows(cells), name, sheet)
}

func tableRows(cells [][]string) []Row {
	rows := make([]Row, 0, len(cells))
	for i, record := range cells {
		if isEmptyRecord(record) {
			continue
		}
		rows = append(rows, Row{Number: i + 1, Cells: trimCells(record)})
	}
	return rows
}

// ParseTable locates the header row and maps the data rows below it
func (p *TrialBalanceParser) ParseTable(rows []Row, file, sheet string) ([]models.RawRow, *ParseStats, error) {
	stats := &ParseStats{File: file, Sheet: sheet, TotalRows: len(rows)}

	headerIdx, columns := p.findHeader(rows)
	if headerIdx < 0 {
		var seen []string
		if len(rows) > 0 {
			seen = rows[0].Cells
		}
		expected := []string{string(models.FieldAccountNumber), string(models.FieldAccountName)}
		for _, f := range models.AmountFields {
			expected = append(expected, string(f))
		}
		return nil, stats, errors.MissingColumnError(file, expected, seen)
	}
	stats.HeaderRow = rows[headerIdx].Number

	p.logger.WithFields(logger.Fields{
		"file":       file,
		"sheet":      sheet,
		"header_row": stats.HeaderRow,
		"columns":    len(columns),
	}).Debug("Detected trial balance header")

	collector := errors.NewRowErrorCollector(p.config.MaxRowErrors)
	collecting := true

	var out []models.RawRow
	for _, row := range rows[headerIdx+1:] {
		raw := make(models.RawRow, len(columns))
		for field, idx := range columns {
			raw[field] = row.Cell(idx)
		}
		raw[models.FieldRowNumber] = strconv.Itoa(row.Number)

		if p.skip(raw) {
			stats.SkippedRows++
			continue
		}
		if collecting {
			collecting = p.inspect(file, sheet, row.Number, raw, collector)
		}
		out = append(out, raw)
	}
	stats.RecordsParsed = len(out)
	stats.Errors = collector.GetErrors()

	if collector.HasErrors() {
		p.logger.WithFields(logger.Fields{
			"file":  file,
			"sheet": sheet,
		}).Warn(collector.GetSummary().Error())
	}

	if len(out) == 0 {
		return nil, stats, errors.ParseError(errors.CodeEmptySheet, file, stats.HeaderRow, sheet, "", nil)
	}
	return out, stats, nil
}

// findHeader returns the index of the first row that names the account column
// and at least two other known fields, with the column index of each field.
func (p *TrialBalanceParser) findHeader(rows []Row) (int, map[models.RawField]int) {
	limit := p.config.HeaderSearchRows
	if limit > len(rows) {
		limit = len(rows)
	}

	for i := 0; i < limit; i++ {
		columns := make(map[models.RawField]int)
		for idx, cell := range rows[i].Cells {
			if field, ok := p.config.fieldFor(cell); ok {
				if _, dup := columns[field]; !dup {
					columns[field] = idx
				}
			}
		}
		if _, ok := columns[models.FieldAccountNumber]; ok && len(columns) >= 3 {
			return i, columns
		}
	}
	return -1, nil
}

// inspect records suspicious cells without dropping the row; the balance
// validator still decides whether the row is acceptable.
func (p *TrialBalanceParser) inspect(file, sheet string, rowNum int, raw models.RawRow, c *errors.RowErrorCollector) bool {
	if _, ok := raw.Get(models.FieldAccountNumber); !ok {
		err := errors.EmptyValueError(file, rowNum, string(models.FieldAccountNumber))
		err.Location.Sheet = sheet
		if !c.Add(err) {
			return false
		}
	}

	for _, f := range models.AmountFields {
		v, ok := raw.Get(f)
		if !ok || locale.LooksLikeAmount(v) {
			continue
		}
		err := errors.InvalidAmountError(file, rowNum, string(f), v)
		err.Location.Sheet = sheet
		if !c.Add(err) {
			return false
		}
	}
	return true
}

// skip drops blank lines and class or grand total footers
func (p *TrialBalanceParser) skip(raw models.RawRow) bool {
	account, hasAccount := raw.Get(models.FieldAccountNumber)
	name, _ := raw.Get(models.FieldAccountName)

	if !hasAccount {
		empty := true
		for _, f := range models.AmountFields {
			if _, ok := raw.Get(f); ok {
				empty = false
				break
			}
		}
		if empty && name == "" {
			return true
		}
	}

	if p.config.SkipTotals {
		for _, s := range []string{account, name} {
			if strings.HasPrefix(locale.Normalize(s), "total") {
				return true
			}
		}
	}
	return false
}
