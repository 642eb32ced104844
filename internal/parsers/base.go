// Package parsers reads trial balances and legacy declaration workbooks from
// CSV and XLSX files into raw row tables.
//
// The trial-balance reader locates the header row, maps French and English
// column names onto the canonical trial-balance fields and keeps every value as
// text: amount validation belongs to the balance validator, which reports
// problems with row numbers instead of failing the whole file.
//
// Example usage:
//
//	parser, err := NewTrialBalanceParser(DefaultTrialBalanceParserConfig())
//	rows, stats, err := parser.ParseFile("balance_2024.xlsx")
//
//	book, err := ReadWorkbook("dsf_2023.xlsx")
package parsers

import (
	"bufio"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang-dsf-service/pkg/errors"
	"golang-dsf-service/pkg/logger"
)

// ParseConfig holds configuration for CSV parsing
type ParseConfig struct {
	Delimiter        rune
	Comment          rune
	TrimLeadingSpace bool
	SkipEmptyRows    bool
	ValidateEncoding bool
}

// DefaultParseConfig returns a configuration with sensible defaults
func DefaultParseConfig() *ParseConfig {
	return &ParseConfig{
		Delimiter:        ';',
		TrimLeadingSpace: true,
		SkipEmptyRows:    true,
		ValidateEncoding: true,
	}
}

// BaseParser provides common CSV reading functionality
type BaseParser struct {
	config *ParseConfig
	logger logger.Logger
}

// NewBaseParser creates a new BaseParser with the given configuration
func NewBaseParser(config *ParseConfig) *BaseParser {
	if config == nil {
		config = DefaultParseConfig()
	}

	log := logger.GetGlobalLogger().WithComponent("base_parser")
	log.WithFields(logger.Fields{
		"delimiter":         string(config.Delimiter),
		"validate_encoding": config.ValidateEncoding,
	}).Debug("Created base parser")

	return &BaseParser{config: config, logger: log}
}

// OpenFile opens a CSV file and returns a configured csv.Reader
func (bp *BaseParser) OpenFile(filePath string) (*os.File, *csv.Reader, error) {
	bp.logger.WithField("file_path", filePath).Debug("Opening CSV file")

	file, err := os.Open(filePath)
	if err != nil {
		return nil, nil, openError(filePath, err)
	}

	if bp.config.ValidateEncoding {
		if err := bp.validateEncoding(file, filePath); err != nil {
			file.Close()
			return nil, nil, err
		}
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			file.Close()
			return nil, nil, errors.FileError(errors.CodeFileCorrupted, filePath, err)
		}
	}

	return file, bp.NewReader(file), nil
}

// NewReader wraps r in a csv.Reader configured like OpenFile does
func (bp *BaseParser) NewReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = bp.config.Delimiter
	reader.Comment = bp.config.Comment
	reader.TrimLeadingSpace = bp.config.TrimLeadingSpace
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader
}

func openError(filePath string, err error) error {
	switch {
	case os.IsNotExist(err):
		return errors.FileError(errors.CodeFileNotFound, filePath, err)
	case os.IsPermission(err):
		return errors.FileError(errors.CodeFilePermission, filePath, err)
	default:
		return errors.FileError(errors.CodeFileCorrupted, filePath, err)
	}
}

func (bp *BaseParser) validateEncoding(file *os.File, filePath string) error {
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() && lineNum < 100 {
		lineNum++
		if !utf8.Valid(scanner.Bytes()) {
			return errors.ParseError(errors.CodeInvalidFormat, filePath, lineNum, "encoding", "",
				fmt.Errorf("invalid UTF-8 encoding detected")).
				WithSuggestion("save the file in UTF-8 encoding and try again")
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.FileError(errors.CodeFileCorrupted, filePath, err)
	}
	return nil
}

// ReadAll reads every record, skipping empty rows when configured.
// Each returned row keeps its 1-based line number.
func (bp *BaseParser) ReadAll(reader *csv.Reader, file string) ([]Row, error) {
	var rows []Row

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line := 0
			var csvErr *csv.ParseError
			if stderrors.As(err, &csvErr) {
				line = csvErr.Line
			}
			bp.logger.WithError(err).WithField("line_number", line).Warn("Failed to read CSV record")
			return nil, errors.ParseError(errors.CodeInvalidFormat, file, line, "", "", err)
		}
		line, _ := reader.FieldPos(0)
		if bp.config.SkipEmptyRows && isEmptyRecord(record) {
			continue
		}
		rows = append(rows, Row{Number: line, Cells: trimCells(record)})
	}

	return rows, nil
}

// Row is one line of a table with its 1-based position in the source
type Row struct {
	Number int
	Cells  []string
}

// Cell returns the cell at index i or "" when the row is shorter
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return r.Cells[i]
}

func isEmptyRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

func trimCells(record []string) []string {
	cells := make([]string, len(record))
	for i, c := range record {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}

// ParseStats holds statistics about a parsing operation
type ParseStats struct {
	File          string
	Sheet         string
	HeaderRow     int
	TotalRows     int
	RecordsParsed int
	SkippedRows   int
	Errors        []*errors.RowError
}

// HasErrors returns true if there were any parsing errors
func (ps *ParseStats) HasErrors() bool {
	return len(ps.Errors) > 0
}

// String returns a human-readable summary of parsing statistics
func (ps *ParseStats) String() string {
	return fmt.Sprintf("Parsed %d rows, %d records, %d skipped, %d errors",
		ps.TotalRows, ps.RecordsParsed, ps.SkippedRows, len(ps.Errors))
}
