package parsers

import (
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"golang-dsf-service/pkg/errors"
)

// Sheet is one worksheet as an array of rows
type Sheet struct {
	Name string
	Rows []Row
}

// Workbook is a spreadsheet read as plain text tables
type Workbook struct {
	Name   string
	Sheets []Sheet
}

// ReadWorkbook reads every sheet of the workbook at path
func ReadWorkbook(path string) (*Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, openError(path, err)
	}
	defer f.Close()
	return ReadWorkbookFrom(f, path)
}

// ReadWorkbookFrom reads every sheet of a workbook stream. Empty rows are dropped
// but row numbers keep their spreadsheet positions.
func ReadWorkbookFrom(r io.Reader, name string) (*Workbook, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.FileError(errors.CodeFileCorrupted, name, err)
	}
	defer book.Close()

	wb := &Workbook{Name: name}
	for _, sheetName := range book.GetSheetList() {
		cells, err := book.GetRows(sheetName, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, errors.ParseError(errors.CodeInvalidFormat, name, 0, sheetName, "", err)
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: sheetName, Rows: tableRows(cells)})
	}
	return wb, nil
}
