package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Correction records one human override of a proposed match
type Correction struct {
	OriginalMatch  string    `json:"originalMatch"`
	CorrectedMatch string    `json:"correctedMatch"`
	Reason         string    `json:"reason"`
	CorrectedBy    string    `json:"correctedBy"`
	CorrectedAt    time.Time `json:"correctedAt"`
}

// ImportEntry is one data row of a legacy declaration workbook with its proposed field
type ImportEntry struct {
	ID              string             `json:"id"`
	SheetName       string             `json:"sheetName"`
	RowNumber       int                `json:"rowNumber"`
	Label           string             `json:"label"`
	AccountNumber   string             `json:"accountNumber,omitempty"`
	Values          []*decimal.Decimal `json:"values"`
	MatchedFieldID  string             `json:"matchedFieldId,omitempty"`
	MatchConfidence float64            `json:"matchConfidence"`
	IsManualMatch   bool               `json:"isManualMatch"`
	Corrections     []Correction       `json:"corrections,omitempty"`
}

// Value returns the value for period offset (0 = N, 1 = N-1, 2 = N-2) if present
func (e *ImportEntry) Value(offset int) (decimal.Decimal, bool) {
	if offset < 0 || offset >= len(e.Values) || e.Values[offset] == nil {
		return decimal.Zero, false
	}
	return *e.Values[offset], true
}

// SheetDetection records how a workbook sheet was classified
type SheetDetection struct {
	SheetName   string  `json:"sheetName"`
	Category    string  `json:"category,omitempty"`
	Pattern     string  `json:"pattern,omitempty"`
	Score       float64 `json:"score"`
	Classified  bool    `json:"classified"`
	DataRows    int     `json:"dataRows"`
	MatchedRows int     `json:"matchedRows"`
}

// ImportSession is the result of reconciling one legacy workbook
type ImportSession struct {
	ID         string           `json:"id"`
	FolderID   string           `json:"folderId,omitempty"`
	FileName   string           `json:"fileName"`
	Sheets     []SheetDetection `json:"sheets"`
	Entries    []ImportEntry    `json:"entries"`
	ImportedAt time.Time        `json:"importedAt"`
}

// Entry returns a pointer to the entry with the given id
func (s *ImportSession) Entry(id string) *ImportEntry {
	for i := range s.Entries {
		if s.Entries[i].ID == id {
			return &s.Entries[i]
		}
	}
	return nil
}
