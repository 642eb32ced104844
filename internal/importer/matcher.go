// Package importer reconciles legacy declaration workbooks against the
// report field catalog.
//
// Matching runs in two stages:
//  1. Sheet detection compares each sheet name with the sheet patterns of
//     every report category; the best pattern at or above the threshold
//     classifies the sheet. Rows of unclassified sheets are not matched.
//  2. Row matching scores each data row against every catalog field with a
//     weighted composite of sheet, label, account and position similarity.
//     Signals absent from a row or field have their weight redistributed.
//
// Entries at or above the auto-apply threshold may be written into a report
// set directly; the rest wait for a human decision recorded by Confirm.
package importer

import (
	"context"
	"time"

	"github.com/google/uuid"

	"golang-dsf-service/internal/locale"
	"golang-dsf-service/internal/models"
	"golang-dsf-service/internal/parsers"
	"golang-dsf-service/internal/report"
	"golang-dsf-service/pkg/errors"
	"golang-dsf-service/pkg/logger"
)

// Score is the breakdown behind a proposed match
type Score struct {
	FieldID  string  `json:"fieldId"`
	Total    float64 `json:"total"`
	Sheet    float64 `json:"sheet"`
	Label    float64 `json:"label"`
	Account  float64 `json:"account"`
	Position float64 `json:"position"`
	Weights  Weights `json:"weights"`
}

type candidate struct {
	field    report.Field
	label    string
	category string
}

// Matcher proposes catalog fields for legacy workbook rows
type Matcher struct {
	config     *Config
	candidates []candidate
	patterns   map[string][]string
	categories []string
	logger     logger.Logger
	now        func() time.Time
}

// NewMatcher creates a matcher over the report field catalog; a nil config means DefaultConfig
func NewMatcher(config *Config) (*Matcher, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "import", "matcher", err)
	}

	m := &Matcher{
		config:   config.Clone(),
		patterns: make(map[string][]string),
		logger:   logger.GetGlobalLogger().WithComponent("importer"),
		now:      time.Now,
	}
	for _, c := range report.Categories() {
		m.patterns[c.ID] = c.Sheets
		m.categories = append(m.categories, c.ID)
	}
	for _, f := range report.Fields() {
		m.candidates = append(m.candidates, candidate{field: f, label: locale.Normalize(f.Label), category: f.Category})
	}
	return m, nil
}

// Config returns a copy of the matcher configuration
func (m *Matcher) Config() *Config {
	return m.config.Clone()
}

// DetectSheet classifies a sheet by its name
func (m *Matcher) DetectSheet(name string) models.SheetDetection {
	det := models.SheetDetection{SheetName: name}
	for _, id := range m.categories {
		score, pattern := bestSimilarity(name, m.patterns[id])
		if score > det.Score {
			det.Score = score
			det.Category = id
			det.Pattern = pattern
		}
	}
	det.Classified = det.Score >= m.config.SheetThreshold
	if !det.Classified {
		det.Category = ""
		det.Pattern = ""
	}
	return det
}

// ScoreRow scores a row against one field. sheetName is the worksheet the row
// came from; account may be empty.
func (m *Matcher) ScoreRow(sheetName, label, account string, rowNumber int, f report.Field) Score {
	sheetScore, _ := bestSimilarity(sheetName, f.SheetPatterns)
	return m.score(sheetScore, locale.Normalize(label), account, rowNumber,
		candidate{field: f, label: locale.Normalize(f.Label), category: f.Category})
}

// score expects label already normalised
func (m *Matcher) score(sheetScore float64, label, account string, rowNumber int, c candidate) Score {
	hasAccount := account != "" && len(c.field.AccountPatterns) > 0
	hasPosition := c.field.ExpectedRow > 0 && rowNumber > 0

	s := Score{FieldID: c.field.ID, Sheet: sheetScore}
	s.Label = normalizedSimilarity(label, c.label)
	if hasAccount {
		s.Account = AccountScore(account, c.field.AccountPatterns)
	}
	if hasPosition {
		s.Position = positionScore(rowNumber, c.field.ExpectedRow, m.config.PositionStep)
	}
	s.Weights = m.config.effectiveWeights(hasAccount, hasPosition)
	s.Total = composite(s.Weights, s.Sheet, s.Label, s.Account, s.Position)
	return s
}

// bestField returns the highest scoring field; catalog order breaks ties
func (m *Matcher) bestField(sheetName string, row dataRow) (Score, bool) {
	label := locale.Normalize(row.label)
	sheetScores := make(map[string]float64)

	var best Score
	found := false
	for _, c := range m.candidates {
		sheetScore, ok := sheetScores[c.category]
		if !ok {
			sheetScore, _ = bestSimilarity(sheetName, m.patterns[c.category])
			sheetScores[c.category] = sheetScore
		}
		s := m.score(sheetScore, label, row.account, row.number, c)
		if !found || s.Total > best.Total {
			best, found = s, true
		}
	}
	return best, found
}

// Reconcile detects the sheets of wb and proposes a field for every data row
// of the classified sheets.
func (m *Matcher) Reconcile(ctx context.Context, wb *parsers.Workbook, folderID string) (*models.ImportSession, error) {
	opLogger := logger.NewOperationLogger("import_reconcile", m.logger).WithFields(logger.Fields{
		"file":      wb.Name,
		"folder_id": folderID,
		"sheets":    len(wb.Sheets),
	})

	session := &models.ImportSession{
		ID:         uuid.NewString(),
		FolderID:   folderID,
		FileName:   wb.Name,
		ImportedAt: m.now(),
	}

	for _, sheet := range wb.Sheets {
		if err := ctx.Err(); err != nil {
			opLogger.Error(err, "Import cancelled")
			return nil, errors.ImportError(errors.CodeUnexpectedError, wb.Name, err)
		}
		opLogger.Step("sheet " + sheet.Name)

		det := m.DetectSheet(sheet.Name)
		for _, row := range sheet.Rows {
			data, ok := parseRow(row, m.config.MaxValueColumns)
			if !ok {
				continue
			}
			det.DataRows++
			if !det.Classified {
				continue
			}

			entry := models.ImportEntry{
				ID:            uuid.NewString(),
				SheetName:     sheet.Name,
				RowNumber:     data.number,
				Label:         data.label,
				AccountNumber: data.account,
				Values:        data.values,
			}
			if best, ok := m.bestField(sheet.Name, data); ok {
				entry.MatchedFieldID = best.FieldID
				entry.MatchConfidence = best.Total
				det.MatchedRows++
			}
			session.Entries = append(session.Entries, entry)
		}
		session.Sheets = append(session.Sheets, det)
	}

	high := 0
	for _, e := range session.Entries {
		if e.MatchConfidence >= m.config.AutoApplyThreshold {
			high++
		}
	}
	opLogger.WithFields(logger.Fields{
		"entries":         len(session.Entries),
		"high_confidence": high,
	}).Success("Import reconciled")

	return session, nil
}
