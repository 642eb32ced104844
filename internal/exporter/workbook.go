package exporter

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"golang-dsf-service/internal/declaration"
	"golang-dsf-service/internal/models"
)

const (
	summarySheet   = "Synthese"
	coherenceSheet = "Coherence"
	importSheet    = "Import"
)

var lineHeader = []interface{}{"Ref", "Libelle", "Exercice N", "Exercice N-1"}

// writeWorkbook renders the declaration as a workbook: a summary sheet, one
// sheet per generated report named after its category and the coherence issues.
func (e *Exporter) writeWorkbook(d *declaration.Declaration, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	summary := [][]interface{}{
		{"Dossier", d.FolderID},
		{"Exercice", d.ExerciseID},
		{"Statut", string(d.Status)},
		{"Version", d.Version},
		{"Genere le", d.GeneratedAt.Format(time.RFC3339)},
		{},
		{"Etat", "Titre", "Source"},
	}
	for _, id := range d.Reports.CategoryIDs() {
		summary = append(summary, []interface{}{id, title(id), d.Reports.Sources[id]})
	}
	if err := writeRows(f, summarySheet, summary); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A7", "C7", bold); err != nil {
		return err
	}
	_ = f.SetColWidth(summarySheet, "B", "B", 60)

	for _, id := range d.Reports.CategoryIDs() {
		if err := e.writeReportSheet(f, id, d, bold); err != nil {
			return err
		}
	}

	if e.config.IncludeCoherence {
		if err := writeCoherenceSheet(f, d.Coherence, bold); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (e *Exporter) writeReportSheet(f *excelize.File, id string, d *declaration.Declaration, bold int) error {
	lines, err := Lines(id, d.Reports.Reports[id])
	if err != nil {
		return err
	}
	if _, err := f.NewSheet(id); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", id, err)
	}

	rows := [][]interface{}{{title(id)}, lineHeader}
	for _, l := range lines {
		if !e.keep(l) {
			continue
		}
		label := l.Label
		if label == "" {
			label = l.Path
		}
		switch {
		case l.Text != "":
			rows = append(rows, []interface{}{l.Path, label, l.Text})
		case l.Figure:
			rows = append(rows, []interface{}{l.Path, label, l.N.InexactFloat64(), l.N1.InexactFloat64()})
		default:
			rows = append(rows, []interface{}{l.Path, label, l.N.InexactFloat64()})
		}
	}
	if err := writeRows(f, id, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(id, "A1", "D2", bold); err != nil {
		return err
	}
	_ = f.SetColWidth(id, "A", "A", 36)
	_ = f.SetColWidth(id, "B", "B", 60)
	_ = f.SetColWidth(id, "C", "D", 18)
	return nil
}

func writeCoherenceSheet(f *excelize.File, issues []models.CoherenceIssue, bold int) error {
	if _, err := f.NewSheet(coherenceSheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", coherenceSheet, err)
	}
	rows := [][]interface{}{{"Gravite", "Controle", "Etat", "Message", "Attendu", "Constate"}}
	for _, issue := range issues {
		row := []interface{}{string(issue.Severity), string(issue.Type), issue.Category, issue.Message}
		if issue.Expected != nil {
			row = append(row, issue.Expected.InexactFloat64())
		} else {
			row = append(row, "")
		}
		if issue.Actual != nil {
			row = append(row, issue.Actual.InexactFloat64())
		}
		rows = append(rows, row)
	}
	if err := writeRows(f, coherenceSheet, rows); err != nil {
		return err
	}
	_ = f.SetColWidth(coherenceSheet, "D", "D", 80)
	return f.SetCellStyle(coherenceSheet, "A1", "F1", bold)
}

func writeImportWorkbook(s *models.ImportSession, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", importSheet); err != nil {
		return fmt.Errorf("failed to create import sheet: %w", err)
	}
	rows := [][]interface{}{{"Feuille", "Ligne", "Compte", "Libelle", "Champ", "Confiance", "Manuel", "N", "N-1", "N-2"}}
	for i := range s.Entries {
		entry := &s.Entries[i]
		row := []interface{}{entry.SheetName, entry.RowNumber, entry.AccountNumber, entry.Label,
			entry.MatchedFieldID, entry.MatchConfidence, entry.IsManualMatch}
		for offset := 0; offset < 3; offset++ {
			if v, ok := entry.Value(offset); ok {
				row = append(row, v.InexactFloat64())
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}
	if err := writeRows(f, importSheet, rows); err != nil {
		return err
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
