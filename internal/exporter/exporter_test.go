package exporter

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"golang-dsf-service/internal/declaration"
	"golang-dsf-service/internal/models"
	"golang-dsf-service/internal/report"
	"golang-dsf-service/pkg/errors"
)

func entry(account string, debit, credit int64) models.TrialBalanceEntry {
	return models.TrialBalanceEntry{
		AccountNumber:  account,
		AccountName:    "Compte " + account,
		MovementDebit:  decimal.NewFromInt(debit),
		MovementCredit: decimal.NewFromInt(credit),
		ClosingDebit:   decimal.NewFromInt(debit),
		ClosingCredit:  decimal.NewFromInt(credit),
	}
}

func testDeclaration(t *testing.T) *declaration.Declaration {
	t.Helper()
	set, err := report.NewGenerator(report.Options{}).Generate(context.Background(), report.Input{
		ExerciseID: "EX2024",
		Current: []models.TrialBalanceEntry{
			entry("101000", 0, 1000000),
			entry("221000", 500000, 0),
			entry("521000", 700000, 0),
			entry("601000", 300000, 0),
			entry("701000", 0, 500000),
		},
		Entity: report.Entity{Name: "ACME SARL", TaxID: "M0123"},
	}, nil)
	require.NoError(t, err)

	expected := decimal.NewFromInt(10)
	return &declaration.Declaration{
		ID:          "d1",
		FolderID:    "folder-1",
		ExerciseID:  "EX2024",
		Status:      declaration.StatusValid,
		Reports:     set,
		GeneratedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Version:     3,
		Coherence: []models.CoherenceIssue{{
			Type:     models.CoherenceMissingNote,
			Severity: models.SeverityWarning,
			Message:  "note27b is missing",
			Category: "note27b",
			Expected: &expected,
		}},
	}
}

func TestNewExporter(t *testing.T) {
	tests := []struct {
		name        string
		config      *Config
		expectError bool
	}{
		{"default config", nil, false},
		{"xlsx", &Config{Format: FormatXLSX}, false},
		{"invalid format", &Config{Format: "pdf"}, true},
		{"csv without delimiter", &Config{Format: FormatCSV}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp, err := NewExporter(tt.config)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, exp)
		})
	}

	_, err := NewSafeExporter(&Config{Format: "pdf"}, nil)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidConfig))
}

func TestLines(t *testing.T) {
	d := testDeclaration(t)

	bs, ok := d.Reports.Get(report.CategoryBalanceSheet)
	require.True(t, ok)
	lines, err := Lines(report.CategoryBalanceSheet, bs)
	require.NoError(t, err)

	var terrains *Line
	for i := range lines {
		if lines[i].Path == "actif.AJ.net" {
			terrains = &lines[i]
		}
	}
	require.NotNil(t, terrains)
	assert.Equal(t, "Terrains", terrains.Label)
	assert.True(t, terrains.Figure)
	assert.True(t, terrains.N.Equal(decimal.NewFromInt(500000)))

	first, ok := report.LookupField(report.FieldID(report.CategoryBalanceSheet, lines[0].Path))
	require.True(t, ok, "catalogued fields come first")
	assert.Equal(t, first.Label, lines[0].Label)

	sig, ok := d.Reports.Get(report.CategorySignaletics)
	if ok {
		sigLines, err := Lines(report.CategorySignaletics, sig)
		require.NoError(t, err)
		found := false
		for _, l := range sigLines {
			if l.Text == "ACME SARL" {
				found = true
			}
		}
		assert.True(t, found)
	}
}

func TestExportConsole(t *testing.T) {
	exp, err := NewExporter(nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, exp.Export(testDeclaration(t), &buf))
	out := buf.String()

	assert.Contains(t, out, "DSF DECLARATION")
	assert.Contains(t, out, "Status:    VALID (version 3)")
	assert.Contains(t, out, "Total actif:")
	assert.Contains(t, out, "1200000.00")
	assert.Contains(t, out, "=== COHERENCE ===")
	assert.Contains(t, out, "MISSING_NOTE")
	assert.Contains(t, out, "bilan")
}

func TestExportJSON(t *testing.T) {
	exp, err := NewExporter(&Config{Format: FormatJSON})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, exp.Export(testDeclaration(t), &buf))

	var decoded declaration.Declaration
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "folder-1", decoded.FolderID)
	assert.Equal(t, declaration.StatusValid, decoded.Status)
	require.NotNil(t, decoded.Reports)
	v, err := report.Value(decoded.Reports.BalanceSheet(), "actif.AJ.net")
	require.NoError(t, err)
	assert.True(t, v.Equal(decimal.NewFromInt(500000)))
}

func TestExportCSV(t *testing.T) {
	exp, err := NewExporter(&Config{Format: FormatCSV, CSVDelimiter: ';', CSVHeaders: true})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, exp.Export(testDeclaration(t), &buf))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "Category;Path;Label;N;N-1\n"))
	assert.Contains(t, out, "bilan;actif.AJ.net;Terrains;500000;0\n")
	assert.NotContains(t, out, "bilan;actif.AE.net;")
}

func TestExportWorkbook(t *testing.T) {
	exp, err := NewExporter(&Config{Format: FormatXLSX, IncludeCoherence: true})
	require.NoError(t, err)

	d := testDeclaration(t)
	var buf bytes.Buffer
	require.NoError(t, exp.Export(d, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Equal(t, summarySheet, sheets[0])
	assert.Contains(t, sheets, report.CategoryBalanceSheet)
	assert.Contains(t, sheets, coherenceSheet)
	assert.Len(t, sheets, len(d.Reports.Reports)+2)

	rows, err := f.GetRows(report.CategoryBalanceSheet)
	require.NoError(t, err)
	found := false
	for _, row := range rows {
		if len(row) >= 3 && row[0] == "actif.AJ.net" {
			found = true
			assert.Equal(t, "Terrains", row[1])
			assert.Equal(t, "500000", row[2])
		}
	}
	assert.True(t, found)

	status, err := f.GetCellValue(summarySheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "VALID", status)
}

func TestSafeExporter(t *testing.T) {
	exp, err := NewSafeExporter(&Config{Format: FormatXLSX}, nil)
	require.NoError(t, err)

	t.Run("missing declaration", func(t *testing.T) {
		err := exp.ExportSafely(nil, &bytes.Buffer{})
		assert.True(t, errors.HasCode(err, errors.CodeMissingField))
	})

	t.Run("to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out", "dsf.xlsx")
		written, err := exp.ExportToFile(testDeclaration(t), path)
		require.NoError(t, err)
		assert.Equal(t, path, written)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	})

	t.Run("backup path", func(t *testing.T) {
		assert.Equal(t, filepath.Join("out", "dsf_backup.xlsx"), backupPath(filepath.Join("out", "dsf.xlsx")))
	})
}

func TestExportImportConsole(t *testing.T) {
	v := decimal.NewFromInt(1500000)
	session := &models.ImportSession{
		ID:       "s1",
		FileName: "dsf_2023.xlsx",
		Sheets: []models.SheetDetection{
			{SheetName: "Bilan", Category: "bilan", Score: 100, Classified: true, DataRows: 2, MatchedRows: 2},
			{SheetName: "Parametres", Score: 20, DataRows: 1},
		},
		Entries: []models.ImportEntry{
			{ID: "e1", SheetName: "Bilan", RowNumber: 8, Label: "Terrains", MatchedFieldID: "bilan.actif.AJ.net", MatchConfidence: 100, Values: []*decimal.Decimal{&v}},
			{ID: "e2", SheetName: "Bilan", RowNumber: 12, Label: "Zzz", MatchedFieldID: "bilan.passif.CA", MatchConfidence: 55},
		},
	}

	exp, err := NewExporter(nil)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, exp.ExportImport(session, 80, &buf))
	out := buf.String()

	assert.Contains(t, out, "LEGACY IMPORT s1")
	assert.Contains(t, out, "bilan.actif.AJ.net")
	assert.Contains(t, out, "1 entries need review")
}
