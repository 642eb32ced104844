package parsers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"golang-dsf-service/internal/models"
	"golang-dsf-service/pkg/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestParseCSVTrialBalance(t *testing.T) {
	content := strings.Join([]string{
		"BALANCE GENERALE 2024;;;;;;;",
		"",
		"Compte;Intitulé;Débit ouverture;Crédit ouverture;Mouvement débit;Mouvement crédit;Solde débit;Solde crédit",
		"101000;Capital social;0;1 000 000;0;0;0;1 000 000",
		"521000;Banque;1 000 000;0;250 000,50;100 000;1 150 000,50;0",
		";;;;;;;",
		"TOTAL CLASSE 5;;1000000;0;;;;",
	}, "\n")
	path := writeFile(t, "balance.csv", content)

	parser, err := NewTrialBalanceParser(nil)
	if err != nil {
		t.Fatalf("NewTrialBalanceParser() error = %v", err)
	}

	rows, stats, err := parser.ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if stats.HeaderRow != 3 {
		t.Errorf("expected header on row 3, got %d", stats.HeaderRow)
	}
	if stats.SkippedRows != 1 {
		t.Errorf("expected the total row to be skipped, got %d skipped", stats.SkippedRows)
	}
	if v, _ := rows[1].Get(models.FieldMovementDebit); v != "250 000,50" {
		t.Errorf("expected raw movement debit to be kept as text, got %q", v)
	}
	if v, _ := rows[0].Get(models.FieldAccountName); v != "Capital social" {
		t.Errorf("unexpected account name %q", v)
	}
	if n, ok := rows[1].Number(); !ok || n != 5 {
		t.Errorf("expected worksheet row 5, got %d", n)
	}
}

func TestParseCSVMissingHeader(t *testing.T) {
	path := writeFile(t, "bad.csv", "a;b;c\n1;2;3\n")

	parser, _ := NewTrialBalanceParser(nil)
	_, _, err := parser.ParseFile(path)
	if err == nil {
		t.Fatal("expected an error for a file without a recognisable header")
	}
	if !errors.HasCode(err, errors.CodeMissingColumn) {
		t.Errorf("expected missing column error, got %v", err)
	}
}

func TestParseCSVRowWarnings(t *testing.T) {
	content := strings.Join([]string{
		"Compte;Intitulé;Débit ouverture;Crédit ouverture;Mouvement débit;Mouvement crédit;Solde débit;Solde crédit",
		"401000;Fournisseurs;0;0;0;0;0;12abc",
		";Sans compte;0;0;5;0;5;0",
		"521000;Banque;0;0;0;0;0;0",
	}, "\n")
	path := writeFile(t, "warnings.csv", content)

	parser, _ := NewTrialBalanceParser(nil)
	rows, stats, err := parser.ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}

	// suspicious rows are kept for the validator
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if !stats.HasErrors() || len(stats.Errors) != 2 {
		t.Fatalf("expected 2 row warnings, got %d", len(stats.Errors))
	}

	first := stats.Errors[0]
	if first.Code != errors.CodeInvalidAmount || first.Location.Row != 2 {
		t.Errorf("unexpected first warning %v", first)
	}
	if first.Location.Column != string(models.FieldClosingCredit) || first.Location.Value != "12abc" {
		t.Errorf("unexpected warning location %+v", first.Location)
	}
	if stats.Errors[1].Code != errors.CodeMissingField || stats.Errors[1].Location.Row != 3 {
		t.Errorf("unexpected second warning %v", stats.Errors[1])
	}

	t.Run("capped", func(t *testing.T) {
		cfg := DefaultTrialBalanceParserConfig()
		cfg.MaxRowErrors = 1
		capped, _ := NewTrialBalanceParser(cfg)
		_, stats, err := capped.ParseFile(path)
		if err != nil {
			t.Fatalf("ParseFile() error = %v", err)
		}
		if len(stats.Errors) != 1 {
			t.Errorf("expected the collector to stop after 1 warning, got %d", len(stats.Errors))
		}
	})
}

func TestParseUnsupportedExtension(t *testing.T) {
	parser, _ := NewTrialBalanceParser(nil)
	_, _, err := parser.ParseFile("balance.pdf")
	if !errors.HasCode(err, errors.CodeUnsupported) {
		t.Errorf("expected unsupported format error, got %v", err)
	}
}

func TestParseXLSXTrialBalance(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	header := []interface{}{"N° compte", "Libellé", "Opening debit", "Opening credit", "Movement debit", "Movement credit", "Closing debit", "Closing credit"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		t.Fatal(err)
	}
	row := []interface{}{"601100", "Achats de marchandises", 0, 0, 20000, 0, 20000, 0}
	if err := f.SetSheetRow(sheet, "A2", &row); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "balance.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	parser, _ := NewTrialBalanceParser(nil)
	rows, stats, err := parser.ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if len(rows) != 1 || stats.RecordsParsed != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if v, _ := rows[0].Get(models.FieldClosingDebit); v != "20000" {
		t.Errorf("expected closing debit 20000, got %q", v)
	}
	if v, _ := rows[0].Get(models.FieldAccountNumber); v != "601100" {
		t.Errorf("expected account 601100, got %q", v)
	}
}

func TestReadWorkbook(t *testing.T) {
	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), "Note 16A")
	f.SetCellValue("Note 16A", "A1", "Emprunts obligataires")
	f.SetCellValue("Note 16A", "B1", 1500)
	f.SetCellValue("Note 16A", "A3", "Dettes de crédit-bail")
	if _, err := f.NewSheet("Bilan"); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "legacy.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	book, err := ReadWorkbook(path)
	if err != nil {
		t.Fatalf("ReadWorkbook() error = %v", err)
	}
	if len(book.Sheets) != 2 {
		t.Fatalf("expected 2 sheets, got %d", len(book.Sheets))
	}
	note := book.Sheets[0]
	if note.Name != "Note 16A" || len(note.Rows) != 2 {
		t.Fatalf("unexpected sheet %s with %d rows", note.Name, len(note.Rows))
	}
	if note.Rows[1].Number != 3 {
		t.Errorf("expected spreadsheet row number 3, got %d", note.Rows[1].Number)
	}
	if note.Rows[0].Cell(1) != "1500" || note.Rows[0].Cell(7) != "" {
		t.Errorf("unexpected cells %v", note.Rows[0].Cells)
	}
}
