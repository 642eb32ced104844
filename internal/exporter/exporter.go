// Package exporter renders declarations and import sessions for people and
// other programs.
//
// Supported output formats:
//   - Console: a human-readable summary for terminal display
//   - JSON: the full declaration for programmatic consumption
//   - CSV: one line per exported value, for quick spreadsheet checks
//   - XLSX: a workbook with one sheet per report and note
//
// Example usage:
//
//	exp, err := exporter.NewExporter(&exporter.Config{Format: exporter.FormatXLSX})
//	err = exp.Export(declaration, file)
package exporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"golang-dsf-service/internal/declaration"
	"golang-dsf-service/internal/models"
	"golang-dsf-service/internal/report"
)

// OutputFormat represents the supported output formats
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
	FormatXLSX    OutputFormat = "xlsx"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV, FormatXLSX:
		return true
	default:
		return false
	}
}

// IsBinary reports whether the format must not be written to a terminal
func (f OutputFormat) IsBinary() bool {
	return f == FormatXLSX
}

// Config holds export options
type Config struct {
	Format OutputFormat `json:"format" mapstructure:"format"`

	// IncludeZeroLines keeps lines whose amounts are all zero
	IncludeZeroLines bool `json:"include_zero_lines" mapstructure:"include_zero_lines"`
	// IncludeCoherence adds the coherence issues to console and workbook output
	IncludeCoherence bool `json:"include_coherence" mapstructure:"include_coherence"`
	// IncludeWarnings adds generation warnings to console and workbook output
	IncludeWarnings bool `json:"include_warnings" mapstructure:"include_warnings"`

	CSVDelimiter rune `json:"csv_delimiter" mapstructure:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers" mapstructure:"csv_headers"`
}

// DefaultConfig returns the console configuration
func DefaultConfig() *Config {
	return &Config{
		Format:           FormatConsole,
		IncludeZeroLines: false,
		IncludeCoherence: true,
		IncludeWarnings:  true,
		CSVDelimiter:     ';',
		CSVHeaders:       true,
	}
}

// Validate validates the export configuration
func (c *Config) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	if c.Format == FormatCSV && c.CSVDelimiter == 0 {
		return fmt.Errorf("csv delimiter is required for csv output")
	}
	return nil
}

// Exporter writes declarations in the configured format
type Exporter struct {
	config *Config
}

// NewExporter creates an exporter; a nil config means DefaultConfig
func NewExporter(config *Config) (*Exporter, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid export configuration: %w", err)
	}
	return &Exporter{config: config}, nil
}

// Format returns the configured output format
func (e *Exporter) Format() OutputFormat {
	return e.config.Format
}

// Export writes d to w
func (e *Exporter) Export(d *declaration.Declaration, w io.Writer) error {
	if d == nil {
		return fmt.Errorf("declaration cannot be nil")
	}
	if d.Reports == nil {
		return fmt.Errorf("declaration %s has no reports", d.ID)
	}

	switch e.config.Format {
	case FormatConsole:
		return e.writeConsole(d, w)
	case FormatJSON:
		return writeJSON(d, w)
	case FormatCSV:
		return e.writeCSV(d, w)
	case FormatXLSX:
		return e.writeWorkbook(d, w)
	default:
		return fmt.Errorf("unsupported output format: %s", e.config.Format)
	}
}

func writeJSON(v interface{}, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func (e *Exporter) writeConsole(d *declaration.Declaration, w io.Writer) error {
	set := d.Reports

	fmt.Fprintf(w, "DSF DECLARATION\n")
	fmt.Fprintf(w, "Folder:    %s\n", d.FolderID)
	fmt.Fprintf(w, "Exercise:  %s\n", d.ExerciseID)
	fmt.Fprintf(w, "Status:    %s (version %d)\n", d.Status, d.Version)
	if !d.GeneratedAt.IsZero() {
		fmt.Fprintf(w, "Generated: %s\n", d.GeneratedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "=== SUMMARY ===\n")
	if bs := set.BalanceSheet(); bs != nil {
		printFigure(w, "Total actif", bs.TotalActif(), set.HasPriorYear)
		printFigure(w, "Total passif", bs.TotalPassif(), set.HasPriorYear)
	}
	if is := set.IncomeStatement(); is != nil {
		printFigure(w, "Resultat net", is.ResultatNet(), set.HasPriorYear)
	}
	if tt := set.TaxTables(); tt != nil {
		printFigure(w, "Resultat comptable", tt.ResultatComptable, false)
	}
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "=== REPORTS (%d) ===\n", len(set.Reports))
	for _, id := range set.CategoryIDs() {
		lines, err := Lines(id, set.Reports[id])
		if err != nil {
			return err
		}
		filled := 0
		for _, l := range lines {
			if !l.IsZero() {
				filled++
			}
		}
		fmt.Fprintf(w, "  %-10s %-50s %4d/%-4d %s\n", id, truncate(title(id), 50), filled, len(lines), set.Sources[id])
	}

	if e.config.IncludeCoherence {
		fmt.Fprintf(w, "\n=== COHERENCE ===\n")
		if len(d.Coherence) == 0 {
			fmt.Fprintf(w, "No coherence issues\n")
		}
		for _, issue := range d.Coherence {
			fmt.Fprintf(w, "  [%-7s] %-24s %s\n", issue.Severity, issue.Type, issue.Message)
		}
	}

	if e.config.IncludeWarnings && len(set.Warnings) > 0 {
		fmt.Fprintf(w, "\n=== WARNINGS (%d) ===\n", len(set.Warnings))
		for _, warning := range set.Warnings {
			fmt.Fprintf(w, "  - %s\n", warning)
		}
	}
	return nil
}

func printFigure(w io.Writer, label string, f report.Figure, prior bool) {
	if prior {
		fmt.Fprintf(w, "%-20s %18s   N-1: %s\n", label+":", f.N.StringFixed(2), f.N1.StringFixed(2))
		return
	}
	fmt.Fprintf(w, "%-20s %18s\n", label+":", f.N.StringFixed(2))
}

func (e *Exporter) writeCSV(d *declaration.Declaration, w io.Writer) error {
	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = e.config.CSVDelimiter
	defer csvWriter.Flush()

	if e.config.CSVHeaders {
		if err := csvWriter.Write([]string{"Category", "Path", "Label", "N", "N-1"}); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	for _, id := range d.Reports.CategoryIDs() {
		lines, err := Lines(id, d.Reports.Reports[id])
		if err != nil {
			return err
		}
		for _, l := range lines {
			if !e.keep(l) {
				continue
			}
			record := []string{id, l.Path, l.Label, l.Text, ""}
			if l.Text == "" {
				record[3] = l.N.String()
				if l.Figure {
					record[4] = l.N1.String()
				}
			}
			if err := csvWriter.Write(record); err != nil {
				return fmt.Errorf("failed to write %s line %s: %w", id, l.Path, err)
			}
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

func (e *Exporter) keep(l Line) bool {
	return e.config.IncludeZeroLines || !l.IsZero()
}

// ExportImport writes an import session in the configured format. The
// workbook format lists the entries on a single sheet.
func (e *Exporter) ExportImport(s *models.ImportSession, threshold float64, w io.Writer) error {
	if s == nil {
		return fmt.Errorf("import session cannot be nil")
	}
	switch e.config.Format {
	case FormatJSON:
		return writeJSON(s, w)
	case FormatXLSX:
		return writeImportWorkbook(s, w)
	default:
		return writeImportConsole(s, threshold, w)
	}
}

func writeImportConsole(s *models.ImportSession, threshold float64, w io.Writer) error {
	fmt.Fprintf(w, "LEGACY IMPORT %s\n", s.ID)
	fmt.Fprintf(w, "File:     %s\n", s.FileName)
	fmt.Fprintf(w, "Imported: %s\n\n", s.ImportedAt.Format(time.RFC3339))

	fmt.Fprintf(w, "=== SHEETS ===\n")
	for _, det := range s.Sheets {
		category := det.Category
		if !det.Classified {
			category = "-"
		}
		fmt.Fprintf(w, "  %-30s %-10s %6.2f  rows %d, matched %d\n",
			truncate(det.SheetName, 30), category, det.Score, det.DataRows, det.MatchedRows)
	}

	review := 0
	fmt.Fprintf(w, "\n=== ENTRIES (%d) ===\n", len(s.Entries))
	for _, entry := range s.Entries {
		marker := " "
		switch {
		case entry.IsManualMatch:
			marker = "M"
		case entry.MatchConfidence < threshold:
			marker = "?"
			review++
		}
		fmt.Fprintf(w, "%s %-20s %4d  %-40s -> %-50s %6.2f\n", marker,
			truncate(entry.SheetName, 20), entry.RowNumber, truncate(entry.Label, 40),
			truncate(entry.MatchedFieldID, 50), entry.MatchConfidence)
	}
	fmt.Fprintf(w, "\n%d entries need review (confidence below %.0f)\n", review, threshold)
	return nil
}

func title(category string) string {
	if c, ok := report.LookupCategory(category); ok && c.Title != "" {
		return c.Title
	}
	return category
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max-1])) + "…"
}
