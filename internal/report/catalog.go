package report

import (
	"strings"
	"sync"
)

// formHeaderRows is the number of title rows above the first line on the
// official statement forms
const formHeaderRows = 3

type fieldSpec struct {
	path        string
	label       string
	accounts    []string
	expectedRow int
}

func layoutField(path string, l lineSpec, index int) fieldSpec {
	return fieldSpec{path: path, label: l.label, accounts: l.accounts, expectedRow: formHeaderRows + index + 1}
}

// Field is a destination a legacy declaration row can be matched to
type Field struct {
	ID              string   `json:"id"`
	Category        string   `json:"category"`
	Path            string   `json:"path"`
	Label           string   `json:"label"`
	AccountPatterns []string `json:"accountPatterns,omitempty"`
	SheetPatterns   []string `json:"sheetPatterns,omitempty"`
	ExpectedRow     int      `json:"expectedRow,omitempty"`
}

var (
	catalogOnce sync.Once
	catalog     []Field
	catalogByID map[string]Field
)

// Fields returns the catalog of importable fields across all categories
func Fields() []Field {
	catalogOnce.Do(buildCatalog)
	out := make([]Field, len(catalog))
	copy(out, catalog)
	return out
}

// LookupField finds a field by id
func LookupField(id string) (Field, bool) {
	catalogOnce.Do(buildCatalog)
	f, ok := catalogByID[id]
	return f, ok
}

// FieldID joins a category and a path into a field id
func FieldID(category, path string) string {
	return category + "." + path
}

// SplitFieldID separates a field id into category and path
func SplitFieldID(id string) (category, path string, ok bool) {
	i := strings.Index(id, ".")
	if i <= 0 || i == len(id)-1 {
		return "", "", false
	}
	return id[:i], id[i+1:], true
}

func buildCatalog() {
	catalogByID = make(map[string]Field)
	for _, c := range categories {
		if c.fields == nil {
			continue
		}
		for _, spec := range c.fields() {
			f := Field{
				ID:              FieldID(c.ID, spec.path),
				Category:        c.ID,
				Path:            spec.path,
				Label:           spec.label,
				AccountPatterns: accountPatterns(spec.accounts),
				SheetPatterns:   c.Sheets,
				ExpectedRow:     spec.expectedRow,
			}
			catalog = append(catalog, f)
			catalogByID[f.ID] = f
		}
	}
}

// accountPatterns turns account prefixes into wildcard patterns: 601 -> 601x
func accountPatterns(prefixes []string) []string {
	if len(prefixes) == 0 {
		return nil
	}
	out := make([]string, len(prefixes))
	for i, p := range prefixes {
		out[i] = p + "x"
	}
	return out
}
