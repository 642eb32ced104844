package exporter

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"golang-dsf-service/internal/report"
)

// Line is one exported value of a report: a figure with both periods or a
// single scalar such as a signaletic text.
type Line struct {
	Path  string
	Label string
	// Text is set for non-numeric values; N and N1 are then zero
	Text   string
	N      decimal.Decimal
	N1     decimal.Decimal
	Figure bool
}

// IsZero reports whether the line carries neither an amount nor text
func (l Line) IsZero() bool {
	return l.Text == "" && l.N.IsZero() && l.N1.IsZero()
}

// Lines flattens a report into exportable lines. Catalogued fields come first
// in declaration order with their labels; every other value follows sorted
// by path.
func Lines(category string, r report.Report) ([]Line, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", category, err)
	}
	var tree interface{}
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", category, err)
	}

	flat := make(map[string]Line)
	flatten(tree, nil, flat)

	out := make([]Line, 0, len(flat))
	for _, f := range report.Fields() {
		if f.Category != category {
			continue
		}
		l, ok := flat[f.Path]
		if !ok {
			continue
		}
		l.Label = f.Label
		out = append(out, l)
		delete(flat, f.Path)
	}

	rest := make([]string, 0, len(flat))
	for path := range flat {
		rest = append(rest, path)
	}
	sort.Strings(rest)
	for _, path := range rest {
		out = append(out, flat[path])
	}
	return out, nil
}

func flatten(v interface{}, segs []string, out map[string]Line) {
	path := strings.Join(segs, ".")
	switch node := v.(type) {
	case map[string]interface{}:
		if l, ok := figureLine(node); ok {
			l.Path = path
			out[path] = l
			return
		}
		for k, child := range node {
			flatten(child, append(append([]string(nil), segs...), k), out)
		}
	case []interface{}:
		for i, child := range node {
			flatten(child, append(append([]string(nil), segs...), fmt.Sprint(i)), out)
		}
	case nil:
	default:
		out[path] = scalarLine(path, node)
	}
}

// figureLine recognises the {"n": .., "n1": ..} encoding of a report.Figure
func figureLine(node map[string]interface{}) (Line, bool) {
	if len(node) != 2 {
		return Line{}, false
	}
	n, okN := node["n"]
	n1, okN1 := node["n1"]
	if !okN || !okN1 {
		return Line{}, false
	}
	dn, errN := toDecimal(n)
	dn1, errN1 := toDecimal(n1)
	if errN != nil || errN1 != nil {
		return Line{}, false
	}
	return Line{N: dn, N1: dn1, Figure: true}, true
}

func scalarLine(path string, v interface{}) Line {
	if d, err := toDecimal(v); err == nil {
		return Line{Path: path, N: d}
	}
	return Line{Path: path, Text: fmt.Sprint(v)}
}

func toDecimal(v interface{}) (decimal.Decimal, error) {
	switch x := v.(type) {
	case string:
		d, err := decimal.NewFromString(x)
		if err != nil {
			return decimal.Zero, err
		}
		// codes such as "0123" stay text
		if d.String() != x {
			return decimal.Zero, fmt.Errorf("not a canonical number: %q", x)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(x), nil
	default:
		return decimal.Zero, fmt.Errorf("not a number: %v", v)
	}
}
