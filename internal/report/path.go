package report

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"golang-dsf-service/pkg/errors"
)

// Destination paths address a leaf of a report by walking its JSON shape:
// struct fields by JSON name, map entries by key and fixed arrays by index.
// A trailing "n" or "n1" picks one half of a Figure; without it the period
// given to Assign decides. Maps tagged dsf:"open" accept keys that do not exist
// yet; every other map rejects them.

var (
	figureType  = reflect.TypeOf(Figure{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
)

// AssignOptions tunes Assign
type AssignOptions struct {
	Period Period
	// AllowDerived lets imported values overwrite totals. Mappings never do.
	AllowDerived bool
}

// Assign writes v at path inside r
func Assign(r Report, path string, v decimal.Decimal, opts AssignOptions) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	if !opts.AllowDerived && r.derived(trimSelector(segs)) {
		return unknownPath(path, "derived field cannot be a destination")
	}

	leaf, selector, err := locate(reflect.ValueOf(r), segs, true)
	if err != nil {
		return unknownPath(path, err.Error())
	}

	period := opts.Period
	switch selector {
	case "n":
		period = PeriodN
	case "n1":
		period = PeriodN1
	}

	switch leaf.Type() {
	case figureType:
		f := leaf.Addr().Interface().(*Figure)
		if period == PeriodN1 {
			f.N1 = v
		} else {
			f.N = v
		}
	case decimalType:
		// single amounts have no comparative column
		if period == PeriodN {
			leaf.Set(reflect.ValueOf(v))
		}
	default:
		return unknownPath(path, "path does not address an amount")
	}
	return nil
}

// Value reads the amount at path. Figures yield N unless the path ends in n1.
func Value(r Report, path string) (decimal.Decimal, error) {
	segs, err := splitPath(path)
	if err != nil {
		return decimal.Zero, err
	}
	leaf, selector, err := locate(reflect.ValueOf(r), segs, false)
	if err != nil {
		return decimal.Zero, unknownPath(path, err.Error())
	}
	switch leaf.Type() {
	case figureType:
		f := leaf.Interface().(Figure)
		if selector == "n1" {
			return f.N1, nil
		}
		return f.N, nil
	case decimalType:
		return leaf.Interface().(decimal.Decimal), nil
	default:
		return decimal.Zero, unknownPath(path, "path does not address an amount")
	}
}

// IsDerived reports whether path names a computed total of r
func IsDerived(r Report, path string) bool {
	segs, err := splitPath(path)
	if err != nil {
		return false
	}
	return r.derived(trimSelector(segs))
}

// Figures visits every Figure of r in a stable order
func Figures(r Report, fn func(path string, f *Figure)) {
	walkFigures(reflect.ValueOf(r), nil, func(segs []string, f *Figure) {
		fn(strings.Join(segs, "."), f)
	})
}

// mergePrior copies the current values of prev into the N1 half of cur
func mergePrior(cur, prev Report) {
	target := reflect.ValueOf(cur)
	walkFigures(reflect.ValueOf(prev), nil, func(segs []string, f *Figure) {
		leaf, _, err := locate(target, segs, true)
		if err != nil || leaf.Type() != figureType {
			return
		}
		leaf.Addr().Interface().(*Figure).N1 = f.N
	})
}

func splitPath(path string) ([]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, unknownPath(path, "empty path")
	}
	segs := strings.Split(path, ".")
	for _, s := range segs {
		if strings.TrimSpace(s) == "" {
			return nil, unknownPath(path, "empty path segment")
		}
	}
	return segs, nil
}

func trimSelector(segs []string) []string {
	if n := len(segs); n > 1 && (segs[n-1] == "n" || segs[n-1] == "n1") {
		return segs[:n-1]
	}
	return segs
}

func unknownPath(path, reason string) error {
	return errors.New(errors.CategoryMapping, errors.CodeUnknownPath,
		fmt.Sprintf("unknown destination path '%s': %s", path, reason)).
		WithContext("path", path)
}

// locate walks segs from root. With create set, missing keys of open maps are
// added. It returns the addressed value and the n/n1 selector if one was used.
func locate(root reflect.Value, segs []string, create bool) (reflect.Value, string, error) {
	cur := root
	open := false

	for i, seg := range segs {
		cur = deref(cur)
		if !cur.IsValid() {
			return reflect.Value{}, "", fmt.Errorf("nil value before '%s'", seg)
		}

		if cur.Type() == figureType {
			if i == len(segs)-1 && (seg == "n" || seg == "n1") {
				return cur, seg, nil
			}
			return reflect.Value{}, "", fmt.Errorf("figure has no field '%s'", seg)
		}

		switch cur.Kind() {
		case reflect.Struct:
			field, tag, ok := fieldByJSONName(cur, seg)
			if !ok {
				return reflect.Value{}, "", fmt.Errorf("no field '%s'", seg)
			}
			cur = field
			open = tag == "open"

		case reflect.Map:
			elem, ok := mapEntry(cur, seg)
			if !ok {
				if !open || !create {
					return reflect.Value{}, "", fmt.Errorf("no entry '%s'", seg)
				}
				if cur.IsNil() {
					cur.Set(reflect.MakeMap(cur.Type()))
				}
				elem = reflect.New(cur.Type().Elem().Elem())
				cur.SetMapIndex(reflect.ValueOf(seg), elem)
			}
			cur = elem
			open = false

		case reflect.Array, reflect.Slice:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= cur.Len() {
				return reflect.Value{}, "", fmt.Errorf("index '%s' out of range", seg)
			}
			cur = cur.Index(idx)
			open = false

		default:
			return reflect.Value{}, "", fmt.Errorf("'%s' has no children", strings.Join(segs[:i], "."))
		}
	}

	cur = deref(cur)
	if !cur.IsValid() {
		return reflect.Value{}, "", fmt.Errorf("nil leaf")
	}
	return cur, "", nil
}

func deref(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func fieldByJSONName(v reflect.Value, name string) (reflect.Value, string, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		jsonName := jsonFieldName(sf)
		if jsonName == "-" {
			continue
		}
		if jsonName == name || strings.EqualFold(jsonName, name) {
			return v.Field(i), sf.Tag.Get("dsf"), true
		}
	}
	return reflect.Value{}, "", false
}

func jsonFieldName(sf reflect.StructField) string {
	tag := sf.Tag.Get("json")
	if tag == "" {
		return sf.Name
	}
	return strings.Split(tag, ",")[0]
}

func mapEntry(m reflect.Value, key string) (reflect.Value, bool) {
	if m.IsNil() {
		return reflect.Value{}, false
	}
	if elem := m.MapIndex(reflect.ValueOf(key)); elem.IsValid() {
		return elem, true
	}
	for _, k := range m.MapKeys() {
		if strings.EqualFold(k.String(), key) {
			return m.MapIndex(k), true
		}
	}
	return reflect.Value{}, false
}

func walkFigures(v reflect.Value, segs []string, fn func([]string, *Figure)) {
	v = deref(v)
	if !v.IsValid() {
		return
	}
	if v.Type() == figureType {
		if v.CanAddr() {
			fn(segs, v.Addr().Interface().(*Figure))
		}
		return
	}

	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			name := jsonFieldName(sf)
			if !sf.IsExported() || name == "-" {
				continue
			}
			walkFigures(v.Field(i), appendSeg(segs, name), fn)
		}
	case reflect.Map:
		keys := make([]string, 0, v.Len())
		for _, k := range v.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		for _, k := range keys {
			walkFigures(v.MapIndex(reflect.ValueOf(k)), appendSeg(segs, k), fn)
		}
	case reflect.Array, reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			walkFigures(v.Index(i), appendSeg(segs, strconv.Itoa(i)), fn)
		}
	}
}

func appendSeg(segs []string, seg string) []string {
	out := make([]string, len(segs)+1)
	copy(out, segs)
	out[len(segs)] = seg
	return out
}
