package kvsearch

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Record is a flat field map. A field holds a scalar (string, number, bool,
// fmt.Stringer) or a collection of scalars ([]string, []any, any slice).
type Record map[string]any

// ID returns the record's identifier stored under idField. ok is false when
// the field is missing or nil.
func (r Record) ID(idField string) (string, bool) {
	v, found := r[idField]
	if !found || v == nil {
		return "", false
	}
	return scalarString(v), true
}

// Values returns the textual values of field, one per collection element.
func (r Record) Values(field string) []string {
	v, found := r[field]
	if !found {
		return nil
	}
	return valueStrings(v)
}

func scalarString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// valueStrings fans a field value out into its elements. Scalars yield a
// single element; byte slices count as scalars.
func valueStrings(v any) []string {
	switch v := v.(type) {
	case nil:
		return []string{""}
	case string:
		return []string{v}
	case []byte:
		return []string{string(v)}
	case []string:
		return v
	case []any:
		result := make([]string, len(v))
		for i, e := range v {
			result[i] = scalarString(e)
		}
		return result
	case fmt.Stringer:
		return []string{v.String()}
	}

	rv := reflect.ValueOf(v)
	if k := rv.Kind(); k == reflect.Slice || k == reflect.Array {
		n := rv.Len()
		result := make([]string, n)
		for i := 0; i < n; i++ {
			result[i] = scalarString(rv.Index(i).Interface())
		}
		return result
	}
	return []string{scalarString(v)}
}

// FilterByString returns the records having at least one field whose textual
// value contains needle. The comparison is a raw substring match without any
// normalization; collection fields match if any element does.
func FilterByString(records []Record, needle string) []Record {
	var result []Record
	for _, r := range records {
		if recordContains(r, needle) {
			result = append(result, r)
		}
	}
	return result
}

func recordContains(r Record, needle string) bool {
	for _, v := range r {
		for _, s := range valueStrings(v) {
			if strings.Contains(s, needle) {
				return true
			}
		}
	}
	return false
}
