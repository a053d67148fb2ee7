package postgres

import (
	"reflect"
	"sync"
)

// ExtractDBColumns lists the "db" tags of T in declaration order, flattening
// embedded structs. Repositories call it once when they are constructed.
func ExtractDBColumns[T any]() []string {
	var zero T
	fields := fieldsOf(reflect.TypeOf(zero))
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.column
	}
	return cols
}

// StructToMap converts a struct (or pointer to one) to column->value pairs
// for squirrel SetMap. Non-struct input yields nil.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	fields := fieldsOf(rv.Type())
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		out[f.column] = rv.FieldByIndex(f.index).Interface()
	}
	return out
}

type columnField struct {
	column string
	index  []int
}

// fieldCache maps reflect.Type to []columnField.
var fieldCache sync.Map

func fieldsOf(t reflect.Type) []columnField {
	if t == nil {
		return nil
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]columnField)
	}

	var fields []columnField
	if t.Kind() == reflect.Struct {
		fields = collectFields(t, nil)
	}
	fieldCache.Store(t, fields)
	return fields
}

func collectFields(t reflect.Type, prefix []int) []columnField {
	var out []columnField
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		index := append(append([]int(nil), prefix...), i)

		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			out = append(out, collectFields(f.Type, index)...)
			continue
		}

		tag := f.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		out = append(out, columnField{column: tag, index: index})
	}
	return out
}
