package postgres

import (
	"reflect"
	"sync"
)

// column maps a "db" tag to the field index path that holds it.
// Paths descend through embedded structs such as entity.Document.
type column struct {
	name  string
	index []int
}

var columnPlans sync.Map // reflect.Type -> []column

// columnsOf returns the cached column plan of a struct type, in field order.
// Embedded pointer structs are skipped; entities embed their base by value.
func columnsOf(t reflect.Type) []column {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := columnPlans.Load(t); ok {
		return cached.([]column)
	}

	var plan []column
	if t.Kind() == reflect.Struct {
		plan = appendColumns(plan, t, nil)
	}
	columnPlans.Store(t, plan)
	return plan
}

func appendColumns(plan []column, t reflect.Type, prefix []int) []column {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		path := append(append([]int(nil), prefix...), i)

		if field.Anonymous {
			if field.Type.Kind() == reflect.Struct {
				plan = appendColumns(plan, field.Type, path)
			}
			continue
		}

		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		plan = append(plan, column{name: tag, index: path})
	}
	return plan
}

// ExtractDBColumns lists the "db" columns of T in declaration order,
// embedded struct columns first where they are declared first.
func ExtractDBColumns[T any]() []string {
	plan := columnsOf(reflect.TypeOf((*T)(nil)).Elem())
	cols := make([]string, len(plan))
	for i, c := range plan {
		cols[i] = c.name
	}
	return cols
}

// StructToMap converts a struct (or pointer to one) into a column -> value map
// for squirrel SetMap. Non-struct values yield nil.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	plan := columnsOf(rv.Type())
	res := make(map[string]any, len(plan))
	for _, c := range plan {
		res[c.name] = rv.FieldByIndex(c.index).Interface()
	}
	return res
}
