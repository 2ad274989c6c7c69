package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// Columns lists the db-tagged exported fields of T in declaration order.
func Columns[T any]() ([]string, error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%s is not a struct", typ)
	}
	columns, _ := taggedFields(typ)
	if len(columns) == 0 {
		return nil, fmt.Errorf("%s has no db columns", typ)
	}
	return columns, nil
}

// UpsertModels feeds one row per model into an UpsertBuilder keyed on key.
func UpsertModels[T any](table, key string, models []T, touch ...string) (string, []any, error) {
	columns, err := Columns[T]()
	if err != nil {
		return "", nil, err
	}
	_, fields := taggedFields(reflect.TypeOf((*T)(nil)).Elem())

	builder := UpsertInto(table, key).Columns(columns...).Touch(touch...)
	for _, model := range models {
		value := reflect.ValueOf(model)
		row := make([]any, len(fields))
		for i, field := range fields {
			row[i] = value.Field(field).Interface()
		}
		builder.Row(row...)
	}
	return builder.ToSQL()
}

func taggedFields(typ reflect.Type) ([]string, []int) {
	var columns []string
	var fields []int
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		name = strings.TrimSpace(name)
		if name == "" || name == "-" {
			continue
		}
		columns = append(columns, name)
		fields = append(fields, i)
	}
	return columns, fields
}
