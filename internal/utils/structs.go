package utils

import (
	"fmt"
	"reflect"
	"slices"
)

var ColumnTag = "db"

// StructTagValues lists the column names of a db-tagged struct in field
// order, skipping any name in exclude.
func StructTagValues(input any, exclude ...string) []string {
	t := structType(input)

	result := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name, ok := columnName(t.Field(i))
		if !ok || slices.Contains(exclude, name) {
			continue
		}
		result = append(result, name)
	}

	return result
}

// StructToMap maps column names to field values, the shape squirrel's SetMap
// expects.
func StructToMap(input any, exclude ...string) map[string]any {
	v := reflect.ValueOf(input)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	t := structType(input)

	result := make(map[string]any, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name, ok := columnName(t.Field(i))
		if !ok || slices.Contains(exclude, name) {
			continue
		}
		result[name] = v.Field(i).Interface()
	}

	return result
}

func structType(input any) reflect.Type {
	t := reflect.TypeOf(input)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		panic("input must be a pointer to a struct or a struct")
	}
	return t
}

func columnName(f reflect.StructField) (string, bool) {
	if f.PkgPath != "" {
		return "", false
	}
	tag := f.Tag.Get(ColumnTag)
	if tag == "" || tag == "-" {
		return "", false
	}
	return tag, true
}

func ErrorWrapOrNil(err error, msg string) error {
	if err == nil {
		return nil
	}

	if msg == "" {
		return err
	}

	return fmt.Errorf("%s: %w", msg, err)

}
