package utils

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
)

var ColumnTag = "db"

// StructTagValues lists the column names of a struct's `db` tags, skipping
// untagged fields and "-". Embedded structs without a tag are flattened.
func StructTagValues(input any, omit ...string) []string {

	targetValue := reflect.ValueOf(input)
	if targetValue.Kind() == reflect.Ptr {
		targetValue = targetValue.Elem()
	}

	if targetValue.Kind() != reflect.Struct {
		panic("input must be a pointer to a struct or a struct")
	}

	targetType := targetValue.Type()

	result := make([]string, 0, targetValue.NumField())

	for i := 0; i < targetValue.NumField(); i++ {
		field := targetType.Field(i)

		if field.PkgPath != "" {
			continue
		}

		tagValue := field.Tag.Get(ColumnTag)
		if tagValue == "" && field.Anonymous && field.Type.Kind() == reflect.Struct {
			result = append(result, StructTagValues(targetValue.Field(i).Interface(), omit...)...)
			continue
		}

		if tagValue == "" || tagValue == "-" || slices.Contains(omit, tagValue) {
			continue
		}

		result = append(result, tagValue)

	}

	return result

}

// StructToMap maps column name to field value, leaving out any omitted columns.
// Embedded structs are flattened the same way as in StructTagValues.
func StructToMap(input any, omit ...string) map[string]any {

	result := make(map[string]any)

	itemValue := reflect.ValueOf(input)
	if itemValue.Kind() == reflect.Ptr {
		itemValue = itemValue.Elem()
	}

	if itemValue.Kind() != reflect.Struct {
		panic("input must be a pointer to a struct or a struct")
	}

	itemType := itemValue.Type()

	for i := 0; i < itemValue.NumField(); i++ {
		field := itemType.Field(i)

		if field.PkgPath != "" {
			continue
		}

		tagValue := field.Tag.Get(ColumnTag)
		if tagValue == "" && field.Anonymous && field.Type.Kind() == reflect.Struct {
			maps.Copy(result, StructToMap(itemValue.Field(i).Interface(), omit...))
			continue
		}

		if tagValue == "" || tagValue == "-" || slices.Contains(omit, tagValue) {
			continue
		}

		result[tagValue] = itemValue.Field(i).Interface()

	}

	return result

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
