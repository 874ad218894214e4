// Copyright (c) Microsoft. All rights reserved.

package agents

import (
	"encoding/json"
	"reflect"
	"strings"
)

// GenerateSchema builds a JSON Schema for T using reflection.
// Struct fields honor the json tag for naming and the jsonschema tag for
// description, required and enum (values separated by |).
func GenerateSchema[T any]() json.RawMessage {
	t := reflect.TypeOf((*T)(nil)).Elem()
	b, _ := json.Marshal(schemaFor(t))
	return b
}

func schemaFor(t reflect.Type) map[string]any {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool:
		return map[string]any{"type": "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return map[string]any{"type": "integer"}
	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}
	case reflect.Slice, reflect.Array:
		return map[string]any{"type": "array", "items": schemaFor(t.Elem())}
	case reflect.Map:
		s := map[string]any{"type": "object"}
		if t.Key().Kind() == reflect.String {
			s["additionalProperties"] = schemaFor(t.Elem())
		}
		return s
	case reflect.Struct:
		return objectSchema(t)
	default:
		return map[string]any{"type": "string"}
	}
}

func objectSchema(t reflect.Type) map[string]any {
	properties := make(map[string]any, t.NumField())
	var required []string

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, ok := jsonFieldName(field)
		if !ok {
			continue
		}

		prop := schemaFor(field.Type)
		if applySchemaTag(prop, field.Tag.Get("jsonschema")) {
			required = append(required, name)
		}
		properties[name] = prop
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func jsonFieldName(field reflect.StructField) (string, bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name, true
	}
	return field.Name, true
}

// applySchemaTag merges a jsonschema struct tag into prop and reports
// whether the tag marks the field as required.
func applySchemaTag(prop map[string]any, tag string) (required bool) {
	if tag == "" {
		return false
	}
	for _, part := range strings.Split(tag, ",") {
		key, val, _ := strings.Cut(part, "=")
		switch strings.TrimSpace(key) {
		case "description":
			prop["description"] = strings.TrimSpace(val)
		case "required":
			required = true
		case "enum":
			var values []any
			for _, v := range strings.Split(val, "|") {
				values = append(values, strings.TrimSpace(v))
			}
			prop["enum"] = values
		}
	}
	return required
}
