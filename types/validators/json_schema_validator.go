package validators

import (
	"github.com/xeipuuv/gojsonschema"
)

const (
	// Field errors not bound to a single property are reported under this key.
	NON_FIELD_ERRORS = "non_field_errors"

	rootField = "(root)"
)

type JSONSchemaValidator struct {
}

func (b *JSONSchemaValidator) ValidateSchema(schemaString string) (*gojsonschema.Schema, interface{}, error) {
	schemaLoader := gojsonschema.NewStringLoader(schemaString)
	schemaPtr, err := gojsonschema.NewSchema(schemaLoader)
	schema, _ := schemaLoader.LoadJSON()

	return schemaPtr, schema, err
}

// ErrorField is the property a validation error belongs to.
func ErrorField(resultError gojsonschema.ResultError) string {
	if resultError.Type() == "required" {
		if property, ok := resultError.Details()["property"].(string); ok {
			return property
		}
	}

	field := resultError.Field()
	if field == "" || field == rootField {
		return NON_FIELD_ERRORS
	}

	return field
}

// FieldErrors groups the errors of result by property, rendering each with message.
func FieldErrors(
	result *gojsonschema.Result,
	message func(gojsonschema.ResultError) string,
) map[string][]string {
	fieldErrors := make(map[string][]string)
	if result == nil || result.Valid() {
		return fieldErrors
	}

	for _, resultError := range result.Errors() {
		field := ErrorField(resultError)
		fieldErrors[field] = append(fieldErrors[field], message(resultError))
	}

	return fieldErrors
}
