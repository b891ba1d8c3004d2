package schemas

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"blocks-api/types/dataclasses"
	"blocks-api/types/validators"
)

const (
	BLOCK_TITLE_MAX_LENGTH = 255

	blockPropertiesSchema = `{
		"number": {
			"description": "Ordering key of the block",
			"type": "integer"
		},
		"title": {
			"description": "Title of the block",
			"type": "string",
			"maxLength": 255
		},
		"content": {
			"description": "Free-form content of the block",
			"type": "string"
		}
	}`
)

// BlockSchemaString is the schema of a create or full update body.
var BlockSchemaString = fmt.Sprintf(`{
	"type": "object",
	"properties": %s,
	"required": ["number"]
}`, blockPropertiesSchema)

// BlockPartialSchemaString is the schema of a partial update body.
var BlockPartialSchemaString = fmt.Sprintf(`{
	"type": "object",
	"properties": %s
}`, blockPropertiesSchema)

// ValidationError maps a field name to its error messages.
type ValidationError struct {
	Errors map[string][]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for field, messages := range e.Errors {
		fields = append(fields, fmt.Sprintf("%s: %s", field, strings.Join(messages, " ")))
	}
	sort.Strings(fields)

	return "invalid block: " + strings.Join(fields, "; ")
}

// ParseError is returned for bodies that are not JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("JSON parse error - %s", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// BlockSerializer converts between request bodies and Block values.
type BlockSerializer struct {
	fullSchema    *gojsonschema.Schema
	partialSchema *gojsonschema.Schema
}

func NewBlockSerializer() *BlockSerializer {
	validator := &validators.JSONSchemaValidator{}

	fullSchema, _, err := validator.ValidateSchema(BlockSchemaString)
	if err != nil {
		panic(err)
	}
	partialSchema, _, err := validator.ValidateSchema(BlockPartialSchemaString)
	if err != nil {
		panic(err)
	}

	return &BlockSerializer{
		fullSchema:    fullSchema,
		partialSchema: partialSchema,
	}
}

// Deserialize validates body and returns the submitted writable fields. With
// partial set, no field is required.
func (s *BlockSerializer) Deserialize(body []byte, partial bool) (dataclasses.BlockPatch, error) {
	var patch dataclasses.BlockPatch

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		body = []byte("{}")
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var data interface{}
	if err := decoder.Decode(&data); err != nil {
		return patch, &ParseError{Err: err}
	}
	if _, err := decoder.Token(); err != io.EOF {
		return patch, &ParseError{Err: fmt.Errorf("unexpected data after top-level value")}
	}

	fields, ok := data.(map[string]interface{})
	if !ok {
		return patch, &ValidationError{Errors: map[string][]string{
			validators.NON_FIELD_ERRORS: {
				fmt.Sprintf("Invalid data. Expected an object, but got %s.", jsonTypeName(data)),
			},
		}}
	}

	schema := s.fullSchema
	if partial {
		schema = s.partialSchema
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(fields))
	if err != nil {
		return patch, err
	}
	if !result.Valid() {
		return patch, &ValidationError{
			Errors: validators.FieldErrors(result, blockErrorMessage),
		}
	}

	if value, ok := fields["number"]; ok {
		number, ok := toInt64(value)
		if !ok {
			return patch, &ValidationError{Errors: map[string][]string{
				"number": {"Ensure this value is a 64-bit integer."},
			}}
		}
		patch.Number = &number
	}
	if value, ok := fields["title"].(string); ok {
		patch.Title = &value
	}
	if value, ok := fields["content"].(string); ok {
		patch.Content = &value
	}

	return patch, nil
}

// Serialize returns the wire representation of block.
func (s *BlockSerializer) Serialize(block dataclasses.Block) dataclasses.Block {
	return block
}

// SerializeMany never returns nil, so an empty table encodes as [].
func (s *BlockSerializer) SerializeMany(blocks []dataclasses.Block) []dataclasses.Block {
	if blocks == nil {
		return make([]dataclasses.Block, 0)
	}

	result := make([]dataclasses.Block, 0, len(blocks))
	for _, block := range blocks {
		result = append(result, s.Serialize(block))
	}

	return result
}

func blockErrorMessage(resultError gojsonschema.ResultError) string {
	field := validators.ErrorField(resultError)

	switch resultError.Type() {
	case "required":
		return "This field is required."
	case "invalid_type":
		if resultError.Value() == nil {
			return "This field may not be null."
		}
		switch field {
		case "number":
			return "A valid integer is required."
		case "title", "content":
			return "Not a valid string."
		}
	case "string_lte":
		return fmt.Sprintf(
			"Ensure this field has no more than %d characters.",
			BLOCK_TITLE_MAX_LENGTH,
		)
	}

	return resultError.Description()
}

func toInt64(value interface{}) (int64, bool) {
	number, ok := value.(json.Number)
	if !ok {
		return 0, false
	}

	if n, err := number.Int64(); err == nil {
		return n, true
	}

	// Integral values written with a fraction or exponent, e.g. 5.0 or 1e3.
	rat, ok := new(big.Rat).SetString(number.String())
	if !ok || !rat.IsInt() || !rat.Num().IsInt64() {
		return 0, false
	}

	return rat.Num().Int64(), true
}

func jsonTypeName(value interface{}) string {
	switch value.(type) {
	case []interface{}:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	}

	return fmt.Sprintf("%T", value)
}
