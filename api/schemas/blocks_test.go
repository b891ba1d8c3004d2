package schemas_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"blocks-api/api/schemas"
	"blocks-api/types/dataclasses"
)

type BlockSerializerTestSuite struct {
	suite.Suite

	serializer *schemas.BlockSerializer
}

func TestBlockSerializerTestSuite(t *testing.T) {
	suite.Run(t, new(BlockSerializerTestSuite))
}

func (suite *BlockSerializerTestSuite) SetupTest() {
	suite.serializer = schemas.NewBlockSerializer()
}

func (suite *BlockSerializerTestSuite) validationErrors(body string, partial bool) map[string][]string {
	_, err := suite.serializer.Deserialize([]byte(body), partial)

	var validationError *schemas.ValidationError
	suite.Require().ErrorAs(err, &validationError)

	return validationError.Errors
}

func (suite *BlockSerializerTestSuite) TestDeserializeFull() {
	patch, err := suite.serializer.Deserialize(
		[]byte(`{"number": 5, "title": "five", "content": "body"}`),
		false,
	)
	suite.Nil(err)
	suite.Equal(
		dataclasses.Block{Number: 5, Title: "five", Content: "body"},
		patch.Block(),
	)
}

func (suite *BlockSerializerTestSuite) TestDeserializeOnlyRequired() {
	patch, err := suite.serializer.Deserialize([]byte(`{"number": -3}`), false)
	suite.Nil(err)
	suite.Require().NotNil(patch.Number)
	suite.Equal(int64(-3), *patch.Number)
	suite.Nil(patch.Title)
	suite.Nil(patch.Content)
}

func (suite *BlockSerializerTestSuite) TestDeserializeIgnoresIdAndUnknownFields() {
	patch, err := suite.serializer.Deserialize(
		[]byte(`{"id": "not-even-a-number", "number": 1, "colour": "red"}`),
		false,
	)
	suite.Nil(err)
	suite.Equal(dataclasses.Block{Number: 1}, patch.Block())
}

func (suite *BlockSerializerTestSuite) TestDeserializeIntegralFloat() {
	patch, err := suite.serializer.Deserialize([]byte(`{"number": 5.0}`), false)
	suite.Nil(err)
	suite.Equal(int64(5), *patch.Number)

	patch, err = suite.serializer.Deserialize([]byte(`{"number": 1e3}`), false)
	suite.Nil(err)
	suite.Equal(int64(1000), *patch.Number)
}

func (suite *BlockSerializerTestSuite) TestDeserializeMissingNumber() {
	suite.Equal(
		map[string][]string{"number": {"This field is required."}},
		suite.validationErrors(`{"title": "no number"}`, false),
	)
}

func (suite *BlockSerializerTestSuite) TestDeserializeEmptyBody() {
	suite.Equal(
		map[string][]string{"number": {"This field is required."}},
		suite.validationErrors("", false),
	)

	patch, err := suite.serializer.Deserialize([]byte("  "), true)
	suite.Nil(err)
	suite.Equal(dataclasses.BlockPatch{}, patch)
}

func (suite *BlockSerializerTestSuite) TestDeserializeInvalidNumber() {
	for _, body := range []string{
		`{"number": "x"}`,
		`{"number": 5.5}`,
		`{"number": true}`,
		`{"number": [1]}`,
	} {
		suite.Equal(
			map[string][]string{"number": {"A valid integer is required."}},
			suite.validationErrors(body, false),
			body,
		)
	}
}

func (suite *BlockSerializerTestSuite) TestDeserializeNumberOutOfRange() {
	suite.Equal(
		map[string][]string{"number": {"Ensure this value is a 64-bit integer."}},
		suite.validationErrors(`{"number": 1e30}`, false),
	)
}

func (suite *BlockSerializerTestSuite) TestDeserializeNullField() {
	suite.Equal(
		map[string][]string{"title": {"This field may not be null."}},
		suite.validationErrors(`{"number": 1, "title": null}`, false),
	)
}

func (suite *BlockSerializerTestSuite) TestDeserializeInvalidStrings() {
	errors := suite.validationErrors(`{"number": 1, "title": 3, "content": false}`, false)

	suite.Equal([]string{"Not a valid string."}, errors["title"])
	suite.Equal([]string{"Not a valid string."}, errors["content"])
}

func (suite *BlockSerializerTestSuite) TestDeserializeTitleTooLong() {
	body := `{"number": 1, "title": "` + strings.Repeat("a", schemas.BLOCK_TITLE_MAX_LENGTH+1) + `"}`

	suite.Equal(
		map[string][]string{"title": {"Ensure this field has no more than 255 characters."}},
		suite.validationErrors(body, false),
	)

	body = `{"number": 1, "title": "` + strings.Repeat("a", schemas.BLOCK_TITLE_MAX_LENGTH) + `"}`
	_, err := suite.serializer.Deserialize([]byte(body), false)
	suite.Nil(err)
}

func (suite *BlockSerializerTestSuite) TestDeserializePartial() {
	patch, err := suite.serializer.Deserialize([]byte(`{"title": "only title"}`), true)
	suite.Nil(err)
	suite.Nil(patch.Number)
	suite.Nil(patch.Content)
	suite.Require().NotNil(patch.Title)
	suite.Equal("only title", *patch.Title)

	suite.Equal(
		map[string][]string{"number": {"A valid integer is required."}},
		suite.validationErrors(`{"number": "x"}`, true),
	)
}

func (suite *BlockSerializerTestSuite) TestDeserializeNonObject() {
	suite.Equal(
		map[string][]string{"non_field_errors": {"Invalid data. Expected an object, but got array."}},
		suite.validationErrors(`[{"number": 1}]`, false),
	)
	suite.Equal(
		map[string][]string{"non_field_errors": {"Invalid data. Expected an object, but got number."}},
		suite.validationErrors(`5`, true),
	)
}

func (suite *BlockSerializerTestSuite) TestDeserializeMalformedJSON() {
	for _, body := range []string{`{"number": `, `{"number": 1} {}`, `nope`} {
		_, err := suite.serializer.Deserialize([]byte(body), false)

		var parseError *schemas.ParseError
		suite.ErrorAs(err, &parseError, body)
		suite.True(strings.HasPrefix(err.Error(), "JSON parse error - "), body)
	}
}

func (suite *BlockSerializerTestSuite) TestValidationErrorString() {
	err := &schemas.ValidationError{Errors: map[string][]string{
		"title":  {"Not a valid string."},
		"number": {"This field is required."},
	}}

	suite.Equal(
		"invalid block: number: This field is required.; title: Not a valid string.",
		err.Error(),
	)
}

func (suite *BlockSerializerTestSuite) TestSerializeMany() {
	suite.Equal([]dataclasses.Block{}, suite.serializer.SerializeMany(nil))

	blocks := []dataclasses.Block{{Id: 1, Number: 2}}
	suite.Equal(blocks, suite.serializer.SerializeMany(blocks))
}
