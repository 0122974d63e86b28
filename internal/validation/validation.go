// Package validation checks inbound request bodies and provider output against
// embedded JSON schemas, collecting every failure before returning.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const rootField = "(root)"

// prohibitedContent blocks embedded markup and binary payloads pasted into resume text.
var prohibitedContent = regexp.MustCompile(`(?i)(<svg|<script|data:image/|application/pdf|base64,)`)

func init() {
	gojsonschema.FormatCheckers.Add("safe-text", safeTextChecker{})
}

type safeTextChecker struct{}

func (safeTextChecker) IsFormat(input interface{}) bool {
	s, ok := input.(string)
	if !ok {
		return true
	}
	return !prohibitedContent.MatchString(s)
}

// ContainsProhibited reports whether text matches the markup/binary denylist.
func ContainsProhibited(text string) bool {
	return prohibitedContent.MatchString(text)
}

// Error lists every field-level failure as "<field path>: <message>".
type Error struct {
	Errors []string
}

func (e *Error) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// Details extracts the field-level messages from err, if it carries any.
func Details(err error) []string {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Errors
	}
	return nil
}

// Schema validates raw JSON against a compiled schema and decodes it into T.
type Schema[T any] struct {
	name     string
	schema   *gojsonschema.Schema
	defaults func(*T)
}

// Compile builds a Schema from a JSON-schema document. defaults, when non-nil,
// fills optional fields after a successful decode.
func Compile[T any](name string, document []byte, defaults func(*T)) (*Schema[T], error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return nil, fmt.Errorf("compile %s schema: %w", name, err)
	}
	return &Schema[T]{name: name, schema: compiled, defaults: defaults}, nil
}

// MustCompile is like Compile but panics on an invalid schema document.
func MustCompile[T any](name string, document []byte, defaults func(*T)) *Schema[T] {
	s, err := Compile[T](name, document, defaults)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema[T]) Name() string {
	return s.name
}

// Validate returns the decoded value, or an *Error holding all schema violations.
func (s *Schema[T]) Validate(raw []byte) (T, error) {
	var out T

	if !json.Valid(raw) {
		return out, &Error{Errors: []string{rootField + ": must be valid JSON"}}
	}

	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return out, &Error{Errors: []string{fmt.Sprintf("%s: %v", rootField, err)}}
	}

	if !result.Valid() {
		return out, &Error{Errors: formatErrors(result.Errors())}
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return out, &Error{Errors: []string{fmt.Sprintf("%s: %v", rootField, err)}}
	}

	if s.defaults != nil {
		s.defaults(&out)
	}

	return out, nil
}

func formatErrors(resultErrors []gojsonschema.ResultError) []string {
	messages := make([]string, 0, len(resultErrors))
	seen := make(map[string]struct{}, len(resultErrors))

	for _, re := range resultErrors {
		msg := fieldPath(re) + ": " + describe(re)
		if _, dup := seen[msg]; dup {
			continue
		}
		seen[msg] = struct{}{}
		messages = append(messages, msg)
	}

	sort.Strings(messages)
	return messages
}

func fieldPath(re gojsonschema.ResultError) string {
	field := rootField
	if ctx := re.Context(); ctx != nil {
		field = strings.TrimPrefix(ctx.String(), rootField+".")
	}
	if re.Type() != "required" {
		return field
	}

	property, _ := re.Details()["property"].(string)
	if property == "" {
		return field
	}
	if field == "" || field == rootField {
		return property
	}
	return field + "." + property
}

func describe(re gojsonschema.ResultError) string {
	details := re.Details()

	switch re.Type() {
	case "required":
		return "is required"
	case "invalid_type":
		return fmt.Sprintf("must be of type %v", details["expected"])
	case "string_gte":
		return fmt.Sprintf("must be at least %v characters", details["min"])
	case "string_lte":
		return fmt.Sprintf("must be at most %v characters", details["max"])
	case "number_gte":
		return "must be greater than or equal to " + formatNumber(details["min"])
	case "number_lte":
		return "must be less than or equal to " + formatNumber(details["max"])
	case "array_max_items":
		return fmt.Sprintf("must contain at most %v items", details["max"])
	case "enum":
		return fmt.Sprintf("must be one of %v", details["allowed"])
	case "format":
		if details["format"] == "safe-text" {
			return "contains prohibited content (embedded markup or binary data)"
		}
	}

	return re.Description()
}

func formatNumber(v interface{}) string {
	switch n := v.(type) {
	case *big.Rat:
		return n.RatString()
	case *big.Float:
		return n.Text('f', -1)
	default:
		return fmt.Sprintf("%v", v)
	}
}
