package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ConsultationSchema governs a consultation submission: a pet profile plus
// the free-text symptom description.
const ConsultationSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["pet", "symptoms"],
	"properties": {
		"pet": {
			"type": "object",
			"required": ["name", "species", "age", "weight"],
			"properties": {
				"name":    {"type": "string", "minLength": 1, "pattern": "\\S"},
				"species": {"type": "string", "enum": ["dog", "cat", "other"]},
				"age":     {"type": "integer", "minimum": 0},
				"weight":  {"type": "number", "exclusiveMinimum": 0}
			}
		},
		"symptoms": {"type": "string", "minLength": 1, "pattern": "\\S"}
	}
}`

var consultationSchemaLoader = gojsonschema.NewStringLoader(ConsultationSchema)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ValidateConsultation validates a consultation submission document.
func ValidateConsultation(document interface{}) (*ValidationResult, error) {
	return validate(consultationSchemaLoader, document)
}

func validate(schema gojsonschema.JSONLoader, document interface{}) (*ValidationResult, error) {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewGoLoader(document))
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, re := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   fieldOf(re),
			Message: re.Description(),
			Code:    strings.ToUpper(re.Type()),
		})
	}
	return out, nil
}

// fieldOf names the offending property, including the missing property for
// "required" errors which gojsonschema reports against the parent.
func fieldOf(re gojsonschema.ResultError) string {
	field := re.Field()
	if re.Type() == "required" {
		if prop, ok := re.Details()["property"].(string); ok {
			if field == "(root)" || field == "" {
				return prop
			}
			return field + "." + prop
		}
	}
	return field
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// Fields lists the offending fields in report order.
func (vr *ValidationResult) Fields() []string {
	fields := make([]string, 0, len(vr.Errors))
	for _, err := range vr.Errors {
		fields = append(fields, err.Field)
	}
	return fields
}
