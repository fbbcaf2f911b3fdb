package schema

import "errors"

// ErrorKind discriminates schema loading failures.
type ErrorKind string

// Schema error kinds.
const (
	ErrJSONMalformed               ErrorKind = "json_malformed"
	ErrMissingField                ErrorKind = "missing_field"
	ErrUnknownPropertyType         ErrorKind = "unknown_property_type"
	ErrDanglingLabelInRelationship ErrorKind = "dangling_label_in_relationship"
	ErrDanglingRelType             ErrorKind = "dangling_rel_type_in_relationship"
	ErrDuplicatePropertyName       ErrorKind = "duplicate_property_name"
)

// ErrInvalidSchema is the sentinel all schema loading errors wrap, so callers
// can test the category with errors.Is.
var ErrInvalidSchema = errors.New("schema: invalid schema")

// Error is a structured schema loading failure.
type Error struct {
	Kind ErrorKind `json:"kind"`
	// Path is the JSON path for missing-field errors.
	Path string `json:"path,omitempty"`
	// Label names the offending label or relationship type.
	Label string `json:"label,omitempty"`
	// Property names the offending property.
	Property string `json:"property,omitempty"`
	// Tag is the unrecognized type tag.
	Tag     string `json:"tag,omitempty"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return "schema: " + e.Message
}

// Is makes errors.Is(err, ErrInvalidSchema) hold for every *Error.
func (e *Error) Is(target error) bool {
	return target == ErrInvalidSchema
}
