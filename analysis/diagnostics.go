package analysis

import "fmt"

// DiagnosticKind tags one validation failure mode. The set is the wire
// surface language bindings re-export; keep values stable.
type DiagnosticKind string

// Diagnostic kinds.
const (
	DiagInvalidNodeLabel             DiagnosticKind = "invalid_node_label"
	DiagInvalidRelationshipType      DiagnosticKind = "invalid_relationship_type"
	DiagInvalidNodeProperty          DiagnosticKind = "invalid_node_property"
	DiagInvalidRelationshipProperty  DiagnosticKind = "invalid_relationship_property"
	DiagInvalidPropertyAccess        DiagnosticKind = "invalid_property_access"
	DiagInvalidPropertyName          DiagnosticKind = "invalid_property_name"
	DiagUndefinedVariable            DiagnosticKind = "undefined_variable"
	DiagTypeMismatch                 DiagnosticKind = "type_mismatch"
	DiagInvalidRelationship          DiagnosticKind = "invalid_relationship"
	DiagInvalidRelationshipDirection DiagnosticKind = "invalid_relationship_direction"
	DiagInvalidLabel                 DiagnosticKind = "invalid_label"
)

// Diagnostic is one structured validation failure. Diagnostics accumulate
// and are never fatal; an empty list means the query is schema-valid.
type Diagnostic struct {
	Kind       DiagnosticKind `json:"kind"`
	Message    string         `json:"message"`
	Label      string         `json:"label,omitempty"`
	RelType    string         `json:"rel_type,omitempty"`
	Property   string         `json:"property,omitempty"`
	Variable   string         `json:"variable,omitempty"`
	Context    string         `json:"context,omitempty"`
	StartLabel string         `json:"start_label,omitempty"`
	EndLabel   string         `json:"end_label,omitempty"`
	Expected   string         `json:"expected,omitempty"`
	Got        string         `json:"got,omitempty"`
}

// String returns the human-readable message.
func (d Diagnostic) String() string {
	return d.Message
}

func invalidNodeLabel(label string) Diagnostic {
	return Diagnostic{
		Kind:    DiagInvalidNodeLabel,
		Label:   label,
		Message: fmt.Sprintf("label %q not in schema", label),
	}
}

func invalidRelationshipType(relType string) Diagnostic {
	return Diagnostic{
		Kind:    DiagInvalidRelationshipType,
		RelType: relType,
		Message: fmt.Sprintf("relationship type %q not in schema", relType),
	}
}

func invalidNodeProperty(label, property string) Diagnostic {
	return Diagnostic{
		Kind:     DiagInvalidNodeProperty,
		Label:    label,
		Property: property,
		Message:  fmt.Sprintf("property %q not declared on label %q", property, label),
	}
}

func invalidRelationshipProperty(relType, property string) Diagnostic {
	return Diagnostic{
		Kind:     DiagInvalidRelationshipProperty,
		RelType:  relType,
		Property: property,
		Message:  fmt.Sprintf("property %q not declared on relationship type %q", property, relType),
	}
}

func invalidPropertyAccess(access PropertyAccess) Diagnostic {
	return Diagnostic{
		Kind:     DiagInvalidPropertyAccess,
		Variable: access.Variable,
		Property: access.Property,
		Context:  string(access.Context),
		Message:  fmt.Sprintf("property %q accessed via %q in %s does not exist anywhere in the schema", access.Property, access.Variable, access.Context),
	}
}

func undefinedVariable(name string) Diagnostic {
	return Diagnostic{
		Kind:     DiagUndefinedVariable,
		Variable: name,
		Message:  fmt.Sprintf("variable %q is not defined", name),
	}
}

func invalidRelationship(start, relType, end string) Diagnostic {
	return Diagnostic{
		Kind:       DiagInvalidRelationship,
		StartLabel: start,
		RelType:    relType,
		EndLabel:   end,
		Message:    fmt.Sprintf("relationship (:%s)-[:%s]->(:%s) not in schema", start, relType, end),
	}
}

func invalidRelationshipDirection(start, relType, end string) Diagnostic {
	return Diagnostic{
		Kind:       DiagInvalidRelationshipDirection,
		StartLabel: start,
		RelType:    relType,
		EndLabel:   end,
		Message:    fmt.Sprintf("relationship (:%s)-[:%s]->(:%s) exists in the schema but the pattern traverses it in the opposite direction", start, relType, end),
	}
}

func typeMismatch(owner string, ownerRel bool, property, expected, got string) Diagnostic {
	d := Diagnostic{
		Kind:     DiagTypeMismatch,
		Property: property,
		Expected: expected,
		Got:      got,
	}
	if ownerRel {
		d.RelType = owner
		d.Message = fmt.Sprintf("property %q on relationship type %q expects %s, got %s", property, owner, expected, got)
	} else {
		d.Label = owner
		d.Message = fmt.Sprintf("property %q on label %q expects %s, got %s", property, owner, expected, got)
	}
	return d
}
