package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"
)

// rawProperty accepts both property-declaration dialects:
// {"name": ..., "neo4j_type": ...} and the legacy {"property": ..., "type": ...}.
type rawProperty struct {
	Name               string   `json:"name"`
	LegacyName         string   `json:"property"`
	Type               string   `json:"neo4j_type"`
	LegacyType         string   `json:"type"`
	EnumValues         []string `json:"enum_values,omitempty"`
	MinValue           *float64 `json:"min_value,omitempty"`
	MaxValue           *float64 `json:"max_value,omitempty"`
	DistinctValueCount *int64   `json:"distinct_value_count,omitempty"`
	ExampleValues      []string `json:"example_values,omitempty"`
}

// rawRelationship accepts both "rel_type" and the legacy "type" key.
type rawRelationship struct {
	Start      string `json:"start"`
	RelType    string `json:"rel_type"`
	LegacyType string `json:"type"`
	End        string `json:"end"`
}

// rawSchema accepts both top-level key dialects (node_props / nodeProps).
type rawSchema struct {
	NodeProps       map[string][]rawProperty `json:"node_props"`
	LegacyNodeProps map[string][]rawProperty `json:"nodeProps"`
	RelProps        map[string][]rawProperty `json:"rel_props"`
	LegacyRelProps  map[string][]rawProperty `json:"relProps"`
	Relationships   []rawRelationship        `json:"relationships"`
	Metadata        *Metadata                `json:"metadata"`
}

// Load parses a JSON schema document and enforces its internal consistency:
// relationship endpoints must name declared labels, relationship types must
// be declared, property names must be unique per label/type, and type tags
// must be recognized.
func Load(data []byte) (*Schema, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var raw rawSchema
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &Error{
			Kind:    ErrJSONMalformed,
			Message: fmt.Sprintf("malformed JSON: %v", err),
		}
	}

	nodeRaw := raw.NodeProps
	if nodeRaw == nil {
		nodeRaw = raw.LegacyNodeProps
	}
	if nodeRaw == nil {
		return nil, &Error{
			Kind:    ErrMissingField,
			Path:    "node_props",
			Message: "missing required field node_props",
		}
	}

	relRaw := raw.RelProps
	if relRaw == nil {
		relRaw = raw.LegacyRelProps
	}
	if relRaw == nil {
		relRaw = map[string][]rawProperty{}
	}

	s := &Schema{
		NodeProps:     make(map[string][]Property, len(nodeRaw)),
		RelProps:      make(map[string][]Property, len(relRaw)),
		Relationships: make([]Relationship, 0, len(raw.Relationships)),
	}
	if raw.Metadata != nil {
		s.Metadata = *raw.Metadata
	}

	for _, label := range slices.Sorted(maps.Keys(nodeRaw)) {
		props, err := convertProperties(label, nodeRaw[label])
		if err != nil {
			return nil, err
		}
		s.NodeProps[label] = props
	}

	for _, relType := range slices.Sorted(maps.Keys(relRaw)) {
		props, err := convertProperties(relType, relRaw[relType])
		if err != nil {
			return nil, err
		}
		s.RelProps[relType] = props
	}

	for i, r := range raw.Relationships {
		relType := r.RelType
		if relType == "" {
			relType = r.LegacyType
		}
		switch {
		case r.Start == "":
			return nil, missingField(fmt.Sprintf("relationships[%d].start", i))
		case r.End == "":
			return nil, missingField(fmt.Sprintf("relationships[%d].end", i))
		case relType == "":
			return nil, missingField(fmt.Sprintf("relationships[%d].rel_type", i))
		}

		if !s.HasLabel(r.Start) {
			return nil, danglingLabel(r.Start)
		}
		if !s.HasLabel(r.End) {
			return nil, danglingLabel(r.End)
		}
		if !s.HasRelationshipType(relType) {
			return nil, &Error{
				Kind:    ErrDanglingRelType,
				Label:   relType,
				Message: fmt.Sprintf("relationship type %q used in relationships but not declared in rel_props", relType),
			}
		}

		s.Relationships = append(s.Relationships, Relationship{
			Start:   r.Start,
			RelType: relType,
			End:     r.End,
		})
	}

	return s, nil
}

// LoadFile reads and parses a JSON schema file.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: reading %s: %w", path, err)
	}
	return Load(data)
}

// MarshalCanonical serializes the schema in the canonical snake_case form.
// Loading the output yields an identical schema.
func (s *Schema) MarshalCanonical() ([]byte, error) {
	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("schema: serializing: %w", err)
	}
	return out, nil
}

func convertProperties(owner string, raw []rawProperty) ([]Property, error) {
	props := make([]Property, 0, len(raw))
	seen := make(map[string]bool, len(raw))

	for i, rp := range raw {
		name := rp.Name
		if name == "" {
			name = rp.LegacyName
		}
		if name == "" {
			return nil, missingField(fmt.Sprintf("%s[%d].name", owner, i))
		}

		tag := rp.Type
		if tag == "" {
			tag = rp.LegacyType
		}
		if tag == "" {
			return nil, missingField(fmt.Sprintf("%s[%d].neo4j_type", owner, i))
		}

		typ, err := ParsePropertyType(tag)
		if err != nil {
			return nil, err
		}

		if seen[name] {
			return nil, &Error{
				Kind:     ErrDuplicatePropertyName,
				Label:    owner,
				Property: name,
				Message:  fmt.Sprintf("duplicate property %q on %q", name, owner),
			}
		}
		seen[name] = true

		props = append(props, Property{
			Name:               name,
			Type:               typ,
			EnumValues:         rp.EnumValues,
			MinValue:           rp.MinValue,
			MaxValue:           rp.MaxValue,
			DistinctValueCount: rp.DistinctValueCount,
			ExampleValues:      rp.ExampleValues,
		})
	}

	return props, nil
}

func missingField(path string) *Error {
	return &Error{
		Kind:    ErrMissingField,
		Path:    path,
		Message: "missing required field " + path,
	}
}

func danglingLabel(label string) *Error {
	return &Error{
		Kind:    ErrDanglingLabelInRelationship,
		Label:   label,
		Message: fmt.Sprintf("label %q used in relationships but not declared in node_props", label),
	}
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
