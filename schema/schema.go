// Package schema defines the graph schema model that queries are validated
// against: node labels and their properties, relationship types and their
// properties, and the set of legal (start, type, end) edges.
//
// A Schema is immutable once loaded and safe for concurrent readers.
package schema

import (
	"fmt"
	"strings"
)

// PropertyType is a Neo4j property type tag.
type PropertyType string

// Recognized property types.
const (
	TypeString   PropertyType = "STRING"
	TypeInteger  PropertyType = "INTEGER"
	TypeFloat    PropertyType = "FLOAT"
	TypeBoolean  PropertyType = "BOOLEAN"
	TypePoint    PropertyType = "POINT"
	TypeDate     PropertyType = "DATE"
	TypeDateTime PropertyType = "DATE_TIME"
	TypeList     PropertyType = "LIST"
)

// ParsePropertyType parses a type tag, accepting the historical aliases
// (STR, INT, BOOL, DATETIME) that enhanced GraphRAG schemas emit.
func ParsePropertyType(s string) (PropertyType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "STRING", "STR":
		return TypeString, nil
	case "INTEGER", "INT":
		return TypeInteger, nil
	case "FLOAT":
		return TypeFloat, nil
	case "BOOLEAN", "BOOL":
		return TypeBoolean, nil
	case "POINT":
		return TypePoint, nil
	case "DATE":
		return TypeDate, nil
	case "DATE_TIME", "DATETIME":
		return TypeDateTime, nil
	case "LIST":
		return TypeList, nil
	default:
		return "", &Error{
			Kind:    ErrUnknownPropertyType,
			Tag:     s,
			Message: fmt.Sprintf("unknown property type %q", s),
		}
	}
}

// Property is a single property declaration on a label or relationship type.
// Only Name and Type participate in validation; the remaining fields are
// statistics carried through from schema extraction tools.
type Property struct {
	Name               string       `json:"name"`
	Type               PropertyType `json:"neo4j_type"`
	EnumValues         []string     `json:"enum_values,omitempty"`
	MinValue           *float64     `json:"min_value,omitempty"`
	MaxValue           *float64     `json:"max_value,omitempty"`
	DistinctValueCount *int64       `json:"distinct_value_count,omitempty"`
	ExampleValues      []string     `json:"example_values,omitempty"`
}

// Relationship is an allowed directed edge: (:Start)-[:RelType]->(:End).
type Relationship struct {
	Start   string `json:"start"`
	RelType string `json:"rel_type"`
	End     string `json:"end"`
}

// Metadata holds constraint and index descriptors. They are carried opaquely
// through load and serialization; validation never consults them.
type Metadata struct {
	Constraints []map[string]any `json:"constraint"`
	Indexes     []map[string]any `json:"index"`
}

// Schema is the declared universe a query is checked against.
type Schema struct {
	NodeProps     map[string][]Property `json:"node_props"`
	RelProps      map[string][]Property `json:"rel_props"`
	Relationships []Relationship        `json:"relationships"`
	Metadata      Metadata              `json:"metadata"`
}

// HasLabel reports whether the label is declared.
func (s *Schema) HasLabel(label string) bool {
	_, ok := s.NodeProps[label]
	return ok
}

// HasRelationshipType reports whether the relationship type is declared.
func (s *Schema) HasRelationshipType(relType string) bool {
	_, ok := s.RelProps[relType]
	return ok
}

// HasNodeProperty reports whether the label declares the property.
func (s *Schema) HasNodeProperty(label, property string) bool {
	for _, p := range s.NodeProps[label] {
		if p.Name == property {
			return true
		}
	}
	return false
}

// HasRelationshipProperty reports whether the relationship type declares the
// property.
func (s *Schema) HasRelationshipProperty(relType, property string) bool {
	for _, p := range s.RelProps[relType] {
		if p.Name == property {
			return true
		}
	}
	return false
}

// NodePropertyType returns the declared type of a node property.
func (s *Schema) NodePropertyType(label, property string) (PropertyType, bool) {
	for _, p := range s.NodeProps[label] {
		if p.Name == property {
			return p.Type, true
		}
	}
	return "", false
}

// RelPropertyType returns the declared type of a relationship property.
func (s *Schema) RelPropertyType(relType, property string) (PropertyType, bool) {
	for _, p := range s.RelProps[relType] {
		if p.Name == property {
			return p.Type, true
		}
	}
	return "", false
}

// HasRelationship reports whether the directed triple is declared.
func (s *Schema) HasRelationship(start, relType, end string) bool {
	for _, r := range s.Relationships {
		if r.Start == start && r.RelType == relType && r.End == end {
			return true
		}
	}
	return false
}

// HasAnyProperty reports whether any label or relationship type declares the
// property. Used when a property access cannot be resolved to a binding.
func (s *Schema) HasAnyProperty(property string) bool {
	for _, props := range s.NodeProps {
		for _, p := range props {
			if p.Name == property {
				return true
			}
		}
	}
	for _, props := range s.RelProps {
		for _, p := range props {
			if p.Name == property {
				return true
			}
		}
	}
	return false
}

// Labels returns the declared labels in sorted order.
func (s *Schema) Labels() []string {
	return sortedKeys(s.NodeProps)
}

// RelationshipTypes returns the declared relationship types in sorted order.
func (s *Schema) RelationshipTypes() []string {
	return sortedKeys(s.RelProps)
}
