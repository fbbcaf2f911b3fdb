// Package analysis lifts a parsed Cypher query into a normalized bag of
// schema references (labels, relationship types, property accesses, pattern
// edges, variable bindings) and cross-references that bag against a schema,
// producing typed diagnostics.
package analysis

import (
	"github.com/neo4j-field/cypher-guard/grammar"
)

// Context records where a property access was seen.
type Context string

// Property access contexts.
const (
	ContextWhere   Context = "WHERE"
	ContextReturn  Context = "RETURN"
	ContextWith    Context = "WITH"
	ContextPattern Context = "PATTERN"
	ContextSet     Context = "SET"
	ContextUnwind  Context = "UNWIND"
	ContextCall    Context = "CALL"
)

// PropertyAccess is one v.p site.
type PropertyAccess struct {
	Variable string  `json:"variable"`
	Property string  `json:"property"`
	Context  Context `json:"context"`
}

// LiteralKind classifies the value a property was compared against.
type LiteralKind string

// Literal kinds.
const (
	KindString     LiteralKind = "STRING"
	KindInteger    LiteralKind = "INTEGER"
	KindFloat      LiteralKind = "FLOAT"
	KindBoolean    LiteralKind = "BOOLEAN"
	KindNull       LiteralKind = "NULL"
	KindList       LiteralKind = "LIST"
	KindMap        LiteralKind = "MAP"
	KindFunction   LiteralKind = "FUNCTION"
	KindParameter  LiteralKind = "PARAMETER"
	KindIdentifier LiteralKind = "IDENTIFIER"
	KindUnknown    LiteralKind = "UNKNOWN"
)

// LiteralValue summarizes a compared value just enough for type checking.
type LiteralValue struct {
	Kind LiteralKind
	// Function is the called name when Kind is KindFunction.
	Function string
	// MapKeys and MapNumeric describe map literals, for POINT checking.
	MapKeys    []string
	MapNumeric bool
}

// PropertyComparison is one v.p <op> value site with the value's inferred
// kind. Owner is the label or relationship type the property resolved to at
// extraction time; empty when the variable had no binding.
type PropertyComparison struct {
	Variable string
	Owner    string
	OwnerRel bool
	Property string
	Value    LiteralValue
}

// PatternEdge is one relationship hop as written: the labels of the adjacent
// node patterns (possibly resolved through variable bindings, possibly
// empty) and the textual direction.
type PatternEdge struct {
	StartLabel string            `json:"start_label,omitempty"`
	RelType    string            `json:"rel_type,omitempty"`
	EndLabel   string            `json:"end_label,omitempty"`
	Direction  grammar.Direction `json:"direction"`
}

// QueryElements is the extraction output: every schema reference a query
// makes, in first-encounter order. All slices are insertion-ordered so
// downstream diagnostics are deterministic. The label, type, property-name
// and variable slices are deduplicated; PropertyAccesses,
// PropertyComparisons and PatternEdges keep one entry per site.
type QueryElements struct {
	NodeLabels             []string
	RelationshipTypes      []string
	NodeProperties         map[string][]string
	RelationshipProperties map[string][]string
	PropertyAccesses       []PropertyAccess
	PropertyComparisons    []PropertyComparison
	DefinedVariables       []string
	ReferencedVariables    []string
	UndefinedVariables     []string
	PatternEdges           []PatternEdge
	VariableNodeBindings   map[string]string
	VariableRelBindings    map[string]string

	nodePropOrder []string
	relPropOrder  []string
	seenLabels    map[string]bool
	seenRelTypes  map[string]bool
	seenNodeProps map[string]map[string]bool
	seenRelProps  map[string]map[string]bool
	seenDefined   map[string]bool
	seenRefs      map[string]bool
	seenUndefined map[string]bool
}

func newQueryElements() *QueryElements {
	return &QueryElements{
		NodeProperties:         map[string][]string{},
		RelationshipProperties: map[string][]string{},
		VariableNodeBindings:   map[string]string{},
		VariableRelBindings:    map[string]string{},
		seenLabels:             map[string]bool{},
		seenRelTypes:           map[string]bool{},
		seenNodeProps:          map[string]map[string]bool{},
		seenRelProps:           map[string]map[string]bool{},
		seenDefined:            map[string]bool{},
		seenRefs:               map[string]bool{},
		seenUndefined:          map[string]bool{},
	}
}

// NodePropertyLabels returns the labels of NodeProperties in first-encounter
// order.
func (e *QueryElements) NodePropertyLabels() []string { return e.nodePropOrder }

// RelationshipPropertyTypes returns the keys of RelationshipProperties in
// first-encounter order.
func (e *QueryElements) RelationshipPropertyTypes() []string { return e.relPropOrder }

func (e *QueryElements) addNodeLabel(label string) {
	if label == "" || e.seenLabels[label] {
		return
	}
	e.seenLabels[label] = true
	e.NodeLabels = append(e.NodeLabels, label)
}

func (e *QueryElements) addRelationshipType(relType string) {
	if relType == "" || e.seenRelTypes[relType] {
		return
	}
	e.seenRelTypes[relType] = true
	e.RelationshipTypes = append(e.RelationshipTypes, relType)
}

func (e *QueryElements) addNodeProperty(label, property string) {
	if label == "" || property == "" {
		return
	}
	if e.seenNodeProps[label] == nil {
		e.seenNodeProps[label] = map[string]bool{}
		e.nodePropOrder = append(e.nodePropOrder, label)
	}
	if e.seenNodeProps[label][property] {
		return
	}
	e.seenNodeProps[label][property] = true
	e.NodeProperties[label] = append(e.NodeProperties[label], property)
}

func (e *QueryElements) addRelationshipProperty(relType, property string) {
	if relType == "" || property == "" {
		return
	}
	if e.seenRelProps[relType] == nil {
		e.seenRelProps[relType] = map[string]bool{}
		e.relPropOrder = append(e.relPropOrder, relType)
	}
	if e.seenRelProps[relType][property] {
		return
	}
	e.seenRelProps[relType][property] = true
	e.RelationshipProperties[relType] = append(e.RelationshipProperties[relType], property)
}

func (e *QueryElements) addDefined(variable string) {
	if variable == "" {
		return
	}
	if !e.seenDefined[variable] {
		e.seenDefined[variable] = true
		e.DefinedVariables = append(e.DefinedVariables, variable)
	}
}

func (e *QueryElements) addReferenced(variable string) {
	if variable == "" || e.seenRefs[variable] {
		return
	}
	e.seenRefs[variable] = true
	e.ReferencedVariables = append(e.ReferencedVariables, variable)
}

func (e *QueryElements) addUndefined(variable string) {
	if variable == "" || e.seenUndefined[variable] {
		return
	}
	e.seenUndefined[variable] = true
	e.UndefinedVariables = append(e.UndefinedVariables, variable)
}
