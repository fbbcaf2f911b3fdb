package analysis

import (
	"slices"
	"strings"

	"github.com/neo4j-field/cypher-guard/grammar"
	"github.com/neo4j-field/cypher-guard/schema"
)

// Validate cross-references extracted query elements against a schema. Every
// check runs; diagnostics accumulate in a stable order: label existence,
// relationship-type existence, edge legality and direction, node properties,
// relationship properties, unresolvable property accesses, undefined
// variables, then literal type conformance. Within a check, elements are
// visited in first-encounter order, so identical inputs yield identical
// diagnostic lists.
func Validate(elements *QueryElements, s *schema.Schema) []Diagnostic {
	diags := []Diagnostic{}

	for _, label := range elements.NodeLabels {
		if !s.HasLabel(label) {
			diags = append(diags, invalidNodeLabel(label))
		}
	}

	for _, relType := range elements.RelationshipTypes {
		if !s.HasRelationshipType(relType) {
			diags = append(diags, invalidRelationshipType(relType))
		}
	}

	diags = append(diags, validateEdges(elements, s)...)

	for _, label := range elements.NodePropertyLabels() {
		if !s.HasLabel(label) {
			// Already reported by the label-existence check.
			continue
		}
		for _, property := range elements.NodeProperties[label] {
			if !s.HasNodeProperty(label, property) {
				diags = append(diags, invalidNodeProperty(label, property))
			}
		}
	}

	for _, relType := range elements.RelationshipPropertyTypes() {
		if !s.HasRelationshipType(relType) {
			continue
		}
		for _, property := range elements.RelationshipProperties[relType] {
			if !s.HasRelationshipProperty(relType, property) {
				diags = append(diags, invalidRelationshipProperty(relType, property))
			}
		}
	}

	diags = append(diags, validateUnboundAccesses(elements, s)...)

	for _, name := range elements.UndefinedVariables {
		diags = append(diags, undefinedVariable(name))
	}

	diags = append(diags, validateComparisons(elements, s)...)

	return diags
}

// ValidateQuery extracts and validates in one step.
func ValidateQuery(q *grammar.Query, s *schema.Schema) []Diagnostic {
	return Validate(Extract(q), s)
}

// validateEdges checks each pattern hop whose endpoint labels and type are
// all known against the schema's relationship triples. Undirected patterns
// match either orientation; a triple that only exists the other way round is
// a direction error rather than an unknown relationship.
func validateEdges(elements *QueryElements, s *schema.Schema) []Diagnostic {
	var diags []Diagnostic
	seen := map[PatternEdge]bool{}

	for _, edge := range elements.PatternEdges {
		if edge.StartLabel == "" || edge.RelType == "" || edge.EndLabel == "" {
			continue
		}
		if seen[edge] {
			continue
		}
		seen[edge] = true

		// Skip hops whose parts already failed existence checks.
		if !s.HasLabel(edge.StartLabel) || !s.HasLabel(edge.EndLabel) || !s.HasRelationshipType(edge.RelType) {
			continue
		}

		// Resolve the traversal orientation: <-[:T]- means end-to-start.
		from, to := edge.StartLabel, edge.EndLabel
		if edge.Direction == grammar.DirectionLeft {
			from, to = to, from
		}

		switch {
		case s.HasRelationship(from, edge.RelType, to):
		case edge.Direction == grammar.DirectionUndirected && s.HasRelationship(to, edge.RelType, from):
		case s.HasRelationship(to, edge.RelType, from):
			diags = append(diags, invalidRelationshipDirection(to, edge.RelType, from))
		default:
			diags = append(diags, invalidRelationship(from, edge.RelType, to))
		}
	}

	return diags
}

// validateUnboundAccesses reports v.p sites whose variable has no
// label/type binding and whose property exists nowhere in the schema.
func validateUnboundAccesses(elements *QueryElements, s *schema.Schema) []Diagnostic {
	var diags []Diagnostic
	seen := map[string]bool{}

	for _, access := range elements.PropertyAccesses {
		if access.Variable == "" {
			continue
		}
		if _, ok := elements.VariableNodeBindings[access.Variable]; ok {
			continue
		}
		if _, ok := elements.VariableRelBindings[access.Variable]; ok {
			continue
		}
		key := access.Variable + "." + access.Property
		if seen[key] {
			continue
		}
		seen[key] = true
		if !s.HasAnyProperty(access.Property) {
			diags = append(diags, invalidPropertyAccess(access))
		}
	}

	return diags
}

// validateComparisons applies the literal compatibility table to every
// comparison whose owner and declared type are known.
func validateComparisons(elements *QueryElements, s *schema.Schema) []Diagnostic {
	var diags []Diagnostic

	for _, comp := range elements.PropertyComparisons {
		if comp.Owner == "" {
			continue
		}

		var declared schema.PropertyType
		var ok bool
		if comp.OwnerRel {
			declared, ok = s.RelPropertyType(comp.Owner, comp.Property)
		} else {
			declared, ok = s.NodePropertyType(comp.Owner, comp.Property)
		}
		if !ok {
			// Unknown owner or undeclared property; reported elsewhere.
			continue
		}

		if !compatible(declared, comp.Value) {
			diags = append(diags, typeMismatch(
				comp.Owner, comp.OwnerRel, comp.Property,
				string(declared), describeValue(comp.Value),
			))
		}
	}

	return diags
}

// compatible implements the declared-type / literal-kind table. NULL checks
// and values whose type cannot be statically determined never mismatch.
func compatible(declared schema.PropertyType, value LiteralValue) bool {
	switch value.Kind {
	case KindNull, KindParameter, KindIdentifier, KindUnknown:
		return true
	}

	switch declared {
	case schema.TypeString:
		return value.Kind == KindString
	case schema.TypeInteger:
		return value.Kind == KindInteger
	case schema.TypeFloat:
		return value.Kind == KindInteger || value.Kind == KindFloat
	case schema.TypeBoolean:
		return value.Kind == KindBoolean
	case schema.TypePoint:
		if value.Kind == KindFunction {
			return strings.EqualFold(value.Function, "point")
		}
		return value.Kind == KindMap && pointShaped(value)
	case schema.TypeDate, schema.TypeDateTime:
		if value.Kind == KindString {
			return true
		}
		if value.Kind == KindFunction {
			name := strings.ToLower(value.Function)
			return name == "date" || name == "datetime" || name == "localdatetime" || name == "timestamp"
		}
		return false
	case schema.TypeList:
		return value.Kind == KindList
	default:
		return true
	}
}

// pointShaped reports whether a map literal has exactly the numeric keys
// x, y and optionally z.
func pointShaped(value LiteralValue) bool {
	if !value.MapNumeric {
		return false
	}
	keys := slices.Clone(value.MapKeys)
	slices.Sort(keys)
	return slices.Equal(keys, []string{"x", "y"}) || slices.Equal(keys, []string{"x", "y", "z"})
}

func describeValue(value LiteralValue) string {
	if value.Kind == KindFunction {
		return value.Function + "()"
	}
	return string(value.Kind)
}
