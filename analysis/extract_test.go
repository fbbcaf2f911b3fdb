package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neo4j-field/cypher-guard/analysis"
	"github.com/neo4j-field/cypher-guard/grammar"
)

func extract(t *testing.T, query string) *analysis.QueryElements {
	t.Helper()
	q, err := grammar.Parse(query)
	require.NoError(t, err, "query %q", query)
	return analysis.Extract(q)
}

func TestExtract_NodePattern(t *testing.T) {
	t.Parallel()

	elements := extract(t, "MATCH (a:Person {name: 'Alice'}) RETURN a.age")

	assert.Equal(t, []string{"Person"}, elements.NodeLabels)
	assert.Equal(t, "Person", elements.VariableNodeBindings["a"])
	assert.Contains(t, elements.DefinedVariables, "a")
	assert.ElementsMatch(t, []string{"name", "age"}, elements.NodeProperties["Person"])
}

func TestExtract_RelationshipPattern(t *testing.T) {
	t.Parallel()

	elements := extract(t, "MATCH (a:Person)-[r:KNOWS {since: 2020}]->(b:Person) RETURN r.strength")

	assert.Equal(t, []string{"KNOWS"}, elements.RelationshipTypes)
	assert.Equal(t, "KNOWS", elements.VariableRelBindings["r"])
	assert.ElementsMatch(t, []string{"since", "strength"}, elements.RelationshipProperties["KNOWS"])

	require.Len(t, elements.PatternEdges, 1)
	edge := elements.PatternEdges[0]
	assert.Equal(t, "Person", edge.StartLabel)
	assert.Equal(t, "KNOWS", edge.RelType)
	assert.Equal(t, "Person", edge.EndLabel)
	assert.Equal(t, grammar.DirectionRight, edge.Direction)
}

func TestExtract_EdgeLabelsResolveThroughBindings(t *testing.T) {
	t.Parallel()

	elements := extract(t, "MATCH (a:Person) MATCH (a)-[:KNOWS]->(b:Person) RETURN b")

	require.Len(t, elements.PatternEdges, 1)
	assert.Equal(t, "Person", elements.PatternEdges[0].StartLabel)
}

func TestExtract_MultiTypeRelationship(t *testing.T) {
	t.Parallel()

	elements := extract(t, "MATCH (a:Person)-[r:KNOWS|LIKES]->(b:Person) RETURN a")

	assert.Equal(t, []string{"KNOWS", "LIKES"}, elements.RelationshipTypes)
	assert.Equal(t, "KNOWS", elements.VariableRelBindings["r"])
	require.Len(t, elements.PatternEdges, 2)
	assert.Equal(t, "KNOWS", elements.PatternEdges[0].RelType)
	assert.Equal(t, "LIKES", elements.PatternEdges[1].RelType)
}

func TestExtract_QuantifiedPathPattern(t *testing.T) {
	t.Parallel()

	elements := extract(t, "MATCH ((s:Stop)-[:NEXT]->(e:Stop) WHERE s.id < e.id){1,3} RETURN s")

	assert.Equal(t, []string{"Stop"}, elements.NodeLabels)
	assert.Equal(t, []string{"NEXT"}, elements.RelationshipTypes)
	require.Len(t, elements.PatternEdges, 1)
	assert.Equal(t, "Stop", elements.PatternEdges[0].StartLabel)
	assert.Equal(t, "Stop", elements.PatternEdges[0].EndLabel)
	assert.ElementsMatch(t, []string{"id"}, elements.NodeProperties["Stop"])
}

func TestExtract_WhereComparisons(t *testing.T) {
	t.Parallel()

	elements := extract(t, "MATCH (a:Person) WHERE a.age > 18 AND a.name = 'Alice' RETURN a")

	require.Len(t, elements.PropertyComparisons, 2)

	first := elements.PropertyComparisons[0]
	assert.Equal(t, "a", first.Variable)
	assert.Equal(t, "Person", first.Owner)
	assert.Equal(t, "age", first.Property)
	assert.Equal(t, analysis.KindInteger, first.Value.Kind)

	second := elements.PropertyComparisons[1]
	assert.Equal(t, "name", second.Property)
	assert.Equal(t, analysis.KindString, second.Value.Kind)
}

func TestExtract_ReversedComparison(t *testing.T) {
	t.Parallel()

	elements := extract(t, "MATCH (a:Person) WHERE 18 < a.age RETURN a")

	require.Len(t, elements.PropertyComparisons, 1)
	assert.Equal(t, "age", elements.PropertyComparisons[0].Property)
	assert.Equal(t, analysis.KindInteger, elements.PropertyComparisons[0].Value.Kind)
}

func TestExtract_ParameterComparisonNotRecorded(t *testing.T) {
	t.Parallel()

	elements := extract(t, "MATCH (a:Person) WHERE a.age = $age RETURN a")

	assert.Empty(t, elements.PropertyComparisons)
}

func TestExtract_InlinePropertyComparison(t *testing.T) {
	t.Parallel()

	elements := extract(t, "MATCH (a:Person {age: 'thirty'}) RETURN a")

	require.Len(t, elements.PropertyComparisons, 1)
	comp := elements.PropertyComparisons[0]
	assert.Equal(t, "Person", comp.Owner)
	assert.Equal(t, "age", comp.Property)
	assert.Equal(t, analysis.KindString, comp.Value.Kind)
}

func TestExtract_WithScoping(t *testing.T) {
	t.Parallel()

	elements := extract(t, "MATCH (a:Person) WITH a.name AS n RETURN a.age")

	// After WITH, only n is in scope; the a reference is undefined.
	assert.Contains(t, elements.UndefinedVariables, "a")
	assert.Contains(t, elements.DefinedVariables, "n")
}

func TestExtract_WithForwardsBinding(t *testing.T) {
	t.Parallel()

	elements := extract(t, "MATCH (a:Person) WITH a AS person RETURN person.name")

	assert.Equal(t, "Person", elements.VariableNodeBindings["person"])
	assert.Empty(t, elements.UndefinedVariables)
	assert.ElementsMatch(t, []string{"name"}, elements.NodeProperties["Person"])
}

func TestExtract_WithStarKeepsScope(t *testing.T) {
	t.Parallel()

	elements := extract(t, "MATCH (a:Person) WITH * RETURN a.name")

	assert.Empty(t, elements.UndefinedVariables)
}

func TestExtract_UndefinedVariable(t *testing.T) {
	t.Parallel()

	elements := extract(t, "MATCH (a:Person) RETURN b.name")

	assert.Contains(t, elements.ReferencedVariables, "b")
	assert.Equal(t, []string{"b"}, elements.UndefinedVariables)
}

func TestExtract_UnwindDefinesVariable(t *testing.T) {
	t.Parallel()

	elements := extract(t, "UNWIND [1, 2, 3] AS x RETURN x")

	assert.Contains(t, elements.DefinedVariables, "x")
	assert.Empty(t, elements.UndefinedVariables)
}

func TestExtract_PathVariable(t *testing.T) {
	t.Parallel()

	elements := extract(t, "MATCH p = (a:Person)-[:KNOWS]->(b:Person) RETURN p")

	assert.Contains(t, elements.DefinedVariables, "p")
	assert.Empty(t, elements.UndefinedVariables)
}

func TestExtract_ListComprehensionVariableIsLocal(t *testing.T) {
	t.Parallel()

	elements := extract(t, "MATCH (a:Person) RETURN [x IN a.tags WHERE x > 1 | x]")

	assert.Empty(t, elements.UndefinedVariables)
	assert.NotContains(t, elements.DefinedVariables, "x")
}

func TestExtract_MergeAndSet(t *testing.T) {
	t.Parallel()

	elements := extract(t, "MERGE (u:User {id: 1}) ON CREATE SET u.created = 1 ON MATCH SET u.updated = 2")

	assert.Equal(t, []string{"User"}, elements.NodeLabels)
	assert.ElementsMatch(t, []string{"id", "created", "updated"}, elements.NodeProperties["User"])
}

func TestExtract_OrderIsDeterministic(t *testing.T) {
	t.Parallel()

	const query = "MATCH (a:Person)-[:KNOWS]->(b:Movie) RETURN a.name, b.title"

	first := extract(t, query)
	second := extract(t, query)

	assert.Equal(t, first.NodeLabels, second.NodeLabels)
	assert.Equal(t, first.PropertyAccesses, second.PropertyAccesses)
	assert.Equal(t, []string{"Person", "Movie"}, first.NodeLabels)
}
