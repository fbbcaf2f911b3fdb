package analysis_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neo4j-field/cypher-guard/analysis"
	"github.com/neo4j-field/cypher-guard/grammar"
	"github.com/neo4j-field/cypher-guard/schema"
)

const testSchemaJSON = `{
	"node_props": {
		"Person": [
			{"name": "name", "neo4j_type": "STRING"},
			{"name": "age", "neo4j_type": "INTEGER"}
		],
		"Movie": [
			{"name": "title", "neo4j_type": "STRING"},
			{"name": "year", "neo4j_type": "INTEGER"}
		]
	},
	"rel_props": {
		"KNOWS": [{"name": "since", "neo4j_type": "DATE_TIME"}],
		"ACTED_IN": [{"name": "role", "neo4j_type": "STRING"}]
	},
	"relationships": [
		{"start": "Person", "rel_type": "KNOWS", "end": "Person"},
		{"start": "Person", "rel_type": "ACTED_IN", "end": "Movie"}
	]
}`

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.Load([]byte(testSchemaJSON))
	require.NoError(t, err)
	return s
}

func validate(t *testing.T, query string, s *schema.Schema) []analysis.Diagnostic {
	t.Helper()
	q, err := grammar.Parse(query)
	require.NoError(t, err, "query %q", query)
	return analysis.ValidateQuery(q, s)
}

func TestValidate_ValidQuery(t *testing.T) {
	t.Parallel()
	s := testSchema(t)

	diags := validate(t, "MATCH (a:Person)-[r:KNOWS]->(b:Person) RETURN a.name, r.since", s)
	assert.Empty(t, diags)
}

func TestValidate_InvalidRelationshipType(t *testing.T) {
	t.Parallel()
	s := testSchema(t)

	diags := validate(t, "MATCH (a:Person)-[r:FOLLOWS]->(b:Person) RETURN a.name", s)
	require.Len(t, diags, 1)
	assert.Equal(t, analysis.DiagInvalidRelationshipType, diags[0].Kind)
	assert.Equal(t, "FOLLOWS", diags[0].RelType)
}

func TestValidate_InvalidNodeLabel(t *testing.T) {
	t.Parallel()
	s := testSchema(t)

	// The a.name access resolves to the unknown label, so only the label
	// error is reported.
	diags := validate(t, "MATCH (a:User) RETURN a.name", s)
	require.Len(t, diags, 1)
	assert.Equal(t, analysis.DiagInvalidNodeLabel, diags[0].Kind)
	assert.Equal(t, "User", diags[0].Label)
}

func TestValidate_TypeMismatch(t *testing.T) {
	t.Parallel()
	s := testSchema(t)

	diags := validate(t, "MATCH (a:Person) WHERE a.age = '30' RETURN a.name", s)
	require.Len(t, diags, 1)
	assert.Equal(t, analysis.DiagTypeMismatch, diags[0].Kind)
	assert.Equal(t, "Person", diags[0].Label)
	assert.Equal(t, "age", diags[0].Property)
	assert.Equal(t, "INTEGER", diags[0].Expected)
	assert.Equal(t, "STRING", diags[0].Got)
}

func TestValidate_InvalidRelationshipDirection(t *testing.T) {
	t.Parallel()
	s := testSchema(t)

	diags := validate(t, "MATCH (a:Person)<-[r:ACTED_IN]-(b:Movie) RETURN a.name", s)
	require.Len(t, diags, 1)
	assert.Equal(t, analysis.DiagInvalidRelationshipDirection, diags[0].Kind)
	assert.Equal(t, "Person", diags[0].StartLabel)
	assert.Equal(t, "ACTED_IN", diags[0].RelType)
	assert.Equal(t, "Movie", diags[0].EndLabel)
}

func TestValidate_InvalidRelationship(t *testing.T) {
	t.Parallel()
	s := testSchema(t)

	diags := validate(t, "MATCH (a:Movie)-[:KNOWS]->(b:Movie) RETURN a", s)
	require.Len(t, diags, 1)
	assert.Equal(t, analysis.DiagInvalidRelationship, diags[0].Kind)
	assert.Equal(t, "Movie", diags[0].StartLabel)
	assert.Equal(t, "KNOWS", diags[0].RelType)
	assert.Equal(t, "Movie", diags[0].EndLabel)
}

func TestValidate_UndirectedMatchesEitherOrientation(t *testing.T) {
	t.Parallel()
	s := testSchema(t)

	assert.Empty(t, validate(t, "MATCH (a:Movie)-[:ACTED_IN]-(b:Person) RETURN a", s))
	assert.Empty(t, validate(t, "MATCH (a:Person)-[:ACTED_IN]-(b:Movie) RETURN a", s))
}

func TestValidate_InvalidNodeProperty(t *testing.T) {
	t.Parallel()
	s := testSchema(t)

	diags := validate(t, "MATCH (a:Person) RETURN a.height", s)
	require.Len(t, diags, 1)
	assert.Equal(t, analysis.DiagInvalidNodeProperty, diags[0].Kind)
	assert.Equal(t, "Person", diags[0].Label)
	assert.Equal(t, "height", diags[0].Property)
}

func TestValidate_InvalidRelationshipProperty(t *testing.T) {
	t.Parallel()
	s := testSchema(t)

	diags := validate(t, "MATCH (a:Person)-[r:KNOWS]->(b:Person) RETURN r.weight", s)
	require.Len(t, diags, 1)
	assert.Equal(t, analysis.DiagInvalidRelationshipProperty, diags[0].Kind)
	assert.Equal(t, "KNOWS", diags[0].RelType)
	assert.Equal(t, "weight", diags[0].Property)
}

func TestValidate_UndefinedVariable(t *testing.T) {
	t.Parallel()
	s := testSchema(t)

	diags := validate(t, "MATCH (a:Person) RETURN b.name", s)
	require.Len(t, diags, 1)
	assert.Equal(t, analysis.DiagUndefinedVariable, diags[0].Kind)
	assert.Equal(t, "b", diags[0].Variable)
}

func TestValidate_InvalidPropertyAccess(t *testing.T) {
	t.Parallel()
	s := testSchema(t)

	// b is unbound and "salary" exists nowhere in the schema: both the
	// access and the undefined variable are reported.
	diags := validate(t, "MATCH (a:Person) RETURN b.salary", s)
	require.Len(t, diags, 2)
	assert.Equal(t, analysis.DiagInvalidPropertyAccess, diags[0].Kind)
	assert.Equal(t, "salary", diags[0].Property)
	assert.Equal(t, analysis.DiagUndefinedVariable, diags[1].Kind)
}

func TestValidate_AccumulatesAllViolations(t *testing.T) {
	t.Parallel()
	s := testSchema(t)

	diags := validate(t, "MATCH (a:User)-[r:FOLLOWS]->(b:Person) WHERE b.age = 'x' RETURN a", s)

	kinds := make([]analysis.DiagnosticKind, len(diags))
	for i, d := range diags {
		kinds[i] = d.Kind
	}
	assert.Equal(t, []analysis.DiagnosticKind{
		analysis.DiagInvalidNodeLabel,
		analysis.DiagInvalidRelationshipType,
		analysis.DiagTypeMismatch,
	}, kinds)
}

func TestValidate_Deterministic(t *testing.T) {
	t.Parallel()
	s := testSchema(t)

	const query = "MATCH (a:User)-[r:FOLLOWS]->(b:Fake) RETURN a.x, b.y, c.z"

	first := validate(t, query, s)
	second := validate(t, query, s)
	assert.Equal(t, first, second)
}

func TestValidate_UnrelatedClausePreservesValidity(t *testing.T) {
	t.Parallel()
	s := testSchema(t)

	base := "MATCH (a:Person) RETURN a.name"
	extended := "MATCH (a:Person) MATCH (m:Movie) RETURN a.name"

	assert.Empty(t, validate(t, base, s))
	assert.Empty(t, validate(t, extended, s))
}

func TestValidate_TypeCompatibilityTable(t *testing.T) {
	t.Parallel()

	s, err := schema.Load([]byte(`{
		"node_props": {
			"T": [
				{"name": "s", "neo4j_type": "STRING"},
				{"name": "i", "neo4j_type": "INTEGER"},
				{"name": "f", "neo4j_type": "FLOAT"},
				{"name": "b", "neo4j_type": "BOOLEAN"},
				{"name": "p", "neo4j_type": "POINT"},
				{"name": "d", "neo4j_type": "DATE"},
				{"name": "dt", "neo4j_type": "DATE_TIME"},
				{"name": "l", "neo4j_type": "LIST"}
			]
		},
		"rel_props": {},
		"relationships": []
	}`))
	require.NoError(t, err)

	tests := []struct {
		prop     string
		value    string
		mismatch bool
	}{
		{"s", `'text'`, false},
		{"s", `1`, true},
		{"i", `42`, false},
		{"i", `'42'`, true},
		{"i", `4.2`, true},
		{"f", `4.2`, false},
		{"f", `42`, false},
		{"f", `'4.2'`, true},
		{"b", `true`, false},
		{"b", `1`, true},
		{"p", `point({x: 1.0, y: 2.0})`, false},
		{"p", `{x: 1.0, y: 2.0}`, false},
		{"p", `{x: 1.0, y: 2.0, z: 3.0}`, false},
		{"p", `{x: 1.0, q: 2.0}`, true},
		{"p", `'somewhere'`, true},
		{"d", `'2024-01-01'`, false},
		{"d", `date('2024-01-01')`, false},
		{"d", `42`, true},
		{"dt", `datetime('2024-01-01T00:00:00')`, false},
		{"dt", `'2024-01-01T00:00:00'`, false},
		{"dt", `true`, true},
		{"l", `[1, 2]`, false},
		{"l", `'not a list'`, true},
		// Statically undecidable values never mismatch.
		{"i", `$param`, false},
		{"i", `null`, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s=%s", tt.prop, tt.value), func(t *testing.T) {
			t.Parallel()

			query := fmt.Sprintf("MATCH (n:T) WHERE n.%s = %s RETURN n", tt.prop, tt.value)
			diags := validate(t, query, s)
			if tt.mismatch {
				require.Len(t, diags, 1, "expected a mismatch for %s", query)
				assert.Equal(t, analysis.DiagTypeMismatch, diags[0].Kind)
			} else {
				assert.Empty(t, diags, "expected no mismatch for %s", query)
			}
		})
	}
}

func TestIsWrite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		query string
		write bool
	}{
		{"MATCH (n) RETURN n", false},
		{"RETURN 1", false},
		{"MATCH (n) WHERE n.x = 1 RETURN n", false},
		{"CREATE (n:Person)", true},
		{"MERGE (n:Person {id: 1})", true},
		{"MATCH (n) SET n.x = 1", true},
		{"MATCH (n) DELETE n", true},
		{"MATCH (n) DETACH DELETE n", true},
		{"MATCH (n) REMOVE n.x", true},
		{"MATCH (n) RETURN n LIMIT 1", false},
	}

	for _, tt := range tests {
		q, err := grammar.Parse(tt.query)
		require.NoError(t, err, "query %q", tt.query)

		assert.Equal(t, tt.write, analysis.IsWrite(q), "IsWrite(%q)", tt.query)
		assert.Equal(t, !tt.write, analysis.IsRead(q), "IsRead(%q)", tt.query)
	}
}
