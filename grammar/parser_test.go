package grammar_test

import (
	"errors"
	"testing"

	"github.com/neo4j-field/cypher-guard/grammar"
)

func TestParse_BasicQueries(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"simple return", "RETURN 42"},
		{"return string", `RETURN "hello"`},
		{"return float", "RETURN 3.14"},
		{"return bool", "RETURN true"},
		{"return list", "RETURN [1, 2, 3]"},
		{"return map", `RETURN {name: "test", age: 25}`},
		{"simple match", "MATCH (n) RETURN n"},
		{"match with label", "MATCH (u:User) RETURN u"},
		{"match with properties", `MATCH (u:User {name: "Alice"}) RETURN u`},
		{"match with parameter", "MATCH (u:User {id: $userId}) RETURN u"},
		{"property access", "MATCH (u:User) RETURN u.name"},
		{"aliased projection", "MATCH (u:User) RETURN u.name AS name"},
		{"function call", "MATCH (u:User) RETURN count(u)"},
		{"namespaced function", `RETURN apoc.text.join(["a", "b"], ",")`},
		{"arithmetic", "RETURN 1 + 2 * 3"},
		{"comparison", "RETURN 1 < 2"},
		{"boolean logic", "RETURN true AND false OR NOT true"},
		{"case expression", "MATCH (n) RETURN CASE WHEN n.x > 0 THEN 'pos' ELSE 'neg' END"},
		{"order by", "MATCH (u:User) RETURN u.name ORDER BY u.name DESC"},
		{"skip limit", "MATCH (u:User) RETURN u SKIP 10 LIMIT 5"},
		{"limit parameter", "MATCH (u:User) RETURN u LIMIT $n"},
		{"standalone limit", "MATCH (u:User) LIMIT 10 RETURN u"},
		{"with clause", "MATCH (u:User) WITH u.name AS name RETURN name"},
		{"with star", "MATCH (u:User) WITH * RETURN u"},
		{"with where", "MATCH (u:User) WITH u AS person WHERE person.age > 21 RETURN person"},
		{"create", "CREATE (n:Person {name: 'Alice'})"},
		{"create multiple", "CREATE (a:Person), (b:Person)"},
		{"relationship right", "MATCH (a)-[:KNOWS]->(b) RETURN a, b"},
		{"relationship left", "MATCH (a)<-[:KNOWS]-(b) RETURN a, b"},
		{"relationship undirected", "MATCH (a)-[:KNOWS]-(b) RETURN a, b"},
		{"relationship bare", "MATCH (a)-->(b) RETURN a"},
		{"relationship variable", "MATCH (a)-[r:KNOWS]->(b) RETURN r.since"},
		{"relationship properties", "MATCH (a)-[r:KNOWS {since: 2020}]->(b) RETURN r"},
		{"multi type relationship", "MATCH (a)-[r:KNOWS|LIKES]->(b) RETURN r"},
		{"variable length", "MATCH (a)-[r:KNOWS*1..5]->(b) RETURN a"},
		{"variable length open", "MATCH (a)-[:KNOWS*]->(b) RETURN a"},
		{"variable length min only", "MATCH (a)-[:KNOWS*2..]->(b) RETURN a"},
		{"variable length max only", "MATCH (a)-[:KNOWS*..3]->(b) RETURN a"},
		{"optional relationship", "MATCH (a)-[r:KNOWS?]->(b) RETURN a"},
		{"relationship where", "MATCH (a)-[r:KNOWS WHERE r.since > 2020]->(b) RETURN a"},
		{"path variable", "MATCH p = (a)-[:KNOWS]->(b) RETURN p"},
		{"quantified path pattern", "MATCH ((a:Stop)-[:NEXT]->(b:Stop)){1,3} RETURN a"},
		{"qpp plus", "MATCH ((a)-[:NEXT]->(b))+ RETURN a"},
		{"qpp star", "MATCH ((a)-[:NEXT]->(b))* RETURN a"},
		{"qpp exact", "MATCH ((a)-[:NEXT]->(b)){2} RETURN a"},
		{"qpp open max", "MATCH ((a)-[:NEXT]->(b)){,4} RETURN a"},
		{"qpp inner where", "MATCH ((a:Stop)-[:NEXT]->(b:Stop) WHERE a.id < b.id){1,3} RETURN a"},
		{"qpp with path variable", "MATCH p = ((a)-[:NEXT]->(b)){1,5} RETURN p"},
		{"optional match", "OPTIONAL MATCH (u:User) RETURN u"},
		{"unwind", "UNWIND [1, 2, 3] AS x RETURN x"},
		{"unwind parameter", "UNWIND $ids AS id MATCH (u:User {id: id}) RETURN u"},
		{"call", "CALL db.labels() YIELD label RETURN label"},
		{"call with args", "CALL apoc.text.split('a,b', ',')"},
		{"exists subquery", "MATCH (u:User) WHERE EXISTS { MATCH (u)-[:KNOWS]->() } RETURN u"},
		{"exists pattern", "MATCH (u:User) WHERE EXISTS { (u)-[:KNOWS]->() } RETURN u"},
		{"is null", "MATCH (u:User) WHERE u.email IS NULL RETURN u"},
		{"is not null", "MATCH (u:User) WHERE u.email IS NOT NULL RETURN u"},
		{"in list", "MATCH (n) WHERE n.x IN [1, 2, 3] RETURN n"},
		{"starts with", `MATCH (n) WHERE n.name STARTS WITH "he" RETURN n`},
		{"contains", `MATCH (n) WHERE n.name CONTAINS "ll" RETURN n`},
		{"parenthesized condition", "MATCH (n) WHERE (n.a = 1 OR n.b = 2) AND NOT n.c = 3 RETURN n"},
		{"where function", "MATCH (n) WHERE length(n.name) > 3 RETURN n"},
		{"where coalesce", "MATCH (n) WHERE coalesce(n.x, 0) > 1 RETURN n"},
		{"return distinct", "MATCH (u:User) RETURN DISTINCT u.name"},
		{"count star", "MATCH (u:User) RETURN count(*)"},
		{"list comprehension", "MATCH (u:User) RETURN [x IN u.tags | toUpper(x)]"},
		{"list comprehension filter", "MATCH (u:User) RETURN [x IN u.tags WHERE size(x) > 3]"},
		{"set property", "MATCH (u:User) SET u.name = $name RETURN u"},
		{"set variable", "MATCH (u:User) SET u = $props RETURN u"},
		{"set add assign", "MATCH (u:User) SET u += $props RETURN u"},
		{"set label", "MATCH (u) SET u:Admin RETURN u"},
		{"merge", "MERGE (u:User {id: $id}) RETURN u"},
		{"merge on create", "MERGE (u:User {id: $id}) ON CREATE SET u.name = $name RETURN u"},
		{"merge on match", "MERGE (u:User {id: $id}) ON MATCH SET u.updated = $updated RETURN u"},
		{"merge both actions", "MERGE (u:User {id: $id}) ON CREATE SET u.c = 1 ON MATCH SET u.m = 1"},
		{"delete", "MATCH (u:User) DELETE u"},
		{"detach delete", "MATCH (u:User) DETACH DELETE u"},
		{"remove property", "MATCH (u:User) REMOVE u.name"},
		{"remove label", "MATCH (u) REMOVE u:Admin"},
		{"line comment", "MATCH (n) // trailing\nRETURN n"},
		{"block comment", "MATCH /* inline */ (n) RETURN n"},
		{"semicolon", "MATCH (n) RETURN n;"},
		{"keyword case", "match (n:User) return n.name"},
		{"bom", "\uFEFFMATCH (n) RETURN n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ast, err := grammar.Parse(tt.query)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.query, err)
			}
			if ast == nil {
				t.Fatalf("Parse(%q) returned nil AST", tt.query)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		query string
		kind  grammar.ParseErrorKind
	}{
		{"empty", "", grammar.ErrUnexpectedEOF},
		{"whitespace only", "   \n\t", grammar.ErrUnexpectedEOF},
		{"unclosed node", "MATCH (n RETURN n", grammar.ErrSyntax},
		{"dangling limit", "MATCH (n) RETURN n LIMIT", grammar.ErrUnexpectedEOF},
		{"dangling match", "MATCH", grammar.ErrUnexpectedEOF},
		{"match after return", "MATCH (n) RETURN n MATCH (m) RETURN m", grammar.ErrMatchAfterReturn},
		{"leading return identifier", "RETURN n.name", grammar.ErrReturnBeforeOtherClause},
		{"leading return star", "RETURN *", grammar.ErrReturnBeforeOtherClause},
		{"garbage", "FOO BAR BAZ", grammar.ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := grammar.Parse(tt.query)
			if err == nil {
				t.Fatalf("Parse(%q) expected error", tt.query)
			}
			if !errors.Is(err, grammar.ErrParse) {
				t.Fatalf("Parse(%q) error %v does not match ErrParse", tt.query, err)
			}
			var perr *grammar.ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Parse(%q) error %T is not *ParseError", tt.query, err)
			}
			if perr.Kind != tt.kind {
				t.Errorf("Parse(%q) kind = %s, want %s", tt.query, perr.Kind, tt.kind)
			}
		})
	}
}

func TestParse_IntegerOverflowRejected(t *testing.T) {
	// Literals outside signed 64-bit range are a parse error, not a
	// silent truncation.
	_, err := grammar.Parse("RETURN 99999999999999999999999")
	if err == nil {
		t.Fatal("expected out-of-range integer literal to fail")
	}
	if !errors.Is(err, grammar.ErrParse) {
		t.Fatalf("error %v does not match ErrParse", err)
	}
}

func TestParse_LeadingLiteralReturn(t *testing.T) {
	// Literal-only RETURN is a valid read-only query.
	for _, query := range []string{
		"RETURN 1",
		`RETURN "a", 2, true`,
		"RETURN [1, 2]",
		"RETURN 1 AS one",
		"RETURN timestamp()",
	} {
		if _, err := grammar.Parse(query); err != nil {
			t.Errorf("Parse(%q) error: %v", query, err)
		}
	}
}

func TestParse_ErrorOffset(t *testing.T) {
	_, err := grammar.Parse("MATCH (n) RETURN n MATCH (m) RETURN m")
	var perr *grammar.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if perr.Offset != 19 {
		t.Errorf("Offset = %d, want 19", perr.Offset)
	}
}

func TestQuantifier_Bounds(t *testing.T) {
	ast, err := grammar.Parse("MATCH ((a)-[:NEXT]->(b)){2,5} RETURN a")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	paren := ast.Clauses[0].Match.Pattern.Parts[0].Element.Paren
	if paren == nil || !paren.IsQuantified() {
		t.Fatal("expected a quantified paren pattern")
	}

	min, max := paren.Quantifier.Bounds()
	if min == nil || *min != 2 {
		t.Errorf("min = %v, want 2", min)
	}
	if max == nil || *max != 5 {
		t.Errorf("max = %v, want 5", max)
	}
}

func TestRelationship_Direction(t *testing.T) {
	tests := []struct {
		query string
		want  grammar.Direction
	}{
		{"MATCH (a)-[:R]->(b) RETURN a", grammar.DirectionRight},
		{"MATCH (a)<-[:R]-(b) RETURN a", grammar.DirectionLeft},
		{"MATCH (a)-[:R]-(b) RETURN a", grammar.DirectionUndirected},
	}

	for _, tt := range tests {
		ast, err := grammar.Parse(tt.query)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", tt.query, err)
		}
		rel := ast.Clauses[0].Match.Pattern.Parts[0].Element.Chain[0].Rel
		if got := rel.Direction(); got != tt.want {
			t.Errorf("Direction(%q) = %s, want %s", tt.query, got, tt.want)
		}
	}
}
