// Package cypherguard validates Cypher queries against a user-supplied graph
// schema.
//
// The pipeline is four pure stages: the schema loader, the parser, the
// element extractor, and the schema validator. This package composes them
// into the top-level calls; the stages live in the schema, grammar, and
// analysis packages and can be used directly when a caller wants the AST or
// the extracted elements.
//
//	s, err := cypherguard.LoadSchema(schemaJSON)
//	if err != nil { ... }
//	diags, err := cypherguard.Validate("MATCH (p:Person) RETURN p.name", s)
//	// err != nil     -> the query did not parse
//	// len(diags) > 0 -> the query parses but violates the schema
//	// both zero      -> the query is valid under the schema
package cypherguard

import (
	"github.com/neo4j-field/cypher-guard/analysis"
	"github.com/neo4j-field/cypher-guard/grammar"
	"github.com/neo4j-field/cypher-guard/schema"
)

// LoadSchema parses a JSON schema document. Both key dialects
// (node_props/nodeProps, {name, neo4j_type}/{property, type}) load
// identically.
func LoadSchema(jsonText string) (*schema.Schema, error) {
	return schema.Load([]byte(jsonText))
}

// LoadSchemaFile reads and parses a JSON schema file.
func LoadSchemaFile(path string) (*schema.Schema, error) {
	return schema.LoadFile(path)
}

// Parse parses a query into its AST, or returns a *grammar.ParseError.
func Parse(query string) (*grammar.Query, error) {
	return grammar.Parse(query)
}

// CheckSyntax reports whether the query is well-formed. It succeeds exactly
// when Parse succeeds.
func CheckSyntax(query string) error {
	_, err := grammar.Parse(query)
	return err
}

// Validate parses the query and cross-references every element it mentions
// against the schema. A parse failure is returned as the error; schema
// violations accumulate in the returned list and are never fatal. An empty
// list with a nil error means the query is valid under the schema.
func Validate(query string, s *schema.Schema) ([]analysis.Diagnostic, error) {
	q, err := grammar.Parse(query)
	if err != nil {
		return nil, err
	}
	return analysis.ValidateQuery(q, s), nil
}

// ValidateQuery reports whether the query passes every schema check.
func ValidateQuery(query string, s *schema.Schema) (bool, error) {
	diags, err := Validate(query, s)
	if err != nil {
		return false, err
	}
	return len(diags) == 0, nil
}

// IsWrite reports whether the query contains an updating clause (CREATE,
// MERGE, SET, DELETE, REMOVE).
func IsWrite(query string) (bool, error) {
	q, err := grammar.Parse(query)
	if err != nil {
		return false, err
	}
	return analysis.IsWrite(q), nil
}

// IsRead reports whether the query only reads.
func IsRead(query string) (bool, error) {
	q, err := grammar.Parse(query)
	if err != nil {
		return false, err
	}
	return analysis.IsRead(q), nil
}

// HasParserErrors reports whether the query fails to parse.
func HasParserErrors(query string) bool {
	return CheckSyntax(query) != nil
}
