package cypherguard

import (
	"github.com/neo4j-field/cypher-guard/grammar"
	"github.com/neo4j-field/cypher-guard/schema"
)

// The three top-level failure categories are disjoint: parse errors and
// schema errors are fatal results, validation diagnostics accumulate.
// Sentinels are re-exported here so callers can errors.Is against this
// package alone.
var (
	// ErrParse matches every parse failure.
	ErrParse = grammar.ErrParse

	// ErrInvalidSchema matches every schema loading failure.
	ErrInvalidSchema = schema.ErrInvalidSchema
)

// ParseError is the structured parse failure type.
type ParseError = grammar.ParseError

// SchemaError is the structured schema loading failure type.
type SchemaError = schema.Error
