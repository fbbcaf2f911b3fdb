// Package grammar parses the supported openCypher subset with participle.
//
// The package contains the lexer, the AST types, the parser, and the
// post-parse clause-ordering checks. The grammar follows the openCypher
// specification (https://github.com/opencypher/openCypher) restricted to the
// clauses and pattern forms the validator understands, and extended with
// quantified path patterns, optional relationships (?), and relationship
// WHERE predicates.
//
// Parsing is fail-fast: the first violation is returned as a *ParseError
// carrying the byte offset of the divergence, and nothing past it is
// recovered.
//
//	ast, err := grammar.Parse("MATCH (u:User) RETURN u.name")
package grammar
