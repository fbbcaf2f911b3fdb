package grammar

import (
	"strings"

	"github.com/alecthomas/participle/v2"
)

// parser is the shared Cypher parser instance.
var parser = participle.MustBuild[Query](
	participle.Lexer(cypherLexer),
	participle.Elide("Whitespace", "BlockComment", "LineComment"),
	participle.UseLookahead(10),
	participle.CaseInsensitive("Ident"),
)

// Parse parses a Cypher query into an AST. It fails fast: the first syntax
// violation or clause-ordering violation is returned as a *ParseError and no
// recovery is attempted. A leading UTF-8 BOM is ignored.
func Parse(query string) (*Query, error) {
	query = strings.TrimPrefix(query, "\uFEFF")

	if strings.TrimSpace(query) == "" {
		return nil, &ParseError{
			Kind:    ErrUnexpectedEOF,
			Message: "empty query",
		}
	}

	q, err := parser.ParseString("", query)
	if err != nil {
		return nil, toParseError(err)
	}

	if orderErr := checkClauseOrder(q); orderErr != nil {
		return nil, orderErr
	}

	return q, nil
}

// toParseError converts a participle failure into a *ParseError carrying the
// byte offset of the divergence.
func toParseError(err error) *ParseError {
	var perr participle.Error
	if ok := asParticipleError(err, &perr); ok {
		pos := perr.Position()
		kind := ErrSyntax
		if strings.Contains(perr.Message(), "<EOF>") {
			kind = ErrUnexpectedEOF
		}
		return &ParseError{
			Kind:    kind,
			Message: perr.Message(),
			Offset:  pos.Offset,
			Line:    pos.Line,
			Column:  pos.Column,
		}
	}
	return &ParseError{Kind: ErrSyntax, Message: err.Error()}
}

func asParticipleError(err error, target *participle.Error) bool {
	perr, ok := err.(participle.Error)
	if ok {
		*target = perr
	}
	return ok
}

// String returns the dotted form of a qualified name.
func (n *QualifiedName) String() string {
	if n == nil {
		return ""
	}
	return strings.Join(n.Parts, ".")
}

// String returns the textual form of a property chain, e.g. "a.b.c".
func (p *PropertyChain) String() string {
	if p == nil {
		return ""
	}
	return strings.Join(append([]string{p.Base}, p.Props...), ".")
}

// IsOptional reports whether the relationship carries the ? marker.
func (r *RelationshipPattern) IsOptional() bool {
	return r != nil && r.Detail != nil && r.Detail.Optional
}

// IsQuantified reports whether the parenthesized pattern carries a
// quantifier, making it a quantified path pattern.
func (p *ParenPattern) IsQuantified() bool {
	return p != nil && p.Quantifier != nil
}
