package grammar

import (
	"errors"
	"fmt"
)

// ParseErrorKind discriminates parse failures.
type ParseErrorKind string

// Parse error kinds.
const (
	ErrSyntax                  ParseErrorKind = "syntax"
	ErrUnexpectedEOF           ParseErrorKind = "unexpected_eof"
	ErrReturnBeforeOtherClause ParseErrorKind = "return_before_other_clauses"
	ErrMatchAfterReturn        ParseErrorKind = "match_after_return"
	ErrInvalidClauseOrder      ParseErrorKind = "invalid_clause_order"
)

// ErrParse is the sentinel all parse errors wrap, for errors.Is tests.
var ErrParse = errors.New("grammar: parse error")

// ParseError is a fail-fast syntax failure. Offset is the byte offset into
// the original query at which the input diverged.
type ParseError struct {
	Kind    ParseErrorKind `json:"kind"`
	Message string         `json:"message"`
	Offset  int            `json:"offset"`
	Line    int            `json:"line"`
	Column  int            `json:"column"`
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Column, e.Message)
}

// Is makes errors.Is(err, ErrParse) hold for every *ParseError.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}
