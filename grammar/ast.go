package grammar

import "github.com/alecthomas/participle/v2/lexer"

// ----------------------------------------------------------------------------
// Cypher AST
//
// The tree mirrors the supported openCypher subset. It is produced only by
// Parse, consumed read-only by the analysis package, and holds no
// back-references; positions are lexer.Position values carrying byte offsets
// into the original query text.
// ----------------------------------------------------------------------------

// Query is the root of a parse tree: a sequence of clauses with an optional
// trailing semicolon.
type Query struct {
	Pos     lexer.Position
	Clauses []*Clause `@@+`
	Semi    string    `@Semicolon?`
}

// Clause is any single clause. Alternatives are keyed by their leading
// keyword, so declaration order only matters for error messages.
type Clause struct {
	Pos    lexer.Position
	Match  *MatchClause  `  @@`
	Unwind *UnwindClause `| @@`
	Call   *CallClause   `| @@`
	Create *CreateClause `| @@`
	Merge  *MergeClause  `| @@`
	Delete *DeleteClause `| @@`
	Set    *SetClause    `| @@`
	Remove *RemoveClause `| @@`
	With   *WithClause   `| @@`
	Return *ReturnClause `| @@`
	Limit  *LimitClause  `| @@`
}

// ----------------------------------------------------------------------------
// Clauses
// ----------------------------------------------------------------------------

// MatchClause is OPTIONAL? MATCH pattern-list WHERE?.
type MatchClause struct {
	Pos      lexer.Position
	Optional bool     `@"OPTIONAL"?`
	Pattern  *Pattern `"MATCH" @@`
	Where    *Where   `@@?`
}

// UnwindClause is UNWIND expr AS variable.
type UnwindClause struct {
	Pos      lexer.Position
	Expr     *Expression `"UNWIND" @@`
	Variable string      `"AS" @Ident`
}

// CallClause is CALL qualified.name(args) with optional YIELD items.
type CallClause struct {
	Pos       lexer.Position
	Procedure *QualifiedName `"CALL" @@`
	Args      []*Expression  `( LParen ( @@ ( Comma @@ )* )? RParen )?`
	Yield     *YieldClause   `( "YIELD" @@ )?`
}

// YieldClause is the item list after YIELD.
type YieldClause struct {
	Pos   lexer.Position
	Star  bool         `( @Star`
	Items []*YieldItem `| @@ ( Comma @@ )* )`
	Where *Where       `@@?`
}

// YieldItem is a yielded column with an optional alias.
type YieldItem struct {
	Pos    lexer.Position
	Source string `( @Ident "AS" )?`
	Target string `@Ident`
}

// CreateClause is CREATE pattern-list.
type CreateClause struct {
	Pos     lexer.Position
	Pattern *Pattern `"CREATE" @@`
}

// MergeClause is MERGE pattern with optional ON CREATE / ON MATCH actions.
type MergeClause struct {
	Pos     lexer.Position
	Pattern *PatternPart   `"MERGE" @@`
	Actions []*MergeAction `@@*`
}

// MergeAction is ON CREATE SET ... or ON MATCH SET ....
type MergeAction struct {
	Pos      lexer.Position
	OnMatch  bool       `"ON" ( @"MATCH"`
	OnCreate bool       `     | @"CREATE" )`
	Set      *SetClause `@@`
}

// DeleteClause is DETACH? DELETE expression-list.
type DeleteClause struct {
	Pos    lexer.Position
	Detach bool          `@"DETACH"?`
	Exprs  []*Expression `"DELETE" @@ ( Comma @@ )*`
}

// SetClause is SET assignment-list.
type SetClause struct {
	Pos   lexer.Position
	Items []*SetItem `"SET" @@ ( Comma @@ )*`
}

// SetItem is one assignment: a property assignment (v.p = expr), a variable
// assignment or merge (v = expr, v += expr), or a label assignment (v:Label).
type SetItem struct {
	Pos          lexer.Position
	Property     *PropertyChain `( @@ Eq`
	PropertyExpr *Expression    `  @@ )`
	Variable     string         `| ( @Ident`
	AddAssign    bool           `  ( @AddAssign`
	Assign       bool           `  | @Eq )`
	VarExpr      *Expression    `  @@ )`
	LabelVar     string         `| @Ident`
	Labels       *NodeLabels    `  @@`
}

// RemoveClause is REMOVE item-list.
type RemoveClause struct {
	Pos   lexer.Position
	Items []*RemoveItem `"REMOVE" @@ ( Comma @@ )*`
}

// RemoveItem removes a property (v.p) or labels (v:Label).
type RemoveItem struct {
	Pos      lexer.Position
	Property *PropertyChain `  @@`
	Variable string         `| @Ident`
	Labels   *NodeLabels    `  @@`
}

// WithClause is WITH projection WHERE?.
type WithClause struct {
	Pos   lexer.Position
	Body  *ProjectionBody `"WITH" @@`
	Where *Where          `@@?`
}

// ReturnClause is RETURN projection.
type ReturnClause struct {
	Pos  lexer.Position
	Body *ProjectionBody `"RETURN" @@`
}

// ProjectionBody is the shared body of RETURN and WITH.
type ProjectionBody struct {
	Pos      lexer.Position
	Distinct bool             `@"DISTINCT"?`
	Items    *ProjectionItems `@@`
	Order    *OrderBy         `@@?`
	Skip     *Skip            `@@?`
	Limit    *Limit           `@@?`
}

// ProjectionItems is * or an item list (or both: WITH *, extra AS x).
type ProjectionItems struct {
	Pos   lexer.Position
	Star  bool              `( @Star ( Comma`
	Items []*ProjectionItem `  @@ ( Comma @@ )* )? | @@ ( Comma @@ )* )`
}

// ProjectionItem is an expression with an optional AS alias.
type ProjectionItem struct {
	Pos   lexer.Position
	Expr  *Expression `@@`
	Alias string      `( "AS" @Ident )?`
}

// OrderBy is ORDER BY item-list.
type OrderBy struct {
	Pos   lexer.Position
	Items []*OrderItem `"ORDER" "BY" @@ ( Comma @@ )*`
}

// OrderItem is an ordering expression with an optional direction.
type OrderItem struct {
	Pos  lexer.Position
	Expr *Expression `@@`
	Desc bool        `( @( "DESC" | "DESCENDING" ) | "ASC" | "ASCENDING" )?`
}

// Skip is SKIP expr.
type Skip struct {
	Pos  lexer.Position
	Expr *Expression `"SKIP" @@`
}

// Limit is the projection-trailing LIMIT expr.
type Limit struct {
	Pos  lexer.Position
	Expr *Expression `"LIMIT" @@`
}

// LimitClause is a standalone LIMIT taking an integer or parameter.
type LimitClause struct {
	Pos   lexer.Position
	Count *int64     `"LIMIT" ( @Int`
	Param *Parameter `        | @@ )`
}

// Where is WHERE condition.
type Where struct {
	Pos  lexer.Position
	Expr *Expression `"WHERE" @@`
}

// ----------------------------------------------------------------------------
// Patterns
// ----------------------------------------------------------------------------

// Pattern is a comma-separated list of pattern parts.
type Pattern struct {
	Pos   lexer.Position
	Parts []*PatternPart `@@ ( Comma @@ )*`
}

// PatternPart is an optional path-variable assignment and a pattern element.
type PatternPart struct {
	Pos      lexer.Position
	Variable string          `( @Ident Eq )?`
	Element  *PatternElement `@@`
}

// PatternElement is a seed (node or parenthesized sub-pattern) followed by a
// repeated relationship/node tail.
type PatternElement struct {
	Pos   lexer.Position
	Paren *ParenPattern   `( @@`
	Node  *NodePattern    `| @@ )`
	Chain []*PatternChain `@@*`
}

// PatternChain is one (relationship, node) hop of a path.
type PatternChain struct {
	Pos  lexer.Position
	Rel  *RelationshipPattern `@@`
	Node *NodePattern         `@@`
}

// ParenPattern is a parenthesized pattern element with an optional inner
// WHERE and an optional trailing quantifier. With a quantifier it is a
// quantified path pattern: ((a)-[:R]->(b)){1,3}.
type ParenPattern struct {
	Pos        lexer.Position
	Inner      *PatternElement `LParen @@`
	Where      *Where          `@@? RParen`
	Quantifier *Quantifier     `@@?`
}

// Quantifier is +, *, or a braced repetition {n}, {n,m}, {n,}, {,m}.
type Quantifier struct {
	Pos   lexer.Position
	Plus  bool   `  @Plus`
	Star  bool   `| @Star`
	Min   *int64 `| LBrace @Int?`
	Comma bool   `  @Comma?`
	Max   *int64 `  @Int? RBrace`
}

// Bounds resolves the quantifier to (min, max); nil means unbounded.
func (q *Quantifier) Bounds() (min, max *int64) {
	switch {
	case q == nil:
		return nil, nil
	case q.Plus:
		one := int64(1)
		return &one, nil
	case q.Star:
		zero := int64(0)
		return &zero, nil
	case !q.Comma && q.Min != nil:
		// {n} repeats exactly n times.
		return q.Min, q.Min
	default:
		return q.Min, q.Max
	}
}

// NodePattern is (variable? :Label* properties?).
type NodePattern struct {
	Pos        lexer.Position
	Variable   string      `LParen @Ident?`
	Labels     *NodeLabels `@@?`
	Properties *Properties `@@? RParen`
}

// NodeLabels is one or more :Label segments.
type NodeLabels struct {
	Pos    lexer.Position
	Labels []string `( Colon @Ident )+`
}

// First returns the first label, or "".
func (l *NodeLabels) First() string {
	if l == nil || len(l.Labels) == 0 {
		return ""
	}
	return l.Labels[0]
}

// Properties is an inline property map or a parameter.
type Properties struct {
	Pos   lexer.Position
	Map   *MapLiteral `  @@`
	Param *Parameter  `| @@`
}

// RelationshipPattern is -[...]->, <-[...]-, or -[...]-; the bracket detail
// is optional (bare -- arrows).
type RelationshipPattern struct {
	Pos        lexer.Position
	LeftArrow  bool                `@Less? Minus`
	Detail     *RelationshipDetail `( LBracket @@ RBracket )?`
	RightArrow bool                `Minus @Greater?`
}

// Direction classifies the arrowheads.
type Direction string

// Relationship directions.
const (
	DirectionLeft       Direction = "left"
	DirectionRight      Direction = "right"
	DirectionUndirected Direction = "undirected"
)

// Direction returns the pattern's direction. A double-headed arrow is
// treated as undirected.
func (r *RelationshipPattern) Direction() Direction {
	switch {
	case r.LeftArrow && !r.RightArrow:
		return DirectionLeft
	case r.RightArrow && !r.LeftArrow:
		return DirectionRight
	default:
		return DirectionUndirected
	}
}

// RelationshipDetail is the bracketed body: variable, :TYPE|TYPE alternation,
// ? for optional relationships, *min..max length, inline properties, and an
// inner WHERE.
type RelationshipDetail struct {
	Pos        lexer.Position
	Variable   string             `@Ident?`
	Types      *RelationshipTypes `@@?`
	Optional   bool               `@Question?`
	Length     *LengthRange       `@@?`
	Properties *Properties        `@@?`
	Where      *Where             `@@?`
}

// RelationshipTypes is :TYPE or :A|B (| B and |:B both accepted).
type RelationshipTypes struct {
	Pos   lexer.Position
	Types []string `Colon @Ident ( Pipe Colon? @Ident )*`
}

// First returns the first type, or "".
func (t *RelationshipTypes) First() string {
	if t == nil || len(t.Types) == 0 {
		return ""
	}
	return t.Types[0]
}

// LengthRange is the variable-length *, *n, *n..m, *n.., *..m forms.
type LengthRange struct {
	Pos   lexer.Position
	Star  string `@Star`
	Min   *int64 `@Int?`
	Range bool   `@Range?`
	Max   *int64 `@Int?`
}

// ----------------------------------------------------------------------------
// Expressions
//
// Precedence, lowest to highest: OR, XOR, AND, NOT, comparison, +/-, */ /%,
// ^, unary +/-, postfix (property access, indexing, IS NULL, IN, string
// predicates), atom.
// ----------------------------------------------------------------------------

// Expression is the top level (OR).
type Expression struct {
	Pos   lexer.Position
	Left  *XorExpr  `@@`
	Right []*OrTerm `@@*`
}

// OrTerm is one OR operand.
type OrTerm struct {
	Pos  lexer.Position
	Expr *XorExpr `"OR" @@`
}

// XorExpr handles XOR.
type XorExpr struct {
	Pos   lexer.Position
	Left  *AndExpr   `@@`
	Right []*XorTerm `@@*`
}

// XorTerm is one XOR operand.
type XorTerm struct {
	Pos  lexer.Position
	Expr *AndExpr `"XOR" @@`
}

// AndExpr handles AND.
type AndExpr struct {
	Pos   lexer.Position
	Left  *NotExpr   `@@`
	Right []*AndTerm `@@*`
}

// AndTerm is one AND operand.
type AndTerm struct {
	Pos  lexer.Position
	Expr *NotExpr `"AND" @@`
}

// NotExpr handles NOT (stacked NOTs collapse into one flag per level).
type NotExpr struct {
	Pos  lexer.Position
	Not  bool            `@"NOT"?`
	Expr *ComparisonExpr `@@`
}

// ComparisonExpr handles =, <>, <, <=, >, >=.
type ComparisonExpr struct {
	Pos   lexer.Position
	Left  *AddSubExpr       `@@`
	Right []*ComparisonTerm `@@*`
}

// ComparisonTerm is one comparison operator and operand.
type ComparisonTerm struct {
	Pos  lexer.Position
	Op   string      `@( NotEqual | LessEqual | GreaterEqual | Eq | Less | Greater )`
	Expr *AddSubExpr `@@`
}

// AddSubExpr handles + and -.
type AddSubExpr struct {
	Pos   lexer.Position
	Left  *MultDivExpr  `@@`
	Right []*AddSubTerm `@@*`
}

// AddSubTerm is one + or - operand.
type AddSubTerm struct {
	Pos  lexer.Position
	Op   string       `@( Plus | Minus )`
	Expr *MultDivExpr `@@`
}

// MultDivExpr handles *, /, %.
type MultDivExpr struct {
	Pos   lexer.Position
	Left  *PowerExpr     `@@`
	Right []*MultDivTerm `@@*`
}

// MultDivTerm is one *, /, or % operand.
type MultDivTerm struct {
	Pos  lexer.Position
	Op   string     `@( Star | Slash | Percent )`
	Expr *PowerExpr `@@`
}

// PowerExpr handles ^.
type PowerExpr struct {
	Pos   lexer.Position
	Left  *UnaryExpr   `@@`
	Right []*PowerTerm `@@*`
}

// PowerTerm is one ^ operand.
type PowerTerm struct {
	Pos  lexer.Position
	Expr *UnaryExpr `Caret @@`
}

// UnaryExpr handles unary + and -.
type UnaryExpr struct {
	Pos  lexer.Position
	Op   string       `@( Plus | Minus )?`
	Expr *PostfixExpr `@@`
}

// PostfixExpr is an atom with postfix suffixes.
type PostfixExpr struct {
	Pos      lexer.Position
	Atom     *Atom            `@@`
	Suffixes []*PostfixSuffix `@@*`
}

// PostfixSuffix is property access, indexing, label test, IS NULL, IN, or a
// string predicate.
type PostfixSuffix struct {
	Pos        lexer.Position
	Property   string            `  Dot @Ident`
	Index      *IndexSuffix      `| @@`
	Labels     *NodeLabels       `| @@`
	IsNull     *IsNullSuffix     `| @@`
	In         *InSuffix         `| @@`
	StringPred *StringPredSuffix `| @@`
}

// IndexSuffix is [expr] or [start..end].
type IndexSuffix struct {
	Pos   lexer.Position
	Start *Expression `LBracket @@?`
	Range bool        `@Range?`
	End   *Expression `@@? RBracket`
}

// IsNullSuffix is IS NOT? NULL.
type IsNullSuffix struct {
	Pos  lexer.Position
	Not  bool `"IS" @"NOT"?`
	Null bool `@"NULL"`
}

// InSuffix is IN expr. AddSubExpr keeps the operand below comparison
// precedence, avoiding left recursion.
type InSuffix struct {
	Pos  lexer.Position
	Expr *AddSubExpr `"IN" @@`
}

// StringPredSuffix is STARTS WITH, ENDS WITH, or CONTAINS.
type StringPredSuffix struct {
	Pos        lexer.Position
	StartsWith *AddSubExpr `  "STARTS" "WITH" @@`
	EndsWith   *AddSubExpr `| "ENDS" "WITH" @@`
	Contains   *AddSubExpr `| "CONTAINS" @@`
}

// ----------------------------------------------------------------------------
// Atoms
// ----------------------------------------------------------------------------

// Atom is the base expression form. Order disambiguates: comprehensions
// before list literals (both open with [), FunctionCall uses lookahead for
// LParen, Variable is the fallback Ident.
type Atom struct {
	Pos                  lexer.Position
	ListComprehension    *ListComprehension    `  @@`
	PatternComprehension *PatternComprehension `| @@`
	Parameter            *Parameter            `| @@`
	CaseExpr             *CaseExpression       `| @@`
	CountAll             bool                  `| @( "COUNT" LParen Star RParen )`
	FilterPredicate      *FilterPredicate      `| @@`
	ExistsSubquery       *ExistsSubquery       `| @@`
	Parenthesized        *Expression           `| LParen @@ RParen`
	FunctionCall         *FunctionCall         `| @@`
	Literal              *Literal              `| @@`
	Variable             string                `| @Ident`
}

// Literal is a constant value.
type Literal struct {
	Pos    lexer.Position
	Null   bool         `  @"NULL"`
	True   bool         `| @"TRUE"`
	False  bool         `| @"FALSE"`
	Float  *float64     `| @Float`
	HexInt *string      `| @HexInt`
	OctInt *string      `| @OctalInt`
	Int    *int64       `| @Int`
	String *string      `| @String`
	List   *ListLiteral `| @@`
	Map    *MapLiteral  `| @@`
}

// ListLiteral is [expr, ...]. ListComprehension is tried first in Atom, so a
// leading "ident IN" never reaches this production.
type ListLiteral struct {
	Pos   lexer.Position
	Items []*Expression `LBracket ( @@ ( Comma @@ )* )? RBracket`
}

// MapLiteral is {key: value, ...}.
type MapLiteral struct {
	Pos   lexer.Position
	Pairs []*MapPair `LBrace ( @@ ( Comma @@ )* )? RBrace`
}

// MapPair is one key: value entry.
type MapPair struct {
	Pos   lexer.Position
	Key   string      `@Ident Colon`
	Value *Expression `@@`
}

// Parameter is $name or $0.
type Parameter struct {
	Pos  lexer.Position
	Name string `Dollar ( @Ident | @Int )`
}

// ListComprehension is [x IN list WHERE cond | mapping].
type ListComprehension struct {
	Pos      lexer.Position
	Variable string      `LBracket @Ident "IN"`
	Source   *Expression `@@`
	Where    *Where      `@@?`
	Mapping  *Expression `( Pipe @@ )? RBracket`
}

// PatternComprehension is [(v =)? pattern WHERE cond | mapping].
type PatternComprehension struct {
	Pos     lexer.Position
	Var     string        `LBracket ( @Ident Eq )?`
	Node    *NodePattern  `@@`
	Chain   []*PatternChain `@@+`
	Where   *Where        `@@?`
	Mapping *Expression   `Pipe @@ RBracket`
}

// FilterPredicate is ALL/ANY/NONE/SINGLE(x IN list WHERE cond).
type FilterPredicate struct {
	Pos      lexer.Position
	Kind     string      `@( "ALL" | "ANY" | "NONE" | "SINGLE" )`
	Variable string      `LParen @Ident "IN"`
	Source   *Expression `@@`
	Where    *Where      `@@? RParen`
}

// ExistsSubquery is EXISTS { query-or-pattern }.
type ExistsSubquery struct {
	Pos     lexer.Position
	Clauses []*Clause `"EXISTS" LBrace ( @@+`
	Pattern *Pattern  `               | @@ ) RBrace`
}

// CaseExpression covers both simple and searched CASE.
type CaseExpression struct {
	Pos   lexer.Position
	Input *Expression `"CASE" ( (?! "WHEN" ) @@ )?`
	Whens []*CaseWhen `@@+`
	Else  *Expression `( "ELSE" @@ )?`
	End   bool        `@"END"`
}

// CaseWhen is WHEN condition THEN result.
type CaseWhen struct {
	Pos  lexer.Position
	When *Expression `"WHEN" @@`
	Then *Expression `"THEN" @@`
}

// FunctionCall is name(args); the positive lookahead keeps bare identifiers
// and property chains out of this production.
type FunctionCall struct {
	Pos      lexer.Position
	Name     *QualifiedName `@@ (?= LParen )`
	Distinct bool           `LParen @"DISTINCT"?`
	Args     []*Expression  `( @@ ( Comma @@ )* )? RParen`
}

// QualifiedName is a dotted name such as apoc.coll.sum.
type QualifiedName struct {
	Pos   lexer.Position
	Parts []string `@Ident ( Dot @Ident )*`
}

// PropertyChain is a.b.c outside expression context (SET and REMOVE items).
type PropertyChain struct {
	Pos   lexer.Position
	Base  string   `@Ident`
	Props []string `( Dot @Ident )+`
}
