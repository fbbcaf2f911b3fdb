package analysis

import (
	"github.com/neo4j-field/cypher-guard/grammar"
)

// The expression walk descends the precedence ladder recording three things:
// variable references, v.p property accesses, and property-vs-literal
// comparisons for type checking.

func (ex *extractor) where(w *grammar.Where, ctx Context) {
	if w != nil {
		ex.expr(w.Expr, ctx)
	}
}

func (ex *extractor) expr(e *grammar.Expression, ctx Context) {
	if e == nil {
		return
	}
	ex.xor(e.Left, ctx)
	for _, t := range e.Right {
		ex.xor(t.Expr, ctx)
	}
}

func (ex *extractor) xor(x *grammar.XorExpr, ctx Context) {
	if x == nil {
		return
	}
	ex.and(x.Left, ctx)
	for _, t := range x.Right {
		ex.and(t.Expr, ctx)
	}
}

func (ex *extractor) and(a *grammar.AndExpr, ctx Context) {
	if a == nil {
		return
	}
	ex.not(a.Left, ctx)
	for _, t := range a.Right {
		ex.not(t.Expr, ctx)
	}
}

func (ex *extractor) not(n *grammar.NotExpr, ctx Context) {
	if n == nil {
		return
	}
	ex.comparison(n.Expr, ctx)
}

func (ex *extractor) comparison(c *grammar.ComparisonExpr, ctx Context) {
	if c == nil {
		return
	}
	if len(c.Right) == 1 {
		ex.recordComparison(c.Left, c.Right[0].Expr)
	}
	ex.addSub(c.Left, ctx)
	for _, t := range c.Right {
		ex.addSub(t.Expr, ctx)
	}
}

func (ex *extractor) addSub(a *grammar.AddSubExpr, ctx Context) {
	if a == nil {
		return
	}
	ex.multDiv(a.Left, ctx)
	for _, t := range a.Right {
		ex.multDiv(t.Expr, ctx)
	}
}

func (ex *extractor) multDiv(m *grammar.MultDivExpr, ctx Context) {
	if m == nil {
		return
	}
	ex.power(m.Left, ctx)
	for _, t := range m.Right {
		ex.power(t.Expr, ctx)
	}
}

func (ex *extractor) power(p *grammar.PowerExpr, ctx Context) {
	if p == nil {
		return
	}
	ex.unary(p.Left, ctx)
	for _, t := range p.Right {
		ex.unary(t.Expr, ctx)
	}
}

func (ex *extractor) unary(u *grammar.UnaryExpr, ctx Context) {
	if u == nil {
		return
	}
	ex.postfix(u.Expr, ctx)
}

func (ex *extractor) postfix(p *grammar.PostfixExpr, ctx Context) {
	if p == nil {
		return
	}

	if p.Atom != nil && p.Atom.Variable != "" {
		ex.reference(p.Atom.Variable)
		if len(p.Suffixes) > 0 && p.Suffixes[0].Property != "" {
			ex.recordAccess(p.Atom.Variable, p.Suffixes[0].Property, ctx)
		}
	} else {
		ex.atom(p.Atom, ctx)
	}

	for _, s := range p.Suffixes {
		if s.Index != nil {
			ex.expr(s.Index.Start, ctx)
			ex.expr(s.Index.End, ctx)
		}
		if s.In != nil {
			ex.addSub(s.In.Expr, ctx)
		}
		if s.StringPred != nil {
			ex.addSub(s.StringPred.StartsWith, ctx)
			ex.addSub(s.StringPred.EndsWith, ctx)
			ex.addSub(s.StringPred.Contains, ctx)
		}
		if s.Labels != nil {
			// x:Label predicates mention labels.
			for _, label := range s.Labels.Labels {
				ex.elements.addNodeLabel(label)
			}
		}
	}
}

func (ex *extractor) atom(a *grammar.Atom, ctx Context) {
	switch {
	case a == nil:
	case a.ListComprehension != nil:
		lc := a.ListComprehension
		ex.expr(lc.Source, ctx)
		ex.scoped([]string{lc.Variable}, func() {
			ex.where(lc.Where, ctx)
			ex.expr(lc.Mapping, ctx)
		})
	case a.PatternComprehension != nil:
		pc := a.PatternComprehension
		ex.withScopeSnapshot(func() {
			ex.define(pc.Var)
			ex.node(pc.Node)
			prev := pc.Node
			for _, hop := range pc.Chain {
				ex.relationship(hop.Rel)
				ex.node(hop.Node)
				ex.edge(prev, hop.Rel, hop.Node)
				prev = hop.Node
			}
			ex.where(pc.Where, ctx)
			ex.expr(pc.Mapping, ctx)
		})
	case a.Parameter != nil, a.CountAll:
	case a.CaseExpr != nil:
		ce := a.CaseExpr
		ex.expr(ce.Input, ctx)
		for _, w := range ce.Whens {
			ex.expr(w.When, ctx)
			ex.expr(w.Then, ctx)
		}
		ex.expr(ce.Else, ctx)
	case a.FilterPredicate != nil:
		fp := a.FilterPredicate
		ex.expr(fp.Source, ctx)
		ex.scoped([]string{fp.Variable}, func() {
			ex.where(fp.Where, ctx)
		})
	case a.ExistsSubquery != nil:
		sub := a.ExistsSubquery
		ex.withScopeSnapshot(func() {
			for _, c := range sub.Clauses {
				ex.clause(c)
			}
			ex.pattern(sub.Pattern)
		})
	case a.Parenthesized != nil:
		ex.expr(a.Parenthesized, ctx)
	case a.FunctionCall != nil:
		for _, arg := range a.FunctionCall.Args {
			ex.expr(arg, ctx)
		}
	case a.Literal != nil:
		if a.Literal.List != nil {
			for _, item := range a.Literal.List.Items {
				ex.expr(item, ctx)
			}
		}
		if a.Literal.Map != nil {
			for _, pair := range a.Literal.Map.Pairs {
				ex.expr(pair.Value, ctx)
			}
		}
	}
}

// scoped runs fn with extra locally bound variables (comprehension and
// filter-predicate iterators), restoring visibility afterwards.
func (ex *extractor) scoped(vars []string, fn func()) {
	added := make([]string, 0, len(vars))
	for _, v := range vars {
		if v != "" && !ex.inScope[v] {
			ex.inScope[v] = true
			added = append(added, v)
		}
	}
	fn()
	for _, v := range added {
		delete(ex.inScope, v)
	}
}

// withScopeSnapshot runs fn against a copy of the current scope and bindings
// so pattern-comprehension and EXISTS-subquery variables stay local.
func (ex *extractor) withScopeSnapshot(fn func()) {
	savedScope := ex.inScope
	savedBindings := ex.bindings

	ex.inScope = make(map[string]bool, len(savedScope))
	for v := range savedScope {
		ex.inScope[v] = true
	}
	ex.bindings = make(map[string]binding, len(savedBindings))
	for v, b := range savedBindings {
		ex.bindings[v] = b
	}

	fn()

	ex.inScope = savedScope
	ex.bindings = savedBindings
}

// ----------------------------------------------------------------------------
// Comparison and literal detection
// ----------------------------------------------------------------------------

// recordComparison files v.p <op> value when one side is a simple property
// access and the other a statically classifiable value, in either
// orientation.
func (ex *extractor) recordComparison(left, right *grammar.AddSubExpr) {
	if v, p, ok := propertyAccessOf(left); ok {
		if lit, ok2 := literalOfAddSub(right); ok2 && comparableKind(lit.Kind) {
			ex.addComparison(v, p, lit)
			return
		}
	}
	if v, p, ok := propertyAccessOf(right); ok {
		if lit, ok2 := literalOfAddSub(left); ok2 && comparableKind(lit.Kind) {
			ex.addComparison(v, p, lit)
		}
	}
}

func (ex *extractor) addComparison(variable, property string, value LiteralValue) {
	comp := PropertyComparison{
		Variable: variable,
		Property: property,
		Value:    value,
	}
	if b, ok := ex.bindings[variable]; ok {
		comp.Owner = b.name
		comp.OwnerRel = b.rel
	}
	ex.elements.PropertyComparisons = append(ex.elements.PropertyComparisons, comp)
}

// comparableKind reports whether a compared value's kind is precise enough
// to type-check. Parameters and identifiers are never mismatches.
func comparableKind(k LiteralKind) bool {
	switch k {
	case KindString, KindInteger, KindFloat, KindBoolean, KindList, KindMap, KindFunction:
		return true
	default:
		return false
	}
}

// propertyAccessOf matches a bare v.p chain: no operators, no unary sign,
// exactly one property suffix.
func propertyAccessOf(a *grammar.AddSubExpr) (variable, property string, ok bool) {
	post, ok := singlePostfix(a)
	if !ok || a.Left.Left.Left.Op != "" || post.Atom == nil || post.Atom.Variable == "" {
		return "", "", false
	}
	if len(post.Suffixes) != 1 || post.Suffixes[0].Property == "" {
		return "", "", false
	}
	return post.Atom.Variable, post.Suffixes[0].Property, true
}

// literalOfAddSub classifies a single-chain operand.
func literalOfAddSub(a *grammar.AddSubExpr) (LiteralValue, bool) {
	post, ok := singlePostfix(a)
	if !ok || len(post.Suffixes) != 0 {
		return LiteralValue{Kind: KindUnknown}, false
	}
	return atomLiteral(post.Atom)
}

// literalOfExpression classifies a full expression that is a single operand
// chain (used for inline property map values).
func literalOfExpression(e *grammar.Expression) (LiteralValue, bool) {
	a, ok := singleAddSub(e)
	if !ok {
		return LiteralValue{Kind: KindUnknown}, false
	}
	return literalOfAddSub(a)
}

func singleAddSub(e *grammar.Expression) (*grammar.AddSubExpr, bool) {
	if e == nil || len(e.Right) > 0 || e.Left == nil || len(e.Left.Right) > 0 {
		return nil, false
	}
	and := e.Left.Left
	if and == nil || len(and.Right) > 0 || and.Left == nil || and.Left.Not {
		return nil, false
	}
	comp := and.Left.Expr
	if comp == nil || len(comp.Right) > 0 {
		return nil, false
	}
	return comp.Left, true
}

func singlePostfix(a *grammar.AddSubExpr) (*grammar.PostfixExpr, bool) {
	if a == nil || len(a.Right) > 0 || a.Left == nil || len(a.Left.Right) > 0 {
		return nil, false
	}
	pow := a.Left.Left
	if pow == nil || len(pow.Right) > 0 || pow.Left == nil {
		return nil, false
	}
	unary := pow.Left
	if unary.Expr == nil {
		return nil, false
	}
	return unary.Expr, true
}

func atomLiteral(a *grammar.Atom) (LiteralValue, bool) {
	switch {
	case a == nil:
		return LiteralValue{Kind: KindUnknown}, false
	case a.Literal != nil:
		return classifyLiteral(a.Literal)
	case a.FunctionCall != nil:
		return LiteralValue{Kind: KindFunction, Function: a.FunctionCall.Name.String()}, true
	case a.Parameter != nil:
		return LiteralValue{Kind: KindParameter}, true
	case a.Variable != "":
		return LiteralValue{Kind: KindIdentifier}, true
	case a.Parenthesized != nil:
		return literalOfExpression(a.Parenthesized)
	default:
		return LiteralValue{Kind: KindUnknown}, false
	}
}

func classifyLiteral(l *grammar.Literal) (LiteralValue, bool) {
	switch {
	case l.Null:
		return LiteralValue{Kind: KindNull}, true
	case l.True, l.False:
		return LiteralValue{Kind: KindBoolean}, true
	case l.Float != nil:
		return LiteralValue{Kind: KindFloat}, true
	case l.Int != nil, l.HexInt != nil, l.OctInt != nil:
		return LiteralValue{Kind: KindInteger}, true
	case l.String != nil:
		return LiteralValue{Kind: KindString}, true
	case l.List != nil:
		return LiteralValue{Kind: KindList}, true
	case l.Map != nil:
		value := LiteralValue{Kind: KindMap, MapNumeric: true}
		for _, pair := range l.Map.Pairs {
			value.MapKeys = append(value.MapKeys, pair.Key)
			entry, ok := literalOfExpression(pair.Value)
			if !ok || (entry.Kind != KindInteger && entry.Kind != KindFloat) {
				value.MapNumeric = false
			}
		}
		return value, true
	default:
		return LiteralValue{Kind: KindUnknown}, false
	}
}

// bareVariable returns the variable name when the expression is exactly one
// identifier, or "".
func bareVariable(e *grammar.Expression) string {
	a, ok := singleAddSub(e)
	if !ok {
		return ""
	}
	post, ok := singlePostfix(a)
	if !ok || len(post.Suffixes) != 0 || post.Atom == nil {
		return ""
	}
	return post.Atom.Variable
}
