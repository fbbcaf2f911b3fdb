package grammar

// checkClauseOrder enforces the clause-ordering rules the AST itself does not
// represent:
//
//   - RETURN cannot be followed by MATCH.
//   - A query may open with RETURN only when the projection is literal-only;
//     a leading RETURN referencing any identifier has nothing to bind it.
func checkClauseOrder(q *Query) *ParseError {
	seenReturn := false

	for _, c := range q.Clauses {
		switch {
		case c.Return != nil:
			seenReturn = true
		case c.Match != nil && seenReturn:
			return &ParseError{
				Kind:    ErrMatchAfterReturn,
				Message: "MATCH cannot follow RETURN",
				Offset:  c.Match.Pos.Offset,
				Line:    c.Match.Pos.Line,
				Column:  c.Match.Pos.Column,
			}
		}
	}

	if first := q.Clauses[0].Return; first != nil && !literalOnlyProjection(first.Body) {
		return &ParseError{
			Kind:    ErrReturnBeforeOtherClause,
			Message: "RETURN referencing identifiers requires a preceding reading or writing clause",
			Offset:  first.Pos.Offset,
			Line:    first.Pos.Line,
			Column:  first.Pos.Column,
		}
	}

	return nil
}

// literalOnlyProjection reports whether every projected expression is free of
// identifier references. RETURN * implicitly references everything.
func literalOnlyProjection(body *ProjectionBody) bool {
	if body == nil || body.Items == nil {
		return false
	}
	if body.Items.Star {
		return false
	}
	for _, item := range body.Items.Items {
		if exprReferencesIdentifier(item.Expr) {
			return false
		}
	}
	return true
}

func exprReferencesIdentifier(e *Expression) bool {
	if e == nil {
		return false
	}
	if xorReferencesIdentifier(e.Left) {
		return true
	}
	for _, t := range e.Right {
		if xorReferencesIdentifier(t.Expr) {
			return true
		}
	}
	return false
}

func xorReferencesIdentifier(x *XorExpr) bool {
	if x == nil {
		return false
	}
	if andReferencesIdentifier(x.Left) {
		return true
	}
	for _, t := range x.Right {
		if andReferencesIdentifier(t.Expr) {
			return true
		}
	}
	return false
}

func andReferencesIdentifier(a *AndExpr) bool {
	if a == nil {
		return false
	}
	if notReferencesIdentifier(a.Left) {
		return true
	}
	for _, t := range a.Right {
		if notReferencesIdentifier(t.Expr) {
			return true
		}
	}
	return false
}

func notReferencesIdentifier(n *NotExpr) bool {
	if n == nil || n.Expr == nil {
		return false
	}
	if addSubReferencesIdentifier(n.Expr.Left) {
		return true
	}
	for _, t := range n.Expr.Right {
		if addSubReferencesIdentifier(t.Expr) {
			return true
		}
	}
	return false
}

func addSubReferencesIdentifier(a *AddSubExpr) bool {
	if a == nil {
		return false
	}
	check := func(m *MultDivExpr) bool {
		if m == nil {
			return false
		}
		pows := []*PowerExpr{m.Left}
		for _, t := range m.Right {
			pows = append(pows, t.Expr)
		}
		for _, p := range pows {
			if p == nil {
				continue
			}
			unaries := []*UnaryExpr{p.Left}
			for _, t := range p.Right {
				unaries = append(unaries, t.Expr)
			}
			for _, u := range unaries {
				if u != nil && postfixReferencesIdentifier(u.Expr) {
					return true
				}
			}
		}
		return false
	}
	if check(a.Left) {
		return true
	}
	for _, t := range a.Right {
		if check(t.Expr) {
			return true
		}
	}
	return false
}

func postfixReferencesIdentifier(p *PostfixExpr) bool {
	if p == nil {
		return false
	}
	if atomReferencesIdentifier(p.Atom) {
		return true
	}
	for _, s := range p.Suffixes {
		if s.Index != nil && (exprReferencesIdentifier(s.Index.Start) || exprReferencesIdentifier(s.Index.End)) {
			return true
		}
		if s.In != nil && addSubReferencesIdentifier(s.In.Expr) {
			return true
		}
		if s.StringPred != nil {
			if addSubReferencesIdentifier(s.StringPred.StartsWith) ||
				addSubReferencesIdentifier(s.StringPred.EndsWith) ||
				addSubReferencesIdentifier(s.StringPred.Contains) {
				return true
			}
		}
	}
	return false
}

func atomReferencesIdentifier(a *Atom) bool {
	switch {
	case a == nil:
		return false
	case a.Variable != "":
		return true
	case a.Parenthesized != nil:
		return exprReferencesIdentifier(a.Parenthesized)
	case a.FunctionCall != nil:
		for _, arg := range a.FunctionCall.Args {
			if exprReferencesIdentifier(arg) {
				return true
			}
		}
		return false
	case a.CaseExpr != nil:
		if exprReferencesIdentifier(a.CaseExpr.Input) || exprReferencesIdentifier(a.CaseExpr.Else) {
			return true
		}
		for _, w := range a.CaseExpr.Whens {
			if exprReferencesIdentifier(w.When) || exprReferencesIdentifier(w.Then) {
				return true
			}
		}
		return false
	case a.ListComprehension != nil:
		return exprReferencesIdentifier(a.ListComprehension.Source)
	case a.PatternComprehension != nil, a.ExistsSubquery != nil, a.CountAll:
		return true
	case a.Literal != nil:
		if a.Literal.List != nil {
			for _, item := range a.Literal.List.Items {
				if exprReferencesIdentifier(item) {
					return true
				}
			}
		}
		if a.Literal.Map != nil {
			for _, pair := range a.Literal.Map.Pairs {
				if exprReferencesIdentifier(pair.Value) {
					return true
				}
			}
		}
		return false
	default:
		return false
	}
}
