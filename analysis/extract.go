package analysis

import (
	"github.com/neo4j-field/cypher-guard/grammar"
)

// Extract walks a parsed query and collects every schema reference it makes.
// The walk follows clause order so that WITH re-scoping is observed: after a
// WITH, only the projected aliases remain visible, and a bare-variable
// projection forwards its label/type binding to the alias.
func Extract(q *grammar.Query) *QueryElements {
	ex := &extractor{
		elements: newQueryElements(),
		bindings: map[string]binding{},
		inScope:  map[string]bool{},
	}
	for _, c := range q.Clauses {
		ex.clause(c)
	}
	return ex.elements
}

// binding ties a variable to a node label or relationship type.
type binding struct {
	rel  bool
	name string
}

type extractor struct {
	elements *QueryElements
	bindings map[string]binding
	inScope  map[string]bool
}

func (ex *extractor) define(v string) {
	if v == "" {
		return
	}
	ex.inScope[v] = true
	ex.elements.addDefined(v)
}

func (ex *extractor) reference(v string) {
	if v == "" {
		return
	}
	ex.elements.addReferenced(v)
	if !ex.inScope[v] {
		ex.elements.addUndefined(v)
	}
}

func (ex *extractor) bindNode(v, label string) {
	if v == "" || label == "" {
		return
	}
	ex.bindings[v] = binding{name: label}
	ex.elements.VariableNodeBindings[v] = label
}

func (ex *extractor) bindRel(v, relType string) {
	if v == "" || relType == "" {
		return
	}
	ex.bindings[v] = binding{rel: true, name: relType}
	ex.elements.VariableRelBindings[v] = relType
}

// ----------------------------------------------------------------------------
// Clauses
// ----------------------------------------------------------------------------

func (ex *extractor) clause(c *grammar.Clause) {
	switch {
	case c.Match != nil:
		ex.pattern(c.Match.Pattern)
		ex.where(c.Match.Where, ContextWhere)
	case c.Unwind != nil:
		ex.expr(c.Unwind.Expr, ContextUnwind)
		ex.define(c.Unwind.Variable)
	case c.Call != nil:
		for _, arg := range c.Call.Args {
			ex.expr(arg, ContextCall)
		}
		if y := c.Call.Yield; y != nil {
			for _, item := range y.Items {
				ex.define(item.Target)
			}
			ex.where(y.Where, ContextWhere)
		}
	case c.Create != nil:
		ex.pattern(c.Create.Pattern)
	case c.Merge != nil:
		ex.patternPart(c.Merge.Pattern)
		for _, action := range c.Merge.Actions {
			ex.set(action.Set)
		}
	case c.Delete != nil:
		for _, e := range c.Delete.Exprs {
			ex.expr(e, ContextWhere)
		}
	case c.Set != nil:
		ex.set(c.Set)
	case c.Remove != nil:
		ex.remove(c.Remove)
	case c.With != nil:
		ex.with(c.With)
	case c.Return != nil:
		ex.projection(c.Return.Body, ContextReturn)
	case c.Limit != nil:
		// Standalone LIMIT carries no schema references.
	}
}

func (ex *extractor) set(s *grammar.SetClause) {
	if s == nil {
		return
	}
	for _, item := range s.Items {
		switch {
		case item.Property != nil:
			ex.propertyChain(item.Property, ContextSet)
			ex.expr(item.PropertyExpr, ContextSet)
		case item.Variable != "":
			ex.reference(item.Variable)
			ex.expr(item.VarExpr, ContextSet)
		case item.LabelVar != "":
			ex.reference(item.LabelVar)
			for _, label := range item.Labels.Labels {
				ex.elements.addNodeLabel(label)
			}
		}
	}
}

func (ex *extractor) remove(r *grammar.RemoveClause) {
	for _, item := range r.Items {
		switch {
		case item.Property != nil:
			ex.propertyChain(item.Property, ContextSet)
		case item.Variable != "":
			ex.reference(item.Variable)
			if item.Labels != nil {
				for _, label := range item.Labels.Labels {
					ex.elements.addNodeLabel(label)
				}
			}
		}
	}
}

// propertyChain records a v.p access site from SET/REMOVE items.
func (ex *extractor) propertyChain(p *grammar.PropertyChain, ctx Context) {
	if p == nil || len(p.Props) == 0 {
		return
	}
	ex.reference(p.Base)
	ex.recordAccess(p.Base, p.Props[0], ctx)
}

func (ex *extractor) with(w *grammar.WithClause) {
	body := w.Body
	if body == nil || body.Items == nil {
		return
	}

	for _, item := range body.Items.Items {
		ex.expr(item.Expr, ContextWith)
	}

	// WITH opens a new scope: only the projected aliases survive. A bare
	// variable projection forwards its binding; WITH * forwards everything.
	newBindings := map[string]binding{}
	newScope := map[string]bool{}

	if body.Items.Star {
		for v, b := range ex.bindings {
			newBindings[v] = b
		}
		for v := range ex.inScope {
			newScope[v] = true
		}
	}

	for _, item := range body.Items.Items {
		source := bareVariable(item.Expr)
		alias := item.Alias
		if alias == "" {
			alias = source
		}
		if alias == "" {
			continue
		}
		newScope[alias] = true
		ex.elements.addDefined(alias)
		if source != "" {
			if b, ok := ex.bindings[source]; ok {
				newBindings[alias] = b
				if b.rel {
					ex.elements.VariableRelBindings[alias] = b.name
				} else {
					ex.elements.VariableNodeBindings[alias] = b.name
				}
			}
		}
	}

	ex.bindings = newBindings
	ex.inScope = newScope

	ex.where(w.Where, ContextWhere)
}

func (ex *extractor) projection(body *grammar.ProjectionBody, ctx Context) {
	if body == nil || body.Items == nil {
		return
	}
	for _, item := range body.Items.Items {
		ex.expr(item.Expr, ctx)
	}
	if body.Order != nil {
		for _, item := range body.Order.Items {
			ex.expr(item.Expr, ctx)
		}
	}
	if body.Skip != nil {
		ex.expr(body.Skip.Expr, ctx)
	}
	if body.Limit != nil {
		ex.expr(body.Limit.Expr, ctx)
	}
}

// ----------------------------------------------------------------------------
// Patterns
// ----------------------------------------------------------------------------

func (ex *extractor) pattern(p *grammar.Pattern) {
	if p == nil {
		return
	}
	for _, part := range p.Parts {
		ex.patternPart(part)
	}
}

func (ex *extractor) patternPart(part *grammar.PatternPart) {
	if part == nil {
		return
	}
	ex.define(part.Variable)
	ex.patternElement(part.Element)
}

func (ex *extractor) patternElement(el *grammar.PatternElement) {
	if el == nil {
		return
	}

	var prev *grammar.NodePattern
	switch {
	case el.Paren != nil:
		ex.parenPattern(el.Paren)
	case el.Node != nil:
		ex.node(el.Node)
		prev = el.Node
	}

	for _, hop := range el.Chain {
		ex.relationship(hop.Rel)
		ex.node(hop.Node)
		ex.edge(prev, hop.Rel, hop.Node)
		prev = hop.Node
	}
}

// parenPattern handles both plain grouping and quantified path patterns; the
// inner WHERE sees the variables the inner pattern defines.
func (ex *extractor) parenPattern(pp *grammar.ParenPattern) {
	ex.patternElement(pp.Inner)
	ex.where(pp.Where, ContextWhere)
}

func (ex *extractor) node(n *grammar.NodePattern) {
	if n == nil {
		return
	}

	if n.Labels != nil {
		for _, label := range n.Labels.Labels {
			ex.elements.addNodeLabel(label)
		}
	}

	ex.define(n.Variable)
	ex.bindNode(n.Variable, n.Labels.First())

	label := ex.nodeLabel(n)
	ex.inlineProperties(n.Properties, n.Variable, label, false)
}

func (ex *extractor) relationship(r *grammar.RelationshipPattern) {
	if r == nil || r.Detail == nil {
		return
	}
	d := r.Detail

	if d.Types != nil {
		for _, t := range d.Types.Types {
			ex.elements.addRelationshipType(t)
		}
	}

	ex.define(d.Variable)
	ex.bindRel(d.Variable, d.Types.First())

	relType := d.Types.First()
	if relType == "" && d.Variable != "" {
		if b, ok := ex.bindings[d.Variable]; ok && b.rel {
			relType = b.name
		}
	}
	ex.inlineProperties(d.Properties, d.Variable, relType, true)

	ex.where(d.Where, ContextWhere)
}

// inlineProperties records the keys of an inline {k: v} map as property
// accesses on the owning label or relationship type, and literal values as
// implicit equality comparisons.
func (ex *extractor) inlineProperties(props *grammar.Properties, variable, owner string, rel bool) {
	if props == nil || props.Map == nil {
		return
	}
	for _, pair := range props.Map.Pairs {
		if owner != "" {
			if rel {
				ex.elements.addRelationshipProperty(owner, pair.Key)
			} else {
				ex.elements.addNodeProperty(owner, pair.Key)
			}
		}
		if variable != "" {
			ex.elements.PropertyAccesses = append(ex.elements.PropertyAccesses, PropertyAccess{
				Variable: variable,
				Property: pair.Key,
				Context:  ContextPattern,
			})
		}
		if owner != "" {
			if value, ok := literalOfExpression(pair.Value); ok && comparableKind(value.Kind) {
				ex.elements.PropertyComparisons = append(ex.elements.PropertyComparisons, PropertyComparison{
					Variable: variable,
					Owner:    owner,
					OwnerRel: rel,
					Property: pair.Key,
					Value:    value,
				})
			}
		}
		ex.expr(pair.Value, ContextPattern)
	}
}

// edge records one pattern hop with the adjacent labels, resolved through
// bindings when the node pattern itself carries none. Multi-type
// relationships record one edge per listed type.
func (ex *extractor) edge(start *grammar.NodePattern, r *grammar.RelationshipPattern, end *grammar.NodePattern) {
	startLabel := ex.nodeLabel(start)
	endLabel := ex.nodeLabel(end)

	var types []string
	if r.Detail != nil && r.Detail.Types != nil {
		types = r.Detail.Types.Types
	}
	if len(types) == 0 {
		types = []string{""}
	}

	for _, t := range types {
		ex.elements.PatternEdges = append(ex.elements.PatternEdges, PatternEdge{
			StartLabel: startLabel,
			RelType:    t,
			EndLabel:   endLabel,
			Direction:  r.Direction(),
		})
	}
}

func (ex *extractor) nodeLabel(n *grammar.NodePattern) string {
	if n == nil {
		return ""
	}
	if label := n.Labels.First(); label != "" {
		return label
	}
	if n.Variable != "" {
		if b, ok := ex.bindings[n.Variable]; ok && !b.rel {
			return b.name
		}
	}
	return ""
}

// recordAccess resolves v.p through the current bindings and files it under
// the owning label or relationship type.
func (ex *extractor) recordAccess(variable, property string, ctx Context) {
	ex.elements.PropertyAccesses = append(ex.elements.PropertyAccesses, PropertyAccess{
		Variable: variable,
		Property: property,
		Context:  ctx,
	})
	if b, ok := ex.bindings[variable]; ok {
		if b.rel {
			ex.elements.addRelationshipProperty(b.name, property)
		} else {
			ex.elements.addNodeProperty(b.name, property)
		}
	}
}
