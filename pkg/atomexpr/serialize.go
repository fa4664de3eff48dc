package atomexpr

import "strings"

// String renders the expression in canonical form: atoms verbatim, '!' for
// negation, and " & " / " | " between the children of a group, with nested
// groups parenthesized. Child order is the optimized evaluation order, so
// the text may differ from the source while remaining equivalent.
//
// String returns "" once the pool has been destroyed.
func (e *Expression[T]) String() string {
	if e.pool.Destroyed() {
		return ""
	}
	var sb strings.Builder
	e.render(&sb, e.root, true)
	return sb.String()
}

func (e *Expression[T]) render(sb *strings.Builder, id nodeID, top bool) {
	n := e.node(id)
	switch n.kind {
	case kindAtom:
		sb.WriteString(e.atom(n).Text)
	case kindNot:
		sb.WriteByte('!')
		e.render(sb, n.children[0], false)
	case kindAnd, kindOr:
		if !top {
			sb.WriteByte('(')
		}
		sep := " & "
		if n.kind == kindOr {
			sep = " | "
		}
		for i, child := range n.children {
			if i > 0 {
				sb.WriteString(sep)
			}
			e.render(sb, child, false)
		}
		if !top {
			sb.WriteByte(')')
		}
	}
}

// ForEachAtom calls fn for every atom leaf, left to right in evaluation order.
// It does nothing once the pool has been destroyed.
func (e *Expression[T]) ForEachAtom(fn func(atom *Atom)) {
	if e.pool.Destroyed() {
		return
	}
	e.walk(e.root, fn)
}

func (e *Expression[T]) walk(id nodeID, fn func(atom *Atom)) {
	n := e.node(id)
	if n.kind == kindAtom {
		fn(e.atom(n))
		return
	}
	for _, child := range n.children {
		e.walk(child, fn)
	}
}

// Atoms returns the text of every atom leaf, left to right in evaluation order.
func (e *Expression[T]) Atoms() []string {
	out := make([]string, 0, e.atoms)
	e.ForEachAtom(func(a *Atom) {
		out = append(out, a.Text)
	})
	return out
}
