package atomexpr

import (
	"cmp"
	"math"
	"slices"
)

// optimize reorders the children of every And/Or node under id so that
// lower-priority subtrees are evaluated first, and returns the priority of id.
//
// An atom's priority is its own. A Not node has its child's priority. An
// And/Or node's priority is the sum of its children's, so larger groups sort
// after single atoms of the same rank. The sum saturates at the int range.
// The sort is stable: equal priorities keep source order.
func optimize(p *Pool, id nodeID) int {
	n := &p.nodes[id]
	switch n.kind {
	case kindAtom:
		return p.atoms[n.atom].Priority
	case kindNot:
		return optimize(p, n.children[0])
	}

	type ranked struct {
		id       nodeID
		priority int
	}
	ranks := make([]ranked, len(n.children))
	total := 0
	for i, child := range n.children {
		pr := optimize(p, child)
		ranks[i] = ranked{id: child, priority: pr}
		total = addPriority(total, pr)
	}
	slices.SortStableFunc(ranks, func(a, b ranked) int {
		return cmp.Compare(a.priority, b.priority)
	})
	for i, r := range ranks {
		n.children[i] = r.id
	}
	return total
}

// addPriority adds two priorities, clamping to the int range on overflow.
func addPriority(a, b int) int {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return math.MaxInt
	case b < 0 && a < math.MinInt-b:
		return math.MinInt
	}
	return a + b
}
