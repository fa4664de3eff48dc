package atomexpr

import "sync/atomic"

// Pool is an arena owning the nodes and atoms of the expressions parsed into it.
// Nothing is freed individually; Destroy releases everything at once and
// invalidates every Expression built from the pool.
//
// A Pool is not safe for concurrent allocation. Expressions parsed into it may
// be evaluated concurrently once parsing has finished, provided the handler
// is itself safe for concurrent use.
type Pool struct {
	nodes     []node
	atoms     []*Atom
	limit     int
	destroyed atomic.Bool
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithPoolLimit caps the number of nodes plus atoms the pool will hold.
// Zero or a negative value means unlimited.
func WithPoolLimit(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.limit = n
		}
	}
}

// NewPool creates an empty pool.
func NewPool(opts ...PoolOption) *Pool {
	p := &Pool{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Destroy releases every node and atom. Expressions parsed into the pool
// report ErrPoolDestroyed afterwards. Destroy is idempotent.
func (p *Pool) Destroy() {
	if p.destroyed.Swap(true) {
		return
	}
	p.nodes = nil
	p.atoms = nil
}

// Destroyed reports whether Destroy has been called.
func (p *Pool) Destroyed() bool {
	return p.destroyed.Load()
}

// Len returns the number of slots in use (nodes plus atoms).
func (p *Pool) Len() int {
	return len(p.nodes) + len(p.atoms)
}

// poolMark records allocation high-water marks for rollback.
type poolMark struct {
	nodes, atoms int
}

func (p *Pool) mark() poolMark {
	return poolMark{nodes: len(p.nodes), atoms: len(p.atoms)}
}

// rollback drops everything allocated since m. Used when a parse fails so
// no partial expression lingers in the arena.
func (p *Pool) rollback(m poolMark) {
	if p.destroyed.Load() {
		return
	}
	clear(p.nodes[m.nodes:])
	clear(p.atoms[m.atoms:])
	p.nodes = p.nodes[:m.nodes]
	p.atoms = p.atoms[:m.atoms]
}

func (p *Pool) reserve() error {
	if p.destroyed.Load() {
		return &AllocationError{Requested: 1, Limit: p.limit, Err: ErrPoolDestroyed}
	}
	if p.limit > 0 && p.Len()+1 > p.limit {
		return &AllocationError{Requested: 1, Limit: p.limit, Err: ErrPoolExhausted}
	}
	return nil
}

func (p *Pool) allocNode(n node) (nodeID, error) {
	if err := p.reserve(); err != nil {
		return 0, err
	}
	p.nodes = append(p.nodes, n)
	return nodeID(len(p.nodes) - 1), nil
}

func (p *Pool) allocAtom(a *Atom) (int, error) {
	if err := p.reserve(); err != nil {
		return 0, err
	}
	p.atoms = append(p.atoms, a)
	return len(p.atoms) - 1, nil
}
