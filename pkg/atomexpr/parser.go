package atomexpr

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/randalmurphal/atomexpr/pkg/atomexpr/observability"
)

// Parse parses text into an Expression, delegating atom recognition to h.
//
// Operators, from highest to lowest precedence, are '!' (prefix), '&' and '|'.
// Parentheses group. Whitespace between tokens is ignored. Anything else
// starts an atom: the remaining input is passed to h.ParseAtom, and parsing
// resumes after the bytes it reports as consumed.
//
// Chains of the same operator are flattened into a single n-ary node, and
// the children of every And/Or node are then reordered by priority unless
// WithoutOptimization is given.
//
// All errors about the text itself are *ParseError. A pool that cannot hold
// the expression yields *AllocationError. Nothing is left allocated in the
// pool when Parse fails.
func Parse[T any](text string, h Handler[T], opts ...ParseOption) (*Expression[T], error) {
	cfg := newParseConfig(opts)
	if h == nil {
		return nil, ErrNilHandler
	}
	if v, ok := h.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	if cfg.pool == nil {
		cfg.pool = NewPool()
	}

	start := time.Now()
	expr, err := parse(text, h, cfg)
	if err != nil {
		cfg.metrics.RecordParse(context.Background(), false, time.Since(start), 0)
		observability.LogParseError(cfg.logger, text, err)
		return nil, err
	}
	cfg.metrics.RecordParse(context.Background(), true, time.Since(start), expr.atoms)
	observability.LogParse(cfg.logger, text, expr.atoms, float64(time.Since(start).Microseconds())/1000)
	return expr, nil
}

func parse[T any](text string, h Handler[T], cfg parseConfig) (*Expression[T], error) {
	if cfg.maxLength > 0 && len(text) > cfg.maxLength {
		return nil, &ParseError{
			Offset: cfg.maxLength,
			Msg:    fmt.Sprintf("%s: %d bytes exceeds maximum of %d", ErrExpressionTooLong, len(text), cfg.maxLength),
			Err:    ErrExpressionTooLong,
		}
	}
	if cfg.pool.Destroyed() {
		return nil, &AllocationError{Requested: 1, Err: ErrPoolDestroyed}
	}

	p := &parser[T]{
		src:      text,
		handler:  h,
		pool:     cfg.pool,
		maxDepth: cfg.maxDepth,
		logger:   cfg.logger,
	}
	p.prio, _ = h.(Prioritizer)

	mark := cfg.pool.mark()
	root, err := p.parseExpression()
	if err != nil {
		cfg.pool.rollback(mark)
		return nil, err
	}

	expr := &Expression[T]{
		name:    cfg.name,
		source:  text,
		pool:    cfg.pool,
		root:    root,
		atoms:   p.atoms,
		handler: h,
		logger:  cfg.logger,
		metrics: cfg.metrics,
	}
	if cfg.optimize {
		optimize(cfg.pool, root)
	}
	return expr, nil
}

// parser is a recursive-descent parser over the expression bytes.
type parser[T any] struct {
	src      string
	pos      int
	depth    int
	maxDepth int
	atoms    int
	lastOp   byte
	handler  Handler[T]
	prio     Prioritizer
	pool     *Pool
	logger   *slog.Logger
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// isAtomStart reports whether c begins an atom rather than an operator.
func isAtomStart(c byte) bool {
	switch c {
	case '&', '|', '!', '(', ')':
		return false
	}
	return !isSpace(c)
}

func (p *parser[T]) skipSpace() {
	for p.pos < len(p.src) && isSpace(p.src[p.pos]) {
		p.pos++
	}
}

// peek returns the next non-space byte, or 0 at end of input.
func (p *parser[T]) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser[T]) consume() {
	p.lastOp = p.src[p.pos]
	p.pos++
}

func (p *parser[T]) parseExpression() (nodeID, error) {
	if p.peek() == 0 {
		return 0, newParseError(ErrEmptyExpression, p.pos, "")
	}
	root, err := p.parseOr()
	if err != nil {
		return 0, err
	}
	switch c := p.peek(); {
	case c == 0:
		return root, nil
	case c == ')':
		return 0, newParseError(ErrUnbalancedParens, p.pos, "unmatched ')'")
	default:
		return 0, newParseError(ErrUnexpectedToken, p.pos, "missing operator before %q", p.excerpt())
	}
}

// parseOr parses '&'-terms separated by '|'.
func (p *parser[T]) parseOr() (nodeID, error) {
	return p.parseChain(kindOr, '|', p.parseAnd)
}

// parseAnd parses unary terms separated by '&'.
func (p *parser[T]) parseAnd() (nodeID, error) {
	return p.parseChain(kindAnd, '&', p.parseUnary)
}

// parseChain parses operand (op operand)* and flattens nested nodes of the
// same kind into one n-ary node.
func (p *parser[T]) parseChain(kind nodeKind, op byte, operand func() (nodeID, error)) (nodeID, error) {
	first, err := operand()
	if err != nil {
		return 0, err
	}
	if p.peek() != op {
		return first, nil
	}

	children := p.flatten(kind, nil, first)
	for p.peek() == op {
		p.consume()
		next, err := operand()
		if err != nil {
			return 0, err
		}
		children = p.flatten(kind, children, next)
	}
	return p.pool.allocNode(node{kind: kind, children: children})
}

// flatten appends id to children, splicing in its children when it is
// already a node of the given kind, as in "(a & b) & c".
func (p *parser[T]) flatten(kind nodeKind, children []nodeID, id nodeID) []nodeID {
	n := &p.pool.nodes[id]
	if n.kind == kind {
		return append(children, n.children...)
	}
	return append(children, id)
}

func (p *parser[T]) parseUnary() (nodeID, error) {
	if p.peek() != '!' {
		return p.parsePrimary()
	}
	offset := p.pos
	p.consume()
	if err := p.enter(offset); err != nil {
		return 0, err
	}
	child, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	p.depth--
	return p.pool.allocNode(node{kind: kindNot, children: []nodeID{child}})
}

func (p *parser[T]) parsePrimary() (nodeID, error) {
	switch c := p.peek(); {
	case c == 0:
		if p.lastOp == '(' {
			return 0, newParseError(ErrUnbalancedParens, p.pos, "missing ')'")
		}
		return 0, newParseError(ErrDanglingOperator, p.pos, "%q has no operand", string(p.lastOp))
	case c == '(':
		return p.parseGroup()
	case c == ')':
		if p.lastOp == '(' {
			return 0, newParseError(ErrUnexpectedToken, p.pos, "empty group")
		}
		return 0, newParseError(ErrUnexpectedToken, p.pos, "')' where an operand is expected")
	case c == '&' || c == '|':
		return 0, newParseError(ErrUnexpectedToken, p.pos, "%q where an operand is expected", string(c))
	default:
		return p.parseAtom()
	}
}

func (p *parser[T]) parseGroup() (nodeID, error) {
	open := p.pos
	p.consume()
	if err := p.enter(open); err != nil {
		return 0, err
	}
	inner, err := p.parseOr()
	if err != nil {
		return 0, err
	}
	switch c := p.peek(); {
	case c == ')':
		p.consume()
	case c == 0:
		return 0, newParseError(ErrUnbalancedParens, open, "'(' is never closed")
	default:
		return 0, newParseError(ErrUnexpectedToken, p.pos, "missing operator before %q", p.excerpt())
	}
	p.depth--
	return inner, nil
}

func (p *parser[T]) enter(offset int) error {
	p.depth++
	if p.depth > p.maxDepth {
		return newParseError(ErrExpressionTooDeep, offset, "limit is %d", p.maxDepth)
	}
	return nil
}

func (p *parser[T]) parseAtom() (nodeID, error) {
	start := p.pos
	rest := p.src[start:]

	parsed, err := p.callParse(rest)
	if err != nil {
		return 0, &ParseError{Offset: start, Msg: err.Error(), Err: err}
	}

	consumed := parsed.Consumed
	if consumed == 0 {
		consumed = len(parsed.Text)
	}
	switch {
	case consumed <= 0:
		return 0, newParseError(ErrAtomNotRecognized, start, "at %q", p.excerpt())
	case consumed > len(rest):
		return 0, newParseError(ErrAtomNotRecognized, start,
			"atom parser consumed %d bytes, only %d remain", consumed, len(rest))
	}

	text := parsed.Text
	if text == "" {
		text = rest[:consumed]
	}
	atom := &Atom{
		Text:     text,
		Len:      consumed,
		Offset:   start,
		Data:     parsed.Data,
		Priority: DefaultPriority,
	}
	if p.prio != nil {
		atom.Priority = p.prio.AtomPriority(atom)
	}

	idx, err := p.pool.allocAtom(atom)
	if err != nil {
		return 0, err
	}
	p.pos += consumed
	p.lastOp = 0
	p.atoms++
	return p.pool.allocNode(node{kind: kindAtom, atom: idx})
}

// callParse invokes the atom parser, converting a panic into a *CallbackError.
func (p *parser[T]) callParse(rest string) (parsed ParsedAtom, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &CallbackError{
				Phase: "parse",
				Atom:  rest,
				Value: r,
				Stack: string(debug.Stack()),
				Err:   fmt.Errorf("panic: %v", r),
			}
			observability.LogCallbackFailure(p.logger, "parse", rest, err)
		}
	}()
	return p.handler.ParseAtom(rest)
}

// excerpt returns a short prefix of the unconsumed input for messages.
func (p *parser[T]) excerpt() string {
	const maxExcerpt = 16
	rest := p.src[p.pos:]
	if len(rest) > maxExcerpt {
		return rest[:maxExcerpt] + "..."
	}
	return rest
}
