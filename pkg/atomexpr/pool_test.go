package atomexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_SharedAcrossExpressions(t *testing.T) {
	pool := NewPool()
	a := mustParse(t, "A & B", &testHandler{}, WithPool(pool))
	b := mustParse(t, "C | !D", &testHandler{}, WithPool(pool))

	assert.Same(t, pool, a.Pool())
	assert.Same(t, pool, b.Pool())
	// A & B: 2 atoms, 2 leaves, 1 and. C | !D: 2 atoms, 2 leaves, 1 not, 1 or.
	assert.Equal(t, 11, pool.Len())

	got, err := a.Evaluate(map[string]int{"A": 1, "B": 1}, FlagNone)
	require.NoError(t, err)
	assert.Equal(t, 1, got)
	got, err = b.Evaluate(map[string]int{}, FlagNone)
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestPool_FailedParseLeavesNothingBehind(t *testing.T) {
	pool := NewPool()
	mustParse(t, "A & B", &testHandler{}, WithPool(pool))
	before := pool.Len()

	_, err := Parse("C & (D | ", &testHandler{}, WithPool(pool), WithLogger(quietLogger()))
	require.Error(t, err)
	assert.Equal(t, before, pool.Len())
}

func TestPool_Limit(t *testing.T) {
	pool := NewPool(WithPoolLimit(4))

	_, err := Parse("A & B", &testHandler{}, WithPool(pool), WithLogger(quietLogger()))
	require.Error(t, err)

	var ae *AllocationError
	require.ErrorAs(t, err, &ae)
	assert.ErrorIs(t, err, ErrPoolExhausted)
	assert.Equal(t, 4, ae.Limit)
	assert.Equal(t, 0, pool.Len())

	expr, err := Parse("A", &testHandler{}, WithPool(pool), WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Equal(t, 2, pool.Len())
	assert.Equal(t, []string{"A"}, expr.Atoms())

	assert.Equal(t, 0, NewPool(WithPoolLimit(-1)).limit, "non-positive limit means unlimited")
}

func TestPool_Destroy(t *testing.T) {
	pool := NewPool()
	expr := mustParse(t, "A | B", &testHandler{}, WithPool(pool))

	pool.Destroy()
	assert.True(t, pool.Destroyed())
	assert.Equal(t, 0, pool.Len())

	t.Run("evaluation fails", func(t *testing.T) {
		_, err := expr.Evaluate(map[string]int{"A": 1}, FlagNone)
		assert.ErrorIs(t, err, ErrPoolDestroyed)

		_, trace, err := expr.EvaluateTraced(map[string]int{"A": 1}, FlagNone)
		assert.ErrorIs(t, err, ErrPoolDestroyed)
		assert.Nil(t, trace)
	})

	t.Run("serialization is empty", func(t *testing.T) {
		assert.Equal(t, "", expr.String())
		assert.Empty(t, expr.Atoms())
	})

	t.Run("parsing into destroyed pool fails", func(t *testing.T) {
		_, err := Parse("A", &testHandler{}, WithPool(pool), WithLogger(quietLogger()))
		var ae *AllocationError
		require.ErrorAs(t, err, &ae)
		assert.ErrorIs(t, err, ErrPoolDestroyed)
	})

	t.Run("destroy is idempotent", func(t *testing.T) {
		assert.NotPanics(t, pool.Destroy)
	})
}
