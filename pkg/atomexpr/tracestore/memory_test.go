package tracestore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/atomexpr/pkg/atomexpr/tracestore"
)

func TestMemoryStore_Len(t *testing.T) {
	store := tracestore.NewMemoryStore()
	defer store.Close()

	assert.Equal(t, 0, store.Len())

	require.NoError(t, store.Save(record("e1", "vip", 1)))
	require.NoError(t, store.Save(record("e2", "vip", 1)))
	require.NoError(t, store.Save(record("e3", "adult", 0)))
	assert.Equal(t, 3, store.Len())

	require.NoError(t, store.Save(record("e1", "vip", 0)))
	assert.Equal(t, 3, store.Len())

	require.NoError(t, store.DeleteRule("vip"))
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_CopiesFired(t *testing.T) {
	store := tracestore.NewMemoryStore()
	defer store.Close()

	fired := []string{"a", "b"}
	require.NoError(t, store.Save(record("e1", "vip", 1, fired...)))
	fired[0] = "mutated"

	rec, err := store.Get("e1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, rec.Fired)

	rec.Fired[1] = "mutated"
	again, err := store.Get("e1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, again.Fired)
}
