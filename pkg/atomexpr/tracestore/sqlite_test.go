package tracestore_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/atomexpr/pkg/atomexpr/tracestore"
)

func TestSQLiteStore_Persistence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "traces.db")

	store1, err := tracestore.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store1.Save(record("e1", "vip", 3, "premium")))
	require.NoError(t, store1.Close())

	store2, err := tracestore.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store2.Close()

	rec, err := store2.Get("e1")
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Value)
	assert.Equal(t, []string{"premium"}, rec.Fired)

	// Sequences continue after reopening.
	require.NoError(t, store2.Save(record("e2", "vip", 1)))
	rec, err = store2.Get("e2")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Sequence)
}

func TestSQLiteStore_InvalidPath(t *testing.T) {
	_, err := tracestore.NewSQLiteStore("/nonexistent/path/traces.db")
	assert.Error(t, err)
}

func TestSQLiteStore_CloseIdempotent(t *testing.T) {
	store, err := tracestore.NewSQLiteStore(":memory:")
	require.NoError(t, err)

	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_RuleChangeOnOverwrite(t *testing.T) {
	store, err := tracestore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(record("e1", "vip", 1)))
	require.NoError(t, store.Save(record("e1", "adult", 1)))

	recs, err := store.List("adult")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 1, recs[0].Sequence)

	recs, err = store.List("vip")
	require.NoError(t, err)
	assert.Empty(t, recs)
}
