package cart

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	_, ok := store.Get("missing")
	assert.False(t, ok)

	require.NoError(t, store.Set("key", "value"))
	value, ok := store.Get("key")
	assert.True(t, ok)
	assert.Equal(t, "value", value)

	require.NoError(t, store.Set("key", "updated"))
	value, _ = store.Get("key")
	assert.Equal(t, "updated", value)

	require.NoError(t, store.Remove("key"))
	_, ok = store.Get("key")
	assert.False(t, ok)

	// Removing an absent key is not an error.
	assert.NoError(t, store.Remove("missing"))
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "carts.db")

	store, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()

	_, ok := store.Get("dev-1")
	assert.False(t, ok)

	require.NoError(t, store.Set("dev-1", `[{"itemId":"cal-roll","quantity":2}]`))
	value, ok := store.Get("dev-1")
	assert.True(t, ok)
	assert.Equal(t, `[{"itemId":"cal-roll","quantity":2}]`, value)

	require.NoError(t, store.Set("dev-1", `[]`))
	value, _ = store.Get("dev-1")
	assert.Equal(t, `[]`, value)

	require.NoError(t, store.Remove("dev-1"))
	_, ok = store.Get("dev-1")
	assert.False(t, ok)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "carts.db")

	store, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set("dev-1", "payload"))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	value, ok := reopened.Get("dev-1")
	assert.True(t, ok)
	assert.Equal(t, "payload", value)
}

func TestManagerReturnsSameCartPerDevice(t *testing.T) {
	manager := NewManager(NewMemoryStore())

	a := manager.Cart("dev-1")
	b := manager.Cart("dev-1")
	other := manager.Cart("dev-2")

	assert.Same(t, a, b)
	assert.NotSame(t, a, other)
}

func TestManagerHydratesFromStore(t *testing.T) {
	store := NewMemoryStore()
	first := NewManager(store)
	first.Cart("dev-1").AddItem("cal-roll", "California Roll", 8.99, nil)

	// A new manager over the same store sees the persisted cart.
	second := NewManager(store)
	restored := second.Cart("dev-1")

	assert.Equal(t, 1, restored.ItemCount())
	assert.Equal(t, "cal-roll", restored.Lines()[0].ItemID)
}
