package impl

import (
	"testing"

	"github.com/Shopify/gocheckoutflow/internal/checkout"
	"github.com/Shopify/gocheckoutflow/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RoundTripIsolatesCopies(t *testing.T) {
	store := MakeMemoryStore()
	s := checkout.Session{ID: "s-1", CartItems: []checkout.CartItem{{SKU: "tee"}}}
	require.NoError(t, store.Save(s))

	s.CartItems[0].SKU = "mutated"
	loaded, err := store.Load("s-1")
	require.NoError(t, err)
	assert.Equal(t, "tee", loaded.CartItems[0].SKU)

	loaded.CartItems[0].SKU = "mutated again"
	again, err := store.Load("s-1")
	require.NoError(t, err)
	assert.Equal(t, "tee", again.CartItems[0].SKU)
	assert.Equal(t, 1, store.Size())
}

func TestMemoryStore_MissingAndDelete(t *testing.T) {
	store := MakeMemoryStore()

	_, err := store.Load("nope")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
	assert.Error(t, store.Save(checkout.Session{}))

	require.NoError(t, store.Save(checkout.Session{ID: "s-1"}))
	require.NoError(t, store.Delete("s-1"))
	_, err = store.Load("s-1")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestMakeStore(t *testing.T) {
	assert.IsType(t, &MemoryStore{}, MakeStore("memory_store", nil, "", 0))
	assert.Panics(t, func() { MakeStore("redis_store", nil, "", 0) })
	assert.Panics(t, func() { MakeStore("bogus", nil, "", 0) })
}
