package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreMemory(t *testing.T) {
	for _, kind := range []string{"", DefaultStoreKind} {
		store, err := NewStore(kind, "")
		require.NoError(t, err, "kind %q", kind)
		assert.IsType(t, &MemoryStore{}, store)
		assert.NoError(t, CloseIfSupported(store))
	}
}

func TestNewStoreUnsupported(t *testing.T) {
	_, err := NewStore("unknown", "")
	assert.Error(t, err)
}
