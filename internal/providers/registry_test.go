package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_PreservesRegistrationOrder(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	r.Register(NewStaticProvider("openlibrary", 10, nil, nil))
	r.Register(NewStaticProvider("googlebooks", 5, nil, nil))
	r.Register(NewStaticProvider("wikidata", 1, nil, nil))

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, "openlibrary", all[0].Name())
	assert.Equal(t, "googlebooks", all[1].Name())
	assert.Equal(t, "wikidata", all[2].Name())
	assert.Equal(t, 3, r.Len())
}

func TestRegistry_ReplaceKeepsPosition(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	r.Register(NewStaticProvider("openlibrary", 10, nil, nil))
	r.Register(NewStaticProvider("googlebooks", 5, nil, nil))

	replacement := NewStaticProvider("openlibrary", 99, nil, nil)
	r.Register(replacement)

	assert.Equal(t, 2, r.Len())
	all := r.All()
	assert.Equal(t, "openlibrary", all[0].Name())
	assert.Equal(t, 99, all[0].Priority())
	assert.Equal(t, 99, r.Get("openlibrary").Priority())
}

func TestRegistry_GetUnknown(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	assert.Nil(t, r.Get("nope"))
	assert.Empty(t, r.All())
}

func TestRegistry_AllReturnsSnapshot(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	r.Register(NewStaticProvider("openlibrary", 10, nil, nil))

	snapshot := r.All()
	r.Register(NewStaticProvider("googlebooks", 5, nil, nil))

	assert.Len(t, snapshot, 1)
	assert.Len(t, r.All(), 2)
}
