package providers

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/metadata-service/internal/domain"
)

func TestFactory_RegisterAndBuild(t *testing.T) {
	RegisterFactory("factorytest", func(s Settings, _ zerolog.Logger) (MetadataProvider, error) {
		return NewStaticProvider(s.Name, s.Priority, nil, nil), nil
	})

	p, err := Build(Settings{Name: "factorytest", Priority: 7}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "factorytest", p.Name())
	assert.Equal(t, 7, p.Priority())

	assert.Contains(t, FactoryNames(), "factorytest")
}

func TestFactory_BuildUnknown(t *testing.T) {
	_, err := Build(Settings{Name: "no-such-adapter"}, zerolog.Nop())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), `no provider adapter registered for "no-such-adapter"`)
}

func TestFactory_DuplicateRegistrationPanics(t *testing.T) {
	RegisterFactory("factorydup", func(s Settings, _ zerolog.Logger) (MetadataProvider, error) {
		return NewStaticProvider(s.Name, 0, nil, nil), nil
	})
	assert.Panics(t, func() {
		RegisterFactory("factorydup", func(s Settings, _ zerolog.Logger) (MetadataProvider, error) {
			return NewStaticProvider(s.Name, 0, nil, nil), nil
		})
	})
}

func TestFactory_NilFactoryPanics(t *testing.T) {
	assert.Panics(t, func() {
		RegisterFactory("factorynil", nil)
	})
}
