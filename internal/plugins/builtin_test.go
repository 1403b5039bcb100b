package plugins_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/polybuild/internal/adapters/fs"
	"go.trai.ch/polybuild/internal/adapters/logger"
	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/polybuild/internal/core/ports/mocks"
	"go.trai.ch/polybuild/internal/engine/registry"
	"go.trai.ch/polybuild/internal/plugins"
	"go.uber.org/mock/gomock"
)

func TestBuiltins_RegisterAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	set := plugins.NewBuiltins(mocks.NewMockCommandRunner(ctrl), mocks.NewMockSystemProbe(ctrl), fs.NewWalker(), fs.NewHasher())

	reg := registry.New(logger.New())
	require.Equal(t, 5, reg.Discover(set.Factories(nil)...))

	var names []string
	for _, md := range reg.List() {
		names = append(names, md.Name)
	}
	assert.Equal(t, []string{"go", "python", "typescript", "kotlin", "c"}, names)

	for _, r := range plugins.Recipes() {
		// Every declared optional capability has a step behind it.
		md := r.Metadata
		assert.Equal(t, md.Has(domain.CapTesting), r.Test != nil, md.Name)
		assert.Equal(t, md.Has(domain.CapLinting), r.Lint != nil, md.Name)
		assert.Equal(t, md.Has(domain.CapPackaging), r.Package != nil, md.Name)
	}
}
