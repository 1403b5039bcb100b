package system_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/polybuild/internal/adapters/system"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		output string
		want   string
	}{
		{"go version go1.25.3 linux/amd64", "1.25.3"},
		{"git version 2.43.0", "2.43.0"},
		{"v20.11.1", "20.11.1"},
		{"Python 3.12", "3.12"},
		{"Docker version 27.3.1, build ce12230", "27.3.1"},
		{"no digits here", ""},
	}

	for _, tt := range tests {
		t.Run(tt.output, func(t *testing.T) {
			assert.Equal(t, tt.want, system.ParseVersion(tt.output))
		})
	}
}

func TestProbe_Host(t *testing.T) {
	p := system.NewProbe()

	m, err := p.Memory(t.Context())
	require.NoError(t, err)
	assert.Positive(t, m.TotalBytes)

	d, err := p.Disk(t.Context(), t.TempDir())
	require.NoError(t, err)
	assert.Positive(t, d.TotalBytes)

	assert.Positive(t, p.CPUCount(t.Context()))
}

func TestProbe_LookPath(t *testing.T) {
	p := system.NewProbe()

	path, err := p.LookPath("sh")
	require.NoError(t, err)
	assert.NotEmpty(t, path)

	_, err = p.LookPath("definitely-not-a-real-tool-xyz")
	require.Error(t, err)
}
