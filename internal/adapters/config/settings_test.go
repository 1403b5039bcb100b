package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/polybuild/internal/adapters/config"
	"go.trai.ch/polybuild/internal/core/domain"
)

func TestLoadSettings_Defaults(t *testing.T) {
	root := t.TempDir()
	s, err := config.LoadSettings(root, "", nil)
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultParallelism, s.Parallelism)
	assert.Equal(t, domain.DefaultTimeout, s.Timeout)
	assert.Equal(t, filepath.Join(root, domain.CacheDirName), s.CacheDir)
	assert.Equal(t, filepath.Join(root, domain.StateDirName), s.MetricsDir)
	assert.Equal(t, domain.DefaultMaxChainDepth, s.MaxChainDepth)
	assert.False(t, s.SkipValidation)
}

func TestLoadSettings_Precedence(t *testing.T) {
	root := t.TempDir()
	path := createFile(t, root, domain.ConfigFileName, `build_system:
  parallelism:
    max_workers: 2
  timeout: 90
  cache_dir: /var/cache/polybuild
validation:
  max_chain_depth: 3
`)
	t.Setenv("POLYBUILD_VALIDATION_MAX_CHAIN_DEPTH", "7")

	flags := pflag.NewFlagSet("run", pflag.ContinueOnError)
	flags.Int("jobs", domain.DefaultParallelism, "")
	flags.Duration("timeout", domain.DefaultTimeout, "")
	flags.Bool("skip-validation", false, "")
	require.NoError(t, flags.Parse([]string{"--jobs", "8", "--skip-validation"}))

	s, err := config.LoadSettings(root, path, flags)
	require.NoError(t, err)

	assert.Equal(t, 8, s.Parallelism, "flag beats file")
	assert.Equal(t, 90*time.Second, s.Timeout, "file beats unset flag")
	assert.Equal(t, "/var/cache/polybuild", s.CacheDir)
	assert.Equal(t, 7, s.MaxChainDepth, "env beats file")
	assert.True(t, s.SkipValidation)
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero workers", "build_system:\n  parallelism:\n    max_workers: 0\n"},
		{"bad timeout", "build_system:\n  timeout: soon\n"},
		{"zero depth", "validation:\n  max_chain_depth: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			path := createFile(t, root, domain.ConfigFileName, tt.content)

			_, err := config.LoadSettings(root, path, nil)
			require.ErrorContains(t, err, domain.ErrSettingsInvalid.Error())
		})
	}
}
