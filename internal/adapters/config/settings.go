package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/zerr"
)

// Setting keys as they appear in polybuild.yaml.
const (
	KeyMaxWorkers     = "build_system.parallelism.max_workers"
	KeyTimeout        = "build_system.timeout"
	KeyCacheDir       = "build_system.cache_dir"
	KeyMetricsDir     = "build_system.metrics_dir"
	KeyNoCache        = "build_system.no_cache"
	KeyMaxChainDepth  = "validation.max_chain_depth"
	KeySkipValidation = "validation.skip"
)

// EnvPrefix prefixes the environment overrides, e.g. POLYBUILD_BUILD_SYSTEM_TIMEOUT.
const EnvPrefix = "POLYBUILD"

// flagKeys binds command-line flags to setting keys.
var flagKeys = map[string]string{
	"jobs":            KeyMaxWorkers,
	"timeout":         KeyTimeout,
	"no-cache":        KeyNoCache,
	"skip-validation": KeySkipValidation,
}

// LoadSettings resolves the run settings from defaults, the config file at
// configPath, the environment and flags, in increasing precedence. Relative
// directories are resolved against root. An empty configPath skips the file
// and a nil flags skips flag binding.
func LoadSettings(root, configPath string, flags *pflag.FlagSet) (domain.Settings, error) {
	v := viper.New()
	defaults := domain.DefaultSettings()
	v.SetDefault(KeyMaxWorkers, defaults.Parallelism)
	v.SetDefault(KeyTimeout, defaults.Timeout.String())
	v.SetDefault(KeyCacheDir, defaults.CacheDir)
	v.SetDefault(KeyMetricsDir, defaults.MetricsDir)
	v.SetDefault(KeyNoCache, false)
	v.SetDefault(KeyMaxChainDepth, defaults.MaxChainDepth)
	v.SetDefault(KeySkipValidation, false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return domain.Settings{}, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", configPath)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return domain.Settings{}, zerr.With(err, "flag", name)
				}
			}
		}
	}

	timeout, err := parseTimeout(v.GetString(KeyTimeout))
	if err != nil {
		return domain.Settings{}, err
	}

	s := domain.Settings{
		Parallelism:    v.GetInt(KeyMaxWorkers),
		Timeout:        timeout,
		CacheDir:       resolveDir(root, v.GetString(KeyCacheDir)),
		MetricsDir:     resolveDir(root, v.GetString(KeyMetricsDir)),
		MaxChainDepth:  v.GetInt(KeyMaxChainDepth),
		SkipValidation: v.GetBool(KeySkipValidation),
		NoCache:        v.GetBool(KeyNoCache),
	}
	if s.Parallelism < 1 {
		return domain.Settings{}, zerr.With(domain.ErrSettingsInvalid, KeyMaxWorkers, s.Parallelism)
	}
	if s.MaxChainDepth < 1 {
		return domain.Settings{}, zerr.With(domain.ErrSettingsInvalid, KeyMaxChainDepth, s.MaxChainDepth)
	}
	return s, nil
}

// parseTimeout accepts a Go duration or a bare number of seconds.
func parseTimeout(raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		d, err = time.ParseDuration(raw + "s")
	}
	if err != nil || d <= 0 {
		return 0, zerr.With(domain.ErrSettingsInvalid, KeyTimeout, raw)
	}
	return d, nil
}

func resolveDir(root, dir string) string {
	if dir == "" || filepath.IsAbs(dir) || root == "" {
		return dir
	}
	return filepath.Join(root, dir)
}
