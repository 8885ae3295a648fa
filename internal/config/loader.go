package config

import (
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"github.com/GldzzPro/graph-sync/internal/types"
)

// EnvConfigPath names the environment variable that overrides the config
// file path.
const EnvConfigPath = "GRAPHSYNC_CONFIG"

// EnvSources lets container deployments append sources without a config
// file. Format: "name1:url1,name2:url2".
const EnvSources = "GRAPHSYNC_SOURCES"

// EnvLogLevel overrides the configured log level.
const EnvLogLevel = "GRAPHSYNC_LOG_LEVEL"

// Loader handles loading configuration from files and the environment.
type Loader interface {
	Load(path string) (*Config, error)
}

// viperLoader implements Loader using Viper.
type viperLoader struct {
	validator Validator
}

// NewLoader creates a new Loader instance.
func NewLoader(validator Validator) Loader {
	return &viperLoader{validator: validator}
}

// Load loads configuration from the specified file path, interpolates
// ${VAR} environment references, applies environment overrides, fills
// defaults, and validates the result. An empty path falls back to
// GRAPHSYNC_CONFIG and then to DefaultConfigPath; a missing file is only an
// error when the path was given explicitly.
func (l *viperLoader) Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		path = DefaultConfigPath
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("sync.include_reverse", true)

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) && !explicit {
			// No file at the default location: build entirely from env.
			return l.finalize(v)
		}
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED,
			"failed to read config file", err)
	}

	// Re-apply the raw settings with ${VAR} references resolved before
	// unmarshaling, so credentials never have to live in the file.
	interpolated := interpolateEnvVars(v.AllSettings())
	if settings, ok := interpolated.(map[string]any); ok {
		if err := v.MergeConfigMap(settings); err != nil {
			return nil, types.WrapError(types.CONFIG_PARSE_FAILED,
				"failed to merge interpolated settings", err)
		}
	}

	return l.finalize(v)
}

// finalize unmarshals, applies environment overrides and defaults, and
// validates.
func (l *viperLoader) finalize(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, types.WrapError(types.CONFIG_PARSE_FAILED,
			"failed to unmarshal config", err)
	}

	if env := os.Getenv(EnvSources); env != "" {
		cfg.Sources = append(cfg.Sources, parseSourcesEnv(env)...)
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.Logging.Level = strings.ToLower(level)
	}

	applyDefaults(&cfg)

	if err := l.validator.Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// parseSourcesEnv parses the "name1:url1,name2:url2" source list format used
// for container deployments.
func parseSourcesEnv(env string) []SourceConfig {
	var sources []SourceConfig
	for _, entry := range strings.Split(env, ",") {
		name, url, ok := strings.Cut(strings.TrimSpace(entry), ":")
		if !ok {
			continue
		}
		sources = append(sources, SourceConfig{
			Name: strings.TrimSpace(name),
			URL:  strings.TrimSpace(url),
		})
	}
	return sources
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// interpolateEnvVars recursively interpolates environment variables in the
// raw settings. Supports ${VAR_NAME} syntax; unknown variables are left
// untouched.
func interpolateEnvVars(data any) any {
	switch v := data.(type) {
	case map[string]any:
		result := make(map[string]any, len(v))
		for key, value := range v {
			result[key] = interpolateEnvVars(value)
		}
		return result
	case []any:
		result := make([]any, len(v))
		for i, value := range v {
			result[i] = interpolateEnvVars(value)
		}
		return result
	case string:
		return interpolateString(v)
	default:
		return v
	}
}

// interpolateString replaces ${VAR_NAME} with environment variable values.
func interpolateString(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if envValue := os.Getenv(varName); envValue != "" {
			return envValue
		}
		return match
	})
}
