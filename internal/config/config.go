package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	pkserrors "pks/internal/errors"
)

// FileName is the root configuration file.
const FileName = "packwerk.yml"

// Config represents packwerk.yml
type Config struct {
	// Include lists root-relative globs of files to check
	Include []string `json:"include" mapstructure:"include"`
	// Exclude lists root-relative globs removed from Include and from pack discovery
	Exclude []string `json:"exclude" mapstructure:"exclude"`
	// PackagePaths lists globs of directories that may hold package.yml
	PackagePaths []string `json:"package_paths" mapstructure:"package_paths"`

	// AutoloadRoots maps root-relative directory globs to a namespace ("::Object" is global)
	AutoloadRoots map[string]string `json:"autoload_roots" mapstructure:"-"`
	// IgnoredDefinitions maps a constant to root-relative files whose definition is skipped
	IgnoredDefinitions map[string][]string `json:"ignored_definitions" mapstructure:"-"`

	Cache          bool   `json:"cache" mapstructure:"cache"`
	CacheDirectory string `json:"cache_directory" mapstructure:"cache_directory"`
	CacheBackend   string `json:"cache_backend" mapstructure:"cache_backend"`

	// ExperimentalParser selects definition-based constant resolution
	ExperimentalParser bool `json:"experimental_parser" mapstructure:"experimental_parser"`
	// DelegateExtraction routes reference extraction through the Extractor capability
	DelegateExtraction bool `json:"delegate_extraction" mapstructure:"delegate_extraction"`

	InflectionsPath string `json:"inflections_path" mapstructure:"inflections_path"`

	// Parallelism bounds concurrent extraction; 0 means GOMAXPROCS
	Parallelism int `json:"parallelism" mapstructure:"parallelism"`
}

// DefaultConfig returns the configuration used when packwerk.yml is absent.
func DefaultConfig() *Config {
	return &Config{
		Include:            []string{"**/*.{rb,rake,erb}"},
		Exclude:            []string{"{bin,node_modules,script,tmp,vendor}/**/*"},
		PackagePaths:       []string{"**/"},
		AutoloadRoots:      map[string]string{},
		IgnoredDefinitions: map[string][]string{},
		Cache:              true,
		CacheDirectory:     "tmp/cache/packwerk",
		CacheBackend:       "disk",
		ExperimentalParser: false,
		DelegateExtraction: false,
		InflectionsPath:    "config/initializers/inflections.rb",
		Parallelism:        0,
	}
}

// mapKeys holds the map-valued keys. They are decoded with yaml.v3 because
// viper lowercases map keys, which would corrupt paths and constant names.
type mapKeys struct {
	AutoloadRoots      map[string]string   `yaml:"autoload_roots"`
	IgnoredDefinitions map[string][]string `yaml:"ignored_definitions"`
}

// LoadConfig loads packwerk.yml from root. PKS_* environment variables
// override scalar keys, e.g. PKS_CACHE=false.
func LoadConfig(root string) (*Config, error) {
	defaults := DefaultConfig()

	v := viper.New()
	v.SetDefault("include", defaults.Include)
	v.SetDefault("exclude", defaults.Exclude)
	v.SetDefault("package_paths", defaults.PackagePaths)
	v.SetDefault("cache", defaults.Cache)
	v.SetDefault("cache_directory", defaults.CacheDirectory)
	v.SetDefault("cache_backend", defaults.CacheBackend)
	v.SetDefault("experimental_parser", defaults.ExperimentalParser)
	v.SetDefault("delegate_extraction", defaults.DelegateExtraction)
	v.SetDefault("inflections_path", defaults.InflectionsPath)
	v.SetDefault("parallelism", defaults.Parallelism)

	v.SetEnvPrefix("PKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := filepath.Join(root, FileName)
	var raw []byte
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, pkserrors.New(pkserrors.ConfigInvalid, "failed to read "+path, err)
		}
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, pkserrors.New(pkserrors.ConfigInvalid, "failed to read "+path, err)
		}
	}

	cfg := &Config{
		Include:            v.GetStringSlice("include"),
		Exclude:            v.GetStringSlice("exclude"),
		PackagePaths:       v.GetStringSlice("package_paths"),
		AutoloadRoots:      map[string]string{},
		IgnoredDefinitions: map[string][]string{},
		Cache:              v.GetBool("cache"),
		CacheDirectory:     v.GetString("cache_directory"),
		CacheBackend:       v.GetString("cache_backend"),
		ExperimentalParser: v.GetBool("experimental_parser"),
		DelegateExtraction: v.GetBool("delegate_extraction"),
		InflectionsPath:    v.GetString("inflections_path"),
		Parallelism:        v.GetInt("parallelism"),
	}

	if len(raw) > 0 {
		var m mapKeys
		if err := yaml.Unmarshal(raw, &m); err != nil {
			return nil, pkserrors.New(pkserrors.ConfigInvalid, "failed to parse "+path, err)
		}
		for k, ns := range m.AutoloadRoots {
			cfg.AutoloadRoots[k] = ns
		}
		for k, files := range m.IgnoredDefinitions {
			cfg.IgnoredDefinitions[k] = files
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, pkserrors.New(pkserrors.ConfigInvalid, "invalid "+FileName, err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if len(c.Include) == 0 {
		return &ConfigError{Field: "include", Message: "at least one pattern is required"}
	}
	if len(c.PackagePaths) == 0 {
		return &ConfigError{Field: "package_paths", Message: "at least one pattern is required"}
	}
	switch c.CacheBackend {
	case "disk", "sqlite":
	default:
		return &ConfigError{Field: "cache_backend", Message: fmt.Sprintf("unknown backend %q", c.CacheBackend)}
	}
	if c.Cache && c.CacheDirectory == "" {
		return &ConfigError{Field: "cache_directory", Message: "required when cache is enabled"}
	}
	if c.Parallelism < 0 {
		return &ConfigError{Field: "parallelism", Message: "must not be negative"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
