package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables → bound flags
	Load() (*Config, error)
}

type loader struct {
	v           *viper.Viper
	configFile  string
	searchPaths []string
}

// NewLoader creates a configuration loader. If configFile is empty, a file
// named .rbxrip.yaml (or .rbxrip.yml) is searched for in searchPaths.
// v may carry flag bindings made by the caller; nil means a fresh instance.
func NewLoader(v *viper.Viper, configFile string, searchPaths ...string) Loader {
	if v == nil {
		v = viper.New()
	}
	return &loader{
		v:           v,
		configFile:  configFile,
		searchPaths: searchPaths,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Flags bound on the viper instance
// 2. Environment variables (RBXRIP_*)
// 3. Config file
// 4. Default values
func (l *loader) Load() (*Config, error) {
	v := l.v

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName(".rbxrip")
		v.SetConfigType("yaml")
		for _, p := range l.searchPaths {
			v.AddConfigPath(p)
		}
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("RBXRIP")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., RBXRIP_FILTERS_EXCLUDE_SCRIPTS)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("filters.exclude_workspace")
	v.BindEnv("filters.exclude_scripts")
	v.BindEnv("filters.exclude_classes")
	v.BindEnv("filters.exclude_patterns")
	v.BindEnv("output.properties_file")
	v.BindEnv("output.script_file")
	v.BindEnv("output.progress_interval")
	v.BindEnv("extract.workers")
	v.BindEnv("log.level")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Config file not found is acceptable unless it was named explicitly
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// ConfigFileUsed returns the config file that was read, if any.
func ConfigFileUsed(l Loader) string {
	if impl, ok := l.(*loader); ok {
		return impl.v.ConfigFileUsed()
	}
	return ""
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("filters.exclude_workspace", defaults.Filters.ExcludeWorkspace)
	v.SetDefault("filters.exclude_scripts", defaults.Filters.ExcludeScripts)
	v.SetDefault("filters.exclude_classes", defaults.Filters.ExcludeClasses)
	v.SetDefault("filters.exclude_patterns", defaults.Filters.ExcludePatterns)

	v.SetDefault("output.properties_file", defaults.Output.PropertiesFile)
	v.SetDefault("output.script_file", defaults.Output.ScriptFile)
	v.SetDefault("output.progress_interval", defaults.Output.ProgressInterval)

	v.SetDefault("extract.workers", defaults.Extract.Workers)

	v.SetDefault("log.level", defaults.Log.Level)
}

// LoadConfig is a convenience function that searches the current working
// directory and the home directory.
func LoadConfig() (*Config, error) {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home)
	}
	return NewLoader(nil, "", paths...).Load()
}
