package config

import (
	"github.com/mvp-joe/rbx-ripper/internal/extract"
)

// Config represents the complete rbxrip configuration.
// It can be loaded from .rbxrip.yaml with environment variable overrides.
type Config struct {
	Filters FiltersConfig `yaml:"filters" mapstructure:"filters"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// FiltersConfig selects which objects are left out of the extraction.
type FiltersConfig struct {
	ExcludeWorkspace bool     `yaml:"exclude_workspace" mapstructure:"exclude_workspace"`
	ExcludeScripts   bool     `yaml:"exclude_scripts" mapstructure:"exclude_scripts"`
	ExcludeClasses   []string `yaml:"exclude_classes" mapstructure:"exclude_classes"`   // class names, case-insensitive
	ExcludePatterns  []string `yaml:"exclude_patterns" mapstructure:"exclude_patterns"` // glob patterns over class names
}

// OutputConfig controls the files written for each object.
type OutputConfig struct {
	PropertiesFile   string `yaml:"properties_file" mapstructure:"properties_file"`
	ScriptFile       string `yaml:"script_file" mapstructure:"script_file"`
	ProgressInterval int    `yaml:"progress_interval" mapstructure:"progress_interval"` // objects between progress events
}

// ExtractConfig controls scheduling.
type ExtractConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"` // 0 means one per CPU
}

// LogConfig controls log output.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"` // zerolog level name
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Filters: FiltersConfig{
			ExcludeClasses:  []string{},
			ExcludePatterns: []string{},
		},
		Output: OutputConfig{
			PropertiesFile:   extract.DefaultPropertiesFile,
			ScriptFile:       extract.DefaultScriptFile,
			ProgressInterval: extract.DefaultProgressInterval,
		},
		Extract: ExtractConfig{
			Workers: 0,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ToSettings builds the immutable filter settings for a run.
func (c *Config) ToSettings() (*extract.Settings, error) {
	return extract.NewSettings(extract.Filters{
		ExcludeWorkspace: c.Filters.ExcludeWorkspace,
		ExcludeScripts:   c.Filters.ExcludeScripts,
		ExcludeClasses:   c.Filters.ExcludeClasses,
		ExcludePatterns:  c.Filters.ExcludePatterns,
	})
}

// ToOptions converts the output and scheduling sections to extractor options.
func (c *Config) ToOptions() extract.Options {
	return extract.Options{
		PropertiesFile:   c.Output.PropertiesFile,
		ScriptFile:       c.Output.ScriptFile,
		ProgressInterval: c.Output.ProgressInterval,
		Workers:          c.Extract.Workers,
	}
}
