// Package config loads the optional YAML defaults layered under a
// convert.Options value before CLI flags are applied (spec.md §6
// ambient "configuration" concern the distilled spec omits).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Options is the persisted subset of convert.Options a project can pin in
// a checked-in YAML file rather than repeat on every invocation.
type Options struct {
	Compact    bool    `yaml:"compact"`
	LongNames  bool    `yaml:"long_name"`
	AsSectors  bool    `yaml:"as_sectors"`
	TimeUnits  string  `yaml:"time_units"`
	Start      float64 `yaml:"start"`
	Stop       float64 `yaml:"stop"`
	DT         float64 `yaml:"dt"`
	SimMethod  string  `yaml:"method"`
}

// Load reads path and unmarshals it into an Options value. A missing file
// is not an error; callers get the zero Options and fall back to
// flag-provided defaults.
func Load(path string) (Options, error) {
	var opts Options
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return opts, nil
	}
	if err != nil {
		return opts, fmt.Errorf("reading config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("parsing config %q: %w", path, err)
	}
	return opts, nil
}

// Merge layers override on top of base: any non-zero field in override
// wins, matching spec.md §6's "file defaults layered under flag-provided
// values" rule.
func Merge(base, override Options) Options {
	out := base
	if override.Compact {
		out.Compact = true
	}
	if override.LongNames {
		out.LongNames = true
	}
	if override.AsSectors {
		out.AsSectors = true
	}
	if override.TimeUnits != "" {
		out.TimeUnits = override.TimeUnits
	}
	if override.Start != 0 {
		out.Start = override.Start
	}
	if override.Stop != 0 {
		out.Stop = override.Stop
	}
	if override.DT != 0 {
		out.DT = override.DT
	}
	if override.SimMethod != "" {
		out.SimMethod = override.SimMethod
	}
	return out
}
