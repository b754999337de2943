package config

import (
	"fmt"

	"github.com/goccy/go-yaml"
)

// fileShape mirrors the subset of Config a host is expected to override
// from a checked-in ceilings file; zero fields fall back to New()'s
// defaults rather than zeroing the ceiling out.
type fileShape struct {
	MaxConstLen           *int     `yaml:"max_const_len"`
	MaxLoops              *int     `yaml:"max_loops"`
	MaxStatements         *int     `yaml:"max_statements"`
	MaxPowerBase          *int64   `yaml:"max_power_base"`
	MaxPower              *int64   `yaml:"max_power"`
	MaxIntSize            *uint    `yaml:"max_int_size"`
	MaxRecursionDepth     *int     `yaml:"max_recursion_depth"`
	DisallowPrefixes      []string `yaml:"disallow_prefixes"`
	DisallowMethods       []string `yaml:"disallow_methods"`
	BuiltinsExtendDefault *bool    `yaml:"builtins_extend_default"`
}

// LoadYAML parses ceilings out of a YAML document, layering them over
// New()'s defaults. This lets a host ship administrator-editable ceilings
// as a config file rather than Go literals, using the same YAML library the
// teacher repo already depends on for its own config/serialization needs.
func LoadYAML(data []byte) (*Config, error) {
	var shape fileShape
	if err := yaml.Unmarshal(data, &shape); err != nil {
		return nil, fmt.Errorf("config: parsing yaml: %w", err)
	}

	c := New()
	if shape.MaxConstLen != nil {
		c.MaxConstLen = *shape.MaxConstLen
	}
	if shape.MaxLoops != nil {
		c.MaxLoops = *shape.MaxLoops
	}
	if shape.MaxStatements != nil {
		c.MaxStatements = *shape.MaxStatements
	}
	if shape.MaxPowerBase != nil {
		c.MaxPowerBase = *shape.MaxPowerBase
	}
	if shape.MaxPower != nil {
		c.MaxPower = *shape.MaxPower
	}
	if shape.MaxIntSize != nil {
		c.MaxIntSize = *shape.MaxIntSize
	}
	if shape.MaxRecursionDepth != nil {
		c.MaxRecursionDepth = *shape.MaxRecursionDepth
	}
	if shape.DisallowPrefixes != nil {
		c.DisallowPrefixes = shape.DisallowPrefixes
	}
	if shape.DisallowMethods != nil {
		c.DisallowMethods = shape.DisallowMethods
	}
	if shape.BuiltinsExtendDefault != nil {
		c.BuiltinsExtendDefault = *shape.BuiltinsExtendDefault
	}
	return c, nil
}
