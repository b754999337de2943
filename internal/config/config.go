// Package config holds the resource ceilings and attribute deny-lists that
// bound a single interpreter's runs. A Config is immutable once constructed
// and handed to internal/host.Interpreter at startup.
package config

// Default ceilings, mirroring the reference implementation's defaults
// (spec.md §4.1).
const (
	DefaultMaxConstLen       = 200_000
	DefaultMaxLoops          = 10_000
	DefaultMaxStatements     = 100_000
	DefaultMaxPowerBase      = 1_000_000
	DefaultMaxPower          = 1_000
	DefaultMaxIntSize        = 64
	DefaultMaxRecursionDepth = 50
)

// Config enumerates every ceiling and deny-list recognized by the
// interpreter (spec.md §4.1). The zero value is not valid; use New.
type Config struct {
	MaxConstLen       int
	MaxLoops          int
	MaxStatements     int
	MaxPowerBase      int64
	MaxPower          int64
	MaxIntSize        uint
	MaxRecursionDepth int

	// DisallowPrefixes lists attribute-name prefixes that are always
	// unreadable (e.g. "_", "func_").
	DisallowPrefixes []string
	// DisallowMethods lists exact attribute names that are always
	// unreadable regardless of prefix.
	DisallowMethods []string

	// BuiltinsExtendDefault controls how caller-supplied builtins combine
	// with the default name table: true merges (caller wins on conflict),
	// false replaces the defaults entirely.
	BuiltinsExtendDefault bool
}

// Option configures a Config built by New.
type Option func(*Config)

// New builds a Config with spec.md's documented defaults, applying opts in
// order.
func New(opts ...Option) *Config {
	c := &Config{
		MaxConstLen:           DefaultMaxConstLen,
		MaxLoops:              DefaultMaxLoops,
		MaxStatements:         DefaultMaxStatements,
		MaxPowerBase:          DefaultMaxPowerBase,
		MaxPower:              DefaultMaxPower,
		MaxIntSize:            DefaultMaxIntSize,
		MaxRecursionDepth:     DefaultMaxRecursionDepth,
		DisallowPrefixes:      append([]string(nil), defaultDisallowPrefixes...),
		DisallowMethods:       append([]string(nil), defaultDisallowMethods...),
		BuiltinsExtendDefault: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultDisallowPrefixes = []string{"_", "func_"}

// defaultDisallowMethods matches spec.md §4.1: exact-match denial of
// format/format_map/mro plus the usual frame-introspection and exec
// surfaces a sandboxed attribute reader must never expose.
var defaultDisallowMethods = []string{
	"format", "format_map", "mro",
	"exec", "eval", "compile", "__globals__", "__code__",
	"__class__", "__bases__", "__subclasses__", "__dict__",
	"f_locals", "f_globals", "f_back",
}

// WithMaxConstLen overrides the container/string growth ceiling.
func WithMaxConstLen(n int) Option { return func(c *Config) { c.MaxConstLen = n } }

// WithMaxLoops overrides the total per-run loop-iteration ceiling.
func WithMaxLoops(n int) Option { return func(c *Config) { c.MaxLoops = n } }

// WithMaxStatements overrides the total per-run statement-evaluation ceiling.
func WithMaxStatements(n int) Option { return func(c *Config) { c.MaxStatements = n } }

// WithMaxPower overrides the `a ** b` base/exponent ceilings.
func WithMaxPower(base, exp int64) Option {
	return func(c *Config) { c.MaxPowerBase = base; c.MaxPower = exp }
}

// WithMaxIntSize overrides the integer magnitude bit width.
func WithMaxIntSize(bits uint) Option { return func(c *Config) { c.MaxIntSize = bits } }

// WithMaxRecursionDepth overrides the user-call nesting ceiling.
func WithMaxRecursionDepth(n int) Option {
	return func(c *Config) { c.MaxRecursionDepth = n }
}

// WithDisallowPrefixes replaces the attribute-name-prefix deny-list.
func WithDisallowPrefixes(prefixes ...string) Option {
	return func(c *Config) { c.DisallowPrefixes = prefixes }
}

// WithDisallowMethods replaces the exact-match attribute deny-list.
func WithDisallowMethods(methods ...string) Option {
	return func(c *Config) { c.DisallowMethods = methods }
}

// WithBuiltinsExtendDefault controls whether host-supplied builtins merge
// with or replace the default name table.
func WithBuiltinsExtendDefault(extend bool) Option {
	return func(c *Config) { c.BuiltinsExtendDefault = extend }
}

// MinInt returns the smallest representable integer under MaxIntSize.
func (c *Config) MinInt() int64 {
	return -(int64(1) << (c.MaxIntSize - 1))
}

// MaxInt returns the largest representable integer under MaxIntSize.
func (c *Config) MaxInt() int64 {
	return (int64(1) << (c.MaxIntSize - 1)) - 1
}

// IntInRange reports whether v fits within [MinInt, MaxInt].
func (c *Config) IntInRange(v int64) bool {
	return v >= c.MinInt() && v <= c.MaxInt()
}

// AttributeAllowed reports whether name may be read via attribute access,
// per the deny-lists in spec.md §4.1/§4.5.
func (c *Config) AttributeAllowed(name string) bool {
	for _, m := range c.DisallowMethods {
		if name == m {
			return false
		}
	}
	for _, p := range c.DisallowPrefixes {
		if p != "" && len(name) >= len(p) && name[:len(p)] == p {
			return false
		}
	}
	return true
}
