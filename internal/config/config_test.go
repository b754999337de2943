package config

import "testing"

func TestDefaults(t *testing.T) {
	c := New()
	if c.MaxConstLen != DefaultMaxConstLen {
		t.Errorf("MaxConstLen = %d, want %d", c.MaxConstLen, DefaultMaxConstLen)
	}
	if c.MaxInt() != 1<<63-1 {
		t.Errorf("MaxInt() = %d, want %d", c.MaxInt(), int64(1<<63-1))
	}
	if c.MinInt() != -(1 << 63) {
		t.Errorf("MinInt() = %d, want %d", c.MinInt(), -(int64(1) << 63))
	}
}

func TestOptions(t *testing.T) {
	c := New(WithMaxConstLen(10), WithMaxIntSize(8), WithMaxPower(100, 10))
	if c.MaxConstLen != 10 {
		t.Errorf("MaxConstLen = %d, want 10", c.MaxConstLen)
	}
	if c.MaxInt() != 127 || c.MinInt() != -128 {
		t.Errorf("8-bit range = [%d, %d], want [-128, 127]", c.MinInt(), c.MaxInt())
	}
	if c.MaxPowerBase != 100 || c.MaxPower != 10 {
		t.Errorf("power ceilings = (%d, %d), want (100, 10)", c.MaxPowerBase, c.MaxPower)
	}
}

func TestAttributeAllowed(t *testing.T) {
	c := New()
	cases := map[string]bool{
		"name":     true,
		"_private": false,
		"func_foo": false,
		"format":   false,
		"mro":      false,
		"upper":    true,
	}
	for name, want := range cases {
		if got := c.AttributeAllowed(name); got != want {
			t.Errorf("AttributeAllowed(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestLoadYAML(t *testing.T) {
	doc := []byte(`
max_const_len: 5000
max_loops: 500
disallow_prefixes: ["_"]
`)
	c, err := LoadYAML(doc)
	if err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}
	if c.MaxConstLen != 5000 {
		t.Errorf("MaxConstLen = %d, want 5000", c.MaxConstLen)
	}
	if c.MaxLoops != 500 {
		t.Errorf("MaxLoops = %d, want 500", c.MaxLoops)
	}
	// Untouched fields keep their defaults.
	if c.MaxStatements != DefaultMaxStatements {
		t.Errorf("MaxStatements = %d, want default %d", c.MaxStatements, DefaultMaxStatements)
	}
	if len(c.DisallowPrefixes) != 1 || c.DisallowPrefixes[0] != "_" {
		t.Errorf("DisallowPrefixes = %v, want [_]", c.DisallowPrefixes)
	}
}
