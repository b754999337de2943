package ast

// Pattern is implemented by every `case` pattern node (spec.md §4.6).
type Pattern interface {
	patternNode()
}

// ValuePattern matches when the subject equals the evaluated Value
// expression (a dotted name or literal).
type ValuePattern struct {
	Value Expr
}

func (*ValuePattern) patternNode() {}

// SingletonPattern matches True, False, or None by identity.
type SingletonPattern struct {
	Kind string // "True" | "False" | "None"
}

func (*SingletonPattern) patternNode() {}

// SequencePattern matches an ordered, non-string sequence. StarIndex is -1
// when there is no starred sub-pattern, else the index within Patterns that
// the star occupies (its Name, possibly empty for `*_`, is carried on the
// StarPattern itself).
type SequencePattern struct {
	Patterns  []Pattern
	StarIndex int
}

func (*SequencePattern) patternNode() {}

// MappingPattern matches a mapping subject. Rest is "" when there is no
// `**rest` capture.
type MappingPattern struct {
	Keys     []Expr
	Patterns []Pattern
	Rest     string
}

func (*MappingPattern) patternNode() {}

// StarPattern is `*name` or `*_` inside a SequencePattern.
type StarPattern struct {
	Name string // "" for the wildcard `*_`
}

func (*StarPattern) patternNode() {}

// AsPattern is `pattern as name`, bare `name` capture (Inner == nil), or the
// wildcard `_` (Inner == nil && Name == "_").
type AsPattern struct {
	Inner Pattern
	Name  string
}

func (*AsPattern) patternNode() {}

// OrPattern tries each alternative left to right; first match wins.
// Per spec.md §4.6/§9, branch binding-name coherence is deliberately not
// enforced.
type OrPattern struct {
	Patterns []Pattern
}

func (*OrPattern) patternNode() {}
