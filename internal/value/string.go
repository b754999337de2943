package value

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cwbudde/go-saferun/internal/config"
	"github.com/cwbudde/go-saferun/internal/errtrace"
)

// Str is the bounded, immutable string value (spec.md §4.3's "safe
// string"). Methods that could offer an escape vector (encode, format,
// format_map) are refused outright; every width/replace/join/translate
// method enforces the matching growth ceiling before building its result.
type Str struct {
	cfg *config.Config
	v   string
}

// NewStr wraps a Go string under cfg's ceilings.
func NewStr(cfg *config.Config, s string) *Str { return &Str{cfg: cfg, v: s} }

func (*Str) TypeName() string         { return "str" }
func (s *Str) String() string         { return s.v }
func (s *Str) Go() string             { return s.v }
func (s *Str) Truthy() bool           { return s.v != "" }
func (s *Str) ApproxLen() int         { return utf8.RuneCountInString(s.v) }
func (s *Str) Config() *config.Config { return s.cfg }

func (s *Str) Equal(o Value) bool {
	os, ok := o.(*Str)
	return ok && os.v == s.v
}

func (s *Str) checkLen(n int) error {
	if n > s.cfg.MaxConstLen {
		return errtrace.Raise(errtrace.KindIterableTooLong, "This str is too large")
	}
	return nil
}

// Upper, Lower, Title, Casefold use golang.org/x/text/cases for
// Unicode-correct folding rather than the byte-wise ASCII folding a naive
// strings.ToUpper-alike would give multi-byte scripts.
func (s *Str) Upper() *Str {
	return &Str{cfg: s.cfg, v: cases.Upper(language.Und).String(s.v)}
}

func (s *Str) Lower() *Str {
	return &Str{cfg: s.cfg, v: cases.Lower(language.Und).String(s.v)}
}

func (s *Str) Title() *Str {
	return &Str{cfg: s.cfg, v: cases.Title(language.Und).String(s.v)}
}

func (s *Str) Casefold() *Str {
	return &Str{cfg: s.cfg, v: cases.Fold().String(s.v)}
}

// Center, Ljust, Rjust, Zfill refuse widths above the length ceiling
// (spec.md §4.3).
func (s *Str) Center(width int, fill rune) (*Str, error) {
	if err := s.checkLen(width); err != nil {
		return nil, err
	}
	n := s.ApproxLen()
	if width <= n {
		return s, nil
	}
	total := width - n
	left := total / 2
	right := total - left
	// Python's str.center gives an odd extra fill character to the left
	// side only when width is odd as well; otherwise it goes on the right.
	if total%2 == 1 && width%2 == 1 {
		left = total/2 + 1
		right = total - left
	}
	return &Str{cfg: s.cfg, v: strings.Repeat(string(fill), left) + s.v + strings.Repeat(string(fill), right)}, nil
}

func (s *Str) Ljust(width int, fill rune) (*Str, error) {
	if err := s.checkLen(width); err != nil {
		return nil, err
	}
	n := s.ApproxLen()
	if width <= n {
		return s, nil
	}
	return &Str{cfg: s.cfg, v: s.v + strings.Repeat(string(fill), width-n)}, nil
}

func (s *Str) Rjust(width int, fill rune) (*Str, error) {
	if err := s.checkLen(width); err != nil {
		return nil, err
	}
	n := s.ApproxLen()
	if width <= n {
		return s, nil
	}
	return &Str{cfg: s.cfg, v: strings.Repeat(string(fill), width-n) + s.v}, nil
}

func (s *Str) Zfill(width int) (*Str, error) {
	if err := s.checkLen(width); err != nil {
		return nil, err
	}
	n := s.ApproxLen()
	if width <= n {
		return s, nil
	}
	sign := ""
	rest := s.v
	if strings.HasPrefix(rest, "-") || strings.HasPrefix(rest, "+") {
		sign, rest = rest[:1], rest[1:]
	}
	pad := width - n
	return &Str{cfg: s.cfg, v: sign + strings.Repeat("0", pad) + rest}, nil
}

// Replace checks `count * (len(new) - len(old)) + len(self) <= max` before
// building the result (spec.md §4.3).
func (s *Str) Replace(old, new string, n int) (*Str, error) {
	count := strings.Count(s.v, old)
	if n >= 0 && n < count {
		count = n
	}
	delta := count * (utf8.RuneCountInString(new) - utf8.RuneCountInString(old))
	if err := s.checkLen(s.ApproxLen() + delta); err != nil {
		return nil, err
	}
	replCount := -1
	if n >= 0 {
		replCount = n
	}
	return &Str{cfg: s.cfg, v: strings.Replace(s.v, old, new, replCount)}, nil
}

// Join checks `len(seq) * len(sep) + sum(approx_len of items) <= max`
// before concatenating (spec.md §4.3).
func (s *Str) Join(items []Value) (*Str, error) {
	total := 0
	parts := make([]string, len(items))
	for i, it := range items {
		str, ok := it.(*Str)
		if !ok {
			return nil, errtrace.Raise(errtrace.KindValueError, "sequence item %d: expected str instance, %s found", i, it.TypeName())
		}
		parts[i] = str.v
		total += ApproxLen(it, nil)
	}
	if len(items) > 0 {
		total += (len(items) - 1) * s.ApproxLen()
	}
	if err := s.checkLen(total); err != nil {
		return nil, err
	}
	return &Str{cfg: s.cfg, v: strings.Join(parts, s.v)}, nil
}

// MakeTrans builds a translation table (rune -> replacement rune, or -1 to
// delete) from one or three string arguments, matching str.maketrans.
func MakeTrans(from, to, delete string) (map[rune]rune, error) {
	fromRunes := []rune(from)
	toRunes := []rune(to)
	if len(fromRunes) != len(toRunes) {
		return nil, errtrace.Raise(errtrace.KindValueError, "the first two maketrans arguments must have equal length")
	}
	table := make(map[rune]rune, len(fromRunes)+len(delete))
	for i, r := range fromRunes {
		table[r] = toRunes[i]
	}
	for _, r := range delete {
		table[r] = -1
	}
	return table, nil
}

// Translate applies table (rune -> replacement, or -1 to delete a rune),
// using the pessimistic bound `approx_len(table) * len(self)` (spec.md
// §4.3 — "an overestimate by a multiplicative factor of len(table)").
func (s *Str) Translate(table map[rune]rune) (*Str, error) {
	if err := s.checkLen(len(table) * s.ApproxLen()); err != nil {
		return nil, err
	}
	var sb strings.Builder
	for _, r := range s.v {
		if repl, ok := table[r]; ok {
			if repl < 0 {
				continue
			}
			sb.WriteRune(repl)
			continue
		}
		sb.WriteRune(r)
	}
	return &Str{cfg: s.cfg, v: sb.String()}, nil
}

// ExpandTabs checks `count('\t') * tabsize <= max` before expanding
// (spec.md §4.3).
func (s *Str) ExpandTabs(tabsize int) (*Str, error) {
	count := strings.Count(s.v, "\t")
	if err := s.checkLen(count * tabsize); err != nil {
		return nil, err
	}
	return &Str{cfg: s.cfg, v: strings.ReplaceAll(s.v, "\t", strings.Repeat(" ", tabsize))}, nil
}

// Encode and the format/format_map methods are always refused: they offer
// escape vectors (spec.md §4.3).
func (s *Str) Encode() error {
	return errtrace.Raise(errtrace.KindFeatureNotAvailable, "This method is not allowed")
}

func (s *Str) Format() error {
	return errtrace.Raise(errtrace.KindFeatureNotAvailable, "This method is not allowed")
}

func (s *Str) FormatMap() error {
	return errtrace.Raise(errtrace.KindFeatureNotAvailable, "This method is not allowed")
}

// PrintfTemplateRE enumerates printf-style `%`-template fields, mirroring
// original_source/draconic/string.py's PRINTF_TEMPLATE_RE.
var PrintfTemplateRE = regexp.MustCompile(
	`%(?:\((?P<mapping_key>[^)]*)\))?(?P<flags>[-+ 0#]*)(?P<width>\*|\d+)?(?:\.(?P<precision>\*|\d+))?(?P<type>[diouxXeEfFgGcrsa%])`,
)

// FormatSpecRE validates the documented field syntax of an f-string format
// spec (`[[fill]align][sign][#][0][width][,][.precision][type]`), mirroring
// original_source/draconic/string.py's FORMAT_SPEC_RE.
var FormatSpecRE = regexp.MustCompile(
	`^(?:(?P<fill>.)?(?P<align>[<>=^]))?(?P<sign>[-+ ])?(?P<alt>#)?(?P<zero>0)?(?P<width>\d+)?(?P<grouping>[,_])?(?:\.(?P<precision>\d+))?(?P<type>[bcdeEfFgGnosxX%])?$`,
)

// Mod implements the `%` printf-style operator. values is either a single
// Value (the `'%s' % 0` form), a *Tuple (positional args), or a *Map
// (mapping-key args). Star width/precision is always refused; the
// accumulated worst-case output length is checked against the ceiling on
// every match, exactly as spec.md §4.3/§4.4 describes.
func (s *Str) Mod(values Value) (*Str, error) {
	var seq []Value
	var mapping *Map
	switch v := values.(type) {
	case *Tuple:
		seq = v.Elems
	case *Map:
		mapping = v
	default:
		seq = []Value{values}
	}

	bound := s.ApproxLen()
	idx := 0
	matches := PrintfTemplateRE.FindAllStringSubmatchIndex(s.v, -1)
	names := PrintfTemplateRE.SubexpNames()

	group := func(m []int, name string) string {
		for i, n := range names {
			if n == name && m[2*i] >= 0 {
				return s.v[m[2*i]:m[2*i+1]]
			}
		}
		return ""
	}

	for _, m := range matches {
		width := group(m, "width")
		if width == "*" {
			return nil, errtrace.Raise(errtrace.KindFeatureNotAvailable, "Star precision in printf-style formatting not allowed")
		}
		if width != "" {
			n, _ := strconv.Atoi(width)
			bound += n
		}
		precision := group(m, "precision")
		if precision == "*" {
			return nil, errtrace.Raise(errtrace.KindFeatureNotAvailable, "Star precision in printf-style formatting not allowed")
		}
		if precision != "" {
			n, _ := strconv.Atoi(precision)
			bound += n
		}

		mappingKey := group(m, "mapping_key")
		typ := group(m, "type")
		switch {
		case mappingKey != "":
			if mapping == nil {
				return nil, errtrace.Raise(errtrace.KindValueError, "format requires a mapping")
			}
			val, ok := mapping.GetStr(mappingKey)
			if !ok {
				return nil, errtrace.Raise(errtrace.KindValueError, "'%s'", mappingKey)
			}
			bound += ApproxLen(val, nil)
		case mapping == nil:
			if idx >= len(seq) {
				if typ != "%" {
					return nil, errtrace.Raise(errtrace.KindValueError, "not enough arguments for format string")
				}
			} else {
				bound += ApproxLen(seq[idx], nil)
			}
		}
		if typ != "%" {
			idx++
		}
		if err := s.checkLen(bound); err != nil {
			return nil, err
		}
	}

	return &Str{cfg: s.cfg, v: renderPrintf(s.v, seq, mapping)}, nil
}
