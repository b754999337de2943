package operators

import (
	"github.com/cwbudde/go-saferun/internal/config"
	"github.com/cwbudde/go-saferun/internal/errtrace"
	"github.com/cwbudde/go-saferun/internal/value"
)

func asInts(a, b value.Value) (int64, int64, bool) {
	x, ok1 := value.AsInt64(a)
	y, ok2 := value.AsInt64(b)
	return x, y, ok1 && ok2
}

// BitAnd implements `&` for ints, and Set.Intersection for sets.
func BitAnd(cfg *config.Config, a, b value.Value) (value.Value, error) {
	if x, y, ok := asInts(a, b); ok {
		r := x & y
		if err := checkIntRange(cfg, r); err != nil {
			return nil, err
		}
		return value.NewInt(r), nil
	}
	if x, ok := a.(*value.Set); ok {
		if y, ok := b.(*value.Set); ok {
			return x.Intersection(y)
		}
	}
	return nil, typeErr("&", a, b)
}

// BitOr implements `|` for ints, Set.Union for sets, and Map.Or for dicts.
func BitOr(cfg *config.Config, a, b value.Value) (value.Value, error) {
	if x, y, ok := asInts(a, b); ok {
		r := x | y
		if err := checkIntRange(cfg, r); err != nil {
			return nil, err
		}
		return value.NewInt(r), nil
	}
	if x, ok := a.(*value.Set); ok {
		if y, ok := b.(*value.Set); ok {
			return x.Union(y)
		}
	}
	if x, ok := a.(*value.Map); ok {
		if y, ok := b.(*value.Map); ok {
			return x.Or(y)
		}
	}
	return nil, typeErr("|", a, b)
}

// BitXor implements `^` for ints and Set.SymmetricDifference for sets.
func BitXor(cfg *config.Config, a, b value.Value) (value.Value, error) {
	if x, y, ok := asInts(a, b); ok {
		r := x ^ y
		if err := checkIntRange(cfg, r); err != nil {
			return nil, err
		}
		return value.NewInt(r), nil
	}
	if x, ok := a.(*value.Set); ok {
		if y, ok := b.(*value.Set); ok {
			return x.SymmetricDifference(y)
		}
	}
	return nil, typeErr("^", a, b)
}

// Lshift implements `<<`, refusing shifts that would overflow the int
// ceiling rather than silently wrapping.
func Lshift(cfg *config.Config, a, b value.Value) (value.Value, error) {
	x, y, ok := asInts(a, b)
	if !ok {
		return nil, typeErr("<<", a, b)
	}
	if y < 0 {
		return nil, errtrace.Raise(errtrace.KindValueError, "negative shift count")
	}
	if y > int64(cfg.MaxIntSize) {
		return nil, errtrace.Raise(errtrace.KindNumberTooHigh, "Absolute value of number too high")
	}
	r := x << uint(y)
	if err := checkIntRange(cfg, r); err != nil {
		return nil, err
	}
	return value.NewInt(r), nil
}

// Rshift implements `>>`.
func Rshift(cfg *config.Config, a, b value.Value) (value.Value, error) {
	x, y, ok := asInts(a, b)
	if !ok {
		return nil, typeErr(">>", a, b)
	}
	if y < 0 {
		return nil, errtrace.Raise(errtrace.KindValueError, "negative shift count")
	}
	return value.NewInt(x >> uint(y)), nil
}

// BitNot implements unary `~`.
func BitNot(cfg *config.Config, a value.Value) (value.Value, error) {
	x, ok := value.AsInt64(a)
	if !ok {
		return nil, errtrace.Raise(errtrace.KindValueError, "bad operand type for unary ~: '%s'", a.TypeName())
	}
	r := ^x
	if err := checkIntRange(cfg, r); err != nil {
		return nil, err
	}
	return value.NewInt(r), nil
}
