package host

import (
	"io"
	"strconv"
	"strings"

	"github.com/cwbudde/go-saferun/internal/config"
	"github.com/cwbudde/go-saferun/internal/errtrace"
	"github.com/cwbudde/go-saferun/internal/operators"
	"github.com/cwbudde/go-saferun/internal/value"
)

// defaultBuiltins builds the name table every Interpreter seeds its
// evaluator with (SPEC_FULL.md §6/§4.1's "default_names"): the canonical
// type constructors, True/False/None, and a print builtin writing to the
// host-supplied io.Writer. Every constructor here always yields a safe
// wrapper (spec.md §4.3: "Constructors list, dict, set, str in
// default_names always yield safe wrappers").
func defaultBuiltins(cfg *config.Config, output io.Writer) map[string]value.Value {
	return map[string]value.Value{
		"True":  value.Bool(true),
		"False": value.Bool(false),
		"None":  value.None,

		"int":   &value.GoFunc{Name: "int", Call: intBuiltin(cfg)},
		"float": &value.GoFunc{Name: "float", Call: floatBuiltin},
		"bool":  &value.GoFunc{Name: "bool", Call: boolBuiltin},
		"str":   &value.GoFunc{Name: "str", Call: strBuiltin(cfg)},
		"tuple": &value.GoFunc{Name: "tuple", Call: tupleBuiltin(cfg)},
		"list":  &value.GoFunc{Name: "list", Call: listBuiltin(cfg)},
		"dict":  &value.GoFunc{Name: "dict", Call: dictBuiltin(cfg)},
		"set":   &value.GoFunc{Name: "set", Call: setBuiltin(cfg)},
		"len":   &value.GoFunc{Name: "len", Call: lenBuiltin},
		"print": &value.GoFunc{Name: "print", Call: printBuiltin(output)},
	}
}

// mergeBuiltins combines the default table with host-supplied extras per
// cfg.BuiltinsExtendDefault (spec.md §4.1: "if false, caller-supplied
// builtins replace defaults; otherwise they merge with caller taking
// precedence on conflicts").
func mergeBuiltins(cfg *config.Config, output io.Writer, extra map[string]value.Value) map[string]value.Value {
	if !cfg.BuiltinsExtendDefault {
		out := make(map[string]value.Value, len(extra))
		for k, v := range extra {
			out[k] = v
		}
		return out
	}
	out := defaultBuiltins(cfg, output)
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func arg0(args []value.Value) (value.Value, bool) {
	if len(args) == 0 {
		return nil, false
	}
	return args[0], true
}

func intBuiltin(cfg *config.Config) func([]value.Value) (value.Value, error) {
	return func(args []value.Value) (value.Value, error) {
		a, ok := arg0(args)
		if !ok {
			return value.NewInt(0), nil
		}
		var n int64
		switch v := a.(type) {
		case *value.Int:
			n = v.V
		case *value.Float:
			n = int64(v.V)
		case value.Bool:
			if v {
				n = 1
			}
		case *value.Str:
			parsed, err := strconv.ParseInt(strings.TrimSpace(v.Go()), 10, 64)
			if err != nil {
				return nil, errtrace.Raise(errtrace.KindValueError, "invalid literal for int(): '%s'", v.Go())
			}
			n = parsed
		default:
			return nil, errtrace.Raise(errtrace.KindValueError, "int() argument must be a string or a number, not '%s'", a.TypeName())
		}
		if !cfg.IntInRange(n) {
			return nil, errtrace.Raise(errtrace.KindNumberTooHigh, "Absolute value of number too high")
		}
		return value.NewInt(n), nil
	}
}

func floatBuiltin(args []value.Value) (value.Value, error) {
	a, ok := arg0(args)
	if !ok {
		return value.NewFloat(0), nil
	}
	switch v := a.(type) {
	case *value.Int:
		return value.NewFloat(float64(v.V)), nil
	case *value.Float:
		return v, nil
	case value.Bool:
		if v {
			return value.NewFloat(1), nil
		}
		return value.NewFloat(0), nil
	case *value.Str:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.Go()), 64)
		if err != nil {
			return nil, errtrace.Raise(errtrace.KindValueError, "could not convert string to float: '%s'", v.Go())
		}
		return value.NewFloat(parsed), nil
	default:
		return nil, errtrace.Raise(errtrace.KindValueError, "float() argument must be a string or a number, not '%s'", a.TypeName())
	}
}

func boolBuiltin(args []value.Value) (value.Value, error) {
	a, ok := arg0(args)
	if !ok {
		return value.Bool(false), nil
	}
	return value.Bool(operators.Truthy(a)), nil
}

func strBuiltin(cfg *config.Config) func([]value.Value) (value.Value, error) {
	return func(args []value.Value) (value.Value, error) {
		a, ok := arg0(args)
		if !ok {
			return value.NewStr(cfg, ""), nil
		}
		return value.NewStr(cfg, a.String()), nil
	}
}

// iterableToSlice mirrors internal/evaluator's own container-to-slice
// unpacking (SPEC_FULL.md §4.6's comprehension/for-loop iteration), kept as
// a small local copy since that logic is unexported inside the evaluator
// package and these builtins live outside it.
func iterableToSlice(cfg *config.Config, v value.Value) ([]value.Value, error) {
	switch c := v.(type) {
	case *value.Seq:
		return append([]value.Value(nil), c.Elems()...), nil
	case *value.Tuple:
		return append([]value.Value(nil), c.Elems...), nil
	case *value.Set:
		return c.Values(), nil
	case *value.Map:
		return c.Keys(), nil
	case *value.Str:
		runes := []rune(c.Go())
		out := make([]value.Value, len(runes))
		for i, r := range runes {
			out[i] = value.NewStr(cfg, string(r))
		}
		return out, nil
	default:
		return nil, errtrace.Raise(errtrace.KindValueError, "'%s' object is not iterable", v.TypeName())
	}
}

func tupleBuiltin(cfg *config.Config) func([]value.Value) (value.Value, error) {
	return func(args []value.Value) (value.Value, error) {
		a, ok := arg0(args)
		if !ok {
			return &value.Tuple{}, nil
		}
		elems, err := iterableToSlice(cfg, a)
		if err != nil {
			return nil, err
		}
		return &value.Tuple{Elems: elems}, nil
	}
}

func listBuiltin(cfg *config.Config) func([]value.Value) (value.Value, error) {
	return func(args []value.Value) (value.Value, error) {
		a, ok := arg0(args)
		if !ok {
			return value.NewSeq(cfg, nil), nil
		}
		elems, err := iterableToSlice(cfg, a)
		if err != nil {
			return nil, err
		}
		return value.NewSeq(cfg, elems), nil
	}
}

func dictBuiltin(cfg *config.Config) func([]value.Value) (value.Value, error) {
	return func(args []value.Value) (value.Value, error) {
		m := value.NewMap(cfg)
		a, ok := arg0(args)
		if !ok {
			return m, nil
		}
		pairs, err := iterableToSlice(cfg, a)
		if err != nil {
			return nil, err
		}
		for _, p := range pairs {
			t, ok := p.(*value.Tuple)
			if !ok || len(t.Elems) != 2 {
				return nil, errtrace.Raise(errtrace.KindValueError, "dict() update sequence element must be a 2-tuple")
			}
			if err := m.Set(t.Elems[0], t.Elems[1]); err != nil {
				return nil, err
			}
		}
		return m, nil
	}
}

func setBuiltin(cfg *config.Config) func([]value.Value) (value.Value, error) {
	return func(args []value.Value) (value.Value, error) {
		a, ok := arg0(args)
		if !ok {
			return value.NewSet(cfg), nil
		}
		elems, err := iterableToSlice(cfg, a)
		if err != nil {
			return nil, err
		}
		return value.NewSetFrom(cfg, elems)
	}
}

// lenBuiltin returns item count, not approx_len's size-weighted cost — those
// coincide for a Str (both are rune count) but not for a Seq/Map/Set of
// multi-rune elements, so each container's own Len() is used rather than
// ApproxLen().
func lenBuiltin(args []value.Value) (value.Value, error) {
	a, ok := arg0(args)
	if !ok {
		return nil, errtrace.Raise(errtrace.KindValueError, "len() takes exactly one argument")
	}
	switch v := a.(type) {
	case *value.Str:
		return value.NewInt(int64(v.ApproxLen())), nil
	case *value.Seq:
		return value.NewInt(int64(v.Len())), nil
	case *value.Set:
		return value.NewInt(int64(v.Len())), nil
	case *value.Map:
		return value.NewInt(int64(v.Len())), nil
	case *value.Tuple:
		return value.NewInt(int64(len(v.Elems))), nil
	default:
		return nil, errtrace.Raise(errtrace.KindValueError, "object of type '%s' has no len()", a.TypeName())
	}
}

// printBuiltin writes its space-joined, str()-rendered arguments followed by
// a newline to output, mirroring spec.md §7's host-supplied io.Writer
// convention rather than a stdout side channel (SPEC_FULL.md's AMBIENT
// STACK logging section).
func printBuiltin(output io.Writer) func([]value.Value) (value.Value, error) {
	return func(args []value.Value) (value.Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.String()
		}
		_, err := io.WriteString(output, strings.Join(parts, " ")+"\n")
		return value.None, err
	}
}
