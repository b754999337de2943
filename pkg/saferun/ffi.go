package saferun

import (
	"fmt"
	"reflect"

	"github.com/cwbudde/go-saferun/internal/config"
	"github.com/cwbudde/go-saferun/internal/errtrace"
	"github.com/cwbudde/go-saferun/internal/value"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// wrapGoFunc builds a value.GoFunc that calls fn via reflection, validating
// its signature up front (SPEC_FULL.md §6: "parameters/results limited to
// value.Value-convertible primitive kinds"). Modeled on the teacher's
// reflect.MakeFunc-based callback wrapper in internal/interp/ffi_callback.go,
// but running in the opposite direction: here a script calls into Go rather
// than Go calling back into a script.
func wrapGoFunc(cfg *config.Config, name string, fn any) (*value.GoFunc, error) {
	if fn == nil {
		return nil, fmt.Errorf("saferun: RegisterFunction(%q): fn is nil", name)
	}
	rv := reflect.ValueOf(fn)
	rt := rv.Type()
	if rt.Kind() != reflect.Func {
		return nil, fmt.Errorf("saferun: RegisterFunction(%q): fn is %s, not a function", name, rt.Kind())
	}

	numOut := rt.NumOut()
	returnsError := numOut > 0 && rt.Out(numOut-1) == errorType
	numResults := numOut
	if returnsError {
		numResults--
	}
	if numResults > 1 {
		return nil, fmt.Errorf("saferun: RegisterFunction(%q): at most one non-error return value is supported, got %d", name, numResults)
	}
	for i := 0; i < numResults; i++ {
		if !supportedKind(rt.Out(i).Kind()) {
			return nil, fmt.Errorf("saferun: RegisterFunction(%q): unsupported return type %s", name, rt.Out(i))
		}
	}
	if rt.IsVariadic() {
		return nil, fmt.Errorf("saferun: RegisterFunction(%q): variadic functions are not supported", name)
	}
	for i := 0; i < rt.NumIn(); i++ {
		if !supportedKind(rt.In(i).Kind()) {
			return nil, fmt.Errorf("saferun: RegisterFunction(%q): unsupported parameter %d type %s", name, i, rt.In(i))
		}
	}

	call := func(args []value.Value) (value.Value, error) {
		if len(args) != rt.NumIn() {
			return nil, errtrace.New(errtrace.KindValueError, nil, "", "%s() takes %d arguments (%d given)", name, rt.NumIn(), len(args))
		}
		in := make([]reflect.Value, rt.NumIn())
		for i := range in {
			gv, err := toGo(args[i], rt.In(i))
			if err != nil {
				return nil, errtrace.New(errtrace.KindValueError, nil, "", "%s() argument %d: %s", name, i, err)
			}
			in[i] = gv
		}
		out := rv.Call(in)
		if returnsError {
			if errv := out[numResults]; !errv.IsNil() {
				return nil, errv.Interface().(error)
			}
		}
		if numResults == 0 {
			return value.None, nil
		}
		return fromGo(cfg, out[0])
	}

	return &value.GoFunc{Name: name, Call: call}, nil
}

// supportedKind reports whether a reflect.Kind can round-trip through
// fromGo/toGo — the primitive scalar kinds value.Value can represent.
func supportedKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}

// toGo converts a script value v into a reflect.Value assignable to target,
// the argument-marshaling half of the FFI boundary.
func toGo(v value.Value, target reflect.Type) (reflect.Value, error) {
	switch target.Kind() {
	case reflect.Bool:
		b, ok := v.(value.Bool)
		if !ok {
			return reflect.Value{}, fmt.Errorf("expected bool, got %s", v.TypeName())
		}
		return reflect.ValueOf(bool(b)), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := v.(*value.Int)
		if !ok {
			return reflect.Value{}, fmt.Errorf("expected int, got %s", v.TypeName())
		}
		rv := reflect.New(target).Elem()
		switch {
		case rv.CanInt():
			rv.SetInt(n.V)
		case rv.CanUint():
			rv.SetUint(uint64(n.V))
		}
		return rv, nil
	case reflect.Float32, reflect.Float64:
		f, ok := v.(*value.Float)
		if ok {
			return reflect.ValueOf(f.V).Convert(target), nil
		}
		if n, ok := v.(*value.Int); ok {
			return reflect.ValueOf(float64(n.V)).Convert(target), nil
		}
		return reflect.Value{}, fmt.Errorf("expected float, got %s", v.TypeName())
	case reflect.String:
		s, ok := v.(*value.Str)
		if !ok {
			return reflect.Value{}, fmt.Errorf("expected str, got %s", v.TypeName())
		}
		return reflect.ValueOf(s.Go()), nil
	default:
		return reflect.Value{}, fmt.Errorf("unsupported parameter kind %s", target.Kind())
	}
}

// fromGo converts a reflect.Value produced by a registered Go function's
// call back into a script value.
func fromGo(cfg *config.Config, rv reflect.Value) (value.Value, error) {
	switch rv.Kind() {
	case reflect.Bool:
		return value.Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return value.NewInt(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return value.NewInt(int64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return value.NewFloat(rv.Float()), nil
	case reflect.String:
		return value.NewStr(cfg, rv.String()), nil
	default:
		return nil, fmt.Errorf("unsupported return kind %s", rv.Kind())
	}
}
