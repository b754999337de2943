package evaluator

import (
	"github.com/cwbudde/go-saferun/internal/errtrace"
	"github.com/cwbudde/go-saferun/internal/value"
)

// boundMethod resolves a fixed set of safe-container methods — list:
// append/extend/insert/pop/remove/clear/count/index; set: add/remove/
// discard/pop/clear/union/intersection/symmetric_difference/difference/
// update; dict: get/pop/keys/values/items/update/clear; str: upper/lower/
// title/casefold/center/ljust/rjust/zfill/replace/join/expandtabs/
// translate — returning a value.BoundMethod a CallExpr can invoke. Any
// other name is not resolved. encode/format/format_map resolve to methods
// that always refuse (Str.Encode/Format/FormatMap).
func (e *Evaluator) boundMethod(recv value.Value, name string) (*value.BoundMethod, bool) {
	switch r := recv.(type) {
	case *value.Seq:
		return e.seqMethod(r, name)
	case *value.Set:
		return e.setMethod(r, name)
	case *value.Map:
		return e.mapMethod(r, name)
	case *value.Str:
		return e.strMethod(r, name)
	default:
		return nil, false
	}
}

func bm(recv value.Value, name string, call func(args []value.Value) (value.Value, error)) (*value.BoundMethod, bool) {
	return &value.BoundMethod{Receiver: recv, Name: name, Call: call}, true
}

func argN(args []value.Value, i int) value.Value {
	if i < len(args) {
		return args[i]
	}
	return nil
}

func (e *Evaluator) seqMethod(s *value.Seq, name string) (*value.BoundMethod, bool) {
	switch name {
	case "append":
		return bm(s, name, func(args []value.Value) (value.Value, error) {
			if len(args) != 1 {
				return nil, errtrace.Raise(errtrace.KindValueError, "append() takes exactly one argument")
			}
			return value.None, s.Append(args[0])
		})
	case "extend":
		return bm(s, name, func(args []value.Value) (value.Value, error) {
			items, err := e.iterate(argN(args, 0))
			if err != nil {
				return nil, err
			}
			return value.None, s.Extend(items)
		})
	case "insert":
		return bm(s, name, func(args []value.Value) (value.Value, error) {
			if len(args) != 2 {
				return nil, errtrace.Raise(errtrace.KindValueError, "insert() takes exactly two arguments")
			}
			idx, ok := value.AsInt64(args[0])
			if !ok {
				return nil, errtrace.Raise(errtrace.KindValueError, "insert() index must be an integer")
			}
			return value.None, s.Insert(resolveIndex(int(idx), s.Len()), args[1])
		})
	case "pop":
		return bm(s, name, func(args []value.Value) (value.Value, error) {
			i := s.Len() - 1
			if len(args) == 1 {
				n, ok := value.AsInt64(args[0])
				if !ok {
					return nil, errtrace.Raise(errtrace.KindValueError, "pop() index must be an integer")
				}
				i = resolveIndex(int(n), s.Len())
			}
			v, ok := s.Pop(i)
			if !ok {
				return nil, errtrace.Raise(errtrace.KindValueError, "pop index out of range")
			}
			return v, nil
		})
	case "remove":
		return bm(s, name, func(args []value.Value) (value.Value, error) {
			if !s.Remove(argN(args, 0)) {
				return nil, errtrace.Raise(errtrace.KindValueError, "value not found in list")
			}
			return value.None, nil
		})
	case "clear":
		return bm(s, name, func(args []value.Value) (value.Value, error) {
			s.Clear()
			return value.None, nil
		})
	case "count":
		return bm(s, name, func(args []value.Value) (value.Value, error) {
			n := 0
			for _, elem := range s.Elems() {
				if eq, ok := elem.(value.Equatable); ok && eq.Equal(argN(args, 0)) {
					n++
				}
			}
			return value.NewInt(int64(n)), nil
		})
	case "index":
		return bm(s, name, func(args []value.Value) (value.Value, error) {
			for i, elem := range s.Elems() {
				if eq, ok := elem.(value.Equatable); ok && eq.Equal(argN(args, 0)) {
					return value.NewInt(int64(i)), nil
				}
			}
			return nil, errtrace.Raise(errtrace.KindValueError, "value not found in list")
		})
	default:
		return nil, false
	}
}

func (e *Evaluator) setMethod(s *value.Set, name string) (*value.BoundMethod, bool) {
	asSet := func(v value.Value) (*value.Set, error) {
		set, ok := v.(*value.Set)
		if !ok {
			return nil, errtrace.Raise(errtrace.KindValueError, "expected a set")
		}
		return set, nil
	}
	switch name {
	case "add":
		return bm(s, name, func(args []value.Value) (value.Value, error) {
			return value.None, s.Add(argN(args, 0))
		})
	case "remove":
		return bm(s, name, func(args []value.Value) (value.Value, error) {
			return value.None, s.Remove(argN(args, 0))
		})
	case "discard":
		return bm(s, name, func(args []value.Value) (value.Value, error) {
			s.Discard(argN(args, 0))
			return value.None, nil
		})
	case "pop":
		return bm(s, name, func(args []value.Value) (value.Value, error) {
			v, ok := s.Pop()
			if !ok {
				return nil, errtrace.Raise(errtrace.KindValueError, "pop from an empty set")
			}
			return v, nil
		})
	case "clear":
		return bm(s, name, func(args []value.Value) (value.Value, error) {
			s.Clear()
			return value.None, nil
		})
	case "union":
		return bm(s, name, func(args []value.Value) (value.Value, error) {
			others := make([]*value.Set, 0, len(args))
			for _, a := range args {
				o, err := asSet(a)
				if err != nil {
					return nil, err
				}
				others = append(others, o)
			}
			return s.Union(others...)
		})
	case "intersection":
		return bm(s, name, func(args []value.Value) (value.Value, error) {
			others := make([]*value.Set, 0, len(args))
			for _, a := range args {
				o, err := asSet(a)
				if err != nil {
					return nil, err
				}
				others = append(others, o)
			}
			return s.Intersection(others...)
		})
	case "symmetric_difference":
		return bm(s, name, func(args []value.Value) (value.Value, error) {
			o, err := asSet(argN(args, 0))
			if err != nil {
				return nil, err
			}
			return s.SymmetricDifference(o)
		})
	case "difference":
		return bm(s, name, func(args []value.Value) (value.Value, error) {
			o, err := asSet(argN(args, 0))
			if err != nil {
				return nil, err
			}
			return s.Difference(o), nil
		})
	case "update":
		return bm(s, name, func(args []value.Value) (value.Value, error) {
			others := make([]*value.Set, 0, len(args))
			for _, a := range args {
				o, err := asSet(a)
				if err != nil {
					return nil, err
				}
				others = append(others, o)
			}
			return value.None, s.Update(others...)
		})
	default:
		return nil, false
	}
}

func (e *Evaluator) mapMethod(m *value.Map, name string) (*value.BoundMethod, bool) {
	switch name {
	case "get":
		return bm(m, name, func(args []value.Value) (value.Value, error) {
			if v, ok := m.Get(argN(args, 0)); ok {
				return v, nil
			}
			if len(args) > 1 {
				return args[1], nil
			}
			return value.None, nil
		})
	case "pop":
		return bm(m, name, func(args []value.Value) (value.Value, error) {
			if v, ok := m.Pop(argN(args, 0)); ok {
				return v, nil
			}
			if len(args) > 1 {
				return args[1], nil
			}
			return nil, errtrace.Raise(errtrace.KindValueError, "key not found")
		})
	case "keys":
		return bm(m, name, func(args []value.Value) (value.Value, error) {
			return value.NewSeq(e.cfg, m.Keys()), nil
		})
	case "values":
		return bm(m, name, func(args []value.Value) (value.Value, error) {
			return value.NewSeq(e.cfg, m.Values()), nil
		})
	case "items":
		return bm(m, name, func(args []value.Value) (value.Value, error) {
			items := m.Items()
			elems := make([]value.Value, len(items))
			for i, it := range items {
				elems[i] = it
			}
			return value.NewSeq(e.cfg, elems), nil
		})
	case "update":
		return bm(m, name, func(args []value.Value) (value.Value, error) {
			other, ok := argN(args, 0).(*value.Map)
			if !ok {
				return nil, errtrace.Raise(errtrace.KindValueError, "expected a mapping")
			}
			return value.None, m.Update(other)
		})
	case "clear":
		return bm(m, name, func(args []value.Value) (value.Value, error) {
			m.Clear()
			return value.None, nil
		})
	default:
		return nil, false
	}
}

func (e *Evaluator) strMethod(s *value.Str, name string) (*value.BoundMethod, bool) {
	str := func(v value.Value, err error) (value.Value, error) {
		if sv, ok := v.(*value.Str); ok {
			return sv, err
		}
		return v, err
	}
	strArg := func(v value.Value) (string, error) {
		sv, ok := v.(*value.Str)
		if !ok {
			return "", errtrace.Raise(errtrace.KindValueError, "expected a str argument")
		}
		return sv.Go(), nil
	}
	switch name {
	case "upper":
		return bm(s, name, func(args []value.Value) (value.Value, error) { return s.Upper(), nil })
	case "lower":
		return bm(s, name, func(args []value.Value) (value.Value, error) { return s.Lower(), nil })
	case "title":
		return bm(s, name, func(args []value.Value) (value.Value, error) { return s.Title(), nil })
	case "casefold":
		return bm(s, name, func(args []value.Value) (value.Value, error) { return s.Casefold(), nil })
	case "center":
		return bm(s, name, func(args []value.Value) (value.Value, error) {
			width, _ := value.AsInt64(argN(args, 0))
			fill := ' '
			if len(args) > 1 {
				f, err := strArg(args[1])
				if err != nil {
					return nil, err
				}
				if r := []rune(f); len(r) > 0 {
					fill = r[0]
				}
			}
			return str(s.Center(int(width), fill))
		})
	case "ljust":
		return bm(s, name, func(args []value.Value) (value.Value, error) {
			width, _ := value.AsInt64(argN(args, 0))
			fill := ' '
			if len(args) > 1 {
				f, err := strArg(args[1])
				if err != nil {
					return nil, err
				}
				if r := []rune(f); len(r) > 0 {
					fill = r[0]
				}
			}
			return str(s.Ljust(int(width), fill))
		})
	case "rjust":
		return bm(s, name, func(args []value.Value) (value.Value, error) {
			width, _ := value.AsInt64(argN(args, 0))
			fill := ' '
			if len(args) > 1 {
				f, err := strArg(args[1])
				if err != nil {
					return nil, err
				}
				if r := []rune(f); len(r) > 0 {
					fill = r[0]
				}
			}
			return str(s.Rjust(int(width), fill))
		})
	case "zfill":
		return bm(s, name, func(args []value.Value) (value.Value, error) {
			width, _ := value.AsInt64(argN(args, 0))
			return str(s.Zfill(int(width)))
		})
	case "replace":
		return bm(s, name, func(args []value.Value) (value.Value, error) {
			old, err := strArg(argN(args, 0))
			if err != nil {
				return nil, err
			}
			new, err := strArg(argN(args, 1))
			if err != nil {
				return nil, err
			}
			n := -1
			if len(args) > 2 {
				v, _ := value.AsInt64(args[2])
				n = int(v)
			}
			return str(s.Replace(old, new, n))
		})
	case "join":
		return bm(s, name, func(args []value.Value) (value.Value, error) {
			items, err := e.iterate(argN(args, 0))
			if err != nil {
				return nil, err
			}
			return str(s.Join(items))
		})
	case "expandtabs":
		return bm(s, name, func(args []value.Value) (value.Value, error) {
			tabsize := 8
			if len(args) > 0 {
				n, _ := value.AsInt64(args[0])
				tabsize = int(n)
			}
			return str(s.ExpandTabs(tabsize))
		})
	case "translate":
		return bm(s, name, func(args []value.Value) (value.Value, error) {
			table, ok := argN(args, 0).(*value.Map)
			if !ok {
				return nil, errtrace.Raise(errtrace.KindValueError, "translate() expects a translation table")
			}
			runeTable := make(map[rune]rune, table.Len())
			for _, k := range table.Keys() {
				v, _ := table.Get(k)
				kStr, ok := k.(*value.Str)
				if !ok {
					continue
				}
				kr := []rune(kStr.Go())
				if len(kr) != 1 {
					continue
				}
				if value.IsNone(v) {
					runeTable[kr[0]] = -1
					continue
				}
				vStr, ok := v.(*value.Str)
				if !ok {
					continue
				}
				vr := []rune(vStr.Go())
				if len(vr) == 1 {
					runeTable[kr[0]] = vr[0]
				}
			}
			return str(s.Translate(runeTable))
		})
	case "encode":
		return bm(s, name, func(args []value.Value) (value.Value, error) { return nil, s.Encode() })
	case "format":
		return bm(s, name, func(args []value.Value) (value.Value, error) { return nil, s.Format() })
	case "format_map":
		return bm(s, name, func(args []value.Value) (value.Value, error) { return nil, s.FormatMap() })
	default:
		return nil, false
	}
}
