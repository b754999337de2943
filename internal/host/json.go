package host

import (
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/cwbudde/go-saferun/internal/errtrace"
	"github.com/cwbudde/go-saferun/internal/value"
)

// ValueToJSON renders a result value.Value as a JSON document, for hosts
// that want a structured result instead of the script-visible str()
// rendering. Containers nest recursively; callables render as their
// str()-equivalent label, since a function/lambda value has no JSON shape
// of its own.
func ValueToJSON(v value.Value) (string, error) {
	return marshalValue(v)
}

// marshalValue builds one JSON fragment for v, wrapping each scalar through
// a throwaway sjson.Set/gjson.Get round trip so escaping (quotes, unicode,
// backslashes) is handled by the library rather than by hand.
func marshalValue(v value.Value) (string, error) {
	if v == nil || value.IsNone(v) {
		return "null", nil
	}
	switch x := v.(type) {
	case value.Bool:
		if x {
			return "true", nil
		}
		return "false", nil
	case *value.Int:
		return x.String(), nil
	case *value.Float:
		return scalarFragment(x.V)
	case *value.Str:
		return scalarFragment(x.Go())
	case *value.Tuple:
		return marshalSlice(x.Elems)
	case *value.Seq:
		return marshalSlice(x.Elems())
	case *value.Set:
		return marshalSlice(x.Values())
	case *value.Map:
		return marshalMap(x)
	default:
		return scalarFragment(v.String())
	}
}

// scalarFragment JSON-encodes a single Go value by setting it at a
// placeholder key and reading the encoded fragment back out — the standard
// sjson/gjson idiom for producing a valid JSON scalar without hand-rolled
// escaping.
func scalarFragment(v any) (string, error) {
	doc, err := sjson.Set("{}", "v", v)
	if err != nil {
		return "", err
	}
	return gjson.Get(doc, "v").Raw, nil
}

func marshalSlice(elems []value.Value) (string, error) {
	doc := "[]"
	for _, e := range elems {
		frag, err := marshalValue(e)
		if err != nil {
			return "", err
		}
		doc, err = sjson.SetRaw(doc, "-1", frag)
		if err != nil {
			return "", err
		}
	}
	return doc, nil
}

// marshalMap renders m as a JSON object keyed by each key's str() rendering
// when every key is a *value.Str, or as an array of [key, value] pairs
// otherwise (JSON object keys must be strings, and this language's mapping
// keys need not be).
func marshalMap(m *value.Map) (string, error) {
	for _, k := range m.Keys() {
		if _, ok := k.(*value.Str); !ok {
			return marshalMapAsPairs(m)
		}
	}
	doc := "{}"
	for _, it := range m.Items() {
		key := it.Elems[0].(*value.Str).Go()
		frag, err := marshalValue(it.Elems[1])
		if err != nil {
			return "", err
		}
		doc, err = sjson.SetRaw(doc, sjsonEscapePath(key), frag)
		if err != nil {
			return "", err
		}
	}
	return doc, nil
}

func marshalMapAsPairs(m *value.Map) (string, error) {
	doc := "[]"
	for _, it := range m.Items() {
		pair, err := marshalSlice(it.Elems)
		if err != nil {
			return "", err
		}
		doc, err = sjson.SetRaw(doc, "-1", pair)
		if err != nil {
			return "", err
		}
	}
	return doc, nil
}

// sjsonEscapePath backslash-escapes the path metacharacters sjson assigns
// special meaning to, so an arbitrary string key can be used as a literal
// path segment.
func sjsonEscapePath(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `.`, `\.`, `*`, `\*`, `?`, `\?`)
	return r.Replace(s)
}

// TracebackToJSON renders a caught *errtrace.Error as a JSON document: the
// script-visible exception type name, the message, the full plain-text
// traceback, and one frame object per nested call (outermost first),
// mirroring FormatTraceback's shape for hosts that want to pull a single
// field (e.g. gjson.Get(doc, "frames.0.line")) without parsing the text
// rendering.
func TracebackToJSON(e *errtrace.Error) (string, error) {
	doc := "{}"
	var err error
	if doc, err = sjson.Set(doc, "kind", e.TypeName()); err != nil {
		return "", err
	}
	if doc, err = sjson.Set(doc, "message", e.Error()); err != nil {
		return "", err
	}
	if doc, err = sjson.Set(doc, "text", errtrace.FormatTraceback(e)); err != nil {
		return "", err
	}
	if doc, err = sjson.SetRaw(doc, "frames", "[]"); err != nil {
		return "", err
	}
	for cur := e; cur != nil; {
		frame := "{}"
		if cur.Node != nil {
			pos := cur.Node.Span().Start
			if frame, err = sjson.Set(frame, "line", pos.Line); err != nil {
				return "", err
			}
			if frame, err = sjson.Set(frame, "col", pos.Column); err != nil {
				return "", err
			}
		}
		if cur.InFunc != "" {
			if frame, err = sjson.Set(frame, "in_func", cur.InFunc); err != nil {
				return "", err
			}
		}
		if doc, err = sjson.SetRaw(doc, "frames.-1", frame); err != nil {
			return "", err
		}
		if cur.Kind == errtrace.KindNested {
			cur = cur.Nested
		} else {
			cur = nil
		}
	}
	return doc, nil
}

// JSONPath pulls a single field out of a JSON document built by
// ValueToJSON/TracebackToJSON without unmarshaling the whole thing — useful
// for a host that only wants, say, the failing line number.
func JSONPath(doc, path string) gjson.Result {
	return gjson.Get(doc, path)
}
