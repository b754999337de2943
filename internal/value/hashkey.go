package value

import (
	"fmt"
	"strconv"
)

// hashKey returns a stable map key for v, used by Set and Map (mirroring
// Python's requirement that set/dict members be hashable). Bool, Int,
// Float, Str, None, and Tuple-of-hashables are hashable; everything else
// (Seq, Set, Map, Function, HostObject, Slice) is not, matching the
// reference language's own rules.
func hashKey(v Value) (string, bool) {
	switch t := v.(type) {
	case Bool:
		return "b:" + strconv.FormatBool(bool(t)), true
	case *Int:
		return "i:" + strconv.FormatInt(t.V, 10), true
	case *Float:
		return "f:" + strconv.FormatFloat(t.V, 'g', -1, 64), true
	case *Str:
		return "s:" + t.Go(), true
	case noneType:
		return "n:", true
	case *Tuple:
		key := "t:("
		for _, e := range t.Elems {
			sub, ok := hashKey(e)
			if !ok {
				return "", false
			}
			key += sub + ","
		}
		return key + ")", true
	default:
		return "", false
	}
}

// unhashableError is the canonical message for an unhashable set/dict key.
func unhashableError(v Value) string {
	return fmt.Sprintf("unhashable type: '%s'", v.TypeName())
}
