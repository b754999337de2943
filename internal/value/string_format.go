package value

import (
	"fmt"
	"strings"
)

// renderPrintf performs the actual substitution for Str.Mod once bounds
// checking has already passed. It supports the common printf verbs
// (%s %d %i %f %x %X %o %r %%) with the flags/width/precision PrintfTemplateRE
// already validated for length.
func renderPrintf(template string, seq []Value, mapping *Map) string {
	var sb strings.Builder
	idx := 0
	matches := PrintfTemplateRE.FindAllStringSubmatchIndex(template, -1)
	names := PrintfTemplateRE.SubexpNames()
	last := 0

	group := func(m []int, name string) string {
		for i, n := range names {
			if n == name && m[2*i] >= 0 {
				return template[m[2*i]:m[2*i+1]]
			}
		}
		return ""
	}

	for _, m := range matches {
		sb.WriteString(template[last:m[0]])
		last = m[1]

		typ := group(m, "type")
		flags := group(m, "flags")
		width := group(m, "width")
		precision := group(m, "precision")
		mappingKey := group(m, "mapping_key")

		if typ == "%" {
			sb.WriteByte('%')
			continue
		}

		var arg Value
		if mappingKey != "" {
			arg, _ = mapping.GetStr(mappingKey)
		} else if idx < len(seq) {
			arg = seq[idx]
			idx++
		}

		verb := "%" + flags + width
		if precision != "" {
			verb += "." + precision
		}
		sb.WriteString(renderOne(verb, typ, arg))
	}
	sb.WriteString(template[last:])
	return sb.String()
}

func renderOne(verb, typ string, arg Value) string {
	switch typ {
	case "d", "i", "u":
		n, _ := AsInt64(arg)
		return fmt.Sprintf(verb+"d", n)
	case "o":
		n, _ := AsInt64(arg)
		return fmt.Sprintf(verb+"o", n)
	case "x":
		n, _ := AsInt64(arg)
		return fmt.Sprintf(verb+"x", n)
	case "X":
		n, _ := AsInt64(arg)
		return fmt.Sprintf(verb+"X", n)
	case "e", "E", "f", "F", "g", "G":
		f, _ := AsFloat64(arg)
		return fmt.Sprintf(verb+typ, f)
	case "c":
		n, _ := AsInt64(arg)
		return string(rune(n))
	case "r":
		return fmt.Sprintf(verb+"s", reprOf(arg))
	case "a":
		return fmt.Sprintf(verb+"s", reprOf(arg))
	default: // "s" and anything else: stringify
		if arg == nil {
			return fmt.Sprintf(verb + "s")
		}
		return fmt.Sprintf(verb+"s", arg.String())
	}
}

// reprOf gives a best-effort repr() for %r: quoted for strings, plain
// String() otherwise.
func reprOf(v Value) string {
	if s, ok := v.(*Str); ok {
		return "'" + s.v + "'"
	}
	if v == nil {
		return "None"
	}
	return v.String()
}
