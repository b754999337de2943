package evaluator

import (
	"github.com/cwbudde/go-saferun/internal/ast"
	"github.com/cwbudde/go-saferun/internal/errtrace"
	"github.com/cwbudde/go-saferun/internal/value"
)

// evalAttribute implements `value.attr` under the deny-lists (SPEC_FULL.md
// §4.5):
//  1. Reject if name starts with any disallowed prefix or exactly matches a
//     disallowed method.
//  2. Read the host object's (or mapping's, as `d.key` sugar) attribute if
//     present.
//  3. If no attribute, raise NotDefined with the subject's type name.
func (e *Evaluator) evalAttribute(n *ast.AttributeExpr) (value.Value, error) {
	subject, err := e.evalExpr(n.Value)
	if err != nil {
		return nil, e.annotate(err, n.Value)
	}
	if !e.cfg.AttributeAllowed(n.Attr) {
		return nil, e.annotate(errtrace.Raise(errtrace.KindFeatureNotAvailable, "attribute '%s' is not accessible", n.Attr), n)
	}
	switch s := subject.(type) {
	case *value.HostObject:
		if s.GetAttr != nil {
			if v, ok := s.GetAttr(n.Attr); ok {
				return v, nil
			}
		}
	case *value.Map:
		if v, ok := s.GetStr(n.Attr); ok {
			return v, nil
		}
	default:
		if method, ok := e.boundMethod(subject, n.Attr); ok {
			return method, nil
		}
	}
	return nil, e.annotate(errtrace.Raise(errtrace.KindNotDefined, "'%s' object has no attribute '%s'", subject.TypeName(), n.Attr), n)
}
