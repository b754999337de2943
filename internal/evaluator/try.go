package evaluator

import (
	"github.com/cwbudde/go-saferun/internal/ast"
	"github.com/cwbudde/go-saferun/internal/errtrace"
)

// execTry implements try/except/else/finally. Limit errors (spec.md
// §4.2/§4.6: "never catchable") skip every handler. The `as name` capture
// form is not supported — a handler only ever gets a type name to match
// against, never a bound exception value. finally's own outcome overrides
// whatever the body/handler/else produced, including an already-computed
// return value (spec.md §8 scenario 9).
func (e *Evaluator) execTry(s *ast.TryStmt) (outcome, error) {
	bodyOut, bodyErr := e.execBlock(s.Body)

	var result outcome
	var resultErr error

	switch {
	case bodyErr != nil:
		te, ok := bodyErr.(*errtrace.Error)
		handled := false
		if ok && !te.Kind.IsLimit() {
			for _, h := range s.Handlers {
				if handlerMatches(h, te) {
					handled = true
					result, resultErr = e.execBlock(h.Body)
					break
				}
			}
		}
		if !handled {
			result, resultErr = outcome{}, bodyErr
		}
	case bodyOut.kind == outcomeNormal:
		result, resultErr = e.execBlock(s.Orelse)
	default:
		result, resultErr = bodyOut, nil
	}

	if len(s.Finally) == 0 {
		return result, resultErr
	}
	finalOut, finalErr := e.execBlock(s.Finally)
	if finalErr != nil {
		return outcome{}, finalErr
	}
	if finalOut.kind != outcomeNormal {
		return finalOut, nil
	}
	return result, resultErr
}

func handlerMatches(h ast.ExceptHandler, te *errtrace.Error) bool {
	switch t := h.Type.(type) {
	case nil:
		return true
	case *ast.StringLit:
		return te.MatchesTypeName(t.Value)
	case *ast.TupleExpr:
		for _, elt := range t.Elts {
			if lit, ok := elt.(*ast.StringLit); ok && te.MatchesTypeName(lit.Value) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
