package parser

import (
	"testing"

	"github.com/cwbudde/go-saferun/internal/ast"
)

func parseOK(t *testing.T, src string) *ast.Module {
	t.Helper()
	p := New(src)
	mod := p.ParseModule()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, p.Errors())
	}
	return mod
}

func TestParseAssignment(t *testing.T) {
	mod := parseOK(t, "x = 1 + 2 * 3\n")
	if len(mod.Body) != 1 {
		t.Fatalf("want 1 stmt, got %d", len(mod.Body))
	}
	assign, ok := mod.Body[0].(*ast.AssignStmt)
	if !ok {
		t.Fatalf("want *AssignStmt, got %T", mod.Body[0])
	}
	bin, ok := assign.Value.(*ast.BinaryExpr)
	if !ok || bin.Op != "+" {
		t.Fatalf("expected top-level '+' respecting precedence, got %#v", assign.Value)
	}
}

func TestParseIfElifElse(t *testing.T) {
	src := "if a:\n    x = 1\nelif b:\n    x = 2\nelse:\n    x = 3\n"
	mod := parseOK(t, src)
	ifs, ok := mod.Body[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("want *IfStmt, got %T", mod.Body[0])
	}
	if len(ifs.Orelse) != 1 {
		t.Fatalf("want elif folded into Orelse, got %d stmts", len(ifs.Orelse))
	}
	if _, ok := ifs.Orelse[0].(*ast.IfStmt); !ok {
		t.Fatalf("want elif as nested *IfStmt, got %T", ifs.Orelse[0])
	}
}

func TestParseFunctionDefWithDefaults(t *testing.T) {
	mod := parseOK(t, "def f(a, b=1, *args, c, **kwargs):\n    return a\n")
	fn, ok := mod.Body[0].(*ast.FunctionDef)
	if !ok {
		t.Fatalf("want *FunctionDef, got %T", mod.Body[0])
	}
	if len(fn.Params.PosOrKw) != 2 || fn.Params.Vararg == nil || len(fn.Params.KwOnly) != 1 || fn.Params.Kwarg == nil {
		t.Fatalf("param groups mismatch: %+v", fn.Params)
	}
}

func TestParseForLoop(t *testing.T) {
	mod := parseOK(t, "for x in items:\n    total += x\n")
	loop, ok := mod.Body[0].(*ast.ForStmt)
	if !ok {
		t.Fatalf("want *ForStmt, got %T", mod.Body[0])
	}
	if _, ok := loop.Body[0].(*ast.AugAssignStmt); !ok {
		t.Fatalf("want *AugAssignStmt in loop body, got %T", loop.Body[0])
	}
}

func TestParseTryExceptElseFinally(t *testing.T) {
	src := "try:\n    risky()\nexcept 'ZeroDivisionError':\n    pass\nelse:\n    ok()\nfinally:\n    cleanup()\n"
	mod := parseOK(t, src)
	tr, ok := mod.Body[0].(*ast.TryStmt)
	if !ok {
		t.Fatalf("want *TryStmt, got %T", mod.Body[0])
	}
	if len(tr.Handlers) != 1 || len(tr.Orelse) != 1 || len(tr.Finally) != 1 {
		t.Fatalf("clause counts mismatch: %+v", tr)
	}
}

func TestParseListDictSetLiterals(t *testing.T) {
	mod := parseOK(t, "a = [1, 2, 3]\nb = {1, 2}\nc = {'k': 1}\n")
	if _, ok := mod.Body[0].(*ast.AssignStmt).Value.(*ast.ListExpr); !ok {
		t.Fatal("expected list literal")
	}
	if _, ok := mod.Body[1].(*ast.AssignStmt).Value.(*ast.SetExpr); !ok {
		t.Fatal("expected set literal")
	}
	if _, ok := mod.Body[2].(*ast.AssignStmt).Value.(*ast.DictExpr); !ok {
		t.Fatal("expected dict literal")
	}
}

func TestParseListComprehension(t *testing.T) {
	mod := parseOK(t, "a = [x * 2 for x in items if x > 0]\n")
	comp, ok := mod.Body[0].(*ast.AssignStmt).Value.(*ast.ListComp)
	if !ok {
		t.Fatalf("want *ListComp, got %T", mod.Body[0].(*ast.AssignStmt).Value)
	}
	if len(comp.Generators) != 1 || len(comp.Generators[0].Ifs) != 1 {
		t.Fatalf("generator clause mismatch: %+v", comp.Generators)
	}
}

func TestParseFString(t *testing.T) {
	mod := parseOK(t, `s = f"hi {name}, total={total:.2f}"`+"\n")
	fs, ok := mod.Body[0].(*ast.AssignStmt).Value.(*ast.FString)
	if !ok {
		t.Fatalf("want *FString, got %T", mod.Body[0].(*ast.AssignStmt).Value)
	}
	if len(fs.Parts) != 4 {
		t.Fatalf("want 4 parts (lit, expr, lit, expr-with-spec), got %d: %+v", len(fs.Parts), fs.Parts)
	}
	if fs.Parts[3].FormatSpec != ".2f" {
		t.Fatalf("want format spec '.2f', got %q", fs.Parts[3].FormatSpec)
	}
}

func TestParseChainedComparison(t *testing.T) {
	mod := parseOK(t, "x = 1 < 2 < 3\n")
	cmp, ok := mod.Body[0].(*ast.AssignStmt).Value.(*ast.CompareExpr)
	if !ok {
		t.Fatalf("want *CompareExpr, got %T", mod.Body[0].(*ast.AssignStmt).Value)
	}
	if len(cmp.Ops) != 2 || cmp.Ops[0] != "<" || cmp.Ops[1] != "<" {
		t.Fatalf("want chained <, <, got %+v", cmp.Ops)
	}
}

func TestParseMatchStatement(t *testing.T) {
	src := "match cmd:\n    case 'start':\n        go()\n    case [x, *rest]:\n        go2()\n    case _:\n        noop()\n"
	mod := parseOK(t, src)
	m, ok := mod.Body[0].(*ast.MatchStmt)
	if !ok {
		t.Fatalf("want *MatchStmt, got %T", mod.Body[0])
	}
	if len(m.Cases) != 3 {
		t.Fatalf("want 3 cases, got %d", len(m.Cases))
	}
	seq, ok := m.Cases[1].Pattern.(*ast.SequencePattern)
	if !ok || seq.StarIndex != 1 {
		t.Fatalf("want sequence pattern with star at index 1, got %+v", m.Cases[1].Pattern)
	}
}

func TestParseWalrus(t *testing.T) {
	mod := parseOK(t, "if (n := compute()):\n    use(n)\n")
	ifs := mod.Body[0].(*ast.IfStmt)
	if _, ok := ifs.Test.(*ast.NamedExpr); !ok {
		t.Fatalf("want *NamedExpr, got %T", ifs.Test)
	}
}

func TestParseLambda(t *testing.T) {
	mod := parseOK(t, "f = lambda x, y=1: x + y\n")
	lam, ok := mod.Body[0].(*ast.AssignStmt).Value.(*ast.LambdaExpr)
	if !ok {
		t.Fatalf("want *LambdaExpr, got %T", mod.Body[0].(*ast.AssignStmt).Value)
	}
	if len(lam.Params.PosOrKw) != 2 {
		t.Fatalf("want 2 params, got %d", len(lam.Params.PosOrKw))
	}
}

func TestParseTernary(t *testing.T) {
	mod := parseOK(t, "x = a if cond else b\n")
	ternary, ok := mod.Body[0].(*ast.AssignStmt).Value.(*ast.IfExpr)
	if !ok {
		t.Fatalf("want *IfExpr, got %T", mod.Body[0].(*ast.AssignStmt).Value)
	}
	_ = ternary
}
