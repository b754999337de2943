package lexer

import "testing"

func tokenTypes(toks []Token) []TokenType {
	out := make([]TokenType, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func TestScanSimpleAssignment(t *testing.T) {
	toks := New("x = 1 + 2\n").Scan()
	want := []TokenType{IDENT, ASSIGN, NUMBER, PLUS, NUMBER, NEWLINE, EOF}
	assertTypes(t, toks, want)
}

func TestScanIndentDedent(t *testing.T) {
	src := "if x:\n    y = 1\n    z = 2\nw = 3\n"
	toks := New(src).Scan()
	want := []TokenType{
		IF, IDENT, COLON, NEWLINE,
		INDENT, IDENT, ASSIGN, NUMBER, NEWLINE,
		IDENT, ASSIGN, NUMBER, NEWLINE,
		DEDENT, IDENT, ASSIGN, NUMBER, NEWLINE,
		EOF,
	}
	assertTypes(t, toks, want)
}

func TestScanBlankAndCommentLinesDoNotAffectIndent(t *testing.T) {
	src := "if x:\n    y = 1\n\n    # comment\n    z = 2\n"
	toks := New(src).Scan()
	want := []TokenType{
		IF, IDENT, COLON, NEWLINE,
		INDENT, IDENT, ASSIGN, NUMBER, NEWLINE,
		IDENT, ASSIGN, NUMBER, NEWLINE,
		DEDENT, EOF,
	}
	assertTypes(t, toks, want)
}

func TestScanStringEscapes(t *testing.T) {
	toks := New(`"a\nb"` + "\n").Scan()
	if toks[0].Type != STRING || toks[0].Literal != "a\nb" {
		t.Fatalf("got %v", toks[0])
	}
}

func TestScanFString(t *testing.T) {
	toks := New(`f"hi {name}"` + "\n").Scan()
	if toks[0].Type != FSTRING || toks[0].Literal != "hi {name}" {
		t.Fatalf("got %v", toks[0])
	}
}

func TestScanTripleQuoted(t *testing.T) {
	toks := New("\"\"\"line1\nline2\"\"\"\n").Scan()
	if toks[0].Type != STRING || toks[0].Literal != "line1\nline2" {
		t.Fatalf("got %q", toks[0].Literal)
	}
}

func TestScanOperators(t *testing.T) {
	toks := New("a += 1\nb //= 2\nc **= 3\n").Scan()
	want := []TokenType{
		IDENT, PLUSEQ, NUMBER, NEWLINE,
		IDENT, DOUBLESLASHEQ, NUMBER, NEWLINE,
		IDENT, DOUBLESTAREQ, NUMBER, NEWLINE,
		EOF,
	}
	assertTypes(t, toks, want)
}

func TestParenSuppressesNewlineAndIndent(t *testing.T) {
	src := "x = (1 +\n    2)\n"
	toks := New(src).Scan()
	want := []TokenType{IDENT, ASSIGN, LPAREN, NUMBER, PLUS, NUMBER, RPAREN, NEWLINE, EOF}
	assertTypes(t, toks, want)
}

func assertTypes(t *testing.T, toks []Token, want []TokenType) {
	t.Helper()
	got := tokenTypes(toks)
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d\ngot:  %v\nwant: %v", len(got), len(want), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token[%d] = %v, want %v\ngot:  %v\nwant: %v", i, got[i], want[i], got, want)
		}
	}
}
