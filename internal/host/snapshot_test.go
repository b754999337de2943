package host

import (
	"io"
	"os"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/cwbudde/go-saferun/internal/config"
	"github.com/cwbudde/go-saferun/internal/errtrace"
)

func TestMain(m *testing.M) {
	v := m.Run()
	snaps.Clean(m)
	os.Exit(v)
}

// TestTracebackSnapshot pins the plain-text and JSON traceback renderings for
// a representative set of failures, so a change to FormatTraceback's shape
// or TracebackToJSON's field layout shows up as a snapshot diff.
func TestTracebackSnapshot(t *testing.T) {
	cases := map[string]string{
		"zero_division": "1 / 0",
		"not_defined":   "undefined_name",
		"type_error":    `"a" + 1`,
		"user_raise":    `raise "bad input"`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			i := New(config.New(), io.Discard, nil)
			_, err := i.Execute(src)
			te, ok := err.(*errtrace.Error)
			if !ok {
				t.Fatalf("expected *errtrace.Error, got %T (%v)", err, err)
			}
			snaps.MatchSnapshot(t, "text_"+name, errtrace.FormatTraceback(te))

			doc, jerr := TracebackToJSON(te)
			if jerr != nil {
				t.Fatalf("unexpected error: %v", jerr)
			}
			snaps.MatchSnapshot(t, "json_"+name, doc)
		})
	}
}

// TestValueJSONSnapshot pins ValueToJSON's rendering shape for a
// representative set of container values.
func TestValueJSONSnapshot(t *testing.T) {
	cases := map[string]string{
		"list":  `[1, 2, 3]`,
		"tuple": `(1, "two", 3.0)`,
		"dict":  `{"a": 1, "b": [1, 2]}`,
		"set":   `{1, 2, 3}`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			i := New(config.New(), io.Discard, nil)
			v, err := i.Eval(src)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			doc, jerr := ValueToJSON(v)
			if jerr != nil {
				t.Fatalf("unexpected error: %v", jerr)
			}
			snaps.MatchSnapshot(t, name, doc)
		})
	}
}
