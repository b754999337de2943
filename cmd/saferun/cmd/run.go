package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/go-saferun/internal/config"
	"github.com/cwbudde/go-saferun/internal/errtrace"
	"github.com/cwbudde/go-saferun/internal/host"
	"github.com/cwbudde/go-saferun/internal/value"
)

var (
	evalExpr      string
	mode          string
	jsonOutput    bool
	maxStatements int
	maxLoops      int
	maxRecursion  int
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a script file or expression",
	Long: `Execute a script from a file or inline expression, under the
interpreter's bounded time/memory ceilings.

Examples:
  # Run a script file as a statement sequence
  saferun run script.py

  # Evaluate an inline expression
  saferun run -e "1 + 2 * 3"

  # Run as a module (reentrant, counters carried across repeated runs)
  saferun run --mode module script.py`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
	runCmd.Flags().StringVar(&mode, "mode", "execute", "one of eval, execute, module")
	runCmd.Flags().BoolVar(&jsonOutput, "json", false, "render the result (or a caught error) as JSON")
	runCmd.Flags().IntVar(&maxStatements, "max-statements", config.DefaultMaxStatements, "per-run statement ceiling")
	runCmd.Flags().IntVar(&maxLoops, "max-loops", config.DefaultMaxLoops, "per-run loop-iteration ceiling")
	runCmd.Flags().IntVar(&maxRecursion, "max-recursion", config.DefaultMaxRecursionDepth, "call-depth ceiling")
}

func runScript(_ *cobra.Command, args []string) error {
	var source, filename string
	switch {
	case evalExpr != "":
		source, filename = evalExpr, "<eval>"
	case len(args) == 1:
		filename = args[0]
		content, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", filename, err)
		}
		source = string(content)
	default:
		return fmt.Errorf("either provide a file path or use -e flag for inline code")
	}

	cfg := config.New(
		config.WithMaxStatements(maxStatements),
		config.WithMaxLoops(maxLoops),
		config.WithMaxRecursionDepth(maxRecursion),
	)
	interp := host.New(cfg, os.Stdout, nil)

	var result value.Value
	var err error
	switch mode {
	case "eval":
		result, err = interp.Eval(source)
	case "execute":
		result, err = interp.Execute(source)
	case "module":
		result, err = interp.ExecuteModule(source, moduleNameFor(filename))
	default:
		return fmt.Errorf("unknown --mode %q (want eval, execute, or module)", mode)
	}

	if err != nil {
		return reportError(err)
	}
	return reportResult(result)
}

func moduleNameFor(filename string) string {
	if filename == "<eval>" || filename == "" {
		return "__main__"
	}
	return filename
}

func reportError(err error) error {
	traceErr, ok := err.(*errtrace.Error)
	if !ok {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	if jsonOutput {
		doc, jsonErr := host.TracebackToJSON(traceErr)
		if jsonErr != nil {
			return jsonErr
		}
		fmt.Println(doc)
	} else {
		fmt.Fprint(os.Stderr, errtrace.FormatTraceback(traceErr))
	}
	return err
}

func reportResult(result value.Value) error {
	if jsonOutput {
		doc, err := host.ValueToJSON(result)
		if err != nil {
			return err
		}
		fmt.Println(doc)
		return nil
	}
	fmt.Println(result.String())
	return nil
}
