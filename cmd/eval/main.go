// Command eval evaluates data-binding expressions against variables loaded
// from a YAML or TOML file.
//
//	eval -data model.yaml 'items.size > 2 ? items[0] | to_upper : "none"'
//	eval -data model.toml -assign 'count = count + 1' -show 'count * 2'
//
// With no expression arguments, expressions are read from stdin, one per
// line.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/IvanBrykalov/uicore/dataexpr"
	"github.com/IvanBrykalov/uicore/datamodel"
	"github.com/IvanBrykalov/uicore/internal/config"
)

func main() {
	var (
		dataPath = flag.String("data", "", "YAML or TOML file with the model variables")
		assign   = flag.String("assign", "", "assignments to run before evaluating, e.g. 'a = 1; b = a * 2'")
		dump     = flag.Bool("dump", false, "print the compiled program of each expression")
		show     = flag.Bool("show", false, "print the model as YAML after evaluation")
		level    = flag.String("log", "warn", "log level")
	)
	flag.Parse()

	lvl, err := config.ParseLevel(*level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	dataexpr.SetLogger(log)

	vars := map[string]any{}
	if *dataPath != "" {
		if err := config.DecodeFile(*dataPath, &vars); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}
	m, bound := newModel(vars, log)

	failed := false
	if *assign != "" {
		if err := m.Assign(*assign); err != nil {
			report(os.Stderr, *assign, err)
			failed = true
		}
	}

	exprs := flag.Args()
	if len(exprs) == 0 {
		exprs, err = readLines(os.Stdin)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	for _, src := range exprs {
		if !eval(os.Stdout, m, src, *dump) {
			failed = true
		}
	}

	if *show {
		out := make(map[string]any, len(bound))
		for name, p := range bound {
			out[name] = *p
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			fmt.Fprintln(os.Stderr, err)
			failed = true
		}
		_ = enc.Close()
	}
	if failed {
		os.Exit(1)
	}
}

// newModel binds every top-level key of vars. Keys that are not legal
// variable names are skipped with a warning.
func newModel(vars map[string]any, log *slog.Logger) (*datamodel.Model, map[string]*any) {
	m := datamodel.New(datamodel.Options{Logger: log})
	bound := make(map[string]*any, len(vars))
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		v := vars[name]
		if err := m.Bind(name, &v); err != nil {
			log.Warn("variable skipped", "error", err)
			continue
		}
		bound[name] = &v
	}
	return m, bound
}

func eval(w io.Writer, m *datamodel.Model, src string, dump bool) bool {
	if dump {
		e, err := dataexpr.Compile(src, m, false)
		if err != nil {
			report(os.Stderr, src, err)
			return false
		}
		fmt.Fprint(w, dataexpr.DumpProgram(e.Program()))
	}
	v, err := m.Eval(src)
	if err != nil {
		report(os.Stderr, src, err)
		return false
	}
	fmt.Fprintln(w, v.ToString())
	return true
}

func report(w io.Writer, src string, err error) {
	var pe *dataexpr.ParseError
	if errors.As(err, &pe) {
		fmt.Fprintf(w, "%v\n%s\n", err, pe.Caret())
		return
	}
	fmt.Fprintf(w, "%s: %v\n", src, err)
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" && !strings.HasPrefix(line, "#") {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}
