// Command whileyc drives the four core stages (constant evaluator, type
// resolver, lowerer, module cache) end to end, the way cmd/funxy/main.go
// drives the teacher's own lexer/parser/analyzer/evaluator pipeline. It is
// deliberately thin: spec.md's Non-goals exclude lexical syntax and any
// specified CLI surface, so this driver never parses .whiley source text.
// Instead it compiles a small fixed set of built-in scenarios (the same
// shapes internal/compile's own tests build) so every stage, the sqlite
// module cache and the YAML module dump can be exercised from a terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/zimothy/Whiley/internal/compile"
	"github.com/zimothy/Whiley/internal/diag"
	"github.com/zimothy/Whiley/internal/modcache"
	"github.com/zimothy/Whiley/internal/moduleio"
	"github.com/zimothy/Whiley/internal/resolver"
)

func main() {
	dbPath := flag.String("db", ":memory:", "sqlite module cache path (\":memory:\" for a process-local cache)")
	dumpIL := flag.Bool("dump-il", false, "dump each compiled module as YAML to stdout")
	stats := flag.Bool("stats", false, "print a human-readable summary of what was compiled")
	colorFlag := flag.String("color", "auto", "diagnostic color: auto|always|never")
	flag.Parse()

	useColor := shouldColor(*colorFlag)

	cache, err := modcache.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "whileyc: opening module cache: %s\n", err)
		os.Exit(1)
	}
	defer cache.Close()

	loader := resolver.ModuleLoader(cache)
	ctx := context.Background()

	hadErrors := false
	var totalTypes, totalConsts, totalFuncs, totalDiags int

	for _, sc := range scenarios {
		res := compile.File(sc.file, loader)

		totalTypes += len(res.Module.Types)
		totalConsts += len(res.Module.Constants)
		totalFuncs += len(res.Module.Functions)
		totalDiags += len(res.Errors)

		for _, e := range res.Errors {
			hadErrors = true
			reportDiagnostic(sc.name, e, useColor)
		}

		if err := cache.Publish(ctx, res.Module); err != nil {
			fmt.Fprintf(os.Stderr, "whileyc: publishing %s: %s\n", sc.name, err)
			os.Exit(1)
		}

		if *dumpIL {
			dump, err := moduleio.Dump(res.Module)
			if err != nil {
				fmt.Fprintf(os.Stderr, "whileyc: dumping %s: %s\n", sc.name, err)
				os.Exit(1)
			}
			fmt.Printf("--- %s ---\n%s\n", sc.name, dump)
		}
	}

	if *stats {
		fmt.Printf("compiled %s scenario(s): %s type(s), %s constant(s), %s function(s), %s diagnostic(s)\n",
			humanize.Comma(int64(len(scenarios))),
			humanize.Comma(int64(totalTypes)),
			humanize.Comma(int64(totalConsts)),
			humanize.Comma(int64(totalFuncs)),
			humanize.Comma(int64(totalDiags)))
	}

	if hadErrors {
		os.Exit(1)
	}
}

// shouldColor resolves the -color flag against whether stdout is actually a
// terminal, the same NO_COLOR-aware check builtins_term.go's
// detectColorLevel performs for the teacher's own diagnostic output.
func shouldColor(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// ansiRed/ansiReset bracket a diagnostic's Kind when writing to a color
// terminal.
const (
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

func reportDiagnostic(scenario string, e *diag.Error, color bool) {
	if color {
		fmt.Fprintf(os.Stderr, "%s: %s%s%s: %s\n", scenario, ansiRed, e.Kind, ansiReset, e.Error())
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %s\n", scenario, e.Error())
}
