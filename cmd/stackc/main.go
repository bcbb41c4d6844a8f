/*
Command stackc is thin glue, not the core (spec.md places file I/O and
command-line plumbing out of scope as an external collaborator): it
takes the bundled balancedparens demo grammar, runs it through
check.Compile and emit.Emit, and writes the emitted Go source to -o.
Flag parsing follows dekarrin-tunaq's use of github.com/spf13/pflag,
since the teacher itself has no cmd/ of its own to imitate.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/grammarworks/stackc/check"
	"github.com/grammarworks/stackc/emit"
	"github.com/grammarworks/stackc/examples/balancedparens"
)

func main() {
	var (
		outPath     = pflag.StringP("output", "o", "", "path to write the emitted Go source to (required)")
		packageName = pflag.String("package", "balancedparens", "package clause for the emitted source")
		funcPrefix  = pflag.String("prefix", "state", "identifier prefix for generated state functions")
	)
	pflag.Parse()

	if *outPath == "" {
		fmt.Fprintln(os.Stderr, "stackc: -o/--output is required")
		pflag.Usage()
		os.Exit(2)
	}

	if err := run(*outPath, *packageName, *funcPrefix); err != nil {
		fmt.Fprintf(os.Stderr, "stackc: %v\n", err)
		os.Exit(1)
	}
}

func run(outPath, packageName, funcPrefix string) error {
	dfa, bag := check.Compile(balancedparens.Grammar().Graph)
	for _, d := range bag.Items() {
		fmt.Fprintf(os.Stderr, "stackc: %s\n", d.String())
	}
	if bag.HasErrors() {
		return fmt.Errorf("grammar failed check/determinize")
	}

	src, err := emit.Emit(dfa, emit.PackageName(packageName), emit.FuncPrefix(funcPrefix))
	if err != nil {
		return fmt.Errorf("emitting source: %w", err)
	}

	if err := os.WriteFile(outPath, src, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	fmt.Fprintf(os.Stderr, "stackc: wrote %s (%d bytes)\n", outPath, len(src))
	return nil
}
