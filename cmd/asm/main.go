// Command asm assembles a Formica program and prints the resolved listing
// with absolute addresses.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"antics.dev/internal/logger"
	"antics.dev/internal/sim/formica"
)

func main() {
	var (
		in     = flag.String("in", "-", "program source (- for stdin)")
		strict = flag.Bool("strict", true, "reject programs whose jumps can leave the program")
		quiet  = flag.Bool("q", false, "print only the program digest")
	)
	flag.Parse()
	log := logger.New(logger.Options{})

	src, err := readSource(*in)
	if err != nil {
		log.WithError(err).Fatal("read program")
	}
	out, err := assemble(src, *strict, *quiet)
	if err != nil {
		log.WithError(err).WithField("in", *in).Error("assemble failed")
		os.Exit(1)
	}
	fmt.Print(out)
}

func readSource(path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}

// assemble renders the program as "addr: instruction" lines followed by its
// digest, or just the digest when quiet is set.
func assemble(src string, strict, quiet bool) (string, error) {
	prog, err := formica.Assemble(src)
	if err != nil {
		return "", err
	}
	if strict {
		if err := prog.Validate(); err != nil {
			return "", err
		}
	}
	if quiet {
		return prog.Digest() + "\n", nil
	}
	var b strings.Builder
	for pc, ins := range prog {
		fmt.Fprintf(&b, "%4d  %s\n", pc, ins)
	}
	fmt.Fprintf(&b, "; %d instructions, digest %s\n", prog.Len(), prog.Digest())
	return b.String(), nil
}
