package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dgallion1/booktojson/internal/parser"
)

var version = "dev"

// ErrBadArgumentCount is returned when the command line does not name exactly one book.
var ErrBadArgumentCount = errors.New("expected exactly one input file")

var errUsage = errors.New("invalid usage")

const usageLine = "use: booktojson book.pdf|book.epub"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout)
	root.AddCommand(newServeCmd(), newVersionCmd())
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return exitCode(root.Execute(), stdout, stderr)
}

func exitCode(err error, stdout, stderr io.Writer) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrBadArgumentCount):
		fmt.Fprintln(stdout, usageLine)
		return 2
	case errors.Is(err, errUsage):
		fmt.Fprintln(stderr, err)
		fmt.Fprintln(stdout, usageLine)
		return 2
	case errors.Is(err, parser.ErrUnsupportedFormat):
		fmt.Fprintln(stdout, "only .pdf and .epub are supported.")
		return 1
	default:
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
}
