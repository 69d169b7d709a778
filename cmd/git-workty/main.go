package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	if err := run(os.Args); err != nil {
		printError(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func run(args []string) error {
	cmd := newRootCommand(args)
	return cmd.Execute()
}

func printError(w io.Writer, err error) {
	if msg, ok := silentMessage(err); ok {
		if msg != "" {
			fmt.Fprintln(w, msg)
		}
		return
	}
	fmt.Fprintln(w, "error:", err)
	if hint := hintFor(err); hint != "" {
		fmt.Fprintln(w, "hint:", hint)
	}
}
