package main

import (
	"errors"
	"os/exec"
	"strings"
)

// openWorktree launches the configured open_cmd on path without waiting
// for it. Extra words in open_cmd are passed before the path.
func openWorktree(openCmd string, path string) error {
	fields := strings.Fields(openCmd)
	if len(fields) == 0 {
		return errors.New("open_cmd is not configured; set it with `git workty config init` and edit the file")
	}
	cmd := exec.Command(fields[0], append(fields[1:], path)...)
	detachProcess(cmd)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Start()
}
