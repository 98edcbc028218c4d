package utils

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

func ExitErr(err error) {
	fmt.Printf("exit on error: %v\n", err)
	os.Exit(1)
}

// ExitCode extracts the exit code of a finished child process.
// Errors that are not from a child process map to 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}
