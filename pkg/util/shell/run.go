// Package shell runs external commands, capturing or streaming their
// output. Every call blocks until the subprocess exits.
package shell

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/cabforge/cab/pkg/util/console"
)

// Result holds the outcome of one finished command.
type Result struct {
	Code   int
	Stdout []string
	Stderr []string
}

// Run executes the command and captures stdout and stderr. A non-zero
// exit is reported through Result.Code, not through the error; the
// error is reserved for failures to run the command at all.
func Run(name string, args ...string) (*Result, error) {
	cmd := exec.Command(name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	console.Debug("$ " + strings.Join(cmd.Args, " "))
	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return nil, fmt.Errorf("failed to run %s: %w", name, err)
		}
	}
	return &Result{
		Code:   cmd.ProcessState.ExitCode(),
		Stdout: lines(stdout.String()),
		Stderr: lines(stderr.String()),
	}, nil
}

// Stream executes the command with stdout and stderr passed through to
// the user.
func Stream(name string, args ...string) (*Result, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	console.Debug("$ " + strings.Join(cmd.Args, " "))
	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return nil, fmt.Errorf("failed to run %s: %w", name, err)
		}
	}
	return &Result{Code: cmd.ProcessState.ExitCode()}, nil
}

// Interactive executes the command with all three standard streams
// attached to the user's terminal.
func Interactive(name string, args ...string) (*Result, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	console.Debug("$ " + strings.Join(cmd.Args, " "))
	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return nil, fmt.Errorf("failed to run %s: %w", name, err)
		}
	}
	return &Result{Code: cmd.ProcessState.ExitCode()}, nil
}

func lines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
