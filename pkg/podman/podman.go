// Package podman wraps the podman command line: image listing and
// removal, container runs, and registry pushes.
package podman

import (
	"fmt"
	"strings"

	"github.com/cabforge/cab/pkg/util/shell"
)

// Error is a podman invocation that exited non-zero. The captured
// stderr is the error detail surfaced to the user.
type Error struct {
	Args   []string
	Code   int
	Stderr string
}

func (e *Error) Error() string {
	return fmt.Sprintf("podman %s: exit status %d: %s",
		strings.Join(e.Args, " "), e.Code, e.Stderr)
}

// Exec runs the podman binary. Tests substitute canned output.
type Exec interface {
	// Output runs podman with captured output, returning stdout
	// lines. A non-zero exit becomes an *Error carrying stderr.
	Output(args ...string) ([]string, error)
	// Stream runs podman with stdout/stderr passed through.
	Stream(args ...string) error
	// Interactive runs podman with stdin attached as well.
	Interactive(args ...string) error
}

type execRunner struct{}

func (execRunner) Output(args ...string) ([]string, error) {
	res, err := shell.Run("podman", args...)
	if err != nil {
		return nil, err
	}
	if res.Code != 0 {
		return nil, &Error{Args: args, Code: res.Code, Stderr: strings.Join(res.Stderr, "\n")}
	}
	return res.Stdout, nil
}

func (execRunner) Stream(args ...string) error {
	res, err := shell.Stream("podman", args...)
	if err != nil {
		return err
	}
	if res.Code != 0 {
		return &Error{Args: args, Code: res.Code}
	}
	return nil
}

func (execRunner) Interactive(args ...string) error {
	res, err := shell.Interactive("podman", args...)
	if err != nil {
		return err
	}
	if res.Code != 0 {
		return &Error{Args: args, Code: res.Code}
	}
	return nil
}

// Podman drives one local podman installation.
type Podman struct {
	exec Exec
}

func New() *Podman {
	return &Podman{exec: execRunner{}}
}

// NewWithExec builds a Podman over a caller-supplied runner.
func NewWithExec(e Exec) *Podman {
	return &Podman{exec: e}
}

// Volume is one host:container bind mount for Run.
type Volume struct {
	Host      string
	Container string
}

// Run runs a command in a throwaway container, streaming its output.
func (p *Podman) Run(img string, volumes []Volume, cmd ...string) error {
	args := []string{"run", "--rm"}
	for _, v := range volumes {
		args = append(args, "-v", v.Host+":"+v.Container)
	}
	args = append(args, img)
	args = append(args, cmd...)
	return p.exec.Stream(args...)
}

// Shell drops the user into an interactive shell in img.
func (p *Podman) Shell(img string) error {
	return p.exec.Interactive("run", "--rm", "-it", img, "/bin/bash")
}

// RemoveImage removes a single image reference.
func (p *Podman) RemoveImage(name string) error {
	_, err := p.exec.Output("rmi", name)
	return err
}

// Push pushes src to dest. tlsVerify disabled is for plain-HTTP or
// self-signed registries.
func (p *Podman) Push(src, dest string, tlsVerify bool) error {
	args := []string{"push"}
	if !tlsVerify {
		args = append(args, "--tls-verify=false")
	}
	args = append(args, src, dest)
	return p.exec.Stream(args...)
}
