package buildah

import (
	"fmt"
	"strings"

	"github.com/cabforge/cab/pkg/util/shell"
)

// Error is a buildah invocation that exited non-zero, carrying the
// captured stderr as detail.
type Error struct {
	Args   []string
	Code   int
	Stderr string
}

func (e *Error) Error() string {
	return fmt.Sprintf("buildah %s: exit status %d: %s",
		strings.Join(e.Args, " "), e.Code, e.Stderr)
}

// Exec runs the buildah binary. Tests substitute canned output.
type Exec interface {
	// Output runs buildah with captured output, returning stdout
	// lines. A non-zero exit becomes an *Error carrying stderr.
	Output(args ...string) ([]string, error)
	// Stream runs buildah with stdout/stderr passed through.
	Stream(args ...string) error
}

type execRunner struct{}

// Commands run under `buildah unshare` so that rootless mounts work.
func unshared(args []string) []string {
	return append([]string{"unshare", "buildah"}, args...)
}

func (execRunner) Output(args ...string) ([]string, error) {
	res, err := shell.Run("buildah", unshared(args)...)
	if err != nil {
		return nil, err
	}
	if res.Code != 0 {
		return nil, &Error{Args: args, Code: res.Code, Stderr: strings.Join(res.Stderr, "\n")}
	}
	return res.Stdout, nil
}

func (execRunner) Stream(args ...string) error {
	res, err := shell.Stream("buildah", unshared(args)...)
	if err != nil {
		return err
	}
	if res.Code != 0 {
		return &Error{Args: args, Code: res.Code}
	}
	return nil
}
