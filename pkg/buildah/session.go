// Package buildah wraps one buildah working container as a session
// with an explicit state machine.
//
// The tool requires mount before filesystem access and forbids
// configuration changes after commit; the session encodes those rules
// so an illegal call sequence fails in-process instead of being
// rejected by the tool. A session commits at most once. Building a
// further image requires a fresh session from the committed image.
// Discarding a session without committing leaves the working container
// behind.
package buildah

import (
	"fmt"
	"os"

	"github.com/cabforge/cab/pkg/util/console"
)

type state int

const (
	stateCreated state = iota
	stateMounted
	stateUnmounted
	stateCommitted
)

var stateNames = [...]string{
	stateCreated:   "created",
	stateMounted:   "mounted",
	stateUnmounted: "unmounted",
	stateCommitted: "committed",
}

func (s state) String() string {
	return stateNames[s]
}

// StateError is an operation attempted in a state the tool would
// reject. It indicates a caller bug, not a tool failure.
type StateError struct {
	Op    string
	State string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("buildah: %s not allowed in state %s", e.Op, e.State)
}

// Volume is one host:container bind mount for RunStreamed.
type Volume struct {
	Host      string
	Container string
}

// Session is a single-owner handle over one working container. It is
// not safe for concurrent use and must not be reused after Commit.
type Session struct {
	exec      Exec
	from      string
	container string
	mountPath string
	state     state
	hashID    string
	name      string
}

// New creates a working container from an image reference or hash.
func New(from string) (*Session, error) {
	return NewWithExec(execRunner{}, from)
}

// NewWithExec is New over a caller-supplied runner.
func NewWithExec(e Exec, from string) (*Session, error) {
	if from == "" {
		return nil, fmt.Errorf("buildah: empty source image")
	}
	console.Debugf("buildah: creating working container from %s", from)
	out, err := e.Output("from", from)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 || out[0] == "" {
		return nil, fmt.Errorf("buildah: from %s returned no container name", from)
	}
	return &Session{exec: e, from: from, container: out[0], state: stateCreated}, nil
}

// From returns the image the working container was created from.
func (s *Session) From() string {
	return s.from
}

// Container returns the tool's name for the working container.
func (s *Session) Container() string {
	return s.container
}

// MountPath returns the mounted root, or "" when not mounted.
func (s *Session) MountPath() string {
	return s.mountPath
}

// IsCommitted reports whether Commit has succeeded.
func (s *Session) IsCommitted() bool {
	return s.state == stateCommitted
}

// HashID returns the committed image hash, or "" before Commit.
func (s *Session) HashID() string {
	return s.hashID
}

// Mount mounts the working container's filesystem and returns the
// host path of its root.
func (s *Session) Mount() (string, error) {
	if s.state != stateCreated && s.state != stateUnmounted {
		return "", &StateError{Op: "mount", State: s.state.String()}
	}
	console.Debugf("buildah: mounting working container %s", s.container)
	out, err := s.exec.Output("mount", s.container)
	if err != nil {
		return "", err
	}
	if len(out) == 0 || out[0] == "" {
		return "", fmt.Errorf("buildah: mount %s returned no path", s.container)
	}
	mnt := out[0]
	info, err := os.Stat(mnt)
	if err != nil {
		return "", fmt.Errorf("buildah: mount point %s: %w", mnt, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("buildah: mount point %s is not a directory", mnt)
	}
	s.mountPath = mnt
	s.state = stateMounted
	return mnt, nil
}

// Unmount unmounts the working container. It is idempotent when the
// container was never mounted.
func (s *Session) Unmount() error {
	if s.state == stateCommitted {
		return &StateError{Op: "unmount", State: s.state.String()}
	}
	if s.mountPath == "" {
		return nil
	}
	console.Debugf("buildah: unmounting working container %s", s.container)
	if _, err := s.exec.Output("unmount", s.container); err != nil {
		return err
	}
	s.mountPath = ""
	s.state = stateUnmounted
	return nil
}

// Run runs a command inside the working container with captured
// output. A non-zero exit comes back as an *Error with the captured
// stderr; the caller decides whether that is fatal.
func (s *Session) Run(cmd ...string) ([]string, error) {
	if s.state == stateCommitted {
		return nil, &StateError{Op: "run", State: s.state.String()}
	}
	args := append([]string{"run", s.container, "--"}, cmd...)
	return s.exec.Output(args...)
}

// RunStreamed runs a command inside the working container with output
// passed through to the user, optionally with bind mounts.
func (s *Session) RunStreamed(volumes []Volume, cmd ...string) error {
	if s.state == stateCommitted {
		return &StateError{Op: "run", State: s.state.String()}
	}
	args := []string{"run"}
	for _, v := range volumes {
		args = append(args, "-v", v.Host+":"+v.Container)
	}
	args = append(args, s.container, "--")
	args = append(args, cmd...)
	return s.exec.Stream(args...)
}

// Config applies image configuration to the working container. Images
// are immutable once committed, so this is rejected after Commit.
func (s *Session) Config(opts ...string) error {
	if s.state == stateCommitted {
		return &StateError{Op: "config", State: s.state.String()}
	}
	if len(opts) == 0 {
		return fmt.Errorf("buildah: empty config")
	}
	console.Debugf("buildah: config %v on %s", opts, s.container)
	args := append([]string{"config"}, opts...)
	args = append(args, s.container)
	_, err := s.exec.Output(args...)
	return err
}

// SetLabel sets one image label.
func (s *Session) SetLabel(key, value string) error {
	return s.Config("--label", fmt.Sprintf("%s=%s", key, value))
}

// SetWorkDir sets the image working directory.
func (s *Session) SetWorkDir(dir string) error {
	return s.Config("--workingdir", dir)
}

// Commit commits the working container as name[:tag] and returns the
// new image hash. The filesystem must be unmounted first, and a
// session commits at most once.
func (s *Session) Commit(name, tag string) (string, error) {
	if s.state == stateMounted || s.state == stateCommitted {
		return "", &StateError{Op: "commit", State: s.state.String()}
	}
	ref := name
	if tag != "" {
		ref = name + ":" + tag
	}
	console.Debugf("buildah: committing working container %s as %s", s.container, ref)
	out, err := s.exec.Output("commit", s.container, ref)
	if err != nil {
		return "", err
	}
	// the hash is the last stdout line; earlier lines are progress.
	if len(out) == 0 || out[len(out)-1] == "" {
		return "", fmt.Errorf("buildah: commit %s returned no hash", ref)
	}
	s.hashID = out[len(out)-1]
	s.name = name
	s.state = stateCommitted
	return s.hashID, nil
}

// Tag points name:tag at the committed image. Committing is a
// prerequisite.
func (s *Session) Tag(tag string) error {
	if s.state != stateCommitted {
		return &StateError{Op: "tag", State: s.state.String()}
	}
	console.Debugf("buildah: tagging %s with %s", s.name, tag)
	_, err := s.exec.Output("tag", s.hashID, s.name+":"+tag)
	return err
}
