package buildah

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	outputs map[string][]string
	errs    map[string]error
	calls   []string
}

func (f *fakeExec) key(args []string) string {
	return strings.Join(args, " ")
}

func (f *fakeExec) Output(args ...string) ([]string, error) {
	k := f.key(args)
	f.calls = append(f.calls, k)
	if err, ok := f.errs[k]; ok {
		return nil, err
	}
	return f.outputs[k], nil
}

func (f *fakeExec) Stream(args ...string) error {
	_, err := f.Output(args...)
	return err
}

func newTestSession(t *testing.T, mountDir string) (*Session, *fakeExec) {
	t.Helper()
	exec := &fakeExec{errs: map[string]error{}, outputs: map[string][]string{
		"from abc123":                      {"abc123-working-container"},
		"mount abc123-working-container":   {mountDir},
		"unmount abc123-working-container": {},
		"commit abc123-working-container cab-builds/demo:20210101T120000Z-raw": {
			"Getting image source signatures",
			"rawhash111",
		},
	}}
	s, err := NewWithExec(exec, "abc123")
	require.NoError(t, err)
	return s, exec
}

func TestSessionCreate(t *testing.T) {
	s, _ := newTestSession(t, t.TempDir())
	require.Equal(t, "abc123-working-container", s.Container())
	require.Equal(t, "abc123", s.From())
	require.False(t, s.IsCommitted())
}

func TestSessionCreateFailure(t *testing.T) {
	exec := &fakeExec{errs: map[string]error{
		"from missing": &Error{Args: []string{"from", "missing"}, Code: 125, Stderr: "image not known"},
	}}
	_, err := NewWithExec(exec, "missing")
	require.Error(t, err)
	require.Contains(t, err.Error(), "image not known")
}

func TestSessionLifecycle(t *testing.T) {
	dir := t.TempDir()
	s, _ := newTestSession(t, dir)

	mnt, err := s.Mount()
	require.NoError(t, err)
	require.Equal(t, dir, mnt)
	require.Equal(t, dir, s.MountPath())

	// commit is rejected while mounted
	_, err = s.Commit("cab-builds/demo", "20210101T120000Z-raw")
	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)

	require.NoError(t, s.Unmount())
	require.Empty(t, s.MountPath())

	hash, err := s.Commit("cab-builds/demo", "20210101T120000Z-raw")
	require.NoError(t, err)
	require.Equal(t, "rawhash111", hash)
	require.True(t, s.IsCommitted())
	require.Equal(t, "rawhash111", s.HashID())
}

func TestSessionRejectsMountAfterCommit(t *testing.T) {
	s, _ := newTestSession(t, t.TempDir())
	_, err := s.Commit("cab-builds/demo", "20210101T120000Z-raw")
	require.NoError(t, err)

	var stateErr *StateError
	_, err = s.Mount()
	require.ErrorAs(t, err, &stateErr)
	require.ErrorAs(t, s.Unmount(), &stateErr)
	require.ErrorAs(t, s.Config("--workingdir", "/"), &stateErr)
	_, err = s.Run("/bin/true")
	require.ErrorAs(t, err, &stateErr)

	// a second commit is a violation too
	_, err = s.Commit("cab-builds/demo", "again")
	require.ErrorAs(t, err, &stateErr)
}

func TestSessionRejectsTagBeforeCommit(t *testing.T) {
	s, _ := newTestSession(t, t.TempDir())
	var stateErr *StateError
	require.ErrorAs(t, s.Tag("latest-raw"), &stateErr)
}

func TestSessionTagAfterCommit(t *testing.T) {
	s, exec := newTestSession(t, t.TempDir())
	exec.outputs["tag rawhash111 cab-builds/demo:latest-raw"] = nil

	_, err := s.Commit("cab-builds/demo", "20210101T120000Z-raw")
	require.NoError(t, err)
	require.NoError(t, s.Tag("latest-raw"))
	require.Contains(t, exec.calls, "tag rawhash111 cab-builds/demo:latest-raw")
}

func TestSessionUnmountIdempotent(t *testing.T) {
	s, exec := newTestSession(t, t.TempDir())
	require.NoError(t, s.Unmount())
	for _, call := range exec.calls {
		require.NotContains(t, call, "unmount")
	}
}

func TestSessionRunCapturesFailure(t *testing.T) {
	s, exec := newTestSession(t, t.TempDir())
	exec.errs["run abc123-working-container -- /bin/false"] =
		&Error{Args: []string{"run"}, Code: 1, Stderr: "boom"}

	_, err := s.Run("/bin/false")
	var toolErr *Error
	require.ErrorAs(t, err, &toolErr)
	require.Equal(t, 1, toolErr.Code)
	require.Equal(t, "boom", toolErr.Stderr)
}
