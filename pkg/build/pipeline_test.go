package build

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cabforge/cab/pkg/config"
	"github.com/cabforge/cab/pkg/image"
)

type fakeFinder struct {
	base      map[string]*image.Image // vendor:release
	buildImgs map[string]*image.Image // name:tag
}

func (f *fakeFinder) FindBaseImage(vendor, release string) (*image.Image, error) {
	return f.base[vendor+":"+release], nil
}

func (f *fakeFinder) FindBuildImage(buildname, tag string) (*image.Image, error) {
	return f.buildImgs[buildname+":"+tag], nil
}

type fakeSession struct {
	from     string
	mountDir string
	hash     string

	mounted   bool
	unmounted bool
	committed bool
	commitRef string
	tags      []string
	runs      [][]string
	runErr    error
}

func (s *fakeSession) Mount() (string, error) {
	s.mounted = true
	return s.mountDir, nil
}

func (s *fakeSession) Unmount() error {
	s.unmounted = true
	return nil
}

func (s *fakeSession) Run(cmd ...string) ([]string, error) {
	s.runs = append(s.runs, cmd)
	return nil, s.runErr
}

func (s *fakeSession) Commit(name, tag string) (string, error) {
	s.committed = true
	s.commitRef = name + ":" + tag
	return s.hash, nil
}

func (s *fakeSession) Tag(tag string) error {
	s.tags = append(s.tags, tag)
	return nil
}

type pipelineFixture struct {
	pipeline   *Pipeline
	finder     *fakeFinder
	sessions   []*fakeSession
	transfers  [][2]string
	installDir string
}

func newFixture(t *testing.T, finder *fakeFinder) *pipelineFixture {
	t.Helper()
	f := &pipelineFixture{finder: finder, installDir: t.TempDir()}
	b := &config.Build{Name: "demo", Vendor: "acme", Release: "v1"}
	f.pipeline = &Pipeline{
		reg:        finder,
		build:      b,
		installDir: f.installDir,
		newSession: func(from string) (session, error) {
			s := &fakeSession{
				from:     from,
				mountDir: t.TempDir(),
				hash:     fmt.Sprintf("hash%d", len(f.sessions)),
			}
			f.sessions = append(f.sessions, s)
			return s, nil
		},
		transfer: func(src, dst string) error {
			f.transfers = append(f.transfers, [2]string{src, dst})
			return nil
		},
		now: func() time.Time {
			return time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC)
		},
	}
	return f
}

func TestPipelineFirstBuild(t *testing.T) {
	f := newFixture(t, &fakeFinder{
		base: map[string]*image.Image{
			"acme:v1": {ID: "abc123"},
		},
	})
	require.NoError(t, f.pipeline.Run())
	require.Len(t, f.sessions, 2)

	raw := f.sessions[0]
	require.Equal(t, "abc123", raw.from)
	require.True(t, raw.mounted)
	require.True(t, raw.unmounted)
	require.Equal(t, "cab-builds/demo:20210101T120000Z-raw", raw.commitRef)
	require.Equal(t, []string{"latest-raw"}, raw.tags)

	// the final stage chains off the just-committed raw image
	final := f.sessions[1]
	require.Equal(t, "hash0", final.from)
	require.Equal(t, "cab-builds/demo:20210101T120000Z", final.commitRef)
	require.Equal(t, []string{"latest"}, final.tags)

	require.Equal(t, [][2]string{{f.installDir, raw.mountDir}}, f.transfers)
}

func TestPipelineIncrementalBuild(t *testing.T) {
	f := newFixture(t, &fakeFinder{
		base: map[string]*image.Image{
			"acme:v1": {ID: "abc123"},
		},
		buildImgs: map[string]*image.Image{
			"demo:latest-raw": {ID: "oldraw999"},
		},
	})
	require.NoError(t, f.pipeline.Run())
	// the previous raw image wins over the base image
	require.Equal(t, "oldraw999", f.sessions[0].from)
}

func TestPipelineNoAvailableImage(t *testing.T) {
	f := newFixture(t, &fakeFinder{})
	err := f.pipeline.Run()
	require.ErrorIs(t, err, ErrNoImage)
	require.Empty(t, f.sessions)
}

func TestPipelinePostInstall(t *testing.T) {
	f := newFixture(t, &fakeFinder{
		base: map[string]*image.Image{"acme:v1": {ID: "abc123"}},
	})

	var script string
	base := f.pipeline.newSession
	f.pipeline.newSession = func(from string) (session, error) {
		s, err := base(from)
		if err != nil {
			return nil, err
		}
		// plant the script in the final stage's mount root
		if len(f.sessions) == 2 {
			script = filepath.Join(f.sessions[1].mountDir, postInstallScript)
			require.NoError(t, os.WriteFile(script, []byte("#!/bin/bash\n"), 0o755))
		}
		return s, nil
	}

	require.NoError(t, f.pipeline.Run())

	final := f.sessions[1]
	require.Equal(t, [][]string{{"/bin/bash", "/post-install.sh"}}, final.runs)
	// the script must not ship in the final image
	_, err := os.Stat(script)
	require.True(t, os.IsNotExist(err))

	// the raw stage never runs it
	require.Empty(t, f.sessions[0].runs)
}

func TestPipelinePostInstallFailureAborts(t *testing.T) {
	f := newFixture(t, &fakeFinder{
		base: map[string]*image.Image{"acme:v1": {ID: "abc123"}},
	})

	base := f.pipeline.newSession
	f.pipeline.newSession = func(from string) (session, error) {
		s, err := base(from)
		if err != nil {
			return nil, err
		}
		if len(f.sessions) == 2 {
			fs := f.sessions[1]
			fs.runErr = errors.New("exit status 1")
			path := filepath.Join(fs.mountDir, postInstallScript)
			require.NoError(t, os.WriteFile(path, []byte("#!/bin/bash\n"), 0o755))
		}
		return s, nil
	}

	err := f.pipeline.Run()
	require.Error(t, err)
	require.Contains(t, err.Error(), "post-install failed")

	// the raw image stays committed as the next run's recovery point;
	// the final image was never committed.
	require.True(t, f.sessions[0].committed)
	require.False(t, f.sessions[1].committed)
}

func TestPipelineTransferFailureAborts(t *testing.T) {
	f := newFixture(t, &fakeFinder{
		base: map[string]*image.Image{"acme:v1": {ID: "abc123"}},
	})
	f.pipeline.transfer = func(src, dst string) error {
		return errors.New("rsync exit status 23")
	}

	err := f.pipeline.Run()
	require.Error(t, err)
	require.Len(t, f.sessions, 1)
	require.False(t, f.sessions[0].committed)
}
