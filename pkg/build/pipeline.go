// Package build turns a compiled install tree into versioned,
// incrementally-layered container images.
//
// Each invocation runs a two-stage pipeline. The raw stage transfers
// the install tree onto the previous raw image when one exists (so
// only new or changed files make a layer), or onto the vendor/release
// base image on a first build, and commits <build>:<ts>-raw. The
// final stage runs the post-install hook on a fresh session over the
// raw image and commits <build>:<ts>. The floating latest-raw and
// latest tags are repointed after each commit.
//
// There is no rollback: a failed run may leave a raw image committed
// but not promoted, and the next run picks it up as its raw base
// instead of redoing the transfer. Nothing guards the floating tags
// against two concurrent runs for the same build name; callers are
// expected to run one pipeline per build name at a time.
package build

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cabforge/cab/pkg/buildah"
	"github.com/cabforge/cab/pkg/config"
	"github.com/cabforge/cab/pkg/image"
	"github.com/cabforge/cab/pkg/registry"
	"github.com/cabforge/cab/pkg/util/console"
	"github.com/cabforge/cab/pkg/util/files"
)

// ErrNoImage means neither a previous raw image nor a vendor/release
// base image exists; there is nothing to build from.
var ErrNoImage = errors.New("no available image")

// Raw and final images of one run share a timestamp tag.
const timestampFormat = "20060102T150405Z"

const postInstallScript = "post-install.sh"

// session is the slice of *buildah.Session the pipeline drives.
type session interface {
	Mount() (string, error)
	Unmount() error
	Run(cmd ...string) ([]string, error)
	Commit(name, tag string) (string, error)
	Tag(tag string) error
}

// finder is the slice of *registry.Registry the pipeline queries.
type finder interface {
	FindBaseImage(vendor, release string) (*image.Image, error)
	FindBuildImage(buildname, tag string) (*image.Image, error)
}

// Pipeline builds one build's raw and final images.
type Pipeline struct {
	reg        finder
	build      *config.Build
	installDir string

	newSession func(from string) (session, error)
	transfer   func(src, dst string) error
	now        func() time.Time
}

// NewPipeline returns a pipeline for one build whose compiled
// artifacts live in installDir.
func NewPipeline(reg *registry.Registry, b *config.Build, installDir string) *Pipeline {
	return &Pipeline{
		reg:        reg,
		build:      b,
		installDir: installDir,
		newSession: func(from string) (session, error) {
			return buildah.New(from)
		},
		transfer: rsyncTransfer,
		now:      time.Now,
	}
}

// Run builds the raw image and then the final image, repointing the
// floating tags. Any failure aborts the run; whatever was committed
// stays committed.
func (p *Pipeline) Run() error {
	ts := p.now().UTC().Format(timestampFormat)

	rawHash, err := p.rawStage(ts)
	if err != nil {
		return err
	}
	finalHash, err := p.finalStage(ts, rawHash)
	if err != nil {
		return err
	}
	console.Infof("built image %s:%s (%.12s)", registry.BuildImageName(p.build.Name), ts, finalHash)
	return nil
}

// rawSource picks the image the raw stage starts from: the previous
// raw image when one exists, else the vendor/release base image.
func (p *Pipeline) rawSource() (string, error) {
	raw, err := p.reg.FindBuildImage(p.build.Name, "latest-raw")
	if err != nil {
		return "", err
	}
	if raw != nil {
		console.Infof("incremental build from %s (%s)", registry.BuildImageName(p.build.Name)+":latest-raw", raw.ShortID())
		return raw.ID, nil
	}
	base, err := p.reg.FindBaseImage(p.build.Vendor, p.build.Release)
	if err != nil {
		return "", err
	}
	if base == nil {
		return "", fmt.Errorf("%w for build %s (vendor %s, release %s)",
			ErrNoImage, p.build.Name, p.build.Vendor, p.build.Release)
	}
	console.Infof("first build from base image %s", base.ShortID())
	return base.ID, nil
}

func (p *Pipeline) rawStage(ts string) (string, error) {
	source, err := p.rawSource()
	if err != nil {
		return "", err
	}

	console.Infof("building raw image for build %s", p.build.Name)
	s, err := p.newSession(source)
	if err != nil {
		return "", err
	}
	mnt, err := s.Mount()
	if err != nil {
		return "", err
	}
	if err := p.transfer(p.installDir, mnt); err != nil {
		return "", err
	}
	if err := s.Unmount(); err != nil {
		return "", err
	}
	hash, err := s.Commit(registry.BuildImageName(p.build.Name), ts+"-raw")
	if err != nil {
		return "", err
	}
	if err := s.Tag("latest-raw"); err != nil {
		return "", err
	}
	console.Infof("raw image committed (%.12s)", hash)
	return hash, nil
}

func (p *Pipeline) finalStage(ts, rawHash string) (string, error) {
	console.Infof("finalizing image for build %s", p.build.Name)
	s, err := p.newSession(rawHash)
	if err != nil {
		return "", err
	}
	mnt, err := s.Mount()
	if err != nil {
		return "", err
	}
	if err := p.runPostInstall(s, mnt); err != nil {
		return "", err
	}
	if err := s.Unmount(); err != nil {
		return "", err
	}
	hash, err := s.Commit(registry.BuildImageName(p.build.Name), ts)
	if err != nil {
		return "", err
	}
	if err := s.Tag("latest"); err != nil {
		return "", err
	}
	return hash, nil
}

// runPostInstall executes the build's post-install script when one was
// shipped to the image root, then removes it from the mounted
// filesystem so it never reaches the final image. Absence is not an
// error.
func (p *Pipeline) runPostInstall(s session, mnt string) error {
	scriptPath := filepath.Join(mnt, postInstallScript)
	exists, err := files.Exists(scriptPath)
	if err != nil {
		return err
	}
	if !exists {
		console.Debugf("no %s, skipping", postInstallScript)
		return nil
	}
	console.Infof("running %s", postInstallScript)
	out, err := s.Run("/bin/bash", "/"+postInstallScript)
	for _, line := range out {
		console.Debug(line)
	}
	if err != nil {
		return fmt.Errorf("post-install failed: %w", err)
	}
	if err := os.Remove(scriptPath); err != nil {
		return fmt.Errorf("failed to remove %s: %w", postInstallScript, err)
	}
	return nil
}
