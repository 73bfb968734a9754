package build

import (
	"errors"
	"fmt"
	"os"

	"github.com/cabforge/cab/pkg/config"
	"github.com/cabforge/cab/pkg/podman"
	"github.com/cabforge/cab/pkg/registry"
	"github.com/cabforge/cab/pkg/util/console"
)

// ErrNoBuilderImage means no builder image exists for the build's
// vendor/release; the user has to build one before compiling.
var ErrNoBuilderImage = errors.New("no builder image")

// Options toggles the orchestrator's phases, for debugging and
// partial runs.
type Options struct {
	SkipCompile bool
	SkipImage   bool
	NoPush      bool
}

// Builder runs one build end to end: compile inside the builder
// container, then the image pipeline, then an optional registry push.
type Builder struct {
	cfg   *config.Config
	build *config.Build
	pod   *podman.Podman
	reg   *registry.Registry
}

func New(cfg *config.Config, b *config.Build) *Builder {
	pod := podman.New()
	return &Builder{
		cfg:   cfg,
		build: b,
		pod:   pod,
		reg:   registry.New(pod),
	}
}

func (b *Builder) Run(opts Options) error {
	if !opts.SkipCompile {
		if err := b.compile(); err != nil {
			return err
		}
	}
	if !opts.SkipImage {
		pipeline := NewPipeline(b.reg, b.build, b.cfg.InstallDirFor(b.build.Name))
		if err := pipeline.Run(); err != nil {
			return err
		}
	}
	if !opts.NoPush && b.cfg.HasRegistry() {
		return b.push()
	}
	return nil
}

// compile runs the vendor/release builder image with the sources,
// ccache and install tree bind mounted; the image's entrypoint owns
// the actual compilation.
func (b *Builder) compile() error {
	builder, err := b.reg.FindBuilderImage(b.build.Vendor, b.build.Release)
	if err != nil {
		return err
	}
	if builder == nil {
		return fmt.Errorf("%w for vendor %s release %s",
			ErrNoBuilderImage, b.build.Vendor, b.build.Release)
	}

	installDir := b.cfg.InstallDirFor(b.build.Name)
	if err := os.MkdirAll(installDir, 0o755); err != nil {
		return err
	}
	ensureCcache(b.cfg)

	volumes := []podman.Volume{
		{Host: b.build.Sources, Container: "/build/src"},
		{Host: installDir, Container: "/build/out"},
	}
	if b.cfg.CcacheDir != "" {
		volumes = append(volumes, podman.Volume{Host: b.cfg.CcacheDir, Container: "/build/ccache"})
	}
	var args []string
	if b.build.WithDebug {
		args = append(args, "--with-debug")
	}
	if b.build.WithTests {
		args = append(args, "--with-tests")
	}

	console.Infof("compiling build %s in builder image %s", b.build.Name, builder.ShortID())
	if err := b.pod.Run(builder.ID, volumes, args...); err != nil {
		return fmt.Errorf("compile failed: %w", err)
	}
	return nil
}

// push pushes the build's latest image to the configured registry.
func (b *Builder) push() error {
	img, err := b.reg.FindLatestBuildImage(b.build.Name)
	if err != nil {
		return err
	}
	if img == nil {
		return fmt.Errorf("no latest image for build %s", b.build.Name)
	}
	name := img.NameForTag("latest")
	dest := fmt.Sprintf("%s/%s:latest", b.cfg.Registry.URL, registry.BuildImageName(b.build.Name))

	console.Infof("pushing %s to %s", name, dest)
	return b.pod.Push(name.String(), dest, !b.cfg.Registry.Insecure)
}
