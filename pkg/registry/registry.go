// Package registry answers "which images exist" questions over the
// image tool's listing, using cab's naming scheme.
//
// Builder images live at cab/builder/<vendor>:<release>, base images at
// cab/base/<vendor>:<release>, and per-build images at
// cab-builds/<name>:<timestamp>[-raw] with the floating latest and
// latest-raw tags. Absence of an image is a normal branch, not an
// error: first-time builds legitimately have no prior image, so every
// finder returns nil when nothing matches.
package registry

import (
	"fmt"

	"github.com/cabforge/cab/pkg/image"
	"github.com/cabforge/cab/pkg/util/console"
)

// Lister is the slice of the image tool the registry needs.
// *podman.Podman satisfies it.
type Lister interface {
	Images(filter string) ([]*image.Image, error)
	RemoveImage(name string) error
}

type Registry struct {
	tool Lister
}

func New(tool Lister) *Registry {
	return &Registry{tool: tool}
}

// BuildImageName is the repository-qualified name of a build's images,
// without remote or tag.
func BuildImageName(buildname string) string {
	return fmt.Sprintf("%s/%s", image.BuildRepo, buildname)
}

// FindBaseImage finds the OS base image for a vendor/release pair, or
// nil when none exists.
func (r *Registry) FindBaseImage(vendor, release string) (*image.Image, error) {
	return r.findVendorImage(image.BaseRepo, vendor, release)
}

// FindBuilderImage finds the build-dependency image for a
// vendor/release pair, or nil when none exists.
func (r *Registry) FindBuilderImage(vendor, release string) (*image.Image, error) {
	return r.findVendorImage(image.BuilderRepo, vendor, release)
}

func (r *Registry) findVendorImage(repo, vendor, release string) (*image.Image, error) {
	images, err := r.tool.Images(fmt.Sprintf("%s/%s:%s", repo, vendor, release))
	if err != nil {
		return nil, err
	}
	for _, img := range images {
		for _, n := range img.Names {
			// base and per-build names can collide on
			// vendor/release strings, so the repository
			// disambiguates.
			if n.Name == vendor && n.Tag == release && n.Repository == repo {
				return img, nil
			}
		}
	}
	return nil, nil
}

// FindBuildImages returns every image belonging to a build, one entry
// per hash.
func (r *Registry) FindBuildImages(buildname string) ([]*image.Image, error) {
	images, err := r.tool.Images(BuildImageName(buildname))
	if err != nil {
		return nil, err
	}
	var matches []*image.Image
	for _, img := range images {
		for _, n := range img.Names {
			if n.Name == buildname {
				matches = append(matches, img)
				break
			}
		}
	}
	return matches, nil
}

// FindBuildImage finds the build's image carrying tag, or nil.
func (r *Registry) FindBuildImage(buildname, tag string) (*image.Image, error) {
	images, err := r.FindBuildImages(buildname)
	if err != nil {
		return nil, err
	}
	for _, img := range images {
		if img.HasTag(tag) {
			return img, nil
		}
	}
	return nil, nil
}

// FindLatestBuildImage finds the build's image tagged latest, or nil.
func (r *Registry) FindLatestBuildImage(buildname string) (*image.Image, error) {
	return r.FindBuildImage(buildname, "latest")
}

// RemoveImage removes every reference of img. It is best-effort: a
// failed reference does not stop the remaining ones from being
// attempted, and the overall error reports how many failed.
func (r *Registry) RemoveImage(img *image.Image) error {
	console.Infof("removing image %s", img.ShortID())
	failed := 0
	for _, n := range img.Names {
		console.Infof("  - %s", n)
		if err := r.tool.RemoveImage(n.String()); err != nil {
			console.Errorf("failed to remove %s: %s", n, err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to remove %d of %d references of image %s",
			failed, len(img.Names), img.ShortID())
	}
	return nil
}
