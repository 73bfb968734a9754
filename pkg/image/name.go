// Package image models container image references and resolved images
// as reported by the image tool.
package image

import (
	"fmt"
	"regexp"
)

// Repositories used by cab. Base and builder images are keyed by
// vendor/release; per-build images live under BuildRepo with the build
// name and a timestamp tag.
const (
	BaseRepo    = "cab/base"
	BuilderRepo = "cab/builder"
	BuildRepo   = "cab-builds"
)

var nameRegex = regexp.MustCompile(`^([-._\w]+)/(.*)/([-_\w]+):([-._\w]+)$`)

// Name is one fully-qualified image reference,
// remote/repository/name:tag.
type Name struct {
	Remote     string
	Repository string
	Name       string
	Tag        string
}

// ParseName parses a fully-qualified image reference. It returns nil
// when the string does not match the four-segment shape: the registry
// namespace legitimately contains unrelated images, and callers skip
// those rather than fail.
func ParseName(s string) *Name {
	m := nameRegex.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	return &Name{
		Remote:     m[1],
		Repository: m[2],
		Name:       m[3],
		Tag:        m[4],
	}
}

// String formats the reference in the canonical form accepted by the
// image tool. It is the inverse of ParseName.
func (n *Name) String() string {
	return fmt.Sprintf("%s/%s/%s:%s", n.Remote, n.Repository, n.Name, n.Tag)
}
