package podman

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cabforge/cab/pkg/image"
)

// listRecord is one entry of `podman images --format json`.
type listRecord struct {
	ID        string   `json:"Id"`
	Names     []string `json:"Names"`
	Size      uint64   `json:"Size"`
	CreatedAt string   `json:"CreatedAt"`
}

// The tool reports sub-second precision inconsistently across
// versions; keep whole seconds only.
var createdRegex = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})[T ](\d{2}:\d{2}:\d{2})`)

func parseCreated(s string) (time.Time, error) {
	m := createdRegex.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
	}
	return time.Parse("2006-01-02T15:04:05", m[1]+"T"+m[2])
}

// Images lists local images, optionally narrowed by a name filter.
// Records sharing a hash merge into one Image carrying every reference
// that parses; references foreign to cab's naming are dropped.
func (p *Podman) Images(filter string) ([]*image.Image, error) {
	args := []string{"images", "--format", "json"}
	if filter != "" {
		args = append(args, filter)
	}
	out, err := p.exec.Output(args...)
	if err != nil {
		return nil, err
	}

	var records []listRecord
	if err := json.Unmarshal([]byte(strings.Join(out, "\n")), &records); err != nil {
		return nil, fmt.Errorf("failed to parse image listing: %w", err)
	}

	byID := make(map[string]*image.Image)
	var images []*image.Image
	for _, rec := range records {
		img, ok := byID[rec.ID]
		if !ok {
			created, err := parseCreated(rec.CreatedAt)
			if err != nil {
				return nil, err
			}
			img = &image.Image{ID: rec.ID, Size: rec.Size, Created: created}
			byID[rec.ID] = img
			images = append(images, img)
		}
		for _, s := range rec.Names {
			n := image.ParseName(s)
			if n == nil {
				continue
			}
			dup := false
			for _, have := range img.Names {
				if have.String() == n.String() {
					dup = true
					break
				}
			}
			if !dup {
				img.Names = append(img.Names, n)
			}
		}
	}
	return images, nil
}
