package image

import (
	"fmt"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/xeonx/timeago"
)

// Image is one physical image: a content hash plus every reference
// that points at it. Tags are mutable pointers; the hash is not.
// Instances come from the image tool's listing and are never mutated
// locally, only superseded by a fresh listing.
type Image struct {
	ID      string
	Names   []*Name
	Size    uint64
	Created time.Time
}

// HasTag reports whether any of the image's references carries tag.
func (i *Image) HasTag(tag string) bool {
	return i.NameForTag(tag) != nil
}

// NameForTag returns the first reference carrying tag, or nil.
func (i *Image) NameForTag(tag string) *Name {
	for _, n := range i.Names {
		if n.Tag == tag {
			return n
		}
	}
	return nil
}

// Tags returns the tags of every reference, in listing order.
func (i *Image) Tags() []string {
	tags := make([]string, 0, len(i.Names))
	for _, n := range i.Names {
		tags = append(tags, n.Tag)
	}
	return tags
}

func (i *Image) ShortID() string {
	if len(i.ID) > 12 {
		return i.ID[:12]
	}
	return i.ID
}

func (i *Image) SizeString() string {
	return datasize.ByteSize(i.Size).HumanReadable()
}

func (i *Image) Age() string {
	return timeago.English.Format(i.Created)
}

func (i *Image) String() string {
	return fmt.Sprintf("%s (%d names)", i.ShortID(), len(i.Names))
}
