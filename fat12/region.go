package fat12

import (
	"github.com/tunbehau/hdifat12/errs"
)

// Region is a view into the image's byte buffer: an absolute byte offset
// and a length. Regions never copy; Bytes() returns a slice sharing the
// backing array so mutations through it are visible to the volume.
type Region struct {
	buffer []byte
	Offset int
	Length int
}

// NewRegion builds a Region over buffer[offset:offset+length], failing if
// it would run past the end of the buffer (spec.md §3's Region invariant:
// offset + length <= buffer.length).
func NewRegion(buffer []byte, offset, length int) (Region, error) {
	if offset < 0 || length < 0 || offset+length > len(buffer) {
		return Region{}, errs.NewWithMessage(errs.EUCLEAN, "region exceeds buffer bounds")
	}
	return Region{buffer: buffer, Offset: offset, Length: length}, nil
}

// Bytes returns the live slice of the backing buffer covered by r.
func (r Region) Bytes() []byte {
	return r.buffer[r.Offset : r.Offset+r.Length]
}

// Sub carves a sub-region out of r, relative to r's own offset.
func (r Region) Sub(relOffset, length int) (Region, error) {
	if relOffset < 0 || length < 0 || relOffset+length > r.Length {
		return Region{}, errs.NewWithMessage(errs.EUCLEAN, "sub-region exceeds parent bounds")
	}
	return Region{buffer: r.buffer, Offset: r.Offset + relOffset, Length: length}, nil
}
