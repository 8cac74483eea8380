// Package hdiimage owns the byte-buffer-plus-commit-hook contract spec.md
// §1 calls out as external: opening, optionally unwrapping an HDI
// container header, and writing the image back via a shadow file plus an
// atomic rename (spec.md §5's crash/teardown model).
package hdiimage

import (
	"os"

	"github.com/noxer/bytewriter"
	"github.com/tunbehau/hdifat12/errs"
)

// Image is the entire on-disk file held in memory: an optional HDI
// header prefix plus the FAT12 payload every fat12.Volume mutates
// in-place.
type Image struct {
	Path      string
	Buffer    []byte
	HDIOffset int
	Header    *HDIHeader
}

// Open reads path into memory in full (spec.md §3: "the entire image is
// held as a contiguous mutable byte array"). If the first 32 bytes look
// like an HDI header, Payload() starts past it.
func Open(path string) (*Image, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.NewFromError(errs.EIO, err)
	}

	img := &Image{Path: path, Buffer: buf}

	if LooksLikeHDIHeader(buf) {
		header, err := ParseHDIHeader(buf)
		if err == nil {
			img.Header = header
			img.HDIOffset = int(header.HeaderSize)
		}
	}

	return img, nil
}

// Payload returns the FAT12 image bytes, past any HDI header.
func (img *Image) Payload() []byte {
	return img.Buffer[img.HDIOffset:]
}

// Commit persists img.Buffer via the shadow-file-plus-rename pattern
// spec.md §5 and the original CLIs' writeFile() both use: accumulate
// the HDI header prefix (if any) and the FAT12 payload into a scratch
// buffer piece by piece, write `<path>.shadow` in full, then atomically
// rename it over path. A failure writing the shadow file leaves the
// original image untouched.
func (img *Image) Commit() error {
	shadowPath := img.Path + ".shadow"

	scratch := make([]byte, len(img.Buffer))
	writer := bytewriter.New(scratch)
	if _, err := writer.Write(img.Buffer[:img.HDIOffset]); err != nil {
		return errs.NewFromError(errs.EIO, err)
	}
	if _, err := writer.Write(img.Payload()); err != nil {
		return errs.NewFromError(errs.EIO, err)
	}

	if err := os.WriteFile(shadowPath, scratch, 0o644); err != nil {
		return errs.NewFromError(errs.EIO, err)
	}

	if err := os.Rename(shadowPath, img.Path); err != nil {
		return errs.NewFromError(errs.EIO, err)
	}

	return nil
}
