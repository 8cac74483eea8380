package fat12

import "github.com/tunbehau/hdifat12/errs"

// File bundles a Dirent with the volume it lives on, and implements the
// byte-range read/write/truncate/unlink primitives of spec.md §4.4.
type File struct {
	Volume *Volume
	Dirent *Dirent
}

// Read copies up to size bytes starting at offset into a new buffer,
// clamped to the file's on-disk size, following the cluster chain
// (spec.md §4.4's Read). A premature end-of-chain is surfaced as a short
// read rather than an error.
func (f *File) Read(offset int, size int) []byte {
	fileSize := int(f.Dirent.Raw.Size)
	if size == 0 || offset >= fileSize {
		return []byte{}
	}
	if offset+size > fileSize {
		size = fileSize - offset
	}

	fat := f.Volume.FAT(0)
	cluster, _, intraOffset := fat.Seek(f.Dirent.FirstCluster(), offset, f.Volume.ClusterSize)

	out := make([]byte, 0, size)
	remaining := size

	for remaining > 0 {
		if cluster == 0 || IsEndOfChain(cluster) {
			break
		}

		region, err := f.Volume.clusterRegion(cluster)
		if err != nil {
			break
		}
		buf := region.Bytes()

		chunk := f.Volume.ClusterSize - intraOffset
		if chunk > remaining {
			chunk = remaining
		}

		out = append(out, buf[intraOffset:intraOffset+chunk]...)
		remaining -= chunk
		intraOffset = 0

		if remaining > 0 {
			cluster = fat.Get(cluster)
		}
	}

	return out
}

// Write implements spec.md §4.4's Write sequence: seek to offset (must
// land exactly on it, i.e. the file isn't shorter than offset), allocate
// the first cluster on demand, then loop writing and extending the
// chain as needed. Returns the number of bytes actually written, or
// ENOSPC when no byte could be written.
func (f *File) Write(offset int, data []byte) (int, error) {
	fat := f.Volume.FAT(0)

	if f.Dirent.FirstCluster() == 0 {
		if offset != 0 {
			return 0, errs.New(errs.ESPIPE)
		}
		newCluster, err := fat.Allocate()
		if err != nil {
			return 0, errs.New(errs.ENOSPC)
		}
		fat.Set(newCluster, EndOfChain)
		f.Dirent.Raw.FirstClusterLow = newCluster
		f.Dirent.WriteBack()
	}

	if offset > int(f.Dirent.Raw.Size) {
		return 0, errs.New(errs.ESPIPE)
	}

	cluster, bytesSkipped, intraOffset := fat.Seek(f.Dirent.FirstCluster(), offset, f.Volume.ClusterSize)
	if bytesSkipped < offset-intraOffset {
		// Seek lands one cluster short of offset exactly when offset sits
		// on the boundary of the chain's full last cluster (offset <=
		// size is already established above, so this is a no-hole
		// append, not a hole): grow a fresh cluster to write into rather
		// than clobber the full one's existing bytes.
		grown, err := fat.GrowChain(cluster)
		if err != nil {
			return 0, errs.New(errs.ENOSPC)
		}
		cluster = grown
	}

	written := 0
	remaining := len(data)

	for remaining > 0 {
		region, err := f.Volume.clusterRegion(cluster)
		if err != nil {
			break
		}
		buf := region.Bytes()

		chunk := f.Volume.ClusterSize - intraOffset
		if chunk > remaining {
			chunk = remaining
		}

		copy(buf[intraOffset:intraOffset+chunk], data[written:written+chunk])
		written += chunk
		remaining -= chunk
		intraOffset = 0

		if remaining == 0 {
			break
		}

		next := fat.Get(cluster)
		if IsEndOfChain(next) {
			grown, growErr := fat.GrowChain(cluster)
			if growErr != nil {
				break
			}
			cluster = grown
		} else {
			cluster = next
		}
	}

	if written == 0 && len(data) > 0 {
		return 0, errs.New(errs.ENOSPC)
	}

	newSize := offset + written
	if newSize > int(f.Dirent.Raw.Size) {
		f.Dirent.Raw.Size = uint32(newSize)
		f.Dirent.WriteBack()
	}

	return written, nil
}

// Truncate frees the file's entire chain and resets it to empty (spec.md
// §4.4's Truncate).
func (f *File) Truncate() {
	if f.Dirent.FirstCluster() != 0 {
		f.Volume.FAT(0).FreeChain(f.Dirent.FirstCluster())
	}
	f.Dirent.Raw.FirstClusterLow = 0
	f.Dirent.Raw.Size = 0
	f.Dirent.WriteBack()
}

// Unlink frees the chain and zeroes the directory slot outright (spec.md
// §4.4's Unlink). The inode/session layer uses the deferred zombie
// sequence (spec.md §4.5's Forget) instead of calling this directly
// while handles may still be open.
func (f *File) Unlink() {
	if f.Dirent.FirstCluster() != 0 {
		f.Volume.FAT(0).FreeChain(f.Dirent.FirstCluster())
	}
	f.Dirent.Zero()
}
