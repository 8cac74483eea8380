package fat12

import "github.com/tunbehau/hdifat12/errs"

// FATChain provides read/write/traversal primitives over one 12-bit-packed
// FAT copy (spec.md §4.3).
type FATChain struct {
	region     Region
	maxCluster int
}

// Get returns the 12-bit value of entry i.
func (f *FATChain) Get(i uint16) uint16 {
	buf := f.region.Bytes()
	idx := (uint32(i) * 3) / 2

	if i%2 == 0 {
		return uint16(buf[idx]) | (uint16(buf[idx+1]&0x0F) << 8)
	}
	return (uint16(buf[idx]) >> 4) | (uint16(buf[idx+1]) << 4)
}

// Set writes the 12-bit value of entry i, preserving the four bits that
// belong to the neighbouring entry packed into the same byte (open
// question decision #4: the original dropped the neighbour's bits for
// even indices; this preserves them for both parities, per spec.md §4.3's
// Write rule).
func (f *FATChain) Set(i uint16, value uint16) {
	buf := f.region.Bytes()
	idx := (uint32(i) * 3) / 2
	value &= 0x0FFF

	if i%2 == 0 {
		// Low byte is entirely ours; high nybble of buf[idx+1] belongs to
		// entry i+1 and must be preserved.
		buf[idx] = byte(value)
		buf[idx+1] = (buf[idx+1] & 0xF0) | byte(value>>8)
	} else {
		// Low nybble of buf[idx] belongs to entry i-1 and must be
		// preserved; the rest of the value goes in the high nybble of
		// buf[idx] and all of buf[idx+1].
		buf[idx] = (buf[idx] & 0x0F) | byte((value&0x0F)<<4)
		buf[idx+1] = byte(value >> 4)
	}
}

// IsEndOfChain reports whether value should be treated as end-of-chain on
// read: anything >= 0xFF8 (spec.md §3), even though only 0xFFF is ever
// written.
func IsEndOfChain(value uint16) bool {
	return value >= eocReadThreshold
}

// Seek walks forward floor(offset/clusterSize) hops from startCluster,
// stopping at end-of-chain without error (spec.md §4.3's Seek). The
// caller compares the requested and achieved offset to detect a short
// chain.
func (f *FATChain) Seek(startCluster uint16, offset, clusterSize int) (
	currentCluster uint16, bytesSkipped int, intraClusterOffset int,
) {
	hops := offset / clusterSize
	intraClusterOffset = offset % clusterSize

	current := startCluster
	for i := 0; i < hops; i++ {
		if current == 0 || IsEndOfChain(current) {
			break
		}
		next := f.Get(current)
		if IsEndOfChain(next) {
			break
		}
		current = next
		bytesSkipped += clusterSize
	}

	return current, bytesSkipped, intraClusterOffset
}

// Allocate performs a linear scan from cluster 2 for the first free
// entry (value 0), returning EndOfChain if the volume is full (spec.md
// §4.3's Allocate).
func (f *FATChain) Allocate() (uint16, error) {
	for i := 2; i < f.maxCluster; i++ {
		if f.Get(uint16(i)) == 0 {
			return uint16(i), nil
		}
	}
	return EndOfChain, errs.New(errs.ENOSPC)
}

// FreeChain walks the chain starting at start, reading each entry's
// successor before zeroing the current slot (spec.md §4.3's ordering
// detail: "during free, read successor before zeroing the current
// slot"). It stops once it has zeroed the entry that held the original
// end-of-chain sentinel.
func (f *FATChain) FreeChain(start uint16) {
	current := start
	for current != 0 && !IsEndOfChain(current) {
		next := f.Get(current)
		f.Set(current, 0)
		current = next
	}
}

// GrowChain allocates a new cluster, marks it end-of-chain, links tail to
// it, and returns the new cluster id. The new slot is marked EOC before
// the link is written, so no in-flight reader ever sees a free slot as
// reachable (spec.md §4.3's ordering detail for grow).
func (f *FATChain) GrowChain(tail uint16) (uint16, error) {
	newCluster, err := f.Allocate()
	if err != nil {
		return 0, err
	}
	f.Set(newCluster, EndOfChain)
	f.Set(tail, newCluster)
	return newCluster, nil
}
