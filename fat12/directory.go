package fat12

import "github.com/tunbehau/hdifat12/errs"

// Directory is an enumerable, growable container of 32-byte directory
// entries: either the volume's fixed-size root region, or a chain of
// data clusters reachable from a sub-directory's FirstClusterLow
// (spec.md §4.4).
type Directory struct {
	volume       *Volume
	isRoot       bool
	rootRegion   Region
	firstCluster uint16
}

// NewRootDirectory builds a Directory over the volume's fixed root
// region.
func NewRootDirectory(v *Volume) *Directory {
	return &Directory{volume: v, isRoot: true, rootRegion: v.RootRegion}
}

// NewSubDirectory builds a Directory over the cluster chain rooted at
// firstCluster.
func NewSubDirectory(v *Volume, firstCluster uint16) *Directory {
	return &Directory{volume: v, isRoot: false, firstCluster: firstCluster}
}

// clusterRegion returns the data region covering cluster id.
func (v *Volume) clusterRegion(cluster uint16) (Region, error) {
	relOffset := (int(cluster) - 2) * v.ClusterSize
	return v.DataRegion.Sub(relOffset, v.ClusterSize)
}

// Entries walks the container in physical order: all root slots for a
// root directory, or every slot of every cluster in the chain for a
// sub-directory, advancing cluster-by-cluster via the FAT (spec.md
// §4.4's "Enumerate root"/"Enumerate sub-directory"; this is also the
// traversal bug #3's compaction logic must use instead of resetting to
// FirstClusterLow).
func (d *Directory) Entries() ([]Dirent, error) {
	if d.isRoot {
		return d.entriesInRegion(d.rootRegion), nil
	}

	var entries []Dirent
	fat := d.volume.FAT(0)
	cluster := d.firstCluster

	for cluster != 0 && !IsEndOfChain(cluster) {
		region, err := d.volume.clusterRegion(cluster)
		if err != nil {
			return nil, err
		}
		entries = append(entries, d.entriesInRegion(region)...)
		cluster = fat.Get(cluster)
	}

	return entries, nil
}

func (d *Directory) entriesInRegion(region Region) []Dirent {
	count := region.Length / DirentSize
	entries := make([]Dirent, 0, count)
	for i := 0; i < count; i++ {
		slot, err := region.Sub(i*DirentSize, DirentSize)
		if err != nil {
			break
		}
		entries = append(entries, ParseDirent(slot))
	}
	return entries
}

// AllocateSlot returns the first slot that fails Dirent.IsValid (name[0]
// is 0x00 or 0xE5, or the cluster/size pair is invalid).
// For a sub-directory whose container is exhausted, it grows the chain
// by one cluster and retries once (open question decision #2: the
// original never extended sub-directory chains). AllocateSlot only
// fails with ENOSPC when the volume itself has no free cluster left;
// the root directory stays fixed-size and fails immediately when full.
func (d *Directory) AllocateSlot() (*Dirent, error) {
	slot, err := d.findFreeSlot()
	if err == nil {
		return slot, nil
	}
	if d.isRoot {
		return nil, err
	}

	if growErr := d.growByOneCluster(); growErr != nil {
		return nil, growErr
	}

	return d.findFreeSlot()
}

func (d *Directory) findFreeSlot() (*Dirent, error) {
	entries, err := d.Entries()
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if !entries[i].IsValid() {
			return &entries[i], nil
		}
	}
	return nil, errs.New(errs.ENOSPC)
}

// growByOneCluster allocates a new cluster, links it onto the chain,
// and zero-fills it so every slot in it reads as a fresh free entry.
func (d *Directory) growByOneCluster() error {
	fat := d.volume.FAT(0)

	if d.firstCluster == 0 {
		newCluster, err := fat.Allocate()
		if err != nil {
			return err
		}
		fat.Set(newCluster, EndOfChain)
		d.firstCluster = newCluster
		return d.zeroCluster(newCluster)
	}

	tail := d.firstCluster
	for {
		next := fat.Get(tail)
		if IsEndOfChain(next) {
			break
		}
		tail = next
	}

	newCluster, err := fat.GrowChain(tail)
	if err != nil {
		return err
	}
	return d.zeroCluster(newCluster)
}

func (d *Directory) zeroCluster(cluster uint16) error {
	region, err := d.volume.clusterRegion(cluster)
	if err != nil {
		return err
	}
	buf := region.Bytes()
	for i := range buf {
		buf[i] = 0
	}
	return nil
}

// Compact walks the container from the end and, while the trailing
// entry is invalid, sets its name[0] to 0x00 (spec.md §4.4's "Compact
// directory"). Fixing bug #3: traversal to build the entry list already
// advances properly through the FAT chain (Entries), so this never
// loops.
func (d *Directory) Compact() error {
	entries, err := d.Entries()
	if err != nil {
		return err
	}

	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].IsValid() {
			break
		}
		if !entries[i].IsEndOfDirectory() {
			entries[i].MarkEndOfDirectory()
		}
	}

	return nil
}
