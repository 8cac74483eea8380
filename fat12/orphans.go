package fat12

// FindOrphanClusters returns every allocated cluster (FAT entry != 0)
// that no live directory entry's chain actually visits, grounded on the
// original fsck's entryPresentRootDirectoryRecursive/checkChain walk:
// for each candidate cluster, scan every file and subdirectory chain
// reachable from the root, and flag the cluster if none of them contain
// it (SPEC_FULL.md §12's orphan-cluster detection).
func (v *Volume) FindOrphanClusters() ([]uint16, error) {
	root := NewRootDirectory(v)
	rootEntries, err := root.Entries()
	if err != nil {
		return nil, err
	}

	var orphans []uint16
	for cluster := uint16(2); cluster < uint16(v.MaxCluster); cluster++ {
		if v.FAT(0).Get(cluster) == 0 {
			continue
		}
		if !v.clusterReachableFromEntries(rootEntries, cluster) {
			orphans = append(orphans, cluster)
		}
	}
	return orphans, nil
}

func (v *Volume) clusterReachableFromEntries(entries []Dirent, target uint16) bool {
	for i := range entries {
		entry := &entries[i]
		if !entry.IsValid() {
			continue
		}

		if v.chainContains(entry.FirstCluster(), target) {
			return true
		}

		if entry.IsDirectory() && !entry.IsDotOrDotDot() {
			sub := NewSubDirectory(v, entry.FirstCluster())
			subEntries, err := sub.Entries()
			if err != nil {
				continue
			}
			if v.clusterReachableFromEntries(subEntries, target) {
				return true
			}
		}
	}
	return false
}

// chainContains walks start's FAT chain looking for target, the
// checkChain helper's equivalent.
//
// TODO: doesn't detect or bound cluster loops.
func (v *Volume) chainContains(start, target uint16) bool {
	if start == target {
		return true
	}

	fat := v.FAT(0)
	cluster := start
	for cluster != 0 && cluster < eocReadThreshold {
		cluster = fat.Get(cluster)
		if cluster == target {
			return true
		}
	}
	return false
}
