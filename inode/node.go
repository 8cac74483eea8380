// Package inode mirrors the on-disk FAT12 directory tree as an in-memory
// tree of inode nodes (spec.md §4.5), bridging the FUSE transport's
// stateful inode/handle protocol to FAT's stateless directory entries.
package inode

import (
	"os"
	"time"

	"github.com/tunbehau/hdifat12/fat12"
)

// RootID is the inode id reserved for the synthetic root (spec.md §3:
// "id 1 is reserved for the root").
const RootID uint64 = 1

// Node is one entry in the in-memory mirror of the on-disk tree.
type Node struct {
	ID       uint64
	Name     string
	Dirent   *fat12.Dirent // nil for the synthetic root
	Parent   *Node
	Children []*Node
	IsDir    bool

	NLookup uint64
	Zombie  bool
}

// Stat is the POSIX-ish attribute bundle spec.md §4.5's Stat returns.
type Stat struct {
	Mode  os.FileMode
	Size  int64
	Nlink uint32
	Atime time.Time
	Mtime time.Time
	Ctime time.Time
}

// Stat computes n's attributes from its backing Dirent, or synthesizes
// them for the root (spec.md §4.5's Stat: mode 0555/0444, nlink 1, ctime
// == mtime).
func (n *Node) Stat() Stat {
	if n.Dirent == nil {
		return Stat{Mode: os.ModeDir | 0o555, Nlink: 1}
	}

	mode := os.FileMode(0o444)
	if n.IsDir {
		mode = os.ModeDir | 0o555
	}

	raw := &n.Dirent.Raw
	mtime := fat12.TimestampFromParts(raw.WriteDate, raw.WriteTime)
	atime := fat12.TimestampFromParts(raw.LastAccessDate, 0)

	return Stat{
		Mode:  mode,
		Size:  int64(raw.Size),
		Nlink: 1,
		Atime: atime,
		Mtime: mtime,
		Ctime: mtime,
	}
}

// findChildByName performs the case-insensitive scan spec.md §4.5's
// Lookup calls for.
func (n *Node) findChildByName(name string) *Node {
	for _, child := range n.Children {
		if !child.Zombie && equalFold(child.Name, name) {
			return child
		}
	}
	return nil
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'a' <= ca && ca <= 'z' {
			ca -= 'a' - 'A'
		}
		if 'a' <= cb && cb <= 'z' {
			cb -= 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
