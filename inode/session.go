package inode

import (
	"sync"

	"github.com/tunbehau/hdifat12/codec"
	"github.com/tunbehau/hdifat12/errs"
	"github.com/tunbehau/hdifat12/fat12"
)

// MaxOpenHandles bounds concurrently open file handles (spec.md §4.5's
// Open/Create: "an integer drawn from [0, 128)").
const MaxOpenHandles = 128

// Handle is an open file reference, keyed by its slot index in
// Session.handles.
type Handle struct {
	Node *Node
}

// Session is the single process-wide monitor spec.md §5 describes:
// every operation takes sess.mu for its entire duration before touching
// any shared state (the buffer, the inode tree, the handle table, the
// id counter).
type Session struct {
	mu sync.Mutex

	Volume *fat12.Volume
	Oracle codec.MS932Oracle

	root    *Node
	byID    map[uint64]*Node
	nextID  uint64
	handles [MaxOpenHandles]*Handle
}

// Mount builds the in-memory inode tree from vol's root directory
// (spec.md §4.5's Construction).
func Mount(vol *fat12.Volume) (*Session, error) {
	sess := &Session{
		Volume: vol,
		Oracle: codec.NewMS932Oracle(),
		byID:   make(map[uint64]*Node),
		nextID: RootID + 1,
	}

	root := &Node{ID: RootID, Name: "", IsDir: true}
	sess.byID[RootID] = root
	sess.root = root

	if err := sess.populateDirectory(root, fat12.NewRootDirectory(vol)); err != nil {
		return nil, err
	}

	return sess, nil
}

// populateDirectory walks dir's live entries, allocating a Node for
// each valid, non-dot/dot-dot entry, and recurses into sub-directories.
func (s *Session) populateDirectory(parent *Node, dir *fat12.Directory) error {
	entries, err := dir.Entries()
	if err != nil {
		return err
	}

	for i := range entries {
		entry := entries[i]
		if !entry.IsValid() || entry.IsDotOrDotDot() || entry.IsVolumeLabel() {
			continue
		}

		name := codec.DecodeDOSName(s.Oracle, entry.Raw.Name)
		child := &Node{
			ID:     s.allocateID(),
			Name:   name,
			Dirent: &entries[i],
			Parent: parent,
			IsDir:  entry.IsDirectory(),
		}
		s.byID[child.ID] = child
		parent.Children = append(parent.Children, child)

		if child.IsDir {
			subDir := fat12.NewSubDirectory(s.Volume, entry.FirstCluster())
			if err := s.populateDirectory(child, subDir); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *Session) allocateID() uint64 {
	id := s.nextID
	s.nextID++
	return id
}

// getNode resolves an inode id, failing NoEntry if unknown.
func (s *Session) getNode(id uint64) (*Node, error) {
	n, ok := s.byID[id]
	if !ok {
		return nil, errs.New(errs.ENOENT)
	}
	return n, nil
}

// Lookup implements spec.md §4.5's Lookup: case-insensitive scan of
// parent.Children, incrementing nlookup on hit.
func (s *Session) Lookup(parentID uint64, name string) (*Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, err := s.getNode(parentID)
	if err != nil {
		return nil, err
	}
	if !parent.IsDir {
		return nil, errs.New(errs.ENOTDIR)
	}

	child := parent.findChildByName(name)
	if child == nil {
		return nil, errs.New(errs.ENOENT)
	}

	child.NLookup++
	return child, nil
}

// GetAttr returns n's Stat; n must have been resolved via Lookup.
func (s *Session) GetAttr(id uint64) (Stat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.getNode(id)
	if err != nil {
		return Stat{}, err
	}
	return n.Stat(), nil
}

// OpenDir/ReleaseDir are no-ops beyond validating the inode is a
// directory; the session holds no per-directory-handle state since
// readdir re-enumerates the live container each call.
func (s *Session) OpenDir(id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.getNode(id)
	if err != nil {
		return err
	}
	if !n.IsDir {
		return errs.New(errs.ENOTDIR)
	}
	return nil
}

func (s *Session) ReleaseDir(uint64) {}

// ReadDir returns the live (non-zombie) children of a directory inode.
func (s *Session) ReadDir(id uint64) ([]*Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.getNode(id)
	if err != nil {
		return nil, err
	}
	if !n.IsDir {
		return nil, errs.New(errs.ENOTDIR)
	}

	live := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if !c.Zombie {
			live = append(live, c)
		}
	}
	return live, nil
}

// allocateHandleSlot finds a free slot in [0, MaxOpenHandles), failing
// EMFILE if all are in use.
func (s *Session) allocateHandleSlot(h *Handle) (int, error) {
	for i, slot := range s.handles {
		if slot == nil {
			s.handles[i] = h
			return i, nil
		}
	}
	return -1, errs.New(errs.EMFILE)
}

// Open opens id for I/O, honouring O_TRUNC/O_WRONLY/O_RDWR/EACCES/EISDIR
// the way spec.md §6's POSIX surface requires.
func (s *Session) Open(id uint64, writeRequested bool, truncate bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.getNode(id)
	if err != nil {
		return -1, err
	}
	if n.IsDir {
		return -1, errs.New(errs.EISDIR)
	}
	if writeRequested && n.Dirent.IsReadOnly() {
		return -1, errs.New(errs.EACCES)
	}

	if truncate && writeRequested {
		(&fat12.File{Volume: s.Volume, Dirent: n.Dirent}).Truncate()
	}

	slot, err := s.allocateHandleSlot(&Handle{Node: n})
	if err != nil {
		return -1, err
	}
	return slot, nil
}

// Create implements spec.md §4.5's Create: allocates a directory slot,
// writes the upper-cased MS932 name with regular-file attributes, and
// opens a handle with nlookup = 1. On any failure after mutating the
// parent, the parent's prior snapshot is restored before the error is
// surfaced.
func (s *Session) Create(parentID uint64, name string) (*Node, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, err := s.getNode(parentID)
	if err != nil {
		return nil, -1, err
	}
	if !parent.IsDir {
		return nil, -1, errs.New(errs.ENOTDIR)
	}

	var dir *fat12.Directory
	if parent.ID == RootID {
		dir = fat12.NewRootDirectory(s.Volume)
	} else {
		dir = fat12.NewSubDirectory(s.Volume, parent.Dirent.FirstCluster())
	}

	rawName, err := codec.EncodeDOSName(s.Oracle, name)
	if err != nil {
		return nil, -1, err
	}

	slot, err := dir.AllocateSlot()
	if err != nil {
		return nil, -1, err
	}

	snapshot := slot.Raw
	slot.Raw.Name = rawName
	slot.Raw.Attr = 0
	slot.Raw.FirstClusterLow = 0
	slot.Raw.Size = 0
	slot.WriteBack()

	child := &Node{
		ID:      s.allocateID(),
		Name:    codec.DecodeDOSName(s.Oracle, rawName),
		Dirent:  slot,
		Parent:  parent,
		IsDir:   false,
		NLookup: 1,
	}

	handleSlot, err := s.allocateHandleSlot(&Handle{Node: child})
	if err != nil {
		slot.Raw = snapshot
		slot.WriteBack()
		return nil, -1, err
	}

	s.byID[child.ID] = child
	parent.Children = append(parent.Children, child)

	return child, handleSlot, nil
}

// Read delegates to fat12.File.Read using the handle's inode.
func (s *Session) Read(handleSlot int, offset, size int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := s.handleAt(handleSlot)
	if err != nil {
		return nil, err
	}

	f := &fat12.File{Volume: s.Volume, Dirent: h.Node.Dirent}
	return f.Read(offset, size), nil
}

// Write delegates to fat12.File.Write using the handle's inode.
func (s *Session) Write(handleSlot int, offset int, data []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := s.handleAt(handleSlot)
	if err != nil {
		return 0, err
	}

	f := &fat12.File{Volume: s.Volume, Dirent: h.Node.Dirent}
	return f.Write(offset, data)
}

// Release drops handleSlot from the active set.
func (s *Session) Release(handleSlot int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.handleAt(handleSlot); err != nil {
		return err
	}
	s.handles[handleSlot] = nil
	return nil
}

func (s *Session) handleAt(slot int) (*Handle, error) {
	if slot < 0 || slot >= MaxOpenHandles || s.handles[slot] == nil {
		return nil, errs.New(errs.EBADF)
	}
	return s.handles[slot], nil
}

// isInUse reports whether any open handle references n.
func (s *Session) isInUse(n *Node) bool {
	for _, h := range s.handles {
		if h != nil && h.Node == n {
			return true
		}
	}
	return false
}

// Unlink implements spec.md §4.5's Unlink: fails Busy if any handle is
// open on the target, otherwise marks it zombie and defers physical
// release to Forget.
func (s *Session) Unlink(parentID uint64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, err := s.getNode(parentID)
	if err != nil {
		return err
	}

	child := parent.findChildByName(name)
	if child == nil {
		return errs.New(errs.ENOENT)
	}

	if s.isInUse(child) {
		return errs.New(errs.EBUSY)
	}

	child.Zombie = true
	return nil
}

// Forget implements spec.md §4.5's Forget: decrements nlookup by n; if
// it reaches 0 and the node is a zombie, frees the chain, marks the
// directory slot deleted, compacts the container, and detaches the
// child from its parent.
func (s *Session) Forget(id uint64, n uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, err := s.getNode(id)
	if err != nil {
		return err
	}

	if n >= node.NLookup {
		node.NLookup = 0
	} else {
		node.NLookup -= n
	}

	if node.NLookup != 0 || !node.Zombie {
		return nil
	}

	return s.finalizeZombie(node)
}

// ForgetAll drops every outstanding lookup reference on id in one step,
// finalizing a zombie immediately. The FUSE transport's own refcounting
// already collapses however many kernel FORGET messages preceded the
// single call it makes into our Forget hook, so there is no per-call n
// left for it to hand us by the time the node is actually unreachable.
func (s *Session) ForgetAll(id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, err := s.getNode(id)
	if err != nil {
		return err
	}

	node.NLookup = 0
	if !node.Zombie {
		return nil
	}
	return s.finalizeZombie(node)
}

func (s *Session) finalizeZombie(node *Node) error {
	if node.Dirent.FirstCluster() != 0 {
		s.Volume.FAT(0).FreeChain(node.Dirent.FirstCluster())
	}
	node.Dirent.MarkDeleted()

	var dir *fat12.Directory
	if node.Parent.ID == RootID {
		dir = fat12.NewRootDirectory(s.Volume)
	} else {
		dir = fat12.NewSubDirectory(s.Volume, node.Parent.Dirent.FirstCluster())
	}
	if err := dir.Compact(); err != nil {
		return err
	}

	node.Parent.Children = removeChild(node.Parent.Children, node)
	delete(s.byID, node.ID)
	return nil
}

func removeChild(children []*Node, target *Node) []*Node {
	out := children[:0]
	for _, c := range children {
		if c != target {
			out = append(out, c)
		}
	}
	return out
}
