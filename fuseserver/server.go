// Package fuseserver adapts inode.Session onto bazil.org/fuse, the same
// low-level FUSE binding the pack's frfs example drives: one fs.FS backed
// by Dir/File nodes that forward straight onto the session's monitor.
package fuseserver

import (
	"context"
	"os"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"

	"github.com/tunbehau/hdifat12/inode"
)

// FS is the bazil.org/fuse/fs.FS root, wrapping a single mounted session.
type FS struct {
	Sess *inode.Session
}

func (f *FS) Root() (fs.Node, error) {
	return &Dir{sess: f.Sess, id: inode.RootID}, nil
}

// Dir is a directory inode. It also serves as its own fs.Handle: opendir
// and releasedir carry no state beyond the validity check Session.OpenDir
// already performs.
type Dir struct {
	sess *inode.Session
	id   uint64
}

func attrFrom(a *fuse.Attr, id uint64, stat inode.Stat) {
	a.Inode = id
	a.Mode = stat.Mode
	a.Size = uint64(stat.Size)
	a.Nlink = stat.Nlink
	a.Atime = stat.Atime
	a.Mtime = stat.Mtime
	a.Ctime = stat.Ctime
}

func (d *Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	stat, err := d.sess.GetAttr(d.id)
	if err != nil {
		return toFuseError(err)
	}
	attrFrom(a, d.id, stat)
	return nil
}

func (d *Dir) Open(ctx context.Context, req *fuse.OpenRequest, resp *fuse.OpenResponse) (fs.Handle, error) {
	if err := d.sess.OpenDir(d.id); err != nil {
		return nil, toFuseError(err)
	}
	return d, nil
}

func (d *Dir) Release(ctx context.Context, req *fuse.ReleaseRequest) error {
	d.sess.ReleaseDir(d.id)
	return nil
}

func (d *Dir) Forget() {
	_ = d.sess.ForgetAll(d.id)
}

func (d *Dir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	child, err := d.sess.Lookup(d.id, name)
	if err != nil {
		return nil, toFuseError(err)
	}
	return nodeFor(d.sess, child), nil
}

func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	children, err := d.sess.ReadDir(d.id)
	if err != nil {
		return nil, toFuseError(err)
	}

	out := make([]fuse.Dirent, 0, len(children))
	for _, c := range children {
		entryType := fuse.DT_File
		if c.IsDir {
			entryType = fuse.DT_Dir
		}
		out = append(out, fuse.Dirent{Inode: c.ID, Type: entryType, Name: c.Name})
	}
	return out, nil
}

func (d *Dir) Create(ctx context.Context, req *fuse.CreateRequest, resp *fuse.CreateResponse) (fs.Node, fs.Handle, error) {
	child, handleSlot, err := d.sess.Create(d.id, req.Name)
	if err != nil {
		return nil, nil, toFuseError(err)
	}

	stat, _ := d.sess.GetAttr(child.ID)
	attrFrom(&resp.Attr, child.ID, stat)

	file := &File{sess: d.sess, id: child.ID}
	return file, &FileHandle{sess: d.sess, slot: handleSlot}, nil
}

func (d *Dir) Remove(ctx context.Context, req *fuse.RemoveRequest) error {
	return toFuseError(d.sess.Unlink(d.id, req.Name))
}

// File is a regular-file inode; I/O happens through the FileHandle Open
// returns, never directly on File.
type File struct {
	sess *inode.Session
	id   uint64
}

func (f *File) Attr(ctx context.Context, a *fuse.Attr) error {
	stat, err := f.sess.GetAttr(f.id)
	if err != nil {
		return toFuseError(err)
	}
	attrFrom(a, f.id, stat)
	return nil
}

func (f *File) Open(ctx context.Context, req *fuse.OpenRequest, resp *fuse.OpenResponse) (fs.Handle, error) {
	writeRequested := req.Flags&fuse.OpenFlags(os.O_WRONLY) != 0 || req.Flags&fuse.OpenFlags(os.O_RDWR) != 0
	truncate := req.Flags&fuse.OpenFlags(os.O_TRUNC) != 0

	slot, err := f.sess.Open(f.id, writeRequested, truncate)
	if err != nil {
		return nil, toFuseError(err)
	}
	return &FileHandle{sess: f.sess, slot: slot}, nil
}

func (f *File) Forget() {
	_ = f.sess.ForgetAll(f.id)
}

// FileHandle is the per-open-call state: just the session's handle slot.
type FileHandle struct {
	sess *inode.Session
	slot int
}

func (h *FileHandle) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	data, err := h.sess.Read(h.slot, int(req.Offset), req.Size)
	if err != nil {
		return toFuseError(err)
	}
	resp.Data = data
	return nil
}

func (h *FileHandle) Write(ctx context.Context, req *fuse.WriteRequest, resp *fuse.WriteResponse) error {
	n, err := h.sess.Write(h.slot, int(req.Offset), req.Data)
	if err != nil {
		return toFuseError(err)
	}
	resp.Size = n
	return nil
}

func (h *FileHandle) Release(ctx context.Context, req *fuse.ReleaseRequest) error {
	return toFuseError(h.sess.Release(h.slot))
}

// nodeFor builds the fs.Node matching n's kind, used anywhere a lookup or
// readdir hands back a child that still needs wrapping.
func nodeFor(sess *inode.Session, n *inode.Node) fs.Node {
	if n.IsDir {
		return &Dir{sess: sess, id: n.ID}
	}
	return &File{sess: sess, id: n.ID}
}
