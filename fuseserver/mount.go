package fuseserver

import (
	"bazil.org/fuse"
	"bazil.org/fuse/fs"

	"github.com/tunbehau/hdifat12/inode"
)

// Serve mounts sess at mountpoint and blocks until the kernel unmounts it
// (fusermount -u, or an explicit Unmount call from another goroutine). No
// signal handler is installed. The caller is responsible for calling
// sess.Volume's owning hdiimage.Image.Commit() afterward.
func Serve(mountpoint string, sess *inode.Session) error {
	c, err := fuse.Mount(
		mountpoint,
		fuse.FSName("hdifat12"),
		fuse.Subtype("fat12"),
	)
	if err != nil {
		return err
	}
	defer c.Close()

	return fs.Serve(c, &FS{Sess: sess})
}

// Unmount requests the kernel unmount mountpoint, which makes a running
// Serve return. It does not commit the image.
func Unmount(mountpoint string) error {
	return fuse.Unmount(mountpoint)
}
