package fuseserver

import (
	"syscall"

	"bazil.org/fuse"

	"github.com/tunbehau/hdifat12/errs"
)

// syscallByErrno maps our errno abstraction onto the syscall.Errno values
// bazil.org/fuse expects wrapped in a fuse.Errno reply.
var syscallByErrno = map[errs.Errno]syscall.Errno{
	errs.EPERM:        syscall.EPERM,
	errs.ENOENT:       syscall.ENOENT,
	errs.EIO:          syscall.EIO,
	errs.EBADF:        syscall.EBADF,
	errs.EACCES:       syscall.EACCES,
	errs.EBUSY:        syscall.EBUSY,
	errs.EEXIST:       syscall.EEXIST,
	errs.ENODEV:       syscall.ENODEV,
	errs.ENOTDIR:      syscall.ENOTDIR,
	errs.EISDIR:       syscall.EISDIR,
	errs.EINVAL:       syscall.EINVAL,
	errs.EMFILE:       syscall.EMFILE,
	errs.EFBIG:        syscall.EFBIG,
	errs.ENOSPC:       syscall.ENOSPC,
	errs.ESPIPE:       syscall.ESPIPE,
	errs.EROFS:        syscall.EROFS,
	errs.ENAMETOOLONG: syscall.ENAMETOOLONG,
	errs.ENOSYS:       syscall.ENOSYS,
	errs.ENOTEMPTY:    syscall.ENOTEMPTY,
	errs.ENOMEM:       syscall.ENOMEM,
	errs.ENOTSUP:      syscall.ENOTSUP,
	errs.EALREADY:     syscall.EALREADY,
}

// toFuseError converts any error surfaced by the inode/fat12 layers into
// the fuse.Errno bazil's fs package reports back over the wire. Errors
// that never went through errs.New come back as EIO.
func toFuseError(err error) error {
	if err == nil {
		return nil
	}

	driverErr, ok := err.(errs.DriverError)
	if !ok {
		return fuse.Errno(syscall.EIO)
	}

	if sysErrno, ok := syscallByErrno[driverErr.Errno()]; ok {
		return fuse.Errno(sysErrno)
	}
	return fuse.Errno(syscall.EIO)
}
