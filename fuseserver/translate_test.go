package fuseserver

import (
	"errors"
	"syscall"
	"testing"

	"bazil.org/fuse"
	"github.com/stretchr/testify/assert"

	"github.com/tunbehau/hdifat12/errs"
)

func TestToFuseErrorMapsDriverError(t *testing.T) {
	got := toFuseError(errs.New(errs.ENOSPC))
	assert.Equal(t, fuse.Errno(syscall.ENOSPC), got)
}

func TestToFuseErrorFallsBackToEIO(t *testing.T) {
	got := toFuseError(errors.New("not a driver error"))
	assert.Equal(t, fuse.Errno(syscall.EIO), got)
}

func TestToFuseErrorNilIsNil(t *testing.T) {
	assert.Nil(t, toFuseError(nil))
}
