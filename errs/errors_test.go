package errs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tunbehau/hdifat12/errs"
)

func TestNewWithMessage(t *testing.T) {
	err := errs.NewWithMessage(errs.ENOENT, "a.txt")
	assert.Equal(t, "No such file or directory: a.txt", err.Error())
	assert.Equal(t, errs.ENOENT, err.Errno())
}

func TestNewFromError(t *testing.T) {
	inner := errs.New(errs.EIO)
	wrapped := errs.NewFromError(errs.EUCLEAN, inner)
	assert.ErrorIs(t, wrapped.Unwrap(), inner)
}
