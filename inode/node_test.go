package inode_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tunbehau/hdifat12/fat12"
	"github.com/tunbehau/hdifat12/inode"
)

func TestStatAtimeFallsBackOnInvalidDate(t *testing.T) {
	node := &inode.Node{
		Dirent: &fat12.Dirent{
			Raw: fat12.RawDirent{
				LastAccessDate: 0x01E1, // month 15, day 1 -- out of range
			},
		},
	}

	stat := node.Stat()
	assert.Equal(t, time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC), stat.Atime)
}

func TestStatAtimeDecodesValidDate(t *testing.T) {
	node := &inode.Node{
		Dirent: &fat12.Dirent{
			Raw: fat12.RawDirent{
				LastAccessDate: 0x0061, // year 1980, month 3, day 1
			},
		},
	}

	stat := node.Stat()
	assert.Equal(t, time.Date(1980, time.March, 1, 0, 0, 0, 0, time.UTC), stat.Atime)
}
