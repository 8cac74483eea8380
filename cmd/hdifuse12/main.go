// Command hdifuse12 mounts a FAT12 image (optionally HDI-wrapped) at a
// mountpoint via FUSE, and writes the image back when the mount is
// unmounted cleanly.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/tunbehau/hdifat12/fat12"
	"github.com/tunbehau/hdifat12/fuseserver"
	"github.com/tunbehau/hdifat12/hdiimage"
	"github.com/tunbehau/hdifat12/inode"
)

func main() {
	app := &cli.App{
		Name:      "hdifuse12",
		Usage:     "Mount a FAT12 disk image over FUSE",
		ArgsUsage: "<image-file> <mountpoint>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "readonly", Usage: "mount without writing the image back on unmount"},
		},
		Action: runMount,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("hdifuse12: %s", err)
	}
}

func runMount(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		return cli.Exit("usage: hdifuse12 [options] <image-file> <mountpoint>", 1)
	}
	imagePath := ctx.Args().Get(0)
	mountpoint := ctx.Args().Get(1)

	img, err := hdiimage.Open(imagePath)
	if err != nil {
		return cli.Exit(fmt.Sprintf("opening %s: %s", imagePath, err), 1)
	}

	bpb, err := fat12.ScanForBPB(img.Payload())
	if err != nil {
		return cli.Exit(fmt.Sprintf("scanning %s for a FAT12 boot sector: %s", imagePath, err), 1)
	}

	vol, err := fat12.NewVolume(img.Payload(), bpb)
	if err != nil {
		return cli.Exit(fmt.Sprintf("mounting volume: %s", err), 1)
	}
	if err := vol.CheckFATConsistency(); err != nil {
		return cli.Exit(fmt.Sprintf("mounting volume: %s", err), 1)
	}

	sess, err := inode.Mount(vol)
	if err != nil {
		return cli.Exit(fmt.Sprintf("building inode tree: %s", err), 1)
	}

	fmt.Printf("mounting %s on %s\n", imagePath, mountpoint)
	if err := fuseserver.Serve(mountpoint, sess); err != nil {
		return cli.Exit(fmt.Sprintf("fuse serve: %s", err), 1)
	}

	if ctx.Bool("readonly") {
		return nil
	}

	vol.Sync()
	fmt.Println("writing image back")
	return img.Commit()
}
