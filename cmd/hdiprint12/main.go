// Command hdiprint12 prints a FAT12 image's region layout and a
// recursive directory listing with full attribute flags, independent of
// hdifsck12's consistency checks.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/tunbehau/hdifat12/codec"
	"github.com/tunbehau/hdifat12/fat12"
	"github.com/tunbehau/hdifat12/hdiimage"
)

func main() {
	app := &cli.App{
		Name:      "hdiprint12",
		Usage:     "Print a FAT12 disk image's layout and directory tree",
		ArgsUsage: "<image-file>",
		Action:    run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("hdiprint12: %s", err)
	}
}

func run(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.Exit("usage: hdiprint12 <image-file>", 1)
	}
	path := ctx.Args().Get(0)

	img, err := hdiimage.Open(path)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if img.Header != nil {
		fmt.Printf("HDI header present, header size 0x%X\n", img.Header.HeaderSize)
	}

	bpb, err := fat12.ScanForBPB(img.Payload())
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	fmt.Printf("Boot region 0x%X, size 0x%X\n", bpb.Region.Offset, bpb.Region.Length)

	vol, err := fat12.NewVolume(img.Payload(), bpb)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	fmt.Printf("Fat region 0x%X, size 0x%X\n", vol.FATs[0].Offset, vol.FATs[0].Length*len(vol.FATs))
	fmt.Printf("Root region 0x%X, size 0x%X\n", vol.RootRegion.Offset, vol.RootRegion.Length)
	fmt.Printf("Data region 0x%X, size 0x%X\n", vol.DataRegion.Offset, vol.DataRegion.Length)
	fmt.Printf("Cluster size %d\n", vol.ClusterSize)
	fmt.Printf("Max cluster index %d\n", vol.MaxCluster)
	free := vol.FreeClusterCount()
	fmt.Printf("%d clusters free, equal to %d bytes\n", free, free*vol.ClusterSize)

	oracle := codec.NewMS932Oracle()
	printDirectoryRecursive(vol, oracle, fat12.NewRootDirectory(vol), 0)
	return nil
}

func printDirectoryRecursive(vol *fat12.Volume, oracle codec.MS932Oracle, dir *fat12.Directory, depth int) {
	entries, err := dir.Entries()
	if err != nil {
		fmt.Printf("error reading directory: %s\n", err)
		return
	}

	for i := range entries {
		entry := &entries[i]
		printFileEntry(oracle, entry, depth*4)

		if entry.IsValid() && entry.IsDirectory() && !entry.IsDotOrDotDot() {
			printDirectoryRecursive(vol, oracle, fat12.NewSubDirectory(vol, entry.FirstCluster()), depth+1)
		}
	}
}

func printFileEntry(oracle codec.MS932Oracle, entry *fat12.Dirent, padding int) {
	if entry.IsDeleted() || entry.IsEndOfDirectory() {
		return
	}

	name := codec.DecodeDOSName(oracle, entry.Raw.Name)
	fmt.Printf("%*s%s ", padding, "", name)

	flag := func(set bool, ch byte) byte {
		if set {
			return ch
		}
		return ' '
	}
	attr := entry.Raw.Attr
	fmt.Printf("[%c%c%c%c%c%c]",
		flag(attr&fat12.AttrReadOnly != 0, 'R'),
		flag(attr&fat12.AttrHidden != 0, 'H'),
		flag(attr&fat12.AttrSystem != 0, 'S'),
		flag(attr&fat12.AttrVolumeID != 0, 'V'),
		flag(attr&fat12.AttrDirectory != 0, 'D'),
		flag(attr&fat12.AttrArchive != 0, 'A'))

	fmt.Printf(" 0x%X, %d\n", entry.Raw.Size, entry.FirstCluster())

	if entry.Raw.FirstClusterHigh != 0 {
		fmt.Printf("HIGH %d -- should be zero\n", entry.Raw.FirstClusterHigh)
	}
	if entry.FirstCluster() == 1 && !entry.IsDotOrDotDot() {
		fmt.Println("entry is invalid -- data cluster is 1")
	}
	if entry.FirstCluster() == 0 && entry.Raw.Size != 0 {
		fmt.Println("entry is invalid -- cluster is 0, but size is not")
	}
}
