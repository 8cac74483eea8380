// Command hdifsck12 inspects (and, with -m/-s, patches) the FAT of a
// FAT12 image: reserved-entry diagnostics, orphan-cluster detection,
// free-cluster accounting, a recursive directory listing, and raw FAT
// entry printing via -l.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/tunbehau/hdifat12/codec"
	"github.com/tunbehau/hdifat12/fat12"
	"github.com/tunbehau/hdifat12/hdiimage"
)

func main() {
	app := &cli.App{
		Name:      "hdifsck12",
		Usage:     "Inspect or patch the FAT of a FAT12 disk image",
		ArgsUsage: "<image-file>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "l", Usage: "list FAT entries (all, if no indices given)"},
			&cli.StringSliceFlag{Name: "m", Usage: "FAT entry indices to patch; requires -s"},
			&cli.StringFlag{Name: "s", Usage: "value to set the -m entries to"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("hdifsck12: %s", err)
	}
}

func run(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.Exit("usage: hdifsck12 [options] <image-file>", 1)
	}
	path := ctx.Args().Get(0)

	img, err := hdiimage.Open(path)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	bpb, err := fat12.ScanForBPB(img.Payload())
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	vol, err := fat12.NewVolume(img.Payload(), bpb)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if ctx.IsSet("m") {
		if err := patchEntries(ctx, vol); err != nil {
			return cli.Exit(err.Error(), 1)
		}
		vol.Sync()
		if err := img.Commit(); err != nil {
			return cli.Exit(err.Error(), 1)
		}
	}

	printDirectoryTree(vol)
	printReservedEntryWarnings(vol)
	printOrphans(vol)

	if ctx.IsSet("l") {
		printListedEntries(ctx, vol)
	}

	free := vol.FreeClusterCount()
	fmt.Printf("%d clusters free, equal to %d bytes\n", free, free*vol.ClusterSize)
	return nil
}

func patchEntries(ctx *cli.Context, vol *fat12.Volume) error {
	sArg := ctx.String("s")
	if sArg == "" {
		return fmt.Errorf("option -m needs -s set")
	}
	value, err := strconv.Atoi(sArg)
	if err != nil || value < 0 || value >= vol.MaxCluster {
		return fmt.Errorf("cluster value to be set is out of range")
	}

	fat := vol.FAT(0)
	for _, indexStr := range ctx.StringSlice("m") {
		index, err := strconv.Atoi(indexStr)
		if err != nil || index < 0 || index >= vol.MaxCluster {
			return fmt.Errorf("cluster index %q to be set is out of range", indexStr)
		}
		fat.Set(uint16(index), uint16(value))
	}
	return nil
}

func printReservedEntryWarnings(vol *fat12.Volume) {
	for _, warning := range vol.CheckReservedFATEntries() {
		fmt.Println(warning)
	}
}

func printOrphans(vol *fat12.Volume) {
	orphans, err := vol.FindOrphanClusters()
	if err != nil || len(orphans) == 0 {
		return
	}
	fmt.Println("The following clusters may be orphans")
	for _, orphan := range orphans {
		fmt.Printf("%d ", orphan)
	}
	fmt.Println()
}

func printListedEntries(ctx *cli.Context, vol *fat12.Volume) {
	indices := ctx.StringSlice("l")
	fat := vol.FAT(0)

	if len(indices) == 0 {
		for i := 0; i < vol.MaxCluster; i++ {
			fmt.Printf("Fat Entry %d, value %d\n", i, fat.Get(uint16(i)))
		}
		return
	}

	for _, indexStr := range indices {
		index, err := strconv.Atoi(indexStr)
		if err != nil || index >= vol.MaxCluster {
			fmt.Printf("Fat Entry %s is out of range\n", indexStr)
			continue
		}
		fmt.Printf("Fat Entry %d, value %d\n", index, fat.Get(uint16(index)))
	}
}

func printDirectoryTree(vol *fat12.Volume) {
	oracle := codec.NewMS932Oracle()
	printDirectoryRecursive(vol, oracle, fat12.NewRootDirectory(vol), "")
}

func printDirectoryRecursive(vol *fat12.Volume, oracle codec.MS932Oracle, dir *fat12.Directory, indent string) {
	entries, err := dir.Entries()
	if err != nil {
		fmt.Printf("%serror reading directory: %s\n", indent, err)
		return
	}

	for i := range entries {
		entry := &entries[i]
		if !entry.IsValid() || entry.IsDotOrDotDot() || entry.IsVolumeLabel() {
			continue
		}

		name := codec.DecodeDOSName(oracle, entry.Raw.Name)
		if entry.IsDirectory() {
			fmt.Printf("%s%s/\n", indent, name)
			printDirectoryRecursive(vol, oracle, fat12.NewSubDirectory(vol, entry.FirstCluster()), indent+"  ")
		} else {
			fmt.Printf("%s%s (%d bytes)\n", indent, name, entry.Raw.Size)
		}
	}
}
