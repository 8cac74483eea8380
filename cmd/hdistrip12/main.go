// Command hdistrip12 prints an HDI container header's fields and,
// given an output path, writes the image back without the header.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/tunbehau/hdifat12/hdiimage"
)

func main() {
	app := &cli.App{
		Name:      "hdistrip12",
		Usage:     "Print an HDI header and optionally strip it",
		ArgsUsage: "<hdi-file> [output-file]",
		Action:    run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("hdistrip12: %s", err)
	}
}

func run(ctx *cli.Context) error {
	if ctx.NArg() < 1 || ctx.NArg() > 2 {
		return cli.Exit("usage: hdistrip12 <hdi-file> [output-file]", 1)
	}
	path := ctx.Args().Get(0)

	buf, err := os.ReadFile(path)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	header, err := hdiimage.ParseHDIHeader(buf)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	fmt.Printf("type %d\n", header.Type)
	fmt.Printf("headerSize %d\n", header.HeaderSize)
	fmt.Printf("dataSize %d\n", header.DataSize)
	fmt.Printf("bytesPerSector %d\n", header.BytesPerSector)
	fmt.Printf("sectors %d\n", header.Sectors)
	fmt.Printf("heads %d\n", header.Heads)
	fmt.Printf("cylinders %d\n", header.Cylinders)

	if ctx.NArg() == 2 {
		outPath := ctx.Args().Get(1)
		fmt.Printf("write image without header to %s\n", outPath)
		payload := buf[header.HeaderSize:]
		if err := os.WriteFile(outPath, payload, 0o644); err != nil {
			return cli.Exit(err.Error(), 1)
		}
	}

	return nil
}
