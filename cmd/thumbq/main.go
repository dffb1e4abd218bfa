package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

const DESCRIPTION = `thumbq decodes the given PNG, JPEG or GIF images and writes a
PNG thumbnail of each one to the output directory. Resizing happens on a
single background worker; the same file listed twice is resized once.`

func Execute(args []string) error {
	app := cli.App{
		Name:        "thumbq",
		HelpName:    "thumbq",
		Usage:       "render image thumbnails on a background worker",
		UsageText:   "thumbq [options] <image>...",
		Description: DESCRIPTION,
		Flags:       thumbFlags,
		Action:      thumbnail,
		HideVersion: true,
	}
	return app.Run(args)
}

func main() {
	if err := Execute(os.Args); err != nil {
		fmt.Printf("thumbq: %s\n", err.Error())
		os.Exit(1)
	}
}
