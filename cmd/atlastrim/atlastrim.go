// Command atlastrim trims the transparent margins of every image listed in an
// atlas file and updates the pivots so sprites stay anchored to the same spot.
//
// Usage:
//
//	atlastrim [flags] path/to/file.atlas
package main

import (
	"flag"
	"fmt"
	"os"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/golang/glog"
	"github.com/gookit/color"
	"github.com/pkg/errors"

	"badc0de.net/pkg/atlastrim/atlas"
	"badc0de.net/pkg/atlastrim/paths"
	"badc0de.net/pkg/atlastrim/sprite"
	"badc0de.net/pkg/atlastrim/trim"
)

var (
	backup       = flag.Bool("backup", false, "whether to copy every file to <name><backup_suffix> before changing it")
	backupSuffix = flag.String("backup_suffix", trim.DefaultBackupSuffix, "suffix of backup copies")
	borderAttr   = flag.String("border_attr", atlas.DefaultSchema.BorderAttr, "top-level atlas attribute holding the padding around each sprite")
	jpegQuality  = flag.Int("jpeg_quality", sprite.DefaultJPEGQuality, "quality used when rewriting JPEG images")
	dryRun       = flag.Bool("dry_run", false, "whether to only report the new pivots without writing any file")

	projectMarker string
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <file.atlas>\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	paths.SetupMarkerFlag("project_marker", &projectMarker)
	setupPreviewFlags()
	flag.Usage = usage
	flagutil.Parse()
	flag.Set("logtostderr", "true")

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0)); err != nil {
		glog.Errorf("atlastrim: %v", err)
		color.Red.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(atlasPath string) error {
	if *jpegQuality < 1 || *jpegQuality > 100 {
		return errors.Errorf("-jpeg_quality must be between 1 and 100, got %d", *jpegQuality)
	}
	schema := atlas.DefaultSchema
	schema.BorderAttr = *borderAttr

	r := trim.NewRunner(trim.Options{
		Backup:       *backup,
		BackupSuffix: *backupSuffix,
		DryRun:       *dryRun,
	})
	st := sprite.NewTrimmer()
	st.Codecs = sprite.DefaultCodecs(*jpegQuality)
	st.DryRun = *dryRun
	r.Trimmer = st

	obs, err := previewObserver()
	if err != nil {
		return err
	}
	r.Observer = obs

	rep, err := r.TrimAtlas(atlasPath, paths.NewLocator(projectMarker), schema)
	if err != nil {
		return err
	}

	if *dryRun {
		for _, e := range rep.Entries {
			if e.Result.Cropped {
				fmt.Printf("%s: %s %v -> %v\n", e.Label, e.Path, e.Before, e.After)
			}
		}
	}
	if len(rep.Warnings) > 0 {
		color.Yellow.Println(rep.Summary())
	} else {
		fmt.Println(rep.Summary())
	}
	color.Green.Println("Ok")
	return nil
}
