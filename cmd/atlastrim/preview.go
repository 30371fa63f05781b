package main

import (
	"flag"
	"fmt"
	"image"

	"github.com/golang/glog"

	"badc0de.net/pkg/atlastrim/imageprint"
	"badc0de.net/pkg/atlastrim/trim"
)

var (
	preview     = flag.Bool("preview", false, "whether to print every trimmed sprite with its new pivot on the terminal")
	downsize    = flag.Bool("downsize", true, "whether to shrink previews to fit the terminal")
	previewMode string
)

func setupPreviewFlags() {
	flag.StringVar(&previewMode, "preview_mode", imageprint.Mode24bit.String(), "how to draw previews: 24bit, 256, nocolor, iterm or rasterm")
}

// previewObserver returns the trim.Runner observer printing trimmed sprites,
// or nil if previews are off.
func previewObserver() (func(trim.Entry), error) {
	if !*preview {
		return nil, nil
	}
	mode, err := imageprint.ParseMode(previewMode)
	if err != nil {
		return nil, err
	}
	p := imageprint.NewPrinter(mode)

	return func(e trim.Entry) {
		if !e.Result.Cropped || e.Result.Image == nil {
			return
		}
		var img image.Image = imageprint.MarkPivot(e.Result.Image, e.After, e.Border)
		if *downsize {
			img = p.Fit(img)
		}
		fmt.Printf("%s %s pivot %v -> %v\n", e.Label, e.Path, e.Before, e.After)
		if err := p.Print(img, e.Path); err != nil {
			glog.Warningf("preview of %s: %v", e.Path, err)
		}
	}, nil
}
