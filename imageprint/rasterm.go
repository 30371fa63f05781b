//go:build !windows

package imageprint

import (
	"fmt"
	"image"
	"io"

	"github.com/BourgeoisBear/rasterm"
	"github.com/andybons/gogif"
	"github.com/pkg/errors"
)

// printRasTerm draws an image using the RasTerm library, preferring kitty,
// then iTerm, then sixel graphics.
func printRasTerm(w io.Writer, i image.Image) error {
	var err error
	switch {
	case rasterm.IsTermKitty():
		err = rasterm.Settings{}.KittyWriteImage(w, i)
	case rasterm.IsTermItermWez():
		err = rasterm.Settings{}.ItermWriteImage(w, i)
	default:
		capable, cerr := rasterm.IsSixelCapable()
		if cerr != nil || !capable {
			return errors.New("imageprint: terminal supports neither kitty, iterm nor sixel graphics")
		}
		palettedImage := image.NewPaletted(i.Bounds(), nil)
		quantizer := gogif.MedianCutQuantizer{NumColor: 64}
		quantizer.Quantize(palettedImage, i.Bounds(), i, i.Bounds().Min)
		err = rasterm.Settings{}.SixelWriteImage(w, palettedImage)
	}
	if err != nil {
		return errors.Wrap(err, "imageprint: rasterm")
	}
	_, err = fmt.Fprintln(w)
	return err
}
