package imageprint

import (
	"image"
	"math"

	"github.com/golang/glog"
	"github.com/nfnt/resize"
	"golang.org/x/image/draw"

	"badc0de.net/pkg/atlastrim/pivot"
)

// TermSize is the size of a terminal window.
type TermSize struct {
	WSRow, WSCol       uint
	WSXPixel, WSYPixel uint
}

// Fit scales i down so it fits in half of the terminal, keeping its aspect
// ratio. Images that already fit, and images printed on terminals whose size
// is unknown, are returned unchanged.
func (p *Printer) Fit(i image.Image) image.Image {
	ts, err := GetTermSize()
	if err != nil {
		glog.V(2).Infof("imageprint: terminal size unknown: %v", err)
		return i
	}
	return FitSize(i, ts, p.Mode)
}

// FitSize is Fit for a known terminal size.
func FitSize(i image.Image, ts TermSize, m Mode) image.Image {
	var maxW, maxH uint
	if !m.pixels() && ts.WSXPixel != 0 && ts.WSYPixel != 0 {
		// Graphics protocols draw in native pixels.
		maxW, maxH = ts.WSXPixel/2, ts.WSYPixel/2
	} else {
		// One image pixel is two cells wide and one cell tall.
		maxW, maxH = ts.WSCol/2, ts.WSRow
		if maxH > 1 {
			maxH--
		}
	}
	if maxW == 0 || maxH == 0 {
		return i
	}
	return resize.Thumbnail(maxW, maxH, i, resize.Lanczos3)
}

// MarkPivot returns a copy of the trimmed sprite i padded by border
// transparent pixels on every side, with a crosshair drawn at pivot p of the
// padded frame. Parts of the crosshair outside the frame are not drawn.
func MarkPivot(i image.Image, p pivot.Pivot, border int) *image.NRGBA {
	if border < 0 {
		border = 0
	}
	sz := i.Bounds().Size()
	frame := image.Rect(0, 0, sz.X+2*border, sz.Y+2*border)
	out := image.NewNRGBA(frame)
	draw.Draw(out, image.Rectangle{Min: image.Pt(border, border), Max: image.Pt(border+sz.X, border+sz.Y)}, i, i.Bounds().Min, draw.Src)

	at := PivotPixel(frame.Size(), p)
	arm := 2
	if m := min(frame.Dx(), frame.Dy()) / 8; m > arm {
		arm = m
	}
	for d := -arm; d <= arm; d++ {
		for _, pt := range []image.Point{at.Add(image.Pt(d, 0)), at.Add(image.Pt(0, d))} {
			if pt.In(frame) {
				out.SetNRGBA(pt.X, pt.Y, MarkerColor)
			}
		}
	}
	return out
}

// PivotPixel returns the pixel of a frame of the passed size holding pivot
// p. The result lies outside the frame for pivots outside [0, 1].
func PivotPixel(size image.Point, p pivot.Pivot) image.Point {
	px := func(f float64, n int) int {
		v := int(math.Floor(f * float64(n)))
		if f == 1 && n > 0 {
			v = n - 1
		}
		return v
	}
	return image.Pt(px(p.X, size.X), px(p.Y, size.Y))
}
