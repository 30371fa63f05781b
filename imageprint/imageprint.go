// Package imageprint prints images on terminal.
//
// It is used to preview trimmed sprites together with their pivot.
package imageprint

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	ic "image/color"
	"image/png"
	"io"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/pkg/errors"
)

// Mode selects how pixels reach the terminal.
type Mode int

const (
	// Mode24bit changes the background colour using 24bit escape sequences.
	Mode24bit Mode = iota
	// Mode256 leaves colour rendering to gookit/color, which downgrades to
	// the 256 colour palette where needed.
	Mode256
	// ModeNoColor draws ascii art without any escape sequences.
	ModeNoColor
	// ModeITerm sends an inline PNG using iTerm2's escape sequences.
	ModeITerm
	// ModeRasTerm uses kitty, iTerm or sixel graphics, whichever the
	// terminal supports.
	ModeRasTerm
)

var modeNames = []string{"24bit", "256", "nocolor", "iterm", "rasterm"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode returns the mode called s.
func ParseMode(s string) (Mode, error) {
	for i, n := range modeNames {
		if strings.EqualFold(s, n) {
			return Mode(i), nil
		}
	}
	return 0, errors.Errorf("imageprint: unknown mode %q; want one of %s", s, strings.Join(modeNames, ", "))
}

// Pixel modes print every pixel as two character cells.
func (m Mode) pixels() bool {
	return m != ModeITerm && m != ModeRasTerm
}

// Printer writes images to W.
type Printer struct {
	W    io.Writer
	Mode Mode
	// Blanks prints coloured spaces instead of shading characters.
	Blanks bool
}

// NewPrinter returns a Printer writing to stdout.
func NewPrinter(mode Mode) *Printer {
	return &Printer{W: os.Stdout, Mode: mode, Blanks: true}
}

// Print draws i. name is passed to terminals that display a file name.
func (p *Printer) Print(i image.Image, name string) error {
	switch p.Mode {
	case ModeITerm:
		return p.printITerm(i, name)
	case ModeRasTerm:
		return printRasTerm(p.W, i)
	}

	var b strings.Builder
	for y := i.Bounds().Min.Y; y < i.Bounds().Max.Y; y++ {
		for x := i.Bounds().Min.X; x < i.Bounds().Max.X; x++ {
			p.shade(&b, i.At(x, y))
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(p.W, b.String())
	return err
}

func (p *Printer) shade(b *strings.Builder, col ic.Color) {
	cR, cG, cB, cA := col.RGBA()
	if cA == 0 {
		b.WriteString("  ")
		return
	}

	cell := "  "
	if !p.Blanks || p.Mode == ModeNoColor {
		a := ((cR + cG + cB) / 3) >> 8
		switch {
		case a < 32:
			cell = ".."
		case a < 64:
			cell = "--"
		case a < 128:
			cell = "=="
		default:
			cell = "##"
		}
	}

	switch p.Mode {
	case ModeNoColor:
		b.WriteString(cell)
	case Mode256:
		b.WriteString(color.RGB(uint8(cR>>8), uint8(cG>>8), uint8(cB>>8), true).Sprint(cell))
	default:
		fmt.Fprintf(b, "\x1b[48;2;%d;%d;%dm%s\x1b[0m", uint8(cR>>8), uint8(cG>>8), uint8(cB>>8), cell)
	}
}

// printITerm draws an image using iTerm2's escape sequences.
//
// https://www.iterm2.com/documentation-images.html
func (p *Printer) printITerm(i image.Image, fn string) error {
	b := &bytes.Buffer{}
	bEnc := base64.NewEncoder(base64.StdEncoding, b)
	if err := png.Encode(bEnc, i); err != nil {
		return errors.Wrap(err, "imageprint: encoding preview")
	}
	bEnc.Close()
	name := base64.StdEncoding.EncodeToString([]byte(fn))
	_, err := fmt.Fprintf(p.W, "\n\033]1337;File=name=%s;inline=1;size=%d;width=%dpx;height=%dpx:%s\a\n", name, b.Len(), i.Bounds().Dx(), i.Bounds().Dy(), b.String())
	return err
}

// MarkerColor is the colour of the pivot crosshair drawn by MarkPivot.
var MarkerColor = ic.NRGBA{R: 255, G: 0, B: 255, A: 255}
