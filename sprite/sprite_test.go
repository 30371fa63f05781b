package sprite

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"

	"badc0de.net/pkg/atlastrim/ttesting"
)

// filled returns a w×h transparent NRGBA image with the content rectangle
// painted opaque red.
func filled(w, h int, content image.Rectangle) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := content.Min.Y; y < content.Max.Y; y++ {
		for x := content.Min.X; x < content.Max.X; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
		}
	}
	return img
}

func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	var b bytes.Buffer
	if err := png.Encode(&b, img); err != nil {
		t.Fatalf("encode: %s", err)
	}
	if err := os.WriteFile(path, b.Bytes(), 0644); err != nil {
		t.Fatalf("write: %s", err)
	}
	return path
}

func readPNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %s", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %s", err)
	}
	return img
}

func TestContentBounds(t *testing.T) {
	opaquePal := color.Palette{color.Black, color.White}
	clearPal := color.Palette{color.Transparent, color.White}

	gray := image.NewGray(image.Rect(0, 0, 8, 8))
	gray.SetGray(2, 3, color.Gray{Y: 1})
	gray.SetGray(5, 6, color.Gray{Y: 200})

	palOpaque := image.NewPaletted(image.Rect(0, 0, 6, 6), opaquePal)
	palOpaque.SetColorIndex(4, 1, 1)

	palClear := image.NewPaletted(image.Rect(0, 0, 6, 6), clearPal)
	palClear.SetColorIndex(0, 5, 1)

	rgba := image.NewRGBA(image.Rect(0, 0, 4, 4))
	rgba.Set(1, 1, color.RGBA{A: 1})

	for _, tc := range []struct {
		name string
		img  image.Image
		want image.Rectangle
	}{
		{name: "nrgba", img: filled(10, 8, image.Rect(2, 1, 7, 5)), want: image.Rect(2, 1, 7, 5)},
		{name: "nrgba full", img: filled(3, 3, image.Rect(0, 0, 3, 3)), want: image.Rect(0, 0, 3, 3)},
		{name: "nrgba empty", img: filled(3, 3, image.Rectangle{}), want: image.Rectangle{}},
		{name: "single pixel", img: filled(5, 5, image.Rect(4, 4, 5, 5)), want: image.Rect(4, 4, 5, 5)},
		{name: "rgba faint alpha", img: rgba, want: image.Rect(1, 1, 2, 2)},
		{name: "gray black background", img: gray, want: image.Rect(2, 3, 6, 7)},
		{name: "opaque palette index zero background", img: palOpaque, want: image.Rect(4, 1, 5, 2)},
		{name: "transparent palette entry", img: palClear, want: image.Rect(0, 5, 1, 6)},
		{
			name: "offset sub-image",
			img:  filled(10, 10, image.Rect(4, 4, 6, 6)).SubImage(image.Rect(3, 3, 10, 10)),
			want: image.Rect(1, 1, 3, 3),
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := ContentBounds(tc.img); got != tc.want {
				t.Errorf("got %v; want %v", got, tc.want)
			}
		})
	}
}

func TestCropKeepsPixelType(t *testing.T) {
	pal := color.Palette{color.Transparent, color.White, color.NRGBA{R: 10, G: 20, B: 30, A: 128}}
	p := image.NewPaletted(image.Rect(0, 0, 4, 4), pal)
	p.SetColorIndex(1, 1, 2)
	p.SetColorIndex(2, 2, 1)

	got, ok := Crop(p, image.Rect(1, 1, 3, 3)).(*image.Paletted)
	if !ok {
		t.Fatalf("got %T; want *image.Paletted", got)
	}
	ttesting.AssertEqualInt(t, "palette size", len(got.Palette), 3)
	ttesting.AssertEqualInt(t, "index at origin", int(got.ColorIndexAt(0, 0)), 2)
	ttesting.AssertEqualInt(t, "index at 1,1", int(got.ColorIndexAt(1, 1)), 1)
	if got.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Errorf("got bounds %v; want zero-based 2x2", got.Bounds())
	}

	g16 := image.NewGray16(image.Rect(0, 0, 3, 3))
	g16.SetGray16(2, 2, color.Gray16{Y: 0xabcd})
	c16 := Crop(g16, image.Rect(2, 2, 3, 3))
	if v, ok := c16.(*image.Gray16); !ok || v.Gray16At(0, 0).Y != 0xabcd {
		t.Errorf("gray16 crop lost pixel: %#v", c16)
	}

	ycc := image.NewYCbCr(image.Rect(0, 0, 8, 8), image.YCbCrSubsampleRatio420)
	ycc.Y[ycc.YOffset(5, 3)] = 200
	ycc.Cb[ycc.COffset(5, 3)] = 90
	ycc.Cr[ycc.COffset(5, 3)] = 160
	cy, ok := Crop(ycc, image.Rect(4, 2, 8, 6)).(*image.YCbCr)
	if !ok {
		t.Fatalf("got %T; want *image.YCbCr", cy)
	}
	ttesting.AssertEqualString(t, "subsample ratio", cy.SubsampleRatio.String(), ycc.SubsampleRatio.String())
	if got, want := cy.YCbCrAt(1, 1), (color.YCbCr{Y: 200, Cb: 90, Cr: 160}); got != want {
		t.Errorf("ycbcr crop: got %v; want %v", got, want)
	}
}

// TestTrimFormats writes a fixture with a transparent (for JPEG, black)
// margin in every supported format and checks that the trimmed file keeps
// its pixel type and, where the format has one, its alpha channel.
func TestTrimFormats(t *testing.T) {
	translucent := image.NewNRGBA(image.Rect(0, 0, 10, 8))
	for y := 1; y < 5; y++ {
		for x := 2; x < 7; x++ {
			translucent.SetNRGBA(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	translucent.SetNRGBA(3, 2, color.NRGBA{R: 200, G: 100, B: 50, A: 128})

	// Content aligned to JPEG blocks so the margin decodes as exact black.
	blocky := image.NewNRGBA(image.Rect(0, 0, 32, 24))
	for i := range blocky.Pix {
		blocky.Pix[i] = 0
		if i%4 == 3 {
			blocky.Pix[i] = 255
		}
	}
	for y := 8; y < 16; y++ {
		for x := 8; x < 24; x++ {
			blocky.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}

	codecs := DefaultCodecs(DefaultJPEGQuality)
	for _, tc := range []struct {
		ext   string
		img   image.Image
		want  image.Point
		alpha bool
	}{
		{".png", translucent, image.Pt(5, 4), true},
		{".tga", translucent, image.Pt(5, 4), true},
		{".webp", translucent, image.Pt(5, 4), true},
		{".bmp", translucent, image.Pt(5, 4), true},
		{".tiff", translucent, image.Pt(5, 4), true},
		{".jpg", blocky, image.Pt(16, 8), false},
	} {
		t.Run(tc.ext, func(t *testing.T) {
			codec := codecs[tc.ext]
			path := filepath.Join(t.TempDir(), "sprite"+tc.ext)
			var b bytes.Buffer
			if err := codec.Encode(&b, tc.img); err != nil {
				t.Fatalf("encode fixture: %s", err)
			}
			if err := os.WriteFile(path, b.Bytes(), 0644); err != nil {
				t.Fatalf("write: %s", err)
			}
			before, err := decodeFile(path, codec)
			if err != nil {
				t.Fatalf("decode fixture: %s", err)
			}

			res, err := NewTrimmer().Trim(path)
			if err != nil {
				t.Fatalf("Trim: %s", err)
			}
			if !res.Cropped {
				t.Fatalf("not cropped; bounds %v of %v", res.Bounds, res.Size)
			}

			after, err := decodeFile(path, codec)
			if err != nil {
				t.Fatalf("decode trimmed: %s", err)
			}
			if got := after.Bounds().Size(); got != tc.want {
				t.Errorf("trimmed size %v; want %v", got, tc.want)
			}
			ttesting.AssertEqualString(t, "pixel type", fmt.Sprintf("%T", after), fmt.Sprintf("%T", before))
			if tc.alpha {
				if _, _, _, a := after.At(after.Bounds().Min.X+1, after.Bounds().Min.Y+1).RGBA(); a == 0 || a == 0xffff {
					t.Errorf("translucent pixel has alpha %#x after trimming", a)
				}
			}
		})
	}
}

func TestTrimCropsAndReportsBounds(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "hero.png", filled(20, 10, image.Rect(5, 2, 15, 10)))

	res, err := NewTrimmer().Trim(path)
	if err != nil {
		t.Fatalf("Trim: %s", err)
	}
	ttesting.AssertEqualString(t, "format", res.Format, "png")
	if res.Size != image.Pt(20, 10) {
		t.Errorf("got size %v; want 20x10", res.Size)
	}
	if res.Bounds != image.Rect(5, 2, 15, 10) {
		t.Errorf("got bounds %v; want (5,2)-(15,10)", res.Bounds)
	}
	if !res.Cropped {
		t.Errorf("not cropped")
	}

	img := readPNG(t, path)
	if img.Bounds() != image.Rect(0, 0, 10, 8) {
		t.Fatalf("file has bounds %v; want 10x8", img.Bounds())
	}
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0xffff {
		t.Errorf("corner of trimmed image is not opaque")
	}
}

func TestTrimLeavesUntouched(t *testing.T) {
	for _, tc := range []struct {
		name string
		img  image.Image
	}{
		{name: "empty", img: filled(8, 8, image.Rectangle{})},
		{name: "full frame", img: filled(8, 8, image.Rect(0, 0, 8, 8))},
	} {
		t.Run(tc.name, func(t *testing.T) {
			path := writePNG(t, t.TempDir(), "a.png", tc.img)
			before, _ := os.ReadFile(path)

			res, err := NewTrimmer().Trim(path)
			if err != nil {
				t.Fatalf("Trim: %s", err)
			}
			if res.Cropped {
				t.Errorf("reported a crop")
			}
			after, _ := os.ReadFile(path)
			if !bytes.Equal(before, after) {
				t.Errorf("file was rewritten")
			}
		})
	}
}

func TestTrimEmptyReportsNoBounds(t *testing.T) {
	path := writePNG(t, t.TempDir(), "blank.png", filled(4, 4, image.Rectangle{}))
	res, err := NewTrimmer().Trim(path)
	if err != nil {
		t.Fatalf("Trim: %s", err)
	}
	if !res.Empty() {
		t.Errorf("got bounds %v; want empty", res.Bounds)
	}
	if res.Size != image.Pt(4, 4) {
		t.Errorf("got size %v; want 4x4", res.Size)
	}
}

func TestTrimTwiceIsNoop(t *testing.T) {
	path := writePNG(t, t.TempDir(), "a.png", filled(16, 16, image.Rect(3, 4, 9, 12)))
	tr := NewTrimmer()
	if _, err := tr.Trim(path); err != nil {
		t.Fatalf("first Trim: %s", err)
	}
	res, err := tr.Trim(path)
	if err != nil {
		t.Fatalf("second Trim: %s", err)
	}
	if res.Cropped || res.Bounds != image.Rect(0, 0, 6, 8) {
		t.Errorf("second run: cropped=%v bounds=%v; want full 6x8 frame", res.Cropped, res.Bounds)
	}
}

func TestTrimDryRun(t *testing.T) {
	path := writePNG(t, t.TempDir(), "a.png", filled(16, 16, image.Rect(3, 4, 9, 12)))
	before, _ := os.ReadFile(path)

	tr := NewTrimmer()
	tr.DryRun = true
	res, err := tr.Trim(path)
	if err != nil {
		t.Fatalf("Trim: %s", err)
	}
	if !res.Cropped || res.Image.Bounds() != image.Rect(0, 0, 6, 8) {
		t.Errorf("dry run result: cropped=%v image=%v", res.Cropped, res.Image.Bounds())
	}
	after, _ := os.ReadFile(path)
	if !bytes.Equal(before, after) {
		t.Errorf("dry run wrote the file")
	}
}

func TestTrimPalettedPNG(t *testing.T) {
	pal := color.Palette{color.Transparent, color.NRGBA{R: 255, A: 255}}
	p := image.NewPaletted(image.Rect(0, 0, 8, 8), pal)
	p.SetColorIndex(2, 3, 1)
	p.SetColorIndex(4, 5, 1)
	path := writePNG(t, t.TempDir(), "p.png", p)

	if _, err := NewTrimmer().Trim(path); err != nil {
		t.Fatalf("Trim: %s", err)
	}
	img := readPNG(t, path)
	got, ok := img.(*image.Paletted)
	if !ok {
		t.Fatalf("got %T; want *image.Paletted", img)
	}
	if got.Bounds() != image.Rect(0, 0, 3, 3) {
		t.Errorf("got bounds %v; want 3x3", got.Bounds())
	}
	ttesting.AssertEqualInt(t, "palette kept", len(got.Palette), 2)
}

func TestTrimUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.psd")
	os.WriteFile(path, []byte("8BPS"), 0644)

	_, err := NewTrimmer().Trim(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("got %v; want ErrUnsupportedFormat", err)
	}
}

func TestTrimCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.png")
	os.WriteFile(path, []byte("not a png"), 0644)

	if _, err := NewTrimmer().Trim(path); err == nil {
		t.Errorf("corrupt file decoded")
	}
}

func TestTrimKeepsAlphaChannel(t *testing.T) {
	img := filled(12, 12, image.Rect(2, 2, 6, 6))
	img.SetNRGBA(2, 2, color.NRGBA{G: 255, A: 128})
	path := writePNG(t, t.TempDir(), "a.png", img)

	if _, err := NewTrimmer().Trim(path); err != nil {
		t.Fatalf("Trim: %s", err)
	}
	got, ok := readPNG(t, path).(*image.NRGBA)
	if !ok {
		t.Fatalf("alpha channel lost")
	}
	ttesting.AssertEqualInt(t, "translucent corner", int(got.NRGBAAt(0, 0).A), 128)
}
