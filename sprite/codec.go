package sprite

import (
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// DefaultJPEGQuality is used when re-encoding trimmed JPEG files.
const DefaultJPEGQuality = 95

// Codec reads and writes one image file format.
type Codec struct {
	Name   string
	Decode func(io.Reader) (image.Image, error)
	Encode func(io.Writer, image.Image) error
}

// DefaultCodecs returns the supported formats keyed by lower-case file
// extension.
//
// JPEG cannot be cropped losslessly; trimmed JPEGs are re-encoded at
// jpegQuality.
func DefaultCodecs(jpegQuality int) map[string]Codec {
	pngCodec := Codec{
		Name:   "png",
		Decode: png.Decode,
		Encode: func(w io.Writer, m image.Image) error {
			enc := png.Encoder{CompressionLevel: png.BestCompression}
			return enc.Encode(w, m)
		},
	}
	jpegCodec := Codec{
		Name:   "jpeg",
		Decode: jpeg.Decode,
		Encode: func(w io.Writer, m image.Image) error {
			return jpeg.Encode(w, m, &jpeg.Options{Quality: jpegQuality})
		},
	}
	tiffCodec := Codec{
		Name:   "tiff",
		Decode: tiff.Decode,
		Encode: func(w io.Writer, m image.Image) error {
			return tiff.Encode(w, m, &tiff.Options{Compression: tiff.Deflate})
		},
	}

	return map[string]Codec{
		".png":  pngCodec,
		".jpg":  jpegCodec,
		".jpeg": jpegCodec,
		".tif":  tiffCodec,
		".tiff": tiffCodec,
		".bmp": {
			Name:   "bmp",
			Decode: bmp.Decode,
			Encode: bmp.Encode,
		},
		".webp": {
			Name:   "webp",
			Decode: webp.Decode,
			Encode: func(w io.Writer, m image.Image) error {
				return nativewebp.Encode(w, m, nil)
			},
		},
		".tga": {
			Name:   "tga",
			Decode: tga.Decode,
			Encode: tga.Encode,
		},
	}
}
