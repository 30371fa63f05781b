package sprite

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// ContentBounds returns the smallest rectangle holding all visible pixels of
// img, in zero-based coordinates with exclusive Max. It returns the empty
// rectangle when nothing is visible.
//
// For color models with alpha a pixel is visible when its alpha is non-zero.
// Models without alpha treat black (or palette index 0, for fully opaque
// palettes) as background.
func ContentBounds(img image.Image) image.Rectangle {
	b := img.Bounds()
	visible := visibility(img)

	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !visible(x, y) {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}

	if maxX < minX || maxY < minY {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1).Sub(b.Min)
}

func visibility(img image.Image) func(x, y int) bool {
	switch m := img.(type) {
	case *image.NRGBA:
		return func(x, y int) bool { return m.Pix[m.PixOffset(x, y)+3] > 0 }
	case *image.RGBA:
		return func(x, y int) bool { return m.Pix[m.PixOffset(x, y)+3] > 0 }
	case *image.Gray:
		return func(x, y int) bool { return m.Pix[m.PixOffset(x, y)] > 0 }
	case *image.Gray16:
		return func(x, y int) bool {
			i := m.PixOffset(x, y)
			return m.Pix[i]|m.Pix[i+1] > 0
		}
	case *image.Paletted:
		if hasTransparency(m.Palette) {
			return func(x, y int) bool {
				i := int(m.ColorIndexAt(x, y))
				if i >= len(m.Palette) {
					return true
				}
				_, _, _, a := m.Palette[i].RGBA()
				return a > 0
			}
		}
		return func(x, y int) bool { return m.ColorIndexAt(x, y) != 0 }
	case *image.YCbCr, *image.CMYK:
		return func(x, y int) bool {
			r, g, b, _ := m.At(x, y).RGBA()
			return r|g|b > 0
		}
	default:
		return func(x, y int) bool {
			_, _, _, a := img.At(x, y).RGBA()
			return a > 0
		}
	}
}

func hasTransparency(p color.Palette) bool {
	for _, c := range p {
		if _, _, _, a := c.RGBA(); a < 0xffff {
			return true
		}
	}
	return false
}

// Crop copies the r part of img into a new image whose bounds start at the
// origin. The pixel type is kept for the standard in-memory formats, paletted
// images keep their palette and YCbCr images their subsample ratio. Anything
// else becomes NRGBA.
//
// r uses img's own coordinates.
func Crop(img image.Image, r image.Rectangle) image.Image {
	r = r.Intersect(img.Bounds())
	dr := image.Rect(0, 0, r.Dx(), r.Dy())

	switch m := img.(type) {
	case *image.NRGBA:
		dst := image.NewNRGBA(dr)
		copyRows(dst.Pix, dst.Stride, m.Pix, m.Stride, m.PixOffset(r.Min.X, r.Min.Y), r.Dx()*4, r.Dy())
		return dst
	case *image.RGBA:
		dst := image.NewRGBA(dr)
		copyRows(dst.Pix, dst.Stride, m.Pix, m.Stride, m.PixOffset(r.Min.X, r.Min.Y), r.Dx()*4, r.Dy())
		return dst
	case *image.NRGBA64:
		dst := image.NewNRGBA64(dr)
		copyRows(dst.Pix, dst.Stride, m.Pix, m.Stride, m.PixOffset(r.Min.X, r.Min.Y), r.Dx()*8, r.Dy())
		return dst
	case *image.RGBA64:
		dst := image.NewRGBA64(dr)
		copyRows(dst.Pix, dst.Stride, m.Pix, m.Stride, m.PixOffset(r.Min.X, r.Min.Y), r.Dx()*8, r.Dy())
		return dst
	case *image.Gray:
		dst := image.NewGray(dr)
		copyRows(dst.Pix, dst.Stride, m.Pix, m.Stride, m.PixOffset(r.Min.X, r.Min.Y), r.Dx(), r.Dy())
		return dst
	case *image.Gray16:
		dst := image.NewGray16(dr)
		copyRows(dst.Pix, dst.Stride, m.Pix, m.Stride, m.PixOffset(r.Min.X, r.Min.Y), r.Dx()*2, r.Dy())
		return dst
	case *image.CMYK:
		dst := image.NewCMYK(dr)
		copyRows(dst.Pix, dst.Stride, m.Pix, m.Stride, m.PixOffset(r.Min.X, r.Min.Y), r.Dx()*4, r.Dy())
		return dst
	case *image.Paletted:
		pal := make(color.Palette, len(m.Palette))
		copy(pal, m.Palette)
		dst := image.NewPaletted(dr, pal)
		copyRows(dst.Pix, dst.Stride, m.Pix, m.Stride, m.PixOffset(r.Min.X, r.Min.Y), r.Dx(), r.Dy())
		return dst
	case *image.YCbCr:
		dst := image.NewYCbCr(dr, m.SubsampleRatio)
		for y := 0; y < r.Dy(); y++ {
			copy(dst.Y[y*dst.YStride:y*dst.YStride+r.Dx()], m.Y[m.YOffset(r.Min.X, r.Min.Y+y):])
			for x := 0; x < r.Dx(); x++ {
				di, si := dst.COffset(x, y), m.COffset(r.Min.X+x, r.Min.Y+y)
				dst.Cb[di] = m.Cb[si]
				dst.Cr[di] = m.Cr[si]
			}
		}
		return dst
	default:
		dst := image.NewNRGBA(dr)
		draw.Draw(dst, dr, img, r.Min, draw.Src)
		return dst
	}
}

func copyRows(dst []uint8, dstStride int, src []uint8, srcStride, srcOff, rowLen, rows int) {
	for y := 0; y < rows; y++ {
		copy(dst[y*dstStride:y*dstStride+rowLen], src[srcOff+y*srcStride:srcOff+y*srcStride+rowLen])
	}
}
