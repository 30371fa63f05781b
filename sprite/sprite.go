// Package sprite trims sprite images to their visible content.
package sprite

import (
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// ErrUnsupportedFormat is returned for files whose extension has no codec.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Result describes one trimmed image.
type Result struct {
	// Format is the codec name, such as "png".
	Format string
	// Size is the size of the image before trimming.
	Size image.Point
	// Bounds is the visible content in the untrimmed image, empty if the image
	// has no visible pixels.
	Bounds image.Rectangle
	// Cropped is set when Bounds is smaller than the image and the file was
	// (or, in dry-run mode, would have been) rewritten.
	Cropped bool
	// Image is the trimmed image, or the decoded one if nothing was cropped.
	Image image.Image
}

// Empty reports whether the image had no visible content.
func (r Result) Empty() bool {
	return r.Bounds.Empty()
}

// Trimmer crops image files in place.
type Trimmer struct {
	// Codecs maps lower-case file extensions to formats. Files with other
	// extensions are rejected.
	Codecs map[string]Codec
	// DryRun computes results without writing files.
	DryRun bool
}

// NewTrimmer returns a Trimmer using DefaultCodecs.
func NewTrimmer() *Trimmer {
	return &Trimmer{Codecs: DefaultCodecs(DefaultJPEGQuality)}
}

// Trim decodes the image at path, finds its visible content and, if that is
// smaller than the image, overwrites the file with the cropped image in the
// same format.
//
// Files without visible content, and files whose content already fills the
// frame, are left untouched.
func (t *Trimmer) Trim(path string) (Result, error) {
	codecs := t.Codecs
	if codecs == nil {
		codecs = DefaultCodecs(DefaultJPEGQuality)
	}
	codec, ok := codecs[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return Result{}, errors.Wrapf(ErrUnsupportedFormat, "%s", path)
	}

	img, err := decodeFile(path, codec)
	if err != nil {
		return Result{}, err
	}

	b := img.Bounds()
	res := Result{
		Format: codec.Name,
		Size:   b.Size(),
		Bounds: ContentBounds(img),
		Image:  img,
	}
	switch {
	case res.Empty():
		glog.V(1).Infof("sprite: %s has no visible pixels", path)
		return res, nil
	case res.Bounds == image.Rect(0, 0, res.Size.X, res.Size.Y):
		glog.V(2).Infof("sprite: %s already trimmed", path)
		return res, nil
	}

	res.Image = Crop(img, res.Bounds.Add(b.Min))
	res.Cropped = true
	glog.V(1).Infof("sprite: %s %dx%d -> %v", path, res.Size.X, res.Size.Y, res.Bounds)
	if t.DryRun {
		return res, nil
	}

	if err := encodeFile(path, codec, res.Image); err != nil {
		return Result{}, err
	}
	return res, nil
}

func decodeFile(path string, codec Codec) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "sprite: opening %s", path)
	}
	defer f.Close()

	img, err := codec.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "sprite: decoding %s as %s", path, codec.Name)
	}
	return img, nil
}

// encodeFile replaces path with img, going through a temporary file in the
// same directory so a failed encode leaves the original intact.
func encodeFile(path string, codec Codec, img image.Image) error {
	fi, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(err, "sprite: stat %s", path)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return errors.Wrapf(err, "sprite: creating temporary file for %s", path)
	}
	defer os.Remove(tmp.Name())

	if err := codec.Encode(tmp, img); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "sprite: encoding %s as %s", path, codec.Name)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "sprite: closing %s", tmp.Name())
	}
	if err := os.Chmod(tmp.Name(), fi.Mode().Perm()); err != nil {
		return errors.Wrapf(err, "sprite: chmod %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "sprite: replacing %s", path)
	}
	return nil
}
