// Package paths locates the project an atlas belongs to and maps
// atlas-relative asset paths onto the filesystem.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// DefaultMarker is the file whose presence marks the root of a Defold project.
const DefaultMarker = "game.project"

var (
	// ErrProjectNotFound is returned when no ancestor directory contains the
	// marker file.
	ErrProjectNotFound = errors.New("project marker not found")

	// ErrOutsideProject is returned by Resolve for asset paths that climb
	// above the project root.
	ErrOutsideProject = errors.New("asset path leaves the project root")
)

// Locator finds a project root by looking for Marker in the parent
// directories of a path.
type Locator struct {
	Marker string
}

// NewLocator returns a Locator looking for the passed marker, or for
// DefaultMarker if marker is empty.
func NewLocator(marker string) Locator {
	if marker == "" {
		marker = DefaultMarker
	}
	return Locator{Marker: marker}
}

// Root walks up from the directory containing start and returns the first
// directory holding the marker file. The walk stops at the filesystem root or
// at a mount point, whichever comes first.
func (l Locator) Root(start string) (string, error) {
	marker := l.Marker
	if marker == "" {
		marker = DefaultMarker
	}

	abs, err := filepath.Abs(start)
	if err != nil {
		return "", errors.Wrapf(err, "paths: making %q absolute", start)
	}

	dir := filepath.Dir(abs)
	for {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			glog.V(1).Infof("paths.Root(%q)=%s", start, dir)
			return dir, nil
		}
		if isMount(dir) {
			return "", errors.Wrapf(ErrProjectNotFound, "%s above %s", marker, abs)
		}
		dir = filepath.Dir(dir)
	}
}

// Resolve maps an atlas path such as "/assets/hero/idle.png" onto the
// filesystem below root.
func Resolve(root, assetPath string) (string, error) {
	if assetPath == "" {
		return "", errors.New("paths: empty asset path")
	}
	full := filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(assetPath, "/")))

	rel, err := filepath.Rel(root, full)
	if err != nil {
		return "", errors.Wrapf(err, "paths: relating %q to %q", assetPath, root)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Wrapf(ErrOutsideProject, "%q", assetPath)
	}
	return full, nil
}
