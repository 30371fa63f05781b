package trim

import (
	"fmt"

	"github.com/pkg/errors"
)

// Fatal conditions. Errors returned by Run and TrimAtlas wrap one of these,
// or paths.ErrProjectNotFound, and can be tested with errors.Is.
var (
	ErrDocumentNotFound = errors.New("atlas document not found")
	ErrDocumentParse    = errors.New("malformed atlas document")
	ErrBackup           = errors.New("backup failed")
	ErrWrite            = errors.New("writing atlas document failed")
)

// EntryError is a fatal error while processing one image entry.
type EntryError struct {
	Entry string // entry label, such as images[3]
	Path  string // image file
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Entry, e.Path, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

// Cause lets github.com/pkg/errors.Cause see through the entry context.
func (e *EntryError) Cause() error { return e.Err }

// WarningKind classifies conditions that skip an entry without failing the
// run.
type WarningKind int

const (
	ImageMissing WarningKind = iota
	EmptyImage
	UnsupportedFormat
	MissingPath
	OutsideProject
)

func (k WarningKind) String() string {
	switch k {
	case ImageMissing:
		return "image missing"
	case EmptyImage:
		return "image has no visible pixels"
	case UnsupportedFormat:
		return "unsupported image format"
	case MissingPath:
		return "entry has no image path"
	case OutsideProject:
		return "image outside the project"
	default:
		return fmt.Sprintf("WarningKind(%d)", int(k))
	}
}

// Warning records a skipped entry.
type Warning struct {
	Kind  WarningKind
	Entry string
	Path  string
	Err   error
}

func (w Warning) String() string {
	s := fmt.Sprintf("%s: %s", w.Entry, w.Kind)
	if w.Path != "" {
		s += " (" + w.Path + ")"
	}
	return s
}
