// Package trim trims every image of an atlas and moves the pivots so they
// keep marking the same spot of the artwork.
package trim

import (
	"fmt"
	"os"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"badc0de.net/pkg/atlastrim/atlas"
	"badc0de.net/pkg/atlastrim/paths"
	"badc0de.net/pkg/atlastrim/pivot"
	"badc0de.net/pkg/atlastrim/sprite"
)

// Trimmer crops one image file. *sprite.Trimmer implements it.
type Trimmer interface {
	Trim(path string) (sprite.Result, error)
}

// Options control a run.
type Options struct {
	// Backup copies every file to <name><BackupSuffix> before changing it.
	Backup       bool
	BackupSuffix string
	// DryRun computes new pivots without writing any file.
	DryRun bool
}

// Runner processes atlas documents.
type Runner struct {
	Trimmer Trimmer
	Options

	// Observer, if set, is called for every entry whose image was trimmed or
	// found to be already trimmed.
	Observer func(Entry)
}

// NewRunner returns a Runner trimming with the default codecs.
func NewRunner(opts Options) *Runner {
	t := sprite.NewTrimmer()
	t.DryRun = opts.DryRun
	return &Runner{Trimmer: t, Options: opts}
}

// Entry is the outcome for one processed image entry.
type Entry struct {
	Label  string
	Path   string
	Before pivot.Pivot
	After  pivot.Pivot
	// Border is the padding After was computed for.
	Border int
	Result sprite.Result
}

// Report summarizes a run.
type Report struct {
	Entries  []Entry
	Warnings []Warning
	// Trimmed counts entries whose image was cropped.
	Trimmed int
}

func (r *Report) warn(w Warning) {
	glog.Warningf("trim: skipping %s", w)
	r.Warnings = append(r.Warnings, w)
}

// Summary returns a human-readable account of the run, one line per
// warning.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d images processed, %d trimmed, %d skipped", len(r.Entries), r.Trimmed, len(r.Warnings))
	for _, w := range r.Warnings {
		b.WriteString("\n  warning: ")
		b.WriteString(w.String())
	}
	return b.String()
}

// Run trims the images of every entry of doc and rewrites their pivots,
// padding each sprite by border. Image paths are resolved against
// projectRoot. The document itself is only modified in memory.
//
// Missing or empty images are recorded as warnings. Any other error stops
// the run; images trimmed before it stay trimmed.
func (r *Runner) Run(doc *atlas.Document, projectRoot string, border int) (*Report, error) {
	rep := &Report{}
	// Images shared by several entries are trimmed once; later entries reuse
	// the bounds found in the untrimmed file.
	seen := make(map[string]sprite.Result)
	for it := doc.ImageEntries(); it.Next(); {
		if err := r.entry(rep, seen, it.Entry(), projectRoot, border); err != nil {
			return rep, err
		}
	}
	glog.Infof("trim: %d images, %d trimmed, %d warnings", len(rep.Entries), rep.Trimmed, len(rep.Warnings))
	return rep, nil
}

func (r *Runner) entry(rep *Report, seen map[string]sprite.Result, e *atlas.ImageEntry, projectRoot string, border int) error {
	label := e.Label()

	assetPath, ok := e.Path()
	if !ok {
		rep.warn(Warning{Kind: MissingPath, Entry: label})
		return nil
	}
	path, err := paths.Resolve(projectRoot, assetPath)
	if err != nil {
		rep.warn(Warning{Kind: OutsideProject, Entry: label, Path: assetPath, Err: err})
		return nil
	}
	if fi, err := os.Stat(path); err != nil || !fi.Mode().IsRegular() {
		rep.warn(Warning{Kind: ImageMissing, Entry: label, Path: path, Err: err})
		return nil
	}

	before, err := e.Pivot()
	if err != nil {
		return &EntryError{Entry: label, Path: path, Err: errors.Wrap(ErrDocumentParse, err.Error())}
	}

	res, ok := seen[path]
	if ok {
		glog.V(1).Infof("trim: %s reuses %s", label, path)
	} else {
		if r.Backup && !r.DryRun {
			if err := backup(path, r.BackupSuffix); err != nil {
				return &EntryError{Entry: label, Path: path, Err: err}
			}
		}

		res, err = r.Trimmer.Trim(path)
		switch {
		case errors.Is(err, sprite.ErrUnsupportedFormat):
			rep.warn(Warning{Kind: UnsupportedFormat, Entry: label, Path: path, Err: err})
			return nil
		case err != nil:
			return &EntryError{Entry: label, Path: path, Err: err}
		}
		seen[path] = res
	}

	if res.Empty() {
		rep.warn(Warning{Kind: EmptyImage, Entry: label, Path: path})
		return nil
	}

	after := before
	if res.Cropped {
		after = pivot.Recalculate(res.Size, before, res.Bounds, border)
		e.SetPivot(after)
		rep.Trimmed++
	}
	glog.V(1).Infof("trim: %s %s pivot %v -> %v", label, assetPath, before, after)

	ent := Entry{Label: label, Path: path, Before: before, After: after, Border: border, Result: res}
	rep.Entries = append(rep.Entries, ent)
	if r.Observer != nil {
		r.Observer(ent)
	}
	return nil
}

// TrimAtlas runs the whole pipeline for the atlas file at atlasPath: find
// the project root, optionally back up the atlas, parse it, trim every image
// and write the document back once at the end.
//
// The atlas file is not written if any fatal error happens, nor in dry-run
// mode.
func (r *Runner) TrimAtlas(atlasPath string, loc paths.Locator, schema atlas.Schema) (*Report, error) {
	if fi, err := os.Stat(atlasPath); err != nil || !fi.Mode().IsRegular() {
		return nil, errors.Wrapf(ErrDocumentNotFound, "%s", atlasPath)
	}

	root, err := loc.Root(atlasPath)
	if err != nil {
		return nil, err
	}

	if r.Backup && !r.DryRun {
		if err := backup(atlasPath, r.BackupSuffix); err != nil {
			return nil, err
		}
	}

	doc, err := schema.ReadFile(atlasPath)
	if err != nil {
		return nil, errors.Wrapf(ErrDocumentParse, "%s: %v", atlasPath, err)
	}
	border, err := doc.Border()
	if err != nil {
		return nil, errors.Wrapf(ErrDocumentParse, "%s: %v", atlasPath, err)
	}
	glog.V(1).Infof("trim: project %s, border %d", root, border)

	rep, err := r.Run(doc, root, border)
	if err != nil {
		return rep, err
	}
	if r.DryRun {
		return rep, nil
	}
	if err := doc.WriteFile(atlasPath); err != nil {
		return rep, errors.Wrapf(ErrWrite, "%v", err)
	}
	return rep, nil
}
