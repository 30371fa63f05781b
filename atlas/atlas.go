// Package atlas reads, edits and writes Defold atlas documents.
//
// An atlas is a protobuf text file listing standalone images and animation
// groups:
//
//	animations {
//	  id: "run"
//	  images {
//	    image: "/assets/hero/run1.png"
//	  }
//	  playback: PLAYBACK_LOOP_FORWARD
//	}
//	images {
//	  image: "/assets/hero/idle.png"
//	  pivot_x: 0.5
//	  pivot_y: 1.0
//	}
//	inner_padding: 2
//
// The document is kept as a tree that remembers every byte of the input, so
// writing an unmodified document reproduces it exactly and edits touch only
// the attributes they change.
package atlas

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"badc0de.net/pkg/atlastrim/pivot"
)

// Schema names the elements and attributes the document model looks at.
type Schema struct {
	ImagesElement     string
	AnimationsElement string
	ImageAttr         string
	IDAttr            string
	PivotXAttr        string
	PivotYAttr        string
	BorderAttr        string
}

// DefaultSchema matches the atlas files written by the Defold editor.
var DefaultSchema = Schema{
	ImagesElement:     "images",
	AnimationsElement: "animations",
	ImageAttr:         "image",
	IDAttr:            "id",
	PivotXAttr:        "pivot_x",
	PivotYAttr:        "pivot_y",
	BorderAttr:        "inner_padding",
}

// Document is a parsed atlas.
type Document struct {
	Schema Schema

	root *Element
}

// Root returns the top-level element. It has no name and no braces.
func (d *Document) Root() *Element {
	return d.root
}

// Border returns the padding applied around every sprite, 0 if unset.
func (d *Document) Border() (int, error) {
	b, err := d.root.Field(d.Schema.BorderAttr).Int(0)
	if err != nil {
		return 0, err
	}
	if b < 0 {
		return 0, errors.Errorf("atlas: %s is negative: %d", d.Schema.BorderAttr, b)
	}
	return b, nil
}

// Animations returns the animation groups in document order.
func (d *Document) Animations() []*Animation {
	var out []*Animation
	for _, el := range d.root.Elements(d.Schema.AnimationsElement) {
		out = append(out, &Animation{Element: el, schema: d.Schema})
	}
	return out
}

// Images returns the top-level image entries in document order.
func (d *Document) Images() []*ImageEntry {
	var out []*ImageEntry
	for i, el := range d.root.Elements(d.Schema.ImagesElement) {
		out = append(out, &ImageEntry{Element: el, Index: i, schema: d.Schema})
	}
	return out
}

// ImageEntries returns an iterator over every image entry of the document:
// the top-level images first, then the images of each animation group.
func (d *Document) ImageEntries() *EntryIterator {
	return &EntryIterator{doc: d, group: -1}
}

// WriteTo writes the document text to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(d.Bytes())
	return int64(n), err
}

// Bytes returns the document text.
func (d *Document) Bytes() []byte {
	var b bytes.Buffer
	d.root.write(&b)
	return b.Bytes()
}

// WriteFile replaces the file at path with the document text. The new
// content is written to a temporary file first, so path is never left
// half-written.
func (d *Document) WriteFile(path string) error {
	return writeFileAtomic(path, d.Bytes())
}

func writeFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return errors.Wrapf(err, "atlas: creating temporary file for %s", path)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "atlas: writing %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "atlas: closing %s", tmp.Name())
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return errors.Wrapf(err, "atlas: chmod %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "atlas: replacing %s", path)
	}
	return nil
}

// Animation is a group of images played back as a frame sequence.
type Animation struct {
	*Element
	schema Schema
}

// ID returns the animation name.
func (a *Animation) ID() string {
	at := a.Attribute(a.schema.IDAttr)
	if at == nil {
		return ""
	}
	if s, err := at.String(); err == nil {
		return s
	}
	return at.Raw()
}

// Images returns the frames of the animation in order.
func (a *Animation) Images() []*ImageEntry {
	var out []*ImageEntry
	for i, el := range a.Elements(a.schema.ImagesElement) {
		out = append(out, &ImageEntry{Element: el, Group: a.ID(), Index: i, schema: a.schema})
	}
	return out
}

// ImageEntry is one sprite reference, either standalone or inside an
// animation group.
type ImageEntry struct {
	*Element

	// Group is the id of the enclosing animation, empty for top-level images.
	Group string
	// Index is the position among the images of the same parent.
	Index int

	schema Schema
}

// Path returns the atlas-relative image path, or false if the entry has none.
func (e *ImageEntry) Path() (string, bool) {
	p, err := e.Field(e.schema.ImageAttr).String("")
	if err != nil || p == "" {
		return "", false
	}
	return p, true
}

func (e *ImageEntry) PivotX() Field {
	return e.Field(e.schema.PivotXAttr)
}

func (e *ImageEntry) PivotY() Field {
	return e.Field(e.schema.PivotYAttr)
}

// Pivot returns the entry's pivot; missing coordinates default to the center.
func (e *ImageEntry) Pivot() (pivot.Pivot, error) {
	x, err := e.PivotX().Float(pivot.Center.X)
	if err != nil {
		return pivot.Pivot{}, err
	}
	y, err := e.PivotY().Float(pivot.Center.Y)
	if err != nil {
		return pivot.Pivot{}, err
	}
	return pivot.Pivot{X: x, Y: y}, nil
}

// SetPivot writes both pivot attributes, adding them if needed.
func (e *ImageEntry) SetPivot(p pivot.Pivot) {
	e.PivotX().SetFloat(p.X)
	e.PivotY().SetFloat(p.Y)
}

// Label identifies the entry in diagnostics, e.g. `animations["run"].images[2]`.
func (e *ImageEntry) Label() string {
	if e.Group != "" {
		return fmt.Sprintf("%s[%q].%s[%d]", e.schema.AnimationsElement, e.Group, e.schema.ImagesElement, e.Index)
	}
	return fmt.Sprintf("%s[%d]", e.schema.ImagesElement, e.Index)
}

// EntryIterator walks the image entries of a document. It is not
// restartable; call Document.ImageEntries again for a new pass.
type EntryIterator struct {
	doc *Document
	cur *ImageEntry

	node   int // next root child to inspect
	top    int // top-level images seen so far
	group  int // index of the current animation among root children, -1 before
	anim   *Animation
	frame  int // next child of anim to inspect
	frames int
	done   bool
}

// Next advances to the next entry and reports whether there is one.
func (it *EntryIterator) Next() bool {
	if it.done {
		return false
	}
	s := it.doc.Schema
	root := it.doc.root.children

	// Top-level images.
	for it.group < 0 && it.node < len(root) {
		n := root[it.node]
		it.node++
		if el, ok := n.(*Element); ok && el.name == s.ImagesElement {
			it.cur = &ImageEntry{Element: el, Index: it.top, schema: s}
			it.top++
			return true
		}
	}
	if it.group < 0 {
		it.group = 0
	}

	// Animation frames.
	for {
		if it.anim != nil {
			children := it.anim.children
			for it.frame < len(children) {
				n := children[it.frame]
				it.frame++
				if el, ok := n.(*Element); ok && el.name == s.ImagesElement {
					it.cur = &ImageEntry{Element: el, Group: it.anim.ID(), Index: it.frames, schema: s}
					it.frames++
					return true
				}
			}
			it.anim = nil
		}
		for it.anim == nil && it.group < len(root) {
			n := root[it.group]
			it.group++
			if el, ok := n.(*Element); ok && el.name == s.AnimationsElement {
				it.anim = &Animation{Element: el, schema: s}
				it.frame, it.frames = 0, 0
			}
		}
		if it.anim == nil {
			it.done = true
			it.cur = nil
			return false
		}
	}
}

// Entry returns the entry Next moved to.
func (it *EntryIterator) Entry() *ImageEntry {
	return it.cur
}
