package atlas

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Node is either an *Element or an *Attribute.
type Node interface {
	Name() string

	leading() string
	write(b *bytes.Buffer)
}

// Element is a message node: a name followed by a braced list of children.
//
// Besides its children, an Element remembers the exact text around them, so
// an unmodified tree is written back byte for byte.
type Element struct {
	name     string
	lead     string // whitespace and comments before the name
	open     string // text from the end of the name up to and including "{"
	tail     string // whitespace and comments before "}"
	children []Node
	depth    int // -1 for the document root
}

// Attribute is a scalar field, "name: value".
type Attribute struct {
	name string
	lead string
	sep  string // text from the end of the name up to the value
	raw  string // value as written, quotes included
}

func (e *Element) Name() string { return e.name }

func (e *Element) leading() string { return e.lead }

func (a *Attribute) Name() string { return a.name }

func (a *Attribute) leading() string { return a.lead }

// Children returns the child nodes in document order.
func (e *Element) Children() []Node {
	return e.children
}

// Elements returns the child elements called name, in document order.
func (e *Element) Elements(name string) []*Element {
	var out []*Element
	for _, c := range e.children {
		if el, ok := c.(*Element); ok && el.name == name {
			out = append(out, el)
		}
	}
	return out
}

// Attribute returns the first child attribute called name, or nil.
func (e *Element) Attribute(name string) *Attribute {
	for _, c := range e.children {
		if a, ok := c.(*Attribute); ok && a.name == name {
			return a
		}
	}
	return nil
}

// Attributes returns all child attributes in document order.
func (e *Element) Attributes() []*Attribute {
	var out []*Attribute
	for _, c := range e.children {
		if a, ok := c.(*Attribute); ok {
			out = append(out, a)
		}
	}
	return out
}

// Field returns a cell for the attribute called name. The attribute does not
// need to exist.
func (e *Element) Field(name string) Field {
	return Field{elem: e, name: name}
}

// addAttribute appends a new attribute, indented like its siblings.
func (e *Element) addAttribute(name, raw string) *Attribute {
	lead := e.childLead()
	if len(e.children) == 0 && e.depth >= 0 && !strings.Contains(e.tail, "\n") {
		e.tail = "\n" + indent(e.depth)
	}
	a := &Attribute{name: name, lead: lead, sep: ": ", raw: raw}
	e.children = append(e.children, a)
	return a
}

func (e *Element) childLead() string {
	if n := len(e.children); n > 0 {
		lead := e.children[n-1].leading()
		if i := strings.LastIndexByte(lead, '\n'); i >= 0 {
			return lead[i:]
		}
		if lead != "" {
			return lead
		}
		if e.depth < 0 {
			return "\n"
		}
	}
	if e.depth < 0 && len(e.children) == 0 {
		return ""
	}
	return "\n" + indent(e.depth+1)
}

func indent(depth int) string {
	if depth <= 0 {
		return ""
	}
	return strings.Repeat("  ", depth)
}

// Raw returns the value exactly as written in the document.
func (a *Attribute) Raw() string {
	return a.raw
}

// String returns the value as a string. Quoted values are unescaped; bare
// values (numbers, enum names) are returned as written.
func (a *Attribute) String() (string, error) {
	if !isQuoted(a.raw) {
		return a.raw, nil
	}
	s, err := unquote(a.raw)
	if err != nil {
		return "", errors.Wrapf(err, "atlas: attribute %s: bad string %s", a.name, a.raw)
	}
	return s, nil
}

// Float returns the value as a float64.
func (a *Attribute) Float() (float64, error) {
	raw := a.raw
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		trimmed := strings.TrimRight(raw, "fF")
		if trimmed != raw {
			v, err = strconv.ParseFloat(trimmed, 64)
		}
	}
	if err != nil {
		return 0, errors.Errorf("atlas: attribute %s: %q is not a number", a.name, raw)
	}
	return v, nil
}

// Int returns the value as an int.
func (a *Attribute) Int() (int, error) {
	v, err := strconv.ParseInt(a.raw, 10, 0)
	if err != nil {
		return 0, errors.Errorf("atlas: attribute %s: %q is not an integer", a.name, a.raw)
	}
	return int(v), nil
}

// SetFloat replaces the value with the shortest decimal form of v.
func (a *Attribute) SetFloat(v float64) {
	a.raw = strconv.FormatFloat(v, 'f', -1, 64)
}

// SetInt replaces the value with v.
func (a *Attribute) SetInt(v int) {
	a.raw = strconv.Itoa(v)
}

// SetString replaces the value with s, double-quoted.
func (a *Attribute) SetString(s string) {
	a.raw = strconv.Quote(s)
}

func isQuoted(raw string) bool {
	return len(raw) >= 2 && (raw[0] == '"' || raw[0] == '\'') && raw[len(raw)-1] == raw[0]
}

// unquote decodes a single- or double-quoted text format string.
func unquote(raw string) (string, error) {
	inner := raw[1 : len(raw)-1]
	var b strings.Builder
	b.Grow(len(inner) + 2)
	b.WriteByte('"')
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		switch {
		case c == '\\' && i+1 < len(inner):
			i++
			if inner[i] == '\'' {
				b.WriteByte('\'')
				continue
			}
			b.WriteByte('\\')
			b.WriteByte(inner[i])
		case c == '"':
			b.WriteString(`\"`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return strconv.Unquote(b.String())
}

// Field is a possibly absent attribute of an element. Reads fall back to a
// default without touching the tree; writes update the attribute in place or
// append it.
type Field struct {
	elem *Element
	name string
}

func (f Field) Name() string {
	return f.name
}

// Present reports whether the attribute exists.
func (f Field) Present() bool {
	return f.elem.Attribute(f.name) != nil
}

// Float returns the attribute as a float64, or def if it is absent.
func (f Field) Float(def float64) (float64, error) {
	a := f.elem.Attribute(f.name)
	if a == nil {
		return def, nil
	}
	return a.Float()
}

// Int returns the attribute as an int, or def if it is absent.
func (f Field) Int(def int) (int, error) {
	a := f.elem.Attribute(f.name)
	if a == nil {
		return def, nil
	}
	return a.Int()
}

// String returns the attribute as a string, or def if it is absent.
func (f Field) String(def string) (string, error) {
	a := f.elem.Attribute(f.name)
	if a == nil {
		return def, nil
	}
	return a.String()
}

// SetFloat sets the attribute to v, adding it if needed.
func (f Field) SetFloat(v float64) {
	f.attr(func(a *Attribute) { a.SetFloat(v) })
}

// SetInt sets the attribute to v, adding it if needed.
func (f Field) SetInt(v int) {
	f.attr(func(a *Attribute) { a.SetInt(v) })
}

// SetString sets the attribute to s, adding it if needed.
func (f Field) SetString(s string) {
	f.attr(func(a *Attribute) { a.SetString(s) })
}

func (f Field) attr(set func(a *Attribute)) {
	a := f.elem.Attribute(f.name)
	if a == nil {
		a = f.elem.addAttribute(f.name, "")
	}
	set(a)
}
