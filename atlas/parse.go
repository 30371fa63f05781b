package atlas

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// SyntaxError describes malformed atlas text.
type SyntaxError struct {
	Line, Col int
	Msg       string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("atlas: %d:%d: %s", e.Line, e.Col, e.Msg)
}

// Parse reads an atlas document using DefaultSchema.
func Parse(r io.Reader) (*Document, error) {
	return DefaultSchema.Parse(r)
}

// ReadFile parses the atlas file at path using DefaultSchema.
func ReadFile(path string) (*Document, error) {
	return DefaultSchema.ReadFile(path)
}

// Parse reads an atlas document whose element and attribute names follow s.
func (s Schema) Parse(r io.Reader) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "atlas: reading document")
	}

	p := parser{src: src}
	root := &Element{depth: -1}
	if err := p.parseBody(root, false); err != nil {
		return nil, err
	}
	glog.V(2).Infof("atlas: parsed %d top-level nodes", len(root.children))

	return &Document{Schema: s, root: root}, nil
}

func (s Schema) ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return s.Parse(f)
}

// parser is a hand-written reader for the protobuf text format subset used
// by atlas files: "name: value", "name { ... }" and "#" comments.
type parser struct {
	src []byte
	pos int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) errorf(format string, args ...interface{}) error {
	line, col := 1, 1
	for _, c := range p.src[:p.pos] {
		if c == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return &SyntaxError{Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

// trivia consumes whitespace and comments and returns them verbatim.
func (p *parser) trivia() string {
	start := p.pos
	for !p.eof() {
		switch c := p.peek(); {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v':
			p.pos++
		case c == '#':
			for !p.eof() && p.peek() != '\n' {
				p.pos++
			}
		default:
			return string(p.src[start:p.pos])
		}
	}
	return string(p.src[start:p.pos])
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func (p *parser) ident() (string, error) {
	if !isIdentStart(p.peek()) {
		return "", p.errorf("expected field name, got %q", p.peek())
	}
	start := p.pos
	for !p.eof() && isIdentChar(p.peek()) {
		p.pos++
	}
	return string(p.src[start:p.pos]), nil
}

// parseBody reads the children of e. With closing set, the body must end
// with "}"; otherwise it runs to the end of input.
func (p *parser) parseBody(e *Element, closing bool) error {
	for {
		lead := p.trivia()
		if p.eof() {
			if closing {
				return p.errorf("unexpected end of input in %q, want \"}\"", e.name)
			}
			e.tail = lead
			return nil
		}
		if p.peek() == '}' {
			if !closing {
				return p.errorf("unexpected \"}\"")
			}
			p.pos++
			e.tail = lead
			return nil
		}

		name, err := p.ident()
		if err != nil {
			return err
		}

		start := p.pos
		p.trivia()
		colon := false
		if p.peek() == ':' {
			p.pos++
			colon = true
			p.trivia()
		}

		if p.peek() == '{' {
			p.pos++
			child := &Element{
				name:  name,
				lead:  lead,
				open:  string(p.src[start:p.pos]),
				depth: e.depth + 1,
			}
			if err := p.parseBody(child, true); err != nil {
				return err
			}
			e.children = append(e.children, child)
			continue
		}
		if !colon {
			return p.errorf("expected \":\" or \"{\" after %q", name)
		}

		sep := string(p.src[start:p.pos])
		raw, err := p.value()
		if err != nil {
			return err
		}
		e.children = append(e.children, &Attribute{name: name, lead: lead, sep: sep, raw: raw})
	}
}

// value reads a quoted string or a bare scalar (number, enum name).
func (p *parser) value() (string, error) {
	start := p.pos
	switch q := p.peek(); q {
	case '"', '\'':
		p.pos++
		for {
			if p.eof() || p.peek() == '\n' {
				return "", p.errorf("unterminated string")
			}
			c := p.peek()
			p.pos++
			if c == '\\' {
				if p.eof() {
					return "", p.errorf("unterminated string")
				}
				p.pos++
				continue
			}
			if c == q {
				return string(p.src[start:p.pos]), nil
			}
		}
	}

	for !p.eof() && isValueChar(p.peek()) {
		p.pos++
	}
	if p.pos == start {
		return "", p.errorf("expected value, got %q", p.peek())
	}
	return string(p.src[start:p.pos]), nil
}

func isValueChar(c byte) bool {
	return isIdentChar(c) || c == '.' || c == '-' || c == '+'
}

func (e *Element) write(b *bytes.Buffer) {
	if e.depth >= 0 {
		b.WriteString(e.lead)
		b.WriteString(e.name)
		b.WriteString(e.open)
	}
	for _, c := range e.children {
		c.write(b)
	}
	b.WriteString(e.tail)
	if e.depth >= 0 {
		b.WriteByte('}')
	}
}

func (a *Attribute) write(b *bytes.Buffer) {
	b.WriteString(a.lead)
	b.WriteString(a.name)
	b.WriteString(a.sep)
	b.WriteString(a.raw)
}
