package html2md

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// DefaultMaxDepth is the nesting bound used when none is given.
const DefaultMaxDepth = 512

// Builder turns a token stream into a document tree. It never fails on
// unbalanced markup: unclosed elements are closed implicitly by the end tag
// of an ancestor, and end tags without a matching open element are ignored.
//
// Elements nested deeper than the bound are dropped and their text goes to
// the deepest element that was kept, unless one of the dropped elements
// is ignored.
type Builder struct {
	root     *Element
	current  *Element
	stack    []string
	overflow []string
	maxDepth int

	// ignored names the tags whose text is discarded past the bound.
	ignored map[string]bool
	// muted is the overflow index of the outermost ignored tag, or -1.
	muted int
}

// NewBuilder returns a Builder positioned at an empty root element.
// maxDepth <= 0 means DefaultMaxDepth.
func NewBuilder(maxDepth int) *Builder {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	root := &Element{Tag: rootTag}
	return &Builder{root: root, current: root, maxDepth: maxDepth, muted: -1}
}

// Ignore sets the tags whose content is dropped when they are nested past
// the depth bound. Within the bound they become elements as usual and are
// skipped by Extract.
func (b *Builder) Ignore(tags map[string]bool) {
	b.ignored = tags
}

// Root returns the synthetic root element.
func (b *Builder) Root() *Element {
	return b.root
}

// Handle dispatches tok to StartTag, EndTag or Text.
func (b *Builder) Handle(tok Token) {
	switch tok.Type {
	case StartTagToken:
		b.StartTag(tok.Name, tok.Attrs)
	case EndTagToken:
		b.EndTag(tok.Name)
	case TextToken:
		b.Text(tok.Data)
	}
}

func (b *Builder) StartTag(name string, attrs map[string]string) {
	if len(b.stack) >= b.maxDepth {
		if !IsVoid(name) {
			if b.muted < 0 && b.ignored[name] {
				b.muted = len(b.overflow)
			}
			b.overflow = append(b.overflow, name)
		}
		return
	}
	e := &Element{Tag: name, Attrs: attrs, parent: b.current}
	b.current.Children = append(b.current.Children, e)
	if IsVoid(name) {
		return
	}
	b.current = e
	b.stack = append(b.stack, name)
}

func (b *Builder) EndTag(name string) {
	if IsVoid(name) {
		return
	}
	if len(b.overflow) > 0 {
		for i := len(b.overflow) - 1; i >= 0; i-- {
			if b.overflow[i] == name {
				b.truncateOverflow(i)
				return
			}
		}
		b.truncateOverflow(0)
	}
	for len(b.stack) > 0 && b.current.Tag != name && b.current.parent != nil {
		b.ascend()
	}
	if len(b.stack) > 0 && b.current.Tag == name && b.current.parent != nil {
		b.ascend()
	}
}

func (b *Builder) Text(data string) {
	if b.muted >= 0 {
		return
	}
	if s := strings.TrimSpace(data); s != "" {
		b.current.Children = append(b.current.Children, Text(s))
	}
}

func (b *Builder) truncateOverflow(n int) {
	b.overflow = b.overflow[:n]
	if b.muted >= n {
		b.muted = -1
	}
}

func (b *Builder) ascend() {
	b.stack = b.stack[:len(b.stack)-1]
	b.current = b.current.parent
}

// Build reads src to the end and returns the root of the resulting tree.
// Only a read failure of src is reported; markup is never an error.
func Build(src TokenSource, maxDepth int) (*Element, error) {
	return NewBuilder(maxDepth).Run(src)
}

// Run feeds every token of src to b and returns the root.
func (b *Builder) Run(src TokenSource) (*Element, error) {
	for {
		tok, err := src.Next()
		if errors.Is(err, io.EOF) {
			return b.Root(), nil
		}
		if err != nil {
			return nil, fmt.Errorf("read token: %w", err)
		}
		b.Handle(tok)
	}
}
