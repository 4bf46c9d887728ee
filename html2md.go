// Package html2md converts HTML, including unbalanced tag soup, to a plain
// Markdown rendering: headings, emphasis, links, lists and pipe tables.
package html2md

import (
	"io"
	"strings"
)

// Parse builds the document tree for the HTML read from r.
func Parse(r io.Reader, opt *Option) (*Element, error) {
	b := NewBuilder(opt.maxDepth())
	b.Ignore(opt.ignored())
	return b.Run(NewTokenSource(r))
}

// Convert convert HTML to Markdown. Read HTML from r and write to w.
func Convert(w io.Writer, r io.Reader, opt *Option) error {
	root, err := Parse(r, opt)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, Extract(root, opt))
	return err
}

// ConvertString is like Convert for in-memory input.
func ConvertString(s string, opt *Option) (string, error) {
	var sb strings.Builder
	if err := Convert(&sb, strings.NewReader(s), opt); err != nil {
		return "", err
	}
	return sb.String(), nil
}
