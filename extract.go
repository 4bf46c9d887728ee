package html2md

import (
	"strconv"
	"strings"
)

var transparentTags = map[string]bool{
	rootTag: true,
	"html":  true,
	"body":  true,
	"head":  true,
	"div":   true,
}

// separatedTags get an extra blank line in front of them in
// SpacingSeparated mode.
var separatedTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true,
	"a": true,
}

type extractor struct {
	ignored     map[string]bool
	spacing     Spacing
	alignTables bool
	directRows  bool
	maxDepth    int
}

func newExtractor(opt *Option) *extractor {
	x := &extractor{
		ignored:  opt.ignored(),
		maxDepth: opt.maxDepth(),
	}
	if opt != nil {
		x.spacing = opt.Spacing
		x.alignTables = opt.AlignTables
		x.directRows = opt.DirectRows
	}
	return x
}

// Extract renders the tree under root as Markdown. Blank lines are removed
// (or squeezed to one when opt.BlankLines is set) and non-empty output ends
// with exactly one newline.
func Extract(root *Element, opt *Option) string {
	s := newExtractor(opt).extract(root, 0)
	return finish(s, opt != nil && opt.BlankLines)
}

func (x *extractor) extract(n Node, depth int) string {
	switch n := n.(type) {
	case Text:
		s := strings.TrimSpace(string(n))
		if s == "" {
			return ""
		}
		return s + "\n\n"
	case *Element:
		return x.element(n, depth)
	}
	return ""
}

func (x *extractor) element(e *Element, depth int) string {
	if x.ignored[e.Tag] || depth > x.maxDepth {
		return ""
	}
	switch e.Tag {
	case "table":
		return x.table(e, depth)
	case "hr":
		return "---\n\n"
	}

	var buf strings.Builder
	for _, c := range e.Children {
		s := x.extract(c, depth+1)
		if s == "" {
			continue
		}
		if ce, ok := c.(*Element); ok {
			// transparent containers come back without a trailing newline
			if buf.Len() > 0 && !strings.HasSuffix(buf.String(), "\n") {
				buf.WriteString("\n")
			}
			if x.spacing == SpacingSeparated && separatedTags[ce.Tag] {
				buf.WriteString("\n\n")
			}
		}
		buf.WriteString(s)
	}

	content := format(e, strings.TrimSpace(buf.String()))
	if content != "" && !x.transparent(e.Tag) {
		return content + "\n\n"
	}
	return content
}

func (x *extractor) transparent(tag string) bool {
	if transparentTags[tag] {
		return true
	}
	return x.spacing == SpacingCompact && (tag == "ul" || tag == "ol")
}

func format(e *Element, content string) string {
	if level := headingLevel(e.Tag); level > 0 {
		return strings.Repeat("#", level) + " " + content
	}
	switch e.Tag {
	case "strong":
		return "**" + content + "**"
	case "em":
		return "*" + content + "*"
	case "a":
		href := e.Attr("href")
		text := content
		if text == "" {
			text = href
		}
		return "[" + text + "](" + href + ")"
	case "ul":
		return prefixLines(content, func(int) string { return "- " })
	case "ol":
		return prefixLines(content, func(n int) string { return strconv.Itoa(n) + ". " })
	}
	return content
}

// prefixLines prefixes every non-blank line of s. n counts the prefixed
// lines starting from 1.
func prefixLines(s string, prefix func(n int) string) string {
	lines := strings.Split(s, "\n")
	n := 0
	for i, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n++
		lines[i] = prefix(n) + l
	}
	return strings.Join(lines, "\n")
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func finish(s string, blankLines bool) string {
	var lines []string
	blank := false
	for _, l := range strings.Split(s, "\n") {
		if strings.TrimSpace(l) == "" {
			blank = true
			continue
		}
		if blank && blankLines && len(lines) > 0 {
			lines = append(lines, "")
		}
		blank = false
		lines = append(lines, l)
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
