package html2md

import "fmt"

// Node is a node of the document tree. It is either *Element or Text.
type Node interface {
	node()
}

// Element is an HTML element with its attributes and ordered children.
type Element struct {
	Tag      string
	Attrs    map[string]string
	Children []Node

	// parent is only used while building to find where to ascend.
	parent *Element
}

// Text is a trimmed, non-empty run of character data.
type Text string

func (*Element) node() {}
func (Text) node()     {}

// Attr returns the value of the attribute key, or "" if not present.
func (e *Element) Attr(key string) string {
	return e.Attrs[key]
}

func (e *Element) String() string {
	return fmt.Sprintf("Element(%s)", e.Tag)
}

const rootTag = "root"

var voidTags = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoid reports whether tag can never have children.
func IsVoid(tag string) bool {
	return voidTags[tag]
}
