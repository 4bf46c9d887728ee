package cli

import (
	"strconv"
	"strings"

	"github.com/mattn/html2md"
	"github.com/mattn/html2md/internal/logger"
)

// dumpTree logs the first levels of the document tree in verbose mode.
func dumpTree(root *html2md.Element, levels int) {
	if !logger.IsVerbose() {
		return
	}
	logger.Debug("root has %d children", len(root.Children))
	dumpChildren(root, 0, levels)
}

func dumpChildren(e *html2md.Element, level, levels int) {
	if level >= levels {
		return
	}
	indent := strings.Repeat("  ", level)
	for i, c := range e.Children {
		logger.Debug("%schild #%d of <%s>: %s", indent, i+1, e.Tag, describe(c))
		if ce, ok := c.(*html2md.Element); ok {
			dumpChildren(ce, level+1, levels)
		}
	}
}

func describe(n html2md.Node) string {
	switch n := n.(type) {
	case *html2md.Element:
		return n.String()
	case html2md.Text:
		return strconv.Quote(string(n))
	}
	return "?"
}
