package html2md

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

var pipeEscaper = strings.NewReplacer("|", `\|`)

type tableRow struct {
	tr    *Element
	depth int
}

// rows returns the tr elements of t, looking one level into thead, tbody
// and tfoot unless direct is set.
func rows(t *Element, depth int, direct bool) []tableRow {
	var rs []tableRow
	for _, c := range t.Children {
		e, ok := c.(*Element)
		if !ok {
			continue
		}
		switch e.Tag {
		case "tr":
			rs = append(rs, tableRow{e, depth + 1})
		case "thead", "tbody", "tfoot":
			if direct {
				continue
			}
			for _, cc := range e.Children {
				if tr, ok := cc.(*Element); ok && tr.Tag == "tr" {
					rs = append(rs, tableRow{tr, depth + 2})
				}
			}
		}
	}
	return rs
}

func (x *extractor) cells(r tableRow) []string {
	var cols []string
	for _, c := range r.tr.Children {
		cell, ok := c.(*Element)
		if !ok || (cell.Tag != "th" && cell.Tag != "td") {
			continue
		}
		text := strings.TrimSpace(x.extract(cell, r.depth+1))
		if text == "" {
			continue
		}
		cols = append(cols, strings.Trim(pipeEscaper.Replace(text), "\n"))
	}
	return cols
}

func (x *extractor) table(t *Element, depth int) string {
	var body [][]string
	for _, r := range rows(t, depth, x.directRows) {
		if cols := x.cells(r); len(cols) > 0 {
			body = append(body, cols)
		}
	}
	if len(body) == 0 {
		return ""
	}

	sep := make([]string, len(body[0]))
	for i := range sep {
		sep[i] = "---"
	}
	if x.alignTables {
		align(body, sep)
	}

	lines := make([]string, 0, len(body)+1)
	lines = append(lines, pipeRow(body[0]), pipeRow(sep))
	for _, cols := range body[1:] {
		lines = append(lines, pipeRow(cols))
	}
	return strings.Join(lines, "\n") + "\n\n"
}

// align pads every cell in place to the widest display width of its column.
// Rows keep their own cell count.
func align(body [][]string, sep []string) {
	var widths []int
	for _, cols := range body {
		for j, c := range cols {
			if j >= len(widths) {
				widths = append(widths, 3)
			}
			if w := runewidth.StringWidth(c); w > widths[j] {
				widths[j] = w
			}
		}
	}
	for _, cols := range body {
		for j, c := range cols {
			cols[j] = c + strings.Repeat(" ", widths[j]-runewidth.StringWidth(c))
		}
	}
	for j := range sep {
		sep[j] = strings.Repeat("-", widths[j])
	}
}

func pipeRow(cols []string) string {
	return "| " + strings.Join(cols, " | ") + " |"
}
