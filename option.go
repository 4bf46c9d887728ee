package html2md

import (
	"fmt"
	"strings"
)

// Spacing selects how blank lines are placed between blocks.
type Spacing int

const (
	// SpacingSeparated puts an extra blank line before headings, lists and
	// links, and gives lists their own trailing blank line.
	SpacingSeparated Spacing = iota
	// SpacingCompact adds no extra separators and treats lists as
	// transparent containers.
	SpacingCompact
)

func (s Spacing) String() string {
	switch s {
	case SpacingSeparated:
		return "separated"
	case SpacingCompact:
		return "compact"
	}
	return fmt.Sprintf("Spacing(%d)", int(s))
}

// ParseSpacing parses "separated" or "compact". Empty means separated.
func ParseSpacing(s string) (Spacing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "separated":
		return SpacingSeparated, nil
	case "compact":
		return SpacingCompact, nil
	}
	return 0, fmt.Errorf("unknown spacing %q", s)
}

// DefaultIgnoredTags are skipped with their whole subtree when
// Option.IgnoredTags is nil.
var DefaultIgnoredTags = []string{"script", "style", "meta", "link", "noscript"}

// Option controls conversion. A nil *Option means all defaults.
type Option struct {
	// IgnoredTags replaces DefaultIgnoredTags when non-nil. An empty,
	// non-nil slice ignores nothing.
	IgnoredTags []string

	Spacing Spacing

	// AlignTables pads table cells to the display width of their column.
	AlignTables bool

	// DirectRows reads only the tr children of a table itself. Rows inside
	// thead, tbody and tfoot are skipped, so a table made only of sections
	// renders as nothing.
	DirectRows bool

	// BlankLines keeps one blank line between blocks instead of removing
	// every blank line from the output.
	BlankLines bool

	// MaxDepth bounds element nesting. <= 0 means DefaultMaxDepth.
	MaxDepth int
}

func (o *Option) ignored() map[string]bool {
	tags := DefaultIgnoredTags
	if o != nil && o.IgnoredTags != nil {
		tags = o.IgnoredTags
	}
	m := make(map[string]bool, len(tags))
	for _, t := range tags {
		m[strings.ToLower(t)] = true
	}
	return m
}

func (o *Option) maxDepth() int {
	if o == nil || o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}
