package html2md

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, s string) *Element {
	t.Helper()
	root, err := Parse(strings.NewReader(s), nil)
	require.NoError(t, err)
	return root
}

func count(n Node) int {
	e, ok := n.(*Element)
	if !ok {
		return 1
	}
	c := 1
	for _, child := range e.Children {
		c += count(child)
	}
	return c
}

func depth(n Node) int {
	e, ok := n.(*Element)
	if !ok {
		return 0
	}
	d := 0
	for _, child := range e.Children {
		if cd := depth(child) + 1; cd > d {
			d = cd
		}
	}
	return d
}

func elementDepth(n Node) int {
	e, ok := n.(*Element)
	if !ok {
		return 0
	}
	d := 0
	for _, child := range e.Children {
		if _, ok := child.(*Element); !ok {
			continue
		}
		if cd := elementDepth(child) + 1; cd > d {
			d = cd
		}
	}
	return d
}

func TestBuild_HeadingAndParagraph(t *testing.T) {
	root := parse(t, "<h1>Title</h1><p>Text</p>")

	assert.Equal(t, "root", root.Tag)
	assert.Nil(t, root.Attrs)
	require.Len(t, root.Children, 2)

	h1 := root.Children[0].(*Element)
	assert.Equal(t, "h1", h1.Tag)
	assert.Equal(t, []Node{Text("Title")}, h1.Children)
	assert.Same(t, root, h1.parent)

	p := root.Children[1].(*Element)
	assert.Equal(t, "p", p.Tag)
	assert.Equal(t, []Node{Text("Text")}, p.Children)
}

func TestBuild_BalancedCountAndDepth(t *testing.T) {
	// 7 start tags, 4 text segments, nesting depth 4
	root := parse(t, "<div><ul><li><a href='#'>x</a></li><li>y</li></ul><p>z</p></div>\n<span>w</span>")

	assert.Equal(t, 7+4, count(root)-1)
	assert.Equal(t, 4, elementDepth(root))
	assert.Equal(t, 5, depth(root))
}

func TestBuild_WhitespaceTextDropped(t *testing.T) {
	root := parse(t, "<p>  padded  </p>\n\t<p> </p>")

	require.Len(t, root.Children, 2)
	assert.Equal(t, []Node{Text("padded")}, root.Children[0].(*Element).Children)
	assert.Empty(t, root.Children[1].(*Element).Children)
}

func TestBuild_Attributes(t *testing.T) {
	root := parse(t, `<A HREF="http://x.com?a=1&amp;b=2" Class=c>t</A>`)

	a := root.Children[0].(*Element)
	assert.Equal(t, "a", a.Tag)
	assert.Equal(t, "http://x.com?a=1&b=2", a.Attr("href"))
	assert.Equal(t, "c", a.Attr("class"))
	assert.Equal(t, "", a.Attr("missing"))
}

func TestBuild_VoidTagsHaveNoChildren(t *testing.T) {
	root := parse(t, "<p>a<br>b</br><img src=x>c</img><hr/>d</p>")

	p := root.Children[0].(*Element)
	require.Len(t, p.Children, 7)
	for _, c := range p.Children {
		if e, ok := c.(*Element); ok {
			assert.True(t, IsVoid(e.Tag), e.Tag)
			assert.Empty(t, e.Children, e.Tag)
		}
	}
	assert.Equal(t, Text("d"), p.Children[6])
}

func TestBuilder_UnclosedElementsClosedByAncestorEnd(t *testing.T) {
	root := parse(t, "<div><p>text</div><p>after")

	require.Len(t, root.Children, 2)
	div := root.Children[0].(*Element)
	require.Len(t, div.Children, 1)
	assert.Equal(t, []Node{Text("text")}, div.Children[0].(*Element).Children)
	assert.Equal(t, []Node{Text("after")}, root.Children[1].(*Element).Children)
}

func TestBuilder_StrayEndTag(t *testing.T) {
	b := NewBuilder(0)
	b.EndTag("span")
	assert.Same(t, b.root, b.current)
	assert.Empty(t, b.stack)

	b.StartTag("div", nil)
	b.StartTag("p", nil)
	b.EndTag("span")

	// the search for span ascends all the way to the root
	assert.Same(t, b.root, b.current)
	assert.Empty(t, b.stack)

	b.Text("b")
	assert.Equal(t, Text("b"), b.root.Children[1])
}

func TestBuilder_VoidEndTagIsNoop(t *testing.T) {
	b := NewBuilder(0)
	b.StartTag("p", nil)
	b.EndTag("br")

	assert.Equal(t, "p", b.current.Tag)
	assert.Equal(t, []string{"p"}, b.stack)
}

func TestBuilder_OpenElementsLeftAtEnd(t *testing.T) {
	root := parse(t, "<div><section><p>unterminated")

	assert.Equal(t, 3, elementDepth(root))
	assert.Equal(t, "unterminated", strings.TrimSpace(Extract(root, nil)))
}

func TestBuilder_MaxDepth(t *testing.T) {
	const limit = 10
	in := strings.Repeat("<div>", 20) + "deep<img>" + strings.Repeat("</div>", 20) + "<p>next</p>"

	root, err := Parse(strings.NewReader(in), &Option{MaxDepth: limit})
	require.NoError(t, err)

	assert.Equal(t, limit, elementDepth(root))
	require.Len(t, root.Children, 2)
	assert.Equal(t, "p", root.Children[1].(*Element).Tag)

	deepest := root
	for len(deepest.Children) > 0 {
		e, ok := deepest.Children[0].(*Element)
		if !ok {
			break
		}
		deepest = e
	}
	// the void element past the bound is dropped, the text is kept
	assert.Equal(t, []Node{Text("deep")}, deepest.Children)
}

func TestBuild_RawTextOnlyForScriptAndStyle(t *testing.T) {
	for _, in := range []string{
		"<iframe><b>x</b></iframe>",
		"<noframes><b>x</b></noframes>",
		"<textarea><b>x</b></textarea>",
		"<plaintext><b>x</b></plaintext>",
	} {
		root := parse(t, in)
		// 2 start tags, 1 text segment
		assert.Equal(t, 3, count(root)-1, in)
		assert.Equal(t, 2, elementDepth(root), in)
	}

	root := parse(t, "<script><b>x</b></script><style>a<i>b</i></style>")
	require.Len(t, root.Children, 2)
	assert.Equal(t, []Node{Text("<b>x</b>")}, root.Children[0].(*Element).Children)
	assert.Equal(t, []Node{Text("a<i>b</i>")}, root.Children[1].(*Element).Children)
}

func TestBuild_SelfClosingRawTextTag(t *testing.T) {
	root := parse(t, "<textarea/><p>after</p>")

	require.Len(t, root.Children, 2)
	assert.Equal(t, "p", root.Children[1].(*Element).Tag)
}

func TestBuilder_IgnoredOverflowDropsText(t *testing.T) {
	b := NewBuilder(1)
	b.Ignore(map[string]bool{"script": true})
	b.StartTag("div", nil)
	b.StartTag("script", nil)
	b.StartTag("span", nil)
	b.Text("inner")
	b.EndTag("span")
	b.Text("evil()")
	b.EndTag("script")
	b.Text("kept")

	assert.Equal(t, []Node{Text("kept")}, b.current.Children)
	assert.Equal(t, -1, b.muted)

	// an end tag matching nothing in the overflow unmutes as well
	b.StartTag("script", nil)
	b.EndTag("div")
	assert.Equal(t, -1, b.muted)
	b.Text("after")
	assert.Equal(t, Text("after"), b.root.Children[1])
}

func TestBuilder_OverflowEndTagFallsThrough(t *testing.T) {
	b := NewBuilder(2)
	b.StartTag("div", nil)
	b.StartTag("section", nil)
	b.StartTag("span", nil)
	require.Equal(t, []string{"span"}, b.overflow)

	b.EndTag("div")
	assert.Empty(t, b.overflow)
	assert.Same(t, b.root, b.current)
}

type errSource struct{}

func (errSource) Next() (Token, error) {
	return Token{}, errors.New("boom")
}

func TestBuild_SourceError(t *testing.T) {
	root, err := Build(errSource{}, 0)
	assert.Nil(t, root)
	assert.ErrorContains(t, err, "boom")
}

type sliceSource []Token

func (s *sliceSource) Next() (Token, error) {
	if len(*s) == 0 {
		return Token{}, io.EOF
	}
	tok := (*s)[0]
	*s = (*s)[1:]
	return tok, nil
}

func TestBuild_CustomSource(t *testing.T) {
	src := &sliceSource{
		{Type: StartTagToken, Name: "h2"},
		{Type: TextToken, Data: " hi "},
		{Type: EndTagToken, Name: "h2"},
	}
	root, err := Build(src, 0)
	require.NoError(t, err)
	assert.Equal(t, "## hi\n", Extract(root, nil))
}

func TestTokenSource(t *testing.T) {
	src := NewTokenSource(strings.NewReader(`<!DOCTYPE html><!-- c --><br/><p class="x">a &lt; b</p>`))

	var got []Token
	for {
		tok, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		got = append(got, tok)
	}

	assert.Equal(t, []Token{
		{Type: StartTagToken, Name: "br"},
		{Type: EndTagToken, Name: "br"},
		{Type: StartTagToken, Name: "p", Attrs: map[string]string{"class": "x"}},
		{Type: TextToken, Data: "a < b"},
		{Type: EndTagToken, Name: "p"},
	}, got)
}
