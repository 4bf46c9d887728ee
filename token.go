package html2md

import (
	"io"

	"golang.org/x/net/html"
)

// TokenType is the kind of a Token.
type TokenType int

const (
	StartTagToken TokenType = iota + 1
	EndTagToken
	TextToken
)

// Token is a single event fed to the Builder.
type Token struct {
	Type  TokenType
	Name  string
	Attrs map[string]string
	Data  string
}

// TokenSource yields tokens until it returns io.EOF.
type TokenSource interface {
	Next() (Token, error)
}

// rawTextTags hold character data up to their own end tag.
var rawTextTags = map[string]bool{"script": true, "style": true}

type tokenizer struct {
	z       *html.Tokenizer
	pending *Token
}

// NewTokenSource returns a TokenSource reading HTML from r.
// Tag and attribute names are lower-cased and character references are
// decoded. A self-closing tag yields a start tag followed by an end tag.
// Comments and doctypes are skipped. Only script and style hold raw text;
// markup inside any other element, textarea and title included, is
// tokenized as tags.
func NewTokenSource(r io.Reader) TokenSource {
	return &tokenizer{z: html.NewTokenizer(r)}
}

func (t *tokenizer) Next() (Token, error) {
	if t.pending != nil {
		tok := *t.pending
		t.pending = nil
		return tok, nil
	}
	for {
		switch t.z.Next() {
		case html.ErrorToken:
			return Token{}, t.z.Err()
		case html.StartTagToken:
			tok := t.z.Token()
			if !rawTextTags[tok.Data] {
				t.z.NextIsNotRawText()
			}
			return Token{Type: StartTagToken, Name: tok.Data, Attrs: attrs(tok.Attr)}, nil
		case html.SelfClosingTagToken:
			tok := t.z.Token()
			t.z.NextIsNotRawText()
			t.pending = &Token{Type: EndTagToken, Name: tok.Data}
			return Token{Type: StartTagToken, Name: tok.Data, Attrs: attrs(tok.Attr)}, nil
		case html.EndTagToken:
			tok := t.z.Token()
			return Token{Type: EndTagToken, Name: tok.Data}, nil
		case html.TextToken:
			return Token{Type: TextToken, Data: string(t.z.Text())}, nil
		}
	}
}

func attrs(list []html.Attribute) map[string]string {
	if len(list) == 0 {
		return nil
	}
	m := make(map[string]string, len(list))
	for _, a := range list {
		m[a.Key] = a.Val
	}
	return m
}
