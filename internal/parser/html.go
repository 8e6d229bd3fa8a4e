package parser

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// parseXHTML builds a node tree from a content document. Unlike html.Parse it
// honours "/>" on any element, so <title/> or <script src="x"/> in the head
// does not swallow the body. End tags close the nearest matching open element;
// stray end tags are ignored.
func parseXHTML(r io.Reader) (*html.Node, error) {
	doc := &html.Node{Type: html.DocumentNode}
	stack := []*html.Node{doc}
	z := html.NewTokenizer(r)
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return doc, nil
			}
			return nil, z.Err()
		case html.TextToken:
			top := stack[len(stack)-1]
			top.AppendChild(&html.Node{Type: html.TextNode, Data: string(z.Text())})
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			n := &html.Node{Type: html.ElementNode, Data: tok.Data, DataAtom: tok.DataAtom, Attr: tok.Attr}
			stack[len(stack)-1].AppendChild(n)
			if tt == html.SelfClosingTagToken || isVoid(tok.Data) {
				z.NextIsNotRawText()
				continue
			}
			stack = append(stack, n)
		case html.EndTagToken:
			name, _ := z.TagName()
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].Data == string(name) {
					stack = stack[:i]
					break
				}
			}
		}
	}
}

func isVoid(tag string) bool {
	switch tag {
	case "area", "base", "br", "col", "embed", "hr", "img", "input",
		"link", "meta", "param", "source", "track", "wbr":
		return true
	}
	return false
}

// xhtmlText returns the text of a content document. Text nodes are kept as
// they are; a newline follows each block element so words of adjacent blocks
// are never glued together.
func xhtmlText(doc *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			buf.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "head":
				return
			case "br":
				buf.WriteByte('\n')
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && isBlock(n.Data) {
			buf.WriteByte('\n')
		}
	}

	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}
	return buf.String()
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "section", "article", "aside", "header", "footer", "nav",
		"blockquote", "pre", "li", "ul", "ol", "dl", "dt", "dd",
		"table", "tr", "td", "th", "figure", "figcaption", "hr",
		"h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

// documentHeading returns the first h1-h3 of the body, or the <title> text.
func documentHeading(doc *html.Node) string {
	if h := findHeading(doc); h != "" {
		return h
	}
	return findTitle(doc)
}

func findHeading(n *html.Node) string {
	if n.Type == html.ElementNode {
		if level := headingLevel(n.Data); level > 0 && level <= 3 {
			if t := textContent(n); t != "" {
				return t
			}
		}
		if n.Data == "head" {
			return ""
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findHeading(c); t != "" {
			return t
		}
	}
	return ""
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

// textContent joins the text below n with runs of whitespace collapsed.
func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
