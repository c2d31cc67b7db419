package render

import (
	"bytes"
	"regexp"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"meetingprep-ai/internal/meeting/domain"
)

var boldPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)

// HTML renders brief markdown as an HTML fragment. Text is escaped.
func HTML(content string) (string, error) {
	if content == "" {
		return "<p>" + domain.DefaultBriefContent + "</p>", nil
	}

	var buf bytes.Buffer
	for _, b := range Parse(content) {
		if err := html.Render(&buf, blockNode(b)); err != nil {
			return "", goerr.Wrap(err, "failed to render brief")
		}
	}
	return buf.String(), nil
}

func blockNode(b Block) *html.Node {
	switch b.Kind {
	case KindHeading:
		a := headingAtom(b.Level)
		h := element(a)
		if b.Level == 2 {
			icon := element(atom.Span)
			icon.Attr = []html.Attribute{{Key: "class", Val: "section-icon"}}
			icon.AppendChild(textNode(b.Icon))
			h.AppendChild(icon)
		}
		appendInline(h, b.Text)
		return h

	case KindList:
		ul := element(atom.Ul)
		for _, item := range b.Items {
			li := element(atom.Li)
			appendInline(li, item)
			ul.AppendChild(li)
		}
		return ul

	case KindLineBreak:
		return element(atom.Br)

	default:
		// document nodes render only their children
		run := &html.Node{Type: html.DocumentNode}
		appendInline(run, b.Text)
		return run
	}
}

func headingAtom(level int) atom.Atom {
	switch level {
	case 1:
		return atom.H1
	case 2:
		return atom.H2
	default:
		return atom.H3
	}
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func appendInline(parent *html.Node, text string) {
	last := 0
	for _, m := range boldPattern.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > last {
			parent.AppendChild(textNode(text[last:m[0]]))
		}
		strong := element(atom.Strong)
		strong.AppendChild(textNode(text[m[2]:m[3]]))
		parent.AppendChild(strong)
		last = m[1]
	}
	if last < len(text) {
		parent.AppendChild(textNode(text[last:]))
	}
}
