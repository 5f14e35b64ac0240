package preload

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ipcbridge/runtime/internal/httpmsg"
)

// InsertOptions augments Options with schemes the scheme handlers
// register, which get surfaced as a meta tag for the page to read.
type InsertOptions struct {
	Options
	ProtocolHandlerSchemes []string
}

// InsertIntoHTML parses htmlSource, injects the compiled preload
// script into <head> (creating one if absent), and — when
// UseHTMLMarkup is enabled — adds <meta> tags for headers, metadata,
// and registered protocol-handler schemes. It returns the serialized
// document.
func (p *Preload) InsertIntoHTML(htmlSource string, options InsertOptions) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlSource))
	if err != nil {
		return "", err
	}

	head := findOrCreateHead(doc)

	if options.Features.UseHTMLMarkup {
		for _, entry := range options.Headers.Entries() {
			head.AppendChild(httpEquivTag(httpmsg.HeaderCase(entry.Name), entry.Value))
		}
		for _, key := range sortedStringKeys(options.Metadata) {
			head.AppendChild(metaTag(key, options.Metadata[key]))
		}
		if len(options.ProtocolHandlerSchemes) > 0 {
			head.AppendChild(metaTag("protocol-handler-schemes", strings.Join(options.ProtocolHandlerSchemes, ",")))
		}
	}

	scriptNode := &html.Node{
		Type: html.ElementNode,
		Data: "script",
		Atom: atom.Script,
	}
	if options.Features.UseESM {
		scriptNode.Attr = append(scriptNode.Attr, html.Attribute{Key: "type", Val: "module"})
	}
	scriptNode.AppendChild(&html.Node{Type: html.TextNode, Data: p.Str()})

	if options.Features.UseHTMLMarkup {
		head.AppendChild(scriptNode)
	} else {
		// without HTML markup the script still needs a host: prepend
		// it as the first head child so it runs before page scripts.
		head.InsertBefore(scriptNode, head.FirstChild)
	}

	var out strings.Builder
	if err := html.Render(&out, doc); err != nil {
		return "", err
	}
	return out.String(), nil
}

func findOrCreateHead(doc *html.Node) *html.Node {
	var head, htmlNode *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Head:
				head = n
			case atom.Html:
				htmlNode = n
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if head != nil {
				return
			}
			walk(c)
		}
	}
	walk(doc)

	if head != nil {
		return head
	}

	head = &html.Node{Type: html.ElementNode, Data: "head", Atom: atom.Head}
	if htmlNode != nil {
		htmlNode.InsertBefore(head, htmlNode.FirstChild)
	} else {
		doc.AppendChild(head)
	}
	return head
}

func metaTag(name, content string) *html.Node {
	return &html.Node{
		Type: html.ElementNode,
		Data: "meta",
		Atom: atom.Meta,
		Attr: []html.Attribute{
			{Key: "name", Val: name},
			{Key: "content", Val: content},
		},
	}
}

// httpEquivTag renders a response header as <meta http-equiv="..."
// content="...">, the markup a page reads headers back from.
func httpEquivTag(name, content string) *html.Node {
	return &html.Node{
		Type: html.ElementNode,
		Data: "meta",
		Atom: atom.Meta,
		Attr: []html.Attribute{
			{Key: "http-equiv", Val: name},
			{Key: "content", Val: content},
		},
	}
}
