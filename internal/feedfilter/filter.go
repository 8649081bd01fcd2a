package feedfilter

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/beevik/etree"
)

// Filter removes non-passing entries from a feed document. Three dialects
// are supported, dispatched on the root element: plain RSS, Atom, and
// RDF/RSS 1.0. Unrecognized dialects pass through unfiltered; items in a
// known dialect that cannot be matched by link are left untouched.
type Filter struct {
	logger *slog.Logger
}

// New builds a feed filter.
func New(logger *slog.Logger) *Filter {
	return &Filter{logger: logger}
}

// Apply parses the raw document, removes every entry whose link is absent
// from the pass set, and serializes the result with an XML declaration.
// The input bytes are never mutated. Applying the same pass set twice
// yields identical output.
func (f *Filter) Apply(raw []byte, passed map[string]bool) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("parse feed document: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, errors.New("feed document has no root element")
	}

	switch root.Tag {
	case "rss":
		filterRSS(root, passed)
	case "feed":
		filterAtom(root, passed)
	case "RDF":
		filterRDF(root, passed)
	default:
		f.logger.Warn("unknown feed dialect, passing through", "root", root.FullTag())
	}

	ensureDeclaration(doc)

	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("serialize feed document: %w", err)
	}
	return out, nil
}

func filterRSS(root *etree.Element, passed map[string]bool) {
	channel := childByLocal(root, "channel")
	if channel == nil {
		return
	}
	for _, item := range childrenByLocal(channel, "item") {
		link := childByLocal(item, "link")
		if link == nil {
			continue
		}
		if !passed[strings.TrimSpace(link.Text())] {
			channel.RemoveChild(item)
		}
	}
}

func filterAtom(root *etree.Element, passed map[string]bool) {
	for _, entry := range childrenByLocal(root, "entry") {
		link := childByLocal(entry, "link")
		if link == nil {
			continue
		}
		href, ok := attrByLocal(link, "href")
		if !ok {
			continue
		}
		if !passed[href] {
			root.RemoveChild(entry)
		}
	}
}

// filterRDF removes item bodies by rdf:about and, independently, prunes
// the rdf:Seq manifest references so the manifest and the bodies stay
// consistent.
func filterRDF(root *etree.Element, passed map[string]bool) {
	for _, item := range childrenByLocal(root, "item") {
		about, ok := attrByLocal(item, "about")
		if !ok {
			continue
		}
		if !passed[about] {
			root.RemoveChild(item)
		}
	}

	for _, channel := range childrenByLocal(root, "channel") {
		items := childByLocal(channel, "items")
		if items == nil {
			continue
		}
		seq := childByLocal(items, "Seq")
		if seq == nil {
			continue
		}
		for _, li := range childrenByLocal(seq, "li") {
			resource, _ := attrByLocal(li, "resource")
			if !passed[resource] {
				seq.RemoveChild(li)
			}
		}
	}
}

// Namespace prefixes vary across publishers, so lookups match on local
// names only.

func childrenByLocal(el *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	for _, child := range el.ChildElements() {
		if child.Tag == tag {
			out = append(out, child)
		}
	}
	return out
}

func childByLocal(el *etree.Element, tag string) *etree.Element {
	for _, child := range el.ChildElements() {
		if child.Tag == tag {
			return child
		}
	}
	return nil
}

func attrByLocal(el *etree.Element, key string) (string, bool) {
	for _, attr := range el.Attr {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

func ensureDeclaration(doc *etree.Document) {
	for _, token := range doc.Child {
		if pi, ok := token.(*etree.ProcInst); ok && pi.Target == "xml" {
			return
		}
	}
	doc.InsertChildAt(0, &etree.ProcInst{Target: "xml", Inst: `version="1.0" encoding="UTF-8"`})
}
