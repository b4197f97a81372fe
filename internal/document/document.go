package document

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Element tags with meaning in a place or model file.
const (
	TagItem       = "Item"
	TagProperties = "Properties"
	TagRoblox     = "roblox"
)

const unknown = "Unknown"

var (
	// ErrEmptyDocument indicates the input contains no root element.
	ErrEmptyDocument = errors.New("document has no root element")
)

// Document is a parsed, read-only element tree.
// Nothing in the tree is mutated after Parse returns, so a Document can be
// shared by any number of goroutines.
type Document struct {
	root *Node
}

// Node is a single element of the parsed tree.
type Node struct {
	Tag      string
	attrs    []xml.Attr
	Children []*Node

	text    string
	hasText bool
}

// frame accumulates character data for an element that is still open.
type frame struct {
	node *Node
	text strings.Builder
}

// Load reads and parses the markup document at path.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	doc, err := Parse(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

// Parse builds a Document from r. Comments, processing instructions and
// directives are skipped; character data (CDATA included) is kept verbatim.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = true

	var (
		root  *Node
		stack []*frame
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{
				Tag:   t.Name.Local,
				attrs: append([]xml.Attr(nil), t.Attr...),
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("multiple root elements: %q after %q", n.Tag, root.Tag)
				}
				root = n
			} else {
				parent := stack[len(stack)-1].node
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, &frame{node: n})

		case xml.EndElement:
			f := stack[len(stack)-1]
			f.node.text = f.text.String()
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			f := stack[len(stack)-1]
			f.text.Write(t)
			f.node.hasText = true
		}
	}

	if root == nil {
		return nil, ErrEmptyDocument
	}
	return &Document{root: root}, nil
}

// Root returns the document element.
func (d *Document) Root() *Node {
	return d.root
}

// TopItems returns the top-level Item elements: the root itself when it is
// an Item, otherwise the Item children of a <roblox> root.
func (d *Document) TopItems() []*Node {
	switch d.root.Tag {
	case TagItem:
		return []*Node{d.root}
	case TagRoblox:
		return d.root.Items()
	}
	return nil
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// Text returns the element's direct character data. The second result is
// false when the element has no character data at all.
func (n *Node) Text() (string, bool) {
	return n.text, n.hasText
}

// ClassName returns the class attribute, or "Unknown" if absent.
func (n *Node) ClassName() string {
	if c, ok := n.Attr("class"); ok {
		return c
	}
	return unknown
}

// PropertyName returns the name attribute of a property entry, or
// "Unknown" if absent.
func (n *Node) PropertyName() string {
	if name, ok := n.Attr("name"); ok {
		return name
	}
	return unknown
}

// Items returns the children tagged Item, in document order.
func (n *Node) Items() []*Node {
	var items []*Node
	for _, c := range n.Children {
		if c.Tag == TagItem {
			items = append(items, c)
		}
	}
	return items
}

// Properties returns the first Properties child, or nil.
func (n *Node) Properties() *Node {
	for _, c := range n.Children {
		if c.Tag == TagProperties {
			return c
		}
	}
	return nil
}
