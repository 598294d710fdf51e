package aqhi

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

// element is a generic XML node, enough for the fixed-path lookups the feeds need
// and for keeping unknown region attributes.
type element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []element  `xml:",any"`
}

// parseTree decodes UTF-8 text into an element tree. The input has already been
// transcoded, so the declared encoding is accepted as-is.
func parseTree(text []byte) (*element, error) {
	d := xml.NewDecoder(bytes.NewReader(text))
	d.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var root element
	if err := d.Decode(&root); err != nil {
		return nil, err
	}
	return &root, nil
}

// findAll returns the descendants matching a slash separated path of tag names.
func (e *element) findAll(path string) []*element {
	current := []*element{e}
	for _, tag := range strings.Split(path, "/") {
		var next []*element
		for _, el := range current {
			for i := range el.Children {
				if el.Children[i].XMLName.Local == tag {
					next = append(next, &el.Children[i])
				}
			}
		}
		current = next
	}
	return current
}

func (e *element) find(path string) *element {
	if found := e.findAll(path); len(found) > 0 {
		return found[0]
	}
	return nil
}

// findText returns the trimmed text at path and whether the element exists.
func (e *element) findText(path string) (string, bool) {
	el := e.find(path)
	if el == nil {
		return "", false
	}
	return el.text(), true
}

func (e *element) text() string {
	return strings.TrimSpace(e.Text)
}

func (e *element) attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}
