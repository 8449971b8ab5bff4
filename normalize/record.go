package normalize

import (
	"fmt"
	"sort"
	"strings"
)

// Record is one raw source record: a delimited row or an XML element.
// Lookup reports whether the locator matched at all; a missing locator is a
// valid result, not an error.
type Record interface {
	Lookup(locator string) (string, bool)
	// String renders the raw record for diagnostics.
	String() string
}

// Row is a delimited-text record keyed by header column.
type Row map[string]string

func (r Row) Lookup(locator string) (string, bool) {
	v, ok := r[locator]
	return v, ok
}

func (r Row) String() string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%q", k, r[k]))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// Element is a node of a parsed XML document.
type Element struct {
	Name     string
	Text     string
	Attrs    map[string]string
	Children []*Element
}

// Lookup resolves a child path such as "Cijena/Iznos" to the first non-empty
// text among all matching elements. A path that only matches empty elements
// still reports ok.
func (e *Element) Lookup(locator string) (string, bool) {
	nodes := e.match(locator)
	if len(nodes) == 0 {
		return "", false
	}
	for _, node := range nodes {
		if node.Text != "" {
			return node.Text, true
		}
	}
	return "", true
}

// match returns every element reachable by the slash separated child path,
// in document order.
func (e *Element) match(path string) []*Element {
	if e == nil || path == "" {
		return nil
	}
	nodes := []*Element{e}
	for _, name := range strings.Split(path, "/") {
		var next []*Element
		for _, node := range nodes {
			for _, child := range node.Children {
				if child.Name == name {
					next = append(next, child)
				}
			}
		}
		if len(next) == 0 {
			return nil
		}
		nodes = next
	}
	return nodes
}

// Find returns the first element matching the slash separated child path.
func (e *Element) Find(path string) *Element {
	if e == nil || path == "" {
		return nil
	}
	node := e
	for _, name := range strings.Split(path, "/") {
		var next *Element
		for _, child := range node.Children {
			if child.Name == name {
				next = child
				break
			}
		}
		if next == nil {
			return nil
		}
		node = next
	}
	return node
}

// FindAll returns every descendant named name, in document order.
func (e *Element) FindAll(name string) []*Element {
	var out []*Element
	var walk func(*Element)
	walk = func(n *Element) {
		for _, child := range n.Children {
			if child.Name == name {
				out = append(out, child)
			}
			walk(child)
		}
	}
	if e != nil {
		walk(e)
	}
	return out
}

func (e *Element) String() string {
	var b strings.Builder
	b.WriteString("<" + e.Name + ">")
	for _, child := range e.Children {
		if len(child.Children) > 0 {
			b.WriteString(child.String())
			continue
		}
		fmt.Fprintf(&b, "<%s>%s</%s>", child.Name, child.Text, child.Name)
	}
	b.WriteString("</" + e.Name + ">")
	return b.String()
}

// Override layers rewritten values over a record. It lets a chain fix one
// raw value before the shared extraction runs.
type Override struct {
	Base   Record
	Values map[string]string
}

// WithValues returns rec with the given locators replaced.
func WithValues(rec Record, values map[string]string) Record {
	return Override{Base: rec, Values: values}
}

func (o Override) Lookup(locator string) (string, bool) {
	if v, ok := o.Values[locator]; ok {
		return v, true
	}
	return o.Base.Lookup(locator)
}

func (o Override) String() string {
	return o.Base.String()
}
