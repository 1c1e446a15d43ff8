package alsfile

import "slices"

// Attr is one attribute of a RawNode. Attributes are stored in document order.
type Attr struct {
	Name  string
	Value string
}

// RawNode is a generic element: tag, ordered attributes, ordered children and
// any non-whitespace character data.
type RawNode struct {
	Tag      string
	Attrs    []Attr
	Children []*RawNode
	Text     string
}

// NewNode builds a node with the given tag and attributes.
func NewNode(tag string, attrs ...Attr) *RawNode {
	return &RawNode{Tag: tag, Attrs: attrs}
}

// Attr returns the value of the named attribute.
func (n *RawNode) Attr(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrValue returns the named attribute or an empty string.
func (n *RawNode) AttrValue(name string) string {
	v, _ := n.Attr(name)
	return v
}

// SetAttr replaces the named attribute in place or appends it when absent.
func (n *RawNode) SetAttr(name, value string) {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

// Append adds children and returns n for chaining.
func (n *RawNode) Append(children ...*RawNode) *RawNode {
	n.Children = append(n.Children, children...)
	return n
}

// InsertChild places child at index i, clamping i to the valid range.
func (n *RawNode) InsertChild(i int, child *RawNode) {
	i = max(0, min(i, len(n.Children)))
	n.Children = slices.Insert(n.Children, i, child)
}

// Child returns the first direct child with the given tag.
func (n *RawNode) Child(tag string) *RawNode {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// ChildrenByTag returns every direct child with the given tag.
func (n *RawNode) ChildrenByTag(tag string) []*RawNode {
	if n == nil {
		return nil
	}
	var out []*RawNode
	for _, c := range n.Children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// Path follows a chain of child tags and returns the node at the end, or nil
// when any step is missing.
func (n *RawNode) Path(tags ...string) *RawNode {
	cur := n
	for _, tag := range tags {
		cur = cur.Child(tag)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// ValueAt resolves Path(tags...) and returns its Value attribute.
func (n *RawNode) ValueAt(tags ...string) (string, bool) {
	node := n.Path(tags...)
	if node == nil {
		return "", false
	}
	return node.Attr("Value")
}

// Walk visits n and its descendants in document order. Returning false from
// fn skips the children of the node just visited.
func (n *RawNode) Walk(fn func(*RawNode) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Clone returns a deep copy of the subtree rooted at n.
func (n *RawNode) Clone() *RawNode {
	if n == nil {
		return nil
	}
	out := &RawNode{
		Tag:   n.Tag,
		Text:  n.Text,
		Attrs: slices.Clone(n.Attrs),
	}
	if len(n.Children) > 0 {
		out.Children = make([]*RawNode, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// Equal reports structural equality: same tag, text, attributes in the same
// order and pairwise equal children.
func (n *RawNode) Equal(o *RawNode) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.Tag != o.Tag || n.Text != o.Text {
		return false
	}
	if !slices.Equal(n.Attrs, o.Attrs) {
		return false
	}
	if len(n.Children) != len(o.Children) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// Document is a decoded container: the XML declaration and the root element.
type Document struct {
	Header string
	Root   *RawNode
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	return &Document{Header: d.Header, Root: d.Root.Clone()}
}

// Equal compares the root trees. The header is not part of structural equality.
func (d *Document) Equal(o *Document) bool {
	if d == nil || o == nil {
		return d == o
	}
	return d.Root.Equal(o.Root)
}
