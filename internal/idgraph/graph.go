package idgraph

import (
	"math"
	"strconv"

	"alsdoctor/internal/alsfile"
)

// Identifier is a non-negative integer naming one owner node in a document.
type Identifier int64

const (
	ownerAttr = "Id"

	// TagPointee references its target through an Id attribute.
	TagPointee = "Pointee"
	// TagPointeeID references its target through a Value attribute.
	TagPointeeID = "PointeeId"
)

// Role classifies how a node takes part in the identifier graph.
type Role int

const (
	RoleNone Role = iota
	RoleOwner
	RoleReference
)

// Classify returns the node's role and the identifier it carries. Nodes with
// missing, non-numeric or negative values have RoleNone.
func Classify(n *alsfile.RawNode) (Role, Identifier) {
	if n == nil {
		return RoleNone, 0
	}
	switch n.Tag {
	case TagPointee:
		if id, ok := parseIdentifier(n.AttrValue(ownerAttr)); ok {
			return RoleReference, id
		}
		return RoleNone, 0
	case TagPointeeID:
		if id, ok := parseIdentifier(n.AttrValue("Value")); ok {
			return RoleReference, id
		}
		return RoleNone, 0
	}
	if raw, ok := n.Attr(ownerAttr); ok {
		if id, ok := parseIdentifier(raw); ok {
			return RoleOwner, id
		}
	}
	return RoleNone, 0
}

func parseIdentifier(raw string) (Identifier, bool) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return Identifier(v), true
}

func setReference(n *alsfile.RawNode, id Identifier) {
	value := strconv.FormatInt(int64(id), 10)
	if n.Tag == TagPointeeID {
		n.SetAttr("Value", value)
		return
	}
	n.SetAttr(ownerAttr, value)
}

// MaxIdentifier returns the largest owner identifier in the tree, or zero.
func MaxIdentifier(root *alsfile.RawNode) Identifier {
	var highest Identifier
	root.Walk(func(n *alsfile.RawNode) bool {
		if role, id := Classify(n); role == RoleOwner && id > highest {
			highest = id
		}
		return true
	})
	return highest
}

// Owners lists owner identifiers in document order.
func Owners(root *alsfile.RawNode) []Identifier {
	return collect(root, RoleOwner)
}

// References lists reference targets in document order.
func References(root *alsfile.RawNode) []Identifier {
	return collect(root, RoleReference)
}

func collect(root *alsfile.RawNode, want Role) []Identifier {
	var out []Identifier
	root.Walk(func(n *alsfile.RawNode) bool {
		if role, id := Classify(n); role == want {
			out = append(out, id)
		}
		return true
	})
	return out
}

// Remap is the old-to-new owner mapping produced by one clone.
type Remap map[Identifier]Identifier

// CloneWithRemap deep-copies root and renumbers it. Pass one assigns start,
// start+1, ... to owners in document order; pass two rewrites references whose
// target was renumbered. The returned identifier is the next free one.
func CloneWithRemap(root *alsfile.RawNode, start Identifier) (*alsfile.RawNode, Identifier) {
	clone, next, _ := CloneWithMapping(root, start)
	return clone, next
}

// CloneWithMapping is CloneWithRemap that also returns the mapping it applied.
// An owner identifier that repeats inside the subtree keeps the first mapping
// for references; each occurrence still receives its own new identifier.
func CloneWithMapping(root *alsfile.RawNode, start Identifier) (*alsfile.RawNode, Identifier, Remap) {
	if start < 0 {
		panic("idgraph: negative starting identifier")
	}
	clone := root.Clone()
	mapping := Remap{}
	next := start

	clone.Walk(func(n *alsfile.RawNode) bool {
		role, old := Classify(n)
		if role != RoleOwner {
			return true
		}
		if next == math.MaxInt64 {
			panic("idgraph: identifier overflow")
		}
		if _, seen := mapping[old]; !seen {
			mapping[old] = next
		}
		n.SetAttr(ownerAttr, strconv.FormatInt(int64(next), 10))
		next++
		return true
	})

	clone.Walk(func(n *alsfile.RawNode) bool {
		role, old := Classify(n)
		if role != RoleReference {
			return true
		}
		if mapped, ok := mapping[old]; ok {
			setReference(n, mapped)
		}
		return true
	})

	return clone, next, mapping
}
