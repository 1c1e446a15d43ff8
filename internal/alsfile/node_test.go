package alsfile_test

import (
	"testing"

	"alsdoctor/internal/alsfile"
)

func TestRawNodeHelpers(t *testing.T) {
	root := alsfile.NewNode("Root").Append(
		alsfile.NewNode("A", alsfile.Attr{Name: "Value", Value: "1"}),
		alsfile.NewNode("B").Append(alsfile.NewNode("C", alsfile.Attr{Name: "Value", Value: "deep"})),
		alsfile.NewNode("A", alsfile.Attr{Name: "Value", Value: "2"}),
	)

	if got := len(root.ChildrenByTag("A")); got != 2 {
		t.Fatalf("expected 2 A children, got %d", got)
	}
	if v, ok := root.ValueAt("B", "C"); !ok || v != "deep" {
		t.Fatalf("ValueAt returned %q, %v", v, ok)
	}
	if root.Path("B", "missing", "C") != nil {
		t.Fatal("expected nil for missing path")
	}

	root.SetAttr("x", "1")
	root.SetAttr("x", "2")
	if len(root.Attrs) != 1 || root.AttrValue("x") != "2" {
		t.Fatalf("SetAttr should replace in place: %#v", root.Attrs)
	}

	root.InsertChild(1, alsfile.NewNode("Inserted"))
	if root.Children[1].Tag != "Inserted" {
		t.Fatalf("InsertChild placed node at wrong index: %q", root.Children[1].Tag)
	}
	root.InsertChild(99, alsfile.NewNode("Last"))
	if root.Children[len(root.Children)-1].Tag != "Last" {
		t.Fatal("InsertChild should clamp index to the end")
	}

	var visited []string
	root.Walk(func(n *alsfile.RawNode) bool {
		visited = append(visited, n.Tag)
		return n.Tag != "B"
	})
	want := []string{"Root", "A", "Inserted", "B", "A", "Last"}
	if len(visited) != len(want) {
		t.Fatalf("unexpected walk order: %v", visited)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Fatalf("unexpected walk order: %v", visited)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := alsfile.NewNode("Root", alsfile.Attr{Name: "Id", Value: "1"}).Append(
		alsfile.NewNode("Child", alsfile.Attr{Name: "Id", Value: "2"}),
	)
	clone := orig.Clone()
	if !clone.Equal(orig) {
		t.Fatal("clone should be structurally equal")
	}
	clone.SetAttr("Id", "10")
	clone.Children[0].SetAttr("Id", "20")
	if orig.AttrValue("Id") != "1" || orig.Children[0].AttrValue("Id") != "2" {
		t.Fatal("mutating the clone changed the original")
	}
	if clone.Equal(orig) {
		t.Fatal("expected clone to differ after mutation")
	}
}
