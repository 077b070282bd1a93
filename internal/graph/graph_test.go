package graph

import "testing"

func TestNewChildAndChildren(t *testing.T) {
	a := NewArena[string, int]("root")
	c1 := a.NewChild(a.Root(), "a")
	c2 := a.NewChild(a.Root(), "b")

	kids := a.Children(a.Root())
	if len(kids) != 2 || kids[0] != c1 || kids[1] != c2 {
		t.Fatalf("expected children [%d %d], got %v", c1, c2, kids)
	}
	if a.Depth(c1) != 1 {
		t.Fatalf("expected depth=1, got %d", a.Depth(c1))
	}
}

func TestDetachPreservesParentForPath(t *testing.T) {
	a := NewArena[string, int]("root")
	c := a.NewChild(a.Root(), "child")
	gc := a.NewChild(c, "grandchild")

	a.Detach(c)

	if len(a.Children(a.Root())) != 0 {
		t.Fatalf("expected detach to remove child from parent's child list")
	}
	path := a.Path(gc)
	if len(path) != 3 || path[0] != a.Root() || path[1] != c || path[2] != gc {
		t.Fatalf("expected path root->child->grandchild to survive detach, got %v", path)
	}
}

func TestBFSPropagatesPerBranchState(t *testing.T) {
	a := NewArena[string, int]("root")
	left := a.NewChild(a.Root(), "left")
	a.NewChild(left, "left.left")
	a.NewChild(a.Root(), "right")

	visited := map[NodeID]int{}
	BFS(a, a.Root(), 0, func(id NodeID, depth int) int {
		visited[id] = depth
		return depth + 1
	})

	if visited[a.Root()] != 0 {
		t.Fatalf("expected root to be visited with state 0")
	}
	if visited[left] != 1 {
		t.Fatalf("expected left child to be visited with state 1")
	}
}
