package sapling

import (
	"fmt"
	"iter"
)

// DefaultMaxDepth bounds tree depth when NewTree is given no explicit limit.
const DefaultMaxDepth = 32

// Tree owns a fixed-capacity pool of nodes. Allocation bumps through the pool
// and never frees individual slots; Clear resets the whole pool and recreates
// the root. The pool never grows, so building a frame performs no node
// allocations once the Tree exists.
//
// A Tree is not safe for concurrent use.
type Tree struct {
	nodes    []Node // len = slots in use, cap = capacity
	maxDepth int
	nextID   uint32
	root     NodeRef
	hitBuf   []NodeRef
}

// NewTree creates a tree with room for maxNodes nodes, including the root.
// A maxDepth of zero or less selects DefaultMaxDepth.
func NewTree(maxNodes, maxDepth int) *Tree {
	if maxNodes < 1 {
		panic("sapling: tree capacity must be at least 1")
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	t := &Tree{
		nodes:    make([]Node, 0, maxNodes),
		maxDepth: maxDepth,
	}
	t.Clear()
	return t
}

// Clear resets every slot and recreates the root. All previously issued
// handles become invalid and IDs restart.
func (t *Tree) Clear() {
	clear(t.nodes)
	t.nodes = t.nodes[:0]
	t.nextID = 0
	t.hitBuf = t.hitBuf[:0]
	// Capacity is at least 1, so the root always fits.
	t.root, _ = t.Create(KindRoot, DefaultProps())
}

// Root returns the permanent root handle.
func (t *Tree) Root() NodeRef {
	return t.root
}

// Len returns the number of pool slots in use, including detached nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Cap returns the pool capacity.
func (t *Tree) Cap() int {
	return cap(t.nodes)
}

// MaxDepth returns the depth bound.
func (t *Tree) MaxDepth() int {
	return t.maxDepth
}

// Node returns the node for ref, or nil if ref is not a live slot.
// The pointer stays valid until the next Clear.
func (t *Tree) Node(ref NodeRef) *Node {
	if ref < 0 || int(ref) >= len(t.nodes) {
		return nil
	}
	return &t.nodes[ref]
}

// mustNode returns the node for ref or panics naming op.
func (t *Tree) mustNode(ref NodeRef, op string) *Node {
	n := t.Node(ref)
	if n == nil {
		panic(fmt.Sprintf("sapling: %s: invalid node handle %d", op, ref))
	}
	return n
}

// Create allocates the next pool slot as a detached node. It fails with
// ErrOutOfCapacity once the pool is full; it never wraps or evicts.
func (t *Tree) Create(kind NodeKind, props Props) (NodeRef, error) {
	if len(t.nodes) == cap(t.nodes) {
		return NoNode, ErrOutOfCapacity
	}
	ref := NodeRef(len(t.nodes))
	t.nextID++
	t.nodes = t.nodes[:len(t.nodes)+1]
	t.nodes[ref].reset(t.nextID, kind, props)
	return ref, nil
}

// CreateChild allocates a node and appends it to parent.
func (t *Tree) CreateChild(parent NodeRef, kind NodeKind, props Props) (NodeRef, error) {
	t.mustNode(parent, "CreateChild")
	if t.nodes[parent].depth+1 > t.maxDepth {
		return NoNode, ErrMaxDepth
	}
	ref, err := t.Create(kind, props)
	if err != nil {
		return NoNode, err
	}
	if err := t.AppendChild(parent, ref); err != nil {
		return NoNode, err
	}
	return ref, nil
}

// AppendChild links child as the last child of parent in O(1) and sets the
// depth of child's subtree. A child that already has a parent is moved.
// Panics if either handle is invalid, child is the root, or the append would
// create a cycle. Returns ErrMaxDepth if the subtree would exceed the bound.
func (t *Tree) AppendChild(parent, child NodeRef) error {
	p := t.mustNode(parent, "AppendChild (parent)")
	c := t.mustNode(child, "AppendChild (child)")
	if child == t.root {
		panic("sapling: cannot append the root node")
	}
	if t.isAncestor(child, parent) {
		panic("sapling: appending child would create a cycle")
	}
	depth := p.depth + 1
	if depth+t.height(child) > t.maxDepth {
		return ErrMaxDepth
	}
	if c.parent != NoNode {
		t.unlink(c.parent, child)
	}

	c.parent = parent
	c.prevSibling = p.lastChild
	c.nextSibling = NoNode
	if p.lastChild != NoNode {
		t.nodes[p.lastChild].nextSibling = child
	} else {
		p.firstChild = child
	}
	p.lastChild = child
	p.childCount++
	t.setDepth(child, depth)
	return nil
}

// RemoveChild unlinks child from parent in O(1). The slot is not reclaimed
// until Clear. Panics if child's parent is not parent.
func (t *Tree) RemoveChild(parent, child NodeRef) {
	t.mustNode(parent, "RemoveChild (parent)")
	c := t.mustNode(child, "RemoveChild (child)")
	if c.parent != parent {
		panic("sapling: child's parent is not this node")
	}
	t.unlink(parent, child)
	c.parent = NoNode
	t.setDepth(child, 0)
}

// unlink splices child out of parent's sibling list.
func (t *Tree) unlink(parent, child NodeRef) {
	p := &t.nodes[parent]
	c := &t.nodes[child]
	if c.prevSibling != NoNode {
		t.nodes[c.prevSibling].nextSibling = c.nextSibling
	} else {
		p.firstChild = c.nextSibling
	}
	if c.nextSibling != NoNode {
		t.nodes[c.nextSibling].prevSibling = c.prevSibling
	} else {
		p.lastChild = c.prevSibling
	}
	c.prevSibling = NoNode
	c.nextSibling = NoNode
	p.childCount--
}

// isAncestor reports whether candidate is node or one of its ancestors.
func (t *Tree) isAncestor(candidate, node NodeRef) bool {
	for p := node; p != NoNode; p = t.nodes[p].parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// height returns the number of levels below ref (0 for a leaf).
func (t *Tree) height(ref NodeRef) int {
	h := 0
	for c := t.nodes[ref].firstChild; c != NoNode; c = t.nodes[c].nextSibling {
		h = max(h, t.height(c)+1)
	}
	return h
}

// setDepth assigns depth to ref and the matching depths to its descendants.
func (t *Tree) setDepth(ref NodeRef, depth int) {
	t.nodes[ref].depth = depth
	for c := t.nodes[ref].firstChild; c != NoNode; c = t.nodes[c].nextSibling {
		t.setDepth(c, depth+1)
	}
}

// --- Queries ---

// Parent returns ref's parent handle or NoNode.
func (t *Tree) Parent(ref NodeRef) NodeRef {
	return t.mustNode(ref, "Parent").parent
}

// ChildCount returns the number of direct children of ref.
func (t *Tree) ChildCount(ref NodeRef) int {
	return t.mustNode(ref, "ChildCount").childCount
}

// ChildAt returns the index-th child of ref, or NoNode if index is out of
// range. Walks from whichever end of the sibling list is closer.
func (t *Tree) ChildAt(ref NodeRef, index int) NodeRef {
	n := t.mustNode(ref, "ChildAt")
	if index < 0 || index >= n.childCount {
		return NoNode
	}
	if index <= n.childCount/2 {
		c := n.firstChild
		for i := 0; i < index; i++ {
			c = t.nodes[c].nextSibling
		}
		return c
	}
	c := n.lastChild
	for i := n.childCount - 1; i > index; i-- {
		c = t.nodes[c].prevSibling
	}
	return c
}

// Children returns an iterator over ref's direct children in order.
func (t *Tree) Children(ref NodeRef) iter.Seq[NodeRef] {
	first := t.mustNode(ref, "Children").firstChild
	return func(yield func(NodeRef) bool) {
		for c := first; c != NoNode; {
			next := t.nodes[c].nextSibling
			if !yield(c) {
				return
			}
			c = next
		}
	}
}

// Walk visits the attached tree in pre-order starting at the root. When fn
// returns false the node's children are skipped.
func (t *Tree) Walk(fn func(ref NodeRef, n *Node) bool) {
	t.walk(t.root, fn)
}

func (t *Tree) walk(ref NodeRef, fn func(NodeRef, *Node) bool) {
	if !fn(ref, &t.nodes[ref]) {
		return
	}
	for c := t.nodes[ref].firstChild; c != NoNode; c = t.nodes[c].nextSibling {
		t.walk(c, fn)
	}
}

// NodeByID returns the handle of the node with the given ID, or NoNode.
// IDs are issued in allocation order, so the lookup is O(1).
func (t *Tree) NodeByID(id uint32) NodeRef {
	if id == 0 || int(id) > len(t.nodes) {
		return NoNode
	}
	ref := NodeRef(id - 1)
	if t.nodes[ref].ID != id {
		return NoNode
	}
	return ref
}

// NodeByKey returns the first attached node in pre-order whose Props.Key is
// key, or NoNode. Key 0 never matches.
func (t *Tree) NodeByKey(key uint32) NodeRef {
	if key == 0 {
		return NoNode
	}
	found := NoNode
	t.Walk(func(ref NodeRef, n *Node) bool {
		if found != NoNode {
			return false
		}
		if n.Props.Key == key {
			found = ref
			return false
		}
		return true
	})
	return found
}

// HitTest returns the topmost visible node whose bounds contain (x, y), or
// NoNode. Nodes later in paint order are on top; invisible nodes hide their
// whole subtree. The root never matches.
func (t *Tree) HitTest(x, y int) NodeRef {
	t.hitBuf = t.hitBuf[:0]
	t.Walk(func(ref NodeRef, n *Node) bool {
		if !n.Props.Visible {
			return false
		}
		if ref != t.root {
			t.hitBuf = append(t.hitBuf, ref)
		}
		return true
	})

	// Iterate backward (reverse paint order): topmost node first.
	for i := len(t.hitBuf) - 1; i >= 0; i-- {
		ref := t.hitBuf[i]
		if t.nodes[ref].Props.Bounds().Contains(x, y) {
			return ref
		}
	}
	return NoNode
}
