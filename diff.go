package sapling

// Change is one entry of a diff's ordered change list.
type Change struct {
	Kind     ChangeKind
	NodeID   uint32 // ID in the tree the node lives in (old tree for removes)
	ParentID uint32 // parent's ID in the new tree; 0 for the root
	NodeKind NodeKind
	Index    int // position among the parent's children

	// Old and New point into the compared trees' pools and stay valid until
	// either tree is cleared. Old is nil for creates, New is nil for removes.
	Old *Props
	New *Props
}

// DiffResult holds the output of one diff: the ordered change list and the
// screen regions that need redrawing.
type DiffResult struct {
	Changes []Change
	Dirty   []Rect
}

// Reset empties the result, keeping its buffers.
func (d *DiffResult) Reset() {
	clear(d.Changes)
	d.Changes = d.Changes[:0]
	d.Dirty = d.Dirty[:0]
}

// Empty reports whether the diff found nothing to do.
func (d *DiffResult) Empty() bool {
	return len(d.Changes) == 0
}

// Counts returns how many creates, updates and removes the diff contains.
func (d *DiffResult) Counts() (created, updated, removed int) {
	for i := range d.Changes {
		switch d.Changes[i].Kind {
		case ChangeCreate:
			created++
		case ChangeUpdate:
			updated++
		case ChangeRemove:
			removed++
		}
	}
	return created, updated, removed
}

// DirtyArea returns the summed area of the dirty rectangles. Rectangles in
// the list never overlap at the moment they are merged, but chained merges
// can leave overlaps, so this is an upper bound on the distinct area.
func (d *DiffResult) DirtyArea() int {
	area := 0
	for _, r := range d.Dirty {
		area += r.Area()
	}
	return area
}

// addDirty merges r into the first overlapping rectangle or appends it.
// The list is an approximation, not a minimal partition: a merge can grow a
// rectangle until it overlaps others that were recorded earlier, and those
// are not re-merged. Only the union of all rectangles matters for
// correctness.
func (d *DiffResult) addDirty(r Rect) {
	if r.Empty() {
		return
	}
	for i := range d.Dirty {
		if d.Dirty[i].Overlaps(r) {
			d.Dirty[i] = d.Dirty[i].Union(r)
			return
		}
	}
	d.Dirty = append(d.Dirty, r)
}

// Differ compares two trees positionally. It keeps its result buffers
// between calls, so steady-state diffing does not allocate.
type Differ struct {
	result DiffResult
	old    *Tree
	new    *Tree
}

// Diff compares two trees and returns a freshly allocated result.
func Diff(old, new *Tree) *DiffResult {
	var d Differ
	return d.Diff(old, new)
}

// Diff compares old against new. Children are matched by position, not by
// key: the i-th child of an old node is compared with the i-th child of the
// corresponding new node. Inserting or deleting in the middle of a sibling
// list therefore reports every following sibling as changed.
//
// The returned result is owned by the Differ and is overwritten by the next
// call.
func (df *Differ) Diff(old, new *Tree) *DiffResult {
	df.result.Reset()
	df.old, df.new = old, new
	df.diffNode(old.root, new.root, 0, 0, 0)
	df.old, df.new = nil, nil
	return &df.result
}

// diffNode applies the comparison rules to one tree position.
func (df *Differ) diffNode(o, n NodeRef, parentID uint32, index, depth int) {
	switch {
	case o == NoNode && n == NoNode:
		return
	case o == NoNode:
		df.emitCreate(n, parentID, index, depth)
		return
	case n == NoNode:
		df.emitRemove(o, parentID, index)
		return
	}

	on := &df.old.nodes[o]
	nn := &df.new.nodes[n]
	if on.Kind != nn.Kind {
		df.emitRemove(o, parentID, index)
		df.emitCreate(n, parentID, index, depth)
		return
	}
	if !on.Props.Equal(&nn.Props) {
		df.result.Changes = append(df.result.Changes, Change{
			Kind:     ChangeUpdate,
			NodeID:   nn.ID,
			ParentID: parentID,
			NodeKind: nn.Kind,
			Index:    index,
			Old:      &on.Props,
			New:      &nn.Props,
		})
		df.result.addDirty(inkBounds(on.Kind, &on.Props))
		df.result.addDirty(inkBounds(nn.Kind, &nn.Props))
	}
	if depth >= df.new.maxDepth && depth >= df.old.maxDepth {
		return
	}

	oc, nc := on.firstChild, nn.firstChild
	for i := 0; oc != NoNode || nc != NoNode; i++ {
		df.diffNode(oc, nc, nn.ID, i, depth+1)
		if oc != NoNode {
			oc = df.old.nodes[oc].nextSibling
		}
		if nc != NoNode {
			nc = df.new.nodes[nc].nextSibling
		}
	}
}

// emitCreate records a create for n and, in pre-order, for its subtree.
func (df *Differ) emitCreate(n NodeRef, parentID uint32, index, depth int) {
	nn := &df.new.nodes[n]
	df.result.Changes = append(df.result.Changes, Change{
		Kind:     ChangeCreate,
		NodeID:   nn.ID,
		ParentID: parentID,
		NodeKind: nn.Kind,
		Index:    index,
		New:      &nn.Props,
	})
	df.result.addDirty(inkBounds(nn.Kind, &nn.Props))
	if depth >= df.new.maxDepth {
		return
	}
	i := 0
	for c := nn.firstChild; c != NoNode; c = df.new.nodes[c].nextSibling {
		df.emitCreate(c, nn.ID, i, depth+1)
		i++
	}
}

// emitRemove records a remove for o only. Its descendants get no change
// entries, but their ink bounds are still dirtied since children may paint
// outside their parent's box.
func (df *Differ) emitRemove(o NodeRef, parentID uint32, index int) {
	on := &df.old.nodes[o]
	df.result.Changes = append(df.result.Changes, Change{
		Kind:     ChangeRemove,
		NodeID:   on.ID,
		ParentID: parentID,
		NodeKind: on.Kind,
		Index:    index,
		Old:      &on.Props,
	})
	df.dirtySubtree(o)
}

func (df *Differ) dirtySubtree(o NodeRef) {
	on := &df.old.nodes[o]
	df.result.addDirty(inkBounds(on.Kind, &on.Props))
	for c := on.firstChild; c != NoNode; c = df.old.nodes[c].nextSibling {
		df.dirtySubtree(c)
	}
}
