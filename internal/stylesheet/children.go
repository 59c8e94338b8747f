package stylesheet

import "slices"

const atEnd = -1

type children struct {
	nodes []Node
}

// Nodes returns the children in document order. The slice must not be
// modified; use the Container methods instead.
func (c *children) Nodes() []Node {
	return c.nodes
}

func (c *children) insertAt(owner Container, i int, nodes []Node) {
	if len(nodes) == 0 {
		return
	}
	for _, n := range nodes {
		detach(n)
	}
	if i < 0 || i > len(c.nodes) {
		i = len(c.nodes)
	}
	c.nodes = slices.Insert(c.nodes, i, nodes...)
	for _, n := range nodes {
		n.setParent(owner)
	}
}

func (c *children) insertRelative(owner Container, ref, n Node, offset int) {
	// detach first: moving within the same container shifts ref's index
	detach(n)
	i := c.index(ref)
	if i < 0 {
		i = atEnd
	} else {
		i += offset
	}
	c.insertAt(owner, i, []Node{n})
}

func (c *children) removeChild(n Node) bool {
	i := c.index(n)
	if i < 0 {
		return false
	}
	c.nodes = slices.Delete(c.nodes, i, i+1)
	n.setParent(nil)
	return true
}

func (c *children) index(n Node) int {
	for i, child := range c.nodes {
		if child == n {
			return i
		}
	}
	return -1
}

func detach(n Node) {
	if p := n.Parent(); p != nil {
		p.RemoveChild(n)
	}
}

// Remove detaches n from its parent. It reports whether n had a parent.
func Remove(n Node) bool {
	p := n.Parent()
	if p == nil {
		return false
	}
	return p.RemoveChild(n)
}

// RootOf returns the document n belongs to, or nil if n is detached
func RootOf(n Node) *Root {
	for n != nil {
		if r, ok := n.(*Root); ok {
			return r
		}
		p := n.Parent()
		if p == nil {
			return nil
		}
		n = p
	}
	return nil
}
