package marquee

import "fmt"

// The arena is the Stage's map from handle to node. Everything here runs on
// the render goroutine while the queue is being drained.

// Node resolves a handle. Only valid on the render goroutine (inside
// Advance, Inspect callbacks or animation callbacks).
func (s *Stage) Node(id NodeID) (Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// NodeCount returns the number of live nodes, the root included.
func (s *Stage) NodeCount() int { return len(s.nodes) }

func (s *Stage) create(id NodeID, kind NodeKind) {
	if _, dup := s.nodes[id]; dup {
		return
	}
	s.nodes[id] = newNode(kind, id, s)
}

// attach places child under parent at index, detaching it from any previous
// parent first. Attaching a node beneath itself is a programming error.
func (s *Stage) attach(parentID, childID NodeID, index int) {
	pn, ok := s.nodes[parentID]
	if !ok {
		s.dropped("addChild", parentID, "parent not found")
		return
	}
	parent, ok := pn.(*Group)
	if !ok {
		s.dropped("addChild", parentID, "parent is not a group")
		return
	}
	child, ok := s.nodes[childID]
	if !ok {
		s.dropped("addChild", childID, "child not found")
		return
	}
	if childID == s.root {
		panic("marquee: cannot add the root as a child")
	}
	for p := parentID; p != NoNode; {
		if p == childID {
			panic(fmt.Sprintf("marquee: adding %v under %v would create a cycle", childID, parentID))
		}
		an, ok := s.nodes[p]
		if !ok {
			break
		}
		p = an.Parent()
	}

	cb := child.base()
	if cb.parent != NoNode {
		if old, ok := s.nodes[cb.parent].(*Group); ok {
			old.removeChild(childID)
		}
	}
	parent.insertChild(childID, index)
	cb.parent = parentID

	if s.debug {
		s.debugCheckTreeDepth(child)
		s.debugCheckChildCount(parent)
	}
}

// detach removes child from parent. The child stays alive, unattached.
func (s *Stage) detach(parentID, childID NodeID) {
	parent, ok := s.nodes[parentID].(*Group)
	if !ok {
		s.dropped("removeChild", parentID, "parent not found")
		return
	}
	child, ok := s.nodes[childID]
	if !ok || child.Parent() != parentID {
		s.dropped("removeChild", childID, "not a child")
		return
	}
	parent.removeChild(childID)
	child.base().parent = NoNode
}

// destroy removes id and its whole subtree from the arena. Properties are
// marked dead so in-flight animations stop on their next tick; GPU resources
// are reclaimed by the renderer after the frame.
func (s *Stage) destroy(id NodeID) {
	n, ok := s.nodes[id]
	if !ok {
		s.dropped("destroy", id, "not found")
		return
	}
	if id == s.root {
		s.dropped("destroy", id, "cannot destroy the root")
		return
	}
	if p, ok := s.nodes[n.Parent()].(*Group); ok {
		p.removeChild(id)
	}
	s.destroySubtree(n)
}

func (s *Stage) destroySubtree(n Node) {
	if g, ok := n.(*Group); ok {
		for _, c := range g.children {
			if cn, ok := s.nodes[c]; ok {
				s.destroySubtree(cn)
			}
		}
		g.children = nil
	}
	delete(s.nodes, n.ID())
	n.base().kill()
	s.graveyard = append(s.graveyard, n)
}

// takeGraveyard returns nodes destroyed since the last call.
func (s *Stage) takeGraveyard() []Node {
	g := s.graveyard
	s.graveyard = nil
	return g
}

func (s *Stage) dropped(op string, id NodeID, reason string) {
	s.stats.Dropped++
	Logger().Debug("marquee: dropped update", "op", op, "node", id, "reason", reason)
}
