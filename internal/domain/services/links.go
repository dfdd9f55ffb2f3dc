package services

import (
	"sort"

	"github.com/dmoren/circuitelo/internal/domain/records"
)

// linkSet is an in-memory union-find over identity ids. The canonical id of
// a component is always its numerically smallest member, so parent pointers
// only ever point downward and chains cannot cycle.
type linkSet struct {
	parent map[int64]int64
}

func newLinkSet(links []records.IdentityLink) *linkSet {
	ls := &linkSet{parent: make(map[int64]int64, len(links))}
	for _, l := range links {
		ls.parent[l.OldID] = l.NewID
	}
	return ls
}

// find returns the canonical id for id, compressing the path as it goes.
func (ls *linkSet) find(id int64) int64 {
	root := id
	for {
		next, ok := ls.parent[root]
		if !ok || next == root {
			break
		}
		root = next
	}
	// Path compression: repoint every node on the walk directly at the root.
	for id != root {
		next := ls.parent[id]
		ls.parent[id] = root
		id = next
	}
	return root
}

// union merges the components of a and b and returns the canonical id,
// which is the smaller of the two roots.
func (ls *linkSet) union(a, b int64) int64 {
	ra, rb := ls.find(a), ls.find(b)
	if ra == rb {
		return ra
	}
	if rb < ra {
		ra, rb = rb, ra
	}
	ls.parent[rb] = ra
	return ra
}

// flattened returns one fully-dereferenced link per superseded id, sorted by
// old id. Persisting this set keeps the stored table transitively closed.
func (ls *linkSet) flattened() []records.IdentityLink {
	links := make([]records.IdentityLink, 0, len(ls.parent))
	for old := range ls.parent {
		if root := ls.find(old); root != old {
			links = append(links, records.IdentityLink{OldID: old, NewID: root})
		}
	}
	sort.Slice(links, func(i, j int) bool { return links[i].OldID < links[j].OldID })
	return links
}
