package capsule

import (
	"io"
	"sort"

	"github.com/emicklei/dot"
	"github.com/pkg/errors"
)

// Dot renders the container's current dependency graph in Graphviz DOT form.
// Idempotent capsules are drawn dashed; edges point from a dependency to its
// dependents, the direction updates propagate in. Nodes are emitted in sorted
// order so the output is stable for a given graph state.
func (c *Container) Dot() string {
	var out string
	c.WithWriteTxn(func(txn *WriteTxn) {
		out = txn.dotGraph().String()
	})
	return out
}

// WriteDot writes the DOT rendering to w.
func (c *Container) WriteDot(w io.Writer) error {
	_, err := io.WriteString(w, c.Dot())
	return errors.Wrap(err, "could not write dependency graph")
}

func (t *WriteTxn) dotGraph() *dot.Graph {
	g := dot.NewGraph(dot.Directed)

	ids := make([]CapsuleId, 0, len(t.store.nodes))
	for id := range t.store.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})

	nodes := make(map[CapsuleId]dot.Node, len(ids))
	for _, id := range ids {
		n := g.Node(id.String())
		if t.store.nodes[id].isIdempotent() {
			n = n.Attr("style", "dashed")
		}
		nodes[id] = n
	}
	for _, id := range ids {
		for _, dependent := range t.store.nodes[id].dependents.items() {
			g.Edge(nodes[id], nodes[dependent])
		}
	}
	return g
}
