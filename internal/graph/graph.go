package graph

// Graph is a node/connection dataflow definition. It is authored either as a
// reusable component definition or as a script attached to elements.
type Graph struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name,omitempty" yaml:"name,omitempty"`
	Nodes       []Node       `json:"nodes" yaml:"nodes"`
	Connections []Connection `json:"connections" yaml:"connections"`
}

// Node is one operation instance within a graph.
type Node struct {
	ID   string         `json:"id" yaml:"id"`
	Type string         `json:"type" yaml:"type"`
	Data map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
}

// Connection links a source node's output to a named input socket of a target node.
type Connection struct {
	SourceNodeID   string `json:"sourceNodeId" yaml:"sourceNodeId"`
	TargetNodeID   string `json:"targetNodeId" yaml:"targetNodeId"`
	TargetSocketID string `json:"targetSocketId" yaml:"targetSocketId"`
}

// Find returns the node with the given id, or nil if the graph has none.
func (g *Graph) Find(nodeID string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == nodeID {
			return &g.Nodes[i]
		}
	}
	return nil
}

// Incoming returns the first connection that targets the given socket.
// Later connections into the same socket are ignored.
func (g *Graph) Incoming(nodeID, socketID string) (Connection, bool) {
	for _, c := range g.Connections {
		if c.TargetNodeID == nodeID && c.TargetSocketID == socketID {
			return c, true
		}
	}
	return Connection{}, false
}

// Output returns the first OUTPUT node of the graph.
func (g *Graph) Output() *Node {
	for i := range g.Nodes {
		if g.Nodes[i].Type == KindOutput {
			return &g.Nodes[i]
		}
	}
	return nil
}

// Actions returns the side-effecting nodes of the graph in declaration order.
func (g *Graph) Actions() []*Node {
	var out []*Node
	for i := range g.Nodes {
		if IsAction(g.Nodes[i].Type) {
			out = append(out, &g.Nodes[i])
		}
	}
	return out
}
