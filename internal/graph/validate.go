package graph

import "fmt"

// Issue codes reported by Validate.
const (
	IssueDuplicateSocket = "duplicate_socket"
	IssueMultipleOutputs = "multiple_outputs"
	IssueDanglingSource  = "dangling_source"
	IssueDanglingTarget  = "dangling_target"
	IssueUnknownKind     = "unknown_kind"
	IssueDuplicateNodeID = "duplicate_node_id"
)

// Issue is an authoring problem found in a graph. Issues never change how a
// graph evaluates; the evaluator resolves them by taking the first match.
type Issue struct {
	GraphID string `json:"graph_id"`
	NodeID  string `json:"node_id,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.NodeID != "" {
		return fmt.Sprintf("%s: node %s: %s", i.GraphID, i.NodeID, i.Message)
	}
	return fmt.Sprintf("%s: %s", i.GraphID, i.Message)
}

// Validate reports authoring problems in g.
func Validate(g *Graph) []Issue {
	var issues []Issue
	add := func(nodeID, code, format string, args ...any) {
		issues = append(issues, Issue{
			GraphID: g.ID,
			NodeID:  nodeID,
			Code:    code,
			Message: fmt.Sprintf(format, args...),
		})
	}

	seen := make(map[string]bool, len(g.Nodes))
	outputs := 0
	for _, n := range g.Nodes {
		if seen[n.ID] {
			add(n.ID, IssueDuplicateNodeID, "node id declared more than once")
		}
		seen[n.ID] = true
		if n.Type == KindOutput {
			outputs++
			if outputs == 2 {
				add(n.ID, IssueMultipleOutputs, "graph has more than one OUTPUT node; the first one is used")
			}
		}
		if !IsKnown(n.Type) {
			add(n.ID, IssueUnknownKind, "unknown node type %q passes its literal value through", n.Type)
		}
	}

	sockets := make(map[string]int)
	for _, c := range g.Connections {
		if !seen[c.SourceNodeID] {
			add(c.TargetNodeID, IssueDanglingSource, "socket %s is fed by missing node %s", c.TargetSocketID, c.SourceNodeID)
		}
		if !seen[c.TargetNodeID] {
			add(c.TargetNodeID, IssueDanglingTarget, "connection from %s targets a missing node", c.SourceNodeID)
			continue
		}
		key := c.TargetNodeID + "\x00" + c.TargetSocketID
		sockets[key]++
		if sockets[key] == 2 {
			add(c.TargetNodeID, IssueDuplicateSocket, "socket %s has more than one incoming connection; the first one is used", c.TargetSocketID)
		}
	}

	return issues
}
