package project

import (
	"fmt"
	"strings"

	"github.com/Raiwe17/ProektSite/internal/graph"
)

// Issue codes for element references.
const (
	IssueUnknownType      = "unknown_element_type"
	IssueUnknownPage      = "unknown_page"
	IssueUnknownParent    = "unknown_parent"
	IssueUnknownComponent = "unknown_component"
	IssueUnknownScript    = "unknown_script"
	IssueNoDefinition     = "missing_definition"
	IssueParentPage       = "parent_on_other_page"
)

// Issue is a problem found in a project. Graph issues keep the code reported
// by graph.Validate.
type Issue struct {
	ElementID string `json:"element_id,omitempty"`
	GraphID   string `json:"graph_id,omitempty"`
	NodeID    string `json:"node_id,omitempty"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

func (i Issue) String() string {
	var where []string
	if i.ElementID != "" {
		where = append(where, "element "+i.ElementID)
	}
	if i.GraphID != "" {
		where = append(where, "graph "+i.GraphID)
	}
	if i.NodeID != "" {
		where = append(where, "node "+i.NodeID)
	}
	if len(where) == 0 {
		return i.Message
	}
	return strings.Join(where, ", ") + ": " + i.Message
}

// ValidationError aggregates every issue found by Validate.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 1 {
		return "project has 1 issue: " + e.Issues[0].String()
	}
	return fmt.Sprintf("project has %d issues; first: %s", len(e.Issues), e.Issues[0].String())
}

// Validate checks element references and every graph in p. It returns nil or
// a *ValidationError. Issues never stop a project from rendering; missing
// references are skipped at evaluation time.
func Validate(p *Project) error {
	var issues []Issue

	fromGraph := func(elementID string, g *graph.Graph) {
		for _, gi := range graph.Validate(g) {
			issues = append(issues, Issue{
				ElementID: elementID,
				GraphID:   gi.GraphID,
				NodeID:    gi.NodeID,
				Code:      gi.Code,
				Message:   gi.Message,
			})
		}
	}
	for i := range p.Components {
		fromGraph("", &p.Components[i])
	}
	for i := range p.Scripts {
		fromGraph("", &p.Scripts[i])
	}

	for i := range p.Elements {
		e := &p.Elements[i]
		add := func(code, format string, args ...any) {
			issues = append(issues, Issue{ElementID: e.ID, Code: code, Message: fmt.Sprintf(format, args...)})
		}

		if !knownTypes[e.Type] {
			add(IssueUnknownType, "unknown element type %q", e.Type)
		}
		if p.Page(e.PageID) == nil {
			add(IssueUnknownPage, "page %q does not exist", e.PageID)
		}
		if e.ParentID != "" {
			parent := p.Element(e.ParentID)
			switch {
			case parent == nil:
				add(IssueUnknownParent, "parent %q does not exist", e.ParentID)
			case parent.PageID != e.PageID:
				add(IssueParentPage, "parent %q is on page %q", e.ParentID, parent.PageID)
			}
		}
		if e.Type == TypeCustom {
			switch {
			case e.IsDetached && e.CustomNodeGroup != nil:
				fromGraph(e.ID, e.CustomNodeGroup)
			case e.CustomComponentID == "":
				add(IssueNoDefinition, "custom element has neither a component nor an inline graph")
			case p.Component(e.CustomComponentID) == nil:
				add(IssueUnknownComponent, "component %q does not exist", e.CustomComponentID)
			}
		}
		for _, sid := range e.Scripts {
			if p.Script(sid) == nil {
				add(IssueUnknownScript, "script %q does not exist", sid)
			}
		}
	}

	if len(issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: issues}
}
