package project

import (
	"errors"
	"strings"
	"testing"

	"github.com/Raiwe17/ProektSite/internal/graph"
)

func TestLoadYAML(t *testing.T) {
	p, err := Load("testdata/landing.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Version != 1 || p.Width != 1200 || p.Height != 800 {
		t.Errorf("unexpected header: %+v", p)
	}
	if len(p.Pages) != 2 || p.FirstPageID() != "home" {
		t.Errorf("unexpected pages: %+v", p.Pages)
	}
	hero := p.Element("hero")
	if hero == nil {
		t.Fatal("expected hero element")
	}
	if hero.Style["fontSize"] != 48.0 {
		t.Errorf("expected numeric fontSize 48, got %#v", hero.Style["fontSize"])
	}
	if s := p.Script("hover-color"); s == nil || len(s.Nodes) != 6 {
		t.Errorf("expected hover-color script with 6 nodes, got %+v", s)
	}
	if c := p.Component("ticker"); c == nil || c.Output() == nil {
		t.Errorf("expected ticker component with output, got %+v", c)
	}
	if err := Validate(p); err != nil {
		t.Errorf("expected valid project, got %v", err)
	}
}

func TestParseRejectsUnsupportedVersion(t *testing.T) {
	_, err := Parse([]byte(`{"version":2,"width":10,"height":10}`), FormatJSON)
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}

	p, err := Parse([]byte(`{"width":10,"height":10}`), FormatJSON)
	if err != nil {
		t.Fatalf("expected missing version to default, got %v", err)
	}
	if p.Version != CurrentVersion {
		t.Errorf("expected version %d, got %d", CurrentVersion, p.Version)
	}
}

func TestParseRejectsBrokenStructure(t *testing.T) {
	cases := map[string]string{
		"zero width":   `{"width":0,"height":10}`,
		"missing id":   `{"width":10,"height":10,"elements":[{"type":"BUTTON"}]}`,
		"duplicate id": `{"width":10,"height":10,"elements":[{"id":"a"},{"id":"a"}]}`,
		"not json":     `{"width":`,
	}
	for name, raw := range cases {
		if _, err := Parse([]byte(raw), FormatJSON); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestTreeQueries(t *testing.T) {
	p := &Project{
		Width: 100, Height: 100,
		Pages: []Page{{ID: "p1"}, {ID: "p2"}},
		Elements: []Element{
			{ID: "card", Type: TypeCard, PageID: "p1"},
			{ID: "title", Type: TypeHeading, PageID: "p1", ParentID: "card"},
			{ID: "body", Type: TypeParagraph, PageID: "p1", ParentID: "card"},
			{ID: "other", Type: TypeButton, PageID: "p2"},
		},
	}

	roots := p.PageRoots("p1")
	if len(roots) != 1 || roots[0].ID != "card" {
		t.Errorf("unexpected roots %+v", roots)
	}
	kids := p.Children("card")
	if len(kids) != 2 || kids[0].ID != "title" || kids[1].ID != "body" {
		t.Errorf("expected children in document order, got %+v", kids)
	}
	if n := len(p.ElementsOnPage("p1")); n != 3 {
		t.Errorf("expected 3 elements on p1, got %d", n)
	}
}

func TestDefinitionPrefersDetachedGraph(t *testing.T) {
	inline := &graph.Graph{ID: "inline"}
	p := &Project{Components: []graph.Graph{{ID: "comp"}}}

	e := &Element{Type: TypeCustom, CustomComponentID: "comp", CustomNodeGroup: inline, IsDetached: true}
	if got := p.Definition(e); got != inline {
		t.Errorf("expected detached inline graph, got %+v", got)
	}
	e.IsDetached = false
	if got := p.Definition(e); got == nil || got.ID != "comp" {
		t.Errorf("expected component graph, got %+v", got)
	}
	e.CustomComponentID = "missing"
	if got := p.Definition(e); got != nil {
		t.Errorf("expected nil for missing component, got %+v", got)
	}
}

func TestValidateReportsReferences(t *testing.T) {
	p := &Project{
		Width: 100, Height: 100,
		Pages: []Page{{ID: "p1"}},
		Elements: []Element{
			{ID: "a", Type: TypeCustom, PageID: "p1", CustomComponentID: "nope"},
			{ID: "b", Type: "SPINNER", PageID: "p9", ParentID: "ghost", Scripts: []string{"s1"}},
		},
		Scripts: []graph.Graph{{
			ID:    "dup",
			Nodes: []graph.Node{{ID: "o1", Type: graph.KindOutput}, {ID: "o2", Type: graph.KindOutput}},
		}},
	}

	err := Validate(p)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}

	codes := map[string]bool{}
	for _, is := range verr.Issues {
		codes[is.Code] = true
	}
	for _, want := range []string{
		IssueUnknownComponent, IssueUnknownType, IssueUnknownPage,
		IssueUnknownParent, IssueUnknownScript, graph.IssueMultipleOutputs,
	} {
		if !codes[want] {
			t.Errorf("missing issue %s in %v", want, verr.Issues)
		}
	}
	if !strings.Contains(verr.Error(), "issues") {
		t.Errorf("unexpected error text %q", verr.Error())
	}
}

func TestMarshalRoundTripsYAML(t *testing.T) {
	p, err := Load("testdata/landing.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	b, err := Marshal(p, FormatYAML)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	back, err := Parse(b, FormatYAML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(back.Elements) != len(p.Elements) || back.Element("cta").Scripts[0] != "hover-color" {
		t.Errorf("round trip lost data: %+v", back.Elements)
	}
}
