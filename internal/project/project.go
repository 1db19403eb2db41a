package project

import "github.com/Raiwe17/ProektSite/internal/graph"

// ElementType is the visual kind of a canvas element.
type ElementType string

const (
	TypeButton           ElementType = "BUTTON"
	TypeBadge            ElementType = "BADGE"
	TypeHeading          ElementType = "HEADING"
	TypeParagraph        ElementType = "PARAGRAPH"
	TypeCard             ElementType = "CARD"
	TypeInput            ElementType = "INPUT"
	TypeImagePlaceholder ElementType = "IMAGE_PLACEHOLDER"
	TypeVideoPlaceholder ElementType = "VIDEO_PLACEHOLDER"
	TypeAvatar           ElementType = "AVATAR"
	TypeDivider          ElementType = "DIVIDER"
	TypeContainer        ElementType = "CONTAINER"
	TypeCustom           ElementType = "CUSTOM"
)

var knownTypes = map[ElementType]bool{
	TypeButton: true, TypeBadge: true, TypeHeading: true, TypeParagraph: true,
	TypeCard: true, TypeInput: true, TypeImagePlaceholder: true, TypeVideoPlaceholder: true,
	TypeAvatar: true, TypeDivider: true, TypeContainer: true, TypeCustom: true,
}

// ShowsText reports whether elements of type t display computed content as
// their text.
func (t ElementType) ShowsText() bool {
	switch t {
	case TypeButton, TypeHeading, TypeParagraph, TypeBadge, TypeCustom:
		return true
	}
	return false
}

// VideoOptions controls playback of a video element. Controls are shown
// unless explicitly disabled.
type VideoOptions struct {
	Autoplay bool  `json:"autoplay,omitempty"`
	Loop     bool  `json:"loop,omitempty"`
	Muted    bool  `json:"muted,omitempty"`
	Controls *bool `json:"controls,omitempty"`
}

// ShowControls reports whether player controls are visible.
func (o *VideoOptions) ShowControls() bool {
	return o == nil || o.Controls == nil || *o.Controls
}

// Element is one positioned item on the canvas. Geometry is in canvas pixels
// relative to the parent element, or to the page when ParentID is empty.
type Element struct {
	ID       string      `json:"id"`
	Type     ElementType `json:"type"`
	PageID   string      `json:"pageId"`
	ParentID string      `json:"parentId,omitempty"`

	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Style   map[string]any `json:"style,omitempty"`
	Content string         `json:"content,omitempty"`

	Src          string        `json:"src,omitempty"`
	Alt          string        `json:"alt,omitempty"`
	VideoOptions *VideoOptions `json:"videoOptions,omitempty"`

	CustomComponentID string       `json:"customComponentId,omitempty"`
	CustomNodeGroup   *graph.Graph `json:"customNodeGroup,omitempty"`
	IsDetached        bool         `json:"isDetached,omitempty"`

	Scripts       []string       `json:"scripts,omitempty"`
	PropOverrides map[string]any `json:"propOverrides,omitempty"`
}

// Page is a named view; exactly one page is visible at a time.
type Page struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Project is a complete site snapshot.
type Project struct {
	Version int     `json:"version"`
	Name    string  `json:"name,omitempty"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`

	Pages      []Page        `json:"pages"`
	Elements   []Element     `json:"elements"`
	Components []graph.Graph `json:"components,omitempty"`
	Scripts    []graph.Graph `json:"scripts,omitempty"`
}

// Component returns the reusable component graph with the given id.
func (p *Project) Component(id string) *graph.Graph {
	for i := range p.Components {
		if p.Components[i].ID == id {
			return &p.Components[i]
		}
	}
	return nil
}

// Script returns the script graph with the given id.
func (p *Project) Script(id string) *graph.Graph {
	for i := range p.Scripts {
		if p.Scripts[i].ID == id {
			return &p.Scripts[i]
		}
	}
	return nil
}

// Definition returns the graph that drives a CUSTOM element: its detached
// inline graph when present, otherwise the referenced component.
func (p *Project) Definition(e *Element) *graph.Graph {
	if e.IsDetached && e.CustomNodeGroup != nil {
		return e.CustomNodeGroup
	}
	if e.CustomComponentID != "" {
		return p.Component(e.CustomComponentID)
	}
	return nil
}

// Element returns the element with the given id.
func (p *Project) Element(id string) *Element {
	for i := range p.Elements {
		if p.Elements[i].ID == id {
			return &p.Elements[i]
		}
	}
	return nil
}

// Page returns the page with the given id.
func (p *Project) Page(id string) *Page {
	for i := range p.Pages {
		if p.Pages[i].ID == id {
			return &p.Pages[i]
		}
	}
	return nil
}

// FirstPageID returns the id of the page shown initially, or "" when the
// project has no pages.
func (p *Project) FirstPageID() string {
	if len(p.Pages) == 0 {
		return ""
	}
	return p.Pages[0].ID
}

// Children returns the direct children of the element with the given id,
// in document order.
func (p *Project) Children(id string) []*Element {
	var out []*Element
	for i := range p.Elements {
		if p.Elements[i].ParentID == id {
			out = append(out, &p.Elements[i])
		}
	}
	return out
}

// PageRoots returns the top-level elements of a page, in document order.
func (p *Project) PageRoots(pageID string) []*Element {
	var out []*Element
	for i := range p.Elements {
		if p.Elements[i].PageID == pageID && p.Elements[i].ParentID == "" {
			out = append(out, &p.Elements[i])
		}
	}
	return out
}

// ElementsOnPage returns every element belonging to a page, nested or not.
func (p *Project) ElementsOnPage(pageID string) []*Element {
	var out []*Element
	for i := range p.Elements {
		if p.Elements[i].PageID == pageID {
			out = append(out, &p.Elements[i])
		}
	}
	return out
}
