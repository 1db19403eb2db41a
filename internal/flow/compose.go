package flow

import (
	"github.com/Raiwe17/ProektSite/internal/graph"
	"github.com/Raiwe17/ProektSite/internal/project"
)

// Library resolves the graphs an element refers to.
type Library interface {
	Definition(e *project.Element) *graph.Graph
	Script(id string) *graph.Graph
}

// Computed is the dynamic style and content of one element.
type Computed struct {
	Style      Style
	Content    string
	HasContent bool
	// Dynamic is true when at least one graph was evaluated for the element.
	Dynamic bool
}

// Compose evaluates the element's component (or detached inline graph) and
// then each of its scripts in order. Later graphs win on style keys and
// defined content. Unknown component and script ids are skipped.
func Compose(ev *Evaluator, lib Library, el *project.Element, ctx Context) Computed {
	c := Computed{Style: Style{}}
	apply := func(g *graph.Graph) {
		r := ev.Evaluate(g, el.PropOverrides, ctx)
		c.Style.Merge(r.Style)
		if r.HasContent {
			c.Content = r.Content
			c.HasContent = true
		}
		c.Dynamic = true
	}

	if el.Type == project.TypeCustom {
		if g := lib.Definition(el); g != nil {
			apply(g)
		}
	}
	for _, id := range el.Scripts {
		if g := lib.Script(id); g != nil {
			apply(g)
		}
	}
	return c
}

// Effective overlays the computed style on the element's static style and
// picks the content to display: computed content when non-empty, otherwise
// the static content.
func (c Computed) Effective(el *project.Element) (Style, string) {
	st := Style(el.Style).Clone()
	st.Merge(c.Style)
	if c.HasContent && c.Content != "" {
		return st, c.Content
	}
	return st, el.Content
}
