// Package site renders a project snapshot into one self-contained HTML
// document. The document carries the project data and a JavaScript copy of
// the evaluator so interactions keep working without a server.
package site

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/Raiwe17/ProektSite/internal/flow"
	"github.com/Raiwe17/ProektSite/internal/graph"
	"github.com/Raiwe17/ProektSite/internal/project"
)

//go:embed runtime.js
var runtimeJS string

// DefaultTitle is used when Options.Title is empty.
const DefaultTitle = "Exported Project"

// ErrInvalidCanvas is returned for projects without a positive canvas size.
var ErrInvalidCanvas = errors.New("canvas width and height must be positive")

// Options tunes the generated document.
type Options struct {
	Title string
	// NoTailwind drops the Tailwind CDN script. Layout still works; utility
	// classes are left unstyled.
	NoTailwind bool
	// NoRuntime omits the embedded runtime, leaving a static page.
	NoRuntime bool
	// Scripts are inline scripts appended after the project data.
	Scripts []string
	// Random feeds RANDOM nodes during the initial render.
	Random func() float64
}

// Runtime returns the JavaScript runtime embedded in generated documents.
func Runtime() string {
	return runtimeJS
}

// Generate renders p as a standalone HTML document.
func Generate(p *project.Project, opts Options) (string, error) {
	if p == nil {
		return "", errors.New("nil project")
	}
	if p.Width <= 0 || p.Height <= 0 {
		return "", ErrInvalidCanvas
	}

	data, err := json.Marshal(exportData(p))
	if err != nil {
		return "", fmt.Errorf("encode project data: %w", err)
	}

	evOpts := []flow.Option{flow.WithActions(flow.NopActions{})}
	if opts.Random != nil {
		evOpts = append(evOpts, flow.WithRandom(opts.Random))
	}
	r := &renderer{
		p:     p,
		scale: scale{width: p.Width},
		ev:    flow.NewEvaluator(evOpts...),
	}

	title := opts.Title
	if title == "" {
		title = DefaultTitle
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"UTF-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0, maximum-scale=5.0, user-scalable=yes\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", template.HTMLEscapeString(title))
	if !opts.NoTailwind {
		b.WriteString("<script src=\"https://cdn.tailwindcss.com\"></script>\n")
	}
	if link := fontLink(p); link != "" {
		b.WriteString(link)
		b.WriteString("\n")
	}
	b.WriteString("<style>\n")
	b.WriteString(pageCSS(flow.FormatNumber(p.Height / p.Width * 100)))
	b.WriteString("</style>\n</head>\n<body>\n<div id=\"app-root\">\n")

	for i, page := range p.Pages {
		r.page(&b, page, i == 0)
	}

	b.WriteString("</div>\n")
	fmt.Fprintf(&b, "<script>window.PROJECT_DATA = %s;</script>\n", data)
	for _, s := range opts.Scripts {
		fmt.Fprintf(&b, "<script>\n%s\n</script>\n", s)
	}
	if !opts.NoRuntime {
		fmt.Fprintf(&b, "<script>\n%s</script>\n", runtimeJS)
	}
	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}

type renderer struct {
	p     *project.Project
	scale scale
	ev    *flow.Evaluator
}

func (r *renderer) page(b *strings.Builder, page project.Page, visible bool) {
	class := "page-container absolute inset-0 w-full h-full"
	if !visible {
		class += " hidden"
	}
	fmt.Fprintf(b, "<div id=\"page-%s\" class=\"%s\">\n", attr(page.ID), class)
	for _, el := range r.p.PageRoots(page.ID) {
		r.element(b, el, r.p.Width, r.p.Height)
	}
	b.WriteString("</div>\n")
}

// element writes the wrapper and inner tag of el and, recursively, its
// children. Wrapper geometry is a percentage of the parent's box.
func (r *renderer) element(b *strings.Builder, el *project.Element, parentW, parentH float64) {
	c := flow.Compose(r.ev, r.p, el, flow.Context{})
	st, content := c.Effective(el)
	css := r.scale.elementCSS(st, el.Width, el.Height, content)
	class := tailwindClasses(el.Type, st)

	fmt.Fprintf(b, "<div id=\"%s-wrapper\" style=\"position: absolute; left: %.4f%%; top: %.4f%%; width: %.4f%%; height: %.4f%%;\">\n",
		attr(el.ID), percent(el.X, parentW), percent(el.Y, parentH), percent(el.Width, parentW), percent(el.Height, parentH))

	children := func() {
		for _, child := range r.p.Children(el.ID) {
			r.element(b, child, el.Width, el.Height)
		}
	}
	open := func(tag, extra string) {
		fmt.Fprintf(b, "<%s data-el-id=\"%s\" class=\"%s\" style=\"%s\"%s>", tag, attr(el.ID), attr(class), attr(css), extra)
	}
	wrapText := func(s string) string {
		s = template.HTMLEscapeString(s)
		if flow.Truthy(st["autoFontSize"]) {
			return `<span class="truncate max-w-full block">` + s + `</span>`
		}
		return s
	}

	switch el.Type {
	case project.TypeInput:
		open("input", fmt.Sprintf(" type=\"text\" value=\"%s\" readonly", attr(content)))
		b.WriteString("\n")
		children()

	case project.TypeImagePlaceholder, project.TypeAvatar:
		if el.Src != "" {
			open("img", fmt.Sprintf(" src=\"%s\" alt=\"%s\"", attr(el.Src), attr(el.Alt)))
			b.WriteString("\n")
			children()
			break
		}
		open("div", "")
		if el.Type == project.TypeAvatar {
			b.WriteString(avatarIcon)
		} else {
			b.WriteString(imageIcon)
		}
		children()
		b.WriteString("</div>\n")

	case project.TypeVideoPlaceholder:
		if el.Src == "" {
			open("div", "")
			b.WriteString(videoIcon)
			children()
			b.WriteString("</div>\n")
			break
		}
		if id, ok := youtubeID(el.Src); ok {
			open("div", "")
			b.WriteString(youtubeEmbed(id, el.VideoOptions))
			children()
			b.WriteString("</div>\n")
			break
		}
		open("video", fmt.Sprintf(" src=\"%s\"%s", attr(el.Src), videoAttrs(el.VideoOptions)))
		children()
		b.WriteString("</video>\n")

	case project.TypeDivider:
		open("div", "")
		bg := "#d1d5db"
		if flow.Truthy(st["backgroundColor"]) {
			bg = flow.ToString(st["backgroundColor"])
		}
		fmt.Fprintf(b, "<div style=\"width:100%%; height:1px; background-color:%s;\"></div>", attr(bg))
		children()
		b.WriteString("</div>\n")

	case project.TypeButton:
		open("button", "")
		b.WriteString(wrapText(content))
		children()
		b.WriteString("</button>\n")

	default:
		open("div", "")
		b.WriteString(wrapText(content))
		children()
		b.WriteString("</div>\n")
	}

	b.WriteString("</div>\n")
}

func percent(v, of float64) float64 {
	if of == 0 {
		return 0
	}
	return v / of * 100
}

func attr(s string) string {
	return template.HTMLEscapeString(s)
}

func videoAttrs(o *project.VideoOptions) string {
	var b strings.Builder
	if o != nil && o.Autoplay {
		b.WriteString(" autoplay")
	}
	if o != nil && o.Loop {
		b.WriteString(" loop")
	}
	if o != nil && o.Muted {
		b.WriteString(" muted")
	}
	if o.ShowControls() {
		b.WriteString(" controls")
	}
	b.WriteString(" playsinline")
	return b.String()
}

func youtubeEmbed(id string, o *project.VideoOptions) string {
	flag := func(on bool) int {
		if on {
			return 1
		}
		return 0
	}
	var autoplay, loop, muted bool
	if o != nil {
		autoplay, loop, muted = o.Autoplay, o.Loop, o.Muted
	}
	playlist := ""
	if loop {
		playlist = id
	}
	src := fmt.Sprintf("https://www.youtube.com/embed/%s?autoplay=%d&controls=%d&loop=%d&playlist=%s&mute=%d",
		id, flag(autoplay), flag(o.ShowControls()), flag(loop), playlist, flag(muted))
	return `<iframe width="100%" height="100%" src="` + attr(src) + `" frameborder="0" ` +
		`allow="accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture" ` +
		`style="border-radius: inherit; pointer-events: auto;"></iframe>`
}

// exportElement is the slice of an element the page runtime needs.
type exportElement struct {
	ID                string              `json:"id"`
	Type              project.ElementType `json:"type"`
	PageID            string              `json:"pageId"`
	Scripts           []string            `json:"scripts"`
	PropOverrides     map[string]any      `json:"propOverrides"`
	CustomComponentID string              `json:"customComponentId,omitempty"`
	CustomNodeGroup   *graph.Graph        `json:"customNodeGroup,omitempty"`
	IsDetached        bool                `json:"isDetached,omitempty"`
}

type pageData struct {
	Elements   []exportElement `json:"elements"`
	Components []graph.Graph   `json:"components"`
	Scripts    []graph.Graph   `json:"scripts"`
	Pages      []project.Page  `json:"pages"`
}

// exportData builds the PROJECT_DATA blob. encoding/json escapes <, > and &,
// so the result is safe inside a script element.
func exportData(p *project.Project) pageData {
	d := pageData{
		Elements:   make([]exportElement, 0, len(p.Elements)),
		Components: p.Components,
		Scripts:    p.Scripts,
		Pages:      p.Pages,
	}
	if d.Components == nil {
		d.Components = []graph.Graph{}
	}
	if d.Scripts == nil {
		d.Scripts = []graph.Graph{}
	}
	if d.Pages == nil {
		d.Pages = []project.Page{}
	}
	for _, el := range p.Elements {
		e := exportElement{
			ID:                el.ID,
			Type:              el.Type,
			PageID:            el.PageID,
			Scripts:           el.Scripts,
			PropOverrides:     el.PropOverrides,
			CustomComponentID: el.CustomComponentID,
			CustomNodeGroup:   el.CustomNodeGroup,
			IsDetached:        el.IsDetached,
		}
		if e.Scripts == nil {
			e.Scripts = []string{}
		}
		if e.PropOverrides == nil {
			e.PropOverrides = map[string]any{}
		}
		d.Elements = append(d.Elements, e)
	}
	return d
}
