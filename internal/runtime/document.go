package runtime

import (
	"sync"

	"github.com/Raiwe17/ProektSite/internal/flow"
	"github.com/Raiwe17/ProektSite/internal/project"
)

// Document is the live page tree the runtime writes into.
type Document interface {
	Element(id string) (LiveElement, bool)
	ShowPage(id string)
	HidePage(id string)
}

// LiveElement is one rendered element. Style properties use their camelCase
// names (backgroundColor, fontSize, animation).
type LiveElement interface {
	Text() string
	SetText(text string)
	Style(prop string) string
	SetStyle(prop, value string)
	// Reflow forces pending style changes to take effect so an animation
	// set afterwards starts from the beginning.
	Reflow()
}

// Patch ops recorded by MemoryDocument.
const (
	OpText   = "text"
	OpStyle  = "style"
	OpReflow = "reflow"
	OpShow   = "show"
	OpHide   = "hide"
)

// Patch is one observable write to a MemoryDocument.
type Patch struct {
	Op        string `json:"op"`
	ElementID string `json:"id,omitempty"`
	PageID    string `json:"page,omitempty"`
	Prop      string `json:"prop,omitempty"`
	Value     string `json:"value,omitempty"`
}

// MemoryDocument is an in-memory Document. Writes that change something are
// recorded as patches, so a remote view can replay them. It is safe for
// concurrent use.
type MemoryDocument struct {
	mu       sync.Mutex
	elements map[string]*MemoryElement
	visible  map[string]bool
	patches  []Patch
}

// NewMemoryDocument returns an empty document.
func NewMemoryDocument() *MemoryDocument {
	return &MemoryDocument{
		elements: make(map[string]*MemoryElement),
		visible:  make(map[string]bool),
	}
}

// NewMemoryDocumentFor mirrors the initial state of a generated page: every
// element carries its context-free effective content and inline animation,
// and only the first page is visible.
func NewMemoryDocumentFor(p *project.Project) *MemoryDocument {
	d := NewMemoryDocument()
	ev := flow.NewEvaluator()
	for i := range p.Elements {
		el := &p.Elements[i]
		c := flow.Compose(ev, p, el, flow.Context{})
		st, content := c.Effective(el)

		style := map[string]string{}
		if v, ok := st["animation"]; ok && flow.Truthy(v) {
			style["animation"] = flow.ToString(v)
		}
		d.Add(el.ID, content, style)
	}
	if first := p.FirstPageID(); first != "" {
		d.visible[first] = true
	}
	return d
}

// Add registers an element with its initial text and style. It records no
// patch.
func (d *MemoryDocument) Add(id, text string, style map[string]string) *MemoryElement {
	d.mu.Lock()
	defer d.mu.Unlock()
	el := &MemoryElement{doc: d, id: id, text: text, style: make(map[string]string, len(style))}
	for k, v := range style {
		el.style[k] = v
	}
	d.elements[id] = el
	return el
}

// Remove detaches an element; the runtime skips it from then on.
func (d *MemoryDocument) Remove(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.elements, id)
}

func (d *MemoryDocument) Element(id string) (LiveElement, bool) {
	el, ok := d.Lookup(id)
	if !ok {
		return nil, false
	}
	return el, true
}

// Lookup returns the concrete element, for inspection.
func (d *MemoryDocument) Lookup(id string) (*MemoryElement, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	el, ok := d.elements[id]
	return el, ok
}

func (d *MemoryDocument) ShowPage(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.visible[id] {
		return
	}
	d.visible[id] = true
	d.patches = append(d.patches, Patch{Op: OpShow, PageID: id})
}

func (d *MemoryDocument) HidePage(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.visible[id] {
		return
	}
	delete(d.visible, id)
	d.patches = append(d.patches, Patch{Op: OpHide, PageID: id})
}

// Visible reports whether a page is shown.
func (d *MemoryDocument) Visible(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.visible[id]
}

// Drain returns and clears the patches recorded so far.
func (d *MemoryDocument) Drain() []Patch {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := d.patches
	d.patches = nil
	return out
}

// MemoryElement is the LiveElement of a MemoryDocument.
type MemoryElement struct {
	doc     *MemoryDocument
	id      string
	text    string
	style   map[string]string
	reflows int
}

func (e *MemoryElement) Text() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.text
}

func (e *MemoryElement) SetText(text string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if e.text == text {
		return
	}
	e.text = text
	e.doc.patches = append(e.doc.patches, Patch{Op: OpText, ElementID: e.id, Value: text})
}

func (e *MemoryElement) Style(prop string) string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.style[prop]
}

func (e *MemoryElement) SetStyle(prop, value string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if cur, ok := e.style[prop]; ok && cur == value {
		return
	}
	e.style[prop] = value
	e.doc.patches = append(e.doc.patches, Patch{Op: OpStyle, ElementID: e.id, Prop: prop, Value: value})
}

func (e *MemoryElement) Reflow() {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.reflows++
	e.doc.patches = append(e.doc.patches, Patch{Op: OpReflow, ElementID: e.id})
}

// Reflows returns how many times the element was reflowed.
func (e *MemoryElement) Reflows() int {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.reflows
}
