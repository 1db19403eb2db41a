package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Raiwe17/ProektSite/internal/events"
	"github.com/Raiwe17/ProektSite/internal/flow"
	"github.com/Raiwe17/ProektSite/internal/logging"
	"github.com/Raiwe17/ProektSite/internal/project"
)

// DefaultFPS is the tick rate used by Run.
const DefaultFPS = 60

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// Host performs the side effects a page cannot perform on its own.
type Host interface {
	OpenLink(url string, newTab bool)
	Alert(message string)
}

// NopHost ignores links and alerts.
type NopHost struct{}

func (NopHost) OpenLink(string, bool) {}
func (NopHost) Alert(string)          {}

// InputKind identifies an external input.
type InputKind int

const (
	PointerEnter InputKind = iota
	PointerLeave
	PointerClick
	NavigateTo
)

var inputKindNames = map[InputKind]string{
	PointerEnter: "enter",
	PointerLeave: "leave",
	PointerClick: "click",
	NavigateTo:   "navigate",
}

func (k InputKind) String() string {
	if s, ok := inputKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("InputKind(%d)", int(k))
}

// ParseInputKind maps a wire name ("enter", "leave", "click", "navigate")
// to its InputKind.
func ParseInputKind(s string) (InputKind, error) {
	for k, name := range inputKindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown input kind %q", s)
}

// Input is an external event delivered to a running loop.
type Input struct {
	Kind      InputKind
	ElementID string
	PageID    string
}

// State is the resumable part of a runtime.
type State struct {
	ActivePage string          `json:"active_page"`
	Clicks     map[string]bool `json:"clicks,omitempty"`
	// Triggers maps element id to the action nodes whose trigger was true.
	Triggers map[string]map[string]bool `json:"triggers,omitempty"`
}

// Runtime drives the evaluation of one project against one live document.
// All methods except Send must be called from the goroutine that owns the
// runtime; Run makes the calling goroutine that owner.
type Runtime struct {
	project *project.Project
	doc     Document
	clock   Clock
	host    Host
	logger  *slog.Logger
	fps     int
	random  func() float64
	session string
	onTick  func()

	start      time.Time
	active     string
	hovers     map[string]bool
	clicks     map[string]bool
	animations map[string]string
	triggers   map[string]*flow.TriggerState
	ev         *flow.Evaluator

	pendingNav string
	alerts     []string
	fired      []firedEvent

	inputs chan Input
	done   chan struct{}
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithClock sets the time source.
func WithClock(c Clock) Option {
	return func(r *Runtime) { r.clock = c }
}

// WithHost sets the receiver of links and alerts.
func WithHost(h Host) Option {
	return func(r *Runtime) { r.host = h }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) { r.logger = l }
}

// WithFPS sets the tick rate of Run.
func WithFPS(fps int) Option {
	return func(r *Runtime) {
		if fps > 0 {
			r.fps = fps
		}
	}
}

// WithRandom sets the source sampled by RANDOM nodes.
func WithRandom(fn func() float64) Option {
	return func(r *Runtime) { r.random = fn }
}

// WithSession tags emitted events with a session id.
func WithSession(id string) Option {
	return func(r *Runtime) { r.session = id }
}

// WithTickHook registers fn to run on the owner goroutine after every tick
// and every handled input.
func WithTickHook(fn func()) Option {
	return func(r *Runtime) { r.onTick = fn }
}

// New creates a runtime showing the project's first page. Elements whose
// live counterpart already carries an inline animation are tracked so the
// first tick does not restart them.
func New(p *project.Project, doc Document, opts ...Option) *Runtime {
	r := &Runtime{
		project:    p,
		doc:        doc,
		clock:      SystemClock,
		host:       NopHost{},
		logger:     logging.NewNop(),
		fps:        DefaultFPS,
		active:     p.FirstPageID(),
		hovers:     make(map[string]bool),
		clicks:     make(map[string]bool),
		animations: make(map[string]string),
		triggers:   make(map[string]*flow.TriggerState),
		inputs:     make(chan Input, 64),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	evOpts := []flow.Option{flow.WithActions(actionSink{r})}
	if r.random != nil {
		evOpts = append(evOpts, flow.WithRandom(r.random))
	}
	r.ev = flow.NewEvaluator(evOpts...)
	r.start = r.clock.Now()

	for i := range p.Elements {
		id := p.Elements[i].ID
		if live, ok := doc.Element(id); ok {
			if anim := live.Style("animation"); isRunning(anim) {
				r.animations[id] = anim
			}
		}
	}
	return r
}

// ActivePage returns the id of the visible page.
func (r *Runtime) ActivePage() string {
	return r.active
}

// Tick evaluates every element of the active page and applies the results.
// A navigation fired by an action node ends the pass early; the remaining
// elements belong to a page that is being hidden.
func (r *Runtime) Tick(now time.Time) {
	elapsed := now.Sub(r.start).Seconds()

	for _, el := range r.project.ElementsOnPage(r.active) {
		live, ok := r.doc.Element(el.ID)
		if !ok {
			continue
		}
		ctx := flow.Context{
			IsHovered: r.hovers[el.ID],
			IsClicked: r.clicks[el.ID],
			Time:      elapsed,
			Triggers:  r.triggerState(el.ID),
		}
		c := flow.Compose(r.ev, r.project, el, ctx)
		if r.pendingNav != "" {
			break
		}
		if !c.Dynamic {
			continue
		}
		r.apply(el, live, c)
	}

	r.flushFired()
	if page := r.pendingNav; page != "" {
		r.pendingNav = ""
		r.Navigate(page)
	}
	r.flushAlerts()
}

// apply writes a computed result into the live element, touching the
// animation only when it differs from the one already running.
func (r *Runtime) apply(el *project.Element, live LiveElement, c flow.Computed) {
	if c.HasContent && el.Type.ShowsText() && live.Text() != c.Content {
		live.SetText(c.Content)
	}

	for _, prop := range []string{"backgroundColor", "color", "fontSize", "transform", "opacity", "transition"} {
		v, ok := c.Style[prop]
		if !ok {
			continue
		}
		live.SetStyle(prop, cssValue(prop, v))
	}

	v, ok := c.Style["animation"]
	if !ok {
		return
	}
	desired := cssValue("animation", v)
	if tracked, ok := r.animations[el.ID]; ok && tracked == desired {
		return
	}
	r.animations[el.ID] = desired
	live.SetStyle("animation", "none")
	if isRunning(desired) {
		live.Reflow()
		live.SetStyle("animation", desired)
	}
}

// Navigate switches the visible page. Elements of the page being left lose
// their hover, click, trigger and animation state; inline animations on the
// page being entered restart.
func (r *Runtime) Navigate(pageID string) {
	if pageID == r.active {
		return
	}
	if r.project.Page(pageID) == nil {
		r.logger.Warn("navigating to unknown page", "page_id", pageID)
	}

	prev := r.active
	for _, el := range r.project.ElementsOnPage(prev) {
		delete(r.hovers, el.ID)
		delete(r.clicks, el.ID)
		delete(r.animations, el.ID)
		delete(r.triggers, el.ID)
	}

	r.doc.HidePage(prev)
	r.doc.ShowPage(pageID)
	r.active = pageID

	for _, el := range r.project.ElementsOnPage(pageID) {
		live, ok := r.doc.Element(el.ID)
		if !ok {
			continue
		}
		anim := live.Style("animation")
		if !isRunning(anim) {
			continue
		}
		live.SetStyle("animation", "none")
		live.Reflow()
		live.SetStyle("animation", anim)
		r.animations[el.ID] = anim
	}

	r.emit("page.navigated", map[string]interface{}{"from": prev, "to": pageID})
}

// PointerEnter marks an element as hovered.
func (r *Runtime) PointerEnter(elementID string) {
	r.hovers[elementID] = true
}

// PointerLeave clears the hover state of an element.
func (r *Runtime) PointerLeave(elementID string) {
	delete(r.hovers, elementID)
}

// PointerClick toggles the click state of an element.
func (r *Runtime) PointerClick(elementID string) {
	if r.clicks[elementID] {
		delete(r.clicks, elementID)
		return
	}
	r.clicks[elementID] = true
}

// Handle applies one input.
func (r *Runtime) Handle(in Input) {
	switch in.Kind {
	case PointerEnter:
		r.PointerEnter(in.ElementID)
	case PointerLeave:
		r.PointerLeave(in.ElementID)
	case PointerClick:
		r.PointerClick(in.ElementID)
	case NavigateTo:
		r.Navigate(in.PageID)
	}
}

// Send queues an input for the loop started by Run. It reports false when
// ctx ends or the loop has stopped before the input was accepted.
func (r *Runtime) Send(ctx context.Context, in Input) bool {
	select {
	case <-r.done:
		return false
	default:
	}
	select {
	case r.inputs <- in:
		return true
	case <-r.done:
		return false
	case <-ctx.Done():
		return false
	}
}

// Run ticks at the configured rate and applies queued inputs between ticks
// until ctx is cancelled.
func (r *Runtime) Run(ctx context.Context) error {
	defer close(r.done)

	interval := time.Second / time.Duration(r.fps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.emit("runtime.started", map[string]interface{}{"page_id": r.active, "fps": r.fps})
	r.logger.Debug("runtime started", "page_id", r.active, "interval", interval)

	r.Tick(r.clock.Now())
	r.hook()
	for {
		select {
		case <-ctx.Done():
			r.emit("runtime.stopped", map[string]interface{}{"page_id": r.active})
			return nil
		case in := <-r.inputs:
			r.Handle(in)
			r.hook()
		case <-ticker.C:
			r.Tick(r.clock.Now())
			r.hook()
		}
	}
}

// Snapshot captures the state needed to resume the runtime later.
func (r *Runtime) Snapshot() State {
	clicks := make(map[string]bool, len(r.clicks))
	for id := range r.clicks {
		clicks[id] = true
	}
	triggers := make(map[string]map[string]bool, len(r.triggers))
	for id, ts := range r.triggers {
		if snap := ts.Snapshot(); len(snap) > 0 {
			triggers[id] = snap
		}
	}
	return State{
		ActivePage: r.active,
		Clicks:     clicks,
		Triggers:   triggers,
	}
}

// Restore resumes from a snapshot, navigating to its page first.
func (r *Runtime) Restore(s State) {
	if s.ActivePage != "" {
		r.Navigate(s.ActivePage)
	}
	r.clicks = make(map[string]bool, len(s.Clicks))
	for id, v := range s.Clicks {
		if v {
			r.clicks[id] = true
		}
	}
	r.triggers = make(map[string]*flow.TriggerState, len(s.Triggers))
	for id, snap := range s.Triggers {
		r.triggerState(id).Restore(snap)
	}
}

// triggerState returns the rising-edge state of one element. Elements that
// share a script keep separate state.
func (r *Runtime) triggerState(elementID string) *flow.TriggerState {
	ts, ok := r.triggers[elementID]
	if !ok {
		ts = flow.NewTriggerState()
		r.triggers[elementID] = ts
	}
	return ts
}

func (r *Runtime) hook() {
	if r.onTick != nil {
		r.onTick()
	}
}

func (r *Runtime) flushAlerts() {
	alerts := r.alerts
	r.alerts = nil
	for _, msg := range alerts {
		r.host.Alert(msg)
	}
}

// firedEvent is an action event held until the evaluation pass ends.
type firedEvent struct {
	name   string
	fields map[string]interface{}
}

func (r *Runtime) flushFired() {
	fired := r.fired
	r.fired = nil
	for _, e := range fired {
		r.emit(e.name, e.fields)
	}
}

func (r *Runtime) emit(name string, fields map[string]interface{}) {
	if r.session != "" {
		fields["session_id"] = r.session
	}
	if _, err := events.Emit("info", name, "", fields); err != nil {
		r.logger.Error("emit event", "event", name, "error", err)
	}
}

// actionSink receives actions fired during evaluation. Their events are
// queued and emitted by Tick once the pass is over.
type actionSink struct {
	r *Runtime
}

func (a actionSink) queue(name string, fields map[string]interface{}) {
	a.r.fired = append(a.r.fired, firedEvent{name: name, fields: fields})
}

func (a actionSink) Navigate(pageID string) {
	a.queue("action.navigate", map[string]interface{}{"page_id": pageID})
	if a.r.pendingNav == "" && pageID != a.r.active {
		a.r.pendingNav = pageID
	}
}

func (a actionSink) OpenLink(url string, newTab bool) {
	a.queue("action.link", map[string]interface{}{"url": url, "new_tab": newTab})
	a.r.host.OpenLink(url, newTab)
}

func (a actionSink) Alert(message string) {
	a.queue("action.alert", map[string]interface{}{"message": message})
	a.r.alerts = append(a.r.alerts, message)
}

func isRunning(anim string) bool {
	return anim != "" && anim != "none"
}

// cssValue renders a computed style value for a live element. Bare numbers
// are pixel sizes for fontSize.
func cssValue(prop string, v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	}
	v = flow.Normalize(v)
	s := flow.ToString(v)
	if _, isNum := v.(float64); isNum && prop == "fontSize" {
		return s + "px"
	}
	return s
}
