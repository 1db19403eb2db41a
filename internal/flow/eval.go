package flow

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/Raiwe17/ProektSite/internal/graph"
)

// Context carries the per-element interaction state a graph can read.
type Context struct {
	IsHovered bool
	IsClicked bool
	// Time is seconds elapsed since the runtime started.
	Time float64
	// Triggers holds the rising-edge state of the element being evaluated.
	// Nil uses the evaluator's own state.
	Triggers *TriggerState
}

// Overrides replaces the value of a node by id. A present key wins even when
// its value is nil.
type Overrides map[string]any

// Result is the outcome of evaluating one graph.
type Result struct {
	Style      Style
	Content    string
	HasContent bool
}

// Evaluator computes graph outputs. An Evaluator carries the trigger state
// and action host used by action nodes, so it must be confined to the
// goroutine that owns them.
type Evaluator struct {
	random   func() float64
	triggers *TriggerState
	actions  Actions
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithRandom sets the source sampled by RANDOM nodes.
func WithRandom(fn func() float64) Option {
	return func(e *Evaluator) { e.random = fn }
}

// WithActions sets the host that performs fired actions.
func WithActions(a Actions) Option {
	return func(e *Evaluator) { e.actions = a }
}

// NewEvaluator returns an Evaluator. Without options it uses math/rand/v2,
// a private trigger state and discards actions.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{
		random:   rand.Float64,
		triggers: NewTriggerState(),
		actions:  NopActions{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs every action node of g, then resolves its OUTPUT node.
// Evaluation never fails: missing nodes, cycles and bad inputs all degrade
// to nil values.
func (e *Evaluator) Evaluate(g *graph.Graph, overrides Overrides, ctx Context) Result {
	res := Result{Style: Style{}}
	if g == nil {
		return res
	}

	p := &pass{
		ev:        e,
		g:         g,
		overrides: overrides,
		ctx:       ctx,
		memo:      make(map[string]any, len(g.Nodes)),
		active:    make(map[string]bool),
	}

	for _, n := range g.Actions() {
		p.node(n.ID)
	}

	out := g.Output()
	if out == nil {
		return res
	}
	if c, ok := g.Incoming(out.ID, graph.SocketStyle); ok {
		res.Style = asStyle(p.node(c.SourceNodeID)).Clone()
	}
	if c, ok := g.Incoming(out.ID, graph.SocketContent); ok {
		res.Content = text(p.node(c.SourceNodeID))
		res.HasContent = true
	}
	return res
}

// pass holds the memo and in-progress set of a single Evaluate call.
type pass struct {
	ev        *Evaluator
	g         *graph.Graph
	overrides Overrides
	ctx       Context
	memo      map[string]any
	active    map[string]bool
}

func (p *pass) node(id string) any {
	if v, ok := p.overrides[id]; ok {
		return Normalize(v)
	}
	if v, ok := p.memo[id]; ok {
		return v
	}
	if p.active[id] {
		return nil
	}
	n := p.g.Find(id)
	if n == nil {
		return nil
	}

	p.active[id] = true
	v := p.compute(n)
	delete(p.active, id)
	p.memo[id] = v
	return v
}

// input resolves the value feeding socket of n, or nil when unconnected.
func (p *pass) input(n *graph.Node, socket string) any {
	c, ok := p.g.Incoming(n.ID, socket)
	if !ok {
		return nil
	}
	return p.node(c.SourceNodeID)
}

func (p *pass) number(n *graph.Node, socket string, def float64) float64 {
	return num(p.input(n, socket), def)
}

func (p *pass) compute(n *graph.Node) any {
	switch n.Type {
	case graph.KindText, graph.KindColor, graph.KindNumber, graph.KindToggle:
		return Normalize(n.Value())

	case graph.KindEqual:
		return LooseEqual(p.input(n, graph.SocketA), p.input(n, graph.SocketB))
	case graph.KindNotEqual:
		return !LooseEqual(p.input(n, graph.SocketA), p.input(n, graph.SocketB))
	case graph.KindGreaterThan:
		a, b := p.compareOperands(n)
		return a > b
	case graph.KindLessThan:
		a, b := p.compareOperands(n)
		return a < b
	case graph.KindGreaterEqual:
		a, b := p.compareOperands(n)
		return a >= b
	case graph.KindLessEqual:
		a, b := p.compareOperands(n)
		return a <= b

	case graph.KindAnd:
		return Truthy(p.input(n, graph.SocketA)) && Truthy(p.input(n, graph.SocketB))
	case graph.KindOr:
		return Truthy(p.input(n, graph.SocketA)) || Truthy(p.input(n, graph.SocketB))
	case graph.KindNot:
		return !Truthy(p.input(n, graph.SocketA))

	case graph.KindAdd:
		a := p.number(n, graph.SocketA, 0)
		return a + p.number(n, graph.SocketB, 0)
	case graph.KindSubtract:
		a := p.number(n, graph.SocketA, 0)
		return a - p.number(n, graph.SocketB, 0)
	case graph.KindMultiply:
		a := p.number(n, graph.SocketA, 0)
		return a * p.number(n, graph.SocketB, 0)
	case graph.KindDivide:
		a := p.number(n, graph.SocketA, 0)
		d := p.number(n, graph.SocketB, 1)
		if d == 0 {
			return 0.0
		}
		return finite(a / d)
	case graph.KindModulo:
		a := p.number(n, graph.SocketA, 0)
		d := p.number(n, graph.SocketB, 1)
		if d == 0 {
			return 0.0
		}
		return finite(math.Mod(a, d))
	case graph.KindPower:
		a := p.number(n, graph.SocketA, 0)
		return math.Pow(a, p.number(n, graph.SocketB, 1))
	case graph.KindNegate:
		return -p.number(n, graph.SocketA, 0)
	case graph.KindAbs:
		return math.Abs(p.number(n, graph.SocketA, 0))
	case graph.KindRound:
		return round(p.number(n, graph.SocketA, 0))
	case graph.KindFloor:
		return math.Floor(p.number(n, graph.SocketA, 0))
	case graph.KindCeil:
		return math.Ceil(p.number(n, graph.SocketA, 0))
	case graph.KindMin:
		a := p.number(n, graph.SocketA, 0)
		return math.Min(a, p.number(n, graph.SocketB, 0))
	case graph.KindMax:
		a := p.number(n, graph.SocketA, 0)
		return math.Max(a, p.number(n, graph.SocketB, 0))
	case graph.KindClamp:
		v := p.number(n, graph.SocketValue, 0)
		lo := p.number(n, graph.SocketMin, 0)
		hi := p.number(n, graph.SocketMax, 1)
		return math.Min(math.Max(v, lo), hi)
	case graph.KindMapRange:
		return p.mapRange(n)
	case graph.KindRandom:
		return p.ev.random()
	case graph.KindSin:
		return math.Sin(p.number(n, graph.SocketA, 0))
	case graph.KindCos:
		return math.Cos(p.number(n, graph.SocketA, 0))

	case graph.KindConcat:
		a := text(p.input(n, graph.SocketA))
		return a + text(p.input(n, graph.SocketB))

	case graph.KindHover:
		return p.ctx.IsHovered
	case graph.KindClick:
		return p.ctx.IsClicked
	case graph.KindTimer:
		return p.ctx.Time * p.number(n, graph.SocketSpeed, 1)

	case graph.KindIfElse:
		if Truthy(p.input(n, graph.SocketCondition)) {
			return p.input(n, graph.SocketTrue)
		}
		return p.input(n, graph.SocketFalse)

	case graph.KindStyle:
		st := Style{}
		if v := p.input(n, graph.SocketBg); v != nil {
			st["backgroundColor"] = v
		}
		if v := p.input(n, graph.SocketText); v != nil {
			st["color"] = v
		}
		if v := p.input(n, graph.SocketSize); v != nil {
			st["fontSize"] = v
		}
		return st
	case graph.KindAnimation:
		return p.animation(n)
	case graph.KindTransition:
		dur := p.number(n, graph.SocketDuration, 0.3)
		delay := p.number(n, graph.SocketDelay, 0)
		return Style{"transition": fmt.Sprintf("all %ss ease-in-out %ss", FormatNumber(dur), FormatNumber(delay))}
	case graph.KindMerge:
		out := asStyle(p.input(n, graph.SocketStyleA)).Clone()
		out.Merge(asStyle(p.input(n, graph.SocketStyleB)))
		return out

	case graph.KindNavigate, graph.KindLink, graph.KindAlert:
		return p.dispatch(n)
	case graph.KindOutput:
		return nil

	default:
		return Normalize(n.Value())
	}
}

func (p *pass) compareOperands(n *graph.Node) (float64, float64) {
	a := ToNumber(p.input(n, graph.SocketA))
	return a, ToNumber(p.input(n, graph.SocketB))
}

func (p *pass) mapRange(n *graph.Node) any {
	v := p.number(n, graph.SocketValue, 0)
	inMin := p.number(n, graph.SocketInMin, 0)
	inMax := p.number(n, graph.SocketInMax, 1)
	outMin := p.number(n, graph.SocketOutMin, 0)
	outMax := p.number(n, graph.SocketOutMax, 1)
	span := inMax - inMin
	if span == 0 {
		return outMin
	}
	return outMin + (v-inMin)/span*(outMax-outMin)
}

func (p *pass) animation(n *graph.Node) any {
	if _, wired := p.g.Incoming(n.ID, graph.SocketTrigger); wired && !Truthy(p.input(n, graph.SocketTrigger)) {
		return Style{"animation": "none"}
	}

	kind := "fadeIn"
	if v := Normalize(n.Value()); Truthy(v) {
		kind = ToString(v)
	}
	dur := p.number(n, graph.SocketDuration, 1)
	delay := p.number(n, graph.SocketDelay, 0)
	iter := "1"
	if graph.InfiniteAnimations[kind] {
		iter = "infinite"
	}
	return Style{"animation": fmt.Sprintf("%s %ss ease-in-out %ss %s both", kind, FormatNumber(dur), FormatNumber(delay), iter)}
}
