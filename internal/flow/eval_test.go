package flow

import (
	"reflect"
	"testing"

	"github.com/Raiwe17/ProektSite/internal/graph"
)

func conn(src, dst, socket string) graph.Connection {
	return graph.Connection{SourceNodeID: src, TargetNodeID: dst, TargetSocketID: socket}
}

func literal(id, kind string, v any) graph.Node {
	return graph.Node{ID: id, Type: kind, Data: map[string]any{"value": v}}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	g := &graph.Graph{
		ID: "det",
		Nodes: []graph.Node{
			{ID: "t", Type: graph.KindTimer},
			{ID: "s", Type: graph.KindSin},
			literal("c", graph.KindColor, "#abc"),
			{ID: "st", Type: graph.KindStyle},
			{ID: "out", Type: graph.KindOutput},
		},
		Connections: []graph.Connection{
			conn("t", "s", graph.SocketA),
			conn("s", "st", graph.SocketSize),
			conn("c", "st", graph.SocketBg),
			conn("st", "out", graph.SocketStyle),
			conn("s", "out", graph.SocketContent),
		},
	}
	ev := NewEvaluator()
	ctx := Context{Time: 1.25}
	first := ev.Evaluate(g, nil, ctx)
	second := ev.Evaluate(g, nil, ctx)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical results, got %+v and %+v", first, second)
	}
}

func TestEvaluateMemoizesWithinOneCall(t *testing.T) {
	calls := 0
	ev := NewEvaluator(WithRandom(func() float64 {
		calls++
		return 0.5
	}))
	g := &graph.Graph{
		Nodes: []graph.Node{
			{ID: "r", Type: graph.KindRandom},
			{ID: "add", Type: graph.KindAdd},
			{ID: "out", Type: graph.KindOutput},
		},
		Connections: []graph.Connection{
			conn("r", "add", graph.SocketA),
			conn("r", "add", graph.SocketB),
			conn("add", "out", graph.SocketContent),
		},
	}

	res := ev.Evaluate(g, nil, Context{})
	if res.Content != "1" {
		t.Errorf("expected 0.5+0.5, got %q", res.Content)
	}
	if calls != 1 {
		t.Errorf("expected RANDOM sampled once per call, got %d", calls)
	}

	ev.Evaluate(g, nil, Context{})
	if calls != 2 {
		t.Errorf("expected a fresh memo on the next call, got %d samples", calls)
	}
}

func TestIfElseEvaluatesOnlySelectedBranch(t *testing.T) {
	calls := 0
	ev := NewEvaluator(WithRandom(func() float64 {
		calls++
		return 0.5
	}))
	g := &graph.Graph{
		Nodes: []graph.Node{
			{ID: "h", Type: graph.KindHover},
			{ID: "r", Type: graph.KindRandom},
			literal("idle", graph.KindText, "idle"),
			{ID: "pick", Type: graph.KindIfElse},
			{ID: "out", Type: graph.KindOutput},
		},
		Connections: []graph.Connection{
			conn("h", "pick", graph.SocketCondition),
			conn("r", "pick", graph.SocketTrue),
			conn("idle", "pick", graph.SocketFalse),
			conn("pick", "out", graph.SocketContent),
		},
	}

	if res := ev.Evaluate(g, nil, Context{}); res.Content != "idle" {
		t.Errorf("expected idle, got %q", res.Content)
	}
	if calls != 0 {
		t.Errorf("expected untaken branch to stay unevaluated, got %d samples", calls)
	}
}

func TestOverridesAreNormalized(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			literal("a", graph.KindNumber, 1),
			literal("b", graph.KindNumber, 2),
			{ID: "eq", Type: graph.KindEqual},
			{ID: "out", Type: graph.KindOutput},
		},
		Connections: []graph.Connection{
			conn("a", "eq", graph.SocketA),
			conn("b", "eq", graph.SocketB),
			conn("eq", "out", graph.SocketContent),
		},
	}
	res := NewEvaluator().Evaluate(g, Overrides{"a": 2}, Context{})
	if res.Content != "true" {
		t.Errorf("expected int override to compare equal to 2.0, got %q", res.Content)
	}
}

func TestResultStyleIsACopy(t *testing.T) {
	shared := map[string]any{"color": "red"}
	g := &graph.Graph{
		Nodes: []graph.Node{
			{ID: "s", Type: graph.KindStyle},
			{ID: "out", Type: graph.KindOutput},
		},
		Connections: []graph.Connection{conn("s", "out", graph.SocketStyle)},
	}
	res := NewEvaluator().Evaluate(g, Overrides{"s": shared}, Context{})
	if res.Style["color"] != "red" {
		t.Fatalf("expected override style, got %+v", res.Style)
	}
	res.Style["color"] = "blue"
	if shared["color"] != "red" {
		t.Error("mutating a result must not change the override it came from")
	}
}

func TestEvaluateNilGraph(t *testing.T) {
	res := NewEvaluator().Evaluate(nil, nil, Context{})
	if res.Style == nil || len(res.Style) != 0 || res.HasContent {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestRisingEdgeAcrossCalls(t *testing.T) {
	rec := &recorder{}
	state := NewTriggerState()
	ev := NewEvaluator(WithActions(rec))
	g := &graph.Graph{
		Nodes: []graph.Node{
			{ID: "click", Type: graph.KindClick},
			literal("go", graph.KindNavigate, "contact"),
		},
		Connections: []graph.Connection{conn("click", "go", graph.SocketTrigger)},
	}

	var fired []int
	for i, clicked := range []bool{false, true, true} {
		ev.Evaluate(g, nil, Context{IsClicked: clicked, Triggers: state})
		if len(rec.take()) > 0 {
			fired = append(fired, i+1)
		}
	}
	if !reflect.DeepEqual(fired, []int{2}) {
		t.Errorf("expected a single fire on call 2, got %v", fired)
	}
	if !state.Last("go") {
		t.Error("expected trigger state to record true")
	}

	// Another element evaluating the same graph has its own state.
	other := NewTriggerState()
	ev.Evaluate(g, nil, Context{IsClicked: true, Triggers: other})
	if got := rec.take(); len(got) != 1 || got[0].Target != "contact" {
		t.Errorf("expected separate state to fire, got %+v", got)
	}
	ev.Evaluate(g, nil, Context{IsClicked: true, Triggers: state})
	if got := rec.take(); len(got) != 0 {
		t.Errorf("held trigger must not refire, got %+v", got)
	}
}

func TestTriggerStateSnapshotRestore(t *testing.T) {
	s := NewTriggerState()
	s.Record("a", true)
	s.Record("b", false)

	snap := s.Snapshot()
	if !reflect.DeepEqual(snap, map[string]bool{"a": true}) {
		t.Errorf("unexpected snapshot %v", snap)
	}
	snap["c"] = true
	if s.Last("c") {
		t.Error("snapshot must be a copy")
	}

	other := NewTriggerState()
	other.Restore(map[string]bool{"x": true, "y": false})
	if !other.Last("x") || other.Last("y") {
		t.Errorf("unexpected restored state %v", other.Snapshot())
	}
}
