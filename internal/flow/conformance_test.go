package flow

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Raiwe17/ProektSite/internal/graph"
)

// The fixtures under testdata/conformance are shared with the embedded
// browser runtime, which is checked against the same files.

type conformanceFile struct {
	Name  string            `json:"name"`
	Cases []conformanceCase `json:"cases"`
}

type conformanceCase struct {
	Name      string            `json:"name"`
	Graph     graph.Graph       `json:"graph"`
	Overrides map[string]any    `json:"overrides"`
	Random    float64           `json:"random"`
	Steps     []conformanceStep `json:"steps"`
}

type conformanceStep struct {
	Context struct {
		IsHovered bool    `json:"isHovered"`
		IsClicked bool    `json:"isClicked"`
		Time      float64 `json:"time"`
	} `json:"context"`
	Expect struct {
		Style      map[string]any `json:"style"`
		Content    string         `json:"content"`
		HasContent bool           `json:"hasContent"`
	} `json:"expect"`
	Actions []firedAction `json:"actions"`
}

type firedAction struct {
	Kind   string `json:"kind"`
	Target string `json:"target"`
	NewTab bool   `json:"newTab,omitempty"`
}

type recorder struct {
	fired []firedAction
}

func (r *recorder) Navigate(pageID string) {
	r.fired = append(r.fired, firedAction{Kind: "navigate", Target: pageID})
}

func (r *recorder) OpenLink(url string, newTab bool) {
	r.fired = append(r.fired, firedAction{Kind: "link", Target: url, NewTab: newTab})
}

func (r *recorder) Alert(message string) {
	r.fired = append(r.fired, firedAction{Kind: "alert", Target: message})
}

func (r *recorder) take() []firedAction {
	out := r.fired
	r.fired = nil
	return out
}

func loadConformance(t *testing.T) []conformanceFile {
	t.Helper()
	paths, err := filepath.Glob("testdata/conformance/*.json")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	var files []conformanceFile
	for _, p := range paths {
		b, err := os.ReadFile(p)
		require.NoError(t, err)
		var f conformanceFile
		require.NoError(t, json.Unmarshal(b, &f), p)
		files = append(files, f)
	}
	return files
}

// jsonStyle normalizes a style through JSON so it compares equal to a
// fixture's decoded object.
func jsonStyle(t *testing.T, s Style) map[string]any {
	t.Helper()
	b, err := json.Marshal(s)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func TestConformance(t *testing.T) {
	for _, f := range loadConformance(t) {
		for _, tc := range f.Cases {
			t.Run(f.Name+"/"+tc.Name, func(t *testing.T) {
				rec := &recorder{}
				random := tc.Random
				ev := NewEvaluator(
					WithRandom(func() float64 { return random }),
					WithActions(rec),
				)

				for i, step := range tc.Steps {
					ctx := Context{
						IsHovered: step.Context.IsHovered,
						IsClicked: step.Context.IsClicked,
						Time:      step.Context.Time,
					}
					res := ev.Evaluate(&tc.Graph, tc.Overrides, ctx)

					assert.Equal(t, step.Expect.Style, jsonStyle(t, res.Style), "step %d style", i)
					assert.Equal(t, step.Expect.Content, res.Content, "step %d content", i)
					assert.Equal(t, step.Expect.HasContent, res.HasContent, "step %d hasContent", i)

					fired := rec.take()
					if len(step.Actions) == 0 {
						assert.Empty(t, fired, "step %d actions", i)
					} else {
						assert.Equal(t, step.Actions, fired, "step %d actions", i)
					}
				}
			})
		}
	}
}
