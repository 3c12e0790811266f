package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/attacktree/pkg/cache"
	"github.com/matzehuels/attacktree/pkg/diagram"
	apperrors "github.com/matzehuels/attacktree/pkg/errors"
	"github.com/matzehuels/attacktree/pkg/layout"
	"github.com/matzehuels/attacktree/pkg/source"
	"github.com/matzehuels/attacktree/pkg/tree"
)

const compromiseSystem = `{
  "timestamp": "2024-03-01T10:00:00",
  "result": {
    "attack_tree": {
      "nodes": [{
        "id": "root", "type": "goal", "label": "Compromise System",
        "children": [
          {"id": "a1", "type": "attack", "label": "Phishing",
           "children": [{"id": "v1", "type": "vulnerability", "label": "Weak \"MFA\""}]},
          {"id": "a2", "type": "attack", "label": "Exploit VPN"}
        ]
      }]
    }
  }
}`

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func newFileRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	r := NewRunner(c, nil, quietLogger())
	t.Cleanup(func() { r.Close() })
	return r
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if r.Cache == nil || r.Keyer == nil || r.Logger == nil {
		t.Fatalf("NewRunner left nil fields: %+v", r)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestExecute(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	res, err := r.Execute(context.Background(), []byte(compromiseSystem), Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Empty {
		t.Fatal("Empty = true, want false")
	}
	if got := res.Root().ID; got != "root" {
		t.Errorf("root = %q, want root", got)
	}
	if res.Stats.NodeCount != 4 || res.Stats.EdgeCount != 3 {
		t.Errorf("stats = %d nodes/%d edges, want 4/3", res.Stats.NodeCount, res.Stats.EdgeCount)
	}
	if len(res.Layout.Nodes) != 4 || len(res.Layout.Edges) != 3 {
		t.Errorf("layout = %d nodes/%d edges, want 4/3", len(res.Layout.Nodes), len(res.Layout.Edges))
	}
	if n := res.Layout.Nodes[0]; n.ID != "root" || n.X != 0 || n.Y != 0 {
		t.Errorf("first node = %+v, want root at origin", n)
	}
	if res.Layout.Stats.Paths != 2 {
		t.Errorf("paths = %d, want 2", res.Layout.Stats.Paths)
	}
	if res.TreeHash == "" {
		t.Error("TreeHash is empty")
	}
	if len(res.Issues) != 0 {
		t.Errorf("Issues = %v, want none", res.Issues)
	}

	if !strings.HasPrefix(res.Diagram, "graph TD\n") {
		t.Errorf("diagram header: %q", res.Diagram)
	}
	if got := strings.Count(res.Diagram, "-->"); got != 3 {
		t.Errorf("diagram has %d arrows, want 3", got)
	}
	if !strings.Contains(res.Diagram, `v1["Weak 'MFA'"]`) {
		t.Errorf("diagram does not escape quotes:\n%s", res.Diagram)
	}
	if res.Artifacts != nil {
		t.Errorf("Artifacts = %v, want nil without formats", res.Artifacts)
	}
}

func TestExecuteNoData(t *testing.T) {
	envelopes := []string{
		`{}`,
		`not json`,
		`{"result": {"attack_tree": {"nodes": []}}}`,
		`{"nodes": "nope"}`,
	}
	r := NewRunner(nil, nil, quietLogger())
	for _, env := range envelopes {
		res, err := r.Execute(context.Background(), []byte(env), Options{})
		if err != nil {
			t.Errorf("Execute(%q) error: %v", env, err)
			continue
		}
		if !res.Empty {
			t.Errorf("Execute(%q).Empty = false", env)
		}
		if res.Root() != nil || res.Diagram != "" {
			t.Errorf("Execute(%q) produced output for no data: %+v", env, res)
		}
		if res.Layout.Nodes == nil || len(res.Layout.Nodes) != 0 {
			t.Errorf("Execute(%q) layout nodes = %v, want empty slice", env, res.Layout.Nodes)
		}
	}
}

func TestExecuteCaching(t *testing.T) {
	ctx := context.Background()
	r := newFileRunner(t)

	first, err := r.Execute(ctx, []byte(compromiseSystem), Options{Styled: true})
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.DiagramHit {
		t.Errorf("first run hit cache: %+v", first.CacheInfo)
	}

	second, err := r.Execute(ctx, []byte(compromiseSystem), Options{Styled: true})
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.DiagramHit {
		t.Errorf("second run missed cache: %+v", second.CacheInfo)
	}
	if second.Diagram != first.Diagram {
		t.Errorf("cached diagram differs:\n%s\nvs\n%s", second.Diagram, first.Diagram)
	}
	if len(second.Layout.Nodes) != len(first.Layout.Nodes) {
		t.Errorf("cached layout has %d nodes, want %d", len(second.Layout.Nodes), len(first.Layout.Nodes))
	}

	// Different options produce different keys.
	plain, err := r.Execute(ctx, []byte(compromiseSystem), Options{})
	if err != nil {
		t.Fatalf("plain Execute: %v", err)
	}
	if !plain.CacheInfo.LayoutHit {
		t.Error("layout should be shared between styled and plain runs")
	}
	if plain.CacheInfo.DiagramHit {
		t.Error("plain diagram must not come from the styled entry")
	}

	wide := layout.DefaultSpacing()
	wide.BaseWidth = 300
	res, err := r.Execute(ctx, []byte(compromiseSystem), Options{Spacing: &wide})
	if err != nil {
		t.Fatalf("wide Execute: %v", err)
	}
	if res.CacheInfo.LayoutHit {
		t.Error("changed spacing must not hit the cache")
	}

	refreshed, err := r.Execute(ctx, []byte(compromiseSystem), Options{Refresh: true})
	if err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if refreshed.CacheInfo.LayoutHit || refreshed.CacheInfo.DiagramHit {
		t.Errorf("refresh hit cache: %+v", refreshed.CacheInfo)
	}
}

// duplicateIDEnvelope has two siblings sharing id "x". The second one carries
// a subtree that differs between variants.
func duplicateIDEnvelope(label, childID, childLabel string) []byte {
	return []byte(`{"nodes": [{"id": "r", "type": "goal", "label": "Root", "children": [
		{"id": "x", "type": "attack", "label": "First", "children": [{"id": "y", "label": "Y"}]},
		{"id": "x", "type": "attack", "label": "` + label + `", "children": [{"id": "` + childID + `", "label": "` + childLabel + `"}]}
	]}]}`)
}

func layoutLabels(res *Result) string {
	parts := make([]string, len(res.Layout.Nodes))
	for i, n := range res.Layout.Nodes {
		parts[i] = n.ID + "=" + n.Label
	}
	return strings.Join(parts, ",")
}

func TestExecuteDuplicateIDsCacheKey(t *testing.T) {
	ctx := context.Background()
	r := newFileRunner(t)

	a, err := r.Execute(ctx, duplicateIDEnvelope("SecondA", "z", "Zeta"), Options{SkipDiagram: true})
	if err != nil {
		t.Fatalf("Execute A: %v", err)
	}
	b, err := r.Execute(ctx, duplicateIDEnvelope("SecondB", "w", "Omega"), Options{SkipDiagram: true})
	if err != nil {
		t.Fatalf("Execute B: %v", err)
	}

	if a.TreeHash == b.TreeHash {
		t.Fatalf("trees differing under a repeated id share hash %s", a.TreeHash)
	}
	if b.CacheInfo.LayoutHit {
		t.Error("second envelope was served from the first envelope's cache entry")
	}
	if got, want := layoutLabels(b), "r=Root,x=First,y=Y,x=SecondB,w=Omega"; got != want {
		t.Errorf("layout = %s, want %s", got, want)
	}

	again, err := r.Execute(ctx, duplicateIDEnvelope("SecondA", "z", "Zeta"), Options{SkipDiagram: true})
	if err != nil {
		t.Fatalf("Execute A again: %v", err)
	}
	if !again.CacheInfo.LayoutHit || again.TreeHash != a.TreeHash {
		t.Errorf("identical envelope should hit its own entry: hit=%v hash=%s", again.CacheInfo.LayoutHit, again.TreeHash)
	}
	if got, want := layoutLabels(again), "r=Root,x=First,y=Y,x=SecondA,z=Zeta"; got != want {
		t.Errorf("cached layout = %s, want %s", got, want)
	}
}

func TestExecuteStatsCountPlacements(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	res, err := r.Execute(context.Background(), duplicateIDEnvelope("Second", "z", "Zeta"), Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Stats.NodeCount != len(res.Layout.Nodes) || res.Stats.NodeCount != 5 {
		t.Errorf("NodeCount = %d, layout nodes = %d, want 5", res.Stats.NodeCount, len(res.Layout.Nodes))
	}
	if res.Stats.EdgeCount != 4 {
		t.Errorf("EdgeCount = %d, want 4", res.Stats.EdgeCount)
	}
	if res.Layout.Stats.Nodes != res.Stats.NodeCount {
		t.Errorf("layout stats report %d nodes, pipeline stats %d", res.Layout.Stats.Nodes, res.Stats.NodeCount)
	}
}

func TestTreeHash(t *testing.T) {
	leaf := func(id, label string) *tree.Node { return &tree.Node{ID: id, Label: label} }
	build := func(label string) *tree.Node {
		return &tree.Node{ID: "r", Children: []*tree.Node{
			{ID: "x", Children: []*tree.Node{leaf("y", "Y")}},
			{ID: "x", Children: []*tree.Node{leaf("z", label)}},
		}}
	}

	h1, err := TreeHash(build("one"))
	if err != nil {
		t.Fatal(err)
	}
	h2, _ := TreeHash(build("one"))
	h3, _ := TreeHash(build("two"))
	if h1 != h2 {
		t.Error("equal trees hash differently")
	}
	if h1 == h3 {
		t.Error("labels under a repeated id do not affect the hash")
	}

	a := &tree.Node{ID: "a"}
	a.Children = []*tree.Node{{ID: "b", Children: []*tree.Node{a}}}
	if _, err := TreeHash(a); err != nil {
		t.Errorf("cyclic tree: %v", err)
	}

	f1, _ := ForestHash([]*tree.Node{build("one"), leaf("q", "Q")})
	f2, _ := ForestHash([]*tree.Node{build("two"), leaf("q", "Q")})
	if f1 == f2 {
		t.Error("forest hash ignores repeated-id subtrees")
	}
}

func TestExecuteCorruptCacheEntry(t *testing.T) {
	ctx := context.Background()
	r := newFileRunner(t)

	res, err := r.Execute(ctx, []byte(compromiseSystem), Options{SkipDiagram: true})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	keyOpts, err := (&Options{}).LayoutKeyOpts()
	if err != nil {
		t.Fatal(err)
	}
	key := r.Keyer.LayoutKey(res.TreeHash, keyOpts)
	if err := r.Cache.Set(ctx, key, []byte("{broken"), cache.LayoutTTL); err != nil {
		t.Fatal(err)
	}

	again, err := r.Execute(ctx, []byte(compromiseSystem), Options{SkipDiagram: true})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if again.CacheInfo.LayoutHit {
		t.Error("corrupt entry reported as a hit")
	}
	if len(again.Layout.Nodes) != 4 {
		t.Errorf("recomputed layout has %d nodes, want 4", len(again.Layout.Nodes))
	}
	if again.Diagram != "" {
		t.Errorf("SkipDiagram produced %q", again.Diagram)
	}
}

func TestExecuteDiagramOptions(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	res, err := r.Execute(context.Background(), []byte(compromiseSystem), Options{
		Direction: "lr",
		Styled:    true,
		Fenced:    true,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.HasPrefix(res.Diagram, "```mermaid\ngraph LR\n") {
		t.Errorf("diagram = %q", res.Diagram)
	}
	if !strings.Contains(res.Diagram, "classDef goal") {
		t.Error("styled diagram has no classDef")
	}
	if !strings.HasSuffix(res.Diagram, "```\n") {
		t.Error("fenced diagram not closed")
	}
}

func TestExecuteForest(t *testing.T) {
	env := `{"nodes": [
		{"id": "g1", "type": "goal", "label": "First"},
		{"id": "g2", "type": "goal", "label": "Second", "children": [{"id": "x", "type": "attack", "label": "X"}]}
	]}`
	r := NewRunner(nil, nil, quietLogger())

	single, err := r.Execute(context.Background(), []byte(env), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(single.Diagram, "g2") {
		t.Errorf("root-only diagram exported a second tree:\n%s", single.Diagram)
	}

	all, err := r.Execute(context.Background(), []byte(env), Options{Forest: true})
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"g1[", "g2[", "x[", "g2 --> x"} {
		if !strings.Contains(all.Diagram, id) {
			t.Errorf("forest diagram missing %q:\n%s", id, all.Diagram)
		}
	}
	if len(all.Layout.Nodes) != 1 {
		t.Errorf("layout covers %d nodes, want only the root tree", len(all.Layout.Nodes))
	}
}

func TestExecuteReportsIssues(t *testing.T) {
	env := `{"nodes": [{"id": "r", "children": [
		{"id": "dup", "type": "attack"},
		{"id": "dup", "type": "vulnerability"}
	]}]}`
	r := NewRunner(nil, nil, quietLogger())
	res, err := r.Execute(context.Background(), []byte(env), Options{})
	if err != nil {
		t.Fatalf("Execute must tolerate anomalies: %v", err)
	}
	found := false
	for _, is := range res.Issues {
		if is.Code == tree.IssueDuplicateID && is.NodeID == "dup" {
			found = true
		}
	}
	if !found {
		t.Errorf("Issues = %v, want duplicate_id for dup", res.Issues)
	}
	if got := res.Root().Label; got != "Unnamed Node" {
		t.Errorf("root label = %q, want default", got)
	}
}

func TestExecuteInvalidOptions(t *testing.T) {
	bad := layout.DefaultSpacing()
	bad.BaseWidth = -1

	tests := []struct {
		name string
		opts Options
	}{
		{"Spacing", Options{Spacing: &bad}},
		{"Direction", Options{Direction: "diagonal"}},
		{"Format", Options{Formats: []string{"gif"}}},
		{"Scale", Options{Scale: 100}},
	}
	r := NewRunner(nil, nil, quietLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.Execute(context.Background(), []byte(compromiseSystem), tt.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Spacing == nil || opts.Spacing.BaseWidth != layout.DefaultSpacing().BaseWidth {
		t.Errorf("Spacing = %+v, want defaults", opts.Spacing)
	}
	if opts.Direction != string(diagram.TopDown) {
		t.Errorf("Direction = %q, want TD", opts.Direction)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale = %v, want %v", opts.Scale, DefaultScale)
	}

	opts.Formats = []string{"SVG"}
	if err := opts.ValidateForRender(); err != nil {
		t.Fatal(err)
	}
	if opts.Formats[0] != "svg" {
		t.Errorf("format not normalized: %q", opts.Formats[0])
	}
}

func TestValidateForRenderKeepsCallerFormats(t *testing.T) {
	formats := []string{"SVG", "Dot"}
	opts := Options{Formats: formats}
	if err := opts.ValidateForRender(); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(opts.Formats, ","); got != "svg,dot" {
		t.Errorf("Formats = %s, want svg,dot", got)
	}
	if got := strings.Join(formats, ","); got != "SVG,Dot" {
		t.Errorf("caller slice changed to %s", got)
	}
}

func TestRenderArtifactsDOT(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	res, err := r.Execute(context.Background(), []byte(compromiseSystem), Options{Formats: []string{"dot"}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	dot := string(res.Artifacts["dot"])
	if !strings.HasPrefix(dot, "digraph G {") {
		t.Errorf("dot artifact = %q", dot)
	}
	if !strings.Contains(dot, `"root" -> "a1"`) {
		t.Errorf("dot artifact missing edge:\n%s", dot)
	}
}

func TestExecuteAssessment(t *testing.T) {
	const id = "0b5f2c3e-8a61-4d2b-9f3c-1e2d3c4b5a69"
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, id), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, id, source.AttackTreeFile), []byte(compromiseSystem), 0644); err != nil {
		t.Fatal(err)
	}
	src := source.NewFileSource(dir)
	r := NewRunner(nil, nil, quietLogger())

	res, err := r.ExecuteAssessment(context.Background(), src, id, Options{})
	if err != nil {
		t.Fatalf("ExecuteAssessment: %v", err)
	}
	if res.Stats.NodeCount != 4 {
		t.Errorf("nodes = %d, want 4", res.Stats.NodeCount)
	}

	tests := []struct {
		name string
		id   string
		code apperrors.Code
	}{
		{"Invalid", "not-a-uuid", apperrors.ErrCodeInvalidAssessment},
		{"Missing", "7d1e6f42-3c55-4a0e-b8d2-6a9f0e1c2b3d", apperrors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.ExecuteAssessment(context.Background(), src, tt.id, Options{})
			if !apperrors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

type failingSource struct{ err error }

func (failingSource) Name() string { return "failing" }
func (s failingSource) Fetch(context.Context, string) ([]byte, error) {
	return nil, s.err
}
func (s failingSource) List(context.Context) ([]source.Assessment, error) {
	return nil, s.err
}

func TestExecuteAssessmentWrapsSourceErrors(t *testing.T) {
	const id = "0b5f2c3e-8a61-4d2b-9f3c-1e2d3c4b5a69"
	tests := []struct {
		name string
		err  error
		code apperrors.Code
	}{
		{"NotFound", source.ErrNotFound, apperrors.ErrCodeNotFound},
		{"Timeout", context.DeadlineExceeded, apperrors.ErrCodeTimeout},
		{"Other", errors.New("connection reset"), apperrors.ErrCodeNetwork},
	}
	r := NewRunner(nil, nil, quietLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.ExecuteAssessment(context.Background(), failingSource{tt.err}, id, Options{})
			if !apperrors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("error %v does not wrap %v", err, tt.err)
			}
		})
	}
}
