package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/attacktree/pkg/source"
	"github.com/matzehuels/attacktree/pkg/tree"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m tea.Model, keys ...string) tea.Model {
	t.Helper()
	for _, k := range keys {
		m, _ = m.Update(key(k))
	}
	return m
}

// deepTree is root > a1 > v1 > x1, plus root > a2.
func deepTree() *tree.Node {
	x1 := &tree.Node{ID: "x1", Kind: tree.KindVulnerability, Label: "Reused Password"}
	v1 := &tree.Node{ID: "v1", Kind: tree.KindVulnerability, Label: "Weak MFA", Children: []*tree.Node{x1}}
	a1 := &tree.Node{ID: "a1", Kind: tree.KindAttack, Label: "Phishing", Children: []*tree.Node{v1}}
	a2 := &tree.Node{ID: "a2", Kind: tree.KindAttack, Label: "Exploit VPN"}
	return &tree.Node{ID: "root", Kind: tree.KindGoal, Label: "Compromise System", Children: []*tree.Node{a1, a2}}
}

func visibleIDs(m TreeModel) []string {
	ids := make([]string, len(m.rows))
	for i, r := range m.rows {
		ids[i] = r.node.ID
	}
	return ids
}

func TestTreeModelInitialExpansion(t *testing.T) {
	m := NewTreeModel(deepTree(), nil)

	got := strings.Join(visibleIDs(m), ",")
	if want := "root,a1,v1,a2"; got != want {
		t.Errorf("visible rows = %s, want %s", got, want)
	}

	view := m.View()
	for _, want := range []string{"Attack Tree", "Compromise System", "5 nodes", "depth 3", "2 paths"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestTreeModelNavigation(t *testing.T) {
	tests := []struct {
		name   string
		keys   []string
		rows   string
		cursor string
	}{
		{"DownMovesCursor", []string{"down", "down"}, "root,a1,v1,a2", "v1"},
		{"UpStopsAtTop", []string{"up", "up"}, "root,a1,v1,a2", "root"},
		{"DownStopsAtBottom", []string{"down", "down", "down", "down", "j"}, "root,a1,v1,a2", "a2"},
		{"ExpandLeaf", []string{"down", "down", "right"}, "root,a1,v1,x1,a2", "v1"},
		{"CollapseSubtree", []string{"down", "left"}, "root,a1,a2", "a1"},
		{"LeftJumpsToParent", []string{"down", "down", "left"}, "root,a1,v1,a2", "a1"},
		{"ToggleWithEnter", []string{"down", "enter", "enter"}, "root,a1,v1,a2", "a1"},
		{"CollapseAll", []string{"down", "c"}, "root", "root"},
		{"ExpandAll", []string{"c", "e"}, "root,a1,v1,x1,a2", "root"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := press(t, NewTreeModel(deepTree(), nil), tt.keys...).(TreeModel)
			if got := strings.Join(visibleIDs(m), ","); got != tt.rows {
				t.Errorf("rows = %s, want %s", got, tt.rows)
			}
			row, ok := m.current()
			if !ok || row.node.ID != tt.cursor {
				t.Errorf("cursor on %q, want %q", row.node.ID, tt.cursor)
			}
		})
	}
}

func TestTreeModelCycle(t *testing.T) {
	root := &tree.Node{ID: "root", Label: "Goal"}
	a := &tree.Node{ID: "a", Kind: tree.KindAttack, Label: "Loop", Children: []*tree.Node{root}}
	root.Children = []*tree.Node{a}

	m := press(t, NewTreeModel(root, []tree.Issue{{Code: tree.IssueCycle, NodeID: "root"}}), "e").(TreeModel)

	if got := strings.Join(visibleIDs(m), ","); got != "root,a,root" {
		t.Fatalf("rows = %s, want root,a,root", got)
	}
	if !m.rows[2].repeat {
		t.Error("repeated ancestor should be marked as a repeat")
	}
	m = press(t, m, "down", "down", "right").(TreeModel)
	if len(m.rows) != 3 {
		t.Errorf("expanding a repeat should do nothing, got %d rows", len(m.rows))
	}
	if !strings.Contains(m.View(), "1 structural issue") {
		t.Error("view should report the structural issue")
	}
}

func TestTreeModelWindowAndQuit(t *testing.T) {
	m := NewTreeModel(deepTree(), nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 4})
	if h := next.(TreeModel).Height; h != minListHeight {
		t.Errorf("height = %d, want %d", h, minListHeight)
	}
	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q should quit")
	}
}

func TestTreeModelEmpty(t *testing.T) {
	m := NewTreeModel(nil, nil)
	if !strings.Contains(m.View(), "(empty tree)") {
		t.Error("nil root should render an empty tree")
	}
	press(t, m, "down", "enter", "left")
}

func TestAssessmentListModel(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	assessments := []source.Assessment{
		{ID: idNew, UpdatedAt: now.Add(-2 * time.Hour)},
		{ID: idOld, UpdatedAt: now.Add(-30 * 24 * time.Hour)},
	}
	m := NewAssessmentListModel(assessments)
	m.now = func() time.Time { return now }

	view := m.View()
	for _, want := range []string{"Select Assessment", idNew, idOld, "2h ago", "Apr 1, 2024", "[1/2]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	next := press(t, m, "down", "down", "enter").(AssessmentListModel)
	if next.Selected == nil || next.Selected.ID != idOld {
		t.Fatalf("selected = %+v, want %s", next.Selected, idOld)
	}

	quit := press(t, m, "q").(AssessmentListModel)
	if quit.Selected != nil {
		t.Error("quitting should not select")
	}

	empty := press(t, NewAssessmentListModel(nil), "enter").(AssessmentListModel)
	if empty.Selected != nil {
		t.Error("enter on an empty list should not select")
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"Zero", time.Time{}, "—"},
		{"JustNow", now.Add(-10 * time.Second), "just now"},
		{"Minutes", now.Add(-5 * time.Minute), "5m ago"},
		{"Hours", now.Add(-3 * time.Hour), "3h ago"},
		{"Days", now.Add(-2 * 24 * time.Hour), "2d ago"},
		{"Older", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), "Jan 15, 2024"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatRelativeTime(tt.t, now); got != tt.want {
				t.Errorf("formatRelativeTime() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrintIssuesAndStats(t *testing.T) {
	var buf bytes.Buffer
	withUIOut(t, &buf)

	printIssues([]tree.Issue{
		{Code: tree.IssueDuplicateID, NodeID: "a1", Message: `duplicate id "a1"`},
		{Code: tree.IssueCycle, NodeID: "root", Message: `cycle through "root"`},
	})
	printStats(4, 3, true)

	out := buf.String()
	for _, want := range []string{"duplicate_id", `duplicate id "a1"`, "cycle", "4 nodes", "3 edges", iconCached} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
