package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/attacktree/pkg/source"
	"github.com/matzehuels/attacktree/pkg/tree"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// minListHeight is the smallest number of visible rows.
const minListHeight = 5

// =============================================================================
// AssessmentListModel - Interactive assessment selection
// =============================================================================

// AssessmentListModel is the bubbletea model for interactive assessment selection.
type AssessmentListModel struct {
	Assessments []source.Assessment
	Cursor      int
	Selected    *source.Assessment
	Height      int
	Offset      int

	now func() time.Time
}

// NewAssessmentListModel creates a new assessment list model.
func NewAssessmentListModel(assessments []source.Assessment) AssessmentListModel {
	return AssessmentListModel{
		Assessments: assessments,
		Height:      15,
		now:         time.Now,
	}
}

func (m AssessmentListModel) Init() tea.Cmd {
	return nil
}

func (m AssessmentListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Assessments)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Assessments) == 0 {
				return m, nil
			}
			a := m.Assessments[m.Cursor]
			m.Selected = &a
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, minListHeight)
	}
	return m, nil
}

func (m AssessmentListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Assessment"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	now := time.Now
	if m.now != nil {
		now = m.now
	}
	end := min(m.Offset+m.Height, len(m.Assessments))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		a := m.Assessments[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, a.ID, formatRelativeTime(a.UpdatedAt, now())})
	}

	b.WriteString(assessmentTable(rows, func(row int) bool { return m.Offset+row == m.Cursor }).Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(m.Assessments)), len(m.Assessments))))

	return b.String()
}

// assessmentTable builds the assessment table. current reports whether a
// data row is under the cursor.
func assessmentTable(rows [][]string, current func(row int) bool) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Assessment", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle()
			if col == 2 {
				base = base.Foreground(colorDim)
			}
			if current != nil && current(row) {
				if col == 2 {
					return base.Foreground(colorGray).Bold(true)
				}
				return base.Foreground(colorGreen).Bold(true)
			}
			return base
		})
}

// =============================================================================
// TreeModel - Interactive attack tree browser
// =============================================================================

// treeRow is one visible line of the tree browser.
type treeRow struct {
	node  *tree.Node
	key   string // path of ids from the root, unique per row
	depth int
	// repeat marks a node already shown on its own ancestor path.
	repeat bool
}

// TreeModel is the bubbletea model for browsing an attack tree. Nodes start
// collapsed below DefaultExpandDepth.
type TreeModel struct {
	Root     *tree.Node
	Issues   []tree.Issue
	Cursor   int
	Offset   int
	Height   int
	Expanded map[string]bool

	rows []treeRow
}

// DefaultExpandDepth is the depth up to which nodes start expanded.
const DefaultExpandDepth = 2

// NewTreeModel creates a tree browser rooted at root.
func NewTreeModel(root *tree.Node, issues []tree.Issue) TreeModel {
	m := TreeModel{
		Root:     root,
		Issues:   issues,
		Height:   20,
		Expanded: map[string]bool{},
	}
	m.expandTo(DefaultExpandDepth)
	m.rows = m.flatten()
	return m
}

func (m TreeModel) Init() tea.Cmd {
	return nil
}

func (m TreeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "enter", " ":
			if row, ok := m.current(); ok && !row.repeat && !row.node.IsLeaf() {
				m.setExpanded(row.key, !m.Expanded[row.key])
			}
		case "right", "l":
			if row, ok := m.current(); ok && !row.repeat && !row.node.IsLeaf() {
				m.setExpanded(row.key, true)
			}
		case "left", "h":
			if row, ok := m.current(); ok {
				if m.Expanded[row.key] {
					m.setExpanded(row.key, false)
				} else {
					m.jumpToParent(row)
				}
			}
		case "e":
			m.expandTo(tree.Depth(m.Root) + 1)
			m.refresh()
		case "c":
			m.Expanded = map[string]bool{}
			m.refresh()
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-10, minListHeight)
		m.clampOffset()
	}
	return m, nil
}

func (m TreeModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Attack Tree"))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("%d nodes · depth %d · %d paths",
		tree.Count(m.Root), tree.Depth(m.Root), tree.CountPaths(m.Root))))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ←/→ collapse/expand  e expand all  c collapse all  q quit"))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(listDimStyle.Render("  (empty tree)"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.rows))
	for i := m.Offset; i < end; i++ {
		b.WriteString(m.renderRow(i))
		b.WriteString("\n")
	}

	if row, ok := m.current(); ok {
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render("id ") + StyleValue.Render(row.node.ID))
		b.WriteString(listDimStyle.Render("  kind ") + kindStyle(row.node.Kind).Render(row.node.Kind.String()))
		b.WriteString(listDimStyle.Render("  children ") + StyleNumber.Render(fmt.Sprint(len(row.node.Children))))
		b.WriteString("\n")
	}
	if len(m.Issues) > 0 {
		b.WriteString(StyleWarning.Render(fmt.Sprintf("%s %d structural issue(s)", iconWarning, len(m.Issues))))
		b.WriteString("\n")
	}
	return b.String()
}

func (m TreeModel) renderRow(i int) string {
	row := m.rows[i]
	marker := "  "
	switch {
	case row.repeat:
		marker = "↺ "
	case !row.node.IsLeaf() && m.Expanded[row.key]:
		marker = "▾ "
	case !row.node.IsLeaf():
		marker = "▸ "
	}

	label := kindStyle(row.node.Kind).Render(row.node.DisplayLabel())
	if i == m.Cursor {
		label = listSelectedStyle.Render(row.node.DisplayLabel())
	}
	cursor := "  "
	if i == m.Cursor {
		cursor = listSelectedStyle.Render("> ")
	}
	return cursor + strings.Repeat("  ", row.depth) + listDimStyle.Render(marker) + label
}

func (m *TreeModel) current() (treeRow, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.rows) {
		return treeRow{}, false
	}
	return m.rows[m.Cursor], true
}

func (m *TreeModel) move(delta int) {
	m.Cursor = max(0, min(m.Cursor+delta, len(m.rows)-1))
	m.clampOffset()
}

func (m *TreeModel) clampOffset() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m *TreeModel) setExpanded(key string, open bool) {
	if open {
		m.Expanded[key] = true
	} else {
		delete(m.Expanded, key)
	}
	m.refresh()
}

// refresh rebuilds the visible rows, keeping the cursor on the same row key
// when it is still visible.
func (m *TreeModel) refresh() {
	var key string
	if row, ok := m.current(); ok {
		key = row.key
	}
	m.rows = m.flatten()
	m.Cursor = 0
	for i, row := range m.rows {
		if row.key == key {
			m.Cursor = i
			break
		}
	}
	m.clampOffset()
}

func (m *TreeModel) jumpToParent(row treeRow) {
	parent := parentKey(row.key)
	if parent == "" {
		return
	}
	for i, r := range m.rows {
		if r.key == parent {
			m.Cursor = i
			m.clampOffset()
			return
		}
	}
}

// expandTo marks every node shallower than depth as expanded.
func (m *TreeModel) expandTo(depth int) {
	var visit func(n *tree.Node, key string, d int, path map[string]bool)
	visit = func(n *tree.Node, key string, d int, path map[string]bool) {
		if n == nil || d >= depth || path[n.ID] || n.IsLeaf() {
			return
		}
		m.Expanded[key] = true
		path[n.ID] = true
		for _, c := range n.Children {
			if c != nil {
				visit(c, childKey(key, c.ID), d+1, path)
			}
		}
		delete(path, n.ID)
	}
	if m.Root != nil {
		visit(m.Root, m.Root.ID, 0, map[string]bool{})
	}
}

// flatten lists the visible rows in preorder. A node that reappears on its
// own ancestor path is shown once as a repeat and not descended into.
func (m *TreeModel) flatten() []treeRow {
	var rows []treeRow
	var visit func(n *tree.Node, key string, depth int, path map[string]bool)
	visit = func(n *tree.Node, key string, depth int, path map[string]bool) {
		if path[n.ID] {
			rows = append(rows, treeRow{node: n, key: key, depth: depth, repeat: true})
			return
		}
		rows = append(rows, treeRow{node: n, key: key, depth: depth})
		if !m.Expanded[key] {
			return
		}
		path[n.ID] = true
		for _, c := range n.Children {
			if c != nil {
				visit(c, childKey(key, c.ID), depth+1, path)
			}
		}
		delete(path, n.ID)
	}
	if m.Root != nil {
		visit(m.Root, m.Root.ID, 0, map[string]bool{})
	}
	return rows
}

// keySep separates ids in row keys.
const keySep = "\x00"

func childKey(parent, id string) string { return parent + keySep + id }

func parentKey(key string) string {
	i := strings.LastIndex(key, keySep)
	if i < 0 {
		return ""
	}
	return key[:i]
}

// =============================================================================
// Helpers
// =============================================================================

// formatRelativeTime renders t relative to now, falling back to a date for
// anything older than a week. The zero time renders as "—".
func formatRelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "—"
	}
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
