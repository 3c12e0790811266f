package diagram

import (
	"fmt"
	"strings"

	"github.com/matzehuels/attacktree/pkg/tree"
)

// Direction is the Mermaid flowchart orientation.
type Direction string

// Supported directions.
const (
	TopDown   Direction = "TD"
	LeftRight Direction = "LR"
	BottomUp  Direction = "BT"
	RightLeft Direction = "RL"
)

// ParseDirection maps a case-insensitive direction name to a Direction.
// "TB" is accepted as an alias of TD.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "TD", "TB":
		return TopDown, nil
	case "LR":
		return LeftRight, nil
	case "BT":
		return BottomUp, nil
	case "RL":
		return RightLeft, nil
	}
	return "", fmt.Errorf("unknown diagram direction %q (must be TD, LR, BT or RL)", s)
}

// Options controls the exported text.
type Options struct {
	Direction Direction `json:"direction"`
	Styled    bool      `json:"styled"`
}

// DefaultOptions returns the plain top-down form used by [Export].
func DefaultOptions() Options {
	return Options{Direction: TopDown}
}

// indent prefixes every statement after the header.
const indent = "    "

// classDefs are the per-kind styles written by styled exports.
var classDefs = map[tree.Kind]string{
	tree.KindGoal:          "fill:#ffd7d7,stroke:#ff9999,color:#cc0000,stroke-width:2px",
	tree.KindAttack:        "fill:#fff3d7,stroke:#ffd699,color:#cc7700,stroke-width:2px",
	tree.KindVulnerability: "fill:#d7e9ff,stroke:#99c2ff,color:#0052cc,stroke-width:2px",
}

const linkStyle = "stroke:#333333,stroke-width:2px,fill:none"

// Export renders root as a plain top-down flowchart. A nil root yields only
// the header line.
func Export(root *tree.Node) string {
	return ExportWith(root, DefaultOptions())
}

// ExportWith renders root with the given options.
func ExportWith(root *tree.Node, opts Options) string {
	return ExportForest([]*tree.Node{root}, opts)
}

// ExportForest renders every top-level node into one diagram. The visited
// set is shared across roots, so a node reachable from two roots is declared
// once.
func ExportForest(roots []*tree.Node, opts Options) string {
	e := &exporter{opts: opts, visited: make(map[string]bool)}
	e.header()
	for _, r := range roots {
		e.visit(r)
	}
	e.footer()
	return e.b.String()
}

// Fence wraps diagram text in a Markdown mermaid code block.
func Fence(text string) string {
	return "```mermaid\n" + strings.TrimRight(text, "\n") + "\n```\n"
}

var labelReplacer = strings.NewReplacer(`"`, "'", "\r\n", " ", "\n", " ", "\r", " ")

// Escape replaces double quotes with single quotes and line breaks with
// spaces so a label fits on one line inside a quoted node text.
func Escape(label string) string {
	return labelReplacer.Replace(label)
}

type exporter struct {
	opts    Options
	b       strings.Builder
	visited map[string]bool
	links   int
}

func (e *exporter) line(format string, args ...any) {
	e.b.WriteString(indent)
	fmt.Fprintf(&e.b, format, args...)
	e.b.WriteByte('\n')
}

func (e *exporter) header() {
	dir := e.opts.Direction
	if dir == "" {
		dir = TopDown
	}
	fmt.Fprintf(&e.b, "graph %s\n", dir)
	if e.opts.Styled {
		for _, k := range tree.Kinds {
			e.line("classDef %s %s", k, classDefs[k])
		}
	}
}

func (e *exporter) footer() {
	if !e.opts.Styled || e.links == 0 {
		return
	}
	idx := make([]string, e.links)
	for i := range idx {
		idx[i] = fmt.Sprint(i)
	}
	e.line("linkStyle %s %s", strings.Join(idx, ","), linkStyle)
}

func (e *exporter) visit(n *tree.Node) {
	if n == nil || e.visited[n.ID] {
		return
	}
	e.visited[n.ID] = true
	e.declare(n)

	for _, c := range n.Children {
		if c == nil {
			continue
		}
		e.arrow(n, c)
		e.visit(c)
	}
}

func (e *exporter) declare(n *tree.Node) {
	label := Escape(n.Label)
	if !e.opts.Styled {
		e.line(`%s["%s"]`, n.ID, label)
		return
	}
	switch n.Kind {
	case tree.KindGoal:
		e.line(`%s(["%s"])`, n.ID, label)
	case tree.KindAttack:
		e.line(`%s{{"%s"}}`, n.ID, label)
	default:
		e.line(`%s["%s"]`, n.ID, label)
	}
	e.line("class %s %s", n.ID, n.Kind)
}

func (e *exporter) arrow(parent, child *tree.Node) {
	if e.opts.Styled {
		e.line("%s -->|%s| %s", parent.ID, child.Kind, child.ID)
	} else {
		e.line("%s --> %s", parent.ID, child.ID)
	}
	e.links++
}
