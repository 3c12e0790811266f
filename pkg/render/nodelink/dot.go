package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/attacktree/pkg/render"
	"github.com/matzehuels/attacktree/pkg/tree"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the node id and kind under each label.
	Detailed bool
	// LeftToRight lays the tree out horizontally instead of top-down.
	LeftToRight bool
}

// kindAttrs are the DOT node attributes per kind.
var kindAttrs = map[tree.Kind][]string{
	tree.KindGoal:          {`shape=box`, `style="rounded,filled,bold"`, `fillcolor="#ffd7d7"`, `color="#ff9999"`, `fontcolor="#cc0000"`},
	tree.KindAttack:        {`shape=hexagon`, `style=filled`, `fillcolor="#fff3d7"`, `color="#ffd699"`, `fontcolor="#cc7700"`},
	tree.KindVulnerability: {`shape=box`, `style=filled`, `fillcolor="#d7e9ff"`, `color="#99c2ff"`, `fontcolor="#0052cc"`},
}

// ToDOT converts a tree to Graphviz DOT format. Traversal follows
// [tree.Walk]: every reachable id is declared once and every parent-child
// pair becomes an edge. A nil root yields an empty graph.
func ToDOT(root *tree.Node, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	if opts.LeftToRight {
		buf.WriteString("  rankdir=LR;\n")
	} else {
		buf.WriteString("  rankdir=TB;\n")
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontsize=18, margin=\"0.25,0.12\", penwidth=2];\n")
	buf.WriteString("  edge [color=\"#333333\", penwidth=1.5];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	var edges []string
	tree.Walk(root, func(n, _ *tree.Node, _ int) bool {
		attrs := append([]string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}, kindAttrs[n.Kind]...)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
		for _, c := range n.Children {
			if c != nil {
				edges = append(edges, fmt.Sprintf("  %q -> %q;\n", n.ID, c.ID))
			}
		}
		return true
	})

	if len(edges) > 0 {
		buf.WriteString("\n")
		for _, e := range edges {
			buf.WriteString(e)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *tree.Node, detailed bool) string {
	label := n.DisplayLabel()
	if !detailed {
		return label
	}
	return fmt.Sprintf("%s\n%s · %s", label, n.Kind, n.ID)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the image scales from a
// zero-origin viewBox with matching width and height.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// Render produces the tree in the given format: DOT text, SVG, or PDF/PNG
// through rsvg-convert. Scale only applies to PNG.
func Render(ctx context.Context, root *tree.Node, format string, opts Options, scale float64) ([]byte, error) {
	format, err := render.ParseFormat(format)
	if err != nil {
		return nil, err
	}

	dot := ToDOT(root, opts)
	if format == render.FormatDOT {
		return []byte(dot), nil
	}

	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	switch format {
	case render.FormatPDF:
		return render.ToPDF(ctx, svg)
	case render.FormatPNG:
		return render.ToPNG(ctx, svg, scale)
	}
	return svg, nil
}
