// Package diagram exports attack trees as Mermaid flowchart text.
//
// The output is layout independent: it lists one declaration per node and
// one arrow per parent-child pair in depth-first order, and leaves placement
// to whatever renders the Mermaid source.
//
// # Plain Export
//
// [Export] produces the minimal form:
//
//	graph TD
//	    root["Compromise System"]
//	    root --> a1
//	    a1["Phish Admin"]
//
// A visited-id set makes the exporter safe on shared references, duplicate
// ids and cycles: a node is declared once, an arrow to an already declared
// node is still written, and the exporter never descends into a node twice.
//
// Labels are passed through [Escape]. Node ids are written verbatim and
// should be valid Mermaid identifiers (letters, digits, '_' and '-').
//
// # Styled Export
//
// [ExportWith] with [Options.Styled] adds class definitions per node kind,
// kind-specific shapes (stadium for goals, hexagon for attacks, rectangle for
// vulnerabilities), arrows labelled with the child's kind and link styles.
//
// [Fence] wraps diagram text in a Markdown code block for reports.
package diagram
