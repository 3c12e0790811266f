package tree

import "strings"

// Kind is the closed set of attack tree node kinds.
type Kind int

const (
	// KindGoal is the adversary's objective. It is the zero value and the
	// fallback for any unrecognized kind.
	KindGoal Kind = iota
	// KindAttack is an attack technique.
	KindAttack
	// KindVulnerability is an exploitable weakness.
	KindVulnerability
)

// Kinds lists every kind in declaration order.
var Kinds = []Kind{KindGoal, KindAttack, KindVulnerability}

// String returns the lowercase wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindAttack:
		return "attack"
	case KindVulnerability:
		return "vulnerability"
	default:
		return "goal"
	}
}

// ParseKind converts a wire name to a Kind. Matching is case-insensitive and
// ignores surrounding whitespace. Unknown or empty names yield KindGoal.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "attack":
		return KindAttack
	case "vulnerability":
		return KindVulnerability
	default:
		return KindGoal
	}
}

// IsKnownKind reports whether s names one of the three kinds.
func IsKnownKind(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "goal", "attack", "vulnerability":
		return true
	}
	return false
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It never fails.
func (k *Kind) UnmarshalText(text []byte) error {
	*k = ParseKind(string(text))
	return nil
}

// Node is a single attack tree node. Children are owned by their parent.
type Node struct {
	ID       string  `json:"id"`
	Kind     Kind    `json:"type"`
	Label    string  `json:"label"`
	Children []*Node `json:"children,omitempty"`
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// SelectRoot picks the designated root from a top-level node list: the first
// Goal-kind node, or the first node when none is a goal. Nil entries are
// skipped. Returns nil for an empty list.
func SelectRoot(nodes []*Node) *Node {
	var first *Node
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if first == nil {
			first = n
		}
		if n.Kind == KindGoal {
			return n
		}
	}
	return first
}
