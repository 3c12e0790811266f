package tree

import "fmt"

// IssueCode classifies a structural anomaly.
type IssueCode string

const (
	IssueDuplicateID IssueCode = "duplicate_id"
	IssueCycle       IssueCode = "cycle"
	IssueEmptyID     IssueCode = "empty_id"
	IssueNilChild    IssueCode = "nil_child"
)

// Issue describes one structural anomaly found by [Validate].
type Issue struct {
	Code    IssueCode `json:"code"`
	NodeID  string    `json:"node_id,omitempty"`
	Message string    `json:"message"`
}

func (i Issue) String() string { return i.Message }

// Validate reports duplicate ids, cycles, empty ids and nil children in the
// tree rooted at root. The tree itself is not modified. Each id's subtree is
// inspected once.
func Validate(root *Node) []Issue {
	if root == nil {
		return nil
	}
	v := &validator{seen: map[string]bool{}, path: map[string]bool{}}
	v.visit(root)
	return v.issues
}

type validator struct {
	seen   map[string]bool
	path   map[string]bool
	issues []Issue
}

func (v *validator) add(code IssueCode, id, format string, args ...any) {
	v.issues = append(v.issues, Issue{Code: code, NodeID: id, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) visit(n *Node) {
	if n.ID == "" {
		v.add(IssueEmptyID, "", "node %q has an empty id", n.Label)
	}
	v.seen[n.ID] = true
	v.path[n.ID] = true
	defer delete(v.path, n.ID)

	for i, c := range n.Children {
		switch {
		case c == nil:
			v.add(IssueNilChild, n.ID, "node %q has a nil child at index %d", n.ID, i)
		case v.path[c.ID]:
			v.add(IssueCycle, c.ID, "node %q is its own ancestor (via %q)", c.ID, n.ID)
		case v.seen[c.ID]:
			v.add(IssueDuplicateID, c.ID, "node id %q appears more than once", c.ID)
		default:
			v.visit(c)
		}
	}
}
