package tree

import (
	"encoding/json"
	"testing"
)

func scenario() *Node {
	return &Node{ID: "root", Kind: KindGoal, Label: "Compromise System", Children: []*Node{
		{ID: "a1", Kind: KindAttack, Label: "Phish Admin", Children: []*Node{
			{ID: "v1", Kind: KindVulnerability, Label: "Weak Password Policy"},
		}},
		{ID: "a2", Kind: KindAttack, Label: "Exploit Web Vuln"},
	}}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"goal", KindGoal},
		{"attack", KindAttack},
		{"vulnerability", KindVulnerability},
		{"  Attack ", KindAttack},
		{"VULNERABILITY", KindVulnerability},
		{"", KindGoal},
		{"mitigation", KindGoal},
	}

	for _, tt := range tests {
		if got := ParseKind(tt.in); got != tt.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestKindJSON(t *testing.T) {
	n := Node{ID: "x", Kind: KindVulnerability, Label: "X"}
	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"id":"x","type":"vulnerability","label":"X"}` {
		t.Errorf("marshal = %s", data)
	}

	var back Node
	if err := json.Unmarshal([]byte(`{"id":"y","type":"unknown","label":"Y"}`), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Kind != KindGoal {
		t.Errorf("unknown kind decoded as %v, want goal", back.Kind)
	}
}

func TestSelectRoot(t *testing.T) {
	attack := &Node{ID: "a", Kind: KindAttack}
	goal := &Node{ID: "g", Kind: KindGoal}

	tests := []struct {
		name  string
		nodes []*Node
		want  *Node
	}{
		{"Empty", nil, nil},
		{"FirstGoal", []*Node{attack, goal}, goal},
		{"NoGoal", []*Node{attack, {ID: "b", Kind: KindVulnerability}}, attack},
		{"SkipsNil", []*Node{nil, attack}, attack},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectRoot(tt.nodes); got != tt.want {
				t.Errorf("SelectRoot() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCountAndDepth(t *testing.T) {
	root := scenario()
	if got := Count(root); got != 4 {
		t.Errorf("Count = %d, want 4", got)
	}
	if got := Depth(root); got != 2 {
		t.Errorf("Depth = %d, want 2", got)
	}
	if got := Count(nil); got != 0 {
		t.Errorf("Count(nil) = %d, want 0", got)
	}
	if got := Depth(nil); got != -1 {
		t.Errorf("Depth(nil) = %d, want -1", got)
	}
}

func TestCountPaths(t *testing.T) {
	if got := CountPaths(scenario()); got != 2 {
		t.Errorf("CountPaths = %d, want 2", got)
	}
	if got := CountPaths(&Node{ID: "solo"}); got != 1 {
		t.Errorf("CountPaths(single) = %d, want 1", got)
	}
	if got := CountPaths(nil); got != 0 {
		t.Errorf("CountPaths(nil) = %d, want 0", got)
	}
}

func TestWalkTerminatesOnCycle(t *testing.T) {
	a := &Node{ID: "a"}
	b := &Node{ID: "b"}
	a.Children = []*Node{b}
	b.Children = []*Node{a}

	var order []string
	Walk(a, func(n, _ *Node, _ int) bool {
		order = append(order, n.ID)
		return true
	})
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("Walk order = %v, want [a b]", order)
	}
}

func TestFind(t *testing.T) {
	n, ok := Find(scenario(), "v1")
	if !ok || n.Label != "Weak Password Policy" {
		t.Fatalf("Find(v1) = %v, %v", n, ok)
	}
	if _, ok := Find(scenario(), "missing"); ok {
		t.Error("Find(missing) should fail")
	}
}

func TestValidate(t *testing.T) {
	t.Run("Clean", func(t *testing.T) {
		if issues := Validate(scenario()); len(issues) != 0 {
			t.Errorf("unexpected issues: %v", issues)
		}
	})

	t.Run("Duplicate", func(t *testing.T) {
		root := &Node{ID: "r", Children: []*Node{{ID: "x"}, {ID: "x"}}}
		issues := Validate(root)
		if len(issues) != 1 || issues[0].Code != IssueDuplicateID {
			t.Errorf("issues = %v, want one duplicate_id", issues)
		}
	})

	t.Run("Cycle", func(t *testing.T) {
		a := &Node{ID: "a"}
		a.Children = []*Node{{ID: "b", Children: []*Node{a}}}
		issues := Validate(a)
		if len(issues) != 1 || issues[0].Code != IssueCycle {
			t.Errorf("issues = %v, want one cycle", issues)
		}
	})

	t.Run("EmptyAndNil", func(t *testing.T) {
		root := &Node{ID: "r", Children: []*Node{nil, {Label: "anon"}}}
		issues := Validate(root)
		if len(issues) != 2 {
			t.Fatalf("issues = %v, want 2", issues)
		}
		if issues[0].Code != IssueNilChild || issues[1].Code != IssueEmptyID {
			t.Errorf("codes = %s, %s", issues[0].Code, issues[1].Code)
		}
	})
}
