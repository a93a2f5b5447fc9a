package agent_test

import (
	"testing"

	"github.com/jonesrussell/spinneret/internal/agent"
)

func TestMergeSettings_Union(t *testing.T) {
	base := agent.Settings{"A": 1, "B": 2}
	overrides := agent.Settings{"B": 3, "C": 4}

	merged := agent.MergeSettings(base, overrides, false)

	want := agent.Settings{"A": 1, "B": 3, "C": 4}
	if len(merged) != len(want) {
		t.Fatalf("merged has %d keys, want %d", len(merged), len(want))
	}
	for k, v := range want {
		if merged[k] != v {
			t.Fatalf("merged[%q] = %v, want %v", k, merged[k], v)
		}
	}

	// Inputs must be untouched.
	if base["B"] != 2 || len(base) != 2 {
		t.Fatalf("base mutated: %v", base)
	}
	if overrides["B"] != 3 || len(overrides) != 2 {
		t.Fatalf("overrides mutated: %v", overrides)
	}
}

func TestMergeSettings_Overwrite(t *testing.T) {
	base := agent.Settings{"A": 1, "B": 2}
	overrides := agent.Settings{"B": 3, "C": 4}

	merged := agent.MergeSettings(base, overrides, true)

	if len(merged) != 2 || merged["B"] != 3 || merged["C"] != 4 {
		t.Fatalf("merged = %v, want copy of overrides", merged)
	}
	if _, ok := merged["A"]; ok {
		t.Fatal("base key leaked into overwrite result")
	}

	// Result must be a copy, not the overrides map itself.
	merged["B"] = 99
	if overrides["B"] != 3 {
		t.Fatalf("overrides mutated through result: %v", overrides)
	}
}

func TestMergeSettings_NilInputs(t *testing.T) {
	merged := agent.MergeSettings(nil, nil, false)
	if merged == nil {
		t.Fatal("expected non-nil map for nil inputs")
	}
	if len(merged) != 0 {
		t.Fatalf("expected empty map, got %v", merged)
	}

	merged = agent.MergeSettings(nil, agent.Settings{"A": 1}, false)
	if merged["A"] != 1 {
		t.Fatalf("merged = %v, want overrides applied over empty base", merged)
	}

	merged = agent.MergeSettings(agent.Settings{"A": 1}, nil, true)
	if len(merged) != 0 {
		t.Fatalf("overwrite with nil overrides should be empty, got %v", merged)
	}
}

func TestSettings_Clone(t *testing.T) {
	s := agent.Settings{"A": 1}
	cloned := s.Clone()

	cloned["A"] = 2
	cloned["B"] = 3

	if s["A"] != 1 || len(s) != 1 {
		t.Fatalf("original mutated through clone: %v", s)
	}
}
