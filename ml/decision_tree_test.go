package ml

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeTree(t *testing.T, nodes []TreeNode) string {
	t.Helper()
	payload, err := json.Marshal(treeArtifact{Nodes: nodes})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "tree.json")
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func priceTree(t *testing.T) *DecisionTree {
	t.Helper()
	path := writeTree(t, []TreeNode{
		{Feature: "floor_area_sqm", Threshold: 85, MissingLeft: true, LeftChild: 1, RightChild: 2},
		{IsLeaf: true, Value: 420000},
		{IsLeaf: true, Value: 610000},
	})
	tree := NewDecisionTree("prediction_label")
	if err := tree.Load(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return tree
}

func TestDecisionTreeNumericSplit(t *testing.T) {
	tree := priceTree(t)
	input := NewFrame([]string{"floor_area_sqm", "block"}, []any{120.0, nil})

	output, err := tree.Predict(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Columns) != 3 || output.Columns[2] != "prediction_label" {
		t.Fatalf("unexpected columns: %v", output.Columns)
	}
	value, err := output.Value("prediction_label")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.(float64) != 610000 {
		t.Fatalf("expected 610000, got %v", value)
	}
}

func TestDecisionTreeMissingValue(t *testing.T) {
	tree := priceTree(t)
	for _, cell := range []any{nil, "not a number"} {
		output, err := tree.Predict(context.Background(), NewFrame([]string{"floor_area_sqm"}, []any{cell}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		value, _ := output.Value("prediction_label")
		if value.(float64) != 420000 {
			t.Fatalf("expected missing value to route left, got %v", value)
		}
	}
}

func TestDecisionTreeCategoricalSplit(t *testing.T) {
	path := writeTree(t, []TreeNode{
		{Feature: "odor", Categories: []string{"a", "l", "n"}, LeftChild: 1, RightChild: 2},
		{IsLeaf: true, Label: "e"},
		{IsLeaf: true, Label: "p"},
	})
	tree := NewDecisionTree("Label")
	if err := tree.Load(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := map[any]string{"n": "e", "f": "p", nil: "p"}
	for odor, want := range cases {
		output, err := tree.Predict(context.Background(), NewFrame([]string{"odor"}, []any{odor}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, _ := output.Value("Label")
		if got != want {
			t.Fatalf("odor %v: expected %s, got %v", odor, want, got)
		}
	}
}

func TestDecisionTreeRejectsBackwardChild(t *testing.T) {
	path := writeTree(t, []TreeNode{
		{Feature: "x", Threshold: 1, LeftChild: 0, RightChild: 1},
		{IsLeaf: true},
	})
	if err := NewDecisionTree("y").Load(path); err == nil {
		t.Fatal("expected error for cyclic tree")
	}
}

func TestDecisionTreeNotLoaded(t *testing.T) {
	if _, err := NewDecisionTree("y").Predict(context.Background(), Frame{}); err == nil {
		t.Fatal("expected error for unloaded tree")
	}
}
