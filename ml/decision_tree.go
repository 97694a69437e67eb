package ml

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
)

// DecisionTree evaluates a pre-built tree artifact in process. Nodes are
// stored in pre-order, so every child index is greater than its parent's.
type DecisionTree struct {
    output string
    nodes  []TreeNode
}

type TreeNode struct {
    Feature     string   `json:"feature,omitempty"`
    Threshold   float64  `json:"threshold,omitempty"`
    Categories  []string `json:"categories,omitempty"`
    MissingLeft bool     `json:"missing_left,omitempty"`
    LeftChild   int      `json:"left_child"`
    RightChild  int      `json:"right_child"`
    Value       float64  `json:"value,omitempty"`
    Label       string   `json:"label,omitempty"`
    IsLeaf      bool     `json:"is_leaf"`
}

type treeArtifact struct {
    Nodes []TreeNode `json:"nodes"`
}

func NewDecisionTree(output string) *DecisionTree {
    return &DecisionTree{output: output}
}

func (dt *DecisionTree) Load(path string) error {
    payload, err := os.ReadFile(path)
    if err != nil {
        return err
    }
    var artifact treeArtifact
    if err := json.Unmarshal(payload, &artifact); err != nil {
        return fmt.Errorf("decode tree %s: %w", path, err)
    }
    if err := validateNodes(artifact.Nodes); err != nil {
        return fmt.Errorf("tree %s: %w", path, err)
    }
    dt.nodes = artifact.Nodes
    return nil
}

// Predict appends the output column to the input frame, one leaf per row.
func (dt *DecisionTree) Predict(ctx context.Context, input Frame) (Frame, error) {
    if len(dt.nodes) == 0 {
        return Frame{}, errors.New("model not loaded")
    }
    values := make([]any, len(input.Data))
    for i := range input.Data {
        if err := ctx.Err(); err != nil {
            return Frame{}, err
        }
        leaf, err := dt.walk(input.Record(i))
        if err != nil {
            return Frame{}, err
        }
        if leaf.Label != "" {
            values[i] = leaf.Label
        } else {
            values[i] = leaf.Value
        }
    }
    return input.WithColumn(dt.output, values), nil
}

func (dt *DecisionTree) walk(record map[string]any) (TreeNode, error) {
    idx := 0
    for {
        node := dt.nodes[idx]
        if node.IsLeaf {
            return node, nil
        }
        if goesLeft(node, record[node.Feature]) {
            idx = node.LeftChild
        } else {
            idx = node.RightChild
        }
        if idx <= 0 || idx >= len(dt.nodes) {
            return TreeNode{}, errors.New("invalid tree state")
        }
    }
}

func goesLeft(node TreeNode, value any) bool {
    if value == nil {
        return node.MissingLeft
    }
    if len(node.Categories) > 0 {
        category := fmt.Sprint(value)
        for _, c := range node.Categories {
            if c == category {
                return true
            }
        }
        return false
    }
    f, ok := Float(value)
    if !ok {
        return node.MissingLeft
    }
    return f <= node.Threshold
}

func validateNodes(nodes []TreeNode) error {
    if len(nodes) == 0 {
        return errors.New("tree has no nodes")
    }
    for i, node := range nodes {
        if node.IsLeaf {
            continue
        }
        if node.Feature == "" {
            return fmt.Errorf("node %d: split without feature", i)
        }
        for _, child := range []int{node.LeftChild, node.RightChild} {
            if child <= i || child >= len(nodes) {
                return fmt.Errorf("node %d: child index %d out of range", i, child)
            }
        }
    }
    return nil
}
