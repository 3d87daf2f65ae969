package models

// HierarchyMode selects which relationship tree the builder produces.
type HierarchyMode string

const (
	HierarchyByArea    HierarchyMode = "area"
	HierarchyByType    HierarchyMode = "type"
	HierarchyByDrawing HierarchyMode = "drawing"
	HierarchyFlow      HierarchyMode = "flow"
)

// HierarchyNode is a transient tree-projection element. Nodes carry no
// persisted identity and are rebuilt from scratch on every view switch.
// Equipment is set only on leaf nodes.
type HierarchyNode struct {
	Label      string          `json:"label" yaml:"label"`
	ChildCount int             `json:"child_count" yaml:"child_count"`
	Children   []HierarchyNode `json:"children,omitempty" yaml:"children,omitempty"`
	Equipment  *Equipment      `json:"equipment,omitempty" yaml:"equipment,omitempty"`
}

// LeafCount returns the number of equipment leaves under the node,
// including the node itself when it is a leaf.
func (n *HierarchyNode) LeafCount() int {
	if n.Equipment != nil && len(n.Children) == 0 {
		return 1
	}
	total := 0
	for i := range n.Children {
		total += n.Children[i].LeafCount()
	}
	return total
}
