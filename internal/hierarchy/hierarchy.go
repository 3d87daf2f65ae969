// Package hierarchy projects the equipment set into relationship trees.
// Builds are pure: inputs are never mutated, no state is kept between
// invocations, and every call rebuilds the tree from scratch.
package hierarchy

import (
	"fmt"
	"sort"

	"github.com/sekkipras/eqcat/internal/models"
)

const (
	unassignedLabel = "Unassigned"
	unknownLabel    = "Unknown"
)

// Build produces the relationship tree for the requested mode. Inactive
// equipment is excluded from every mode. Lines are accepted for contract
// parity with callers that track them; no current mode groups by line.
func Build(equipment []models.Equipment, lines []models.Line, drawings []models.Drawing, mode models.HierarchyMode) ([]models.HierarchyNode, error) {
	active := make([]models.Equipment, 0, len(equipment))
	for _, eq := range equipment {
		if eq.IsActive {
			active = append(active, eq)
		}
	}

	switch mode {
	case models.HierarchyByArea:
		return buildByArea(active), nil
	case models.HierarchyByType:
		return buildByType(active), nil
	case models.HierarchyByDrawing:
		return buildByDrawing(active, drawings), nil
	case models.HierarchyFlow:
		return buildProcessFlow(active), nil
	default:
		return nil, fmt.Errorf("unknown hierarchy mode: %q", mode)
	}
}

// leaf builds a leaf node for one equipment record. The equipment value is
// copied so later edits to the input slice cannot reach the tree.
func leaf(eq models.Equipment) models.HierarchyNode {
	ref := eq
	return models.HierarchyNode{Label: eq.Tag, Equipment: &ref}
}

func leavesByTag(equipment []models.Equipment) []models.HierarchyNode {
	sorted := make([]models.Equipment, len(equipment))
	copy(sorted, equipment)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Tag < sorted[j].Tag })

	nodes := make([]models.HierarchyNode, 0, len(sorted))
	for _, eq := range sorted {
		nodes = append(nodes, leaf(eq))
	}
	return nodes
}

func sortedKeys[T any](groups map[string][]T) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// buildByArea groups equipment by area, then by type inside each area.
func buildByArea(equipment []models.Equipment) []models.HierarchyNode {
	areas := make(map[string][]models.Equipment)
	for _, eq := range equipment {
		key := eq.Area
		if key == "" {
			key = unassignedLabel
		}
		areas[key] = append(areas[key], eq)
	}

	nodes := make([]models.HierarchyNode, 0, len(areas))
	for _, area := range sortedKeys(areas) {
		typeNodes := buildByType(areas[area])
		nodes = append(nodes, models.HierarchyNode{
			Label:      area,
			ChildCount: len(typeNodes),
			Children:   typeNodes,
		})
	}
	return nodes
}

// buildByType groups equipment by equipment type, leaves sorted by tag.
func buildByType(equipment []models.Equipment) []models.HierarchyNode {
	types := make(map[string][]models.Equipment)
	for _, eq := range equipment {
		key := eq.EquipmentType
		if key == "" {
			key = unknownLabel
		}
		types[key] = append(types[key], eq)
	}

	nodes := make([]models.HierarchyNode, 0, len(types))
	for _, typ := range sortedKeys(types) {
		leaves := leavesByTag(types[typ])
		nodes = append(nodes, models.HierarchyNode{
			Label:      typ,
			ChildCount: len(leaves),
			Children:   leaves,
		})
	}
	return nodes
}

// buildByDrawing groups equipment under the drawings that reference them,
// ordered by drawing number (id as tie-break), with a trailing synthetic
// group for equipment that has no drawing. Drawings without equipment are
// omitted.
func buildByDrawing(equipment []models.Equipment, drawings []models.Drawing) []models.HierarchyNode {
	byDrawing := make(map[string][]models.Equipment)
	var unassigned []models.Equipment
	for _, eq := range equipment {
		if eq.DrawingID == "" {
			unassigned = append(unassigned, eq)
			continue
		}
		byDrawing[eq.DrawingID] = append(byDrawing[eq.DrawingID], eq)
	}

	ordered := make([]models.Drawing, len(drawings))
	copy(ordered, drawings)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Number != ordered[j].Number {
			return ordered[i].Number < ordered[j].Number
		}
		return ordered[i].ID < ordered[j].ID
	})

	var nodes []models.HierarchyNode
	for _, d := range ordered {
		group, ok := byDrawing[d.ID]
		if !ok {
			continue
		}
		leaves := leavesByTag(group)
		label := d.Number
		if d.Title != "" {
			label = d.Number + " " + d.Title
		}
		nodes = append(nodes, models.HierarchyNode{
			Label:      label,
			ChildCount: len(leaves),
			Children:   leaves,
		})
		delete(byDrawing, d.ID)
	}

	// Equipment pointing at a drawing id the drawing set does not contain is
	// still shown rather than dropped.
	for _, id := range sortedKeys(byDrawing) {
		unassigned = append(unassigned, byDrawing[id]...)
	}
	if len(unassigned) > 0 {
		leaves := leavesByTag(unassigned)
		nodes = append(nodes, models.HierarchyNode{
			Label:      unassignedLabel,
			ChildCount: len(leaves),
			Children:   leaves,
		})
	}
	return nodes
}

// buildProcessFlow walks the upstream/downstream links as a tree. Roots are
// equipment with no upstream link; children of a node are the equipment whose
// upstream pointer names it, in tag order.
//
// The visited set is carried per path, not globally: a node reachable on two
// independent branches appears on both, but a link cycle is cut at the first
// repeat and emitted as a marked leaf. This guarantees termination however
// the links are wired.
func buildProcessFlow(equipment []models.Equipment) []models.HierarchyNode {
	downstream := make(map[string][]models.Equipment)
	var roots []models.Equipment
	for _, eq := range equipment {
		if eq.UpstreamID == "" {
			roots = append(roots, eq)
			continue
		}
		downstream[eq.UpstreamID] = append(downstream[eq.UpstreamID], eq)
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].Tag < roots[j].Tag })
	for id := range downstream {
		group := downstream[id]
		sort.Slice(group, func(i, j int) bool { return group[i].Tag < group[j].Tag })
	}

	reached := make(map[string]bool)
	var nodes []models.HierarchyNode
	for _, root := range roots {
		visited := map[string]bool{root.ID: true}
		nodes = append(nodes, expandFlow(root, downstream, visited, reached))
	}

	// Equipment in a pure link cycle has no null-upstream member and is
	// unreachable from any natural root. Surface each such cycle under its
	// lowest-tag member so the traversal can mark the closure.
	remaining := make([]models.Equipment, 0)
	for _, eq := range equipment {
		if !reached[eq.ID] {
			remaining = append(remaining, eq)
		}
	}
	sort.Slice(remaining, func(i, j int) bool { return remaining[i].Tag < remaining[j].Tag })
	for _, eq := range remaining {
		if reached[eq.ID] {
			continue
		}
		visited := map[string]bool{eq.ID: true}
		nodes = append(nodes, expandFlow(eq, downstream, visited, reached))
	}
	return nodes
}

func expandFlow(eq models.Equipment, downstream map[string][]models.Equipment, visited, reached map[string]bool) models.HierarchyNode {
	reached[eq.ID] = true
	node := leaf(eq)
	for _, child := range downstream[eq.ID] {
		if visited[child.ID] {
			circular := leaf(child)
			circular.Label = child.Tag + " (circular reference)"
			node.Children = append(node.Children, circular)
			continue
		}
		visited[child.ID] = true
		node.Children = append(node.Children, expandFlow(child, downstream, visited, reached))
		delete(visited, child.ID)
	}
	node.ChildCount = len(node.Children)
	return node
}
