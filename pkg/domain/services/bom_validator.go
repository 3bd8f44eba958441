package services

import (
	"fmt"
	"sort"

	"github.com/vsinha/disruption/pkg/domain/entities"
)

// BOMValidator provides validation for BOM structure integrity
type BOMValidator struct{}

// NewBOMValidator creates a new BOM validator
func NewBOMValidator() *BOMValidator {
	return &BOMValidator{}
}

// ValidationResult contains the results of BOM validation.
// Cycles and duplicates are reported, never rejected: traversal stays safe on them.
type ValidationResult struct {
	HasCycles      bool
	CyclePaths     [][]entities.ProductID
	DuplicateEdges []entities.BomEdge
	Warnings       []string
}

// ValidateBOM checks a set of BOM edges for cycles and duplicate parent/child pairs
func (v *BOMValidator) ValidateBOM(edges []entities.BomEdge) *ValidationResult {
	result := &ValidationResult{
		CyclePaths:     make([][]entities.ProductID, 0),
		DuplicateEdges: make([]entities.BomEdge, 0),
		Warnings:       make([]string, 0),
	}

	adjacency := v.buildAdjacencyMap(edges)

	cycles := v.detectCycles(adjacency)
	result.HasCycles = len(cycles) > 0
	result.CyclePaths = cycles

	result.DuplicateEdges = v.detectDuplicateEdges(edges)

	for _, cycle := range result.CyclePaths {
		result.Warnings = append(result.Warnings, fmt.Sprintf("BOM cycle detected: %v", cycle))
	}
	if len(result.DuplicateEdges) > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Found %d duplicate BOM edges", len(result.DuplicateEdges)))
	}

	return result
}

// buildAdjacencyMap creates a map of parent -> distinct children
func (v *BOMValidator) buildAdjacencyMap(edges []entities.BomEdge) map[entities.ProductID][]entities.ProductID {
	adjacency := make(map[entities.ProductID][]entities.ProductID)
	seen := make(map[[2]entities.ProductID]bool)

	for _, e := range edges {
		key := [2]entities.ProductID{e.Parent, e.Child}
		if seen[key] {
			continue
		}
		seen[key] = true
		adjacency[e.Parent] = append(adjacency[e.Parent], e.Child)
	}

	return adjacency
}

// detectCycles uses DFS from every parent in sorted order so results are stable
func (v *BOMValidator) detectCycles(adjacency map[entities.ProductID][]entities.ProductID) [][]entities.ProductID {
	visited := make(map[entities.ProductID]bool)
	onStack := make(map[entities.ProductID]bool)
	cycles := make([][]entities.ProductID, 0)

	parents := make([]entities.ProductID, 0, len(adjacency))
	for p := range adjacency {
		parents = append(parents, p)
	}
	sort.Slice(parents, func(i, j int) bool { return parents[i] < parents[j] })

	for _, parent := range parents {
		if !visited[parent] {
			v.dfsDetectCycle(parent, adjacency, visited, onStack, nil, &cycles)
		}
	}

	return cycles
}

func (v *BOMValidator) dfsDetectCycle(
	current entities.ProductID,
	adjacency map[entities.ProductID][]entities.ProductID,
	visited map[entities.ProductID]bool,
	onStack map[entities.ProductID]bool,
	path []entities.ProductID,
	cycles *[][]entities.ProductID,
) {
	visited[current] = true
	onStack[current] = true
	path = append(path, current)

	for _, child := range adjacency[current] {
		if !visited[child] {
			v.dfsDetectCycle(child, adjacency, visited, onStack, path, cycles)
			continue
		}
		if !onStack[child] {
			continue
		}
		for i, part := range path {
			if part == child {
				cycle := make([]entities.ProductID, 0, len(path)-i+1)
				cycle = append(cycle, path[i:]...)
				cycle = append(cycle, child)
				*cycles = append(*cycles, cycle)
				break
			}
		}
	}

	onStack[current] = false
}

// detectDuplicateEdges returns every repeat of an already seen parent/child pair
func (v *BOMValidator) detectDuplicateEdges(edges []entities.BomEdge) []entities.BomEdge {
	seen := make(map[[2]entities.ProductID]bool)
	duplicates := make([]entities.BomEdge, 0)

	for _, e := range edges {
		key := [2]entities.ProductID{e.Parent, e.Child}
		if seen[key] {
			duplicates = append(duplicates, e)
			continue
		}
		seen[key] = true
	}

	return duplicates
}
