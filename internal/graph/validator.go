// Package graph validates dependency edges against the active-edge graph and
// walks dependency chains.
package graph

import (
	"context"
	"fmt"
	"iter"

	"github.com/tasktrack/tasktrack/internal/domain"
)

// EdgeReader is the view of the edge store the validator needs.
// Implementations must return active edges only.
type EdgeReader interface {
	ActiveSuccessorIDs(ctx context.Context, taskID string) ([]string, error)
	ListForTask(ctx context.Context, taskID string, direction domain.Direction) ([]*domain.Dependency, error)
}

// Validator checks proposed edges. It has no side effects.
type Validator struct {
	edges EdgeReader
}

// NewValidator creates a Validator over the given edge set.
func NewValidator(edges EdgeReader) *Validator {
	return &Validator{edges: edges}
}

// ValidateDependency rejects self references, unknown types, and edges that
// would close a cycle. Cycle errors carry the path in their context.
func (v *Validator) ValidateDependency(ctx context.Context, predecessorID, successorID string, depType domain.DependencyType) error {
	if predecessorID == successorID {
		return domain.NewSelfDependencyError(predecessorID)
	}
	if !depType.IsValid() {
		return domain.NewInvalidDependencyTypeError(depType)
	}

	path, err := v.FindCycle(ctx, predecessorID, successorID)
	if err != nil {
		return err
	}
	if path != nil {
		return domain.NewCycleDetectedError(path)
	}
	return nil
}

// FindCycle reports whether adding predecessorID -> successorID would close a
// cycle, i.e. whether predecessorID is reachable from successorID over active
// edges. It returns the cycle as predecessor, successor, ..., predecessor, or
// nil if there is none.
func (v *Validator) FindCycle(ctx context.Context, predecessorID, successorID string) ([]string, error) {
	if predecessorID == successorID {
		return []string{predecessorID, successorID}, nil
	}

	// Iterative DFS; cameFrom rebuilds the path once the target is found.
	visited := map[string]bool{successorID: true}
	cameFrom := make(map[string]string)
	stack := []string{successorID}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if current == predecessorID {
			reversed := []string{current}
			for node := current; node != successorID; {
				node = cameFrom[node]
				reversed = append(reversed, node)
			}
			path := make([]string, 0, len(reversed)+1)
			path = append(path, predecessorID)
			for i := len(reversed) - 1; i >= 0; i-- {
				path = append(path, reversed[i])
			}
			return path, nil
		}

		next, err := v.edges.ActiveSuccessorIDs(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("walk successors of %s: %w", current, err)
		}
		// Push in reverse so the lowest ID is explored first.
		for i := len(next) - 1; i >= 0; i-- {
			id := next[i]
			if !visited[id] {
				visited[id] = true
				cameFrom[id] = current
				stack = append(stack, id)
			}
		}
	}
	return nil, nil
}

// Chain lazily yields the edges reachable from taskID, depth first.
// ChainForward follows successors, ChainBackward predecessors. Each task is
// expanded at most once. The sequence stops at the first error.
func (v *Validator) Chain(ctx context.Context, taskID string, direction domain.ChainDirection) iter.Seq2[*domain.Dependency, error] {
	return func(yield func(*domain.Dependency, error) bool) {
		listDir := domain.DirectionSuccessor
		if direction == domain.ChainBackward {
			listDir = domain.DirectionPredecessor
		}
		visited := make(map[string]bool)

		var traverse func(id string) bool
		traverse = func(id string) bool {
			if visited[id] {
				return true
			}
			visited[id] = true

			deps, err := v.edges.ListForTask(ctx, id, listDir)
			if err == nil {
				err = ctx.Err()
			}
			if err != nil {
				yield(nil, err)
				return false
			}
			for _, dep := range deps {
				if !yield(dep, nil) {
					return false
				}
				next := dep.SuccessorTaskID
				if direction == domain.ChainBackward {
					next = dep.PredecessorTaskID
				}
				if !traverse(next) {
					return false
				}
			}
			return true
		}
		traverse(taskID)
	}
}
