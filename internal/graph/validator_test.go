package graph

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasktrack/tasktrack/internal/domain"
)

// memEdges is an in-memory EdgeReader.
type memEdges struct {
	deps  []*domain.Dependency
	err   error
	calls int
}

func (m *memEdges) add(pred, succ string) *domain.Dependency {
	d := &domain.Dependency{
		ID:                "dep-" + pred + succ,
		PredecessorTaskID: pred,
		SuccessorTaskID:   succ,
		Type:              domain.FinishToStart,
		IsActive:          true,
	}
	m.deps = append(m.deps, d)
	return d
}

func (m *memEdges) ActiveSuccessorIDs(_ context.Context, taskID string) ([]string, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	var ids []string
	for _, d := range m.deps {
		if d.IsActive && d.PredecessorTaskID == taskID {
			ids = append(ids, d.SuccessorTaskID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *memEdges) ListForTask(_ context.Context, taskID string, direction domain.Direction) ([]*domain.Dependency, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.Dependency
	for _, d := range m.deps {
		if !d.IsActive {
			continue
		}
		if (direction == domain.DirectionSuccessor && d.PredecessorTaskID == taskID) ||
			(direction == domain.DirectionPredecessor && d.SuccessorTaskID == taskID) {
			out = append(out, d)
		}
	}
	return out, nil
}

func TestValidateDependency_Accepts(t *testing.T) {
	edges := &memEdges{}
	edges.add("a", "b")
	edges.add("b", "c")
	v := NewValidator(edges)

	for _, typ := range domain.ValidDependencyTypes {
		assert.NoError(t, v.ValidateDependency(context.Background(), "a", "c", typ), typ)
		assert.NoError(t, v.ValidateDependency(context.Background(), "d", "a", typ), typ)
	}
}

func TestValidateDependency_SelfReference(t *testing.T) {
	v := NewValidator(&memEdges{})

	err := v.ValidateDependency(context.Background(), "a", "a", domain.FinishToStart)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrCodeValidationFailed))
}

func TestValidateDependency_UnknownType(t *testing.T) {
	v := NewValidator(&memEdges{})

	err := v.ValidateDependency(context.Background(), "a", "b", domain.DependencyType("XX"))
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrCodeValidationFailed))
	assert.Contains(t, err.Error(), "XX")
}

func TestValidateDependency_CycleCarriesPath(t *testing.T) {
	edges := &memEdges{}
	edges.add("b", "c")
	edges.add("c", "d")
	edges.add("d", "a")
	v := NewValidator(edges)

	err := v.ValidateDependency(context.Background(), "a", "b", domain.StartToStart)
	require.Error(t, err)

	de, ok := domain.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrCodeCycleDetected, de.Code)
	assert.Equal(t, []string{"a", "b", "c", "d", "a"}, de.Context["path"])
}

func TestValidateDependency_InactiveEdgesIgnored(t *testing.T) {
	edges := &memEdges{}
	edges.add("b", "a").IsActive = false
	v := NewValidator(edges)

	assert.NoError(t, v.ValidateDependency(context.Background(), "a", "b", domain.FinishToStart))
}

func TestFindCycle_DirectReverse(t *testing.T) {
	edges := &memEdges{}
	edges.add("a", "b")
	v := NewValidator(edges)

	path, err := v.FindCycle(context.Background(), "b", "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "b"}, path)
}

func TestFindCycle_DiamondVisitsEachNodeOnce(t *testing.T) {
	edges := &memEdges{}
	edges.add("s", "l")
	edges.add("s", "r")
	edges.add("l", "t")
	edges.add("r", "t")
	v := NewValidator(edges)

	path, err := v.FindCycle(context.Background(), "x", "s")
	require.NoError(t, err)
	assert.Nil(t, path)
	assert.Equal(t, 4, edges.calls, "s, l, r, t each expanded once")
}

func TestFindCycle_PropagatesStoreError(t *testing.T) {
	boom := errors.New("db gone")
	v := NewValidator(&memEdges{err: boom})

	_, err := v.FindCycle(context.Background(), "a", "b")
	assert.ErrorIs(t, err, boom)
}

// Property: for any chain x0 -> x1 -> ... -> xn, adding xn -> x0 is a cycle
// and adding x0 -> xn is not.
func TestFindCycle_ChainProperty(t *testing.T) {
	for n := 1; n <= 8; n++ {
		edges := &memEdges{}
		ids := make([]string, n+1)
		for i := range ids {
			ids[i] = string(rune('a' + i))
		}
		for i := 0; i < n; i++ {
			edges.add(ids[i], ids[i+1])
		}
		v := NewValidator(edges)

		path, err := v.FindCycle(context.Background(), ids[n], ids[0])
		require.NoError(t, err)
		assert.Len(t, path, n+2)

		path, err = v.FindCycle(context.Background(), ids[0], ids[n])
		require.NoError(t, err)
		assert.Nil(t, path)
	}
}

func collect(t *testing.T, v *Validator, taskID string, dir domain.ChainDirection) []string {
	t.Helper()
	var ids []string
	for dep, err := range v.Chain(context.Background(), taskID, dir) {
		require.NoError(t, err)
		ids = append(ids, dep.ID)
	}
	return ids
}

func TestChain_ForwardDepthFirst(t *testing.T) {
	edges := &memEdges{}
	edges.add("a", "b")
	edges.add("b", "c")
	edges.add("a", "d")
	edges.add("d", "c")
	v := NewValidator(edges)

	assert.Equal(t, []string{"dep-ab", "dep-bc", "dep-ad", "dep-dc"}, collect(t, v, "a", domain.ChainForward))
}

func TestChain_Backward(t *testing.T) {
	edges := &memEdges{}
	edges.add("a", "b")
	edges.add("b", "c")
	v := NewValidator(edges)

	assert.Equal(t, []string{"dep-bc", "dep-ab"}, collect(t, v, "c", domain.ChainBackward))
	assert.Empty(t, collect(t, v, "a", domain.ChainBackward))
}

func TestChain_SurvivesCycles(t *testing.T) {
	edges := &memEdges{}
	edges.add("a", "b")
	edges.add("b", "a")
	v := NewValidator(edges)

	assert.Equal(t, []string{"dep-ab", "dep-ba"}, collect(t, v, "a", domain.ChainForward))
}

func TestChain_StopsEarly(t *testing.T) {
	edges := &memEdges{}
	edges.add("a", "b")
	edges.add("b", "c")
	edges.add("c", "d")
	v := NewValidator(edges)

	for dep, err := range v.Chain(context.Background(), "a", domain.ChainForward) {
		require.NoError(t, err)
		assert.Equal(t, "dep-ab", dep.ID)
		break
	}
	assert.Equal(t, 1, edges.calls, "lazy: only the first task was expanded")
}

func TestChain_YieldsError(t *testing.T) {
	boom := errors.New("db gone")
	v := NewValidator(&memEdges{err: boom})

	var got error
	for _, err := range v.Chain(context.Background(), "a", domain.ChainForward) {
		got = err
	}
	assert.ErrorIs(t, got, boom)
}

func summary(id, title string, status domain.TaskStatus) *domain.TaskSummary {
	return &domain.TaskSummary{ID: id, Title: title, Status: status}
}

func TestEvaluateTransition_FinishToStartBlocksUntilDone(t *testing.T) {
	b := &domain.Task{ID: "b", Title: "Build", Status: domain.StatusTodo}
	dep := &domain.Dependency{ID: "d1", PredecessorTaskID: "a", SuccessorTaskID: "b", Type: domain.FinishToStart, IsActive: true,
		PredecessorTask: summary("a", "Design", domain.StatusInProgress), SuccessorTask: summary("b", "Build", domain.StatusTodo)}

	check := EvaluateTransition(b, domain.StatusInProgress, []*domain.Dependency{dep})
	assert.False(t, check.Valid)
	require.Len(t, check.Violations, 1)
	assert.Contains(t, check.Violations[0].Message, "Design")

	dep.PredecessorTask.Status = domain.StatusDone
	check = EvaluateTransition(b, domain.StatusInProgress, []*domain.Dependency{dep})
	assert.True(t, check.Valid)
	assert.Empty(t, check.Violations)
}

func TestEvaluateTransition_PredecessorSide(t *testing.T) {
	a := &domain.Task{ID: "a", Title: "Design", Status: domain.StatusDone}
	dep := &domain.Dependency{ID: "d1", PredecessorTaskID: "a", SuccessorTaskID: "b", Type: domain.FinishToStart, IsActive: true,
		PredecessorTask: summary("a", "Design", domain.StatusDone), SuccessorTask: summary("b", "Build", domain.StatusInProgress)}

	check := EvaluateTransition(a, domain.StatusTodo, []*domain.Dependency{dep})
	assert.False(t, check.Valid)
	require.Len(t, check.Violations, 1)
	assert.Contains(t, check.Violations[0].Message, "Build")
}

func TestEvaluateTransition_LagIsOnlyAWarning(t *testing.T) {
	due := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	start := due.Add(2 * time.Hour)
	b := &domain.Task{ID: "b", Title: "Build", Status: domain.StatusTodo, StartDate: &start}
	pred := summary("a", "Design", domain.StatusDone)
	pred.DueDate = &due
	dep := &domain.Dependency{ID: "d1", PredecessorTaskID: "a", SuccessorTaskID: "b", Type: domain.FinishToStart,
		LagTime: 4, IsActive: true, PredecessorTask: pred, SuccessorTask: summary("b", "Build", domain.StatusTodo)}

	check := EvaluateTransition(b, domain.StatusInProgress, []*domain.Dependency{dep})
	assert.True(t, check.Valid)
	require.Len(t, check.Warnings, 1)
	assert.Contains(t, check.Warnings[0].Message, "Design")

	dep.LagTime = 1
	check = EvaluateTransition(b, domain.StatusInProgress, []*domain.Dependency{dep})
	assert.Empty(t, check.Warnings)
}
