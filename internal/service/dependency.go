package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/tasktrack/tasktrack/internal/cache"
	"github.com/tasktrack/tasktrack/internal/domain"
	"github.com/tasktrack/tasktrack/internal/graph"
	"github.com/tasktrack/tasktrack/internal/notify"
	"github.com/tasktrack/tasktrack/internal/realtime"
	"github.com/tasktrack/tasktrack/internal/store/sqlite"
	"github.com/tasktrack/tasktrack/pkg/idgen"
)

// DependencyService handles dependency business logic.
type DependencyService struct {
	Deps
}

// NewDependencyService creates a new DependencyService.
func NewDependencyService(deps Deps) *DependencyService {
	return &DependencyService{Deps: deps}
}

// CreateDependencyInput contains the input for creating a dependency.
type CreateDependencyInput struct {
	PredecessorTaskID string
	SuccessorTaskID   string
	Type              domain.DependencyType
	LagTime           int
	NotifyUsers       bool
}

// Create validates and stores a new edge. Re-creating a soft-deleted triple
// reactivates it; re-creating an active one fails.
func (s *DependencyService) Create(ctx context.Context, input CreateDependencyInput, actorID string) (*domain.Dependency, error) {
	if input.Type == "" {
		input.Type = domain.FinishToStart
	}
	if input.LagTime < 0 {
		return nil, domain.NewValidationError([]string{"lag_time must be zero or positive"})
	}

	var (
		dep        *domain.Dependency
		pred, succ *domain.Task
		action     = domain.ActionCreate
	)
	err := s.Store.WithTx(ctx, func(tx *sqlx.Tx) error {
		tasks := sqlite.NewTaskRepository(tx)
		var err error
		if pred, err = getTask(ctx, tasks, input.PredecessorTaskID); err != nil {
			return err
		}
		if succ, err = getTask(ctx, tasks, input.SuccessorTaskID); err != nil {
			return err
		}

		deps := sqlite.NewDependencyRepository(tx)
		if err := graph.NewValidator(deps).ValidateDependency(ctx, pred.ID, succ.ID, input.Type); err != nil {
			return err
		}

		now := time.Now().UTC()
		existing, err := deps.FindByTriple(ctx, pred.ID, succ.ID, input.Type)
		var id string
		switch {
		case err == nil && existing.IsActive:
			return domain.NewDuplicateDependencyError(existing.ID)
		case err == nil:
			action = domain.ActionReactivate
			existing.IsActive = true
			existing.LagTime = input.LagTime
			existing.UpdatedBy = actorID
			existing.UpdatedAt = now
			if err := deps.Update(ctx, existing); err != nil {
				return err
			}
			id = existing.ID
		case errors.Is(err, sqlite.ErrNotFound):
			if id, err = idgen.Generate(idgen.Dependency); err != nil {
				return err
			}
			if err := deps.Create(ctx, &domain.Dependency{
				ID:                id,
				PredecessorTaskID: pred.ID,
				SuccessorTaskID:   succ.ID,
				Type:              input.Type,
				LagTime:           input.LagTime,
				IsActive:          true,
				CreatedBy:         actorID,
				UpdatedBy:         actorID,
				CreatedAt:         now,
				UpdatedAt:         now,
			}); err != nil {
				return err
			}
		default:
			return err
		}

		entry := domain.NewAuditEntry(id, action, actorID).
			WithNewValue(fmt.Sprintf("%s->%s %s lag=%d", pred.ID, succ.ID, input.Type, input.LagTime))
		if err := sqlite.NewAuditRepository(tx).Log(ctx, entry); err != nil {
			return err
		}

		dep, err = deps.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, wrapErr(err)
	}

	s.Metrics.Mutation(string(action))

	var hooks PostCommit
	if input.NotifyUsers {
		hooks.Add("notify", func(ctx context.Context) error {
			return s.notifyImmediately(ctx, dep, pred, succ)
		})
	}
	hooks.Add("invalidate", func(ctx context.Context) error {
		s.invalidate(ctx, pred.ID, succ.ID)
		return nil
	})
	hooks.Add("emit", func(ctx context.Context) error {
		if succ.BoardID != nil {
			s.emit(realtime.BoardRoom(*succ.BoardID), realtime.EventDependencyCreated,
				map[string]any{"dependency": dep, "boardId": *succ.BoardID})
		}
		return nil
	})
	hooks.Run(ctx, s.Log, s.Metrics)

	s.Log.WithFields(logrus.Fields{
		"dependency_id": dep.ID,
		"action":        action,
		"actor":         actorID,
	}).Info("dependency created")
	return dep, nil
}

// notifyImmediately composes a dependency_created notification for both
// tasks' stakeholders and dispatches it without waiting for the sweeper.
func (s *DependencyService) notifyImmediately(ctx context.Context, dep *domain.Dependency, pred, succ *domain.Task) error {
	recipients := notify.Stakeholders(pred, succ)
	if len(recipients) == 0 {
		return nil
	}
	n, err := s.Composer.Compose(ctx, notify.ComposeInput{
		Dependency:   dep,
		Predecessor:  pred,
		Successor:    succ,
		Type:         domain.NotificationCreated,
		RecipientIDs: recipients,
		Channels:     []domain.Channel{domain.ChannelInApp, domain.ChannelEmail},
		Priority:     domain.PriorityNormal,
	})
	if err != nil {
		return err
	}
	return s.Dispatcher.Process(ctx, n)
}

// notifyLater composes a low priority in-app notification left pending for
// the sweeper.
func (s *DependencyService) notifyLater(ctx context.Context, t domain.NotificationType, dep *domain.Dependency, pred, succ *domain.Task) error {
	recipients := notify.Stakeholders(pred, succ)
	if len(recipients) == 0 {
		return nil
	}
	_, err := s.Composer.Compose(ctx, notify.ComposeInput{
		Dependency:   dep,
		Predecessor:  pred,
		Successor:    succ,
		Type:         t,
		RecipientIDs: recipients,
		Channels:     []domain.Channel{domain.ChannelInApp},
		Priority:     domain.PriorityLow,
	})
	return err
}

// ListResult is a dependency listing and whether it was served from cache.
type ListResult struct {
	Dependencies []*domain.Dependency `json:"dependencies"`
	FromCache    bool                 `json:"fromCache"`
}

// ListForTask returns the active edges of a task in the given direction,
// cache first.
func (s *DependencyService) ListForTask(ctx context.Context, taskID string, direction domain.Direction) (*ListResult, error) {
	if direction == "" {
		direction = domain.DirectionBoth
	}
	if !direction.IsValid() {
		return nil, domain.NewValidationError([]string{"direction must be one of: predecessor, successor, both"})
	}

	key := cache.DependenciesDirectionKey(taskID, direction)
	if s.Cache != nil {
		var cached []*domain.Dependency
		hit, err := cache.GetJSON(ctx, s.Cache, key, &cached)
		switch {
		case err != nil:
			s.Metrics.CacheLookup("error")
			s.Log.WithError(err).WithField("key", key).Warn("dependency cache read failed")
		case hit:
			s.Metrics.CacheLookup("hit")
			return &ListResult{Dependencies: cached, FromCache: true}, nil
		default:
			s.Metrics.CacheLookup("miss")
		}
	}

	deps, err := sqlite.NewDependencyRepository(s.Store.DB()).ListForTask(ctx, taskID, direction)
	if err != nil {
		return nil, wrapErr(err)
	}
	if deps == nil {
		deps = []*domain.Dependency{}
	}

	if s.Cache != nil {
		if err := cache.SetJSON(ctx, s.Cache, key, deps, s.cacheTTL()); err != nil {
			s.Log.WithError(err).WithField("key", key).Warn("dependency cache write failed")
		}
	}
	return &ListResult{Dependencies: deps}, nil
}

// UpdateDependencyInput contains the input for updating a dependency.
type UpdateDependencyInput struct {
	Type     *domain.DependencyType
	LagTime  *int
	IsActive *bool
}

// Update applies a partial update. A type change and a reactivation are
// validated against the graph like a new edge.
func (s *DependencyService) Update(ctx context.Context, id string, input UpdateDependencyInput, actorID string) (*domain.Dependency, error) {
	if input.LagTime != nil && *input.LagTime < 0 {
		return nil, domain.NewValidationError([]string{"lag_time must be zero or positive"})
	}

	var dep *domain.Dependency
	err := s.Store.WithTx(ctx, func(tx *sqlx.Tx) error {
		deps := sqlite.NewDependencyRepository(tx)
		current, err := deps.GetByID(ctx, id)
		if errors.Is(err, sqlite.ErrNotFound) {
			return domain.NewDependencyNotFoundError(id)
		}
		if err != nil {
			return err
		}

		var entries []domain.AuditEntry
		record := func(field, oldValue, newValue string) {
			entries = append(entries, domain.NewAuditEntry(id, domain.ActionUpdate, actorID).
				WithField(field).WithOldValue(oldValue).WithNewValue(newValue))
		}

		revalidate := false
		if input.Type != nil && *input.Type != current.Type {
			if !input.Type.IsValid() {
				return domain.NewInvalidDependencyTypeError(*input.Type)
			}
			clash, err := deps.FindByTriple(ctx, current.PredecessorTaskID, current.SuccessorTaskID, *input.Type)
			if err == nil && clash.ID != current.ID {
				return domain.NewDuplicateDependencyError(clash.ID)
			}
			if err != nil && !errors.Is(err, sqlite.ErrNotFound) {
				return err
			}
			record("dependency_type", string(current.Type), string(*input.Type))
			current.Type = *input.Type
		}
		if input.LagTime != nil && *input.LagTime != current.LagTime {
			record("lag_time", strconv.Itoa(current.LagTime), strconv.Itoa(*input.LagTime))
			current.LagTime = *input.LagTime
		}
		if input.IsActive != nil && *input.IsActive != current.IsActive {
			record("is_active", strconv.FormatBool(current.IsActive), strconv.FormatBool(*input.IsActive))
			revalidate = *input.IsActive
			current.IsActive = *input.IsActive
		}

		if revalidate {
			if err := graph.NewValidator(deps).ValidateDependency(ctx, current.PredecessorTaskID, current.SuccessorTaskID, current.Type); err != nil {
				return err
			}
		}

		current.UpdatedBy = actorID
		current.UpdatedAt = time.Now().UTC()
		if err := deps.Update(ctx, current); err != nil {
			return err
		}

		audit := sqlite.NewAuditRepository(tx)
		for _, e := range entries {
			if err := audit.Log(ctx, e); err != nil {
				return err
			}
		}

		dep, err = deps.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, wrapErr(err)
	}

	s.Metrics.Mutation(string(domain.ActionUpdate))
	s.afterChange(ctx, dep, domain.NotificationUpdated, realtime.EventDependencyUpdated,
		map[string]any{"dependency": dep})
	return dep, nil
}

// Delete soft-deletes an edge. Deleting an inactive edge is a no-op.
func (s *DependencyService) Delete(ctx context.Context, id string, actorID string) error {
	var (
		dep     *domain.Dependency
		changed bool
	)
	err := s.Store.WithTx(ctx, func(tx *sqlx.Tx) error {
		deps := sqlite.NewDependencyRepository(tx)
		var err error
		dep, err = deps.GetByID(ctx, id)
		if errors.Is(err, sqlite.ErrNotFound) {
			return domain.NewDependencyNotFoundError(id)
		}
		if err != nil {
			return err
		}
		if !dep.IsActive {
			return nil
		}

		dep.IsActive = false
		dep.UpdatedBy = actorID
		dep.UpdatedAt = time.Now().UTC()
		if err := deps.Update(ctx, dep); err != nil {
			return err
		}
		changed = true
		return sqlite.NewAuditRepository(tx).Log(ctx,
			domain.NewAuditEntry(id, domain.ActionRemove, actorID).
				WithField("is_active").WithOldValue("true").WithNewValue("false"))
	})
	if err != nil {
		return wrapErr(err)
	}
	if !changed {
		return nil
	}

	s.Metrics.Mutation(string(domain.ActionRemove))
	s.afterChange(ctx, dep, domain.NotificationRemoved, realtime.EventDependencyDeleted,
		map[string]any{"dependencyId": dep.ID})
	return nil
}

// afterChange runs the post-commit hooks shared by update and delete.
func (s *DependencyService) afterChange(ctx context.Context, dep *domain.Dependency, t domain.NotificationType, event string, payload map[string]any) {
	tasks := sqlite.NewTaskRepository(s.Store.DB())
	var pred, succ *domain.Task

	var hooks PostCommit
	hooks.Add("invalidate", func(ctx context.Context) error {
		s.invalidate(ctx, dep.PredecessorTaskID, dep.SuccessorTaskID)
		return nil
	})
	hooks.Add("notify", func(ctx context.Context) error {
		var err error
		if pred, err = getTask(ctx, tasks, dep.PredecessorTaskID); err != nil {
			return err
		}
		if succ, err = getTask(ctx, tasks, dep.SuccessorTaskID); err != nil {
			return err
		}
		return s.notifyLater(ctx, t, dep, pred, succ)
	})
	hooks.Add("emit", func(ctx context.Context) error {
		if succ == nil {
			var err error
			if succ, err = getTask(ctx, tasks, dep.SuccessorTaskID); err != nil {
				return err
			}
		}
		if succ.BoardID != nil {
			payload["boardId"] = *succ.BoardID
			s.emit(realtime.BoardRoom(*succ.BoardID), event, payload)
		}
		return nil
	})
	hooks.Run(ctx, s.Log, s.Metrics)
}

// ListForProject returns the edges of every task on the project's boards.
func (s *DependencyService) ListForProject(ctx context.Context, projectID string, includeInactive bool) ([]*domain.Dependency, error) {
	deps, err := sqlite.NewDependencyRepository(s.Store.DB()).ListForProject(ctx, projectID, includeInactive)
	if err != nil {
		return nil, wrapErr(err)
	}
	if deps == nil {
		deps = []*domain.Dependency{}
	}
	return deps, nil
}

// ValidateTaskTransition evaluates moving a task to newStatus against its
// active dependencies.
func (s *DependencyService) ValidateTaskTransition(ctx context.Context, taskID string, newStatus domain.TaskStatus) (*domain.TransitionCheck, error) {
	if !newStatus.IsValid() {
		return nil, domain.NewValidationError([]string{fmt.Sprintf("invalid status %q", newStatus)})
	}

	db := s.Store.DB()
	task, err := getTask(ctx, sqlite.NewTaskRepository(db), taskID)
	if err != nil {
		return nil, wrapErr(err)
	}
	deps, err := sqlite.NewDependencyRepository(db).ListForTask(ctx, taskID, domain.DirectionBoth)
	if err != nil {
		return nil, wrapErr(err)
	}

	check := graph.EvaluateTransition(task, newStatus, deps)
	return &check, nil
}

// CircularCheck is the result of a dry-run cycle check.
type CircularCheck struct {
	HasCircular bool     `json:"hasCircular"`
	Path        []string `json:"path,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// CheckCircular reports whether adding predecessorID -> successorID would
// close a cycle. Lookup failures are reported in the result, never returned.
func (s *DependencyService) CheckCircular(ctx context.Context, predecessorID, successorID string) *CircularCheck {
	path, err := graph.NewValidator(sqlite.NewDependencyRepository(s.Store.DB())).FindCycle(ctx, predecessorID, successorID)
	if err != nil {
		s.Log.WithError(err).Warn("circular dependency check failed")
		return &CircularCheck{Error: err.Error()}
	}
	return &CircularCheck{HasCircular: path != nil, Path: path}
}

// Chain collects the transitive dependency chain of a task.
func (s *DependencyService) Chain(ctx context.Context, taskID string, direction domain.ChainDirection) ([]*domain.Dependency, error) {
	if direction == "" {
		direction = domain.ChainForward
	}
	if !direction.IsValid() {
		return nil, domain.NewValidationError([]string{"direction must be one of: forward, backward"})
	}

	chain := []*domain.Dependency{}
	v := graph.NewValidator(sqlite.NewDependencyRepository(s.Store.DB()))
	for dep, err := range v.Chain(ctx, taskID, direction) {
		if err != nil {
			return nil, wrapErr(err)
		}
		chain = append(chain, dep)
	}
	return chain, nil
}
