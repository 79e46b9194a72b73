package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/tasktrack/tasktrack/internal/domain"
	"github.com/tasktrack/tasktrack/internal/notify"
	"github.com/tasktrack/tasktrack/internal/store/sqlite"
	"github.com/tasktrack/tasktrack/pkg/idgen"
)

// TaskService maintains the task, user and board read model.
type TaskService struct {
	Deps
}

// NewTaskService creates a new TaskService.
func NewTaskService(deps Deps) *TaskService {
	return &TaskService{Deps: deps}
}

// CreateTaskInput contains the input for creating a task. An empty ID is
// generated.
type CreateTaskInput struct {
	ID         string
	Title      string
	Status     domain.TaskStatus
	StartDate  *time.Time
	DueDate    *time.Time
	AssignedTo []string
	BoardID    *string
}

// Create registers a task.
func (s *TaskService) Create(ctx context.Context, input CreateTaskInput, actorID string) (*domain.Task, error) {
	if input.Status == "" {
		input.Status = domain.StatusTodo
	}
	if !input.Status.IsValid() {
		return nil, domain.NewValidationError([]string{fmt.Sprintf("invalid status %q", input.Status)})
	}
	if input.ID == "" {
		id, err := idgen.Generate(idgen.Task)
		if err != nil {
			return nil, domain.NewInternalError(err)
		}
		input.ID = id
	}

	now := time.Now().UTC()
	task := &domain.Task{
		ID:         input.ID,
		Title:      input.Title,
		Status:     input.Status,
		StartDate:  input.StartDate,
		DueDate:    input.DueDate,
		CreatedBy:  actorID,
		AssignedTo: input.AssignedTo,
		BoardID:    input.BoardID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := s.Store.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := checkBoard(ctx, tx, task.BoardID); err != nil {
			return err
		}
		return sqlite.NewTaskRepository(tx).Create(ctx, task)
	})
	if err != nil {
		return nil, wrapErr(err)
	}
	if task.AssignedTo == nil {
		task.AssignedTo = []string{}
	}
	return task, nil
}

// Get retrieves a task by ID.
func (s *TaskService) Get(ctx context.Context, id string) (*domain.Task, error) {
	task, err := getTask(ctx, sqlite.NewTaskRepository(s.Store.DB()), id)
	if err != nil {
		return nil, wrapErr(err)
	}
	return task, nil
}

// UpdateTaskInput contains the input for updating a task.
type UpdateTaskInput struct {
	Title      *string
	Status     *domain.TaskStatus
	StartDate  *time.Time
	DueDate    *time.Time
	AssignedTo []string
	BoardID    *string
}

// Update patches a task. Dependency listings that embed it are invalidated,
// and moving it to done queues a dependency_completed notification for each
// active outgoing edge.
func (s *TaskService) Update(ctx context.Context, id string, input UpdateTaskInput) (*domain.Task, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, domain.NewValidationError([]string{fmt.Sprintf("invalid status %q", *input.Status)})
	}

	var (
		task      *domain.Task
		completed bool
		edges     []*domain.Dependency
	)
	err := s.Store.WithTx(ctx, func(tx *sqlx.Tx) error {
		tasks := sqlite.NewTaskRepository(tx)
		var err error
		if task, err = getTask(ctx, tasks, id); err != nil {
			return err
		}

		if input.Title != nil {
			task.Title = *input.Title
		}
		if input.Status != nil && *input.Status != task.Status {
			completed = *input.Status == domain.StatusDone
			task.Status = *input.Status
		}
		if input.StartDate != nil {
			task.StartDate = input.StartDate
		}
		if input.DueDate != nil {
			task.DueDate = input.DueDate
		}
		if input.AssignedTo != nil {
			task.AssignedTo = input.AssignedTo
		}
		if input.BoardID != nil {
			if err := checkBoard(ctx, tx, input.BoardID); err != nil {
				return err
			}
			task.BoardID = input.BoardID
		}
		task.UpdatedAt = time.Now().UTC()

		if err := tasks.Update(ctx, task); err != nil {
			return err
		}
		edges, err = sqlite.NewDependencyRepository(tx).ListForTask(ctx, id, domain.DirectionBoth)
		return err
	})
	if err != nil {
		return nil, wrapErr(err)
	}

	var hooks PostCommit
	hooks.Add("invalidate", func(ctx context.Context) error {
		ids := []string{task.ID}
		for _, e := range edges {
			ids = append(ids, e.PredecessorTaskID, e.SuccessorTaskID)
		}
		s.invalidate(ctx, ids...)
		return nil
	})
	if completed {
		hooks.Add("notify", func(ctx context.Context) error {
			return s.notifyCompleted(ctx, task, edges)
		})
	}
	hooks.Run(ctx, s.Log, s.Metrics)
	return task, nil
}

func (s *TaskService) notifyCompleted(ctx context.Context, pred *domain.Task, edges []*domain.Dependency) error {
	tasks := sqlite.NewTaskRepository(s.Store.DB())
	var errs []error
	for _, dep := range edges {
		if dep.PredecessorTaskID != pred.ID {
			continue
		}
		succ, err := getTask(ctx, tasks, dep.SuccessorTaskID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		n, err := s.Composer.Compose(ctx, notify.ComposeInput{
			Dependency:   dep,
			Predecessor:  pred,
			Successor:    succ,
			Type:         domain.NotificationCompleted,
			RecipientIDs: notify.Stakeholders(pred, succ),
			Priority:     domain.PriorityNormal,
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		s.Log.WithFields(logrus.Fields{
			"notification_id": n.ID,
			"dependency_id":   dep.ID,
		}).Debug("completion notification queued")
	}
	return errors.Join(errs...)
}

// UpsertUser registers or renames a user.
func (s *TaskService) UpsertUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user.ID == "" {
		id, err := idgen.Generate(idgen.User)
		if err != nil {
			return nil, domain.NewInternalError(err)
		}
		user.ID = id
	}
	if err := sqlite.NewUserRepository(s.Store.DB()).Upsert(ctx, user); err != nil {
		return nil, domain.NewInternalError(err)
	}
	return user, nil
}

// CreateBoard registers a board of a project.
func (s *TaskService) CreateBoard(ctx context.Context, board *domain.Board) (*domain.Board, error) {
	if board.ID == "" {
		id, err := idgen.Generate(idgen.Board)
		if err != nil {
			return nil, domain.NewInternalError(err)
		}
		board.ID = id
	}
	if err := sqlite.NewBoardRepository(s.Store.DB()).Create(ctx, board); err != nil {
		return nil, domain.NewInternalError(err)
	}
	return board, nil
}

func checkBoard(ctx context.Context, db sqlx.ExtContext, boardID *string) error {
	if boardID == nil {
		return nil
	}
	_, err := sqlite.NewBoardRepository(db).GetByID(ctx, *boardID)
	if errors.Is(err, sqlite.ErrNotFound) {
		return domain.NewBoardNotFoundError(*boardID)
	}
	return err
}
