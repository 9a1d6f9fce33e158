package task

import (
	"context"
	"strings"
	"time"

	domain "github.com/example/task-todo-api/domain/task"
	"github.com/go-monolith/mono/pkg/types"
	"gorm.io/gorm"
)

// Repository provides access to task storage. All errors it returns are
// *apperror.Error values.
type Repository struct {
	db      *gorm.DB
	dialect string
	logger  types.Logger
}

// NewRepository creates a new task repository.
func NewRepository(db *gorm.DB, logger types.Logger) *Repository {
	return &Repository{
		db:      db,
		dialect: db.Dialector.Name(),
		logger:  logger,
	}
}

// List returns tasks matching filter, ordered by id. A blank description
// filter and a nil completion filter do not restrict the result.
func (r *Repository) List(ctx context.Context, filter domain.Filter) ([]domain.Task, error) {
	tasks := make([]domain.Task, 0)
	err := r.run(ctx, "list", func(db *gorm.DB) error {
		q := db.Model(&domain.Task{})
		if filter.Description != nil && strings.TrimSpace(*filter.Description) != "" {
			q = q.Where(r.containsClause(), *filter.Description)
		}
		if filter.IsCompleted != nil {
			q = q.Where("is_completed = ?", *filter.IsCompleted)
		}
		return q.Order("id").Find(&tasks).Error
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// containsClause is a case-sensitive substring match on description.
// LIKE is avoided since it ignores case in SQLite and treats % and _ as wildcards.
func (r *Repository) containsClause() string {
	if r.dialect == "postgres" {
		return "strpos(description, ?) > 0"
	}
	return "instr(description, ?) > 0"
}

// Get retrieves a task by id.
func (r *Repository) Get(ctx context.Context, id int64) (*domain.Task, error) {
	var t domain.Task
	err := r.run(ctx, "get", func(db *gorm.DB) error {
		return db.First(&t, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create stores a new, not yet completed task stamped with the current UTC time.
func (r *Repository) Create(ctx context.Context, description string) (*domain.Task, error) {
	t := domain.Task{
		Description: description,
		IsCompleted: false,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
	err := r.run(ctx, "create", func(db *gorm.DB) error {
		return db.Create(&t).Error
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Update overwrites description and completion state. CreatedAt is left alone.
func (r *Repository) Update(ctx context.Context, id int64, description string, isCompleted bool) (*domain.Task, error) {
	var t domain.Task
	err := r.run(ctx, "update", func(db *gorm.DB) error {
		if err := db.First(&t, id).Error; err != nil {
			return err
		}
		t.Description = description
		t.IsCompleted = isCompleted
		return db.Model(&t).
			Select("description", "is_completed").
			Updates(domain.Task{Description: description, IsCompleted: isCompleted}).
			Error
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete removes a task by id.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.run(ctx, "delete", func(db *gorm.DB) error {
		var t domain.Task
		if err := db.First(&t, id).Error; err != nil {
			return err
		}
		return db.Delete(&t).Error
	})
}

// SetCompletion updates only the completion flag of a task.
func (r *Repository) SetCompletion(ctx context.Context, id int64, isCompleted bool) error {
	return r.run(ctx, "set-completion", func(db *gorm.DB) error {
		var t domain.Task
		if err := db.First(&t, id).Error; err != nil {
			return err
		}
		return db.Model(&t).Update("is_completed", isCompleted).Error
	})
}
