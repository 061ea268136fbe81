package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	db "github.com/karystudio/podpool/config/storage/postgresql"
	"github.com/karystudio/podpool/internal/core/domain"
	"github.com/karystudio/podpool/internal/core/port"
	"go.uber.org/zap"
)

type taskBindingRepository struct {
	db  *db.DB
	log *zap.Logger
}

// NewTaskBindingRepository creates a new postgres task binding repository
func NewTaskBindingRepository(db *db.DB, log *zap.Logger) port.TaskBindingRepository {
	return &taskBindingRepository{
		db:  db,
		log: log,
	}
}

func (r *taskBindingRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query, args, err := r.db.QueryBuilder.
		Select("id", "workspace_id", "status", "workflow_status", "pod_id", "agent_url", "agent_password", "created_at", "updated_at").
		From("tasks").
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return nil, err
	}

	var task domain.Task
	row := r.db.QueryRow(ctx, query, args...)
	if err := row.Scan(&task.ID, &task.WorkspaceID, &task.Status, &task.WorkflowStatus,
		&task.PodID, &task.AgentURL, &task.AgentPassword, &task.CreatedAt, &task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.NotFoundError{Resource: "task"}
		}
		return nil, err
	}
	return &task, nil
}

// ClearPodBindings sweeps every task caching the given pod id in one
// set-based update, since stale bindings can accumulate on several rows.
func (r *taskBindingRepository) ClearPodBindings(ctx context.Context, podID string) (int64, error) {
	query, args, err := r.db.QueryBuilder.
		Update("tasks").
		Set("pod_id", nil).
		Set("agent_url", nil).
		Set("agent_password", nil).
		Set("updated_at", time.Now()).
		Where("pod_id = ?", podID).
		ToSql()
	if err != nil {
		return 0, err
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to clear pod bindings", zap.String("pod_id", podID), zap.Error(err))
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *taskBindingRepository) ClearTaskBinding(ctx context.Context, taskID string) error {
	query, args, err := r.db.QueryBuilder.
		Update("tasks").
		Set("pod_id", nil).
		Set("agent_url", nil).
		Set("agent_password", nil).
		Set("workflow_status", domain.WorkflowStatusCompleted).
		Set("updated_at", time.Now()).
		Where("id = ?", taskID).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		r.log.Error("Failed to clear task binding", zap.String("task_id", taskID), zap.Error(err))
		return err
	}
	return nil
}

func (r *taskBindingRepository) CompleteTask(ctx context.Context, taskID string) error {
	query, args, err := r.db.QueryBuilder.
		Update("tasks").
		Set("workflow_status", domain.WorkflowStatusCompleted).
		Set("updated_at", time.Now()).
		Where("id = ?", taskID).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	return err
}
