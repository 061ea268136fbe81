package port

import (
	"context"

	"github.com/karystudio/podpool/internal/core/domain"
)

// WorkspaceRepository is an interface for interacting with workspace data
type WorkspaceRepository interface {
	// GetByID returns the workspace with its members loaded, or a
	// domain.NotFoundError when absent.
	GetByID(ctx context.Context, id string) (*domain.Workspace, error)
}

// SwarmRepository is an interface for interacting with swarm configuration records
type SwarmRepository interface {
	// GetByWorkspaceID returns the workspace's swarm, or a domain.NotFoundError
	// when the workspace has none.
	GetByWorkspaceID(ctx context.Context, workspaceID string) (*domain.Swarm, error)
}

// TaskBindingRepository owns the pod-binding columns on tasks. These are the
// only durable writes this subsystem performs.
type TaskBindingRepository interface {
	// GetByID returns a task, or a domain.NotFoundError when absent.
	GetByID(ctx context.Context, id string) (*domain.Task, error)

	// ClearPodBindings nulls podId/agentUrl/agentPassword on every task whose
	// podId equals the given id, returning the number of rows swept. Several
	// rows may cache the same stale pod id, so this is one set-based update.
	ClearPodBindings(ctx context.Context, podID string) (int64, error)

	// ClearTaskBinding nulls one task's pod fields and marks its workflow
	// status completed. Used for self-healing a caller's stale binding.
	ClearTaskBinding(ctx context.Context, taskID string) error

	// CompleteTask sets a task's workflow status to completed.
	CompleteTask(ctx context.Context, taskID string) error
}

// RepositoryStore reads workspace repositories for the pod reset step
type RepositoryStore interface {
	ListByWorkspace(ctx context.Context, workspaceID string) ([]*domain.Repository, error)
}
