package domain

import "time"

type TaskStatus string

const (
	TaskStatusOpen       TaskStatus = "OPEN"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
	TaskStatusCancelled  TaskStatus = "CANCELLED"
)

type WorkflowStatus string

const (
	WorkflowStatusPending   WorkflowStatus = "PENDING"
	WorkflowStatusRunning   WorkflowStatus = "RUNNING"
	WorkflowStatusCompleted WorkflowStatus = "COMPLETED"
	WorkflowStatusFailed    WorkflowStatus = "FAILED"
)

// Task represents a unit of work inside a workspace. The pod fields are a
// local cache of which pod the task currently owns, never the source of truth;
// the pool service's own ownership record wins whenever the two disagree.
type Task struct {
	ID             string         `json:"id"`
	WorkspaceID    string         `json:"workspace_id"`
	Status         TaskStatus     `json:"status"`
	WorkflowStatus WorkflowStatus `json:"workflow_status"`
	PodID          *string        `json:"pod_id,omitempty"`
	AgentURL       *string        `json:"agent_url,omitempty"`
	AgentPassword  *string        `json:"-"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// BoundTo reports whether the task currently caches a binding to the given pod
func (t *Task) BoundTo(podID string) bool {
	return t.PodID != nil && *t.PodID == podID
}
