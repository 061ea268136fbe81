package service

import (
	"context"

	"github.com/karystudio/podpool/internal/core/domain"
	"github.com/karystudio/podpool/internal/core/port"
	"go.uber.org/zap"
)

// PodReleasedEvent is the realtime event published after a successful drop
const PodReleasedEvent = "pod-released"

// WorkspaceChannel returns the broadcast channel name for a workspace
func WorkspaceChannel(workspaceID string) string {
	return "workspace:" + workspaceID
}

// DropRequest carries everything the drop orchestrator needs for one call
type DropRequest struct {
	WorkspaceID string
	PodID       string
	CallerID    string
	// TaskID, when set, names the task the caller believes owns the pod and
	// enables the ownership reconciliation phase.
	TaskID string
	// ResetLatest asks for the best-effort repository reset before release.
	ResetLatest bool
}

// DropResult reports the outcome of a successful drop
type DropResult struct {
	Released    bool
	TaskCleared bool
}

type dropService struct {
	workspaces  port.WorkspaceRepository
	swarms      port.SwarmRepository
	tasks       port.TaskBindingRepository
	repos       port.RepositoryStore
	pool        port.PoolClient
	secrets     port.SecretBox
	broadcaster port.EventBroadcaster
	cfg         Config
	log         *zap.Logger
}

// NewDropService creates the drop orchestrator. broadcaster may be nil when
// realtime notifications are disabled.
func NewDropService(
	workspaces port.WorkspaceRepository,
	swarms port.SwarmRepository,
	tasks port.TaskBindingRepository,
	repos port.RepositoryStore,
	pool port.PoolClient,
	secrets port.SecretBox,
	broadcaster port.EventBroadcaster,
	cfg Config,
	log *zap.Logger,
) *dropService {
	return &dropService{
		workspaces:  workspaces,
		swarms:      swarms,
		tasks:       tasks,
		repos:       repos,
		pool:        pool,
		secrets:     secrets,
		broadcaster: broadcaster,
		cfg:         cfg,
		log:         log,
	}
}

// DropPod releases a pod back to its pool and sweeps every stale local
// binding to it. The sequence never takes a destructive action before
// ownership is reconfirmed, and never mutates local state before the
// corresponding external call has succeeded, so a failed drop is always
// safely retryable.
func (s *dropService) DropPod(ctx context.Context, req DropRequest) (DropResult, error) {
	// Validation & environment.
	if req.CallerID == "" {
		return DropResult{}, domain.ErrUnauthorized
	}
	if req.WorkspaceID == "" {
		return DropResult{}, &domain.MissingFieldError{Field: "workspaceId"}
	}

	if s.cfg.MockMode {
		s.log.Info("Mock mode active, skipping pod drop", zap.String("pod_id", req.PodID))
		return DropResult{Released: true}, nil
	}

	workspace, err := s.workspaces.GetByID(ctx, req.WorkspaceID)
	if err != nil {
		return DropResult{}, err
	}
	// Authorization runs before any configuration-shape checks so callers
	// without access learn nothing about the workspace's swarm setup.
	if !workspace.HasAccess(req.CallerID) {
		return DropResult{}, domain.ErrAccessDenied
	}

	swarm, err := s.swarms.GetByWorkspaceID(ctx, req.WorkspaceID)
	if err != nil {
		return DropResult{}, err
	}
	if !swarm.PoolConfigured() {
		return DropResult{}, domain.ErrSwarmNotConfigured
	}
	if req.PodID == "" {
		return DropResult{}, &domain.MissingFieldError{Field: "podId"}
	}

	apiKey, err := s.secrets.Open(swarm.PoolAPIKey)
	if err != nil {
		s.log.Error("Failed to decrypt pool API key", zap.String("swarm_id", swarm.ID), zap.Error(err))
		return DropResult{}, &domain.UpstreamError{Op: "drop", Err: err}
	}

	// Ownership reconciliation. Only meaningful when the caller names the
	// task it believes owns the pod.
	if req.TaskID != "" {
		owner, err := s.pool.CurrentOwner(ctx, apiKey, req.PodID)
		if err != nil {
			s.log.Error("Pod usage lookup failed",
				zap.String("pod_id", req.PodID),
				zap.Error(err))
			return DropResult{}, &domain.UpstreamError{Op: "drop", Err: err}
		}
		if owner != "" && owner != req.TaskID {
			// The pod moved on since the caller's binding was recorded.
			// Another task may legitimately be using it, so releasing it here
			// is off the table. Repair the caller's stale binding anyway so
			// the same caller doesn't hit this conflict forever.
			s.log.Warn("Pod reassigned since binding was recorded",
				zap.String("pod_id", req.PodID),
				zap.String("expected_task", req.TaskID),
				zap.String("owner_task", owner))
			if err := s.tasks.ClearTaskBinding(ctx, req.TaskID); err != nil {
				s.log.Error("Failed to clear stale task binding",
					zap.String("task_id", req.TaskID),
					zap.Error(err))
			}
			return DropResult{}, &domain.ConflictError{Message: "Pod has been reassigned to another task"}
		}
	}

	// Repository reset, strictly best-effort: nothing in this block may fail
	// or block the drop.
	if req.ResetLatest {
		s.resetRepositories(ctx, apiKey, req.WorkspaceID, req.PodID)
	}

	// Release. The pool's mark-unused is the authoritative boundary; if it
	// fails the pod stays claimed and local bindings stay intact.
	if err := s.pool.MarkUnused(ctx, apiKey, swarm.ID, req.PodID); err != nil {
		s.log.Error("Failed to mark pod unused",
			zap.String("pod_id", req.PodID),
			zap.String("pool_id", swarm.ID),
			zap.Error(err))
		return DropResult{}, &domain.UpstreamError{Op: "drop", Err: err}
	}

	// Binding cleanup, only after the release committed. Several tasks may
	// cache the same stale pod id, so this sweeps all of them.
	swept, err := s.tasks.ClearPodBindings(ctx, req.PodID)
	if err != nil {
		return DropResult{}, err
	}

	result := DropResult{Released: true}
	if req.TaskID != "" {
		if err := s.tasks.CompleteTask(ctx, req.TaskID); err != nil {
			return DropResult{}, err
		}
		result.TaskCleared = true
	}

	s.log.Info("Dropped pod",
		zap.String("pod_id", req.PodID),
		zap.String("workspace_id", req.WorkspaceID),
		zap.Int64("bindings_swept", swept))

	// Notification, best-effort.
	if s.cfg.BroadcastEnabled && s.broadcaster != nil {
		payload := map[string]string{"podId": req.PodID}
		if err := s.broadcaster.Publish(ctx, WorkspaceChannel(req.WorkspaceID), PodReleasedEvent, payload); err != nil {
			s.log.Warn("Failed to broadcast pod release",
				zap.String("pod_id", req.PodID),
				zap.Error(err))
		}
	}

	return result, nil
}

// resetRepositories asks the pod to re-checkout the workspace's repositories.
// Every exit path here is a silent skip; the caller's drop proceeds no matter
// what happens.
func (s *dropService) resetRepositories(ctx context.Context, apiKey, workspaceID, podID string) {
	pod, err := s.pool.GetPod(ctx, apiKey, podID)
	if err != nil {
		s.log.Warn("Skipping repository reset, pod fetch failed",
			zap.String("pod_id", podID),
			zap.Error(err))
		return
	}

	controlURL, ok := pod.ControlURL()
	if !ok {
		s.log.Debug("Skipping repository reset, pod has no control mapping",
			zap.String("pod_id", podID))
		return
	}

	repos, err := s.repos.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		s.log.Warn("Skipping repository reset, repository load failed",
			zap.String("workspace_id", workspaceID),
			zap.Error(err))
		return
	}
	if len(repos) == 0 {
		return
	}

	urls := make([]string, 0, len(repos))
	branches := make([]string, 0, len(repos))
	for _, repo := range repos {
		urls = append(urls, repo.RepositoryURL)
		branches = append(branches, repo.Branch)
	}

	if err := s.pool.UpdateRepositories(ctx, controlURL, pod.Password, urls, branches); err != nil {
		s.log.Warn("Repository reset failed",
			zap.String("pod_id", podID),
			zap.Error(err))
	}
}
