package service

import (
	"context"

	"github.com/karystudio/podpool/internal/core/domain"
)

type fakeWorkspaces struct {
	workspaces map[string]*domain.Workspace
}

func (f *fakeWorkspaces) GetByID(_ context.Context, id string) (*domain.Workspace, error) {
	if ws, ok := f.workspaces[id]; ok {
		return ws, nil
	}
	return nil, &domain.NotFoundError{Resource: "workspace"}
}

type fakeSwarms struct {
	byWorkspace map[string]*domain.Swarm
}

func (f *fakeSwarms) GetByWorkspaceID(_ context.Context, workspaceID string) (*domain.Swarm, error) {
	if s, ok := f.byWorkspace[workspaceID]; ok {
		return s, nil
	}
	return nil, &domain.NotFoundError{Resource: "swarm"}
}

type fakeTasks struct {
	tasks        map[string]*domain.Task
	clearBindErr error
	completeErr  error
	sweepErr     error

	sweptPods    []string
	clearedTasks []string
	completed    []string
}

func (f *fakeTasks) GetByID(_ context.Context, id string) (*domain.Task, error) {
	if t, ok := f.tasks[id]; ok {
		return t, nil
	}
	return nil, &domain.NotFoundError{Resource: "task"}
}

func (f *fakeTasks) ClearPodBindings(_ context.Context, podID string) (int64, error) {
	if f.sweepErr != nil {
		return 0, f.sweepErr
	}
	f.sweptPods = append(f.sweptPods, podID)
	var n int64
	for _, t := range f.tasks {
		if t.BoundTo(podID) {
			t.PodID = nil
			t.AgentURL = nil
			t.AgentPassword = nil
			n++
		}
	}
	return n, nil
}

func (f *fakeTasks) ClearTaskBinding(_ context.Context, taskID string) error {
	if f.clearBindErr != nil {
		return f.clearBindErr
	}
	f.clearedTasks = append(f.clearedTasks, taskID)
	if t, ok := f.tasks[taskID]; ok {
		t.PodID = nil
		t.AgentURL = nil
		t.AgentPassword = nil
		t.WorkflowStatus = domain.WorkflowStatusCompleted
	}
	return nil
}

func (f *fakeTasks) CompleteTask(_ context.Context, taskID string) error {
	if f.completeErr != nil {
		return f.completeErr
	}
	f.completed = append(f.completed, taskID)
	if t, ok := f.tasks[taskID]; ok {
		t.WorkflowStatus = domain.WorkflowStatusCompleted
	}
	return nil
}

type fakeRepos struct {
	repos []*domain.Repository
	err   error
}

func (f *fakeRepos) ListByWorkspace(_ context.Context, _ string) ([]*domain.Repository, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.repos, nil
}

type repoUpdate struct {
	controlURL   string
	password     string
	repositories []string
	branches     []string
}

type fakePool struct {
	claimPod      *domain.Pod
	claimErr      error
	getPod        *domain.Pod
	getPodErr     error
	owner         string
	ownerErr      error
	updateErr     error
	markUnusedErr error

	calls      []string
	lastAPIKey string
	lastPoolID string
	lastUpdate repoUpdate
}

func (f *fakePool) Claim(_ context.Context, apiKey, poolID string) (*domain.Pod, error) {
	f.calls = append(f.calls, "Claim")
	f.lastAPIKey = apiKey
	f.lastPoolID = poolID
	if f.claimErr != nil {
		return nil, f.claimErr
	}
	return f.claimPod, nil
}

func (f *fakePool) GetPod(_ context.Context, apiKey, _ string) (*domain.Pod, error) {
	f.calls = append(f.calls, "GetPod")
	f.lastAPIKey = apiKey
	if f.getPodErr != nil {
		return nil, f.getPodErr
	}
	return f.getPod, nil
}

func (f *fakePool) CurrentOwner(_ context.Context, apiKey, _ string) (string, error) {
	f.calls = append(f.calls, "CurrentOwner")
	f.lastAPIKey = apiKey
	return f.owner, f.ownerErr
}

func (f *fakePool) UpdateRepositories(_ context.Context, controlURL, podPassword string, repositories, branches []string) error {
	f.calls = append(f.calls, "UpdateRepositories")
	f.lastUpdate = repoUpdate{
		controlURL:   controlURL,
		password:     podPassword,
		repositories: repositories,
		branches:     branches,
	}
	return f.updateErr
}

func (f *fakePool) MarkUnused(_ context.Context, apiKey, poolID, _ string) error {
	f.calls = append(f.calls, "MarkUnused")
	f.lastAPIKey = apiKey
	f.lastPoolID = poolID
	return f.markUnusedErr
}

// plainBox opens "ciphertext" as-is, for tests that don't care about crypto
type plainBox struct{}

func (plainBox) Open(ciphertext string) (string, error) { return ciphertext, nil }
func (plainBox) Seal(plaintext string) (string, error)  { return plaintext, nil }

type broadcastCall struct {
	channel string
	event   string
	payload any
}

type fakeBroadcaster struct {
	err    error
	events []broadcastCall
}

func (f *fakeBroadcaster) Publish(_ context.Context, channel, event string, payload any) error {
	f.events = append(f.events, broadcastCall{channel: channel, event: event, payload: payload})
	return f.err
}
