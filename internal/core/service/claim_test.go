package service

import (
	"context"
	"errors"
	"testing"

	"github.com/karystudio/podpool/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func configuredSwarm(workspaceID string) *domain.Swarm {
	return &domain.Swarm{
		ID:          "swarm-1",
		WorkspaceID: workspaceID,
		PoolName:    "pool-a",
		PoolAPIKey:  "api-key",
		Status:      domain.SwarmStatusActive,
	}
}

func claimFixture(pool *fakePool, swarm *domain.Swarm) *claimService {
	workspaces := &fakeWorkspaces{workspaces: map[string]*domain.Workspace{
		"ws-1": {
			ID:      "ws-1",
			Slug:    "acme",
			OwnerID: "owner-1",
			Members: []domain.Member{{UserID: "member-1", Role: domain.MemberRoleMember}},
		},
	}}
	swarms := &fakeSwarms{byWorkspace: map[string]*domain.Swarm{}}
	if swarm != nil {
		swarms.byWorkspace[swarm.WorkspaceID] = swarm
	}
	return NewClaimService(workspaces, swarms, pool, plainBox{}, zap.NewNop())
}

func TestClaimPodValidation(t *testing.T) {
	tests := []struct {
		name        string
		workspaceID string
		callerID    string
		swarm       *domain.Swarm
		wantErr     error
	}{
		{
			name:        "missing caller",
			workspaceID: "ws-1",
			callerID:    "",
			swarm:       configuredSwarm("ws-1"),
			wantErr:     domain.ErrUnauthorized,
		},
		{
			name:        "missing workspace id",
			workspaceID: "",
			callerID:    "owner-1",
			swarm:       configuredSwarm("ws-1"),
			wantErr:     &domain.MissingFieldError{Field: "workspaceId"},
		},
		{
			name:        "unknown workspace",
			workspaceID: "ws-missing",
			callerID:    "owner-1",
			swarm:       configuredSwarm("ws-1"),
			wantErr:     &domain.NotFoundError{Resource: "workspace"},
		},
		{
			name:        "caller without access",
			workspaceID: "ws-1",
			callerID:    "stranger",
			swarm:       configuredSwarm("ws-1"),
			wantErr:     domain.ErrAccessDenied,
		},
		{
			name:        "workspace without swarm",
			workspaceID: "ws-1",
			callerID:    "owner-1",
			swarm:       nil,
			wantErr:     &domain.NotFoundError{Resource: "swarm"},
		},
		{
			name:        "swarm missing pool name",
			workspaceID: "ws-1",
			callerID:    "owner-1",
			swarm:       &domain.Swarm{ID: "swarm-1", WorkspaceID: "ws-1", PoolAPIKey: "api-key"},
			wantErr:     domain.ErrSwarmNotConfigured,
		},
		{
			name:        "swarm missing pool api key",
			workspaceID: "ws-1",
			callerID:    "owner-1",
			swarm:       &domain.Swarm{ID: "swarm-1", WorkspaceID: "ws-1", PoolName: "pool-a"},
			wantErr:     domain.ErrSwarmNotConfigured,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := &fakePool{}
			svc := claimFixture(pool, tt.swarm)

			_, err := svc.ClaimPod(context.Background(), tt.workspaceID, tt.callerID)

			require.Error(t, err)
			assert.Equal(t, tt.wantErr.Error(), err.Error())
			assert.Empty(t, pool.calls, "pool service must not be called on validation failure")
		})
	}
}

func TestClaimPodFrontendDerivation(t *testing.T) {
	tests := []struct {
		name         string
		portMappings map[string]string
		wantFrontend string
		wantErr      bool
	}{
		{
			name: "frontend port wins over others",
			portMappings: map[string]string{
				"3000":  "https://f.example.com",
				"15552": "https://c.example.com",
			},
			wantFrontend: "https://f.example.com",
		},
		{
			name:         "single mapping is the frontend",
			portMappings: map[string]string{"8080": "https://only.example.com"},
			wantFrontend: "https://only.example.com",
		},
		{
			name: "multiple mappings without frontend port fail",
			portMappings: map[string]string{
				"15552": "https://a.example.com",
				"15553": "https://b.example.com",
			},
			wantErr: true,
		},
		{
			name:         "no mappings fail",
			portMappings: map[string]string{},
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := &fakePool{claimPod: &domain.Pod{ID: "pod-1", PortMappings: tt.portMappings}}
			svc := claimFixture(pool, configuredSwarm("ws-1"))

			frontend, err := svc.ClaimPod(context.Background(), "ws-1", "owner-1")

			if tt.wantErr {
				var upstream *domain.UpstreamError
				require.ErrorAs(t, err, &upstream)
				assert.Equal(t, "failed to claim pod", err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFrontend, frontend)
		})
	}
}

func TestClaimPodMemberHasAccess(t *testing.T) {
	pool := &fakePool{claimPod: &domain.Pod{ID: "pod-1", PortMappings: map[string]string{"3000": "https://f.example.com"}}}
	svc := claimFixture(pool, configuredSwarm("ws-1"))

	frontend, err := svc.ClaimPod(context.Background(), "ws-1", "member-1")

	require.NoError(t, err)
	assert.Equal(t, "https://f.example.com", frontend)
	assert.Equal(t, "pool-a", pool.lastPoolID, "claim goes to the swarm's pool name")
	assert.Equal(t, "api-key", pool.lastAPIKey)
}

func TestClaimPodUpstreamFailureCollapses(t *testing.T) {
	pool := &fakePool{claimErr: errors.New("connection refused to 10.0.0.5:8443")}
	svc := claimFixture(pool, configuredSwarm("ws-1"))

	_, err := svc.ClaimPod(context.Background(), "ws-1", "owner-1")

	var upstream *domain.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "failed to claim pod", err.Error(), "upstream detail must not leak")
	assert.NotContains(t, err.Error(), "10.0.0.5")
}
