// Package service provides the pod lifecycle orchestrators.
package service

import (
	"context"

	"github.com/karystudio/podpool/internal/core/domain"
	"github.com/karystudio/podpool/internal/core/port"
	"go.uber.org/zap"
)

// Config carries the environment toggles the orchestrators depend on,
// injected explicitly so tests can vary them per instance.
type Config struct {
	// MockMode makes DropPod succeed without touching the pool service or
	// local state, for environments with no real pool behind them.
	MockMode bool
	// BroadcastEnabled gates the best-effort realtime notifications.
	BroadcastEnabled bool
}

type claimService struct {
	workspaces port.WorkspaceRepository
	swarms     port.SwarmRepository
	pool       port.PoolClient
	secrets    port.SecretBox
	log        *zap.Logger
}

// NewClaimService creates the claim orchestrator
func NewClaimService(
	workspaces port.WorkspaceRepository,
	swarms port.SwarmRepository,
	pool port.PoolClient,
	secrets port.SecretBox,
	log *zap.Logger,
) *claimService {
	return &claimService{
		workspaces: workspaces,
		swarms:     swarms,
		pool:       pool,
		secrets:    secrets,
		log:        log,
	}
}

// ClaimPod leases a free pod from the workspace's pool and returns its
// frontend URL. Nothing is written locally; binding the pod to a task is a
// separate assignment step.
func (s *claimService) ClaimPod(ctx context.Context, workspaceID, callerID string) (string, error) {
	if callerID == "" {
		return "", domain.ErrUnauthorized
	}
	if workspaceID == "" {
		return "", &domain.MissingFieldError{Field: "workspaceId"}
	}

	workspace, err := s.workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		return "", err
	}
	if !workspace.HasAccess(callerID) {
		return "", domain.ErrAccessDenied
	}

	swarm, err := s.swarms.GetByWorkspaceID(ctx, workspaceID)
	if err != nil {
		return "", err
	}
	if !swarm.PoolConfigured() {
		return "", domain.ErrSwarmNotConfigured
	}

	// From here on every failure collapses into one generic claim error: the
	// pool API's failure modes mean nothing to the caller and may carry
	// infrastructure detail, so they go to the log only.
	apiKey, err := s.secrets.Open(swarm.PoolAPIKey)
	if err != nil {
		s.log.Error("Failed to decrypt pool API key", zap.String("swarm_id", swarm.ID), zap.Error(err))
		return "", &domain.UpstreamError{Op: "claim", Err: err}
	}

	pod, err := s.pool.Claim(ctx, apiKey, swarm.PoolName)
	if err != nil {
		s.log.Error("Pool claim failed",
			zap.String("workspace_id", workspaceID),
			zap.String("pool", swarm.PoolName),
			zap.Error(err))
		return "", &domain.UpstreamError{Op: "claim", Err: err}
	}

	frontend, err := pod.FrontendURL()
	if err != nil {
		s.log.Error("Claimed pod exposes no usable frontend mapping",
			zap.String("pod_id", pod.ID),
			zap.Int("mappings", len(pod.PortMappings)))
		return "", &domain.UpstreamError{Op: "claim", Err: err}
	}

	s.log.Info("Claimed pod",
		zap.String("workspace_id", workspaceID),
		zap.String("pod_id", pod.ID))

	return frontend, nil
}
