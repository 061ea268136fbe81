// Package port provides behavior interfaces that connect services & adapters.
package port

import (
	"context"

	"github.com/karystudio/podpool/internal/core/domain"
)

// PoolClient defines the outbound surface of the external pool service. Every
// call is one synchronous HTTP round-trip; the apiKey is the swarm's decrypted
// pool API key except for UpdateRepositories, which authenticates with the
// pod's own password.
type PoolClient interface {
	// Claim leases a free pod from the named pool and returns its metadata.
	Claim(ctx context.Context, apiKey, poolID string) (*domain.Pod, error)

	// GetPod fetches the current metadata of a specific pod.
	GetPod(ctx context.Context, apiKey, podID string) (*domain.Pod, error)

	// CurrentOwner returns the task id the pool service records as owning the
	// pod, or "" when the pod is unowned.
	CurrentOwner(ctx context.Context, apiKey, podID string) (string, error)

	// UpdateRepositories instructs a running pod to reset its checkouts.
	UpdateRepositories(ctx context.Context, controlURL, podPassword string, repositories, branches []string) error

	// MarkUnused releases the pod back to its pool.
	MarkUnused(ctx context.Context, apiKey, poolID, podID string) error
}

// EventBroadcaster publishes best-effort realtime events to a workspace channel
type EventBroadcaster interface {
	Publish(ctx context.Context, channel, event string, payload any) error
}

// SessionStore resolves bearer tokens into sessions (Redis)
type SessionStore interface {
	Lookup(ctx context.Context, token string) (*domain.Session, error)
}

// SecretBox decrypts credentials stored encrypted at rest
type SecretBox interface {
	Open(ciphertext string) (string, error)
	Seal(plaintext string) (string, error)
}
