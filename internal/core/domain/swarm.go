package domain

type SwarmStatus string

const (
	SwarmStatusActive   SwarmStatus = "ACTIVE"
	SwarmStatusPending  SwarmStatus = "PENDING"
	SwarmStatusDisabled SwarmStatus = "DISABLED"
)

// Swarm is a workspace's pool configuration record. Its ID doubles as the pool
// identifier passed to the external pool service.
type Swarm struct {
	ID          string      `json:"id"`
	WorkspaceID string      `json:"workspace_id"`
	PoolName    string      `json:"pool_name"`
	PoolAPIKey  string      `json:"-"` // encrypted at rest, decrypted only for outbound calls
	SwarmURL    string      `json:"swarm_url"`
	Status      SwarmStatus `json:"status"`
}

// PoolConfigured reports whether the swarm carries everything pool operations
// need. Either field missing means the swarm was created but never finished
// onboarding.
func (s *Swarm) PoolConfigured() bool {
	return s.PoolName != "" && s.PoolAPIKey != ""
}
