package domain

// MemberRole is the workspace-level role of a member
type MemberRole string

const (
	MemberRoleAdmin  MemberRole = "ADMIN"
	MemberRoleMember MemberRole = "MEMBER"
	MemberRoleViewer MemberRole = "VIEWER"
)

// Member is a single user's membership in a workspace
type Member struct {
	UserID string     `json:"user_id"`
	Role   MemberRole `json:"role"`
}

// Workspace represents a tenant-level container for tasks and swarm configuration
type Workspace struct {
	ID      string   `json:"id"`
	Slug    string   `json:"slug"`
	OwnerID string   `json:"owner_id"`
	Members []Member `json:"members,omitempty"`
}

// HasAccess reports whether the given user owns the workspace or is a member of it
func (w *Workspace) HasAccess(userID string) bool {
	if userID == "" {
		return false
	}
	if w.OwnerID == userID {
		return true
	}
	for _, m := range w.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// Repository is a workspace-scoped source checkout, input to the pod repository reset
type Repository struct {
	ID            string `json:"id"`
	WorkspaceID   string `json:"workspace_id"`
	RepositoryURL string `json:"repository_url"`
	Branch        string `json:"branch"`
}
