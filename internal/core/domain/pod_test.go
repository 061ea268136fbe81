package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPodFrontendURL(t *testing.T) {
	tests := []struct {
		name     string
		mappings map[string]string
		want     string
		wantErr  bool
	}{
		{
			name: "frontend port preferred",
			mappings: map[string]string{
				"3000":  "https://f.example.com",
				"15552": "https://c.example.com",
			},
			want: "https://f.example.com",
		},
		{
			name:     "sole mapping used as frontend",
			mappings: map[string]string{"8080": "https://only.example.com"},
			want:     "https://only.example.com",
		},
		{
			name: "ambiguous mappings rejected",
			mappings: map[string]string{
				"15552": "https://a.example.com",
				"15553": "https://b.example.com",
			},
			wantErr: true,
		},
		{
			name:     "empty mappings rejected",
			mappings: map[string]string{},
			wantErr:  true,
		},
		{
			name:     "nil mappings rejected",
			mappings: nil,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pod := &Pod{ID: "pod-1", PortMappings: tt.mappings}

			got, err := pod.FrontendURL()

			if tt.wantErr {
				require.ErrorIs(t, err, ErrNoFrontend)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPodControlURL(t *testing.T) {
	pod := &Pod{PortMappings: map[string]string{"15552": "https://control.example.com"}}
	url, ok := pod.ControlURL()
	require.True(t, ok)
	assert.Equal(t, "https://control.example.com", url)

	pod = &Pod{PortMappings: map[string]string{"3000": "https://f.example.com"}}
	_, ok = pod.ControlURL()
	assert.False(t, ok)
}

func TestWorkspaceHasAccess(t *testing.T) {
	ws := &Workspace{
		ID:      "ws-1",
		OwnerID: "owner-1",
		Members: []Member{{UserID: "member-1", Role: MemberRoleMember}},
	}

	assert.True(t, ws.HasAccess("owner-1"))
	assert.True(t, ws.HasAccess("member-1"))
	assert.False(t, ws.HasAccess("stranger"))
	assert.False(t, ws.HasAccess(""))
}

func TestSwarmPoolConfigured(t *testing.T) {
	assert.True(t, (&Swarm{PoolName: "pool-a", PoolAPIKey: "key"}).PoolConfigured())
	assert.False(t, (&Swarm{PoolName: "pool-a"}).PoolConfigured())
	assert.False(t, (&Swarm{PoolAPIKey: "key"}).PoolConfigured())
	assert.False(t, (&Swarm{}).PoolConfigured())
}

func TestTaskBoundTo(t *testing.T) {
	pod := "pod-1"
	task := &Task{ID: "t1", PodID: &pod}

	assert.True(t, task.BoundTo("pod-1"))
	assert.False(t, task.BoundTo("pod-2"))
	assert.False(t, (&Task{ID: "t2"}).BoundTo("pod-1"))
}
