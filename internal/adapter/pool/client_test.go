package pool

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClaim(t *testing.T) {
	var gotAuth, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodGet, r.Method)
		json.NewEncoder(w).Encode(map[string]any{
			"id":       "pod-1",
			"fqdn":     "pod-1.pool.example.com",
			"password": "pod-pass",
			"portMappings": map[string]string{
				"3000":  "https://f.example.com",
				"15552": "https://c.example.com",
			},
			"state": "running",
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, zap.NewNop())
	pod, err := c.Claim(context.Background(), "api-key", "pool-a")

	require.NoError(t, err)
	assert.Equal(t, "Bearer api-key", gotAuth)
	assert.Equal(t, "/pools/pool-a/workspace", gotPath)
	assert.Equal(t, "pod-1", pod.ID)
	assert.Equal(t, "pod-pass", pod.Password)
	assert.Equal(t, "https://f.example.com", pod.PortMappings["3000"])
}

func TestGetPod(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/workspaces/pod-1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"id": "pod-1", "state": "running"})
	}))
	defer server.Close()

	c := NewClient(server.URL, zap.NewNop())
	pod, err := c.GetPod(context.Background(), "api-key", "pod-1")

	require.NoError(t, err)
	assert.Equal(t, "pod-1", pod.ID)
	assert.Equal(t, "running", pod.State)
}

func TestCurrentOwner(t *testing.T) {
	t.Run("owned pod", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/workspaces/pod-1/usage", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]string{"user_info": "task-42"})
		}))
		defer server.Close()

		c := NewClient(server.URL, zap.NewNop())
		owner, err := c.CurrentOwner(context.Background(), "api-key", "pod-1")

		require.NoError(t, err)
		assert.Equal(t, "task-42", owner)
	})

	t.Run("unowned pod", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{})
		}))
		defer server.Close()

		c := NewClient(server.URL, zap.NewNop())
		owner, err := c.CurrentOwner(context.Background(), "api-key", "pod-1")

		require.NoError(t, err)
		assert.Empty(t, owner)
	})
}

func TestUpdateRepositories(t *testing.T) {
	var gotBody map[string][]string
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/latest", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := NewClient("http://unused.example.com", zap.NewNop())
	err := c.UpdateRepositories(context.Background(), server.URL, "pod-pass",
		[]string{"https://git.example.com/a.git"}, []string{"main"})

	require.NoError(t, err)
	assert.Equal(t, "Bearer pod-pass", gotAuth, "control plane uses the pod password")
	assert.Equal(t, []string{"https://git.example.com/a.git"}, gotBody["repositories"])
	assert.Equal(t, []string{"main"}, gotBody["branches"])
}

func TestMarkUnused(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var gotPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			gotPath = r.URL.Path
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		c := NewClient(server.URL, zap.NewNop())
		err := c.MarkUnused(context.Background(), "api-key", "swarm-1", "pod-1")

		require.NoError(t, err)
		assert.Equal(t, "/pools/swarm-1/workspaces/pod-1/mark-unused", gotPath)
	})

	t.Run("upstream error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "pool exhausted", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		c := NewClient(server.URL, zap.NewNop())
		err := c.MarkUnused(context.Background(), "api-key", "swarm-1", "pod-1")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")
	})
}

func TestClaimNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	c := NewClient(server.URL, zap.NewNop())
	_, err := c.Claim(context.Background(), "api-key", "pool-a")

	require.Error(t, err)
}
