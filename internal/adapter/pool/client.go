// Package pool provides the HTTP adapter for the external pod pool service.
package pool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/karystudio/podpool/internal/core/domain"
	"github.com/karystudio/podpool/internal/core/port"
	"go.uber.org/zap"
)

// maxErrBody caps how much of an upstream error body makes it into logs
const maxErrBody = 512

type client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// NewClient creates a pool service client. Every method is a single
// round-trip; the client holds no state beyond the base URL.
func NewClient(baseURL string, log *zap.Logger) port.PoolClient {
	return &client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
}

// podResponse is the pool service's pod metadata shape
type podResponse struct {
	ID           string            `json:"id"`
	FQDN         string            `json:"fqdn"`
	URL          string            `json:"url"`
	Password     string            `json:"password"`
	PortMappings map[string]string `json:"portMappings"`
	Repositories []string          `json:"repositories"`
	Branches     []string          `json:"branches"`
	State        string            `json:"state"`
}

func (p *podResponse) toDomain() *domain.Pod {
	return &domain.Pod{
		ID:           p.ID,
		FQDN:         p.FQDN,
		URL:          p.URL,
		Password:     p.Password,
		PortMappings: p.PortMappings,
		Repositories: p.Repositories,
		Branches:     p.Branches,
		State:        p.State,
	}
}

// usageResponse carries the pool's ownership record for a pod. user_info is
// an opaque string holding the owning task id, empty when unowned.
type usageResponse struct {
	UserInfo string `json:"user_info"`
}

func (c *client) Claim(ctx context.Context, apiKey, poolID string) (*domain.Pod, error) {
	var pod podResponse
	url := fmt.Sprintf("%s/pools/%s/workspace", c.baseURL, poolID)
	if err := c.do(ctx, http.MethodGet, url, apiKey, nil, &pod); err != nil {
		return nil, fmt.Errorf("claim pod from pool %s: %w", poolID, err)
	}
	return pod.toDomain(), nil
}

func (c *client) GetPod(ctx context.Context, apiKey, podID string) (*domain.Pod, error) {
	var pod podResponse
	url := fmt.Sprintf("%s/workspaces/%s", c.baseURL, podID)
	if err := c.do(ctx, http.MethodGet, url, apiKey, nil, &pod); err != nil {
		return nil, fmt.Errorf("get pod %s: %w", podID, err)
	}
	return pod.toDomain(), nil
}

func (c *client) CurrentOwner(ctx context.Context, apiKey, podID string) (string, error) {
	var usage usageResponse
	url := fmt.Sprintf("%s/workspaces/%s/usage", c.baseURL, podID)
	if err := c.do(ctx, http.MethodGet, url, apiKey, nil, &usage); err != nil {
		return "", fmt.Errorf("get pod usage %s: %w", podID, err)
	}
	return usage.UserInfo, nil
}

func (c *client) UpdateRepositories(ctx context.Context, controlURL, podPassword string, repositories, branches []string) error {
	payload := map[string][]string{
		"repositories": repositories,
		"branches":     branches,
	}
	// The control-plane call authenticates with the pod's own password, not
	// the pool API key.
	url := controlURL + "/latest"
	if err := c.do(ctx, http.MethodPut, url, podPassword, payload, nil); err != nil {
		return fmt.Errorf("update repositories: %w", err)
	}
	return nil
}

func (c *client) MarkUnused(ctx context.Context, apiKey, poolID, podID string) error {
	url := fmt.Sprintf("%s/pools/%s/workspaces/%s/mark-unused", c.baseURL, poolID, podID)
	if err := c.do(ctx, http.MethodPost, url, apiKey, nil, nil); err != nil {
		return fmt.Errorf("mark pod %s unused: %w", podID, err)
	}
	return nil
}

// do performs one authenticated round-trip and decodes the JSON response into
// result when result is non-nil
func (c *client) do(ctx context.Context, method, url, bearer string, payload, result any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		c.log.Warn("Pool service returned error status",
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("status", resp.StatusCode))
		return fmt.Errorf("pool service returned status %d: %s", resp.StatusCode, raw)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil && err != io.EOF {
			return fmt.Errorf("JSON decode failed: %w", err)
		}
	}
	return nil
}
