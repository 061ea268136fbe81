package rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/karystudio/podpool/internal/core/service"
	"go.uber.org/zap"
)

// ClaimService is the inbound surface of the claim orchestrator
type ClaimService interface {
	ClaimPod(ctx context.Context, workspaceID, callerID string) (string, error)
}

// DropService is the inbound surface of the drop orchestrator
type DropService interface {
	DropPod(ctx context.Context, req service.DropRequest) (service.DropResult, error)
}

// PoolManagerHandler serves the pool-manager endpoints
type PoolManagerHandler struct {
	claim ClaimService
	drop  DropService
	log   *zap.Logger
}

// NewPoolManagerHandler creates the pool-manager handler
func NewPoolManagerHandler(claim ClaimService, drop DropService, log *zap.Logger) *PoolManagerHandler {
	return &PoolManagerHandler{
		claim: claim,
		drop:  drop,
		log:   log,
	}
}

type claimResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Frontend string `json:"frontend"`
}

type dropResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	TaskCleared *bool  `json:"taskCleared,omitempty"`
}

// ClaimPod handles POST /pool-manager/claim-pod/{workspaceId}
func (h *PoolManagerHandler) ClaimPod(w http.ResponseWriter, r *http.Request) {
	workspaceID := chi.URLParam(r, "workspaceId")

	frontend, err := h.claim.ClaimPod(r.Context(), workspaceID, CallerID(r.Context()))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, claimResponse{
		Success:  true,
		Message:  "Pod claimed successfully",
		Frontend: frontend,
	})
}

// DropPod handles POST /pool-manager/drop-pod/{workspaceId}?podId=&taskId=&latest=
func (h *PoolManagerHandler) DropPod(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	resetLatest, _ := strconv.ParseBool(query.Get("latest"))

	req := service.DropRequest{
		WorkspaceID: chi.URLParam(r, "workspaceId"),
		PodID:       query.Get("podId"),
		CallerID:    CallerID(r.Context()),
		TaskID:      query.Get("taskId"),
		ResetLatest: resetLatest,
	}

	result, err := h.drop.DropPod(r.Context(), req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	resp := dropResponse{
		Success: true,
		Message: "Pod dropped successfully",
	}
	if req.TaskID != "" {
		resp.TaskCleared = &result.TaskCleared
	}
	writeJSON(w, http.StatusOK, resp)
}
