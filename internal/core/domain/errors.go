// Package domain provides domain entities & domain level errors shared by services and adapters.
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized means the caller presented no usable session at all.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidSession means a session was presented but carries no user id.
	ErrInvalidSession = errors.New("invalid session")

	// ErrAccessDenied means the workspace exists but the caller is neither owner nor member.
	ErrAccessDenied = errors.New("access denied")

	// ErrSwarmNotConfigured means the swarm record is missing its pool name or pool API key.
	ErrSwarmNotConfigured = errors.New("swarm is not properly configured")

	// ErrNoFrontend means a claimed pod exposed no usable frontend port mapping.
	ErrNoFrontend = errors.New("no frontend mapping found")
)

// MissingFieldError reports a required request field that was empty.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// NotFoundError reports an absent resource by kind.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// ConflictError reports a state conflict, currently only pod reassignment.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// UpstreamError wraps a pool-service failure. Op is the operation the caller
// sees ("claim" or "drop"); the wrapped cause is for logs only and must never
// reach a client.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("failed to %s pod", e.Op)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
