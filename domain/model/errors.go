package model

import (
	"errors"
	"fmt"
)

// Sentinel errors forming the closed error taxonomy of the orchestrator.
// Callers branch with errors.Is; adapters wrap these with context via
// fmt.Errorf("...: %w", err).
var (
	// ErrNotFound is the base of all missing-entity errors.
	ErrNotFound = errors.New("not found")

	ErrClusterNotFound   = wrapNotFound("cluster not found")
	ErrAppNotFound       = wrapNotFound("workload app not found")
	ErrConfigNotFound    = wrapNotFound("config not found")
	ErrReleaseNotFound   = wrapNotFound("release not found")
	ErrBuildNotFound     = wrapNotFound("build not found")
	ErrProcessNotFound   = wrapNotFound("process not found")
	ErrDomainNotFound    = wrapNotFound("domain not found")
	ErrCertNotFound      = wrapNotFound("certificate not found")
	ErrAppModelNotFound  = wrapNotFound("app model resource not found")
	ErrPolicyNotFound    = wrapNotFound("allocation policy not found")
	ErrAppEntityNotFound = wrapNotFound("app entity not found")

	// ErrConflict reports a resource version mismatch on update. Retriable
	// after a fresh read.
	ErrConflict = errors.New("resource version conflict")

	// ErrValidationFailed reports terminally invalid input.
	ErrValidationFailed = errors.New("validation failed")

	// ErrClusterUnreachable reports exhaustion of all API server endpoints
	// of a cluster. Retriable with backoff.
	ErrClusterUnreachable = errors.New("cluster unreachable")

	// ErrNoEligibleCluster reports an empty candidate list after allocation
	// policy evaluation and tenant filtering.
	ErrNoEligibleCluster = errors.New("no eligible cluster")

	// ErrTimeout reports an exceeded build/release/archive deadline.
	ErrTimeout = errors.New("operation timed out")

	// ErrServiceAccountNotReady reports that a namespace's default
	// ServiceAccount did not appear within the deadline. Matches ErrTimeout.
	ErrServiceAccountNotReady = fmt.Errorf("%w: default service account not ready", ErrTimeout)

	// ErrBuildFailed reports a builder that exited non-zero.
	ErrBuildFailed = errors.New("build failed")

	// ErrInterrupted reports a user-requested abort, distinguished from
	// failure in platform callbacks.
	ErrInterrupted = errors.New("operation interrupted")

	// ErrRateLimited reports a denied token-bucket acquisition.
	ErrRateLimited = errors.New("rate limited")

	// ErrOperationInProgress reports that the per-app release/build lock is
	// already held.
	ErrOperationInProgress = errors.New("operation already in progress")

	// ErrProcessOperationTooOften reports that a process was mutated within
	// the configured cool-down interval.
	ErrProcessOperationTooOften = errors.New("process operation too often")

	// ErrDependency reports a remote collaborator failure (log platform,
	// monitor platform, addon provider). Non-fatal for releases.
	ErrDependency = errors.New("dependency error")

	// ErrSandboxAlreadyExists reports a duplicate dev sandbox creation.
	ErrSandboxAlreadyExists = errors.New("dev sandbox already exists")
)

// wrapValidation builds an error matching ErrValidationFailed with a
// caller-supplied message.
func wrapValidation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidationFailed, msg)
}

// wrapNotFound builds a sentinel that matches both itself and ErrNotFound.
func wrapNotFound(msg string) error {
	return &notFoundError{msg: msg}
}

type notFoundError struct{ msg string }

func (e *notFoundError) Error() string { return e.msg }

func (e *notFoundError) Is(target error) bool { return target == ErrNotFound }
