package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundSentinelsMatchBase(t *testing.T) {
	for _, err := range []error{
		ErrClusterNotFound,
		ErrAppNotFound,
		ErrPolicyNotFound,
		ErrConfigNotFound,
	} {
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("%v does not match ErrNotFound", err)
		}
		wrapped := fmt.Errorf("loading: %w", err)
		if !errors.Is(wrapped, err) || !errors.Is(wrapped, ErrNotFound) {
			t.Errorf("wrapping %v loses the sentinel chain", err)
		}
	}
	if errors.Is(ErrClusterNotFound, ErrAppNotFound) {
		t.Error("distinct not-found sentinels must not match each other")
	}
}

func TestServiceAccountNotReadyMatchesTimeout(t *testing.T) {
	err := fmt.Errorf("%w: namespace demo", ErrServiceAccountNotReady)
	if !errors.Is(err, ErrServiceAccountNotReady) {
		t.Error("wrapped error does not match ErrServiceAccountNotReady")
	}
	if !errors.Is(err, ErrTimeout) {
		t.Error("service account wait expiry must count as a timeout")
	}
}
