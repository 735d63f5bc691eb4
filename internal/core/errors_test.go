package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestDomainErrorError(t *testing.T) {
	err := ErrPolicy(CodeApplyDisabled, "apply is disabled in shadow-only mode")
	msg := err.Error()
	if !strings.Contains(msg, "policy") || !strings.Contains(msg, CodeApplyDisabled) {
		t.Errorf("Error() = %q, want category and code present", msg)
	}

	wrapped := ErrNetwork("request failed").WithCause(fmt.Errorf("dial tcp: refused"))
	if !strings.Contains(wrapped.Error(), "refused") {
		t.Errorf("Error() = %q, want cause included", wrapped.Error())
	}
}

func TestDomainErrorIs(t *testing.T) {
	err := ErrPolicy(CodeReviewBusy, "another cluster approval is in flight")

	if !errors.Is(err, ErrPolicy(CodeReviewBusy, "different message")) {
		t.Error("errors with same category and code should match")
	}
	if errors.Is(err, ErrPolicy(CodeApplyDisabled, "")) {
		t.Error("different codes should not match")
	}
	if errors.Is(err, errors.New("plain")) {
		t.Error("plain errors should not match")
	}
}

func TestDomainErrorUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := ErrState(CodeStaleWorkspace, "workspace changed mid-flight").WithCause(cause)
	if !errors.Is(err, cause) {
		t.Error("Unwrap() chain should reach the cause")
	}
}

func TestDomainErrorWithDetail(t *testing.T) {
	err := ErrNotFound("proposal", "evt_404").WithDetail("workspace_id", "ws_1")
	if err.Details["workspace_id"] != "ws_1" {
		t.Errorf("Details = %v", err.Details)
	}
}

func TestRetryableByCategory(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{ErrNetwork("connection reset"), true},
		{ErrTimeout("deadline exceeded"), true},
		{ErrRateLimit("slow down"), true},
		{ErrValidation(CodeMissingWorkspace, "workspace required"), false},
		{ErrPolicy(CodeApplyDisabled, "gated"), false},
		{errors.New("plain"), false},
	}
	for _, tt := range tests {
		if got := IsRetryable(tt.err); got != tt.want {
			t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestCategoryHelpers(t *testing.T) {
	if GetCategory(ErrAuth(CodeForbidden, "missing capability")) != ErrCatAuth {
		t.Error("GetCategory(auth) mismatch")
	}
	if GetCategory(errors.New("plain")) != ErrCatInternal {
		t.Error("plain errors should default to internal")
	}
	if !IsPolicyRefusal(ErrPolicy(CodeClusterNotSafe, "cluster has flagged members")) {
		t.Error("IsPolicyRefusal should match policy errors")
	}
	if IsPolicyRefusal(ErrNetwork("down")) {
		t.Error("IsPolicyRefusal should not match network errors")
	}
	if !IsNotFound(ErrNotFound("proposal", "evt_1")) {
		t.Error("IsNotFound should match")
	}

	// A wrapped domain error is still classified.
	wrapped := fmt.Errorf("while approving: %w", ErrPolicy(CodeApplyDisabled, "gated"))
	if !IsPolicyRefusal(wrapped) {
		t.Error("classification should see through wrapping")
	}
}
