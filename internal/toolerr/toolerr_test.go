package toolerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorStringIncludesKindAndDetail(t *testing.T) {
	plain := NotFoundf("no chat %d", 42)
	if got := plain.Error(); got != "NotFoundError: no chat 42" {
		t.Fatalf("unexpected message: %q", got)
	}

	detailed := Sessionf(DetailNotAuthorized, "session revoked")
	if got := detailed.Error(); got != "SessionError(NotAuthorized): session revoked" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestAsUnwrapsThroughWrapping(t *testing.T) {
	inner := Permissionf("not a member")
	wrapped := fmt.Errorf("resolve chat: %w", inner)

	e, ok := As(wrapped)
	if !ok {
		t.Fatalf("expected As to find the tool error")
	}
	if e.Kind != Permission {
		t.Fatalf("expected Permission, got %s", e.Kind)
	}

	if _, ok := As(errors.New("plain")); ok {
		t.Fatalf("plain errors must not match")
	}
}

func TestIsKind(t *testing.T) {
	err := Validationf("bad limit")
	if !IsKind(err, Validation) {
		t.Fatalf("expected Validation match")
	}
	if IsKind(err, Upstream) {
		t.Fatalf("unexpected Upstream match")
	}
	if IsKind(nil, Validation) {
		t.Fatalf("nil must not match any kind")
	}
}

func TestRateLimitedCarriesRetryAfter(t *testing.T) {
	e := RateLimited(17)
	if e.Kind != Upstream || e.Detail != DetailRateLimited {
		t.Fatalf("unexpected classification: %+v", e)
	}
	if e.RetryAfter != 17 {
		t.Fatalf("expected retryAfter 17, got %d", e.RetryAfter)
	}
}

func TestTimeoutIsUpstreamDetail(t *testing.T) {
	e := Timeout("history fetch")
	if e.Kind != Upstream || e.Detail != DetailTimeout {
		t.Fatalf("unexpected classification: %+v", e)
	}
}
