package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOfUnwrapsChain(t *testing.T) {
	inner := New(KindLink, "unknown words not connected", errors.New("fk violation"), map[string]any{"story_id": "x"})
	wrapped := fmt.Errorf("generate story: %w", inner)

	if got := KindOf(wrapped); got != KindLink {
		t.Fatalf("KindOf: want=%s got=%s", KindLink, got)
	}
	if !IsKind(wrapped, KindLink) {
		t.Fatalf("IsKind: expected true for wrapped link error")
	}
}

func TestKindOfPlainError(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != KindUnknown {
		t.Fatalf("KindOf plain error: want=%s got=%s", KindUnknown, got)
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:  http.StatusBadRequest,
		KindAuth:        http.StatusUnauthorized,
		KindJobNotFound: http.StatusNotFound,
		KindGeneration:  http.StatusBadGateway,
		KindJobTimeout:  http.StatusGatewayTimeout,
		KindLink:        http.StatusInternalServerError,
		KindUnknown:     http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := HTTPStatus(kind); got != want {
			t.Fatalf("HTTPStatus(%s): want=%d got=%d", kind, want, got)
		}
	}
}
