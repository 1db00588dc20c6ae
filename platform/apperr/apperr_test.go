package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusByKind(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindNotFound, http.StatusNotFound},
		{KindValidation, http.StatusBadRequest},
		{KindBadRequest, http.StatusBadRequest},
		{KindConflict, http.StatusConflict},
		{KindRateLimited, http.StatusTooManyRequests},
		{KindInternal, http.StatusInternalServerError},
		{KindUnavailable, http.StatusBadGateway},
		{KindUnknown, http.StatusBadRequest},
	}

	for _, tc := range cases {
		if got := New(tc.kind, "x").HTTPStatus(); got != tc.want {
			t.Errorf("kind %d: got status %d, want %d", tc.kind, got, tc.want)
		}
	}
}

func TestGetKindFollowsWrappedChain(t *testing.T) {
	base := Unavailable("search call failed", errors.New("connection refused"))
	wrapped := fmt.Errorf("client: %w", base)

	if !Is(wrapped, KindUnavailable) {
		t.Fatalf("expected wrapped error to report KindUnavailable, got %d", GetKind(wrapped))
	}
	if GetKind(errors.New("plain")) != KindUnknown {
		t.Fatal("expected plain error to be KindUnknown")
	}
}

func TestErrorMessageIncludesOpAndCause(t *testing.T) {
	err := Wrap(KindInternal, "lookup failed", errors.New("disk")).WithOp("postalcode.Search")

	want := "postalcode.Search: lookup failed: disk"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}
