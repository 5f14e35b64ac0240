package ipcerr

import (
	"errors"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	err := New(KindRouteNotFound, "no handler for echo")
	want := "RouteNotFound: no handler for echo"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(KindParseError, "bad uri", cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestIs(t *testing.T) {
	err := New(KindUnauthorized, "missing token")
	if !Is(err, KindUnauthorized) {
		t.Error("Is should match the same kind")
	}
	if Is(err, KindParseError) {
		t.Error("Is should not match a different kind")
	}
}
