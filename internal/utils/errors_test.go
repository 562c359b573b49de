package utils

import (
	"errors"
	"testing"
)

func TestAppErrorUnwrap(t *testing.T) {
	err := NewAppError("summarize", "/tmp/missing", ErrBundleNotFound)
	if !errors.Is(err, ErrBundleNotFound) {
		t.Fatalf("expected errors.Is to match sentinel")
	}
	if got := err.Error(); got != "summarize: /tmp/missing: bundle directory not found" {
		t.Fatalf("unexpected message %q", got)
	}
	if !IsNoData(err) {
		t.Fatalf("expected no-data classification")
	}
	if IsNoData(errors.New("boom")) {
		t.Fatalf("generic errors are not no-data")
	}
}
