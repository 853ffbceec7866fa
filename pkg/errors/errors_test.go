package errors

import (
	"fmt"
	"testing"
)

func TestWrapKeepsCode(t *testing.T) {
	err := Wrap(ErrPermissionDenied, "open camera")
	if GetCode(err) != CodePermissionDenied {
		t.Fatalf("code %q", GetCode(err))
	}
	if !IsPermissionDenied(err) {
		t.Fatalf("wrapped sentinel should still match")
	}
	if err.Error() != "open camera: permission denied" {
		t.Fatalf("message %q", err.Error())
	}
}

func TestWrapWithCodeMatchesSentinel(t *testing.T) {
	err := WrapWithCode(fmt.Errorf("disk full"), CodeEncodeFailure, "encode frame")
	if !IsEncodeFailure(err) {
		t.Fatalf("coded error should match its sentinel")
	}
	if IsDecodeFailure(err) {
		t.Fatalf("codes must not cross-match")
	}
	if GetMessage(err) != "encode frame" {
		t.Fatalf("message %q", GetMessage(err))
	}
}

func TestUncodedErrors(t *testing.T) {
	err := Wrap(New("boom"), "context")
	if GetCode(err) != "" {
		t.Fatalf("unexpected code %q", GetCode(err))
	}
	if Is(err, ErrNotFound) {
		t.Fatalf("uncoded error matched a sentinel")
	}
	if Wrap(nil, "x") != nil || WrapWithCode(nil, CodeNotFound, "x") != nil {
		t.Fatalf("wrapping nil should stay nil")
	}
}

func TestGetCodeSkipsEmptyLayers(t *testing.T) {
	inner := Wrapf(ErrNotFound, "clip %s", "a")
	outer := &Error{Message: "lookup", Err: inner}
	if GetCode(outer) != CodeNotFound || !IsNotFound(outer) {
		t.Fatalf("code should come from the inner layer")
	}
}
