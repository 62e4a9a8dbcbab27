package faults_test

import (
	"errors"
	"strings"
	"testing"

	"cbzsanitize/internal/faults"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := faults.Wrap(faults.ErrCorruptArchive, "lister", "open", "not a zip", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, faults.ErrCorruptArchive) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"lister", "open", "not a zip"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := faults.Wrap(faults.ErrWrite, "", "", "", nil)
	if !errors.Is(err, faults.ErrWrite) {
		t.Fatalf("expected write marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "sanitize failure") {
		t.Fatalf("expected default detail, got %q", err.Error())
	}
}

func TestIsFatal(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"decode", faults.Wrap(faults.ErrDecodeFailure, "transcode", "decode", "", errors.New("bad")), false},
		{"corrupt", faults.Wrap(faults.ErrCorruptArchive, "lister", "open", "", nil), true},
		{"write", faults.Wrap(faults.ErrWrite, "writer", "rename", "", nil), true},
		{"configuration", faults.Wrap(faults.ErrConfiguration, "cli", "flags", "", nil), true},
		{"plain", errors.New("other"), true},
	}
	for _, tc := range cases {
		if got := faults.IsFatal(tc.err); got != tc.want {
			t.Fatalf("%s: IsFatal = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestKind(t *testing.T) {
	if got := faults.Kind(faults.Wrap(faults.ErrWrite, "writer", "", "", nil)); got != "write_error" {
		t.Fatalf("unexpected kind %q", got)
	}
	if got := faults.Kind(faults.Wrap(faults.ErrConfiguration, "cli", "flags", "", nil)); got != "configuration" {
		t.Fatalf("unexpected kind %q", got)
	}
	if got := faults.Kind(nil); got != "" {
		t.Fatalf("expected empty kind for nil, got %q", got)
	}
}
