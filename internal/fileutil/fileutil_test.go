package fileutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCopyFileVerified(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")

	content := []byte("verified copy content")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CopyFileVerified(src, dst, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
}

func TestCopyFileVerified_MissingSource(t *testing.T) {
	dir := t.TempDir()
	err := CopyFileVerified(filepath.Join(dir, "nonexistent"), filepath.Join(dir, "dst.bin"), 0o644)
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestCopyFileVerified_RefusesExistingDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	if err := os.WriteFile(src, []byte("new"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dst, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CopyFileVerified(src, dst, 0o644); err == nil {
		t.Fatal("expected error for existing destination")
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "old" {
		t.Fatalf("destination was modified: %q", got)
	}
}

func TestLinkOrCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "book.cbz")
	dst := filepath.Join(dir, "book-orig.cbz")
	if err := os.WriteFile(src, []byte("zip bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := LinkOrCopy(src, dst); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "zip bytes" {
		t.Fatalf("unexpected backup content %q", got)
	}
}

func TestEnsureSpace(t *testing.T) {
	dir := t.TempDir()
	if err := EnsureSpace(dir, 1); err != nil {
		t.Fatalf("expected 1 byte to fit: %v", err)
	}
	avail, ok, err := AvailableBytes(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || avail >= 1<<62 {
		t.Skip("free space query unavailable")
	}
	err = EnsureSpace(dir, int64(avail)+1<<40)
	if err == nil || !strings.Contains(err.Error(), "insufficient space") {
		t.Fatalf("expected insufficient space error, got %v", err)
	}
}
