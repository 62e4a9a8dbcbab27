package main

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"cbzsanitize/internal/faults"
	"cbzsanitize/internal/testsupport"
)

func TestSanitizeCommandRewritesInPlace(t *testing.T) {
	base := setupCLIEnv(t)
	archive := filepath.Join(base, "Saga_1234.cbz")
	testsupport.WriteArchive(t, archive,
		testsupport.Member{Name: "Saga/p2_a8f3x.txt", Data: []byte("two")},
		testsupport.Member{Name: "Saga/p1_a8f3x.txt", Data: []byte("one")},
		testsupport.Member{Name: "Saga/p3_a8f3x.txt", Data: []byte("two")},
		testsupport.Member{Name: "__MACOSX/Saga/._p1.txt", Data: []byte("fork")},
	)

	out, _, err := runCLI(t, []string{"sanitize", "--no-progress", archive}, "")
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	requireContains(t, out, "Saga_1234.cbz")
	requireContains(t, out, "ok")

	names := testsupport.Names(testsupport.ReadArchive(t, archive))
	want := []string{"Saga/p001.txt", "Saga/p002.txt"}
	if !slices.Equal(names, want) {
		t.Fatalf("unexpected entries %v, want %v", names, want)
	}
	if _, err := os.Stat(filepath.Join(base, "Saga_1234-orig.cbz")); !os.IsNotExist(err) {
		t.Fatalf("expected no backup without --keep-original, got %v", err)
	}
}

func TestSanitizeCommandOutputDirAndKeepOriginal(t *testing.T) {
	base := setupCLIEnv(t)
	src := filepath.Join(base, "in", "book.cbz")
	testsupport.WriteArchive(t, src, testsupport.Member{Name: "1.txt", Data: []byte("x")})

	outDir := filepath.Join(base, "out")
	if _, _, err := runCLI(t, []string{"sanitize", "--no-progress", "--output-dir", outDir, src}, ""); err != nil {
		t.Fatalf("sanitize --output-dir: %v", err)
	}
	if got := testsupport.Names(testsupport.ReadArchive(t, filepath.Join(outDir, "book.cbz"))); !slices.Equal(got, []string{"001.txt"}) {
		t.Fatalf("unexpected output entries %v", got)
	}
	if got := testsupport.Names(testsupport.ReadArchive(t, src)); !slices.Equal(got, []string{"1.txt"}) {
		t.Fatalf("source should be untouched, got %v", got)
	}

	if _, _, err := runCLI(t, []string{"sanitize", "--no-progress", "--keep-original", src}, ""); err != nil {
		t.Fatalf("sanitize --keep-original: %v", err)
	}
	if got := testsupport.Names(testsupport.ReadArchive(t, filepath.Join(base, "in", "book-orig.cbz"))); !slices.Equal(got, []string{"1.txt"}) {
		t.Fatalf("unexpected backup entries %v", got)
	}
}

func TestSanitizeCommandInvalidArchiveFails(t *testing.T) {
	base := setupCLIEnv(t)
	bad := filepath.Join(base, "bad.cbz")
	good := filepath.Join(base, "good.cbz")
	testsupport.WriteFile(t, bad, []byte("not a zip"))
	testsupport.WriteArchive(t, good, testsupport.Member{Name: "a.txt", Data: []byte("a")})

	out, _, err := runCLI(t, []string{"sanitize", "--no-progress", bad, good}, "")
	if err == nil {
		t.Fatal("expected an error for the invalid archive")
	}
	requireContains(t, err.Error(), "1 of 2 archives failed")
	requireContains(t, out, "failed")
	requireContains(t, out, "corrupt_archive")

	dest := filepath.Join(base, "clean.cbz")
	if _, _, err := runCLI(t, []string{"sanitize", "--no-progress", "-o", dest, bad}, ""); err == nil {
		t.Fatal("expected an error for the invalid archive")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatalf("destination must not exist, got %v", err)
	}
}

func TestSanitizeCommandFlagValidation(t *testing.T) {
	base := setupCLIEnv(t)
	a := filepath.Join(base, "a.cbz")
	b := filepath.Join(base, "b.cbz")
	testsupport.WriteArchive(t, a, testsupport.Member{Name: "x.txt", Data: []byte("x")})
	testsupport.WriteArchive(t, b, testsupport.Member{Name: "x.txt", Data: []byte("x")})

	_, _, err := runCLI(t, []string{"sanitize", "-o", filepath.Join(base, "c.cbz"), a, b}, "")
	if err == nil {
		t.Fatal("expected --output with two inputs to fail")
	}
	requireContains(t, err.Error(), "exactly one archive")

	_, _, err = runCLI(t, []string{"sanitize", "--quality", "0", a}, "")
	if !errors.Is(err, faults.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	requireContains(t, err.Error(), "transcode.quality")
}

func TestSanitizeCommandRejectsSharedDestination(t *testing.T) {
	base := setupCLIEnv(t)
	first := filepath.Join(base, "a", "book.cbz")
	second := filepath.Join(base, "b", "book.cbz")
	testsupport.WriteArchive(t, first, testsupport.Member{Name: "from_a.txt", Data: []byte("a")})
	testsupport.WriteArchive(t, second, testsupport.Member{Name: "from_b.txt", Data: []byte("b")})

	outDir := filepath.Join(base, "out")
	_, _, err := runCLI(t, []string{"sanitize", "--no-progress", "--output-dir", outDir, first, second}, "")
	if err == nil {
		t.Fatal("expected inputs sharing a base name to be rejected")
	}
	requireContains(t, err.Error(), "would both be written to")
	if _, err := os.Stat(filepath.Join(outDir, "book.cbz")); !os.IsNotExist(err) {
		t.Fatalf("nothing should be written, got %v", err)
	}

	_, _, err = runCLI(t, []string{"sanitize", "--no-progress", first, first}, "")
	if err == nil {
		t.Fatal("expected a repeated input to be rejected")
	}
}

func TestSanitizeCommandDryRun(t *testing.T) {
	base := setupCLIEnv(t)
	archive := filepath.Join(base, "book.cbz")
	testsupport.WriteArchive(t, archive,
		testsupport.Member{Name: "a.txt", Data: []byte("same")},
		testsupport.Member{Name: "b.txt", Data: []byte("same")},
	)
	before, err := os.ReadFile(archive)
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}

	out, _, err := runCLI(t, []string{"sanitize", "--no-progress", "--dry-run", archive}, "")
	if err != nil {
		t.Fatalf("sanitize --dry-run: %v", err)
	}
	requireContains(t, out, "dry run")
	after, err := os.ReadFile(archive)
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	if string(before) != string(after) {
		t.Fatal("dry run modified the archive")
	}
}

func TestSanitizeCommandJSONLogs(t *testing.T) {
	base := setupCLIEnv(t)
	archive := filepath.Join(base, "book.cbz")
	testsupport.WriteArchive(t, archive, testsupport.Member{Name: "a.txt", Data: []byte("a")})

	_, stderr, err := runCLI(t, []string{"--log-format", "json", "sanitize", "--no-progress", archive}, "")
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	requireContains(t, stderr, `"event_type":"sanitize_complete"`)
	requireContains(t, stderr, `"run_id":`)
}

func TestScanCommand(t *testing.T) {
	base := setupCLIEnv(t)
	archive := filepath.Join(base, "book.cbz")
	bad := filepath.Join(base, "bad.cbz")
	testsupport.WriteArchive(t, archive,
		testsupport.Member{Name: "big.jpg", Data: make([]byte, 3000)},
		testsupport.Member{Name: "copy.jpg", Data: make([]byte, 3000)},
		testsupport.Member{Name: "small.jpg", Data: []byte("s")},
	)
	testsupport.WriteFile(t, bad, []byte("nope"))

	out, _, err := runCLI(t, []string{"scan", "--threshold", "2 KB", archive, bad}, "")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	requireContains(t, out, "book.cbz")
	requireContains(t, out, "2 above 2.0 kB")
	requireContains(t, out, "identical: big.jpg, copy.jpg")
	requireContains(t, out, "not a valid archive")
}

func TestRenameCommand(t *testing.T) {
	base := setupCLIEnv(t)
	src := filepath.Join(base, "foobar_1234.cbz")
	blocked := filepath.Join(base, "taken_99.cbz")
	testsupport.WriteFile(t, src, []byte("a"))
	testsupport.WriteFile(t, blocked, []byte("b"))
	testsupport.WriteFile(t, filepath.Join(base, "taken.cbz"), []byte("existing"))
	plain := filepath.Join(base, "notes.txt")
	testsupport.WriteFile(t, plain, []byte("c"))

	out, _, err := runCLI(t, []string{"rename", src, blocked, plain}, "")
	if err == nil {
		t.Fatal("expected an error for the blocked rename")
	}
	requireContains(t, out, "renamed to "+filepath.Join(base, "foobar.cbz"))
	requireContains(t, out, "already exists")
	requireContains(t, out, "not a .cbz file")

	if _, err := os.Stat(filepath.Join(base, "foobar.cbz")); err != nil {
		t.Fatalf("expected renamed archive: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("expected old name to be gone, got %v", err)
	}
	data, err := os.ReadFile(filepath.Join(base, "taken.cbz"))
	if err != nil || string(data) != "existing" {
		t.Fatalf("existing destination must be untouched, got %q (%v)", data, err)
	}
}

func TestConfigInitValidateShow(t *testing.T) {
	base := setupCLIEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, "")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "defaults were used")
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(base, "conf", "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}

	out, _, err = runCLI(t, []string{"config", "show"}, target)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "max_dimension = 2000")
}

func TestInvalidConfigFileFails(t *testing.T) {
	base := setupCLIEnv(t)
	path := filepath.Join(base, "bad.toml")
	testsupport.WriteFile(t, path, []byte("[transcode]\nquality = 500\n"))

	_, _, err := runCLI(t, []string{"config", "validate"}, path)
	if !errors.Is(err, faults.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", filepath.Join(base, "new.toml")}, path); err != nil {
		t.Fatalf("config init must not load the broken config: %v", err)
	}
}
