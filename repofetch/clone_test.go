package repofetch

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// requireGit skips the test when the system git binary isn't on PATH,
// matching the package's own no-library, shell-out approach: without git
// there is nothing to exercise.
func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available on PATH")
	}
}

// initLocalRepo creates a throwaway local git repository with a single
// commit and metadata.json, usable as a clone source via a file:// path.
func initLocalRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com")
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v: %s", args, err, out)
		}
	}
	run("init", "-b", "main")
	if err := os.WriteFile(filepath.Join(dir, "metadata.json"), []byte(`{"version":"1.0.0","dependencies":[]}`), 0o644); err != nil {
		t.Fatalf("write metadata.json: %v", err)
	}
	run("add", "metadata.json")
	run("commit", "-m", "initial")
	return dir
}

func TestCloneCheckoutOut(t *testing.T) {
	requireGit(t)
	src := initLocalRepo(t)

	checkout, err := Clone(context.Background(), src, "main")
	if err != nil {
		t.Fatalf("Clone: unexpected error: %v", err)
	}
	defer checkout.Close()

	meta, err := ReadMetadata(checkout.Dir)
	if err != nil {
		t.Fatalf("ReadMetadata on clone: unexpected error: %v", err)
	}
	if meta.Version != "1.0.0" {
		t.Errorf("Version = %q, want 1.0.0", meta.Version)
	}
}

func TestCloneCleansUpOnFailure(t *testing.T) {
	requireGit(t)
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)

	_, err := Clone(context.Background(), "/nonexistent/path/to/nowhere.git", "")
	if err == nil {
		t.Fatal("expected an error cloning a nonexistent repository")
	}

	entries, err := os.ReadDir(tmp)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("failed Clone left %d entries in the temp dir, want 0", len(entries))
	}
}

func TestCheckoutCloseIdempotent(t *testing.T) {
	c := &Checkout{Dir: t.TempDir()}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: unexpected error: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close: unexpected error: %v", err)
	}
}
