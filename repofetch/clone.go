// Package repofetch clones a module's source repository into a scoped
// temporary directory so its metadata.json can be read. There is no git
// library used here on purpose: none of the retrieved reference
// implementations depend on one, so this shells out to the system git
// binary the same way they do.
package repofetch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
)

// commitSHA matches a bare 40-character git commit hash, which git clone
// cannot take directly via --branch.
var commitSHA = regexp.MustCompile(`^[0-9a-f]{40}$`)

// Checkout is a cloned repository on disk. Close removes the temporary
// directory; callers MUST defer it immediately after a successful Clone.
type Checkout struct {
	Dir string

	removed bool
}

// Close releases the checkout's temporary directory. Safe to call more
// than once.
func (c *Checkout) Close() error {
	if c == nil || c.removed || c.Dir == "" {
		return nil
	}
	c.removed = true
	return os.RemoveAll(c.Dir)
}

// Clone performs an anonymous shallow clone of url into a new temporary
// directory, optionally checking out ref. On any failure the temporary
// directory is removed before Clone returns, so a caller never has to
// clean up a partial checkout.
func Clone(ctx context.Context, url, ref string) (*Checkout, error) {
	dir, err := os.MkdirTemp("", "puppetdep-repo-")
	if err != nil {
		return nil, fmt.Errorf("repofetch: create temp dir: %w", err)
	}
	checkout := &Checkout{Dir: dir}

	args := []string{"clone", "--depth", "1"}
	if ref != "" && !commitSHA.MatchString(ref) {
		args = append(args, "--branch", ref)
	}
	args = append(args, url, dir)

	if err := runGit(ctx, "", args...); err != nil {
		checkout.Close()
		return nil, fmt.Errorf("repofetch: clone %s: %w", url, err)
	}

	if ref != "" && commitSHA.MatchString(ref) {
		if err := runGit(ctx, dir, "checkout", ref); err != nil {
			checkout.Close()
			return nil, fmt.Errorf("repofetch: checkout %s at %s: %w", url, ref, err)
		}
	}

	return checkout, nil
}

func runGit(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(out))
	}
	return nil
}
