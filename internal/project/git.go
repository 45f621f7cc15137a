// Package project inspects the directory a run is launched from.
package project

import (
	"fmt"
	"os/exec"
	"strings"
)

// GitInfo is the revision of the repository holding a pipeline document,
// recorded so a run can be traced back to the exact commands it used.
type GitInfo struct {
	Branch string `json:"branch"`
	Commit string `json:"commit"`
	Dirty  bool   `json:"dirty,omitempty"`
}

// CollectGitInfo reads branch, commit and dirty state of the repository
// containing dir. It fails when git is missing or dir is not tracked.
func CollectGitInfo(dir string) (*GitInfo, error) {
	branch, err := gitOutput(dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return nil, fmt.Errorf("getting git branch: %w", err)
	}

	commit, err := gitOutput(dir, "rev-parse", "--short", "HEAD")
	if err != nil {
		return nil, fmt.Errorf("getting git commit: %w", err)
	}

	status, err := gitOutput(dir, "status", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("checking git status: %w", err)
	}

	return &GitInfo{
		Branch: branch,
		Commit: commit,
		Dirty:  status != "",
	}, nil
}

func gitOutput(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
