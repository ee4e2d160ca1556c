package harness

import (
	"fmt"

	git "github.com/go-git/go-git/v5"
)

// GitInfo records where a run happened, enough to trace a report back to
// a commit.
type GitInfo struct {
	Branch string `json:"branch,omitempty" yaml:"branch,omitempty" pretty:"label=Branch,style=text-blue-600,omitempty"`
	Commit string `json:"commit,omitempty" yaml:"commit,omitempty" pretty:"label=Commit,style=text-gray-500,omitempty"`
	Dirty  bool   `json:"dirty,omitempty" yaml:"dirty,omitempty" pretty:"label=Dirty,omitempty"`
}

// CollectGitInfo reads branch, commit and worktree state for the
// repository containing workDir. Outside a repository it returns nil,
// provenance is optional.
func CollectGitInfo(workDir string) *GitInfo {
	repo, err := git.PlainOpenWithOptions(workDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil
	}

	head, err := repo.Head()
	if err != nil {
		return nil
	}

	info := &GitInfo{Commit: head.Hash().String()}
	if head.Name().IsBranch() {
		info.Branch = head.Name().Short()
	}

	if worktree, err := repo.Worktree(); err == nil {
		if status, err := worktree.Status(); err == nil {
			info.Dirty = !status.IsClean()
		}
	}
	return info
}

func (g GitInfo) String() string {
	commit := g.Commit
	if len(commit) > 8 {
		commit = commit[:8]
	}
	s := commit
	if g.Branch != "" {
		s = fmt.Sprintf("%s@%s", g.Branch, commit)
	}
	if g.Dirty {
		s += " (dirty)"
	}
	return s
}
