package check

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
	"github.com/rs/zerolog"
)

// TargetBranchEnv overrides the branch changes are computed against.
const TargetBranchEnv = "BUILDCHECK_TARGET_BRANCH"

// ciTargetBranchEnvs are consulted in order when no branch is configured.
var ciTargetBranchEnvs = []string{
	"CI_MERGE_REQUEST_TARGET_BRANCH_NAME",
	"GITHUB_BASE_REF",
	"BITBUCKET_PR_DESTINATION_BRANCH",
	"CHANGE_TARGET",
	"SYSTEM_PULLREQUEST_TARGETBRANCH",
}

// Delta computes the set of files changed relative to a baseline branch.
type Delta struct {
	RootDir      string
	TargetBranch string
	Log          zerolog.Logger
}

// ChangedFiles returns root-relative slash paths of uncommitted changes plus
// changes committed since the target branch. A nil set means the baseline
// could not be determined and every file should be checked.
func (d *Delta) ChangedFiles(ctx context.Context) (map[string]bool, error) {
	repo, err := git.PlainOpen(d.RootDir)
	if err != nil {
		d.Log.Debug().Msg("not a git repository, checking all files")
		return nil, nil
	}

	wt, err := d.worktreeChanges(repo)
	if err != nil {
		d.Log.Debug().Err(err).Msg("worktree status failed, checking all files")
		return nil, nil
	}
	branch, err := d.branchChanges(ctx, repo)
	if err != nil {
		d.Log.Debug().Err(err).Msg("branch diff failed, checking all files")
		return nil, nil
	}

	changed := make(map[string]bool, len(wt)+len(branch))
	for p := range wt {
		changed[p] = true
	}
	for p := range branch {
		changed[p] = true
	}
	d.Log.Debug().Int("files", len(changed)).Msg("delta computed")
	return changed, nil
}

func (d *Delta) worktreeChanges(repo *git.Repository) (map[string]bool, error) {
	wt, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	status, err := wt.Status()
	if err != nil {
		return nil, err
	}
	changed := make(map[string]bool)
	for path, s := range status {
		if s.Worktree == git.Unmodified && s.Staging == git.Unmodified {
			continue
		}
		changed[path] = true
	}
	return changed, nil
}

func (d *Delta) branchChanges(ctx context.Context, repo *git.Repository) (map[string]bool, error) {
	target := d.targetBranch(repo)
	if target == "" {
		return nil, nil
	}

	headRef, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolving HEAD: %w", err)
	}
	head, err := repo.CommitObject(headRef.Hash())
	if err != nil {
		return nil, fmt.Errorf("loading HEAD commit: %w", err)
	}

	targetRef, err := repo.Reference(plumbing.NewBranchReferenceName(target), true)
	if err != nil {
		targetRef, err = repo.Reference(plumbing.NewRemoteReferenceName("origin", target), true)
		if err != nil {
			d.Log.Debug().Str("branch", target).Msg("target branch not found")
			return nil, nil
		}
	}
	base, err := repo.CommitObject(targetRef.Hash())
	if err != nil {
		return nil, fmt.Errorf("loading %s commit: %w", target, err)
	}

	// On the target branch itself, check the last commit.
	if head.Hash == base.Hash {
		if head.NumParents() == 0 {
			return nil, nil
		}
		if base, err = head.Parent(0); err != nil {
			return nil, nil
		}
	}

	headTree, err := head.Tree()
	if err != nil {
		return nil, err
	}
	baseTree, err := base.Tree()
	if err != nil {
		return nil, err
	}
	changes, err := object.DiffTreeWithOptions(ctx, baseTree, headTree, &object.DiffTreeOptions{})
	if err != nil {
		return nil, fmt.Errorf("diffing trees: %w", err)
	}

	changed := make(map[string]bool, len(changes))
	for _, c := range changes {
		if name := changeName(c); name != "" {
			changed[name] = true
		}
	}
	return changed, nil
}

func (d *Delta) targetBranch(repo *git.Repository) string {
	if b := os.Getenv(TargetBranchEnv); b != "" {
		return b
	}
	if d.TargetBranch != "" {
		return d.TargetBranch
	}
	for _, v := range ciTargetBranchEnvs {
		if b := os.Getenv(v); b != "" {
			return b
		}
	}
	if b := defaultBranch(repo); b != "" {
		return b
	}
	return "main"
}

// defaultBranch reads origin/HEAD without resolving it.
func defaultBranch(repo *git.Repository) string {
	ref, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", "HEAD"), false)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(ref.Target().String(), "refs/remotes/origin/")
}

func changeName(c *object.Change) string {
	action, err := c.Action()
	if err != nil {
		return ""
	}
	switch action {
	case merkletrie.Insert, merkletrie.Modify:
		return c.To.Name
	case merkletrie.Delete:
		return c.From.Name
	}
	return ""
}
