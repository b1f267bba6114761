// Package gitexec is the GitDriver: the only place in wt that shells out to
// the git binary. Every other package asks gitexec for worktree lists,
// branch/commit metadata, diffs and merge probes instead of invoking
// exec.Command directly.
//
// Two properties make this package distinct from a thin os/exec wrapper:
//
//   - Every call takes a context.Context and is bounded by a package-wide
//     semaphore (WORKTRUNK_MAX_CONCURRENT_COMMANDS, default 32) so a
//     ListCollector fan-out across fifty worktrees can't fork fifty git
//     processes at once and starve the machine.
//   - Batch helpers (branch metadata, ahead/behind counts, commit
//     timestamps) exist specifically so ListCollector's hot path issues one
//     `git for-each-ref`/`git log` invocation instead of one per worktree.
//
// wt shells out to git rather than linking a Go git implementation: it needs
// exact compatibility with the user's git config, credential helpers and
// hooks, which only the real binary guarantees.
package gitexec
