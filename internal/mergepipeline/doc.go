// Package mergepipeline orchestrates the deterministic merge sequence:
// commit/squash, rebase, pre-merge hooks, a stash guard over the target
// worktree, fast-forward push, worktree removal, and post-remove/post-merge
// hooks.
//
// Grounded on the teacher's internal/git/stash.go (stash push/pop) and
// internal/git/check.go (ancestor-based fast-forward checks), generalized
// into the full staged pipeline with a backup ref and scoped stash guard
// the spec requires.
package mergepipeline
