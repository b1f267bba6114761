// Package gitrepo wraps a single repository path and resolves the facts
// every pipeline needs once per invocation: the default branch, the primary
// worktree, the previous-branch history for `switch -`, a stable project
// identifier, and one-shot hints stored in git config.
//
// A Repository is constructed once per command and shared by reference for
// the command's duration. Its caches are immutable once populated and
// scoped to the instance, not process-global state, so two Repository
// values for two different repos (or two test cases in the same process)
// never interfere.
package gitrepo
