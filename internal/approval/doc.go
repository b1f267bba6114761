// Package approval implements the ApprovalStore: per-project persistence of
// which expanded hook commands the user has already approved, so a hook
// that has run unchanged before doesn't re-prompt on every invocation.
//
// Approvals are keyed by project_id (from gitrepo.Repository.ProjectIdentifier)
// and store the normalized command template verbatim — not a hash — so
// `wt config show` and manual edits of approvals.toml stay human readable.
// Persistence is guarded by a real cross-process file lock
// (github.com/gofrs/flock), replacing the teacher's syscall.Flock-based
// internal/cache/lock.go with something that also works on Windows.
package approval
