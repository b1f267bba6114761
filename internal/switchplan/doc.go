// Package switchplan implements SwitchPlanner: resolving a switch target
// (branch name, pr:N, mr:N, the "-" previous-worktree sigil), validating
// preconditions, and planning/executing worktree creation or reuse.
//
// Grounded on the teacher's cmd/wt/checkout.go (createWorktree,
// resolveBaseRef) and internal/forge (github.go/gitlab.go), generalized to
// the RefProvider interface in internal/forge/refprovider.go so fork PRs/MRs
// are supported instead of rejected.
package switchplan
