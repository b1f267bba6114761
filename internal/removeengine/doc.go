// Package removeengine classifies whether a branch is safe to delete and
// removes worktrees, optionally in the background with output written to a
// log file that each run recreates.
//
// Grounded on the teacher's internal/git check.go (ancestor/diff-based
// merge detection) and cmd/wt/prune.go's worktree-removal flow, generalized
// to the five-step safety classification and background removal the spec
// requires.
package removeengine
