// Package hooks implements the HookEngine: resolving configured lifecycle
// hooks, gating project-sourced commands behind ApprovalStore, expanding
// their templates, and running them with the per-phase execution policy
// (background, blocking fail-fast, or blocking warn-on-failure).
//
// Hook resolution and template expansion are adapted from the teacher's
// hand-rolled {placeholder} substitution in hooks.go; execution policy,
// approval gating and background log rotation are new, grounded on
// spec's phase table and the teacher's context-carried Logger shape.
package hooks
