package hooks

// Phase identifies a lifecycle point hooks can be bound to.
type Phase string

const (
	PhasePreSwitch   Phase = "pre-switch"
	PhasePostCreate  Phase = "post-create"
	PhasePostStart   Phase = "post-start"
	PhasePostSwitch  Phase = "post-switch"
	PhasePreCommit   Phase = "pre-commit"
	PhasePreMerge    Phase = "pre-merge"
	PhasePostMerge   Phase = "post-merge"
	PhasePreRemove   Phase = "pre-remove"
	PhasePostRemove  Phase = "post-remove"
)

// Policy is the execution policy for a phase.
type Policy int

const (
	// PolicyFailFast runs the hook blocking, streaming output; the first
	// non-zero exit aborts the pipeline.
	PolicyFailFast Policy = iota
	// PolicyWarnOnFailure runs the hook blocking, streaming output; a
	// non-zero exit is reported but does not abort the pipeline.
	PolicyWarnOnFailure
	// PolicyBackground spawns the hook detached (own session/process
	// group), redirecting output to a log file; the pipeline does not
	// wait for it and never observes its exit code.
	PolicyBackground
)

// PolicyFor returns the execution policy for phase, per the documented
// per-phase table: PostStart/PostSwitch/PostRemove run in the background;
// PostMerge warns on failure without aborting; every other phase is
// blocking and fail-fast.
func PolicyFor(phase Phase) Policy {
	switch phase {
	case PhasePostStart, PhasePostSwitch, PhasePostRemove:
		return PolicyBackground
	case PhasePostMerge:
		return PolicyWarnOnFailure
	default:
		return PolicyFailFast
	}
}
