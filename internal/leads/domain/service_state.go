// Package domain provides core business rules for the leads bounded context.
package domain

// terminalPipelineStages are stages where the lead has left the funnel.
var terminalPipelineStages = map[string]bool{
	PipelineStageClosed: true,
	PipelineStageLost:   true,
}

// IsTerminalPipelineStage reports whether the lead's workflow is complete.
func IsTerminalPipelineStage(stage string) bool {
	return terminalPipelineStages[NormalizeStage(stage)]
}

// ValidateStageTransition returns a non-empty reason when moving a lead from
// one stage to another is not allowed. Closed leads may only be reopened into
// an active stage explicitly; nothing moves back to "novo".
func ValidateStageTransition(from, to string) string {
	from, to = NormalizeStage(from), NormalizeStage(to)
	if !IsKnownPipelineStage(to) {
		return "unknown pipeline stage"
	}
	if from == to {
		return ""
	}
	if to == PipelineStageNew && from != "" {
		return "a lead cannot return to the new stage"
	}
	if IsTerminalPipelineStage(from) && IsTerminalPipelineStage(to) {
		return "a finished lead must be reopened before changing outcome"
	}
	return ""
}

// ClearsFollowup reports whether entering stage cancels any scheduled follow-up.
func ClearsFollowup(stage string) bool {
	return IsTerminalPipelineStage(stage)
}
