package domain

import (
	"strings"

	"bighome_hub/internal/leads/aging"
)

const (
	PipelineStageNew           = "novo"
	PipelineStageAttending     = "atendimento"
	PipelineStageInAttendance  = "em atendimento"
	PipelineStageDocumentation = "documentação"
	PipelineStageProposal      = "proposta"
	PipelineStageClosed        = "fechado"
	PipelineStageLost          = "perdido"
)

// PipelineStages lists known stages in pipeline order.
var PipelineStages = []string{
	PipelineStageNew,
	PipelineStageAttending,
	PipelineStageInAttendance,
	PipelineStageDocumentation,
	PipelineStageProposal,
	PipelineStageClosed,
	PipelineStageLost,
}

var knownPipelineStages = func() map[string]struct{} {
	m := make(map[string]struct{}, len(PipelineStages))
	for _, s := range PipelineStages {
		m[s] = struct{}{}
	}
	return m
}()

// NormalizeStage returns the canonical spelling of a stage typed by a user,
// the form stored in leads.stage.
func NormalizeStage(stage string) string {
	return aging.NormalizeStage(strings.TrimSpace(stage))
}

// IsKnownPipelineStage reports whether stage (case-insensitive) is a pipeline stage.
func IsKnownPipelineStage(stage string) bool {
	_, ok := knownPipelineStages[NormalizeStage(stage)]
	return ok
}
