package aging

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// qualifyingStages are the pipeline stages in which a lead is actively being
// worked and therefore ages. Keys are lowercase NFC.
var qualifyingStages = map[string]struct{}{
	"atendimento":    {},
	"documentação":   {},
	"em atendimento": {},
}

// NormalizeStage lowercases and NFC-composes a stage label so that
// "Documentação" typed on different keyboards compares equal. Surrounding
// whitespace is kept: " atendimento" is not a qualifying stage.
func NormalizeStage(stage string) string {
	return norm.NFC.String(strings.ToLower(stage))
}

// QualifiesForAging reports whether stage (case-insensitive) is one of the
// stages aging applies to.
func QualifiesForAging(stage string) bool {
	_, ok := qualifyingStages[NormalizeStage(stage)]
	return ok
}

// QualifyingStages returns the normalized qualifying stage labels.
func QualifyingStages() []string {
	return []string{"atendimento", "documentação", "em atendimento"}
}
