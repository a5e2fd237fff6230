package transport

import (
	"bighome_hub/internal/leads/aging"
	"bighome_hub/internal/leads/domain"
	"bighome_hub/platform/validator"
)

// RegisterValidations installs the custom tags used by the lead DTOs.
func RegisterValidations(val *validator.Validator) error {
	if err := val.RegisterStringRule("pipeline_stage", domain.IsKnownPipelineStage); err != nil {
		return err
	}
	return val.RegisterStringRule("aging_band", func(s string) bool {
		_, ok := aging.ParseBand(s)
		return ok
	})
}
