package validator

import (
	"strings"
	"testing"
)

type stageRequest struct {
	Stage string `json:"stage" validate:"required,known_stage"`
	Name  string `json:"name" validate:"required,max=5"`
}

func TestRegisterStringRule(t *testing.T) {
	v := New()
	if err := v.RegisterStringRule("known_stage", func(s string) bool {
		return strings.EqualFold(s, "atendimento")
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := v.Struct(stageRequest{Stage: "Atendimento", Name: "Ana"}); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}

	err := v.Struct(stageRequest{Stage: "limbo", Name: "Bartholomew"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	fields := FieldErrors(err)
	if fields["stage"] != "known_stage" {
		t.Fatalf("expected stage to fail known_stage, got %v", fields)
	}
	if fields["name"] != "max" {
		t.Fatalf("expected name to fail max, got %v", fields)
	}
}

func TestFieldErrorsIgnoresOtherErrors(t *testing.T) {
	if FieldErrors(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}
