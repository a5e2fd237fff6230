package transport

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OptionalUUID distinguishes an absent JSON field from an explicit null or
// empty string, which clears the value.
type OptionalUUID struct {
	Value *uuid.UUID
	Set   bool
}

func (o OptionalUUID) IsZero() bool {
	return !o.Set
}

// Clears reports whether the field was sent to remove the current value.
func (o OptionalUUID) Clears() bool {
	return o.Set && o.Value == nil
}

func (o *OptionalUUID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		o.Value = nil
		return nil
	}

	parsed, err := uuid.Parse(raw)
	if err != nil {
		return err
	}
	o.Value = &parsed
	return nil
}

// LenientTime decodes an RFC 3339 timestamp and degrades anything else
// (null, empty, malformed, non-string) to nil instead of failing the request.
// Aging treats a nil last interaction as "now".
type LenientTime struct {
	Value *time.Time
}

func (l LenientTime) IsZero() bool {
	return l.Value == nil
}

func (l LenientTime) MarshalJSON() ([]byte, error) {
	if l.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*l.Value)
}

func (l *LenientTime) UnmarshalJSON(data []byte) error {
	l.Value = nil
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	l.Value = &parsed
	return nil
}
