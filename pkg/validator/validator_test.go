package validator

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestValidateStruct(t *testing.T) {
	type Item struct {
		Question string  `json:"question" validate:"required"`
		Score    float64 `json:"score" validate:"gte=0,lte=100"`
	}
	type Payload struct {
		Reason string `json:"reason" validate:"required,oneof=user_exit other"`
		Items  []Item `json:"items" validate:"dive"`
	}

	tests := []struct {
		name    string
		input   Payload
		wantErr string
	}{
		{
			name:  "valid struct",
			input: Payload{Reason: "user_exit", Items: []Item{{Question: "q", Score: 50}}},
		},
		{
			name:    "missing required field",
			input:   Payload{},
			wantErr: "reason is required",
		},
		{
			name:    "value outside enum",
			input:   Payload{Reason: "bored"},
			wantErr: "reason must be one of [user_exit other]",
		},
		{
			name:    "nested element out of range",
			input:   Payload{Reason: "other", Items: []Item{{Question: "q", Score: 101}}},
			wantErr: "items[0].score must be at most 100",
		},
		{
			name:    "nested element missing question",
			input:   Payload{Reason: "other", Items: []Item{{Score: 1}}},
			wantErr: "items[0].question is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateStruct() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateStruct() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateStruct() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateStructRejectsNonStruct(t *testing.T) {
	if err := ValidateStruct("nope"); err == nil {
		t.Error("expected error for non-struct input")
	}
}

func TestValidateRequired(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		expected bool
	}{
		{"valid value", "name", "John", true},
		{"empty value", "name", "", false},
		{"whitespace only", "name", "   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequired(tt.field, tt.value)
			isValid := err == nil
			if isValid != tt.expected {
				t.Errorf("ValidateRequired(%q, %q) = %v, expected %v", tt.field, tt.value, isValid, tt.expected)
			}
		})
	}
}

func TestParseUUID(t *testing.T) {
	id := uuid.New()

	got, err := ParseUUID("jobId", " "+id.String()+" ")
	if err != nil || got != id {
		t.Errorf("ParseUUID() = %v, %v", got, err)
	}

	for _, bad := range []string{"", "42", uuid.Nil.String()} {
		if _, err := ParseUUID("jobId", bad); err == nil {
			t.Errorf("ParseUUID(%q) expected error", bad)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"normal string", "hello", "hello"},
		{"with whitespace", "  hello  ", "hello"},
		{"with null bytes", "hel\x00lo", "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := SanitizeString(tt.input); result != tt.expected {
				t.Errorf("SanitizeString(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSanitizeStrings(t *testing.T) {
	got := SanitizeStrings([]string{" clarity ", "", "\x00", "depth"})
	if len(got) != 2 || got[0] != "clarity" || got[1] != "depth" {
		t.Errorf("SanitizeStrings() = %v", got)
	}
}
