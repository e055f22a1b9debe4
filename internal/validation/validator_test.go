// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package validation

import (
	"strings"
	"testing"
)

type params struct {
	Threshold float64 `koanf:"threshold" validate:"gte=0,lte=1"`
	Vector    int     `koanf:"vector_size" validate:"gte=1"`
	StartDate string  `json:"start_date" validate:"required,isodate"`
	Driver    string  `validate:"oneof=duckdb mysql"`
	Model     string  `json:"model_version" validate:"omitempty,modelversion"`
}

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 == nil {
		t.Fatal("GetValidator() should not return nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same instance")
	}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		input     params
		wantField string
		wantTag   string
	}{
		{
			name:  "valid",
			input: params{Threshold: 0.5, Vector: 10, StartDate: "2018-09-09", Driver: "duckdb"},
		},
		{
			name:      "threshold above one",
			input:     params{Threshold: 1.5, Vector: 10, StartDate: "2018-09-09", Driver: "duckdb"},
			wantField: "threshold",
			wantTag:   "lte",
		},
		{
			name:      "vector size zero",
			input:     params{Threshold: 0.5, Vector: 0, StartDate: "2018-09-09", Driver: "mysql"},
			wantField: "vector_size",
			wantTag:   "gte",
		},
		{
			name:      "bad date",
			input:     params{Threshold: 0.5, Vector: 1, StartDate: "09/09/2018", Driver: "duckdb"},
			wantField: "start_date",
			wantTag:   "isodate",
		},
		{
			name:      "unknown driver",
			input:     params{Threshold: 0.5, Vector: 1, StartDate: "2018-09-09", Driver: "sqlite"},
			wantField: "Driver",
			wantTag:   "oneof",
		},
		{
			name:  "dotted model version",
			input: params{Threshold: 0.5, Vector: 1, StartDate: "2018-09-09", Driver: "duckdb", Model: "svd_v1.2-rc"},
		},
		{
			name:      "model version with slash",
			input:     params{Threshold: 0.5, Vector: 1, StartDate: "2018-09-09", Driver: "duckdb", Model: "svd/v2"},
			wantField: "model_version",
			wantTag:   "modelversion",
		},
		{
			name:      "hidden model version",
			input:     params{Threshold: 0.5, Vector: 1, StartDate: "2018-09-09", Driver: "duckdb", Model: ".svd"},
			wantField: "model_version",
			wantTag:   "modelversion",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if tt.wantTag == "" {
				if err != nil {
					t.Fatalf("ValidateStruct() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("ValidateStruct() expected error")
			}
			fe := err.Errors()[0]
			if fe.Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", fe.Field(), tt.wantField)
			}
			if fe.Tag() != tt.wantTag {
				t.Errorf("Tag() = %q, want %q", fe.Tag(), tt.wantTag)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	t.Run("single error carries field details", func(t *testing.T) {
		err := ValidateStruct(&params{Threshold: 2, Vector: 1, StartDate: "2018-09-09", Driver: "duckdb"})
		apiErr := err.ToAPIError()
		if apiErr.Code != "VALIDATION_ERROR" {
			t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
		}
		if apiErr.Details["field"] != "threshold" {
			t.Errorf("Details[field] = %v, want threshold", apiErr.Details["field"])
		}
		if !strings.Contains(apiErr.Message, "less than or equal to 1") {
			t.Errorf("unexpected message %q", apiErr.Message)
		}
	})

	t.Run("multiple errors list every field", func(t *testing.T) {
		err := ValidateStruct(&params{Threshold: -1, Vector: 0, StartDate: "", Driver: "x"})
		apiErr := err.ToAPIError()
		fields, ok := apiErr.Details["fields"].([]map[string]interface{})
		if !ok {
			t.Fatalf("Details[fields] has type %T", apiErr.Details["fields"])
		}
		if len(fields) != 4 {
			t.Errorf("got %d field errors, want 4", len(fields))
		}
	})
}

func TestErrorMessages(t *testing.T) {
	err := ValidateStruct(&params{Threshold: 0.1, Vector: 1, StartDate: "tomorrow", Driver: "duckdb"})
	if err == nil {
		t.Fatal("expected error")
	}
	want := "start_date must be a date in YYYY-MM-DD format"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIsModelVersion(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"svd-1", true},
		{"svd_v1.2", true},
		{"2018", true},
		{"", false},
		{".svd", false},
		{"-svd", false},
		{"svd/v2", false},
		{`svd\v2`, false},
		{"svd v2", false},
		{"../svd", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsModelVersion(tt.input); got != tt.want {
				t.Errorf("IsModelVersion(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
