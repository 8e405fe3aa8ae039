// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package validation

import (
	"strings"
	"testing"
)

type landmarkRequest struct {
	Name      string  `validate:"required,min=1,max=200"`
	Latitude  float64 `validate:"latitude"`
	Longitude float64 `validate:"longitude"`
	Year      int     `validate:"omitempty,min=1900,max=2200"`
	Kind      string  `validate:"omitempty,oneof=sun_rising sun_setting moon_rising moon_setting"`
}

func TestValidateStructPasses(t *testing.T) {
	req := landmarkRequest{
		Name:      "lakeshore",
		Latitude:  35.5171,
		Longitude: 138.7519,
		Year:      2026,
		Kind:      "sun_setting",
	}
	if err := ValidateStruct(&req); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
}

func TestValidateStructSingleFailure(t *testing.T) {
	req := landmarkRequest{Name: "x", Latitude: 95.0, Longitude: 0}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(err.Errors()) != 1 {
		t.Fatalf("got %d errors, want 1", len(err.Errors()))
	}
	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "latitude") {
		t.Errorf("message %q does not mention latitude", apiErr.Message)
	}
	if apiErr.Details["field"] != "Latitude" {
		t.Errorf("details field = %v, want Latitude", apiErr.Details["field"])
	}
}

func TestValidateStructMultipleFailures(t *testing.T) {
	req := landmarkRequest{Name: "", Latitude: 95, Longitude: -200, Kind: "eclipse"}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(err.Errors()) != 4 {
		t.Fatalf("got %d errors, want 4", len(err.Errors()))
	}
	apiErr := err.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 4 {
		t.Errorf("details fields = %v", apiErr.Details["fields"])
	}
}

func TestGetValidatorSingleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator returned distinct instances")
	}
}
