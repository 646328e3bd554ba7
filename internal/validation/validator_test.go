// Movie Recommender - TMDb-backed Movie Recommendation Core
// Copyright 2026 S. Boyapati (SBoyapati13)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SBoyapati13/movie-recommender

package validation

import (
	"strings"
	"testing"
)

type sampleRequest struct {
	Name  string  `validate:"required,min=3,max=10"`
	Mood  string  `validate:"omitempty,oneof=happy sad"`
	Score float64 `validate:"omitempty,gte=0.5,lte=10"`
}

func TestValidateStructSuccess(t *testing.T) {
	tests := []struct {
		name string
		req  sampleRequest
	}{
		{"all fields", sampleRequest{Name: "alice", Mood: "happy", Score: 8.5}},
		{"optional fields empty", sampleRequest{Name: "alice"}},
		{"boundary values", sampleRequest{Name: "abc", Score: 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateStruct(tt.req); err != nil {
				t.Errorf("ValidateStruct() = %v, want nil", err)
			}
		})
	}
}

func TestValidateStructFailures(t *testing.T) {
	tests := []struct {
		name      string
		req       sampleRequest
		wantField string
		wantTag   string
	}{
		{"missing required", sampleRequest{}, "Name", "required"},
		{"too short", sampleRequest{Name: "ab"}, "Name", "min"},
		{"too long", sampleRequest{Name: "abcdefghijk"}, "Name", "max"},
		{"bad oneof", sampleRequest{Name: "alice", Mood: "grumpy"}, "Mood", "oneof"},
		{"below range", sampleRequest{Name: "alice", Score: 0.2}, "Score", "gte"},
		{"above range", sampleRequest{Name: "alice", Score: 11}, "Score", "lte"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.req)
			if err == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			fields := err.Fields()
			if len(fields) != 1 {
				t.Fatalf("got %d field errors: %+v", len(fields), fields)
			}
			if fields[0].Field != tt.wantField || fields[0].Tag != tt.wantTag {
				t.Errorf("got %s/%s, want %s/%s",
					fields[0].Field, fields[0].Tag, tt.wantField, tt.wantTag)
			}
			if fields[0].Message == "" {
				t.Error("empty message")
			}
		})
	}
}

func TestValidateStructCollectsAllFailures(t *testing.T) {
	err := ValidateStruct(sampleRequest{Mood: "grumpy", Score: 99})
	if err == nil {
		t.Fatal("want error")
	}
	if got := len(err.Fields()); got != 3 {
		t.Errorf("got %d field errors, want 3", got)
	}
	if msg := err.Error(); !strings.Contains(msg, ";") {
		t.Errorf("Error() should join messages, got %q", msg)
	}
}

func TestGetValidatorSingleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() must return the same instance")
	}
}
