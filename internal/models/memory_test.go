// ABOUTME: Tests for memory category parsing
// ABOUTME: Verifies the closed enum accepts known categories and rejects the rest
package models

import "testing"

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input   string
		want    Category
		wantErr bool
	}{
		{"correction", CategoryCorrection, false},
		{"insight", CategoryInsight, false},
		{"user", CategoryUser, false},
		{"consolidated", CategoryConsolidated, false},
		{"discovery", CategoryDiscovery, false},
		{"lesson", "", true},
		{"Correction", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCategory(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseCategory(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCategory(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseCategory(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
