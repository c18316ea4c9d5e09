package preview_test

import (
	"testing"

	"wares/internal/preview"
)

func TestDisplayTitle(t *testing.T) {
	tests := []struct {
		name         string
		manufacturer string
		title        string
		model        string
		want         string
	}{
		{"all parts", "Toyota", "Forklift", "8FGU25", "Toyota Forklift 8FGU25"},
		{"missing manufacturer", "", "Forklift", "8FGU25", "Forklift 8FGU25"},
		{"missing model", "Toyota", "Forklift", "", "Toyota Forklift"},
		{"only name", "", "Forklift", "", "Forklift"},
		{"all blank", "", "", "", ""},
		{"whitespace parts", "  ", "Forklift", "  ", "Forklift"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := preview.DisplayTitle(tc.manufacturer, tc.title, tc.model)
			if got != tc.want {
				t.Fatalf("DisplayTitle = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCanonicalPath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Forklift", "/products/forklift"},
		{"spaces", "Mini Excavator 3T", "/products/mini-excavator-3t"},
		{"punctuation", "Crawler (tracked) #2", "/products/crawler-tracked-2"},
		{"empty", "", "/products/"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := preview.CanonicalPath(tc.in); got != tc.want {
				t.Fatalf("CanonicalPath(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestCompute(t *testing.T) {
	p := preview.Compute("Kubota", "Mini Excavator", "KX019")
	if p.Title != "Kubota Mini Excavator KX019" {
		t.Fatalf("unexpected title %q", p.Title)
	}
	if p.Path != "/products/mini-excavator" {
		t.Fatalf("unexpected path %q", p.Path)
	}
}
