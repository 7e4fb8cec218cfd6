package feature

import "testing"

func TestSlug(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "User-Management", "user-management"},
		{"spaces to underscore", "Venue Booking", "venue_booking"},
		{"collapses whitespace", "  venue \t booking  ", "venue_booking"},
		{"already normalized", "vendor", "vendor"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slug(tt.in); got != tt.want {
				t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSlug_DifferentCasingCollides(t *testing.T) {
	if Slug("Venue Booking") != Slug("venue booking") {
		t.Error("names differing only by case must share a catalog key")
	}
}
