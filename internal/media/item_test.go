package media_test

import (
	"testing"

	"wares/internal/media"
)

func TestDeriveKind(t *testing.T) {
	tests := []struct {
		locator string
		want    media.Kind
	}{
		{"https://www.youtube.com/watch?v=abc", media.KindVideo},
		{"https://youtu.be/abc", media.KindVideo},
		{"https://vimeo.com/12345", media.KindVideo},
		{"https://cdn.example.com/media/clip.mp4", media.KindVideo},
		{"https://cdn.example.com/media/clip.webm", media.KindVideo},
		{"https://cdn.example.com/media/photo.jpg", media.KindImage},
		{"https://cdn.example.com/media/photo.png", media.KindImage},
		{"uploads/photo.jpeg", media.KindImage},
		{"uploads/walkthrough.mov", media.KindVideo},
		{"", media.KindImage},
	}

	for _, tc := range tests {
		t.Run(tc.locator, func(t *testing.T) {
			if got := media.DeriveKind(tc.locator); got != tc.want {
				t.Fatalf("DeriveKind(%q) = %s, want %s", tc.locator, got, tc.want)
			}
		})
	}
}

func TestPersistedItem(t *testing.T) {
	item := media.PersistedItem(7, "https://youtu.be/abc")
	if item.ID != 7 || item.Kind != media.KindVideo || item.Origin != media.OriginPersisted {
		t.Fatalf("unexpected item: %+v", item)
	}
}
