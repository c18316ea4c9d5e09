package media_test

import (
	"errors"
	"fmt"
	"testing"

	"wares/internal/media"
	"wares/internal/services"
)

func TestImageSizeGateBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		size   int64
		accept bool
	}{
		{"exactly 50 KiB", media.MinImageBytes, true},
		{"one byte below 50 KiB", media.MinImageBytes - 1, false},
		{"exactly 1 MiB", media.MaxImageBytes, true},
		{"one byte above 1 MiB", media.MaxImageBytes + 1, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			channels := media.NewChannels(nil)
			err := channels.StagePrimaryImage("photo.jpg", tc.size, "image/jpeg")
			if tc.accept && err != nil {
				t.Fatalf("expected accept, got %v", err)
			}
			if !tc.accept {
				if !errors.Is(err, services.ErrValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
			}
		})
	}
}

func TestImageMediaTypeGate(t *testing.T) {
	channels := media.NewChannels(nil)
	_, err := channels.StageGalleryImage("doc.pdf", media.MinImageBytes, "application/pdf")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for non-image, got %v", err)
	}
}

func TestStageVideoLinkRejectsDuplicatesAndJunk(t *testing.T) {
	channels := media.NewChannels(nil)

	if err := channels.StageVideoLink("https://youtu.be/abc123"); err != nil {
		t.Fatalf("stage link: %v", err)
	}
	if err := channels.StageVideoLink("https://youtu.be/abc123"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}
	if got := len(channels.StagedVideoLinks()); got != 1 {
		t.Fatalf("expected one staged link, got %d", got)
	}

	for _, bad := range []string{"", "   ", "not a url", "example.com/video"} {
		if err := channels.StageVideoLink(bad); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("expected rejection for %q, got %v", bad, err)
		}
	}
}

func TestStageBrochureReplacesStagedPredecessor(t *testing.T) {
	channels := media.NewChannels(nil)

	if err := channels.StageBrochure("old.pdf", 1024, "application/pdf"); err != nil {
		t.Fatalf("stage brochure: %v", err)
	}
	first := channels.StagedBrochure().Handle

	if err := channels.StageBrochure("new.pdf", 2048, "application/pdf"); err != nil {
		t.Fatalf("restage brochure: %v", err)
	}
	staged := channels.StagedBrochure()
	if staged.Path != "new.pdf" || staged.Handle == first {
		t.Fatalf("expected replacement, got %+v", staged)
	}
}

func TestUploadBatchOrdersPrimaryFirst(t *testing.T) {
	channels := media.NewChannels(nil)

	for i := 0; i < 2; i++ {
		if _, err := channels.StageGalleryImage(fmt.Sprintf("gallery-%d.jpg", i), media.MinImageBytes, "image/jpeg"); err != nil {
			t.Fatalf("stage gallery: %v", err)
		}
	}
	if err := channels.StagePrimaryImage("primary.jpg", media.MinImageBytes, "image/jpeg"); err != nil {
		t.Fatalf("stage primary: %v", err)
	}

	batch := channels.UploadBatch()
	if len(batch) != 3 {
		t.Fatalf("expected 3 images, got %d", len(batch))
	}
	if batch[0].Path != "primary.jpg" {
		t.Fatalf("primary must be first, got %q", batch[0].Path)
	}
	if batch[1].Path != "gallery-0.jpg" || batch[2].Path != "gallery-1.jpg" {
		t.Fatalf("gallery order not preserved: %q, %q", batch[1].Path, batch[2].Path)
	}
}

func TestAdoptUploadedClearsStagedAndAppendsPersisted(t *testing.T) {
	channels := media.NewChannels(nil)
	if err := channels.StagePrimaryImage("primary.jpg", media.MinImageBytes, "image/jpeg"); err != nil {
		t.Fatalf("stage primary: %v", err)
	}
	if _, err := channels.StageGalleryImage("second.jpg", media.MinImageBytes, "image/jpeg"); err != nil {
		t.Fatalf("stage gallery: %v", err)
	}

	channels.AdoptUploaded([]media.Item{
		{ID: 10, Locator: "https://cdn.example.com/primary.jpg"},
		{ID: 11, Locator: "https://cdn.example.com/second.jpg"},
	})

	if channels.StagedPrimary() != nil || len(channels.StagedGallery()) != 0 {
		t.Fatal("staged images should be cleared after adoption")
	}
	persisted := channels.Persisted()
	if len(persisted) != 2 || persisted[0].ID != 10 || persisted[1].ID != 11 {
		t.Fatalf("unexpected persisted list: %+v", persisted)
	}

	primary, ok := channels.PersistedPrimary()
	if !ok || primary.ID != 10 {
		t.Fatalf("first image should be the primary, got %+v (ok=%v)", primary, ok)
	}
}

func TestPersistedPrimarySkipsVideos(t *testing.T) {
	channels := media.NewChannels(nil)
	channels.SetPersisted([]media.Item{
		{ID: 1, Locator: "https://youtu.be/clip"},
		{ID: 2, Locator: "https://cdn.example.com/a.jpg"},
	})

	primary, ok := channels.PersistedPrimary()
	if !ok || primary.ID != 2 {
		t.Fatalf("expected first image-kind item as primary, got %+v", primary)
	}
}

func TestResolveVideoLinksSwapsStagedForPersisted(t *testing.T) {
	channels := media.NewChannels(nil)
	if err := channels.StageVideoLink("https://youtu.be/abc"); err != nil {
		t.Fatalf("stage link: %v", err)
	}
	if err := channels.StageVideoLink("https://vimeo.com/999"); err != nil {
		t.Fatalf("stage link: %v", err)
	}

	channels.ResolveVideoLinks([]media.Item{
		{ID: 31, Locator: "https://youtu.be/abc", Kind: media.KindVideo},
	})

	links := channels.StagedVideoLinks()
	if len(links) != 1 || links[0] != "https://vimeo.com/999" {
		t.Fatalf("expected unresolved link to stay staged, got %v", links)
	}
	persisted := channels.Persisted()
	if len(persisted) != 1 || persisted[0].ID != 31 || persisted[0].Origin != media.OriginPersisted {
		t.Fatalf("expected persisted video entry, got %+v", persisted)
	}
}

func TestRemovePersistedLeavesOthersIntact(t *testing.T) {
	channels := media.NewChannels(nil)
	channels.SetPersisted([]media.Item{
		{ID: 1, Locator: "https://cdn.example.com/a.jpg"},
		{ID: 2, Locator: "https://cdn.example.com/b.jpg"},
	})

	if !channels.RemovePersisted(1) {
		t.Fatal("expected removal")
	}
	if channels.RemovePersisted(99) {
		t.Fatal("unknown id should not remove anything")
	}
	persisted := channels.Persisted()
	if len(persisted) != 1 || persisted[0].ID != 2 {
		t.Fatalf("unexpected persisted list: %+v", persisted)
	}
}

func TestDiscardStagedByHandle(t *testing.T) {
	channels := media.NewChannels(nil)
	staged, err := channels.StageGalleryImage("a.jpg", media.MinImageBytes, "image/jpeg")
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	if !channels.DiscardStaged(staged.Handle) {
		t.Fatal("expected discard by handle")
	}
	if channels.HasStagedMedia() {
		t.Fatal("channel should be empty")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	channels := media.NewChannels(nil)
	if err := channels.StagePrimaryImage("p.jpg", media.MinImageBytes, "image/jpeg"); err != nil {
		t.Fatalf("stage primary: %v", err)
	}
	if err := channels.StageVideoLink("https://youtu.be/abc"); err != nil {
		t.Fatalf("stage link: %v", err)
	}
	channels.SetPersisted([]media.Item{{ID: 5, Locator: "https://cdn.example.com/x.jpg"}})

	restored := media.Restore(channels.Snapshot(), nil)
	if restored.StagedPrimary() == nil || restored.StagedPrimary().Path != "p.jpg" {
		t.Fatalf("primary lost in round trip: %+v", restored.StagedPrimary())
	}
	if links := restored.StagedVideoLinks(); len(links) != 1 {
		t.Fatalf("links lost: %v", links)
	}
	if persisted := restored.Persisted(); len(persisted) != 1 || persisted[0].Kind != media.KindImage {
		t.Fatalf("persisted lost or kind underived: %+v", persisted)
	}
}
