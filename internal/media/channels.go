package media

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"wares/internal/logging"
	"wares/internal/services"
)

// StagedFile is a local file selected for upload but not yet sent. The handle
// is the client-side identity until the server assigns a real id.
type StagedFile struct {
	Handle    string `json:"handle"`
	Path      string `json:"path"`
	Size      int64  `json:"size"`
	MediaType string `json:"media_type"`
}

// Channels tracks the three independent media tracks of a product under
// authoring: the brochure document, the primary image candidate, and the
// gallery of images plus externally linked videos. Staged entries are local
// only; persisted entries mirror the server's media list.
type Channels struct {
	logger *slog.Logger

	brochure          *StagedFile
	persistedBrochure *Item

	primary    *StagedFile
	gallery    []StagedFile
	videoLinks []string

	persisted []Item
}

// NewChannels returns an empty channel set.
func NewChannels(logger *slog.Logger) *Channels {
	return &Channels{logger: logging.NewComponentLogger(logger, "media")}
}

// StageBrochure stages a brochure document, discarding any staged
// predecessor outright. The persisted brochure, if any, is untouched; it can
// only be removed through a confirmed server deletion.
func (c *Channels) StageBrochure(path string, size int64, mediaType string) error {
	if strings.TrimSpace(path) == "" {
		return services.Wrap(services.ErrValidation, "media", "stage brochure", "empty file path", nil)
	}
	c.brochure = &StagedFile{
		Handle:    uuid.NewString(),
		Path:      path,
		Size:      size,
		MediaType: mediaType,
	}
	c.logger.Debug("brochure staged", logging.String("path", path))
	return nil
}

// StagedBrochure returns the staged brochure, if any.
func (c *Channels) StagedBrochure() *StagedFile {
	return c.brochure
}

// DiscardBrochure drops the staged brochure locally. No network call.
func (c *Channels) DiscardBrochure() {
	c.brochure = nil
}

// SetPersistedBrochure records the server-confirmed brochure reference.
func (c *Channels) SetPersistedBrochure(item *Item) {
	c.persistedBrochure = item
}

// PersistedBrochure returns the server-confirmed brochure, if any.
func (c *Channels) PersistedBrochure() *Item {
	return c.persistedBrochure
}

// StagePrimaryImage stages the primary-image candidate, replacing a previous
// staged candidate. The existing persisted primary is not deleted; after
// upload the ordering convention decides which image displays first.
func (c *Channels) StagePrimaryImage(path string, size int64, mediaType string) error {
	if err := validateImageFile(path, size, mediaType); err != nil {
		return err
	}
	c.primary = &StagedFile{
		Handle:    uuid.NewString(),
		Path:      path,
		Size:      size,
		MediaType: mediaType,
	}
	c.logger.Debug("primary image staged", logging.String("path", path))
	return nil
}

// StagedPrimary returns the staged primary-image candidate, if any.
func (c *Channels) StagedPrimary() *StagedFile {
	return c.primary
}

// StageGalleryImage appends an image to the staged gallery.
func (c *Channels) StageGalleryImage(path string, size int64, mediaType string) (StagedFile, error) {
	if err := validateImageFile(path, size, mediaType); err != nil {
		return StagedFile{}, err
	}
	staged := StagedFile{
		Handle:    uuid.NewString(),
		Path:      path,
		Size:      size,
		MediaType: mediaType,
	}
	c.gallery = append(c.gallery, staged)
	c.logger.Debug("gallery image staged", logging.String("path", path))
	return staged, nil
}

// StagedGallery returns the staged gallery images in staging order.
func (c *Channels) StagedGallery() []StagedFile {
	return append([]StagedFile(nil), c.gallery...)
}

// StageVideoLink validates and stages an external video link. Pasting a link
// that is already staged is a no-op rejection, so the staged list never holds
// duplicates.
func (c *Channels) StageVideoLink(raw string) error {
	link, err := validateVideoLink(raw)
	if err != nil {
		return err
	}
	for _, existing := range c.videoLinks {
		if existing == link {
			return services.Wrap(services.ErrValidation, "media", "stage video link", "link already staged", nil)
		}
	}
	c.videoLinks = append(c.videoLinks, link)
	c.logger.Debug("video link staged", logging.String("url", link))
	return nil
}

// StagedVideoLinks returns the staged links in paste order.
func (c *Channels) StagedVideoLinks() []string {
	return append([]string(nil), c.videoLinks...)
}

// DiscardStaged removes a staged file (brochure, primary, or gallery image)
// by handle. Purely local.
func (c *Channels) DiscardStaged(handle string) bool {
	if c.brochure != nil && c.brochure.Handle == handle {
		c.brochure = nil
		return true
	}
	if c.primary != nil && c.primary.Handle == handle {
		c.primary = nil
		return true
	}
	for i, staged := range c.gallery {
		if staged.Handle == handle {
			c.gallery = append(c.gallery[:i], c.gallery[i+1:]...)
			return true
		}
	}
	return false
}

// DiscardVideoLink removes a staged link. Purely local.
func (c *Channels) DiscardVideoLink(link string) bool {
	link = strings.TrimSpace(link)
	for i, existing := range c.videoLinks {
		if existing == link {
			c.videoLinks = append(c.videoLinks[:i], c.videoLinks[i+1:]...)
			return true
		}
	}
	return false
}

// Persisted returns the server-known media list in server order.
func (c *Channels) Persisted() []Item {
	return append([]Item(nil), c.persisted...)
}

// SetPersisted replaces the persisted media list, deriving kinds for entries
// that arrive without one. Used when resynchronizing from the server's
// authoritative record.
func (c *Channels) SetPersisted(items []Item) {
	next := make([]Item, 0, len(items))
	for _, item := range items {
		item.Origin = OriginPersisted
		if item.Kind == "" {
			item.Kind = DeriveKind(item.Locator)
		}
		next = append(next, item)
	}
	c.persisted = next
}

// PersistedPrimary returns the current primary image: the first image-kind
// item in gallery order. Primacy is positional, not a stored flag.
func (c *Channels) PersistedPrimary() (Item, bool) {
	for _, item := range c.persisted {
		if item.Kind == KindImage {
			return item, true
		}
	}
	return Item{}, false
}

// UploadBatch returns the staged images in upload order: the primary
// candidate first, then the gallery, so the backend records the primary image
// in first position.
func (c *Channels) UploadBatch() []StagedFile {
	batch := make([]StagedFile, 0, len(c.gallery)+1)
	if c.primary != nil {
		batch = append(batch, *c.primary)
	}
	batch = append(batch, c.gallery...)
	return batch
}

// AdoptUploaded appends the server's returned media records to the persisted
// list and clears the staged primary and gallery. Called only after a
// successful batch upload.
func (c *Channels) AdoptUploaded(items []Item) {
	for _, item := range items {
		item.Origin = OriginPersisted
		if item.Kind == "" {
			item.Kind = DeriveKind(item.Locator)
		}
		c.persisted = append(c.persisted, item)
	}
	c.primary = nil
	c.gallery = nil
}

// ResolveVideoLinks swaps staged links for their persisted equivalents found
// in a freshly fetched server media list. Links the server does not report
// stay staged.
func (c *Channels) ResolveVideoLinks(fetched []Item) {
	for _, item := range fetched {
		if item.Kind != KindVideo {
			continue
		}
		if c.DiscardVideoLink(item.Locator) {
			item.Origin = OriginPersisted
			c.persisted = append(c.persisted, item)
		}
	}
}

// RemovePersisted removes a persisted media entry by server id. Callers must
// only invoke this after the server confirmed the deletion; a failed deletion
// call leaves the item visible and unchanged.
func (c *Channels) RemovePersisted(id int64) bool {
	if c.persistedBrochure != nil && c.persistedBrochure.ID == id {
		c.persistedBrochure = nil
		return true
	}
	for i, item := range c.persisted {
		if item.ID == id {
			c.persisted = append(c.persisted[:i], c.persisted[i+1:]...)
			return true
		}
	}
	return false
}

// HasStagedMedia reports whether anything at all is staged across the three
// channels.
func (c *Channels) HasStagedMedia() bool {
	return c.brochure != nil || c.primary != nil || len(c.gallery) > 0 || len(c.videoLinks) > 0
}
