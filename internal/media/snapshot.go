package media

import "log/slog"

// Snapshot is the persistable form of a channel set, used by the draft store
// to carry staged and persisted media between CLI invocations.
type Snapshot struct {
	Brochure          *StagedFile  `json:"brochure,omitempty"`
	PersistedBrochure *Item        `json:"persisted_brochure,omitempty"`
	Primary           *StagedFile  `json:"primary,omitempty"`
	Gallery           []StagedFile `json:"gallery,omitempty"`
	VideoLinks        []string     `json:"video_links,omitempty"`
	Persisted         []Item       `json:"persisted,omitempty"`
}

// Snapshot captures the current channel state.
func (c *Channels) Snapshot() Snapshot {
	return Snapshot{
		Brochure:          c.brochure,
		PersistedBrochure: c.persistedBrochure,
		Primary:           c.primary,
		Gallery:           append([]StagedFile(nil), c.gallery...),
		VideoLinks:        append([]string(nil), c.videoLinks...),
		Persisted:         append([]Item(nil), c.persisted...),
	}
}

// Restore rebuilds channels from a snapshot without re-running the staging
// gates; everything in a snapshot already passed them when first staged.
func Restore(snapshot Snapshot, logger *slog.Logger) *Channels {
	c := NewChannels(logger)
	c.brochure = snapshot.Brochure
	c.persistedBrochure = snapshot.PersistedBrochure
	c.primary = snapshot.Primary
	c.gallery = append([]StagedFile(nil), snapshot.Gallery...)
	c.videoLinks = append([]string(nil), snapshot.VideoLinks...)
	c.SetPersisted(snapshot.Persisted)
	return c
}
