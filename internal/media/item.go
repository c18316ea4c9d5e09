package media

import (
	"net/url"
	"path"
	"strings"
)

// Kind classifies a media item for rendering. For persisted items the kind is
// derived purely from the locator string; a staged item's kind is known from
// how it was staged (file vs pasted link).
type Kind string

const (
	KindImage    Kind = "image"
	KindVideo    Kind = "video"
	KindDocument Kind = "document"
)

// Origin distinguishes client-staged items from server-confirmed ones. Only
// persisted items carry a server id; only staged items carry a local handle.
type Origin string

const (
	OriginStaged    Origin = "staged"
	OriginPersisted Origin = "persisted"
)

// Item is one entry of a media channel.
type Item struct {
	ID      int64  `json:"id,omitempty"`
	Handle  string `json:"handle,omitempty"`
	Locator string `json:"locator"`
	Kind    Kind   `json:"kind"`
	Origin  Origin `json:"origin"`
}

var videoHosts = map[string]struct{}{
	"youtube.com":         {},
	"www.youtube.com":     {},
	"youtu.be":            {},
	"vimeo.com":           {},
	"player.vimeo.com":    {},
	"dailymotion.com":     {},
	"www.dailymotion.com": {},
}

var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".m4v":  {},
	".webm": {},
	".mov":  {},
	".avi":  {},
	".mkv":  {},
	".wmv":  {},
}

// DeriveKind classifies a persisted locator. Known video hosts and video file
// extensions mean video; everything else renders as an image.
func DeriveKind(locator string) Kind {
	trimmed := strings.TrimSpace(locator)
	if trimmed == "" {
		return KindImage
	}
	if parsed, err := url.Parse(trimmed); err == nil && parsed.Host != "" {
		host := strings.ToLower(parsed.Host)
		if _, ok := videoHosts[host]; ok {
			return KindVideo
		}
		trimmed = parsed.Path
	}
	ext := strings.ToLower(path.Ext(trimmed))
	if _, ok := videoExtensions[ext]; ok {
		return KindVideo
	}
	return KindImage
}

// PersistedItem builds a persisted entry from a server media record, deriving
// the kind from its locator.
func PersistedItem(id int64, locator string) Item {
	return Item{
		ID:      id,
		Locator: locator,
		Kind:    DeriveKind(locator),
		Origin:  OriginPersisted,
	}
}
