package media

import (
	"fmt"
	"net/url"
	"strings"

	"wares/internal/services"
)

// Client-side staging gates. These run before anything is staged and are a
// convenience for the user, not a substitute for backend validation.
const (
	// MinImageBytes is the smallest accepted image file size (inclusive).
	MinImageBytes = 50 * 1024
	// MaxImageBytes is the largest accepted image file size (inclusive).
	MaxImageBytes = 1 << 20
)

func validateImageFile(path string, size int64, mediaType string) error {
	if strings.TrimSpace(path) == "" {
		return services.Wrap(services.ErrValidation, "media", "stage image", "empty file path", nil)
	}
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(mediaType)), "image/") {
		return services.Wrap(services.ErrValidation, "media", "stage image",
			fmt.Sprintf("%q is not an image media type", mediaType), nil)
	}
	if size < MinImageBytes || size > MaxImageBytes {
		return services.Wrap(services.ErrValidation, "media", "stage image",
			fmt.Sprintf("file size %d outside [%d, %d] bytes", size, MinImageBytes, MaxImageBytes), nil)
	}
	return nil
}

func validateVideoLink(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", services.Wrap(services.ErrValidation, "media", "stage video link", "empty link", nil)
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", services.Wrap(services.ErrValidation, "media", "stage video link",
			fmt.Sprintf("%q is not a valid url", trimmed), err)
	}
	return trimmed, nil
}
