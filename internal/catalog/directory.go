package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"wares/internal/logging"
	"wares/internal/services"
)

// Source fetches the category directory from the backend.
type Source interface {
	Categories(ctx context.Context) ([]Category, error)
}

// Directory is the session-level category cache. It is populated once on
// first use and read-only afterwards, so concurrent authoring sessions can
// share it without further locking.
type Directory struct {
	source Source
	logger *slog.Logger

	mu         sync.Mutex
	categories []Category
	loaded     bool
}

// NewDirectory builds an unpopulated directory backed by the given source.
func NewDirectory(source Source, logger *slog.Logger) *Directory {
	return &Directory{
		source: source,
		logger: logging.NewComponentLogger(logger, "catalog"),
	}
}

// Ensure populates the directory on first call; later calls are no-ops.
func (d *Directory) Ensure(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.loaded {
		return nil
	}
	if d.source == nil {
		return services.Wrap(services.ErrConfiguration, "catalog", "ensure", "no category source configured", nil)
	}

	categories, err := d.source.Categories(ctx)
	if err != nil {
		return fmt.Errorf("fetch category directory: %w", err)
	}
	d.categories = categories
	d.loaded = true
	d.logger.Debug("category directory loaded", logging.Int("category_count", len(categories)))
	return nil
}

// Categories returns the cached directory. Ensure must have succeeded first.
func (d *Directory) Categories() []Category {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.categories
}

// Category looks up a cached category by id.
func (d *Directory) Category(id string) (Category, bool) {
	id = strings.TrimSpace(id)
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, category := range d.categories {
		if category.ID == id {
			return category, true
		}
	}
	return Category{}, false
}

// Resolve resolves the attribute schema for a category/subcategory pair from
// the cached directory.
func (d *Directory) Resolve(categoryID, subcategoryID string) (Resolution, error) {
	category, ok := d.Category(categoryID)
	if !ok {
		return Resolution{}, services.Wrap(services.ErrNotFound, "catalog", "resolve", fmt.Sprintf("unknown category %q", categoryID), nil)
	}
	return Resolve(category, subcategoryID)
}
