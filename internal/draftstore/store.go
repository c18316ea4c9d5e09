// Package draftstore persists authoring drafts in a local SQLite database so
// a session can stop and resume without losing staged work. A file lock next
// to the database keeps concurrent wares invocations from writing over each
// other.
package draftstore

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"wares/internal/config"
	"wares/internal/media"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Store manages draft persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the draft database, acquires the writer
// lock, and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.DatabasePath()
	lock := flock.New(filepath.Join(filepath.Dir(dbPath), "drafts.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire draft lock: %w", err)
	}
	if !ok {
		return nil, errors.New("another wares instance is using the draft store")
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return store, nil
}

// Close closes the database and releases the writer lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

const draftColumns = "id, product_id, category_id, subcategory_id, name, description, manufacturer, model, price, type_tags, direct_sale, hide_price, online_payment, stock_quantity, owner_id, attributes_json, media_json, last_outcome, created_at, updated_at"

// Create inserts a new draft and returns it with its assigned id.
func (s *Store) Create(ctx context.Context, draft *Draft) (*Draft, error) {
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	attributesJSON, mediaJSON, err := encodeDraft(draft)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO drafts (
            product_id, category_id, subcategory_id, name, description,
            manufacturer, model, price, type_tags, direct_sale, hide_price,
            online_payment, stock_quantity, owner_id, attributes_json,
            media_json, last_outcome, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		draft.ProductID,
		nullableString(draft.CategoryID),
		nullableString(draft.SubcategoryID),
		draft.Name,
		nullableString(draft.Description),
		nullableString(draft.Manufacturer),
		nullableString(draft.Model),
		draft.Price,
		nullableString(strings.Join(draft.TypeTags, ",")),
		boolToInt(draft.DirectSale),
		boolToInt(draft.HidePrice),
		boolToInt(draft.OnlinePayment),
		draft.StockQuantity,
		nullableString(draft.OwnerID),
		nullableString(attributesJSON),
		nullableString(mediaJSON),
		nullableString(draft.LastOutcome),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert draft: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// Update persists the draft's current state. The created_at column is left
// untouched.
func (s *Store) Update(ctx context.Context, draft *Draft) (*Draft, error) {
	if draft.ID <= 0 {
		return nil, errors.New("draft has no id")
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	attributesJSON, mediaJSON, err := encodeDraft(draft)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(
		ctx,
		`UPDATE drafts SET
            product_id = ?, category_id = ?, subcategory_id = ?, name = ?,
            description = ?, manufacturer = ?, model = ?, price = ?,
            type_tags = ?, direct_sale = ?, hide_price = ?, online_payment = ?,
            stock_quantity = ?, owner_id = ?, attributes_json = ?,
            media_json = ?, last_outcome = ?, updated_at = ?
        WHERE id = ?`,
		draft.ProductID,
		nullableString(draft.CategoryID),
		nullableString(draft.SubcategoryID),
		draft.Name,
		nullableString(draft.Description),
		nullableString(draft.Manufacturer),
		nullableString(draft.Model),
		draft.Price,
		nullableString(strings.Join(draft.TypeTags, ",")),
		boolToInt(draft.DirectSale),
		boolToInt(draft.HidePrice),
		boolToInt(draft.OnlinePayment),
		draft.StockQuantity,
		nullableString(draft.OwnerID),
		nullableString(attributesJSON),
		nullableString(mediaJSON),
		nullableString(draft.LastOutcome),
		timestamp,
		draft.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update draft: %w", err)
	}
	return s.GetByID(ctx, draft.ID)
}

// GetByID fetches a draft by local id. Returns nil when absent.
func (s *Store) GetByID(ctx context.Context, id int64) (*Draft, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+draftColumns+` FROM drafts WHERE id = ?`, id)
	draft, err := scanDraft(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get draft: %w", err)
	}
	return draft, nil
}

// List returns all drafts, most recently updated first.
func (s *Store) List(ctx context.Context) ([]*Draft, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+draftColumns+` FROM drafts ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	var drafts []*Draft
	for rows.Next() {
		draft, err := scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		drafts = append(drafts, draft)
	}
	return drafts, rows.Err()
}

// Delete removes a draft. Deleting an absent id is not an error.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM drafts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

func (s *Store) applyMigrations(ctx context.Context) error {
	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY)"); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	for _, migration := range migrations {
		var count int
		row := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM schema_migrations WHERE version = ?", migration.version)
		if err := row.Scan(&count); err != nil {
			return fmt.Errorf("scan migration version: %w", err)
		}
		if count > 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, migration.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", migration.version, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", migration.version); err != nil {
			return fmt.Errorf("record migration %s: %w", migration.version, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migrations: %w", err)
	}
	return nil
}

type migration struct {
	version string
	sql     string
}

func loadMigrations() ([]migration, error) {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	versions := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		versions = append(versions, entry.Name())
	}
	sort.Strings(versions)

	migrations := make([]migration, 0, len(versions))
	for _, name := range versions {
		data, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		migrations = append(migrations, migration{version: strings.TrimSuffix(name, ".sql"), sql: string(data)})
	}
	return migrations, nil
}

func encodeDraft(draft *Draft) (attributesJSON, mediaJSON string, err error) {
	if len(draft.Attributes) > 0 {
		data, err := json.Marshal(draft.Attributes)
		if err != nil {
			return "", "", fmt.Errorf("marshal attributes: %w", err)
		}
		attributesJSON = string(data)
	}
	data, err := json.Marshal(draft.Media)
	if err != nil {
		return "", "", fmt.Errorf("marshal media snapshot: %w", err)
	}
	mediaJSON = string(data)
	return attributesJSON, mediaJSON, nil
}

func scanDraft(scanner interface{ Scan(dest ...any) error }) (*Draft, error) {
	var (
		id             int64
		productID      int64
		categoryID     sql.NullString
		subcategoryID  sql.NullString
		name           string
		description    sql.NullString
		manufacturer   sql.NullString
		model          sql.NullString
		price          float64
		typeTags       sql.NullString
		directSale     int64
		hidePrice      int64
		onlinePayment  int64
		stockQuantity  int
		ownerID        sql.NullString
		attributesJSON sql.NullString
		mediaJSON      sql.NullString
		lastOutcome    sql.NullString
		createdRaw     string
		updatedRaw     string
	)

	if err := scanner.Scan(
		&id,
		&productID,
		&categoryID,
		&subcategoryID,
		&name,
		&description,
		&manufacturer,
		&model,
		&price,
		&typeTags,
		&directSale,
		&hidePrice,
		&onlinePayment,
		&stockQuantity,
		&ownerID,
		&attributesJSON,
		&mediaJSON,
		&lastOutcome,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	draft := &Draft{
		ID:            id,
		ProductID:     productID,
		CategoryID:    categoryID.String,
		SubcategoryID: subcategoryID.String,
		Name:          name,
		Description:   description.String,
		Manufacturer:  manufacturer.String,
		Model:         model.String,
		Price:         price,
		DirectSale:    directSale != 0,
		HidePrice:     hidePrice != 0,
		OnlinePayment: onlinePayment != 0,
		StockQuantity: stockQuantity,
		OwnerID:       ownerID.String,
		LastOutcome:   lastOutcome.String,
	}
	if typeTags.Valid && typeTags.String != "" {
		draft.TypeTags = strings.Split(typeTags.String, ",")
	}
	if attributesJSON.Valid && attributesJSON.String != "" {
		if err := json.Unmarshal([]byte(attributesJSON.String), &draft.Attributes); err != nil {
			return nil, fmt.Errorf("unmarshal attributes: %w", err)
		}
	}
	if mediaJSON.Valid && mediaJSON.String != "" {
		if err := json.Unmarshal([]byte(mediaJSON.String), &draft.Media); err != nil {
			return nil, fmt.Errorf("unmarshal media snapshot: %w", err)
		}
	} else {
		draft.Media = media.Snapshot{}
	}

	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		draft.CreatedAt = created
	}
	if updated, err := time.Parse(time.RFC3339Nano, updatedRaw); err == nil {
		draft.UpdatedAt = updated
	}
	return draft, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
