// Package publish drives the multi-step submission of a product draft to the
// marketplace backend. Submission is deliberately not atomic: the base record
// must persist first, after that each media channel uploads independently and
// a failure in one never rolls back the others.
package publish

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"wares/internal/attributes"
	"wares/internal/catalog"
	"wares/internal/logging"
	"wares/internal/media"
	"wares/internal/product"
	"wares/internal/services"
	"wares/internal/services/market"
)

// Step identifies one phase of a submission run.
type Step string

const (
	StepValidate       Step = "validate"
	StepPersistBase    Step = "persist_base"
	StepUploadBrochure Step = "upload_brochure"
	StepUploadImages   Step = "upload_images"
	StepResync         Step = "resync"
)

// StepResult records how one step ended. A skipped step had nothing staged
// for its channel.
type StepResult struct {
	Step    Step
	Skipped bool
	Err     error
}

// Outcome is the aggregate result of a submission run.
type Outcome struct {
	ProductID int64
	Created   bool
	Steps     []StepResult
}

// Failed reports whether the run ended before the base record persisted.
// Validation and base-save errors are fatal; channel errors are not.
func (o Outcome) Failed() bool {
	for _, step := range o.Steps {
		if (step.Step == StepValidate || step.Step == StepPersistBase) && step.Err != nil {
			return true
		}
	}
	return false
}

// Complete reports whether every executed step succeeded.
func (o Outcome) Complete() bool {
	for _, step := range o.Steps {
		if step.Err != nil {
			return false
		}
	}
	return !o.Failed()
}

// Partial reports whether the base record persisted but at least one channel
// step failed. The listing exists server-side in this state; only the failed
// channels need a retry.
func (o Outcome) Partial() bool {
	if o.Failed() {
		return false
	}
	for _, step := range o.Steps {
		if step.Err != nil {
			return true
		}
	}
	return false
}

// FailedSteps returns the steps that ended in error.
func (o Outcome) FailedSteps() []StepResult {
	var failed []StepResult
	for _, step := range o.Steps {
		if step.Err != nil {
			failed = append(failed, step)
		}
	}
	return failed
}

// Summary renders a one-line human description of the run.
func (o Outcome) Summary() string {
	switch {
	case o.Failed():
		for _, step := range o.Steps {
			if step.Err != nil {
				return fmt.Sprintf("submission failed at %s: %v", step.Step, step.Err)
			}
		}
		return "submission failed"
	case o.Partial():
		names := make([]string, 0, 2)
		for _, step := range o.FailedSteps() {
			names = append(names, string(step.Step))
		}
		return fmt.Sprintf("published with partial media (failed: %s)", strings.Join(names, ", "))
	default:
		return "published"
	}
}

// Backend is the subset of the marketplace API the orchestrator drives.
type Backend interface {
	CreateProduct(ctx context.Context, payload market.ProductPayload) (*market.Product, error)
	UpdateProduct(ctx context.Context, id int64, payload market.ProductPayload) (*market.Product, error)
	UploadBrochure(ctx context.Context, productID int64, filename string, r io.Reader) (*market.MediaRecord, error)
	UploadImages(ctx context.Context, productID int64, files []market.ImageUpload) ([]market.MediaRecord, error)
	Product(ctx context.Context, id int64) (*market.Product, error)
}

// Orchestrator runs submissions against a backend using the cached category
// directory for validation.
type Orchestrator struct {
	backend   Backend
	directory *catalog.Directory
	logger    *slog.Logger
	openFile  func(path string) (io.ReadCloser, error)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithFileOpener overrides how staged file paths are opened for upload.
func WithFileOpener(open func(path string) (io.ReadCloser, error)) Option {
	return func(o *Orchestrator) {
		if open != nil {
			o.openFile = open
		}
	}
}

// NewOrchestrator builds a submission orchestrator.
func NewOrchestrator(backend Backend, directory *catalog.Directory, logger *slog.Logger, opts ...Option) *Orchestrator {
	orch := &Orchestrator{
		backend:   backend,
		directory: directory,
		logger:    logging.NewComponentLogger(logger, "publish"),
		openFile: func(path string) (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
	for _, opt := range opts {
		opt(orch)
	}
	return orch
}

// Submit runs the full submission sequence for a draft. The record is
// mutated in place when the backend assigns an id; media channels adopt
// server records as their uploads succeed.
func (o *Orchestrator) Submit(ctx context.Context, rec *product.Record, attrs *attributes.Store, channels *media.Channels) Outcome {
	outcome := Outcome{ProductID: rec.ID}

	resolution, err := o.validate(rec, attrs)
	outcome.Steps = append(outcome.Steps, StepResult{Step: StepValidate, Err: err})
	if err != nil {
		o.logger.Error("submission rejected", logging.Error(err))
		return outcome
	}

	created, err := o.persistBase(ctx, rec, attrs, channels, resolution)
	outcome.Steps = append(outcome.Steps, StepResult{Step: StepPersistBase, Err: err})
	if err != nil {
		o.logger.Error("base save failed", logging.Error(err))
		return outcome
	}
	outcome.ProductID = rec.ID
	outcome.Created = created

	outcome.Steps = append(outcome.Steps, o.uploadBrochure(ctx, rec, channels))
	outcome.Steps = append(outcome.Steps, o.uploadImages(ctx, rec, channels))
	outcome.Steps = append(outcome.Steps, o.resync(ctx, rec, channels))

	o.logger.Info("submission finished",
		logging.Int64(logging.FieldProductID, rec.ID),
		logging.String("result", outcome.Summary()))
	return outcome
}

// validate checks everything that can fail without a network call. The
// category directory must already be loaded; schema resolution must not be
// pending a subcategory choice.
func (o *Orchestrator) validate(rec *product.Record, attrs *attributes.Store) (catalog.Resolution, error) {
	if strings.TrimSpace(rec.OwnerID) == "" {
		return catalog.Resolution{}, services.Wrap(services.ErrValidation, "publish", "validate", "owner id is required", nil)
	}
	if strings.TrimSpace(rec.Name) == "" {
		return catalog.Resolution{}, services.Wrap(services.ErrValidation, "publish", "validate", "product name is required", nil)
	}
	if len(rec.TypeTags) == 0 {
		return catalog.Resolution{}, services.Wrap(services.ErrValidation, "publish", "validate", "at least one type tag is required", nil)
	}
	if strings.TrimSpace(rec.CategoryID) == "" {
		return catalog.Resolution{}, services.Wrap(services.ErrValidation, "publish", "validate", "category is required", nil)
	}
	resolution, err := o.directory.Resolve(rec.CategoryID, rec.SubcategoryID)
	if err != nil {
		return catalog.Resolution{}, err
	}
	if !resolution.Ready() {
		return catalog.Resolution{}, services.Wrap(services.ErrValidation, "publish", "validate", "subcategory selection is required", nil)
	}
	if missing := attrs.MissingRequired(resolution.Fields); len(missing) > 0 {
		return catalog.Resolution{}, services.Wrap(services.ErrValidation, "publish", "validate",
			fmt.Sprintf("missing required attributes: %s", strings.Join(missing, ", ")), nil)
	}
	return resolution, nil
}

// persistBase creates or updates the base record. Attribute values are
// filtered through the resolved schema so values for fields the current
// category pair does not define never reach the backend.
func (o *Orchestrator) persistBase(ctx context.Context, rec *product.Record, attrs *attributes.Store, channels *media.Channels, resolution catalog.Resolution) (bool, error) {
	payload := market.ProductPayload{
		CategoryID:    rec.CategoryID,
		SubcategoryID: rec.SubcategoryID,
		Name:          rec.Name,
		Description:   rec.Description,
		Manufacturer:  rec.Manufacturer,
		Model:         rec.Model,
		Price:         rec.Price,
		TypeTags:      rec.TagStrings(),
		DirectSale:    rec.DirectSale,
		HidePrice:     rec.HidePrice,
		OnlinePayment: rec.OnlinePayment,
		StockQuantity: rec.StockQuantity,
		OwnerID:       rec.OwnerID,
		Attributes:    attrs.Serialize(resolution.Fields),
		VideoLinks:    channels.StagedVideoLinks(),
	}

	if rec.Persisted() {
		if _, err := o.backend.UpdateProduct(ctx, rec.ID, payload); err != nil {
			return false, err
		}
		return false, nil
	}
	created, err := o.backend.CreateProduct(ctx, payload)
	if err != nil {
		return false, err
	}
	rec.ID = created.ID
	return true, nil
}

func (o *Orchestrator) uploadBrochure(ctx context.Context, rec *product.Record, channels *media.Channels) StepResult {
	staged := channels.StagedBrochure()
	if staged == nil {
		return StepResult{Step: StepUploadBrochure, Skipped: true}
	}
	file, err := o.openFile(staged.Path)
	if err != nil {
		return StepResult{Step: StepUploadBrochure, Err: fmt.Errorf("open brochure: %w", err)}
	}
	defer file.Close()

	record, err := o.backend.UploadBrochure(ctx, rec.ID, filepath.Base(staged.Path), file)
	if err != nil {
		return StepResult{Step: StepUploadBrochure, Err: err}
	}
	channels.SetPersistedBrochure(&media.Item{
		ID:      record.ID,
		Locator: record.URL,
		Kind:    media.KindDocument,
		Origin:  media.OriginPersisted,
	})
	channels.DiscardBrochure()
	return StepResult{Step: StepUploadBrochure}
}

// uploadImages sends the staged primary candidate and gallery as one ordered
// batch, primary first, so the backend's positional convention marks it as
// the display image.
func (o *Orchestrator) uploadImages(ctx context.Context, rec *product.Record, channels *media.Channels) StepResult {
	batch := channels.UploadBatch()
	if len(batch) == 0 {
		return StepResult{Step: StepUploadImages, Skipped: true}
	}

	uploads := make([]market.ImageUpload, 0, len(batch))
	closers := make([]io.Closer, 0, len(batch))
	defer func() {
		for _, closer := range closers {
			closer.Close()
		}
	}()
	for _, staged := range batch {
		file, err := o.openFile(staged.Path)
		if err != nil {
			return StepResult{Step: StepUploadImages, Err: fmt.Errorf("open image %s: %w", staged.Path, err)}
		}
		closers = append(closers, file)
		uploads = append(uploads, market.ImageUpload{Filename: filepath.Base(staged.Path), Reader: file})
	}

	records, err := o.backend.UploadImages(ctx, rec.ID, uploads)
	if err != nil {
		return StepResult{Step: StepUploadImages, Err: err}
	}
	adopted := make([]media.Item, 0, len(records))
	for _, record := range records {
		adopted = append(adopted, media.Item{
			ID:      record.ID,
			Locator: record.URL,
			Kind:    media.KindImage,
			Origin:  media.OriginPersisted,
		})
	}
	channels.AdoptUploaded(adopted)
	return StepResult{Step: StepUploadImages}
}

// resync fetches the server's media list and swaps staged video links for
// their persisted entries. The links themselves already rode along with the
// base payload; a failure here leaves the display state stale, not the
// server.
func (o *Orchestrator) resync(ctx context.Context, rec *product.Record, channels *media.Channels) StepResult {
	if len(channels.StagedVideoLinks()) == 0 {
		return StepResult{Step: StepResync, Skipped: true}
	}
	fetched, err := o.backend.Product(ctx, rec.ID)
	if err != nil {
		return StepResult{Step: StepResync, Err: err}
	}
	items := make([]media.Item, 0, len(fetched.Media))
	for _, record := range fetched.Media {
		items = append(items, media.PersistedItem(record.ID, record.URL))
	}
	channels.ResolveVideoLinks(items)
	return StepResult{Step: StepResync}
}
