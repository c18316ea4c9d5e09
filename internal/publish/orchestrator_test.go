package publish_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"wares/internal/attributes"
	"wares/internal/catalog"
	"wares/internal/logging"
	"wares/internal/media"
	"wares/internal/product"
	"wares/internal/publish"
	"wares/internal/services/market"
)

type staticSource struct {
	categories []catalog.Category
}

func (s staticSource) Categories(ctx context.Context) ([]catalog.Category, error) {
	return s.categories, nil
}

func testDirectory(t *testing.T) *catalog.Directory {
	t.Helper()
	directory := catalog.NewDirectory(staticSource{categories: []catalog.Category{
		{
			ID:   "cat-forklifts",
			Name: "Forklifts",
			Schema: []attributes.FieldDef{
				{Name: "capacity", Label: "Capacity", Kind: attributes.KindText, Required: true},
			},
		},
		{
			ID:   "cat-excavators",
			Name: "Excavators",
			Subcategories: []catalog.Subcategory{
				{ID: "sub-mini", Name: "Mini", Schema: []attributes.FieldDef{
					{Name: "weight", Label: "Weight", Kind: attributes.KindText},
				}},
			},
		},
	}}, logging.NewNop())
	if err := directory.Ensure(context.Background()); err != nil {
		t.Fatalf("Ensure returned error: %v", err)
	}
	return directory
}

// backendRecorder is an httptest handler that implements the backend routes
// the orchestrator touches and records what it saw.
type backendRecorder struct {
	mu sync.Mutex

	createCalls  int
	updateCalls  int
	imageBatches [][]string
	brochures    []string
	payloads     []market.ProductPayload

	failImages   bool
	failBrochure bool
	failCreate   bool

	productMedia []market.MediaRecord
}

func (b *backendRecorder) handler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /products", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.createCalls++
		var payload market.ProductPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode create payload: %v", err)
		}
		b.payloads = append(b.payloads, payload)
		if b.failCreate {
			http.Error(w, "backend down", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":42,"name":"Forklift","media":[]}`)
	})
	mux.HandleFunc("PATCH /products/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.updateCalls++
		var payload market.ProductPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode update payload: %v", err)
		}
		b.payloads = append(b.payloads, payload)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":42,"name":"Forklift","media":[]}`)
	})
	mux.HandleFunc("POST /products/{id}/images", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.failImages {
			http.Error(w, "upload rejected", http.StatusInternalServerError)
			return
		}
		reader, err := r.MultipartReader()
		if err != nil {
			t.Errorf("multipart reader: %v", err)
			return
		}
		var names []string
		var records []market.MediaRecord
		for i := int64(1); ; i++ {
			part, err := reader.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Errorf("next part: %v", err)
				return
			}
			names = append(names, part.FileName())
			records = append(records, market.MediaRecord{ID: i, URL: "https://cdn/" + part.FileName()})
		}
		b.imageBatches = append(b.imageBatches, names)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(records)
	})
	mux.HandleFunc("POST /products/{id}/brochure", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.failBrochure {
			http.Error(w, "upload rejected", http.StatusInternalServerError)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		_, header, err := r.FormFile("brochure")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		b.brochures = append(b.brochures, header.Filename)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":90,"url":"https://cdn/brochure.pdf"}`)
	})
	mux.HandleFunc("GET /products/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		response := market.Product{ID: 42, Name: "Forklift", Media: b.productMedia}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	})
	return mux
}

func newTestOrchestrator(t *testing.T, backend *backendRecorder) *publish.Orchestrator {
	t.Helper()
	server := httptest.NewServer(backend.handler(t))
	t.Cleanup(server.Close)
	client, err := market.New(server.URL, "token")
	if err != nil {
		t.Fatalf("market.New returned error: %v", err)
	}
	return publish.NewOrchestrator(client, testDirectory(t), logging.NewNop(),
		publish.WithFileOpener(func(path string) (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("fake bytes for " + path)), nil
		}))
}

func forkliftRecord() *product.Record {
	rec := &product.Record{
		CategoryID: "cat-forklifts",
		Name:       "Forklift",
		Price:      18500,
		OwnerID:    "vendor-1",
	}
	rec.ToggleTag(product.TagUsed, true)
	return rec
}

func stageImage(t *testing.T, channels *media.Channels, path string, primary bool) {
	t.Helper()
	var err error
	if primary {
		err = channels.StagePrimaryImage(path, 200*1024, "image/jpeg")
	} else {
		_, err = channels.StageGalleryImage(path, 200*1024, "image/jpeg")
	}
	if err != nil {
		t.Fatalf("stage image %s: %v", path, err)
	}
}

func TestSubmitCreatesProductWithOrderedImageBatch(t *testing.T) {
	backend := &backendRecorder{}
	orch := newTestOrchestrator(t, backend)

	rec := forkliftRecord()
	attrs := attributes.NewStore()
	attrs.Set("capacity", "2.5t")
	channels := media.NewChannels(logging.NewNop())
	stageImage(t, channels, "/tmp/front.jpg", true)
	stageImage(t, channels, "/tmp/side.jpg", false)
	stageImage(t, channels, "/tmp/cab.jpg", false)

	outcome := orch.Submit(context.Background(), rec, attrs, channels)
	if !outcome.Complete() {
		t.Fatalf("expected complete outcome, got %s", outcome.Summary())
	}
	if !outcome.Created || outcome.ProductID != 42 || rec.ID != 42 {
		t.Fatalf("unexpected outcome: %+v (rec.ID=%d)", outcome, rec.ID)
	}
	if backend.createCalls != 1 || backend.updateCalls != 0 {
		t.Fatalf("expected exactly one create call, got create=%d update=%d", backend.createCalls, backend.updateCalls)
	}
	if len(backend.imageBatches) != 1 {
		t.Fatalf("expected one image batch, got %d", len(backend.imageBatches))
	}
	batch := backend.imageBatches[0]
	if len(batch) != 3 || batch[0] != "front.jpg" {
		t.Fatalf("expected primary first in batch, got %v", batch)
	}

	persisted := channels.Persisted()
	if len(persisted) != 3 {
		t.Fatalf("expected 3 persisted items, got %d", len(persisted))
	}
	primary, ok := channels.PersistedPrimary()
	if !ok || primary.Locator != "https://cdn/front.jpg" {
		t.Fatalf("unexpected persisted primary: %+v ok=%v", primary, ok)
	}
	if channels.HasStagedMedia() {
		t.Fatal("expected staged media cleared after adoption")
	}
}

func TestSubmitImageFailureIsPartial(t *testing.T) {
	backend := &backendRecorder{failImages: true}
	orch := newTestOrchestrator(t, backend)

	rec := forkliftRecord()
	attrs := attributes.NewStore()
	attrs.Set("capacity", "2.5t")
	channels := media.NewChannels(logging.NewNop())
	stageImage(t, channels, "/tmp/front.jpg", true)

	outcome := orch.Submit(context.Background(), rec, attrs, channels)
	if outcome.Failed() {
		t.Fatalf("base save succeeded, run must not be failed: %s", outcome.Summary())
	}
	if !outcome.Partial() {
		t.Fatalf("expected partial outcome, got %s", outcome.Summary())
	}
	if rec.ID != 42 {
		t.Fatalf("expected id assigned despite channel failure, got %d", rec.ID)
	}
	failed := outcome.FailedSteps()
	if len(failed) != 1 || failed[0].Step != publish.StepUploadImages {
		t.Fatalf("unexpected failed steps: %+v", failed)
	}
	if channels.StagedPrimary() == nil {
		t.Fatal("staged primary must survive a failed upload for retry")
	}
}

func TestSubmitBaseFailureIsFatal(t *testing.T) {
	backend := &backendRecorder{failCreate: true}
	orch := newTestOrchestrator(t, backend)

	rec := forkliftRecord()
	attrs := attributes.NewStore()
	attrs.Set("capacity", "2.5t")
	channels := media.NewChannels(logging.NewNop())
	stageImage(t, channels, "/tmp/front.jpg", true)

	outcome := orch.Submit(context.Background(), rec, attrs, channels)
	if !outcome.Failed() {
		t.Fatalf("expected failed outcome, got %s", outcome.Summary())
	}
	if len(backend.imageBatches) != 0 {
		t.Fatal("no uploads may run after a base save failure")
	}
	if rec.ID != 0 {
		t.Fatalf("record must stay local after failed create, got id %d", rec.ID)
	}
}

func TestSubmitValidationRejectsBeforeNetwork(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(rec *product.Record, attrs *attributes.Store)
	}{
		{"missing owner", func(rec *product.Record, attrs *attributes.Store) { rec.OwnerID = "" }},
		{"missing name", func(rec *product.Record, attrs *attributes.Store) { rec.Name = "" }},
		{"no type tags", func(rec *product.Record, attrs *attributes.Store) { rec.TypeTags = nil }},
		{"missing required attribute", func(rec *product.Record, attrs *attributes.Store) { attrs.Delete("capacity") }},
		{"subcategory pending", func(rec *product.Record, attrs *attributes.Store) {
			rec.SetCategory("cat-excavators")
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			backend := &backendRecorder{}
			orch := newTestOrchestrator(t, backend)

			rec := forkliftRecord()
			attrs := attributes.NewStore()
			attrs.Set("capacity", "2.5t")
			tc.mutate(rec, attrs)

			outcome := orch.Submit(context.Background(), rec, attrs, media.NewChannels(logging.NewNop()))
			if !outcome.Failed() {
				t.Fatalf("expected failed outcome, got %s", outcome.Summary())
			}
			if backend.createCalls != 0 || backend.updateCalls != 0 {
				t.Fatal("validation failures must not reach the backend")
			}
		})
	}
}

func TestSubmitUpdatesPersistedRecord(t *testing.T) {
	backend := &backendRecorder{}
	orch := newTestOrchestrator(t, backend)

	rec := forkliftRecord()
	rec.ID = 42
	attrs := attributes.NewStore()
	attrs.Set("capacity", "3.0t")

	outcome := orch.Submit(context.Background(), rec, attrs, media.NewChannels(logging.NewNop()))
	if !outcome.Complete() {
		t.Fatalf("expected complete outcome, got %s", outcome.Summary())
	}
	if outcome.Created {
		t.Fatal("updating an existing record must not report created")
	}
	if backend.updateCalls != 1 || backend.createCalls != 0 {
		t.Fatalf("expected exactly one update call, got create=%d update=%d", backend.createCalls, backend.updateCalls)
	}
}

func TestSubmitPersistsVideoLinksWithBaseAndResolves(t *testing.T) {
	link := "https://youtu.be/forklift-demo"
	backend := &backendRecorder{
		productMedia: []market.MediaRecord{{ID: 77, URL: link}},
	}
	orch := newTestOrchestrator(t, backend)

	rec := forkliftRecord()
	attrs := attributes.NewStore()
	attrs.Set("capacity", "2.5t")
	channels := media.NewChannels(logging.NewNop())
	if err := channels.StageVideoLink(link); err != nil {
		t.Fatalf("StageVideoLink returned error: %v", err)
	}

	outcome := orch.Submit(context.Background(), rec, attrs, channels)
	if !outcome.Complete() {
		t.Fatalf("expected complete outcome, got %s", outcome.Summary())
	}
	if len(backend.payloads) != 1 || len(backend.payloads[0].VideoLinks) != 1 {
		t.Fatalf("expected video link in base payload, got %+v", backend.payloads)
	}
	if len(channels.StagedVideoLinks()) != 0 {
		t.Fatal("resolved link must leave the staged list")
	}
	persisted := channels.Persisted()
	if len(persisted) != 1 || persisted[0].ID != 77 || persisted[0].Kind != media.KindVideo {
		t.Fatalf("unexpected persisted media: %+v", persisted)
	}
}

func TestSubmitAttributesFilteredByResolvedSchema(t *testing.T) {
	backend := &backendRecorder{}
	orch := newTestOrchestrator(t, backend)

	rec := forkliftRecord()
	attrs := attributes.NewStore()
	attrs.Set("capacity", "2.5t")
	attrs.Set("weight", "900kg") // belongs to another category's schema

	outcome := orch.Submit(context.Background(), rec, attrs, media.NewChannels(logging.NewNop()))
	if !outcome.Complete() {
		t.Fatalf("expected complete outcome, got %s", outcome.Summary())
	}
	sent := backend.payloads[0].Attributes
	if sent["capacity"] != "2.5t" {
		t.Fatalf("expected capacity in payload, got %#v", sent)
	}
	if _, ok := sent["weight"]; ok {
		t.Fatalf("stale attribute must not reach the backend: %#v", sent)
	}
	if value, ok := attrs.Get("weight"); !ok || value != "900kg" {
		t.Fatal("stale attribute must stay stored locally")
	}
}

func TestSubmitBrochureUploaded(t *testing.T) {
	backend := &backendRecorder{}
	orch := newTestOrchestrator(t, backend)

	rec := forkliftRecord()
	attrs := attributes.NewStore()
	attrs.Set("capacity", "2.5t")
	channels := media.NewChannels(logging.NewNop())
	if err := channels.StageBrochure("/tmp/specs.pdf", 80*1024, "application/pdf"); err != nil {
		t.Fatalf("StageBrochure returned error: %v", err)
	}

	outcome := orch.Submit(context.Background(), rec, attrs, channels)
	if !outcome.Complete() {
		t.Fatalf("expected complete outcome, got %s", outcome.Summary())
	}
	if len(backend.brochures) != 1 || backend.brochures[0] != "specs.pdf" {
		t.Fatalf("unexpected brochure uploads: %v", backend.brochures)
	}
	if channels.StagedBrochure() != nil {
		t.Fatal("staged brochure must clear after successful upload")
	}
	persisted := channels.PersistedBrochure()
	if persisted == nil || persisted.ID != 90 || persisted.Kind != media.KindDocument {
		t.Fatalf("unexpected persisted brochure: %+v", persisted)
	}
}

func TestSubmitBrochureFailureKeepsStagedFile(t *testing.T) {
	backend := &backendRecorder{failBrochure: true}
	orch := newTestOrchestrator(t, backend)

	rec := forkliftRecord()
	attrs := attributes.NewStore()
	attrs.Set("capacity", "2.5t")
	channels := media.NewChannels(logging.NewNop())
	if err := channels.StageBrochure("/tmp/specs.pdf", 80*1024, "application/pdf"); err != nil {
		t.Fatalf("StageBrochure returned error: %v", err)
	}
	stageImage(t, channels, "/tmp/front.jpg", true)

	outcome := orch.Submit(context.Background(), rec, attrs, channels)
	if !outcome.Partial() {
		t.Fatalf("expected partial outcome, got %s", outcome.Summary())
	}
	if channels.StagedBrochure() == nil {
		t.Fatal("staged brochure must survive a failed upload")
	}
	// The image channel is independent and must still have uploaded.
	if len(backend.imageBatches) != 1 {
		t.Fatalf("expected image upload despite brochure failure, got %d batches", len(backend.imageBatches))
	}
}
