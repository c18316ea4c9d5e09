package product_test

import (
	"reflect"
	"testing"

	"wares/internal/product"
)

func TestToggleTagNewUsedExclusivity(t *testing.T) {
	rec := &product.Record{}

	rec.ToggleTag(product.TagNew, true)
	rec.ToggleTag(product.TagUsed, true)

	if !reflect.DeepEqual(rec.TypeTags, []product.TypeTag{product.TagUsed}) {
		t.Fatalf("expected exactly {used}, got %v", rec.TypeTags)
	}

	rec.ToggleTag(product.TagNew, true)
	if rec.HasTag(product.TagUsed) {
		t.Fatal("enabling new must clear used")
	}
	if !rec.HasTag(product.TagNew) {
		t.Fatal("new should be set")
	}
}

func TestToggleTagKeepsOtherTags(t *testing.T) {
	rec := &product.Record{}
	rec.ToggleTag(product.TagRental, true)
	rec.ToggleTag(product.TagNew, true)
	rec.ToggleTag(product.TagUsed, true)

	if !rec.HasTag(product.TagRental) {
		t.Fatal("rental should survive new/used flips")
	}

	rec.ToggleTag(product.TagRental, false)
	if rec.HasTag(product.TagRental) {
		t.Fatal("rental should be cleared")
	}
}

func TestToggleTagIdempotent(t *testing.T) {
	rec := &product.Record{}
	rec.ToggleTag(product.TagNew, true)
	rec.ToggleTag(product.TagNew, true)
	if len(rec.TypeTags) != 1 {
		t.Fatalf("expected single tag, got %v", rec.TypeTags)
	}
}

func TestSetCategoryClearsSubcategory(t *testing.T) {
	rec := &product.Record{CategoryID: "excavators", SubcategoryID: "mini"}

	rec.SetCategory("forklifts")
	if rec.SubcategoryID != "" {
		t.Fatal("switching category must clear subcategory")
	}

	rec.SubcategoryID = "mini"
	rec.SetCategory("forklifts") // same category, no-op
	if rec.SubcategoryID != "mini" {
		t.Fatal("re-setting the same category must not clear subcategory")
	}
}

func TestParseTypeTag(t *testing.T) {
	tag, err := product.ParseTypeTag(" Rental ")
	if err != nil || tag != product.TagRental {
		t.Fatalf("parse rental: tag=%q err=%v", tag, err)
	}
	if _, err := product.ParseTypeTag("refurbished"); err == nil {
		t.Fatal("expected error for unknown tag")
	}
}

func TestRestoreTagsDropsUnknown(t *testing.T) {
	rec := &product.Record{}
	rec.RestoreTags([]string{"new", "bogus", "rental"})
	if !rec.HasTag(product.TagNew) || !rec.HasTag(product.TagRental) {
		t.Fatalf("restored tags wrong: %v", rec.TypeTags)
	}
	if len(rec.TypeTags) != 2 {
		t.Fatalf("unknown tag leaked in: %v", rec.TypeTags)
	}
}
