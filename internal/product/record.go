package product

import (
	"fmt"
	"strings"
)

// TypeTag classifies how a product is offered. A record may carry several
// tags, but "new" and "used" are mutually exclusive.
type TypeTag string

const (
	TagNew         TypeTag = "new"
	TagUsed        TypeTag = "used"
	TagRental      TypeTag = "rental"
	TagAttachments TypeTag = "attachments"
)

// ParseTypeTag normalizes a tag string.
func ParseTypeTag(value string) (TypeTag, error) {
	tag := TypeTag(strings.ToLower(strings.TrimSpace(value)))
	switch tag {
	case TagNew, TagUsed, TagRental, TagAttachments:
		return tag, nil
	default:
		return "", fmt.Errorf("unknown type tag %q", value)
	}
}

// Record holds the static fields of a product under authoring. A record with
// no ID is a local draft; the first successful base save assigns the server
// id, after which edits go through update instead of create.
type Record struct {
	ID            int64
	CategoryID    string
	SubcategoryID string
	Name          string
	Description   string
	Manufacturer  string
	Model         string
	Price         float64
	TypeTags      []TypeTag
	DirectSale    bool
	HidePrice     bool
	OnlinePayment bool
	StockQuantity int
	OwnerID       string
}

// Persisted reports whether the record has been saved server-side at least once.
func (r *Record) Persisted() bool {
	return r.ID > 0
}

// HasTag reports whether the tag is currently set.
func (r *Record) HasTag(tag TypeTag) bool {
	for _, existing := range r.TypeTags {
		if existing == tag {
			return true
		}
	}
	return false
}

// ToggleTag sets or clears a type tag. Enabling "new" clears "used" and vice
// versa; the exclusivity is enforced here, at the point of toggling, not just
// at submit.
func (r *Record) ToggleTag(tag TypeTag, on bool) {
	if !on {
		r.removeTag(tag)
		return
	}
	switch tag {
	case TagNew:
		r.removeTag(TagUsed)
	case TagUsed:
		r.removeTag(TagNew)
	}
	if !r.HasTag(tag) {
		r.TypeTags = append(r.TypeTags, tag)
	}
}

func (r *Record) removeTag(tag TypeTag) {
	next := r.TypeTags[:0]
	for _, existing := range r.TypeTags {
		if existing != tag {
			next = append(next, existing)
		}
	}
	r.TypeTags = next
}

// SetCategory switches the record to a new category. Switching always clears
// the subcategory selection; switching subcategory within a category does not
// touch the category.
func (r *Record) SetCategory(categoryID string) {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == r.CategoryID {
		return
	}
	r.CategoryID = categoryID
	r.SubcategoryID = ""
}

// TagStrings returns the tags as plain strings for persistence and payloads.
func (r *Record) TagStrings() []string {
	out := make([]string, 0, len(r.TypeTags))
	for _, tag := range r.TypeTags {
		out = append(out, string(tag))
	}
	return out
}

// RestoreTags rebuilds the tag set from stored strings, dropping anything
// unknown.
func (r *Record) RestoreTags(values []string) {
	r.TypeTags = nil
	for _, value := range values {
		if tag, err := ParseTypeTag(value); err == nil {
			r.ToggleTag(tag, true)
		}
	}
}
