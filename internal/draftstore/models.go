package draftstore

import (
	"log/slog"
	"time"

	"wares/internal/attributes"
	"wares/internal/media"
	"wares/internal/product"
)

// Draft is one locally stored authoring session: the base record fields, the
// attribute values, and a snapshot of the media channels. The draft id is
// local; ProductID is set once the backend has accepted the base record.
type Draft struct {
	ID            int64
	ProductID     int64
	CategoryID    string
	SubcategoryID string
	Name          string
	Description   string
	Manufacturer  string
	Model         string
	Price         float64
	TypeTags      []string
	DirectSale    bool
	HidePrice     bool
	OnlinePayment bool
	StockQuantity int
	OwnerID       string
	Attributes    map[string]string
	Media         media.Snapshot
	LastOutcome   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Record materializes the draft's base fields as a product record.
func (d *Draft) Record() *product.Record {
	rec := &product.Record{
		ID:            d.ProductID,
		CategoryID:    d.CategoryID,
		SubcategoryID: d.SubcategoryID,
		Name:          d.Name,
		Description:   d.Description,
		Manufacturer:  d.Manufacturer,
		Model:         d.Model,
		Price:         d.Price,
		DirectSale:    d.DirectSale,
		HidePrice:     d.HidePrice,
		OnlinePayment: d.OnlinePayment,
		StockQuantity: d.StockQuantity,
		OwnerID:       d.OwnerID,
	}
	rec.RestoreTags(d.TypeTags)
	return rec
}

// AttributeStore materializes the stored attribute values.
func (d *Draft) AttributeStore() *attributes.Store {
	return attributes.Restore(d.Attributes)
}

// MediaChannels materializes the stored media snapshot.
func (d *Draft) MediaChannels(logger *slog.Logger) *media.Channels {
	return media.Restore(d.Media, logger)
}

// Apply copies the live authoring state back into the draft for persistence.
func (d *Draft) Apply(rec *product.Record, attrs *attributes.Store, channels *media.Channels) {
	d.ProductID = rec.ID
	d.CategoryID = rec.CategoryID
	d.SubcategoryID = rec.SubcategoryID
	d.Name = rec.Name
	d.Description = rec.Description
	d.Manufacturer = rec.Manufacturer
	d.Model = rec.Model
	d.Price = rec.Price
	d.TypeTags = rec.TagStrings()
	d.DirectSale = rec.DirectSale
	d.HidePrice = rec.HidePrice
	d.OnlinePayment = rec.OnlinePayment
	d.StockQuantity = rec.StockQuantity
	d.OwnerID = rec.OwnerID
	d.Attributes = attrs.Values()
	d.Media = channels.Snapshot()
}
