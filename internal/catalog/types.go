package catalog

import "wares/internal/attributes"

// Category is one entry of the backend category directory. A category carries
// its own attribute schema only when it has no subcategories; otherwise the
// schema lives on the chosen subcategory.
type Category struct {
	ID            string                `json:"id"`
	Name          string                `json:"name"`
	Subcategories []Subcategory         `json:"subcategories,omitempty"`
	Schema        []attributes.FieldDef `json:"attribute_schema,omitempty"`
}

// Subcategory is a second-level category that owns the attribute schema for
// products filed under it.
type Subcategory struct {
	ID     string                `json:"id"`
	Name   string                `json:"name"`
	Schema []attributes.FieldDef `json:"attribute_schema,omitempty"`
}

// HasSubcategories reports whether schema resolution must wait for a
// subcategory selection.
func (c Category) HasSubcategories() bool {
	return len(c.Subcategories) > 0
}

// Subcategory returns the subcategory with the given id, if it belongs to
// this category.
func (c Category) Subcategory(id string) (Subcategory, bool) {
	for _, sub := range c.Subcategories {
		if sub.ID == id {
			return sub, true
		}
	}
	return Subcategory{}, false
}
