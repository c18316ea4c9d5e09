package catalog

import (
	"fmt"

	"wares/internal/attributes"
	"wares/internal/services"
)

// Notice tells the form what to display alongside a resolved schema.
type Notice string

const (
	// NoticeNone means the resolved field list is ready to render.
	NoticeNone Notice = ""
	// NoticeSelectSubcategory means resolution is deferred until a
	// subcategory is chosen; the field list is empty on purpose.
	NoticeSelectSubcategory Notice = "select a subcategory to see its attributes"
	// NoticeNoAttributes means the pair resolved to an empty schema and the
	// form must say so instead of rendering nothing.
	NoticeNoAttributes Notice = "no attributes defined for this selection"
)

// Resolution is the outcome of schema resolution: the ordered field list plus
// the user-facing notice, when one applies.
type Resolution struct {
	Fields []attributes.FieldDef
	Notice Notice
}

// Ready reports whether the schema is resolved (a subcategory selection is
// not still pending).
func (r Resolution) Ready() bool {
	return r.Notice != NoticeSelectSubcategory
}

// Resolve returns the attribute schema for the category/subcategory pair.
// Categories with subcategories take their schema from the chosen
// subcategory; resolution is deferred while none is chosen. Categories
// without subcategories carry the schema directly and reject a subcategory
// argument. An empty resolved schema is valid and yields NoticeNoAttributes.
func Resolve(category Category, subcategoryID string) (Resolution, error) {
	if !category.HasSubcategories() {
		if subcategoryID != "" {
			return Resolution{}, services.Wrap(services.ErrValidation, "catalog", "resolve",
				fmt.Sprintf("category %q has no subcategories", category.ID), nil)
		}
		return resolutionFor(category.Schema), nil
	}

	if subcategoryID == "" {
		return Resolution{Notice: NoticeSelectSubcategory}, nil
	}
	sub, ok := category.Subcategory(subcategoryID)
	if !ok {
		return Resolution{}, services.Wrap(services.ErrNotFound, "catalog", "resolve",
			fmt.Sprintf("subcategory %q does not belong to category %q", subcategoryID, category.ID), nil)
	}
	return resolutionFor(sub.Schema), nil
}

func resolutionFor(fields []attributes.FieldDef) Resolution {
	if len(fields) == 0 {
		return Resolution{Notice: NoticeNoAttributes}
	}
	return Resolution{Fields: fields}
}
