package check

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/nao1215/fomapcheck/internal/model"
)

// Catalog is the prototype lookup the checker needs.
// *proto.Catalog satisfies it.
type Catalog interface {
	Lookup(id uint16) (model.Prototype, bool)
}

// Result is the outcome of checking one map document.
type Result struct {
	// Changes are the corrections to apply, ordered by offset.
	Changes []model.ChangeRecord

	// Invalid are the objects with an unclassifiable category, in file order.
	Invalid []model.MapObject
}

// Check inspects every object in doc:
//   - objects with CategoryAny are collected as invalid and never corrected;
//   - critters are skipped;
//   - objects whose prototype is not in the catalog are skipped;
//   - otherwise a ChangeRecord is produced when the recorded category
//     differs from the prototype's implied category.
//
// Every returned ChangeRecord has been validated. A record that fails
// validation aborts the check with model.ErrInvariantViolation.
func Check(doc *model.MapDocument, catalog Catalog) (Result, error) {
	var res Result

	for _, obj := range doc.Objects {
		if obj.Category.IsAny() {
			res.Invalid = append(res.Invalid, obj)
			continue
		}
		if obj.Category == model.CategoryCritter {
			continue
		}

		proto, ok := catalog.Lookup(obj.ProtoID)
		if !ok {
			continue
		}
		implied := proto.Category()
		if implied == obj.Category {
			continue
		}

		rec, err := model.NewChangeRecord(obj, doc.Raw, implied)
		if err != nil {
			return Result{}, fmt.Errorf("proto %d: %w", obj.ProtoID, err)
		}
		res.Changes = append(res.Changes, rec)
	}

	slices.SortFunc(res.Changes, func(a, b model.ChangeRecord) int {
		return cmp.Compare(a.Offset, b.Offset)
	})

	return res, nil
}
