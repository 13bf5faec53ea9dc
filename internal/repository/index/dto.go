package index

import (
	"strconv"
	"strings"

	"github.com/kitchenops/recipedex/internal/domain"
)

// buildHashFields flattens a search document into HSET fields matching the
// FT schema.
func buildHashFields(doc *domain.SearchDocument) map[string]string {
	return map[string]string{
		FieldTitle:          doc.Title,
		FieldIngredients:    doc.Ingredients,
		FieldSteps:          doc.Steps,
		FieldIngredientTags: strings.Join(doc.IngredientTags, ","),
		FieldCreatedAt:      strconv.FormatInt(doc.CreatedAt, 10),
		FieldUpdatedAt:      strconv.FormatInt(doc.UpdatedAt, 10),
		FieldPayload:        string(doc.Payload),
	}
}
