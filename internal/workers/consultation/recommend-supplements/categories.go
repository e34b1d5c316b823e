// internal/workers/consultation/recommend-supplements/categories.go
package recommendsupplements

import (
	"strings"

	"pet-doctor/internal/models"
)

type categoryRule struct {
	keyword  string
	finding  string
	category models.Category
}

// categoryTable is ordered; recommendations follow this order.
var categoryTable = []categoryRule{
	{keyword: "joint", finding: "joint", category: models.CategoryJointHealth},
	{keyword: "digest", finding: "digestive", category: models.CategoryDigestive},
	{keyword: "skin", finding: "skin", category: models.CategorySkinCoat},
	{keyword: "immune", category: models.CategoryImmune},
	{keyword: "heart", category: models.CategoryCardiac},
	{keyword: "liver", category: models.CategoryLiver},
	{keyword: "bladder", category: models.CategoryUrinary},
}

// SelectCategories derives the catalog categories for a case from its
// symptoms and findings. It falls back to the general category when nothing
// matches.
func SelectCategories(c *models.CaseRecord, scanAnalysis bool) []models.Category {
	symptoms := strings.ToLower(c.Symptoms)
	analysis := strings.ToLower(c.Analysis)

	var out []models.Category
	for _, rule := range categoryTable {
		hit := strings.Contains(symptoms, rule.keyword) ||
			(scanAnalysis && strings.Contains(analysis, rule.keyword)) ||
			(rule.finding != "" && c.HasFinding(rule.finding))
		if hit {
			out = append(out, rule.category)
		}
	}
	if len(out) == 0 {
		out = append(out, models.CategoryGeneral)
	}
	return out
}
