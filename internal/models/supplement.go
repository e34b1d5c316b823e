package models

// Category of a catalog supplement.
type Category string

const (
	CategoryJointHealth Category = "joint-health"
	CategoryDigestive   Category = "digestive"
	CategoryGeneral     Category = "general"
	CategorySkinCoat    Category = "skin-coat"
	CategoryImmune      Category = "immune"
	CategoryCardiac     Category = "cardiac"
	CategoryLiver       Category = "liver"
	CategoryUrinary     Category = "urinary"
)

// Categories lists every category in catalog display order.
var Categories = []Category{
	CategoryJointHealth,
	CategoryDigestive,
	CategoryGeneral,
	CategorySkinCoat,
	CategoryImmune,
	CategoryCardiac,
	CategoryLiver,
	CategoryUrinary,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Supplement is one catalog record. Price is in KRW.
type Supplement struct {
	ID                int64    `json:"id" yaml:"-"`
	Name              string   `json:"name" yaml:"name"`
	Brand             string   `json:"brand" yaml:"brand"`
	Category          Category `json:"category" yaml:"category"`
	Description       string   `json:"description" yaml:"description"`
	Ingredients       string   `json:"ingredients" yaml:"ingredients"`
	Indications       string   `json:"recommendedFor" yaml:"recommended_for"`
	Dosage            string   `json:"dosage" yaml:"dosage"`
	Price             float64  `json:"price" yaml:"price"`
	Rating            float64  `json:"rating" yaml:"rating"`
	SideEffects       string   `json:"sideEffects" yaml:"side_effects"`
	Contraindications string   `json:"contraindications" yaml:"contraindications"`
}

// Recommendation is a catalog record chosen for a case, with its rationale.
type Recommendation struct {
	Supplement
	Rationale string `json:"rationale"`
}

// SupplementFilter narrows a catalog listing. Zero values mean "no bound".
type SupplementFilter struct {
	Category  Category `json:"category,omitempty"`
	MinPrice  float64  `json:"minPrice,omitempty"`
	MaxPrice  float64  `json:"maxPrice,omitempty"`
	MinRating float64  `json:"minRating,omitempty"`
}
