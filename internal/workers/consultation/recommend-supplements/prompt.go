// internal/workers/consultation/recommend-supplements/prompt.go
package recommendsupplements

import (
	"strconv"
	"strings"
	"text/template"

	"pet-doctor/internal/models"
)

const systemPrompt = "You are a companion-animal nutrition expert. Recommend safe and effective supplements."

var recommendationPrompt = template.Must(template.New("recommendation").Funcs(template.FuncMap{
	"krw":    formatKRW,
	"orNone": orNone,
}).Parse(`You are a companion-animal nutrition expert. Recommend suitable supplements based on the health analysis.

**Health analysis:**
{{.Analysis}}

**Pet information:**
- Species: {{.Pet.Species}}
- Age: {{.Pet.Age}} years
- Weight: {{.Pet.Weight}}kg

**Available supplements:**
{{range .Supplements}}
Product: {{.Name}}
Brand: {{.Brand}}
Category: {{.Category}}
Description: {{.Description}}
Key ingredients: {{.Ingredients}}
Recommended for: {{.Indications}}
Dosage: {{.Dosage}}
Price: {{krw .Price}}
Rating: {{.Rating}}/5.0
Side effects: {{orNone .SideEffects}}
Contraindications: {{orNone .Contraindications}}
{{end}}
**Criteria:**
1. Relevance to the symptoms
2. Suitability for the pet's age and weight
3. Safety and side effects
4. Interactions with other supplements
5. Cost effectiveness

For each supplement give the reason, the expected effect, how to give it, whether it combines with the others and how long until it takes effect.

**Important:**
- Recommend at most 3
- Put the best fit for the pet's current condition first
- Always mention side effects or contraindications
`))

type promptData struct {
	Analysis    string
	Pet         models.PetProfile
	Supplements []models.Supplement
}

func renderPrompt(analysis string, pet models.PetProfile, supplements []models.Supplement) (string, error) {
	var b strings.Builder
	err := recommendationPrompt.Execute(&b, promptData{Analysis: analysis, Pet: pet, Supplements: supplements})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

// formatKRW renders a whole-won price with thousands separators.
func formatKRW(price float64) string {
	digits := strconv.FormatInt(int64(price), 10)
	neg := strings.HasPrefix(digits, "-")
	digits = strings.TrimPrefix(digits, "-")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteString(" KRW")
	return b.String()
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "none"
	}
	return s
}
