// internal/workers/consultation/analyze-symptoms/prompt.go
package analyzesymptoms

import (
	"strings"
	"text/template"

	"pet-doctor/internal/models"
)

var analysisPrompt = template.Must(template.New("analysis").Parse(`You are an experienced veterinarian. Analyze the pet's symptoms and assess the possible health problems.

**Pet information:**
- Name: {{.Pet.Name}}
- Species: {{.Pet.Species}}
- Age: {{.Pet.Age}} years
- Weight: {{.Pet.Weight}}kg

**Symptoms:**
{{.Symptoms}}

**Relevant medical knowledge:**
{{.Context}}

Structure the analysis as follows:

**Key symptom analysis:**
- Medical meaning of the observed symptoms
- Severity assessment

**Possible diagnoses:**
1. The most likely condition (with likelihood)
2. Other conditions to consider

**Cautions:**
- Whether this is an emergency
- Whether a veterinary visit is needed
- Further symptoms to watch for

**Recommended actions:**
- First aid that can be given right away
- Daily care
- Whether nutritional supplements are needed

Always advise a visit to a professional veterinarian for an accurate diagnosis.
`))

type promptData struct {
	Pet      models.PetProfile
	Symptoms string
	Context  string
}

func renderPrompt(pet models.PetProfile, symptoms, context string) (string, error) {
	var b strings.Builder
	if err := analysisPrompt.Execute(&b, promptData{Pet: pet, Symptoms: symptoms, Context: context}); err != nil {
		return "", err
	}
	return b.String(), nil
}
