// internal/workers/consultation/analyze-symptoms/rules.go
package analyzesymptoms

import (
	"fmt"
	"strings"

	"pet-doctor/internal/models"
)

// RuleBasedAnalysis builds the deterministic analysis used when the
// generator cannot produce one.
func RuleBasedAnalysis(pet models.PetProfile, findings []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s (%s, %d years) health analysis**\n\n", pet.Name, pet.Species, pet.Age)

	matched := false
	for _, g := range groups {
		if contains(findings, g.finding) {
			b.WriteString(g.block)
			matched = true
		}
	}
	if !matched {
		b.WriteString(routineCareBlock)
	}

	b.WriteString(disclaimer)
	return b.String()
}

func contains(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}
