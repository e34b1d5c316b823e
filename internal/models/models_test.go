package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSpecies(t *testing.T) {
	assert.Equal(t, SpeciesDog, NormalizeSpecies(" Dog "))
	assert.Equal(t, SpeciesCat, NormalizeSpecies("cat"))
	assert.Equal(t, SpeciesOther, NormalizeSpecies("OTHER"))
	assert.Equal(t, Species("hamster"), NormalizeSpecies("Hamster"), "unknown species are not coerced")
	assert.Equal(t, Species(""), NormalizeSpecies("  "))
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, c.Valid(), c)
	}
	assert.False(t, Category("joint").Valid())
}

func TestNewCaseRecord(t *testing.T) {
	c := NewCaseRecord("run-1", PetProfile{Name: "Rex", Species: SpeciesDog, Age: 3, Weight: 12}, "cough")

	assert.False(t, c.IsEmergency())
	assert.Equal(t, 0, c.Emergency.Level)
	assert.NotNil(t, c.Emergency.Reasons)
	assert.NotNil(t, c.Recommendations)
	assert.Nil(t, c.ConsultationID)
	assert.False(t, c.HasFinding("joint"))

	c.Findings = []string{"joint"}
	assert.True(t, c.HasFinding("joint"))
}
