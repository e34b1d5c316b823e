package models

import "strings"

// Species of the animal under consultation.
type Species string

const (
	SpeciesDog   Species = "dog"
	SpeciesCat   Species = "cat"
	SpeciesOther Species = "other"
)

// NormalizeSpecies trims and lowercases free input. Unknown values are kept
// as given so validation can reject them.
func NormalizeSpecies(s string) Species {
	return Species(strings.ToLower(strings.TrimSpace(s)))
}

// PetProfile is fixed for the duration of a consultation.
type PetProfile struct {
	Name    string  `json:"name"`
	Species Species `json:"species"`
	Age     int     `json:"age"`    // years
	Weight  float64 `json:"weight"` // kg
}
