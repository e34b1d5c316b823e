// internal/workers/consultation/recommend-supplements/config.go
package recommendsupplements

import "time"

type Config struct {
	PerCategoryLimit   int
	MaxRecommendations int
	// ScanAnalysisText also matches category keywords against the analysis
	// text. Generated wording can then introduce categories the owner never
	// described, so it is off unless explicitly enabled.
	ScanAnalysisText bool
	Timeout          time.Duration
	// Reserve is kept back from the caller's deadline for persistence.
	Reserve time.Duration
}

func LoadConfig() *Config {
	return &Config{
		PerCategoryLimit:   2,
		MaxRecommendations: 3,
		Timeout:            30 * time.Second,
		Reserve:            2 * time.Second,
	}
}
