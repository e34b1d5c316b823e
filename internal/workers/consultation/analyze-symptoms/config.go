// internal/workers/consultation/analyze-symptoms/config.go
package analyzesymptoms

import "time"

type Config struct {
	RetrievalK int
	Timeout    time.Duration
	// Reserve is kept back from the caller's deadline for the stages after
	// this one.
	Reserve time.Duration
}

func LoadConfig() *Config {
	return &Config{
		RetrievalK: 3,
		Timeout:    30 * time.Second,
		Reserve:    2 * time.Second,
	}
}
