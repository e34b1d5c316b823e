// internal/workers/consultation/emergency-check/config.go
package emergencycheck

// Config holds the triage phrase tables. Phrases are matched as
// case-insensitive substrings, in order.
type Config struct {
	RedFlags      []string
	SeniorAge     int
	SeniorPhrases []string
}

func LoadConfig() *Config {
	return &Config{
		RedFlags: []string{
			"lost consciousness",
			"unconscious",
			"seizure",
			"seizing",
			"convulsion",
			"difficulty breathing",
			"can't breathe",
			"vomiting blood",
			"abdominal distension",
			"high fever",
			"41 degrees",
			"pale gums",
			"white gums",
			"persistent vomiting",
			"severe diarrhea",
		},
		SeniorAge: 10,
		SeniorPhrases: []string{
			"shortness of breath",
			"cough",
			"loss of appetite",
		},
	}
}
