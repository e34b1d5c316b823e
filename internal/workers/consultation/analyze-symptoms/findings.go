// internal/workers/consultation/analyze-symptoms/findings.go
package analyzesymptoms

import "strings"

const (
	FindingJoint     = "joint"
	FindingDigestive = "digestive"
	FindingSkin      = "skin"
)

type group struct {
	finding  string
	keywords []string
	block    string
}

// groups are evaluated and rendered in this order regardless of where the
// keywords occur in the text.
var groups = []group{
	{
		finding:  FindingJoint,
		keywords: []string{"limp", "leg", "joint", "stairs"},
		block: `**Possible joint problem**
• Arthritis or a joint injury is possible
• Degenerative arthritis is likely in older dogs
• Patellar luxation is suspected in small breeds

**Recommended actions:**
• Limit stair use and use non-slip flooring
• Consider joint supplements (glucosamine, chondroitin)
• Keep body weight under control
• A veterinary visit is recommended

`,
	},
	{
		finding:  FindingDigestive,
		keywords: []string{"vomit", "diarrhea", "digestion", "appetite"},
		block: `**Possible digestive problem**
• Acute gastroenteritis or a food intolerance is possible
• Stress or a recent diet change may be the cause
• Watch for dehydration

**Recommended actions:**
• Fast for 12-24 hours, then reintroduce food gradually
• Feed small portions often
• Consider a probiotic
• See a veterinarian if symptoms persist

`,
	},
	{
		finding:  FindingSkin,
		keywords: []string{"itch", "scratch", "hair loss", "rash"},
		block: `**Possible skin problem**
• Allergic dermatitis or atopy is possible
• Consider food and environmental allergies
• Watch for secondary bacterial infection

**Recommended actions:**
• Remove likely allergy triggers
• Supplement omega-3 fatty acids
• Use a hypoallergenic shampoo
• Ask for an allergy test if it persists

`,
	},
}

const routineCareBlock = `**General health care**
• No specific signs of illness were found
• Preventive care matters
• Regular check-ups are recommended

**Recommended actions:**
• Provide balanced nutrition
• Keep up appropriate exercise and manage stress
• Schedule periodic check-ups

`

const disclaimer = "\n**Important**: this analysis is for reference only. Consult a professional veterinarian for an accurate diagnosis and treatment."

// DetectFindings returns the keyword groups matched by symptoms, in group
// order.
func DetectFindings(symptoms string) []string {
	lower := strings.ToLower(symptoms)
	var findings []string
	for _, g := range groups {
		if matchesAny(lower, g.keywords) {
			findings = append(findings, g.finding)
		}
	}
	return findings
}

func matchesAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
