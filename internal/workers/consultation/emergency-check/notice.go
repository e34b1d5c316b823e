// internal/workers/consultation/emergency-check/notice.go
package emergencycheck

import (
	"fmt"
	"strings"

	"pet-doctor/internal/models"
)

const seniorReason = "senior pet with concerning symptoms"

var immediateActions = []string{
	"Go to the nearest 24-hour veterinary emergency clinic immediately.",
	"Keep your pet warm during transport.",
	"Prevent vomit from entering the airway.",
	"Call the clinic ahead to describe the situation.",
}

// Notice renders the emergency analysis written in place of a health
// analysis when the level reaches the emergency threshold.
func Notice(a models.EmergencyAssessment) string {
	var b strings.Builder

	b.WriteString("**EMERGENCY SUSPECTED**\n\n")
	fmt.Fprintf(&b, "**Emergency level: %d/5**\n\n", a.Level)

	b.WriteString("**Reasons:**\n")
	for _, reason := range a.Reasons {
		fmt.Fprintf(&b, "• %s\n", reason)
	}

	b.WriteString("\n**Immediate actions:**\n")
	for i, action := range immediateActions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, action)
	}

	b.WriteString("\n**Important: emergency care takes priority over supplement recommendations!**\n")
	return b.String()
}
