package service

import (
	"fmt"
	"strings"

	"github.com/noah-isme/nep-timetable-api/internal/models"
)

const generatorSystemPrompt = "You are an AI assistant specialized in creating NEP 2020 compliant school timetables."

const responseShape = `{
  "timetable": [
    {
      "day_of_week": 1,
      "time_slot_id": "<time slot id>",
      "subject_id": "<subject id>",
      "teacher_id": "<teacher id>",
      "room_suggestion": "<room>",
      "compliance_note": "<why this placement supports NEP 2020>"
    }
  ],
  "compliance_score": 0,
  "optimization_notes": ["<note>"],
  "multidisciplinary_sessions": ["<session description>"]
}`

// buildGenerationPrompt renders the catalog, constraints and preferences into the user message.
func buildGenerationPrompt(catalog models.Catalog, req models.GenerationRequest) string {
	var b strings.Builder

	b.WriteString("Create a NEP 2020 compliant weekly timetable (days 1-6, Monday to Saturday) for one class.\n\n")

	b.WriteString("SUBJECTS (with NEP categories):\n")
	for _, s := range catalog.Subjects {
		fmt.Fprintf(&b, "- id=%s %s (%s, Priority: %s, Multidisciplinary: %t, Credit hours: %d)\n",
			s.ID, s.Name, s.Category, s.NEPPriority, s.Multidisciplinary, s.CreditHours)
	}

	b.WriteString("\nTEACHERS:\n")
	for _, t := range catalog.Teachers {
		fmt.Fprintf(&b, "- id=%s %s (Specialization: %s, NEP Trained: %t)\n",
			t.ID, t.Name, strings.Join(t.Specializations, ", "), t.NEPTrained)
	}

	b.WriteString("\nTIME SLOTS:\n")
	for _, slot := range catalog.TimeSlots {
		fmt.Fprintf(&b, "- id=%s %s (%s)\n", slot.ID, slot.Label(), slot.SlotType)
	}

	b.WriteString(`
NEP 2020 COMPLIANCE REQUIREMENTS:
1. Multidisciplinary approach - integrate subjects where possible
2. Holistic development - balance academic and co-curricular activities
3. Flexible curriculum - allow for student choice and creativity
4. Art education integration - schedule creative subjects in the first four periods
5. Physical education - schedule during optimal times
6. Value education - integrate throughout the week
7. Assessment reforms - include time for continuous assessment
`)

	c := req.Constraints
	b.WriteString("\nCONSTRAINTS:\n")
	fmt.Fprintf(&b, "- Maximum %d periods per day\n", c.MaxPeriodsPerDay)
	fmt.Fprintf(&b, "- Include %d minute breaks\n", c.BreakDuration)
	fmt.Fprintf(&b, "- Strict NEP compliance: %t\n", c.NEPComplianceStrict)
	fmt.Fprintf(&b, "- Multidisciplinary sessions: %t\n", c.MultidisciplinarySessions)
	fmt.Fprintf(&b, "- Co-curricular activities mandatory: %t\n", c.CoCurricularMandatory)
	b.WriteString("- Only place subjects in regular time slots; each (day_of_week, time_slot_id) pair at most once\n")

	p := req.Preferences
	b.WriteString("\nPREFERENCES:\n")
	fmt.Fprintf(&b, "- Morning subjects: %s\n", joinOrNone(p.MorningSubjects))
	fmt.Fprintf(&b, "- Afternoon subjects: %s\n", joinOrNone(p.AfternoonSubjects))
	fmt.Fprintf(&b, "- Avoid consecutive: %s\n", joinOrNone(p.AvoidConsecutive))

	b.WriteString("\nRespond with JSON only, using the ids above, in exactly this shape:\n")
	b.WriteString(responseShape)
	b.WriteString("\n")
	return b.String()
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	return strings.Join(values, ", ")
}
