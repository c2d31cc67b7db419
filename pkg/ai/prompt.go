package ai

import (
	"fmt"
	"strings"
)

// Section headings the brief viewer decorates with icons
const (
	SectionDetails      = "Meeting Details"
	SectionTalkingPoint = "Key Talking Points"
	SectionResearch     = "Research Notes"
	SectionInsights     = "AI-Generated Insights"
)

// BuildBriefPrompt renders the generation prompt for a meeting
func BuildBriefPrompt(m MeetingInput) string {
	attendees := "None listed"
	if len(m.Attendees) > 0 {
		attendees = strings.Join(m.Attendees, ", ")
	}

	var b strings.Builder
	b.WriteString("You are an executive assistant preparing a short brief before a meeting.\n\n")
	b.WriteString("MEETING:\n")
	fmt.Fprintf(&b, "Title: %s\n", orDefault(m.Title, "Untitled Meeting"))
	fmt.Fprintf(&b, "Date: %s\n", orDefault(m.Date, "Not specified"))
	fmt.Fprintf(&b, "Time: %s\n", orDefault(m.Time, "Not specified"))
	fmt.Fprintf(&b, "Attendees: %s\n", attendees)
	if m.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", m.Location)
	}
	if m.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", m.Description)
	}

	b.WriteString("\nFORMAT:\n")
	b.WriteString("- Start with a level-1 heading \"# Meeting Brief: <title>\"\n")
	b.WriteString("- Then exactly these level-2 headings, in this order:\n")
	for _, s := range []string{SectionDetails, SectionTalkingPoint, SectionResearch, SectionInsights} {
		fmt.Fprintf(&b, "  ## %s\n", s)
	}
	b.WriteString("- Use \"- \" bullet lists under each heading and **bold** for names\n")
	b.WriteString("- Plain markdown only: no tables, no code blocks, no links\n\n")
	b.WriteString("BRIEF:\n")
	return b.String()
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
